package security

import (
	"testing"
	"time"
)

func newTestProvider(ttl time.Duration) *TokenProvider {
	return NewTokenProvider([]byte("test-secret"), "test-issuer", ttl)
}

func TestTokenProvider_IssueAndValidateAccess(t *testing.T) {
	p := newTestProvider(15 * time.Minute)

	token, exp, err := p.IssueAccess("u1", "user", "support")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" {
		t.Fatal("access token empty")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	claims, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if claims.Subject != "u1" || claims.UserType != "user" || claims.AdminRole != "support" {
		t.Errorf("ValidateAccess: got subject=%q user_type=%q admin_role=%q",
			claims.Subject, claims.UserType, claims.AdminRole)
	}
}

func TestTokenProvider_IssueAccessUnique(t *testing.T) {
	// Session rows are keyed on the token value under a unique index, so
	// back-to-back issuance for the same identity inside one second must
	// still produce distinct tokens.
	p := newTestProvider(15 * time.Minute)

	t1, _, err := p.IssueAccess("u1", "user", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	t2, _, err := p.IssueAccess("u1", "user", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if t1 == t2 {
		t.Fatal("IssueAccess produced the same token twice for one identity")
	}

	claims, err := p.ValidateAccess(t1)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if claims.ID == "" {
		t.Error("issued token carries no jti")
	}
}

func TestTokenProvider_ValidateAccessMalformed(t *testing.T) {
	p := newTestProvider(15 * time.Minute)
	_, err := p.ValidateAccess("not-a-token")
	if err != ErrTokenInvalid {
		t.Errorf("ValidateAccess malformed: want ErrTokenInvalid, got %v", err)
	}
}

func TestTokenProvider_ValidateAccessExpired(t *testing.T) {
	p := newTestProvider(-1 * time.Minute)
	token, _, err := p.IssueAccess("u1", "user", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	_, err = p.ValidateAccess(token)
	if err != ErrTokenExpired {
		t.Errorf("ValidateAccess expired: want ErrTokenExpired, got %v", err)
	}
}

func TestTokenProvider_WrongSecretNeverExpired(t *testing.T) {
	// A token signed under a different secret must report invalid, not
	// expired, even when its exp is also in the past.
	other := NewTokenProvider([]byte("other-secret"), "test-issuer", -1*time.Minute)
	token, _, err := other.IssueAccess("u1", "user", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	p := newTestProvider(15 * time.Minute)
	_, err = p.ValidateAccess(token)
	if err != ErrTokenInvalid {
		t.Errorf("ValidateAccess wrong secret: want ErrTokenInvalid, got %v", err)
	}
}

func TestTokenProvider_WrongIssuer(t *testing.T) {
	other := NewTokenProvider([]byte("test-secret"), "other-issuer", 15*time.Minute)
	token, _, err := other.IssueAccess("u1", "user", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	p := newTestProvider(15 * time.Minute)
	if _, err := p.ValidateAccess(token); err != ErrTokenInvalid {
		t.Errorf("ValidateAccess wrong issuer: want ErrTokenInvalid, got %v", err)
	}
}

func TestTokenProvider_IssueRefresh(t *testing.T) {
	p := newTestProvider(15 * time.Minute)
	r1, err := p.IssueRefresh()
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if len(r1) != 64 {
		t.Errorf("refresh token length = %d, want 64 (32 bytes hex)", len(r1))
	}
	r2, err := p.IssueRefresh()
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if r1 == r2 {
		t.Error("IssueRefresh produced the same token twice")
	}
}
