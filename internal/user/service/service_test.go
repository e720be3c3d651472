package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"user-identity-service/internal/security"
	sessiondomain "user-identity-service/internal/session/domain"
	"user-identity-service/internal/user/domain"
	"user-identity-service/pkg/autherr"
)

type memUserRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}}
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id], nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = u
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = u
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

type memSessions struct {
	mu          sync.Mutex
	created     []*sessiondomain.Session
	invalidated []string
}

func (s *memSessions) Create(ctx context.Context, userID, accessToken, refreshToken, deviceID, ip, userAgent string) (*sessiondomain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &sessiondomain.Session{
		UserID: userID, AccessToken: accessToken, RefreshToken: refreshToken,
		DeviceID: deviceID, IPAddress: ip, UserAgent: userAgent, Active: true,
	}
	s.created = append(s.created, sess)
	return sess, nil
}

func (s *memSessions) InvalidateAllByUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = append(s.invalidated, userID)
	return nil
}

func newTestService(t *testing.T) (*Service, *memUserRepo, *memSessions) {
	t.Helper()
	repo := newMemUserRepo()
	sessions := &memSessions{}
	hasher := security.NewHasher(4)
	tokens := security.NewTokenProvider([]byte("test-secret"), "test-issuer", 15*time.Minute)
	return NewService(repo, sessions, hasher, tokens), repo, sessions
}

func TestRegister(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "User@Example.com", "hunter2hunter2", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "user@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.PasswordHash == "hunter2hunter2" || user.PasswordHash == "" {
		t.Error("password stored incorrectly")
	}
	if user.UserType != domain.UserTypeStandard || user.AdminRole != domain.AdminRoleNone {
		t.Errorf("new user roles: type=%q role=%q", user.UserType, user.AdminRole)
	}

	if _, err := svc.Register(ctx, "user@example.com", "hunter2hunter2", ""); !autherr.IsKind(err, autherr.KindEmailRegistered) {
		t.Errorf("duplicate email: want KindEmailRegistered, got %v", err)
	}
	if _, err := svc.Register(ctx, "not-an-email", "hunter2hunter2", ""); !autherr.IsKind(err, autherr.KindInvalidArgument) {
		t.Errorf("bad email: want KindInvalidArgument, got %v", err)
	}
	if _, err := svc.Register(ctx, "short@example.com", "short", ""); !autherr.IsKind(err, autherr.KindInvalidArgument) {
		t.Errorf("short password: want KindInvalidArgument, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "user@example.com", "hunter2hunter2", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := svc.Login(ctx, "user@example.com", "hunter2hunter2", "dev-1", "10.0.0.1", "go-test")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("login returned empty tokens")
	}
	if len(sessions.created) != 1 {
		t.Fatalf("sessions created = %d, want 1", len(sessions.created))
	}
	if sessions.created[0].DeviceID != "dev-1" {
		t.Errorf("session device = %q", sessions.created[0].DeviceID)
	}

	for _, c := range []struct{ email, password string }{
		{"user@example.com", "wrong"},
		{"nobody@example.com", "hunter2hunter2"},
	} {
		if _, err := svc.Login(ctx, c.email, c.password, "dev-1", "", ""); !autherr.IsKind(err, autherr.KindLoginFailed) {
			t.Errorf("Login(%q): want KindLoginFailed, got %v", c.email, err)
		}
	}
	if _, err := svc.Login(ctx, "user@example.com", "hunter2hunter2", "", "", ""); !autherr.IsKind(err, autherr.KindLoginFailed) {
		t.Errorf("missing device: want KindLoginFailed, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc, repo, sessions := newTestService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, "user@example.com", "hunter2hunter2", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(sessions.invalidated) != 1 || sessions.invalidated[0] != user.ID {
		t.Errorf("sessions invalidated = %v", sessions.invalidated)
	}
	if got, _ := repo.GetByID(ctx, user.ID); got != nil {
		t.Error("user still present after Delete")
	}
	if err := svc.Delete(ctx, user.ID); !autherr.IsKind(err, autherr.KindUserNotFound) {
		t.Errorf("Delete twice: want KindUserNotFound, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, "user@example.com", "hunter2hunter2", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, user.ID, "new@example.com", "+1 555 0100")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Email != "new@example.com" || updated.Phone != "+1 555 0100" {
		t.Errorf("update result: email=%q phone=%q", updated.Email, updated.Phone)
	}
	if _, err := svc.UpdateProfile(ctx, user.ID, "bad email", ""); !autherr.IsKind(err, autherr.KindInvalidArgument) {
		t.Errorf("bad email: want KindInvalidArgument, got %v", err)
	}
}

func TestUpdateProfileEmailTaken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	first, err := svc.Register(ctx, "first@example.com", "hunter2hunter2", "")
	if err != nil {
		t.Fatalf("Register first: %v", err)
	}
	if _, err := svc.Register(ctx, "second@example.com", "hunter2hunter2", ""); err != nil {
		t.Fatalf("Register second: %v", err)
	}

	if _, err := svc.UpdateProfile(ctx, first.ID, "second@example.com", ""); !autherr.IsKind(err, autherr.KindEmailRegistered) {
		t.Errorf("taken email: want KindEmailRegistered, got %v", err)
	}

	// Re-submitting the current address is not a collision.
	if _, err := svc.UpdateProfile(ctx, first.ID, "first@example.com", ""); err != nil {
		t.Errorf("own email: %v", err)
	}
}
