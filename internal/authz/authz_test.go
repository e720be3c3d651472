package authz

import (
	"context"
	"testing"

	"user-identity-service/internal/auth"
	"user-identity-service/pkg/autherr"
)

func newTestChecker(t *testing.T) *Checker {
	t.Helper()
	c, err := NewChecker(context.Background())
	if err != nil {
		t.Fatalf("NewChecker: %v", err)
	}
	return c
}

func TestRequireAdmin(t *testing.T) {
	c := newTestChecker(t)
	ctx := context.Background()

	admin := &auth.Identity{UserID: "u1", UserType: "standard", AdminRole: "support"}
	if err := c.RequireAdmin(ctx, admin); err != nil {
		t.Errorf("RequireAdmin(admin): %v", err)
	}

	plain := &auth.Identity{UserID: "u2", UserType: "standard"}
	if err := c.RequireAdmin(ctx, plain); !autherr.IsKind(err, autherr.KindAdminRequired) {
		t.Errorf("RequireAdmin(non-admin): want KindAdminRequired, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	c := newTestChecker(t)
	ctx := context.Background()
	id := &auth.Identity{UserID: "u1", UserType: "standard", AdminRole: "support"}

	if err := c.RequireRole(ctx, id, "support", "superadmin"); err != nil {
		t.Errorf("RequireRole(allowed): %v", err)
	}
	if err := c.RequireRole(ctx, id, "superadmin"); !autherr.IsKind(err, autherr.KindInsufficientPermissions) {
		t.Errorf("RequireRole(disallowed): want KindInsufficientPermissions, got %v", err)
	}
	if err := c.RequireRole(ctx, id); !autherr.IsKind(err, autherr.KindInsufficientPermissions) {
		t.Errorf("RequireRole(empty set): want KindInsufficientPermissions, got %v", err)
	}

	// An empty role never matches, even if an empty string sneaks into the set.
	plain := &auth.Identity{UserID: "u2", UserType: "standard"}
	if err := c.RequireRole(ctx, plain, "support"); !autherr.IsKind(err, autherr.KindInsufficientPermissions) {
		t.Errorf("RequireRole(no role): want KindInsufficientPermissions, got %v", err)
	}
}
