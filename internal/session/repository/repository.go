package repository

import (
	"context"
	"time"

	"user-identity-service/internal/session/domain"
)

// RotatedTokens carries the replacement values a rotation writes onto the
// matched session row.
type RotatedTokens struct {
	AccessToken      string
	RefreshToken     string
	GenerationID     string
	RotatedAt        time.Time
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// RotateFunc produces the replacement tokens for the session row a rotation
// matched. It runs while the row is locked; implementations must not touch
// the store.
type RotateFunc func(current *domain.Session) (*RotatedTokens, error)

// Repository defines persistence for sessions.
type Repository interface {
	Create(ctx context.Context, s *domain.Session) error
	// GetActiveByAccessToken returns the active, unexpired session holding
	// the given access token, or nil if no such row exists.
	GetActiveByAccessToken(ctx context.Context, accessToken string, now time.Time) (*domain.Session, error)
	// Rotate atomically consumes the active, unexpired session matching
	// (refreshToken, deviceID): the row is locked, rotate produces the new
	// token set, and the row is updated in place. Returns nil when no row
	// matches; concurrent attempts on the same pair serialize on the row
	// lock, and losers observe no match.
	Rotate(ctx context.Context, refreshToken, deviceID string, now time.Time, rotate RotateFunc) (*domain.Session, error)
	// Invalidate marks the session holding accessToken inactive. Idempotent.
	Invalidate(ctx context.Context, accessToken string) error
	// InvalidateAllByUser marks every session of the user inactive.
	InvalidateAllByUser(ctx context.Context, userID string) error
	// SweepExpired marks every active session whose refresh expiry has
	// passed inactive and returns the number of rows swept.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
	// Touch updates the last-activity timestamp of the session holding
	// accessToken.
	Touch(ctx context.Context, accessToken string, at time.Time) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	ListActive(ctx context.Context, limit, offset int32) ([]*domain.Session, error)
}
