// Package service implements the session lifecycle: creation with a role
// snapshot, single-use refresh rotation, invalidation, the expiry sweep, and
// activity tracking.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"user-identity-service/internal/security"
	"user-identity-service/internal/session/domain"
	"user-identity-service/internal/session/repository"
	userdomain "user-identity-service/internal/user/domain"
	"user-identity-service/pkg/autherr"
)

// UserRepo is the minimal user repository needed for the role snapshot at
// session creation.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// Service wraps the session repository with token issuance and the
// lifecycle rules.
type Service struct {
	repo       repository.Repository
	users      UserRepo
	tokens     *security.TokenProvider
	refreshTTL time.Duration
}

// NewService returns a session Service. The access TTL is carried by the
// token provider; refreshTTL bounds the whole session.
func NewService(repo repository.Repository, users UserRepo, tokens *security.TokenProvider, refreshTTL time.Duration) *Service {
	return &Service{repo: repo, users: users, tokens: tokens, refreshTTL: refreshTTL}
}

// Create inserts a session for the given user and token pair. The user's
// current type and admin role are snapshotted onto the row; rotation reuses
// the snapshot and never re-reads the user.
func (s *Service) Create(ctx context.Context, userID, accessToken, refreshToken, deviceID, ip, userAgent string) (*domain.Session, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	if user == nil {
		return nil, autherr.New(autherr.KindUserNotFound, "user not found")
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		ID:               uuid.New().String(),
		UserID:           userID,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		GenerationID:     uuid.New().String(),
		DeviceID:         deviceID,
		IPAddress:        ip,
		UserAgent:        userAgent,
		UserType:         string(user.UserType),
		AdminRole:        string(user.AdminRole),
		Active:           true,
		CreatedAt:        now,
		LastActivityAt:   now,
		AccessExpiresAt:  now.Add(s.tokens.AccessTTL()),
		RefreshExpiresAt: now.Add(s.refreshTTL),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, autherr.Internal(err)
	}
	return sess, nil
}

// Rotate exchanges a valid (refreshToken, deviceID) pair for a fresh token
// pair, updating the row in place with a new generation id. A wrong token,
// wrong device, expired, or already-consumed pair all fail with
// RefreshTokenInvalid; the caller cannot tell which factor failed.
func (s *Service) Rotate(ctx context.Context, refreshToken, deviceID string) (*domain.Session, error) {
	if refreshToken == "" || deviceID == "" {
		return nil, autherr.New(autherr.KindRefreshTokenInvalid, "invalid refresh token")
	}
	now := time.Now().UTC()
	sess, err := s.repo.Rotate(ctx, refreshToken, deviceID, now, func(current *domain.Session) (*repository.RotatedTokens, error) {
		// Role snapshot comes from the locked row, not a fresh user read.
		access, accessExp, err := s.tokens.IssueAccess(current.UserID, current.UserType, current.AdminRole)
		if err != nil {
			return nil, err
		}
		refresh, err := s.tokens.IssueRefresh()
		if err != nil {
			return nil, err
		}
		return &repository.RotatedTokens{
			AccessToken:      access,
			RefreshToken:     refresh,
			GenerationID:     uuid.New().String(),
			RotatedAt:        now,
			AccessExpiresAt:  accessExp,
			RefreshExpiresAt: now.Add(s.refreshTTL),
		}, nil
	})
	if err != nil {
		return nil, autherr.Internal(err)
	}
	if sess == nil {
		return nil, autherr.New(autherr.KindRefreshTokenInvalid, "invalid refresh token")
	}
	return sess, nil
}

// GetActiveByAccessToken returns the active, unexpired session holding the
// access token, or nil when no such row exists.
func (s *Service) GetActiveByAccessToken(ctx context.Context, accessToken string) (*domain.Session, error) {
	sess, err := s.repo.GetActiveByAccessToken(ctx, accessToken, time.Now().UTC())
	if err != nil {
		return nil, autherr.Internal(err)
	}
	return sess, nil
}

// Invalidate deactivates the session holding accessToken. Idempotent.
func (s *Service) Invalidate(ctx context.Context, accessToken string) error {
	if err := s.repo.Invalidate(ctx, accessToken); err != nil {
		return autherr.Internal(err)
	}
	return nil
}

// InvalidateAllByUser deactivates every session of the user.
func (s *Service) InvalidateAllByUser(ctx context.Context, userID string) error {
	if err := s.repo.InvalidateAllByUser(ctx, userID); err != nil {
		return autherr.Internal(err)
	}
	return nil
}

// SweepExpired deactivates all sessions past their refresh expiry and
// returns the number of rows swept.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.SweepExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, autherr.Internal(err)
	}
	return n, nil
}

// Touch records activity on the session holding accessToken.
func (s *Service) Touch(ctx context.Context, accessToken string) error {
	if err := s.repo.Touch(ctx, accessToken, time.Now().UTC()); err != nil {
		return autherr.Internal(err)
	}
	return nil
}

// ListByUser returns all sessions of the user, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	out, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	return out, nil
}

// ListActive returns active sessions with limit and offset, newest first.
func (s *Service) ListActive(ctx context.Context, limit, offset int32) ([]*domain.Session, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	out, err := s.repo.ListActive(ctx, limit, offset)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	return out, nil
}
