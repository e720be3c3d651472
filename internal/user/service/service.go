// Package service implements account registration, login, and profile CRUD
// on top of the user repository and session lifecycle.
package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"user-identity-service/internal/security"
	sessiondomain "user-identity-service/internal/session/domain"
	"user-identity-service/internal/user/domain"
	"user-identity-service/internal/user/repository"
	"user-identity-service/pkg/autherr"
)

// Sessions is the slice of the session service the account flows need.
type Sessions interface {
	Create(ctx context.Context, userID, accessToken, refreshToken, deviceID, ip, userAgent string) (*sessiondomain.Session, error)
	InvalidateAllByUser(ctx context.Context, userID string) error
}

// LoginResult carries the outcome of a successful login.
type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Service implements the account flows.
type Service struct {
	users    repository.Repository
	sessions Sessions
	hasher   *security.Hasher
	tokens   *security.TokenProvider
}

// NewService returns an account Service with the given dependencies.
func NewService(users repository.Repository, sessions Sessions, hasher *security.Hasher, tokens *security.TokenProvider) *Service {
	return &Service{users: users, sessions: sessions, hasher: hasher, tokens: tokens}
}

// Register creates a user with a hashed password. Admin roles are never
// assignable through registration.
func (s *Service) Register(ctx context.Context, email, password, phone string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < 8 {
		return nil, autherr.New(autherr.KindInvalidArgument, "password must be at least 8 characters")
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	if existing != nil {
		return nil, autherr.New(autherr.KindEmailRegistered, "email already registered")
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, autherr.Internal(err)
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Phone:        strings.TrimSpace(phone),
		PasswordHash: hash,
		UserType:     domain.UserTypeStandard,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, autherr.Wrap(autherr.KindInvalidArgument, err.Error(), err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, autherr.Internal(err)
	}
	return user, nil
}

// Login verifies the password, issues a token pair, and creates the session
// row binding it to the device. Wrong email and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password, deviceID, ip, userAgent string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" || deviceID == "" {
		return nil, autherr.New(autherr.KindLoginFailed, "invalid credentials")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	if user == nil {
		return nil, autherr.New(autherr.KindLoginFailed, "invalid credentials")
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, autherr.New(autherr.KindLoginFailed, "invalid credentials")
	}
	accessToken, expiresAt, err := s.tokens.IssueAccess(user.ID, string(user.UserType), string(user.AdminRole))
	if err != nil {
		return nil, autherr.Internal(err)
	}
	refreshToken, err := s.tokens.IssueRefresh()
	if err != nil {
		return nil, autherr.Internal(err)
	}
	if _, err := s.sessions.Create(ctx, user.ID, accessToken, refreshToken, deviceID, ip, userAgent); err != nil {
		return nil, err
	}
	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// Get returns the user by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	if user == nil {
		return nil, autherr.New(autherr.KindUserNotFound, "user not found")
	}
	return user, nil
}

// UpdateProfile updates the user's contact fields.
func (s *Service) UpdateProfile(ctx context.Context, id, email, phone string) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if email != "" {
		email = strings.TrimSpace(strings.ToLower(email))
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != user.Email {
			existing, err := s.users.GetByEmail(ctx, email)
			if err != nil {
				return nil, autherr.Internal(err)
			}
			if existing != nil {
				return nil, autherr.New(autherr.KindEmailRegistered, "email already registered")
			}
		}
		user.Email = email
	}
	if phone != "" {
		user.Phone = strings.TrimSpace(phone)
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, autherr.Internal(err)
	}
	return user, nil
}

// Delete removes the account. Sessions, recovery keys, and questions go
// with it via cascade; active sessions are invalidated first so any token
// still in flight dies immediately.
func (s *Service) Delete(ctx context.Context, id string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.sessions.InvalidateAllByUser(ctx, user.ID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return autherr.Internal(err)
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	if email == "" || !emailPattern.MatchString(email) {
		return autherr.New(autherr.KindInvalidArgument, "invalid email format")
	}
	return nil
}
