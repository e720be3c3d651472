// Package auth implements the request-time authentication gate: access
// token verification with a silent refresh-rotation fallback on expiry,
// validated against the session store.
package auth

import (
	"context"

	"user-identity-service/internal/security"
	sessiondomain "user-identity-service/internal/session/domain"
	"user-identity-service/pkg/autherr"
)

// Credentials is what a caller presents: the access token is required, the
// refresh token and device id only matter on the expiry fallback path.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	DeviceID     string
}

// Identity is the resolved caller identity handed to downstream handlers.
// When Rotated is set, NewAccessToken/NewRefreshToken carry the replacement
// pair and must be surfaced to the caller.
type Identity struct {
	UserID          string
	UserType        string
	AdminRole       string
	Rotated         bool
	NewAccessToken  string
	NewRefreshToken string
}

// SessionStore is the slice of the session service the gate needs.
type SessionStore interface {
	Rotate(ctx context.Context, refreshToken, deviceID string) (*sessiondomain.Session, error)
	GetActiveByAccessToken(ctx context.Context, accessToken string) (*sessiondomain.Session, error)
	Touch(ctx context.Context, accessToken string) error
}

// Gate authenticates requests against token signatures and session state.
type Gate struct {
	tokens   *security.TokenProvider
	sessions SessionStore
}

// NewGate returns a Gate using the given token provider and session store.
func NewGate(tokens *security.TokenProvider, sessions SessionStore) *Gate {
	return &Gate{tokens: tokens, sessions: sessions}
}

// Authenticate runs the per-request state machine:
//
//	no access token                      → NoAccessToken
//	bad signature / malformed            → AccessTokenInvalid
//	expired, refresh or device missing   → TokenExpiredNoRefresh
//	expired, rotation does not match     → RefreshTokenInvalid
//	no active session row for the token  → SessionInvalid
//
// On success the matching session row is touched and the identity from the
// verified claims is returned; a rotation that happened on the way is
// reflected in the Rotated fields.
func (g *Gate) Authenticate(ctx context.Context, creds Credentials) (*Identity, error) {
	if creds.AccessToken == "" {
		return nil, autherr.New(autherr.KindNoAccessToken, "missing access token")
	}

	activeToken := creds.AccessToken
	var identity Identity

	claims, err := g.tokens.ValidateAccess(creds.AccessToken)
	switch err {
	case nil:
	case security.ErrTokenExpired:
		rotated, rerr := g.refresh(ctx, creds)
		if rerr != nil {
			return nil, rerr
		}
		// Internal invariant: a token the rotation just issued verifies.
		claims, rerr = g.tokens.ValidateAccess(rotated.AccessToken)
		if rerr != nil {
			return nil, autherr.Wrap(autherr.KindInternal, "rotated token failed verification", rerr)
		}
		activeToken = rotated.AccessToken
		identity.Rotated = true
		identity.NewAccessToken = rotated.AccessToken
		identity.NewRefreshToken = rotated.RefreshToken
	default:
		return nil, autherr.New(autherr.KindAccessTokenInvalid, "invalid access token")
	}

	sess, err := g.sessions.GetActiveByAccessToken(ctx, activeToken)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, autherr.New(autherr.KindSessionInvalid, "no active session")
	}
	if err := g.sessions.Touch(ctx, activeToken); err != nil {
		return nil, err
	}

	identity.UserID = claims.Subject
	identity.UserType = claims.UserType
	identity.AdminRole = claims.AdminRole
	return &identity, nil
}

func (g *Gate) refresh(ctx context.Context, creds Credentials) (*sessiondomain.Session, error) {
	if creds.RefreshToken == "" || creds.DeviceID == "" {
		return nil, autherr.New(autherr.KindTokenExpiredNoRefresh, "access token expired and no refresh credentials")
	}
	sess, err := g.sessions.Rotate(ctx, creds.RefreshToken, creds.DeviceID)
	if err != nil {
		return nil, err
	}
	return sess, nil
}
