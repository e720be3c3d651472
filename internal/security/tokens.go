package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenInvalid is returned when a token is malformed or its signature
	// does not verify.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when a token is well formed and correctly
	// signed but past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// AccessClaims holds JWT claims for the access token: the user identity plus
// the role snapshot taken from the session row.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserType  string `json:"user_type"`
	AdminRole string `json:"admin_role,omitempty"`
}

// TokenProvider issues and validates HS256 access tokens and generates
// opaque refresh tokens. The signing secret and TTL come from configuration.
type TokenProvider struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
}

// NewTokenProvider returns a TokenProvider signing with the given shared
// secret. issuer is set on claims and checked on validation.
func NewTokenProvider(secret []byte, issuer string, accessTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		secret:    secret,
		issuer:    issuer,
		accessTTL: accessTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (p *TokenProvider) AccessTTL() time.Duration { return p.accessTTL }

// IssueAccess issues a short-lived access JWT carrying the user id and role
// snapshot. The jti makes every issued token distinct; session rows key on
// the token value, so two logins in the same second must not collide.
// Returns the token string and its expiration time.
func (p *TokenProvider) IssueAccess(userID, userType, adminRole string) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserType:  userType,
		AdminRole: adminRole,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(p.secret)
	return token, expiresAt, err
}

// IssueRefresh returns a high-entropy opaque refresh token. The token
// carries no claims; it is only meaningful against the session row that
// stores it.
func (p *TokenProvider) IssueRefresh() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ValidateAccess parses and validates the access token (signature, exp,
// iss). Returns the claims on success; ErrTokenExpired when the only defect
// is expiry; ErrTokenInvalid for anything else.
func (p *TokenProvider) ValidateAccess(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return p.secret, nil
	})
	if err != nil {
		// Expiry is only reported for a verified signature; a token signed
		// with a different secret must never map to expired.
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Issuer != p.issuer {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
