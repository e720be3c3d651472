package domain

import "time"

// Session binds one authenticated user/device pairing to its current token
// pair. UserType and AdminRole are a role snapshot denormalized from the
// user at creation and reused verbatim on rotation; role changes take
// effect only at the next login.
type Session struct {
	ID               string
	UserID           string
	AccessToken      string
	RefreshToken     string
	GenerationID     string // rotated on every refresh
	DeviceID         string
	IPAddress        string
	UserAgent        string
	UserType         string
	AdminRole        string
	Active           bool
	CreatedAt        time.Time
	LastActivityAt   time.Time
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
