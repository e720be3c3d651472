package domain

import (
	"errors"
	"time"
)

// User is the core account entity. Email and Phone are plaintext in memory
// and encrypted at rest by the repository.
type User struct {
	ID           string
	Email        string
	Phone        string // optional
	PasswordHash string
	UserType     UserType
	AdminRole    AdminRole // empty for non-admin accounts
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserType string

const (
	UserTypeStandard UserType = "standard"
	UserTypeService  UserType = "service"
)

type AdminRole string

const (
	AdminRoleNone       AdminRole = ""
	AdminRoleSupport    AdminRole = "support"
	AdminRoleSuperadmin AdminRole = "superadmin"
)

// Validate validates the user for persistence. Returns an error describing
// the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.UserType == "" {
		u.UserType = UserTypeStandard
	}
	switch u.AdminRole {
	case AdminRoleNone, AdminRoleSupport, AdminRoleSuperadmin:
	default:
		return errors.New("unknown admin role")
	}
	return nil
}

// IsAdmin reports whether the user carries any admin role.
func (u *User) IsAdmin() bool { return u.AdminRole != AdminRoleNone }
