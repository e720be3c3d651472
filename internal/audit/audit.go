// Package audit emits best-effort security audit events: logins, logouts,
// rotations, sweeps, and failed verification attempts. Failures to emit are
// logged and never affect the caller.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action names carried on audit events.
const (
	ActionLogin          = "login"
	ActionLoginFailed    = "login_failed"
	ActionLogout         = "logout"
	ActionTokenRotated   = "token_rotated"
	ActionSessionSweep   = "session_sweep"
	ActionRecoveryEnroll = "recovery_enroll"
	ActionRecoveryVerify = "recovery_verify"
	ActionRecoveryFailed = "recovery_verify_failed"
	ActionUserDeleted    = "user_deleted"
)

// Event is one audit record. UserID may be empty for anonymous failures.
type Event struct {
	ID       string            `json:"id"`
	Action   string            `json:"action"`
	UserID   string            `json:"user_id,omitempty"`
	DeviceID string            `json:"device_id,omitempty"`
	IP       string            `json:"ip,omitempty"`
	At       time.Time         `json:"at"`
	Detail   map[string]string `json:"detail,omitempty"`
}

// Emitter emits audit events. Implementations are best-effort.
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// NewEvent returns an Event stamped with an id and the current time.
func NewEvent(action, userID string) Event {
	return Event{
		ID:     uuid.New().String(),
		Action: action,
		UserID: userID,
		At:     time.Now().UTC(),
	}
}
