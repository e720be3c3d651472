package server

import (
	"net/http"
	"strconv"
	"time"

	"user-identity-service/internal/audit"
	"user-identity-service/internal/auth"
	sessiondomain "user-identity-service/internal/session/domain"
)

// sessionResponse deliberately omits the token columns.
type sessionResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	DeviceID         string    `json:"device_id"`
	IPAddress        string    `json:"ip_address,omitempty"`
	UserAgent        string    `json:"user_agent,omitempty"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	LastActivityAt   time.Time `json:"last_activity_at"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

func sessionResponsesFrom(sessions []*sessiondomain.Session) []sessionResponse {
	out := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionResponse{
			ID:               sess.ID,
			UserID:           sess.UserID,
			DeviceID:         sess.DeviceID,
			IPAddress:        sess.IPAddress,
			UserAgent:        sess.UserAgent,
			Active:           sess.Active,
			CreatedAt:        sess.CreatedAt,
			LastActivityAt:   sess.LastActivityAt,
			AccessExpiresAt:  sess.AccessExpiresAt,
			RefreshExpiresAt: sess.RefreshExpiresAt,
		})
	}
	return out
}

func (s *Server) handleMySessions(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeError(w, errNoIdentity())
		return
	}
	sessions, err := s.sessions.ListByUser(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessionResponsesFrom(sessions)})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	sessions, err := s.sessions.ListActive(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessionResponsesFrom(sessions)})
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	swept, err := s.sessions.SweepExpired(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	id, _ := auth.IdentityFrom(r.Context())
	ev := audit.NewEvent(audit.ActionSessionSweep, id.UserID)
	ev.Detail = map[string]string{"swept": strconv.FormatInt(swept, 10)}
	s.audit.Emit(r.Context(), ev)

	writeJSON(w, http.StatusOK, map[string]int64{"swept": swept})
}

func queryInt(r *http.Request, key string, fallback int32) int32 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n < 0 {
		return fallback
	}
	return int32(n)
}
