package server

import (
	"net/http"
	"time"

	"user-identity-service/internal/audit"
	"user-identity-service/internal/auth"
	userdomain "user-identity-service/internal/user/domain"
)

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	UserType  string    `json:"user_type"`
	AdminRole string    `json:"admin_role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func userResponseFrom(u *userdomain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Phone:     u.Phone,
		UserType:  string(u.UserType),
		AdminRole: string(u.AdminRole),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type updateProfileRequest struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeError(w, errNoIdentity())
		return
	}
	u, err := s.users.Get(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponseFrom(u))
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeError(w, errNoIdentity())
		return
	}
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	u, err := s.users.UpdateProfile(r.Context(), id.UserID, req.Email, req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponseFrom(u))
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeError(w, errNoIdentity())
		return
	}
	if err := s.users.Delete(r.Context(), id.UserID); err != nil {
		writeError(w, err)
		return
	}

	ev := audit.NewEvent(audit.ActionUserDeleted, id.UserID)
	ev.IP = clientIP(r)
	s.audit.Emit(r.Context(), ev)

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
