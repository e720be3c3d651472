package server

import (
	"encoding/json"
	"net/http"
	"time"

	"user-identity-service/internal/audit"
	"user-identity-service/internal/auth"
	"user-identity-service/pkg/autherr"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return autherr.Wrap(autherr.KindInvalidArgument, "malformed request body", err)
	}
	return nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	u, err := s.users.Register(r.Context(), req.Email, req.Password, req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponseFrom(u))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	deviceID := r.Header.Get(headerDeviceID)
	ip := clientIP(r)

	res, err := s.users.Login(r.Context(), req.Email, req.Password, deviceID, ip, r.UserAgent())
	if err != nil {
		ev := audit.NewEvent(audit.ActionLoginFailed, "")
		ev.DeviceID = deviceID
		ev.IP = ip
		s.audit.Emit(r.Context(), ev)
		writeError(w, err)
		return
	}

	ev := audit.NewEvent(audit.ActionLogin, res.User.ID)
	ev.DeviceID = deviceID
	ev.IP = ip
	s.audit.Emit(r.Context(), ev)

	writeJSON(w, http.StatusOK, tokenPairResponse{
		UserID:       res.User.ID,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
	DeviceID     string `json:"device_id"`
}

// handleRefresh rotates a session explicitly, outside the silent gate path.
// Credentials come from the X-Refresh-Token and X-Device-Id headers, with
// body fields as a fallback.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := r.Header.Get(headerRefreshToken)
	deviceID := r.Header.Get(headerDeviceID)
	if refreshToken == "" || deviceID == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			if refreshToken == "" {
				refreshToken = req.RefreshToken
			}
			if deviceID == "" {
				deviceID = req.DeviceID
			}
		}
	}
	if refreshToken == "" || deviceID == "" {
		writeError(w, autherr.New(autherr.KindRefreshTokenInvalid, "missing refresh token or device id"))
		return
	}
	sess, err := s.sessions.Rotate(r.Context(), refreshToken, deviceID)
	if err != nil {
		writeError(w, err)
		return
	}

	ev := audit.NewEvent(audit.ActionTokenRotated, sess.UserID)
	ev.DeviceID = deviceID
	ev.IP = clientIP(r)
	s.audit.Emit(r.Context(), ev)

	writeJSON(w, http.StatusOK, tokenPairResponse{
		UserID:       sess.UserID,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.AccessExpiresAt,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	token, ok := auth.ActiveTokenFrom(r.Context())
	if !ok {
		writeError(w, errNoIdentity())
		return
	}
	if err := s.sessions.Invalidate(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}

	ev := audit.NewEvent(audit.ActionLogout, id.UserID)
	ev.IP = clientIP(r)
	s.audit.Emit(r.Context(), ev)

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
