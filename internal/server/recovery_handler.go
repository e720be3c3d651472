package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"user-identity-service/internal/audit"
	"user-identity-service/internal/auth"
	recoveryservice "user-identity-service/internal/recovery/service"
	"user-identity-service/pkg/autherr"
)

type addQuestionRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type verifyRequest struct {
	UserID  string                   `json:"user_id"`
	Answers []recoveryservice.Answer `json:"answers"`
}

func (s *Server) handleRegisterKeys(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeError(w, errNoIdentity())
		return
	}
	if err := s.recovery.RegisterKeys(r.Context(), id.UserID); err != nil {
		writeError(w, err)
		return
	}

	ev := audit.NewEvent(audit.ActionRecoveryEnroll, id.UserID)
	ev.IP = clientIP(r)
	s.audit.Emit(r.Context(), ev)

	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

func (s *Server) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeError(w, errNoIdentity())
		return
	}
	var req addQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	view, err := s.recovery.AddQuestion(r.Context(), id.UserID, req.Question, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, autherr.New(autherr.KindInvalidArgument, "missing user id"))
		return
	}
	views, err := s.recovery.Questions(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": views})
}

func (s *Server) handleVerifyAnswers(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.UserID == "" {
		writeError(w, autherr.New(autherr.KindInvalidArgument, "missing user id"))
		return
	}
	if err := s.recovery.VerifyAnswers(r.Context(), req.UserID, req.Answers); err != nil {
		ev := audit.NewEvent(audit.ActionRecoveryFailed, req.UserID)
		ev.IP = clientIP(r)
		s.audit.Emit(r.Context(), ev)
		writeError(w, err)
		return
	}

	ev := audit.NewEvent(audit.ActionRecoveryVerify, req.UserID)
	ev.IP = clientIP(r)
	s.audit.Emit(r.Context(), ev)

	writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
}
