package server

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"user-identity-service/internal/audit"
	"user-identity-service/internal/auth"
	"user-identity-service/internal/authz"
	recoveryservice "user-identity-service/internal/recovery/service"
	sessionservice "user-identity-service/internal/session/service"
	userservice "user-identity-service/internal/user/service"
)

// Server wires the services behind the HTTP surface.
type Server struct {
	gate     *auth.Gate
	authz    *authz.Checker
	users    *userservice.Service
	sessions *sessionservice.Service
	recovery *recoveryservice.Service
	audit    audit.Emitter
	db       *sql.DB
}

func New(
	gate *auth.Gate,
	checker *authz.Checker,
	users *userservice.Service,
	sessions *sessionservice.Service,
	recovery *recoveryservice.Service,
	emitter audit.Emitter,
	db *sql.DB,
) *Server {
	return &Server{
		gate:     gate,
		authz:    checker,
		users:    users,
		sessions: sessions,
		recovery: recovery,
		audit:    emitter,
		db:       db,
	}
}

// Routes builds the router. Public routes carry no gate; everything under
// the authenticated group runs through it, and the admin group additionally
// through the policy checker.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/refresh", s.handleRefresh)

	r.Get("/recovery/questions/{userID}", s.handleListQuestions)
	r.Post("/recovery/verify", s.handleVerifyAnswers)

	r.Group(func(r chi.Router) {
		r.Use(s.Authenticate)

		r.Post("/auth/logout", s.handleLogout)

		r.Get("/me", s.handleGetMe)
		r.Patch("/me", s.handleUpdateMe)
		r.Delete("/me", s.handleDeleteMe)
		r.Get("/me/sessions", s.handleMySessions)

		r.Post("/recovery/keys", s.handleRegisterKeys)
		r.Post("/recovery/questions", s.handleAddQuestion)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireAdmin)
			r.Get("/admin/sessions", s.handleListSessions)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.RequireRole("superadmin"))
			r.Post("/admin/sessions/sweep", s.handleSweep)
		})
	})

	return r
}
