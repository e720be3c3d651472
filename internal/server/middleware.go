// Package server exposes the identity service over HTTP. Routing uses chi,
// authentication is driven by the gate middleware, and every handler speaks
// the coded JSON error envelope from pkg/autherr.
package server

import (
	"net"
	"net/http"
	"strings"

	"user-identity-service/internal/audit"
	"user-identity-service/internal/auth"
	"user-identity-service/pkg/autherr"
)

// errNoIdentity fires when an admin guard runs without the gate in front of
// it, a routing bug rather than a caller mistake.
func errNoIdentity() error {
	return autherr.New(autherr.KindNoAccessToken, "missing access token")
}

const (
	headerAuthorization = "Authorization"
	headerRefreshToken  = "X-Refresh-Token"
	headerDeviceID      = "X-Device-Id"
	headerAccessToken   = "X-Access-Token"
	bearerPrefix        = "Bearer "
)

// credentialsFrom extracts the token triple from request headers.
func credentialsFrom(r *http.Request) auth.Credentials {
	creds := auth.Credentials{
		RefreshToken: r.Header.Get(headerRefreshToken),
		DeviceID:     r.Header.Get(headerDeviceID),
	}
	if h := r.Header.Get(headerAuthorization); strings.HasPrefix(h, bearerPrefix) {
		creds.AccessToken = strings.TrimPrefix(h, bearerPrefix)
	}
	return creds
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Authenticate resolves the caller through the gate. When the gate rotated
// the session mid-request, the replacement pair is surfaced on the response
// so the client can adopt it before the next call.
func (s *Server) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		creds := credentialsFrom(r)
		id, err := s.gate.Authenticate(r.Context(), creds)
		if err != nil {
			writeError(w, err)
			return
		}

		activeToken := creds.AccessToken
		if id.Rotated {
			activeToken = id.NewAccessToken
			w.Header().Set(headerAccessToken, id.NewAccessToken)
			w.Header().Set(headerRefreshToken, id.NewRefreshToken)

			ev := audit.NewEvent(audit.ActionTokenRotated, id.UserID)
			ev.DeviceID = creds.DeviceID
			ev.IP = clientIP(r)
			s.audit.Emit(r.Context(), ev)
		}

		ctx := auth.WithIdentity(r.Context(), id)
		ctx = auth.WithActiveToken(ctx, activeToken)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin allows only callers holding an admin role.
func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			writeError(w, errNoIdentity())
			return
		}
		if err := s.authz.RequireAdmin(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole allows only callers holding one of the listed admin roles.
func (s *Server) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFrom(r.Context())
			if !ok {
				writeError(w, errNoIdentity())
				return
			}
			if err := s.authz.RequireRole(r.Context(), id, allowed...); err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
