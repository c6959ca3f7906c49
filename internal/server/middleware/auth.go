package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/waypoint/internal/server/response"
)

// AuthConfig protects the server's operational endpoints with a shared
// token. Pipeline pages are never protected.
type AuthConfig struct {
	Token     string
	Protected []string
}

// Auth rejects requests under a protected path prefix that do not carry
// the token as "Authorization: Bearer <token>" or a token query parameter.
// An empty token disables the check.
func Auth(config AuthConfig, logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Token == "" || !isProtected(r.URL.Path, config.Protected) {
				next.ServeHTTP(w, r)
				return
			}
			token := bearer(r)
			if subtle.ConstantTimeCompare([]byte(token), []byte(config.Token)) != 1 {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Bool("token_provided", token != "").
					Msg("Monitor authentication failed")
				response.Unauthorized(w, "Invalid or missing token", "Provide the monitor token as a Bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isProtected(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// bearer reads the token from the Authorization header, falling back to
// the query string because browsers cannot set headers on EventSource or
// WebSocket connections.
func bearer(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return token
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
