// Package middleware provides HTTP middleware for the stockboard API
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/R3E-Network/stockboard/internal/httputil"
	"github.com/R3E-Network/stockboard/internal/logging"
)

const bearerPrefix = "Bearer "

// StaticTokenAuth admits requests whose Authorization header carries the one
// configured bearer token.
type StaticTokenAuth struct {
	token  string
	logger *logging.Logger
}

// NewStaticTokenAuth creates the middleware for token.
func NewStaticTokenAuth(token string, logger *logging.Logger) *StaticTokenAuth {
	return &StaticTokenAuth{
		token:  token,
		logger: logger,
	}
}

// Handler returns the middleware handler
func (m *StaticTokenAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok || !m.matches(token) {
			m.reject(w, r, ok)
			return
		}

		ctx := logging.WithClient(r.Context(), "bearer")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *StaticTokenAuth) matches(token string) bool {
	if m.token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(m.token)) == 1
}

func (m *StaticTokenAuth) reject(w http.ResponseWriter, r *http.Request, headerPresent bool) {
	reason := "missing bearer token"
	if headerPresent {
		reason = "token mismatch"
	}

	if m.logger != nil {
		m.logger.LogSecurityEvent(r.Context(), "auth_rejected", map[string]interface{}{
			"path":   r.URL.Path,
			"method": r.Method,
			"reason": reason,
		})
	}
	httputil.Unauthorized(w, r)
}

// bearerToken extracts the token from an Authorization header value. The
// second result is false when the header is absent or not a bearer header.
func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	return header[len(bearerPrefix):], true
}
