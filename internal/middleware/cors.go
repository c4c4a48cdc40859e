package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, X-Trace-ID"
	corsMaxAge       = "3600"
)

// CORSMiddleware answers preflights and tags responses for allowed origins.
// Origins match exactly; "*" allows any origin.
type CORSMiddleware struct {
	origins  map[string]struct{}
	wildcard bool
}

// NewCORSMiddleware creates a new CORS middleware
func NewCORSMiddleware(allowedOrigins []string) *CORSMiddleware {
	m := &CORSMiddleware{origins: make(map[string]struct{}, len(allowedOrigins))}
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch origin {
		case "":
		case "*":
			m.wildcard = true
		default:
			m.origins[origin] = struct{}{}
		}
	}
	return m
}

// Handler returns the CORS middleware handler
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && m.allowed(origin) {
			m.writeHeaders(w.Header(), origin)
		}
		if isPreflight(r) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AllowsRequest reports whether r may be served cross-origin. Requests
// without an Origin header are always allowed.
func (m *CORSMiddleware) AllowsRequest(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || m.allowed(origin)
}

func (m *CORSMiddleware) allowed(origin string) bool {
	if m.wildcard {
		return true
	}
	_, ok := m.origins[origin]
	return ok
}

func (m *CORSMiddleware) writeHeaders(h http.Header, origin string) {
	if m.wildcard {
		h.Set("Access-Control-Allow-Origin", "*")
	} else {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
	}
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
	h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	h.Set("Access-Control-Expose-Headers", "X-Trace-ID")
	h.Set("Access-Control-Max-Age", corsMaxAge)
}

// isPreflight reports whether r is a CORS preflight rather than a plain
// OPTIONS request.
func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}
