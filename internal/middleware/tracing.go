// Package middleware provides HTTP middleware for the stockboard API
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/stockboard/internal/httputil"
	"github.com/R3E-Network/stockboard/internal/logging"
)

// maxTraceIDLen bounds trace ids accepted from callers.
const maxTraceIDLen = 128

// quietPaths are polled by health checks and scrapers. They log at debug
// level unless they fail.
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// TracingMiddleware tags every request with a trace id and logs it once the
// response status is known.
type TracingMiddleware struct {
	logger *logging.Logger
	now    func() time.Time
}

// NewTracingMiddleware creates a new tracing middleware
func NewTracingMiddleware(logger *logging.Logger) *TracingMiddleware {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &TracingMiddleware{logger: logger, now: time.Now}
}

// Handler returns the tracing middleware handler
func (m *TracingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := m.now()
		traceID := requestTraceID(r)
		w.Header().Set(httputil.TraceIDHeader, traceID)

		ctx := logging.WithTraceID(r.Context(), traceID)
		rec := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		m.finish(ctx, r, rec.statusCode, m.now().Sub(start))
	})
}

func (m *TracingMiddleware) finish(ctx context.Context, r *http.Request, status int, elapsed time.Duration) {
	if quietPaths[r.URL.Path] && status < http.StatusBadRequest {
		m.logger.WithContext(ctx).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": status,
		}).Debug("HTTP request")
		return
	}
	m.logger.LogRequest(ctx, r.Method, r.URL.Path, status, elapsed)
}

// requestTraceID returns the caller's trace id when it is a short printable
// token and a fresh one otherwise.
func requestTraceID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(httputil.TraceIDHeader))
	if id == "" || len(id) > maxTraceIDLen {
		return logging.NewTraceID()
	}
	if strings.ContainsFunc(id, func(c rune) bool { return c <= ' ' || c > '~' }) {
		return logging.NewTraceID()
	}
	return id
}
