// Package middleware carries the local API's request plumbing: request ids,
// zerolog access logging, and CORS for the browser-driven flows.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey int

const requestIDCtxKey ctxKey = iota

// RequestID tags every request with an id and echoes it in the response
// header. An inbound X-Request-ID is kept as-is, so agent log lines stay
// correlatable with the backend's.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDCtxKey, rid)))
	})
}

// RequestIDFromContext returns the request id RequestID stored, or "".
func RequestIDFromContext(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDCtxKey).(string)
	return rid
}
