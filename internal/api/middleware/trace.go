package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const maxTraceIDLength = 64

// TraceMiddleware propagates the caller's X-Trace-ID (or X-Request-ID) and
// mints one when absent or malformed.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = r.Header.Get("X-Request-ID")
		}
		if !validTraceID(traceID) {
			traceID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), traceContextKey, traceID)
		ctx = context.WithValue(ctx, requestInfoContextKey, &requestInfo{})
		w.Header().Set("X-Trace-ID", traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validTraceID accepts short ids made of URL-safe characters.
func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

// requestInfo is filled in by inner middleware so outer middleware can log
// who made the request after the handler returns.
type requestInfo struct {
	principal string
}

func notePrincipal(ctx context.Context, principal string) {
	if info, ok := ctx.Value(requestInfoContextKey).(*requestInfo); ok {
		info.principal = principal
	}
}

func principalFromInfo(ctx context.Context) string {
	if info, ok := ctx.Value(requestInfoContextKey).(*requestInfo); ok {
		return info.principal
	}
	return ""
}
