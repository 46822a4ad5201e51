package middleware

import (
	"net/http"

	"github.com/asc-academy/evaluation-portal/pkg/logger"

	"github.com/google/uuid"
)

// TraceID assigns every request a trace id, reusing the caller's X-Trace-ID
// when present, and attaches it to the context logger.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "traceID", traceID)

		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
