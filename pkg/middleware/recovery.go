package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "mise/pkg/errors"
	httputil "mise/pkg/http"
	"mise/pkg/logger"
)

// Recovery converts handler panics into the taxonomy's internal error. The
// panic value and stack land in the log under the request id; the client
// never sees either.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				log.Error("Panic recovered",
					"request_id", requestIDFrom(r),
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)

				err := apperrors.Internal("Unexpected server error", fmt.Errorf("panic: %v", rec))
				if writeErr := httputil.WriteError(w, err); writeErr != nil {
					log.Error("Failed to write panic response", "request_id", requestIDFrom(r), "error", writeErr)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// requestIDFrom reads the id stamped by RequestLogging; empty when the
// request never passed through it.
func requestIDFrom(r *http.Request) string {
	if id, ok := r.Context().Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
