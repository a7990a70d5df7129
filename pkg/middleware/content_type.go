package middleware

import (
	"net/http"
	"strings"

	httputil "mise/pkg/http"
	"mise/pkg/logger"
)

const defaultContentType = "application/json"

// ContentTypeValidation rejects body-carrying requests whose media type is
// not on the accepted list. With no explicit list only JSON passes, which is
// all the booking API speaks.
func ContentTypeValidation(log *logger.Logger, accepted ...string) func(http.Handler) http.Handler {
	if len(accepted) == 0 {
		accepted = []string{defaultContentType}
	}

	allowed := make(map[string]bool, len(accepted))
	for _, ct := range accepted {
		allowed[strings.ToLower(strings.TrimSpace(ct))] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if carriesBody(r.Method) {
				mediaType := mediaTypeOf(r.Header.Get("Content-Type"))
				if !allowed[mediaType] {
					log.Warn("Rejected unsupported media type",
						"request_id", requestIDFrom(r),
						"content_type", mediaType,
						"method", r.Method,
						"path", r.URL.Path,
					)
					writeErr := httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.ErrorResponse{
						Code:  "UNSUPPORTED_MEDIA_TYPE",
						Error: "Content-Type must be one of: " + strings.Join(accepted, ", "),
					})
					if writeErr != nil {
						log.Error("Failed to write media type response", "error", writeErr)
					}
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func carriesBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// mediaTypeOf strips parameters such as charset and lowercases the type.
func mediaTypeOf(header string) string {
	if i := strings.IndexByte(header, ';'); i >= 0 {
		header = header[:i]
	}
	return strings.ToLower(strings.TrimSpace(header))
}
