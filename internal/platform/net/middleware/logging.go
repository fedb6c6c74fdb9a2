package middleware

import (
	"net/http"

	"streamtags/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ContextLogger copies the chi request id onto the logger context so logger.C tags lines with it.
// Mount after RequestID
func ContextLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			r = r.WithContext(logger.WithRequest(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
