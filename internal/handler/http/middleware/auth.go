package middleware

import (
	"net/http"

	"github.com/flipit/flipit-session-go/internal/domain/auth"
	"github.com/flipit/flipit-session-go/internal/handler/http/response"
)

// AuthRequired rejects anonymous sessions. It must run after Session.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFromContext(r.Context()).Authenticated() {
			response.HandleError(w, auth.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
