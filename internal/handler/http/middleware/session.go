package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/flipit/flipit-session-go/internal/domain/auth"
	"github.com/flipit/flipit-session-go/internal/handler/http/response"
	"github.com/flipit/flipit-session-go/internal/pkg/jwt"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type sessionKey struct{}

// Session resolves the caller's session from the token verified by
// jwtauth.Verifier. Requests without a token continue as anonymous; a token
// that is present but invalid is rejected.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())

		if errors.Is(err, jwtauth.ErrNoTokenFound) || (err == nil && token == nil) {
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), auth.Session{})))
			return
		}
		if err != nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		tokenType, ok := claims["type"].(string)
		if !ok || tokenType != jwt.TypeAccess {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}
		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		raw := jwtauth.TokenFromHeader(r)
		if raw == "" {
			raw = jwtauth.TokenFromCookie(r)
		}

		httplog.SetAttrs(r.Context(), slog.String("user.id", userID))
		session := auth.Session{UserID: userID, Token: raw}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// WithSession stores session in ctx
func WithSession(ctx context.Context, session auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session stored by Session, or an anonymous one
func SessionFromContext(ctx context.Context) auth.Session {
	session, _ := ctx.Value(sessionKey{}).(auth.Session)
	return session
}
