package http

import (
	"log/slog"
	"net/http"

	"github.com/flipit/flipit-session-go/internal/handler/http/middleware"
	"github.com/flipit/flipit-session-go/internal/handler/http/response"
	"github.com/flipit/flipit-session-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig holds router level settings
type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	likeHandler LikeHandler,
	preferenceHandler PreferenceHandler,
	sessionHandler SessionHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "traceparent", "tracestate"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(middleware.Trace)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Stream authenticates with its own short-lived token
		r.Get("/events/stream", sessionHandler.Stream)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.Session)

			// Anonymous sessions are served by the coordinator itself
			r.Route("/likes", func(r chi.Router) {
				r.Get("/", likeHandler.List)
				r.Post("/refresh", likeHandler.Refresh)
				r.Post("/status", likeHandler.BulkStatus)
				r.Route("/{itemID}", func(r chi.Router) {
					r.Get("/", likeHandler.Status)
					r.Post("/toggle", likeHandler.Toggle)
				})
			})

			// Requires authentication
			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthRequired)

				r.Route("/preferences/notifications", func(r chi.Router) {
					r.Get("/", preferenceHandler.Get)
					r.Post("/reset", preferenceHandler.Reset)
					r.Put("/{key}", preferenceHandler.Toggle)
				})

				r.Post("/session/end", sessionHandler.End)
				r.Get("/events/token", sessionHandler.EventToken)
			})
		})
	})
	return r
}
