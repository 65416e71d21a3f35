package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flipit/flipit-session-go/internal/config"
	"github.com/flipit/flipit-session-go/internal/domain/like"
	appHTTP "github.com/flipit/flipit-session-go/internal/handler/http"
	"github.com/flipit/flipit-session-go/internal/pkg/cron"
	"github.com/flipit/flipit-session-go/internal/pkg/database"
	"github.com/flipit/flipit-session-go/internal/pkg/jwt"
	"github.com/flipit/flipit-session-go/internal/pkg/marketplace"
	"github.com/flipit/flipit-session-go/internal/pkg/otel"
	"github.com/flipit/flipit-session-go/internal/pkg/sse"
	"github.com/flipit/flipit-session-go/internal/repository/postgresql"
	likeService "github.com/flipit/flipit-session-go/internal/service/like"
	preferenceService "github.com/flipit/flipit-session-go/internal/service/preference"
	"github.com/go-chi/httplog/v3"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, cfg.OTel, cfg.App.Name, cfg.App.Version)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}

	var backends like.BackendFactory
	switch cfg.Likes.Backend {
	case config.BackendHTTP:
		backends = marketplace.NewClient(cfg.Marketplace).LikesBackend()
	case config.BackendPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		likeRepo := postgresql.NewLikeRepository(db)
		if err := likeRepo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		backends = likeRepo.Backend()
	default:
		return fmt.Errorf("unsupported likes backend: %s", cfg.Likes.Backend)
	}

	hub := sse.NewHub()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.SSEExpiration)

	likeRegistry := likeService.NewRegistry(backends, hub, likeService.Config{
		ToggleTimeout: cfg.Likes.ToggleTimeout,
		StartTimeout:  cfg.Likes.StartTimeout,
	})
	prefService := preferenceService.NewPreferenceService(hub)

	scheduler := cron.NewScheduler()
	cron.NewSessionJobs(likeRegistry, prefService, cfg.Session).RegisterJobs(scheduler)

	likeHandler := appHTTP.NewLikeHandler(likeRegistry)
	preferenceHandler := appHTTP.NewPreferenceHandler(prefService)
	sessionHandler := appHTTP.NewSessionHandler(likeRegistry, prefService, hub, JWTService)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logger,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		},
		JWTService,
		likeHandler,
		preferenceHandler,
		sessionHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Open change streams end when the process is signalled
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	scheduler.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "likes_backend", cfg.Likes.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		scheduler.Stop()
		err := server.Shutdown(shutdownCtx)
		if tErr := shutdownTracing(shutdownCtx); tErr != nil {
			slog.Warn("Tracer shutdown failed", "error", tErr)
		}
		return err
	})

	return g.Wait()
}
