package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/flipit/flipit-session-go/internal/config"
	"github.com/flipit/flipit-session-go/internal/domain/like"
	"github.com/flipit/flipit-session-go/internal/domain/preference"
)

type SessionJobs struct {
	registry    like.Registry
	prefService preference.Service
	cfg         config.SessionConfig
}

func NewSessionJobs(registry like.Registry, prefService preference.Service, cfg config.SessionConfig) *SessionJobs {
	return &SessionJobs{
		registry:    registry,
		prefService: prefService,
		cfg:         cfg,
	}
}

func (j *SessionJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("sweep_idle_sessions", j.cfg.SweepInterval, j.SweepIdleSessions)
	if j.cfg.ReconcileInterval > 0 {
		scheduler.AddJob("reconcile_liked_sets", j.cfg.ReconcileInterval, j.ReconcileLikedSets)
	}
}

// SweepIdleSessions drops like and preference state of idle users
func (j *SessionJobs) SweepIdleSessions(ctx context.Context) error {
	likes := j.registry.Sweep(j.cfg.IdleTimeout)
	prefs := j.prefService.Sweep(j.cfg.IdleTimeout)

	slog.Debug("Cron: Idle sessions swept",
		"like_sessions", likes,
		"preference_sessions", prefs,
		"remaining", j.registry.Len(),
	)
	return nil
}

// ReconcileLikedSets reloads every live liked set from the backend
func (j *SessionJobs) ReconcileLikedSets(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.cfg.ReconcileInterval)
	defer cancel()

	start := time.Now()
	if err := j.registry.RefreshAll(ctx); err != nil {
		return err
	}
	slog.Debug("Cron: Liked sets reconciled", "sessions", j.registry.Len(), "duration", time.Since(start))
	return nil
}
