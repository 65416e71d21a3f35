package like

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/flipit/flipit-session-go/internal/domain/auth"
	"github.com/flipit/flipit-session-go/internal/domain/like"
	"github.com/flipit/flipit-session-go/internal/pkg/sse"
	"golang.org/x/sync/singleflight"
)

// pendingStart marks a session start in flight; End sets ended so the
// loaded set is discarded instead of stored.
type pendingStart struct {
	ended bool
}

type registry struct {
	mu           sync.Mutex
	coordinators map[string]*coordinator
	starting     map[string]*pendingStart
	anonymous    *coordinator
	starts       singleflight.Group

	factory like.BackendFactory
	pub     sse.Publisher
	cfg     Config
}

// NewRegistry creates a registry that builds a backend per user session with factory
func NewRegistry(factory like.BackendFactory, pub sse.Publisher, cfg Config) like.Registry {
	if pub == nil {
		pub = sse.Discard
	}
	cfg = cfg.withDefaults()
	return &registry{
		coordinators: make(map[string]*coordinator),
		starting:     make(map[string]*pendingStart),
		anonymous:    newCoordinator(auth.Session{}, nil, pub, cfg),
		factory:      factory,
		pub:          pub,
		cfg:          cfg,
	}
}

// Acquire returns the coordinator of session, starting it with a full
// refresh the first time the user is seen
func (r *registry) Acquire(ctx context.Context, session auth.Session) (like.Coordinator, error) {
	if !session.Authenticated() {
		return r.anonymous, nil
	}

	if c := r.lookup(session); c != nil {
		return c, nil
	}

	c, err := r.start(ctx, session)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Reload refreshes the coordinator of session. A session seen for the first
// time is started instead, which already loads the full set.
func (r *registry) Reload(ctx context.Context, session auth.Session) (like.Coordinator, error) {
	if !session.Authenticated() {
		if err := r.anonymous.Refresh(ctx); err != nil {
			return nil, err
		}
		return r.anonymous, nil
	}

	if c := r.lookup(session); c != nil {
		if err := c.Refresh(ctx); err != nil {
			return nil, err
		}
		return c, nil
	}

	c, err := r.start(ctx, session)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// start joins or begins the session start of the user. Each caller waits
// on its own ctx; the start itself runs detached, bounded by StartTimeout.
func (r *registry) start(ctx context.Context, session auth.Session) (*coordinator, error) {
	ch := r.starts.DoChan(session.UserID, func() (interface{}, error) {
		return r.startSession(ctx, session)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*coordinator), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *registry) startSession(ctx context.Context, session auth.Session) (*coordinator, error) {
	if c := r.lookup(session); c != nil {
		return c, nil
	}

	pending := &pendingStart{}
	r.mu.Lock()
	r.starting[session.UserID] = pending
	r.mu.Unlock()

	startCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.StartTimeout)
	defer cancel()

	c := newCoordinator(session, r.factory(session), r.pub, r.cfg)
	err := c.Refresh(startCtx)

	r.mu.Lock()
	if r.starting[session.UserID] == pending {
		delete(r.starting, session.UserID)
	}
	ended := pending.ended
	if err == nil && !ended {
		r.coordinators[session.UserID] = c
	}
	r.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("start like session: %w", err)
	}
	if ended {
		// Logged out while loading; callers get a cleared, signed-out coordinator.
		c.end()
		slog.Info("Like session ended during start", "user_id", session.UserID)
		return c, nil
	}

	slog.Info("Like session started", "user_id", session.UserID, "liked_count", c.size())
	return c, nil
}

func (r *registry) lookup(session auth.Session) *coordinator {
	r.mu.Lock()
	c, ok := r.coordinators[session.UserID]
	r.mu.Unlock()
	if !ok {
		return nil
	}

	if c.token() != session.Token {
		c.bind(session, r.factory(session))
	}
	c.touch()
	return c
}

// End clears and forgets the coordinator of userID, including one that is
// still starting
func (r *registry) End(userID string) {
	r.mu.Lock()
	c, ok := r.coordinators[userID]
	delete(r.coordinators, userID)
	if pending, starting := r.starting[userID]; starting {
		pending.ended = true
		delete(r.starting, userID)
	}
	r.mu.Unlock()

	// The next login starts over instead of joining the discarded start.
	r.starts.Forget(userID)

	if ok {
		c.end()
		slog.Info("Like session ended", "user_id", userID)
	}
}

// Sweep ends every coordinator unused for longer than idle
func (r *registry) Sweep(idle time.Duration) int {
	cutoff := r.cfg.Clock().Add(-idle)

	r.mu.Lock()
	var evicted []*coordinator
	for userID, c := range r.coordinators {
		if c.idleSince().Before(cutoff) {
			evicted = append(evicted, c)
			delete(r.coordinators, userID)
		}
	}
	r.mu.Unlock()

	for _, c := range evicted {
		c.end()
	}
	if len(evicted) > 0 {
		slog.Info("Idle like sessions evicted", "count", len(evicted))
	}
	return len(evicted)
}

// RefreshAll reconciles every live coordinator with the backend
func (r *registry) RefreshAll(ctx context.Context) error {
	r.mu.Lock()
	live := make(map[string]*coordinator, len(r.coordinators))
	for userID, c := range r.coordinators {
		live[userID] = c
	}
	r.mu.Unlock()

	var errs []error
	for userID, c := range live {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Refresh(ctx); err != nil {
			errs = append(errs, fmt.Errorf("refresh user %s: %w", userID, err))
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of live authenticated sessions
func (r *registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.coordinators)
}
