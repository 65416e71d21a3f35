package like

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flipit/flipit-session-go/internal/domain/auth"
	"github.com/flipit/flipit-session-go/internal/domain/like"
	"github.com/flipit/flipit-session-go/internal/pkg/sse"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/flipit/flipit-session-go/internal/service/like")

// Config holds coordinator settings
type Config struct {
	ToggleTimeout time.Duration    // default: 10 seconds
	StartTimeout  time.Duration    // default: 15 seconds
	Clock         func() time.Time // default: time.Now
}

func (c Config) withDefaults() Config {
	if c.ToggleTimeout <= 0 {
		c.ToggleTimeout = 10 * time.Second
	}
	if c.StartTimeout <= 0 {
		c.StartTimeout = 15 * time.Second
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

type coordinator struct {
	mu      sync.RWMutex
	session auth.Session
	backend like.Backend
	liked   map[int64]struct{}
	// gen changes whenever the set is replaced wholesale; a toggle only
	// rolls back if gen is unchanged since its optimistic flip.
	gen uint64

	locks    *keyLock
	lastUsed atomic.Int64
	pub      sse.Publisher
	cfg      Config
}

// NewCoordinator creates a coordinator bound to session. backend may be nil
// for an anonymous session.
func NewCoordinator(session auth.Session, backend like.Backend, pub sse.Publisher, cfg Config) like.Coordinator {
	return newCoordinator(session, backend, pub, cfg)
}

func newCoordinator(session auth.Session, backend like.Backend, pub sse.Publisher, cfg Config) *coordinator {
	if pub == nil {
		pub = sse.Discard
	}
	if !session.Authenticated() {
		backend = nil
	}
	c := &coordinator{
		session: session,
		backend: backend,
		liked:   make(map[int64]struct{}),
		locks:   newKeyLock(),
		pub:     pub,
		cfg:     cfg.withDefaults(),
	}
	c.touch()
	return c
}

// IsLiked reports whether itemID is in the liked set
func (c *coordinator) IsLiked(itemID int64) bool {
	c.touch()
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.liked[itemID]
	return ok
}

// Snapshot returns the liked ids in ascending order
func (c *coordinator) Snapshot() []int64 {
	c.touch()
	c.mu.RLock()
	ids := make([]int64, 0, len(c.liked))
	for id := range c.liked {
		ids = append(ids, id)
	}
	c.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ToggleLike flips itemID locally, then confirms with the backend.
//
// The backend call does not follow the caller's cancellation: once the
// optimistic flip is visible the toggle runs to completion, bounded by
// ToggleTimeout.
func (c *coordinator) ToggleLike(ctx context.Context, itemID int64) (bool, error) {
	c.touch()
	if !c.authenticated() {
		return false, like.ErrAuthRequired
	}
	if itemID <= 0 {
		return false, like.ErrInvalidItemID
	}

	unlock := c.locks.Lock(itemID)
	defer unlock()

	c.mu.Lock()
	if !c.session.Authenticated() || c.backend == nil {
		c.mu.Unlock()
		return false, like.ErrAuthRequired
	}
	userID := c.session.UserID
	backend := c.backend
	_, wasLiked := c.liked[itemID]
	c.setLocked(itemID, !wasLiked)
	gen := c.gen
	c.mu.Unlock()

	c.publishChanged(userID, itemID, !wasLiked, like.PhaseOptimistic)

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.ToggleTimeout)
	defer cancel()

	callCtx, span := tracer.Start(callCtx, "like.ToggleLike")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("item.id", itemID),
		attribute.Bool("like.was_liked", wasLiked),
	)

	var err error
	if wasLiked {
		err = backend.Unlike(callCtx, itemID)
	} else {
		err = backend.Like(callCtx, itemID)
	}
	if err == nil {
		return !wasLiked, nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	c.mu.Lock()
	rolledBack := c.gen == gen
	if rolledBack {
		c.setLocked(itemID, wasLiked)
	}
	c.mu.Unlock()

	if rolledBack {
		c.publishChanged(userID, itemID, wasLiked, like.PhaseRollback)
	}
	slog.Warn("Like toggle failed",
		"user_id", userID,
		"item_id", itemID,
		"was_liked", wasLiked,
		"rolled_back", rolledBack,
		"error", err,
	)

	return c.IsLiked(itemID), err
}

// Refresh replaces the liked set with the backend's list. Anonymous
// sessions are cleared without a backend call.
func (c *coordinator) Refresh(ctx context.Context) error {
	c.touch()

	c.mu.RLock()
	session := c.session
	backend := c.backend
	c.mu.RUnlock()

	if !session.Authenticated() || backend == nil {
		c.mu.Lock()
		c.liked = make(map[int64]struct{})
		c.gen++
		c.mu.Unlock()
		return nil
	}

	ctx, span := tracer.Start(ctx, "like.Refresh")
	defer span.End()

	items, err := backend.FetchAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	next := make(map[int64]struct{}, len(items))
	for _, item := range items {
		next[item.ID] = struct{}{}
	}

	c.mu.Lock()
	if c.session.UserID != session.UserID {
		// Session ended while the fetch was running.
		c.mu.Unlock()
		return nil
	}
	c.liked = next
	c.gen++
	c.mu.Unlock()

	span.SetAttributes(attribute.Int("like.count", len(next)))
	c.pub.Publish(session.UserID, sse.Event{
		Event: like.EventRefreshed,
		Data:  like.RefreshedEvent{Count: len(next)},
	})

	return nil
}

// BulkStatus looks up itemIDs on the backend without touching the set
func (c *coordinator) BulkStatus(ctx context.Context, itemIDs []int64) (map[int64]bool, error) {
	c.touch()
	result := make(map[int64]bool)

	c.mu.RLock()
	backend := c.backend
	authenticated := c.session.Authenticated()
	c.mu.RUnlock()

	if !authenticated || backend == nil || len(itemIDs) == 0 {
		return result, nil
	}

	ids := dedupe(itemIDs)

	ctx, span := tracer.Start(ctx, "like.BulkStatus")
	defer span.End()
	span.SetAttributes(attribute.Int("like.batch_size", len(ids)))

	statuses, err := backend.CheckStatus(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	for _, id := range ids {
		result[id] = statuses[id]
	}
	return result, nil
}

// bind swaps the session credentials for the same user
func (c *coordinator) bind(session auth.Session, backend like.Backend) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
	c.backend = backend
}

// end drops the session and clears the set (logout)
func (c *coordinator) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = auth.Session{}
	c.backend = nil
	c.liked = make(map[int64]struct{})
	c.gen++
}

func (c *coordinator) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.Token
}

func (c *coordinator) authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.Authenticated() && c.backend != nil
}

func (c *coordinator) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.liked)
}

func (c *coordinator) setLocked(itemID int64, liked bool) {
	if liked {
		c.liked[itemID] = struct{}{}
	} else {
		delete(c.liked, itemID)
	}
}

func (c *coordinator) publishChanged(userID string, itemID int64, liked bool, phase like.Phase) {
	c.pub.Publish(userID, sse.Event{
		Event: like.EventChanged,
		Data: like.ChangedEvent{
			ItemID: itemID,
			Liked:  liked,
			Phase:  phase,
		},
	})
}

func (c *coordinator) touch() {
	c.lastUsed.Store(c.cfg.Clock().UnixNano())
}

func (c *coordinator) idleSince() time.Time {
	return time.Unix(0, c.lastUsed.Load())
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
