package like

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flipit/flipit-session-go/internal/domain/auth"
	"github.com/flipit/flipit-session-go/internal/domain/like"
	"github.com/flipit/flipit-session-go/internal/pkg/sse"
)

// fakeBackend is an in-memory like.Backend that records every call
type fakeBackend struct {
	mu    sync.Mutex
	liked map[int64]bool
	calls []string

	// failures returned by the matching operation when set
	likeErr   error
	unlikeErr error
	fetchErr  error
	statusErr error

	// when gate is set, Like and Unlike report on entered and wait on gate
	gate    chan struct{}
	entered chan int64

	// ctxErrs records ctx.Err() seen by Like and Unlike
	ctxErrs []error

	// when fetchGate is set, FetchAll reports on fetchEntered and waits on fetchGate
	fetchGate    chan struct{}
	fetchEntered chan struct{}
}

func newFakeBackend(liked ...int64) *fakeBackend {
	b := &fakeBackend{liked: make(map[int64]bool)}
	for _, id := range liked {
		b.liked[id] = true
	}
	return b
}

func (b *fakeBackend) gated() *fakeBackend {
	b.gate = make(chan struct{})
	b.entered = make(chan int64, 16)
	return b
}

func (b *fakeBackend) gatedFetch() *fakeBackend {
	b.fetchGate = make(chan struct{})
	b.fetchEntered = make(chan struct{}, 16)
	return b
}

func (b *fakeBackend) record(call string) {
	b.mu.Lock()
	b.calls = append(b.calls, call)
	b.mu.Unlock()
}

func (b *fakeBackend) wait(ctx context.Context, itemID int64) {
	b.mu.Lock()
	b.ctxErrs = append(b.ctxErrs, ctx.Err())
	gate := b.gate
	b.mu.Unlock()

	if gate == nil {
		return
	}
	b.entered <- itemID
	<-gate
}

func (b *fakeBackend) Like(ctx context.Context, itemID int64) error {
	b.record(fmt.Sprintf("like:%d", itemID))
	b.wait(ctx, itemID)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.likeErr != nil {
		return b.likeErr
	}
	b.liked[itemID] = true
	return nil
}

func (b *fakeBackend) Unlike(ctx context.Context, itemID int64) error {
	b.record(fmt.Sprintf("unlike:%d", itemID))
	b.wait(ctx, itemID)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.unlikeErr != nil {
		return b.unlikeErr
	}
	delete(b.liked, itemID)
	return nil
}

func (b *fakeBackend) FetchAll(ctx context.Context) ([]like.Item, error) {
	b.record("fetch")

	b.mu.Lock()
	gate := b.fetchGate
	b.mu.Unlock()
	if gate != nil {
		b.fetchEntered <- struct{}{}
		<-gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	items := make([]like.Item, 0, len(b.liked))
	for id := range b.liked {
		items = append(items, like.Item{ID: id})
	}
	return items, nil
}

func (b *fakeBackend) CheckStatus(ctx context.Context, itemIDs []int64) (map[int64]bool, error) {
	b.record(fmt.Sprintf("status:%d", len(itemIDs)))

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.statusErr != nil {
		return nil, b.statusErr
	}
	out := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		out[id] = b.liked[id]
	}
	return out, nil
}

func (b *fakeBackend) setLiked(ids ...int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.liked = make(map[int64]bool)
	for _, id := range ids {
		b.liked[id] = true
	}
}

func (b *fakeBackend) callLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeBackend) countCalls(call string) int {
	n := 0
	for _, c := range b.callLog() {
		if c == call {
			n++
		}
	}
	return n
}

// fakeFactory hands out the same backend and records the sessions it saw
type fakeFactory struct {
	mu       sync.Mutex
	backend  *fakeBackend
	sessions []auth.Session
}

func (f *fakeFactory) build(session auth.Session) like.Backend {
	f.mu.Lock()
	f.sessions = append(f.sessions, session)
	f.mu.Unlock()
	return f.backend
}

func (f *fakeFactory) seen() []auth.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]auth.Session(nil), f.sessions...)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []sse.Event
}

func (p *recordingPublisher) Publish(userID string, event sse.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	event.UserID = userID
	p.events = append(p.events, event)
}

func (p *recordingPublisher) all() []sse.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]sse.Event(nil), p.events...)
}

// fakeClock is a settable time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var testSession = auth.Session{UserID: "user-1", Token: "token-1"}
