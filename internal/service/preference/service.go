package preference

import (
	"sync"
	"time"

	"github.com/flipit/flipit-session-go/internal/domain/preference"
	"github.com/flipit/flipit-session-go/internal/pkg/sse"
)

// EventChanged is published after a user's preferences change
const EventChanged = "preferences.changed"

type entry struct {
	state    preference.State
	lastUsed time.Time
}

type service struct {
	mu      sync.Mutex
	entries map[string]*entry
	pub     sse.Publisher
	clock   func() time.Time
}

// NewPreferenceService creates an in-memory preference store
func NewPreferenceService(pub sse.Publisher) preference.Service {
	return newService(pub, time.Now)
}

func newService(pub sse.Publisher, clock func() time.Time) *service {
	if pub == nil {
		pub = sse.Discard
	}
	return &service{
		entries: make(map[string]*entry),
		pub:     pub,
		clock:   clock,
	}
}

// entryLocked returns the user's entry, creating it from the defaults
func (s *service) entryLocked(userID string) *entry {
	e, ok := s.entries[userID]
	if !ok {
		e = &entry{state: preference.DefaultState()}
		s.entries[userID] = e
	}
	e.lastUsed = s.clock()
	return e
}

// Get returns a copy of the user's preferences
func (s *service) Get(userID string) preference.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entryLocked(userID).state.Clone()
}

// Toggle applies the cascade rules for key and stores the result
func (s *service) Toggle(userID string, key preference.Key, value bool) (preference.State, error) {
	if !preference.IsKnown(key) {
		return nil, preference.ErrUnknownKey
	}

	s.mu.Lock()
	e := s.entryLocked(userID)
	e.state = preference.ApplyToggle(e.state, key, value)
	next := e.state.Clone()
	s.mu.Unlock()

	s.pub.Publish(userID, sse.Event{
		Event: EventChanged,
		Data:  preference.NewStateResponse(next),
	})
	return next, nil
}

// Reset restores the default snapshot
func (s *service) Reset(userID string) preference.State {
	s.mu.Lock()
	e := s.entryLocked(userID)
	e.state = preference.DefaultState()
	next := e.state.Clone()
	s.mu.Unlock()

	s.pub.Publish(userID, sse.Event{
		Event: EventChanged,
		Data:  preference.NewStateResponse(next),
	})
	return next
}

// Forget discards the user's state
func (s *service) Forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

// Sweep discards state unused for longer than idle
func (s *service) Sweep(idle time.Duration) int {
	cutoff := s.clock().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for userID, e := range s.entries {
		if e.lastUsed.Before(cutoff) {
			delete(s.entries, userID)
			evicted++
		}
	}
	return evicted
}
