package sse

import (
	"sync"

	"github.com/google/uuid"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	UserID string
	Event  string
	Data   interface{}
}

// Publisher sends events to the open streams of a user
type Publisher interface {
	Publish(userID string, event Event)
}

// Subscription is one open stream of a user
type Subscription struct {
	ID string
	C  <-chan Event
}

// Hub manages SSE subscribers and event broadcasting
type Hub struct {
	mu          sync.RWMutex
	bufferSize  int
	subscribers map[string]map[string]chan Event
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return NewHubWithBuffer(10)
}

// NewHubWithBuffer creates a Hub whose subscriber channels hold size events
func NewHubWithBuffer(size int) *Hub {
	if size < 1 {
		size = 1
	}
	return &Hub{
		bufferSize:  size,
		subscribers: make(map[string]map[string]chan Event),
	}
}

// Subscribe registers a new subscriber for a user and returns the subscription and cleanup function
func (h *Hub) Subscribe(userID string) (Subscription, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Event, h.bufferSize)

	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[string]chan Event)
	}
	h.subscribers[userID][id] = ch

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[userID], id)
			close(ch)
			if len(h.subscribers[userID]) == 0 {
				delete(h.subscribers, userID)
			}
		})
	}

	return Subscription{ID: id, C: ch}, cleanup
}

// Publish sends an event to all subscribers of a specific user
func (h *Hub) Publish(userID string, event Event) {
	if userID == "" {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	event.UserID = userID
	for _, ch := range h.subscribers[userID] {
		select {
		case ch <- event:
		default:
			// Skip if channel is full (non-blocking to prevent deadlock)
		}
	}
}

// SubscriberCount returns the number of active subscribers for a user
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}

// TotalSubscribers returns the total number of active subscribers across all users
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}

// Discard is a Publisher that drops every event
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(string, Event) {}
