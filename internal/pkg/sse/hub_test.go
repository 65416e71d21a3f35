package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishToUser(t *testing.T) {
	// Setup
	hub := NewHub()
	sub, cleanup := hub.Subscribe("user-1")
	defer cleanup()
	other, otherCleanup := hub.Subscribe("user-2")
	defer otherCleanup()

	// Act
	hub.Publish("user-1", Event{Event: "like.changed", Data: 42})

	// Assert
	require.Len(t, sub.C, 1)
	got := <-sub.C
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "like.changed", got.Event)
	assert.Equal(t, 42, got.Data)
	assert.Len(t, other.C, 0)
}

func TestHub_MultipleSubscriptions(t *testing.T) {
	hub := NewHub()
	a, cleanupA := hub.Subscribe("user-1")
	defer cleanupA()
	b, cleanupB := hub.Subscribe("user-1")
	defer cleanupB()

	hub.Publish("user-1", Event{Event: "ping"})

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.C, 1)
	assert.Len(t, b.C, 1)
	assert.Equal(t, 2, hub.SubscriberCount("user-1"))
	assert.Equal(t, 2, hub.TotalSubscribers())
}

func TestHub_CleanupClosesChannel(t *testing.T) {
	hub := NewHub()
	sub, cleanup := hub.Subscribe("user-1")

	cleanup()
	cleanup()

	_, open := <-sub.C
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount("user-1"))
	assert.Equal(t, 0, hub.TotalSubscribers())

	// Publishing after cleanup must not panic
	hub.Publish("user-1", Event{Event: "ping"})
}

func TestHub_FullBufferDropsEvents(t *testing.T) {
	hub := NewHubWithBuffer(2)
	sub, cleanup := hub.Subscribe("user-1")
	defer cleanup()

	for i := 0; i < 5; i++ {
		hub.Publish("user-1", Event{Event: "tick", Data: i})
	}

	require.Len(t, sub.C, 2)
	assert.Equal(t, 0, (<-sub.C).Data)
	assert.Equal(t, 1, (<-sub.C).Data)
}

func TestHub_AnonymousPublishIgnored(t *testing.T) {
	hub := NewHub()
	sub, cleanup := hub.Subscribe("")
	defer cleanup()

	hub.Publish("", Event{Event: "ping"})

	assert.Len(t, sub.C, 0)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard.Publish("user-1", Event{Event: "ping"})
	})
}
