package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishDeliversToTopicSubscribers(t *testing.T) {
	hub := NewHub()

	ch1, cleanup1 := hub.Subscribe("user:1")
	defer cleanup1()
	ch2, cleanup2 := hub.Subscribe("user:1")
	defer cleanup2()
	other, cleanupOther := hub.Subscribe("user:2")
	defer cleanupOther()

	delivered := hub.Publish("user:1", Event{Event: "notification", Data: "hello"})
	assert.Equal(t, 2, delivered)

	for _, ch := range []chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, "user:1", ev.Topic)
			assert.Equal(t, "notification", ev.Event)
			assert.Equal(t, "hello", ev.Data)
		default:
			t.Fatal("expected an event")
		}
	}

	select {
	case <-other:
		t.Fatal("subscriber of another topic must not receive the event")
	default:
	}
}

func TestHub_PublishSkipsFullSubscribers(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("admins")
	defer cleanup()

	for i := 0; i < hub.bufferSize; i++ {
		require.Equal(t, 1, hub.Publish("admins", Event{Event: "tick"}))
	}
	assert.Equal(t, 0, hub.Publish("admins", Event{Event: "overflow"}))
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("user:1")
	assert.Equal(t, 1, hub.TotalSubscribers())

	cleanup()
	cleanup() // second call is a no-op

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.TotalSubscribers())
	assert.Equal(t, 0, hub.Publish("user:1", Event{Event: "late"}))
}
