package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendToUserDeliversToEveryConnection(t *testing.T) {
	hub := NewHub(nil)
	a := NewClient(hub, nil, 1)
	b := NewClient(hub, nil, 1)
	other := NewClient(hub, nil, 2)
	hub.Register(a)
	hub.Register(b)
	hub.Register(other)

	hub.SendToUser(1, &Message{Event: "notification", Data: map[string]string{"type": "like"}})

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.Send:
			var msg Message
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, "notification", msg.Event)
		default:
			t.Fatal("expected a queued message")
		}
	}
	assert.Len(t, other.Send, 0)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	c := NewClient(hub, nil, 5)
	hub.Register(c)
	assert.True(t, hub.IsOnline(5))

	hub.Unregister(c)
	hub.Unregister(c)

	assert.False(t, hub.IsOnline(5))
	_, open := <-c.Send
	assert.False(t, open)

	// sending to a closed client must not panic
	hub.SendToUser(5, &Message{Event: "notification"})
	assert.True(t, c.enqueue([]byte("late")))
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub(nil)
	c := NewClient(hub, nil, 9)
	hub.Register(c)

	for i := 0; i < sendQueueSize+1; i++ {
		hub.SendToUser(9, &Message{Event: "notification"})
	}

	assert.False(t, hub.IsOnline(9))
}
