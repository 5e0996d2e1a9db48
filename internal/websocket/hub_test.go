package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"intellius-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run(ctx)
	return hub
}

func attach(t *testing.T, hub *Hub, userID uuid.UUID, buffer int) *Client {
	t.Helper()
	before := hub.ConnectedClients(userID)
	c := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, buffer)}
	require.True(t, hub.Register(c))
	require.Eventually(t, func() bool {
		return hub.ConnectedClients(userID) == before+1
	}, time.Second, 5*time.Millisecond)
	return c
}

func TestSendToUser_ReachesEveryDeviceOfThatUserOnly(t *testing.T) {
	hub := runHub(t)
	alice, bob := uuid.New(), uuid.New()

	phone := attach(t, hub, alice, 4)
	laptop := attach(t, hub, alice, 4)
	other := attach(t, hub, bob, 4)

	hub.SendToUser(alice, []byte(`{"type":"chat.message"}`))

	assert.Equal(t, `{"type":"chat.message"}`, string(<-phone.Send))
	assert.Equal(t, `{"type":"chat.message"}`, string(<-laptop.Send))
	assert.Empty(t, other.Send)
}

func TestSendToUser_DropsSlowClient(t *testing.T) {
	hub := runHub(t)
	alice := uuid.New()

	slow := attach(t, hub, alice, 1)
	hub.SendToUser(alice, []byte("first"))
	hub.SendToUser(alice, []byte("second"))

	assert.Equal(t, 0, hub.ConnectedClients(alice))
	assert.Equal(t, "first", string(<-slow.Send))
	_, open := <-slow.Send
	assert.False(t, open)

	// A late unregister for the same client must not close Send again.
	assert.NotPanics(t, func() { hub.Unregister(slow) })
}

func TestUnregister_RemovesClient(t *testing.T) {
	hub := runHub(t)
	alice := uuid.New()

	c := attach(t, hub, alice, 1)
	hub.Unregister(c)

	assert.Eventually(t, func() bool {
		return hub.ConnectedClients(alice) == 0
	}, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}

func TestRegister_AfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, logger.NewNopLogger())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	assert.False(t, hub.Register(&Client{Hub: hub, UserID: uuid.New(), Send: make(chan []byte, 1)}))
}

func TestDecodeClusterMessage(t *testing.T) {
	target := uuid.New()
	raw, err := json.Marshal(clusterMessage{
		Origin:       "instance-a",
		TargetUserID: target.String(),
		Message:      json.RawMessage(`{"type":"chat.message"}`),
	})
	require.NoError(t, err)

	msg, uid, err := decodeClusterMessage(string(raw))
	require.NoError(t, err)
	assert.Equal(t, target, uid)
	assert.Equal(t, "instance-a", msg.Origin)
	assert.JSONEq(t, `{"type":"chat.message"}`, string(msg.Message))

	_, _, err = decodeClusterMessage(`{"target_user_id":"nope"}`)
	assert.Error(t, err)

	_, _, err = decodeClusterMessage("not json")
	assert.Error(t, err)
}
