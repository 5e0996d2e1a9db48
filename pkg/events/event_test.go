package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshal_KeepsType(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	e := NewEvent("CHAT_SESSION_CREATED", map[string]interface{}{"session_id": "abc"}, at)

	raw, err := Marshal(e)
	require.NoError(t, err)

	got, err := Unmarshal(raw)
	require.NoError(t, err)
	assert.Equal(t, "CHAT_SESSION_CREATED", got.EventType())
	assert.Equal(t, "abc", got.Payload()["session_id"])
	assert.True(t, at.Equal(got.Timestamp()))
}

func TestUnmarshal_Garbage(t *testing.T) {
	_, err := Unmarshal([]byte("nope"))
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), NewEvent("X", nil, time.Now())))
}
