package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	msg, err := NewMessage(EventTypeVoteCast, "user-1", VoteCastPayload{
		BattingOrderID: "order-1",
		VoteType:       "up",
		Score:          2,
	}, at)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.Key)

	var event Event
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, EventTypeVoteCast, event.Type)
	assert.Equal(t, "user-1", event.UserID)
	assert.True(t, at.Equal(event.Timestamp))

	var payload VoteCastPayload
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, "order-1", payload.BattingOrderID)
	assert.Equal(t, 2, payload.Score)
}

func TestNewMessage_UnmarshalablePayload(t *testing.T) {
	_, err := NewMessage(EventTypeReset, "", make(chan int), time.Now())
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), EventTypeReset, "", ResetPayload{}))
	assert.NoError(t, p.Close())
}
