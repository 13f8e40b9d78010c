package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type EventType string

const (
	EventTypeOrderSubmitted EventType = "order_submitted"
	EventTypeVoteCast       EventType = "vote_cast"
	EventTypeCommentAdded   EventType = "comment_added"
	EventTypeRosterReplaced EventType = "roster_replaced"
	EventTypeReset          EventType = "reset"
)

type Event struct {
	Type      EventType       `json:"type"`
	UserID    string          `json:"user_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Publisher emits domain events after a mutation has been persisted.
type Publisher interface {
	Publish(ctx context.Context, eventType EventType, userID string, payload interface{}) error
	Close() error
}

type KafkaClient struct {
	writer *kafka.Writer
}

func NewKafkaClient(brokers []string, topic string) *KafkaClient {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 5 * time.Second,
	}

	return &KafkaClient{writer: writer}
}

func (k *KafkaClient) Publish(ctx context.Context, eventType EventType, userID string, payload interface{}) error {
	msg, err := NewMessage(eventType, userID, payload, time.Now())
	if err != nil {
		return err
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// NewMessage builds the Kafka message for an event. Keys are random so
// events spread across partitions.
func NewMessage(eventType EventType, userID string, payload interface{}, at time.Time) (kafka.Message, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	eventJSON, err := json.Marshal(Event{
		Type:      eventType,
		UserID:    userID,
		Timestamp: at,
		Payload:   payloadJSON,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(uuid.New().String()),
		Value: eventJSON,
	}, nil
}

func (k *KafkaClient) Close() error {
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, EventType, string, interface{}) error { return nil }

func (NopPublisher) Close() error { return nil }

// Event payload types
type OrderSubmittedPayload struct {
	BattingOrderID string `json:"batting_order_id"`
	Created        bool   `json:"created"`
	PlayerCount    int    `json:"player_count"`
}

type VoteCastPayload struct {
	BattingOrderID string `json:"batting_order_id"`
	VoteType       string `json:"vote_type"`
	Retracted      bool   `json:"retracted"`
	Score          int    `json:"score"`
}

type CommentAddedPayload struct {
	BattingOrderID string `json:"batting_order_id"`
	CommentID      string `json:"comment_id"`
}

type RosterReplacedPayload struct {
	PlayerCount int `json:"player_count"`
}

type ResetPayload struct {
	ClearedOrders int    `json:"cleared_orders"`
	ArchiveID     string `json:"archive_id,omitempty"`
}
