package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event is the envelope every driver carries. Key is the identity the
// channel belongs to; the kafka driver partitions on it.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent encodes payload into an event stamped with a time-ordered id.
func NewEvent(eventType, key string, payload interface{}) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Event{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Type:      eventType,
		Key:       key,
		Payload:   data,
		Timestamp: now,
	}, nil
}

func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

type Publisher interface {
	Publish(ctx context.Context, channel string, event *Event) error
}

// Subscriber channels are closed when ctx is cancelled or the driver closes.
// Patterns use '*' for the identity segment, see ActivityPattern.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan *Event, error)
	SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error)
	Unsubscribe(ctx context.Context, channel string) error
}

type PubSub interface {
	Publisher
	Subscriber
	Close() error
}
