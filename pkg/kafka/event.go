package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventVersion is the envelope schema version written by this module.
const EventVersion = 1

// Event is the envelope every published message is wrapped in. Data holds
// the topic-specific payload.
type Event struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Version       int             `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Actor         string          `json:"actor,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// EventOption customizes an Event built by NewEvent.
type EventOption func(*Event)

// WithActor records who triggered the change, usually the operator id sent
// by the admin client.
func WithActor(actor string) EventOption {
	return func(e *Event) { e.Actor = actor }
}

// WithCorrelationID pins the correlation id instead of taking it from the
// publish context.
func WithCorrelationID(id string) EventOption {
	return func(e *Event) { e.CorrelationID = id }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) EventOption {
	return func(e *Event) { e.Timestamp = now().UTC() }
}

// NewEvent wraps data in a fresh envelope.
func NewEvent(eventType, aggregateID, aggregateType, source string, data any, opts ...EventOption) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	e := &Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Version:       EventVersion,
		Timestamp:     time.Now().UTC(),
		Source:        source,
		Data:          raw,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Marshal encodes the envelope.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent parses an envelope and rejects versions newer than this
// module understands.
func DecodeEvent(b []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if e.Version > EventVersion {
		return nil, fmt.Errorf("decode event: unsupported version %d", e.Version)
	}
	return &e, nil
}
