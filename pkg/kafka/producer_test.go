package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stockPayload struct {
	ProductID string `json:"productId"`
	Stock     int    `json:"stock"`
}

func TestNewEvent(t *testing.T) {
	payload := stockPayload{ProductID: "p-1", Stock: 4}
	e, err := NewEvent("storeadmin.product.updated", "p-1", "product", "storeadmin", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, e.EventID)
	assert.Equal(t, "storeadmin.product.updated", e.EventType)
	assert.Equal(t, "p-1", e.AggregateID)
	assert.Equal(t, "product", e.AggregateType)
	assert.Equal(t, "storeadmin", e.Source)
	assert.Equal(t, EventVersion, e.Version)
	assert.WithinDuration(t, time.Now().UTC(), e.Timestamp, 2*time.Second)
	assert.Empty(t, e.Actor)
	assert.JSONEq(t, `{"productId":"p-1","stock":4}`, string(e.Data))
}

func TestNewEvent_Options(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	e, err := NewEvent("storeadmin.order.status_changed", "o-1", "order", "storeadmin", nil,
		WithActor("op-7"),
		WithCorrelationID("corr-1"),
		WithClock(func() time.Time { return fixed }),
	)
	require.NoError(t, err)

	assert.Equal(t, "op-7", e.Actor)
	assert.Equal(t, "corr-1", e.CorrelationID)
	assert.Equal(t, fixed.UTC(), e.Timestamp)
	assert.Equal(t, time.UTC, e.Timestamp.Location())
}

func TestNewEvent_UnencodablePayload(t *testing.T) {
	_, err := NewEvent("storeadmin.product.created", "p-1", "product", "storeadmin", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storeadmin.product.created")
}

func TestDecodeEvent(t *testing.T) {
	original, err := NewEvent("storeadmin.category.deleted", "c-1", "category", "storeadmin",
		map[string]string{"id": "c-1"}, WithActor("op-2"))
	require.NoError(t, err)

	b, err := original.Marshal()
	require.NoError(t, err)

	decoded, err := DecodeEvent(b)
	require.NoError(t, err)
	assert.Equal(t, original.EventID, decoded.EventID)
	assert.Equal(t, original.Actor, decoded.Actor)
	assert.True(t, original.Timestamp.Equal(decoded.Timestamp))
	assert.JSONEq(t, string(original.Data), string(decoded.Data))
}

func TestDecodeEvent_Rejects(t *testing.T) {
	future, err := json.Marshal(map[string]any{"event_id": "x", "version": EventVersion + 1})
	require.NoError(t, err)

	for name, in := range map[string][]byte{
		"malformed":      []byte(`{broken`),
		"empty":          {},
		"future version": future,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeEvent(in)
			require.Error(t, err)
		})
	}
}

func TestDefaultProducerConfig(t *testing.T) {
	brokers := []string{"broker1:9092", "broker2:9092"}
	cfg := DefaultProducerConfig(brokers)

	assert.Equal(t, brokers, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.False(t, cfg.Async)
}

func TestTopic(t *testing.T) {
	tests := []struct {
		domain, action, want string
	}{
		{"product", "created", "storeadmin.product.created"},
		{"product", "deleted", "storeadmin.product.deleted"},
		{"category", "updated", "storeadmin.category.updated"},
		{"order", "status_changed", "storeadmin.order.status_changed"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Topic(tt.domain, tt.action))
		})
	}
}

func TestNewProducer_NoDial(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)
	assert.NoError(t, p.Close())
}

func TestPingBrokers_NoneConfigured(t *testing.T) {
	for _, brokers := range [][]string{nil, {}} {
		err := PingBrokers(t.Context(), brokers)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no brokers configured")
	}
}
