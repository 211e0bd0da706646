package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

var (
	// PublishedMessages counts publish attempts by topic and result.
	PublishedMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kafka",
			Subsystem: "producer",
			Name:      "messages_total",
			Help:      "Kafka messages handed to the writer, by result.",
		},
		[]string{"topic", "result"},
	)

	// PublishDuration observes WriteMessages latency, including retries.
	PublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kafka",
			Subsystem: "producer",
			Name:      "publish_duration_seconds",
			Help:      "Time spent publishing one event.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"topic"},
	)
)
