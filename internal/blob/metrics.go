package blob

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blob_operations_total",
			Help: "Total number of blob store operations by backend, operation and result.",
		},
		[]string{"backend", "operation", "result"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blob_operation_duration_seconds",
			Help:    "Duration of blob store operations in seconds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend", "operation"},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "blob_circuit_breaker_state",
			Help: "Current state of the blob store circuit breaker (0=closed, 1=half-open, 2=open).",
		},
		[]string{"name"},
	)

	storeReady = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "blob_store_ready",
			Help: "Whether the blob store backend finished initialization (1) or not (0).",
		},
		[]string{"backend"},
	)
)
