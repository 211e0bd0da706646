package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// StatSource is satisfied by *pgxpool.Pool.
type StatSource interface {
	Stat() *pgxpool.Stat
}

type poolMetric struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	value     func(*pgxpool.Stat) float64
}

// PoolStatsCollector exports pgxpool statistics. Values are read from the
// pool on every scrape so nothing is cached between collections.
type PoolStatsCollector struct {
	source  StatSource
	metrics []poolMetric
}

// NewPoolStatsCollector builds a collector for source. Every series carries a
// constant service label.
func NewPoolStatsCollector(source StatSource, service string) *PoolStatsCollector {
	labels := prometheus.Labels{"service": service}
	gauge := func(name, help string, fn func(*pgxpool.Stat) float64) poolMetric {
		return poolMetric{
			desc:      prometheus.NewDesc(prometheus.BuildFQName("db", "pool", name), help, nil, labels),
			valueType: prometheus.GaugeValue,
			value:     fn,
		}
	}
	counter := func(name, help string, fn func(*pgxpool.Stat) float64) poolMetric {
		m := gauge(name, help, fn)
		m.valueType = prometheus.CounterValue
		return m
	}

	return &PoolStatsCollector{
		source: source,
		metrics: []poolMetric{
			gauge("acquired_connections", "Connections currently checked out of the pool.",
				func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }),
			gauge("idle_connections", "Connections currently idle in the pool.",
				func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }),
			gauge("total_connections", "Connections currently open, acquired or idle.",
				func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }),
			gauge("max_connections", "Configured pool size limit.",
				func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }),
			gauge("constructing_connections", "Connections being dialed right now.",
				func(s *pgxpool.Stat) float64 { return float64(s.ConstructingConns()) }),
			counter("acquires_total", "Successful acquires since the pool was created.",
				func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) }),
			counter("acquire_wait_seconds_total", "Cumulative time spent acquiring connections.",
				func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() }),
			counter("canceled_acquires_total", "Acquires abandoned because the context ended.",
				func(s *pgxpool.Stat) float64 { return float64(s.CanceledAcquireCount()) }),
			counter("empty_acquires_total", "Acquires that had to wait for a free connection.",
				func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) }),
			counter("connections_opened_total", "Connections opened since the pool was created.",
				func(s *pgxpool.Stat) float64 { return float64(s.NewConnsCount()) }),
			counter("lifetime_closes_total", "Connections closed for exceeding MaxConnLifetime.",
				func(s *pgxpool.Stat) float64 { return float64(s.MaxLifetimeDestroyCount()) }),
			counter("idle_closes_total", "Connections closed for exceeding MaxConnIdleTime.",
				func(s *pgxpool.Stat) float64 { return float64(s.MaxIdleDestroyCount()) }),
		},
	}
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.source.Stat()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.valueType, m.value(stat))
	}
}

// RegisterPoolMetrics registers a pool collector with reg, or with the
// default registerer when reg is nil. Registering the same service twice is
// not an error.
func RegisterPoolMetrics(reg prometheus.Registerer, source StatSource, service string) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	err := reg.Register(NewPoolStatsCollector(source, service))
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}
