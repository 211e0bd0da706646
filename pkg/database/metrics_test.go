package database

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lazyPool returns a pool that never dials: MinConns is zero and no query is
// issued, so Stat reports an empty pool.
func lazyPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	cfg, err := pgxpool.ParseConfig("postgres://u:p@127.0.0.1:1/none?sslmode=disable")
	require.NoError(t, err)
	cfg.MaxConns = 7
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestPoolStatsCollector_Describe(t *testing.T) {
	c := NewPoolStatsCollector(nil, "storeadmin")

	ch := make(chan *prometheus.Desc, 32)
	c.Describe(ch)
	close(ch)

	var names []string
	for d := range ch {
		names = append(names, d.String())
	}
	require.Len(t, names, 12)
	for _, n := range names {
		assert.Contains(t, n, `fqName: "db_pool_`)
		assert.Contains(t, n, `service="storeadmin"`)
	}
}

func TestPoolStatsCollector_Collect(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewPoolStatsCollector(lazyPool(t), "storeadmin")))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 12)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		byName[f.GetName()] = f
	}

	maxConns := byName["db_pool_max_connections"]
	require.NotNil(t, maxConns)
	assert.Equal(t, dto.MetricType_GAUGE, maxConns.GetType())
	assert.Equal(t, 7.0, maxConns.GetMetric()[0].GetGauge().GetValue())

	acquires := byName["db_pool_acquires_total"]
	require.NotNil(t, acquires)
	assert.Equal(t, dto.MetricType_COUNTER, acquires.GetType())
	assert.Zero(t, acquires.GetMetric()[0].GetCounter().GetValue())
}

func TestRegisterPoolMetrics_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	pool := lazyPool(t)

	require.NoError(t, RegisterPoolMetrics(reg, pool, "storeadmin"))
	require.NoError(t, RegisterPoolMetrics(reg, pool, "storeadmin"))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 12)
}
