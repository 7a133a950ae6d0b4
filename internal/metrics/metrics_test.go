package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.JobQueued()
	m.JobQueued()
	m.ObserveRun(100, 2, 42, 1500*time.Millisecond)
	m.JobFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.jobs.WithLabelValues("queued")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs.WithLabelValues("failed")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.generations))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.restarts))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.championFitness))

	count, err := testutil.GatherAndCount(reg, "knapsack_ga_solver_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) }, "重复注册同名指标应当 panic")
	assert.NotPanics(t, func() { New(prometheus.NewRegistry()) })
}
