package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("catalog:categories:refresh").End(nil))
	err := errors.New("backend down")
	assert.Equal(t, err, m.Track("catalog:categories:refresh").End(err))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("catalog:categories:refresh", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("catalog:categories:refresh", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("catalog:categories:refresh")))

	m.SetCachedCategories(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(m.categories))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.SetCachedCategories(3)
	assert.NoError(t, m.Track("x").End(nil))
}

func TestLastSuccessOnlyMovesOnSuccess(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	_ = m.Track("catalog:categories:refresh").End(errors.New("down"))
	assert.Equal(t, 0, testutil.CollectAndCount(m.lastOK))

	_ = m.Track("catalog:categories:refresh").End(nil)
	assert.Greater(t, testutil.ToFloat64(m.lastOK.WithLabelValues("catalog:categories:refresh")), 0.0)
}
