package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/api/v1/report", "GET", 200, 15*time.Millisecond)
	m.RecordRequest("/api/v1/report", "GET", 200, 5*time.Millisecond)
	m.RecordError("/api/v1/report", "GET", "NOT_FOUND")
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)
	m.RecordDataset(12, 2, time.Unix(1700000000, 0))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/v1/report", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpErrors.WithLabelValues("/api/v1/report", "GET", "NOT_FOUND")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.reportCacheHits.WithLabelValues("miss")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.datasetTickets))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.datasetFlagged))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordReport(time.Second)
		m.RecordFeedFetch("ok")
	})
	assert.Nil(t, m.Registry())
}
