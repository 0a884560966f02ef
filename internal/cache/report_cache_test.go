package cache

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/incident-analytics/internal/analysis"
	"github.com/spec-kit/incident-analytics/internal/analysis/stats"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewReportCache(client, ttl), mr
}

func sampleReport() *analysis.Report {
	return &analysis.Report{
		RunID:             "run-1",
		GeneratedAt:       time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
		FraudIncidentType: "5",
		FraudTickets:      3,
		FraudDuration:     stats.Summarize([]float64{4}),
		Groups: []analysis.GroupView{{
			Dimension: analysis.DimensionCustomer,
			Rows:      []analysis.GroupRow{{Key: "A", Incidents: 1, Actions: 2}},
		}},
		Flagged: []analysis.FlaggedTicket{{TicketID: 9, Issue: analysis.DateIssueMissingClose}},
	}
}

func TestReportCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, time.Minute)

	_, err := c.Get(ctx, Key("5"))
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, Key("5"), sampleReport()))

	got, err := c.Get(ctx, Key("5"))
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
	assert.True(t, got.GeneratedAt.Equal(sampleReport().GeneratedAt))
	assert.Equal(t, 3, got.FraudTickets)
	assert.Equal(t, 1, got.FraudDuration.Count)
	assert.True(t, math.IsNaN(got.FraudDuration.Variance), "NaN survives the codec")
	require.Len(t, got.Groups, 1)
	assert.Equal(t, analysis.GroupRow{Key: "A", Incidents: 1, Actions: 2}, got.Groups[0].Rows[0])
	assert.Equal(t, sampleReport().Flagged, got.Flagged)
}

func TestReportCacheExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, c.Set(ctx, Key("5"), sampleReport()))
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, Key("5"))
	assert.ErrorIs(t, err, ErrMiss)
}

func TestReportCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, 0)

	require.NoError(t, c.Set(ctx, Key("5"), sampleReport()))
	require.NoError(t, c.Set(ctx, Key("1"), sampleReport()))
	require.NoError(t, mr.Set("unrelated", "keep"))

	removed, err := c.Invalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.True(t, mr.Exists("unrelated"))

	_, err = c.Get(ctx, Key("1"))
	assert.ErrorIs(t, err, ErrMiss)
}

func TestReportCacheSurfacesRedisFailures(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	_, err := c.Get(ctx, Key("5"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestDisabledCache(t *testing.T) {
	ctx := context.Background()
	c := NewReportCache(nil, time.Minute)

	assert.False(t, c.Enabled())
	assert.NoError(t, c.Set(ctx, Key("5"), sampleReport()))
	_, err := c.Get(ctx, Key("5"))
	assert.ErrorIs(t, err, ErrMiss)
	n, err := c.Invalidate(ctx)
	assert.NoError(t, err)
	assert.Zero(t, n)
}
