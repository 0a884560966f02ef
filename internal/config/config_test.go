package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("ANALYSIS_FRAUD_INCIDENT_TYPE", "")
	t.Setenv("ANALYSIS_TOP_N", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "5", cfg.Analysis.FraudIncidentType)
	assert.Equal(t, 10, cfg.Analysis.TopN)
	assert.Equal(t, 10*time.Second, cfg.Feed.Timeout())
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("ANALYSIS_TOP_N", "3")
	t.Setenv("ANALYSIS_TIMEZONE", "Europe/Madrid")
	t.Setenv("ANALYSIS_STRICT_DATES", "false")
	t.Setenv("FEED_TIMEOUT_SECONDS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.SQLite.Path)
	assert.Equal(t, 3, cfg.Analysis.TopN)
	assert.False(t, cfg.Analysis.StrictDates)
	assert.Equal(t, 10, cfg.Feed.TimeoutSeconds, "unparseable ints fall back to the default")

	loc, err := cfg.Analysis.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Madrid", loc.String())
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Run("driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mysql")
		_, err := Load()
		assert.ErrorContains(t, err, "STORE_DRIVER")
	})
	t.Run("timezone", func(t *testing.T) {
		t.Setenv("ANALYSIS_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		assert.ErrorContains(t, err, "ANALYSIS_TIMEZONE")
	})
	t.Run("redis db", func(t *testing.T) {
		t.Setenv("REDIS_DB", "x")
		_, err := Load()
		assert.ErrorContains(t, err, "REDIS_DB")
	})
}
