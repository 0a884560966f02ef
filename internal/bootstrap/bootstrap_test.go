package bootstrap

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-analytics/internal/config"
	"github.com/spec-kit/incident-analytics/internal/persistence"
)

func sqliteConfig() *config.Config {
	return &config.Config{
		Store:  config.StoreConfig{Driver: config.StoreDriverSQLite, RunMigrations: true},
		SQLite: config.SQLiteConfig{Path: persistence.SQLiteMemory},
		Redis:  config.RedisConfig{Enabled: false},
		Analysis: config.AnalysisConfig{
			FraudIncidentType: "5",
			TopN:              10,
			Timezone:          "UTC",
			StrictDates:       true,
		},
		Feed: config.FeedConfig{URL: "http://127.0.0.1:1", TimeoutSeconds: 1},
	}
}

func TestNewWiresSQLiteRuntime(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx, sqliteConfig(), zap.NewNop())
	require.NoError(t, err)
	defer rt.Close()

	assert.NotNil(t, rt.SQLite)
	assert.Nil(t, rt.Postgres)
	assert.Nil(t, rt.Redis.Client)
	assert.False(t, rt.Tokens.Enabled())
	assert.Equal(t, "sqlite", rt.StoreName())

	doc := `{"clientes": [{"id_cli": "C1"}], "empleados": [], "tipos_incidentes": [{"id_inci": "5"}],
	  "tickets_emitidos": [{"cliente": "C1", "fecha_apertura": "2024-01-01", "fecha_cierre": "2024-01-02",
	  "tipo_incidencia": "5", "contactos_con_empleados": []}]}`
	_, err = rt.Seeds.Load(ctx, strings.NewReader(doc), "test")
	require.NoError(t, err)

	ds, err := rt.Reports.Dataset(ctx)
	require.NoError(t, err)
	assert.Len(t, ds.Tickets, 1)
}

func TestNewRequiresPostgresDSN(t *testing.T) {
	cfg := sqliteConfig()
	cfg.Store.Driver = config.StoreDriverPostgres

	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingDSN)
}
