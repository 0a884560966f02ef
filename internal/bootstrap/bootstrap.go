// Package bootstrap assembles the store, cache and services shared by the
// HTTP server and the command line tool.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-analytics/internal/auth"
	"github.com/spec-kit/incident-analytics/internal/cache"
	"github.com/spec-kit/incident-analytics/internal/config"
	"github.com/spec-kit/incident-analytics/internal/events"
	"github.com/spec-kit/incident-analytics/internal/feed"
	"github.com/spec-kit/incident-analytics/internal/observability"
	"github.com/spec-kit/incident-analytics/internal/persistence"
	"github.com/spec-kit/incident-analytics/internal/repository"
	"github.com/spec-kit/incident-analytics/internal/service"
	"github.com/spec-kit/incident-analytics/internal/worker"
)

// ErrMissingDSN is returned when the postgres driver is selected without a DSN.
var ErrMissingDSN = errors.New("POSTGRES_DSN is required for the postgres store")

// Runtime owns every long-lived collaborator of one process.
type Runtime struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Store      *repository.Store
	Dispatcher events.Dispatcher

	Reports         *service.ReportService
	Seeds           *service.SeedService
	Vulnerabilities *service.VulnerabilityService
	Tokens          *auth.TokenManager

	Postgres *persistence.Postgres
	SQLite   *persistence.SQLite
	Redis    *persistence.Redis
}

// New opens the configured store, applies migrations when enabled and wires
// the services. The caller must Close the runtime.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rt := &Runtime{
		Config:     cfg,
		Logger:     logger,
		Metrics:    observability.NewMetrics(),
		Dispatcher: events.NewInMemoryDispatcher(),
		Tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
	}

	if err := rt.openStore(ctx); err != nil {
		rt.Close()
		return nil, err
	}

	rt.Redis = persistence.NewRedis(ctx, cfg.Redis, logger)
	reportCache := cache.NewReportCache(rt.Redis.Client, cfg.Redis.ReportTTL())

	reports, err := service.NewReportService(cfg.Analysis, service.ReportDependencies{
		Store:      rt.Store,
		Cache:      reportCache,
		Metrics:    rt.Metrics,
		Dispatcher: rt.Dispatcher,
		Logger:     logger,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Reports = reports
	worker.StartReportWorker(reports)

	rt.Seeds = service.NewSeedService(rt.Store.Seed, rt.Dispatcher, logger)

	feedClient := feed.NewClient(feed.Options{
		URL:       cfg.Feed.URL,
		Timeout:   cfg.Feed.Timeout(),
		Limit:     cfg.Feed.Limit,
		CacheSize: cfg.Feed.CacheSize,
		CacheTTL:  cfg.Feed.CacheTTL(),
	}, logger, rt.Metrics)
	rt.Vulnerabilities = service.NewVulnerabilityService(feedClient)

	return rt, nil
}

func (rt *Runtime) openStore(ctx context.Context) error {
	cfg := rt.Config
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		if cfg.Postgres.DSN == "" {
			return ErrMissingDSN
		}
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, rt.Logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		rt.Postgres = pg
		if cfg.Store.RunMigrations {
			if err := persistence.RunPostgresMigrations(pg, rt.Logger); err != nil {
				return err
			}
		}
		rt.Store = repository.NewPostgresStore(pg.PoolHandle())
	case config.StoreDriverSQLite:
		db, err := persistence.NewSQLite(ctx, cfg.SQLite, rt.Logger)
		if err != nil {
			return err
		}
		rt.SQLite = db
		if cfg.Store.RunMigrations {
			if err := persistence.RunSQLiteMigrations(db.DB, rt.Logger); err != nil {
				return err
			}
		}
		rt.Store = repository.NewSQLiteStore(db.DB)
	default:
		return fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
	return nil
}

// StoreName names the active backend for health output.
func (rt *Runtime) StoreName() string {
	return rt.Config.Store.Driver
}

// Close releases every connection the runtime opened.
func (rt *Runtime) Close() {
	rt.Redis.Close()
	rt.Postgres.Close()
	rt.SQLite.Close()
}
