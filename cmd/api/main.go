package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/incident-analytics/internal/api/http"
	"github.com/spec-kit/incident-analytics/internal/api/http/handlers"
	"github.com/spec-kit/incident-analytics/internal/auth"
	"github.com/spec-kit/incident-analytics/internal/bootstrap"
	"github.com/spec-kit/incident-analytics/internal/config"
	"github.com/spec-kit/incident-analytics/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize runtime", zap.Error(err))
	}
	defer rt.Close()

	if _, err := rt.Reports.Reload(ctx); err != nil {
		// The store may still be empty; the first request retries.
		logger.Warn("initial dataset load failed", zap.Error(err))
	}

	dependencies := map[string]handlers.Pinger{}
	if rt.Postgres != nil {
		dependencies["postgres"] = rt.Postgres
	}
	if rt.SQLite != nil {
		dependencies["sqlite"] = rt.SQLite
	}
	if cfg.Redis.Enabled {
		dependencies["redis"] = rt.Redis
	}
	if !rt.Tokens.Enabled() {
		logger.Warn("AUTH_JWT_SECRET not set; API is unauthenticated")
	}

	app := httptransport.NewApp(cfg.App.Name, httptransport.AppDependencies{
		Logger:         logger,
		RequestTimeout: cfg.App.RequestTimeout(),
	}, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Reports:         handlers.NewReportHandler(rt.Reports),
		Rankings:        handlers.NewRankingsHandler(rt.Reports),
		Vulnerabilities: handlers.NewVulnerabilitiesHandler(rt.Vulnerabilities),
		AuthMiddleware:  auth.NewAuthMiddleware(rt.Tokens),
		Metrics:         rt.Metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", rt.StoreName()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
