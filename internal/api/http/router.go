package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/incident-analytics/internal/api/http/handlers"
	"github.com/spec-kit/incident-analytics/internal/auth"
	"github.com/spec-kit/incident-analytics/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Reports         *handlers.ReportHandler
	Rankings        *handlers.RankingsHandler
	Vulnerabilities *handlers.VulnerabilitiesHandler
	AuthMiddleware  *auth.AuthMiddleware
	Metrics         *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if reg := cfg.Metrics.Registry(); reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)
	read := auth.RequireRole(auth.RoleAnalyst, auth.RoleAdmin)

	api.Get("/report", read, cfg.Reports.Report)
	api.Get("/report/global", read, cfg.Reports.Global)
	api.Get("/report/groups/:dimension", read, cfg.Reports.Group)
	api.Get("/report/charts", read, cfg.Reports.Charts)
	api.Get("/rankings/:view", read, cfg.Rankings.Ranking)
	api.Get("/vulnerabilities", read, cfg.Vulnerabilities.Latest)
	api.Post("/dataset/reload", auth.RequireRole(auth.RoleAdmin), cfg.Reports.Reload)
}

// NewApp builds the fiber app with middlewares and routes.
func NewApp(appName string, deps AppDependencies, routes RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, deps.Logger, routes.Metrics, deps.RequestTimeout)
	RegisterRoutes(app, routes)
	return app
}
