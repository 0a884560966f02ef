package http

import (
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-analytics/internal/api/http/handlers"
	"github.com/spec-kit/incident-analytics/internal/auth"
	"github.com/spec-kit/incident-analytics/internal/config"
	"github.com/spec-kit/incident-analytics/internal/events"
	"github.com/spec-kit/incident-analytics/internal/feed"
	"github.com/spec-kit/incident-analytics/internal/observability"
	"github.com/spec-kit/incident-analytics/internal/persistence"
	"github.com/spec-kit/incident-analytics/internal/repository"
	"github.com/spec-kit/incident-analytics/internal/service"
)

const seedDocument = `{
  "clientes": [{"id_cli": "C1", "nombre": "Acme"}, {"id_cli": "C2", "nombre": "Globex"}],
  "empleados": [{"id_emp": "E1", "nombre": "Ana", "nivel": 1}, {"id_emp": "E2", "nombre": "Luis", "nivel": 2}],
  "tipos_incidentes": [{"id_inci": "1", "nombre": "Mantenimiento"}, {"id_inci": "5", "nombre": "Fraude"}],
  "tickets_emitidos": [
    {"cliente": "C1", "fecha_apertura": "2024-01-01 09:00:00", "fecha_cierre": "2024-01-02 09:00:00",
     "satisfaccion_cliente": 6, "tipo_incidencia": "5",
     "contactos_con_empleados": [{"id_emp": "E1", "fecha": "2024-01-01 10:00:00", "tiempo": 1}]},
    {"cliente": "C1", "fecha_apertura": "2024-01-03 09:00:00", "fecha_cierre": "2024-01-04 09:00:00",
     "satisfaccion_cliente": 9, "tipo_incidencia": "5",
     "contactos_con_empleados": [{"id_emp": "E2", "fecha": "2024-01-03 10:00:00", "tiempo": 2}]},
    {"cliente": "C2", "fecha_apertura": "2024-01-02", "fecha_cierre": "2024-01-04",
     "es_mantenimiento": true, "satisfaccion_cliente": 2, "tipo_incidencia": "1",
     "contactos_con_empleados": []}
  ]
}`

const feedBody = `[{"cveMetadata": {"cveId": "CVE-2024-0001", "datePublished": "2024-05-01T10:00:00Z"},
  "containers": {"cna": {"descriptions": [{"value": "overflow"}], "metrics": [{"cvssV3_1": {"baseScore": 7.5}}]}}}]`

type testServer struct {
	app    *fiber.App
	tokens *auth.TokenManager
}

func newTestServer(t *testing.T, secret string) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	db, err := persistence.NewSQLite(ctx, config.SQLiteConfig{Path: persistence.SQLiteMemory}, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, persistence.RunSQLiteMigrations(db.DB, logger))
	store := repository.NewSQLiteStore(db.DB)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	reports, err := service.NewReportService(config.AnalysisConfig{
		FraudIncidentType:    "5",
		TopN:                 10,
		Timezone:             "UTC",
		StrictDates:          true,
		CriticalExcludedType: "1",
		CriticalTopN:         5,
	}, service.ReportDependencies{Store: store, Metrics: metrics, Dispatcher: dispatcher, Logger: logger})
	require.NoError(t, err)
	reports.RegisterHandlers()

	_, err = service.NewSeedService(store.Seed, dispatcher, logger).Load(ctx, strings.NewReader(seedDocument), "test")
	require.NoError(t, err)

	upstream := httptest.NewServer(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		_, _ = w.Write([]byte(feedBody))
	}))
	t.Cleanup(upstream.Close)
	vulns := service.NewVulnerabilityService(feed.NewClient(feed.Options{URL: upstream.URL}, logger, metrics))

	tokens := auth.NewTokenManager(secret, 5)
	app := NewApp("test", AppDependencies{Logger: logger}, RouteConfig{
		Health:          handlers.NewHealthHandler("test", "dev", map[string]handlers.Pinger{"sqlite": db}),
		Reports:         handlers.NewReportHandler(reports),
		Rankings:        handlers.NewRankingsHandler(reports),
		Vulnerabilities: handlers.NewVulnerabilitiesHandler(vulns),
		AuthMiddleware:  auth.NewAuthMiddleware(tokens),
		Metrics:         metrics,
	})
	return &testServer{app: app, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp.StatusCode, body
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "body has no data object: %v", body)
	return d
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, "")

	status, body := s.do(t, stdhttp.MethodGet, "/health/live", "")
	assert.Equal(t, stdhttp.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.do(t, stdhttp.MethodGet, "/health/ready", "")
	assert.Equal(t, stdhttp.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
}

func TestReportEndpoints(t *testing.T) {
	s := newTestServer(t, "")

	status, body := s.do(t, stdhttp.MethodGet, "/api/v1/report", "")
	require.Equal(t, stdhttp.StatusOK, status)
	report := data(t, body)
	assert.EqualValues(t, 2, report["fraud_tickets"])
	assert.Len(t, report["groups"], 5)

	status, body = s.do(t, stdhttp.MethodGet, "/api/v1/report/global", "")
	require.Equal(t, stdhttp.StatusOK, status)
	assert.EqualValues(t, 3, data(t, body)["total_tickets"])

	status, body = s.do(t, stdhttp.MethodGet, "/api/v1/report/groups/customer", "")
	require.Equal(t, stdhttp.StatusOK, status)
	view := data(t, body)
	rows := view["rows"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "C1", row["key"])
	assert.EqualValues(t, 2, row["incidencias"])
	assert.EqualValues(t, 2, row["actuaciones"])
	summary := view["summary"].(map[string]any)
	assert.Nil(t, summary["variance"], "undefined variance is null")

	status, body = s.do(t, stdhttp.MethodGet, "/api/v1/report/groups/weekday", "")
	require.Equal(t, stdhttp.StatusOK, status)
	assert.Len(t, data(t, body)["rows"], 7)

	status, body = s.do(t, stdhttp.MethodGet, "/api/v1/report/charts", "")
	require.Equal(t, stdhttp.StatusOK, status)
	assert.Contains(t, data(t, body), "maintenance_duration")
}

func TestUnknownDimensionAndRoute(t *testing.T) {
	s := newTestServer(t, "")

	status, body := s.do(t, stdhttp.MethodGet, "/api/v1/report/groups/province", "")
	assert.Equal(t, stdhttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = s.do(t, stdhttp.MethodGet, "/nope", "")
	assert.Equal(t, stdhttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestRankingEndpoint(t *testing.T) {
	s := newTestServer(t, "")

	status, body := s.do(t, stdhttp.MethodGet, "/api/v1/rankings/customers?limit=1", "")
	require.Equal(t, stdhttp.StatusOK, status)
	ranking := data(t, body)
	assert.EqualValues(t, 1, ranking["limit"])
	items := ranking["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "C1", items[0].(map[string]any)["customer_id"])

	status, body = s.do(t, stdhttp.MethodGet, "/api/v1/rankings/employees", "")
	require.Equal(t, stdhttp.StatusOK, status)
	assert.EqualValues(t, 10, data(t, body)["limit"])

	status, body = s.do(t, stdhttp.MethodGet, "/api/v1/rankings/customers?limit=x", "")
	assert.Equal(t, stdhttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestVulnerabilitiesEndpoint(t *testing.T) {
	s := newTestServer(t, "")

	status, body := s.do(t, stdhttp.MethodGet, "/api/v1/vulnerabilities?limit=3", "")
	require.Equal(t, stdhttp.StatusOK, status)
	payload := data(t, body)
	assert.EqualValues(t, 1, payload["count"])
	item := payload["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "CVE-2024-0001", item["cve_id"])
	assert.Equal(t, "2024-05-01", item["published"])
	assert.Equal(t, "7.5", item["cvss"])
}

func TestAuthProtectsAPI(t *testing.T) {
	s := newTestServer(t, "s3cret")
	analyst, _, err := s.tokens.GenerateToken("ana", auth.RoleAnalyst)
	require.NoError(t, err)
	admin, _, err := s.tokens.GenerateToken("root", auth.RoleAdmin)
	require.NoError(t, err)

	status, body := s.do(t, stdhttp.MethodGet, "/api/v1/report/global", "")
	assert.Equal(t, stdhttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, _ = s.do(t, stdhttp.MethodGet, "/api/v1/report/global", analyst)
	assert.Equal(t, stdhttp.StatusOK, status)

	status, body = s.do(t, stdhttp.MethodPost, "/api/v1/dataset/reload", analyst)
	assert.Equal(t, stdhttp.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = s.do(t, stdhttp.MethodPost, "/api/v1/dataset/reload", admin)
	require.Equal(t, stdhttp.StatusOK, status)
	assert.EqualValues(t, 3, data(t, body)["tickets"])

	status, _ = s.do(t, stdhttp.MethodGet, "/health/live", "")
	assert.Equal(t, stdhttp.StatusOK, status, "probes stay public")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, "")
	s.do(t, stdhttp.MethodGet, "/api/v1/report", "")

	req := httptest.NewRequest(stdhttp.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "incident_analytics_http_requests_total")
	assert.Contains(t, string(raw), "incident_analytics_dataset_tickets 3")
}
