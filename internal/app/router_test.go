package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northwind-admin/northwind-admin/internal/auth"
	"github.com/northwind-admin/northwind-admin/internal/catalog/categories"
	catalogshared "github.com/northwind-admin/northwind-admin/internal/catalog/shared"
	"github.com/northwind-admin/northwind-admin/internal/dashboard"
	"github.com/northwind-admin/northwind-admin/internal/observability"
	"github.com/northwind-admin/northwind-admin/internal/shared"
	"github.com/northwind-admin/northwind-admin/internal/view"
	"github.com/northwind-admin/northwind-admin/jobs"
	"github.com/northwind-admin/northwind-admin/report"
)

type noOperators struct{}

func (noOperators) FindByEmail(ctx context.Context, email string) (*auth.Operator, error) {
	return nil, shared.ErrNotFound
}

func (noOperators) CreateSession(ctx context.Context, id string, operatorID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (noOperators) DeleteSession(ctx context.Context, id string) error { return nil }

type staticCategories struct{}

func (staticCategories) List(ctx context.Context, filters catalogshared.ListFilters) ([]categories.Category, int, error) {
	return []categories.Category{{ID: 1, Name: "Beverages"}}, 1, nil
}

func (staticCategories) Get(ctx context.Context, id int64) (categories.Category, error) {
	return categories.Category{ID: 1, Name: "Beverages"}, nil
}

func newTestRouter(t *testing.T, cfg *Config) (http.Handler, *observability.Metrics) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	templates, err := view.NewEngine()
	require.NoError(t, err)
	sessions := shared.NewSessionManager(redisClient, "northwind_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf")
	metrics := observability.NewMetrics()

	router := NewRouter(RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessions,
		CSRFManager:      csrf,
		Metrics:          metrics,
		AuthHandler:      auth.NewHandler(logger, auth.NewService(noOperators{}), templates, sessions, csrf),
		DashboardHandler: dashboard.NewHandler(logger, nil, templates, csrf, nil),
		CategoriesAPI:    categories.NewHandler(logger, categories.NewService(staticCategories{})),
		JobHandler:       jobs.NewHandler(nil, logger),
		ReportHandler:    report.NewHandler(report.NewClient("http://127.0.0.1:1"), logger),
	})
	return router, metrics
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, &Config{})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"status":"ok"}`, res.Body.String())
}

func TestDashboardRequiresOperator(t *testing.T) {
	router, _ := newTestRouter(t, &Config{})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/dashboard/products", nil))

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/auth/login?next=%2Fdashboard%2Fproducts", res.Header().Get("Location"))
	assert.NotEmpty(t, res.Header().Get("Set-Cookie"))
	assert.Equal(t, "DENY", res.Header().Get("X-Frame-Options"))
}

func TestReportRequiresOperator(t *testing.T) {
	router, _ := newTestRouter(t, &Config{})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/report/ping", nil))

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/auth/login?next=%2Freport%2Fping", res.Header().Get("Location"))
}

func TestRootRedirectsToProducts(t *testing.T) {
	router, _ := newTestRouter(t, &Config{})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, auth.DefaultLanding, res.Header().Get("Location"))
}

func TestConsolePostWithoutCSRFIsForbidden(t *testing.T) {
	router, _ := newTestRouter(t, &Config{})

	form := url.Values{"email": {"nancy@northwind.test"}, "password": {"secret123"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestAPIKeyGuardsCatalogAPI(t *testing.T) {
	router, _ := newTestRouter(t, &Config{APIKey: "k3y"})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Empty(t, res.Header().Get("Set-Cookie"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set(APIKeyHeader, "k3y")
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Beverages")
}

func TestAPIOpenWithoutKey(t *testing.T) {
	router, _ := newTestRouter(t, &Config{})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))

	assert.Equal(t, http.StatusOK, res.Code)
}

func TestMetricsRecordRoutePattern(t *testing.T) {
	router, _ := newTestRouter(t, &Config{})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `northwind_http_requests_total{code="200",route="/healthz"} 1`)
}
