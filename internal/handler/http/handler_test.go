package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/service"
	"github.com/MKhiriev/kharcha-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────
// NewHandler
// ─────────────────────────────────────────────

func TestNewHandler_StoresDependencies(t *testing.T) {
	svc := &service.Services{}
	log := logger.Nop()
	metrics := NewMetrics()

	h := NewHandler(svc, "key", metrics, log)

	require.NotNil(t, h)
	assert.Same(t, svc, h.services)
	assert.Same(t, log, h.logger)
	assert.Same(t, metrics, h.metrics)
	assert.True(t, h.hasher.Enabled())
}

func TestNewHandler_DefaultsMetricsAndDisablesHashing(t *testing.T) {
	h1 := NewHandler(&service.Services{}, "", nil, logger.Nop())
	h2 := NewHandler(&service.Services{}, "", nil, logger.Nop())

	require.NotNil(t, h1.metrics)
	assert.NotSame(t, h1.metrics, h2.metrics, "each handler gets its own registry")
	assert.False(t, h1.hasher.Enabled())
}

// ─────────────────────────────────────────────
// Init: route registration
// ─────────────────────────────────────────────

type routeCase struct {
	method string
	path   string
}

// expectedRoutes lists every route that Init() must register. Protected
// routes answer 401 without a token, which still proves they exist.
var expectedRoutes = []routeCase{
	{http.MethodGet, "/api/ping"},
	{http.MethodGet, "/api/version"},
	{http.MethodGet, "/metrics"},
	{http.MethodPost, "/api/auth/register"},
	{http.MethodPost, "/api/auth/login"},
	{http.MethodGet, "/api/users/u1/data"},
	{http.MethodPost, "/api/users/u1/data/batch"},
	{http.MethodGet, "/api/users/u1/data/transactions"},
	{http.MethodPut, "/api/users/u1/data/transactions/t1"},
	{http.MethodDelete, "/api/users/u1/data/transactions/t1"},
}

func newRouteTestHandler() *Handler {
	auth := &mockAuthService{
		registerUserFn: func(_ context.Context, u models.User) (models.User, error) { return u, service.ErrInvalidDataProvided },
		loginFn:        func(_ context.Context, u models.User) (models.User, error) { return u, service.ErrInvalidDataProvided },
	}
	return newServicesHandler(auth, &mockDocumentService{})
}

func TestInit_RegistersAllRoutes(t *testing.T) {
	router := newRouteTestHandler().Init()

	for _, tc := range expectedRoutes {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.NotEqual(t, http.StatusNotFound, rec.Code, "route not found: %s %s", tc.method, tc.path)
			assert.NotEqual(t, http.StatusMethodNotAllowed, rec.Code, "method not allowed: %s %s", tc.method, tc.path)
		})
	}
}

func TestInit_DataRoutesRequireToken(t *testing.T) {
	router := newRouteTestHandler().Init()

	for _, tc := range expectedRoutes {
		if !strings.HasPrefix(tc.path, "/api/users/") {
			continue
		}
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestInit_UnknownRouteReturns404(t *testing.T) {
	router := newRouteTestHandler().Init()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInit_WrongMethodReturns404(t *testing.T) {
	router := newRouteTestHandler().Init()

	for _, tc := range []routeCase{
		{http.MethodPost, "/api/version"},
		{http.MethodGet, "/api/auth/login"},
		{http.MethodDelete, "/api/ping"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestInit_EchoesTraceID(t *testing.T) {
	router := newRouteTestHandler().Init()

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(traceIDHeader, "trace-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "trace-123", rec.Header().Get(traceIDHeader))
}

// ─────────────────────────────────────────────
// /metrics
// ─────────────────────────────────────────────

func scrape(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_RequestsAreLabelledByRoutePattern(t *testing.T) {
	h := newServicesHandler(tokenFor(ownerID), &mockDocumentService{
		deleteFn: func(_ context.Context, _ string, _ models.Collection, _ string) error { return nil },
	})
	router := h.Init()

	for _, id := range []string{"g1", "g2", "g3"} {
		req := httptest.NewRequest(http.MethodDelete, "/api/users/"+ownerID+"/data/goals/"+id, nil)
		req.Header.Set("Authorization", "Bearer t")
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	body := scrape(t, router)

	assert.Contains(t, body, `requests_total{code="204",method="DELETE",url="/api/users/{userID}/data/{collection}/{id}"} 3`)
	assert.NotContains(t, body, "/goals/g2", "path parameters must not leak into labels")
	assert.Contains(t, body, "request_duration_seconds_bucket")
}

func TestMetrics_BatchOutcomes(t *testing.T) {
	fail := false
	h := newServicesHandler(tokenFor(ownerID), &mockDocumentService{
		commitBatchFn: func(_ context.Context, _ string, _ models.BatchRequest) error {
			if fail {
				return &models.BatchItemError{Index: 0, Err: service.ErrInvalidDataProvided}
			}
			return nil
		},
	})
	router := h.Init()

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/users/"+ownerID+"/data/batch",
			strings.NewReader(`{"changes":[{"type":"add","collection":"goals","id":"g1","data":{}}],"length":1}`))
		req.Header.Set("Authorization", "Bearer t")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusNoContent, post())
	require.Equal(t, http.StatusNoContent, post())
	fail = true
	require.Equal(t, http.StatusUnprocessableEntity, post())

	body := scrape(t, router)

	assert.Contains(t, body, `batch_commits_total{result="committed"} 2`)
	assert.Contains(t, body, `batch_commits_total{result="rejected"} 1`)
	assert.Contains(t, body, "batch_commit_changes_count 2")
}
