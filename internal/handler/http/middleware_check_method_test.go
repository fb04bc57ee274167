// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/MKhiriev/kharcha-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allowAllDocs answers every document call with success.
func allowAllDocs() *mockDocumentService {
	return &mockDocumentService{
		pullAllFn:     func(context.Context, string) (models.Snapshot, error) { return models.Snapshot{}, nil },
		listFn:        func(context.Context, string, models.Collection) ([]models.Record, error) { return nil, nil },
		upsertFn:      func(_ context.Context, _ string, r models.Record) (models.Record, error) { return r, nil },
		deleteFn:      func(context.Context, string, models.Collection, string) error { return nil },
		commitBatchFn: func(context.Context, string, models.BatchRequest) error { return nil },
	}
}

func TestCheckHTTPMethod_Routes(t *testing.T) {
	router := newServicesHandler(tokenFor(ownerID), allowAllDocs()).Init()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		// зарегистрированные маршруты отвечают как обычно
		{name: "ping", method: http.MethodGet, path: "/api/ping", wantStatus: http.StatusNoContent},
		{name: "version", method: http.MethodGet, path: "/api/version", wantStatus: http.StatusOK},
		{name: "pull", method: http.MethodGet, path: dataPath(), wantStatus: http.StatusOK},
		{name: "batch", method: http.MethodPost, path: dataPath("/batch"), body: `{"changes":[],"length":0}`, wantStatus: http.StatusNoContent},
		{name: "list", method: http.MethodGet, path: dataPath("/transactions"), wantStatus: http.StatusOK},
		{name: "upsert", method: http.MethodPut, path: dataPath("/goals/g1"), body: `{"target":"1000"}`, wantStatus: http.StatusOK},
		{name: "delete", method: http.MethodDelete, path: dataPath("/goals/g1"), wantStatus: http.StatusNoContent},

		// путь есть, метода нет: 404 вместо 405
		{name: "POST ping", method: http.MethodPost, path: "/api/ping", wantStatus: http.StatusNotFound},
		{name: "DELETE version", method: http.MethodDelete, path: "/api/version", wantStatus: http.StatusNotFound},
		{name: "GET register", method: http.MethodGet, path: "/api/auth/register", wantStatus: http.StatusNotFound},
		{name: "PUT login", method: http.MethodPut, path: "/api/auth/login", wantStatus: http.StatusNotFound},
		{name: "DELETE pull", method: http.MethodDelete, path: dataPath(), wantStatus: http.StatusNotFound},
		{name: "PUT batch", method: http.MethodPut, path: dataPath("/batch"), body: `{}`, wantStatus: http.StatusNotFound},
		{name: "POST record", method: http.MethodPost, path: dataPath("/goals/g1"), wantStatus: http.StatusNotFound},
		{name: "PATCH record", method: http.MethodPatch, path: dataPath("/goals/g1"), wantStatus: http.StatusNotFound},
		{name: "POST collection", method: http.MethodPost, path: dataPath("/goals"), wantStatus: http.StatusNotFound},

		// несуществующий путь
		{name: "unknown path", method: http.MethodGet, path: "/api/wallets", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			req.Header.Set("Authorization", "Bearer token")

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEqual(t, http.StatusMethodNotAllowed, rec.Code)
		})
	}
}

// Маршрут отвечает 404 и не сообщает, какие методы на нём есть.
func TestCheckHTTPMethod_HidesAllowedMethods(t *testing.T) {
	router := newServicesHandler(tokenFor(ownerID), allowAllDocs()).Init()

	req := httptest.NewRequest(http.MethodPatch, dataPath("/budgets/b1"), nil)
	req.Header.Set("Authorization", "Bearer token")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get("Allow"))
	assert.Zero(t, rec.Body.Len())
}

// Методы, которые путь обслуживает, пишутся в debug-лог.
func TestCheckHTTPMethod_LogsServedMethods(t *testing.T) {
	tests := []struct {
		method string
		path   string
		served []any
	}{
		{http.MethodPost, "/api/ping", []any{http.MethodGet}},
		{http.MethodGet, "/api/auth/login", []any{http.MethodPost}},
		{http.MethodPatch, dataPath("/goals/g1"), []any{http.MethodPut, http.MethodDelete}},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var logBuf bytes.Buffer
			router := newLoggedRouter(&logBuf, allowAllDocs())

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer token")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusNotFound, rec.Code)

			var found bool
			for _, line := range logLines(t, &logBuf) {
				if line["message"] != "method is not served on this route" {
					continue
				}
				found = true
				assert.Equal(t, tt.method, line["method"])
				assert.Equal(t, tt.served, line["served"])
			}
			assert.True(t, found, "debug line expected in:\n%s", logBuf.String())
		})
	}
}

func TestCheckHTTPMethod_ConcurrentRequests(t *testing.T) {
	router := newServicesHandler(tokenFor(ownerID), allowAllDocs()).Init()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			method, want := http.MethodGet, http.StatusOK
			if i%2 == 1 {
				method, want = http.MethodPatch, http.StatusNotFound
			}

			req := httptest.NewRequest(method, dataPath("/recurring"), nil)
			req.Header.Set("Authorization", "Bearer token")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, want, rec.Code)
		}(i)
	}
	wg.Wait()
}
