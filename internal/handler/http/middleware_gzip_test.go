// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/MKhiriev/kharcha-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func gzipBytes(t *testing.T, data []byte) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return &buf
}

func gunzipBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	gz, err := gzip.NewReader(body)
	require.NoError(t, err)
	defer gz.Close()
	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	return data
}

// serveEncoded гоняет запрос через весь роутер от имени ownerID.
func serveEncoded(docs *mockDocumentService, req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	newServicesHandler(tokenFor(ownerID), docs).Init().ServeHTTP(rec, req)
	return rec
}

func bigSnapshot(n int) models.Snapshot {
	txs := make([]models.Record, n)
	for i := range txs {
		txs[i] = models.Record{
			ID:         fmt.Sprintf("tx-%04d", i),
			Collection: models.CollectionTransactions,
			Payload:    models.Payload{"type": "expense", "amount": "12.50", "category": "food", "date": "2026-03-01T00:00:00Z"},
		}
	}
	return models.Snapshot{models.CollectionTransactions: txs}
}

// ---- request bodies ----

func TestGZip_BatchBodyIsDecoded(t *testing.T) {
	changes := []models.PendingChange{
		{Seq: 1, Op: models.OpCreate, Collection: models.CollectionTransactions, ID: "t1", Data: models.Payload{"amount": "500"}},
		{Seq: 2, Op: models.OpDelete, Collection: models.CollectionGoals, ID: "g1"},
	}
	raw, err := json.Marshal(models.BatchRequest{Changes: changes, Length: len(changes)})
	require.NoError(t, err)

	tests := []struct {
		name            string
		contentEncoding string
	}{
		{name: "gzip", contentEncoding: "gzip"},
		{name: "gzip among several encodings", contentEncoding: "gzip, deflate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got models.BatchRequest
			docs := &mockDocumentService{
				commitBatchFn: func(_ context.Context, userID string, request models.BatchRequest) error {
					assert.Equal(t, ownerID, userID)
					got = request
					return nil
				},
			}

			req := httptest.NewRequest(http.MethodPost, dataPath("/batch"), gzipBytes(t, raw))
			req.Header.Set("Content-Encoding", tt.contentEncoding)
			req.Header.Set("Content-Type", "application/json")

			rec := serveEncoded(docs, req)

			require.Equal(t, http.StatusNoContent, rec.Code)
			require.Len(t, got.Changes, 2)
			assert.Equal(t, "t1", got.Changes[0].ID)
			assert.Equal(t, models.OpDelete, got.Changes[1].Op)
		})
	}
}

func TestGZip_CorruptBatchBodyIsRejected(t *testing.T) {
	docs := &mockDocumentService{
		commitBatchFn: func(context.Context, string, models.BatchRequest) error {
			t.Fatal("CommitBatch must not be called")
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, dataPath("/batch"), strings.NewReader(`{"changes":[]}`))
	req.Header.Set("Content-Encoding", "gzip")

	rec := serveEncoded(docs, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGZip_RecordPayloadIsDecodedAndEchoedCompressed(t *testing.T) {
	docs := &mockDocumentService{
		upsertFn: func(_ context.Context, _ string, record models.Record) (models.Record, error) {
			assert.Equal(t, "b1", record.ID)
			assert.Equal(t, "food", record.Payload["category"])
			return record, nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, dataPath("/budgets/b1"), gzipBytes(t, []byte(`{"category":"food","amount":"300"}`)))
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Accept-Encoding", "gzip")

	rec := serveEncoded(docs, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	var saved models.Record
	require.NoError(t, json.Unmarshal(gunzipBody(t, rec.Body), &saved))
	assert.Equal(t, "b1", saved.ID)
	assert.Equal(t, models.CollectionBudgets, saved.Collection)
}

// ---- responses ----

func TestGZip_PullResponse(t *testing.T) {
	tests := []struct {
		name           string
		acceptEncoding string
		wantGzip       bool
	}{
		{name: "gzip accepted", acceptEncoding: "gzip", wantGzip: true},
		{name: "gzip with quality values", acceptEncoding: "gzip;q=1.0, identity;q=0.5", wantGzip: true},
		{name: "gzip among several encodings", acceptEncoding: "deflate, gzip, br", wantGzip: true},
		{name: "no accept-encoding", acceptEncoding: "", wantGzip: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := &mockDocumentService{
				pullAllFn: func(context.Context, string) (models.Snapshot, error) { return bigSnapshot(3), nil },
			}

			req := httptest.NewRequest(http.MethodGet, dataPath(), nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			rec := serveEncoded(docs, req)
			require.Equal(t, http.StatusOK, rec.Code)

			body := rec.Body.Bytes()
			if tt.wantGzip {
				assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
				body = gunzipBody(t, rec.Body)
			} else {
				assert.Empty(t, rec.Header().Get("Content-Encoding"))
			}

			var resp models.PullResponse
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.Len(t, resp.Collections[models.CollectionTransactions], 3)
			assert.Empty(t, resp.Collections[models.CollectionRecurring])
		})
	}
}

func TestGZip_LargePullCompresses(t *testing.T) {
	docs := &mockDocumentService{
		pullAllFn: func(context.Context, string) (models.Snapshot, error) { return bigSnapshot(500), nil },
	}

	plainReq := httptest.NewRequest(http.MethodGet, dataPath(), nil)
	plain := serveEncoded(docs, plainReq)

	gzReq := httptest.NewRequest(http.MethodGet, dataPath(), nil)
	gzReq.Header.Set("Accept-Encoding", "gzip")
	compressed := serveEncoded(docs, gzReq)

	require.Equal(t, http.StatusOK, compressed.Code)
	assert.Less(t, compressed.Body.Len(), plain.Body.Len()/5)
	assert.JSONEq(t, plain.Body.String(), string(gunzipBody(t, compressed.Body)))
}

func TestGZip_DeleteStaysBodiless(t *testing.T) {
	docs := &mockDocumentService{
		deleteFn: func(context.Context, string, models.Collection, string) error { return nil },
	}

	req := httptest.NewRequest(http.MethodDelete, dataPath("/goals/g1"), nil)
	req.Header.Set("Accept-Encoding", "gzip")

	rec := serveEncoded(docs, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Zero(t, rec.Body.Len())
}

// Write без WriteHeader тоже должен выставить Content-Encoding.
func TestGZip_ImplicitStatusIsCompressed(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"collections":{}}`))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/u/data", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	withGZip(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.JSONEq(t, `{"collections":{}}`, string(gunzipBody(t, rec.Body)))
}

// Ответ со статусом, но без тела, остаётся валидным gzip-потоком.
func TestGZip_StatusWithoutBodyIsValidStream(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	withGZip(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, gunzipBody(t, rec.Body))
}

// ---- pools ----

func TestGZip_PooledWritersAndReadersStayIsolated(t *testing.T) {
	// каждый запрос получает обратно ровно свой батч
	echo := withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request models.BatchRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(request)
	}))

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			id := fmt.Sprintf("t%d", i)
			raw, _ := json.Marshal(models.BatchRequest{Changes: []models.PendingChange{{Op: models.OpCreate, Collection: models.CollectionTransactions, ID: id}}, Length: 1})

			var buf bytes.Buffer
			gz := gzip.NewWriter(&buf)
			_, _ = gz.Write(raw)
			_ = gz.Close()

			req := httptest.NewRequest(http.MethodPost, "/api/users/u/data/batch", &buf)
			req.Header.Set("Content-Encoding", "gzip")
			req.Header.Set("Accept-Encoding", "gzip")
			rec := httptest.NewRecorder()
			echo.ServeHTTP(rec, req)

			if !assert.Equal(t, http.StatusOK, rec.Code) {
				return
			}
			reader, err := gzip.NewReader(rec.Body)
			if !assert.NoError(t, err) {
				return
			}
			var got models.BatchRequest
			assert.NoError(t, json.NewDecoder(reader).Decode(&got))
			if assert.Len(t, got.Changes, 1) {
				assert.Equal(t, id, got.Changes[0].ID)
			}
		}(i)
	}
	wg.Wait()
}

func TestWrappedReadCloser_Close(t *testing.T) {
	closed := false
	wrapped := &wrappedReadCloser{Reader: strings.NewReader("{}"), OnClose: func() { closed = true }}

	assert.NoError(t, wrapped.Close())
	assert.True(t, closed)

	// без колбэка Close тоже не падает
	assert.NoError(t, (&wrappedReadCloser{Reader: strings.NewReader("{}")}).Close())
}
