// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"fmt"
	"net/http"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/service"
	"github.com/MKhiriev/kharcha-sync/internal/utils"
	"github.com/MKhiriev/kharcha-sync/models"
	"github.com/go-chi/chi/v5"
)

// pullAll answers with every collection of the user. Collections without
// records are present with an empty list.
func (h *Handler) pullAll(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	snapshot, err := h.services.DocumentService.PullAll(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, "pull failed")
		return
	}

	resp := models.PullResponse{Collections: make(map[models.Collection][]models.Record, len(models.Collections))}
	for _, c := range models.Collections {
		records := snapshot[c]
		if records == nil {
			records = []models.Record{}
		}
		resp.Collections[c] = records
	}

	_, _ = utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) listCollection(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	c, err := models.ParseCollection(chi.URLParam(r, "collection"))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %w", service.ErrInvalidDataProvided, err), "unknown collection")
		return
	}

	records, err := h.services.DocumentService.List(r.Context(), userID, c)
	if err != nil {
		writeError(w, r, err, "list failed")
		return
	}
	if records == nil {
		records = []models.Record{}
	}

	_, _ = utils.WriteJSON(w, models.ListResponse{Records: records, Length: len(records)}, http.StatusOK)
}

// upsertRecord creates or replaces one record. The body is the bare payload;
// the record identity comes from the path.
func (h *Handler) upsertRecord(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	c, id, err := recordRoute(r)
	if err != nil {
		writeError(w, r, err, "invalid record route")
		return
	}

	var payload models.Payload
	if err = utils.DecodeJSON(r, &payload); err != nil {
		writeError(w, r, fmt.Errorf("%w: %w", service.ErrInvalidDataProvided, err), "invalid JSON was passed")
		return
	}

	saved, err := h.services.DocumentService.Upsert(r.Context(), userID, models.Record{ID: id, Collection: c, Payload: payload})
	if err != nil {
		writeError(w, r, err, "upsert failed")
		return
	}

	_, _ = utils.WriteJSON(w, saved, http.StatusOK)
}

// deleteRecord removes one record. Deleting a missing record succeeds.
func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	c, id, err := recordRoute(r)
	if err != nil {
		writeError(w, r, err, "invalid record route")
		return
	}

	if err = h.services.DocumentService.Delete(r.Context(), userID, c, id); err != nil {
		writeError(w, r, err, "delete failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// commitBatch applies all changes atomically. On failure nothing is applied.
func (h *Handler) commitBatch(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	log := logger.FromRequest(r)

	var request models.BatchRequest
	if err := utils.DecodeJSON(r, &request); err != nil {
		h.metrics.observeBatch(batchRejected, 0)
		writeError(w, r, fmt.Errorf("%w: %w", service.ErrInvalidDataProvided, err), "invalid JSON was passed")
		return
	}

	if err := h.services.DocumentService.CommitBatch(r.Context(), userID, request); err != nil {
		if statusFromError(err) >= http.StatusInternalServerError {
			h.metrics.observeBatch(batchFailed, len(request.Changes))
		} else {
			h.metrics.observeBatch(batchRejected, len(request.Changes))
		}
		writeBatchError(w, r, err)
		return
	}

	h.metrics.observeBatch(batchCommitted, len(request.Changes))
	log.Debug().Str("user_id", userID).Int("changes", len(request.Changes)).Msg("batch committed")

	w.WriteHeader(http.StatusNoContent)
}

func recordRoute(r *http.Request) (models.Collection, string, error) {
	c, err := models.ParseCollection(chi.URLParam(r, "collection"))
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", service.ErrInvalidDataProvided, err)
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		return "", "", fmt.Errorf("%w: id", ErrEmptyRouteParam)
	}
	return c, id, nil
}
