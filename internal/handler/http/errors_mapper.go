package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/service"
	"github.com/MKhiriev/kharcha-sync/internal/store"
	"github.com/MKhiriev/kharcha-sync/internal/utils"
	"github.com/MKhiriev/kharcha-sync/models"
)

// errorStatusMap is consulted in order; the first matching sentinel wins.
var errorStatusMap = []struct {
	err    error
	status int
}{
	{service.ErrInvalidDataProvided, http.StatusBadRequest},
	{store.ErrInvalidChange, http.StatusBadRequest},
	{ErrEmptyRouteParam, http.StatusBadRequest},
	{ErrMissingHash, http.StatusBadRequest},
	{ErrHashMismatch, http.StatusBadRequest},

	{service.ErrWrongPassword, http.StatusUnauthorized},
	{store.ErrNoUserWasFound, http.StatusUnauthorized},
	{service.ErrTokenIsExpired, http.StatusUnauthorized},
	{service.ErrTokenIsExpiredOrInvalid, http.StatusUnauthorized},
	{ErrEmptyAuthorizationHeader, http.StatusUnauthorized},
	{ErrInvalidAuthorizationHeader, http.StatusUnauthorized},
	{ErrEmptyToken, http.StatusUnauthorized},

	{service.ErrUnauthorizedAccessToDifferentUserData, http.StatusForbidden},
	{store.ErrUnknownUser, http.StatusNotFound},
	{store.ErrLoginAlreadyExists, http.StatusConflict},

	{store.ErrRetryable, http.StatusServiceUnavailable},

	{service.ErrTokenCreationFailed, http.StatusInternalServerError},
	{store.ErrBuildingSQLQuery, http.StatusInternalServerError},
	{store.ErrExecutingQuery, http.StatusInternalServerError},
	{store.ErrBeginningTransaction, http.StatusInternalServerError},
	{store.ErrCommitingTransaction, http.StatusInternalServerError},
	{store.ErrScanningRow, http.StatusInternalServerError},
	{store.ErrScanningRows, http.StatusInternalServerError},
}

func statusFromError(err error) int {
	for _, e := range errorStatusMap {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// writeError logs err and answers with the mapped status. Server errors hide
// their text from the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := statusFromError(err)
	log := logger.FromRequest(r)

	if status >= http.StatusInternalServerError {
		log.Err(err).Int("status", status).Msg(msg)
		http.Error(w, http.StatusText(status), status)
		return
	}

	log.Warn().Err(err).Int("status", status).Msg(msg)
	http.Error(w, err.Error(), status)
}

// writeBatchError answers a failed batch commit. A client-side fault tied to
// one change is reported as 422 with the change index so the client can set
// that change aside. Server faults carry no index.
func writeBatchError(w http.ResponseWriter, r *http.Request, err error) {
	var itemErr *models.BatchItemError
	if !errors.As(err, &itemErr) || statusFromError(err) >= http.StatusInternalServerError {
		writeError(w, r, err, "batch commit failed")
		return
	}

	logger.FromRequest(r).Warn().Err(err).
		Int("index", itemErr.Index).
		Msg("batch rejected")

	body := models.BatchErrorResponse{Error: itemErr.Err.Error(), Index: itemErr.Index}
	_, _ = utils.WriteJSON(w, body, http.StatusUnprocessableEntity)
}
