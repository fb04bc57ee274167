package http

import (
	"net/http"
)

func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	serverVersion := h.services.AppInfoService.GetAppVersion(r.Context())

	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(serverVersion))
}

// ping is the reachability probe of the client. It touches no storage.
func (h *Handler) ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
