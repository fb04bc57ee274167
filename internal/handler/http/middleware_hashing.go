package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/utils"
)

// withHashCheck verifies the HMAC-SHA256 of the request body carried in the
// HashSHA256 header. It is a no-op when the handler has no hash key. The body
// is restored for the next handler.
func (h *Handler) withHashCheck(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.hasher.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)

		sum := r.Header.Get(utils.HashHeader)
		if sum == "" {
			writeError(w, r, ErrMissingHash, "request is not signed")
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, utils.MaxRequestBody))
		if err != nil {
			log.Err(err).Str("func", "*Handler.withHashCheck").Msg("failed to read request body")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		if !h.hasher.Verify(body, sum) {
			writeError(w, r, fmt.Errorf("%w: got %s", ErrHashMismatch, sum), "hashes are not equal")
			return
		}

		log.Debug().Str("func", "*Handler.withHashCheck").Msg("hashes are equal")
		next.ServeHTTP(w, r)
	})
}
