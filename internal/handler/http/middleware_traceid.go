package http

import (
	"net/http"

	"github.com/MKhiriev/kharcha-sync/internal/utils"
	"github.com/rs/zerolog"
)

const (
	traceIDHeader    = "X-Trace-ID"
	maxTraceIDLength  = 128
)

var traceIDs = utils.NewUUIDGenerator()

// withTraceID attaches a child logger carrying trace_id to the request
// context and echoes the id in the response. A client-supplied id is reused
// when it is short printable ASCII; otherwise a UUIDv7 is generated.
func (h *Handler) withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceIDHeader)
		if !validTraceID(traceID) {
			traceID = traceIDs.Generate()
		}

		l := h.logger.GetChildLogger()
		l.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("trace_id", traceID)
		})
		r = r.WithContext(l.WithContext(r.Context()))

		w.Header().Set(traceIDHeader, traceID)
		next.ServeHTTP(w, r)
	})
}

func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
