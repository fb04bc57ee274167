package http

import (
	"net/http"
	"time"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/rs/zerolog"
)

// withLogging writes one access log line per request using the request-scoped
// logger. Server errors are logged at error level and client errors at warn.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		start := time.Now()
		uri := r.RequestURI
		method := r.Method

		lw := &responseWriter{ResponseWriter: w}

		next.ServeHTTP(lw, r)

		status := lw.status
		if status == 0 {
			status = http.StatusOK
		}

		level := zerolog.InfoLevel
		switch {
		case status >= http.StatusInternalServerError:
			level = zerolog.ErrorLevel
		case status >= http.StatusBadRequest:
			level = zerolog.WarnLevel
		}

		log.WithLevel(level).
			Str("uri", uri).
			Str("method", method).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Int("size", lw.size).
			Send()
	})
}
