package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/MKhiriev/kharcha-sync/internal/config"
	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// shutdownTimeout bounds how long in-flight requests may take after a stop
// signal.
const shutdownTimeout = 10 * time.Second

type httpServer struct {
	server *http.Server

	mu       sync.Mutex
	listener net.Listener

	logger *logger.Logger
}

// newHTTPServer wraps handler with the per-request timeout from cfg. The
// request context is cancelled when the timeout fires.
func newHTTPServer(handler http.Handler, cfg config.Server, logger *logger.Logger) *httpServer {
	if cfg.RequestTimeout > 0 {
		handler = middleware.Timeout(cfg.RequestTimeout)(handler)
	}

	return &httpServer{
		server: &http.Server{
			Addr:              cfg.HTTPAddress,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		logger: logger,
	}
}

// listen binds the configured address. It is separate from serve so that the
// bound address is known before serving starts.
func (h *httpServer) listen() error {
	ln, err := net.Listen("tcp", h.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", h.server.Addr, err)
	}

	h.mu.Lock()
	h.listener = ln
	h.mu.Unlock()

	h.logger.Info().Str("address", ln.Addr().String()).Msg("HTTP server is listening")
	return nil
}

func (h *httpServer) serve() error {
	h.mu.Lock()
	ln := h.listener
	h.mu.Unlock()
	if ln == nil {
		return errServerNotStarted
	}

	if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server Serve: %w", err)
	}
	return nil
}

// addr returns the bound address, or nil before listen.
func (h *httpServer) addr() net.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener == nil {
		return nil
	}
	return h.listener.Addr()
}

func (h *httpServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := h.server.Shutdown(ctx); err != nil {
		h.logger.Err(err).Msg("HTTP server Shutdown")
	}
}
