package server

import (
	"context"
	"net"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/kharcha-sync/internal/config"
	"github.com/MKhiriev/kharcha-sync/internal/handler"
	"github.com/MKhiriev/kharcha-sync/internal/logger"
)

type server struct {
	httpServer *httpServer
	logger     *logger.Logger
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if handlers == nil || handlers.HTTP == nil || cfg.HTTPAddress == "" {
		return nil, errNoServersAreCreated
	}

	return &server{
		httpServer: newHTTPServer(handlers.HTTP.Init(), cfg, logger),
		logger:     logger,
	}, nil
}

func (s *server) RunServer() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	if err := s.Run(ctx); err != nil {
		s.logger.Err(err).Msg("error running server")
	}
}

func (s *server) Run(ctx context.Context) error {
	if err := s.httpServer.listen(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Msg("Launching HTTP server")
		errCh <- s.httpServer.serve()
	}()

	select {
	case <-ctx.Done():
		s.Shutdown()
		err := <-errCh
		s.logger.Info().Msg("server Shutdown gracefully")
		return err
	case err := <-errCh:
		return err
	}
}

func (s *server) Shutdown() {
	s.httpServer.Shutdown()
}

// Addr returns the address the server is bound to, or nil before Run.
func (s *server) Addr() net.Addr {
	return s.httpServer.addr()
}
