package handler

import (
	"github.com/MKhiriev/kharcha-sync/internal/config"
	"github.com/MKhiriev/kharcha-sync/internal/handler/http"
	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/service"
)

// Handlers groups the transport handlers of the document store.
type Handlers struct {
	HTTP    *http.Handler
	Metrics *http.Metrics
}

func NewHandlers(services *service.Services, cfg *config.ServerConfig, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.Server.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	metrics := http.NewMetrics()

	return &Handlers{
		HTTP:    http.NewHandler(services, cfg.App.HashKey, metrics, logger),
		Metrics: metrics,
	}, nil
}
