package main

import (
	"context"

	"github.com/MKhiriev/kharcha-sync/internal/config"
	"github.com/MKhiriev/kharcha-sync/internal/handler"
	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/server"
	"github.com/MKhiriev/kharcha-sync/internal/service"
	"github.com/MKhiriev/kharcha-sync/internal/store"
	"github.com/MKhiriev/kharcha-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	log := logger.NewLogger("kharcha-server")
	log.Info().Str("build", buildInfo.String()).Msg("starting")

	cfg, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.Version == "" {
		cfg.App.Version = buildInfo.BuildVersion()
	}

	storages, err := store.NewStorages(context.Background(), cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	services := service.NewServices(storages, cfg.App, log)

	handlers, err := handler.NewHandlers(services, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}
