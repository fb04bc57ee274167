package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/kharcha-sync/internal/client"
	"github.com/MKhiriev/kharcha-sync/internal/config"
	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	cfg, err := config.GetClientConfig()
	if err != nil {
		logger.NewLogger("kharcha-client").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewClientLogger("kharcha-client", cfg.App.LogFile)
	defer log.Close()
	log.Info().Str("build", buildInfo.String()).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	app, err := client.NewApp(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(ctx); err != nil {
		log.Error().Err(err).Msg("client run error")
	}
}
