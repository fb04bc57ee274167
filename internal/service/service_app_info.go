package service

import (
	"context"

	"github.com/MKhiriev/kharcha-sync/internal/config"
	"github.com/MKhiriev/kharcha-sync/internal/logger"
)

// unknownVersion is served when the build did not stamp a version.
const unknownVersion = "dev"

type appInfoService struct {
	appVersion string

	logger *logger.Logger
}

func NewAppInfoService(cfg config.ServerApp, logger *logger.Logger) AppInfoService {
	version := cfg.Version
	if version == "" {
		version = unknownVersion
	}

	return &appInfoService{
		appVersion: version,
		logger:     logger,
	}
}

func (s *appInfoService) GetAppVersion(ctx context.Context) string {
	return s.appVersion
}
