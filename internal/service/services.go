package service

import (
	"github.com/MKhiriev/kharcha-sync/internal/config"
	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/store"
)

type Services struct {
	AuthService     AuthService
	DocumentService DocumentService
	AppInfoService  AppInfoService
}

func NewServices(storages *store.Storages, cfg config.ServerApp, logger *logger.Logger) *Services {
	documents := NewDocumentValidationService().Wrap(NewDocumentService(storages.DocumentRepository, logger))

	return &Services{
		AuthService:     NewAuthService(storages.UserRepository, cfg, logger),
		DocumentService: documents,
		AppInfoService:  NewAppInfoService(cfg, logger),
	}
}
