package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/kharcha-sync/internal/adapter"
	"github.com/MKhiriev/kharcha-sync/internal/config"
	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/service"
	"github.com/MKhiriev/kharcha-sync/internal/signals"
	"github.com/MKhiriev/kharcha-sync/internal/store"
	"github.com/MKhiriev/kharcha-sync/internal/workers"
	"github.com/MKhiriev/kharcha-sync/models"
)

// App is the sync daemon: local storage, the orchestrator and its background
// workers.
type App struct {
	cfg      *config.ClientConfig
	storages *store.ClientStorages
	services *service.ClientServices
	workers  *workers.Workers
	logger   *logger.Logger
}

// NewApp opens local storage and wires the client services. Without a
// configured remote address the app runs local-only and starts no workers.
func NewApp(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	var gateway adapter.RemoteGateway
	if !cfg.LocalOnly() {
		gateway, err = adapter.NewHTTPGateway(cfg.Adapter, cfg.App, log)
		if err != nil {
			storages.Close()
			return nil, fmt.Errorf("create remote gateway: %w", err)
		}
	}

	services := service.NewClientServices(storages.Local, gateway, cfg.App, log)

	var background []workers.Worker
	if gateway != nil {
		prober := signals.NewProber(gateway, services.Connectivity, cfg.Adapter.RequestTimeout, log)
		background = append(background,
			workers.NewProbeWorker(prober, cfg.Workers.ProbeInterval),
			workers.NewSyncWorker(services.SyncService, cfg.Workers.SyncInterval, log),
		)
	}

	return &App{
		cfg:      cfg,
		storages: storages,
		services: services,
		workers:  workers.NewWorkers(background...),
		logger:   log,
	}, nil
}

// Services exposes the wired client services.
func (a *App) Services() *service.ClientServices {
	return a.services
}

// Run signs in, starts the orchestrator and the workers, and blocks until ctx
// is done. Storage is closed on return.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if err := a.signIn(ctx); err != nil {
		return err
	}

	if err := a.services.SyncService.Start(ctx); err != nil {
		return fmt.Errorf("start sync service: %w", err)
	}

	unsubscribe := a.services.SyncService.Subscribe(func(status models.SyncStatus) {
		a.logger.Debug().
			Stringer("state", status.State).
			Int("pending", status.Pending).
			Msg("sync status changed")
	})
	defer unsubscribe()

	a.workers.Start(ctx)
	a.logger.Info().Bool("local_only", a.cfg.LocalOnly()).Msg("client started")

	<-ctx.Done()

	a.workers.Stop()
	a.services.SyncService.Stop()
	a.logger.Info().Msg("client stopped")
	return nil
}

// signIn restores the stored session, or logs in with the configured
// credentials. An unreachable remote store is not fatal: the client keeps
// working locally.
func (a *App) signIn(ctx context.Context) error {
	session, err := a.services.AuthService.RestoreSession(ctx)
	if err == nil {
		a.logger.Info().Str("user_id", session.UserID).Msg("session restored")
		return nil
	}
	if !errors.Is(err, store.ErrLocalSessionNotFound) {
		return fmt.Errorf("restore session: %w", err)
	}

	if a.cfg.LocalOnly() || a.cfg.App.Login == "" {
		a.logger.Info().Msg("no session, running without identity")
		return nil
	}

	session, err = a.services.AuthService.Login(ctx, models.User{
		Login:    a.cfg.App.Login,
		Password: a.cfg.App.Password,
	})
	switch {
	case err == nil:
		a.logger.Info().Str("user_id", session.UserID).Msg("logged in")
		return nil
	case errors.Is(err, service.ErrWrongPassword), errors.Is(err, adapter.ErrUnauthorized):
		return fmt.Errorf("login: %w", err)
	default:
		a.logger.Warn().Err(err).Msg("login failed, continuing offline")
		return nil
	}
}

func (a *App) close() {
	if err := a.storages.Close(); err != nil {
		a.logger.Err(err).Msg("close local storage")
	}
}
