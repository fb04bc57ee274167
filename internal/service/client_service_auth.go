package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/kharcha-sync/internal/adapter"
	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/signals"
	"github.com/MKhiriev/kharcha-sync/internal/store"
	"github.com/MKhiriev/kharcha-sync/models"
)

type clientAuthService struct {
	local    store.LocalStore
	gateway  adapter.RemoteGateway
	identity *signals.Identity
	logger   *logger.Logger
}

func NewClientAuthService(local store.LocalStore, gateway adapter.RemoteGateway, identity *signals.Identity, logger *logger.Logger) ClientAuthService {
	return &clientAuthService{local: local, gateway: gateway, identity: identity, logger: logger}
}

func (a *clientAuthService) Register(ctx context.Context, user models.User) (models.Session, error) {
	if a.gateway == nil {
		return models.Session{}, fmt.Errorf("%w: no remote store configured", ErrRegisterOnServer)
	}

	session, err := a.gateway.Register(ctx, user)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %w", ErrRegisterOnServer, mapAdapterError(err))
	}
	return session, a.signIn(ctx, session)
}

func (a *clientAuthService) Login(ctx context.Context, user models.User) (models.Session, error) {
	if a.gateway == nil {
		return models.Session{}, fmt.Errorf("%w: no remote store configured", ErrLoginOnServer)
	}

	session, err := a.gateway.Login(ctx, user)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %w", ErrLoginOnServer, mapAdapterError(err))
	}
	return session, a.signIn(ctx, session)
}

func (a *clientAuthService) RestoreSession(ctx context.Context) (models.Session, error) {
	session, err := a.local.LoadSession(ctx)
	if err != nil {
		return models.Session{}, err
	}

	if a.gateway != nil {
		a.gateway.SetToken(session.Token)
	}
	a.identity.Set(session.UserID)

	a.logger.Info().Str("func", "*clientAuthService.RestoreSession").Str("login", session.Login).Msg("session restored")
	return session, nil
}

func (a *clientAuthService) Logout(ctx context.Context) error {
	err := a.local.ClearSession(ctx)
	if a.gateway != nil {
		a.gateway.SetToken("")
	}
	a.identity.Set("")

	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// signIn persists the session before the identity is published, so a
// restart after the reconcile it triggers still finds the user.
func (a *clientAuthService) signIn(ctx context.Context, session models.Session) error {
	if err := a.local.SaveSession(ctx, session); err != nil {
		a.logger.Err(err).Str("func", "*clientAuthService.signIn").Msg("session not persisted")
	}
	a.identity.Set(session.UserID)
	return nil
}

// mapAdapterError translates the adapter's transport error into a business
// error the caller can match.
func mapAdapterError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, adapter.ErrUnauthorized):
		return fmt.Errorf("%w: %w", ErrWrongPassword, err)
	case errors.Is(err, adapter.ErrConflict):
		return fmt.Errorf("%w: %w", store.ErrLoginAlreadyExists, err)
	case errors.Is(err, adapter.ErrBadRequest):
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return err
}
