package service

import (
	"github.com/MKhiriev/kharcha-sync/internal/adapter"
	"github.com/MKhiriev/kharcha-sync/internal/config"
	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/queue"
	"github.com/MKhiriev/kharcha-sync/internal/signals"
	"github.com/MKhiriev/kharcha-sync/internal/store"
)

// ClientServices wires the client side together: the orchestrator, its
// signals, the finance facade and authentication.
type ClientServices struct {
	SyncService    ClientSyncService
	FinanceService ClientFinanceService
	AuthService    ClientAuthService

	Identity     *signals.Identity
	Connectivity *signals.Connectivity
	SyncEnabled  *signals.Preference

	Queue *queue.Queue
}

// NewClientServices builds the client services over local. A nil gateway
// keeps everything local. Connectivity starts offline until the first probe.
func NewClientServices(local store.LocalStore, gateway adapter.RemoteGateway, cfg config.ClientApp, logger *logger.Logger) *ClientServices {
	identity := signals.NewIdentity()
	connectivity := signals.NewConnectivity(false)
	syncEnabled := signals.NewPreference(cfg.SyncEnabled)
	q := queue.New(local, logger)

	syncSvc := NewClientSyncService(local, q, gateway, SyncSignals{
		Identity:     identity,
		Connectivity: connectivity,
		SyncEnabled:  syncEnabled,
	}, logger)

	return &ClientServices{
		SyncService:    syncSvc,
		FinanceService: NewClientFinanceService(syncSvc),
		AuthService:    NewClientAuthService(local, gateway, identity, logger),
		Identity:       identity,
		Connectivity:   connectivity,
		SyncEnabled:    syncEnabled,
		Queue:          q,
	}
}
