package service

import (
	"context"

	"github.com/MKhiriev/kharcha-sync/models"
)

// ClientSyncService is the sync orchestrator. It owns the in-memory snapshot
// of every collection, the local store and the pending-change queue, and
// decides per mutation and per signal whether to stay local, push
// immediately or queue for a later drain.
type ClientSyncService interface {
	// Start loads the local snapshot and queue, subscribes to the identity,
	// connectivity and sync-enabled signals and triggers the startup
	// reconcile (drain, then pull) in the background.
	Start(ctx context.Context) error

	// Stop disposes the signal subscriptions, cancels background work and
	// waits for it. Work cancelled mid-flight stays queued.
	Stop()

	// Wait blocks until the push loop and any background reconcile are done.
	Wait()

	// Create applies a new record locally. An empty ID is replaced by a
	// generated time-ordered id. Transactions are prepended, other
	// collections appended.
	Create(ctx context.Context, record models.Record) (models.Record, error)

	// Update shallow-merges fields over the stored payload.
	Update(ctx context.Context, c models.Collection, id string, fields models.Payload) (models.Record, error)

	// Delete removes the record locally.
	Delete(ctx context.Context, c models.Collection, id string) error

	// Records returns a copy of one collection in display order.
	Records(c models.Collection) ([]models.Record, error)

	// Record returns a copy of one record.
	Record(c models.Collection, id string) (models.Record, error)

	// Sync drains the queue and then pulls every collection.
	Sync(ctx context.Context) error
	// Pull replaces every collection with the remote contents.
	Pull(ctx context.Context) error
	// Drain flushes the current user's queued changes as one batch.
	Drain(ctx context.Context) error

	// Status returns the coarse state observed by the UI.
	Status() models.SyncStatus
	// Subscribe registers fn for status changes and returns its disposer.
	Subscribe(fn func(models.SyncStatus)) (unsubscribe func())

	// PendingChanges returns the queued changes in FIFO order.
	PendingChanges() []models.PendingChange
	// FailedChanges returns the dead-letter list.
	FailedChanges() []models.PendingChange
	// RetryFailed moves the dead-letter list back to the queue tail and
	// drains when possible. It returns the number of requeued changes.
	RetryFailed(ctx context.Context) (int, error)
	// DiscardFailed empties the dead-letter list.
	DiscardFailed(ctx context.Context) (int, error)
}

// ClientFinanceService is the typed facade used by the UI layer. Every
// mutation goes through [ClientSyncService].
type ClientFinanceService interface {
	AddTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, fields models.Payload) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	Transactions() ([]models.Transaction, error)

	AddBudget(ctx context.Context, budget models.Budget) (models.Budget, error)
	UpdateBudget(ctx context.Context, id string, fields models.Payload) (models.Budget, error)
	DeleteBudget(ctx context.Context, id string) error
	Budgets() ([]models.Budget, error)

	AddGoal(ctx context.Context, goal models.Goal) (models.Goal, error)
	UpdateGoal(ctx context.Context, id string, fields models.Payload) (models.Goal, error)
	DeleteGoal(ctx context.Context, id string) error
	Goals() ([]models.Goal, error)

	AddRecurring(ctx context.Context, item models.RecurringItem) (models.RecurringItem, error)
	UpdateRecurring(ctx context.Context, id string, fields models.Payload) (models.RecurringItem, error)
	DeleteRecurring(ctx context.Context, id string) error
	RecurringItems() ([]models.RecurringItem, error)
}

// ClientAuthService signs the user in against the remote store and drives
// the identity signal.
type ClientAuthService interface {
	// Register creates an account, persists the session and sets the identity.
	Register(ctx context.Context, user models.User) (models.Session, error)

	// Login authenticates, persists the session and sets the identity.
	Login(ctx context.Context, user models.User) (models.Session, error)

	// RestoreSession loads the stored session so the identity is present
	// while offline. Returns store.ErrLocalSessionNotFound when there is none.
	RestoreSession(ctx context.Context) (models.Session, error)

	// Logout clears the stored session and the identity.
	Logout(ctx context.Context) error
}
