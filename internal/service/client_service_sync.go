// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/kharcha-sync/internal/adapter"
	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/queue"
	"github.com/MKhiriev/kharcha-sync/internal/signals"
	"github.com/MKhiriev/kharcha-sync/internal/store"
	"github.com/MKhiriev/kharcha-sync/internal/utils"
	"github.com/MKhiriev/kharcha-sync/models"
)

// SyncSignals bundles the three external inputs of the orchestrator.
type SyncSignals struct {
	Identity     signals.IdentitySource
	Connectivity signals.ConnectivitySource
	SyncEnabled  signals.PreferenceSource
}

type clientSyncService struct {
	local   store.LocalStore
	queue   *queue.Queue
	gateway adapter.RemoteGateway
	signals SyncSignals
	ids     *utils.UUIDGenerator
	now     func() time.Time
	logger  *logger.Logger

	// saveMu orders writes to the local store so the persisted snapshot
	// never goes back in time relative to memory.
	saveMu sync.Mutex

	mu       sync.Mutex
	idle     *sync.Cond
	started  bool
	state    models.SyncState
	snapshot map[models.Collection][]models.Record
	lastSync *time.Time

	outbox  []models.PendingChange
	pushing bool

	reconciling    bool
	reconcileAgain bool

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	disposers []signals.Disposer

	observers *signals.Signal[models.SyncStatus]
}

// NewClientSyncService builds the orchestrator. A nil gateway runs it in
// local-only mode: mutations are applied and, with an identity present,
// queued until a gateway-backed instance drains them.
func NewClientSyncService(local store.LocalStore, q *queue.Queue, gateway adapter.RemoteGateway, sig SyncSignals, logger *logger.Logger) ClientSyncService {
	s := &clientSyncService{
		local:     local,
		queue:     q,
		gateway:   gateway,
		signals:   sig,
		ids:       utils.NewUUIDGenerator(),
		now:       time.Now,
		logger:    logger,
		snapshot:  make(map[models.Collection][]models.Record, len(models.Collections)),
		observers: signals.NewSignal[models.SyncStatus](),
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// ── lifecycle ───────────────────────────────────────────────────────────────

func (s *clientSyncService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.mu.Unlock()

	snapshot := make(map[models.Collection][]models.Record, len(models.Collections))
	for _, c := range models.Collections {
		records, err := s.local.LoadRecords(ctx, c)
		if errors.Is(err, store.ErrCorruptBlob) {
			s.logger.Err(err).Str("func", "*clientSyncService.Start").Str("collection", c.String()).
				Msg("local collection is unreadable, starting it empty")
			records = nil
		} else if err != nil {
			return fmt.Errorf("load %s: %w", c, err)
		}
		if records == nil {
			records = []models.Record{}
		}
		snapshot[c] = records
	}

	meta, err := s.local.LoadMeta(ctx)
	if err != nil && !errors.Is(err, store.ErrCorruptBlob) {
		return fmt.Errorf("load sync meta: %w", err)
	}
	if err = s.queue.Load(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.lastSync = meta.LastSync
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.started = true
	s.state = s.restingStateLocked()
	s.mu.Unlock()

	disposers := []signals.Disposer{
		s.signals.Identity.Subscribe(s.onIdentity),
		s.signals.Connectivity.Subscribe(func(bool) { s.settle() }),
		s.signals.Connectivity.OnRestored(s.requestReconcile),
		s.signals.SyncEnabled.Subscribe(s.onSyncEnabled),
	}
	s.mu.Lock()
	s.disposers = disposers
	s.mu.Unlock()

	s.logger.Info().Str("func", "*clientSyncService.Start").
		Int("pending", s.queue.Len()).
		Int("failed", s.queue.FailedLen()).
		Msg("sync service started")

	s.notify()
	s.requestReconcile()
	return nil
}

func (s *clientSyncService) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	disposers := s.disposers
	s.disposers = nil
	s.mu.Unlock()

	for _, dispose := range disposers {
		dispose()
	}
	cancel()
	s.wg.Wait()

	s.logger.Info().Str("func", "*clientSyncService.Stop").Msg("sync service stopped")
}

func (s *clientSyncService) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.pushing || s.reconciling {
		s.idle.Wait()
	}
}

func (s *clientSyncService) onIdentity(userID string) {
	if userID == "" {
		s.settle()
		return
	}
	s.requestReconcile()
}

func (s *clientSyncService) onSyncEnabled(enabled bool) {
	if !enabled {
		s.settle()
		return
	}
	s.requestReconcile()
}

// ── mutations ───────────────────────────────────────────────────────────────

func (s *clientSyncService) Create(ctx context.Context, record models.Record) (models.Record, error) {
	if !record.Collection.Valid() {
		return models.Record{}, fmt.Errorf("%w: %q", ErrUnknownCollection, record.Collection)
	}
	if record.ID == "" {
		record.ID = s.ids.Generate()
	}
	record.Payload = record.Payload.Clone()
	if record.Payload == nil {
		record.Payload = models.Payload{}
	}
	record.UpdatedAt = nil

	err := s.apply(ctx, record.Collection, func(records []models.Record) ([]models.Record, error) {
		if slices.IndexFunc(records, byID(record.ID)) >= 0 {
			return nil, fmt.Errorf("%w: %s/%s", ErrRecordExists, record.Collection, record.ID)
		}
		if record.Collection.NewestFirst() {
			return slices.Insert(records, 0, record.Clone()), nil
		}
		return append(records, record.Clone()), nil
	})
	if err != nil {
		return models.Record{}, err
	}

	s.route(ctx, models.NewUpsert(models.OpCreate, record, record.Payload, ""))
	return record, nil
}

func (s *clientSyncService) Update(ctx context.Context, c models.Collection, id string, fields models.Payload) (models.Record, error) {
	if !c.Valid() {
		return models.Record{}, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}

	var updated models.Record
	err := s.apply(ctx, c, func(records []models.Record) ([]models.Record, error) {
		i := slices.IndexFunc(records, byID(id))
		if i < 0 {
			return nil, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, c, id)
		}
		records[i].Payload = records[i].Payload.Merge(fields)
		updated = records[i].Clone()
		return records, nil
	})
	if err != nil {
		return models.Record{}, err
	}

	s.route(ctx, models.NewUpsert(models.OpUpdate, updated, fields, ""))
	return updated, nil
}

func (s *clientSyncService) Delete(ctx context.Context, c models.Collection, id string) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}

	err := s.apply(ctx, c, func(records []models.Record) ([]models.Record, error) {
		i := slices.IndexFunc(records, byID(id))
		if i < 0 {
			return nil, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, c, id)
		}
		return slices.Delete(records, i, i+1), nil
	})
	if err != nil {
		return err
	}

	s.route(ctx, models.NewDelete(c, id, ""))
	return nil
}

// apply runs mutate on a copy of one collection, swaps it into memory and
// mirrors it to the local store. A failed save is logged only: memory stays
// authoritative until the next successful save.
func (s *clientSyncService) apply(ctx context.Context, c models.Collection, mutate func([]models.Record) ([]models.Record, error)) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	records, err := mutate(cloneRecords(s.snapshot[c]))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.snapshot[c] = records
	toSave := cloneRecords(records)
	s.mu.Unlock()

	if err = s.local.SaveRecords(ctx, c, toSave); err != nil {
		s.logger.Err(err).Str("func", "*clientSyncService.apply").Str("collection", c.String()).
			Msg("local save failed, in-memory state kept")
	}
	return nil
}

// route decides where a change applied locally goes next: nowhere without
// an identity, the push loop when remote calls are allowed and nothing for
// this user is queued ahead of it, the queue otherwise.
func (s *clientSyncService) route(ctx context.Context, change models.PendingChange) {
	userID := s.signals.Identity.Get()
	if userID == "" {
		return
	}
	change.UserID = userID

	s.mu.Lock()
	if s.syncableLocked(userID) && s.queue.PendingFor(userID) == 0 {
		s.outbox = append(s.outbox, change)
		if !s.pushing {
			s.pushing = true
			s.wg.Add(1)
			go s.pushLoop()
		}
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.enqueue(ctx, change)
}

func (s *clientSyncService) pushLoop() {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		if len(s.outbox) == 0 {
			s.pushing = false
			s.idle.Broadcast()
			s.mu.Unlock()
			s.notify()
			return
		}
		change := s.outbox[0]
		s.outbox = s.outbox[1:]
		ctx := s.ctx
		pushable := s.syncableLocked(change.UserID) && s.queue.PendingFor(change.UserID) == 0
		s.mu.Unlock()

		if !pushable {
			s.enqueue(ctx, change)
			continue
		}

		err := s.push(ctx, change)
		if err == nil {
			continue
		}

		log := s.logger.Warn().Err(err).Str("func", "*clientSyncService.pushLoop").
			Str("collection", change.Collection.String()).
			Str("id", change.ID).
			Str("op", string(change.Op))
		if !adapter.IsPermanent(err) {
			log.Msg("remote write failed, change queued")
			s.enqueue(ctx, change)
			continue
		}

		log.Msg("remote write rejected, change moved to failed list")
		queued, qErr := s.enqueue(ctx, change)
		if qErr == nil {
			s.reject(ctx, queued, err)
		}
	}
}

func (s *clientSyncService) push(ctx context.Context, change models.PendingChange) error {
	if change.Op == models.OpDelete {
		return s.gateway.Delete(ctx, change.UserID, change.Collection, change.ID)
	}
	return s.gateway.Upsert(ctx, change.UserID, models.Record{
		ID:         change.ID,
		Collection: change.Collection,
		Payload:    change.Data,
	})
}

func (s *clientSyncService) enqueue(ctx context.Context, change models.PendingChange) (models.PendingChange, error) {
	queued, err := s.queue.Enqueue(context.WithoutCancel(ctx), change)
	if err != nil {
		s.logger.Err(err).Str("func", "*clientSyncService.enqueue").
			Str("collection", change.Collection.String()).
			Str("id", change.ID).
			Msg("change could not be persisted to the queue")
	}
	s.notify()
	if errors.Is(err, queue.ErrPersistQueue) {
		// kept in memory
		return queued, nil
	}
	return queued, err
}

func (s *clientSyncService) reject(ctx context.Context, change models.PendingChange, cause error) {
	if err := s.queue.Reject(context.WithoutCancel(ctx), change.Seq, cause.Error()); err != nil {
		s.logger.Err(err).Str("func", "*clientSyncService.reject").Int64("seq", change.Seq).
			Msg("failed to move change to failed list")
	}
	s.notify()
}

// ── reconcile ───────────────────────────────────────────────────────────────

// requestReconcile starts a background drain-then-pull. A request arriving
// while one runs is folded into a single follow-up run.
func (s *clientSyncService) requestReconcile() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	if s.reconciling {
		s.reconcileAgain = true
		s.mu.Unlock()
		return
	}
	s.reconciling = true
	s.wg.Add(1)
	ctx := s.ctx
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		for {
			s.reconcile(ctx)

			s.mu.Lock()
			if !s.reconcileAgain || ctx.Err() != nil {
				s.reconciling = false
				s.reconcileAgain = false
				s.idle.Broadcast()
				s.mu.Unlock()
				s.notify()
				return
			}
			s.reconcileAgain = false
			s.mu.Unlock()
		}
	}()
}

func (s *clientSyncService) reconcile(ctx context.Context) {
	err := s.sync(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrSyncUnavailable), errors.Is(err, ErrSyncInProgress):
		s.settle()
	default:
		s.logger.Warn().Err(err).Str("func", "*clientSyncService.reconcile").Msg("background sync failed")
	}
}

// ── explicit sync operations ────────────────────────────────────────────────

func (s *clientSyncService) Sync(ctx context.Context) error {
	if err := s.checkStarted(); err != nil {
		return err
	}
	return s.sync(ctx)
}

func (s *clientSyncService) Pull(ctx context.Context) error {
	userID, err := s.syncableUser()
	if err != nil {
		return err
	}
	return s.pull(ctx, userID)
}

func (s *clientSyncService) Drain(ctx context.Context) error {
	userID, err := s.syncableUser()
	if err != nil {
		return err
	}
	return s.drain(ctx, userID)
}

// sync drains first so the pull reflects every queued change. A failed
// drain skips the pull: replacing the snapshot would hide queued changes.
func (s *clientSyncService) sync(ctx context.Context) error {
	userID, err := s.syncableUser()
	if err != nil {
		return err
	}
	if err = s.drain(ctx, userID); err != nil {
		return err
	}
	return s.pull(ctx, userID)
}

func (s *clientSyncService) pull(ctx context.Context, userID string) error {
	if err := s.begin(models.StatePullingAll); err != nil {
		return err
	}
	defer s.end()

	snapshot, err := s.gateway.PullAll(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("func", "*clientSyncService.pull").Msg("pull failed, local data kept")
		return fmt.Errorf("pull: %w", err)
	}
	if s.signals.Identity.Get() != userID {
		return fmt.Errorf("%w: identity changed during pull", ErrSyncUnavailable)
	}

	s.replace(ctx, snapshot)
	s.markSynced(ctx)

	s.logger.Debug().Str("func", "*clientSyncService.pull").Msg("pulled every collection")
	return nil
}

// replace swaps every collection wholesale. Local records absent from the
// snapshot are dropped.
func (s *clientSyncService) replace(ctx context.Context, snapshot models.Snapshot) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	toSave := make(map[models.Collection][]models.Record, len(models.Collections))
	s.mu.Lock()
	for _, c := range models.Collections {
		records := cloneRecords(snapshot[c])
		for i := range records {
			records[i].Collection = c
		}
		s.snapshot[c] = records
		toSave[c] = cloneRecords(records)
	}
	s.mu.Unlock()

	for _, c := range models.Collections {
		if err := s.local.SaveRecords(ctx, c, toSave[c]); err != nil {
			s.logger.Err(err).Str("func", "*clientSyncService.replace").Str("collection", c.String()).
				Msg("local save of pulled collection failed")
		}
	}
}

func (s *clientSyncService) drain(ctx context.Context, userID string) error {
	if s.queue.PendingFor(userID) == 0 {
		return nil
	}
	if err := s.begin(models.StateDraining); err != nil {
		return err
	}
	defer s.end()

	commit := func(ctx context.Context, changes []models.PendingChange) error {
		return s.gateway.CommitBatch(ctx, userID, changes)
	}

	// each round either commits everything queued so far or moves one
	// rejected change to the failed list; changes queued during a commit are
	// picked up by the next round so the pull that follows cannot hide them
	committed := 0
	for s.queue.PendingFor(userID) > 0 {
		n, err := s.queue.Drain(ctx, userID, commit)
		if err == nil {
			committed += n
			continue
		}

		var changeErr *queue.ChangeError
		if errors.As(err, &changeErr) && adapter.IsPermanent(err) {
			s.logger.Warn().Err(err).Str("func", "*clientSyncService.drain").
				Int64("seq", changeErr.Change.Seq).
				Msg("change rejected by remote store, moved to failed list")
			s.reject(ctx, changeErr.Change, changeErr.Err)
			continue
		}

		s.logger.Warn().Err(err).Str("func", "*clientSyncService.drain").Msg("drain failed, queue kept")
		if committed > 0 {
			s.markSynced(ctx)
		}
		return fmt.Errorf("drain: %w", err)
	}

	if committed > 0 {
		s.logger.Info().Str("func", "*clientSyncService.drain").Int("changes", committed).Msg("queue drained")
		s.markSynced(ctx)
	}
	return nil
}

func (s *clientSyncService) markSynced(ctx context.Context) {
	now := s.now().UTC()

	s.saveMu.Lock()
	s.mu.Lock()
	s.lastSync = &now
	s.mu.Unlock()

	if err := s.local.SaveMeta(ctx, models.SyncMeta{LastSync: &now}); err != nil {
		s.logger.Err(err).Str("func", "*clientSyncService.markSynced").Msg("last sync marker not persisted")
	}
	s.saveMu.Unlock()

	s.notify()
}

// ── dead-letter list ────────────────────────────────────────────────────────

func (s *clientSyncService) PendingChanges() []models.PendingChange {
	return s.queue.Snapshot()
}

func (s *clientSyncService) FailedChanges() []models.PendingChange {
	return s.queue.Failed()
}

func (s *clientSyncService) RetryFailed(ctx context.Context) (int, error) {
	n, err := s.queue.RetryFailed(ctx)
	s.notify()
	if err != nil || n == 0 {
		return n, err
	}

	userID, err := s.syncableUser()
	if err != nil {
		// requeued; the next reconcile drains them
		return n, nil
	}
	if err = s.drain(ctx, userID); err != nil && !errors.Is(err, ErrSyncInProgress) {
		return n, err
	}
	return n, nil
}

func (s *clientSyncService) DiscardFailed(ctx context.Context) (int, error) {
	n, err := s.queue.DiscardFailed(ctx)
	s.notify()
	return n, err
}

// ── reads and status ────────────────────────────────────────────────────────

func (s *clientSyncService) Records(c models.Collection) ([]models.Record, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecords(s.snapshot[c]), nil
}

func (s *clientSyncService) Record(c models.Collection, id string) (models.Record, error) {
	if !c.Valid() {
		return models.Record{}, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.snapshot[c], byID(id))
	if i < 0 {
		return models.Record{}, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, c, id)
	}
	return s.snapshot[c][i].Clone(), nil
}

func (s *clientSyncService) Status() models.SyncStatus {
	s.mu.Lock()
	state := s.state
	var lastSync *time.Time
	if s.lastSync != nil {
		t := *s.lastSync
		lastSync = &t
	}
	s.mu.Unlock()

	return models.SyncStatus{
		State:    state,
		Syncing:  state.Busy(),
		LastSync: lastSync,
		IsOnline: s.signals.Connectivity.Get(),
		Pending:  s.queue.Len(),
		Failed:   s.queue.FailedLen(),
	}
}

func (s *clientSyncService) Subscribe(fn func(models.SyncStatus)) func() {
	return s.observers.Subscribe(fn)
}

func (s *clientSyncService) notify() {
	s.observers.Emit(s.Status())
}

// ── state machine ───────────────────────────────────────────────────────────

// begin enters a busy state. Pull and drain exclude each other.
func (s *clientSyncService) begin(target models.SyncState) error {
	s.mu.Lock()
	if s.state.Busy() {
		s.mu.Unlock()
		return ErrSyncInProgress
	}
	s.state = target
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *clientSyncService) end() {
	s.mu.Lock()
	s.state = s.restingStateLocked()
	s.mu.Unlock()
	s.notify()
}

// settle recomputes the resting state after a signal changed.
func (s *clientSyncService) settle() {
	s.mu.Lock()
	changed := false
	if !s.state.Busy() {
		next := s.restingStateLocked()
		changed = next != s.state
		s.state = next
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

func (s *clientSyncService) restingStateLocked() models.SyncState {
	if s.signals.Identity.Get() != "" && !s.remoteAllowed() {
		return models.StateOffline
	}
	return models.StateIdle
}

func (s *clientSyncService) remoteAllowed() bool {
	return s.gateway != nil && s.signals.Connectivity.Get() && s.signals.SyncEnabled.Get()
}

func (s *clientSyncService) syncableLocked(userID string) bool {
	return s.started && userID != "" && s.signals.Identity.Get() == userID && s.remoteAllowed()
}

func (s *clientSyncService) syncableUser() (string, error) {
	if err := s.checkStarted(); err != nil {
		return "", err
	}
	userID := s.signals.Identity.Get()
	switch {
	case userID == "":
		return "", fmt.Errorf("%w: %w", ErrSyncUnavailable, ErrNotSignedIn)
	case s.gateway == nil:
		return "", fmt.Errorf("%w: no remote store configured", ErrSyncUnavailable)
	case !s.signals.Connectivity.Get():
		return "", fmt.Errorf("%w: offline", ErrSyncUnavailable)
	case !s.signals.SyncEnabled.Get():
		return "", fmt.Errorf("%w: sync is disabled", ErrSyncUnavailable)
	}
	return userID, nil
}

func (s *clientSyncService) checkStarted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func byID(id string) func(models.Record) bool {
	return func(r models.Record) bool { return r.ID == id }
}

func cloneRecords(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
