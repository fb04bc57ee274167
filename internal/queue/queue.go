// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/store"
	"github.com/MKhiriev/kharcha-sync/models"
)

// CommitFunc submits one batch to the remote store. It must apply either all
// of changes or none of them.
type CommitFunc func(ctx context.Context, changes []models.PendingChange) error

// Queue is the pending-change queue. It is safe for concurrent use; drains
// are expected to be serialized by the caller.
type Queue struct {
	mu      sync.Mutex
	local   store.LocalStore
	logger  *logger.Logger
	pending []models.PendingChange
	failed  []models.PendingChange
	nextSeq int64
	now     func() time.Time
}

// New returns an empty queue persisted through local. Call [Queue.Load] to
// restore the entries of a previous run.
func New(local store.LocalStore, log *logger.Logger) *Queue {
	return &Queue{
		local:   local,
		logger:  log,
		nextSeq: 1,
		now:     time.Now,
	}
}

// Load replaces the in-memory state with the persisted pending and failed
// lists. A list that cannot be decoded is moved under its quarantine key and
// starts empty, so queued work stays recoverable by hand.
func (q *Queue) Load(ctx context.Context) error {
	pending, err := q.loadList(ctx, store.PendingList)
	if err != nil {
		return fmt.Errorf("load pending changes: %w", err)
	}
	failed, err := q.loadList(ctx, store.FailedList)
	if err != nil {
		return fmt.Errorf("load failed changes: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = pending
	q.failed = failed
	q.nextSeq = 1
	for _, c := range slices.Concat(pending, failed) {
		if c.Seq >= q.nextSeq {
			q.nextSeq = c.Seq + 1
		}
	}

	q.logger.Debug().
		Int("pending", len(pending)).
		Int("failed", len(failed)).
		Msg("pending-change queue restored")
	return nil
}

func (q *Queue) loadList(ctx context.Context, list store.ChangeList) ([]models.PendingChange, error) {
	changes, err := q.local.LoadChanges(ctx, list)
	if !errors.Is(err, store.ErrCorruptBlob) {
		return changes, err
	}

	key, qErr := q.local.QuarantineChanges(ctx, list)
	if qErr != nil {
		return nil, errors.Join(err, qErr)
	}
	q.logger.Err(err).Str("func", "*Queue.loadList").Str("list", string(list)).Str("quarantine", key).
		Msg("change list is unreadable, set aside and started empty")
	return nil, nil
}

// Enqueue appends change to the tail of the queue and persists the queue.
// The stored entry, with its sequence number and queue time, is returned.
//
// When persisting fails the entry stays queued in memory and the returned
// error wraps [ErrPersistQueue].
func (q *Queue) Enqueue(ctx context.Context, change models.PendingChange) (models.PendingChange, error) {
	if err := validateChange(change); err != nil {
		return models.PendingChange{}, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	change.Seq = q.nextSeq
	change.QueuedAt = q.now().UTC()
	change.Reason = ""
	change.Data = change.Data.Clone()
	q.nextSeq++
	q.pending = append(q.pending, change)

	return change, q.persistPendingLocked(ctx)
}

// Len returns the number of pending entries of every user.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// PendingFor returns the number of pending entries authored by userID.
func (q *Queue) PendingFor(userID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, c := range q.pending {
		if c.UserID == userID {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the pending entries in FIFO order.
func (q *Queue) Snapshot() []models.PendingChange {
	q.mu.Lock()
	defer q.mu.Unlock()
	return cloneChanges(q.pending)
}

// Failed returns a copy of the changes the remote store rejected.
func (q *Queue) Failed() []models.PendingChange {
	q.mu.Lock()
	defer q.mu.Unlock()
	return cloneChanges(q.failed)
}

// FailedLen returns the number of rejected changes.
func (q *Queue) FailedLen() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.failed)
}

// Drain hands every pending entry of userID, in FIFO order, to commit as one
// batch. On success exactly those entries are removed and their count is
// returned. On failure the queue is left as it was; when the error is a
// [models.BatchItemError] it is returned as a [*ChangeError] naming the
// blamed entry.
//
// Entries appended while commit runs are not part of the batch and stay
// queued.
func (q *Queue) Drain(ctx context.Context, userID string, commit CommitFunc) (int, error) {
	q.mu.Lock()
	batch := make([]models.PendingChange, 0, len(q.pending))
	for _, c := range q.pending {
		if c.UserID == userID {
			batch = append(batch, c)
		}
	}
	q.mu.Unlock()

	if len(batch) == 0 {
		return 0, nil
	}

	if err := commit(ctx, cloneChanges(batch)); err != nil {
		var itemErr *models.BatchItemError
		if errors.As(err, &itemErr) && itemErr.Index >= 0 && itemErr.Index < len(batch) {
			return 0, &ChangeError{Change: batch[itemErr.Index], Err: err}
		}
		return 0, err
	}

	committed := make(map[int64]struct{}, len(batch))
	for _, c := range batch {
		committed[c.Seq] = struct{}{}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = slices.DeleteFunc(q.pending, func(c models.PendingChange) bool {
		_, ok := committed[c.Seq]
		return ok
	})
	if err := q.persistPendingLocked(ctx); err != nil {
		// the remote store already holds the batch; a replay after restart
		// is an idempotent upsert or delete
		q.logger.Err(err).Str("func", "*Queue.Drain").Msg("drained entries were not removed from disk")
	}
	return len(batch), nil
}

// Reject moves the pending entry seq to the failed list with reason.
func (q *Queue) Reject(ctx context.Context, seq int64, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := slices.IndexFunc(q.pending, func(c models.PendingChange) bool { return c.Seq == seq })
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownSeq, seq)
	}

	change := q.pending[i]
	change.Reason = reason
	q.pending = slices.Delete(q.pending, i, i+1)
	q.failed = append(q.failed, change)

	q.logger.Warn().
		Int64("seq", seq).
		Str("op", string(change.Op)).
		Str("collection", change.Collection.String()).
		Str("id", change.ID).
		Str("reason", reason).
		Msg("pending change moved to failed list")

	if err := q.persistPendingLocked(ctx); err != nil {
		return err
	}
	return q.persistFailedLocked(ctx)
}

// RetryFailed appends every failed change back to the tail of the pending
// queue with a fresh sequence number and returns how many were moved.
func (q *Queue) RetryFailed(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.failed)
	if n == 0 {
		return 0, nil
	}
	for _, c := range q.failed {
		c.Seq = q.nextSeq
		c.Reason = ""
		q.nextSeq++
		q.pending = append(q.pending, c)
	}
	q.failed = nil

	if err := q.persistPendingLocked(ctx); err != nil {
		return n, err
	}
	return n, q.persistFailedLocked(ctx)
}

// DiscardFailed drops every failed change and returns how many were dropped.
func (q *Queue) DiscardFailed(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.failed)
	q.failed = nil
	return n, q.persistFailedLocked(ctx)
}

func (q *Queue) persistPendingLocked(ctx context.Context) error {
	if err := q.local.SaveChanges(ctx, store.PendingList, q.pending); err != nil {
		q.logger.Err(err).Str("func", "*Queue.persistPendingLocked").Int("pending", len(q.pending)).Msg("error saving pending changes")
		return fmt.Errorf("%w: %w", ErrPersistQueue, err)
	}
	return nil
}

func (q *Queue) persistFailedLocked(ctx context.Context) error {
	if err := q.local.SaveChanges(ctx, store.FailedList, q.failed); err != nil {
		q.logger.Err(err).Str("func", "*Queue.persistFailedLocked").Int("failed", len(q.failed)).Msg("error saving failed changes")
		return fmt.Errorf("%w: %w", ErrPersistQueue, err)
	}
	return nil
}

func validateChange(c models.PendingChange) error {
	switch {
	case !c.Op.Valid():
		return fmt.Errorf("%w: operation %q", ErrInvalidChange, c.Op)
	case !c.Collection.Valid():
		return fmt.Errorf("%w: collection %q", ErrInvalidChange, c.Collection)
	case c.ID == "":
		return fmt.Errorf("%w: empty record id", ErrInvalidChange)
	case c.UserID == "":
		return fmt.Errorf("%w: no author", ErrInvalidChange)
	}
	return nil
}

func cloneChanges(changes []models.PendingChange) []models.PendingChange {
	out := make([]models.PendingChange, len(changes))
	for i, c := range changes {
		c.Data = c.Data.Clone()
		out[i] = c
	}
	return out
}
