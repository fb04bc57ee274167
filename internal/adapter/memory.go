// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/kharcha-sync/internal/utils"
	"github.com/MKhiriev/kharcha-sync/models"
)

const memoryTokenPrefix = "memory."

// MemoryGateway is an in-process [RemoteGateway] holding the remote document
// store in maps. It follows the same merge and timestamp rules as the
// PostgreSQL store and lets callers inject failures. Used by the client in
// tests and by the demo mode of cmd/client.
type MemoryGateway struct {
	mu sync.Mutex

	users map[string]memoryUser // by login
	docs  map[string]map[models.Collection]map[string]models.Record

	token string
	clock time.Time
	ids   *utils.UUIDGenerator

	offline   bool
	failNext  []error
	failBatch map[int]error
	calls     map[string]int
}

type memoryUser struct {
	userID   string
	password string
}

// NewMemoryGateway returns an empty, online in-memory store.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		users:     make(map[string]memoryUser),
		docs:      make(map[string]map[models.Collection]map[string]models.Record),
		ids:       utils.NewUUIDGenerator(),
		failBatch: make(map[int]error),
		calls:     make(map[string]int),
	}
}

// ── failure injection ───────────────────────────────────────────────────────

// SetOffline makes every call fail with [ErrNetwork] until switched back.
func (m *MemoryGateway) SetOffline(offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline = offline
}

// FailNext queues errors returned by the next data calls, one per call.
func (m *MemoryGateway) FailNext(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = append(m.failNext, errs...)
}

// FailBatchAt makes the next batch reject the change at index with err.
func (m *MemoryGateway) FailBatchAt(index int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failBatch[index] = err
}

// Calls returns how many times method was invoked.
func (m *MemoryGateway) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// Records returns a copy of what the store holds for one user and collection.
func (m *MemoryGateway) Records(userID string, c models.Collection) []models.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Record, 0, len(m.docs[userID][c]))
	for _, r := range m.docs[userID][c] {
		out = append(out, r.Clone())
	}
	return out
}

// Put writes a record directly, as if another device had pushed it.
func (m *MemoryGateway) Put(userID string, record models.Record) models.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upsertLocked(m.docs, userID, record.Collection, record.ID, record.Payload)
}

// ── RemoteGateway ───────────────────────────────────────────────────────────

func (m *MemoryGateway) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = strings.TrimSpace(token)
}

func (m *MemoryGateway) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *MemoryGateway) Register(_ context.Context, user models.User) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["Register"]++

	if err := m.injectedLocked(); err != nil {
		return models.Session{}, err
	}
	if user.Login == "" || user.Password == "" {
		return models.Session{}, fmt.Errorf("%w: login and password are required", ErrBadRequest)
	}
	if _, ok := m.users[user.Login]; ok {
		return models.Session{}, fmt.Errorf("%w: login already exists", ErrConflict)
	}

	u := memoryUser{userID: m.ids.Generate(), password: user.Password}
	m.users[user.Login] = u
	m.token = memoryTokenPrefix + u.userID
	return models.Session{UserID: u.userID, Login: user.Login, Token: m.token}, nil
}

func (m *MemoryGateway) Login(_ context.Context, user models.User) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["Login"]++

	if err := m.injectedLocked(); err != nil {
		return models.Session{}, err
	}
	u, ok := m.users[user.Login]
	if !ok || u.password != user.Password {
		return models.Session{}, fmt.Errorf("%w: invalid login or password", ErrUnauthorized)
	}

	m.token = memoryTokenPrefix + u.userID
	return models.Session{UserID: u.userID, Login: user.Login, Token: m.token}, nil
}

func (m *MemoryGateway) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["Ping"]++

	if m.offline {
		return fmt.Errorf("%w: store unreachable", ErrNetwork)
	}
	return nil
}

func (m *MemoryGateway) PullAll(_ context.Context, userID string) (models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["PullAll"]++

	if err := m.checkLocked(userID); err != nil {
		return nil, err
	}

	snapshot := make(models.Snapshot, len(models.Collections))
	for _, c := range models.Collections {
		records := make([]models.Record, 0, len(m.docs[userID][c]))
		for _, r := range m.docs[userID][c] {
			records = append(records, r.Clone())
		}
		models.SortRecords(c, records)
		snapshot[c] = records
	}
	return snapshot, nil
}

func (m *MemoryGateway) Upsert(_ context.Context, userID string, record models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["Upsert"]++

	if err := m.checkLocked(userID); err != nil {
		return err
	}
	if !record.Collection.Valid() || record.ID == "" {
		return fmt.Errorf("%w: invalid record address", ErrBadRequest)
	}
	m.upsertLocked(m.docs, userID, record.Collection, record.ID, record.Payload)
	return nil
}

func (m *MemoryGateway) Delete(_ context.Context, userID string, c models.Collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["Delete"]++

	if err := m.checkLocked(userID); err != nil {
		return err
	}
	if !c.Valid() || id == "" {
		return fmt.Errorf("%w: invalid record address", ErrBadRequest)
	}
	delete(m.docs[userID][c], id)
	return nil
}

// CommitBatch applies the changes to a copy of the user's documents and
// swaps it in only when every change succeeded.
func (m *MemoryGateway) CommitBatch(_ context.Context, userID string, changes []models.PendingChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["CommitBatch"]++

	if err := m.checkLocked(userID); err != nil {
		return err
	}

	injected := m.failBatch
	m.failBatch = make(map[int]error)

	work := map[string]map[models.Collection]map[string]models.Record{
		userID: cloneUserDocs(m.docs[userID]),
	}
	clock := m.clock
	for i, ch := range changes {
		if err, ok := injected[i]; ok {
			m.clock = clock
			return &BatchError{Index: i, Err: err}
		}
		if !ch.Op.Valid() || !ch.Collection.Valid() || ch.ID == "" {
			m.clock = clock
			return &BatchError{Index: i, Err: fmt.Errorf("%w: invalid change", ErrBadRequest)}
		}
		if ch.Op == models.OpDelete {
			delete(work[userID][ch.Collection], ch.ID)
			continue
		}
		m.upsertLocked(work, userID, ch.Collection, ch.ID, ch.Data)
	}

	m.docs[userID] = work[userID]
	return nil
}

// ── internals ───────────────────────────────────────────────────────────────

func (m *MemoryGateway) injectedLocked() error {
	if m.offline {
		return fmt.Errorf("%w: store unreachable", ErrNetwork)
	}
	if len(m.failNext) > 0 {
		err := m.failNext[0]
		m.failNext = m.failNext[1:]
		return err
	}
	return nil
}

func (m *MemoryGateway) checkLocked(userID string) error {
	if err := m.injectedLocked(); err != nil {
		return err
	}
	if m.token == "" {
		return ErrNoToken
	}
	if m.token != memoryTokenPrefix+userID {
		return fmt.Errorf("%w: token does not own user %s", ErrForbidden, userID)
	}
	return nil
}

// upsertLocked shallow-merges payload into the stored record and stamps it
// with a strictly increasing server time.
func (m *MemoryGateway) upsertLocked(docs map[string]map[models.Collection]map[string]models.Record, userID string, c models.Collection, id string, payload models.Payload) models.Record {
	if docs[userID] == nil {
		docs[userID] = make(map[models.Collection]map[string]models.Record)
	}
	if docs[userID][c] == nil {
		docs[userID][c] = make(map[string]models.Record)
	}

	merged := payload.Clone()
	if existing, ok := docs[userID][c][id]; ok {
		merged = existing.Payload.Merge(payload)
	}
	if merged == nil {
		merged = models.Payload{}
	}

	now := m.tick()
	rec := models.Record{ID: id, Collection: c, Payload: merged, UpdatedAt: &now}
	docs[userID][c][id] = rec
	return rec.Clone()
}

func (m *MemoryGateway) tick() time.Time {
	now := time.Now().UTC()
	if !now.After(m.clock) {
		now = m.clock.Add(time.Microsecond)
	}
	m.clock = now
	return now
}

func cloneUserDocs(src map[models.Collection]map[string]models.Record) map[models.Collection]map[string]models.Record {
	dst := make(map[models.Collection]map[string]models.Record, len(src))
	for c, records := range src {
		dst[c] = make(map[string]models.Record, len(records))
		for id, r := range records {
			dst[c][id] = r.Clone()
		}
	}
	return dst
}
