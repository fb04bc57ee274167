// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/models"
)

// ChangeList names one of the persisted lists of pending changes.
type ChangeList string

// Storage keys besides the four collection names.
const (
	PendingList ChangeList = "pendingSync"
	FailedList  ChangeList = "failedSync"

	KeySyncMeta = "syncMeta"
	// QuarantineSuffix is appended to the key of an undecodable change list
	// when it is set aside.
	QuarantineSuffix = ".corrupt"
	KeySession  = "session"
)

type localStore struct {
	blobs  BlobStore
	logger *logger.Logger
}

// NewLocalStore returns a [LocalStore] that serializes every value as JSON
// under its own key of blobs.
func NewLocalStore(blobs BlobStore, log *logger.Logger) LocalStore {
	return &localStore{blobs: blobs, logger: log}
}

func (s *localStore) LoadRecords(ctx context.Context, c models.Collection) ([]models.Record, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: collection %q", ErrInvalidKey, c)
	}

	var records []models.Record
	if _, err := s.load(ctx, string(c), &records); err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Collection == "" {
			records[i].Collection = c
		}
	}
	return records, nil
}

func (s *localStore) SaveRecords(ctx context.Context, c models.Collection, records []models.Record) error {
	if !c.Valid() {
		return fmt.Errorf("%w: collection %q", ErrInvalidKey, c)
	}
	if records == nil {
		records = []models.Record{}
	}
	return s.save(ctx, string(c), records)
}

func (s *localStore) LoadChanges(ctx context.Context, list ChangeList) ([]models.PendingChange, error) {
	var changes []models.PendingChange
	if _, err := s.load(ctx, string(list), &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

func (s *localStore) SaveChanges(ctx context.Context, list ChangeList, changes []models.PendingChange) error {
	if changes == nil {
		changes = []models.PendingChange{}
	}
	return s.save(ctx, string(list), changes)
}

func (s *localStore) QuarantineChanges(ctx context.Context, list ChangeList) (string, error) {
	key := string(list)
	raw, err := s.blobs.Get(ctx, key)
	if errors.Is(err, ErrBlobNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}

	quarantined := key + QuarantineSuffix
	if err = s.blobs.Set(ctx, quarantined, raw); err != nil {
		return "", fmt.Errorf("quarantine %s: %w", key, err)
	}
	if err = s.blobs.Remove(ctx, key); err != nil {
		return "", fmt.Errorf("remove %s: %w", key, err)
	}
	return quarantined, nil
}

func (s *localStore) LoadMeta(ctx context.Context) (models.SyncMeta, error) {
	var meta models.SyncMeta
	_, err := s.load(ctx, KeySyncMeta, &meta)
	return meta, err
}

func (s *localStore) SaveMeta(ctx context.Context, meta models.SyncMeta) error {
	return s.save(ctx, KeySyncMeta, meta)
}

func (s *localStore) LoadSession(ctx context.Context) (models.Session, error) {
	var session models.Session
	found, err := s.load(ctx, KeySession, &session)
	if err != nil {
		return models.Session{}, err
	}
	if !found || session.UserID == "" {
		return models.Session{}, ErrLocalSessionNotFound
	}
	return session, nil
}

func (s *localStore) SaveSession(ctx context.Context, session models.Session) error {
	return s.save(ctx, KeySession, session)
}

func (s *localStore) ClearSession(ctx context.Context) error {
	return s.blobs.Remove(ctx, KeySession)
}

// load decodes the blob stored under key into v. A missing key leaves v
// untouched and reports found=false.
func (s *localStore) load(ctx context.Context, key string, v any) (found bool, err error) {
	raw, err := s.blobs.Get(ctx, key)
	if errors.Is(err, ErrBlobNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}

	if err = json.Unmarshal(raw, v); err != nil {
		s.logger.Err(err).Str("func", "*localStore.load").Str("key", key).Msg("stored value cannot be decoded")
		return false, fmt.Errorf("%w: %s: %w", ErrCorruptBlob, key, err)
	}
	return true, nil
}

func (s *localStore) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err = s.blobs.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
