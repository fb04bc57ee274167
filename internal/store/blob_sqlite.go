// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
)

// sqliteBlobStore keeps blobs in the kv_blobs table of a local SQLite
// database. Each Set is a single upsert statement and therefore atomic.
type sqliteBlobStore struct {
	db     *DB
	logger *logger.Logger
}

// NewSQLiteBlobStore returns a [BlobStore] backed by db. The schema must
// already be migrated.
func NewSQLiteBlobStore(db *DB, log *logger.Logger) BlobStore {
	log.Debug().Msg("creating sqlite blob store")
	return &sqliteBlobStore{db: db, logger: log}
}

func (s *sqliteBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, getBlob, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		s.logger.Err(err).Str("func", "*sqliteBlobStore.Get").Str("key", key).Msg("error reading blob")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return value, nil
}

func (s *sqliteBlobStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	if value == nil {
		value = []byte{}
	}

	if _, err := s.db.ExecContext(ctx, setBlob, key, value); err != nil {
		s.logger.Err(err).Str("func", "*sqliteBlobStore.Set").Str("key", key).Msg("error writing blob")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return nil
}

func (s *sqliteBlobStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, removeBlob, key); err != nil {
		s.logger.Err(err).Str("func", "*sqliteBlobStore.Remove").Str("key", key).Msg("error removing blob")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return nil
}

func (s *sqliteBlobStore) Close() error {
	return s.db.Close()
}
