// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/kharcha-sync/internal/config"
	"github.com/MKhiriev/kharcha-sync/internal/logger"
)

// Storages groups the server repositories.
type Storages struct {
	UserRepository     UserRepository
	DocumentRepository DocumentRepository

	db *DB
}

// NewStorages connects to PostgreSQL, applies migrations and builds the
// repositories.
func NewStorages(ctx context.Context, cfg config.DB, log *logger.Logger) (*Storages, error) {
	log.Info().Msg("creating new storages...")

	db, err := NewConnectPostgres(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err = db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		UserRepository:     NewUserRepository(db, log),
		DocumentRepository: NewDocumentRepository(db, log),
		db:                 db,
	}, nil
}

// Ping reports whether the database is reachable.
func (s *Storages) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database pool.
func (s *Storages) Close() error {
	return s.db.Close()
}
