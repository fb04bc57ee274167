// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/kharcha-sync/internal/config"
	"github.com/MKhiriev/kharcha-sync/internal/logger"
)

// ClientStorages groups the storage layer of the client.
type ClientStorages struct {
	// Blobs is the raw durable medium, closed on shutdown.
	Blobs BlobStore
	// Local is the typed view the sync engine works with.
	Local LocalStore
}

// NewClientStorages opens the local blob store selected by cfg:
//  1. With a DSN, a SQLite database is opened (the file is created when
//     missing) and migrated.
//  2. Otherwise every key is kept as a JSON file under cfg.Files.Dir.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, log *logger.Logger) (*ClientStorages, error) {
	log.Info().Msg("creating new storages...")

	var blobs BlobStore
	switch {
	case cfg.DB.DSN != "":
		db, err := NewConnectSQLite(ctx, cfg.DB, log)
		if err != nil {
			return nil, fmt.Errorf("sqlite connection error: %w", err)
		}
		if err = db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		blobs = NewSQLiteBlobStore(db, log)
	case cfg.Files.Dir != "":
		fileBlobs, err := NewFileBlobStore(cfg.Files.Dir, log)
		if err != nil {
			return nil, err
		}
		blobs = fileBlobs
	default:
		return nil, fmt.Errorf("%w: neither database nor directory configured", ErrInvalidKey)
	}

	return &ClientStorages{
		Blobs: blobs,
		Local: NewLocalStore(blobs, log),
	}, nil
}

// Close releases the blob store.
func (s *ClientStorages) Close() error {
	return s.Blobs.Close()
}
