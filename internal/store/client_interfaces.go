// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/kharcha-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// BlobStore is the durable key/value medium of the device. Values are opaque
// bytes; a Set either fully replaces the previous value or leaves it intact.
type BlobStore interface {
	// Get returns the value stored under key or [ErrBlobNotFound].
	Get(ctx context.Context, key string) ([]byte, error)
	// Set atomically replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	// Close releases the underlying resources.
	Close() error
}

// LocalStore reads and writes the typed sync state on top of a [BlobStore].
type LocalStore interface {
	// LoadRecords returns the stored records of collection c; an empty
	// collection is returned when nothing has been stored yet.
	LoadRecords(ctx context.Context, c models.Collection) ([]models.Record, error)
	// SaveRecords replaces the stored records of collection c.
	SaveRecords(ctx context.Context, c models.Collection, records []models.Record) error

	LoadChanges(ctx context.Context, list ChangeList) ([]models.PendingChange, error)
	SaveChanges(ctx context.Context, list ChangeList, changes []models.PendingChange) error
	// QuarantineChanges moves the raw blob of list under its quarantine key
	// and returns that key. The list itself then loads empty.
	QuarantineChanges(ctx context.Context, list ChangeList) (string, error)

	LoadMeta(ctx context.Context) (models.SyncMeta, error)
	SaveMeta(ctx context.Context, meta models.SyncMeta) error

	// LoadSession returns the stored session or [ErrLocalSessionNotFound].
	LoadSession(ctx context.Context) (models.Session, error)
	SaveSession(ctx context.Context, session models.Session) error
	ClearSession(ctx context.Context) error
}
