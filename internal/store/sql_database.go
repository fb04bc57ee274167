// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"
	"fmt"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
)

// ErrorClassificator decides whether a failed database operation may be
// retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// DB is a database handle together with the pieces that depend on the
// backend it was opened for.
type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
	migrate            func(*sql.DB) error
}

// Migrate applies the embedded schema of the backend.
func (db *DB) Migrate() error {
	if db.migrate == nil {
		return fmt.Errorf("no migrations registered for database")
	}
	return db.migrate(db.DB)
}

// wrapError tags err with sentinel and, when the backend says so, with
// [ErrRetryable].
func (db *DB) wrapError(sentinel, err error) error {
	if db.errorClassificator != nil && db.errorClassificator.Classify(err) == Retryable {
		return fmt.Errorf("%w: %w: %w", ErrRetryable, sentinel, err)
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
