// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/models"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// documentRepository is the PostgreSQL-backed implementation of
// [DocumentRepository] over the "documents" table.
type documentRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewDocumentRepository constructs a [DocumentRepository] backed by db.
func NewDocumentRepository(db *DB, logger *logger.Logger) DocumentRepository {
	logger.Debug().Msg("creating document repository")
	return &documentRepository{
		db:     db,
		logger: logger,
	}
}

func (d *documentRepository) ListAll(ctx context.Context, userID string) (models.Snapshot, error) {
	log := logger.FromContext(ctx)

	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		log.Err(err).Str("func", "*documentRepository.ListAll").Str("user_id", userID).Msg("failed to begin transaction")
		return nil, d.db.wrapError(ErrBeginningTransaction, err)
	}
	defer tx.Rollback() //nolint:errcheck

	snapshot := make(models.Snapshot, len(models.Collections))
	for _, c := range models.Collections {
		records, err := d.list(ctx, tx, userID, c)
		if err != nil {
			return nil, err
		}
		snapshot[c] = records
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*documentRepository.ListAll").Str("user_id", userID).Msg("failed to commit transaction")
		return nil, d.db.wrapError(ErrCommitingTransaction, err)
	}
	return snapshot, nil
}

func (d *documentRepository) List(ctx context.Context, userID string, c models.Collection) ([]models.Record, error) {
	return d.list(ctx, d.db, userID, c)
}

func (d *documentRepository) list(ctx context.Context, q queryer, userID string, c models.Collection) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListDocumentsQuery(ctx, userID, c)
	if err != nil {
		log.Err(err).Str("func", "*documentRepository.list").Msg("failed to create query")
		return nil, d.db.wrapError(ErrBuildingSQLQuery, err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*documentRepository.list").
			Str("user_id", userID).
			Str("collection", c.String()).
			Msg("failed to execute query")
		return nil, d.db.wrapError(ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.Record, 0, 16)
	for rows.Next() {
		record, err := scanDocument(rows)
		if err != nil {
			log.Err(err).Str("func", "*documentRepository.list").Msg("failed to scan row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, d.db.wrapError(ErrScanningRows, err)
	}

	return records, nil
}

func (d *documentRepository) Upsert(ctx context.Context, userID string, record models.Record) (models.Record, error) {
	return d.upsert(ctx, d.db, userID, record)
}

func (d *documentRepository) upsert(ctx context.Context, q queryer, userID string, record models.Record) (models.Record, error) {
	log := logger.FromContext(ctx)

	payload := record.Payload
	if payload == nil {
		payload = models.Payload{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return models.Record{}, fmt.Errorf("encode payload of %s/%s: %w", record.Collection, record.ID, err)
	}

	query, args, err := buildUpsertDocumentQuery(ctx, userID, record.Collection, record.ID, raw)
	if err != nil {
		log.Err(err).Str("func", "*documentRepository.upsert").Msg("failed to create query")
		return models.Record{}, d.db.wrapError(ErrBuildingSQLQuery, err)
	}

	var (
		stored    []byte
		updatedAt time.Time
	)
	if err = q.QueryRowContext(ctx, query, args...).Scan(&stored, &updatedAt); err != nil {
		log.Err(err).
			Str("func", "*documentRepository.upsert").
			Str("user_id", userID).
			Str("collection", record.Collection.String()).
			Str("id", record.ID).
			Msg("failed to upsert document")
		if postgresError(err) == pgerrcode.ForeignKeyViolation {
			return models.Record{}, ErrUnknownUser
		}
		return models.Record{}, d.db.wrapError(ErrExecutingQuery, err)
	}

	result := models.Record{ID: record.ID, Collection: record.Collection, UpdatedAt: &updatedAt}
	if err = json.Unmarshal(stored, &result.Payload); err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return result, nil
}

func (d *documentRepository) Delete(ctx context.Context, userID string, c models.Collection, id string) error {
	return d.delete(ctx, d.db, userID, c, id)
}

func (d *documentRepository) delete(ctx context.Context, q queryer, userID string, c models.Collection, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteDocumentQuery(ctx, userID, c, id)
	if err != nil {
		log.Err(err).Str("func", "*documentRepository.delete").Msg("failed to create query")
		return d.db.wrapError(ErrBuildingSQLQuery, err)
	}

	if _, err = q.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "*documentRepository.delete").
			Str("user_id", userID).
			Str("collection", c.String()).
			Str("id", id).
			Msg("failed to delete document")
		return d.db.wrapError(ErrExecutingQuery, err)
	}
	return nil
}

func (d *documentRepository) CommitBatch(ctx context.Context, userID string, changes []models.PendingChange) error {
	log := logger.FromContext(ctx)

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*documentRepository.CommitBatch").Str("user_id", userID).Msg("failed to begin transaction")
		return d.db.wrapError(ErrBeginningTransaction, err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i, change := range changes {
		switch {
		case change.Op.IsUpsert():
			_, err = d.upsert(ctx, tx, userID, models.Record{ID: change.ID, Collection: change.Collection, Payload: change.Data})
		case change.Op == models.OpDelete:
			err = d.delete(ctx, tx, userID, change.Collection, change.ID)
		default:
			err = fmt.Errorf("%w: operation %q", ErrInvalidChange, change.Op)
		}
		if err != nil {
			log.Warn().Err(err).
				Str("func", "*documentRepository.CommitBatch").
				Str("user_id", userID).
				Int("index", i).
				Msg("batch rejected")
			return &models.BatchItemError{Index: i, Err: err}
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*documentRepository.CommitBatch").Str("user_id", userID).Msg("failed to commit transaction")
		return d.db.wrapError(ErrCommitingTransaction, err)
	}
	log.Debug().Str("user_id", userID).Int("changes", len(changes)).Msg("batch committed")
	return nil
}

func scanDocument(rows *sql.Rows) (models.Record, error) {
	var (
		record    models.Record
		raw       []byte
		updatedAt time.Time
	)
	if err := rows.Scan(&record.Collection, &record.ID, &raw, &updatedAt); err != nil {
		return models.Record{}, err
	}
	if err := json.Unmarshal(raw, &record.Payload); err != nil {
		return models.Record{}, err
	}
	record.UpdatedAt = &updatedAt
	return record, nil
}
