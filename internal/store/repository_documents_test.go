// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/models"
)

const testUserID = "0192a4f0-7c1e-7000-8000-0000000000aa"

var documentRowColumns = []string{"collection", "id", "payload", "updated_at"}

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestDocumentRepo(t *testing.T) (DocumentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	storeDB := &DB{
		DB:                 db,
		errorClassificator: NewPostgresErrorClassifier(),
		logger:             logger.Nop(),
	}
	return NewDocumentRepository(storeDB, logger.Nop()), mock
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

// ── List ──────────────────────────────────────────────────────────────────────

func TestDocumentRepository_List_TransactionsNewestFirst(t *testing.T) {
	repo, mock := newTestDocumentRepo(t)

	newer := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	older := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY payload->>'date' DESC NULLS LAST, id`)).
		WithArgs(testUserID, "transactions").
		WillReturnRows(sqlmock.NewRows(documentRowColumns).
			AddRow("transactions", "t2", []byte(`{"amount":"10","date":"2026-03-02T00:00:00Z"}`), newer).
			AddRow("transactions", "t1", []byte(`{"amount":"5","date":"2026-03-01T00:00:00Z"}`), older))

	records, err := repo.List(testContext(), testUserID, models.CollectionTransactions)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "t2", records[0].ID)
	assert.Equal(t, models.CollectionTransactions, records[0].Collection)
	assert.Equal(t, "10", records[0].Payload["amount"])
	require.NotNil(t, records[0].UpdatedAt)
	assert.True(t, records[0].UpdatedAt.Equal(newer))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_List_QueryError(t *testing.T) {
	repo, mock := newTestDocumentRepo(t)

	mock.ExpectQuery("SELECT collection, id, payload, updated_at FROM documents").
		WillReturnError(pgError(pgerrcode.ConnectionFailure))

	_, err := repo.List(testContext(), testUserID, models.CollectionGoals)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecutingQuery)
	assert.ErrorIs(t, err, ErrRetryable)
}

func TestDocumentRepository_List_CorruptPayload(t *testing.T) {
	repo, mock := newTestDocumentRepo(t)

	mock.ExpectQuery("FROM documents").
		WillReturnRows(sqlmock.NewRows(documentRowColumns).
			AddRow("budgets", "b1", []byte(`not json`), time.Now()))

	_, err := repo.List(testContext(), testUserID, models.CollectionBudgets)
	assert.ErrorIs(t, err, ErrScanningRows)
}

// ── ListAll ───────────────────────────────────────────────────────────────────

func TestDocumentRepository_ListAll_ReadsEveryCollectionInOneTransaction(t *testing.T) {
	repo, mock := newTestDocumentRepo(t)

	mock.ExpectBegin()
	for _, c := range models.Collections {
		rows := sqlmock.NewRows(documentRowColumns)
		if c == models.CollectionGoals {
			rows.AddRow("goals", "g1", []byte(`{"name":"Trip"}`), time.Now())
		}
		mock.ExpectQuery("FROM documents").
			WithArgs(testUserID, string(c)).
			WillReturnRows(rows)
	}
	mock.ExpectCommit()

	snapshot, err := repo.ListAll(testContext(), testUserID)
	require.NoError(t, err)

	assert.Len(t, snapshot, len(models.Collections))
	assert.Empty(t, snapshot[models.CollectionTransactions])
	require.Len(t, snapshot[models.CollectionGoals], 1)
	assert.Equal(t, "Trip", snapshot[models.CollectionGoals][0].Payload["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_ListAll_BeginError(t *testing.T) {
	repo, mock := newTestDocumentRepo(t)

	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	_, err := repo.ListAll(testContext(), testUserID)
	assert.ErrorIs(t, err, ErrBeginningTransaction)
}

// ── Upsert ────────────────────────────────────────────────────────────────────

func TestDocumentRepository_Upsert_ReturnsStoredState(t *testing.T) {
	repo, mock := newTestDocumentRepo(t)

	stamp := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO documents (user_id,collection,id,payload,updated_at) VALUES ($1,$2,$3,$4,clock_timestamp())`)).
		WithArgs(testUserID, "budgets", "b1", `{"spent":"12"}`).
		WillReturnRows(sqlmock.NewRows([]string{"payload", "updated_at"}).
			AddRow([]byte(`{"amount":"100","category":"food","spent":"12"}`), stamp))

	stored, err := repo.Upsert(testContext(), testUserID, models.Record{
		ID:         "b1",
		Collection: models.CollectionBudgets,
		Payload:    models.Payload{"spent": "12"},
	})
	require.NoError(t, err)

	// the stored document is the merge of the old payload and the update
	assert.Equal(t, "food", stored.Payload["category"])
	assert.Equal(t, "12", stored.Payload["spent"])
	require.NotNil(t, stored.UpdatedAt)
	assert.True(t, stored.UpdatedAt.Equal(stamp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_Upsert_UnknownUser(t *testing.T) {
	repo, mock := newTestDocumentRepo(t)

	mock.ExpectQuery("INSERT INTO documents").
		WillReturnError(pgError(pgerrcode.ForeignKeyViolation))

	_, err := repo.Upsert(testContext(), "ghost", models.Record{ID: "x", Collection: models.CollectionGoals})
	assert.ErrorIs(t, err, ErrUnknownUser)
}

// ── Delete ────────────────────────────────────────────────────────────────────

func TestDocumentRepository_Delete_IsIdempotent(t *testing.T) {
	repo, mock := newTestDocumentRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM documents WHERE user_id = $1 AND collection = $2 AND id = $3`)).
		WithArgs(testUserID, "goals", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(testContext(), testUserID, models.CollectionGoals, "missing")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── CommitBatch ───────────────────────────────────────────────────────────────

func TestDocumentRepository_CommitBatch_AppliesInOrder(t *testing.T) {
	repo, mock := newTestDocumentRepo(t)

	changes := []models.PendingChange{
		{Op: models.OpCreate, Collection: models.CollectionGoals, ID: "g1", Data: models.Payload{"name": "Trip"}},
		{Op: models.OpUpdate, Collection: models.CollectionGoals, ID: "g1", Data: models.Payload{"saved": "5"}},
		{Op: models.OpDelete, Collection: models.CollectionBudgets, ID: "b1"},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(testUserID, "goals", "g1", `{"name":"Trip"}`).
		WillReturnRows(sqlmock.NewRows([]string{"payload", "updated_at"}).AddRow([]byte(`{"name":"Trip"}`), time.Now()))
	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(testUserID, "goals", "g1", `{"saved":"5"}`).
		WillReturnRows(sqlmock.NewRows([]string{"payload", "updated_at"}).AddRow([]byte(`{"name":"Trip","saved":"5"}`), time.Now()))
	mock.ExpectExec("DELETE FROM documents").
		WithArgs(testUserID, "budgets", "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CommitBatch(testContext(), testUserID, changes))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_CommitBatch_RollsBackAndReportsIndex(t *testing.T) {
	repo, mock := newTestDocumentRepo(t)

	changes := []models.PendingChange{
		{Op: models.OpCreate, Collection: models.CollectionGoals, ID: "g1", Data: models.Payload{"name": "Trip"}},
		{Op: models.OpDelete, Collection: models.CollectionGoals, ID: "g2"},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO documents").
		WillReturnRows(sqlmock.NewRows([]string{"payload", "updated_at"}).AddRow([]byte(`{"name":"Trip"}`), time.Now()))
	mock.ExpectExec("DELETE FROM documents").
		WillReturnError(pgError(pgerrcode.DeadlockDetected))
	mock.ExpectRollback()

	err := repo.CommitBatch(testContext(), testUserID, changes)
	require.Error(t, err)

	var itemErr *models.BatchItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, 1, itemErr.Index)
	assert.ErrorIs(t, err, ErrRetryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_CommitBatch_InvalidOperation(t *testing.T) {
	repo, mock := newTestDocumentRepo(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.CommitBatch(testContext(), testUserID, []models.PendingChange{
		{Op: "rename", Collection: models.CollectionGoals, ID: "g1"},
	})

	var itemErr *models.BatchItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, 0, itemErr.Index)
	assert.ErrorIs(t, err, ErrInvalidChange)
}

func TestDocumentRepository_CommitBatch_CommitError(t *testing.T) {
	repo, mock := newTestDocumentRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM documents").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	err := repo.CommitBatch(testContext(), testUserID, []models.PendingChange{
		{Op: models.OpDelete, Collection: models.CollectionGoals, ID: "g1"},
	})
	assert.ErrorIs(t, err, ErrCommitingTransaction)
}
