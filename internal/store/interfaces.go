// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/kharcha-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository stores the accounts of the remote document store.
type UserRepository interface {
	// CreateUser inserts user and returns it with CreatedAt filled in.
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	// FindUserByLogin returns the user with the given login or [ErrNoUserWasFound].
	FindUserByLogin(ctx context.Context, login string) (models.User, error)
}

// DocumentRepository stores the records of every user, keyed by
// (user, collection, id). The database clock stamps every write.
type DocumentRepository interface {
	// ListAll reads every collection of userID from one consistent snapshot.
	ListAll(ctx context.Context, userID string) (models.Snapshot, error)
	// List reads one collection of userID.
	List(ctx context.Context, userID string, c models.Collection) ([]models.Record, error)
	// Upsert creates the record or merges its payload into the stored one and
	// returns the stored state.
	Upsert(ctx context.Context, userID string, record models.Record) (models.Record, error)
	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, userID string, c models.Collection, id string) error
	// CommitBatch applies changes in order inside one transaction. Either
	// every change is applied or none is; a failing change is reported as
	// [models.BatchItemError].
	CommitBatch(ctx context.Context, userID string, changes []models.PendingChange) error
}
