// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrLoginAlreadyExists is returned when an attempt to register a new user
	// fails because a user with the same login already exists in the database.
	ErrLoginAlreadyExists = errors.New("login already exists")

	// ErrNoUserWasFound is returned when a query expected to match a user
	// produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrUnknownUser is returned when a document is written for a user that
	// does not exist.
	ErrUnknownUser = errors.New("user does not exist")

	// ErrInvalidChange is returned when a batch entry carries an operation
	// the repository cannot apply.
	ErrInvalidChange = errors.New("invalid change")

	// ErrRetryable marks a database failure that may succeed when attempted
	// again (lost connection, serialization failure, deadlock).
	ErrRetryable = errors.New("retryable database error")
)

// Local storage errors.
var (
	// ErrBlobNotFound is returned by [BlobStore.Get] when the key was never
	// written or has been removed.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrInvalidKey is returned for keys that cannot be mapped onto the
	// backing medium.
	ErrInvalidKey = errors.New("invalid storage key")

	// ErrCorruptBlob is returned when a stored value cannot be decoded.
	ErrCorruptBlob = errors.New("corrupt blob")

	// ErrLocalSessionNotFound is returned when no session is stored locally.
	ErrLocalSessionNotFound = errors.New("local session not found")

	// ErrStorageClosed is returned by blob stores after Close.
	ErrStorageClosed = errors.New("storage is closed")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning fails during multi-row
	// iteration.
	ErrScanningRows = errors.New("failed to scan rows")
)
