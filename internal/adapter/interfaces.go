// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the Remote Sync Gateway: the only component of
// the client that talks to the remote document store.
//
// [RemoteGateway] decouples the sync engine from the transport. The package
// ships an HTTP/REST implementation ([NewHTTPGateway]) and an in-process
// [MemoryGateway] that behaves like the reference server, including its
// server-assigned modification timestamps.
//
// HTTP status codes are mapped to the sentinel values in errors.go so that
// callers can use [errors.Is] regardless of transport, and [IsPermanent]
// tells a change that will never be accepted from one worth retrying.
package adapter

import (
	"context"

	"github.com/MKhiriev/kharcha-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_gateway_mock.go -package=mock

// RemoteGateway is the transport-agnostic interface of the remote document
// store. Every collection is scoped by an opaque user identity string. Every
// write is stamped with the store's own clock; the client never sends a
// modification time.
type RemoteGateway interface {
	// SetToken stores the bearer token attached to all subsequent
	// authenticated requests.
	SetToken(token string)

	// Token returns the bearer token currently stored, or an empty string.
	Token() string

	// Register creates an account and returns the new session. The token of
	// the session is also stored via SetToken.
	Register(ctx context.Context, user models.User) (models.Session, error)

	// Login authenticates user and returns the session. The token of the
	// session is also stored via SetToken.
	Login(ctx context.Context, user models.User) (models.Session, error)

	// Ping checks that the remote store is reachable.
	Ping(ctx context.Context) error

	// PullAll reads every collection of userID. The result has an entry for
	// each collection; transactions come newest first by date.
	PullAll(ctx context.Context, userID string) (models.Snapshot, error)

	// Upsert creates the record or merges its payload into the stored one.
	Upsert(ctx context.Context, userID string, record models.Record) error

	// Delete removes the record. Deleting a missing record succeeds.
	Delete(ctx context.Context, userID string, c models.Collection, id string) error

	// CommitBatch applies changes in order, all or nothing. When the store
	// blames one change the error is a [BatchError].
	CommitBatch(ctx context.Context, userID string, changes []models.PendingChange) error
}
