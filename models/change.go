// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// ChangeOp is the operation a pending change replays against the remote
// store. Create and update are both upserts; the distinction is kept for
// diagnostics.
type ChangeOp string

const (
	OpCreate ChangeOp = "add"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// Valid reports whether op is a known operation.
func (op ChangeOp) Valid() bool {
	switch op {
	case OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}

// IsUpsert reports whether op writes a payload (create or update).
func (op ChangeOp) IsUpsert() bool {
	return op == OpCreate || op == OpUpdate
}

// PendingChange is a mutation that the remote store has not acknowledged yet.
type PendingChange struct {
	// Seq is the position assigned by the queue when the change was appended.
	// It increases monotonically and identifies the entry inside the queue.
	Seq int64 `json:"seq"`

	// Op is the operation to replay.
	Op ChangeOp `json:"type"`

	// Collection and ID address the record the change applies to.
	Collection Collection `json:"collection"`
	ID         string     `json:"id"`

	// Data is the payload snapshot for upserts; nil for deletes. For updates
	// it holds only the changed fields, which the remote store merges.
	Data Payload `json:"data,omitempty"`

	// UserID is the identity the change was authored under. A drain only
	// commits changes belonging to the current identity.
	UserID string `json:"userId"`

	// QueuedAt is the local time the change entered the queue.
	QueuedAt time.Time `json:"queuedAt"`

	// Reason is set on entries of the failed list and explains why the
	// remote store rejected the change.
	Reason string `json:"reason,omitempty"`
}

// NewUpsert builds a pending upsert of record r.
func NewUpsert(op ChangeOp, r Record, data Payload, userID string) PendingChange {
	return PendingChange{
		Op:         op,
		Collection: r.Collection,
		ID:         r.ID,
		Data:       data.Clone(),
		UserID:     userID,
	}
}

// NewDelete builds a pending delete of the record collection/id.
func NewDelete(collection Collection, id, userID string) PendingChange {
	return PendingChange{
		Op:         OpDelete,
		Collection: collection,
		ID:         id,
		UserID:     userID,
	}
}
