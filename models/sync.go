// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SyncState is the coarse state of the sync orchestrator.
type SyncState int

const (
	// StateIdle means no sync work is running and remote writes are attempted
	// immediately when identity, connectivity and the preference allow it.
	StateIdle SyncState = iota
	// StatePullingAll means a full pull-and-replace is in flight.
	StatePullingAll
	// StateDraining means the pending queue is being committed as one batch.
	StateDraining
	// StateOffline means an identity is present but connectivity or the
	// sync preference is off; mutations persist locally only.
	StateOffline
)

func (s SyncState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePullingAll:
		return "pulling_all"
	case StateDraining:
		return "draining"
	case StateOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Busy reports whether s is one of the mutually exclusive sync activities.
func (s SyncState) Busy() bool {
	return s == StatePullingAll || s == StateDraining
}

// SyncStatus is the snapshot delivered to status subscribers.
type SyncStatus struct {
	State    SyncState  `json:"state"`
	Syncing  bool       `json:"syncing"`
	LastSync *time.Time `json:"lastSync,omitempty"`
	IsOnline bool       `json:"isOnline"`
	Pending  int        `json:"pending"`
	Failed   int        `json:"failed"`
}

// SyncMeta is persisted next to the collections and survives restarts.
type SyncMeta struct {
	LastSync *time.Time `json:"lastSync,omitempty"`
}

// Session is the persisted identity of the signed-in user.
type Session struct {
	UserID string `json:"userId"`
	Login  string `json:"login"`
	Token  string `json:"token"`
}

// Snapshot maps every collection to its records. It is the result of a full
// pull from the remote store.
type Snapshot map[Collection][]Record

// BatchRequest is the body of a batch commit.
type BatchRequest struct {
	Changes []PendingChange `json:"changes"`
	Length  int             `json:"length"`
}

// BatchErrorResponse is returned by the remote store when a batch is
// rejected because of one specific change.
type BatchErrorResponse struct {
	Error string `json:"error"`
	Index int    `json:"index"`
}

// PullResponse is the body of a full pull.
type PullResponse struct {
	Collections map[Collection][]Record `json:"collections"`
}

// ListResponse is the body of a single-collection read.
type ListResponse struct {
	Records []Record `json:"records"`
	Length  int      `json:"length"`
}
