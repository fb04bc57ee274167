// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package queue

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/kharcha-sync/models"
)

var (
	ErrInvalidChange = errors.New("invalid pending change")
	ErrPersistQueue  = errors.New("failed to persist queue")
	ErrUnknownSeq    = errors.New("no pending change with this sequence number")
)

// ChangeError ties a failed drain to the queued change the remote store
// blamed for it.
type ChangeError struct {
	Change models.PendingChange
	Err    error
}

func (e *ChangeError) Error() string {
	return fmt.Sprintf("%s %s/%s (seq %d): %v", e.Change.Op, e.Change.Collection, e.Change.ID, e.Change.Seq, e.Err)
}

func (e *ChangeError) Unwrap() error {
	return e.Err
}
