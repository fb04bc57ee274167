// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "fmt"

// BatchItemError reports which change of a batch made the whole batch fail.
// Index is the position of the change inside the submitted batch.
type BatchItemError struct {
	Index int
	Err   error
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("change %d: %v", e.Index, e.Err)
}

func (e *BatchItemError) Unwrap() error {
	return e.Err
}
