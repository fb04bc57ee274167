// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks what the document store accepts before it
// reaches the repositories: record addresses, payload field formats, batch
// shape and credentials.
//
// A Validator takes optional field names to restrict a check to a subset,
// e.g. only [FieldID] and [FieldCollection] for a delete.
package validators

import "context"

// Validator defines a generic validation interface for arbitrary input values.
// Implementations may perform structural validation, semantic checks,
// cross-field rules.
type Validator interface {

	// Validate validates the provided input and optionally
	// restricts validation to specific named fields.
	Validate(context.Context, any, ...string) error
}
