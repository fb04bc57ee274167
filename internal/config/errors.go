// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

// Validation errors returned when required configuration groups are
// incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid client adapter settings
	// (for example, a non-positive request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, no DSN and no blob directory, or an in-memory DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, a missing token sign key on the server, or a login
	// without a password on the client).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings.
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
	// ErrInvalidServerConfigs indicates invalid listen settings.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
)
