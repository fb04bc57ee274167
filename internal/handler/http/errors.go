// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors of the authentication middleware. Callers can match against
// them with [errors.Is].
var (
	// ErrEmptyAuthorizationHeader is returned when the request carries no
	// "Authorization" header at all.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidAuthorizationHeader is returned when the header is not of the
	// form "Bearer <token>".
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")

	// ErrEmptyToken is returned when the bearer scheme is present but the
	// token value is empty.
	ErrEmptyToken = errors.New("empty token in `Authorization` header")
)

// Integrity check errors.
var (
	ErrMissingHash  = errors.New("missing `HashSHA256` header")
	ErrHashMismatch = errors.New("integrity check failed")
)

// ErrEmptyRouteParam is returned when a required path parameter is blank.
var ErrEmptyRouteParam = errors.New("empty route parameter")
