// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"errors"

	"github.com/MKhiriev/kharcha-sync/models"
)

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrUnprocessable       = errors.New("unprocessable entity")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrServiceUnavailable  = errors.New("service unavailable")

	// ErrNetwork wraps transport failures: refused connections, timeouts,
	// DNS errors. The request may not have reached the remote store.
	ErrNetwork = errors.New("remote store unreachable")

	// ErrNoToken is returned by authenticated calls made before a session
	// token was set.
	ErrNoToken = errors.New("no session token")
)

// BatchError reports which change of a batch the remote store rejected.
type BatchError = models.BatchItemError

// permanentErrors are rejections that repeat no matter how often the same
// request is sent.
var permanentErrors = []error{
	ErrBadRequest,
	ErrForbidden,
	ErrNotFound,
	ErrConflict,
	ErrUnprocessable,
}

// IsPermanent reports whether err is a rejection the remote store will repeat
// for the same request. Network failures, throttling, expired sessions and
// server-side errors are transient.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range permanentErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
