// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/service"
	"github.com/MKhiriev/kharcha-sync/internal/utils"
)

// Handler serves the REST API of the remote document store.
type Handler struct {
	services *service.Services
	hasher   *utils.Hasher
	metrics  *Metrics
	logger   *logger.Logger
}

// NewHandler builds a Handler. hashKey enables the HashSHA256 body check on
// write routes; an empty key disables it. metrics may be nil, in which case
// a fresh, unregistered set is used.
func NewHandler(services *service.Services, hashKey string, metrics *Metrics, logger *logger.Logger) *Handler {
	if metrics == nil {
		metrics = NewMetrics()
	}

	return &Handler{
		services: services,
		hasher:   utils.NewHasher(hashKey),
		metrics:  metrics,
		logger:   logger,
	}
}
