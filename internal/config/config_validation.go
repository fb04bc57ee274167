// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"strings"
)

// validate checks the merged [StructuredConfig]. Only values that are wrong
// for every binary are rejected here; per-binary requirements are checked by
// the client and server views.
func (cfg *StructuredConfig) validate() error {
	if cfg.Server.RequestTimeout < 0 || cfg.Adapter.RequestTimeout < 0 {
		return ErrInvalidServerConfigs
	}
	if cfg.Workers.SyncInterval < 0 || cfg.Workers.ProbeInterval < 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" && cfg.Storage.Files.Dir == "" {
		return ErrInvalidStorageConfigs
	}
	// an in-memory SQLite database would lose the pending queue on restart
	if strings.Contains(cfg.Storage.DB.DSN, ":memory:") || strings.Contains(cfg.Storage.DB.DSN, "mode=memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.SyncInterval <= 0 || cfg.Workers.ProbeInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	if (cfg.App.Login == "") != (cfg.App.Password == "") {
		return ErrInvalidAppConfigs
	}

	return nil
}

func (cfg *ServerConfig) validate() error {
	if cfg.Storage.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.App.TokenSignKey == "" || cfg.App.TokenIssuer == "" || cfg.App.TokenDuration <= 0 {
		return ErrInvalidAppConfigs
	}

	return nil
}
