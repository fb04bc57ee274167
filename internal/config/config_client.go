// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// Client defaults applied when a source leaves the value unset.
const (
	DefaultClientRequestTimeout = 10 * time.Second
	DefaultProbeInterval        = 15 * time.Second
	DefaultSyncInterval         = 5 * time.Minute
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// HashKey is the HMAC key used for the request integrity header.
	HashKey string
	// LogFile is the path of the rotated log file; stdout when empty.
	LogFile string
	// SyncEnabled is the initial value of the sync-enabled preference.
	SyncEnabled bool
	// Login and Password sign the client in when no session is stored.
	Login    string
	Password string
}

// ClientAdapter holds network settings used by the remote sync gateway.
type ClientAdapter struct {
	// HTTPAddress is the base URL of the remote document store. An empty
	// address puts the client in local-only mode.
	HTTPAddress string
	// RequestTimeout is the timeout of every outbound request.
	RequestTimeout time.Duration
}

// ClientDB contains the SQLite blob store settings.
type ClientDB struct {
	// DSN is the SQLite database path.
	DSN string
}

// ClientFiles contains the file blob store settings.
type ClientFiles struct {
	// Dir holds one JSON file per storage key.
	Dir string
}

// ClientStorage groups client storage backend settings. DB takes precedence
// over Files when both are set.
type ClientStorage struct {
	DB    ClientDB
	Files ClientFiles
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often the background sync job runs.
	SyncInterval time.Duration
	// ProbeInterval defines how often connectivity is probed.
	ProbeInterval time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers ClientWorkers
}

// LocalOnly reports whether no remote document store is configured.
func (cfg *ClientConfig) LocalOnly() bool {
	return cfg.Adapter.HTTPAddress == ""
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := NewClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

// NewClientConfig maps the fields relevant to the client runtime and applies
// client defaults.
func NewClientConfig(cfg *StructuredConfig) *ClientConfig {
	clientCfg := &ClientConfig{
		App: ClientApp{
			HashKey:     cfg.App.HashKey,
			LogFile:     cfg.App.LogFile,
			SyncEnabled: !cfg.App.SyncDisabled,
			Login:       cfg.App.Login,
			Password:    cfg.App.Password,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB:    ClientDB{DSN: cfg.Storage.DB.DSN},
			Files: ClientFiles{Dir: cfg.Storage.Files.Dir},
		},
		Workers: ClientWorkers{
			SyncInterval:  cfg.Workers.SyncInterval,
			ProbeInterval: cfg.Workers.ProbeInterval,
		},
	}

	if clientCfg.Adapter.RequestTimeout == 0 {
		clientCfg.Adapter.RequestTimeout = DefaultClientRequestTimeout
	}
	if clientCfg.Workers.SyncInterval == 0 {
		clientCfg.Workers.SyncInterval = DefaultSyncInterval
	}
	if clientCfg.Workers.ProbeInterval == 0 {
		clientCfg.Workers.ProbeInterval = DefaultProbeInterval
	}

	return clientCfg
}
