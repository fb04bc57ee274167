// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// client sync daemon and the remote document store server. It is populated
// by merging values from environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env      : direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings: token parameters, integrity
	// key, client credentials and preferences.
	App App `envPrefix:"APP_"`

	// Storage holds configuration for the persistence backends: the
	// relational database of the server or the local blob store of the client.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the listen address and timeout of the HTTP server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the address of the remote document store as seen by
	// the client.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds intervals of the client background workers.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups the configuration for all storage backends.
type Storage struct {
	// DB holds the relational database connection settings.
	DB DB `envPrefix:"DB_"`

	// Files holds the file-system blob store settings of the client.
	Files Files `envPrefix:"FILES_"`
}

// App holds application-level configuration values.
type App struct {
	// TokenSignKey is the secret key used to sign and verify JWT tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued JWT token.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration specifies how long a JWT token remains valid.
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// HashKey is the HMAC key for the HashSHA256 request integrity header.
	// Integrity checking is off when empty.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// Version is the semantic version string served by /api/version.
	// Env: APP_VERSION
	Version string `env:"VERSION"`

	// LogFile is the path of the rotated client log file.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`

	// SyncDisabled turns the sync-enabled preference off at startup.
	// Env: APP_SYNC_DISABLED
	SyncDisabled bool `env:"SYNC_DISABLED"`

	// Login and Password are optional client credentials used to sign in
	// when no session is stored locally.
	// Env: APP_LOGIN, APP_PASSWORD
	Login    string `env:"LOGIN"`
	Password string `env:"PASSWORD"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the TCP address on which the HTTP server listens,
	// in "host:port" format (e.g. "0.0.0.0:8080").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request before the server cancels it (e.g. "30s", "1m").
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// DB holds connection settings for the relational database backend.
type DB struct {
	// DSN is the PostgreSQL connection string on the server, or the SQLite
	// database path on the client.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Files holds file-system settings for the client blob store.
type Files struct {
	// Dir is the directory holding one JSON file per local storage key.
	// Env: STORAGE_FILES_DIR
	Dir string `env:"DIR"`
}

// Adapter holds the client view of the remote document store.
type Adapter struct {
	// HTTPAddress is the base URL of the remote document store. The client
	// runs local-only when it is empty.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds every outbound request of the gateway.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// SyncInterval is the period of the background sync job.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// ProbeInterval is the period of the connectivity prober.
	// Env: WORKERS_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
