// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// Server defaults applied when a source leaves the value unset.
const (
	DefaultServerRequestTimeout = 30 * time.Second
	DefaultTokenDuration        = 24 * time.Hour
)

// ServerApp holds token and integrity settings of the document store.
type ServerApp struct {
	TokenSignKey  string
	TokenIssuer   string
	TokenDuration time.Duration
	HashKey       string
	Version       string
}

// ServerConfig is the server-specific view of [StructuredConfig].
type ServerConfig struct {
	App     ServerApp
	Server  Server
	Storage DB
}

// GetServerConfig builds and validates the server config view.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := NewServerConfig(cfg)
	return serverCfg, serverCfg.validate()
}

// NewServerConfig maps the fields relevant to the server and applies server
// defaults.
func NewServerConfig(cfg *StructuredConfig) *ServerConfig {
	serverCfg := &ServerConfig{
		App: ServerApp{
			TokenSignKey:  cfg.App.TokenSignKey,
			TokenIssuer:   cfg.App.TokenIssuer,
			TokenDuration: cfg.App.TokenDuration,
			HashKey:       cfg.App.HashKey,
			Version:       cfg.App.Version,
		},
		Server:  cfg.Server,
		Storage: cfg.Storage.DB,
	}

	if serverCfg.Server.RequestTimeout == 0 {
		serverCfg.Server.RequestTimeout = DefaultServerRequestTimeout
	}
	if serverCfg.App.TokenDuration == 0 {
		serverCfg.App.TokenDuration = DefaultTokenDuration
	}

	return serverCfg
}
