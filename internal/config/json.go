// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] in the layout of the JSON
// configuration file.
type StructuredJSONConfig struct {
	App struct {
		TokenSignKey  string   `json:"token_sign_key"`
		TokenIssuer   string   `json:"token_issuer"`
		TokenDuration Duration `json:"token_duration"`
		HashKey       string   `json:"hash_key"`
		Version       string   `json:"version"`
		LogFile       string   `json:"log_file"`
		SyncDisabled  bool     `json:"sync_disabled"`
		Login         string   `json:"login"`
		Password      string   `json:"password"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Files struct {
			Dir string `json:"dir"`
		} `json:"files,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Workers struct {
		SyncInterval  Duration `json:"sync_interval"`
		ProbeInterval Duration `json:"probe_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			TokenSignKey:  jsonCfg.App.TokenSignKey,
			TokenIssuer:   jsonCfg.App.TokenIssuer,
			TokenDuration: time.Duration(jsonCfg.App.TokenDuration),
			HashKey:       jsonCfg.App.HashKey,
			Version:       jsonCfg.App.Version,
			LogFile:       jsonCfg.App.LogFile,
			SyncDisabled:  jsonCfg.App.SyncDisabled,
			Login:         jsonCfg.App.Login,
			Password:      jsonCfg.App.Password,
		},
		Storage: Storage{
			DB:    DB{DSN: jsonCfg.Storage.DB.DSN},
			Files: Files{Dir: jsonCfg.Storage.Files.Dir},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Workers: Workers{
			SyncInterval:  time.Duration(jsonCfg.Workers.SyncInterval),
			ProbeInterval: time.Duration(jsonCfg.Workers.ProbeInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" as well as plain nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
