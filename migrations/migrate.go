// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package migrations embeds the schema of both storage backends: the SQLite
// blob table of the client and the PostgreSQL document tables of the server.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed client/*.sql server/*.sql
var embedMigrations embed.FS

// goose keeps the base FS and dialect in package state.
var gooseMu sync.Mutex

// MigrateClient applies the client schema to a SQLite database.
func MigrateClient(db *sql.DB) error {
	return migrate(db, "sqlite3", "client")
}

// MigrateServer applies the server schema to a PostgreSQL database.
func MigrateServer(db *sql.DB) error {
	return migrate(db, "pgx", "server")
}

func migrate(db *sql.DB, dialect, dir string) error {
	if db == nil {
		return errors.New("migration error: db is nil")
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
