// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// User represents an account of the remote document store.
type User struct {
	// UserID is the opaque identity string that scopes every collection of
	// the user on the remote store.
	UserID string `json:"user_id,omitempty"`

	// Login is the unique user login.
	Login string `json:"login"`

	// Password is the plaintext password on the way in. It is never returned
	// by the server and never persisted by the client.
	Password string `json:"password,omitempty"`

	// PasswordHash is the bcrypt hash kept by the server only.
	PasswordHash string `json:"-"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
