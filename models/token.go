// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Token wraps a JWT bearer token issued by the remote document store.
//
// It embeds [jwt.Token] for signing and parsing, and [jwt.RegisteredClaims]
// for standard claim access. The "sub" claim carries the user identity that
// scopes every collection path.
type Token struct {
	*jwt.Token `json:"-"`

	jwt.RegisteredClaims

	// SignedString is the compact JWS form sent in the Authorization header.
	SignedString string `json:"-"`

	// UserID is the parsed "sub" claim.
	UserID string `json:"-"`
}

// GetUserID returns the user identity from the "sub" claim.
func (t *Token) GetUserID() (string, error) {
	userID, err := t.GetSubject()
	if err != nil {
		return "", fmt.Errorf("error extracting UserID from token: %w", err)
	}
	if userID == "" {
		return "", errors.New("empty subject in token")
	}

	return userID, nil
}

// String returns the compact JWS serialization of the token.
func (t *Token) String() string {
	return t.SignedString
}
