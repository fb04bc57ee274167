// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"
)

// Payload holds the collection-specific fields of a record (amount,
// category, dates and so on). Values must be JSON-serializable.
type Payload map[string]any

// Clone returns a shallow copy of p. A nil payload clones to nil.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// Merge returns a copy of p with every field of updates written over it.
// The merge is shallow: nested objects are replaced, not combined.
func (p Payload) Merge(updates Payload) Payload {
	merged := make(Payload, len(p)+len(updates))
	maps.Copy(merged, p)
	maps.Copy(merged, updates)
	return merged
}

// Record is a single financial entity stored in one of the tracked
// collections.
type Record struct {
	// ID is assigned by the client when the record is created and never
	// reused. It stays stable across offline periods and remote round-trips.
	ID string `json:"id"`

	// Collection is the collection the record belongs to.
	Collection Collection `json:"collection"`

	// Payload carries the collection-specific fields.
	Payload Payload `json:"payload"`

	// UpdatedAt is the last modification time assigned by the remote store.
	// It is nil for records that have not been read back from the remote
	// store yet. The client never sets it from its own clock.
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Clone returns a copy of r whose payload can be modified independently.
func (r Record) Clone() Record {
	r.Payload = r.Payload.Clone()
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		r.UpdatedAt = &t
	}
	return r
}

// Decode unmarshals the record payload into v.
func (r Record) Decode(v any) error {
	raw, err := json.Marshal(r.Payload)
	if err != nil {
		return fmt.Errorf("error encoding %s payload %s: %w", r.Collection, r.ID, err)
	}
	if err = json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("error decoding %s payload %s: %w", r.Collection, r.ID, err)
	}
	return nil
}

// EncodePayload converts a typed value into a [Payload] through its JSON
// representation.
func EncodePayload(v any) (Payload, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error encoding payload: %w", err)
	}

	var p Payload
	if err = json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("error converting payload: %w", err)
	}
	return p, nil
}
