// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	getBlob = `SELECT value FROM kv_blobs WHERE key = ?;`

	setBlob = `
		INSERT INTO kv_blobs (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at;`

	removeBlob = `DELETE FROM kv_blobs WHERE key = ?;`
)
