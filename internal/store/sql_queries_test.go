// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/kharcha-sync/models"
)

func Test_buildListDocumentsQuery(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		collection models.Collection
		checkQuery func(t *testing.T, query string)
	}{
		{
			name:       "transactions ordered by date, newest first",
			collection: models.CollectionTransactions,
			checkQuery: func(t *testing.T, query string) {
				require.Contains(t, query, "ORDER BY payload->>'date' DESC NULLS LAST, id")
			},
		},
		{
			name:       "budgets ordered by id",
			collection: models.CollectionBudgets,
			checkQuery: func(t *testing.T, query string) {
				require.Contains(t, query, "ORDER BY id")
				require.NotContains(t, query, "payload->>")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildListDocumentsQuery(ctx, "u-1", tt.collection)
			require.NoError(t, err)

			q := strings.ToLower(query)
			require.Contains(t, q, "select collection, id, payload, updated_at from documents")
			require.Contains(t, query, "user_id = $1")
			require.Contains(t, query, "collection = $2")

			require.Equal(t, []any{"u-1", string(tt.collection)}, args)
			tt.checkQuery(t, query)
		})
	}
}

func Test_buildUpsertDocumentQuery_MergesPayload(t *testing.T) {
	query, args, err := buildUpsertDocumentQuery(context.Background(), "u-1", models.CollectionGoals, "g1", []byte(`{"saved":"5"}`))
	require.NoError(t, err)

	require.Contains(t, query, "ON CONFLICT (user_id, collection, id) DO UPDATE")
	require.Contains(t, query, "documents.payload || EXCLUDED.payload")
	require.Contains(t, query, "RETURNING payload, updated_at")
	// the database clock stamps the write, never the caller
	require.Contains(t, query, "clock_timestamp()")
	require.Equal(t, []any{"u-1", "goals", "g1", `{"saved":"5"}`}, args)
}

func Test_buildCreateUserQuery(t *testing.T) {
	query, args, err := buildCreateUserQuery(context.Background(), models.User{UserID: "u-1", Login: "alice", PasswordHash: "h"})
	require.NoError(t, err)

	require.Contains(t, query, "INSERT INTO users (user_id,login,password_hash) VALUES ($1,$2,$3)")
	require.Contains(t, query, "RETURNING created_at")
	require.Equal(t, []any{"u-1", "alice", "h"}, args)
}
