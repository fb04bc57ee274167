// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/kharcha-sync/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// documentColumns are selected by every document read, in scan order.
var documentColumns = []string{"collection", "id", "payload", "updated_at"}

const (
	// the payload of an update holds only the changed fields; jsonb || keeps
	// the rest of the stored document
	upsertDocumentConflict = `ON CONFLICT (user_id, collection, id) DO UPDATE SET
		payload = documents.payload || EXCLUDED.payload,
		updated_at = EXCLUDED.updated_at
		RETURNING payload, updated_at`
)

// buildCreateUserQuery inserts a user and returns its creation time.
func buildCreateUserQuery(_ context.Context, user models.User) (string, []any, error) {
	return psql.
		Insert(user.TableName()).
		Columns("user_id", "login", "password_hash").
		Values(user.UserID, user.Login, user.PasswordHash).
		Suffix("RETURNING created_at").
		ToSql()
}

func buildFindUserByLoginQuery(_ context.Context, login string) (string, []any, error) {
	return psql.
		Select("user_id", "login", "password_hash", "created_at").
		From(models.User{}.TableName()).
		Where(sq.Eq{"login": login}).
		ToSql()
}

// buildListDocumentsQuery reads one collection of a user. Collections with an
// order field come back newest first; the rest are ordered by id so repeated
// reads are stable.
func buildListDocumentsQuery(_ context.Context, userID string, c models.Collection) (string, []any, error) {
	q := psql.
		Select(documentColumns...).
		From("documents").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"collection": string(c)})

	if field := c.OrderField(); field != "" {
		q = q.OrderBy(fmt.Sprintf("payload->>'%s' DESC NULLS LAST", field), "id")
	} else {
		q = q.OrderBy("id")
	}
	return q.ToSql()
}

func buildUpsertDocumentQuery(_ context.Context, userID string, c models.Collection, id string, payload []byte) (string, []any, error) {
	return psql.
		Insert("documents").
		Columns("user_id", "collection", "id", "payload", "updated_at").
		Values(userID, string(c), id, string(payload), sq.Expr("clock_timestamp()")).
		Suffix(upsertDocumentConflict).
		ToSql()
}

func buildDeleteDocumentQuery(_ context.Context, userID string, c models.Collection, id string) (string, []any, error) {
	return psql.
		Delete("documents").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"collection": string(c)}).
		Where(sq.Eq{"id": id}).
		ToSql()
}
