// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/models"
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
// It handles account creation and lookup against the "users" table.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user and returns it with the database-assigned
// creation time.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrLoginAlreadyExists].
//   - Any other driver-level error → wrapped [ErrExecutingQuery].
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildCreateUserQuery(ctx, user)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("failed to create query")
		return models.User{}, r.db.wrapError(ErrBuildingSQLQuery, err)
	}

	// create user in db
	if err = r.db.QueryRowContext(ctx, query, args...).Scan(&user.CreatedAt); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Str("login", user.Login).Msg("error creating user")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.User{}, ErrLoginAlreadyExists
		default:
			return models.User{}, r.db.wrapError(ErrExecutingQuery, err)
		}
	}

	return user, nil
}

// FindUserByLogin retrieves the user whose login matches.
//
// Error handling:
//   - [sql.ErrNoRows] → [ErrNoUserWasFound].
//   - Any other driver-level error → wrapped [ErrExecutingQuery].
func (r *userRepository) FindUserByLogin(ctx context.Context, login string) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildFindUserByLoginQuery(ctx, login)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.FindUserByLogin").Msg("failed to create query")
		return models.User{}, r.db.wrapError(ErrBuildingSQLQuery, err)
	}

	var found models.User
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&found.UserID, &found.Login, &found.PasswordHash, &found.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNoUserWasFound
	}
	if err != nil {
		log.Err(err).Str("func", "*userRepository.FindUserByLogin").Str("login", login).Msg("error finding user")
		return models.User{}, r.db.wrapError(ErrExecutingQuery, err)
	}

	return found, nil
}
