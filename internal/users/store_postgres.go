// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/todoapi/internal/platform/database/schema"
	"github.com/taibuivan/todoapi/internal/platform/dberr"
	"github.com/taibuivan/todoapi/internal/platform/postgres"
	"github.com/taibuivan/todoapi/internal/platform/sec"
)

// # User Repository

// PostgresRepository implements [Repository] on the users.account table.
//
// Session tokens live in a JSONB array column so that appending one is a
// single UPDATE on the owning row.
type PostgresRepository struct {
	db     postgres.DBTX
	hasher *sec.Hasher
}

// NewPostgresRepository creates a new PostgreSQL implementation of [Repository].
func NewPostgresRepository(db postgres.DBTX, hasher *sec.Hasher) *PostgresRepository {
	return &PostgresRepository{db: db, hasher: hasher}
}

var selectAccount = fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s`,
	schema.UserAccount.ID, schema.UserAccount.Email, schema.UserAccount.Password,
	schema.UserAccount.Tokens, schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	schema.UserAccount.Table,
)

/*
Create persists a new user record into the users.account table.

Description: Hashes a pending password first, then inserts the row with an
empty token list. The unique email constraint turns a concurrent duplicate
registration into dberr.ErrConflict.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: dberr.ErrConflict or database errors
*/
func (repository *PostgresRepository) Create(context context.Context, user *User) error {
	if err := hashIfChanged(repository.hasher, user); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6)`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Email, schema.UserAccount.Password,
		schema.UserAccount.Tokens, schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	tokens, err := encodeTokens(user.Tokens)
	if err != nil {
		return err
	}

	_, err = repository.db.Exec(context, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		tokens,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return dberr.Wrap(err, "postgres_user_repo_create_failed")
}

/*
FindByID retrieves a user record by its unique ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Hydrated account entity
  - error: dberr.ErrNotFound or database errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*User, error) {
	query := selectAccount + fmt.Sprintf(`
		WHERE %s = $1`, schema.UserAccount.ID)

	user, err := scanUser(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_user_repo_find_by_id_failed")
	}
	return user, nil
}

/*
FindByEmail retrieves a user record by its normalized email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: dberr.ErrNotFound or database errors
*/
func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := selectAccount + fmt.Sprintf(`
		WHERE %s = $1`, schema.UserAccount.Email)

	user, err := scanUser(repository.db.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_user_repo_find_by_email_failed")
	}
	return user, nil
}

/*
FindByIDAndToken retrieves a user only if its token list contains the given
entry.

Description: Uses JSONB containment, so a revoked token never resolves even
while its signature is still valid.

Parameters:
  - context: context.Context
  - id: string
  - access: string
  - token: string

Returns:
  - *User: Hydrated account entity
  - error: dberr.ErrNotFound or database errors
*/
func (repository *PostgresRepository) FindByIDAndToken(context context.Context, id, access, token string) (*User, error) {
	query := selectAccount + fmt.Sprintf(`
		WHERE %s = $1 AND %s @> $2::jsonb`,
		schema.UserAccount.ID, schema.UserAccount.Tokens)

	entry, err := encodeTokens([]SessionToken{{Access: access, Token: token}})
	if err != nil {
		return nil, err
	}

	user, err := scanUser(repository.db.QueryRow(context, query, id, entry))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_user_repo_find_by_token_failed")
	}
	return user, nil
}

/*
AppendToken concatenates one entry onto the token array in a single statement.

Parameters:
  - context: context.Context
  - userID: string
  - token: SessionToken

Returns:
  - error: dberr.ErrNotFound when no row matched, or database errors
*/
func (repository *PostgresRepository) AppendToken(context context.Context, userID string, token SessionToken) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s || $2::jsonb, %s = now()
		WHERE %s = $1`,
		schema.UserAccount.Table,
		schema.UserAccount.Tokens, schema.UserAccount.Tokens, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID,
	)

	entry, err := encodeTokens([]SessionToken{token})
	if err != nil {
		return err
	}

	tag, err := repository.db.Exec(context, query, userID, entry)
	if err != nil {
		return dberr.Wrap(err, "postgres_user_repo_append_token_failed")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
RemoveToken rebuilds the token array without any entry matching the token.

Parameters:
  - context: context.Context
  - userID: string
  - token: string

Returns:
  - error: Database errors
*/
func (repository *PostgresRepository) RemoveToken(context context.Context, userID, token string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = COALESCE(
			(SELECT jsonb_agg(entry) FROM jsonb_array_elements(%s) AS entry WHERE entry->>'token' <> $2),
			'[]'::jsonb
		), %s = now()
		WHERE %s = $1`,
		schema.UserAccount.Table,
		schema.UserAccount.Tokens, schema.UserAccount.Tokens, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID,
	)

	_, err := repository.db.Exec(context, query, userID, token)
	return dberr.Wrap(err, "postgres_user_repo_remove_token_failed")
}

// # Helpers

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	var tokens []byte

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&tokens,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(tokens) > 0 {
		if err := json.Unmarshal(tokens, &user.Tokens); err != nil {
			return nil, fmt.Errorf("postgres_user_repo_decode_tokens_failed: %w", err)
		}
	}
	return user, nil
}

func encodeTokens(tokens []SessionToken) (string, error) {
	if tokens == nil {
		tokens = []SessionToken{}
	}
	payload, err := json.Marshal(tokens)
	if err != nil {
		return "", fmt.Errorf("postgres_user_repo_encode_tokens_failed: %w", err)
	}
	return string(payload), nil
}
