// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package todos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/todoapi/internal/platform/database/schema"
	"github.com/taibuivan/todoapi/internal/platform/dberr"
	"github.com/taibuivan/todoapi/internal/platform/postgres"
)

// # Todo Repository

// PostgresRepository implements [Repository] on the todos.item table.
type PostgresRepository struct {
	db postgres.DBTX
}

// NewPostgresRepository creates a new PostgreSQL implementation of [Repository].
func NewPostgresRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var itemColumns = strings.Join(schema.TodoItem.Columns(), ", ")

/*
Create inserts a new row into todos.item.

Parameters:
  - context: context.Context
  - todo: *Todo

Returns:
  - error: Database errors
*/
func (repository *PostgresRepository) Create(context context.Context, todo *Todo) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.TodoItem.Table, itemColumns,
	)

	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = time.Now().UTC()
	}

	_, err := repository.db.Exec(context, query,
		todo.ID,
		todo.Text,
		todo.Completed,
		todo.CompletedAt,
		todo.Creator,
		todo.CreatedAt,
	)

	return dberr.Wrap(err, "postgres_todo_repo_create_failed")
}

/*
ListByCreator returns the creator's todos in creation order.

Parameters:
  - context: context.Context
  - creator: string

Returns:
  - []*Todo: Possibly empty list
  - error: Database errors
*/
func (repository *PostgresRepository) ListByCreator(context context.Context, creator string) ([]*Todo, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC, %s ASC`,
		itemColumns, schema.TodoItem.Table,
		schema.TodoItem.Creator,
		schema.TodoItem.CreatedAt, schema.TodoItem.ID,
	)

	rows, err := repository.db.Query(context, query, creator)
	if err != nil {
		return nil, fmt.Errorf("postgres_todo_repo_list_failed: %w", err)
	}
	defer rows.Close()

	result := make([]*Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_todo_repo_scan_failed: %w", err)
		}
		result = append(result, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_todo_repo_rows_failed: %w", err)
	}

	return result, nil
}

/*
FindOwned returns a todo by ID, scoped to its creator.

Parameters:
  - context: context.Context
  - id: string
  - creator: string

Returns:
  - *Todo: Hydrated entity
  - error: dberr.ErrNotFound or database errors
*/
func (repository *PostgresRepository) FindOwned(context context.Context, id, creator string) (*Todo, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s = $2`,
		itemColumns, schema.TodoItem.Table,
		schema.TodoItem.ID, schema.TodoItem.Creator,
	)

	todo, err := scanTodo(repository.db.QueryRow(context, query, id, creator))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_todo_repo_find_failed")
	}
	return todo, nil
}

/*
UpdateOwned applies a patch in one UPDATE ... RETURNING statement.

Description: A nil text keeps the stored value through COALESCE; the
completion pair is always overwritten.

Parameters:
  - context: context.Context
  - id: string
  - creator: string
  - patch: Patch

Returns:
  - *Todo: The updated row
  - error: dberr.ErrNotFound or database errors
*/
func (repository *PostgresRepository) UpdateOwned(context context.Context, id, creator string, patch Patch) (*Todo, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = COALESCE($3::text, %s), %s = $4, %s = $5
		WHERE %s = $1 AND %s = $2
		RETURNING %s`,
		schema.TodoItem.Table,
		schema.TodoItem.Text, schema.TodoItem.Text,
		schema.TodoItem.Completed, schema.TodoItem.CompletedAt,
		schema.TodoItem.ID, schema.TodoItem.Creator,
		itemColumns,
	)

	todo, err := scanTodo(repository.db.QueryRow(context, query, id, creator, patch.Text, patch.Completed, patch.CompletedAt))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_todo_repo_update_failed")
	}
	return todo, nil
}

/*
DeleteOwned removes a row and returns it.

Parameters:
  - context: context.Context
  - id: string
  - creator: string

Returns:
  - *Todo: The removed row
  - error: dberr.ErrNotFound or database errors
*/
func (repository *PostgresRepository) DeleteOwned(context context.Context, id, creator string) (*Todo, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = $1 AND %s = $2
		RETURNING %s`,
		schema.TodoItem.Table,
		schema.TodoItem.ID, schema.TodoItem.Creator,
		itemColumns,
	)

	todo, err := scanTodo(repository.db.QueryRow(context, query, id, creator))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_todo_repo_delete_failed")
	}
	return todo, nil
}

// # Helpers

func scanTodo(row pgx.Row) (*Todo, error) {
	todo := &Todo{}
	err := row.Scan(
		&todo.ID,
		&todo.Text,
		&todo.Completed,
		&todo.CompletedAt,
		&todo.Creator,
		&todo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return todo, nil
}
