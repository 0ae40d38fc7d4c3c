// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package todos_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/todoapi/internal/platform/dberr"
	"github.com/taibuivan/todoapi/internal/todos"
	"github.com/taibuivan/todoapi/pkg/pointer"
)

var itemColumns = []string{"id", "text", "completed", "completedat", "creatorid", "createdat"}

func newMockRepository(t *testing.T) (*todos.PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})

	return todos.NewPostgresRepository(mock), mock
}

func TestPostgresRepository_Create(t *testing.T) {
	repository, mock := newMockRepository(t)

	mock.ExpectExec(`INSERT INTO todos\.item \(id, text, completed, completedat, creatorid, createdat\)`).
		WithArgs("t-1", "walk the dog", false, (*int64)(nil), alice, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repository.Create(context.Background(), &todos.Todo{ID: "t-1", Text: "walk the dog", Creator: alice})
	assert.NoError(t, err)
}

func TestPostgresRepository_ListByCreator(t *testing.T) {
	repository, mock := newMockRepository(t)
	now := time.Now().UTC()
	completedAt := now.UnixMilli()

	mock.ExpectQuery(`WHERE creatorid = \$1\s+ORDER BY createdat ASC, id ASC`).
		WithArgs(alice).
		WillReturnRows(pgxmock.NewRows(itemColumns).
			AddRow("t-1", "first", false, (*int64)(nil), alice, now).
			AddRow("t-2", "second", true, &completedAt, alice, now))

	listed, err := repository.ListByCreator(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	assert.Nil(t, listed[0].CompletedAt)
	require.NotNil(t, listed[1].CompletedAt)
	assert.Equal(t, completedAt, *listed[1].CompletedAt)
}

func TestPostgresRepository_ListByCreatorEmpty(t *testing.T) {
	repository, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM todos\.item`).
		WithArgs(bob).
		WillReturnRows(pgxmock.NewRows(itemColumns))

	listed, err := repository.ListByCreator(context.Background(), bob)
	require.NoError(t, err)
	assert.NotNil(t, listed)
	assert.Empty(t, listed)
}

func TestPostgresRepository_FindOwnedScopesByCreator(t *testing.T) {
	repository, mock := newMockRepository(t)

	mock.ExpectQuery(`WHERE id = \$1 AND creatorid = \$2`).
		WithArgs("t-1", bob).
		WillReturnError(pgx.ErrNoRows)

	_, err := repository.FindOwned(context.Background(), "t-1", bob)
	assert.ErrorIs(t, err, dberr.ErrNotFound)
}

/*
TestPostgresRepository_UpdateOwned verifies the single UPDATE ... RETURNING
statement and that a nil text is passed through for COALESCE.
*/
func TestPostgresRepository_UpdateOwned(t *testing.T) {
	repository, mock := newMockRepository(t)
	now := time.Now().UTC()
	completedAt := now.UnixMilli()

	mock.ExpectQuery(`UPDATE todos\.item\s+SET text = COALESCE\(\$3::text, text\), completed = \$4, completedat = \$5\s+WHERE id = \$1 AND creatorid = \$2\s+RETURNING`).
		WithArgs("t-1", alice, (*string)(nil), true, &completedAt).
		WillReturnRows(pgxmock.NewRows(itemColumns).
			AddRow("t-1", "first", true, &completedAt, alice, now))

	updated, err := repository.UpdateOwned(context.Background(), "t-1", alice, todos.Patch{
		Completed:   true,
		CompletedAt: pointer.To(completedAt),
	})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, completedAt, *updated.CompletedAt)
}

func TestPostgresRepository_DeleteOwned(t *testing.T) {
	repository, mock := newMockRepository(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`DELETE FROM todos\.item\s+WHERE id = \$1 AND creatorid = \$2\s+RETURNING`).
		WithArgs("t-1", alice).
		WillReturnRows(pgxmock.NewRows(itemColumns).
			AddRow("t-1", "first", false, (*int64)(nil), alice, now))
	mock.ExpectQuery(`DELETE FROM todos\.item`).
		WithArgs("t-1", alice).
		WillReturnError(pgx.ErrNoRows)

	deleted, err := repository.DeleteOwned(context.Background(), "t-1", alice)
	require.NoError(t, err)
	assert.Equal(t, "t-1", deleted.ID)

	_, err = repository.DeleteOwned(context.Background(), "t-1", alice)
	assert.ErrorIs(t, err, dberr.ErrNotFound)
}
