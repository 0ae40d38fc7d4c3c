// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taibuivan/todoapi/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil_passes_through", nil, nil},
		{"pgx_no_rows", pgx.ErrNoRows, dberr.ErrNotFound},
		{"mongo_no_documents", mongo.ErrNoDocuments, dberr.ErrNotFound},
		{"pg_unique_violation", &pgconn.PgError{Code: "23505"}, dberr.ErrConflict},
		{"mongo_duplicate_key", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}, dberr.ErrConflict},
		{"unknown_keeps_cause", cause, cause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dberr.Wrap(tt.err, "test_action")
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestIsUniqueViolation_OtherSQLState(t *testing.T) {
	assert.False(t, dberr.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, dberr.IsUniqueViolation(errors.New("boom")))
}
