// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

var (
	// ErrNotFound is returned by repositories when a queried row or document doesn't exist.
	ErrNotFound = errors.New("dberr: not found")

	// ErrConflict is returned by repositories when a write hits a unique constraint.
	ErrConflict = errors.New("dberr: conflict")
)

// Wrap inspects a driver error and classifies it.
//
// No-rows / no-documents become [ErrNotFound], unique violations become
// [ErrConflict]; everything else is wrapped with the action tag so callers
// can still reach the driver error.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	// 2. Unique constraint mapping
	if IsUniqueViolation(err) {
		return ErrConflict
	}

	// 3. Unknown errors keep their cause
	return fmt.Errorf("%s: %w", action, err)
}

// IsUniqueViolation reports whether err is a PostgreSQL 23505 or a MongoDB duplicate key error.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return true
	}
	return mongo.IsDuplicateKeyError(err)
}
