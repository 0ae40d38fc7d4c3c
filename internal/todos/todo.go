// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package todos implements the per-user todo list.

Every todo belongs to exactly one creator. All reads and writes are scoped to
the caller's user ID; a todo owned by someone else is reported exactly like
one that does not exist.
*/
package todos

import "time"

// # Domain Entities

// Todo is a single item on a user's list.
//
// CompletedAt is milliseconds since the Unix epoch and is non-nil exactly
// when Completed is true.
type Todo struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Completed   bool      `json:"completed"`
	CompletedAt *int64    `json:"completedAt"`
	Creator     string    `json:"creator"`
	CreatedAt   time.Time `json:"-"`
}

// Patch is the full set of changes applied by one update.
//
// Completed and CompletedAt are always written; Text only when non-nil.
type Patch struct {
	Text        *string
	Completed   bool
	CompletedAt *int64
}

// apply mutates todo in place. In-memory stores use it; SQL and document
// stores express the same rule in their update statements.
func (patch Patch) apply(todo *Todo) {
	if patch.Text != nil {
		todo.Text = *patch.Text
	}
	todo.Completed = patch.Completed
	todo.CompletedAt = patch.CompletedAt
}

// # Field Identifiers

const (
	FieldText      = "text"
	FieldCompleted = "completed"
)
