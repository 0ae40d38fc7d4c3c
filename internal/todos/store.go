// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package todos

import "context"

// # Todo Data Access

// Repository defines the data access contract for todos.
//
// Every method except Create filters on the creator as well as the ID, so a
// foreign todo surfaces as [dberr.ErrNotFound].
type Repository interface {

	/*
		Create persists a new todo.

		Parameters:
		  - context: context.Context
		  - todo: *Todo

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, todo *Todo) error

	/*
		ListByCreator returns every todo owned by creator, oldest first.

		Parameters:
		  - context: context.Context
		  - creator: string

		Returns:
		  - []*Todo: Possibly empty, never nil
		  - error: Retrieval failures
	*/
	ListByCreator(context context.Context, creator string) ([]*Todo, error)

	/*
		FindOwned returns the todo with the given ID if creator owns it.

		Parameters:
		  - context: context.Context
		  - id: string
		  - creator: string

		Returns:
		  - *Todo: Hydrated entity
		  - error: dberr.ErrNotFound or retrieval failures
	*/
	FindOwned(context context.Context, id, creator string) (*Todo, error)

	/*
		UpdateOwned applies patch in a single write and returns the result.

		Parameters:
		  - context: context.Context
		  - id: string
		  - creator: string
		  - patch: Patch

		Returns:
		  - *Todo: The updated entity
		  - error: dberr.ErrNotFound or persistence failures
	*/
	UpdateOwned(context context.Context, id, creator string, patch Patch) (*Todo, error)

	/*
		DeleteOwned removes the todo and returns what was deleted.

		Parameters:
		  - context: context.Context
		  - id: string
		  - creator: string

		Returns:
		  - *Todo: The removed entity
		  - error: dberr.ErrNotFound or persistence failures
	*/
	DeleteOwned(context context.Context, id, creator string) (*Todo, error)
}
