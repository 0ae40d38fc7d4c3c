// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users

import "context"

// # User Data Access

// Repository defines the data access contract for user accounts and their
// session tokens.
//
// Lookups report a missing record as [dberr.ErrNotFound]; Create reports an
// email collision as [dberr.ErrConflict].
type Repository interface {

	/*
		Create persists a brand-new user account.

		A password set through [User.SetPassword] is hashed before the
		record is written.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: dberr.ErrConflict on a duplicate email, or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: dberr.ErrNotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given normalized email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: dberr.ErrNotFound or retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByIDAndToken returns the account only if it lists the token
		under the given access tag.

		Parameters:
		  - context: context.Context
		  - id: string
		  - access: string
		  - token: string

		Returns:
		  - *User: Hydrated entity
		  - error: dberr.ErrNotFound or retrieval failures
	*/
	FindByIDAndToken(context context.Context, id, access, token string) (*User, error)

	/*
		AppendToken adds one session entry in a single atomic write.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - token: SessionToken

		Returns:
		  - error: dberr.ErrNotFound or persistence failures
	*/
	AppendToken(context context.Context, userID string, token SessionToken) error

	/*
		RemoveToken deletes every session entry whose token equals the
		given value. Removing an absent token is not an error.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	RemoveToken(context context.Context, userID, token string) error
}
