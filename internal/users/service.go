// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taibuivan/todoapi/internal/platform/apperr"
	"github.com/taibuivan/todoapi/internal/platform/constants"
	"github.com/taibuivan/todoapi/internal/platform/ctxutil"
	"github.com/taibuivan/todoapi/internal/platform/dberr"
	"github.com/taibuivan/todoapi/internal/platform/sec"
	"github.com/taibuivan/todoapi/internal/platform/validate"
	"github.com/taibuivan/todoapi/pkg/uuid"
)

// # Contracts & Types

// TokenCodec issues and verifies signed session tokens.
type TokenCodec interface {
	Issue(subjectID, access string) (string, error)
	Verify(token string) (*sec.SessionClaims, error)
}

// Service implements registration, credential checks and the session
// token lifecycle.
//
// # Review Process
//
// This service is critical for security. Every failure to resolve a session
// token must surface as the same [apperr.ErrInvalidToken].
type Service struct {
	repository Repository
	hasher     *sec.Hasher
	codec      TokenCodec
	guard      LoginGuard
}

// NewService constructs a new [Service]. A nil guard disables throttling.
func NewService(repository Repository, hasher *sec.Hasher, codec TokenCodec, guard LoginGuard) *Service {
	if guard == nil {
		guard = NopLoginGuard{}
	}
	return &Service{
		repository: repository,
		hasher:     hasher,
		codec:      codec,
		guard:      guard,
	}
}

// # Registration Flow

/*
Register validates and persists a brand new user account.

Description: The email is normalized before validation so that the stored
value, the uniqueness check and later logins all agree. The password is
hashed by the store write, never here.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *User: Created entity
  - error: ValidationError, ErrDuplicateEmail, or a 400 on storage failure
*/
func (service *Service) Register(context context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		MaxLen(FieldEmail, email, constants.EmailMaxLength).
		Email(FieldEmail, email).
		Required(FieldPassword, password).
		MinLen(FieldPassword, password, constants.PasswordMinLength).
		Custom(FieldPassword, len(password) > constants.PasswordMaxBytes,
			fmt.Sprintf("Maximum %d bytes", constants.PasswordMaxBytes))

	if err := validator.Err(); err != nil {
		return nil, err
	}

	user := &User{
		ID:    uuid.New(),
		Email: email,
	}
	user.SetPassword(password)

	if err := service.repository.Create(context, user); err != nil {
		if errors.Is(err, dberr.ErrConflict) {
			return nil, apperr.ErrDuplicateEmail
		}
		return nil, apperr.OnWrite(fmt.Errorf("users_service_register_failed: %w", err))
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_registered", slog.String("user_id", user.ID))
	return user, nil
}

// # Authentication Flow

/*
Login checks an email and password pair.

Description: Resolves only when the user exists and the password matches.
An unknown email and a wrong password yield the same error. Login does not
issue a session token; call IssueSessionToken afterwards.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *User: The authenticated account
  - error: ErrInvalidCredentials, RATE_LIMITED, or a 400 on storage failure
*/
func (service *Service) Login(context context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	logger := ctxutil.GetLogger(context)

	if err := service.guard.Check(context, email); err != nil {
		if apperr.As(err) != nil {
			logger.WarnContext(context, "login_throttled")
			return nil, err
		}
		logger.WarnContext(context, "login_guard_unavailable", slog.Any("error", err))
	}

	user, err := service.repository.FindByEmail(context, email)
	switch {
	case errors.Is(err, dberr.ErrNotFound):
		service.recordFailure(context, email)
		return nil, apperr.ErrInvalidCredentials
	case err != nil:
		return nil, apperr.OnWrite(fmt.Errorf("users_service_login_lookup_failed: %w", err))
	}

	if !service.hasher.Verify(password, user.PasswordHash) {
		service.recordFailure(context, email)
		return nil, apperr.ErrInvalidCredentials
	}

	if err := service.guard.Reset(context, email); err != nil {
		logger.WarnContext(context, "login_guard_reset_failed", slog.Any("error", err))
	}

	return user, nil
}

// recordFailure logs the failed attempt and feeds the guard. Guard errors are logged, not returned.
func (service *Service) recordFailure(context context.Context, email string) {
	logger := ctxutil.GetLogger(context)
	logger.InfoContext(context, "login_failed")

	if err := service.guard.RecordFailure(context, email); err != nil {
		logger.WarnContext(context, "login_guard_record_failed", slog.Any("error", err))
	}
}

// # Session Management

/*
IssueSessionToken signs a new session token and lists it on the user record.

Description: The token is returned only after the append has been persisted,
so it is usable as soon as the caller receives it.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - string: The signed session token
  - error: Signing or persistence failures
*/
func (service *Service) IssueSessionToken(context context.Context, user *User) (string, error) {
	token, err := service.codec.Issue(user.ID, constants.AccessAuth)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("users_service_issue_token_failed: %w", err))
	}

	entry := SessionToken{Access: constants.AccessAuth, Token: token}
	if err := service.repository.AppendToken(context, user.ID, entry); err != nil {
		return "", apperr.OnWrite(fmt.Errorf("users_service_append_token_failed: %w", err))
	}

	user.Tokens = append(user.Tokens, entry)
	return token, nil
}

/*
RevokeSessionToken removes every entry equal to token from the user's list.

Description: Idempotent. Revoking a token that is not listed succeeds.

Parameters:
  - context: context.Context
  - userID: string
  - token: string

Returns:
  - error: A 400 on storage failure
*/
func (service *Service) RevokeSessionToken(context context.Context, userID, token string) error {
	if err := service.repository.RemoveToken(context, userID, token); err != nil {
		return apperr.OnWrite(fmt.Errorf("users_service_revoke_token_failed: %w", err))
	}

	ctxutil.GetLogger(context).InfoContext(context, "session_revoked", slog.String("user_id", userID))
	return nil
}

/*
FindBySessionToken resolves a raw session token to its owner.

Description: The signature is verified first, then the token must still be
listed on the subject's record with the "auth" access tag. Every way this can
fail returns ErrInvalidToken, except infrastructure errors which are wrapped
so the caller can log them.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *User: The token owner
  - error: ErrInvalidToken or retrieval failures
*/
func (service *Service) FindBySessionToken(context context.Context, token string) (*User, error) {
	claims, err := service.codec.Verify(token)
	if err != nil || claims.Access != constants.AccessAuth {
		return nil, apperr.ErrInvalidToken
	}

	user, err := service.repository.FindByIDAndToken(context, claims.Subject, constants.AccessAuth, token)
	switch {
	case errors.Is(err, dberr.ErrNotFound):
		return nil, apperr.ErrInvalidToken
	case err != nil:
		return nil, fmt.Errorf("users_service_find_by_token_failed: %w", err)
	}

	return user, nil
}

// ResolveSession adapts [Service.FindBySessionToken] to the request gate.
func (service *Service) ResolveSession(context context.Context, token string) (*sec.Identity, error) {
	user, err := service.FindBySessionToken(context, token)
	if err != nil {
		return nil, err
	}
	return &sec.Identity{UserID: user.ID, Email: user.Email, Token: token}, nil
}
