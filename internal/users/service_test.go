// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/todoapi/internal/platform/apperr"
	"github.com/taibuivan/todoapi/internal/platform/dberr"
	"github.com/taibuivan/todoapi/internal/platform/sec"
	"github.com/taibuivan/todoapi/internal/users"
)

const testSecret = "abc123"

// newTestService wires a service over the in-memory store with the cheapest bcrypt cost.
func newTestService(t *testing.T, guard users.LoginGuard) (*users.Service, *users.MemoryRepository) {
	t.Helper()

	hasher := sec.NewHasher(bcrypt.MinCost)
	codec, err := sec.NewTokenCodec(testSecret, 0)
	require.NoError(t, err)

	repository := users.NewMemoryRepository(hasher)
	return users.NewService(repository, hasher, codec, guard), repository
}

/*
TestRegisterThenLogin verifies the round trip: a registered password logs in,
any other password does not.
*/
func TestRegisterThenLogin(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	registered, err := service.Register(ctx, "a@x.com", "123456")
	require.NoError(t, err)

	loggedIn, err := service.Login(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, loggedIn.ID)

	_, err = service.Login(ctx, "a@x.com", "1234567")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestRegister_StoresDigestNotPlaintext(t *testing.T) {
	service, repository := newTestService(t, nil)
	ctx := context.Background()

	user, err := service.Register(ctx, "a@x.com", "123456")
	require.NoError(t, err)

	stored, err := repository.FindByID(ctx, user.ID)
	require.NoError(t, err)

	assert.NotEqual(t, "123456", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("123456")))
	assert.False(t, user.PasswordChanged())
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"malformed_email", "not-an-email", "123456"},
		{"empty_email", "   ", "123456"},
		{"short_password", "a@x.com", "12345"},
		{"empty_password", "a@x.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestService(t, nil)

			_, err := service.Register(context.Background(), tt.email, tt.password)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, apperr.CodeValidation, appError.Code)
			assert.Equal(t, http.StatusBadRequest, appError.HTTPStatus)
		})
	}
}

/*
TestRegister_DuplicateEmailIgnoresCase verifies the second registration is
rejected and leaves the stored account untouched.
*/
func TestRegister_DuplicateEmailIgnoresCase(t *testing.T) {
	service, repository := newTestService(t, nil)
	ctx := context.Background()

	original, err := service.Register(ctx, "a@x.com", "123456")
	require.NoError(t, err)

	before, err := repository.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)

	_, err = service.Register(ctx, "  A@X.COM ", "abcdef")
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)

	after, err := repository.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, original.ID, after.ID)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)

	_, err = service.Login(ctx, "a@x.com", "abcdef")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

/*
TestRegister_PasswordBeyondHashLimit verifies a password bcrypt cannot hash is
reported as a validation failure on the password field, not a storage error.
*/
func TestRegister_PasswordBeyondHashLimit(t *testing.T) {
	service, repository := newTestService(t, nil)
	ctx := context.Background()

	_, err := service.Register(ctx, "a@x.com", strings.Repeat("p", 80))

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeValidation, appError.Code)
	require.Len(t, appError.Details, 1)
	assert.Equal(t, users.FieldPassword, appError.Details[0].Field)

	_, err = repository.FindByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, dberr.ErrNotFound)

	_, err = service.Register(ctx, "a@x.com", strings.Repeat("p", 72))
	assert.NoError(t, err)
}

/*
TestLogin_TokenList verifies what the store holds across a session: one entry
per issued token, nothing added by a rejected login.
*/
func TestLogin_TokenList(t *testing.T) {
	service, repository := newTestService(t, nil)
	ctx := context.Background()

	storedTokens := func(userID string) []users.SessionToken {
		t.Helper()
		stored, err := repository.FindByID(ctx, userID)
		require.NoError(t, err)
		return stored.Tokens
	}

	user, err := service.Register(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.Empty(t, storedTokens(user.ID))

	registerToken, err := service.IssueSessionToken(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []users.SessionToken{{Access: "auth", Token: registerToken}}, storedTokens(user.ID))

	loggedIn, err := service.Login(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	loginToken, err := service.IssueSessionToken(ctx, loggedIn)
	require.NoError(t, err)

	tokens := storedTokens(user.ID)
	require.Len(t, tokens, 2)
	assert.Equal(t, users.SessionToken{Access: "auth", Token: loginToken}, tokens[1])

	_, err = service.Login(ctx, "a@x.com", "wrong-password")
	require.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	assert.Equal(t, tokens, storedTokens(user.ID))

	require.NoError(t, service.RevokeSessionToken(ctx, user.ID, registerToken))
	assert.Equal(t, []users.SessionToken{{Access: "auth", Token: loginToken}}, storedTokens(user.ID))
}

func TestLogin_UnknownEmail(t *testing.T) {
	service, _ := newTestService(t, nil)

	_, err := service.Login(context.Background(), "nobody@x.com", "123456")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

/*
TestSessionLifecycle verifies issue, resolve, revoke, and that a revoked
token no longer resolves even though its signature is still valid.
*/
func TestSessionLifecycle(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	user, err := service.Register(ctx, "a@x.com", "123456")
	require.NoError(t, err)

	token, err := service.IssueSessionToken(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, user.HasToken("auth", token))

	found, err := service.FindBySessionToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	identity, err := service.ResolveSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "a@x.com", identity.Email)
	assert.Equal(t, token, identity.Token)

	require.NoError(t, service.RevokeSessionToken(ctx, user.ID, token))

	_, err = service.FindBySessionToken(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)

	// Revoking again is a no-op.
	assert.NoError(t, service.RevokeSessionToken(ctx, user.ID, token))
}

func TestRevokeSessionToken_KeepsOtherSessions(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	user, err := service.Register(ctx, "a@x.com", "123456")
	require.NoError(t, err)

	first, err := service.IssueSessionToken(ctx, user)
	require.NoError(t, err)
	second, err := service.IssueSessionToken(ctx, user)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	require.NoError(t, service.RevokeSessionToken(ctx, user.ID, first))

	_, err = service.FindBySessionToken(ctx, second)
	assert.NoError(t, err)
}

func TestFindBySessionToken_Rejections(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	user, err := service.Register(ctx, "a@x.com", "123456")
	require.NoError(t, err)

	foreignCodec, err := sec.NewTokenCodec("another-secret", 0)
	require.NoError(t, err)
	forged, err := foreignCodec.Issue(user.ID, "auth")
	require.NoError(t, err)

	ownCodec, err := sec.NewTokenCodec(testSecret, 0)
	require.NoError(t, err)
	neverListed, err := ownCodec.Issue(user.ID, "auth")
	require.NoError(t, err)
	wrongAccess, err := ownCodec.Issue(user.ID, "admin")
	require.NoError(t, err)
	unknownUser, err := ownCodec.Issue("0190b3a4-7c1e-7d2a-9f00-1a2b3c4d5e6f", "auth")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"wrong_secret", forged},
		{"valid_but_not_listed", neverListed},
		{"wrong_access", wrongAccess},
		{"unknown_subject", unknownUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.FindBySessionToken(ctx, tt.token)
			assert.ErrorIs(t, err, apperr.ErrInvalidToken)
		})
	}
}

// failingRepository wraps the memory store and fails selected operations.
type failingRepository struct {
	*users.MemoryRepository
	failAppend bool
	failLookup bool
}

var errStorage = errors.New("storage offline")

func (repository *failingRepository) AppendToken(ctx context.Context, userID string, token users.SessionToken) error {
	if repository.failAppend {
		return errStorage
	}
	return repository.MemoryRepository.AppendToken(ctx, userID, token)
}

func (repository *failingRepository) FindByIDAndToken(ctx context.Context, id, access, token string) (*users.User, error) {
	if repository.failLookup {
		return nil, errStorage
	}
	return repository.MemoryRepository.FindByIDAndToken(ctx, id, access, token)
}

func TestStorageFailures(t *testing.T) {
	hasher := sec.NewHasher(bcrypt.MinCost)
	codec, err := sec.NewTokenCodec(testSecret, 0)
	require.NoError(t, err)

	repository := &failingRepository{MemoryRepository: users.NewMemoryRepository(hasher)}
	service := users.NewService(repository, hasher, codec, nil)
	ctx := context.Background()

	user, err := service.Register(ctx, "a@x.com", "123456")
	require.NoError(t, err)

	t.Run("append_failure_is_bad_request", func(t *testing.T) {
		repository.failAppend = true
		defer func() { repository.failAppend = false }()

		_, err := service.IssueSessionToken(ctx, user)
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, apperr.CodeBadRequest, appError.Code)
		assert.ErrorIs(t, err, errStorage)
	})

	t.Run("lookup_failure_is_not_masked", func(t *testing.T) {
		token, err := service.IssueSessionToken(ctx, user)
		require.NoError(t, err)

		repository.failLookup = true
		defer func() { repository.failLookup = false }()

		_, err = service.FindBySessionToken(ctx, token)
		assert.ErrorIs(t, err, errStorage)
		assert.Nil(t, apperr.As(err))
	})
}

/*
TestLogin_Throttled verifies that repeated failures lock the email and that
the lock applies even to the correct password until it expires.
*/
func TestLogin_Throttled(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	guard := users.NewRedisLoginGuard(client, 3, time.Minute)
	service, _ := newTestService(t, guard)
	ctx := context.Background()

	_, err := service.Register(ctx, "a@x.com", "123456")
	require.NoError(t, err)

	for range 3 {
		_, err := service.Login(ctx, "a@x.com", "wrong-password")
		require.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	}

	_, err = service.Login(ctx, "a@x.com", "123456")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeRateLimited, appError.Code)
	assert.Equal(t, http.StatusTooManyRequests, appError.HTTPStatus)

	server.FastForward(time.Minute + time.Second)

	_, err = service.Login(ctx, "a@x.com", "123456")
	assert.NoError(t, err)
}

func TestLogin_GuardOutageFailsOpen(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	guard := users.NewRedisLoginGuard(client, 3, time.Minute)
	service, _ := newTestService(t, guard)
	ctx := context.Background()

	_, err := service.Register(ctx, "a@x.com", "123456")
	require.NoError(t, err)

	server.Close()

	_, err = service.Login(ctx, "a@x.com", "123456")
	assert.NoError(t, err)
}
