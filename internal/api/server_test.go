// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/todoapi/internal/api"
	"github.com/taibuivan/todoapi/internal/platform/config"
	"github.com/taibuivan/todoapi/internal/platform/constants"
	"github.com/taibuivan/todoapi/internal/platform/middleware"
	"github.com/taibuivan/todoapi/internal/platform/sec"
	"github.com/taibuivan/todoapi/internal/storage"
	"github.com/taibuivan/todoapi/internal/todos"
	"github.com/taibuivan/todoapi/internal/users"
)

func newTestServer(t *testing.T, checks ...api.HealthCheck) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hasher := sec.NewHasher(bcrypt.MinCost)
	codec, err := sec.NewTokenCodec("abc123", 0)
	require.NoError(t, err)

	store := storage.OpenMemory(hasher)
	userService := users.NewService(store.Users, hasher, codec, nil)

	liveness, readiness := api.NewHealthHandlers(checks, logger)
	cfg := &config.Config{ServerPort: "0", Environment: "development"}

	server := api.NewServer(cfg, logger, middleware.NewRateLimiter(1000, 1000), api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Sessions:  userService,
		Users:     users.NewHandler(userService),
		Todos:     todos.NewHandler(todos.NewService(store.Todos)),
	})
	return server.Handler()
}

func call(t *testing.T, handler http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(method, target, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set(constants.HeaderAuthToken, token)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestServer_EndToEnd drives the whole API through the real router: register,
create and list todos, logout, and confirm the revoked token is refused.
*/
func TestServer_EndToEnd(t *testing.T) {
	handler := newTestServer(t)

	registered := call(t, handler, http.MethodPost, "/users", `{"email":"Alice@Example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, registered.Code)
	token := registered.Header().Get(constants.HeaderAuthToken)
	require.NotEmpty(t, token)

	var profile map[string]any
	require.NoError(t, json.Unmarshal(registered.Body.Bytes(), &profile))
	assert.Equal(t, "alice@example.com", profile["email"])
	assert.NotContains(t, profile, "password")
	assert.NotContains(t, profile, "tokens")

	created := call(t, handler, http.MethodPost, "/todos", `{"text":"ship it"}`, token)
	require.Equal(t, http.StatusOK, created.Code)

	listed := call(t, handler, http.MethodGet, "/todos", "", token)
	require.Equal(t, http.StatusOK, listed.Code)
	var list struct {
		Todos []map[string]any `json:"todos"`
	}
	require.NoError(t, json.Unmarshal(listed.Body.Bytes(), &list))
	require.Len(t, list.Todos, 1)
	assert.Equal(t, profile["id"], list.Todos[0]["creator"])

	loggedIn := call(t, handler, http.MethodPost, "/users/login", `{"email":"alice@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, loggedIn.Code)
	second := loggedIn.Header().Get(constants.HeaderAuthToken)
	require.NotEqual(t, token, second)

	require.Equal(t, http.StatusOK, call(t, handler, http.MethodDelete, "/users/me/token", "", token).Code)

	refused := call(t, handler, http.MethodGet, "/todos", "", token)
	assert.Equal(t, http.StatusUnauthorized, refused.Code)
	assert.Empty(t, refused.Body.String())

	assert.Equal(t, http.StatusOK, call(t, handler, http.MethodGet, "/users/me", "", second).Code)
}

func TestServer_TodosRequireSession(t *testing.T) {
	handler := newTestServer(t)

	for _, target := range []string{"/todos", "/todos/0190b3a4-7c1e-7d2a-9f00-00000000000a"} {
		response := call(t, handler, http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusUnauthorized, response.Code, target)
	}
	assert.Equal(t, http.StatusUnauthorized, call(t, handler, http.MethodGet, "/todos", "", "not-a-token").Code)
}

func TestServer_HealthProbes(t *testing.T) {
	healthy := newTestServer(t, api.HealthCheck{Name: "memory", Check: func(context.Context) error { return nil }})

	live := call(t, healthy, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, live.Code)
	assert.JSONEq(t, `{"status":"ok"}`, live.Body.String())

	ready := call(t, healthy, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, ready.Code)
	assert.JSONEq(t, `{"status":"ready","checks":[{"name":"memory","ok":true}]}`, ready.Body.String())

	degraded := newTestServer(t, api.HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }})

	notReady := call(t, degraded, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, notReady.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":[{"name":"redis","ok":false,"error":"connection refused"}]}`, notReady.Body.String())
}
