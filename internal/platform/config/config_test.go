// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/todoapi/internal/platform/config"
)

// chdir switches into a fresh directory so no stray .env file leaks into a test.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	previous, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(previous) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)
	t.Setenv("JWT_SECRET", "abc123")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, config.DriverMemory, cfg.StoreDriver)
	assert.Equal(t, time.Duration(0), cfg.TokenTTL)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.LoginLockout)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_MissingSecret(t *testing.T) {
	chdir(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_DRIVER", "memory")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_DriverRequirements(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"postgres_without_url", map[string]string{"STORE_DRIVER": "postgres", "DATABASE_URL": ""}, true},
		{"postgres_with_url", map[string]string{"STORE_DRIVER": "postgres", "DATABASE_URL": "postgres://localhost/todo"}, false},
		{"mongo_without_uri", map[string]string{"STORE_DRIVER": "mongo", "MONGODB_URI": ""}, true},
		{"mongo_with_uri", map[string]string{"STORE_DRIVER": "mongo", "MONGODB_URI": "mongodb://localhost:27017"}, false},
		{"unknown_driver", map[string]string{"STORE_DRIVER": "sqlite"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t)
			t.Setenv("JWT_SECRET", "abc123")
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := config.Load()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_DotenvFiles(t *testing.T) {
	dir := chdir(t)
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SERVER_PORT", "")
	os.Unsetenv("SERVER_PORT")
	os.Unsetenv("JWT_SECRET")
	t.Cleanup(func() { os.Unsetenv("JWT_SECRET") })

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("JWT_SECRET=from-test-file\nSERVER_PORT=3000\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=from-generic-file\n"), 0o600))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "from-test-file", cfg.JWTSecret)
	assert.Equal(t, "3000", cfg.ServerPort)
	os.Unsetenv("SERVER_PORT")
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &config.Config{CORSOrigins: []string{" https://app.example.com/ ", "", "http://localhost:4200"}}
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:4200"}, cfg.AllowedOrigins())
}
