// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/todoapi/internal/users"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a@x.com", "a@x.com"},
		{"  A@X.com  ", "a@x.com"},
		{"MongoMike@Gmail.COM", "mongomike@gmail.com"},
		{"Straße@example.com", "strasse@example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, users.NormalizeEmail(tt.input))
		})
	}
}

/*
TestToPublicView verifies that the external projection carries only id and email.
*/
func TestToPublicView(t *testing.T) {
	user := &users.User{
		ID:           "0190b3a4-7c1e-7d2a-9f00-1a2b3c4d5e6f",
		Email:        "a@x.com",
		PasswordHash: "$2a$10$secret",
		Tokens:       []users.SessionToken{{Access: "auth", Token: "t"}},
	}

	payload, err := json.Marshal(users.ToPublicView(user))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(payload, &fields))

	assert.Equal(t, map[string]any{"id": user.ID, "email": "a@x.com"}, fields)
}

func TestUser_HasToken(t *testing.T) {
	user := &users.User{Tokens: []users.SessionToken{{Access: "auth", Token: "abc"}}}

	assert.True(t, user.HasToken("auth", "abc"))
	assert.False(t, user.HasToken("auth", "other"))
	assert.False(t, user.HasToken("admin", "abc"))
}

func TestUser_SetPasswordMarksChange(t *testing.T) {
	user := &users.User{}
	assert.False(t, user.PasswordChanged())

	user.SetPassword("123456")
	assert.True(t, user.PasswordChanged())
}
