// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package users implements registered accounts and their session tokens.

It defines the User entity, the storage contract with its PostgreSQL, MongoDB
and in-memory implementations, the session service used by the request gate,
and the /users HTTP endpoints.

# Architecture

A session token is only valid while it is listed on its owner's record.
Issuing a token appends it atomically; logging out removes it. The signed
token alone never authenticates a request.
*/
package users

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/taibuivan/todoapi/internal/platform/sec"
)

// # Domain Entities

// User represents a registered account.
//
// It carries no JSON tags on purpose: the only external representation is
// [PublicView], produced by [ToPublicView].
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Tokens       []SessionToken
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// pendingPassword holds a plaintext set through SetPassword until the
	// store write hashes it.
	pendingPassword string
	passwordChanged bool
}

// SessionToken is one issued session listed on a user record.
type SessionToken struct {
	Access string `json:"access" bson:"access"`
	Token  string `json:"token"  bson:"token"`
}

// SetPassword marks a new plaintext password to be hashed on the next write.
func (user *User) SetPassword(plain string) {
	user.pendingPassword = plain
	user.passwordChanged = true
}

// PasswordChanged reports whether a password is waiting to be hashed.
func (user *User) PasswordChanged() bool {
	return user.passwordChanged
}

// HasToken reports whether token is listed with the given access tag.
func (user *User) HasToken(access, token string) bool {
	for _, entry := range user.Tokens {
		if entry.Access == access && entry.Token == token {
			return true
		}
	}
	return false
}

// hashIfChanged replaces a pending plaintext with its digest. Stores call it
// as the first step of every write so a plaintext never reaches persistence.
func hashIfChanged(hasher *sec.Hasher, user *User) error {
	if !user.passwordChanged {
		return nil
	}

	digest, err := hasher.Hash(user.pendingPassword)
	if err != nil {
		return fmt.Errorf("user_hash_password_failed: %w", err)
	}

	user.PasswordHash = digest
	user.pendingPassword = ""
	user.passwordChanged = false
	return nil
}

// clone returns a copy that does not share the Tokens backing array.
func (user *User) clone() *User {
	copied := *user
	copied.Tokens = append([]SessionToken(nil), user.Tokens...)
	return &copied
}

// # Public Projection

// PublicView is the only user representation returned to clients.
type PublicView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ToPublicView strips the password hash and session tokens from user.
func ToPublicView(user *User) PublicView {
	return PublicView{ID: user.ID, Email: user.Email}
}

// # Normalization

// NormalizeEmail trims surrounding whitespace and applies Unicode case folding,
// so that lookups and the uniqueness constraint ignore letter case.
//
// A Caser is stateful, so a fresh one is built per call.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// # Field Identifiers

const (
	FieldEmail    = "email"
	FieldPassword = "password"
)
