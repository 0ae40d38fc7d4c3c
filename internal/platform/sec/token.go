// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// user store through constructor parameters.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/todoapi/pkg/uuid"
)

// ErrInvalidToken is returned by [TokenCodec.Verify] for any token that cannot be trusted.
var ErrInvalidToken = errors.New("sec: invalid token")

// SessionClaims represents the payload embedded inside a session token.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Access is the access-level tag ("auth" for every session issued today).
	Access string `json:"access"`
}

// TokenCodec issues and verifies HS256-signed session tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec creates a codec bound to the shared signing secret.
//
// A ttl of zero issues tokens without an expiry claim; such tokens stay valid
// until revoked.
func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("sec: token secret must not be empty")
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue creates a signed token for subjectID with the given access tag.
//
// Every token carries a fresh jti, so two calls never return the same string
// and revoking one session cannot revoke another.
func (codec *TokenCodec) Issue(subjectID, access string) (string, error) {
	currentTime := codec.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.New(),
			Subject:  subjectID,
			IssuedAt: jwt.NewNumericDate(currentTime),
		},
		Access: access,
	}
	if codec.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(currentTime.Add(codec.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature and validity of a token string.
//
// Every failure (bad signature, unexpected algorithm, garbage input, expiry,
// missing claims) is reported as [ErrInvalidToken] wrapping the parser error.
func (codec *TokenCodec) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return codec.secret, nil
	}, jwt.WithTimeFunc(codec.now))

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" || claims.Access == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
