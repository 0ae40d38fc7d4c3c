// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor applied to every stored password.
const DefaultHashCost = 10

// Hasher derives and verifies salted bcrypt password digests.
//
// The zero value is not usable; construct it with [NewHasher].
type Hasher struct {
	cost int
}

// NewHasher creates a [Hasher] with the given bcrypt cost.
// Costs outside bcrypt's accepted range fall back to [DefaultHashCost].
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &Hasher{cost: cost}
}

// Hash hashes a plain-text password using the bcrypt algorithm.
//
// Every call draws a fresh random salt; the returned digest embeds the salt
// and the cost factor.
func (hasher *Hasher) Hash(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify compares a plain-text password with its hashed version.
// A malformed digest is reported as a mismatch.
func (hasher *Hasher) Verify(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
