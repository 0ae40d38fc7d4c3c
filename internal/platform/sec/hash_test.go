// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/todoapi/internal/platform/sec"
)

func TestHasher_HashAndVerify(t *testing.T) {
	hasher := sec.NewHasher(bcrypt.MinCost)

	first, err := hasher.Hash("123456")
	require.NoError(t, err)
	second, err := hasher.Hash("123456")
	require.NoError(t, err)

	assert.NotEqual(t, "123456", first)
	assert.NotEqual(t, first, second, "each hash uses a fresh salt")
	assert.True(t, hasher.Verify("123456", first))
	assert.True(t, hasher.Verify("123456", second))
	assert.False(t, hasher.Verify("1234567", first))
}

func TestHasher_VerifyMalformedDigest(t *testing.T) {
	hasher := sec.NewHasher(bcrypt.MinCost)

	assert.False(t, hasher.Verify("123456", ""))
	assert.False(t, hasher.Verify("123456", "not-a-bcrypt-digest"))
}

func TestNewHasher_CostFallback(t *testing.T) {
	digest, err := sec.NewHasher(0).Hash("123456")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, sec.DefaultHashCost, cost)
	assert.True(t, strings.HasPrefix(digest, "$2a$"))
}
