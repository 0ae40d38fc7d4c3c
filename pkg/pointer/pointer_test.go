// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/todoapi/pkg/pointer"
)

func TestTo(t *testing.T) {
	completedAt := pointer.To(int64(42))
	assert.Equal(t, int64(42), *completedAt)
	assert.NotSame(t, pointer.To(int64(42)), completedAt)
}

func TestIsTrue(t *testing.T) {
	assert.False(t, pointer.IsTrue(nil))
	assert.False(t, pointer.IsTrue(pointer.To(false)))
	assert.True(t, pointer.IsTrue(pointer.To(true)))
}
