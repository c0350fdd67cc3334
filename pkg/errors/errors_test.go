// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := OutOfMemory(8192, io.ErrUnexpectedEOF)
	assert.True(t, Is(err, ErrOutOfMemory))
	assert.True(t, Is(err, io.ErrUnexpectedEOF), "cause stays reachable")
	assert.False(t, Is(err, ErrInvalidSize))

	wrapped := fmt.Errorf("resize: %w", err)
	assert.True(t, Is(wrapped, ErrOutOfMemory))

	var be *BufError
	assert.True(t, As(wrapped, &be))
	assert.Equal(t, 8192, be.Context["size"])
}

func TestErrorString(t *testing.T) {
	err := InvalidSize(-1)
	assert.Equal(t, "[validation:4005] invalid buffer size -1", err.Error())

	err2 := Wrap(io.EOF, ErrCodeConfigParseError, CategoryConfig, LevelError, "bad yaml")
	assert.Equal(t, "[config:5003] bad yaml: EOF", err2.Error())
}

func TestInvariantIsFatal(t *testing.T) {
	assert.True(t, IsFatal(Invariant("page size %d is not a power of two", 3000)))
	assert.False(t, IsFatal(ErrOutOfMemory))
	assert.False(t, IsFatal(io.EOF))
}

func TestCategoryByCode(t *testing.T) {
	assert.Equal(t, CategorySystem, GetErrorCategory(ErrCodeSystemOutOfMemory))
	assert.Equal(t, CategoryBuffer, GetErrorCategory(ErrCodeBufferOverflow))
	assert.Equal(t, CategoryConfig, GetErrorCategory(ErrCodeConfigNotFound))
	assert.Equal(t, "Unknown error", GetErrorMessage(ErrorCode(42)))
}
