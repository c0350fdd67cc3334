// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pages

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocowh/pagebuf/pkg/errors"
)

func TestGranularityIsPowerOfTwo(t *testing.T) {
	g := Granularity()
	require.Greater(t, g, 0)
	assert.Zero(t, g&(g-1))
	assert.Equal(t, g, System().Granularity())
}

func TestAllocateResizeRelease(t *testing.T) {
	b := System()
	g := b.Granularity()

	data, err := b.Allocate(2 * g)
	require.NoError(t, err)
	require.Len(t, data, 2*g)
	assert.Equal(t, len(data), cap(data))
	assert.Zero(t, uintptr(unsafe.Pointer(&data[0]))%uintptr(g))

	for i := range data {
		data[i] = byte(i)
	}

	grown, err := b.Resize(data, 8*g)
	require.NoError(t, err)
	require.Len(t, grown, 8*g)
	for i := 0; i < 2*g; i++ {
		if grown[i] != byte(i) {
			t.Fatalf("byte %d lost on grow: got %d", i, grown[i])
		}
	}
	grown[8*g-1] = 0xff

	shrunk, err := b.Resize(grown, g)
	require.NoError(t, err)
	require.Len(t, shrunk, g)
	assert.Equal(t, byte(g-1), shrunk[g-1])

	same, err := b.Resize(shrunk, g)
	require.NoError(t, err)
	assert.Equal(t, unsafe.SliceData(shrunk), unsafe.SliceData(same))

	b.Release(same)
}

func TestInvalidRegionsPanic(t *testing.T) {
	b := System()
	g := b.Granularity()

	assertInvariant := func(t *testing.T, f func()) {
		t.Helper()
		defer func() {
			r := recover()
			require.NotNil(t, r)
			err, ok := r.(error)
			require.True(t, ok)
			assert.True(t, errors.IsFatal(err))
		}()
		f()
	}

	t.Run("zero size", func(t *testing.T) {
		assertInvariant(t, func() { _, _ = b.Allocate(0) })
	})
	t.Run("unaligned size", func(t *testing.T) {
		assertInvariant(t, func() { _, _ = b.Allocate(g + 1) })
	})
	t.Run("empty release", func(t *testing.T) {
		assertInvariant(t, func() { b.Release(nil) })
	})
	t.Run("resliced region", func(t *testing.T) {
		data, err := b.Allocate(2 * g)
		require.NoError(t, err)
		defer b.Release(data)
		assertInvariant(t, func() { b.Release(data[:g]) })
	})
}
