// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package alloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocowh/pagebuf/core/pages"
	"github.com/cocowh/pagebuf/core/usage"
	"github.com/cocowh/pagebuf/pkg/errors"
)

// fakeBackend wraps the system backend and can refuse requests.
type fakeBackend struct {
	pages.Backend
	failAllocate bool
	failResize   bool
	allocations  int
	resizes      int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{Backend: pages.System()}
}

func (f *fakeBackend) Allocate(size int) ([]byte, error) {
	if f.failAllocate {
		return nil, errors.OutOfMemory(size, nil)
	}
	f.allocations++
	return f.Backend.Allocate(size)
}

func (f *fakeBackend) Resize(data []byte, newSize int) ([]byte, error) {
	if f.failResize {
		return nil, errors.OutOfMemory(newSize, nil)
	}
	f.resizes++
	return f.Backend.Resize(data, newSize)
}

func fill(data []byte, seed byte) {
	for i := range data {
		data[i] = seed + byte(i*7)
	}
}

func requirePrefix(t *testing.T, data []byte, n int, seed byte) {
	t.Helper()
	for i := 0; i < n; i++ {
		if data[i] != seed+byte(i*7) {
			t.Fatalf("byte %d: got %d, want %d", i, data[i], seed+byte(i*7))
		}
	}
}

func assertInvariantPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.IsFatal(err))
	}()
	f()
}

func TestRoundUp(t *testing.T) {
	g := Granularity()
	assert.Zero(t, RoundUp(0, g))
	assert.Zero(t, RoundUp(-3, g))
	assert.Equal(t, g, RoundUp(1, g))
	assert.Equal(t, g, RoundUp(g, g))
	assert.Equal(t, 2*g, RoundUp(g+1, g))

	for _, n := range []int{1, 7, g - 1, g, g + 1, 3*g + 5, 1 << 20, 1<<20 + 1, MaxCapacity(g)} {
		r := RoundUp(n, g)
		assert.Zero(t, r%g, "n=%d", n)
		assert.GreaterOrEqual(t, r, n)
		assert.Less(t, r-n, g)
	}
	assert.Equal(t, CapacityFor(4097), RoundUp(4097, g))
}

func TestHeapTierIsPageAligned(t *testing.T) {
	tr := usage.NewTracker()
	a := New(WithTracker(tr))
	g := a.Granularity()

	for _, capacity := range []int{g, 2 * g, 7 * g} {
		data, err := a.Allocate(capacity)
		require.NoError(t, err)
		require.Len(t, data, capacity)
		assert.Equal(t, capacity, cap(data))
		assert.Zero(t, uintptr(unsafe.Pointer(&data[0]))%uintptr(g))

		fill(data, 1)
		assert.EqualValues(t, capacity+g, tr.Allocated.Current())
		assert.EqualValues(t, capacity, tr.Capacity.Current())

		a.Deallocate(data)
		assert.Zero(t, tr.Allocated.Current())
		assert.Zero(t, tr.Capacity.Current())
	}
}

func TestPageTierAboveThreshold(t *testing.T) {
	tr := usage.NewTracker()
	fb := newFakeBackend()
	g := fb.Granularity()
	a := New(WithTracker(tr), WithPageBackend(fb), WithSmallThreshold(2*g))

	small, err := a.Allocate(g)
	require.NoError(t, err)
	assert.Zero(t, fb.allocations)

	large, err := a.Allocate(2 * g)
	require.NoError(t, err)
	assert.Equal(t, 1, fb.allocations)
	assert.EqualValues(t, g+g+2*g, tr.Allocated.Current())

	a.Deallocate(small)
	a.Deallocate(large)
	assert.Zero(t, tr.Allocated.Current())
	assert.Zero(t, tr.Capacity.Current())
}

func TestReallocateAcrossTiersKeepsPrefix(t *testing.T) {
	tr := usage.NewTracker()
	fb := newFakeBackend()
	g := fb.Granularity()
	a := New(WithTracker(tr), WithPageBackend(fb), WithSmallThreshold(2*g))

	data, err := a.Allocate(g)
	require.NoError(t, err)
	fill(data, 3)

	// small -> small
	data, err = a.Reallocate(data, 1*g, g)
	require.NoError(t, err)
	requirePrefix(t, data, g, 3)

	// small -> large
	data, err = a.Reallocate(data, 4*g, g)
	require.NoError(t, err)
	requirePrefix(t, data, g, 3)
	assert.Equal(t, 1, fb.allocations)
	assert.EqualValues(t, 4*g, tr.Allocated.Current())
	fill(data, 5)

	// large -> large goes through Resize
	data, err = a.Reallocate(data, 8*g, 4*g)
	require.NoError(t, err)
	requirePrefix(t, data, 4*g, 5)
	assert.Equal(t, 1, fb.resizes)
	assert.EqualValues(t, 8*g, tr.Capacity.Current())

	// large -> small
	data, err = a.Reallocate(data, g, g/2)
	require.NoError(t, err)
	requirePrefix(t, data, g/2, 5)
	assert.EqualValues(t, g, tr.Capacity.Current())
	assert.EqualValues(t, 2*g, tr.Allocated.Current())

	a.Deallocate(data)
	s := tr.Snapshot()
	assert.False(t, s.Leaked())
	assert.EqualValues(t, 8*g, s.MaxCapacity)
	if usage.DebugTracking {
		assert.EqualValues(t, 3, s.TotalReallocations)
	}
}

func TestReallocateFailureLeavesOldRegion(t *testing.T) {
	tr := usage.NewTracker()
	fb := newFakeBackend()
	g := fb.Granularity()
	a := New(WithTracker(tr), WithPageBackend(fb), WithSmallThreshold(2*g))

	data, err := a.Allocate(g)
	require.NoError(t, err)
	fill(data, 9)
	before := tr.Snapshot()

	fb.failAllocate = true
	_, err = a.Reallocate(data, 4*g, g)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrOutOfMemory))
	assert.Equal(t, before, tr.Snapshot())
	requirePrefix(t, data, g, 9)

	_, err = a.Allocate(2 * g)
	assert.True(t, errors.Is(err, errors.ErrOutOfMemory))

	fb.failAllocate = false
	large, err := a.Reallocate(data, 4*g, g)
	require.NoError(t, err)

	fb.failResize = true
	_, err = a.Reallocate(large, 8*g, 4*g)
	assert.True(t, errors.Is(err, errors.ErrOutOfMemory))
	requirePrefix(t, large, g, 9)

	a.Deallocate(large)
	assert.False(t, tr.Snapshot().Leaked())
}

func TestInvalidCapacityPanics(t *testing.T) {
	a := New(WithTracker(usage.NewTracker()))
	g := a.Granularity()

	assertInvariantPanic(t, func() { _, _ = a.Allocate(0) })
	assertInvariantPanic(t, func() { _, _ = a.Allocate(g + 1) })
	assertInvariantPanic(t, func() { a.Deallocate(nil) })

	data, err := a.Allocate(g)
	require.NoError(t, err)
	assertInvariantPanic(t, func() { _, _ = a.Reallocate(data, 2*g, g+1) })
	a.Deallocate(data)
}

func TestCorruptHeaderPanics(t *testing.T) {
	a := New(WithTracker(usage.NewTracker()))
	data, err := a.Allocate(a.Granularity())
	require.NoError(t, err)

	header := (*uintptr)(unsafe.Add(unsafe.Pointer(&data[0]), -headerSize))
	*header = 0
	assertInvariantPanic(t, func() { a.Deallocate(data) })
}

func TestDefaultAllocator(t *testing.T) {
	a := Default()
	require.Same(t, a, Default())
	assert.Equal(t, DefaultSmallThreshold, a.SmallThreshold())
	assert.Equal(t, Granularity(), a.Granularity())
	assert.NotNil(t, a.Tracker())
}
