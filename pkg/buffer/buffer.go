// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package buffer provides Buffer, an owned, growable byte region whose
// capacity is always a whole number of pages, and BytesBuffer, a binary
// codec on top of it.
package buffer

import (
	"bytes"

	"github.com/cocowh/pagebuf/core/alloc"
	"github.com/cocowh/pagebuf/pkg/errors"
)

// noCopy makes go vet's copylocks check flag Buffers passed by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Buffer owns a region obtained from an alloc.Allocator. Size and capacity
// are independent; capacity is a multiple of the allocator's granularity and
// is zero exactly when no region is held.
//
// A Buffer must be released with Release and must not be copied; use Take or
// MoveFrom to hand it over. It is not safe for concurrent mutation.
// The zero value is an empty Buffer using alloc.Default().
type Buffer struct {
	_ noCopy

	alloc *alloc.Allocator
	data  []byte
	size  int
}

// New returns a Buffer of size bytes from the default allocator. The contents
// are unspecified.
func New(size int) (*Buffer, error) {
	return NewWithAllocator(alloc.Default(), size)
}

// NewWithAllocator is New with an explicit allocator.
func NewWithAllocator(a *alloc.Allocator, size int) (*Buffer, error) {
	b := &Buffer{alloc: a}
	if err := b.validate(size); err != nil {
		return nil, err
	}
	a = b.allocator()
	if size == 0 {
		return b, nil
	}
	data, err := a.Allocate(a.CapacityFor(size))
	if err != nil {
		return nil, err
	}
	b.data = data
	b.size = size
	a.Tracker().TrackSizeAllocation(size)
	return b, nil
}

// FromBytes returns a Buffer holding a copy of p.
func FromBytes(p []byte) (*Buffer, error) {
	b, err := New(len(p))
	if err != nil {
		return nil, err
	}
	copy(b.data, p)
	return b, nil
}

func (b *Buffer) allocator() *alloc.Allocator {
	if b.alloc == nil {
		b.alloc = alloc.Default()
	}
	return b.alloc
}

func (b *Buffer) Size() int { return b.size }

func (b *Buffer) Capacity() int { return len(b.data) }

// Bytes returns the first Size bytes. The slice is valid until the next call
// that may reallocate.
func (b *Buffer) Bytes() []byte { return b.data[:b.size] }

// Data returns the whole region, Capacity bytes long.
func (b *Buffer) Data() []byte { return b.data[:len(b.data):len(b.data)] }

// Granularity is the step capacities are rounded to.
func (b *Buffer) Granularity() int { return b.allocator().Granularity() }

// Resize sets the size to n, preserving the first min(Size, n) bytes. The
// region is only reallocated when n exceeds the capacity; new bytes are not
// zeroed.
func (b *Buffer) Resize(n int) error {
	return b.resize(n, true)
}

// Reset sets the size to n without preserving the contents.
func (b *Buffer) Reset(n int) error {
	return b.resize(n, false)
}

func (b *Buffer) resize(n int, preserve bool) error {
	if err := b.validate(n); err != nil {
		return err
	}
	if n > len(b.data) {
		keep := 0
		if preserve {
			keep = b.size
		}
		if err := b.realloc(b.allocator().CapacityFor(n), keep); err != nil {
			return err
		}
	}
	b.setSize(n)
	return nil
}

// Reserve makes the capacity at least n rounded to the granularity. The size
// is unchanged.
func (b *Buffer) Reserve(n int) error {
	if err := b.validate(n); err != nil {
		return err
	}
	if n <= len(b.data) {
		return nil
	}
	return b.realloc(b.allocator().CapacityFor(n), b.size)
}

// ShrinkToFit drops the capacity to the size rounded to the granularity,
// releasing the region entirely when the size is zero.
func (b *Buffer) ShrinkToFit() error {
	a := b.allocator()
	capacity := a.CapacityFor(b.size)
	if capacity >= len(b.data) {
		return nil
	}
	if capacity == 0 {
		a.Deallocate(b.data)
		b.data = nil
		return nil
	}
	return b.realloc(capacity, b.size)
}

func (b *Buffer) realloc(capacity, keep int) error {
	a := b.allocator()
	var (
		data []byte
		err  error
	)
	if b.data == nil {
		data, err = a.Allocate(capacity)
	} else {
		data, err = a.Reallocate(b.data, capacity, keep)
	}
	if err != nil {
		return err
	}
	b.data = data
	return nil
}

func (b *Buffer) setSize(n int) {
	if n != b.size {
		b.allocator().Tracker().TrackSizeChange(b.size, n)
		b.size = n
	}
}

func (b *Buffer) validate(n int) error {
	if n < 0 {
		return errors.InvalidSize(n)
	}
	if n > b.allocator().MaxCapacity() {
		return errors.Newf(errors.ErrCodeBufferOverflow, errors.CategoryBuffer, errors.LevelError,
			"buffer size %d exceeds the addressable maximum", n)
	}
	return nil
}

// Take moves the region into a new Buffer and leaves b empty.
func (b *Buffer) Take() *Buffer {
	moved := &Buffer{alloc: b.alloc, data: b.data, size: b.size}
	b.data, b.size = nil, 0
	return moved
}

// MoveFrom releases b's region and takes over src's, leaving src empty.
func (b *Buffer) MoveFrom(src *Buffer) {
	if src == b {
		return
	}
	b.Release()
	b.alloc, b.data, b.size = src.alloc, src.data, src.size
	src.data, src.size = nil, 0
}

// Release returns the region to the allocator. The Buffer is empty afterwards
// and may be reused; releasing an empty Buffer does nothing.
func (b *Buffer) Release() {
	if b.data == nil {
		return
	}
	a := b.allocator()
	if b.size != 0 {
		a.Tracker().TrackSizeDeallocation(b.size)
	}
	a.Deallocate(b.data)
	b.data, b.size = nil, 0
}

// Equal reports whether both buffers hold the same bytes. Capacity is not
// compared; a nil Buffer equals an empty one.
func (b *Buffer) Equal(other *Buffer) bool {
	var x, y []byte
	if b != nil {
		x = b.Bytes()
	}
	if other != nil {
		y = other.Bytes()
	}
	return bytes.Equal(x, y)
}
