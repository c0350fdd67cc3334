// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package alloc implements the two-tier allocator behind buffers.
//
// Capacities below the small threshold come from the Go heap, aligned to the
// page size. Larger capacities are mapped directly from the OS through a
// pages.Backend, so growing them can remap pages instead of copying.
// Every operation is reported to a usage.Tracker.
package alloc

import (
	"sync"

	"github.com/cocowh/pagebuf/core/pages"
	"github.com/cocowh/pagebuf/core/usage"
	"github.com/cocowh/pagebuf/pkg/errors"
	"github.com/cocowh/pagebuf/pkg/logger"
)

// DefaultSmallThreshold divides the heap tier from the page tier.
const DefaultSmallThreshold = 512 << 10

type Allocator struct {
	tracker     *usage.Tracker
	backend     pages.Backend
	threshold   int
	granularity int
}

type Option func(*Allocator)

// WithTracker reports to t instead of usage.Default().
func WithTracker(t *usage.Tracker) Option {
	return func(a *Allocator) {
		a.tracker = t
	}
}

// WithSmallThreshold sets the capacity from which the page tier is used.
// Zero sends every allocation to the page tier.
func WithSmallThreshold(n int) Option {
	return func(a *Allocator) {
		if n < 0 {
			n = 0
		}
		a.threshold = n
	}
}

func WithPageBackend(b pages.Backend) Option {
	return func(a *Allocator) {
		a.backend = b
	}
}

// New builds an allocator. Without options it uses the OS page backend, the
// default tracker and DefaultSmallThreshold.
func New(opts ...Option) *Allocator {
	a := &Allocator{threshold: DefaultSmallThreshold}
	for _, opt := range opts {
		opt(a)
	}
	if a.tracker == nil {
		a.tracker = usage.Default()
	}
	if a.backend == nil {
		a.backend = pages.System()
	}
	a.granularity = a.backend.Granularity()
	if a.granularity <= 0 || a.granularity&(a.granularity-1) != 0 {
		abort("granularity %d is not a power of two", a.granularity)
	}
	return a
}

var (
	defaultOnce      sync.Once
	defaultAllocator *Allocator
)

// Default returns the process-wide allocator. It is built on first use and
// keeps the tracker that was the default at that moment.
func Default() *Allocator {
	defaultOnce.Do(func() {
		defaultAllocator = New()
	})
	return defaultAllocator
}

func (a *Allocator) Tracker() *usage.Tracker { return a.tracker }

func (a *Allocator) Granularity() int { return a.granularity }

func (a *Allocator) SmallThreshold() int { return a.threshold }

// CapacityFor rounds n to this allocator's granularity.
func (a *Allocator) CapacityFor(n int) int {
	return RoundUp(n, a.granularity)
}

// MaxCapacity is the largest size CapacityFor accepts.
func (a *Allocator) MaxCapacity() int {
	return MaxCapacity(a.granularity)
}

func (a *Allocator) isLarge(capacity int) bool {
	return capacity >= a.threshold
}

// Allocate returns a region of exactly capacity bytes, which must be a
// positive multiple of the granularity. The contents are unspecified.
func (a *Allocator) Allocate(capacity int) ([]byte, error) {
	a.checkCapacity(capacity)
	data, system, err := a.obtain(capacity)
	if err != nil {
		return nil, err
	}
	a.tracker.TrackSystemAllocation(system)
	a.tracker.TrackCapacityAllocation(capacity)
	return data, nil
}

// Deallocate releases a region returned by Allocate or Reallocate.
func (a *Allocator) Deallocate(data []byte) {
	capacity := cap(data)
	a.checkCapacity(capacity)
	system := a.giveBack(data[:capacity])
	a.tracker.TrackSystemDeallocation(system)
	a.tracker.TrackCapacityDeallocation(capacity)
}

// Reallocate moves data into a region of newCapacity bytes, preserving the
// first copyBytes bytes. Page regions are resized by the backend; everything
// else is copied into a fresh region. On error data is left untouched.
func (a *Allocator) Reallocate(data []byte, newCapacity, copyBytes int) ([]byte, error) {
	oldCapacity := cap(data)
	a.checkCapacity(oldCapacity)
	a.checkCapacity(newCapacity)
	if copyBytes < 0 || copyBytes > min(oldCapacity, newCapacity) {
		abort("cannot preserve %d bytes moving from %d to %d", copyBytes, oldCapacity, newCapacity)
	}
	data = data[:oldCapacity]
	if oldCapacity == newCapacity {
		return data, nil
	}

	if a.isLarge(oldCapacity) && a.isLarge(newCapacity) {
		resized, err := a.backend.Resize(data, newCapacity)
		if err != nil {
			return nil, err
		}
		a.tracker.TrackSystemReallocation(oldCapacity, newCapacity)
		a.tracker.TrackCapacityChange(oldCapacity, newCapacity)
		a.tracker.TrackReallocation()
		return resized, nil
	}

	fresh, system, err := a.obtain(newCapacity)
	if err != nil {
		return nil, err
	}
	a.tracker.TrackSystemAllocation(system)
	copy(fresh, data[:copyBytes])
	a.tracker.TrackSystemDeallocation(a.giveBack(data))
	a.tracker.TrackCapacityChange(oldCapacity, newCapacity)
	a.tracker.TrackReallocation()
	return fresh, nil
}

// obtain gets a region from the tier matching capacity and returns how many
// bytes that took from the heap or the OS.
func (a *Allocator) obtain(capacity int) ([]byte, int, error) {
	if a.isLarge(capacity) {
		data, err := a.backend.Allocate(capacity)
		if err != nil {
			logger.Warnf("alloc: page tier refused %d bytes: %v", capacity, err)
			return nil, 0, err
		}
		return data, capacity, nil
	}
	return a.allocateHeap(capacity), capacity + a.heapOverhead(), nil
}

// giveBack returns a region to its tier and reports how many bytes that freed.
func (a *Allocator) giveBack(data []byte) int {
	capacity := len(data)
	if a.isLarge(capacity) {
		a.backend.Release(data)
		return capacity
	}
	a.heapBase(data)
	return capacity + a.heapOverhead()
}

func (a *Allocator) checkCapacity(capacity int) {
	if capacity <= 0 || capacity&(a.granularity-1) != 0 {
		abort("capacity %d is not a positive multiple of %d", capacity, a.granularity)
	}
}

func abort(format string, args ...any) {
	err := errors.Invariant(format, args...)
	logger.Errorf("alloc: %s", err.Message)
	panic(err)
}
