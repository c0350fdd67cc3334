// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package usage keeps process-wide, lock-free accounting of buffer memory.
//
// A Tracker records three independent counters:
//   - Allocated: bytes physically obtained from the heap or the OS, including
//     alignment padding of the heap tier
//   - Capacity: logical capacity held by live buffers
//   - Size: logical size held by live buffers
//
// Every counter must return to zero once all buffers are released; a nonzero
// current value at teardown is reported as a leak.
package usage

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

type Tracker struct {
	id string

	Allocated Counter
	Capacity  Counter
	Size      Counter

	// Diagnostics, only maintained when DebugTracking is set.
	Allocations       Counter
	MaxAllocation     MaxGauge
	MaxCapacity       MaxGauge
	MaxSize           MaxGauge
	SystemAllocations atomic.Int64
	TotalAllocations  atomic.Int64
	Reallocations     atomic.Int64
}

// NewTracker returns a tracker with all counters at zero.
func NewTracker() *Tracker {
	return &Tracker{id: uuid.NewString()}
}

// ID identifies the tracker in reports.
func (t *Tracker) ID() string { return t.id }

// TrackSystemAllocation records size bytes obtained from the heap or the OS.
func (t *Tracker) TrackSystemAllocation(size int) {
	t.Allocated.Add(int64(size))
	if DebugTracking {
		t.MaxAllocation.Update(int64(size))
		t.SystemAllocations.Add(1)
	}
}

func (t *Tracker) TrackSystemReallocation(oldSize, newSize int) {
	t.Allocated.Change(int64(oldSize), int64(newSize))
	if DebugTracking {
		t.MaxAllocation.Update(int64(newSize))
	}
}

func (t *Tracker) TrackSystemDeallocation(size int) {
	t.Allocated.Subtract(int64(size))
}

// TrackCapacityAllocation records a new block of the given logical capacity.
func (t *Tracker) TrackCapacityAllocation(capacity int) {
	t.Capacity.Add(int64(capacity))
	if DebugTracking {
		t.MaxCapacity.Update(int64(capacity))
		t.Allocations.Add(1)
		t.TotalAllocations.Add(1)
	}
}

func (t *Tracker) TrackCapacityChange(oldCapacity, newCapacity int) {
	t.Capacity.Change(int64(oldCapacity), int64(newCapacity))
	if DebugTracking {
		t.MaxCapacity.Update(int64(newCapacity))
	}
}

func (t *Tracker) TrackCapacityDeallocation(capacity int) {
	t.Capacity.Subtract(int64(capacity))
	if DebugTracking {
		t.Allocations.Subtract(1)
	}
}

// TrackReallocation counts a reallocation. Shrinks are counted too.
func (t *Tracker) TrackReallocation() {
	if DebugTracking {
		t.Reallocations.Add(1)
	}
}

func (t *Tracker) TrackSizeAllocation(size int) {
	t.Size.Add(int64(size))
	if DebugTracking {
		t.MaxSize.Update(int64(size))
	}
}

func (t *Tracker) TrackSizeChange(oldSize, newSize int) {
	t.Size.Change(int64(oldSize), int64(newSize))
	if DebugTracking {
		t.MaxSize.Update(int64(newSize))
	}
}

func (t *Tracker) TrackSizeDeallocation(size int) {
	t.Size.Subtract(int64(size))
}

var (
	defaultMu      sync.RWMutex
	defaultTracker = NewTracker()
)

// Default returns the process-wide tracker.
func Default() *Tracker {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultTracker
}

// SetDefault installs t as the process-wide tracker and returns the previous
// one. Allocators created before the call keep the tracker they were built with.
func SetDefault(t *Tracker) *Tracker {
	if t == nil {
		t = NewTracker()
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultTracker
	defaultTracker = t
	return prev
}
