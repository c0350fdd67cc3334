// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package usage

import (
	"github.com/dustin/go-humanize"

	"github.com/cocowh/pagebuf/pkg/logger"
)

// Stats is a point-in-time copy of a tracker. Fields are read one by one, so
// a snapshot taken under concurrent traffic is not atomic as a whole.
type Stats struct {
	Allocated    int64 `json:"allocated"`
	MaxAllocated int64 `json:"max_allocated"`
	Capacity     int64 `json:"capacity"`
	MaxCapacity  int64 `json:"max_capacity"`
	Size         int64 `json:"size"`
	MaxSize      int64 `json:"max_size"`

	// Diagnostics; zero unless DebugTracking is set.
	Wasted                 int64 `json:"wasted"`
	Allocations            int64 `json:"allocations"`
	MaxAllocations         int64 `json:"max_allocations"`
	LargestAllocation      int64 `json:"largest_allocation"`
	LargestCapacity        int64 `json:"largest_capacity"`
	LargestSize            int64 `json:"largest_size"`
	TotalSystemAllocations int64 `json:"total_system_allocations"`
	TotalAllocations       int64 `json:"total_allocations"`
	TotalReallocations     int64 `json:"total_reallocations"`
}

// Leaked reports whether any live memory remains.
func (s Stats) Leaked() bool {
	return s.Allocated != 0 || s.Capacity != 0 || s.Size != 0
}

func (t *Tracker) Snapshot() Stats {
	s := Stats{
		Allocated:    t.Allocated.Current(),
		MaxAllocated: t.Allocated.Max(),
		Capacity:     t.Capacity.Current(),
		MaxCapacity:  t.Capacity.Max(),
		Size:         t.Size.Current(),
		MaxSize:      t.Size.Max(),
	}
	if DebugTracking {
		s.Wasted = s.Allocated - s.Capacity
		s.Allocations = t.Allocations.Current()
		s.MaxAllocations = t.Allocations.Max()
		s.LargestAllocation = t.MaxAllocation.Value()
		s.LargestCapacity = t.MaxCapacity.Value()
		s.LargestSize = t.MaxSize.Value()
		s.TotalSystemAllocations = t.SystemAllocations.Load()
		s.TotalAllocations = t.TotalAllocations.Load()
		s.TotalReallocations = t.Reallocations.Load()
	}
	return s
}

// Report logs the high-water marks and, if memory is still held, a leak.
// It returns true when a leak was reported. A nil logger uses the
// package-level logger.
func (t *Tracker) Report(l logger.Logger) bool {
	if l == nil {
		l = logger.Global()
	}
	s := t.Snapshot()
	if s.MaxAllocated == 0 && s.MaxCapacity == 0 && s.MaxSize == 0 {
		return false
	}

	l.Debugf("buffer memory statistics [tracker=%s]: max_total_allocated=%s max_total_capacity=%s max_total_size=%s",
		t.id, human(s.MaxAllocated), human(s.MaxCapacity), human(s.MaxSize))
	if DebugTracking {
		l.Debugf("buffer memory diagnostics [tracker=%s]: max_allocation=%s max_capacity=%s max_size=%s max_allocations=%d total_system_allocations=%d total_allocations=%d total_reallocations=%d wasted=%s",
			t.id, human(s.LargestAllocation), human(s.LargestCapacity), human(s.LargestSize),
			s.MaxAllocations, s.TotalSystemAllocations, s.TotalAllocations, s.TotalReallocations, human(s.Wasted))
	}

	if !s.Leaked() {
		return false
	}
	if DebugTracking {
		l.Errorf("buffer memory leaked [tracker=%s]: %s capacity, %s size, %s allocated (in %d allocations)",
			t.id, human(s.Capacity), human(s.Size), human(s.Allocated), s.Allocations)
	} else {
		l.Errorf("buffer memory leaked [tracker=%s]: %s capacity, %s size, %s allocated",
			t.id, human(s.Capacity), human(s.Size), human(s.Allocated))
	}
	return true
}

func human(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}
