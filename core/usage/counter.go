// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package usage

import "sync/atomic"

// Counter tracks a current value together with its high-water mark.
// All methods are lock-free and safe for concurrent use; Max never decreases.
type Counter struct {
	current atomic.Int64
	max     atomic.Int64
}

// Add increases the current value by delta and raises the maximum if needed.
func (c *Counter) Add(delta int64) {
	value := c.current.Add(delta)
	for {
		observed := c.max.Load()
		if observed >= value || c.max.CompareAndSwap(observed, value) {
			return
		}
	}
}

// Subtract decreases the current value. The maximum is left alone.
func (c *Counter) Subtract(delta int64) {
	c.current.Add(-delta)
}

// Change applies the difference between two values, as after a resize.
func (c *Counter) Change(oldValue, newValue int64) {
	if newValue > oldValue {
		c.Add(newValue - oldValue)
	} else if newValue < oldValue {
		c.Subtract(oldValue - newValue)
	}
}

func (c *Counter) Current() int64 { return c.current.Load() }

func (c *Counter) Max() int64 { return c.max.Load() }

// MaxGauge keeps the largest single value ever observed.
type MaxGauge struct {
	value atomic.Int64
}

// Update raises the gauge to v if v is larger.
func (g *MaxGauge) Update(v int64) {
	for {
		observed := g.value.Load()
		if observed >= v || g.value.CompareAndSwap(observed, v) {
			return
		}
	}
}

func (g *MaxGauge) Value() int64 { return g.value.Load() }
