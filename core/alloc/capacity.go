// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package alloc

import (
	"math"

	"github.com/cocowh/pagebuf/core/pages"
)

// Granularity is the allocation step: the OS page size.
func Granularity() int {
	return pages.Granularity()
}

// RoundUp returns the smallest multiple of g that is >= n, or 0 for n <= 0.
// g must be a power of two and n must not exceed MaxCapacity(g).
func RoundUp(n, g int) int {
	if n <= 0 {
		return 0
	}
	return (n + g - 1) &^ (g - 1)
}

// CapacityFor rounds a requested size to the process granularity.
func CapacityFor(n int) int {
	return RoundUp(n, Granularity())
}

// MaxCapacity is the largest size RoundUp can round without overflow.
func MaxCapacity(g int) int {
	return math.MaxInt &^ (g - 1)
}
