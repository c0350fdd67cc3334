// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package alloc

import "unsafe"

const headerSize = int(unsafe.Sizeof(uintptr(0)))

// allocateHeap returns capacity bytes carved from a Go heap block of
// capacity+g bytes. The data starts at the first g-aligned address at least
// headerSize bytes into the block; the header right before it records the
// block's base address.
//
// The GC never moves heap objects, and the returned slice points inside the
// block, which keeps the whole block alive.
func (a *Allocator) allocateHeap(capacity int) []byte {
	g := a.granularity
	block := make([]byte, capacity+g)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(block)))
	aligned := (base + uintptr(headerSize) + uintptr(g-1)) &^ uintptr(g-1)
	off := int(aligned - base)
	// Go heap blocks this large are word aligned, so off never exceeds g.
	if off > g {
		abort("heap block at %#x leaves no room for a %d byte header", base, headerSize)
	}
	*(*uintptr)(unsafe.Pointer(&block[off-headerSize])) = base
	return block[off : off+capacity : off+capacity]
}

// heapBase reads back the header written by allocateHeap and checks it.
func (a *Allocator) heapBase(data []byte) uintptr {
	p := unsafe.Pointer(unsafe.SliceData(data))
	addr := uintptr(p)
	if addr%uintptr(a.granularity) != 0 {
		abort("heap region at %#x is not page aligned", addr)
	}
	base := *(*uintptr)(unsafe.Add(p, -headerSize))
	if base > addr-uintptr(headerSize) || addr-base > uintptr(a.granularity) {
		abort("heap region at %#x has a corrupt header (base %#x)", addr, base)
	}
	return base
}

// heapOverhead is how many bytes beyond capacity the heap tier obtains.
func (a *Allocator) heapOverhead() int {
	return a.granularity
}
