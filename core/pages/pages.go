// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pages hands out whole pages of virtual memory straight from the OS.
//
// Every region is page-aligned and its length is a multiple of Granularity.
// Regions are not part of the Go heap: they must be released explicitly and
// must not hold Go pointers.
package pages

import (
	"sync"
	"unsafe"

	"github.com/cocowh/pagebuf/pkg/errors"
	"github.com/cocowh/pagebuf/pkg/logger"
)

// Backend reserves, resizes and releases page-granular regions.
type Backend interface {
	// Allocate maps size bytes. size must be a positive multiple of
	// Granularity. An OS refusal returns an error matching errors.ErrOutOfMemory.
	Allocate(size int) ([]byte, error)
	// Resize grows or shrinks a region returned by Allocate or Resize. The
	// address may change; on error data is still valid.
	Resize(data []byte, newSize int) ([]byte, error)
	// Release unmaps a region returned by Allocate or Resize.
	Release(data []byte)
	Granularity() int
}

var (
	granularityOnce sync.Once
	granularity     int
)

// Granularity returns the OS page size. It is queried once.
func Granularity() int {
	granularityOnce.Do(func() {
		g := pageSize()
		if g <= 0 || g&(g-1) != 0 {
			abort("page size %d is not a power of two", g)
		}
		granularity = g
	})
	return granularity
}

type system struct{}

// System returns the backend of the running platform.
func System() Backend { return system{} }

func (system) Granularity() int { return Granularity() }

func (system) Allocate(size int) ([]byte, error) {
	checkSize(size)
	return mapPages(size)
}

func (system) Resize(data []byte, newSize int) ([]byte, error) {
	checkRegion(data)
	checkSize(newSize)
	if newSize == len(data) {
		return data, nil
	}
	return remapPages(data, newSize)
}

func (system) Release(data []byte) {
	checkRegion(data)
	unmapPages(data)
}

func checkSize(size int) {
	if size <= 0 || size%Granularity() != 0 {
		abort("page region size %d is not a positive multiple of %d", size, Granularity())
	}
}

func checkRegion(data []byte) {
	if len(data) == 0 {
		abort("page region is empty")
	}
	if len(data) != cap(data) {
		abort("page region was resliced: len %d, cap %d", len(data), cap(data))
	}
	checkSize(len(data))
	if addr := uintptr(unsafe.Pointer(&data[0])); addr%uintptr(Granularity()) != 0 {
		abort("page region at %#x is not page aligned", addr)
	}
}

// abort logs and panics with an invariant error. The allocator's bookkeeping
// cannot be trusted after one of these.
func abort(format string, args ...any) {
	err := errors.Invariant(format, args...)
	logger.Errorf("pages: %s", err.Message)
	panic(err)
}
