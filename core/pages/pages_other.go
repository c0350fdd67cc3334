// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !unix && !windows

package pages

import (
	"os"
	"sync"
	"unsafe"
)

// Without virtual memory primitives pages come from the Go heap. Each block
// is over-allocated by one page and sliced at the first aligned address; the
// block is kept reachable in live until release.
var live sync.Map

func pageSize() int { return os.Getpagesize() }

func mapPages(size int) ([]byte, error) {
	g := Granularity()
	block := make([]byte, size+g)
	off := 0
	if rem := int(uintptr(unsafe.Pointer(&block[0])) % uintptr(g)); rem != 0 {
		off = g - rem
	}
	data := block[off : off+size : off+size]
	live.Store(unsafe.SliceData(data), block)
	return data, nil
}

func remapPages(data []byte, newSize int) ([]byte, error) {
	resized, err := mapPages(newSize)
	if err != nil {
		return nil, err
	}
	copy(resized, data)
	unmapPages(data)
	return resized, nil
}

func unmapPages(data []byte) {
	if _, ok := live.LoadAndDelete(unsafe.SliceData(data)); !ok {
		abort("release of unknown page region of %d bytes", len(data))
	}
}
