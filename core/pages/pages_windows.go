// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build windows

package pages

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/cocowh/pagebuf/pkg/errors"
)

func pageSize() int { return os.Getpagesize() }

func mapPages(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil || addr == 0 {
		if errors.Is(err, windows.ERROR_NOT_ENOUGH_MEMORY) ||
			errors.Is(err, windows.ERROR_OUTOFMEMORY) ||
			errors.Is(err, windows.ERROR_COMMITMENT_LIMIT) {
			return nil, errors.OutOfMemory(size, err).WithContext("op", "VirtualAlloc")
		}
		abort("VirtualAlloc of %d bytes failed: %v", size, err)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
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
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(data)))
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		abort("VirtualFree of %d bytes failed: %v", len(data), err)
	}
}
