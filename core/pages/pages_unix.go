// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build unix

package pages

import (
	"golang.org/x/sys/unix"

	"github.com/cocowh/pagebuf/pkg/errors"
)

func pageSize() int { return unix.Getpagesize() }

func mapPages(size int) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, mapError("mmap", size, err)
	}
	return data, nil
}

func unmapPages(data []byte) {
	if err := unix.Munmap(data); err != nil {
		abort("munmap of %d bytes failed: %v", len(data), err)
	}
}

// mapError turns memory exhaustion into an OutOfMemory error and aborts on
// anything else.
func mapError(op string, size int, err error) error {
	if errors.Is(err, unix.ENOMEM) || errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.ENOSPC) {
		return errors.OutOfMemory(size, err).WithContext("op", op)
	}
	abort("%s of %d bytes failed: %v", op, size, err)
	return nil
}
