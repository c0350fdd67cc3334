// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pages

import "golang.org/x/sys/unix"

// remapPages lets the kernel grow or shrink the mapping, moving it if the
// neighbouring range is taken. No bytes are copied in user space.
func remapPages(data []byte, newSize int) ([]byte, error) {
	resized, err := unix.Mremap(data, newSize, unix.MREMAP_MAYMOVE)
	if err != nil {
		return nil, mapError("mremap", newSize, err)
	}
	return resized, nil
}
