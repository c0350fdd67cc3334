// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build unix && !linux

package pages

func remapPages(data []byte, newSize int) ([]byte, error) {
	resized, err := mapPages(newSize)
	if err != nil {
		return nil, err
	}
	copy(resized, data)
	unmapPages(data)
	return resized, nil
}
