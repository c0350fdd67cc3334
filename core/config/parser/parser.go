// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package parser

import (
	"path/filepath"
	"strings"

	"github.com/cocowh/pagebuf/core/iface"
)

// ForPath picks a parser by file extension. Unknown extensions are read as JSON.
func ForPath(path string) iface.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYAMLParser()
	case ".toml":
		return NewTOMLParser()
	default:
		return NewJSONParser()
	}
}
