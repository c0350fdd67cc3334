// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loader

import (
	"os"

	"github.com/cocowh/pagebuf/core/config/parser"
	"github.com/cocowh/pagebuf/core/iface"
	"github.com/cocowh/pagebuf/pkg/errors"
)

// FileLoader reads a JSON, YAML or TOML file into a config.
type FileLoader struct {
	path   string
	parser iface.Parser
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{
		path:   path,
		parser: parser.ForPath(path),
	}
}

func (l *FileLoader) Load(c iface.Config) error {
	b, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return errors.ConfigError(errors.ErrCodeConfigNotFound, "config file not found").
			WithCause(err).WithContext("path", l.path)
	}
	if err != nil {
		return errors.ConfigError(errors.ErrCodeConfigInvalid, "config file unreadable").
			WithCause(err).WithContext("path", l.path)
	}
	configs, err := l.parser.Parse(b)
	if err != nil {
		return errors.ConfigError(errors.ErrCodeConfigParseError, "config file malformed").
			WithCause(err).WithContext("path", l.path)
	}
	for k, v := range configs {
		c.Set(k, v)
	}
	return nil
}
