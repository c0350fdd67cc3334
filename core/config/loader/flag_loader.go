// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loader

import (
	"github.com/spf13/pflag"

	"github.com/cocowh/pagebuf/core/iface"
)

// FlagLoader copies flags the user actually set into a config. Flags are
// bound to config keys; unbound flags use their own name as the key.
type FlagLoader struct {
	flags    *pflag.FlagSet
	bindings map[string]string
}

func NewFlagLoader(flags *pflag.FlagSet) *FlagLoader {
	return &FlagLoader{
		flags:    flags,
		bindings: make(map[string]string),
	}
}

// Bind maps a flag name to a config key.
func (l *FlagLoader) Bind(flagName, configKey string) *FlagLoader {
	l.bindings[flagName] = configKey
	return l
}

func (l *FlagLoader) Load(c iface.Config) error {
	l.flags.Visit(func(f *pflag.Flag) {
		key, ok := l.bindings[f.Name]
		if !ok {
			key = f.Name
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			c.Set(key, sv.GetSlice())
			return
		}
		c.Set(key, f.Value.String())
	})
	return nil
}
