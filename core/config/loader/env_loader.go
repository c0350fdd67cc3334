// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loader

import (
	"os"
	"strings"

	"github.com/cocowh/pagebuf/core/iface"
)

// EnvLoader copies prefixed environment variables into a config.
// PREFIX_A_B becomes a.b unless an explicit mapping names the key.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
}

func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: make(map[string]string),
	}
}

func (l *EnvLoader) AddMapping(envKey, configKey string) *EnvLoader {
	l.mapping[envKey] = configKey
	return l
}

func (l *EnvLoader) Load(c iface.Config) error {
	for _, env := range os.Environ() {
		envKey, envValue, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		if configKey, ok := l.mapping[envKey]; ok {
			c.Set(configKey, envValue)
			continue
		}
		if l.prefix == "" || !strings.HasPrefix(envKey, l.prefix) {
			continue
		}
		configKey := strings.ToLower(strings.TrimPrefix(envKey, l.prefix))
		configKey = strings.ReplaceAll(strings.Trim(configKey, "_"), "_", ".")
		if configKey != "" {
			c.Set(configKey, envValue)
		}
	}
	return nil
}
