// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/cocowh/pagebuf/core/config/loader"
	"github.com/cocowh/pagebuf/core/iface"
	"github.com/cocowh/pagebuf/pkg/logger"
)

type Option func(iface.Config)

func WithDefaultConfig(defaults map[string]any) Option {
	return func(c iface.Config) {
		for k, v := range defaults {
			c.Set(k, v)
		}
	}
}

func WithFileConfig(path string) Option {
	return func(c iface.Config) {
		if path == "" {
			return
		}
		if bc, ok := c.(*BaseConfig); ok {
			bc.SetPath(path)
		}
		loader := loader.NewFileLoader(path)
		err := loader.Load(c)
		if err != nil {
			logger.Errorf("load file config failed, path: %s, err: %v", path, err)
		}
	}
}

// WithEnvConfig loads prefixed variables; known keys are mapped explicitly
// so that PAGEBUF_MEMORY_SMALL_THRESHOLD reaches memory.small_threshold.
func WithEnvConfig(prefix string) Option {
	return func(c iface.Config) {
		loader := loader.NewEnvLoader(prefix)
		for key := range Defaults() {
			loader.AddMapping(prefix+envName(key), key)
		}
		err := loader.Load(c)
		if err != nil {
			logger.Errorf("load env config failed, prefix: %s, err: %v", prefix, err)
		}
	}
}

// WithFlagConfig copies the flags set on the command line, using bindings
// from flag name to config key.
func WithFlagConfig(flags *pflag.FlagSet, bindings map[string]string) Option {
	return func(c iface.Config) {
		loader := loader.NewFlagLoader(flags)
		for name, key := range bindings {
			loader.Bind(name, key)
		}
		err := loader.Load(c)
		if err != nil {
			logger.Errorf("load flag config failed, err: %v", err)
		}
	}
}

func WithConfig(options ...Option) iface.Config {
	config := NewBaseConfig()
	for _, option := range options {
		option(config)
	}
	return config
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
