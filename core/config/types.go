// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"

	"github.com/cocowh/pagebuf/core/alloc"
	"github.com/cocowh/pagebuf/core/iface"
	"github.com/cocowh/pagebuf/pkg/errors"
	"github.com/cocowh/pagebuf/pkg/logger"
)

const (
	KeyMemorySmallThreshold = "memory.small_threshold"
	KeyMemoryReportOnExit   = "memory.report_on_exit"

	KeyLoggerLevel           = "logger.level"
	KeyLoggerFormat          = "logger.format"
	KeyLoggerLogDir          = "logger.log_dir"
	KeyLoggerBaseName        = "logger.base_name"
	KeyLoggerMaxSizeMB       = "logger.max_size_mb"
	KeyLoggerMaxAgeDays      = "logger.max_age_days"
	KeyLoggerMaxBackups      = "logger.max_backups"
	KeyLoggerCompress        = "logger.compress"
	KeyLoggerEnableStdout    = "logger.enable_stdout"
	KeyLoggerEnableWarnFile  = "logger.enable_warn_file"
	KeyLoggerEnableErrorFile = "logger.enable_error_file"
)

// EnvPrefix is the prefix of environment variables read by the CLI.
const EnvPrefix = "PAGEBUF_"

// MemoryConfig tunes the allocator.
type MemoryConfig struct {
	// SmallThreshold accepts a byte count or a size such as "512 KiB".
	SmallThreshold int  `json:"small_threshold" yaml:"small_threshold" toml:"small_threshold"`
	ReportOnExit   bool `json:"report_on_exit" yaml:"report_on_exit" toml:"report_on_exit"`
}

type LoggerConfig struct {
	Level           string `json:"level" yaml:"level" toml:"level"`
	Format          string `json:"format" yaml:"format" toml:"format"`
	LogDir          string `json:"log_dir" yaml:"log_dir" toml:"log_dir"`
	BaseName        string `json:"base_name" yaml:"base_name" toml:"base_name"`
	MaxSizeMB       int    `json:"max_size_mb" yaml:"max_size_mb" toml:"max_size_mb"`
	MaxAgeDays      int    `json:"max_age_days" yaml:"max_age_days" toml:"max_age_days"`
	MaxBackups      int    `json:"max_backups" yaml:"max_backups" toml:"max_backups"`
	Compress        bool   `json:"compress" yaml:"compress" toml:"compress"`
	EnableStdout    bool   `json:"enable_stdout" yaml:"enable_stdout" toml:"enable_stdout"`
	EnableWarnFile  bool   `json:"enable_warn_file" yaml:"enable_warn_file" toml:"enable_warn_file"`
	EnableErrorFile bool   `json:"enable_error_file" yaml:"enable_error_file" toml:"enable_error_file"`
}

// Settings is the typed view of a config.
type Settings struct {
	Memory MemoryConfig `json:"memory" yaml:"memory" toml:"memory"`
	Logger LoggerConfig `json:"logger" yaml:"logger" toml:"logger"`
}

// Defaults returns the default value of every known key.
func Defaults() map[string]any {
	return map[string]any{
		KeyMemorySmallThreshold:  alloc.DefaultSmallThreshold,
		KeyMemoryReportOnExit:    true,
		KeyLoggerLevel:           "info",
		KeyLoggerFormat:          "console",
		KeyLoggerLogDir:          "",
		KeyLoggerBaseName:        "pagebuf",
		KeyLoggerMaxSizeMB:       100,
		KeyLoggerMaxAgeDays:      7,
		KeyLoggerMaxBackups:      3,
		KeyLoggerCompress:        false,
		KeyLoggerEnableStdout:    true,
		KeyLoggerEnableWarnFile:  false,
		KeyLoggerEnableErrorFile: true,
	}
}

// ApplyDefaults sets every known key that is still missing.
func ApplyDefaults(c iface.Config) {
	for k, v := range Defaults() {
		if !c.Has(k) {
			c.Set(k, v)
		}
	}
}

// Decode reads the typed settings from c. Missing keys keep their defaults;
// malformed values are reported together.
func Decode(c iface.Config) (*Settings, error) {
	var err error
	s := &Settings{}

	threshold, thresholdErr := byteSize(c, KeyMemorySmallThreshold, alloc.DefaultSmallThreshold)
	err = multierr.Append(err, thresholdErr)
	s.Memory.SmallThreshold = threshold
	s.Memory.ReportOnExit, err = boolValue(c, KeyMemoryReportOnExit, true, err)

	s.Logger.Level = stringValue(c, KeyLoggerLevel, "info")
	s.Logger.Format = stringValue(c, KeyLoggerFormat, "console")
	s.Logger.LogDir = stringValue(c, KeyLoggerLogDir, "")
	s.Logger.BaseName = stringValue(c, KeyLoggerBaseName, "pagebuf")
	s.Logger.MaxSizeMB, err = intValue(c, KeyLoggerMaxSizeMB, 100, err)
	s.Logger.MaxAgeDays, err = intValue(c, KeyLoggerMaxAgeDays, 7, err)
	s.Logger.MaxBackups, err = intValue(c, KeyLoggerMaxBackups, 3, err)
	s.Logger.Compress, err = boolValue(c, KeyLoggerCompress, false, err)
	s.Logger.EnableStdout, err = boolValue(c, KeyLoggerEnableStdout, true, err)
	s.Logger.EnableWarnFile, err = boolValue(c, KeyLoggerEnableWarnFile, false, err)
	s.Logger.EnableErrorFile, err = boolValue(c, KeyLoggerEnableErrorFile, true, err)

	if err != nil {
		return nil, err
	}
	return s, nil
}

// Options converts the logger settings for logger.InitDefaultLogger.
func (l LoggerConfig) Options() *logger.Config {
	return &logger.Config{
		LogDir:          l.LogDir,
		BaseName:        l.BaseName,
		Format:          l.Format,
		Level:           logger.ParseLevel(l.Level),
		Compress:        l.Compress,
		MaxSizeMB:       l.MaxSizeMB,
		MaxBackups:      l.MaxBackups,
		MaxAgeDays:      l.MaxAgeDays,
		EnableStdout:    l.EnableStdout,
		EnableWarnFile:  l.EnableWarnFile,
		EnableErrorFile: l.EnableErrorFile,
	}
}

// AllocatorOptions converts the memory settings into allocator options.
func (m MemoryConfig) AllocatorOptions() []alloc.Option {
	return []alloc.Option{alloc.WithSmallThreshold(m.SmallThreshold)}
}

func invalid(key string, value any) error {
	return errors.ConfigError(errors.ErrCodeConfigInvalid, fmt.Sprintf("invalid value %v for %s", value, key)).
		WithContext("key", key)
}

func stringValue(c iface.Config, key, def string) string {
	if s, ok := c.GetString(key); ok {
		return s
	}
	return def
}

func intValue(c iface.Config, key string, def int, err error) (int, error) {
	if !c.Has(key) {
		return def, err
	}
	if n, ok := c.GetInt(key); ok {
		return n, err
	}
	v, _ := c.Get(key)
	return def, multierr.Append(err, invalid(key, v))
}

func boolValue(c iface.Config, key string, def bool, err error) (bool, error) {
	if !c.Has(key) {
		return def, err
	}
	if b, ok := c.GetBool(key); ok {
		return b, err
	}
	v, _ := c.Get(key)
	return def, multierr.Append(err, invalid(key, v))
}

// byteSize reads a non-negative byte count, accepting plain integers and
// humanized sizes.
func byteSize(c iface.Config, key string, def int) (int, error) {
	if !c.Has(key) {
		return def, nil
	}
	if n, ok := c.GetInt(key); ok {
		if n < 0 {
			return def, invalid(key, n)
		}
		return n, nil
	}
	s, _ := c.GetString(key)
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil || n > uint64(alloc.MaxCapacity(1)) {
		return def, invalid(key, s)
	}
	return int(n), nil
}
