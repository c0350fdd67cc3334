// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/multierr"
)

var (
	mu      sync.RWMutex
	loggers []Logger
)

type Logger interface {
	Debugf(format string, args ...any)
	Debug(args ...any)
	Infof(format string, args ...any)
	Info(args ...any)
	Warnf(format string, args ...any)
	Warn(args ...any)
	Errorf(format string, args ...any)
	Error(args ...any)
	Fatalf(format string, args ...any)
	Fatal(args ...any)
}

// syncer is implemented by loggers that buffer output.
type syncer interface {
	Sync() error
}

// InitDefaultLogger builds a zap logger from config and installs it as the
// only package-level logger.
func InitDefaultLogger(config *Config) error {
	if config == nil {
		config = &Config{Level: InfoLevel, EnableStdout: true}
	}
	baseLogger, err := NewZapLoggerWithConfig(config)
	if err != nil {
		return err
	}
	SetLogger(baseLogger)
	return nil
}

// SetLogger replaces all package-level loggers.
func SetLogger(logger ...Logger) {
	mu.Lock()
	loggers = append([]Logger(nil), logger...)
	mu.Unlock()
}

// AddLogger appends to the package-level loggers.
func AddLogger(logger ...Logger) {
	if len(logger) == 0 {
		return
	}
	mu.Lock()
	loggers = append(loggers, logger...)
	mu.Unlock()
}

// Sync flushes every installed logger that buffers output.
func Sync() error {
	var err error
	for _, l := range current() {
		if s, ok := l.(syncer); ok {
			// stderr sync fails with EINVAL on most terminals
			if syncErr := s.Sync(); syncErr != nil && !strings.Contains(syncErr.Error(), "invalid argument") {
				err = multierr.Append(err, syncErr)
			}
		}
	}
	return err
}

func current() []Logger {
	mu.RLock()
	defer mu.RUnlock()
	return loggers
}

func fallbackf(level Level, msg string, fields ...any) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", strings.ToUpper(level.String()), fmt.Sprintf(msg, fields...))
}

func fallback(level Level, fields ...any) {
	fmt.Fprintln(os.Stderr, append([]any{"[" + strings.ToUpper(level.String()) + "]"}, fields...)...)
}

func Debugf(msg string, fields ...any) {
	ls := current()
	if len(ls) == 0 {
		return
	}
	for _, logger := range ls {
		logger.Debugf(msg, fields...)
	}
}

func Debug(fields ...any) {
	ls := current()
	if len(ls) == 0 {
		return
	}
	for _, logger := range ls {
		logger.Debug(fields...)
	}
}

func Infof(msg string, fields ...any) {
	ls := current()
	if len(ls) == 0 {
		fallbackf(InfoLevel, msg, fields...)
		return
	}
	for _, logger := range ls {
		logger.Infof(msg, fields...)
	}
}

func Info(fields ...any) {
	ls := current()
	if len(ls) == 0 {
		fallback(InfoLevel, fields...)
		return
	}
	for _, logger := range ls {
		logger.Info(fields...)
	}
}

func Warnf(msg string, fields ...any) {
	ls := current()
	if len(ls) == 0 {
		fallbackf(WarnLevel, msg, fields...)
		return
	}
	for _, logger := range ls {
		logger.Warnf(msg, fields...)
	}
}

func Warn(fields ...any) {
	ls := current()
	if len(ls) == 0 {
		fallback(WarnLevel, fields...)
		return
	}
	for _, logger := range ls {
		logger.Warn(fields...)
	}
}

func Errorf(msg string, fields ...any) {
	ls := current()
	if len(ls) == 0 {
		fallbackf(ErrorLevel, msg, fields...)
		return
	}
	for _, logger := range ls {
		logger.Errorf(msg, fields...)
	}
}

func Error(fields ...any) {
	ls := current()
	if len(ls) == 0 {
		fallback(ErrorLevel, fields...)
		return
	}
	for _, logger := range ls {
		logger.Error(fields...)
	}
}

func Fatalf(msg string, fields ...any) {
	ls := current()
	if len(ls) == 0 {
		fallbackf(FatalLevel, msg, fields...)
	} else {
		for _, logger := range ls {
			logger.Fatalf(msg, fields...)
		}
	}
	os.Exit(1)
}

func Fatal(fields ...any) {
	ls := current()
	if len(ls) == 0 {
		fallback(FatalLevel, fields...)
	} else {
		for _, logger := range ls {
			logger.Fatal(fields...)
		}
	}
	os.Exit(1)
}

type global struct{}

// Global returns a Logger that forwards to the package-level helpers.
func Global() Logger { return global{} }

func (global) Debugf(format string, args ...any) { Debugf(format, args...) }
func (global) Debug(args ...any)                 { Debug(args...) }
func (global) Infof(format string, args ...any)  { Infof(format, args...) }
func (global) Info(args ...any)                  { Info(args...) }
func (global) Warnf(format string, args ...any)  { Warnf(format, args...) }
func (global) Warn(args ...any)                  { Warn(args...) }
func (global) Errorf(format string, args ...any) { Errorf(format, args...) }
func (global) Error(args ...any)                 { Error(args...) }
func (global) Fatalf(format string, args ...any) { Fatalf(format, args...) }
func (global) Fatal(args ...any)                 { Fatal(args...) }
