// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode error code
type ErrorCode int

// ErrorLevel error level
type ErrorLevel int

// ErrorCategory error category
type ErrorCategory string

const (
	LevelTrace ErrorLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

const (
	CategorySystem     ErrorCategory = "system"
	CategoryBuffer     ErrorCategory = "buffer"
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
)

// system error code (1000-1999)
const (
	ErrCodeSystemUnknown       ErrorCode = 1000
	ErrCodeSystemOutOfMemory   ErrorCode = 1001
	ErrCodeSystemInternalError ErrorCode = 1003
	ErrCodeSystemInvariant     ErrorCode = 1006
)

// buffer error code (4000-4999)
const (
	ErrCodeBufferUnknown     ErrorCode = 4000
	ErrCodeBufferNotEnough   ErrorCode = 4001
	ErrCodeBufferOverflow    ErrorCode = 4002
	ErrCodeBufferCorrupted   ErrorCode = 4003
	ErrCodeBufferInvalidSize ErrorCode = 4005
)

// config error code (5000-5999)
const (
	ErrCodeConfigUnknown    ErrorCode = 5000
	ErrCodeConfigNotFound   ErrorCode = 5001
	ErrCodeConfigInvalid    ErrorCode = 5002
	ErrCodeConfigParseError ErrorCode = 5003
)

// Sentinels for errors.Is. Matching is by code, so wrapped or contextualised
// copies still match.
var (
	ErrOutOfMemory = New(ErrCodeSystemOutOfMemory, CategorySystem, LevelError, GetErrorMessage(ErrCodeSystemOutOfMemory))
	ErrInvalidSize = New(ErrCodeBufferInvalidSize, CategoryBuffer, LevelError, GetErrorMessage(ErrCodeBufferInvalidSize))
	ErrNotEnough   = New(ErrCodeBufferNotEnough, CategoryBuffer, LevelWarn, GetErrorMessage(ErrCodeBufferNotEnough))
	ErrOverflow    = New(ErrCodeBufferOverflow, CategoryBuffer, LevelWarn, GetErrorMessage(ErrCodeBufferOverflow))
)

type BufError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Category  ErrorCategory          `json:"category"`
	Level     ErrorLevel             `json:"level"`
	Timestamp time.Time              `json:"timestamp"`
	Stack     string                 `json:"stack,omitempty"`
	Cause     error                  `json:"cause,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// Error implements error interface
func (e *BufError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%d] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%d] %s", e.Category, e.Code, e.Message)
}

func (e *BufError) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code.
func (e *BufError) Is(target error) bool {
	var t *BufError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithContext with context
func (e *BufError) WithContext(key string, value interface{}) *BufError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause with cause
func (e *BufError) WithCause(cause error) *BufError {
	e.Cause = cause
	return e
}

// New create error
func New(code ErrorCode, category ErrorCategory, level ErrorLevel, message string) *BufError {
	return &BufError{
		Code:      code,
		Message:   message,
		Category:  category,
		Level:     level,
		Timestamp: time.Now(),
		Stack:     getStack(),
	}
}

// Newf create error with format message
func Newf(code ErrorCode, category ErrorCategory, level ErrorLevel, format string, args ...interface{}) *BufError {
	return New(code, category, level, fmt.Sprintf(format, args...))
}

// Wrap existing error with code, category, level and message
func Wrap(err error, code ErrorCode, category ErrorCategory, level ErrorLevel, message string) *BufError {
	e := New(code, category, level, message)
	e.Cause = err
	return e
}

// Wrapf wrap existing error with code, category, level and format message
func Wrapf(err error, code ErrorCode, category ErrorCategory, level ErrorLevel, format string, args ...interface{}) *BufError {
	return Wrap(err, code, category, level, fmt.Sprintf(format, args...))
}

// OutOfMemory builds an allocation refusal for a request of size bytes.
func OutOfMemory(size int, cause error) *BufError {
	e := Wrap(cause, ErrCodeSystemOutOfMemory, CategorySystem, LevelError, GetErrorMessage(ErrCodeSystemOutOfMemory))
	return e.WithContext("size", size)
}

// InvalidSize builds a validation error for a negative or otherwise unusable size.
func InvalidSize(size int) *BufError {
	return Newf(ErrCodeBufferInvalidSize, CategoryValidation, LevelError, "invalid buffer size %d", size)
}

// Invariant builds the value programmer errors panic with. Callers log before
// panicking; the value is never returned as a regular error.
func Invariant(format string, args ...interface{}) *BufError {
	return Newf(ErrCodeSystemInvariant, CategorySystem, LevelFatal, format, args...)
}

// IsFatal reports whether err is (or wraps) a fatal-level error.
func IsFatal(err error) bool {
	var e *BufError
	if errors.As(err, &e) {
		return e.Level == LevelFatal
	}
	return false
}

// getStack get error stack
func getStack() string {
	var buf [4096]byte
	n := runtime.Stack(buf[:], false)
	stack := string(buf[:n])

	lines := strings.Split(stack, "\n")
	filtered := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		if strings.Contains(lines[i], "runtime.Stack") ||
			strings.Contains(lines[i], "pagebuf/pkg/errors.") {
			i++
			continue
		}
		filtered = append(filtered, lines[i])
	}

	return strings.Join(filtered, "\n")
}

// GetErrorMessage get error message by error code
func GetErrorMessage(code ErrorCode) string {
	switch code {
	case ErrCodeSystemUnknown:
		return "Unknown system error"
	case ErrCodeSystemOutOfMemory:
		return "System out of memory"
	case ErrCodeSystemInternalError:
		return "Internal system error"
	case ErrCodeSystemInvariant:
		return "Internal invariant violated"

	case ErrCodeBufferUnknown:
		return "Unknown buffer error"
	case ErrCodeBufferNotEnough:
		return "Buffer not enough"
	case ErrCodeBufferOverflow:
		return "Buffer overflow"
	case ErrCodeBufferCorrupted:
		return "Buffer corrupted"
	case ErrCodeBufferInvalidSize:
		return "Invalid buffer size"

	case ErrCodeConfigUnknown:
		return "Unknown config error"
	case ErrCodeConfigNotFound:
		return "Config not found"
	case ErrCodeConfigInvalid:
		return "Invalid config"
	case ErrCodeConfigParseError:
		return "Config parse error"

	default:
		return "Unknown error"
	}
}

// GetErrorCategory returns the error category for the given error code.
func GetErrorCategory(code ErrorCode) ErrorCategory {
	switch {
	case code >= 1000 && code < 2000:
		return CategorySystem
	case code >= 4000 && code < 5000:
		return CategoryBuffer
	case code >= 5000 && code < 6000:
		return CategoryConfig
	case code >= 7000 && code < 8000:
		return CategoryValidation
	default:
		return CategorySystem
	}
}

// ConfigError builds a config-category error.
func ConfigError(code ErrorCode, message string) *BufError {
	return New(code, CategoryConfig, LevelError, message)
}

// Is is errors.Is, re-exported so callers need a single errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
