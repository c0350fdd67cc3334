// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package utils

import (
	"fmt"
	"runtime/debug"

	"github.com/cocowh/pagebuf/pkg/errors"
	"github.com/cocowh/pagebuf/pkg/logger"
)

// Recover stores a panic of the calling goroutine in errp, logging it with
// the stack. It must be deferred directly:
//
//	defer utils.Recover(&err)
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	logger.Errorf("recover panic. error:%v, stack: %s", r, debug.Stack())
	if err, ok := r.(error); ok {
		if errors.IsFatal(err) {
			*errp = err
			return
		}
		*errp = errors.Wrap(err, errors.ErrCodeSystemInternalError, errors.CategorySystem, errors.LevelFatal, "panic")
		return
	}
	*errp = errors.New(errors.ErrCodeSystemInternalError, errors.CategorySystem, errors.LevelFatal, fmt.Sprintf("panic: %v", r))
}
