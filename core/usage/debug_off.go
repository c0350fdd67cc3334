// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !pagebuf_debug

package usage

// DebugTracking is off unless built with -tags pagebuf_debug.
const DebugTracking = false
