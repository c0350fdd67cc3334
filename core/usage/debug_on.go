// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build pagebuf_debug

package usage

// DebugTracking enables allocation counts, per-allocation maxima and wasted
// byte accounting.
const DebugTracking = true
