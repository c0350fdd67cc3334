// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocowh/pagebuf/core/alloc"
	"github.com/cocowh/pagebuf/core/usage"
)

func newAllocator(t *testing.T) *alloc.Allocator {
	t.Helper()
	g := alloc.Granularity()
	return alloc.New(alloc.WithTracker(usage.NewTracker()), alloc.WithSmallThreshold(4*g))
}

func TestRunStressBalances(t *testing.T) {
	a := newAllocator(t)
	var out bytes.Buffer
	err := runStress(&out, a, stressOptions{workers: 4, buffers: 200, maxSize: 16 * alloc.Granularity(), seed: 1})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "800 buffers")
	assert.False(t, a.Tracker().Snapshot().Leaked())

	assert.Error(t, runStress(&out, a, stressOptions{workers: 0, buffers: 1, maxSize: 1}))
}

func TestRunBench(t *testing.T) {
	a := newAllocator(t)
	var out bytes.Buffer
	setups := []benchSetup{{size: 3 * alloc.Granularity(), blocks: 2, cycles: 2}, {size: 8 * alloc.Granularity(), blocks: 2, cycles: 1}}
	require.NoError(t, runBench(&out, a, setups, time.Millisecond))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 3)
	assert.False(t, a.Tracker().Snapshot().Leaked())
}

func TestPrintInfo(t *testing.T) {
	a := newAllocator(t)

	var text bytes.Buffer
	require.NoError(t, printInfo(&text, a, false, false))
	assert.Contains(t, text.String(), "granularity:")

	var js bytes.Buffer
	require.NoError(t, printInfo(&js, a, true, false))
	var decoded allocatorInfo
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, a.Granularity(), decoded.Granularity)
	assert.Equal(t, a.Tracker().ID(), decoded.Tracker)

	var metrics bytes.Buffer
	require.NoError(t, printInfo(&metrics, a, false, true))
	assert.Contains(t, metrics.String(), "pagebuf_memory_bytes")
}
