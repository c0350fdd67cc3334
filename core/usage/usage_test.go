// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package usage

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cocowh/pagebuf/pkg/logger"
)

func TestCounterAddSubtract(t *testing.T) {
	var c Counter
	c.Add(10)
	c.Add(5)
	c.Subtract(12)
	assert.EqualValues(t, 3, c.Current())
	assert.EqualValues(t, 15, c.Max())

	c.Add(4)
	assert.EqualValues(t, 7, c.Current())
	assert.EqualValues(t, 15, c.Max(), "max must not move below the previous peak")

	c.Change(7, 20)
	assert.EqualValues(t, 20, c.Current())
	assert.EqualValues(t, 20, c.Max())

	c.Change(20, 0)
	assert.EqualValues(t, 0, c.Current())
	assert.EqualValues(t, 20, c.Max())
}

func TestCounterConcurrentNoLostUpdates(t *testing.T) {
	const (
		workers = 16
		rounds  = 10000
	)
	var c Counter
	var wg sync.WaitGroup
	var maxSeen sync.Map

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			prevMax := int64(0)
			for i := 0; i < rounds; i++ {
				c.Add(3)
				m := c.Max()
				if m < prevMax {
					maxSeen.Store(w, fmt.Sprintf("max decreased from %d to %d", prevMax, m))
				}
				prevMax = m
				c.Subtract(3)
			}
		}(w)
	}
	wg.Wait()

	assert.EqualValues(t, 0, c.Current())
	assert.GreaterOrEqual(t, c.Max(), int64(3))
	assert.LessOrEqual(t, c.Max(), int64(3*workers))
	maxSeen.Range(func(k, v any) bool {
		t.Errorf("worker %v: %v", k, v)
		return true
	})
}

func TestMaxGauge(t *testing.T) {
	var g MaxGauge
	g.Update(5)
	g.Update(2)
	g.Update(9)
	g.Update(1)
	assert.EqualValues(t, 9, g.Value())
}

func TestTrackerBalances(t *testing.T) {
	tr := NewTracker()
	require.NotEmpty(t, tr.ID())

	tr.TrackSystemAllocation(8192)
	tr.TrackCapacityAllocation(4096)
	tr.TrackSizeAllocation(100)

	tr.TrackSystemReallocation(8192, 12288)
	tr.TrackCapacityChange(4096, 8192)
	tr.TrackSizeChange(100, 5000)
	tr.TrackReallocation()

	s := tr.Snapshot()
	assert.EqualValues(t, 12288, s.Allocated)
	assert.EqualValues(t, 8192, s.Capacity)
	assert.EqualValues(t, 5000, s.Size)
	assert.True(t, s.Leaked())

	tr.TrackSizeDeallocation(5000)
	tr.TrackCapacityDeallocation(8192)
	tr.TrackSystemDeallocation(12288)

	s = tr.Snapshot()
	assert.False(t, s.Leaked())
	assert.EqualValues(t, 12288, s.MaxAllocated)
	assert.EqualValues(t, 8192, s.MaxCapacity)
	assert.EqualValues(t, 5000, s.MaxSize)

	if DebugTracking {
		assert.EqualValues(t, 1, s.TotalSystemAllocations)
		assert.EqualValues(t, 1, s.TotalAllocations)
		assert.EqualValues(t, 1, s.TotalReallocations)
		assert.EqualValues(t, 0, s.Allocations)
		assert.EqualValues(t, 12288, s.LargestAllocation)
	} else {
		assert.Zero(t, s.TotalAllocations)
		assert.Zero(t, s.Wasted)
	}
}

func TestReportLeak(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := logger.NewZapLogger(zap.New(core))

	tr := NewTracker()
	assert.False(t, tr.Report(l), "untouched tracker reports nothing")
	assert.Zero(t, logs.Len())

	tr.TrackSystemAllocation(2 << 20)
	tr.TrackCapacityAllocation(2 << 20)
	assert.True(t, tr.Report(l))

	leaks := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, leaks, 1)
	assert.Contains(t, leaks[0].Message, "leaked")
	assert.Contains(t, leaks[0].Message, "2.0 MiB")
	assert.Contains(t, leaks[0].Message, tr.ID())

	tr.TrackCapacityDeallocation(2 << 20)
	tr.TrackSystemDeallocation(2 << 20)
	assert.False(t, tr.Report(l))
	assert.Len(t, logs.FilterLevelExact(zapcore.ErrorLevel).All(), 1)
}

func TestSetDefault(t *testing.T) {
	fresh := NewTracker()
	prev := SetDefault(fresh)
	t.Cleanup(func() { SetDefault(prev) })

	assert.Same(t, fresh, Default())
	assert.NotSame(t, prev, Default())
}

func TestCollector(t *testing.T) {
	if DebugTracking {
		t.Skip("diagnostic series change the exposition")
	}
	tr := NewTracker()
	tr.TrackSystemAllocation(8192)
	tr.TrackCapacityAllocation(4096)
	tr.TrackSizeAllocation(100)

	c := NewCollector(tr)
	assert.Equal(t, 6, testutil.CollectAndCount(c))

	expected := fmt.Sprintf(`
# HELP pagebuf_memory_bytes Buffer memory currently held, by counter
# TYPE pagebuf_memory_bytes gauge
pagebuf_memory_bytes{counter="allocated",tracker="%[1]s"} 8192
pagebuf_memory_bytes{counter="capacity",tracker="%[1]s"} 4096
pagebuf_memory_bytes{counter="size",tracker="%[1]s"} 100
`, tr.ID())
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "pagebuf_memory_bytes"))
}
