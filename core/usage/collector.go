// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package usage

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports a tracker as Prometheus gauges. Values are read at scrape
// time, so the collector adds nothing to the allocation path.
type Collector struct {
	tracker *Tracker

	current *prometheus.Desc
	max     *prometheus.Desc
	events  *prometheus.Desc
}

// NewCollector builds a collector for t; a nil t exports Default().
func NewCollector(t *Tracker) *Collector {
	if t == nil {
		t = Default()
	}
	labels := prometheus.Labels{"tracker": t.ID()}
	return &Collector{
		tracker: t,
		current: prometheus.NewDesc(
			"pagebuf_memory_bytes",
			"Buffer memory currently held, by counter",
			[]string{"counter"}, labels,
		),
		max: prometheus.NewDesc(
			"pagebuf_memory_max_bytes",
			"High-water mark of buffer memory, by counter",
			[]string{"counter"}, labels,
		),
		events: prometheus.NewDesc(
			"pagebuf_allocation_events_total",
			"Allocation events since start, by kind",
			[]string{"kind"}, labels,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.current
	ch <- c.max
	if DebugTracking {
		ch <- c.events
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.tracker.Snapshot()
	pairs := []struct {
		name     string
		cur, max int64
	}{
		{"allocated", s.Allocated, s.MaxAllocated},
		{"capacity", s.Capacity, s.MaxCapacity},
		{"size", s.Size, s.MaxSize},
	}
	for _, p := range pairs {
		ch <- prometheus.MustNewConstMetric(c.current, prometheus.GaugeValue, float64(p.cur), p.name)
		ch <- prometheus.MustNewConstMetric(c.max, prometheus.GaugeValue, float64(p.max), p.name)
	}
	if !DebugTracking {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.current, prometheus.GaugeValue, float64(s.Wasted), "wasted")
	ch <- prometheus.MustNewConstMetric(c.events, prometheus.CounterValue, float64(s.TotalSystemAllocations), "system_allocation")
	ch <- prometheus.MustNewConstMetric(c.events, prometheus.CounterValue, float64(s.TotalAllocations), "allocation")
	ch <- prometheus.MustNewConstMetric(c.events, prometheus.CounterValue, float64(s.TotalReallocations), "reallocation")
}

var _ prometheus.Collector = (*Collector)(nil)
