// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/cocowh/pagebuf/core/alloc"
	"github.com/cocowh/pagebuf/core/usage"
)

var (
	infoJSON    bool
	infoMetrics bool
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print allocator parameters and usage counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printInfo(cmd.OutOrStdout(), current.allocator, infoJSON, infoMetrics)
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "print as JSON")
	infoCmd.Flags().BoolVar(&infoMetrics, "metrics", false, "print usage in Prometheus text format")
}

type allocatorInfo struct {
	Granularity    int         `json:"granularity"`
	SmallThreshold int         `json:"small_threshold"`
	DebugTracking  bool        `json:"debug_tracking"`
	Tracker        string      `json:"tracker"`
	Usage          usage.Stats `json:"usage"`
}

func printInfo(w io.Writer, a *alloc.Allocator, asJSON, asMetrics bool) error {
	if asMetrics {
		return writeMetrics(w, a.Tracker())
	}
	info := allocatorInfo{
		Granularity:    a.Granularity(),
		SmallThreshold: a.SmallThreshold(),
		DebugTracking:  usage.DebugTracking,
		Tracker:        a.Tracker().ID(),
		Usage:          a.Tracker().Snapshot(),
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintf(w, "granularity:      %s\n", humanize.IBytes(uint64(info.Granularity)))
	fmt.Fprintf(w, "small threshold:  %s\n", humanize.IBytes(uint64(info.SmallThreshold)))
	fmt.Fprintf(w, "debug tracking:   %t\n", info.DebugTracking)
	fmt.Fprintf(w, "tracker:          %s\n", info.Tracker)
	fmt.Fprintf(w, "allocated:        %s (max %s)\n", humanize.IBytes(uint64(info.Usage.Allocated)), humanize.IBytes(uint64(info.Usage.MaxAllocated)))
	fmt.Fprintf(w, "capacity:         %s (max %s)\n", humanize.IBytes(uint64(info.Usage.Capacity)), humanize.IBytes(uint64(info.Usage.MaxCapacity)))
	fmt.Fprintf(w, "size:             %s (max %s)\n", humanize.IBytes(uint64(info.Usage.Size)), humanize.IBytes(uint64(info.Usage.MaxSize)))
	return nil
}

func writeMetrics(w io.Writer, t *usage.Tracker) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(usage.NewCollector(t)); err != nil {
		return err
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
