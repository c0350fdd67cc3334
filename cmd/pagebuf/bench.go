// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/eapache/queue"
	"github.com/spf13/cobra"

	"github.com/cocowh/pagebuf/core/alloc"
	"github.com/cocowh/pagebuf/pkg/buffer"
)

var benchDuration time.Duration

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Compare buffer allocation churn against plain Go slices",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBench(cmd.OutOrStdout(), current.allocator, defaultSetups, benchDuration)
	},
}

func init() {
	benchCmd.Flags().DurationVar(&benchDuration, "duration", time.Second, "minimum time spent on each setup and allocator")
}

// benchSetup allocates blocks regions of size bytes, frees them in FIFO
// order and repeats cycles times per measurement round.
type benchSetup struct {
	size   int
	blocks int
	cycles int
}

var defaultSetups = []benchSetup{
	{63 << 10, 7, 4096},
	{63 << 10, 31, 512},
	{127 << 10, 63, 128},
	{255 << 10, 63, 64},
	{511 << 10, 63, 32},
	{1023 << 10, 63, 16},
	{2047 << 10, 63, 8},
}

type benchResult struct {
	ops     int
	elapsed time.Duration
}

func (r benchResult) nsPerOp() int64 {
	if r.ops == 0 {
		return 0
	}
	return r.elapsed.Nanoseconds() / int64(r.ops)
}

var sink []byte

func measure(d time.Duration, s benchSetup, round func(s benchSetup) error) (benchResult, error) {
	var r benchResult
	start := time.Now()
	for {
		if err := round(s); err != nil {
			return r, err
		}
		r.ops += s.cycles * s.blocks
		r.elapsed = time.Since(start)
		if r.elapsed >= d {
			return r, nil
		}
	}
}

func makeRound(s benchSetup) error {
	q := queue.New()
	for i := 0; i < s.cycles; i++ {
		for j := 0; j < s.blocks; j++ {
			q.Add(make([]byte, s.size))
		}
		for q.Length() > 0 {
			sink = q.Remove().([]byte)
		}
	}
	return nil
}

func bufferRound(a *alloc.Allocator) func(s benchSetup) error {
	return func(s benchSetup) error {
		q := queue.New()
		for i := 0; i < s.cycles; i++ {
			for j := 0; j < s.blocks; j++ {
				b, err := buffer.NewWithAllocator(a, s.size)
				if err != nil {
					for q.Length() > 0 {
						q.Remove().(*buffer.Buffer).Release()
					}
					return err
				}
				q.Add(b)
			}
			for q.Length() > 0 {
				q.Remove().(*buffer.Buffer).Release()
			}
		}
		return nil
	}
}

func runBench(w io.Writer, a *alloc.Allocator, setups []benchSetup, d time.Duration) error {
	fmt.Fprintf(w, "%-10s %7s %10s %12s %12s\n", "size", "blocks", "total", "make ns/op", "buffer ns/op")
	for _, s := range setups {
		plain, err := measure(d, s, makeRound)
		if err != nil {
			return err
		}
		buffered, err := measure(d, s, bufferRound(a))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-10s %7d %10s %12d %12d\n",
			humanize.IBytes(uint64(s.size)), s.blocks, humanize.IBytes(uint64(s.size*s.blocks)),
			plain.nsPerOp(), buffered.nsPerOp())
	}
	sink = nil
	return nil
}
