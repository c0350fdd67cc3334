// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cocowh/pagebuf/core/alloc"
	"github.com/cocowh/pagebuf/core/utils"
	"github.com/cocowh/pagebuf/pkg/buffer"
	"github.com/cocowh/pagebuf/pkg/errors"
	"github.com/cocowh/pagebuf/pkg/logger"
)

type stressOptions struct {
	workers int
	buffers int
	maxSize int
	seed    int64
}

var (
	stressOpts    stressOptions
	stressMaxSize string
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Churn buffers from many goroutines and check the counters balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := humanize.ParseBytes(stressMaxSize)
		if err != nil {
			return fmt.Errorf("invalid --max-size %q: %w", stressMaxSize, err)
		}
		opts := stressOpts
		opts.maxSize = int(n)
		if opts.seed == 0 {
			opts.seed = time.Now().UnixNano()
		}
		return runStress(cmd.OutOrStdout(), current.allocator, opts)
	},
}

func init() {
	stressCmd.Flags().IntVarP(&stressOpts.workers, "workers", "w", 8, "concurrent goroutines")
	stressCmd.Flags().IntVarP(&stressOpts.buffers, "buffers", "n", 1000, "buffers per goroutine")
	stressCmd.Flags().StringVar(&stressMaxSize, "max-size", "2MiB", "largest buffer size")
	stressCmd.Flags().Int64Var(&stressOpts.seed, "seed", 0, "random seed, 0 picks one")
}

// runStress creates, grows, shrinks, moves and releases buffers of random
// sizes from several goroutines. It fails if any capacity is still accounted
// for afterwards.
func runStress(w io.Writer, a *alloc.Allocator, opts stressOptions) error {
	if opts.workers <= 0 || opts.buffers <= 0 || opts.maxSize <= 0 {
		return errors.ConfigError(errors.ErrCodeConfigInvalid, "workers, buffers and max size must be positive")
	}
	logger.Infof("stress: %d workers x %d buffers up to %s, seed %d",
		opts.workers, opts.buffers, humanize.IBytes(uint64(opts.maxSize)), opts.seed)

	start := time.Now()
	errs := make(chan error, opts.workers)
	var wg sync.WaitGroup
	for i := 0; i < opts.workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			err := func() (err error) {
				defer utils.Recover(&err)
				return stressWorker(a, opts, rand.New(rand.NewSource(seed)))
			}()
			if err != nil {
				errs <- err
			}
		}(opts.seed + int64(i))
	}
	wg.Wait()
	close(errs)
	if err, ok := <-errs; ok {
		return err
	}

	s := a.Tracker().Snapshot()
	fmt.Fprintf(w, "%d buffers in %s, peak capacity %s, peak allocated %s\n",
		opts.workers*opts.buffers, time.Since(start).Round(time.Millisecond),
		humanize.IBytes(uint64(s.MaxCapacity)), humanize.IBytes(uint64(s.MaxAllocated)))
	if s.Leaked() {
		return fmt.Errorf("leak: %s capacity and %s size still accounted for",
			humanize.IBytes(uint64(s.Capacity)), humanize.IBytes(uint64(s.Size)))
	}
	return nil
}

func stressWorker(a *alloc.Allocator, opts stressOptions, rng *rand.Rand) error {
	const live = 16
	held := make([]*buffer.Buffer, 0, live)
	defer func() {
		for _, b := range held {
			b.Release()
		}
	}()

	for i := 0; i < opts.buffers; i++ {
		b, err := buffer.NewWithAllocator(a, rng.Intn(opts.maxSize))
		if err != nil {
			return err
		}
		held = append(held, b)

		switch rng.Intn(4) {
		case 0:
			err = b.Resize(rng.Intn(opts.maxSize))
		case 1:
			err = b.Reserve(rng.Intn(opts.maxSize))
		case 2:
			if err = b.Resize(b.Size() / 2); err == nil {
				err = b.ShrinkToFit()
			}
		case 3:
			held[len(held)-1] = b.Take()
		}
		if err != nil {
			return err
		}

		if len(held) == live {
			victim := rng.Intn(live)
			held[victim].Release()
			held[victim] = held[live-1]
			held = held[:live-1]
		}
	}
	return nil
}
