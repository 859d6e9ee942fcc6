// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dotandev/sorogate/internal/simulator"
)

var loadtestFlags struct {
	contract    string
	function    string
	params      []string
	requests    int
	concurrency int
}

var loadtestCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Fire concurrent simulations of one read-only call against the node",
	RunE:  runLoadtest,
}

func init() {
	f := loadtestCmd.Flags()
	f.StringVar(&loadtestFlags.contract, "contract", "", "contract id (C...)")
	f.StringVar(&loadtestFlags.function, "function", "", "contract function name")
	f.StringArrayVar(&loadtestFlags.params, "param", nil, "positional parameter, kind:value or a bare value (repeatable)")
	f.IntVarP(&loadtestFlags.requests, "requests", "n", 100, "total simulations")
	f.IntVarP(&loadtestFlags.concurrency, "concurrency", "c", 8, "simulations in flight")
	_ = loadtestCmd.MarkFlagRequired("contract")
	_ = loadtestCmd.MarkFlagRequired("function")
}

type simulateFunc func(ctx context.Context, call simulator.Call) (*simulator.Outcome, error)

type loadStats struct {
	Succeeded int
	SimErrors int
	Failed    int
	Total     time.Duration
	Max       time.Duration
	LastErr   error
}

func (s loadStats) Mean() time.Duration {
	n := s.Succeeded + s.SimErrors + s.Failed
	if n == 0 {
		return 0
	}
	return s.Total / time.Duration(n)
}

func runLoadtest(cmd *cobra.Command, _ []string) error {
	if loadtestFlags.requests <= 0 || loadtestFlags.concurrency <= 0 {
		return errors.New("requests and concurrency must be positive")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	sim, err := newSimulator(cfg)
	if err != nil {
		return err
	}
	call, err := buildCall(loadtestFlags.contract, loadtestFlags.function, loadtestFlags.params)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if isTerminal(os.Stderr) {
		bar = progressbar.Default(int64(loadtestFlags.requests), "simulating")
	} else {
		bar = progressbar.DefaultSilent(int64(loadtestFlags.requests), "simulating")
	}

	start := time.Now()
	stats := runLoad(cmd.Context(), sim.Simulate, call, loadtestFlags.requests, loadtestFlags.concurrency, func() {
		_ = bar.Add(1)
	})
	_ = bar.Finish()

	printLoadStats(cmd.OutOrStdout(), stats, time.Since(start))
	if stats.Failed > 0 {
		return errors.Wrapf(stats.LastErr, "%d of %d simulations failed", stats.Failed, loadtestFlags.requests)
	}
	return nil
}

// runLoad performs n simulations with at most concurrency in flight. done is
// called once per finished simulation. Cancelling ctx stops dispatching new
// simulations.
func runLoad(ctx context.Context, simulate simulateFunc, call simulator.Call, n, concurrency int, done func()) loadStats {
	jobs := make(chan struct{})
	var (
		mu    sync.Mutex
		stats loadStats
		wg    sync.WaitGroup
	)
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				start := time.Now()
				out, err := simulate(ctx, call)
				elapsed := time.Since(start)

				mu.Lock()
				switch {
				case err != nil:
					stats.Failed++
					stats.LastErr = err
				case out.Error != "":
					stats.SimErrors++
				default:
					stats.Succeeded++
				}
				stats.Total += elapsed
				if elapsed > stats.Max {
					stats.Max = elapsed
				}
				mu.Unlock()
				done()
			}
		}()
	}
dispatch:
	for i := 0; i < n && ctx.Err() == nil; i++ {
		select {
		case jobs <- struct{}{}:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	return stats
}

func printLoadStats(w io.Writer, stats loadStats, wall time.Duration) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Succeeded:  %d\n", stats.Succeeded)
	fmt.Fprintf(w, "Sim errors: %d\n", stats.SimErrors)
	fmt.Fprintf(w, "Failed:     %d\n", stats.Failed)
	fmt.Fprintf(w, "Mean:       %s\n", stats.Mean().Round(time.Millisecond))
	fmt.Fprintf(w, "Max:        %s\n", stats.Max.Round(time.Millisecond))
	fmt.Fprintf(w, "Wall:       %s\n", wall.Round(time.Millisecond))
}
