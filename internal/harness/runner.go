/*
 * agc - Tick-loop harness
 */

// Package harness drives the CPU's tick loop for the command-line harness
// binary: the in-scope "Top-level Harness" component of spec.md §2 item
// 10, not the out-of-scope interactive DSKY dashboard.
package harness

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/agcsim/agc/internal/cpu"
	"github.com/agcsim/agc/util/trace"
)

// Runner wraps a *cpu.CPU and drives it for a fixed number of ticks,
// optionally writing a register trace after every tick. Grounded on the
// teacher's emu/core.Core Start/Stop goroutine-plus-done-channel shape, but
// built on errgroup instead of a raw WaitGroup+channel: the harness has two
// independently fallible goroutines (the tick loop and a cancellation
// watchdog) where the teacher's Core has only one. The trace is flushed
// after both have finished.
type Runner struct {
	CPU    *cpu.CPU
	Trace  *trace.Writer
	Log    *slog.Logger
	Lenient bool // if true, a *cpu.DesignError is logged and the run continues with the next tick
}

// Run steps the CPU for exactly ticks time pulses (spec.md's control-pulse
// granularity), writing one trace row per tick when r.Trace is non-nil, and
// returns the first error encountered (or nil on a clean run of the full
// tick count).
func (r *Runner) Run(ctx context.Context, ticks int) error {
	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	g.Go(func() error {
		defer close(done)
		for i := 0; i < ticks; i++ {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if err := r.CPU.StepPulse(); err != nil {
				if r.Lenient {
					r.log().Warn("design error, continuing", "error", err)
					continue
				}
				return err
			}

			if r.Trace != nil {
				label := r.stepLabel()
				if err := r.Trace.WriteRow(label, r.CPU.Snapshot()); err != nil {
					return err
				}
			}
		}
		return nil
	})

	// Watchdog: logs and unblocks promptly if the caller cancels ctx while
	// the tick loop is still running, instead of waiting for the tick loop
	// to notice on its next iteration.
	g.Go(func() error {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			r.log().Warn("run canceled", "error", ctx.Err())
			return ctx.Err()
		}
	})

	err := g.Wait()
	if r.Trace != nil {
		if ferr := r.Trace.Flush(); ferr != nil && err == nil {
			err = ferr
		}
	}
	if err == context.Canceled {
		return nil
	}
	return err
}

func (r *Runner) stepLabel() string {
	sub, ok := r.CPU.CurrentSubinstruction()
	if !ok {
		return "?"
	}
	return sub.Name + "/" + r.CPU.CurrentTimePulse.String()
}

func (r *Runner) log() *slog.Logger {
	if r.Log == nil {
		return slog.Default()
	}
	return r.Log
}
