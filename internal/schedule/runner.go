// Package schedule periodically re-runs a batch inference sweep,
// generalizing the teacher's stale-cache refresh check into a
// cron-driven recurring job instead of a one-shot "refresh if needed"
// call.
package schedule

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweep performs one full batch inference pass. Callers supply a
// closure that loads the current card set, runs it through the batch
// driver, and persists or publishes the outcomes; Runner only owns the
// timing.
type Sweep func(ctx context.Context) error

// Runner wraps a cron.Cron scheduler around a Sweep, logging start/stop
// and elapsed time the way the teacher's RefreshService logs its own
// refresh lifecycle.
type Runner struct {
	cron  *cron.Cron
	sweep Sweep

	mu      sync.Mutex
	running bool
}

// NewRunner builds a Runner that invokes sweep on the given cron
// expression (standard five-field cron syntax, or one of cron's
// "@every 1h"-style descriptors).
func NewRunner(spec string, sweep Sweep) (*Runner, error) {
	r := &Runner{cron: cron.New(), sweep: sweep}
	_, err := r.cron.AddFunc(spec, r.runOnce)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Start begins the scheduler in the background. It returns immediately;
// call Stop to shut it down.
func (r *Runner) Start() {
	log.Println("schedule: starting batch sweep runner")
	r.cron.Start()
}

// Stop halts the scheduler and waits for any in-flight sweep to finish.
// ctx bounds how long the caller is willing to wait; if it is done
// first, Stop returns without waiting further.
func (r *Runner) Stop(ctx context.Context) {
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		log.Println("schedule: stop deadline exceeded, in-flight sweep may be abandoned")
	}
}

// RunNow triggers an immediate out-of-band sweep, independent of the
// cron schedule. Useful for an operator-triggered refresh.
func (r *Runner) RunNow(ctx context.Context) error {
	return r.sweep(ctx)
}

func (r *Runner) runOnce() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		log.Println("schedule: previous sweep still running, skipping this tick")
		return
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	start := time.Now()
	log.Println("schedule: starting scheduled sweep")
	if err := r.sweep(context.Background()); err != nil {
		log.Printf("schedule: sweep failed after %s: %v", time.Since(start), err)
		return
	}
	log.Printf("schedule: sweep completed in %s", time.Since(start))
}
