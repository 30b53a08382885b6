package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Cycle is one scheduled execution of the full fetch-and-merge sequence.
// triggeredAt is the cycle's logical timestamp: the wall-clock instant the
// timer fired, shared by every field of the resulting snapshot.
type Cycle func(ctx context.Context, triggeredAt time.Time)

// Runner drives Cycles at a fixed wall-clock-aligned cadence. It arms a
// one-shot timer for the next boundary; when that fires it runs the first
// aligned cycle and switches to a steady ticker at the period.
//
// Single-flight: if a cycle overruns the period, the overlapping tick is
// skipped and logged, never run concurrently with the in-flight cycle.
//
// The runner itself never fails. A panicking cycle is recovered and logged;
// the timer loop survives it.
type Runner struct {
	period time.Duration
	cycle  Cycle
	logger *slog.Logger

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running atomic.Bool // single-flight guard
}

// RunnerConfig holds the dependencies for creating a Runner.
type RunnerConfig struct {
	Period time.Duration
	Cycle  Cycle
	Logger *slog.Logger
}

// NewRunner creates a stopped Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		period: cfg.Period,
		cycle:  cfg.Cycle,
		logger: logger,
		now:    time.Now,
	}
}

// Start launches the timer loop. It returns immediately; cycles run on
// their own goroutine so nothing ever blocks the timer. Starting an already
// started runner is an error.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		return fmt.Errorf("scheduler already started")
	}
	if r.period <= 0 {
		return fmt.Errorf("scheduler period must be positive, got %s", r.period)
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.loop(ctx, r.done)
	return nil
}

// Stop halts the loop and waits for it to exit. No further cycles fire after
// Stop returns; an in-flight cycle's fetches are abandoned via context
// cancellation, not awaited. Stop is idempotent.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// loop arms the alignment timer, then ticks at the steady period.
func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	delay := NextDelay(r.now(), r.period)
	r.logger.Info("scheduler armed",
		"period", r.period,
		"first_trigger_in", delay,
	)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		r.trigger(ctx)
	}

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.trigger(ctx)
		}
	}
}

// trigger launches one cycle off the timer goroutine, enforcing
// single-flight: a tick that arrives while the previous cycle is still
// running is skipped, not queued.
func (r *Runner) trigger(ctx context.Context) {
	if !r.running.CompareAndSwap(false, true) {
		r.logger.Warn("cycle overran period, skipping tick", "period", r.period)
		return
	}

	triggeredAt := r.now()
	go func() {
		defer r.running.Store(false)
		defer func() {
			if rvr := recover(); rvr != nil {
				r.logger.Error("cycle panicked",
					"panic", fmt.Sprintf("%v", rvr),
					"stack", string(debug.Stack()),
				)
			}
		}()
		r.cycle(ctx, triggeredAt)
	}()
}
