package follower

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// CommandSink receives the outcome of each control cycle, typically a base
// driver.
type CommandSink interface {
	SetVelocity(ctx context.Context, cmd Command) error
}

// Runner invokes a Controller at a fixed rate and forwards each command to a
// sink. A failed cycle commands a stop but does not stop the runner; the next
// cycle runs at the usual cadence.
type Runner struct {
	controller *Controller
	sink       CommandSink
	period     time.Duration
	clock      clock.Clock
	logger     golog.Logger

	mu                      sync.Mutex
	cancel                  context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup
}

// RunnerOption configures optional Runner collaborators.
type RunnerOption func(*Runner)

// WithClock replaces the wall clock, letting tests drive cycles manually.
func WithClock(c clock.Clock) RunnerOption {
	return func(r *Runner) { r.clock = c }
}

// NewRunner returns a stopped Runner cycling at the given period.
func NewRunner(controller *Controller, sink CommandSink, period time.Duration, logger golog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		controller: controller,
		sink:       sink,
		period:     period,
		clock:      clock.New(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins the periodic control cycle. Starting a started Runner is a
// no-op.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.activeBackgroundWorkers.Add(1)
	goutils.ManagedGo(func() {
		r.run(ctx)
	}, r.activeBackgroundWorkers.Done)
}

func (r *Runner) run(ctx context.Context) {
	ticker := r.clock.Ticker(r.period)
	defer ticker.Stop()
	for {
		if !goutils.SelectContextOrWaitChan(ctx, ticker.C) {
			return
		}
		cmd, err := r.controller.ComputeVelocityCommands(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			// Hold the robot; the next cycle retries at rate.
			r.logger.Errorw("control cycle failed", "error", err)
			cmd = Command{}
		}
		if err := r.sink.SetVelocity(ctx, cmd); err != nil {
			r.logger.Errorw("failed to command the base", "error", err)
		}
	}
}

// Stop halts the periodic cycle and waits for the in-flight one to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()
	r.activeBackgroundWorkers.Wait()
}

// Close stops the Runner and commands the base to a halt.
func (r *Runner) Close(ctx context.Context) error {
	r.Stop()
	return r.sink.SetVelocity(ctx, Command{})
}
