package follower

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/graceful/spatialmath"
)

type chanSink struct {
	ch chan Command
}

func (s *chanSink) SetVelocity(ctx context.Context, cmd Command) error {
	select {
	case s.ch <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func waitForCommand(t *testing.T, ch chan Command) Command {
	t.Helper()
	select {
	case cmd := <-ch:
		return cmd
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a command")
		return Command{}
	}
}

func TestRunnerCycles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLookahead = 5
	localizer := &fakeLocalizer{pose: spatialmath.NewPose2D(0, 0, 0)}
	ctrl := newTestController(t, cfg, emptyGrid(t), localizer)
	test.That(t, ctrl.SetPlan([]r3.Vector{{X: 1}, {X: 2}}, 0), test.ShouldBeNil)

	mock := clock.NewMock()
	sink := &chanSink{ch: make(chan Command, 16)}
	runner := NewRunner(ctrl, sink, 50*time.Millisecond, golog.NewTestLogger(t), WithClock(mock))

	runner.Start()
	defer runner.Stop()
	// Starting twice is harmless.
	runner.Start()

	// Let the worker reach its ticker before advancing the mock clock.
	time.Sleep(50 * time.Millisecond)
	mock.Add(50 * time.Millisecond)
	cmd := waitForCommand(t, sink.ch)
	test.That(t, cmd.LinearX, test.ShouldBeGreaterThan, 0)

	time.Sleep(50 * time.Millisecond)
	mock.Add(50 * time.Millisecond)
	cmd = waitForCommand(t, sink.ch)
	test.That(t, cmd.LinearX, test.ShouldBeGreaterThan, 0)
}

func TestRunnerFailureCommandsStop(t *testing.T) {
	// No plan: every cycle fails and the base must be held at zero.
	ctrl := newTestController(t, DefaultConfig(), emptyGrid(t), &fakeLocalizer{})

	mock := clock.NewMock()
	sink := &chanSink{ch: make(chan Command, 16)}
	runner := NewRunner(ctrl, sink, 50*time.Millisecond, golog.NewTestLogger(t), WithClock(mock))

	runner.Start()
	defer runner.Stop()

	time.Sleep(50 * time.Millisecond)
	mock.Add(50 * time.Millisecond)
	cmd := waitForCommand(t, sink.ch)
	test.That(t, cmd, test.ShouldResemble, Command{})

	// The runner keeps cycling after a failure.
	time.Sleep(50 * time.Millisecond)
	mock.Add(50 * time.Millisecond)
	cmd = waitForCommand(t, sink.ch)
	test.That(t, cmd, test.ShouldResemble, Command{})
}

func TestRunnerClose(t *testing.T) {
	cfg := DefaultConfig()
	localizer := &fakeLocalizer{pose: spatialmath.NewPose2D(0, 0, 0)}
	ctrl := newTestController(t, cfg, emptyGrid(t), localizer)

	sink := &chanSink{ch: make(chan Command, 16)}
	runner := NewRunner(ctrl, sink, time.Hour, golog.NewTestLogger(t))
	runner.Start()

	test.That(t, runner.Close(context.Background()), test.ShouldBeNil)
	// Close commands the base to a halt.
	test.That(t, waitForCommand(t, sink.ch), test.ShouldResemble, Command{})

	// Closing again is safe.
	test.That(t, runner.Close(context.Background()), test.ShouldBeNil)
}
