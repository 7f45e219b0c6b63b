// Package follower implements a collision-checked local trajectory follower
// for differential-drive robots. Each control cycle it picks the farthest
// path waypoint within a lookahead radius, asks a control law for a velocity
// command toward it, forward-simulates the command against an occupancy grid,
// and backs off to nearer waypoints if the simulated trajectory collides.
package follower

import (
	"context"
	"math"
	"sync"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/graceful/controllaw"
	"go.viam.com/graceful/costmap"
	"go.viam.com/graceful/spatialmath"
)

// minSimSteps is the floor of the forward-simulation iteration cap, which
// otherwise scales with how many grid cells fit in the lookahead radius.
const minSimSteps = 128

// Command is a velocity command for a differential-drive base.
type Command struct {
	LinearX  float64
	AngularZ float64
}

// State identifies where the follower is in its tracking lifecycle.
type State uint8

// The follower states, in the order they are normally visited.
const (
	StateAwaitingPlan State = iota
	StateTracking
	StateRotatingToGoal
	StateGoalReached
)

func (s State) String() string {
	switch s {
	case StateAwaitingPlan:
		return "awaiting_plan"
	case StateTracking:
		return "tracking"
	case StateRotatingToGoal:
		return "rotating_to_goal"
	case StateGoalReached:
		return "goal_reached"
	default:
		return "unknown"
	}
}

// Localizer supplies the robot pose in the fixed world frame shared by the
// path and the grid.
type Localizer interface {
	CurrentPose(ctx context.Context) (spatialmath.Pose2D, error)
}

// Odometry optionally supplies the robot's current velocities, used only to
// acceleration-limit the commanded velocity ceilings.
type Odometry interface {
	Velocity(ctx context.Context) (linear, angular float64, err error)
}

// LawFactory builds a fresh control-law instance for a configuration. The
// controller rebuilds the law wholesale whenever it is reconfigured, so an
// in-flight cycle sees either the old or the new instance, never a
// half-updated one.
type LawFactory func(cfg Config) controllaw.Law

// DefaultLawFactory builds the smooth approach law from the configuration's
// Law section.
func DefaultLawFactory(cfg Config) controllaw.Law {
	return controllaw.NewSmooth(cfg.Law)
}

// Controller tracks a path with collision-checked lookahead control. All
// mutable state is guarded by one mutex; SetPlan, Reconfigure and
// SetMaxVelocity may be called from goroutines other than the one driving
// ComputeVelocityCommands.
type Controller struct {
	localizer Localizer
	grid      costmap.Grid
	logger    golog.Logger

	mu         sync.Mutex
	cfg        Config
	law        controllaw.Law
	lawFactory LawFactory
	odometry   Odometry
	plan       Path
	freshPlan  bool
	maxVelX    float64
	state      State
	localPlan  []spatialmath.Pose2D
}

// Option configures optional Controller collaborators.
type Option func(*Controller)

// WithOdometry supplies velocity feedback for acceleration-limited ceilings.
func WithOdometry(o Odometry) Option {
	return func(c *Controller) { c.odometry = o }
}

// WithLawFactory replaces the control law used for tracking.
func WithLawFactory(f LawFactory) Option {
	return func(c *Controller) { c.lawFactory = f }
}

// New returns a Controller tracking nothing, awaiting a plan.
func New(cfg Config, grid costmap.Grid, localizer Localizer, logger golog.Logger, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		localizer:  localizer,
		grid:       grid,
		logger:     logger,
		cfg:        cfg,
		lawFactory: DefaultLawFactory,
		maxVelX:    cfg.Limits.MaxVelX,
		state:      StateAwaitingPlan,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.law = c.lawFactory(cfg)
	return c, nil
}

// SetPlan replaces the path being tracked. Waypoints are oriented so that
// each points at its successor; finalTheta is the goal heading. On
// ErrInvalidPath the previous plan is retained.
func (c *Controller) SetPlan(points []r3.Vector, finalTheta float64) error {
	oriented, err := OrientPath(points, finalTheta)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plan = oriented
	c.freshPlan = true
	c.state = StateTracking
	c.localPlan = nil
	c.logger.Infow("received a new path", "points", len(oriented))
	return nil
}

// Reconfigure atomically swaps the configuration and constructs a fresh
// control-law instance from it.
func (c *Controller) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	c.maxVelX = cfg.Limits.MaxVelX
	c.law = c.lawFactory(cfg)
	return nil
}

// SetMaxVelocity overrides the linear velocity ceiling, clamped into the
// configured [MinVelX, MaxVelX] range. External speed governors use this.
func (c *Controller) SetMaxVelocity(maxVelX float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxVelX = math.Max(math.Min(maxVelX, c.cfg.Limits.MaxVelX), c.cfg.Limits.MinVelX)
}

// State returns the follower's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RemainingPlan returns a copy of the oriented path currently being tracked.
// Diagnostics only.
func (c *Controller) RemainingPlan() Path {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(Path(nil), c.plan...)
}

// LocalPlan returns a copy of the last accepted simulated rollout.
// Diagnostics only.
func (c *Controller) LocalPlan() []spatialmath.Pose2D {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]spatialmath.Pose2D(nil), c.localPlan...)
}

// IsGoalReached reports whether the robot is within both goal tolerances of
// the plan's final pose. It returns false without error when no plan is set.
func (c *Controller) IsGoalReached(ctx context.Context) (bool, error) {
	pose, err := c.localizer.CurrentPose(ctx)
	if err != nil {
		return false, errors.WithMessage(ErrPoseUnavailable, err.Error())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.plan) == 0 {
		return false, nil
	}
	return GoalReached(pose, c.plan.Goal(), c.cfg.XYGoalTolerance, c.cfg.YawGoalTolerance), nil
}

// ComputeVelocityCommands runs one control cycle and returns the velocity
// command to execute, or a typed error and a zero command. A failed cycle
// never returns a best-effort command; the periodic caller is expected to
// invoke the next cycle at the control rate regardless.
func (c *Controller) ComputeVelocityCommands(ctx context.Context) (Command, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.plan) == 0 {
		return Command{}, ErrNoPlan
	}

	robot, err := c.localizer.CurrentPose(ctx)
	if err != nil {
		return Command{}, errors.WithMessage(ErrPoseUnavailable, err.Error())
	}

	// Project the velocity ceilings from odometry feedback when available;
	// otherwise the static (possibly externally overridden) limits apply.
	angularSpeed := 0.0
	hasFeedback := false
	ceiling := c.maxVelX
	if c.odometry != nil {
		linear, angular, err := c.odometry.Velocity(ctx)
		if err != nil {
			c.logger.Debugw("velocity feedback unavailable, using static limits", "error", err)
		} else {
			hasFeedback = true
			angularSpeed = angular
			ceiling = math.Min(linear+c.cfg.Limits.AccLimX*c.cfg.AccDT, c.maxVelX)
			ceiling = math.Max(ceiling, c.cfg.Limits.MinVelX)
		}
	}
	c.law.SetVelocityLimits(c.cfg.Limits.MinVelX, ceiling, c.cfg.Limits.MaxVelTheta)

	// Within position tolerance of the goal: only rotate to its heading.
	goal := c.plan.Goal()
	if robot.DistanceTo(goal) < c.cfg.XYGoalTolerance {
		c.state = StateRotatingToGoal
		cmd, yawErr := rotateTowards(robot.Inverse().Compose(goal), c.cfg, angularSpeed, hasFeedback)
		if math.Abs(yawErr) <= c.cfg.YawGoalTolerance {
			c.state = StateGoalReached
		}
		return cmd, nil
	}
	c.state = StateTracking

	maxSteps := int(4*c.cfg.MaxLookahead/c.grid.Resolution()) + 1
	if maxSteps < minSimSteps {
		maxSteps = minSimSteps
	}

	scan := newLookaheadScan(c.plan, robot, c.cfg.MaxLookahead)
	for {
		target, index, err := scan.Next()
		if err != nil {
			return Command{}, err
		}
		targetInBase := robot.Inverse().Compose(target)

		// A freshly set path may first require rotating to face it.
		if c.freshPlan && c.cfg.InitialRotateTolerance > 0 {
			cmd, yawErr := rotateTowards(targetInBase, c.cfg, angularSpeed, hasFeedback)
			if math.Abs(yawErr) >= c.cfg.InitialRotateTolerance {
				return cmd, nil
			}
			c.logger.Debug("done rotating towards path")
			c.freshPlan = false
		}

		cmd, rollout, err := simulateApproach(ctx, targetInBase, c.law, c.grid, robot, maxSteps)
		if err != nil {
			if errors.Is(err, errCollision) {
				c.logger.Debugw("lookahead target rejected", "index", index)
				continue
			}
			return Command{}, err
		}
		c.localPlan = rollout
		return cmd, nil
	}
}
