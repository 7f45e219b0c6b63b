// Package main runs the graceful follower closed-loop against a YAML
// scenario, integrating commanded velocities through ideal unicycle
// kinematics until the goal is reached.
package main

import (
	"context"
	"math"
	"os"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
	"gopkg.in/yaml.v3"

	"go.viam.com/graceful/costmap"
	"go.viam.com/graceful/follower"
	"go.viam.com/graceful/spatialmath"
)

var logger = golog.NewDevelopmentLogger("graceful_simulate")

func main() {
	goutils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ScenarioFile string  `flag:"0,required,usage=path to the scenario YAML"`
	Rate         float64 `flag:"rate,default=20,usage=control rate in Hz"`
	Timeout      float64 `flag:"timeout,default=120,usage=seconds before giving up on the goal"`
}

type rectangle struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

type gridSpec struct {
	Width      int         `yaml:"width"`
	Height     int         `yaml:"height"`
	Resolution float64     `yaml:"resolution"`
	OriginX    float64     `yaml:"origin_x"`
	OriginY    float64     `yaml:"origin_y"`
	Obstacles  []rectangle `yaml:"obstacles"`
}

type point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type startSpec struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Theta float64 `yaml:"theta"`
}

type scenario struct {
	Grid      gridSpec        `yaml:"grid"`
	Start     startSpec       `yaml:"start"`
	Path      []point         `yaml:"path"`
	GoalTheta float64         `yaml:"goal_theta"`
	Config    follower.Config `yaml:"config"`
}

func loadScenario(path string) (*scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := &scenario{Config: follower.DefaultConfig()}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, errors.WithMessage(err, "invalid scenario file")
	}
	if len(sc.Path) == 0 {
		return nil, errors.New("scenario must supply a path")
	}
	return sc, nil
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) (err error) {
	var argsParsed Arguments
	if err := goutils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.Rate <= 0 {
		return errors.New("rate must be positive")
	}

	sc, err := loadScenario(argsParsed.ScenarioFile)
	if err != nil {
		return err
	}

	grid, err := costmap.New(sc.Grid.Width, sc.Grid.Height, sc.Grid.Resolution, sc.Grid.OriginX, sc.Grid.OriginY)
	if err != nil {
		return err
	}
	for _, obstacle := range sc.Grid.Obstacles {
		grid.SetObstacle(obstacle.MinX, obstacle.MinY, obstacle.MaxX, obstacle.MaxY)
	}

	period := time.Duration(float64(time.Second) / argsParsed.Rate)
	robot := newIdealRobot(spatialmath.NewPose2D(sc.Start.X, sc.Start.Y, sc.Start.Theta), period)

	ctrl, err := follower.New(sc.Config, grid, robot, logger, follower.WithOdometry(robot))
	if err != nil {
		return err
	}
	points := make([]r3.Vector, 0, len(sc.Path))
	for _, pt := range sc.Path {
		points = append(points, r3.Vector{X: pt.X, Y: pt.Y})
	}
	if err := ctrl.SetPlan(points, sc.GoalTheta); err != nil {
		return err
	}

	runner := follower.NewRunner(ctrl, robot, period, logger)
	runner.Start()
	defer func() {
		err = multierr.Combine(err, runner.Close(ctx))
	}()

	deadline := time.Now().Add(time.Duration(argsParsed.Timeout * float64(time.Second)))
	goutils.ContextMainReadyFunc(ctx)()
	for {
		if !goutils.SelectContextOrWait(ctx, 5*period) {
			return ctx.Err()
		}
		reached, err := ctrl.IsGoalReached(ctx)
		if err != nil {
			return err
		}
		pose := robot.pose2D()
		logger.Infow("robot state",
			"x", pose.X, "y", pose.Y, "theta", pose.Theta, "state", ctrl.State().String())
		if reached {
			logger.Info("goal reached")
			return nil
		}
		if time.Now().After(deadline) {
			return errors.New("timed out before reaching the goal")
		}
	}
}

// idealRobot integrates velocity commands through unicycle kinematics; it
// plays localizer, odometry, and base all at once.
type idealRobot struct {
	mu     sync.Mutex
	pose   spatialmath.Pose2D
	cmd    follower.Command
	period time.Duration
}

func newIdealRobot(start spatialmath.Pose2D, period time.Duration) *idealRobot {
	return &idealRobot{pose: start, period: period}
}

func (r *idealRobot) CurrentPose(ctx context.Context) (spatialmath.Pose2D, error) {
	return r.pose2D(), nil
}

func (r *idealRobot) Velocity(ctx context.Context) (float64, float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd.LinearX, r.cmd.AngularZ, nil
}

func (r *idealRobot) SetVelocity(ctx context.Context, cmd follower.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dt := r.period.Seconds()
	r.pose = spatialmath.NewPose2D(
		r.pose.X+dt*cmd.LinearX*math.Cos(r.pose.Theta),
		r.pose.Y+dt*cmd.LinearX*math.Sin(r.pose.Theta),
		r.pose.Theta+dt*cmd.AngularZ,
	)
	r.cmd = cmd
	return nil
}

func (r *idealRobot) pose2D() spatialmath.Pose2D {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pose
}
