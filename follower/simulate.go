package follower

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"go.viam.com/graceful/controllaw"
	"go.viam.com/graceful/costmap"
	"go.viam.com/graceful/spatialmath"
)

// minSimVelX is the slowest linear velocity that still makes progress in the
// forward simulation; anything slower would make the integration time step
// blow up.
const minSimVelX = 1e-3

// simulateApproach runs the control law toward the target (expressed in the
// robot frame), forward-simulating unicycle kinematics one grid cell at a
// time and validating each simulated pose against the grid. The returned
// command is always the law's first output, since that is what gets executed
// this cycle; the remainder of the rollout only validates that committing to
// it does not drive into an obstacle. Rejection of the attempt is reported as
// errCollision; control-law failures propagate as ErrControlLawFailure.
func simulateApproach(
	ctx context.Context,
	target spatialmath.Pose2D,
	law controllaw.Law,
	grid costmap.Grid,
	robot spatialmath.Pose2D,
	maxSteps int,
) (Command, []spatialmath.Pose2D, error) {
	step := grid.Resolution()
	var cmd Command
	var rollout []spatialmath.Pose2D

	// The simulated frame starts at the robot (identity) and advances with
	// each accepted step.
	var sim spatialmath.Pose2D
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return Command{}, nil, err
		}
		if i >= maxSteps {
			// The law is not converging on the target; treat it as
			// unreachable rather than looping forever.
			return Command{}, nil, errCollision
		}

		// The target expressed in the current simulated frame.
		poseErr := sim.Inverse().Compose(target)
		velX, velTheta, err := law.Approach(poseErr.X, poseErr.Y, poseErr.Theta)
		if err != nil {
			return Command{}, nil, errors.WithMessage(ErrControlLawFailure, err.Error())
		}

		if i == 0 {
			// The first output is the command actually executed this cycle.
			cmd = Command{LinearX: velX, AngularZ: velTheta}
		} else if math.Hypot(poseErr.X, poseErr.Y) < step {
			// Reached the lookahead target without collision.
			return cmd, rollout, nil
		}

		if velX < minSimVelX {
			// No forward progress is possible toward this target.
			return Command{}, nil, errCollision
		}

		// Integrate one grid cell of travel.
		dt := step / velX
		next := spatialmath.NewPose2D(
			sim.X+dt*velX*math.Cos(sim.Theta),
			sim.Y+dt*velX*math.Sin(sim.Theta),
			sim.Theta+dt*velTheta,
		)
		rollout = append(rollout, next)

		// Validate the new pose in the grid's frame. Off-grid is an
		// unresolvable boundary, treated the same as an obstacle.
		world := robot.Compose(next)
		cellX, cellY, ok := grid.WorldToGrid(world.X, world.Y)
		if !ok {
			return Command{}, nil, errCollision
		}
		if grid.CostAt(cellX, cellY) >= costmap.InscribedObstacle {
			return Command{}, nil, errCollision
		}
		sim = next
	}
}
