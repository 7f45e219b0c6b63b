package follower

import (
	"math"

	"go.viam.com/graceful/spatialmath"
)

// GoalReached reports whether current is within both tolerances of goal. The
// yaw comparison uses the shortest angular distance, so headings of pi and
// -pi are identical.
func GoalReached(current, goal spatialmath.Pose2D, xyTolerance, yawTolerance float64) bool {
	if current.DistanceTo(goal) > xyTolerance {
		return false
	}
	return math.Abs(spatialmath.ShortestAngularDistance(current.Theta, goal.Theta)) <= yawTolerance
}
