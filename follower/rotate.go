package follower

import (
	"math"

	"go.viam.com/graceful/spatialmath"
)

// nearFieldRadius is the range inside which rotateTowards aligns with the
// target's own heading instead of the bearing to it, which would oscillate
// when standing on the target.
const nearFieldRadius = 0.5

// rotateTowards computes an in-place rotation command toward a target pose
// expressed in the robot frame, following a decelerate-to-stop profile
// bounded by the angular acceleration limit. When velocity feedback is
// available the angular ceiling is additionally acceleration-limited from the
// current angular speed. The signed angular error is returned so the caller
// can decide when the rotation phase is complete. Linear velocity is always
// zero.
func rotateTowards(target spatialmath.Pose2D, cfg Config, angularSpeed float64, hasFeedback bool) (Command, float64) {
	yawErr := target.Theta
	if math.Hypot(target.X, target.Y) > nearFieldRadius {
		yawErr = math.Atan2(target.Y, target.X)
	}

	maxVelTheta := cfg.Limits.MaxVelTheta
	if hasFeedback {
		accLimited := math.Abs(angularSpeed) + cfg.Limits.AccLimTheta*cfg.AccDT
		maxVelTheta = math.Min(maxVelTheta, accLimited)
		maxVelTheta = math.Max(maxVelTheta, cfg.MinInPlaceVelTheta)
	}

	speed := math.Sqrt(2 * cfg.Limits.AccLimTheta * math.Abs(yawErr))
	speed = math.Min(maxVelTheta, math.Max(cfg.MinInPlaceVelTheta, speed))
	return Command{AngularZ: math.Copysign(speed, yawErr)}, yawErr
}
