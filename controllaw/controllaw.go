// Package controllaw defines the control-law capability consumed by the
// follower, along with the smooth approach law used by default.
package controllaw

// Law converts the pose error to a lookahead target, expressed in the robot's
// frame, into a velocity command. Implementations may carry state between
// calls within one control cycle; the follower replaces the whole instance on
// reconfiguration rather than mutating it.
type Law interface {
	// Approach returns the linear and angular velocity that moves a robot
	// sitting at the origin, facing +x, toward the given pose error.
	Approach(errX, errY, errTheta float64) (linear, angular float64, err error)

	// SetVelocityLimits adjusts the velocity bounds the law may command.
	SetVelocityLimits(minLinear, maxLinear, maxAngular float64)
}
