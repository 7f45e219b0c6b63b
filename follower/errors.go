package follower

import "github.com/pkg/errors"

var (
	// ErrInvalidPath is returned when a supplied path has no points.
	ErrInvalidPath = errors.New("path must contain at least one point")

	// ErrNoPlan is returned by a control cycle before any plan has been set.
	ErrNoPlan = errors.New("no plan has been set")

	// ErrPoseUnavailable is returned when the localizer cannot produce the
	// robot pose; the cycle is aborted without a command.
	ErrPoseUnavailable = errors.New("could not get the robot pose")

	// ErrNoReachableTarget is returned when every lookahead candidate was
	// rejected; the caller should hold the robot or trigger recovery.
	ErrNoReachableTarget = errors.New("no pose in path was reachable")

	// ErrControlLawFailure is returned when the control law rejects the
	// error geometry for the current target.
	ErrControlLawFailure = errors.New("unable to compute approach")

	// errCollision rejects a single lookahead attempt; it never escapes a
	// full control cycle.
	errCollision = errors.New("simulated trajectory collides")
)
