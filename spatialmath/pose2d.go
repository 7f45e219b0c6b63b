// Package spatialmath implements the planar pose math used by the follower:
// pose composition, frame inversion, and angle normalization.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// Pose2D is a position and heading in some fixed reference frame. Theta is
// always wrapped to (-pi, pi].
type Pose2D struct {
	X     float64
	Y     float64
	Theta float64
}

// NewPose2D returns a pose with the heading wrapped.
func NewPose2D(x, y, theta float64) Pose2D {
	return Pose2D{X: x, Y: y, Theta: WrapToPi(theta)}
}

// NewPose2DFromPoint returns a pose at the given point with zero heading. Z is
// ignored for planar work.
func NewPose2DFromPoint(pt r3.Vector) Pose2D {
	return Pose2D{X: pt.X, Y: pt.Y}
}

// Point returns the position of p as an r3.Vector with Z=0.
func (p Pose2D) Point() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y}
}

// Compose treats p as a frame and returns q, currently expressed in that
// frame, expressed in p's parent frame.
func (p Pose2D) Compose(q Pose2D) Pose2D {
	sin, cos := math.Sincos(p.Theta)
	return Pose2D{
		X:     p.X + q.X*cos - q.Y*sin,
		Y:     p.Y + q.X*sin + q.Y*cos,
		Theta: WrapToPi(p.Theta + q.Theta),
	}
}

// Inverse returns the pose that composes with p to yield the identity.
func (p Pose2D) Inverse() Pose2D {
	sin, cos := math.Sincos(p.Theta)
	return Pose2D{
		X:     -(p.X*cos + p.Y*sin),
		Y:     p.X*sin - p.Y*cos,
		Theta: WrapToPi(-p.Theta),
	}
}

// DistanceTo returns the planar Euclidean distance between two poses.
func (p Pose2D) DistanceTo(q Pose2D) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}
