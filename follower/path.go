package follower

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/graceful/spatialmath"
)

// Path is an oriented sequence of poses ending at the goal. Paths are only
// ever replaced wholesale, never edited in place.
type Path []spatialmath.Pose2D

// Goal returns the final pose of the path.
func (p Path) Goal() spatialmath.Pose2D {
	return p[len(p)-1]
}

// OrientPath builds a path in which every waypoint but the last points at its
// successor. finalTheta is the goal heading, carried through unchanged. Z
// components of the input points are ignored.
func OrientPath(points []r3.Vector, finalTheta float64) (Path, error) {
	if len(points) == 0 {
		return nil, ErrInvalidPath
	}
	oriented := make(Path, len(points))
	for i := 0; i < len(points)-1; i++ {
		yaw := math.Atan2(points[i+1].Y-points[i].Y, points[i+1].X-points[i].X)
		oriented[i] = spatialmath.NewPose2D(points[i].X, points[i].Y, yaw)
	}
	last := len(points) - 1
	oriented[last] = spatialmath.NewPose2D(points[last].X, points[last].Y, finalTheta)
	return oriented, nil
}
