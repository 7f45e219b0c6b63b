package follower

import "go.viam.com/graceful/spatialmath"

// lookaheadScan walks path indices from the goal toward the start, yielding
// the farthest waypoint within the lookahead radius. After a candidate is
// rejected the scan resumes just before it, so farther waypoints are never
// revisited within one cycle.
type lookaheadScan struct {
	path         Path
	robot        spatialmath.Pose2D
	maxLookahead float64
	next         int
}

func newLookaheadScan(path Path, robot spatialmath.Pose2D, maxLookahead float64) *lookaheadScan {
	return &lookaheadScan{
		path:         path,
		robot:        robot,
		maxLookahead: maxLookahead,
		next:         len(path) - 1,
	}
}

// Next returns the next candidate target and its path index, or
// ErrNoReachableTarget once all candidates are exhausted.
func (s *lookaheadScan) Next() (spatialmath.Pose2D, int, error) {
	for i := s.next; i >= 0; i-- {
		if s.robot.DistanceTo(s.path[i]) > s.maxLookahead {
			continue
		}
		s.next = i - 1
		return s.path[i], i, nil
	}
	s.next = -1
	return spatialmath.Pose2D{}, 0, ErrNoReachableTarget
}
