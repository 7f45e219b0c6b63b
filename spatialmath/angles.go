package spatialmath

import "math"

// WrapToPi returns theta normalized to the (-pi, pi] range.
func WrapToPi(theta float64) float64 {
	wrapped := math.Mod(theta+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// ShortestAngularDistance returns the signed smallest rotation taking the
// angle from to the angle to.
func ShortestAngularDistance(from, to float64) float64 {
	return WrapToPi(to - from)
}
