package controllaw

import (
	"math"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/graceful/spatialmath"
)

// slowdownRadius is the range to target inside which linear velocity is
// additionally capped by the remaining distance, avoiding overshoot.
const slowdownRadius = 0.75

// SmoothConfig holds the gains of the smooth approach law. K1 and K2 shape
// the convergence onto the approach manifold; Beta and Lambda shape how
// aggressively linear velocity is reduced on tight curvature.
type SmoothConfig struct {
	K1          float64 `yaml:"k1"`
	K2          float64 `yaml:"k2"`
	MinVelX     float64 `yaml:"min_vel_x"`
	MaxVelX     float64 `yaml:"max_vel_x"`
	MaxVelTheta float64 `yaml:"max_vel_theta"`
	Beta        float64 `yaml:"beta"`
	Lambda      float64 `yaml:"lambda"`
}

// Smooth steers toward a target pose by regulating the curvature of the
// robot's arc in egocentric polar coordinates, slowing down on tight turns
// and on final approach.
type Smooth struct {
	mu          sync.Mutex
	k1          float64
	k2          float64
	beta        float64
	lambda      float64
	minVelX     float64
	maxVelX     float64
	maxVelTheta float64
}

// NewSmooth returns a smooth approach law with the given gains and initial
// velocity limits.
func NewSmooth(cfg SmoothConfig) *Smooth {
	return &Smooth{
		k1:          cfg.K1,
		k2:          cfg.K2,
		beta:        cfg.Beta,
		lambda:      cfg.Lambda,
		minVelX:     cfg.MinVelX,
		maxVelX:     cfg.MaxVelX,
		maxVelTheta: cfg.MaxVelTheta,
	}
}

// SetVelocityLimits adjusts the velocity bounds the law may command.
func (s *Smooth) SetVelocityLimits(minLinear, maxLinear, maxAngular float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minVelX = minLinear
	s.maxVelX = maxLinear
	s.maxVelTheta = maxAngular
}

// Approach returns the velocity command steering toward the target pose
// (x, y, theta) expressed in the robot frame. It errors on degenerate
// geometry, such as a target coincident with the robot.
func (s *Smooth) Approach(x, y, theta float64) (float64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := math.Hypot(x, y)
	if r < 1e-6 {
		return 0, 0, errors.New("approach target is coincident with the robot")
	}

	// Egocentric polar coordinates: delta is the robot heading relative to
	// the line of sight, thetaLOS the target heading relative to it.
	delta := math.Atan2(-y, x)
	thetaLOS := spatialmath.WrapToPi(theta + delta)

	k1t := s.k1 * thetaLOS
	virtual := math.Atan(-k1t)
	curvature := -1.0 / r * (s.k2*(delta-virtual) + (1+s.k1/(1+k1t*k1t))*math.Sin(delta))

	// Slow down on tight curvature, and near the target cap velocity by the
	// remaining distance.
	v := s.maxVelX / (1 + s.beta*math.Pow(math.Abs(curvature), s.lambda))
	if r < slowdownRadius {
		v = math.Max(s.minVelX, math.Min(math.Min(r, s.maxVelX), v))
	} else {
		v = math.Min(s.maxVelX, math.Max(s.minVelX, v))
	}

	w := curvature * v
	if math.Abs(w) > s.maxVelTheta {
		// Scale the linear velocity down with the angular so the commanded
		// arc still follows the curvature.
		bounded := math.Copysign(s.maxVelTheta, w)
		v *= bounded / w
		w = bounded
	}

	if math.IsNaN(v) || math.IsNaN(w) || math.IsInf(v, 0) || math.IsInf(w, 0) {
		return 0, 0, errors.Errorf("approach produced a non-finite command for target (%f, %f, %f)", x, y, theta)
	}
	return v, w, nil
}
