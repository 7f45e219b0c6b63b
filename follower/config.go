package follower

import (
	"github.com/pkg/errors"

	"go.viam.com/graceful/controllaw"
)

// Limits bounds the velocities and accelerations the follower may command.
type Limits struct {
	MinVelX     float64 `yaml:"min_vel_x"`
	MaxVelX     float64 `yaml:"max_vel_x"`
	MaxVelTheta float64 `yaml:"max_vel_theta"`
	AccLimX     float64 `yaml:"acc_lim_x"`
	AccLimTheta float64 `yaml:"acc_lim_theta"`
}

// Config collects every tunable of the follower. The whole struct is
// hot-swappable through Controller.Reconfigure; it is never mutated field by
// field.
type Config struct {
	Limits Limits `yaml:"limits"`

	// XYGoalTolerance and YawGoalTolerance bound when the goal counts as
	// reached.
	XYGoalTolerance  float64 `yaml:"xy_goal_tolerance"`
	YawGoalTolerance float64 `yaml:"yaw_goal_tolerance"`

	// MinInPlaceVelTheta is the slowest useful in-place rotation speed.
	MinInPlaceVelTheta float64 `yaml:"min_in_place_vel_theta"`

	// MaxLookahead is the farthest a waypoint may be to become the steering
	// target.
	MaxLookahead float64 `yaml:"max_lookahead"`

	// InitialRotateTolerance, when positive, makes the robot rotate toward a
	// freshly set path until the heading error drops below it.
	InitialRotateTolerance float64 `yaml:"initial_rotate_tolerance"`

	// AccDT is the window over which acceleration-limited velocity ceilings
	// are projected from odometry feedback.
	AccDT float64 `yaml:"acc_dt"`

	// Law configures the default smooth approach law.
	Law controllaw.SmoothConfig `yaml:"law"`
}

// DefaultConfig returns a conservative tuning for a small indoor
// differential-drive base.
func DefaultConfig() Config {
	return Config{
		Limits: Limits{
			MinVelX:     0.1,
			MaxVelX:     0.5,
			MaxVelTheta: 1.0,
			AccLimX:     2.5,
			AccLimTheta: 3.2,
		},
		XYGoalTolerance:        0.1,
		YawGoalTolerance:       0.1,
		MinInPlaceVelTheta:     0.4,
		MaxLookahead:           1.0,
		InitialRotateTolerance: 0.25,
		AccDT:                  0.25,
		Law: controllaw.SmoothConfig{
			K1:          2.0,
			K2:          1.0,
			MinVelX:     0.1,
			MaxVelX:     0.5,
			MaxVelTheta: 1.0,
			Beta:        0.4,
			Lambda:      2.0,
		},
	}
}

// Validate checks the configuration for values the follower cannot run with.
func (cfg *Config) Validate() error {
	if cfg.MaxLookahead <= 0 {
		return errors.Errorf("max_lookahead must be positive, got %f", cfg.MaxLookahead)
	}
	if cfg.Limits.MaxVelX <= 0 {
		return errors.Errorf("max_vel_x must be positive, got %f", cfg.Limits.MaxVelX)
	}
	if cfg.Limits.MinVelX < 0 || cfg.Limits.MinVelX > cfg.Limits.MaxVelX {
		return errors.Errorf("min_vel_x must be within [0, max_vel_x], got %f", cfg.Limits.MinVelX)
	}
	if cfg.Limits.MaxVelTheta <= 0 {
		return errors.Errorf("max_vel_theta must be positive, got %f", cfg.Limits.MaxVelTheta)
	}
	if cfg.Limits.AccLimX <= 0 || cfg.Limits.AccLimTheta <= 0 {
		return errors.New("acceleration limits must be positive")
	}
	if cfg.XYGoalTolerance <= 0 || cfg.YawGoalTolerance <= 0 {
		return errors.New("goal tolerances must be positive")
	}
	if cfg.AccDT < 0 {
		return errors.Errorf("acc_dt must not be negative, got %f", cfg.AccDT)
	}
	return nil
}
