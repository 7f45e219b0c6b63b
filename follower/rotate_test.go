package follower

import (
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/graceful/spatialmath"
)

func TestRotateTowardsBearing(t *testing.T) {
	cfg := DefaultConfig()

	// Far target to the left: positive spin, no translation.
	cmd, yawErr := rotateTowards(spatialmath.NewPose2D(2, 2, 0), cfg, 0, false)
	test.That(t, cmd.LinearX, test.ShouldEqual, 0)
	test.That(t, cmd.AngularZ, test.ShouldBeGreaterThan, 0)
	test.That(t, yawErr, test.ShouldAlmostEqual, math.Pi/4)

	// Far target to the right: negative spin.
	cmd, yawErr = rotateTowards(spatialmath.NewPose2D(2, -2, 0), cfg, 0, false)
	test.That(t, cmd.AngularZ, test.ShouldBeLessThan, 0)
	test.That(t, yawErr, test.ShouldAlmostEqual, -math.Pi/4)
}

func TestRotateTowardsNearField(t *testing.T) {
	cfg := DefaultConfig()

	// Within the near field the target's own heading is used, not the
	// bearing, which would oscillate standing on the point.
	_, yawErr := rotateTowards(spatialmath.NewPose2D(0.1, 0.1, -math.Pi/3), cfg, 0, false)
	test.That(t, yawErr, test.ShouldAlmostEqual, -math.Pi/3)
}

func TestRotateTowardsSpeedProfile(t *testing.T) {
	cfg := DefaultConfig()

	// Large error: clamped to the configured maximum.
	cmd, _ := rotateTowards(spatialmath.NewPose2D(-2, 0.01, 0), cfg, 0, false)
	test.That(t, math.Abs(cmd.AngularZ), test.ShouldAlmostEqual, cfg.Limits.MaxVelTheta)

	// Small error: floored at the minimum in-place speed.
	cmd, _ = rotateTowards(spatialmath.NewPose2D(2, 0.01, 0), cfg, 0, false)
	test.That(t, math.Abs(cmd.AngularZ), test.ShouldAlmostEqual, cfg.MinInPlaceVelTheta)

	// In between: the decelerate-to-stop profile sqrt(2*acc*|err|).
	target := spatialmath.NewPose2D(2, 0.3, 0)
	cmd, yawErr := rotateTowards(target, cfg, 0, false)
	test.That(t, cmd.AngularZ, test.ShouldAlmostEqual, math.Sqrt(2*cfg.Limits.AccLimTheta*math.Abs(yawErr)))
}

func TestRotateTowardsAccelerationCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AccDT = 0.1

	// Standing still with feedback: the ceiling is acc-limited below the
	// configured maximum but never below the in-place minimum.
	cmd, _ := rotateTowards(spatialmath.NewPose2D(-2, 0.01, 0), cfg, 0, true)
	ceiling := math.Max(cfg.Limits.AccLimTheta*cfg.AccDT, cfg.MinInPlaceVelTheta)
	test.That(t, math.Abs(cmd.AngularZ), test.ShouldAlmostEqual, math.Min(ceiling, cfg.Limits.MaxVelTheta))

	// Already spinning fast: back to the configured maximum.
	cmd, _ = rotateTowards(spatialmath.NewPose2D(-2, 0.01, 0), cfg, 5, true)
	test.That(t, math.Abs(cmd.AngularZ), test.ShouldAlmostEqual, cfg.Limits.MaxVelTheta)
}
