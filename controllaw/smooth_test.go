package controllaw

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func testConfig() SmoothConfig {
	return SmoothConfig{
		K1:          2.0,
		K2:          1.0,
		MinVelX:     0.1,
		MaxVelX:     0.5,
		MaxVelTheta: 1.0,
		Beta:        0.4,
		Lambda:      2.0,
	}
}

func TestApproachStraightAhead(t *testing.T) {
	law := NewSmooth(testConfig())
	v, w, err := law.Approach(2, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldAlmostEqual, 0.5)
	test.That(t, w, test.ShouldAlmostEqual, 0)
}

func TestApproachTurnsTowardTarget(t *testing.T) {
	law := NewSmooth(testConfig())

	v, w, err := law.Approach(1, 1, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldBeGreaterThan, 0)
	test.That(t, w, test.ShouldBeGreaterThan, 0)

	v, w, err = law.Approach(1, -1, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldBeGreaterThan, 0)
	test.That(t, w, test.ShouldBeLessThan, 0)
}

func TestApproachRespectsLimits(t *testing.T) {
	law := NewSmooth(testConfig())
	for _, target := range [][3]float64{
		{2, 0, 0},
		{0.5, 0.5, math.Pi / 2},
		{0.1, -0.4, -math.Pi / 3},
		{-1, 0.2, math.Pi},
	} {
		v, w, err := law.Approach(target[0], target[1], target[2])
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v, test.ShouldBeLessThanOrEqualTo, 0.5)
		test.That(t, math.Abs(w), test.ShouldBeLessThanOrEqualTo, 1.0)
	}
}

func TestApproachAngularBoundPreservesCurvature(t *testing.T) {
	cfg := testConfig()
	cfg.MaxVelTheta = 0.2
	law := NewSmooth(cfg)

	// A hard turn: the unbounded angular command would exceed the limit, so
	// the linear velocity must shrink to hold the same arc.
	unbounded := NewSmooth(testConfig())
	v0, w0, err := unbounded.Approach(0.3, 0.3, math.Pi/2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, math.Abs(w0), test.ShouldBeGreaterThan, 0.2)

	v, w, err := law.Approach(0.3, 0.3, math.Pi/2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, math.Abs(w), test.ShouldAlmostEqual, 0.2)
	test.That(t, w/v, test.ShouldAlmostEqual, w0/v0, 1e-9)
}

func TestApproachSlowsNearTarget(t *testing.T) {
	law := NewSmooth(testConfig())
	vFar, _, err := law.Approach(2, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	vNear, _, err := law.Approach(0.2, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, vNear, test.ShouldBeLessThan, vFar)
	// Still at least the minimum.
	test.That(t, vNear, test.ShouldBeGreaterThanOrEqualTo, 0.1)
}

func TestApproachDegenerateTarget(t *testing.T) {
	law := NewSmooth(testConfig())
	_, _, err := law.Approach(0, 0, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSetVelocityLimits(t *testing.T) {
	law := NewSmooth(testConfig())
	law.SetVelocityLimits(0.05, 0.25, 0.5)
	v, w, err := law.Approach(2, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldAlmostEqual, 0.25)
	test.That(t, math.Abs(w), test.ShouldBeLessThanOrEqualTo, 0.5)
}
