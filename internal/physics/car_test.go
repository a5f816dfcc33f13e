package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LordKelvin144/ToyCarGym/internal/common"
)

func TestActionFromInt(t *testing.T) {
	for i := 0; i < int(ActionCount); i++ {
		a, ok := ActionFromInt(i)
		require.True(t, ok)
		assert.Equal(t, Action(i), a)
	}
	_, ok := ActionFromInt(-1)
	assert.False(t, ok)
	_, ok = ActionFromInt(int(ActionCount))
	assert.False(t, ok)
}

func TestStraightLineCoasting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Drag = 0 // frictionless: coasting preserves speed

	s := State{Speed: 2}
	for i := 0; i < 10; i++ {
		s = Step(s, ActionCoast, 0.1, cfg)
	}

	// With zero steering the pose update degenerates to straight motion.
	assert.InDelta(t, 2.0, s.Pos.X, 1e-12)
	assert.InDelta(t, 0.0, s.Pos.Y, 1e-12)
	assert.InDelta(t, 0.0, s.Heading, 1e-12)
	assert.Equal(t, 2.0, s.Speed)
}

func TestAccelerationDisplacement(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Accel = 1

	// Accelerating from rest at 1 m/s² for 1s covers 0.5m, and the
	// midpoint-speed arc reproduces that exactly at any step count.
	var s State
	for i := 0; i < 10; i++ {
		s = Step(s, ActionAccelerate, 0.1, cfg)
	}
	assert.InDelta(t, 1.0, s.Speed, 1e-12)
	assert.InDelta(t, 0.5, s.Pos.X, 1e-12)
}

func TestQuarterCircleTurn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Wheelbase = 1
	cfg.MaxSteer = math.Pi / 4
	cfg.Drag = 0

	// tan(pi/4)/wheelbase = 1: unit turn radius. A quarter turn to the
	// left ends at (R, R) heading +y.
	s := State{Speed: 1, Steer: math.Pi / 4}
	dt := math.Pi / 200
	for i := 0; i < 100; i++ {
		s = Step(s, ActionCoast, dt, cfg)
	}

	assert.InDelta(t, 1.0, s.Pos.X, 1e-3)
	assert.InDelta(t, 1.0, s.Pos.Y, 1e-3)
	assert.InDelta(t, math.Pi/2, s.Heading, 1e-6)
}

func TestSteerClamped(t *testing.T) {
	cfg := DefaultConfig()

	var s State
	for i := 0; i < 100; i++ {
		s = Step(s, ActionSteerLeft, 0.1, cfg)
	}
	assert.Equal(t, cfg.MaxSteer, s.Steer)

	for i := 0; i < 200; i++ {
		s = Step(s, ActionSteerRight, 0.1, cfg)
	}
	assert.Equal(t, -cfg.MaxSteer, s.Steer)
}

func TestSpeedClamped(t *testing.T) {
	cfg := DefaultConfig()

	var s State
	for i := 0; i < 1000; i++ {
		s = Step(s, ActionAccelerate, 0.1, cfg)
	}
	assert.Equal(t, cfg.MaxSpeed, s.Speed)

	for i := 0; i < 1000; i++ {
		s = Step(s, ActionBrake, 0.1, cfg)
	}
	assert.Equal(t, 0.0, s.Speed)

	// Coasting at rest stays at rest.
	s = Step(s, ActionCoast, 0.1, cfg)
	assert.Equal(t, 0.0, s.Speed)
}

func TestLargeStepStaysBounded(t *testing.T) {
	cfg := DefaultConfig()

	// Even an absurd dt cannot fling the car further than the arc it
	// drives: the chord of a circular arc never exceeds its length.
	s := State{Speed: cfg.MaxSpeed, Steer: cfg.MaxSteer}
	for _, dt := range []float64{1, 5, 10, 100} {
		next := Step(s, ActionCoast, dt, cfg)
		arc := 0.5 * (s.Speed + next.Speed) * dt
		assert.LessOrEqual(t, next.Pos.Sub(s.Pos).Len(), arc+1e-9, "dt=%v", dt)
	}
}

func TestCorners(t *testing.T) {
	cfg := DefaultConfig()
	s := State{Pos: common.Vec2{X: 10, Y: 5}}

	xs, ys := Corners(s, cfg)
	halfL, halfW := cfg.Length/2, cfg.Width/2

	// FR, FL, RL, RR at heading zero.
	assert.InDelta(t, 10+halfL, xs[0], 1e-12)
	assert.InDelta(t, 5-halfW, ys[0], 1e-12)
	assert.InDelta(t, 10+halfL, xs[1], 1e-12)
	assert.InDelta(t, 5+halfW, ys[1], 1e-12)
	assert.InDelta(t, 10-halfL, xs[2], 1e-12)
	assert.InDelta(t, 5+halfW, ys[2], 1e-12)
	assert.InDelta(t, 10-halfL, xs[3], 1e-12)
	assert.InDelta(t, 5-halfW, ys[3], 1e-12)
}

func TestWrapAngle(t *testing.T) {
	assert.InDelta(t, 0, wrapAngle(2*math.Pi), 1e-12)
	assert.InDelta(t, math.Pi, wrapAngle(math.Pi), 1e-12)
	assert.InDelta(t, math.Pi, wrapAngle(-math.Pi), 1e-12)
	assert.InDelta(t, -math.Pi/2, wrapAngle(3*math.Pi/2), 1e-12)
}
