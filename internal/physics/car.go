package physics

import (
	"math"

	"github.com/LordKelvin144/ToyCarGym/internal/common"
)

// Action is one of the five discrete controls applied for a full time step.
type Action int

const (
	ActionSteerLeft Action = iota
	ActionSteerRight
	ActionAccelerate
	ActionBrake
	ActionCoast
	ActionCount
)

// ActionFromInt converts the external integer encoding to an Action.
// ok is false for integers outside [0, ActionCount).
func ActionFromInt(i int) (Action, bool) {
	if i < 0 || i >= int(ActionCount) {
		return 0, false
	}
	return Action(i), true
}

// Config holds the vehicle parameters of the bicycle model.
type Config struct {
	Wheelbase float64 // distance between axles, m
	Width     float64 // footprint width, m
	Length    float64 // footprint length, m
	MaxSpeed  float64 // forward speed cap, m/s
	MaxSteer  float64 // steering angle cap, rad
	SteerRate float64 // steering actuation rate, rad/s
	Accel     float64 // throttle acceleration, m/s²
	Brake     float64 // braking deceleration, m/s²
	Drag      float64 // coasting deceleration, m/s²
}

// DefaultConfig returns the stock vehicle.
func DefaultConfig() Config {
	return Config{
		Wheelbase: 2.5,
		Width:     1.8,
		Length:    4.0,
		MaxSpeed:  15.0,
		MaxSteer:  0.5,
		SteerRate: 2.0,
		Accel:     6.0,
		Brake:     8.0,
		Drag:      1.0,
	}
}

// State is the vehicle pose: rear-axle position, heading, scalar forward
// speed and steering angle. Values are plain so states copy freely.
type State struct {
	Pos     common.Vec2
	Heading float64 // rad, counter-clockwise from +x
	Speed   float64 // m/s, clamped to [0, MaxSpeed]
	Steer   float64 // rad, clamped to [-MaxSteer, MaxSteer]; positive steers left
}

// Step applies one discrete action for dt seconds and integrates the
// kinematic bicycle model, returning the new state.
//
// The pose update follows the exact circular arc swept during the step
// (turn radius Wheelbase/tan(steer), swept angle arc/radius), switching to
// a series expansion for small angles where 1/radius is ill-conditioned.
// Unlike explicit Euler this cannot diverge: the heading change and the
// displacement are both bounded by the arc length for any dt.
func Step(s State, a Action, dt float64, cfg Config) State {
	prevSpeed := s.Speed

	switch a {
	case ActionSteerLeft:
		s.Steer = clamp(s.Steer+cfg.SteerRate*dt, -cfg.MaxSteer, cfg.MaxSteer)
	case ActionSteerRight:
		s.Steer = clamp(s.Steer-cfg.SteerRate*dt, -cfg.MaxSteer, cfg.MaxSteer)
	case ActionAccelerate:
		s.Speed = clamp(s.Speed+cfg.Accel*dt, 0, cfg.MaxSpeed)
	case ActionBrake:
		s.Speed = clamp(s.Speed-cfg.Brake*dt, 0, cfg.MaxSpeed)
	case ActionCoast:
		s.Speed = math.Max(0, s.Speed-cfg.Drag*dt)
	}

	// Arc length traveled at the midpoint speed.
	arc := 0.5 * (prevSpeed + s.Speed) * dt
	invRadius := math.Tan(s.Steer) / cfg.Wheelbase
	swept := arc * invRadius
	phi := math.Abs(swept)

	forwardDir := common.FromAngle(s.Heading)
	leftDir := forwardDir.Perp()

	var forward, left float64
	if phi > 1 {
		// Large swept angle: evaluate the circle directly.
		radius := 1 / math.Abs(invRadius)
		forward = radius * math.Sin(phi)
		left = radius * (1 - math.Cos(phi))
		if swept < 0 {
			left = -left
		}
	} else {
		// Small angle: series expansion of the same circle.
		// forward = R*sin(phi) = arc*(1 - phi²/6 + O(phi⁴))
		// left    = R*(1-cos(phi)) = arc*phi/2 + O(phi³)
		forward = arc * (1 - phi*phi/6)
		left = 0.5 * arc * swept
	}

	s.Pos = s.Pos.Add(forwardDir.Scale(forward)).Add(leftDir.Scale(left))
	s.Heading = wrapAngle(s.Heading + swept)
	return s
}

// Corners returns the four footprint corners of the vehicle in world space,
// ordered front-right, front-left, rear-left, rear-right.
func Corners(s State, cfg Config) (xs, ys [4]float64) {
	halfW := cfg.Width / 2
	halfL := cfg.Length / 2
	cosH := math.Cos(s.Heading)
	sinH := math.Sin(s.Heading)

	offsets := [4][2]float64{
		{halfL, -halfW},  // Front Right
		{halfL, halfW},   // Front Left
		{-halfL, halfW},  // Rear Left
		{-halfL, -halfW}, // Rear Right
	}
	for i, off := range offsets {
		xs[i] = s.Pos.X + off[0]*cosH - off[1]*sinH
		ys[i] = s.Pos.Y + off[0]*sinH + off[1]*cosH
	}
	return xs, ys
}

// wrapAngle maps an angle into (-pi, pi].
func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
