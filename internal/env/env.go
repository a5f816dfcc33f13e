// Package env exposes the car simulator as a step-based MDP environment:
// reset regenerates a seeded track, step applies one discrete action and
// returns the shaped reward, observe reads the lidar-based state vector.
package env

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/LordKelvin144/ToyCarGym/internal/common"
	"github.com/LordKelvin144/ToyCarGym/internal/lidar"
	"github.com/LordKelvin144/ToyCarGym/internal/physics"
	"github.com/LordKelvin144/ToyCarGym/internal/track"
)

// Config holds the environment parameters. Use DefaultConfig as the base;
// zero-valued nested configs are replaced with their package defaults.
type Config struct {
	Dt                  float64 // simulation time step, s; must be > 0
	CrashReward         float64 // additive reward on crash (normally negative)
	TravelCoeff         float64 // reward per meter of centerline progress
	CenterCoeff         float64 // penalty per squared lateral deviation
	CenterIntegralCoeff float64 // penalty per time-integrated squared deviation
	ObserveDelta        bool    // include the steering angle in observations
	ObserveSpeed        bool    // include the speed in observations

	Car   physics.Config
	Lidar lidar.Config
	Track track.Config
}

// DefaultConfig mirrors the historical simulator defaults.
func DefaultConfig() Config {
	return Config{
		Dt:          0.1,
		CrashReward: -100.0,
		TravelCoeff: 1.0,
		CenterCoeff: 0.5,
		Car:         physics.DefaultConfig(),
		Lidar:       lidar.DefaultConfig(),
		Track:       track.DefaultConfig(),
	}
}

// Environment owns one simulation: the RNG, the current track and its
// spatial index, the vehicle state, and the episode counters. Instances are
// fully independent; a single instance must only be driven sequentially.
type Environment struct {
	cfg    Config
	rng    *rand.Rand
	sensor *lidar.Array

	// Track and index are rebuilt together as one unit on every reset.
	trk   *track.Track
	index *track.SpatialIndex

	car          physics.State
	t            float64 // elapsed simulated time, s
	i            int     // step counter
	done         bool
	integral     float64 // running integral of squared lateral deviation
	lastProgress float64
}

// New validates the config and returns a ready environment seeded with seed.
// The first track is generated immediately.
func New(cfg Config, seed int64) (*Environment, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Car == (physics.Config{}) {
		cfg.Car = physics.DefaultConfig()
	}
	if cfg.Lidar.HalfFanDeg == nil && cfg.Lidar.MaxRange == 0 {
		cfg.Lidar = lidar.DefaultConfig()
	}

	e := &Environment{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
		sensor: lidar.NewArray(cfg.Lidar),
	}
	e.rebuild()
	return e, nil
}

// Reset starts a new episode on a fresh track drawn from the environment's
// existing RNG stream.
func (e *Environment) Reset() {
	e.rebuild()
}

// ResetSeed reseeds the RNG before starting a new episode, making the
// following trajectory reproducible.
func (e *Environment) ResetSeed(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
	e.rebuild()
}

// rebuild regenerates the track and index and puts the car at the start
// pose: on the centerline at s=0, heading along the track, stopped, wheels
// straight.
func (e *Environment) rebuild() {
	e.trk = track.Generate(e.rng, e.cfg.Track)
	e.index = track.NewSpatialIndex(e.trk)

	pos, heading := e.trk.StartPose()
	e.car = physics.State{Pos: pos, Heading: heading}
	e.t = 0
	e.i = 0
	e.done = false
	e.integral = 0
	e.lastProgress, _ = e.trk.NearestProgress(pos)
}

// Step applies one discrete action for Dt seconds and returns the shaped
// reward and the terminal flag. On any error the environment is unchanged.
func (e *Environment) Step(action int) (reward float64, done bool, err error) {
	if e.done {
		return 0, true, fmt.Errorf("%w: call Reset before stepping again", ErrEpisodeFinished)
	}
	a, ok := physics.ActionFromInt(action)
	if !ok {
		return 0, false, fmt.Errorf("%w: %d is outside [0, %d]", ErrInvalidAction, action, int(physics.ActionCount)-1)
	}

	next := physics.Step(e.car, a, e.cfg.Dt, e.cfg.Car)

	s, d := e.trk.NearestProgress(next.Pos)
	progress := wrapDelta(s-e.lastProgress, e.trk.TotalLength())
	integral := e.integral + d*d*e.cfg.Dt
	crashed := e.clearance(next.Pos, d) <= 0

	reward = e.cfg.TravelCoeff*progress - e.cfg.CenterCoeff*d*d - e.cfg.CenterIntegralCoeff*integral
	if crashed {
		reward += e.cfg.CrashReward
	}

	e.car = next
	e.lastProgress = s
	e.integral = integral
	e.done = crashed
	e.t += e.cfg.Dt
	e.i++
	return reward, e.done, nil
}

// clearance is the signed distance from the vehicle center to the nearest
// boundary: positive inside the corridor, negative once the centerline
// deviation exceeds the half-width. Crash at clearance <= 0.
func (e *Environment) clearance(pos common.Vec2, lateral float64) float64 {
	dist := e.index.NearestSegmentDistance(pos)
	if math.Abs(lateral) >= e.trk.HalfWidth {
		return -dist
	}
	return dist
}

// wrapDelta maps an arc-length difference on a closed loop of the given
// circumference into (-total/2, total/2], so progress across the start line
// stays continuous and reversing yields negative progress.
func wrapDelta(delta, total float64) float64 {
	delta = math.Mod(delta, total)
	if delta > total/2 {
		delta -= total
	} else if delta <= -total/2 {
		delta += total
	}
	return delta
}

// ObservationDim is the length of the vector returned by Observe.
func (e *Environment) ObservationDim() int {
	dim := e.sensor.NRays()
	if e.cfg.ObserveDelta {
		dim++
	}
	if e.cfg.ObserveSpeed {
		dim++
	}
	return dim
}

// Observe returns the current observation: the lidar scan, optionally
// followed by the steering angle and the speed. The slice is freshly
// allocated on every call.
func (e *Environment) Observe() []float64 {
	obs := make([]float64, 0, e.ObservationDim())
	obs = append(obs, e.sensor.Scan(e.car.Pos, e.car.Heading, e.index)...)
	if e.cfg.ObserveDelta {
		obs = append(obs, e.car.Steer)
	}
	if e.cfg.ObserveSpeed {
		obs = append(obs, e.car.Speed)
	}
	return obs
}

// Dt returns the configured time step.
func (e *Environment) Dt() float64 { return e.cfg.Dt }

// T returns the elapsed simulated time of the current episode.
func (e *Environment) T() float64 { return e.t }

// I returns the step counter of the current episode.
func (e *Environment) I() int { return e.i }

// Graphics is a flat numeric snapshot of the scene for rendering clients:
// the vehicle footprint corners and the lidar ray endpoints. Plain float
// aggregates only, since it crosses into foreign calling conventions.
type Graphics struct {
	CarX, CarY                 [4]float64
	LidarCenterX, LidarCenterY float64
	LidarX, LidarY             []float64
}

// GraphicsState assembles the current Graphics snapshot. Pure read.
func (e *Environment) GraphicsState() Graphics {
	g := Graphics{
		LidarCenterX: e.car.Pos.X,
		LidarCenterY: e.car.Pos.Y,
		LidarX:       make([]float64, e.sensor.NRays()),
		LidarY:       make([]float64, e.sensor.NRays()),
	}
	g.CarX, g.CarY = physics.Corners(e.car, e.cfg.Car)

	scan := e.sensor.Scan(e.car.Pos, e.car.Heading, e.index)
	for i, dist := range scan {
		end := e.car.Pos.Add(e.sensor.Direction(i, e.car.Heading).Scale(dist))
		g.LidarX[i] = end.X
		g.LidarY[i] = end.Y
	}
	return g
}

// RoadExport holds resampled boundary polylines as flat coordinate slices,
// n_segments+1 points per side.
type RoadExport struct {
	LeftX, LeftY, RightX, RightY []float64
}

// ExportRoad resamples the analytic boundary curves into nSegments+1 points
// per side. The sampling is independent of the internal collision
// resolution. Pure read.
func (e *Environment) ExportRoad(nSegments int) (RoadExport, error) {
	if nSegments <= 0 {
		return RoadExport{}, fmt.Errorf("%w: n_segments must be positive, got %d", ErrInvalidConfig, nSegments)
	}
	left, right := e.trk.SampleBoundaries(nSegments)

	export := RoadExport{
		LeftX:  make([]float64, len(left)),
		LeftY:  make([]float64, len(left)),
		RightX: make([]float64, len(right)),
		RightY: make([]float64, len(right)),
	}
	for i, p := range left {
		export.LeftX[i] = p.X
		export.LeftY[i] = p.Y
	}
	for i, p := range right {
		export.RightX[i] = p.X
		export.RightY[i] = p.Y
	}
	return export, nil
}
