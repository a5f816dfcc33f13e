// Package lidar simulates a fixed fan of distance-measuring rays from the
// vehicle to the nearest track boundary.
package lidar

import (
	"math"

	"github.com/LordKelvin144/ToyCarGym/internal/common"
	"github.com/LordKelvin144/ToyCarGym/internal/track"
)

// Config describes the sensor fan. The half fan is mirrored around the
// straight-ahead direction, so the array always has 2*len(HalfFanDeg)+1 rays.
type Config struct {
	HalfFanDeg []float64 // positive ray angles, degrees from straight ahead
	MaxRange   float64   // sensing range cap, m
}

// DefaultConfig returns the stock sensor: 19 rays covering ±120 degrees.
func DefaultConfig() Config {
	return Config{
		HalfFanDeg: []float64{1, 2, 5, 10, 30, 45, 60, 90, 120},
		MaxRange:   50.0,
	}
}

// Array holds the resolved ray angles of a sensor, ordered from the most
// negative (rightmost) to the most positive (leftmost) offset.
type Array struct {
	angles   []float64 // rad, relative to vehicle heading
	maxRange float64
}

// NewArray expands the config's half fan into the full symmetric array.
func NewArray(cfg Config) *Array {
	half := cfg.HalfFanDeg
	angles := make([]float64, 0, 2*len(half)+1)
	for i := len(half) - 1; i >= 0; i-- {
		angles = append(angles, -half[i]*math.Pi/180)
	}
	angles = append(angles, 0)
	for _, a := range half {
		angles = append(angles, a*math.Pi/180)
	}
	return &Array{angles: angles, maxRange: cfg.MaxRange}
}

// NRays returns the number of rays in the array.
func (a *Array) NRays() int {
	return len(a.angles)
}

// MaxRange returns the sensing range cap.
func (a *Array) MaxRange() float64 {
	return a.maxRange
}

// Direction returns the world-space unit direction of ray i for the given
// vehicle heading.
func (a *Array) Direction(i int, heading float64) common.Vec2 {
	return common.FromAngle(heading + a.angles[i])
}

// Scan casts every ray from pos against the spatial index and returns the
// per-ray hit distances, each in [0, MaxRange]. Pure read.
func (a *Array) Scan(pos common.Vec2, heading float64, idx *track.SpatialIndex) []float64 {
	readings := make([]float64, len(a.angles))
	for i := range a.angles {
		readings[i] = idx.QueryRay(pos, a.Direction(i, heading), a.maxRange)
	}
	return readings
}
