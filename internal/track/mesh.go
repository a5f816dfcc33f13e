package track

import (
	"math"

	"github.com/LordKelvin144/ToyCarGym/internal/common"
)

// Waypoint represents a sampled point on the track centerline.
type Waypoint struct {
	Position common.Vec2 // World coordinates (x, y)
	Tangent  common.Vec2 // Unit vector along the direction of travel
	Normal   common.Vec2 // Unit vector perpendicular to the track direction (pointing left)
	Distance float64     // Arc length from the start (s-coordinate)
}

// Mesh is the curvilinear coordinate system of the track: centerline
// waypoints spaced uniformly in arc length.
type Mesh struct {
	Waypoints []Waypoint
	TotalLen  float64
}

// NewMesh samples count waypoints from the centerline at equal arc-length
// spacing.
func NewMesh(center *Spline, count int) *Mesh {
	total := center.TotalLength()
	ds := total / float64(count)

	waypoints := make([]Waypoint, count)
	for i := range waypoints {
		s := float64(i) * ds
		u := center.UAtLength(s)
		tangent := center.Tangent(u)
		waypoints[i] = Waypoint{
			Position: center.Point(u),
			Tangent:  tangent,
			Normal:   tangent.Perp(),
			Distance: s,
		}
	}
	return &Mesh{Waypoints: waypoints, TotalLen: total}
}

// ClosestWaypoint finds the waypoint closest to the given world position.
// Returns the waypoint and its index.
func (m *Mesh) ClosestWaypoint(pos common.Vec2) (Waypoint, int) {
	minDistSq := math.MaxFloat64
	closestIdx := 0

	for i, wp := range m.Waypoints {
		distSq := pos.Sub(wp.Position).LenSq()
		if distSq < minDistSq {
			minDistSq = distSq
			closestIdx = i
		}
	}
	return m.Waypoints[closestIdx], closestIdx
}

// Frenet converts world (x, y) to track coordinates (s, d).
// s: arc-length progress along the centerline, wrapped into [0, TotalLen).
// d: lateral offset (positive = left of center, negative = right).
func (m *Mesh) Frenet(pos common.Vec2) (s, d float64) {
	wp, _ := m.ClosestWaypoint(pos)

	delta := pos.Sub(wp.Position)

	// Project onto the tangent to refine s between waypoints, and onto
	// the normal for the lateral offset.
	s = wrap(wp.Distance+delta.Dot(wp.Tangent), m.TotalLen)
	d = delta.Dot(wp.Normal)
	return s, d
}
