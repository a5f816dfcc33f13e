package track

import (
	"math"
	"math/rand"

	"github.com/LordKelvin144/ToyCarGym/internal/common"
)

// Config controls procedural track generation. Zero values fall back to the
// defaults below.
type Config struct {
	ControlPoints   int     // centerline control points drawn per attempt
	BaseRadius      float64 // nominal loop radius, m
	MinRadiusScale  float64 // lower bound of the radius draw, fraction of BaseRadius
	MaxRadiusScale  float64 // upper bound of the radius draw, fraction of BaseRadius
	HalfWidth       float64 // centerline-to-boundary offset, m
	MeshPoints      int     // waypoints in the centerline mesh
	SegmentsPerSide int     // collision segments per boundary side
	MaxRetries      int     // generation attempts before the canonical fallback
	Canonical       bool    // skip generation entirely and use the fixed oval
}

// DefaultConfig returns the generation parameters used throughout.
func DefaultConfig() Config {
	return Config{
		ControlPoints:   12,
		BaseRadius:      30.0,
		MinRadiusScale:  0.7,
		MaxRadiusScale:  1.3,
		HalfWidth:       4.0,
		MeshPoints:      256,
		SegmentsPerSide: 256,
		MaxRetries:      8,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ControlPoints <= 0 {
		c.ControlPoints = d.ControlPoints
	}
	if c.BaseRadius <= 0 {
		c.BaseRadius = d.BaseRadius
	}
	if c.MinRadiusScale <= 0 {
		c.MinRadiusScale = d.MinRadiusScale
	}
	if c.MaxRadiusScale <= 0 {
		c.MaxRadiusScale = d.MaxRadiusScale
	}
	if c.HalfWidth <= 0 {
		c.HalfWidth = d.HalfWidth
	}
	if c.MeshPoints <= 0 {
		c.MeshPoints = d.MeshPoints
	}
	if c.SegmentsPerSide <= 0 {
		c.SegmentsPerSide = d.SegmentsPerSide
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	return c
}

// Segment is a straight piece of a boundary polyline used for collision.
type Segment struct {
	A, B   common.Vec2
	Inward common.Vec2 // unit normal pointing into the track corridor
}

// ClosestPoint returns the point on the segment nearest to p.
func (s Segment) ClosestPoint(p common.Vec2) common.Vec2 {
	ab := s.B.Sub(s.A)
	lenSq := ab.LenSq()
	if lenSq == 0 {
		return s.A
	}
	t := clamp(p.Sub(s.A).Dot(ab)/lenSq, 0, 1)
	return s.A.Add(ab.Scale(t))
}

// Distance returns the distance from p to the segment.
func (s Segment) Distance(p common.Vec2) float64 {
	return p.Dist(s.ClosestPoint(p))
}

// Track is an immutable closed circuit: the centerline spline, its sampled
// waypoint mesh, and the boundary collision segments. Rebuilt wholesale on
// every environment reset.
type Track struct {
	Center    *Spline
	HalfWidth float64
	Mesh      *Mesh
	// Segments holds both boundary polylines back to back:
	// [0, SegmentsPerSide) is the left boundary, the rest the right.
	// The spatial index refers to entries by position in this slice.
	Segments []Segment
}

// Generate draws a closed track from the seeded RNG. Attempts whose offset
// boundaries self-intersect are discarded and redrawn; after MaxRetries the
// fixed canonical track is returned so generation always terminates.
func Generate(rng *rand.Rand, cfg Config) *Track {
	cfg = cfg.withDefaults()
	if cfg.Canonical {
		return Canonical(cfg)
	}

	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		center := drawCenterline(rng, cfg)
		t := build(center, cfg)
		if !t.selfIntersects() {
			return t
		}
	}
	return Canonical(cfg)
}

// Canonical returns the fixed oval circuit used as the generation fallback
// and for reproducible tests.
func Canonical(cfg Config) *Track {
	cfg = cfg.withDefaults()
	scale := cfg.BaseRadius / 10.0
	points := []common.Vec2{
		{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 20},
		{X: -20, Y: 20}, {X: -30, Y: 10}, {X: -20, Y: 0},
	}
	velocities := []common.Vec2{
		{X: 6, Y: 0}, {X: 0, Y: 6}, {X: -6, Y: 0},
		{X: -6, Y: 0}, {X: 0, Y: -6}, {X: 6, Y: 0},
	}
	for i := range points {
		points[i] = points[i].Scale(scale)
		velocities[i] = velocities[i].Scale(scale)
	}
	return build(NewSpline(points, velocities), cfg)
}

// drawCenterline places control points at evenly spaced polar angles with
// randomized radii and fits a closed spline through them. Tangents follow the
// Catmull-Rom rule so the curve stays smooth across control points.
func drawCenterline(rng *rand.Rand, cfg Config) *Spline {
	n := cfg.ControlPoints
	points := make([]common.Vec2, n)
	for i := range points {
		angle := 2 * math.Pi * float64(i) / float64(n)
		scale := cfg.MinRadiusScale + rng.Float64()*(cfg.MaxRadiusScale-cfg.MinRadiusScale)
		points[i] = common.FromAngle(angle).Scale(cfg.BaseRadius * scale)
	}

	velocities := make([]common.Vec2, n)
	for i := range velocities {
		prev := points[(i-1+n)%n]
		next := points[(i+1)%n]
		velocities[i] = next.Sub(prev).Scale(1.0 / 6.0)
	}
	return NewSpline(points, velocities)
}

// build derives the waypoint mesh and boundary segments from a centerline.
func build(center *Spline, cfg Config) *Track {
	t := &Track{
		Center:    center,
		HalfWidth: cfg.HalfWidth,
		Mesh:      NewMesh(center, cfg.MeshPoints),
	}
	left := t.sampleBoundary(cfg.SegmentsPerSide, +1)
	right := t.sampleBoundary(cfg.SegmentsPerSide, -1)

	t.Segments = make([]Segment, 0, 2*cfg.SegmentsPerSide)
	t.Segments = append(t.Segments, polylineSegments(left, t)...)
	t.Segments = append(t.Segments, polylineSegments(right, t)...)
	return t
}

// sampleBoundary samples one boundary side at equal centerline arc-length
// spacing. side is +1 for the left boundary, -1 for the right. The returned
// polyline has n+1 points; the last repeats the first to close the loop.
func (t *Track) sampleBoundary(n int, side float64) []common.Vec2 {
	total := t.Center.TotalLength()
	points := make([]common.Vec2, n+1)
	for i := 0; i < n; i++ {
		s := total * float64(i) / float64(n)
		u := t.Center.UAtLength(s)
		offset := t.Center.Normal(u).Scale(side * t.HalfWidth)
		points[i] = t.Center.Point(u).Add(offset)
	}
	points[n] = points[0]
	return points
}

// polylineSegments converts a closed polyline into collision segments, with
// each segment's inward normal pointing back toward the centerline.
func polylineSegments(points []common.Vec2, t *Track) []Segment {
	segments := make([]Segment, len(points)-1)
	for i := range segments {
		a, b := points[i], points[i+1]
		mid := a.Add(b).Scale(0.5)
		_, d := t.Mesh.Frenet(mid)

		// d > 0 means the midpoint sits left of center, so the corridor
		// lies along -normal from there, and vice versa.
		wp, _ := t.Mesh.ClosestWaypoint(mid)
		toward := wp.Normal
		if d > 0 {
			toward = toward.Scale(-1)
		}
		inward := b.Sub(a).Normalize().Perp()
		if inward.Dot(toward) < 0 {
			inward = inward.Scale(-1)
		}
		segments[i] = Segment{A: a, B: b, Inward: inward}
	}
	return segments
}

// selfIntersects reports whether any two non-adjacent boundary segments
// cross. Offsetting past the centerline's curvature radius produces such
// crossings, which would leave the corridor ill-defined.
func (t *Track) selfIntersects() bool {
	n := len(t.Segments)
	side := n / 2
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if sameSideNeighbors(i, j, side) {
				continue
			}
			if segmentsCross(t.Segments[i], t.Segments[j]) {
				return true
			}
		}
	}
	return false
}

// sameSideNeighbors reports whether segments i and j are adjacent entries of
// the same boundary polyline (including the closing wrap), which share an
// endpoint by construction.
func sameSideNeighbors(i, j, side int) bool {
	if (i < side) != (j < side) {
		return false
	}
	a, b := i%side, j%side
	diff := b - a
	return diff == 1 || diff == side-1
}

// segmentsCross reports proper intersection between two segments.
func segmentsCross(s1, s2 Segment) bool {
	d1 := orientation(s2.A, s2.B, s1.A)
	d2 := orientation(s2.A, s2.B, s1.B)
	d3 := orientation(s1.A, s1.B, s2.A)
	d4 := orientation(s1.A, s1.B, s2.B)
	return d1*d2 < 0 && d3*d4 < 0
}

func orientation(a, b, p common.Vec2) float64 {
	return b.Sub(a).Cross(p.Sub(a))
}

// SampleBoundaries resamples the analytic boundary curves into polylines of
// n+1 points per side for rendering, independent of the collision resolution.
func (t *Track) SampleBoundaries(n int) (left, right []common.Vec2) {
	return t.sampleBoundary(n, +1), t.sampleBoundary(n, -1)
}

// NearestProgress projects a point onto the centerline, returning the
// arc-length progress s in [0, TotalLength) and the signed lateral
// deviation d (positive left of center).
func (t *Track) NearestProgress(p common.Vec2) (s, d float64) {
	return t.Mesh.Frenet(p)
}

// TotalLength is the centerline circumference.
func (t *Track) TotalLength() float64 {
	return t.Center.TotalLength()
}

// StartPose returns the canonical start: on the centerline at s=0, heading
// along the direction of travel.
func (t *Track) StartPose() (pos common.Vec2, heading float64) {
	wp := t.Mesh.Waypoints[0]
	return wp.Position, wp.Tangent.Angle()
}
