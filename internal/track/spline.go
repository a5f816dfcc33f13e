package track

import (
	"math"

	"github.com/cnkei/gospline"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"

	"github.com/LordKelvin144/ToyCarGym/internal/common"
)

// Number of quadrature samples used per segment for arc-length integrals.
const arcSamples = 32

// Bezier is a single cubic segment of a track curve, built from Hermite-style
// controls (a point and a velocity at each end). Evaluation uses precomputed
// polynomial coefficients: p(t) = start + c1*t + c2*t^2 + c3*t^3.
type Bezier struct {
	Start, End common.Vec2
	c1, c2, c3 common.Vec2
	length     float64
}

// NewBezier builds the segment from endpoint positions and velocities.
// The interior control points are start+v0 and end-v1, matching tangents
// at both ends so adjacent segments join smoothly.
func NewBezier(start, v0, end, v1 common.Vec2) Bezier {
	p1 := start.Add(v0)
	p2 := end.Sub(v1)

	b := Bezier{
		Start: start,
		End:   end,
		c1:    p1.Sub(start).Scale(3),
		c2:    start.Scale(3).Sub(p1.Scale(6)).Add(p2.Scale(3)),
		c3:    start.Scale(-1).Add(p1.Scale(3)).Sub(p2.Scale(3)).Add(end),
	}
	b.length = b.partialLength(1)
	return b
}

// Point evaluates the curve at t in [0, 1].
func (b Bezier) Point(t float64) common.Vec2 {
	return b.Start.Add(b.c1.Scale(t)).Add(b.c2.Scale(t * t)).Add(b.c3.Scale(t * t * t))
}

// Velocity is the parametric derivative dp/dt.
func (b Bezier) Velocity(t float64) common.Vec2 {
	return b.c1.Add(b.c2.Scale(2 * t)).Add(b.c3.Scale(3 * t * t))
}

// Tangent is the unit direction of travel at t.
func (b Bezier) Tangent(t float64) common.Vec2 {
	return b.Velocity(t).Normalize()
}

// Length returns the full arc length of the segment.
func (b Bezier) Length() float64 {
	return b.length
}

// PartialLength returns the arc length from t=0 to t.
func (b Bezier) PartialLength(t float64) float64 {
	if t >= 1 {
		return b.length
	}
	if t <= 0 {
		return 0
	}
	return b.partialLength(t)
}

// partialLength integrates |velocity| over [0, t] with the trapezoid rule.
func (b Bezier) partialLength(t float64) float64 {
	ts := floats.Span(make([]float64, arcSamples+1), 0, t)
	speeds := make([]float64, len(ts))
	for i, u := range ts {
		speeds[i] = b.Velocity(u).Len()
	}
	return integrate.Trapezoidal(ts, speeds)
}

// Spline is a closed sequence of cubic segments sharing endpoint tangents.
// The curve parameter u runs over [0, len(segments)); segment i covers
// [i, i+1) with local parameter t = u - i.
type Spline struct {
	segments []Bezier
	cumLen   []float64 // cumLen[i] = arc length at the start of segment i
	invArc   gospline.Spline
}

// NewSpline fits a closed spline through the control points with the given
// endpoint velocities. Segment i runs from points[i] to points[(i+1)%n], so
// the curve returns to points[0].
func NewSpline(points, velocities []common.Vec2) *Spline {
	n := len(points)
	segments := make([]Bezier, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		segments[i] = NewBezier(points[i], velocities[i], points[j], velocities[j])
	}

	cumLen := make([]float64, n+1)
	for i, seg := range segments {
		cumLen[i+1] = cumLen[i] + seg.Length()
	}

	s := &Spline{segments: segments, cumLen: cumLen}
	s.invArc = s.fitInverseArc()
	return s
}

// fitInverseArc samples (arc length, parameter) pairs and fits a monotone
// cubic spline so UAtLength can invert the arc-length table without a
// root search per query.
func (s *Spline) fitInverseArc() gospline.Spline {
	const perSegment = 8
	n := len(s.segments)

	xs := make([]float64, 0, n*perSegment+1)
	ys := make([]float64, 0, n*perSegment+1)
	for i, seg := range s.segments {
		for k := 0; k < perSegment; k++ {
			t := float64(k) / perSegment
			xs = append(xs, s.cumLen[i]+seg.PartialLength(t))
			ys = append(ys, float64(i)+t)
		}
	}
	xs = append(xs, s.cumLen[n])
	ys = append(ys, float64(n))
	return gospline.NewMonotoneSpline(xs, ys)
}

// MaxU is the exclusive upper bound of the curve parameter.
func (s *Spline) MaxU() float64 {
	return float64(len(s.segments))
}

// Segments returns the number of cubic segments in the spline.
func (s *Spline) Segments() int {
	return len(s.segments)
}

// segmentAt resolves the parameter u to a segment and its local t.
// u wraps around the closed curve.
func (s *Spline) segmentAt(u float64) (Bezier, int, float64) {
	maxU := s.MaxU()
	u = wrap(u, maxU)
	i := int(u)
	if i >= len(s.segments) {
		i = len(s.segments) - 1
	}
	return s.segments[i], i, u - float64(i)
}

// Point evaluates the curve at parameter u.
func (s *Spline) Point(u float64) common.Vec2 {
	seg, _, t := s.segmentAt(u)
	return seg.Point(t)
}

// Velocity is the parametric derivative at u.
func (s *Spline) Velocity(u float64) common.Vec2 {
	seg, _, t := s.segmentAt(u)
	return seg.Velocity(t)
}

// Tangent is the unit direction of travel at u.
func (s *Spline) Tangent(u float64) common.Vec2 {
	return s.Velocity(u).Normalize()
}

// Normal is the unit left-hand normal at u (tangent rotated 90 degrees CCW).
func (s *Spline) Normal(u float64) common.Vec2 {
	return s.Tangent(u).Perp()
}

// ArcLength returns the distance traveled along the curve from u=0 to u.
func (s *Spline) ArcLength(u float64) float64 {
	seg, i, t := s.segmentAt(u)
	return s.cumLen[i] + seg.PartialLength(t)
}

// TotalLength is the full circumference of the closed curve.
func (s *Spline) TotalLength() float64 {
	return s.cumLen[len(s.segments)]
}

// UAtLength inverts ArcLength: it returns the parameter at which the given
// arc length is reached. The input wraps around the circumference.
func (s *Spline) UAtLength(arc float64) float64 {
	arc = wrap(arc, s.TotalLength())
	return clamp(s.invArc.At(arc), 0, s.MaxU())
}

// wrap maps v into [0, period).
func wrap(v, period float64) float64 {
	v = math.Mod(v, period)
	if v < 0 {
		v += period
	}
	return v
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
