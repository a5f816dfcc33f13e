package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeshWaypoints(t *testing.T) {
	s := squareSpline()
	m := NewMesh(s, 64)
	require.Len(t, m.Waypoints, 64)
	assert.InDelta(t, s.TotalLength(), m.TotalLen, 1e-9)

	ds := m.TotalLen / 64
	for i, wp := range m.Waypoints {
		assert.InDelta(t, float64(i)*ds, wp.Distance, 1e-9)
		assert.InDelta(t, 1.0, wp.Tangent.Len(), 1e-9)
		// The normal is the tangent rotated a quarter turn left.
		assert.InDelta(t, 0, wp.Tangent.Dot(wp.Normal), 1e-9)
		assert.InDelta(t, 1.0, wp.Tangent.Cross(wp.Normal), 1e-9)
	}

	// Consecutive waypoints sit roughly one spacing apart.
	for i := 1; i < len(m.Waypoints); i++ {
		gap := m.Waypoints[i].Position.Dist(m.Waypoints[i-1].Position)
		assert.InDelta(t, ds, gap, 0.15*ds, "gap %d", i)
	}
}

func TestClosestWaypoint(t *testing.T) {
	m := NewMesh(squareSpline(), 64)

	for _, i := range []int{0, 17, 40, 63} {
		wp, idx := m.ClosestWaypoint(m.Waypoints[i].Position)
		assert.Equal(t, i, idx)
		assert.Equal(t, m.Waypoints[i], wp)
	}
}

func TestFrenetRoundTrip(t *testing.T) {
	m := NewMesh(squareSpline(), 256)

	wp := m.Waypoints[30]
	for _, lat := range []float64{0, 1, -1} {
		pos := wp.Position.Add(wp.Normal.Scale(lat))
		s, d := m.Frenet(pos)
		assert.InDelta(t, wp.Distance, s, 0.05)
		assert.InDelta(t, lat, d, 0.02)
	}
}

func TestFrenetWrapsAtStart(t *testing.T) {
	m := NewMesh(squareSpline(), 256)

	// Just behind the start line: s lands near the total length, not
	// negative.
	wp := m.Waypoints[0]
	pos := wp.Position.Sub(wp.Tangent.Scale(0.1))
	s, _ := m.Frenet(pos)
	assert.InDelta(t, m.TotalLen-0.1, s, 0.05)
}
