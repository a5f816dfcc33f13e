package track

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LordKelvin144/ToyCarGym/internal/common"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	t1 := Generate(rand.New(rand.NewSource(7)), cfg)
	t2 := Generate(rand.New(rand.NewSource(7)), cfg)

	assert.Empty(t, cmp.Diff(t1.Segments, t2.Segments))
	assert.Equal(t, t1.TotalLength(), t2.TotalLength())
}

func TestGenerateDifferentSeeds(t *testing.T) {
	cfg := DefaultConfig()
	t1 := Generate(rand.New(rand.NewSource(1)), cfg)
	t2 := Generate(rand.New(rand.NewSource(2)), cfg)

	assert.NotEmpty(t, cmp.Diff(t1.Segments, t2.Segments))
}

func TestGeneratedBoundariesDoNotCross(t *testing.T) {
	cfg := DefaultConfig()
	for seed := int64(0); seed < 5; seed++ {
		trk := Generate(rand.New(rand.NewSource(seed)), cfg)
		assert.False(t, trk.selfIntersects(), "seed %d", seed)
	}
}

func TestCanonicalTrack(t *testing.T) {
	trk := Canonical(DefaultConfig())

	// Starts at the origin heading along +x.
	pos, heading := trk.StartPose()
	assert.InDelta(t, 0, pos.X, 1e-9)
	assert.InDelta(t, 0, pos.Y, 1e-9)
	assert.InDelta(t, 0, heading, 1e-9)

	assert.False(t, trk.selfIntersects())
	assert.Greater(t, trk.TotalLength(), 0.0)
}

func TestCanonicalConfigOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Canonical = true
	trk := Generate(rand.New(rand.NewSource(99)), cfg)

	ref := Canonical(DefaultConfig())
	assert.Empty(t, cmp.Diff(ref.Segments, trk.Segments))
}

func TestSampleBoundariesClosed(t *testing.T) {
	trk := Canonical(DefaultConfig())
	left, right := trk.SampleBoundaries(100)

	require.Len(t, left, 101)
	require.Len(t, right, 101)
	assert.Equal(t, left[0], left[100])
	assert.Equal(t, right[0], right[100])

	// The two sides stay one track width apart at the sampled stations.
	want := 2 * trk.HalfWidth
	for i := 0; i < 100; i += 10 {
		assert.InDelta(t, want, left[i].Dist(right[i]), 0.01)
	}
}

func TestNearestProgressOnCenterline(t *testing.T) {
	trk := Canonical(DefaultConfig())

	for _, i := range []int{0, 30, 100, 200} {
		wp := trk.Mesh.Waypoints[i]
		s, d := trk.NearestProgress(wp.Position)
		assert.InDelta(t, wp.Distance, s, 1e-6)
		assert.InDelta(t, 0, d, 1e-6)
	}
}

func TestNearestProgressLateralSign(t *testing.T) {
	trk := Canonical(DefaultConfig())
	wp := trk.Mesh.Waypoints[20]

	_, d := trk.NearestProgress(wp.Position.Add(wp.Normal.Scale(1.5)))
	assert.InDelta(t, 1.5, d, 0.05)

	_, d = trk.NearestProgress(wp.Position.Sub(wp.Normal.Scale(1.5)))
	assert.InDelta(t, -1.5, d, 0.05)
}

func TestSegmentDistance(t *testing.T) {
	seg := Segment{A: common.Vec2{X: 0, Y: 0}, B: common.Vec2{X: 10, Y: 0}}

	assert.InDelta(t, 3.0, seg.Distance(common.Vec2{X: 5, Y: 3}), 1e-12)
	assert.InDelta(t, 5.0, seg.Distance(common.Vec2{X: 13, Y: 4}), 1e-12)
	assert.InDelta(t, 0.0, seg.Distance(common.Vec2{X: 2, Y: 0}), 1e-12)
}

func TestSegmentInwardNormals(t *testing.T) {
	trk := Canonical(DefaultConfig())

	// Walking inward from any boundary segment midpoint must shrink the
	// lateral deviation.
	for i := 0; i < len(trk.Segments); i += 50 {
		seg := trk.Segments[i]
		mid := seg.A.Add(seg.B).Scale(0.5)
		_, dOut := trk.NearestProgress(mid)
		_, dIn := trk.NearestProgress(mid.Add(seg.Inward.Scale(0.5)))
		assert.Less(t, math.Abs(dIn), math.Abs(dOut), "segment %d", i)
	}
}
