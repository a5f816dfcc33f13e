package track

import (
	"math"

	"github.com/LordKelvin144/ToyCarGym/internal/common"
)

// Cell count along the longer axis of the track's bounding box. Internal
// resolution, unrelated to any rendering sample count.
const gridResolution = 64

// SpatialIndex is a uniform grid over the track's bounding box. Cells map to
// the ids of boundary segments whose extent overlaps them, so ray casts and
// distance queries only test nearby segments. Cells hold plain indices into
// the segment arena; the index never points back at the Track and is rebuilt
// together with it as one unit.
type SpatialIndex struct {
	origin   common.Vec2
	cellSize float64
	nx, ny   int
	cells    [][]int
	segments []Segment
}

// NewSpatialIndex builds the grid for a track's boundary segments. Every
// segment is registered in every cell its bounding box overlaps, so no
// segment can be missed by a query.
func NewSpatialIndex(t *Track) *SpatialIndex {
	segments := t.Segments

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range segments {
		minX = math.Min(minX, math.Min(s.A.X, s.B.X))
		minY = math.Min(minY, math.Min(s.A.Y, s.B.Y))
		maxX = math.Max(maxX, math.Max(s.A.X, s.B.X))
		maxY = math.Max(maxY, math.Max(s.A.Y, s.B.Y))
	}

	cellSize := math.Max(maxX-minX, maxY-minY) / gridResolution
	// Pad by one cell so boundary-adjacent queries start inside the grid.
	origin := common.Vec2{X: minX - cellSize, Y: minY - cellSize}
	nx := int((maxX-origin.X)/cellSize) + 2
	ny := int((maxY-origin.Y)/cellSize) + 2

	idx := &SpatialIndex{
		origin:   origin,
		cellSize: cellSize,
		nx:       nx,
		ny:       ny,
		cells:    make([][]int, nx*ny),
		segments: segments,
	}

	for id, s := range segments {
		x0, y0 := idx.cellAt(common.Vec2{X: math.Min(s.A.X, s.B.X), Y: math.Min(s.A.Y, s.B.Y)})
		x1, y1 := idx.cellAt(common.Vec2{X: math.Max(s.A.X, s.B.X), Y: math.Max(s.A.Y, s.B.Y)})
		for cy := y0; cy <= y1; cy++ {
			for cx := x0; cx <= x1; cx++ {
				c := cy*nx + cx
				idx.cells[c] = append(idx.cells[c], id)
			}
		}
	}
	return idx
}

// cellAt returns the grid coordinates of the cell containing p, clamped into
// the grid.
func (idx *SpatialIndex) cellAt(p common.Vec2) (int, int) {
	cx := int((p.X - idx.origin.X) / idx.cellSize)
	cy := int((p.Y - idx.origin.Y) / idx.cellSize)
	return clampInt(cx, 0, idx.nx-1), clampInt(cy, 0, idx.ny-1)
}

func (idx *SpatialIndex) inGrid(p common.Vec2) bool {
	return p.X >= idx.origin.X && p.Y >= idx.origin.Y &&
		p.X < idx.origin.X+float64(idx.nx)*idx.cellSize &&
		p.Y < idx.origin.Y+float64(idx.ny)*idx.cellSize
}

// QueryRay walks grid cells along the ray and returns the distance to the
// nearest boundary intersection, or maxRange if nothing is hit within range.
// The direction need not be normalized.
func (idx *SpatialIndex) QueryRay(origin, direction common.Vec2, maxRange float64) float64 {
	dir := direction.Normalize()
	if dir == (common.Vec2{}) {
		return maxRange
	}
	best := maxRange

	// Amanatides-Woo traversal state.
	cx, cy := idx.cellAt(origin)
	stepX, stepY := 1, 1
	if dir.X < 0 {
		stepX = -1
	}
	if dir.Y < 0 {
		stepY = -1
	}

	// Distance along the ray to the next vertical/horizontal cell border.
	nextBorder := func(p, o float64, cell, step int) float64 {
		border := o + float64(cell)*idx.cellSize
		if step > 0 {
			border += idx.cellSize
		}
		return border - p
	}
	tMaxX := math.Inf(1)
	tDeltaX := math.Inf(1)
	if dir.X != 0 {
		tMaxX = nextBorder(origin.X, idx.origin.X, cx, stepX) / dir.X
		tDeltaX = idx.cellSize / math.Abs(dir.X)
	}
	tMaxY := math.Inf(1)
	tDeltaY := math.Inf(1)
	if dir.Y != 0 {
		tMaxY = nextBorder(origin.Y, idx.origin.Y, cy, stepY) / dir.Y
		tDeltaY = idx.cellSize / math.Abs(dir.Y)
	}

	entry := 0.0
	for {
		for _, id := range idx.cells[cy*idx.nx+cx] {
			if t, ok := raySegment(origin, dir, idx.segments[id]); ok && t < best {
				best = t
			}
		}
		// Once the best hit precedes the next cell boundary, later cells
		// cannot improve it.
		if best <= entry {
			break
		}
		if tMaxX < tMaxY {
			entry = tMaxX
			tMaxX += tDeltaX
			cx += stepX
			if cx < 0 || cx >= idx.nx {
				break
			}
		} else {
			entry = tMaxY
			tMaxY += tDeltaY
			cy += stepY
			if cy < 0 || cy >= idx.ny {
				break
			}
		}
		if entry > best || entry > maxRange {
			break
		}
	}
	return best
}

// raySegment intersects a ray (origin o, unit direction d) with a segment,
// returning the hit distance along the ray.
func raySegment(o, d common.Vec2, s Segment) (float64, bool) {
	ab := s.B.Sub(s.A)
	denom := d.Cross(ab)
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}
	ao := s.A.Sub(o)
	t := ao.Cross(ab) / denom
	u := ao.Cross(d) / denom
	if t < 0 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

// NearestSegment returns the id of the boundary segment closest to p and the
// distance to it. The search expands cell rings outward until the remaining
// rings cannot contain anything closer.
func (idx *SpatialIndex) NearestSegment(p common.Vec2) (int, float64) {
	bestID := -1
	best := math.Inf(1)

	if !idx.inGrid(p) {
		return idx.scanAll(p)
	}

	cx, cy := idx.cellAt(p)
	maxRing := idx.nx
	if idx.ny > maxRing {
		maxRing = idx.ny
	}

	for r := 0; r <= maxRing; r++ {
		// Any segment in a farther ring is at least (r-1) cells away.
		if best < float64(r-1)*idx.cellSize {
			break
		}
		for _, c := range idx.ringCells(cx, cy, r) {
			for _, id := range idx.cells[c] {
				if d := idx.segments[id].Distance(p); d < best {
					best = d
					bestID = id
				}
			}
		}
	}
	if bestID < 0 {
		return idx.scanAll(p)
	}
	return bestID, best
}

// NearestSegmentDistance is the distance from p to the closest boundary
// segment, used for crash detection.
func (idx *SpatialIndex) NearestSegmentDistance(p common.Vec2) float64 {
	_, d := idx.NearestSegment(p)
	return d
}

// ringCells lists the cell offsets of the square ring of radius r around
// (cx, cy), clipped to the grid.
func (idx *SpatialIndex) ringCells(cx, cy, r int) []int {
	var cells []int
	add := func(x, y int) {
		if x >= 0 && x < idx.nx && y >= 0 && y < idx.ny {
			cells = append(cells, y*idx.nx+x)
		}
	}
	if r == 0 {
		add(cx, cy)
		return cells
	}
	for x := cx - r; x <= cx+r; x++ {
		add(x, cy-r)
		add(x, cy+r)
	}
	for y := cy - r + 1; y <= cy+r-1; y++ {
		add(cx-r, y)
		add(cx+r, y)
	}
	return cells
}

// scanAll is the exhaustive fallback for points outside the grid.
func (idx *SpatialIndex) scanAll(p common.Vec2) (int, float64) {
	bestID := -1
	best := math.Inf(1)
	for id, s := range idx.segments {
		if d := s.Distance(p); d < best {
			best = d
			bestID = id
		}
	}
	return bestID, best
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
