package geo

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
)

func TestLinesIntersect(t *testing.T) {
	cases := []struct {
		name           string
		p1, d1, p2, d2 r2.Point
		expectOk       bool
		expectT1       float64
		expectT2       float64
	}{
		{
			name:     "perpendicular through origin",
			p1:       r2.Point{X: -1, Y: 0},
			d1:       r2.Point{X: 2, Y: 0},
			p2:       r2.Point{X: 0, Y: -1},
			d2:       r2.Point{X: 0, Y: 2},
			expectOk: true,
			expectT1: 0.5,
			expectT2: 0.5,
		},
		{
			name:     "intersection outside both segments",
			p1:       r2.Point{X: 0, Y: 0},
			d1:       r2.Point{X: 1, Y: 0},
			p2:       r2.Point{X: 3, Y: 1},
			d2:       r2.Point{X: 0, Y: 1},
			expectOk: true,
			expectT1: 3,
			expectT2: -1,
		},
		{
			name:     "parallel",
			p1:       r2.Point{X: 0, Y: 0},
			d1:       r2.Point{X: 1, Y: 1},
			p2:       r2.Point{X: 0, Y: 1},
			d2:       r2.Point{X: 2, Y: 2},
			expectOk: false,
		},
		{
			name:     "nearly parallel",
			p1:       r2.Point{X: 0, Y: 0},
			d1:       r2.Point{X: 1, Y: 0},
			p2:       r2.Point{X: 0, Y: 1},
			d2:       r2.Point{X: 1, Y: 1e-13},
			expectOk: false,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t1, t2, ok := LinesIntersect(c.p1, c.d1, c.p2, c.d2)
			assert.Equal(t, c.expectOk, ok)
			if c.expectOk {
				assert.InDelta(t, c.expectT1, t1, 1e-12)
				assert.InDelta(t, c.expectT2, t2, 1e-12)
			}
		})
	}
}

func TestSegmentsIntersect(t *testing.T) {
	t.Run("crossing", func(t *testing.T) {
		t1, t2, ok := SegmentsIntersect(r2.Point{X: 0, Y: 0}, r2.Point{X: 4, Y: 0},
			r2.Point{X: 1, Y: -1}, r2.Point{X: 1, Y: 3})
		assert.True(t, ok)
		assert.InDelta(t, 0.25, t1, 1e-12)
		assert.InDelta(t, 0.25, t2, 1e-12)
	})

	t.Run("touching endpoints count", func(t *testing.T) {
		t1, t2, ok := SegmentsIntersect(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0},
			r2.Point{X: 1, Y: 0}, r2.Point{X: 1, Y: 1})
		assert.True(t, ok)
		assert.InDelta(t, 1, t1, 1e-12)
		assert.InDelta(t, 0, t2, 1e-12)
	})

	t.Run("lines cross outside segment", func(t *testing.T) {
		_, _, ok := SegmentsIntersect(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0},
			r2.Point{X: 2, Y: -1}, r2.Point{X: 2, Y: 1})
		assert.False(t, ok)
	})

	t.Run("collinear overlap is not an intersection", func(t *testing.T) {
		_, _, ok := SegmentsIntersect(r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 0},
			r2.Point{X: 1, Y: 0}, r2.Point{X: 3, Y: 0})
		assert.False(t, ok)
	})
}

func TestDistanceToSegment(t *testing.T) {
	t.Run("exactly parallel uses closest endpoints", func(t *testing.T) {
		dist, pos1, pos2, t1, t2 := DistanceToSegment(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0},
			r2.Point{X: 3, Y: 4}, r2.Point{X: 4, Y: 4})
		assert.InDelta(t, math.Sqrt(4+16), dist, 1e-12)
		assert.Equal(t, r2.Point{X: 1, Y: 0}, pos1)
		assert.Equal(t, r2.Point{X: 3, Y: 4}, pos2)
		assert.Equal(t, 1.0, t1)
		assert.Equal(t, 0.0, t2)
	})

	t.Run("anti parallel", func(t *testing.T) {
		dist, _, _, _, _ := DistanceToSegment(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0},
			r2.Point{X: 1, Y: 2}, r2.Point{X: 0, Y: 2})
		assert.InDelta(t, 2.0, dist, 1e-12)
	})

	t.Run("crossing segments have zero distance", func(t *testing.T) {
		dist, pos1, pos2, _, _ := DistanceToSegment(r2.Point{X: -1, Y: 0}, r2.Point{X: 1, Y: 0},
			r2.Point{X: 0, Y: -1}, r2.Point{X: 0, Y: 1})
		assert.InDelta(t, 0, dist, 1e-12)
		assert.InDelta(t, 0, pos1.X, 1e-12)
		assert.InDelta(t, 0, pos2.Y, 1e-12)
	})

	t.Run("clamped approximation returns squared distance", func(t *testing.T) {
		// lines meet at (2,0); both t values clamp to the near endpoints (1,0) and (2,1).
		dist, pos1, pos2, t1, t2 := DistanceToSegment(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0},
			r2.Point{X: 2, Y: 2}, r2.Point{X: 2, Y: 1})
		assert.Equal(t, 1.0, t1)
		assert.Equal(t, 1.0, t2)
		assert.Equal(t, r2.Point{X: 1, Y: 0}, pos1)
		assert.Equal(t, r2.Point{X: 2, Y: 1}, pos2)
		assert.InDelta(t, 2.0, dist, 1e-12)
	})
}

func TestPointSegmentDistance(t *testing.T) {
	a, b := r2.Point{X: 0, Y: 0}, r2.Point{X: 10, Y: 0}

	assert.InDelta(t, 3.0, PointSegmentDistance(r2.Point{X: 5, Y: 3}, a, b), 1e-12)
	assert.InDelta(t, 5.0, PointSegmentDistance(r2.Point{X: -3, Y: 4}, a, b), 1e-12)
	assert.InDelta(t, math.Sqrt(2), PointSegmentDistance(r2.Point{X: 1, Y: 1}, a, a), 1e-12)
	assert.Equal(t, r2.Point{X: 10, Y: 0}, ProjectPointToSegment(r2.Point{X: 12, Y: 1}, a, b))
}
