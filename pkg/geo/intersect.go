package geo

import (
	"math"

	"github.com/golang/geo/r2"
)

const (
	// ParallelEpsilon is the relative tolerance under which two direction vectors are treated as parallel.
	// the determinant is compared against ParallelEpsilon * |d1| * |d2|, i.e. against the sine of the angle between them.
	ParallelEpsilon = 1e-9
)

// LinesIntersect. solve the 2x2 system line1P + t1*line1Dir = line2P + t2*line2Dir.
// returns ok=false if the lines are (nearly) parallel.
// http://www.ahinson.com/algorithms_general/Sections/Geometry/ParametricLineIntersection.pdf
func LinesIntersect(line1P, line1Dir, line2P, line2Dir r2.Point) (t1, t2 float64, ok bool) {
	x21, y21 := line1Dir.X, line1Dir.Y
	x43, y43 := line2Dir.X, line2Dir.Y

	determinant := (x43 * y21) - (x21 * y43)
	if math.Abs(determinant) <= ParallelEpsilon*line1Dir.Norm()*line2Dir.Norm() {
		return 0, 0, false
	}

	invDet := 1.0 / determinant
	x31 := line2P.X - line1P.X
	y31 := line2P.Y - line1P.Y

	t1 = invDet * ((x43 * y31) - (x31 * y43))
	t2 = invDet * ((x21 * y31) - (x31 * y21))
	return t1, t2, true
}

// SegmentsIntersect. like LinesIntersect, but both t values must lie in [0,1].
func SegmentsIntersect(seg1P1, seg1P2, seg2P1, seg2P2 r2.Point) (t1, t2 float64, ok bool) {
	t1, t2, ok = LinesIntersect(seg1P1, seg1P2.Sub(seg1P1), seg2P1, seg2P2.Sub(seg2P1))
	if !ok || t1 < 0 || t1 > 1 || t2 < 0 || t2 > 1 {
		return 0, 0, false
	}
	return t1, t2, true
}

/*
DistanceToSegment. distance between two line segments, plus the closest position on each segment
and its t value (pos = p1 + t*(p2-p1)).

for non parallel segments this clamps the infinite-line intersection into both segments independently
and returns the squared distance between the clamped points. this is an approximation: the clamped
points are not always the true closest pair.

for segments whose deltas are exactly equal or exactly opposite, the closest pair of endpoints is used
and the (non squared) distance is returned.
*/
func DistanceToSegment(seg1P1, seg1P2, seg2P1, seg2P2 r2.Point) (dist float64, posOn1, posOn2 r2.Point,
	t1, t2 float64) {
	delta1 := seg1P2.Sub(seg1P1)
	delta2 := seg2P2.Sub(seg2P1)

	if delta1 == delta2 || delta1 == delta2.Mul(-1) {
		candidates := [4]struct {
			p1, p2 r2.Point
			t1, t2 float64
		}{
			{seg1P1, seg2P1, 0, 0},
			{seg1P1, seg2P2, 0, 1},
			{seg1P2, seg2P1, 1, 0},
			{seg1P2, seg2P2, 1, 1},
		}
		best := 0
		bestDist := math.Inf(1)
		for i, c := range candidates {
			d := DistSqr(c.p1, c.p2)
			if d < bestDist {
				bestDist = d
				best = i
			}
		}
		c := candidates[best]
		return math.Sqrt(bestDist), c.p1, c.p2, c.t1, c.t2
	}

	var ok bool
	t1, t2, ok = LinesIntersect(seg1P1, delta1, seg2P1, delta2)
	if !ok {
		// nearly parallel but not exactly: fall back to the segment midpoints projection.
		t1, t2 = ProjectT(seg2P1.Add(delta2.Mul(0.5)), seg1P1, seg1P2), ProjectT(seg1P1.Add(delta1.Mul(0.5)), seg2P1, seg2P2)
	}

	t1 = clamp01(t1)
	t2 = clamp01(t2)

	posOn1 = seg1P1.Add(delta1.Mul(t1))
	posOn2 = seg2P1.Add(delta2.Mul(t2))
	return DistSqr(posOn1, posOn2), posOn1, posOn2, t1, t2
}

func DistSqr(a, b r2.Point) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}

// BoundByPoints. smallest rect containing both points.
func BoundByPoints(p1, p2 r2.Point) r2.Rect {
	return r2.RectFromPoints(p1, p2)
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
