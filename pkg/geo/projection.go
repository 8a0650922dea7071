package geo

import (
	"math"

	"github.com/golang/geo/r2"
)

// ProjectT. parameter t of the projection of p onto the infinite line through a and b.
// returns 0 for a degenerate (zero length) line.
func ProjectT(p, a, b r2.Point) float64 {
	ab := b.Sub(a)
	lenSqr := ab.Dot(ab)
	if lenSqr == 0 {
		return 0
	}
	return p.Sub(a).Dot(ab) / lenSqr
}

// ProjectPointToSegment. closest point to p on segment ab.
func ProjectPointToSegment(p, a, b r2.Point) r2.Point {
	t := clamp01(ProjectT(p, a, b))
	return a.Add(b.Sub(a).Mul(t))
}

// PointSegmentDistance. euclidean distance from p to segment ab.
func PointSegmentDistance(p, a, b r2.Point) float64 {
	return math.Sqrt(DistSqr(p, ProjectPointToSegment(p, a, b)))
}
