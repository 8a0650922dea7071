package datastructure

import (
	"math"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/lintang-b-s/roadgenx/pkg/geo"
)

// Road. polyline of connected vertices.
type Road struct {
	Points      []*Vertex
	BoundingBox r2.Rect
}

func NewRoad() *Road {
	return &Road{
		Points:      make([]*Vertex, 0, 8),
		BoundingBox: r2.EmptyRect(),
	}
}

// UpdateBoundingBox. recompute the bounding box from all points.
// must be called after any change to Points other than an append (see ExtendBoundingBox).
func (r *Road) UpdateBoundingBox() {
	bb := r2.EmptyRect()
	for _, p := range r.Points {
		bb = bb.AddPoint(p.Pos)
	}
	r.BoundingBox = bb
}

// ExtendBoundingBox. grow the bounding box to include Points[i]
func (r *Road) ExtendBoundingBox(i int) {
	r.BoundingBox = r.BoundingBox.AddPoint(r.Points[i].Pos)
}

func (r *Road) Last() *Vertex {
	return r.Points[len(r.Points)-1]
}

// IndexOf. position of v in the road, -1 if v is not on it.
func (r *Road) IndexOf(v *Vertex) int {
	for i, p := range r.Points {
		if p == v {
			return i
		}
	}
	return -1
}

func (r *Road) Positions() []r2.Point {
	positions := make([]r2.Point, len(r.Points))
	for i, p := range r.Points {
		positions[i] = p.Pos
	}
	return positions
}

// Length. sum of the segment lengths.
func (r *Road) Length() float64 {
	length := 0.0
	for i := 0; i+1 < len(r.Points); i++ {
		length += r.Points[i+1].Pos.Sub(r.Points[i].Pos).Norm()
	}
	return length
}

// Intersects. first crossing between r and other, scanning r's segments in order.
// returns the crossing position and the lower point index of the crossing segment on each road.
func (r *Road) Intersects(other *Road) (pos r2.Point, thisIndex, otherIndex int, ok bool) {
	if len(r.Points) < 2 || len(other.Points) < 2 {
		return r2.Point{}, -1, -1, false
	}

	for i := 0; i+1 < len(r.Points); i++ {
		a1, a2 := r.Points[i].Pos, r.Points[i+1].Pos
		for j := 0; j+1 < len(other.Points); j++ {
			t1, _, hit := geo.SegmentsIntersect(a1, a2, other.Points[j].Pos, other.Points[j+1].Pos)
			if hit {
				return a1.Add(a2.Sub(a1).Mul(t1)), i, j, true
			}
		}
	}
	return r2.Point{}, -1, -1, false
}

// DistanceTo. smallest geo.DistanceToSegment value over all segment pairs, the closest positions on each road,
// and the lower point index of the closest segment on each road. NaN if either road has less than two points.
func (r *Road) DistanceTo(other *Road) (dist float64, posOnThis, posOnOther r2.Point, thisIndex, otherIndex int) {
	if len(r.Points) < 2 || len(other.Points) < 2 {
		return math.NaN(), r2.Point{}, r2.Point{}, -1, -1
	}

	dist = math.MaxFloat64
	thisIndex, otherIndex = -1, -1
	for i := 0; i+1 < len(r.Points); i++ {
		for j := 0; j+1 < len(other.Points); j++ {
			d, p1, p2, _, _ := geo.DistanceToSegment(r.Points[i].Pos, r.Points[i+1].Pos,
				other.Points[j].Pos, other.Points[j+1].Pos)
			if d < dist {
				dist = d
				posOnThis, posOnOther = p1, p2
				thisIndex, otherIndex = i, j
			}
		}
	}
	return dist, posOnThis, posOnOther, thisIndex, otherIndex
}

func (r *Road) String() string {
	var sb strings.Builder
	sb.WriteString("||")
	for i, p := range r.Points {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
		if i > 20 && i < len(r.Points)-1 {
			sb.WriteString("...")
			break
		}
	}
	sb.WriteString("||")
	return sb.String()
}
