package datastructure

import (
	"github.com/golang/geo/r2"
	"github.com/lintang-b-s/roadgenx/pkg/geo"
)

// Segment. directed edge P1 -> P2 of the road Owner. comparable: equal iff same endpoints and same owner.
type Segment struct {
	P1    *Vertex
	P2    *Vertex
	Owner *Road
	AABB  r2.Rect
}

func NewSegment(p1, p2 *Vertex, owner *Road) Segment {
	return Segment{
		P1:    p1,
		P2:    p2,
		Owner: owner,
		AABB:  geo.BoundByPoints(p1.Pos, p2.Pos),
	}
}

// Touches. whether v is one of the segment endpoints.
func (s Segment) Touches(v *Vertex) bool {
	return s.P1 == v || s.P2 == v
}

func (s Segment) Length() float64 {
	return s.P2.Pos.Sub(s.P1.Pos).Norm()
}
