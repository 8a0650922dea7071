package datastructure

import (
	"github.com/golang/geo/r2"
)

// NewVertexBVH. vertex index where every vertex occupies a square of half size mergeRadius,
// so GetAllNearbyPos(p) yields the vertices within mergeRadius of p on both axes.
func NewVertexBVH(mergeRadius float64, threshold int) *BVH[*Vertex] {
	return NewBVH(threshold, func(v *Vertex) r2.Rect {
		return r2.RectFromCenterSize(v.Pos, r2.Point{X: 2 * mergeRadius, Y: 2 * mergeRadius})
	})
}

func NewSegmentBVH(threshold int) *BVH[Segment] {
	return NewBVH(threshold, func(s Segment) r2.Rect {
		return s.AABB
	})
}

// NewRoadBVH. road index keyed on Road.BoundingBox. the bounding box must stay fixed while the road is indexed,
// splitting a segment of an indexed road inserts a point that is already inside it.
func NewRoadBVH(threshold int) *BVH[*Road] {
	return NewBVH(threshold, func(r *Road) r2.Rect {
		return r.BoundingBox
	})
}
