package roadgen

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/roadgenx/pkg/datastructure"
)

var ErrInconsistentNetwork = errors.New("inconsistent road network")

// CheckConsistency. verify the generated network:
// every road has at least two points, every consecutive pair is linked and indexed as a segment owned by the road,
// no other segment is indexed, and vertex links are symmetric.
func (g *RoadGenerator) CheckConsistency() error {
	expectedSegments := 0
	for rd := range g.Roads.GetAll() {
		if len(rd.Points) < 2 {
			return fmt.Errorf("%w: road %v has %d points", ErrInconsistentNetwork, rd, len(rd.Points))
		}
		for i, p := range rd.Points {
			if !p.IsOnRoad(rd) {
				return fmt.Errorf("%w: vertex %v of road %v does not know its road", ErrInconsistentNetwork, p, rd)
			}
			if i == 0 {
				continue
			}
			prev := rd.Points[i-1]
			if !prev.IsConnectedTo(p) {
				return fmt.Errorf("%w: road %v points %d and %d are not linked", ErrInconsistentNetwork, rd, i-1, i)
			}
			if !g.Segments.Contains(datastructure.NewSegment(prev, p, rd)) {
				return fmt.Errorf("%w: segment %v -> %v of road %v is not indexed", ErrInconsistentNetwork, prev, p, rd)
			}
		}
		expectedSegments += len(rd.Points) - 1
	}
	if expectedSegments != g.Segments.Count() {
		return fmt.Errorf("%w: %d indexed segments, roads have %d", ErrInconsistentNetwork, g.Segments.Count(),
			expectedSegments)
	}

	for v := range g.Vertices.GetAll() {
		for other := range v.VertsConnectedTo {
			if !other.IsConnectedTo(v) {
				return fmt.Errorf("%w: %v links to %v but not the other way", ErrInconsistentNetwork, v, other)
			}
		}
	}
	return nil
}
