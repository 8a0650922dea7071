package snap

import (
	"fmt"
	"iter"
	"log"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/golang/geo/r2"
	"github.com/lintang-b-s/roadgenx/pkg/datastructure"
	"github.com/lintang-b-s/roadgenx/pkg/geo"
)

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50

	// rtreego rejects zero length sides, axis aligned segments get this thickness.
	minRectLength = 1e-9

	// radius grows by this factor, at most maxRadiusGrowth times, while nothing is found.
	radiusGrowth    = 2.0
	maxRadiusGrowth = 2
)

// segmentEntry. one road segment stored in the r-tree.
type segmentEntry struct {
	road  *datastructure.Road
	index int
	p1    r2.Point
	p2    r2.Point
	bbox  rtreego.Rect
}

func (e *segmentEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// RoadHit. closest point of a road to a query point.
type RoadHit struct {
	Road *datastructure.Road
	// SegmentIndex. lower point index of the closest segment on Road.
	SegmentIndex int
	Position     r2.Point
	Distance     float64
}

// RoadSnapper. nearest road queries over a finished road network.
type RoadSnapper struct {
	rtree    *rtreego.Rtree
	segments int
}

func NewRoadSnapper() *RoadSnapper {
	return &RoadSnapper{rtree: rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren)}
}

// BuildRoadSnapper. insert every segment of every road.
func (rs *RoadSnapper) BuildRoadSnapper(roads iter.Seq[*datastructure.Road]) error {
	n := 0
	for rd := range roads {
		if err := rs.InsertRoad(rd); err != nil {
			return err
		}
		n++
		if n%10000 == 0 {
			log.Printf("insert road %d to r-tree...", n)
		}
	}
	return nil
}

func (rs *RoadSnapper) InsertRoad(rd *datastructure.Road) error {
	for i := 0; i+1 < len(rd.Points); i++ {
		p1, p2 := rd.Points[i].Pos, rd.Points[i+1].Pos
		bbox, err := toRtreeRect(geo.BoundByPoints(p1, p2))
		if err != nil {
			return fmt.Errorf("insert segment %d of road %v: %w", i, rd, err)
		}
		rs.rtree.Insert(&segmentEntry{road: rd, index: i, p1: p1, p2: p2, bbox: bbox})
		rs.segments++
	}
	return nil
}

// Size. number of indexed segments.
func (rs *RoadSnapper) Size() int {
	return rs.segments
}

func toRtreeRect(rect r2.Rect) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{rect.X.Lo, rect.Y.Lo},
		[]float64{math.Max(rect.X.Length(), minRectLength), math.Max(rect.Y.Length(), minRectLength)},
	)
}

// NearestRoads. roads within radius of p, closest first, one hit per road, at most k hits (k <= 0: all).
// the radius grows while nothing is found.
func (rs *RoadSnapper) NearestRoads(p r2.Point, radius float64, k int) ([]RoadHit, error) {
	if radius <= 0 || math.IsNaN(radius) {
		return nil, fmt.Errorf("snap radius must be positive, got %v", radius)
	}

	hits, err := rs.searchWithinRadius(p, radius)
	for counter := 0; err == nil && len(hits) == 0 && counter < maxRadiusGrowth; counter++ {
		radius *= radiusGrowth
		hits, err = rs.searchWithinRadius(p, radius)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (rs *RoadSnapper) searchWithinRadius(p r2.Point, radius float64) ([]RoadHit, error) {
	bound, err := toRtreeRect(r2.RectFromCenterSize(p, r2.Point{X: 2 * radius, Y: 2 * radius}))
	if err != nil {
		return nil, err
	}

	best := make(map[*datastructure.Road]RoadHit)
	for _, sp := range rs.rtree.SearchIntersect(bound) {
		entry := sp.(*segmentEntry)
		pos := geo.ProjectPointToSegment(p, entry.p1, entry.p2)
		dist := p.Sub(pos).Norm()
		if dist > radius {
			continue
		}
		if prev, ok := best[entry.road]; ok && prev.Distance <= dist {
			continue
		}
		best[entry.road] = RoadHit{Road: entry.road, SegmentIndex: entry.index, Position: pos, Distance: dist}
	}

	hits := make([]RoadHit, 0, len(best))
	for _, h := range best {
		hits = append(hits, h)
	}
	return hits, nil
}
