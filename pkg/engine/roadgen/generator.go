package roadgen

import (
	"context"
	"fmt"
	"log"
	"math"
	"slices"
	"time"

	"github.com/golang/geo/r2"
	"github.com/lintang-b-s/roadgenx/pkg/datastructure"
	"github.com/lintang-b-s/roadgenx/pkg/engine/field"
	"github.com/lintang-b-s/roadgenx/pkg/geo"
)

// seedPriority. the two seed directions of a Run are traced before anything else, whatever Hooks.Priority returns.
var seedPriority = math.Inf(1)

// VertexSeed. a frontier candidate: trace from V along the major or minor axis, in direction Dir (+1 or -1).
type VertexSeed struct {
	V        *datastructure.Vertex
	UseMajor bool
	Dir      int
}

func (vs VertexSeed) String() string {
	axis := "minor"
	if vs.UseMajor {
		axis = "major"
	}
	return fmt.Sprintf("%s towards %d starting from %v", axis, vs.Dir, vs.V)
}

// RoadGenerator. grows a planar road network by tracing curves through an ortho basis field.
// a generator is single threaded; the indices are owned and mutated by it alone.
type RoadGenerator struct {
	cfg   Config
	field *field.Field
	hooks Hooks

	Roads    *datastructure.BVH[*datastructure.Road]
	Vertices *datastructure.BVH[*datastructure.Vertex]
	Segments *datastructure.BVH[datastructure.Segment]

	cachedBases map[*datastructure.Vertex]field.OrthoBasis
	stats       Stats
}

func NewRoadGenerator(cfg Config, f *field.Field, hooks Hooks) (*RoadGenerator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("%w: field is nil", ErrInvalidConfig)
	}

	return &RoadGenerator{
		cfg:         cfg,
		field:       f,
		hooks:       hooks.withDefaults(),
		Roads:       datastructure.NewRoadBVH(cfg.RoadThreshold),
		Vertices:    datastructure.NewVertexBVH(cfg.MergeRadius, cfg.VertexThreshold),
		Segments:    datastructure.NewSegmentBVH(cfg.SegmentThreshold),
		cachedBases: make(map[*datastructure.Vertex]field.OrthoBasis),
	}, nil
}

func (g *RoadGenerator) Config() Config {
	return g.cfg
}

// Reset. drop the generated network.
func (g *RoadGenerator) Reset() {
	g.Roads.Clear()
	g.Vertices.Clear()
	g.Segments.Clear()
	g.cachedBases = make(map[*datastructure.Vertex]field.OrthoBasis)
	g.stats = Stats{}
}

/*
Run. grow the network from seed:

 1. create a vertex at seed and queue both major axis directions from it.
 2. pop the highest priority seed and trace a road from it.
 3. an accepted road is indexed, and every vertex on it queues both directions of the perpendicular axis.
 4. repeat until the frontier is empty.

stops early with ctx.Err() (wrapped) when ctx is done, or with ErrIterationBudget after Config.MaxIterations traces.
the network built so far stays in the indices either way.
*/
func (g *RoadGenerator) Run(ctx context.Context, seed r2.Point) (Stats, error) {
	start := time.Now()
	g.stats = Stats{}

	seedVertex := datastructure.NewVertex(seed)
	g.Vertices.Add(seedVertex)

	tried := make(map[VertexSeed]struct{})
	candidates := datastructure.NewPriorityQueue[VertexSeed](false)
	for _, dir := range []int{-1, 1} {
		vs := VertexSeed{V: seedVertex, UseMajor: true, Dir: dir}
		candidates.Add(vs, seedPriority)
		tried[vs] = struct{}{}
	}

	err := g.grow(ctx, candidates, tried)

	// a seed no road could start from would only block later snapping.
	if len(seedVertex.RoadsConnectedTo) == 0 {
		g.Vertices.Remove(seedVertex)
		delete(g.cachedBases, seedVertex)
	}

	return g.finishStats(start), err
}

func (g *RoadGenerator) grow(ctx context.Context, candidates *datastructure.PriorityQueue[VertexSeed],
	tried map[VertexSeed]struct{}) error {
	for candidates.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("road generation stopped after %d iterations: %w", g.stats.Iterations, err)
		}
		if g.cfg.MaxIterations > 0 && g.stats.Iterations >= g.cfg.MaxIterations {
			return fmt.Errorf("%w: %d traces, %d candidates left", ErrIterationBudget, g.stats.Iterations,
				candidates.Len())
		}

		vs, _ := candidates.Pop()
		g.stats.Iterations++

		rd := g.Trace(vs.V, vs.UseMajor, vs.Dir)
		if rd == nil {
			g.stats.RejectedTraces++
			continue
		}
		g.Roads.Add(rd)

		if g.cfg.LogEvery > 0 && g.Roads.Count()%g.cfg.LogEvery == 0 {
			log.Printf("roadgen: %d roads, %d vertices, %d segments, %d candidates queued", g.Roads.Count(),
				g.Vertices.Count(), g.Segments.Count(), candidates.Len())
		}

		for _, v := range rd.Points {
			priority := g.hooks.Priority(v.Pos)
			for _, dir := range []int{1, -1} {
				next := VertexSeed{V: v, UseMajor: !vs.UseMajor, Dir: dir}
				if _, ok := tried[next]; ok {
					continue
				}
				candidates.Add(next, priority)
				tried[next] = struct{}{}
			}
		}
	}
	return nil
}

func (g *RoadGenerator) finishStats(start time.Time) Stats {
	g.stats.Roads = g.Roads.Count()
	g.stats.Vertices = g.Vertices.Count()
	g.stats.Segments = g.Segments.Count()
	g.stats.Duration = time.Since(start)
	return g.stats
}

// Stats. statistics of the last Run, with the current index sizes.
func (g *RoadGenerator) Stats() Stats {
	s := g.stats
	s.Roads = g.Roads.Count()
	s.Vertices = g.Vertices.Count()
	s.Segments = g.Segments.Count()
	return s
}

// Trace. build a road from start along the major or minor axis in direction dir.
// every accepted vertex & segment is indexed as it is created. returns nil if no step from start was accepted.
func (g *RoadGenerator) Trace(start *datastructure.Vertex, useMajor bool, dir int) *datastructure.Road {
	step := g.cfg.RoadStepInterval * float64(dir)

	currentPos := start.Pos
	currentVel := g.basisAt(start).Axis(useMajor).Mul(float64(dir))

	rd := datastructure.NewRoad()
	rd.Points = append(rd.Points, start)
	rd.ExtendBoundingBox(0)
	start.ConnectToRoad(rd)

	last := start
	for {
		nextPos := g.next(last, step, currentVel, useMajor)
		v, endRoad := g.FindOrMakeVertex(rd, nextPos)
		if v != nil {
			v.ConnectToRoad(rd)
			prev := rd.Last()
			rd.Points = append(rd.Points, v)
			rd.ExtendBoundingBox(len(rd.Points) - 1)
			g.Segments.Add(datastructure.NewSegment(prev, v, rd))

			nextPos = v.Pos
			last = v
		}

		currentVel = nextPos.Sub(currentPos)
		currentPos = nextPos

		if g.cfg.MaxRoadPoints > 0 && len(rd.Points) >= g.cfg.MaxRoadPoints {
			endRoad = true
		}
		if endRoad {
			break
		}
	}

	if len(rd.Points) < 2 {
		for _, v := range rd.Points {
			v.DisconnectFromRoad(rd)
		}
		return nil
	}

	rd.UpdateBoundingBox()
	return rd
}

// next. RK4 step of length |step| from v along the chosen axis.
// each stage direction is flipped to agree with prevDir, the field only defines an axis, not an orientation.
func (g *RoadGenerator) next(v *datastructure.Vertex, step float64, prevDir r2.Point, useMajor bool) r2.Point {
	h := math.Abs(step)

	b1 := orient(g.basisAt(v).Axis(useMajor), prevDir)
	b2 := orient(g.basisAtPos(v.Pos.Add(b1.Mul(h/2))).Axis(useMajor), prevDir)
	b3 := orient(g.basisAtPos(v.Pos.Add(b2.Mul(h/2))).Axis(useMajor), prevDir)
	b4 := orient(g.basisAtPos(v.Pos.Add(b3.Mul(h))).Axis(useMajor), prevDir)

	delta := b1.Mul(1.0 / 6.0).Add(b2.Mul(1.0 / 3.0)).Add(b3.Mul(1.0 / 3.0)).Add(b4.Mul(1.0 / 6.0))
	return v.Pos.Add(delta.Normalize().Mul(h))
}

func orient(dir, prevDir r2.Point) r2.Point {
	if prevDir == (r2.Point{}) || prevDir.Dot(dir) >= 0 {
		return dir
	}
	return dir.Mul(-1)
}

// basisAt. blended basis at a vertex, memoized per vertex.
func (g *RoadGenerator) basisAt(v *datastructure.Vertex) field.OrthoBasis {
	if b, ok := g.cachedBases[v]; ok {
		return b
	}
	b := g.basisAtPos(v.Pos)
	g.cachedBases[v] = b
	return b
}

func (g *RoadGenerator) basisAtPos(pos r2.Point) field.OrthoBasis {
	height, normal := g.hooks.SurfaceData(pos)
	return g.field.At(pos, height, normal)
}

/*
FindOrMakeVertex. decide how the step from the last point of rd to nextPos joins the network. in order:

 1. reject if the step is not longer than SegmentMinLength or nextPos is out of bounds.
 2. snap: the nearest vertex within MergeRadius of nextPos that is not on rd ends the road.
    rejected if that vertex is already linked to the last point or the hop to it crosses a segment.
 3. split: the earliest crossing with a segment of another road becomes a new vertex splitting that segment.
    crossing a segment of rd (or a segment touching a vertex on rd) rejects.
    segments sharing the last point are adjacent, not crossings.
 4. otherwise a new vertex at nextPos.

returns the vertex to append to rd (nil on rejection) and whether rd ends there.
the returned vertex is already linked to the last point and indexed in Vertices.
*/
func (g *RoadGenerator) FindOrMakeVertex(rd *datastructure.Road, nextPos r2.Point) (*datastructure.Vertex, bool) {
	last := rd.Last()
	minLenSqr := g.cfg.SegmentMinLength * g.cfg.SegmentMinLength

	if geo.DistSqr(last.Pos, nextPos) <= minLenSqr || !g.hooks.InBounds(nextPos) {
		return nil, true
	}

	if v := g.nearestVertex(rd, nextPos); v != nil {
		if v.IsConnectedTo(last) || g.hopCrossesSegment(last, v) {
			return nil, true
		}
		v.ConnectTo(last)
		g.stats.Snaps++
		return v, true
	}

	hit, t2, ok := g.firstCrossing(rd, last, nextPos)
	if !ok {
		return nil, true
	}
	if hit != nil {
		pos := hit.P1.Pos.Add(hit.P2.Pos.Sub(hit.P1.Pos).Mul(t2))
		if geo.DistSqr(last.Pos, pos) <= minLenSqr {
			return nil, true
		}

		// crossing right through an end point of the segment: join the existing junction instead of splitting.
		for _, end := range []*datastructure.Vertex{hit.P1, hit.P2} {
			if geo.DistSqr(end.Pos, pos) > minLenSqr {
				continue
			}
			if end.IsOnRoad(rd) || end.IsConnectedTo(last) {
				return nil, true
			}
			end.ConnectTo(last)
			g.stats.Snaps++
			return end, false
		}

		v := datastructure.NewVertex(pos)
		v.ConnectTo(last)
		g.Vertices.Add(v)
		g.SplitSegment(v, *hit)
		g.stats.Splits++
		return v, false
	}

	v := datastructure.NewVertex(nextPos)
	v.ConnectTo(last)
	g.Vertices.Add(v)
	return v, false
}

// nearestVertex. closest indexed vertex within MergeRadius of pos that is not on rd.
func (g *RoadGenerator) nearestVertex(rd *datastructure.Road, pos r2.Point) *datastructure.Vertex {
	var nearest *datastructure.Vertex
	bestDist := g.cfg.MergeRadius * g.cfg.MergeRadius
	for v := range g.Vertices.GetAllNearbyPos(pos) {
		if v.IsOnRoad(rd) {
			continue
		}
		d := geo.DistSqr(v.Pos, pos)
		if d > bestDist || (nearest != nil && d == bestDist) {
			continue
		}
		nearest = v
		bestDist = d
	}
	return nearest
}

// hopCrossesSegment. whether the straight hop from a to b crosses an indexed segment not touching a or b.
func (g *RoadGenerator) hopCrossesSegment(a, b *datastructure.Vertex) bool {
	for s := range g.Segments.GetAllNearbyBnds(geo.BoundByPoints(a.Pos, b.Pos)) {
		if s.Touches(a) || s.Touches(b) {
			continue
		}
		if _, _, ok := geo.SegmentsIntersect(a.Pos, b.Pos, s.P1.Pos, s.P2.Pos); ok {
			return true
		}
	}
	return false
}

// firstCrossing. earliest crossing of last->nextPos with a segment of another road.
// ok=false if the step crosses rd itself.
func (g *RoadGenerator) firstCrossing(rd *datastructure.Road, last *datastructure.Vertex,
	nextPos r2.Point) (*datastructure.Segment, float64, bool) {
	var (
		hit    *datastructure.Segment
		bestT1 = math.Inf(1)
		hitT2  float64
	)

	for s := range g.Segments.GetAllNearbyBnds(geo.BoundByPoints(last.Pos, nextPos)) {
		if s.Touches(last) {
			continue
		}
		t1, t2, ok := geo.SegmentsIntersect(last.Pos, nextPos, s.P1.Pos, s.P2.Pos)
		if !ok {
			continue
		}
		if s.Owner == rd || s.P1.IsOnRoad(rd) || s.P2.IsOnRoad(rd) {
			return nil, 0, false
		}
		if t1 < bestT1 {
			seg := s
			hit, bestT1, hitT2 = &seg, t1, t2
		}
	}
	return hit, hitT2, true
}

// SplitSegment. put v between the end points of s, on the road that owns s.
func (g *RoadGenerator) SplitSegment(v *datastructure.Vertex, s datastructure.Segment) {
	owner := s.Owner
	v.ConnectToRoad(owner)

	s.P1.DisconnectFrom(s.P2)
	v.ConnectTo(s.P1)
	v.ConnectTo(s.P2)

	i := owner.IndexOf(s.P1)
	if i < 0 || i+1 >= len(owner.Points) || owner.Points[i+1] != s.P2 {
		panic(fmt.Sprintf("roadgen: segment %v -> %v is not part of road %v", s.P1, s.P2, owner))
	}
	if !g.Segments.Remove(s) {
		panic(fmt.Sprintf("roadgen: segment %v -> %v is not indexed", s.P1, s.P2))
	}

	owner.Points = slices.Insert(owner.Points, i+1, v)
	g.Segments.Add(datastructure.NewSegment(owner.Points[i], v, owner))
	g.Segments.Add(datastructure.NewSegment(v, owner.Points[i+2], owner))
}
