package roadgen

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/lintang-b-s/roadgenx/pkg/datastructure"
	"github.com/lintang-b-s/roadgenx/pkg/engine/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(half float64) r2.Rect {
	return r2.RectFromPoints(r2.Point{X: -half, Y: -half}, r2.Point{X: half, Y: half})
}

func newTestGenerator(t *testing.T, cfg Config, f *field.Field, bounds r2.Rect) *RoadGenerator {
	t.Helper()
	g, err := NewRoadGenerator(cfg, f, Hooks{InBounds: BoxBounds(bounds)})
	require.NoError(t, err)
	return g
}

func gridField() *field.Field {
	return field.NewField(field.NewGridOrthoBasis(r2.Point{}, 1, 0))
}

func addVertex(g *RoadGenerator, pos r2.Point) *datastructure.Vertex {
	v := datastructure.NewVertex(pos)
	g.Vertices.Add(v)
	return v
}

func assertSymmetricLinks(t *testing.T, g *RoadGenerator) {
	t.Helper()
	for a := range g.Vertices.GetAll() {
		for b := range a.VertsConnectedTo {
			assert.True(t, b.IsConnectedTo(a), "%v -> %v is not symmetric", a, b)
		}
	}
}

func findRoad(g *RoadGenerator, match func(rd *datastructure.Road) bool) *datastructure.Road {
	for rd := range g.Roads.GetAll() {
		if match(rd) {
			return rd
		}
	}
	return nil
}

func TestRunStraightLineField(t *testing.T) {
	g := newTestGenerator(t, DefaultConfig(), gridField(), square(10))

	stats, err := g.Run(context.Background(), r2.Point{X: 0, Y: 0})
	require.NoError(t, err)
	require.NoError(t, g.CheckConsistency())
	assertSymmetricLinks(t, g)

	// the grid field fills the box with a unit lattice: 21x21 vertices, 2*20*21 edges.
	assert.Equal(t, 441, stats.Vertices)
	assert.Equal(t, 840, stats.Segments)
	assert.Equal(t, 406, stats.Roads)
	// every vertex is tried on both axes in both directions.
	assert.Equal(t, 4*441, stats.Iterations)
	assert.Equal(t, stats.Iterations-stats.Roads, stats.RejectedTraces)
	assert.Equal(t, 0, stats.Splits)
	assert.Equal(t, 400, stats.Snaps)

	for v := range g.Vertices.GetAll() {
		assert.Equal(t, math.Round(v.Pos.X), v.Pos.X)
		assert.Equal(t, math.Round(v.Pos.Y), v.Pos.Y)
	}

	onXAxis := func(rd *datastructure.Road) bool {
		for _, p := range rd.Points {
			if math.Abs(p.Pos.Y) > g.cfg.MergeRadius {
				return false
			}
		}
		return true
	}
	hasPoint := func(rd *datastructure.Road, pos r2.Point) bool {
		for _, p := range rd.Points {
			if p.Pos == pos {
				return true
			}
		}
		return false
	}

	east := findRoad(g, func(rd *datastructure.Road) bool {
		return onXAxis(rd) && hasPoint(rd, r2.Point{}) && hasPoint(rd, r2.Point{X: 10})
	})
	require.NotNil(t, east, "no road along +x from the seed")
	assert.Len(t, east.Points, 11)

	west := findRoad(g, func(rd *datastructure.Road) bool {
		return onXAxis(rd) && hasPoint(rd, r2.Point{}) && hasPoint(rd, r2.Point{X: -10})
	})
	require.NotNil(t, west, "no road along -x from the seed")

	vertical := findRoad(g, func(rd *datastructure.Road) bool {
		if !hasPoint(rd, r2.Point{}) {
			return false
		}
		for _, p := range rd.Points {
			if p.Pos.X != 0 || p.Pos.Y == 0 {
				continue
			}
			return true
		}
		return false
	})
	require.NotNil(t, vertical, "no road along the y axis through the seed")
}

func TestRunIsRepeatableAfterReset(t *testing.T) {
	g := newTestGenerator(t, DefaultConfig(), gridField(), square(4))

	first, err := g.Run(context.Background(), r2.Point{X: 0.5, Y: 0.5})
	require.NoError(t, err)

	g.Reset()
	assert.Equal(t, 0, g.Roads.Count())
	assert.Equal(t, 0, g.Vertices.Count())
	assert.Equal(t, 0, g.Segments.Count())

	second, err := g.Run(context.Background(), r2.Point{X: 0.5, Y: 0.5})
	require.NoError(t, err)
	assert.Equal(t, first.Roads, second.Roads)
	assert.Equal(t, first.Vertices, second.Vertices)
	assert.Equal(t, first.Segments, second.Segments)
	assert.Equal(t, first.Iterations, second.Iterations)
}

func TestTraceIntersectionSplit(t *testing.T) {
	g := newTestGenerator(t, DefaultConfig(), gridField(), square(5))

	a := addVertex(g, r2.Point{X: 0, Y: 0})
	horizontal := g.Trace(a, true, 1)
	require.NotNil(t, horizontal)
	g.Roads.Add(horizontal)
	require.Len(t, horizontal.Points, 6)
	left, right := horizontal.Points[2], horizontal.Points[3]

	b := addVertex(g, r2.Point{X: 2.5, Y: -3.5})
	vertical := g.Trace(b, false, 1)
	require.NotNil(t, vertical)
	g.Roads.Add(vertical)

	assert.Equal(t, []r2.Point{{X: 0}, {X: 1}, {X: 2}, {X: 2.5}, {X: 3}, {X: 4}, {X: 5}}, horizontal.Positions())
	require.Len(t, vertical.Points, 10)
	assert.Equal(t, r2.Point{X: 2.5, Y: 5}, vertical.Last().Pos)

	junction := horizontal.Points[3]
	assert.Same(t, junction, vertical.Points[4])
	assert.True(t, junction.IsOnRoad(horizontal))
	assert.True(t, junction.IsOnRoad(vertical))
	assert.Len(t, junction.VertsConnectedTo, 4)

	// the crossed segment is replaced by two halves
	assert.False(t, g.Segments.Contains(datastructure.NewSegment(left, right, horizontal)))
	assert.True(t, g.Segments.Contains(datastructure.NewSegment(left, junction, horizontal)))
	assert.True(t, g.Segments.Contains(datastructure.NewSegment(junction, right, horizontal)))
	assert.False(t, left.IsConnectedTo(right))

	assert.Equal(t, 1, g.Stats().Splits)
	require.NoError(t, g.CheckConsistency())
}

func TestTraceMergeRadiusSnapping(t *testing.T) {
	g := newTestGenerator(t, DefaultConfig(), gridField(), square(5))

	a := addVertex(g, r2.Point{X: 0, Y: 0})
	horizontal := g.Trace(a, true, 1)
	require.NotNil(t, horizontal)
	g.Roads.Add(horizontal)
	target := horizontal.Points[3]
	require.Equal(t, r2.Point{X: 3, Y: 0}, target.Pos)

	// third step lands on (3.2, 0.4), within 0.5 of (3, 0)
	b := addVertex(g, r2.Point{X: 3.2, Y: -2.6})
	vertical := g.Trace(b, false, 1)
	require.NotNil(t, vertical)
	g.Roads.Add(vertical)

	require.Len(t, vertical.Points, 4)
	assert.Same(t, target, vertical.Last())
	assert.True(t, target.IsConnectedTo(vertical.Points[2]))
	assert.Equal(t, 9, g.Vertices.Count())
	assert.Equal(t, 1, g.Stats().Snaps)
	assert.Equal(t, 0, g.Stats().Splits)

	for v := range g.Vertices.GetAllNearbyPos(r2.Point{X: 3.2, Y: 0.4}) {
		assert.Same(t, target, v, "duplicate vertex created next to the snap target")
	}
	require.NoError(t, g.CheckConsistency())
}

func TestTraceRejections(t *testing.T) {
	t.Run("short segment", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.SegmentMinLength = cfg.RoadStepInterval
		g := newTestGenerator(t, cfg, gridField(), square(5))

		a := addVertex(g, r2.Point{})
		assert.Nil(t, g.Trace(a, true, 1))
		assert.Empty(t, a.RoadsConnectedTo)
		assert.Empty(t, a.VertsConnectedTo)
		assert.Equal(t, 1, g.Vertices.Count())
		assert.Equal(t, 0, g.Segments.Count())
	})

	t.Run("out of bounds", func(t *testing.T) {
		g := newTestGenerator(t, DefaultConfig(), gridField(), square(5))

		a := addVertex(g, r2.Point{X: 5, Y: 0})
		assert.Nil(t, g.Trace(a, true, 1))
		assert.NotNil(t, g.Trace(a, true, -1))
	})

	t.Run("duplicate edge", func(t *testing.T) {
		g := newTestGenerator(t, DefaultConfig(), gridField(), square(5))

		a := addVertex(g, r2.Point{X: 0, Y: 0})
		east := g.Trace(a, true, 1)
		require.NotNil(t, east)
		g.Roads.Add(east)

		// (1,0) is already linked to (0,0): tracing back west from it is a duplicate edge
		assert.Nil(t, g.Trace(east.Points[1], true, -1))
		require.NoError(t, g.CheckConsistency())
	})

	t.Run("road point limit", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxRoadPoints = 4
		g := newTestGenerator(t, cfg, gridField(), square(10))

		rd := g.Trace(addVertex(g, r2.Point{}), true, 1)
		require.NotNil(t, rd)
		assert.Len(t, rd.Points, 4)
	})
}

func TestRunRadialField(t *testing.T) {
	f := field.NewField(field.NewRadialOrthoBasis(r2.Point{}, 1))
	g := newTestGenerator(t, DefaultConfig(), f, square(10))

	stats, err := g.Run(context.Background(), r2.Point{X: 0.5, Y: 0.3})
	require.NoError(t, err)
	require.NoError(t, g.CheckConsistency())
	assertSymmetricLinks(t, g)

	assert.Greater(t, stats.Roads, 10)
	assert.Greater(t, stats.Splits, 0)

	curved := 0
	for rd := range g.Roads.GetAll() {
		for _, p := range rd.Points {
			assert.True(t, square(10).ContainsPoint(p.Pos))
		}
		if len(rd.Points) < 3 {
			continue
		}
		a, b, c := rd.Points[0].Pos, rd.Points[1].Pos, rd.Points[2].Pos
		if math.Abs(b.Sub(a).Cross(c.Sub(a))) > 1e-6 {
			curved++
		}
	}
	assert.Greater(t, curved, 0, "radial field produced no curved roads")
}

func TestRunSeedWithoutRoadsIsPurged(t *testing.T) {
	// both axes vanish at the radial center, so no step from the seed is long enough
	f := field.NewField(field.NewRadialOrthoBasis(r2.Point{}, 1))
	g := newTestGenerator(t, DefaultConfig(), f, square(5))

	stats, err := g.Run(context.Background(), r2.Point{})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Roads)
	assert.Equal(t, 2, stats.Iterations)
	assert.Equal(t, 2, stats.RejectedTraces)
	assert.Equal(t, 0, g.Vertices.Count())
}

func TestRunIterationBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 10
	g := newTestGenerator(t, cfg, gridField(), square(10))

	stats, err := g.Run(context.Background(), r2.Point{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIterationBudget))
	assert.Equal(t, 10, stats.Iterations)
	assert.Greater(t, stats.Roads, 0)
	require.NoError(t, g.CheckConsistency())
}

func TestRunContextCanceled(t *testing.T) {
	g := newTestGenerator(t, DefaultConfig(), gridField(), square(10))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := g.Run(ctx, r2.Point{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, stats.Iterations)
	assert.Equal(t, 0, g.Vertices.Count())
}

func TestPriorityHookOrdersFrontier(t *testing.T) {
	calls := 0
	g, err := NewRoadGenerator(DefaultConfig(), gridField(), Hooks{
		InBounds: BoxBounds(square(3)),
		Priority: func(pos r2.Point) float64 {
			calls++
			return pos.X
		},
	})
	require.NoError(t, err)

	_, err = g.Run(context.Background(), r2.Point{})
	require.NoError(t, err)
	assert.Greater(t, calls, 0)
	require.NoError(t, g.CheckConsistency())
	assert.Equal(t, 49, g.Vertices.Count())
}

func TestRunTracesSeedDirectionsFirst(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 2
	g, err := NewRoadGenerator(cfg, gridField(), Hooks{
		InBounds: BoxBounds(square(3)),
		Priority: func(pos r2.Point) float64 { return 5 },
	})
	require.NoError(t, err)

	stats, err := g.Run(context.Background(), r2.Point{})
	require.ErrorIs(t, err, ErrIterationBudget)
	assert.Equal(t, 2, stats.Roads)

	// both major directions of the seed, nothing spawned along the minor axis yet
	for v := range g.Vertices.GetAll() {
		assert.Equal(t, 0.0, v.Pos.Y, "vertex %v off the seed axis", v)
	}
	assert.Equal(t, 7, g.Vertices.Count())
	require.NoError(t, g.CheckConsistency())
}

func TestNewRoadGeneratorValidation(t *testing.T) {
	_, err := NewRoadGenerator(DefaultConfig(), nil, Hooks{})
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	cfg := DefaultConfig()
	cfg.VertexThreshold = 1
	_, err = NewRoadGenerator(cfg, gridField(), Hooks{})
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	g, err := NewRoadGenerator(DefaultConfig(), gridField(), Hooks{})
	require.NoError(t, err)
	assert.True(t, g.hooks.InBounds(r2.Point{X: 500, Y: -500}))
	assert.False(t, g.hooks.InBounds(r2.Point{X: 500.5, Y: 0}))
	h, n := g.hooks.SurfaceData(r2.Point{X: 3, Y: 4})
	assert.Equal(t, 0.0, h)
	assert.Equal(t, 1.0, n.Y)
	assert.Equal(t, 0.0, g.hooks.Priority(r2.Point{X: 3, Y: 4}))
}
