package service

import (
	"context"
	"errors"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/golang/geo/r2"
	"github.com/lintang-b-s/roadgenx/pkg/concurrent"
	"github.com/lintang-b-s/roadgenx/pkg/datastructure"
	"github.com/lintang-b-s/roadgenx/pkg/engine/field"
	"github.com/lintang-b-s/roadgenx/pkg/engine/roadgen"
	"github.com/lintang-b-s/roadgenx/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/roadgenx/pkg/guidance"
	"github.com/lintang-b-s/roadgenx/pkg/server"
	"github.com/lintang-b-s/roadgenx/pkg/snap"
)

const (
	// vertexSnapRadius. initial search radius when a query position is snapped to the network.
	vertexSnapRadius = 1.0
)

var ErrNoNetwork = errors.New("no road network generated yet")

type GenerateParam struct {
	Seed   r2.Point
	Bounds r2.Rect
	Bases  []field.RoadOrthoBasis
	Config roadgen.Config
}

type GenerateResult struct {
	Stats roadgen.Stats
	// Truncated. the iteration budget ran out before the frontier was empty.
	Truncated bool
	// Components. number of connected components of the network.
	Components int
}

type BatchResult struct {
	GenerateResult
	Err error
}

// network. a finished road network with its query indices, never mutated after generation.
type network struct {
	gen        *roadgen.RoadGenerator
	snapper    *snap.RoadSnapper
	components *routingalgorithm.Components
}

// GenerationService. generates road networks and answers queries on the last generated one.
type GenerationService struct {
	mu      sync.RWMutex
	network *network

	router     *routingalgorithm.RouteAlgorithm
	timeout    time.Duration
	numWorkers int
}

func NewGenerationService(timeout time.Duration, numWorkers, maxVisitedNodes int) *GenerationService {
	return &GenerationService{
		router:     routingalgorithm.NewRouteAlgorithm(maxVisitedNodes),
		timeout:    timeout,
		numWorkers: numWorkers,
	}
}

func (s *GenerationService) newGenerator(p GenerateParam) (*roadgen.RoadGenerator, error) {
	if len(p.Bases) == 0 {
		return nil, server.NewErrorf(server.ErrBadParamInput, "at least one ortho basis is required")
	}
	if !p.Bounds.ContainsPoint(p.Seed) {
		return nil, server.NewErrorf(server.ErrBadParamInput, "seed %v is outside of bounds %v", p.Seed, p.Bounds)
	}

	g, err := roadgen.NewRoadGenerator(p.Config, field.NewField(p.Bases...),
		roadgen.Hooks{InBounds: roadgen.BoxBounds(p.Bounds)})
	if errors.Is(err, roadgen.ErrInvalidConfig) {
		return nil, server.WrapErrorf(err, server.ErrBadParamInput, "invalid road generator config")
	} else if err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}
	return g, nil
}

// run. generate under the service deadline and check the finished network.
func (s *GenerationService) run(ctx context.Context, g *roadgen.RoadGenerator, seed r2.Point) (GenerateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stats, err := g.Run(ctx, seed)
	res := GenerateResult{Stats: stats}
	switch {
	case errors.Is(err, roadgen.ErrIterationBudget):
		res.Truncated = true
	case errors.Is(err, context.DeadlineExceeded):
		return res, server.WrapErrorf(err, server.ErrTimeout, "road generation took longer than %s", s.timeout)
	case err != nil:
		return res, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}

	if err := g.CheckConsistency(); err != nil {
		return res, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}
	return res, nil
}

func buildNetwork(g *roadgen.RoadGenerator) (*network, error) {
	snapper := snap.NewRoadSnapper()
	if err := snapper.BuildRoadSnapper(g.Roads.GetAll()); err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}
	return &network{
		gen:        g,
		snapper:    snapper,
		components: routingalgorithm.ConnectedComponents(g.Vertices.GetAll()),
	}, nil
}

// Generate. generate a network and make it the one later queries run against.
func (s *GenerationService) Generate(ctx context.Context, p GenerateParam) (GenerateResult, error) {
	g, err := s.newGenerator(p)
	if err != nil {
		return GenerateResult{}, err
	}

	res, err := s.run(ctx, g, p.Seed)
	if err != nil {
		return res, err
	}

	nw, err := buildNetwork(g)
	if err != nil {
		return res, err
	}
	res.Components = nw.components.Count()

	s.mu.Lock()
	s.network = nw
	s.mu.Unlock()

	log.Printf("road network generated: %v", res.Stats)
	return res, nil
}

// GenerateBatch. generate independent networks concurrently. results are indexed like params,
// a failed generation only fails its own entry. the networks are discarded.
func (s *GenerationService) GenerateBatch(ctx context.Context, params []GenerateParam) []BatchResult {
	items := make([]concurrent.GenerationJobItem, len(params))
	for i, p := range params {
		items[i] = concurrent.GenerationJobItem{
			Seed: p.Seed,
			NewGenerator: func() (*roadgen.RoadGenerator, error) {
				return s.newGenerator(p)
			},
		}
	}

	return concurrent.Run(s.numWorkers, items, func(job concurrent.GenerationJobItem) BatchResult {
		g, err := job.NewGenerator()
		if err != nil {
			return BatchResult{Err: err}
		}
		res, err := s.run(ctx, g, job.Seed)
		if err == nil {
			res.Components = routingalgorithm.ConnectedComponents(g.Vertices.GetAll()).Count()
		}
		return BatchResult{GenerateResult: res, Err: err}
	})
}

func (s *GenerationService) current() (*network, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.network == nil {
		return nil, server.WrapErrorf(ErrNoNetwork, server.ErrNotFound, "generate a road network first")
	}
	return s.network, nil
}

// NetworkStats. statistics of the current network.
func (s *GenerationService) NetworkStats(ctx context.Context) (roadgen.Stats, error) {
	nw, err := s.current()
	if err != nil {
		return roadgen.Stats{}, err
	}
	return nw.gen.Stats(), nil
}

func (s *GenerationService) NearestRoads(ctx context.Context, p r2.Point, radius float64, k int) ([]snap.RoadHit, error) {
	nw, err := s.current()
	if err != nil {
		return nil, err
	}
	hits, err := nw.snapper.NearestRoads(p, radius, k)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrBadParamInput, "invalid nearest road query")
	}
	return hits, nil
}

// snapToVertex. the road vertex closest to the snapped position of p.
func snapToVertex(snapper *snap.RoadSnapper, p r2.Point) (*datastructure.Vertex, error) {
	hits, err := snapper.NearestRoads(p, vertexSnapRadius, 1)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, server.NewErrorf(server.ErrNotFound, "position %v is not covered by the road network", p)
	}
	h := hits[0]
	a, b := h.Road.Points[h.SegmentIndex], h.Road.Points[h.SegmentIndex+1]
	if h.Position.Sub(a.Pos).Norm() <= h.Position.Sub(b.Pos).Norm() {
		return a, nil
	}
	return b, nil
}

// ShortestPath. both positions are snapped to their closest road vertex first.
// a path of a single vertex has no instructions.
func (s *GenerationService) ShortestPath(ctx context.Context, from, to r2.Point) ([]r2.Point, float64,
	[]guidance.DrivingInstruction, error) {
	nw, err := s.current()
	if err != nil {
		return nil, 0, nil, err
	}
	fromV, err := snapToVertex(nw.snapper, from)
	if err != nil {
		return nil, 0, nil, err
	}
	toV, err := snapToVertex(nw.snapper, to)
	if err != nil {
		return nil, 0, nil, err
	}
	if !nw.components.Connected(fromV, toV) {
		return nil, 0, nil, server.NewErrorf(server.ErrNotFound, "%v and %v are not connected", fromV, toV)
	}

	path, dist, found := s.router.ShortestPathBiDijkstra(fromV, toV)
	if !found {
		return nil, 0, nil, server.NewErrorf(server.ErrNotFound, "no path between %v and %v", fromV, toV)
	}

	positions := routingalgorithm.PathPositions(path)
	if len(positions) < 2 {
		return positions, dist, nil, nil
	}
	instructions, err := guidance.NewInstructionsFromPath().GetDrivingInstructions(positions)
	if err != nil {
		return nil, 0, nil, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}
	return positions, dist, instructions, nil
}

// DistanceMatrix. shortest path length between every pair of points, -1 where no path exists.
func (s *GenerationService) DistanceMatrix(ctx context.Context, points []r2.Point) ([][]float64, error) {
	nw, err := s.current()
	if err != nil {
		return nil, err
	}
	verts := make([]*datastructure.Vertex, len(points))
	for i, p := range points {
		if verts[i], err = snapToVertex(nw.snapper, p); err != nil {
			return nil, err
		}
	}

	items := []concurrent.RoutePairJobItem{}
	for i := range verts {
		for j := range verts {
			items = append(items, concurrent.RoutePairJobItem{FromIdx: i, ToIdx: j})
		}
	}
	dists := concurrent.Run(s.numWorkers, items, func(job concurrent.RoutePairJobItem) float64 {
		if !nw.components.Connected(verts[job.FromIdx], verts[job.ToIdx]) {
			return -1
		}
		_, dist, found := s.router.ShortestPathBiDijkstra(verts[job.FromIdx], verts[job.ToIdx])
		if !found {
			return -1
		}
		return dist
	})

	matrix := make([][]float64, len(points))
	for i := range matrix {
		matrix[i] = slices.Clone(dists[i*len(points) : (i+1)*len(points)])
	}
	return matrix, nil
}
