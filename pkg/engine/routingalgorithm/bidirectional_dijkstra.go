package routingalgorithm

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/lintang-b-s/roadgenx/pkg/datastructure"
)

// RouteAlgorithm. shortest paths over the vertex graph of a generated road network.
// edge weight is the euclidean length between directly connected vertices.
type RouteAlgorithm struct {
	// MaxVisitedNodes. search budget, 0 means unbounded.
	MaxVisitedNodes int
}

func NewRouteAlgorithm(maxVisitedNodes int) *RouteAlgorithm {
	return &RouteAlgorithm{MaxVisitedNodes: maxVisitedNodes}
}

type searchSide struct {
	dist     map[*datastructure.Vertex]float64
	cameFrom map[*datastructure.Vertex]*datastructure.Vertex
	queue    *datastructure.PriorityQueue[*datastructure.Vertex]
}

func newSearchSide(start *datastructure.Vertex) *searchSide {
	s := &searchSide{
		dist:     map[*datastructure.Vertex]float64{start: 0},
		cameFrom: map[*datastructure.Vertex]*datastructure.Vertex{start: nil},
		queue:    datastructure.NewPriorityQueue[*datastructure.Vertex](true),
	}
	s.queue.Add(start, 0)
	return s
}

// ShortestPathBiDijkstra. returns the vertices from..to and the path length.
// found is false when to is unreachable from from or the search budget runs out.
func (rt *RouteAlgorithm) ShortestPathBiDijkstra(from, to *datastructure.Vertex) ([]*datastructure.Vertex, float64, bool) {
	if from == to {
		return []*datastructure.Vertex{from}, 0, true
	}

	forw := newSearchSide(from)
	back := newSearchSide(to)

	estimate := math.MaxFloat64
	var bestCommonVertex *datastructure.Vertex

	visitedCount := 0
	frontier, otherFrontier := forw, back
	for frontier.queue.Len() > 0 && otherFrontier.queue.Len() > 0 {
		if rt.MaxVisitedNodes > 0 && visitedCount >= rt.MaxVisitedNodes {
			return nil, 0, false
		}

		_, minFront := frontier.queue.Peek()
		_, minOther := otherFrontier.queue.Peek()
		if minFront+minOther >= estimate {
			// no path through unsettled vertices can beat the best candidate path.
			break
		}

		node, d := frontier.queue.Pop()
		visitedCount++

		for nb := range node.VertsConnectedTo {
			newCost := d + node.Pos.Sub(nb.Pos).Norm()

			// relax edge
			old, ok := frontier.dist[nb]
			if !ok || newCost < old {
				frontier.dist[nb] = newCost
				frontier.cameFrom[nb] = node
				frontier.queue.Remove(nb)
				frontier.queue.Add(nb, newCost)
			}

			if od, ok := otherFrontier.dist[nb]; ok {
				if pathDistance := frontier.dist[nb] + od; pathDistance < estimate {
					estimate = pathDistance
					bestCommonVertex = nb
				}
			}
		}

		frontier, otherFrontier = otherFrontier, frontier
	}

	if bestCommonVertex == nil {
		return nil, 0, false
	}
	return createPath(bestCommonVertex, forw.cameFrom, back.cameFrom), estimate, true
}

func createPath(common *datastructure.Vertex, cameFromf, cameFromb map[*datastructure.Vertex]*datastructure.Vertex) []*datastructure.Vertex {
	path := []*datastructure.Vertex{}
	for v := common; v != nil; v = cameFromf[v] {
		path = append(path, v)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	for v := cameFromb[common]; v != nil; v = cameFromb[v] {
		path = append(path, v)
	}
	return path
}

// PathPositions. positions of path vertices, in order.
func PathPositions(path []*datastructure.Vertex) []r2.Point {
	pts := make([]r2.Point, len(path))
	for i, v := range path {
		pts[i] = v.Pos
	}
	return pts
}
