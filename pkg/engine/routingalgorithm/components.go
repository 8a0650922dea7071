package routingalgorithm

import (
	"iter"

	"github.com/lintang-b-s/roadgenx/pkg/datastructure"
)

// Components. connected components of the vertex graph. vertex links are symmetric, so one dfs pass suffices.
type Components struct {
	component map[*datastructure.Vertex]int
	sizes     []int
}

func ConnectedComponents(vertices iter.Seq[*datastructure.Vertex]) *Components {
	c := &Components{component: make(map[*datastructure.Vertex]int)}
	for v := range vertices {
		if _, ok := c.component[v]; ok {
			continue
		}
		c.sizes = append(c.sizes, c.dfs(v, len(c.sizes)))
	}
	return c
}

// dfs. label everything reachable from start with id, returns the number of labelled vertices.
func (c *Components) dfs(start *datastructure.Vertex, id int) int {
	stack := []*datastructure.Vertex{start}
	c.component[start] = id
	size := 0
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		size++
		for nb := range v.VertsConnectedTo {
			if _, ok := c.component[nb]; !ok {
				c.component[nb] = id
				stack = append(stack, nb)
			}
		}
	}
	return size
}

func (c *Components) Count() int {
	return len(c.sizes)
}

// Sizes. number of vertices per component, indexed by component id.
func (c *Components) Sizes() []int {
	return c.sizes
}

// Of. component id of v, -1 if v was not among the labelled vertices.
func (c *Components) Of(v *datastructure.Vertex) int {
	if id, ok := c.component[v]; ok {
		return id
	}
	return -1
}

// Connected. whether a path between a and b exists.
func (c *Components) Connected(a, b *datastructure.Vertex) bool {
	ca := c.Of(a)
	return ca >= 0 && ca == c.Of(b)
}
