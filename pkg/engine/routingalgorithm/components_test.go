package routingalgorithm

import (
	"maps"
	"slices"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/lintang-b-s/roadgenx/pkg/datastructure"
	"github.com/lintang-b-s/roadgenx/pkg/engine/field"
	"github.com/stretchr/testify/assert"
)

func TestConnectedComponents(t *testing.T) {
	vs := newTestGraph()
	c := ConnectedComponents(maps.Values(vs))

	assert.Equal(t, 2, c.Count())
	assert.ElementsMatch(t, []int{6, 1}, c.Sizes())
	assert.True(t, c.Connected(vs["a"], vs["f"]))
	assert.True(t, c.Connected(vs["c"], vs["d"]))
	assert.False(t, c.Connected(vs["a"], vs["g"]))
	assert.True(t, c.Connected(vs["g"], vs["g"]))

	stranger := datastructure.NewVertex(r2.Point{X: 9, Y: 9})
	assert.Equal(t, -1, c.Of(stranger))
	assert.False(t, c.Connected(stranger, stranger))
}

func TestConnectedComponentsOfGeneratedLattice(t *testing.T) {
	g := generateNetwork(t, field.NewField(field.NewGridOrthoBasis(r2.Point{}, 1, 0)), r2.Point{})

	c := ConnectedComponents(g.Vertices.GetAll())
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, []int{g.Vertices.Count()}, c.Sizes())

	vertices := slices.Collect(g.Vertices.GetAll())
	assert.True(t, c.Connected(vertices[0], vertices[len(vertices)-1]))
}
