package datastructure_test

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/lintang-b-s/roadgenx/pkg/datastructure"
	"github.com/stretchr/testify/assert"
)

func TestVertexConnect(t *testing.T) {
	a := datastructure.NewVertex(r2.Point{X: 0, Y: 0})
	b := datastructure.NewVertex(r2.Point{X: 0, Y: 0})

	a.ConnectTo(b)
	assert.True(t, a.IsConnectedTo(b))
	assert.True(t, b.IsConnectedTo(a))
	assert.Panics(t, func() { a.ConnectTo(b) })
	assert.Panics(t, func() { b.ConnectTo(a) })

	a.DisconnectFrom(b)
	assert.False(t, a.IsConnectedTo(b))
	assert.False(t, b.IsConnectedTo(a))
	assert.Panics(t, func() { b.DisconnectFrom(a) })
}

func TestVertexRoads(t *testing.T) {
	v := datastructure.NewVertex(r2.Point{X: 1, Y: 2})
	rd := datastructure.NewRoad()

	v.ConnectToRoad(rd)
	assert.True(t, v.IsOnRoad(rd))
	assert.Panics(t, func() { v.ConnectToRoad(rd) })

	v.DisconnectFromRoad(rd)
	assert.False(t, v.IsOnRoad(rd))
	assert.Panics(t, func() { v.DisconnectFromRoad(rd) })
	assert.Equal(t, "(1.00, 2.00)", v.String())
}

func TestSegmentEquality(t *testing.T) {
	a := datastructure.NewVertex(r2.Point{X: 0, Y: 0})
	b := datastructure.NewVertex(r2.Point{X: 3, Y: -4})
	b2 := datastructure.NewVertex(r2.Point{X: 3, Y: -4})
	rd := datastructure.NewRoad()

	s := datastructure.NewSegment(a, b, rd)
	// identity comparison, deep equality would treat b and b2 as the same vertex
	assert.True(t, s == datastructure.NewSegment(a, b, rd))
	assert.False(t, s == datastructure.NewSegment(a, b2, rd))
	assert.False(t, s == datastructure.NewSegment(a, b, datastructure.NewRoad()))
	assert.False(t, s == datastructure.NewSegment(b, a, rd))

	assert.Equal(t, r2.RectFromPoints(r2.Point{X: 0, Y: -4}, r2.Point{X: 3, Y: 0}), s.AABB)
	assert.Equal(t, 5.0, s.Length())
	assert.True(t, s.Touches(a))
	assert.False(t, s.Touches(b2))
}
