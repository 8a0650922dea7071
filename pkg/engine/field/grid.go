package field

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// GridOrthoBasis. constant major & minor axes, giving a grid like layout.
type GridOrthoBasis struct {
	center     r2.Point
	importance float64
	rotation   float64
	basis      OrthoBasis
}

// NewGridOrthoBasis. rotation in radians, major axis = (cos(rotation), sin(rotation)).
func NewGridOrthoBasis(center r2.Point, importance, rotation float64) *GridOrthoBasis {
	g := &GridOrthoBasis{center: center, importance: importance}
	g.SetRotation(rotation)
	return g
}

func (g *GridOrthoBasis) SetRotation(rotation float64) {
	g.rotation = rotation
	g.basis = NewOrthoBasis(r2.Point{X: math.Cos(rotation), Y: math.Sin(rotation)})
}

func (g *GridOrthoBasis) Rotation() float64 {
	return g.rotation
}

func (g *GridOrthoBasis) Center() r2.Point {
	return g.center
}

func (g *GridOrthoBasis) Importance() float64 {
	return g.importance
}

func (g *GridOrthoBasis) OrthoBasis(pos r2.Point, height float64, normal r3.Vector) OrthoBasis {
	return g.basis
}
