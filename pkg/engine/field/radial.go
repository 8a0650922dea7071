package field

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// RadialOrthoBasis. major axis points away from the center, minor axis goes around it.
// at the center itself both axes are zero.
type RadialOrthoBasis struct {
	center     r2.Point
	importance float64
}

func NewRadialOrthoBasis(center r2.Point, importance float64) *RadialOrthoBasis {
	return &RadialOrthoBasis{center: center, importance: importance}
}

func (r *RadialOrthoBasis) Center() r2.Point {
	return r.center
}

func (r *RadialOrthoBasis) Importance() float64 {
	return r.importance
}

func (r *RadialOrthoBasis) OrthoBasis(pos r2.Point, height float64, normal r3.Vector) OrthoBasis {
	return NewOrthoBasis(pos.Sub(r.center).Normalize())
}
