package roadgen

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Hooks. extension points of the generator. nil members take the defaults.
type Hooks struct {
	// SurfaceData. terrain height and surface normal at pos. default: flat plane, normal +Y.
	SurfaceData func(pos r2.Point) (height float64, normal r3.Vector)
	// Priority. frontier priority of seeds at pos, highest is traced first. default: 0 everywhere.
	// not consulted for the two seed directions of Run, those always go first.
	Priority func(pos r2.Point) float64
	// InBounds. whether a road may reach pos. default: DefaultBounds.
	InBounds func(pos r2.Point) bool
}

// DefaultBounds. [-500,500] on both axes.
func DefaultBounds() r2.Rect {
	return r2.RectFromPoints(r2.Point{X: -500, Y: -500}, r2.Point{X: 500, Y: 500})
}

// BoxBounds. InBounds hook accepting the points of rect, edges included.
func BoxBounds(rect r2.Rect) func(r2.Point) bool {
	return rect.ContainsPoint
}

func flatSurface(pos r2.Point) (float64, r3.Vector) {
	return 0, r3.Vector{X: 0, Y: 1, Z: 0}
}

func constantPriority(pos r2.Point) float64 {
	return 0
}

func (h Hooks) withDefaults() Hooks {
	if h.SurfaceData == nil {
		h.SurfaceData = flatSurface
	}
	if h.Priority == nil {
		h.Priority = constantPriority
	}
	if h.InBounds == nil {
		h.InBounds = BoxBounds(DefaultBounds())
	}
	return h
}
