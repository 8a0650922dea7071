package field

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// OrthoBasis. locally preferred travel directions. not necessarily unit length.
type OrthoBasis struct {
	Major r2.Point
	Minor r2.Point
}

// NewOrthoBasis. minor is major rotated 90 degrees counter clockwise.
func NewOrthoBasis(major r2.Point) OrthoBasis {
	return OrthoBasis{Major: major, Minor: major.Ortho()}
}

// Axis. Major if useMajor, else Minor.
func (b OrthoBasis) Axis(useMajor bool) r2.Point {
	if useMajor {
		return b.Major
	}
	return b.Minor
}

// RoadOrthoBasis. a source of road directions, blended with the other sources of a Field by distance and importance.
type RoadOrthoBasis interface {
	Center() r2.Point
	Importance() float64
	OrthoBasis(pos r2.Point, height float64, normal r3.Vector) OrthoBasis
}
