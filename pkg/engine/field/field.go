package field

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

const (
	// MinImportance. importance floor, keeps the distance weighting finite for zero importance sources.
	MinImportance = 1e-4
)

// Field. weighted blend of road ortho bases.
// each source i gets weight 1 - d_i/sum(d), with d_i = |pos - center_i| / max(MinImportance, importance_i).
// a single source always gets weight 1.
type Field struct {
	bases []RoadOrthoBasis
	dists []float64
}

// NewField. panics without any basis.
func NewField(bases ...RoadOrthoBasis) *Field {
	if len(bases) == 0 {
		panic("field: at least one road ortho basis is required")
	}
	return &Field{
		bases: bases,
		dists: make([]float64, len(bases)),
	}
}

func (f *Field) Bases() []RoadOrthoBasis {
	return f.bases
}

// At. blended basis at pos. not safe for concurrent use, the distance buffer is shared.
func (f *Field) At(pos r2.Point, height float64, normal r3.Vector) OrthoBasis {
	if len(f.bases) == 1 {
		return f.bases[0].OrthoBasis(pos, height, normal)
	}

	sum := 0.0
	for i, b := range f.bases {
		f.dists[i] = pos.Sub(b.Center()).Norm() / math.Max(MinImportance, b.Importance())
		sum += f.dists[i]
	}

	var blended OrthoBasis
	for i, b := range f.bases {
		var weight float64
		if sum == 0 {
			// pos sits on every center
			weight = 1.0 / float64(len(f.bases))
		} else {
			weight = 1.0 - f.dists[i]/sum
		}

		ob := b.OrthoBasis(pos, height, normal)
		blended.Major = blended.Major.Add(ob.Major.Mul(weight))
		blended.Minor = blended.Minor.Add(ob.Minor.Mul(weight))
	}
	return blended
}
