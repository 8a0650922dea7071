package concurrent

import (
	"github.com/golang/geo/r2"
	"github.com/lintang-b-s/roadgenx/pkg/engine/roadgen"
)

// GenerationJobItem. one independent road network generation.
// NewGenerator must return a generator with its own field, fields are not safe to share between goroutines.
type GenerationJobItem struct {
	Seed         r2.Point
	NewGenerator func() (*roadgen.RoadGenerator, error)
}

// RoutePairJobItem. shortest path query between two entries of a distance matrix.
type RoutePairJobItem struct {
	FromIdx int
	ToIdx   int
}

type JobI interface {
	GenerationJobItem | RoutePairJobItem
}

type Job[T JobI] struct {
	ID      int
	JobItem T
}

type JobFunc[T JobI, G any] func(job T) G

type JobResult[G any] struct {
	ID     int
	Result G
}
