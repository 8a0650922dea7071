package roadgen

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidConfig   = errors.New("invalid road generator config")
	ErrIterationBudget = errors.New("road generator iteration budget exhausted")
)

// Config. tuning knobs of a RoadGenerator.
type Config struct {
	// RoadStepInterval. length of one integration step.
	RoadStepInterval float64 `validate:"gt=0"`
	// SegmentMinLength. steps not longer than this are rejected.
	SegmentMinLength float64 `validate:"gt=0"`
	// MergeRadius. a step landing this close to an existing vertex snaps onto it.
	MergeRadius float64 `validate:"gt=0"`

	VertexThreshold  int `validate:"gte=2"`
	SegmentThreshold int `validate:"gte=2"`
	RoadThreshold    int `validate:"gte=2"`

	// MaxIterations. maximum number of traces per Run, 0 = unbounded.
	MaxIterations int `validate:"gte=0"`
	// MaxRoadPoints. a road under construction ends once it has this many points, 0 = unbounded.
	MaxRoadPoints int `validate:"gte=0"`
	// LogEvery. log progress every LogEvery accepted roads, 0 = silent.
	LogEvery int `validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{
		RoadStepInterval: 1.0,
		SegmentMinLength: 0.001,
		MergeRadius:      0.5,
		VertexThreshold:  10,
		SegmentThreshold: 10,
		RoadThreshold:    10,
		MaxIterations:    0,
		MaxRoadPoints:    10000,
		LogEvery:         0,
	}
}

var validate = validator.New()

// Validate. returns an error wrapping ErrInvalidConfig if any field is out of range.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s must satisfy %s=%s, got %v", ErrInvalidConfig, fe.Field(), fe.Tag(),
				fe.Param(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
