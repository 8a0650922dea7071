package roadgen

import (
	"fmt"
	"time"
)

type Stats struct {
	Roads          int           `json:"roads"`
	Vertices       int           `json:"vertices"`
	Segments       int           `json:"segments"`
	Iterations     int           `json:"iterations"`
	RejectedTraces int           `json:"rejected_traces"`
	Splits         int           `json:"splits"`
	Snaps          int           `json:"snaps"`
	Duration       time.Duration `json:"duration"`
}

func (s Stats) String() string {
	return fmt.Sprintf("roads=%d vertices=%d segments=%d iterations=%d rejected=%d splits=%d snaps=%d took=%s",
		s.Roads, s.Vertices, s.Segments, s.Iterations, s.RejectedTraces, s.Splits, s.Snaps, s.Duration)
}
