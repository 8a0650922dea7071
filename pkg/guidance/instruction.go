package guidance

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

const (
	TURN_SHARP_LEFT    = -3
	TURN_LEFT          = -2
	TURN_SLIGHT_LEFT   = -1
	CONTINUE_ON_STREET = 0
	TURN_SLIGHT_RIGHT  = 1
	TURN_RIGHT         = 2
	TURN_SHARP_RIGHT   = 3
	FINISH             = 4
	U_TURN             = 5
)

// turn thresholds in degrees of heading change.
const (
	continueMaxDegree = 12
	slightMaxDegree   = 40
	turnMaxDegree     = 105
	uTurnMinDegree    = 175
)

type Instruction struct {
	Sign  int
	Point r2.Point
	// Distance. path length from this instruction to the next one.
	Distance float64
}

func NewInstruction(sign int, point r2.Point) *Instruction {
	return &Instruction{Sign: sign, Point: point}
}

func (ins *Instruction) GetTurnDescription() string {
	switch ins.Sign {
	case CONTINUE_ON_STREET:
		return "continue"
	case TURN_SLIGHT_LEFT:
		return "turn slight left"
	case TURN_LEFT:
		return "turn left"
	case TURN_SHARP_LEFT:
		return "turn sharp left"
	case TURN_SLIGHT_RIGHT:
		return "turn slight right"
	case TURN_RIGHT:
		return "turn right"
	case TURN_SHARP_RIGHT:
		return "turn sharp right"
	case U_TURN:
		return "make a u-turn"
	case FINISH:
		return "arrive at destination"
	}
	return fmt.Sprintf("unknown instruction %d", ins.Sign)
}

func calcOrientation(from, to r2.Point) float64 {
	d := to.Sub(from)
	return math.Atan2(d.Y, d.X)
}

// alignOrientation. shift orientation by 2π so that it lies within π of baseOrientation.
func alignOrientation(baseOrientation, orientation float64) float64 {
	var resultOrientation float64
	if baseOrientation >= 0 {
		if orientation < -math.Pi+baseOrientation {
			resultOrientation = orientation + 2*math.Pi
		} else {
			resultOrientation = orientation
		}
	} else if orientation > math.Pi+baseOrientation {
		resultOrientation = orientation - 2*math.Pi
	} else {
		resultOrientation = orientation
	}
	return resultOrientation
}

// calculateOrientationDelta. heading change when moving on from base to next after arriving along prevOrientation.
// counter clockwise (left) is positive.
func calculateOrientationDelta(base, next r2.Point, prevOrientation float64) float64 {
	orientation := calcOrientation(base, next)
	orientation = alignOrientation(prevOrientation, orientation)
	return orientation - prevOrientation
}

func getTurnDirection(base, next r2.Point, prevOrientation float64) int {
	delta := calculateOrientationDelta(base, next, prevOrientation)
	deltaDegree := math.Abs(delta) * (180 / math.Pi)
	if deltaDegree < continueMaxDegree {
		return CONTINUE_ON_STREET
	} else if deltaDegree < slightMaxDegree {
		if delta > 0 {
			return TURN_SLIGHT_LEFT
		}
		return TURN_SLIGHT_RIGHT
	} else if deltaDegree < turnMaxDegree {
		if delta > 0 {
			return TURN_LEFT
		}
		return TURN_RIGHT
	} else if deltaDegree >= uTurnMinDegree {
		return U_TURN
	} else if delta > 0 {
		return TURN_SHARP_LEFT
	}
	return TURN_SHARP_RIGHT
}
