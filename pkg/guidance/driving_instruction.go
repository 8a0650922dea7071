package guidance

import (
	"errors"

	"github.com/golang/geo/r2"
	"github.com/lintang-b-s/roadgenx/pkg/util"
)

type DrivingInstruction struct {
	Instruction string   `json:"instruction"`
	Point       r2.Point `json:"point"`
	Distance    float64  `json:"distance"`
}

func NewDrivingInstruction(ins Instruction) DrivingInstruction {
	return DrivingInstruction{
		Instruction: ins.GetTurnDescription(),
		Point:       ins.Point,
		Distance:    util.RoundFloat(ins.Distance, 2),
	}
}

// InstructionsFromPath. turn instructions for a polyline path.
// consecutive path vertices without a turn collapse into one instruction.
type InstructionsFromPath struct {
	ways            []*Instruction
	prevPoint       r2.Point
	prevOrientation float64
	prevInstruction *Instruction
}

func NewInstructionsFromPath() *InstructionsFromPath {
	return &InstructionsFromPath{
		ways: make([]*Instruction, 0),
	}
}

func (ifp *InstructionsFromPath) GetDrivingInstructions(path []r2.Point) ([]DrivingInstruction, error) {
	if len(path) < 2 {
		return nil, errors.New("path needs at least 2 points")
	}

	ifp.ways = ifp.ways[:0]
	ifp.prevPoint = path[0]
	ifp.prevOrientation = calcOrientation(path[0], path[1])
	ifp.prevInstruction = NewInstruction(CONTINUE_ON_STREET, path[0])
	ifp.ways = append(ifp.ways, ifp.prevInstruction)

	for _, p := range path[1:] {
		ifp.addPoint(p)
	}
	ifp.Finish()

	drivingInstructions := make([]DrivingInstruction, 0, len(ifp.ways))
	for _, ins := range ifp.ways {
		drivingInstructions = append(drivingInstructions, NewDrivingInstruction(*ins))
	}
	return drivingInstructions, nil
}

// addPoint. walk from prevPoint to p, starting a new instruction at prevPoint when the heading turns.
func (ifp *InstructionsFromPath) addPoint(p r2.Point) {
	base := ifp.prevPoint
	if p == base {
		return
	}

	if sign := getTurnDirection(base, p, ifp.prevOrientation); sign != CONTINUE_ON_STREET {
		ifp.prevInstruction = NewInstruction(sign, base)
		ifp.ways = append(ifp.ways, ifp.prevInstruction)
	}

	ifp.prevInstruction.Distance += p.Sub(base).Norm()
	ifp.prevOrientation = calcOrientation(base, p)
	ifp.prevPoint = p
}

func (ifp *InstructionsFromPath) Finish() {
	ifp.ways = append(ifp.ways, NewInstruction(FINISH, ifp.prevPoint))
}
