package datastructure

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// Vertex. a junction of the road network. identity is the pointer, two vertices at the same position are distinct.
type Vertex struct {
	Pos              r2.Point
	RoadsConnectedTo map[*Road]struct{}
	VertsConnectedTo map[*Vertex]struct{}
}

func NewVertex(pos r2.Point) *Vertex {
	return &Vertex{
		Pos:              pos,
		RoadsConnectedTo: make(map[*Road]struct{}),
		VertsConnectedTo: make(map[*Vertex]struct{}),
	}
}

// ConnectTo. link v and other in both directions. panics if they are already linked.
func (v *Vertex) ConnectTo(other *Vertex) {
	if v.IsConnectedTo(other) || other.IsConnectedTo(v) {
		panic(fmt.Sprintf("vertex %v already connected to %v", v, other))
	}
	v.VertsConnectedTo[other] = struct{}{}
	other.VertsConnectedTo[v] = struct{}{}
}

// DisconnectFrom. remove the link between v and other. panics if they are not linked.
func (v *Vertex) DisconnectFrom(other *Vertex) {
	if !v.IsConnectedTo(other) || !other.IsConnectedTo(v) {
		panic(fmt.Sprintf("vertex %v not connected to %v", v, other))
	}
	delete(v.VertsConnectedTo, other)
	delete(other.VertsConnectedTo, v)
}

func (v *Vertex) IsConnectedTo(other *Vertex) bool {
	_, ok := v.VertsConnectedTo[other]
	return ok
}

// ConnectToRoad. record that rd passes through v. panics if already recorded.
func (v *Vertex) ConnectToRoad(rd *Road) {
	if v.IsOnRoad(rd) {
		panic(fmt.Sprintf("vertex %v already on road %p", v, rd))
	}
	v.RoadsConnectedTo[rd] = struct{}{}
}

func (v *Vertex) DisconnectFromRoad(rd *Road) {
	if !v.IsOnRoad(rd) {
		panic(fmt.Sprintf("vertex %v not on road %p", v, rd))
	}
	delete(v.RoadsConnectedTo, rd)
}

func (v *Vertex) IsOnRoad(rd *Road) bool {
	_, ok := v.RoadsConnectedTo[rd]
	return ok
}

func (v *Vertex) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", v.Pos.X, v.Pos.Y)
}
