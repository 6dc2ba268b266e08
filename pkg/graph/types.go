package graph

import "fmt"

// NodeID identifies a node. IDs are dense and assigned in order of first
// encounter.
type NodeID int

// NoNode is the zero reference.
const NoNode NodeID = -1

// IsZero reports whether id refers to no node.
func (id NodeID) IsZero() bool { return id < 0 }

func (id NodeID) String() string {
	if id.IsZero() {
		return "n-"
	}
	return fmt.Sprintf("n%d", int(id))
}

// EdgeID identifies an edge. It is the index of the road in the input batch,
// so it is stable when the input order is stable.
type EdgeID int

func (id EdgeID) String() string {
	return fmt.Sprintf("e%d", int(id))
}

// End names one end of an edge.
type End int

const (
	EndStart End = iota // the first polyline point
	EndEnd              // the last polyline point
)

func (e End) String() string {
	switch e {
	case EndStart:
		return "start"
	case EndEnd:
		return "end"
	default:
		return fmt.Sprintf("End(%d)", int(e))
	}
}

// Other returns the opposite end.
func (e End) Other() End {
	if e == EndStart {
		return EndEnd
	}
	return EndStart
}

// Side names one boundary of an edge, relative to its own direction of
// travel (first point to last point).
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// NodeKind classifies a node by degree.
type NodeKind int

const (
	NodeIsolated    NodeKind = iota // degree 0
	NodeDeadEnd                     // degree 1
	NodePassThrough                 // degree 2
	NodeJunction                    // degree 3 or more
)

func (k NodeKind) String() string {
	switch k {
	case NodeIsolated:
		return "isolated"
	case NodeDeadEnd:
		return "dead-end"
	case NodePassThrough:
		return "pass-through"
	case NodeJunction:
		return "junction"
	default:
		return "unknown"
	}
}

// EdgeEnd is one end of one edge, as seen from the node it touches.
type EdgeEnd struct {
	Edge EdgeID `json:"edge"`
	End  End    `json:"end"`
}

func (e EdgeEnd) String() string {
	return fmt.Sprintf("%s.%s", e.Edge, e.End)
}

// BoundaryRef names one boundary curve of one edge.
type BoundaryRef struct {
	Edge EdgeID `json:"edge"`
	Side Side   `json:"side"`
}

func (b BoundaryRef) String() string {
	return fmt.Sprintf("%s.%s", b.Edge, b.Side)
}
