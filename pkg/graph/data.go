package graph

import (
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/roadweave/pkg/geom"
)

// EdgeBoundaryAtNode is what a node sees of one incident edge end: the
// departing direction and the two boundary end points, named relative to a
// traveller leaving the node along the edge.
type EdgeBoundaryAtNode struct {
	EdgeEnd
	Node  NodeID `json:"node"`
	Point v2.Vec `json:"point"` // centerline end
	Dir   v2.Vec `json:"dir"`   // unit departing direction

	Left  v2.Vec `json:"left"`  // departing-left boundary end
	Right v2.Vec `json:"right"` // departing-right boundary end

	// LeftSide and RightSide name the edge's own boundaries that appear on
	// the departing left and right. They swap at the end of an edge.
	LeftSide  Side `json:"left_side"`
	RightSide Side `json:"right_side"`
}

// LeftRef returns the departing-left boundary.
func (b EdgeBoundaryAtNode) LeftRef() BoundaryRef {
	return BoundaryRef{Edge: b.Edge, Side: b.LeftSide}
}

// RightRef returns the departing-right boundary.
func (b EdgeBoundaryAtNode) RightRef() BoundaryRef {
	return BoundaryRef{Edge: b.Edge, Side: b.RightSide}
}

// boundaryEnd returns the end point of a boundary curve at end e.
func boundaryEnd(p geom.Path, end End) v2.Vec {
	if end == EndStart {
		return p.Start()
	}
	return p.End()
}

// BoundaryAt returns the boundary view of edge end ee. ok is false when the
// edge does not exist.
func (n *Network) BoundaryAt(ee EdgeEnd) (EdgeBoundaryAtNode, bool) {
	e := n.Edge(ee.Edge)
	if e == nil {
		return EdgeBoundaryAtNode{}, false
	}
	b := EdgeBoundaryAtNode{
		EdgeEnd:   ee,
		Node:      e.Node(ee.End),
		Point:     e.EndPoint(ee.End),
		Dir:       e.Departing(ee.End),
		LeftSide:  SideLeft,
		RightSide: SideRight,
	}
	if ee.End == EndEnd {
		b.LeftSide, b.RightSide = SideRight, SideLeft
	}
	b.Left = boundaryEnd(e.Boundary(b.LeftSide), ee.End)
	b.Right = boundaryEnd(e.Boundary(b.RightSide), ee.End)
	return b, true
}

// BoundaryDistance converts a distance measured from edge end ee along
// boundary side s into a distance from the start of that boundary curve.
func (n *Network) BoundaryDistance(ee EdgeEnd, s Side, fromEnd float64) float64 {
	e := n.Edge(ee.Edge)
	if e == nil {
		return 0
	}
	if ee.End == EndStart {
		return fromEnd
	}
	return e.Boundary(s).Length - fromEnd
}
