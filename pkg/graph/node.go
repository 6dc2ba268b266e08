package graph

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/samber/lo"

	"github.com/chazu/roadweave/pkg/centerline"
	"github.com/chazu/roadweave/pkg/geom"
	"github.com/chazu/roadweave/pkg/road"
)

// Node is a point where one or more road ends meet.
type Node struct {
	ID       NodeID    `json:"id"`
	Position v2.Vec    `json:"position"`
	Incident []EdgeEnd `json:"incident"`
}

// Degree returns the number of edge ends touching the node. A road that
// starts and ends on the same node counts twice.
func (n *Node) Degree() int {
	return len(n.Incident)
}

// Kind classifies the node by degree.
func (n *Node) Kind() NodeKind {
	switch d := n.Degree(); {
	case d == 0:
		return NodeIsolated
	case d == 1:
		return NodeDeadEnd
	case d == 2:
		return NodePassThrough
	default:
		return NodeJunction
	}
}

// IncidentEdgeIDs returns the distinct IDs of the edges touching the node.
func (n *Node) IncidentEdgeIDs() []EdgeID {
	return lo.Uniq(lo.Map(n.Incident, func(e EdgeEnd, _ int) EdgeID { return e.Edge }))
}

// Edge is one road between two nodes.
type Edge struct {
	ID    EdgeID    `json:"id"`
	NodeA NodeID    `json:"node_a"` // at the first polyline point
	NodeB NodeID    `json:"node_b"` // at the last polyline point
	Spec  road.Spec `json:"spec"`   // normalized

	Centerline *centerline.Centerline `json:"centerline"`
	Width      float64                `json:"width"`
	Left       geom.Path              `json:"left"`
	Right      geom.Path              `json:"right"`
}

// Node returns the node at end e.
func (e *Edge) Node(end End) NodeID {
	if end == EndStart {
		return e.NodeA
	}
	return e.NodeB
}

// Tag returns the road's tag.
func (e *Edge) Tag() string {
	return e.Spec.Tag
}

// Boundary returns the boundary curve on side s.
func (e *Edge) Boundary(s Side) geom.Path {
	if s == SideLeft {
		return e.Left
	}
	return e.Right
}

// EndPoint returns the centerline point at end e.
func (e *Edge) EndPoint(end End) v2.Vec {
	if end == EndStart {
		return e.Centerline.Path.Start()
	}
	return e.Centerline.Path.End()
}

// Departing returns the unit direction of travel away from the node at end
// e, along the centerline.
func (e *Edge) Departing(end End) v2.Vec {
	if end == EndStart {
		return e.Centerline.Path.StartTangent()
	}
	return e.Centerline.Path.EndTangent().MulScalar(-1)
}

// Length returns the centerline length.
func (e *Edge) Length() float64 {
	return e.Centerline.Path.Length
}
