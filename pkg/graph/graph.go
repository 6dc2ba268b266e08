package graph

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/samber/lo"

	"github.com/chazu/roadweave/pkg/centerline"
	"github.com/chazu/roadweave/pkg/road"
)

// Default network parameters, in world units.
const (
	DefaultLaneWidth     = 3.5
	DefaultShoulderWidth = 0.5
	DefaultSnapTolerance = 0.05
)

// Params are the network-wide settings that shape edges and nodes.
type Params struct {
	LaneWidth     float64 `json:"lane_width"`
	ShoulderWidth float64 `json:"shoulder_width"`
	// TileSize caps the road width. Zero means unbounded.
	TileSize      float64 `json:"tile_size"`
	SnapTolerance float64 `json:"snap_tolerance"`

	Centerline centerline.Options `json:"centerline"`
}

// DefaultParams returns the default network parameters.
func DefaultParams() Params {
	return Params{
		LaneWidth:     DefaultLaneWidth,
		ShoulderWidth: DefaultShoulderWidth,
		SnapTolerance: DefaultSnapTolerance,
		Centerline:    centerline.DefaultOptions(),
	}
}

// RoadWidth returns the paved width of a road with the given lane count:
// lanes*laneWidth + 2*shoulder, clamped to [laneWidth, tileSize].
func RoadWidth(lanes int, p Params) float64 {
	w := float64(lanes)*p.LaneWidth + 2*p.ShoulderWidth
	if p.TileSize > 0 {
		w = math.Min(w, p.TileSize)
	}
	return math.Max(w, p.LaneWidth)
}

// Network is the road graph produced by one generation pass.
type Network struct {
	Nodes  []*Node `json:"nodes"` // indexed by NodeID
	Edges  []*Edge `json:"edges"` // in EdgeID order; IDs may skip failed roads
	Params Params  `json:"params"`

	edgeIndex map[EdgeID]*Edge
	tagIndex  map[string]EdgeID
	termini   *NodeIndex // dead ends, set by Builder.Build
}

func newNetwork(p Params) *Network {
	return &Network{
		Params:    p,
		edgeIndex: make(map[EdgeID]*Edge),
		tagIndex:  make(map[string]EdgeID),
	}
}

func (n *Network) addEdge(e *Edge) {
	n.Edges = append(n.Edges, e)
	n.edgeIndex[e.ID] = e
	if tag := e.Tag(); tag != "" {
		if _, dup := n.tagIndex[tag]; !dup {
			n.tagIndex[tag] = e.ID
		}
	}
}

// Node returns the node with the given ID, or nil.
func (n *Network) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(n.Nodes) {
		return nil
	}
	return n.Nodes[id]
}

// Edge returns the edge with the given ID, or nil.
func (n *Network) Edge(id EdgeID) *Edge {
	return n.edgeIndex[id]
}

// Lookup returns the first edge carrying tag, or nil.
func (n *Network) Lookup(tag string) *Edge {
	id, ok := n.tagIndex[tag]
	if !ok {
		return nil
	}
	return n.edgeIndex[id]
}

// MustLookup returns the first edge carrying tag, or panics.
func (n *Network) MustLookup(tag string) *Edge {
	e := n.Lookup(tag)
	if e == nil {
		panic(fmt.Sprintf("graph: no road tagged %q", tag))
	}
	return e
}

// NodeCount returns the number of nodes.
func (n *Network) NodeCount() int { return len(n.Nodes) }

// EdgeCount returns the number of edges.
func (n *Network) EdgeCount() int { return len(n.Edges) }

// DeadEnds returns the degree-1 nodes in ID order.
func (n *Network) DeadEnds() []*Node {
	return lo.Filter(n.Nodes, func(nd *Node, _ int) bool { return nd.Kind() == NodeDeadEnd })
}

// Junctions returns the nodes of degree 3 or more in ID order.
func (n *Network) Junctions() []*Node {
	return lo.Filter(n.Nodes, func(nd *Node, _ int) bool { return nd.Kind() == NodeJunction })
}

// NearestNode returns the node closest to p, or nil for an empty network.
func (n *Network) NearestNode(p v2.Vec) *Node {
	if len(n.Nodes) == 0 {
		return nil
	}
	idx := NewNodeIndex(n.Nodes)
	id, ok := idx.Nearest(p)
	if !ok {
		return nil
	}
	return n.Node(id)
}

// NearestDeadEnd returns the degree-1 node closest to p among those not in
// exclude. It does not modify n and is safe for concurrent use.
func (n *Network) NearestDeadEnd(p v2.Vec, exclude ...NodeID) *Node {
	idx := n.termini
	if idx == nil {
		// not built by a Builder
		idx = NewNodeIndex(n.DeadEnds())
	}
	id, ok := idx.Nearest(p, exclude...)
	if !ok {
		return nil
	}
	return n.Node(id)
}

// Specs exports the network back into normalized road specs, one per edge
// in edge order. Endpoints are replaced by the positions of the nodes they
// snapped to, so regenerating from the result reproduces the topology.
func (n *Network) Specs() []road.Spec {
	return lo.Map(n.Edges, func(e *Edge, _ int) road.Spec {
		s := e.Spec.Clone()
		last := len(s.Points) - 1
		if a := n.Node(e.NodeA); a != nil {
			s.Points[0].X, s.Points[0].Z = a.Position.X, a.Position.Y
		}
		if b := n.Node(e.NodeB); b != nil {
			s.Points[last].X, s.Points[last].Z = b.Position.X, b.Position.Y
		}
		return s
	})
}
