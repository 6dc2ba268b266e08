package graph

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/dhconnelly/rtreego"
	"github.com/samber/lo"
)

// nodeTol is the half-size of the degenerate rectangle stored per node.
const nodeTol = 1e-9

type indexedNode struct {
	id  NodeID
	pos v2.Vec
}

func (n indexedNode) Bounds() rtreego.Rect {
	return rtreego.Point{n.pos.X, n.pos.Y}.ToRect(nodeTol)
}

// NodeIndex is an R-tree over node positions.
type NodeIndex struct {
	tree *rtreego.Rtree
	size int
}

// NewNodeIndex indexes the given nodes.
func NewNodeIndex(nodes []*Node) *NodeIndex {
	objs := lo.Map(nodes, func(n *Node, _ int) rtreego.Spatial {
		return indexedNode{id: n.ID, pos: n.Position}
	})
	return &NodeIndex{tree: rtreego.NewTree(2, 25, 50, objs...), size: len(objs)}
}

// Len returns the number of indexed nodes.
func (x *NodeIndex) Len() int { return x.size }

// Nearest returns the node closest to p, skipping any in exclude.
func (x *NodeIndex) Nearest(p v2.Vec, exclude ...NodeID) (NodeID, bool) {
	if x.size == 0 {
		return NoNode, false
	}
	skip := lo.SliceToMap(exclude, func(id NodeID) (NodeID, struct{}) { return id, struct{}{} })
	k := min(x.size, len(skip)+1)
	for _, s := range x.tree.NearestNeighbors(k, rtreego.Point{p.X, p.Y}) {
		if s == nil {
			continue
		}
		n := s.(indexedNode)
		if _, skipped := skip[n.id]; !skipped {
			return n.id, true
		}
	}
	return NoNode, false
}
