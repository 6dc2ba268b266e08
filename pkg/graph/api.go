package graph

import (
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/roadweave/pkg/centerline"
	"github.com/chazu/roadweave/pkg/road"
	"github.com/chazu/roadweave/pkg/spatial"
)

// minSnap keeps the snapping grid usable when the tolerance is zero.
const minSnap = 1e-6

// Builder assembles a Network road by road. Endpoints closer than the snap
// tolerance to an existing node join that node; the node keeps the position
// of the first endpoint that created it.
type Builder struct {
	params Params
	net    *Network
	snap   *spatial.Grid[NodeID]
	next   EdgeID
	errs   []error
}

// NewBuilder returns an empty builder.
func NewBuilder(p Params) *Builder {
	tol := max(p.SnapTolerance, minSnap)
	return &Builder{
		params: p,
		net:    newNetwork(p),
		snap:   spatial.NewGrid[NodeID](tol),
	}
}

// AddRoad normalizes s and adds it as the next edge. The edge ID is the
// number of roads added before it, whether or not they succeeded. A road
// that fails normalization is skipped and its error returned and recorded.
func (b *Builder) AddRoad(s road.Spec) (EdgeID, error) {
	id := b.next
	b.next++

	ns, err := road.NormalizeIndexed(s, int(id))
	if err != nil {
		b.errs = append(b.errs, err)
		return id, err
	}

	cl := centerline.Generate(ns, b.params.Centerline)
	width := RoadWidth(ns.LaneCount(), b.params)
	e := &Edge{
		ID:         id,
		Spec:       ns,
		Centerline: cl,
		Width:      width,
		Left:       cl.Path.Offset(width / 2),
		Right:      cl.Path.Offset(-width / 2),
	}
	e.NodeA = b.nodeAt(cl.Path.Start(), EdgeEnd{Edge: id, End: EndStart})
	e.NodeB = b.nodeAt(cl.Path.End(), EdgeEnd{Edge: id, End: EndEnd})
	b.net.addEdge(e)
	return id, nil
}

// nodeAt returns the node snapped to p, creating it if needed, and records
// ee as incident to it.
func (b *Builder) nodeAt(p v2.Vec, ee EdgeEnd) NodeID {
	tol := max(b.params.SnapTolerance, minSnap)
	id, _, ok := b.snap.Nearest(p, tol)
	if !ok {
		id = NodeID(len(b.net.Nodes))
		b.net.Nodes = append(b.net.Nodes, &Node{ID: id, Position: p})
		b.snap.Insert(p, id)
	}
	n := b.net.Nodes[id]
	n.Incident = append(n.Incident, ee)
	return id
}

// Errors returns the normalization errors recorded so far.
func (b *Builder) Errors() []error {
	return b.errs
}

// Build indexes the network's dead ends and returns it. The builder must
// not be used afterwards.
func (b *Builder) Build() *Network {
	b.net.termini = NewNodeIndex(b.net.DeadEnds())
	return b.net
}

// Build builds a network from a batch of roads. Roads that fail
// normalization are reported and skipped; the rest of the batch is built.
func Build(specs []road.Spec, p Params) (*Network, []error) {
	b := NewBuilder(p)
	for _, s := range specs {
		b.AddRoad(s)
	}
	return b.Build(), b.Errors()
}
