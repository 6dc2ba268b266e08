// Package generate runs the whole road network pipeline: normalize and
// build the graph, resolve junctions, synthesize caps and links, place
// poles and resolve pole collisions. Generate is a pure function of its
// input and parameters; every recovered failure is reported in the result.
package generate

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/samber/lo"

	"github.com/chazu/roadweave/pkg/collision"
	"github.com/chazu/roadweave/pkg/connector"
	"github.com/chazu/roadweave/pkg/geom"
	"github.com/chazu/roadweave/pkg/graph"
	"github.com/chazu/roadweave/pkg/junction"
	"github.com/chazu/roadweave/pkg/road"
)

// Link asks for curb connectors between the dead ends nearest A and B.
type Link struct {
	A v2.Vec `json:"a" yaml:"a"`
	B v2.Vec `json:"b" yaml:"b"`
	// Radius is the turn radius. Zero uses Params.LinkTurnRadius.
	Radius float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
}

// Input is one batch of authored geometry.
type Input struct {
	Roads []road.Spec `json:"roads" yaml:"roads"`
	Links []Link      `json:"links,omitempty" yaml:"links,omitempty"`
}

// Purpose says why a connector was synthesized.
type Purpose string

const (
	PurposeCap  Purpose = "cap"
	PurposeLink Purpose = "link"
)

// ConnectorRecord is a synthesized connector and where it belongs.
type ConnectorRecord struct {
	Purpose Purpose      `json:"purpose"`
	Node    graph.NodeID `json:"node"` // the dead end a cap closes or a link leaves
	To      graph.NodeID `json:"to"`   // the dead end a link reaches; NoNode for caps
	Link    int          `json:"link"` // index into Input.Links; -1 for caps

	Connector connector.Connector `json:"connector"`
	Path      geom.Path           `json:"path"`
}

// FailureKind classifies a recovered failure.
type FailureKind string

const (
	FailureParams    FailureKind = "params"
	FailureRoad      FailureKind = "road"
	FailureCorner    FailureKind = "corner"
	FailureConnector FailureKind = "connector"
	FailureLink      FailureKind = "link"
	FailureCollision FailureKind = "collision"
)

// Failure is one recovered problem. Fields that do not apply are -1.
type Failure struct {
	Kind    FailureKind  `json:"kind"`
	Road    int          `json:"road"`
	Node    graph.NodeID `json:"node"`
	Link    int          `json:"link"`
	Pole    int          `json:"pole"`
	Message string       `json:"message"`
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Result is everything one generation pass produces.
type Result struct {
	Network    *graph.Network               `json:"network"`
	Joins      []junction.Join              `json:"joins"`
	Connectors []ConnectorRecord            `json:"connectors"`
	Poles      []collision.Pole             `json:"poles"`
	Adjusted   []collision.AdjustedEndEntry `json:"adjusted"`
	Unresolved []int                        `json:"unresolved"`
	Validation graph.ValidationResult       `json:"validation"`
	Failures   []Failure                    `json:"failures"`
}

// Summary counts what a result holds.
type Summary struct {
	Nodes           int     `json:"nodes"`
	Edges           int     `json:"edges"`
	Joins           int     `json:"joins"`
	Fillets         int     `json:"fillets"`
	Cutbacks        int     `json:"cutbacks"`
	Connectors      int     `json:"connectors"`
	ConnectorLength float64 `json:"connector_length"`
	Poles           int     `json:"poles"`
	Adjusted        int     `json:"adjusted"`
	Unresolved      int     `json:"unresolved"`
	Failures        int     `json:"failures"`
}

// Summary returns the result's counts.
func (r *Result) Summary() Summary {
	s := Summary{
		Joins:      len(r.Joins),
		Connectors: len(r.Connectors),
		Poles:      len(r.Poles),
		Adjusted:   len(r.Adjusted),
		Unresolved: len(r.Unresolved),
		Failures:   len(r.Failures),
	}
	if r.Network != nil {
		s.Nodes, s.Edges = r.Network.NodeCount(), r.Network.EdgeCount()
	}
	s.Fillets = lo.SumBy(r.Joins, func(j junction.Join) int { return j.Fillets() })
	s.Cutbacks = lo.SumBy(r.Joins, func(j junction.Join) int { return j.Cutbacks() })
	s.ConnectorLength = lo.SumBy(r.Connectors, func(c ConnectorRecord) float64 { return c.Connector.Length() })
	return s
}

// FailuresByKind counts failures per kind.
func (r *Result) FailuresByKind() map[FailureKind]int {
	return lo.CountValuesBy(r.Failures, func(f Failure) FailureKind { return f.Kind })
}

func (r *Result) fail(f Failure) {
	Logger().Warn("generate: recovered failure",
		"kind", string(f.Kind), "road", f.Road, "node", int(f.Node), "link", f.Link, "msg", f.Message)
	r.Failures = append(r.Failures, f)
}

func failure(kind FailureKind, format string, args ...any) Failure {
	return Failure{Kind: kind, Road: -1, Node: graph.NoNode, Link: -1, Pole: -1, Message: fmt.Sprintf(format, args...)}
}

// Generate runs the pipeline over in. It never panics on bad input: roads
// that fail normalization are skipped, infeasible corners are clamped,
// connectors that cannot be solved are omitted and poles that cannot be
// cleared are pinned, each recorded in Result.Failures. Invalid parameters
// produce an empty network and a single failure.
func Generate(in Input, p Params) *Result {
	log := Logger()
	res := &Result{}

	if err := p.Validate(); err != nil {
		res.Network = graph.NewBuilder(p.GraphParams()).Build()
		res.fail(failure(FailureParams, "%v", err))
		return res
	}

	b := graph.NewBuilder(p.GraphParams())
	for i, s := range in.Roads {
		if _, err := b.AddRoad(s); err != nil {
			f := failure(FailureRoad, "%v", err)
			f.Road = i
			res.fail(f)
		}
	}
	net := b.Build()
	res.Network = net
	log.Debug("generate: built network", "roads", len(in.Roads), "nodes", net.NodeCount(), "edges", net.EdgeCount())

	for _, e := range net.Edges {
		for _, c := range e.Centerline.Corners {
			if c.OK {
				continue
			}
			f := failure(FailureCorner, "road %q vertex %d: radius %g clamped to %g", e.Tag(), c.Index, c.Requested, c.RadiusUsed)
			f.Road = int(e.ID)
			res.fail(f)
		}
	}

	res.Joins = junction.Resolve(net, p.JunctionParams())
	log.Debug("generate: resolved junctions", "joins", len(res.Joins))

	pl := newPoleSet(net)
	linked := make(map[graph.NodeID]bool)
	for i, l := range in.Links {
		res.link(net, pl, i, l, p, linked)
	}
	for _, nd := range net.DeadEnds() {
		if !linked[nd.ID] {
			res.capDeadEnd(net, pl, nd, p)
		}
	}
	log.Debug("generate: synthesized connectors", "connectors", len(res.Connectors))

	pl.addBoundaryPoles(net, res.Joins, p.PoleSpacing)
	pl.addConnectionPoles(net, res.Joins)
	cr := collision.Resolve(pl.poles, pl.curves, p.Clearance())
	res.Poles, res.Adjusted, res.Unresolved = cr.Poles, cr.Adjusted, cr.Unresolved
	for _, id := range cr.Unresolved {
		f := failure(FailureCollision, "pole %d has no clear position", id)
		f.Pole = id
		res.fail(f)
	}
	log.Debug("generate: resolved poles", "poles", len(res.Poles), "adjusted", len(res.Adjusted))

	res.Validation = graph.ValidateAll(net)
	for _, e := range res.Validation.Errors {
		log.Warn("generate: validation", "severity", e.Severity.String(), "msg", e.Error())
	}
	return res
}

// capDeadEnd closes a dead end with a connector from its departing-left
// boundary end, heading out of the road, round to its departing-right end.
func (r *Result) capDeadEnd(net *graph.Network, pl *poleSet, nd *graph.Node, p Params) {
	ee := nd.Incident[0]
	b, ok := net.BoundaryAt(ee)
	if !ok {
		return
	}
	radius := p.CapTurnRadius
	if radius <= 0 {
		radius = net.Edge(ee.Edge).Width / 2
	}
	from := connector.PoseAt(b.Left, b.Dir.MulScalar(-1))
	to := connector.PoseAt(b.Right, b.Dir)
	c, ok := connector.Shortest(from, to, radius)
	if !ok {
		f := failure(FailureConnector, "no cap for dead end %s", nd.ID)
		f.Node = nd.ID
		r.fail(f)
		return
	}
	r.Connectors = append(r.Connectors, ConnectorRecord{
		Purpose: PurposeCap, Node: nd.ID, To: graph.NoNode, Link: -1,
		Connector: c, Path: c.Path(),
	})
	owner := collision.Owner{Kind: collision.OwnerNode, ID: int(nd.ID)}
	pl.addEnd(net, ee, b.LeftSide, from.Pos, owner)
	pl.addEnd(net, ee, b.RightSide, to.Pos, owner)
}

// link joins the dead ends nearest l.A and l.B with one connector per curb.
// The curb on a traveller's right leaving A continues onto the curb on
// their right entering B.
func (r *Result) link(net *graph.Network, pl *poleSet, i int, l Link, p Params, linked map[graph.NodeID]bool) {
	bad := func(format string, args ...any) {
		f := failure(FailureLink, format, args...)
		f.Link = i
		r.fail(f)
	}
	na, nb := net.NearestDeadEnd(l.A), net.NearestDeadEnd(l.B)
	if na == nil || nb == nil {
		bad("link %d: no dead end to attach to", i)
		return
	}
	if na.ID == nb.ID {
		bad("link %d: both ends resolve to dead end %s", i, na.ID)
		return
	}
	if linked[na.ID] || linked[nb.ID] {
		bad("link %d: dead end already linked", i)
		return
	}
	ba, _ := net.BoundaryAt(na.Incident[0])
	bb, _ := net.BoundaryAt(nb.Incident[0])
	radius := p.linkRadius(l.Radius)
	out := ba.Dir.MulScalar(-1)

	curbs := []struct {
		from, to         v2.Vec
		fromSide, toSide graph.Side
	}{
		{ba.Right, bb.Left, ba.RightSide, bb.LeftSide},
		{ba.Left, bb.Right, ba.LeftSide, bb.RightSide},
	}
	owner := collision.Owner{Kind: collision.OwnerLink, ID: i}
	made := 0
	for _, cb := range curbs {
		c, ok := connector.Shortest(connector.PoseAt(cb.from, out), connector.PoseAt(cb.to, bb.Dir), radius)
		if !ok {
			f := failure(FailureConnector, "link %d: no connector from %v to %v", i, cb.from, cb.to)
			f.Link, f.Node = i, na.ID
			r.fail(f)
			continue
		}
		r.Connectors = append(r.Connectors, ConnectorRecord{
			Purpose: PurposeLink, Node: na.ID, To: nb.ID, Link: i,
			Connector: c, Path: c.Path(),
		})
		pl.addEnd(net, ba.EdgeEnd, cb.fromSide, cb.from, owner)
		pl.addEnd(net, bb.EdgeEnd, cb.toSide, cb.to, owner)
		made++
	}
	if made > 0 {
		linked[na.ID], linked[nb.ID] = true, true
	}
}
