// Package junction joins the boundaries of angularly adjacent roads at each
// node, either with a circular fillet tangent to both boundary rays or with
// a straight cutback.
package junction

import (
	"math"
	"sort"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/roadweave/pkg/geom"
	"github.com/chazu/roadweave/pkg/graph"
)

// Params sizes junction fillets.
type Params struct {
	LaneWidth          float64 `json:"lane_width"`
	ThresholdFactor    float64 `json:"threshold_factor"`
	FilletRadiusFactor float64 `json:"fillet_radius_factor"`
	MinThreshold       float64 `json:"min_threshold"`
	// MaxThreshold caps the threshold. Zero means unbounded.
	MaxThreshold float64 `json:"max_threshold"`
	// CollinearTolerance is how close to π the angle between two boundary
	// rays must be for them to be joined by a cutback.
	CollinearTolerance float64 `json:"collinear_tolerance"`
	// PassThroughTolerance is how far a degree-2 node may bend and still
	// keep continuous boundaries.
	PassThroughTolerance float64 `json:"pass_through_tolerance"`
}

// DefaultParams returns the default junction parameters.
func DefaultParams() Params {
	return Params{
		LaneWidth:            graph.DefaultLaneWidth,
		ThresholdFactor:      1,
		FilletRadiusFactor:   1,
		CollinearTolerance:   1e-3,
		PassThroughTolerance: 0.05,
	}
}

// FilletRadius returns min(max, max(min, factor*laneWidth)) * radiusFactor.
func FilletRadius(p Params) float64 {
	t := math.Max(p.MinThreshold, p.ThresholdFactor*p.LaneWidth)
	if p.MaxThreshold > 0 {
		t = math.Min(p.MaxThreshold, t)
	}
	return math.Max(0, t*p.FilletRadiusFactor)
}

// Kind is the geometry used to join two boundaries.
type Kind int

const (
	KindFillet Kind = iota
	KindCutback
)

func (k Kind) String() string {
	switch k {
	case KindFillet:
		return "fillet"
	case KindCutback:
		return "cutback"
	default:
		return "unknown"
	}
}

// Fillet is the arc joining two boundary rays.
type Fillet struct {
	Arc       geom.Arc `json:"arc"`
	Requested float64  `json:"requested"`
	Corner    v2.Vec   `json:"corner"` // where the rays intersect
	TangentA  v2.Vec   `json:"tangent_a"`
	TangentB  v2.Vec   `json:"tangent_b"`
}

// Connection joins the departing-left boundary of one edge end (A) to the
// departing-right boundary of the next edge end counter-clockwise (B).
type Connection struct {
	A     graph.BoundaryRef `json:"a"`
	B     graph.BoundaryRef `json:"b"`
	EndA  graph.EdgeEnd     `json:"end_a"`
	EndB  graph.EdgeEnd     `json:"end_b"`
	Kind  Kind              `json:"kind"`
	Angle float64           `json:"angle"` // counter-clockwise from ray A to ray B

	Fillet  *Fillet `json:"fillet,omitempty"`
	Cutback float64 `json:"cutback"` // length of the straight join

	// TrimA and TrimB are the distances, measured from the node end of each
	// boundary, at which the join attaches.
	TrimA float64 `json:"trim_a"`
	TrimB float64 `json:"trim_b"`

	Clamped     bool `json:"clamped"`
	PassThrough bool `json:"pass_through"`

	Path geom.Path `json:"path"` // from A's attach point to B's
}

// Join is every connection made at one node.
type Join struct {
	NodeID      graph.NodeID `json:"node_id"`
	Connections []Connection `json:"connections"`
}

// Cutbacks returns the number of cutback connections.
func (j Join) Cutbacks() int {
	n := 0
	for _, c := range j.Connections {
		if c.Kind == KindCutback {
			n++
		}
	}
	return n
}

// Fillets returns the number of fillet connections.
func (j Join) Fillets() int {
	return len(j.Connections) - j.Cutbacks()
}

// OrderIncident returns the boundary views of a node's incident edge ends,
// sorted by the heading of their departing direction, ascending from +x.
// Equal headings are ordered by edge ID and end.
func OrderIncident(n *graph.Network, id graph.NodeID) []graph.EdgeBoundaryAtNode {
	nd := n.Node(id)
	if nd == nil {
		return nil
	}
	views := make([]graph.EdgeBoundaryAtNode, 0, len(nd.Incident))
	for _, ee := range nd.Incident {
		if b, ok := n.BoundaryAt(ee); ok {
			views = append(views, b)
		}
	}
	sort.SliceStable(views, func(i, j int) bool {
		hi, hj := geom.Mod2Pi(geom.Heading(views[i].Dir)), geom.Mod2Pi(geom.Heading(views[j].Dir))
		if hi != hj {
			return hi < hj
		}
		if views[i].Edge != views[j].Edge {
			return views[i].Edge < views[j].Edge
		}
		return views[i].End < views[j].End
	})
	return views
}

// Resolve joins every node of degree 2 or more, in node ID order.
func Resolve(n *graph.Network, p Params) []Join {
	var joins []Join
	for _, nd := range n.Nodes {
		if j, ok := ResolveNode(n, nd.ID, p); ok {
			joins = append(joins, j)
		}
	}
	return joins
}

// ResolveNode joins the boundaries of each pair of angularly adjacent edge
// ends at a node. ok is false for nodes of degree below 2.
func ResolveNode(n *graph.Network, id graph.NodeID, p Params) (Join, bool) {
	ord := OrderIncident(n, id)
	if len(ord) < 2 {
		return Join{}, false
	}
	passThrough := len(ord) == 2 &&
		geom.TurnAngle(ord[0].Dir, ord[1].Dir) >= math.Pi-p.PassThroughTolerance

	radius := FilletRadius(p)
	j := Join{NodeID: id}
	for i := range ord {
		a, b := ord[i], ord[(i+1)%len(ord)]
		c := connect(n, a, b, radius, p)
		if passThrough && c.Kind == KindCutback {
			c.PassThrough = true
		}
		if passThrough && c.Kind == KindFillet {
			c = cutback(a, b, c)
			c.PassThrough = true
		}
		j.Connections = append(j.Connections, c)
	}
	return j, true
}

func cutback(a, b graph.EdgeBoundaryAtNode, c Connection) Connection {
	c.Kind = KindCutback
	c.Fillet = nil
	c.TrimA, c.TrimB = 0, 0
	c.Path = geom.Path{}
	c.Path.AddLine(a.Left, b.Right)
	c.Cutback = c.Path.Length
	return c
}

// runTol is how far from parallel a boundary's end run may point and still
// carry a fillet.
const runTol = 1e-6

// available returns how far along a boundary a join may reach from its
// node end: half the boundary's length, and never past the straight run
// that leaves the node along dir. A boundary that starts curving at the
// node, or whose first run points elsewhere, allows nothing.
func available(n *graph.Network, ref graph.BoundaryRef, end graph.End, dir v2.Vec) float64 {
	e := n.Edge(ref.Edge)
	if e == nil {
		return 0
	}
	bd := e.Boundary(ref.Side)
	if bd.IsEmpty() {
		return 0
	}
	seg := bd.Segments[0]
	if end == graph.EndEnd {
		seg = bd.Segments[len(bd.Segments)-1]
	}
	if seg.Kind != geom.SegmentLine {
		return 0
	}
	away := geom.Unit(seg.P1.Sub(seg.P0))
	if end == graph.EndEnd {
		away = away.MulScalar(-1)
	}
	if away.Dot(dir) < 1-runTol {
		return 0
	}
	return math.Min(bd.Length/2, seg.Length)
}

func connect(n *graph.Network, a, b graph.EdgeBoundaryAtNode, radius float64, p Params) Connection {
	c := Connection{
		A:     a.LeftRef(),
		B:     b.RightRef(),
		EndA:  a.EdgeEnd,
		EndB:  b.EdgeEnd,
		Angle: geom.CCWAngle(a.Dir, b.Dir),
	}
	phi := c.Angle
	if phi >= math.Pi-p.CollinearTolerance || radius <= 0 {
		return cutback(a, b, c)
	}

	s, u, ok := geom.LineIntersect(a.Left, a.Dir, b.Right, b.Dir)
	if !ok {
		// Parallel and pointing the same way: nothing to fillet between.
		c.Clamped = true
		return cutback(a, b, c)
	}

	tanHalf := math.Tan(phi / 2)
	r := radius
	sf := r / tanHalf
	availA, availB := available(n, c.A, c.EndA.End, a.Dir), available(n, c.B, c.EndB.End, b.Dir)
	if s+sf > availA || u+sf > availB {
		sf = math.Min(availA-s, availB-u)
		r = sf * tanHalf
		c.Clamped = true
	}
	if r <= geom.Epsilon || s+sf < 0 || u+sf < 0 {
		c.Clamped = true
		return cutback(a, b, c)
	}

	x := a.Left.Add(a.Dir.MulScalar(s))
	ta := x.Add(a.Dir.MulScalar(sf))
	tb := x.Add(b.Dir.MulScalar(sf))
	center := x.Add(geom.Unit(a.Dir.Add(b.Dir)).MulScalar(r / math.Sin(phi/2)))
	arc := geom.Arc{
		Center:     center,
		Radius:     r,
		StartAngle: geom.Heading(ta.Sub(center)),
		Sweep:      -(math.Pi - phi),
	}

	c.Kind = KindFillet
	c.Fillet = &Fillet{Arc: arc, Requested: radius, Corner: x, TangentA: ta, TangentB: tb}
	c.TrimA = s + sf
	c.TrimB = u + sf
	c.Path.AddArc(arc)
	return c
}
