package generate

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/roadweave/pkg/collision"
	"github.com/chazu/roadweave/pkg/graph"
	"github.com/chazu/roadweave/pkg/junction"
)

// poleSet accumulates poles and the boundary curves they slide along.
type poleSet struct {
	poles  []collision.Pole
	curves collision.CurveSet
	byRef  map[graph.BoundaryRef]collision.CurveID
}

func newPoleSet(net *graph.Network) *poleSet {
	ps := &poleSet{byRef: make(map[graph.BoundaryRef]collision.CurveID)}
	for _, e := range net.Edges {
		for _, s := range []graph.Side{graph.SideLeft, graph.SideRight} {
			ps.byRef[graph.BoundaryRef{Edge: e.ID, Side: s}] = ps.curves.Add(e.Boundary(s))
		}
	}
	return ps
}

func (ps *poleSet) add(pos v2.Vec, kind collision.PoleKind, owner collision.Owner, ref graph.BoundaryRef, along float64) {
	edge := ref.Edge
	curve, ok := ps.byRef[ref]
	if !ok {
		curve = collision.NoCurve
	}
	ps.poles = append(ps.poles, collision.Pole{
		ID:    len(ps.poles),
		Pos:   pos,
		Kind:  kind,
		Owner: owner,
		Edge:  &edge,
		Curve: curve,
		Along: along,
	})
}

// addEnd places an End pole where a connector meets the boundary s of edge
// end ee.
func (ps *poleSet) addEnd(net *graph.Network, ee graph.EdgeEnd, s graph.Side, pos v2.Vec, owner collision.Owner) {
	ref := graph.BoundaryRef{Edge: ee.Edge, Side: s}
	ps.add(pos, collision.PoleEnd, owner, ref, net.BoundaryDistance(ee, s, 0))
}

// trims returns, per boundary, how much of it each junction consumes at its
// start and at its end.
func trims(joins []junction.Join) map[graph.BoundaryRef][2]float64 {
	out := make(map[graph.BoundaryRef][2]float64)
	mark := func(ref graph.BoundaryRef, end graph.End, d float64) {
		t := out[ref]
		t[end] = math.Max(t[end], d)
		out[ref] = t
	}
	for _, j := range joins {
		for _, c := range j.Connections {
			mark(c.A, c.EndA.End, c.TrimA)
			mark(c.B, c.EndB.End, c.TrimB)
		}
	}
	return out
}

// addBoundaryPoles spaces Collision poles along the part of every boundary
// that survives junction trimming, starting one spacing in from each kept
// end.
func (ps *poleSet) addBoundaryPoles(net *graph.Network, joins []junction.Join, spacing float64) {
	if !(spacing > 0) {
		return
	}
	tr := trims(joins)
	for _, e := range net.Edges {
		owner := collision.Owner{Kind: collision.OwnerEdge, ID: int(e.ID)}
		for _, s := range []graph.Side{graph.SideLeft, graph.SideRight} {
			ref := graph.BoundaryRef{Edge: e.ID, Side: s}
			curve := e.Boundary(s)
			t := tr[ref]
			stop := curve.Length - t[graph.EndEnd] - spacing/2
			for k := 1; ; k++ {
				d := t[graph.EndStart] + float64(k)*spacing
				if d > stop {
					break
				}
				ps.add(curve.PointAt(d), collision.PoleCollision, owner, ref, d)
			}
		}
	}
}

// addConnectionPoles places a pole where each junction connection attaches
// to its two boundaries.
func (ps *poleSet) addConnectionPoles(net *graph.Network, joins []junction.Join) {
	for _, j := range joins {
		owner := collision.Owner{Kind: collision.OwnerNode, ID: int(j.NodeID)}
		for _, c := range j.Connections {
			for _, att := range []struct {
				ref  graph.BoundaryRef
				end  graph.EdgeEnd
				trim float64
			}{
				{c.A, c.EndA, c.TrimA},
				{c.B, c.EndB, c.TrimB},
			} {
				e := net.Edge(att.ref.Edge)
				if e == nil {
					continue
				}
				along := net.BoundaryDistance(att.end, att.ref.Side, att.trim)
				ps.add(e.Boundary(att.ref.Side).PointAt(along), collision.PoleConnection, owner, att.ref, along)
			}
		}
	}
}
