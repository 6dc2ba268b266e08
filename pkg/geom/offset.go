package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// joinTol is the gap below which two offset pieces are treated as joined.
const joinTol = 1e-7

type piece struct {
	a, b v2.Vec
	arc  *Arc
}

func (p piece) startTangent() v2.Vec {
	if p.arc != nil {
		return p.arc.TangentAt(0)
	}
	return Unit(p.b.Sub(p.a))
}

func (p piece) endTangent() v2.Vec {
	if p.arc != nil {
		return p.arc.TangentAt(1)
	}
	return Unit(p.b.Sub(p.a))
}

// Offset returns the curve displaced by d perpendicular to the direction of
// travel. Positive d offsets to the left.
//
// Arcs whose offset radius collapses are dropped. Where the offset pieces
// separate, the outside of the turn is closed with a round join about the
// original vertex and the inside is trimmed at the intersection of the two
// pieces, falling back to a bridging line.
func (p Path) Offset(d float64) Path {
	if math.Abs(d) < Epsilon {
		return NewPath(p.Segments)
	}
	var pieces []piece
	var verts []v2.Vec // original vertex at the start of each piece
	for _, s := range p.Segments {
		if s.Arc != nil {
			a := *s.Arc
			sign := 1.0
			if a.Sweep < 0 {
				sign = -1
			}
			r := a.Radius - d*sign
			if r <= Epsilon {
				continue
			}
			a.Radius = r
			pieces = append(pieces, piece{a: a.Start(), b: a.End(), arc: &a})
			verts = append(verts, s.P0)
			continue
		}
		n := Perp(Unit(s.P1.Sub(s.P0))).MulScalar(d)
		pieces = append(pieces, piece{a: s.P0.Add(n), b: s.P1.Add(n)})
		verts = append(verts, s.P0)
	}

	var out Path
	emit := func(pc piece) {
		if pc.arc != nil {
			out.AddArc(*pc.arc)
			return
		}
		out.AddLine(pc.a, pc.b)
	}

	for i := 0; i < len(pieces); i++ {
		if i+1 == len(pieces) {
			emit(pieces[i])
			break
		}
		cur, next := pieces[i], pieces[i+1]
		if Dist(cur.b, next.a) <= joinTol {
			emit(cur)
			continue
		}
		turn := SignedTurn(cur.endTangent(), next.startTangent())
		if turn*d < 0 {
			// Outside of the turn: round join about the original vertex.
			emit(cur)
			c := verts[i+1]
			start := Heading(cur.b.Sub(c))
			sweep := NormalizeAngle(Heading(next.a.Sub(c)) - start)
			out.AddArc(Arc{Center: c, Radius: math.Abs(d), StartAngle: start, Sweep: sweep})
			continue
		}
		// Inside of the turn: trim both lines back to their intersection.
		if cur.arc == nil && next.arc == nil {
			s, u, ok := LineIntersect(cur.a, cur.b.Sub(cur.a), next.a, next.b.Sub(next.a))
			if ok && s > 0 && s <= 1 && u >= 0 && u < 1 {
				x := cur.a.Add(cur.b.Sub(cur.a).MulScalar(s))
				cur.b = x
				pieces[i+1].a = x
				emit(cur)
				continue
			}
		}
		emit(cur)
		out.AddLine(cur.b, next.a)
	}
	return out
}
