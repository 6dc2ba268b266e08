// Package connector synthesizes the shortest curve between two oriented
// points under a minimum turn radius, from the six Dubins families of
// arc/straight/arc and arc/arc/arc paths.
package connector

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/roadweave/pkg/geom"
)

// tieTol is how much shorter a later family must be to replace an earlier
// one.
const tieTol = 1e-9

// Pose is a position with a heading in radians.
type Pose struct {
	Pos     v2.Vec  `json:"pos"`
	Heading float64 `json:"heading"`
}

// PoseAt builds a pose from a position and a direction vector.
func PoseAt(p, dir v2.Vec) Pose {
	return Pose{Pos: p, Heading: geom.Heading(dir)}
}

// Dir returns the unit heading vector.
func (p Pose) Dir() v2.Vec {
	return geom.FromHeading(p.Heading)
}

// SegmentKind is the curvature class of one primitive.
type SegmentKind int

const (
	Left SegmentKind = iota
	Straight
	Right
)

func (k SegmentKind) String() string {
	switch k {
	case Left:
		return "L"
	case Straight:
		return "S"
	case Right:
		return "R"
	default:
		return "?"
	}
}

// MarshalText encodes the kind as its letter.
func (k SegmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Word is a Dubins path family.
type Word int

const (
	LSL Word = iota
	RSR
	LSR
	RSL
	RLR
	LRL
)

// Words lists the families in tie-break order: the arc/straight/arc
// families first, those without a turn reversal leading.
var Words = []Word{LSL, RSR, LSR, RSL, RLR, LRL}

var wordKinds = [...][3]SegmentKind{
	LSL: {Left, Straight, Left},
	RSR: {Right, Straight, Right},
	LSR: {Left, Straight, Right},
	RSL: {Right, Straight, Left},
	RLR: {Right, Left, Right},
	LRL: {Left, Right, Left},
}

// Kinds returns the curvature classes of the family's three primitives.
func (w Word) Kinds() [3]SegmentKind {
	if w < 0 || int(w) >= len(wordKinds) {
		return [3]SegmentKind{}
	}
	return wordKinds[w]
}

func (w Word) String() string {
	if w < 0 || int(w) >= len(wordKinds) {
		return fmt.Sprintf("Word(%d)", int(w))
	}
	k := w.Kinds()
	return k[0].String() + k[1].String() + k[2].String()
}

// MarshalText encodes the family as its letters.
func (w Word) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// Segment is one primitive of a connector.
type Segment struct {
	Kind   SegmentKind `json:"kind"`
	Length float64     `json:"length"`
}

// Connector is a solved oriented curve.
type Connector struct {
	From     Pose      `json:"from"`
	To       Pose      `json:"to"`
	Type     Word      `json:"type"`
	Radius   float64   `json:"radius"`
	Segments []Segment `json:"segments"`
}

// Length returns the total length of the connector.
func (c Connector) Length() float64 {
	l := 0.0
	for _, s := range c.Segments {
		l += s.Length
	}
	return l
}

// step advances pose p along one primitive.
func step(p Pose, s Segment, r float64) (Pose, geom.Arc, bool) {
	d := p.Dir()
	switch s.Kind {
	case Left:
		sweep := s.Length / r
		a := geom.Arc{Center: p.Pos.Add(geom.Perp(d).MulScalar(r)), Radius: r, StartAngle: p.Heading - math.Pi/2, Sweep: sweep}
		return Pose{Pos: a.End(), Heading: p.Heading + sweep}, a, true
	case Right:
		sweep := -s.Length / r
		a := geom.Arc{Center: p.Pos.Sub(geom.Perp(d).MulScalar(r)), Radius: r, StartAngle: p.Heading + math.Pi/2, Sweep: sweep}
		return Pose{Pos: a.End(), Heading: p.Heading + sweep}, a, true
	default:
		return Pose{Pos: p.Pos.Add(d.MulScalar(s.Length)), Heading: p.Heading}, geom.Arc{}, false
	}
}

// Path returns the connector as a line/arc path. Zero-length primitives are
// omitted.
func (c Connector) Path() geom.Path {
	var path geom.Path
	p := c.From
	for _, s := range c.Segments {
		next, arc, isArc := step(p, s, c.Radius)
		if isArc {
			path.AddArc(arc)
		} else {
			path.AddLine(p.Pos, next.Pos)
		}
		p = next
	}
	return path
}

// End returns the pose reached by following the segments from From. For a
// solved connector it matches To up to rounding.
func (c Connector) End() Pose {
	p := c.From
	for _, s := range c.Segments {
		p, _, _ = step(p, s, c.Radius)
	}
	p.Heading = geom.NormalizeAngle(p.Heading)
	return p
}

// Sample returns points along the connector no more than spacing apart,
// both ends included.
func (c Connector) Sample(spacing float64) []v2.Vec {
	path := c.Path()
	if path.IsEmpty() {
		return nil
	}
	n := 1
	if spacing > 0 {
		n = max(1, int(math.Ceil(path.Length/spacing)))
	}
	pts := make([]v2.Vec, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, path.PointAt(path.Length*float64(i)/float64(n)))
	}
	return pts
}

// Shortest returns the shortest connector from one pose to another with the
// given turn radius. ok is false when the input is degenerate: a radius that
// is not positive and finite, or coincident positions.
func Shortest(from, to Pose, radius float64) (Connector, bool) {
	cands := Candidates(from, to, radius)
	if len(cands) == 0 {
		return Connector{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Length() < best.Length()-tieTol {
			best = c
		}
	}
	return best, true
}

// Candidates returns one connector per feasible family, in Words order.
func Candidates(from, to Pose, radius float64) []Connector {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil
	}
	if !geom.IsFinite(from.Pos) || !geom.IsFinite(to.Pos) ||
		math.IsNaN(from.Heading) || math.IsNaN(to.Heading) ||
		math.IsInf(from.Heading, 0) || math.IsInf(to.Heading, 0) {
		return nil
	}
	delta := to.Pos.Sub(from.Pos)
	dist := delta.Length()
	if dist < geom.Epsilon {
		return nil
	}

	theta := geom.Heading(delta)
	in := intermediate{
		alpha: geom.Mod2Pi(from.Heading - theta),
		beta:  geom.Mod2Pi(to.Heading - theta),
		d:     dist / radius,
	}
	in.sa, in.ca = math.Sincos(in.alpha)
	in.sb, in.cb = math.Sincos(in.beta)

	var out []Connector
	for _, w := range Words {
		t, p, q, ok := solve(w, in)
		if !ok {
			continue
		}
		k := w.Kinds()
		out = append(out, Connector{
			From:   from,
			To:     to,
			Type:   w,
			Radius: radius,
			Segments: []Segment{
				{Kind: k[0], Length: t * radius},
				{Kind: k[1], Length: p * radius},
				{Kind: k[2], Length: q * radius},
			},
		})
	}
	return out
}

// intermediate holds the pose pair in the frame where the start is at the
// origin, the goal lies on +x at distance d, and lengths are in radii.
type intermediate struct {
	alpha, beta float64
	d           float64
	sa, ca      float64
	sb, cb      float64
}

// wrap is Mod2Pi with angles a rounding error short of a full turn snapped
// to zero.
func wrap(x float64) float64 {
	x = geom.Mod2Pi(x)
	if x > 2*math.Pi-tieTol {
		return 0
	}
	return x
}

// sqrtTol returns the square root of a squared length that may have gone
// slightly negative through rounding. ok is false for a truly negative input.
func sqrtTol(psq float64) (float64, bool) {
	if psq < -tieTol {
		return 0, false
	}
	return math.Sqrt(math.Max(psq, 0)), true
}

// acosTol is math.Acos with arguments a rounding error outside [-1, 1]
// clamped. ok is false for a truly out-of-range input.
func acosTol(x float64) (float64, bool) {
	if math.Abs(x) > 1+tieTol {
		return 0, false
	}
	return math.Acos(math.Max(-1, math.Min(1, x))), true
}

// solve returns the normalized primitive lengths of family w.
func solve(w Word, in intermediate) (t, p, q float64, ok bool) {
	a, b, d := in.alpha, in.beta, in.d
	sa, ca, sb, cb := in.sa, in.ca, in.sb, in.cb
	cab := math.Cos(a - b)

	switch w {
	case LSL:
		p, ok = sqrtTol(2 + d*d - 2*cab + 2*d*(sa-sb))
		if !ok {
			return 0, 0, 0, false
		}
		tmp := math.Atan2(cb-ca, d+sa-sb)
		return wrap(tmp - a), p, wrap(b - tmp), true

	case RSR:
		p, ok = sqrtTol(2 + d*d - 2*cab + 2*d*(sb-sa))
		if !ok {
			return 0, 0, 0, false
		}
		tmp := math.Atan2(ca-cb, d-sa+sb)
		return wrap(a - tmp), p, wrap(tmp - b), true

	case LSR:
		p, ok = sqrtTol(-2 + d*d + 2*cab + 2*d*(sa+sb))
		if !ok {
			return 0, 0, 0, false
		}
		tmp := math.Atan2(-ca-cb, d+sa+sb) - math.Atan2(-2, p)
		return wrap(tmp - a), p, wrap(tmp - b), true

	case RSL:
		p, ok = sqrtTol(-2 + d*d + 2*cab - 2*d*(sa+sb))
		if !ok {
			return 0, 0, 0, false
		}
		tmp := math.Atan2(ca+cb, d-sa-sb) - math.Atan2(2, p)
		return wrap(a - tmp), p, wrap(b - tmp), true

	case RLR:
		ac, ok := acosTol((6 - d*d + 2*cab + 2*d*(sa-sb)) / 8)
		if !ok {
			return 0, 0, 0, false
		}
		p = wrap(2*math.Pi - ac)
		t = wrap(a - math.Atan2(ca-cb, d-sa+sb) + p/2)
		return t, p, wrap(a - b - t + p), true

	case LRL:
		ac, ok := acosTol((6 - d*d + 2*cab + 2*d*(sb-sa)) / 8)
		if !ok {
			return 0, 0, 0, false
		}
		p = wrap(2*math.Pi - ac)
		t = wrap(-a - math.Atan2(ca-cb, d+sa-sb) + p/2)
		return t, p, wrap(b - a - t + p), true
	}
	return 0, 0, 0, false
}
