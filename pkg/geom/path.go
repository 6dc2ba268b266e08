package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// SegmentKind distinguishes straight runs from circular arcs.
type SegmentKind int

const (
	SegmentLine SegmentKind = iota
	SegmentArc
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentLine:
		return "line"
	case SegmentArc:
		return "arc"
	default:
		return "unknown"
	}
}

// Segment is one primitive of a Path.
type Segment struct {
	Kind      SegmentKind `json:"kind"`
	P0        v2.Vec      `json:"p0"`
	P1        v2.Vec      `json:"p1"`
	Arc       *Arc        `json:"arc,omitempty"` // nil for lines
	StartDist float64     `json:"start_dist"`    // cumulative distance at P0
	Length    float64     `json:"length"`
}

// pointAt returns the point at local distance d along the segment.
func (s Segment) pointAt(d float64) v2.Vec {
	if s.Length < Epsilon {
		return s.P0
	}
	t := d / s.Length
	if s.Arc != nil {
		return s.Arc.PointAt(t)
	}
	return Lerp(s.P0, s.P1, t)
}

// tangentAt returns the unit travel direction at local distance d.
func (s Segment) tangentAt(d float64) v2.Vec {
	if s.Arc != nil {
		t := 0.0
		if s.Length > Epsilon {
			t = d / s.Length
		}
		return s.Arc.TangentAt(t)
	}
	return Unit(s.P1.Sub(s.P0))
}

// Path is a piecewise curve of straight and circular-arc segments, traversed
// in order. Consecutive segments share endpoints.
type Path struct {
	Segments []Segment `json:"segments"`
	Length   float64   `json:"length"`
}

// NewPath builds a path from segments, recomputing lengths and cumulative
// distances. Degenerate segments are dropped.
func NewPath(segs []Segment) Path {
	var p Path
	for _, s := range segs {
		if s.Arc != nil {
			p.AddArc(*s.Arc)
		} else {
			p.AddLine(s.P0, s.P1)
		}
	}
	return p
}

// AddLine appends a straight segment from a to b. Segments shorter than
// Epsilon are skipped.
func (p *Path) AddLine(a, b v2.Vec) {
	l := Dist(a, b)
	if l < Epsilon {
		return
	}
	p.Segments = append(p.Segments, Segment{
		Kind:      SegmentLine,
		P0:        a,
		P1:        b,
		StartDist: p.Length,
		Length:    l,
	})
	p.Length += l
}

// AddArc appends an arc. Arcs shorter than Epsilon are skipped.
func (p *Path) AddArc(a Arc) {
	l := a.Length()
	if l < Epsilon {
		return
	}
	arc := a
	p.Segments = append(p.Segments, Segment{
		Kind:      SegmentArc,
		P0:        a.Start(),
		P1:        a.End(),
		Arc:       &arc,
		StartDist: p.Length,
		Length:    l,
	})
	p.Length += l
}

// Len returns the total length. It lets a Path serve as a collision curve.
func (p Path) Len() float64 {
	return p.Length
}

// IsEmpty reports whether the path has no segments.
func (p Path) IsEmpty() bool {
	return len(p.Segments) == 0
}

// Start returns the first point of the path.
func (p Path) Start() v2.Vec {
	if p.IsEmpty() {
		return v2.Vec{}
	}
	return p.Segments[0].P0
}

// End returns the last point of the path.
func (p Path) End() v2.Vec {
	if p.IsEmpty() {
		return v2.Vec{}
	}
	return p.Segments[len(p.Segments)-1].P1
}

// StartTangent returns the travel direction at the start of the path.
func (p Path) StartTangent() v2.Vec {
	if p.IsEmpty() {
		return v2.Vec{}
	}
	return p.Segments[0].tangentAt(0)
}

// EndTangent returns the travel direction at the end of the path.
func (p Path) EndTangent() v2.Vec {
	if p.IsEmpty() {
		return v2.Vec{}
	}
	s := p.Segments[len(p.Segments)-1]
	return s.tangentAt(s.Length)
}

// segmentAt returns the segment containing distance d, clamped to the path.
func (p Path) segmentAt(d float64) (Segment, float64) {
	if d <= 0 {
		return p.Segments[0], 0
	}
	for _, s := range p.Segments {
		if d <= s.StartDist+s.Length {
			return s, d - s.StartDist
		}
	}
	last := p.Segments[len(p.Segments)-1]
	return last, last.Length
}

// PointAt returns the point at distance d along the path. d is clamped to
// [0, Length].
func (p Path) PointAt(d float64) v2.Vec {
	if p.IsEmpty() {
		return v2.Vec{}
	}
	s, local := p.segmentAt(d)
	return s.pointAt(local)
}

// TangentAt returns the unit travel direction at distance d.
func (p Path) TangentAt(d float64) v2.Vec {
	if p.IsEmpty() {
		return v2.Vec{}
	}
	s, local := p.segmentAt(d)
	return s.tangentAt(local)
}

// Polyline returns a polyline approximation of the path. Arc chords are no
// longer than chord; straight segments contribute their endpoints.
func (p Path) Polyline(chord float64) []v2.Vec {
	if p.IsEmpty() {
		return nil
	}
	pts := []v2.Vec{p.Segments[0].P0}
	for _, s := range p.Segments {
		if s.Arc != nil {
			arcPts := s.Arc.Tessellate(chord)
			pts = append(pts, arcPts[1:]...)
			continue
		}
		pts = append(pts, s.P1)
	}
	return pts
}

// Project returns the distance along the path of the point nearest q and
// the distance from q to that point.
func (p Path) Project(q v2.Vec) (along, dist float64) {
	dist = math.Inf(1)
	for _, s := range p.Segments {
		local := projectSegment(s, q)
		d := Dist(q, s.pointAt(local))
		if d < dist {
			dist = d
			along = s.StartDist + local
		}
	}
	return along, dist
}

// projectSegment returns the clamped local distance of q projected on s.
func projectSegment(s Segment, q v2.Vec) float64 {
	if s.Length < Epsilon {
		return 0
	}
	if s.Arc == nil {
		d := s.P1.Sub(s.P0)
		t := q.Sub(s.P0).Dot(d) / (s.Length * s.Length)
		return math.Max(0, math.Min(1, t)) * s.Length
	}
	a := s.Arc
	rel := NormalizeAngle(Heading(q.Sub(a.Center)) - a.StartAngle)
	if a.Sweep > 0 && rel < 0 {
		rel += 2 * math.Pi
	} else if a.Sweep < 0 && rel > 0 {
		rel -= 2 * math.Pi
	}
	t := rel / a.Sweep
	if t > 1 {
		// Outside the sweep: snap to whichever end is angularly closer.
		over := (t - 1) * math.Abs(a.Sweep)
		under := 2*math.Pi - t*math.Abs(a.Sweep)
		if under < over {
			t = 0
		} else {
			t = 1
		}
	}
	return math.Max(0, math.Min(1, t)) * s.Length
}

// Reverse returns the same curve traversed from End to Start.
func (p Path) Reverse() Path {
	var r Path
	for i := len(p.Segments) - 1; i >= 0; i-- {
		s := p.Segments[i]
		if s.Arc != nil {
			a := *s.Arc
			r.AddArc(Arc{
				Center:     a.Center,
				Radius:     a.Radius,
				StartAngle: a.StartAngle + a.Sweep,
				Sweep:      -a.Sweep,
			})
			continue
		}
		r.AddLine(s.P1, s.P0)
	}
	return r
}
