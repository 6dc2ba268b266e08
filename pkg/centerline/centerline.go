// Package centerline smooths a road polyline into a tangent-arc-tangent
// path: straight runs joined by circular fillets at interior vertices.
package centerline

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/roadweave/pkg/geom"
	"github.com/chazu/roadweave/pkg/road"
)

// Options controls corner fitting and tessellation.
type Options struct {
	// Chord is the longest chord used when tessellating arcs.
	Chord float64 `json:"chord"`
	// MinRun is the shortest half-run that can still hold a fillet. Shorter
	// runs force a sharp corner.
	MinRun float64 `json:"min_run"`
	// StraightAngle is the turn angle below which a vertex is treated as
	// straight-through, and within which of π a vertex is a reversal.
	StraightAngle float64 `json:"straight_angle"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Chord:         0.5,
		MinRun:        1e-3,
		StraightAngle: 1e-4,
	}
}

// Corner is the fillet fitted at one interior vertex.
type Corner struct {
	Index int `json:"index"`
	// OK is false when the requested radius did not fit and was clamped.
	OK      bool `json:"ok"`
	Clamped bool `json:"clamped"`
	// Center is nil for sharp corners.
	Center     *v2.Vec `json:"center,omitempty"`
	Requested  float64 `json:"requested"`
	RadiusUsed float64 `json:"radius_used"`
	StartAngle float64 `json:"start_angle"`
	SpanAngle  float64 `json:"span_angle"`
	CCW        bool    `json:"ccw"`
	InTangent  v2.Vec  `json:"in_tangent"`
	OutTangent v2.Vec  `json:"out_tangent"`
	// Tangent is the distance from the vertex to either tangent point.
	Tangent float64 `json:"tangent"`
}

// Sharp reports whether the corner degenerated to a point.
func (c Corner) Sharp() bool {
	return c.Center == nil
}

// Arc returns the fillet arc. ok is false for sharp corners.
func (c Corner) Arc() (geom.Arc, bool) {
	if c.Center == nil {
		return geom.Arc{}, false
	}
	sweep := c.SpanAngle
	if !c.CCW {
		sweep = -sweep
	}
	return geom.Arc{Center: *c.Center, Radius: c.RadiusUsed, StartAngle: c.StartAngle, Sweep: sweep}, true
}

// Centerline is a smoothed road: its analytic path, the corners used to
// build it and a chord-bounded polyline approximation.
type Centerline struct {
	Path     geom.Path `json:"path"`
	Corners  []Corner  `json:"corners"`
	Points   []v2.Vec  `json:"points"`
	Vertices []v2.Vec  `json:"vertices"`
}

// FitCorner fits a fillet of the requested radius at vertex v between the
// incoming direction dIn and outgoing direction dOut. lenIn and lenOut are
// the lengths of the adjacent runs. ok is false when the vertex is
// straight-through and needs no corner.
func FitCorner(index int, v, dIn, dOut v2.Vec, lenIn, lenOut, radius float64, opts Options) (Corner, bool) {
	theta := geom.TurnAngle(dIn, dOut)
	if theta < opts.StraightAngle {
		return Corner{}, false
	}
	c := Corner{
		Index:      index,
		OK:         true,
		Requested:  radius,
		SpanAngle:  theta,
		CCW:        geom.Cross(dIn, dOut) > 0,
		InTangent:  v,
		OutTangent: v,
	}

	r := radius
	half := math.Min(lenIn, lenOut) / 2
	switch {
	case r <= 0:
		r = 0
	case theta > math.Pi-opts.StraightAngle:
		// A reversal has no tangent arc.
		r = 0
	case half < opts.MinRun:
		r = 0
	default:
		if t := r * math.Tan(theta/2); t > half {
			r = half / math.Tan(theta/2)
		}
	}
	if r < radius {
		c.OK = false
		c.Clamped = true
	}
	if r <= 0 {
		return c, true
	}

	t := r * math.Tan(theta/2)
	c.RadiusUsed = r
	c.Tangent = t
	c.InTangent = v.Sub(dIn.MulScalar(t))
	c.OutTangent = v.Add(dOut.MulScalar(t))

	n := geom.Perp(dIn)
	if !c.CCW {
		n = n.MulScalar(-1)
	}
	center := c.InTangent.Add(n.MulScalar(r))
	c.Center = &center
	c.StartAngle = geom.Heading(c.InTangent.Sub(center))
	return c, true
}

// Generate smooths a normalized road. Interior vertices get a fillet of the
// radius requested at that vertex, clamped so that no fillet consumes more
// than half of either adjacent run.
func Generate(s road.Spec, opts Options) *Centerline {
	verts := s.Vertices()
	cl := &Centerline{Vertices: verts}
	if len(verts) < 2 {
		return cl
	}

	cur := verts[0]
	for i := 1; i < len(verts)-1; i++ {
		in := verts[i].Sub(verts[i-1])
		out := verts[i+1].Sub(verts[i])
		c, ok := FitCorner(i, verts[i], geom.Unit(in), geom.Unit(out), in.Length(), out.Length(), s.RadiusAt(i), opts)
		if !ok || c.Sharp() {
			if ok {
				cl.Corners = append(cl.Corners, c)
			}
			cl.Path.AddLine(cur, verts[i])
			cur = verts[i]
			continue
		}
		cl.Corners = append(cl.Corners, c)
		cl.Path.AddLine(cur, c.InTangent)
		arc, _ := c.Arc()
		cl.Path.AddArc(arc)
		cur = c.OutTangent
	}
	cl.Path.AddLine(cur, verts[len(verts)-1])
	cl.Points = cl.Path.Polyline(opts.Chord)
	return cl
}
