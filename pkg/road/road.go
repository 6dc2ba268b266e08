// Package road defines the authoring representation of a road: an ordered
// polyline with optional per-vertex corner radii, lane counts and a tag.
package road

import (
	"errors"
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Epsilon is the distance below which consecutive points are collapsed.
const Epsilon = 1e-6

// ErrInvalidSpec is wrapped by every normalization failure.
var ErrInvalidSpec = errors.New("invalid road spec")

// SpecError reports why a single road could not be normalized.
type SpecError struct {
	Index  int // position of the road in its batch, -1 if unknown
	Tag    string
	Reason string
}

func (e *SpecError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("road %d (%s): %s", e.Index, e.Tag, e.Reason)
	}
	return fmt.Sprintf("road %d: %s", e.Index, e.Reason)
}

func (e *SpecError) Unwrap() error { return ErrInvalidSpec }

// Point is a polyline vertex in plan coordinates. Radius, when set,
// overrides the road's default corner radius at this vertex only.
type Point struct {
	X      float64  `json:"x" yaml:"x"`
	Z      float64  `json:"z" yaml:"z"`
	Radius *float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
}

// Pt returns a point without a radius override.
func Pt(x, z float64) Point {
	return Point{X: x, Z: z}
}

// WithRadius returns a copy of p with its radius override set to r.
func (p Point) WithRadius(r float64) Point {
	p.Radius = &r
	return p
}

// Vec returns p as a plan vector.
func (p Point) Vec() v2.Vec {
	return v2.Vec{X: p.X, Y: p.Z}
}

// Spec is one authored road.
type Spec struct {
	Points        []Point `json:"points" yaml:"points"`
	DefaultRadius float64 `json:"default_radius" yaml:"default_radius"`
	LanesForward  int     `json:"lanes_forward" yaml:"lanes_forward"`
	LanesBackward int     `json:"lanes_backward" yaml:"lanes_backward"`
	Tag           string  `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// RadiusAt returns the corner radius requested at vertex i.
func (s Spec) RadiusAt(i int) float64 {
	if i >= 0 && i < len(s.Points) && s.Points[i].Radius != nil {
		return *s.Points[i].Radius
	}
	return s.DefaultRadius
}

// Vertices returns the polyline as plan vectors.
func (s Spec) Vertices() []v2.Vec {
	out := make([]v2.Vec, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Vec()
	}
	return out
}

// LaneCount returns the effective number of lanes. A road that carries
// lanes in only one direction is widened to at least two lanes.
func (s Spec) LaneCount() int {
	f, b := max(s.LanesForward, 0), max(s.LanesBackward, 0)
	total := f + b
	if (f == 0) != (b == 0) {
		return max(2, total)
	}
	return total
}

// Clone returns a deep copy of s.
func (s Spec) Clone() Spec {
	out := s
	out.Points = make([]Point, len(s.Points))
	for i, p := range s.Points {
		out.Points[i] = p
		if p.Radius != nil {
			r := *p.Radius
			out.Points[i].Radius = &r
		}
	}
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Normalize validates s and returns its canonical form: consecutive points
// closer than Epsilon are collapsed, every point carries a resolved radius
// clamped to zero or more, and negative lane counts are clamped to zero.
// It fails with a *SpecError when fewer than two distinct points remain.
func Normalize(s Spec) (Spec, error) {
	return NormalizeIndexed(s, -1)
}

// NormalizeIndexed is Normalize with the road's batch index recorded on any
// error.
func NormalizeIndexed(s Spec, index int) (Spec, error) {
	fail := func(format string, args ...any) (Spec, error) {
		return Spec{}, &SpecError{Index: index, Tag: s.Tag, Reason: fmt.Sprintf(format, args...)}
	}
	if !finite(s.DefaultRadius) {
		return fail("default radius is not finite")
	}

	out := Spec{
		DefaultRadius: math.Max(0, s.DefaultRadius),
		LanesForward:  max(s.LanesForward, 0),
		LanesBackward: max(s.LanesBackward, 0),
		Tag:           s.Tag,
	}
	for i, p := range s.Points {
		if !finite(p.X) || !finite(p.Z) {
			return fail("point %d is not finite", i)
		}
		r := s.RadiusAt(i)
		if !finite(r) {
			return fail("point %d radius is not finite", i)
		}
		r = math.Max(0, r)
		if n := len(out.Points); n > 0 {
			last := out.Points[n-1]
			if math.Hypot(p.X-last.X, p.Z-last.Z) < Epsilon {
				continue
			}
		}
		out.Points = append(out.Points, Point{X: p.X, Z: p.Z, Radius: &r})
	}
	if len(out.Points) < 2 {
		return fail("need at least 2 distinct points, have %d", len(out.Points))
	}
	return out, nil
}
