// Package geom holds the plan-geometry primitives shared by the road engine.
//
// Plan coordinates are stored in sdfx v2.Vec values: X carries world x and
// Y carries world z. Angles are radians, measured counter-clockwise from +X.
package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Epsilon is the absolute tolerance used for lengths and coincidence tests.
const Epsilon = 1e-9

// Vec builds a plan vector from world x and z.
func Vec(x, z float64) v2.Vec {
	return v2.Vec{X: x, Y: z}
}

// Cross returns the z-component of the 3D cross product of a and b.
// Positive means b is counter-clockwise from a.
func Cross(a, b v2.Vec) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Perp returns a rotated 90 degrees counter-clockwise (the left normal).
func Perp(a v2.Vec) v2.Vec {
	return v2.Vec{X: -a.Y, Y: a.X}
}

// Unit returns a unit vector in the direction of a, or the zero vector when
// a is too short to have a direction.
func Unit(a v2.Vec) v2.Vec {
	l := a.Length()
	if l < Epsilon {
		return v2.Vec{}
	}
	return a.MulScalar(1 / l)
}

// Dist returns the distance between a and b.
func Dist(a, b v2.Vec) float64 {
	return a.Sub(b).Length()
}

// Lerp interpolates between a (t=0) and b (t=1).
func Lerp(a, b v2.Vec, t float64) v2.Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Heading returns the direction angle of a.
func Heading(a v2.Vec) float64 {
	return math.Atan2(a.Y, a.X)
}

// FromHeading returns the unit vector pointing along heading h.
func FromHeading(h float64) v2.Vec {
	s, c := math.Sincos(h)
	return v2.Vec{X: c, Y: s}
}

// Near reports whether a and b are within tol of each other.
func Near(a, b v2.Vec, tol float64) bool {
	return Dist(a, b) <= tol
}

// IsFinite reports whether both components of a are finite numbers.
func IsFinite(a v2.Vec) bool {
	return !math.IsNaN(a.X) && !math.IsNaN(a.Y) && !math.IsInf(a.X, 0) && !math.IsInf(a.Y, 0)
}

// LineIntersect intersects the lines p + s*d and q + u*e. ok is false when
// the lines are parallel.
func LineIntersect(p, d, q, e v2.Vec) (s, u float64, ok bool) {
	den := Cross(d, e)
	if math.Abs(den) < Epsilon {
		return 0, 0, false
	}
	w := q.Sub(p)
	s = Cross(w, e) / den
	u = Cross(w, d) / den
	return s, u, true
}
