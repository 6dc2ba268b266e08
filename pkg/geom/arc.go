package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Arc is a circular arc. Sweep is signed: positive sweeps counter-clockwise.
type Arc struct {
	Center     v2.Vec  `json:"center"`
	Radius     float64 `json:"radius"`
	StartAngle float64 `json:"start_angle"` // angle from center to the start point
	Sweep      float64 `json:"sweep"`
}

// Length returns the arc length.
func (a Arc) Length() float64 {
	return a.Radius * math.Abs(a.Sweep)
}

// CCW reports whether the arc runs counter-clockwise.
func (a Arc) CCW() bool {
	return a.Sweep > 0
}

// PointAt returns the point at parameter t in [0, 1].
func (a Arc) PointAt(t float64) v2.Vec {
	return a.Center.Add(FromHeading(a.StartAngle + a.Sweep*t).MulScalar(a.Radius))
}

// Start returns the first point of the arc.
func (a Arc) Start() v2.Vec { return a.PointAt(0) }

// End returns the last point of the arc.
func (a Arc) End() v2.Vec { return a.PointAt(1) }

// TangentAt returns the unit travel direction at parameter t.
func (a Arc) TangentAt(t float64) v2.Vec {
	r := FromHeading(a.StartAngle + a.Sweep*t)
	if a.Sweep < 0 {
		return Perp(r).MulScalar(-1)
	}
	return Perp(r)
}

// ArcSteps returns how many chords are needed so that no chord of an arc
// with the given radius and sweep is longer than chord.
func ArcSteps(radius, sweep, chord float64) int {
	sweep = math.Abs(sweep)
	if radius <= Epsilon || sweep <= Epsilon {
		return 1
	}
	if chord <= 0 || chord >= 2*radius {
		return max(1, int(math.Ceil(sweep/math.Pi)))
	}
	step := 2 * math.Asin(chord/(2*radius))
	return max(1, int(math.Ceil(sweep/step-1e-9)))
}

// Tessellate returns the arc as a polyline, start and end included, with no
// chord longer than chord.
func (a Arc) Tessellate(chord float64) []v2.Vec {
	n := ArcSteps(a.Radius, a.Sweep, chord)
	pts := make([]v2.Vec, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, a.PointAt(float64(i)/float64(n)))
	}
	return pts
}
