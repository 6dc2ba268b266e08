package junction

import (
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/roadweave/pkg/geom"
	"github.com/chazu/roadweave/pkg/graph"
	"github.com/chazu/roadweave/pkg/road"
)

const tol = 1e-6

func near(a, b float64) bool { return math.Abs(a-b) <= tol }

func straight(tag string, x0, z0, x1, z1 float64) road.Spec {
	return road.Spec{
		Points:        []road.Point{road.Pt(x0, z0), road.Pt(x1, z1)},
		LanesForward:  1,
		LanesBackward: 1,
		Tag:           tag,
	}
}

func build(t *testing.T, specs ...road.Spec) *graph.Network {
	t.Helper()
	n, errs := graph.Build(specs, graph.DefaultParams())
	if len(errs) != 0 {
		t.Fatalf("Build: %v", errs)
	}
	return n
}

func TestFilletRadius(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want float64
	}{
		{"factor", Params{LaneWidth: 3, ThresholdFactor: 2, FilletRadiusFactor: 1}, 6},
		{"min", Params{LaneWidth: 3, ThresholdFactor: 0.1, MinThreshold: 2, FilletRadiusFactor: 1}, 2},
		{"max", Params{LaneWidth: 3, ThresholdFactor: 4, MaxThreshold: 5, FilletRadiusFactor: 0.5}, 2.5},
		{"unbounded max", Params{LaneWidth: 3, ThresholdFactor: 40, FilletRadiusFactor: 1}, 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FilletRadius(tt.p); !near(got, tt.want) {
				t.Errorf("FilletRadius = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestStraightThroughIsCutback(t *testing.T) {
	n := build(t,
		straight("w", -20, 0, 0, 0),
		straight("e", 0, 0, 20, 0),
	)
	mid := n.MustLookup("w").NodeB
	j, ok := ResolveNode(n, mid, DefaultParams())
	if !ok {
		t.Fatal("degree-2 node should be resolved")
	}
	if len(j.Connections) != 2 {
		t.Fatalf("connections = %d, want 2", len(j.Connections))
	}
	for i, c := range j.Connections {
		if c.Kind != KindCutback || c.Fillet != nil {
			t.Errorf("connection %d kind = %s, want cutback", i, c.Kind)
		}
		if !c.PassThrough {
			t.Errorf("connection %d should be a pass-through", i)
		}
		if c.Cutback > tol {
			t.Errorf("connection %d cutback = %f, boundaries should meet", i, c.Cutback)
		}
	}
	if j.Cutbacks() != 2 || j.Fillets() != 0 {
		t.Errorf("cutbacks=%d fillets=%d", j.Cutbacks(), j.Fillets())
	}
}

func TestDeadEndsAreNotResolved(t *testing.T) {
	n := build(t, straight("a", 0, 0, 10, 0))
	if joins := Resolve(n, DefaultParams()); len(joins) != 0 {
		t.Errorf("joins = %d, want 0", len(joins))
	}
}

func cross(t *testing.T, length float64) *graph.Network {
	return build(t,
		straight("east", 0, 0, length, 0),
		straight("north", 0, 0, 0, length),
		straight("west", -length, 0, 0, 0),
		straight("south", 0, -length, 0, 0),
	)
}

func TestOrderIncident(t *testing.T) {
	n := cross(t, 20)
	ord := OrderIncident(n, 0)
	want := []string{"east", "north", "west", "south"}
	if len(ord) != len(want) {
		t.Fatalf("ordered %d ends", len(ord))
	}
	for i, w := range want {
		if got := n.Edge(ord[i].Edge).Tag(); got != w {
			t.Errorf("position %d = %s, want %s", i, got, w)
		}
	}
}

func TestCrossFillets(t *testing.T) {
	n := cross(t, 20)
	p := DefaultParams()
	r := FilletRadius(p)
	joins := Resolve(n, p)
	if len(joins) != 1 || joins[0].NodeID != 0 {
		t.Fatalf("joins = %+v", joins)
	}
	j := joins[0]
	if len(j.Connections) != 4 || j.Fillets() != 4 {
		t.Fatalf("connections = %d fillets = %d, want 4 and 4", len(j.Connections), j.Fillets())
	}
	h := n.Edges[0].Width / 2

	c := j.Connections[0]
	if n.Edge(c.A.Edge).Tag() != "east" || n.Edge(c.B.Edge).Tag() != "north" {
		t.Errorf("first connection joins %s to %s", c.A, c.B)
	}
	if c.A.Side != graph.SideLeft || c.B.Side != graph.SideRight {
		t.Errorf("sides = %s %s", c.A.Side, c.B.Side)
	}
	if !near(c.Angle, math.Pi/2) {
		t.Errorf("angle = %f", c.Angle)
	}
	f := c.Fillet
	if f == nil || c.Clamped {
		t.Fatalf("want an unclamped fillet, got %+v", c)
	}
	if !near(f.Arc.Radius, r) {
		t.Errorf("radius = %f, want %f", f.Arc.Radius, r)
	}
	if geom.Dist(f.Corner, geom.Vec(h, h)) > tol {
		t.Errorf("corner = %v, want (%f,%f)", f.Corner, h, h)
	}
	if geom.Dist(f.Arc.Center, geom.Vec(h+r, h+r)) > tol {
		t.Errorf("center = %v", f.Arc.Center)
	}
	if geom.Dist(f.Arc.Start(), f.TangentA) > tol || geom.Dist(f.Arc.End(), f.TangentB) > tol {
		t.Errorf("arc %v..%v does not meet tangents %v %v", f.Arc.Start(), f.Arc.End(), f.TangentA, f.TangentB)
	}
	if !near(c.TrimA, h+r) || !near(c.TrimB, h+r) {
		t.Errorf("trims = %f %f", c.TrimA, c.TrimB)
	}
	if !near(c.Path.Length, r*math.Pi/2) {
		t.Errorf("path length = %f", c.Path.Length)
	}
	// The arc leaves A heading back toward the node and arrives along B.
	if geom.Dist(c.Path.StartTangent(), geom.Vec(-1, 0)) > tol || geom.Dist(c.Path.EndTangent(), geom.Vec(0, 1)) > tol {
		t.Errorf("tangents = %v %v", c.Path.StartTangent(), c.Path.EndTangent())
	}
}

func TestTJunction(t *testing.T) {
	n := build(t,
		straight("east", 0, 0, 20, 0),
		straight("west", -20, 0, 0, 0),
		straight("north", 0, 0, 0, 20),
	)
	j, ok := ResolveNode(n, 0, DefaultParams())
	if !ok {
		t.Fatal("junction not resolved")
	}
	if j.Fillets() != 2 || j.Cutbacks() != 1 {
		t.Errorf("fillets=%d cutbacks=%d, want 2 and 1", j.Fillets(), j.Cutbacks())
	}
	for _, c := range j.Connections {
		if c.Kind == KindCutback {
			if n.Edge(c.EndA.Edge).Tag() != "west" || n.Edge(c.EndB.Edge).Tag() != "east" {
				t.Errorf("cutback joins %s to %s, want the straight side", c.A, c.B)
			}
			if c.PassThrough {
				t.Error("a junction is not a pass-through")
			}
		}
	}
}

func TestClampedFillet(t *testing.T) {
	n := cross(t, 12)
	j, _ := ResolveNode(n, 0, DefaultParams())
	c := j.Connections[0]
	if c.Kind != KindFillet || !c.Clamped {
		t.Fatalf("kind=%s clamped=%v, want a clamped fillet", c.Kind, c.Clamped)
	}
	// Half-width 4 plus tangent length may use at most half of the 12 m
	// boundary, which leaves a radius of 2 for a right angle.
	if !near(c.Fillet.Arc.Radius, 2) {
		t.Errorf("radius = %f, want 2", c.Fillet.Arc.Radius)
	}
	if !near(c.TrimA, 6) {
		t.Errorf("trim = %f, want 6", c.TrimA)
	}
}

func TestInfeasibleFilletFallsBack(t *testing.T) {
	n := cross(t, 6)
	j, _ := ResolveNode(n, 0, DefaultParams())
	for i, c := range j.Connections {
		if c.Kind != KindCutback || !c.Clamped {
			t.Errorf("connection %d kind=%s clamped=%v, want a clamped cutback", i, c.Kind, c.Clamped)
		}
		if c.Cutback <= 0 {
			t.Errorf("connection %d cutback length = %f", i, c.Cutback)
		}
	}
}

func TestBentPassThroughKeepsFillet(t *testing.T) {
	n := build(t,
		straight("a", -20, 0, 0, 0),
		straight("b", 0, 0, 14, 14),
	)
	j, _ := ResolveNode(n, 1, DefaultParams())
	if j.Fillets() != 1 || j.Cutbacks() != 1 {
		t.Errorf("fillets=%d cutbacks=%d, want 1 and 1", j.Fillets(), j.Cutbacks())
	}
	for _, c := range j.Connections {
		if c.PassThrough {
			t.Error("a 45 degree bend exceeds the pass-through tolerance")
		}
	}
}

func TestFilletStaysOnCurvedBoundary(t *testing.T) {
	tests := []struct {
		name       string
		run        float64 // length of the bent road's first leg
		minFillets int
		minClamped int
	}{
		// the bend starts right at the node: nothing straight to fillet on
		{"short run", 3, 0, 2},
		{"long run", 20, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bent := road.Spec{
				Points:        []road.Point{road.Pt(0, 0), road.Pt(0, tt.run), road.Pt(30, tt.run)},
				DefaultRadius: 6,
				LanesForward:  1,
				LanesBackward: 1,
				Tag:           "bent",
			}
			n := build(t,
				straight("east", 0, 0, 40, 0),
				bent,
				straight("west", 0, 0, -40, 0),
			)
			j, ok := ResolveNode(n, 0, DefaultParams())
			if !ok {
				t.Fatal("junction not resolved")
			}

			onBoundary := func(ref graph.BoundaryRef, ee graph.EdgeEnd, trim float64, want v2.Vec) bool {
				bd := n.Edge(ref.Edge).Boundary(ref.Side)
				got := bd.PointAt(n.BoundaryDistance(ee, ref.Side, trim))
				return geom.Dist(got, want) <= 1e-6
			}
			fillets, clamped := 0, 0
			for i, c := range j.Connections {
				if c.Clamped {
					clamped++
				}
				if c.Kind != KindFillet {
					continue
				}
				fillets++
				if !onBoundary(c.A, c.EndA, c.TrimA, c.Fillet.TangentA) {
					t.Errorf("connection %d: tangent A %v is off its boundary", i, c.Fillet.TangentA)
				}
				if !onBoundary(c.B, c.EndB, c.TrimB, c.Fillet.TangentB) {
					t.Errorf("connection %d: tangent B %v is off its boundary", i, c.Fillet.TangentB)
				}
			}
			if fillets < tt.minFillets || clamped < tt.minClamped {
				t.Errorf("fillets=%d clamped=%d, want at least %d and %d", fillets, clamped, tt.minFillets, tt.minClamped)
			}
		})
	}
}
