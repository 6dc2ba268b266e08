package collision

import (
	"math"
	"testing"

	"github.com/chazu/roadweave/pkg/geom"
)

func line(x0, z0, x1, z1 float64) geom.Path {
	var p geom.Path
	p.AddLine(geom.Vec(x0, z0), geom.Vec(x1, z1))
	return p
}

func TestNoConflict(t *testing.T) {
	var curves CurveSet
	c := curves.Add(line(0, 0, 10, 0))
	poles := []Pole{
		{ID: 0, Pos: geom.Vec(2, 0), Owner: Owner{OwnerEdge, 0}, Curve: c, Along: 2},
		{ID: 1, Pos: geom.Vec(2, 3), Owner: Owner{OwnerEdge, 1}, Curve: NoCurve},
	}
	res := Resolve(poles, curves, 1)
	if len(res.Adjusted) != 0 || len(res.Unresolved) != 0 {
		t.Errorf("adjusted=%v unresolved=%v, want none", res.Adjusted, res.Unresolved)
	}
}

func TestSameOwnerNeverConflicts(t *testing.T) {
	poles := []Pole{
		{ID: 0, Pos: geom.Vec(0, 0), Owner: Owner{OwnerNode, 3}, Curve: NoCurve},
		{ID: 1, Pos: geom.Vec(0.1, 0), Owner: Owner{OwnerNode, 3}, Curve: NoCurve},
	}
	res := Resolve(poles, nil, 1)
	if len(res.Unresolved) != 0 {
		t.Errorf("unresolved = %v", res.Unresolved)
	}
}

func TestSlideToClearance(t *testing.T) {
	var curves CurveSet
	c := curves.Add(line(0, 0, 10, 0))
	poles := []Pole{
		{ID: 1, Pos: geom.Vec(5, 0.1), Owner: Owner{OwnerEdge, 1}, Curve: NoCurve},
		{ID: 0, Pos: geom.Vec(5, 0), Owner: Owner{OwnerEdge, 0}, Curve: c, Along: 5},
	}
	res := Resolve(poles, curves, 1)
	if len(res.Unresolved) != 0 {
		t.Fatalf("unresolved = %v", res.Unresolved)
	}
	if len(res.Adjusted) != 1 || res.Adjusted[0].PoleID != 0 {
		t.Fatalf("adjusted = %+v, want pole 0 only", res.Adjusted)
	}
	moved := res.Poles[1]
	want := 5 + math.Sqrt(0.99)
	if math.Abs(moved.Along-want) > 1e-6 {
		t.Errorf("along = %f, want %f", moved.Along, want)
	}
	if d := geom.Dist(moved.Pos, poles[0].Pos); d < 1 {
		t.Errorf("moved pole still %f from its neighbour", d)
	}
	if res.Adjusted[0].Original != geom.Vec(5, 0) || res.Adjusted[0].Adjusted != moved.Pos {
		t.Errorf("entry = %+v", res.Adjusted[0])
	}
	if poles[1].Pos != geom.Vec(5, 0) {
		t.Error("Resolve modified its input")
	}
}

func TestSlidesAwayFromTheCrowd(t *testing.T) {
	var curves CurveSet
	c := curves.Add(line(0, 0, 10, 0))
	poles := []Pole{
		{ID: 0, Pos: geom.Vec(5, 0), Owner: Owner{OwnerEdge, 0}, Curve: c, Along: 5},
		{ID: 1, Pos: geom.Vec(5.4, 0.2), Owner: Owner{OwnerEdge, 1}, Curve: NoCurve},
	}
	res := Resolve(poles, curves, 1)
	if res.Poles[0].Along >= 5 {
		t.Errorf("pole moved forward to %f, toward the obstacle", res.Poles[0].Along)
	}
}

func TestUnresolvedPinsAtEndpoint(t *testing.T) {
	var curves CurveSet
	c := curves.Add(line(0, 0, 1, 0))
	poles := []Pole{
		{ID: 0, Pos: geom.Vec(0.5, 0), Owner: Owner{OwnerEdge, 0}, Curve: c, Along: 0.5},
		{ID: 1, Pos: geom.Vec(0.5, 0), Owner: Owner{OwnerEdge, 1}, Curve: NoCurve},
	}
	res := Resolve(poles, curves, 5)
	p := res.Poles[0]
	if !p.Collision {
		t.Error("pole should be flagged")
	}
	if p.Pos != geom.Vec(1, 0) {
		t.Errorf("pole pinned at %v, want the curve end", p.Pos)
	}
	if len(res.Unresolved) != 2 || res.Unresolved[0] != 0 || res.Unresolved[1] != 1 {
		t.Errorf("unresolved = %v, want [0 1]", res.Unresolved)
	}
	if len(res.Adjusted) != 1 {
		t.Errorf("adjusted = %v", res.Adjusted)
	}
	if len(res.ByOwner()) != 2 {
		t.Errorf("owners = %d", len(res.ByOwner()))
	}
}

func TestZeroClearance(t *testing.T) {
	poles := []Pole{
		{ID: 0, Pos: geom.Vec(0, 0), Owner: Owner{OwnerEdge, 0}},
		{ID: 1, Pos: geom.Vec(0, 0), Owner: Owner{OwnerEdge, 1}},
	}
	res := Resolve(poles, nil, 0)
	if len(res.Unresolved) != 0 || len(res.Poles) != 2 {
		t.Errorf("zero clearance should be a no-op, got %+v", res)
	}
}
