package geom

import (
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

const tol = 1e-6

func near(a, b float64) bool {
	return math.Abs(a-b) <= tol
}

func nearVec(a, b v2.Vec) bool {
	return Dist(a, b) <= tol
}

func TestAngles(t *testing.T) {
	tests := []struct {
		name string
		a, b v2.Vec
		turn float64
		sign float64
		ccw  float64
	}{
		{"left quarter", Vec(1, 0), Vec(0, 1), math.Pi / 2, math.Pi / 2, math.Pi / 2},
		{"right quarter", Vec(1, 0), Vec(0, -1), math.Pi / 2, -math.Pi / 2, 3 * math.Pi / 2},
		{"straight", Vec(1, 0), Vec(2, 0), 0, 0, 0},
		{"reverse", Vec(1, 0), Vec(-1, 0), math.Pi, math.Pi, math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TurnAngle(tt.a, tt.b); !near(got, tt.turn) {
				t.Errorf("TurnAngle = %f, want %f", got, tt.turn)
			}
			if got := SignedTurn(tt.a, tt.b); !near(got, tt.sign) {
				t.Errorf("SignedTurn = %f, want %f", got, tt.sign)
			}
			if got := CCWAngle(tt.a, tt.b); !near(got, tt.ccw) {
				t.Errorf("CCWAngle = %f, want %f", got, tt.ccw)
			}
		})
	}
}

func TestNormalizeAngle(t *testing.T) {
	if got := NormalizeAngle(5 * math.Pi / 2); !near(got, math.Pi/2) {
		t.Errorf("NormalizeAngle(5π/2) = %f, want π/2", got)
	}
	if got := NormalizeAngle(3 * math.Pi / 2); !near(got, -math.Pi/2) {
		t.Errorf("NormalizeAngle(3π/2) = %f, want -π/2", got)
	}
	if got := Mod2Pi(-math.Pi / 2); !near(got, 3*math.Pi/2) {
		t.Errorf("Mod2Pi(-π/2) = %f", got)
	}
}

func TestLineIntersect(t *testing.T) {
	s, u, ok := LineIntersect(Vec(0, 0), Vec(1, 0), Vec(5, -5), Vec(0, 1))
	if !ok {
		t.Fatal("expected intersection")
	}
	if !near(s, 5) || !near(u, 5) {
		t.Errorf("s=%f u=%f, want 5 5", s, u)
	}
	if _, _, ok := LineIntersect(Vec(0, 0), Vec(1, 0), Vec(0, 1), Vec(2, 0)); ok {
		t.Error("parallel lines should not intersect")
	}
}

func TestArc(t *testing.T) {
	a := Arc{Center: Vec(0, 0), Radius: 2, StartAngle: 0, Sweep: math.Pi / 2}
	if !near(a.Length(), math.Pi) {
		t.Errorf("Length = %f, want π", a.Length())
	}
	if !nearVec(a.Start(), Vec(2, 0)) || !nearVec(a.End(), Vec(0, 2)) {
		t.Errorf("endpoints = %v %v", a.Start(), a.End())
	}
	if !nearVec(a.TangentAt(0), Vec(0, 1)) {
		t.Errorf("ccw tangent = %v, want (0,1)", a.TangentAt(0))
	}
	cw := Arc{Center: Vec(0, 0), Radius: 2, StartAngle: 0, Sweep: -math.Pi / 2}
	if !nearVec(cw.TangentAt(0), Vec(0, -1)) {
		t.Errorf("cw tangent = %v, want (0,-1)", cw.TangentAt(0))
	}

	pts := a.Tessellate(0.5)
	if len(pts) < 3 {
		t.Fatalf("too few points: %d", len(pts))
	}
	for i := 1; i < len(pts); i++ {
		if d := Dist(pts[i-1], pts[i]); d > 0.5+tol {
			t.Errorf("chord %d = %f exceeds 0.5", i, d)
		}
	}
}

func lPath() Path {
	// (0,0) -> (10,0), quarter arc of radius 2 turning left, -> up to z=10.
	var p Path
	p.AddLine(Vec(0, 0), Vec(8, 0))
	p.AddArc(Arc{Center: Vec(8, 2), Radius: 2, StartAngle: -math.Pi / 2, Sweep: math.Pi / 2})
	p.AddLine(Vec(10, 2), Vec(10, 10))
	return p
}

func TestPathQueries(t *testing.T) {
	p := lPath()
	want := 8 + math.Pi + 8
	if !near(p.Length, want) || !near(p.Len(), want) {
		t.Fatalf("Length = %f, want %f", p.Length, want)
	}
	if !nearVec(p.Start(), Vec(0, 0)) || !nearVec(p.End(), Vec(10, 10)) {
		t.Errorf("endpoints = %v %v", p.Start(), p.End())
	}
	if !nearVec(p.PointAt(4), Vec(4, 0)) {
		t.Errorf("PointAt(4) = %v", p.PointAt(4))
	}
	if !nearVec(p.PointAt(-1), p.Start()) || !nearVec(p.PointAt(1000), p.End()) {
		t.Error("PointAt should clamp to the path")
	}
	if !nearVec(p.StartTangent(), Vec(1, 0)) || !nearVec(p.EndTangent(), Vec(0, 1)) {
		t.Errorf("tangents = %v %v", p.StartTangent(), p.EndTangent())
	}
	mid := p.TangentAt(8 + math.Pi/2)
	if !nearVec(mid, Unit(Vec(1, 1))) {
		t.Errorf("mid-arc tangent = %v", mid)
	}
}

func TestPathProject(t *testing.T) {
	p := lPath()
	along, dist := p.Project(Vec(5, 1))
	if !near(along, 5) || !near(dist, 1) {
		t.Errorf("Project line = %f, %f", along, dist)
	}
	along, dist = p.Project(Vec(11, 6))
	if !near(along, 8+math.Pi+4) || !near(dist, 1) {
		t.Errorf("Project second line = %f, %f", along, dist)
	}
}

func TestPathReverse(t *testing.T) {
	p := lPath()
	r := p.Reverse()
	if !near(r.Length, p.Length) {
		t.Fatalf("reverse length = %f, want %f", r.Length, p.Length)
	}
	if !nearVec(r.Start(), p.End()) || !nearVec(r.End(), p.Start()) {
		t.Errorf("reverse endpoints = %v %v", r.Start(), r.End())
	}
	for _, d := range []float64{0, 3, 9, 12, p.Length} {
		if !nearVec(r.PointAt(p.Length-d), p.PointAt(d)) {
			t.Errorf("reverse point mismatch at %f", d)
		}
	}
}

func TestPathPolylineContinuous(t *testing.T) {
	pts := lPath().Polyline(0.25)
	if !nearVec(pts[0], Vec(0, 0)) || !nearVec(pts[len(pts)-1], Vec(10, 10)) {
		t.Fatalf("polyline endpoints = %v %v", pts[0], pts[len(pts)-1])
	}
	for i := 1; i < len(pts); i++ {
		if Dist(pts[i-1], pts[i]) < tol {
			t.Errorf("duplicate polyline point at %d", i)
		}
	}
}

func TestPathSkipsDegenerate(t *testing.T) {
	var p Path
	p.AddLine(Vec(1, 1), Vec(1, 1))
	p.AddArc(Arc{Center: Vec(0, 0), Radius: 1, Sweep: 0})
	if !p.IsEmpty() {
		t.Errorf("degenerate segments should be skipped, got %d", len(p.Segments))
	}
}

func TestOffset(t *testing.T) {
	p := lPath()
	left := p.Offset(1)
	right := p.Offset(-1)

	if !nearVec(left.Start(), Vec(0, 1)) || !nearVec(left.End(), Vec(9, 10)) {
		t.Errorf("left endpoints = %v %v", left.Start(), left.End())
	}
	if !nearVec(right.Start(), Vec(0, -1)) || !nearVec(right.End(), Vec(11, 10)) {
		t.Errorf("right endpoints = %v %v", right.Start(), right.End())
	}
	// Inner arc shrinks, outer arc grows.
	if !near(left.Length, 8+math.Pi/2+8) {
		t.Errorf("left length = %f", left.Length)
	}
	if !near(right.Length, 8+3*math.Pi/2+8) {
		t.Errorf("right length = %f", right.Length)
	}
	for d := 0.0; d <= left.Length; d += 0.5 {
		_, dist := p.Project(left.PointAt(d))
		if !near(dist, 1) {
			t.Fatalf("left offset at %f is %f from centerline", d, dist)
		}
	}
}

func TestOffsetSharpCorner(t *testing.T) {
	var p Path
	p.AddLine(Vec(0, 0), Vec(10, 0))
	p.AddLine(Vec(10, 0), Vec(10, 10))

	inner := p.Offset(1)
	if len(inner.Segments) != 2 {
		t.Fatalf("inner join segments = %d, want 2", len(inner.Segments))
	}
	if !nearVec(inner.Segments[0].P1, Vec(9, 1)) {
		t.Errorf("inner trim point = %v, want (9,1)", inner.Segments[0].P1)
	}

	outer := p.Offset(-1)
	if len(outer.Segments) != 3 || outer.Segments[1].Kind != SegmentArc {
		t.Fatalf("outer join should be line/arc/line, got %d segments", len(outer.Segments))
	}
	if !near(outer.Segments[1].Arc.Radius, 1) {
		t.Errorf("round join radius = %f", outer.Segments[1].Arc.Radius)
	}
	if !near(outer.Length, 10+math.Pi/2+10) {
		t.Errorf("outer length = %f", outer.Length)
	}
}

func TestOffsetCollapsedArc(t *testing.T) {
	var p Path
	p.AddArc(Arc{Center: Vec(0, 0), Radius: 1, StartAngle: 0, Sweep: math.Pi / 2})
	if got := p.Offset(2); !got.IsEmpty() {
		t.Errorf("collapsed arc should be dropped, got %d segments", len(got.Segments))
	}
}
