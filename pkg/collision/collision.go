// Package collision finds boundary poles that sit too close to poles of a
// different owner and slides them along their own curve until they clear.
package collision

import (
	"fmt"
	"math"
	"sort"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/samber/lo"

	"github.com/chazu/roadweave/pkg/graph"
	"github.com/chazu/roadweave/pkg/spatial"
)

// bisectSteps is the number of halvings used to pin down the first clear
// position once one has been bracketed.
const bisectSteps = 24

// PoleKind is why a pole exists.
type PoleKind int

const (
	PoleCollision  PoleKind = iota // spaced along a boundary
	PoleConnection                 // where a junction join meets a boundary
	PoleEnd                        // at a connector end
)

func (k PoleKind) String() string {
	switch k {
	case PoleCollision:
		return "collision"
	case PoleConnection:
		return "connection"
	case PoleEnd:
		return "end"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k PoleKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// OwnerKind is what an owner ID refers to.
type OwnerKind int

const (
	OwnerEdge OwnerKind = iota
	OwnerNode
	OwnerLink
)

// Owner groups poles that are allowed to be close to each other. Poles only
// conflict with poles of a different owner.
type Owner struct {
	Kind OwnerKind `json:"kind"`
	ID   int       `json:"id"`
}

func (o Owner) String() string {
	switch o.Kind {
	case OwnerEdge:
		return fmt.Sprintf("edge:%d", o.ID)
	case OwnerNode:
		return fmt.Sprintf("node:%d", o.ID)
	default:
		return fmt.Sprintf("link:%d", o.ID)
	}
}

// CurveID indexes a CurveSet.
type CurveID int

// NoCurve marks a pole that cannot move.
const NoCurve CurveID = -1

// Curve is anything a pole can slide along, parameterized by arc length.
type Curve interface {
	PointAt(d float64) v2.Vec
	Len() float64
}

// CurveSet holds the curves poles slide along, indexed by CurveID.
type CurveSet []Curve

// Add appends c and returns its ID.
func (s *CurveSet) Add(c Curve) CurveID {
	*s = append(*s, c)
	return CurveID(len(*s) - 1)
}

// Get returns the curve with the given ID, or nil.
func (s CurveSet) Get(id CurveID) Curve {
	if id < 0 || int(id) >= len(s) {
		return nil
	}
	return s[id]
}

// Pole is a point of interest on a boundary or connector.
type Pole struct {
	ID    int           `json:"id"`
	Pos   v2.Vec        `json:"pos"`
	Kind  PoleKind      `json:"kind"`
	Owner Owner         `json:"owner"`
	Edge  *graph.EdgeID `json:"edge,omitempty"` // owning edge, if any
	Curve CurveID       `json:"curve"`
	Along float64       `json:"along"` // arc length on Curve
	// Collision is set when no clear position could be found.
	Collision bool `json:"collision"`
}

// AdjustedEndEntry records a pole that was moved.
type AdjustedEndEntry struct {
	PoleID   int    `json:"pole_id"`
	Original v2.Vec `json:"original"`
	Adjusted v2.Vec `json:"adjusted"`
}

// Result is the outcome of one resolution pass.
type Result struct {
	Poles      []Pole             `json:"poles"`
	Adjusted   []AdjustedEndEntry `json:"adjusted"`
	Unresolved []int              `json:"unresolved"` // pole IDs
}

// ByOwner groups the result's poles by owner.
func (r Result) ByOwner() map[Owner][]Pole {
	return lo.GroupBy(r.Poles, func(p Pole) Owner { return p.Owner })
}

type resolver struct {
	poles     []Pole
	clearance float64
	grid      *spatial.Grid[int] // pole index
}

// margin returns the distance from q to the nearest pole conflicting with
// pole i, capped at twice the clearance.
func (r *resolver) margin(i int, q v2.Vec) float64 {
	best := 2 * r.clearance
	r.grid.Within(q, best, func(pos v2.Vec, j int) bool {
		if j != i && r.poles[j].Owner != r.poles[i].Owner {
			best = math.Min(best, pos.Sub(q).Length())
		}
		return true
	})
	return best
}

func (r *resolver) clear(i int, q v2.Vec) bool {
	return r.margin(i, q) >= r.clearance
}

// search finds the clear arc length nearest along, or ok=false with the
// curve endpoint reached.
func (r *resolver) search(i int, c Curve, along float64) (float64, bool) {
	length := c.Len()
	step := r.clearance / 4
	clamp := func(d float64) float64 { return math.Max(0, math.Min(length, d)) }

	dir := 1.0
	fwd := r.margin(i, c.PointAt(clamp(along+step)))
	back := r.margin(i, c.PointAt(clamp(along-step)))
	if back > fwd {
		dir = -1
	}

	d := along
	for {
		next := clamp(d + dir*step)
		if r.clear(i, c.PointAt(next)) {
			bad, good := d, next
			for k := 0; k < bisectSteps; k++ {
				mid := (bad + good) / 2
				if r.clear(i, c.PointAt(mid)) {
					good = mid
				} else {
					bad = mid
				}
			}
			return good, true
		}
		if next == d {
			return d, false
		}
		d = next
	}
}

// Resolve moves every pole that sits within clearance of a pole of another
// owner along its own curve, toward more clearance, to the first position
// that is clear. Poles are visited in ID order. A pole that reaches the end
// of its curve without clearing stays there with Collision set; a pole with
// no curve stays put with Collision set. The input slice is not modified.
func Resolve(poles []Pole, curves CurveSet, clearance float64) Result {
	res := Result{Poles: append([]Pole(nil), poles...)}
	if !(clearance > 0) || len(poles) == 0 {
		return res
	}

	order := lo.Range(len(res.Poles))
	sort.SliceStable(order, func(a, b int) bool {
		return res.Poles[order[a]].ID < res.Poles[order[b]].ID
	})

	r := &resolver{
		poles:     res.Poles,
		clearance: clearance,
		grid:      spatial.NewGrid[int](clearance),
	}
	for i, p := range res.Poles {
		r.grid.Insert(p.Pos, i)
	}

	for _, i := range order {
		p := &res.Poles[i]
		if r.clear(i, p.Pos) {
			continue
		}
		c := curves.Get(p.Curve)
		if c == nil {
			p.Collision = true
			res.Unresolved = append(res.Unresolved, p.ID)
			continue
		}
		along, ok := r.search(i, c, p.Along)
		pos := c.PointAt(along)
		if !ok {
			p.Collision = true
			res.Unresolved = append(res.Unresolved, p.ID)
		}
		if pos != p.Pos {
			res.Adjusted = append(res.Adjusted, AdjustedEndEntry{PoleID: p.ID, Original: p.Pos, Adjusted: pos})
			r.grid.Move(p.Pos, pos, func(j int) bool { return j == i })
			p.Pos = pos
			p.Along = along
		}
	}
	return res
}
