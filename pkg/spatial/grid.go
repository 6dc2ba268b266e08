// Package spatial buckets plan points into a uniform hash grid keyed by
// floored cell coordinates. It backs node snapping and pole proximity
// searches.
package spatial

import (
	"math"
	"sort"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Key identifies one grid cell.
type Key struct {
	X, Z int
}

type entry[T any] struct {
	pos   v2.Vec
	value T
	seq   int
}

// Grid is a hash grid of values anchored at plan points. Query order is
// insertion order, so results are deterministic for a deterministic input.
type Grid[T any] struct {
	cell  float64
	cells map[Key][]entry[T]
	seq   int
	count int
}

// NewGrid returns an empty grid. cell must be positive; non-positive sizes
// are replaced by 1.
func NewGrid[T any](cell float64) *Grid[T] {
	if !(cell > 0) || math.IsInf(cell, 0) {
		cell = 1
	}
	return &Grid[T]{cell: cell, cells: make(map[Key][]entry[T])}
}

// Cell returns the cell size.
func (g *Grid[T]) Cell() float64 { return g.cell }

// Key returns the cell containing p.
func (g *Grid[T]) Key(p v2.Vec) Key {
	return Key{X: int(math.Floor(p.X / g.cell)), Z: int(math.Floor(p.Y / g.cell))}
}

// Len returns the number of stored values.
func (g *Grid[T]) Len() int { return g.count }

// Insert stores v at p.
func (g *Grid[T]) Insert(p v2.Vec, v T) {
	k := g.Key(p)
	g.cells[k] = append(g.cells[k], entry[T]{pos: p, value: v, seq: g.seq})
	g.seq++
	g.count++
}

// Remove deletes the first value stored at p for which match returns true.
// It reports whether a value was removed.
func (g *Grid[T]) Remove(p v2.Vec, match func(T) bool) bool {
	k := g.Key(p)
	bucket := g.cells[k]
	for i, e := range bucket {
		if match(e.value) {
			g.cells[k] = append(bucket[:i], bucket[i+1:]...)
			if len(g.cells[k]) == 0 {
				delete(g.cells, k)
			}
			g.count--
			return true
		}
	}
	return false
}

// Move relocates the first value at from matching match to to.
func (g *Grid[T]) Move(from, to v2.Vec, match func(T) bool) bool {
	k := g.Key(from)
	for _, e := range g.cells[k] {
		if match(e.value) {
			g.Remove(from, match)
			nk := g.Key(to)
			g.cells[nk] = append(g.cells[nk], entry[T]{pos: to, value: e.value, seq: e.seq})
			g.count++
			return true
		}
	}
	return false
}

// Within calls fn for every value stored within r of p, in insertion order.
// Returning false from fn stops the scan.
func (g *Grid[T]) Within(p v2.Vec, r float64, fn func(pos v2.Vec, v T) bool) {
	if r < 0 {
		return
	}
	lo := g.Key(v2.Vec{X: p.X - r, Y: p.Y - r})
	hi := g.Key(v2.Vec{X: p.X + r, Y: p.Y + r})

	var hits []entry[T]
	for x := lo.X; x <= hi.X; x++ {
		for z := lo.Z; z <= hi.Z; z++ {
			for _, e := range g.cells[Key{X: x, Z: z}] {
				if e.pos.Sub(p).Length() <= r {
					hits = append(hits, e)
				}
			}
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq < hits[j].seq })
	for _, e := range hits {
		if !fn(e.pos, e.value) {
			return
		}
	}
}

// Nearest returns the value closest to p within r. Ties go to the value
// inserted first.
func (g *Grid[T]) Nearest(p v2.Vec, r float64) (T, v2.Vec, bool) {
	var (
		best    T
		bestPos v2.Vec
		found   bool
		bestD   = math.Inf(1)
	)
	g.Within(p, r, func(pos v2.Vec, v T) bool {
		if d := pos.Sub(p).Length(); d < bestD {
			best, bestPos, bestD, found = v, pos, d, true
		}
		return true
	})
	return best, bestPos, found
}
