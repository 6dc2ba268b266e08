package graph

import (
	"math"

	"github.com/chazu/roadweave/pkg/geom"
)

// overlapTol absorbs rounding in tangent-length sums.
const overlapTol = 1e-6

// validateGeometry runs the geometric checks.
func validateGeometry(n *Network) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateWidths(n)...)
	errs = append(errs, validateBoundaries(n)...)
	errs = append(errs, validateCorners(n)...)
	return errs
}

// validateWidths checks that every edge has a positive finite width.
func validateWidths(n *Network) []ValidationError {
	var errs []ValidationError
	for _, e := range n.Edges {
		if !(e.Width > 0) || math.IsInf(e.Width, 0) {
			errs = append(errs, edgeFinding(e.ID, SeverityError, "road width is %.4f, must be positive", e.Width))
		}
	}
	return errs
}

// validateBoundaries checks that both boundary curves exist.
func validateBoundaries(n *Network) []ValidationError {
	var errs []ValidationError
	for _, e := range n.Edges {
		for _, s := range []Side{SideLeft, SideRight} {
			if e.Boundary(s).IsEmpty() {
				errs = append(errs, edgeFinding(e.ID, SeverityError, "%s boundary is empty", s))
			}
		}
	}
	return errs
}

// validateCorners checks the corner invariants of every centerline: spans
// within [0, π] and no two fillets sharing tangent length on the segment
// between them. Clamped corners are reported as warnings.
func validateCorners(n *Network) []ValidationError {
	var errs []ValidationError
	for _, e := range n.Edges {
		cl := e.Centerline
		tangent := make(map[int]float64, len(cl.Corners))
		for _, c := range cl.Corners {
			tangent[c.Index] = c.Tangent
			if c.SpanAngle < 0 || c.SpanAngle > math.Pi+overlapTol {
				errs = append(errs, edgeFinding(e.ID, SeverityError, "corner %d span %.4f outside [0, π]", c.Index, c.SpanAngle))
			}
			if c.Clamped {
				errs = append(errs, edgeFinding(e.ID, SeverityWarning, "corner %d radius %.4f clamped to %.4f", c.Index, c.Requested, c.RadiusUsed))
			}
		}
		for i := 0; i+1 < len(cl.Vertices); i++ {
			seg := geom.Dist(cl.Vertices[i], cl.Vertices[i+1])
			if used := tangent[i] + tangent[i+1]; used > seg+overlapTol {
				errs = append(errs, edgeFinding(e.ID, SeverityError, "corners %d and %d overlap: %.4f of %.4f", i, i+1, used, seg))
			}
		}
	}
	return errs
}
