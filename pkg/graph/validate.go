package graph

import (
	"fmt"

	"github.com/chazu/roadweave/pkg/geom"
)

// NoEdge marks a finding that is not about a particular edge.
const NoEdge EdgeID = -1

// ValidationSeverity indicates whether a validation finding means the
// network is broken or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // network is inconsistent
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (NoNode if none)
	EdgeID   EdgeID             // which edge has the problem (NoEdge if none)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	switch {
	case e.EdgeID != NoEdge:
		return fmt.Sprintf("[%s] edge %s: %s", e.Severity, e.EdgeID, e.Message)
	case !e.NodeID.IsZero():
		return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	EdgeID  EdgeID
	Message string
}

// ValidationResult bundles errors and warnings from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether no errors were found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

func nodeFinding(id NodeID, sev ValidationSeverity, format string, args ...any) ValidationError {
	return ValidationError{NodeID: id, EdgeID: NoEdge, Message: fmt.Sprintf(format, args...), Severity: sev}
}

func edgeFinding(id EdgeID, sev ValidationSeverity, format string, args ...any) ValidationError {
	return ValidationError{NodeID: NoNode, EdgeID: id, Message: fmt.Sprintf(format, args...), Severity: sev}
}

// Validate runs the structural checks on the network and returns its
// findings. An empty slice means the network is consistent. It never
// mutates the network.
func Validate(n *Network) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateReferences(n)...)
	errs = append(errs, validateIncidence(n)...)
	errs = append(errs, validateEndpoints(n)...)
	errs = append(errs, validateTags(n)...)
	errs = append(errs, validateOrphans(n)...)
	return errs
}

// ValidateAll runs the structural and geometric tiers and returns a
// ValidationResult with separated errors and warnings.
func ValidateAll(n *Network) ValidationResult {
	var result ValidationResult
	add := func(findings []ValidationError) {
		for _, e := range findings {
			if e.Severity == SeverityWarning {
				result.Warnings = append(result.Warnings, ValidationWarning{
					NodeID:  e.NodeID,
					EdgeID:  e.EdgeID,
					Message: e.Message,
				})
			} else {
				result.Errors = append(result.Errors, e)
			}
		}
	}
	add(Validate(n))
	add(validateGeometry(n))
	return result
}

// validateReferences checks that every edge points at existing nodes and
// that node IDs match their slots.
func validateReferences(n *Network) []ValidationError {
	var errs []ValidationError
	for i, nd := range n.Nodes {
		if nd == nil || int(nd.ID) != i {
			errs = append(errs, nodeFinding(NodeID(i), SeverityError, "node slot %d holds a mismatched node", i))
		}
	}
	for _, e := range n.Edges {
		if n.Node(e.NodeA) == nil {
			errs = append(errs, edgeFinding(e.ID, SeverityError, "node_a reference %s does not exist", e.NodeA))
		}
		if n.Node(e.NodeB) == nil {
			errs = append(errs, edgeFinding(e.ID, SeverityError, "node_b reference %s does not exist", e.NodeB))
		}
	}
	return errs
}

// validateIncidence checks that node incidence lists and edge endpoints
// agree in both directions.
func validateIncidence(n *Network) []ValidationError {
	var errs []ValidationError
	seen := make(map[EdgeEnd]NodeID)
	for _, nd := range n.Nodes {
		if nd == nil {
			continue
		}
		for _, ee := range nd.Incident {
			e := n.Edge(ee.Edge)
			if e == nil {
				errs = append(errs, nodeFinding(nd.ID, SeverityError, "incident edge %s does not exist", ee.Edge))
				continue
			}
			if e.Node(ee.End) != nd.ID {
				errs = append(errs, nodeFinding(nd.ID, SeverityError, "incident %s belongs to node %s", ee, e.Node(ee.End)))
			}
			if prev, dup := seen[ee]; dup {
				errs = append(errs, nodeFinding(nd.ID, SeverityError, "edge end %s is also incident to %s", ee, prev))
			}
			seen[ee] = nd.ID
		}
	}
	for _, e := range n.Edges {
		for _, end := range []End{EndStart, EndEnd} {
			if _, ok := seen[EdgeEnd{Edge: e.ID, End: end}]; !ok {
				errs = append(errs, edgeFinding(e.ID, SeverityError, "%s end is not incident to any node", end))
			}
		}
	}
	return errs
}

// validateEndpoints checks that each edge end lies within the snap
// tolerance of its node.
func validateEndpoints(n *Network) []ValidationError {
	var errs []ValidationError
	tol := max(n.Params.SnapTolerance, minSnap) + geom.Epsilon
	for _, e := range n.Edges {
		for _, end := range []End{EndStart, EndEnd} {
			nd := n.Node(e.Node(end))
			if nd == nil {
				continue
			}
			if d := geom.Dist(nd.Position, e.EndPoint(end)); d > tol {
				errs = append(errs, edgeFinding(e.ID, SeverityError, "%s end is %.4f from node %s (tolerance %.4f)", end, d, nd.ID, tol))
			}
		}
	}
	return errs
}

// validateTags warns about tags used by more than one road; Lookup only
// finds the first.
func validateTags(n *Network) []ValidationError {
	var errs []ValidationError
	count := make(map[string]int)
	for _, e := range n.Edges {
		if e.Tag() != "" {
			count[e.Tag()]++
			if count[e.Tag()] == 2 {
				errs = append(errs, edgeFinding(e.ID, SeverityWarning, "duplicate tag %q", e.Tag()))
			}
		}
	}
	return errs
}

// validateOrphans warns about nodes no edge touches.
func validateOrphans(n *Network) []ValidationError {
	var errs []ValidationError
	for _, nd := range n.Nodes {
		if nd != nil && nd.Degree() == 0 {
			errs = append(errs, nodeFinding(nd.ID, SeverityWarning, "node is not connected to any road (orphan)"))
		}
	}
	return errs
}
