package engine

import (
	"fmt"
	"math"
	"strings"

	v2 "github.com/deadsy/sdfx/vec/v2"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/roadweave/pkg/generate"
	"github.com/chazu/roadweave/pkg/road"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites road source before passing it to zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: lane-width -> lane_width
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPoint wraps a road.Point so it can be returned from `pt` and consumed
// by `road` and `link`.
type sexpPoint struct {
	pt road.Point
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	if p.pt.Radius != nil {
		return fmt.Sprintf("(pt %g %g :radius %g)", p.pt.X, p.pt.Z, *p.pt.Radius)
	}
	return fmt.Sprintf("(pt %g %g)", p.pt.X, p.pt.Z)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpRoadRef names a declared road by its index in the program.
type sexpRoadRef struct {
	index int
	tag   string
}

func (r *sexpRoadRef) SexpString(ps *zygo.PrintState) string {
	if r.tag != "" {
		return fmt.Sprintf("(road %q)", r.tag)
	}
	return fmt.Sprintf("(road #%d)", r.index)
}
func (r *sexpRoadRef) Type() *zygo.RegisteredType { return nil }

// sexpLinkRef names a declared link by its index in the program.
type sexpLinkRef struct {
	index int
}

func (l *sexpLinkRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(link #%d)", l.index)
}
func (l *sexpLinkRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string // keywords in source order
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if _, seen := result.kw[name]; !seen {
			result.order = append(result.order, name)
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			// Keyword at end with no value: treat as flag with nil.
			result.kw[name] = zygo.SexpNull
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a finite float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	var f float64
	switch v := s.(type) {
	case *zygo.SexpInt:
		f = float64(v.Val)
	case *zygo.SexpFloat:
		f = v.Val
	default:
		return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected a finite number, got %g", f)
	}
	return f, nil
}

// toInt extracts a whole number from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected a whole number, got %g", f)
	}
	return int(f), nil
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toPoint extracts a road.Point from a sexpPoint.
func toPoint(s zygo.Sexp) (road.Point, error) {
	if p, ok := s.(*sexpPoint); ok {
		return p.pt, nil
	}
	return road.Point{}, fmt.Errorf("expected point, got %T (%s)", s, s.SexpString(nil))
}

// toVec extracts a plan position from a sexpPoint.
func toVec(s zygo.Sexp) (v2.Vec, error) {
	p, err := toPoint(s)
	if err != nil {
		return v2.Vec{}, err
	}
	return p.Vec(), nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// paramFields maps the keyword names accepted by `params` to the fields of p.
func paramFields(p *generate.Params) map[string]*float64 {
	return map[string]*float64{
		"lane-width":             &p.LaneWidth,
		"shoulder-width":         &p.ShoulderWidth,
		"curb-thickness":         &p.CurbThickness,
		"tile-size":              &p.TileSize,
		"snap-tolerance":         &p.SnapTolerance,
		"chord":                  &p.Chord,
		"corner-min-run":         &p.CornerMinRun,
		"straight-angle":         &p.StraightAngle,
		"threshold-factor":       &p.ThresholdFactor,
		"fillet-radius-factor":   &p.FilletRadiusFactor,
		"min-threshold":          &p.MinThreshold,
		"max-threshold":          &p.MaxThreshold,
		"collinear-tolerance":    &p.CollinearTolerance,
		"pass-through-tolerance": &p.PassThroughTolerance,
		"cap-turn-radius":        &p.CapTurnRadius,
		"link-turn-radius":       &p.LinkTurnRadius,
		"pole-spacing":           &p.PoleSpacing,
		"clearance-factor":       &p.ClearanceFactor,
	}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the road DSL builtins into a zygomys
// environment. They append to prog as the source runs.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, prog *Program) {
	tags := make(map[string]int)

	// builtin registers fn and remembers the first error any builtin
	// returns, so it can be reported without zygomys' call-stack framing.
	builtin := func(name string, fn func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error)) {
		env.AddFunction(name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			res, err := fn(env, name, args)
			if err != nil && prog.failed == nil {
				prog.failed = err
			}
			return res, err
		})
	}

	// -----------------------------------------------------------------------
	// (pt 10 0 :radius 4)
	// -----------------------------------------------------------------------
	builtin("pt", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("pt requires exactly 2 coordinates, got %d", len(pa.positional))
		}
		x, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: x: %w", err)
		}
		z, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: z: %w", err)
		}
		p := road.Pt(x, z)
		if v, ok := pa.kw["radius"]; ok {
			r, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pt: radius: %w", err)
			}
			p = p.WithRadius(r)
		}
		return &sexpPoint{pt: p}, nil
	})

	// -----------------------------------------------------------------------
	// (road "main" :lanes-forward 1 :lanes-backward 1 :radius 6
	//       :points (list (pt 0 0) (pt 40 0)))
	//
	// Points may also follow the tag positionally.
	// -----------------------------------------------------------------------
	builtin("road", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		s := road.Spec{LanesForward: 1, LanesBackward: 1}

		rest := pa.positional
		if len(rest) > 0 {
			if tag, err := toString(rest[0]); err == nil {
				s.Tag = tag
				rest = rest[1:]
			}
		}
		if v, ok := pa.kw["points"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("road: points: %w", err)
			}
			rest = append(rest, items...)
		}
		for i, v := range rest {
			p, err := toPoint(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("road: point %d: %w", i, err)
			}
			s.Points = append(s.Points, p)
		}

		if v, ok := pa.kw["lanes"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("road: lanes: %w", err)
			}
			s.LanesForward, s.LanesBackward = n, n
		}
		for _, lk := range []struct {
			kw  string
			dst *int
		}{
			{"lanes-forward", &s.LanesForward},
			{"lanes-backward", &s.LanesBackward},
		} {
			if v, ok := pa.kw[lk.kw]; ok {
				n, err := toInt(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("road: %s: %w", lk.kw, err)
				}
				*lk.dst = n
			}
		}
		if v, ok := pa.kw["radius"]; ok {
			r, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("road: radius: %w", err)
			}
			s.DefaultRadius = r
		}

		index := len(prog.Input.Roads)
		if s.Tag != "" {
			if prev, dup := tags[s.Tag]; dup {
				prog.Warnings = append(prog.Warnings, EvalWarning{
					Message: fmt.Sprintf("road %q declared again (first at road %d)", s.Tag, prev),
					Road:    index,
				})
			} else {
				tags[s.Tag] = index
			}
		}
		prog.Input.Roads = append(prog.Input.Roads, s)
		return &sexpRoadRef{index: index, tag: s.Tag}, nil
	})

	// -----------------------------------------------------------------------
	// (link (pt 40 0) (pt 60 0) :radius 5)
	// -----------------------------------------------------------------------
	builtin("link", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("link requires exactly 2 points, got %d", len(pa.positional))
		}
		a, err := toVec(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("link: from: %w", err)
		}
		b, err := toVec(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("link: to: %w", err)
		}
		l := generate.Link{A: a, B: b}
		if v, ok := pa.kw["radius"]; ok {
			r, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("link: radius: %w", err)
			}
			l.Radius = r
		}
		prog.Input.Links = append(prog.Input.Links, l)
		return &sexpLinkRef{index: len(prog.Input.Links) - 1}, nil
	})

	// -----------------------------------------------------------------------
	// (params :lane-width 3 :shoulder-width 0.25)
	// -----------------------------------------------------------------------
	builtin("params", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("params takes only keyword arguments")
		}
		fields := paramFields(&prog.Params)
		for _, kw := range pa.order {
			dst, ok := fields[kw]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("params: unknown parameter %q", kw)
			}
			f, err := toFloat64(pa.kw[kw])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("params: %s: %w", kw, err)
			}
			*dst = f
		}
		return zygo.SexpNull, nil
	})
}
