package generate

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chazu/roadweave/pkg/centerline"
	"github.com/chazu/roadweave/pkg/graph"
	"github.com/chazu/roadweave/pkg/junction"
)

// ErrInvalidParams is wrapped by every Params.Validate error.
var ErrInvalidParams = errors.New("invalid generation parameters")

// Params holds every setting of one generation pass. Zero-valued optional
// fields are documented per field.
type Params struct {
	LaneWidth     float64 `json:"lane_width" yaml:"lane_width"`
	ShoulderWidth float64 `json:"shoulder_width" yaml:"shoulder_width"`
	CurbThickness float64 `json:"curb_thickness" yaml:"curb_thickness"`
	// TileSize caps road width. Zero means unbounded.
	TileSize      float64 `json:"tile_size" yaml:"tile_size"`
	SnapTolerance float64 `json:"snap_tolerance" yaml:"snap_tolerance"`

	Chord         float64 `json:"chord" yaml:"chord"`
	CornerMinRun  float64 `json:"corner_min_run" yaml:"corner_min_run"`
	StraightAngle float64 `json:"straight_angle" yaml:"straight_angle"`

	ThresholdFactor    float64 `json:"threshold_factor" yaml:"threshold_factor"`
	FilletRadiusFactor float64 `json:"fillet_radius_factor" yaml:"fillet_radius_factor"`
	MinThreshold       float64 `json:"min_threshold" yaml:"min_threshold"`
	// MaxThreshold caps the junction threshold. Zero means unbounded.
	MaxThreshold         float64 `json:"max_threshold" yaml:"max_threshold"`
	CollinearTolerance   float64 `json:"collinear_tolerance" yaml:"collinear_tolerance"`
	PassThroughTolerance float64 `json:"pass_through_tolerance" yaml:"pass_through_tolerance"`

	// CapTurnRadius is the dead-end cap radius. Zero means half the road
	// width, which gives a semicircle.
	CapTurnRadius float64 `json:"cap_turn_radius" yaml:"cap_turn_radius"`
	// LinkTurnRadius is the radius of links that do not set their own.
	// Zero means the junction fillet radius.
	LinkTurnRadius float64 `json:"link_turn_radius" yaml:"link_turn_radius"`

	// PoleSpacing is the distance between collision poles along a
	// boundary. Zero places none.
	PoleSpacing     float64 `json:"pole_spacing" yaml:"pole_spacing"`
	ClearanceFactor float64 `json:"clearance_factor" yaml:"clearance_factor"`
}

// DefaultParams returns the default generation parameters.
func DefaultParams() Params {
	copts := centerline.DefaultOptions()
	jp := junction.DefaultParams()
	return Params{
		LaneWidth:            graph.DefaultLaneWidth,
		ShoulderWidth:        graph.DefaultShoulderWidth,
		CurbThickness:        0.15,
		SnapTolerance:        graph.DefaultSnapTolerance,
		Chord:                copts.Chord,
		CornerMinRun:         copts.MinRun,
		StraightAngle:        copts.StraightAngle,
		ThresholdFactor:      jp.ThresholdFactor,
		FilletRadiusFactor:   jp.FilletRadiusFactor,
		CollinearTolerance:   jp.CollinearTolerance,
		PassThroughTolerance: jp.PassThroughTolerance,
		PoleSpacing:          2,
		ClearanceFactor:      2,
	}
}

// Validate reports the first field that is out of range.
func (p Params) Validate() error {
	if !(p.LaneWidth > 0) || math.IsInf(p.LaneWidth, 0) {
		return fmt.Errorf("%w: lane_width must be positive, got %g", ErrInvalidParams, p.LaneWidth)
	}
	nonNeg := []struct {
		name string
		v    float64
	}{
		{"shoulder_width", p.ShoulderWidth},
		{"curb_thickness", p.CurbThickness},
		{"tile_size", p.TileSize},
		{"snap_tolerance", p.SnapTolerance},
		{"chord", p.Chord},
		{"corner_min_run", p.CornerMinRun},
		{"straight_angle", p.StraightAngle},
		{"threshold_factor", p.ThresholdFactor},
		{"fillet_radius_factor", p.FilletRadiusFactor},
		{"min_threshold", p.MinThreshold},
		{"max_threshold", p.MaxThreshold},
		{"collinear_tolerance", p.CollinearTolerance},
		{"pass_through_tolerance", p.PassThroughTolerance},
		{"cap_turn_radius", p.CapTurnRadius},
		{"link_turn_radius", p.LinkTurnRadius},
		{"pole_spacing", p.PoleSpacing},
		{"clearance_factor", p.ClearanceFactor},
	}
	for _, f := range nonNeg {
		if !(f.v >= 0) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be finite and non-negative, got %g", ErrInvalidParams, f.name, f.v)
		}
	}
	if p.MaxThreshold > 0 && p.MaxThreshold < p.MinThreshold {
		return fmt.Errorf("%w: max_threshold %g is below min_threshold %g", ErrInvalidParams, p.MaxThreshold, p.MinThreshold)
	}
	return nil
}

// ParseParams decodes YAML over the defaults and validates the result.
// Fields absent from data keep their default values.
func ParseParams(data []byte) (Params, error) {
	p := DefaultParams()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("failed to parse params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// LoadParams reads a YAML parameter file.
func LoadParams(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("failed to read params: %w", err)
	}
	return ParseParams(data)
}

// CenterlineOptions returns the corner fitting options.
func (p Params) CenterlineOptions() centerline.Options {
	return centerline.Options{
		Chord:         p.Chord,
		MinRun:        p.CornerMinRun,
		StraightAngle: p.StraightAngle,
	}
}

// GraphParams returns the network builder parameters.
func (p Params) GraphParams() graph.Params {
	return graph.Params{
		LaneWidth:     p.LaneWidth,
		ShoulderWidth: p.ShoulderWidth,
		TileSize:      p.TileSize,
		SnapTolerance: p.SnapTolerance,
		Centerline:    p.CenterlineOptions(),
	}
}

// JunctionParams returns the junction resolver parameters.
func (p Params) JunctionParams() junction.Params {
	return junction.Params{
		LaneWidth:            p.LaneWidth,
		ThresholdFactor:      p.ThresholdFactor,
		FilletRadiusFactor:   p.FilletRadiusFactor,
		MinThreshold:         p.MinThreshold,
		MaxThreshold:         p.MaxThreshold,
		CollinearTolerance:   p.CollinearTolerance,
		PassThroughTolerance: p.PassThroughTolerance,
	}
}

// Clearance returns the minimum distance between poles of different owners.
func (p Params) Clearance() float64 {
	return p.CurbThickness * p.ClearanceFactor
}

// linkRadius returns the turn radius for a link that requested r.
func (p Params) linkRadius(r float64) float64 {
	if r > 0 {
		return r
	}
	if p.LinkTurnRadius > 0 {
		return p.LinkTurnRadius
	}
	return junction.FilletRadius(p.JunctionParams())
}
