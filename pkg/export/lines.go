// Package export writes generated road networks out for inspection: JSON,
// GeoJSON, and DXF or SVG line drawings.
package export

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/roadweave/pkg/collision"
	"github.com/chazu/roadweave/pkg/generate"
	"github.com/chazu/roadweave/pkg/geom"
)

// Layer groups exported lines by what they show.
type Layer string

const (
	LayerCenterline Layer = "centerline"
	LayerBoundary   Layer = "boundary"
	LayerJoin       Layer = "join"
	LayerConnector  Layer = "connector"
)

// Options controls how curves are flattened.
type Options struct {
	// Chord is the longest chord used when flattening arcs.
	Chord float64 `json:"chord"`
	// Simplify is the Douglas-Peucker tolerance applied to GeoJSON lines.
	// Zero keeps every point.
	Simplify float64 `json:"simplify"`
	// MarkSize is the half-size of the cross drawn at each pole.
	MarkSize float64 `json:"mark_size"`
}

// DefaultOptions returns the default export options.
func DefaultOptions() Options {
	return Options{Chord: 0.25, MarkSize: 0.3}
}

// Polyline is one flattened curve.
type Polyline struct {
	Layer  Layer
	Name   string
	Points []v2.Vec
}

// Mark is one pole.
type Mark struct {
	ID        int
	Pos       v2.Vec
	Kind      collision.PoleKind
	Collision bool
	Owner     string
}

// Lines flattens every curve of res into polylines, in a fixed order:
// centerlines and boundaries per edge, then joins, then connectors. It never
// mutates res.
func Lines(res *generate.Result, chord float64) []Polyline {
	if res == nil || res.Network == nil {
		return nil
	}
	var out []Polyline
	add := func(layer Layer, name string, p geom.Path) {
		if p.IsEmpty() {
			return
		}
		out = append(out, Polyline{Layer: layer, Name: name, Points: p.Polyline(chord)})
	}
	for _, e := range res.Network.Edges {
		name := e.Tag()
		if name == "" {
			name = e.ID.String()
		}
		add(LayerCenterline, name, e.Centerline.Path)
		add(LayerBoundary, name+"/left", e.Left)
		add(LayerBoundary, name+"/right", e.Right)
	}
	for _, j := range res.Joins {
		for i, c := range j.Connections {
			add(LayerJoin, fmt.Sprintf("%s/%d/%s", j.NodeID, i, c.Kind), c.Path)
		}
	}
	for i, c := range res.Connectors {
		add(LayerConnector, fmt.Sprintf("%s/%d/%s", c.Purpose, i, c.Connector.Type), c.Path)
	}
	return out
}

// Marks returns the result's poles.
func Marks(res *generate.Result) []Mark {
	if res == nil {
		return nil
	}
	out := make([]Mark, 0, len(res.Poles))
	for _, p := range res.Poles {
		out = append(out, Mark{ID: p.ID, Pos: p.Pos, Kind: p.Kind, Collision: p.Collision, Owner: p.Owner.String()})
	}
	return out
}
