package export

import (
	"encoding/json"
	"fmt"
	"io"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"

	"github.com/chazu/roadweave/pkg/generate"
)

func lineString(pts []v2.Vec) orb.LineString {
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = orb.Point{p.X, p.Y}
	}
	return ls
}

// GeoJSON returns res as a feature collection: one LineString per
// flattened curve, with layer and name properties, and one Point per pole.
// Plan x maps to the first coordinate and plan z to the second.
func GeoJSON(res *generate.Result, opts Options) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, pl := range Lines(res, opts.Chord) {
		ls := lineString(pl.Points)
		if opts.Simplify > 0 && len(ls) > 2 {
			if s, ok := simplify.DouglasPeucker(opts.Simplify).Simplify(ls.Clone()).(orb.LineString); ok {
				ls = s
			}
		}
		f := geojson.NewFeature(ls)
		f.Properties["layer"] = string(pl.Layer)
		f.Properties["name"] = pl.Name
		fc.Append(f)
	}
	for _, m := range Marks(res) {
		f := geojson.NewFeature(orb.Point{m.Pos.X, m.Pos.Y})
		f.Properties["layer"] = "pole"
		f.Properties["id"] = m.ID
		f.Properties["kind"] = m.Kind.String()
		f.Properties["owner"] = m.Owner
		f.Properties["collision"] = m.Collision
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON encodes GeoJSON(res, opts) to w.
func WriteGeoJSON(w io.Writer, res *generate.Result, opts Options) error {
	data, err := GeoJSON(res, opts).MarshalJSON()
	if err != nil {
		return fmt.Errorf("export: geojson: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("export: geojson: %w", err)
	}
	return nil
}

// WriteJSON encodes the full result to w, indented.
func WriteJSON(w io.Writer, res *generate.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("export: json: %w", err)
	}
	return nil
}
