package export

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/roadweave/pkg/generate"
)

// Drawing is a line-drawing backend. Implementations wrap a file format
// writer behind this interface so results can be drawn the same way into
// any of them.
type Drawing interface {
	Line(a, b v2.Vec)
	Save() error
}

// Compile-time interface checks.
var (
	_ Drawing = dxfDrawing{}
	_ Drawing = (*render.SVG)(nil)
)

// dxfDrawing adapts render.DXF, which draws sdf.Line2 values.
type dxfDrawing struct {
	*render.DXF
}

func (d dxfDrawing) Line(a, b v2.Vec) {
	d.DXF.Line(&sdf.Line2{a, b})
}

// defaultSVGStyle is the stroke used for SVG output.
const defaultSVGStyle = "fill:none;stroke:black;stroke-width:0.1"

// NewDXF returns a drawing that saves to a DXF file at path.
func NewDXF(path string) Drawing {
	return dxfDrawing{render.NewDXF(path)}
}

// NewSVG returns a drawing that saves to an SVG file at path.
func NewSVG(path string) Drawing {
	return render.NewSVG(path, defaultSVGStyle)
}

// Draw draws every polyline of res and a cross at each pole. It does not
// save the drawing.
func Draw(d Drawing, res *generate.Result, opts Options) {
	for _, pl := range Lines(res, opts.Chord) {
		for i := 1; i < len(pl.Points); i++ {
			d.Line(pl.Points[i-1], pl.Points[i])
		}
	}
	if opts.MarkSize <= 0 {
		return
	}
	s := opts.MarkSize
	for _, m := range Marks(res) {
		d.Line(m.Pos.Add(v2.Vec{X: -s, Y: -s}), m.Pos.Add(v2.Vec{X: s, Y: s}))
		d.Line(m.Pos.Add(v2.Vec{X: -s, Y: s}), m.Pos.Add(v2.Vec{X: s, Y: -s}))
	}
}

// WriteDXF draws res into a DXF file.
func WriteDXF(path string, res *generate.Result, opts Options) error {
	d := NewDXF(path)
	Draw(d, res, opts)
	if err := d.Save(); err != nil {
		return fmt.Errorf("export: dxf: %w", err)
	}
	return nil
}

// WriteSVG draws res into an SVG file.
func WriteSVG(path string, res *generate.Result, opts Options) error {
	d := NewSVG(path)
	Draw(d, res, opts)
	if err := d.Save(); err != nil {
		return fmt.Errorf("export: svg: %w", err)
	}
	return nil
}
