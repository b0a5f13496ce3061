// Package wireframe draws resolved geometry as box outlines.
//
// Every box gets its outer rectangle in the outline colour. Boxes with
// padding also get their content rectangle in the content colour, and grids
// get their strip edges in the grid colour with the axis row marked by a
// centre line. Coordinates are translated so the geometry frame starts at
// the margin.
//
//	svg, err := wireframe.SVG(geometry, render.DefaultOptions())
//	pdf, err := wireframe.PDF(geometry, render.DefaultOptions())
package wireframe

import (
	"bytes"
	"image/color"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/matzehuels/pulsegrid/pkg/diagram"
	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
	"github.com/matzehuels/pulsegrid/pkg/render"
)

// labelSize is the label font size in points.
const labelSize = 7.0

var transparent = color.RGBA{0, 0, 0, 0}

// SVG renders g as an SVG document.
func SVG(g diagram.Geometry, opts render.Options) ([]byte, error) {
	c, w, h, err := draw(g, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	writer := svg.New(&buf, w, h, nil)
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write svg")
	}
	return buf.Bytes(), nil
}

// PDF renders g as a single-page PDF document.
func PDF(g diagram.Geometry, opts render.Options) ([]byte, error) {
	c, w, h, err := draw(g, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	writer := pdf.New(&buf, w, h, nil)
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write pdf")
	}
	return buf.Bytes(), nil
}

type painter struct {
	ctx    *canvas.Context
	opts   render.Options
	origin geom.Point
	face   *canvas.FontFace
}

func draw(g diagram.Geometry, opts render.Options) (*canvas.Canvas, float64, float64, error) {
	if len(g.Boxes) == 0 {
		return nil, 0, 0, errors.New(errors.ErrCodeInvalidInput, "geometry %q has no boxes", g.Name)
	}
	w := max(g.Frame.W+2*opts.Margin, 1)
	h := max(g.Frame.H+2*opts.Margin, 1)
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)

	p := &painter{
		ctx:    ctx,
		opts:   opts,
		origin: geom.Point{X: g.Frame.X - opts.Margin, Y: g.Frame.Y - opts.Margin},
	}
	if opts.ShowLabels && len(opts.Font) > 0 {
		face, err := loadFace(opts.Font, canvas.Hex(opts.Outline))
		if err != nil {
			return nil, 0, 0, err
		}
		p.face = face
	}

	for _, b := range g.Boxes {
		p.box(b)
	}
	return c, w, h, nil
}

func loadFace(data []byte, col color.RGBA) (*canvas.FontFace, error) {
	family := canvas.NewFontFamily("labels")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load label font")
	}
	return family.Face(labelSize, col, canvas.FontRegular, canvas.FontNormal), nil
}

func (p *painter) box(b diagram.Box) {
	p.rect(b.RenderRect(), p.opts.Outline, p.opts.Stroke)

	if b.Padding != (geom.Padding{}) {
		content := b.Content
		content.X += b.Offset.X
		content.Y += b.Offset.Y
		p.rect(content, p.opts.Content, p.opts.Stroke/2)
	}

	if b.Grid != nil && p.opts.ShowGrid {
		p.grid(b)
	}

	if p.face != nil && b.IsLeaf() && b.Label != "" {
		x, y := p.at(b.Render)
		metrics := p.face.Metrics()
		p.ctx.DrawText(x+p.opts.Stroke, y+metrics.Ascent, canvas.NewTextLine(p.face, b.Label, canvas.Left))
	}
}

// grid draws inner strip edges and a centre line through the axis row.
func (p *painter) grid(b diagram.Box) {
	lines := b.Grid
	if len(lines.Rows) < 2 || len(lines.Cols) < 2 {
		return
	}
	left, right := lines.Cols[0]+b.Offset.X, lines.Cols[len(lines.Cols)-1]+b.Offset.X
	top, bottom := lines.Rows[0]+b.Offset.Y, lines.Rows[len(lines.Rows)-1]+b.Offset.Y
	stroke := p.opts.Stroke / 2

	for _, y := range lines.Rows[1 : len(lines.Rows)-1] {
		p.line(geom.Point{X: left, Y: y + b.Offset.Y}, geom.Point{X: right, Y: y + b.Offset.Y}, p.opts.Grid, stroke)
	}
	for _, x := range lines.Cols[1 : len(lines.Cols)-1] {
		p.line(geom.Point{X: x + b.Offset.X, Y: top}, geom.Point{X: x + b.Offset.X, Y: bottom}, p.opts.Grid, stroke)
	}
	if r := lines.AxisRow; r >= 0 && r+1 < len(lines.Rows) {
		y := (lines.Rows[r]+lines.Rows[r+1])/2 + b.Offset.Y
		p.line(geom.Point{X: left, Y: y}, geom.Point{X: right, Y: y}, p.opts.Outline, stroke)
	}
}

func (p *painter) rect(r geom.Rect, hex string, stroke float64) {
	x, y := p.at(geom.Point{X: r.X, Y: r.Y})
	p.ctx.SetFillColor(transparent)
	p.ctx.SetStrokeColor(canvas.Hex(hex))
	p.ctx.SetStrokeWidth(stroke)
	p.ctx.DrawPath(x, y, canvas.Rectangle(r.W, r.H))
}

func (p *painter) line(from, to geom.Point, hex string, stroke float64) {
	x, y := p.at(from)
	p.ctx.SetStrokeColor(canvas.Hex(hex))
	p.ctx.SetStrokeWidth(stroke)
	path := &canvas.Path{}
	path.MoveTo(0, 0)
	path.LineTo(to.X-from.X, to.Y-from.Y)
	p.ctx.DrawPath(x, y, path)
}

func (p *painter) at(pt geom.Point) (float64, float64) {
	return pt.X - p.origin.X, pt.Y - p.origin.Y
}
