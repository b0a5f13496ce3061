package diagram

import (
	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
	"github.com/matzehuels/pulsegrid/pkg/layout"
)

// Geometry is the resolved form of a laid-out tree.
type Geometry struct {
	Version int    `json:"version"`
	Name    string `json:"name,omitempty"`
	// Frame is the union of every outer rectangle, including render offsets.
	Frame    geom.Rect      `json:"frame"`
	Boxes    []Box          `json:"boxes"`
	Bindings []geom.Binding `json:"bindings,omitempty"`
}

// Box is one resolved entity.
type Box struct {
	ID      geom.ID      `json:"id"`
	Parent  geom.ID      `json:"parent,omitempty"`
	Label   string       `json:"label,omitempty"`
	Type    string       `json:"type"`
	Kind    string       `json:"kind,omitempty"`
	Depth   int          `json:"depth"`
	Outer   geom.Rect    `json:"outer"`
	Content geom.Rect    `json:"content"`
	Padding geom.Padding `json:"padding"`
	Offset  geom.Point   `json:"offset"`
	// Render is the outer top-left plus Offset: where a renderer draws.
	Render  geom.Point `json:"render"`
	Flipped bool       `json:"flipped,omitempty"`
	Grid    *GridLines `json:"grid,omitempty"`
}

// GridLines are the resolved strip edges of a grid, in absolute
// coordinates. Rows has Rows+1 entries, Cols has Cols+1.
type GridLines struct {
	Rows    []float64 `json:"rows"`
	Cols    []float64 `json:"cols"`
	AxisRow int       `json:"axis_row"`
}

// RenderRect returns the outer rectangle moved by the render offset.
func (b Box) RenderRect() geom.Rect {
	return geom.Rect{X: b.Render.X, Y: b.Render.Y, W: b.Outer.W, H: b.Outer.H}
}

// IsLeaf reports whether the box is a plain element.
func (b Box) IsLeaf() bool { return b.Type == layout.TypeElement }

// Find returns the box with the given id.
func (g Geometry) Find(id geom.ID) (Box, bool) {
	for _, b := range g.Boxes {
		if b.ID == id {
			return b, true
		}
	}
	return Box{}, false
}

// Resolve flattens a laid-out tree. Every entity must have both coordinates
// assigned; the first unresolved one fails with UNSET_COORDINATE.
func Resolve(root layout.Node) (Geometry, error) {
	if root == nil {
		return Geometry{}, errors.New(errors.ErrCodeMissingOwner, "resolve: nil root")
	}
	g := Geometry{
		Version: errors.SnapshotVersion,
		Name:    root.Base().Label(),
	}
	first := true
	err := layout.Walk(root, func(n layout.Node, depth int) error {
		b, err := resolveBox(n, depth)
		if err != nil {
			return err
		}
		g.Boxes = append(g.Boxes, b)
		if first {
			g.Frame = b.RenderRect()
			first = false
		} else {
			g.Frame = g.Frame.Union(b.RenderRect())
		}
		return nil
	})
	if err != nil {
		return Geometry{}, err
	}
	g.Bindings = layout.Export(root).Bindings
	return g, nil
}

func resolveBox(n layout.Node, depth int) (Box, error) {
	e := n.Base()
	outer, err := e.OuterRect()
	if err != nil {
		return Box{}, errors.Wrap(errors.ErrCodeUnsetCoordinate, err, "resolve %s", e.ID())
	}
	content, err := e.ContentRect()
	if err != nil {
		return Box{}, errors.Wrap(errors.ErrCodeUnsetCoordinate, err, "resolve %s", e.ID())
	}
	render, err := e.RenderPosition()
	if err != nil {
		return Box{}, errors.Wrap(errors.ErrCodeUnsetCoordinate, err, "resolve %s", e.ID())
	}

	b := Box{
		ID:      e.ID(),
		Parent:  e.Parent(),
		Label:   e.Label(),
		Type:    nodeType(n),
		Kind:    e.Kind(),
		Depth:   depth,
		Outer:   outer,
		Content: content,
		Padding: e.Padding(),
		Offset:  e.Offset(),
		Render:  render,
		Flipped: e.Flipped(),
	}
	if grid, ok := n.(*layout.Grid); ok {
		b.Grid = gridLines(grid)
	}
	return b, nil
}

func nodeType(n layout.Node) string {
	switch n.(type) {
	case *layout.Grid:
		return layout.TypeGrid
	case *layout.Container:
		return layout.TypeContainer
	}
	if _, ok := n.(interface{ MainAxis() geom.Axis }); ok {
		return layout.TypeStack
	}
	if len(n.Children()) > 0 {
		return layout.TypeContainer
	}
	return layout.TypeElement
}

// gridLines reads strip edges from the resolved cells. Grids without rows
// or columns, or not yet positioned, have none.
func gridLines(g *layout.Grid) *GridLines {
	rows, cols := g.Rows(), g.Cols()
	if rows == 0 || cols == 0 {
		return nil
	}
	gl := &GridLines{AxisRow: g.AxisRow()}
	for r := range rows {
		rc, err := g.CellRect(r, 0)
		if err != nil {
			return nil
		}
		gl.Rows = append(gl.Rows, rc.Y)
		if r == rows-1 {
			gl.Rows = append(gl.Rows, rc.Bottom())
		}
	}
	for c := range cols {
		rc, err := g.CellRect(0, c)
		if err != nil {
			return nil
		}
		gl.Cols = append(gl.Cols, rc.X)
		if c == cols-1 {
			gl.Cols = append(gl.Cols, rc.Right())
		}
	}
	return gl
}
