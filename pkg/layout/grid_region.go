package layout

import (
	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
)

// ElementSpan returns the inclusive bottom-right cell of n's span. It walks
// right from the source cell while the next column's cell still references
// n, then down while the next row's cell does.
func (g *Grid) ElementSpan(n Node) (Coords, error) {
	id := idOf(n)
	en := g.entries[id]
	if en == nil {
		return Coords{}, errors.New(errors.ErrCodeNotFound, "grid %s: %s is not a member", g.ID(), id)
	}
	end := en.at
	for end.Col+1 < g.cols && g.matrix[en.at.Row][end.Col+1].References(id) {
		end.Col++
	}
	for end.Row+1 < len(g.matrix) && g.matrix[end.Row+1][en.at.Col].References(id) {
		end.Row++
	}
	return end, nil
}

func (g *Grid) checkRegion(tl, br Coords) error {
	if tl.Row > br.Row || tl.Col > br.Col {
		return errors.New(errors.ErrCodeInvalidRegion, "grid %s: region %v..%v is inverted", g.ID(), tl, br)
	}
	if tl.Row < 0 || tl.Col < 0 || br.Row >= len(g.matrix) || br.Col >= g.cols {
		return errors.New(errors.ErrCodeInvalidRegion, "grid %s: region %v..%v outside %dx%d", g.ID(), tl, br, len(g.matrix), g.cols)
	}
	return nil
}

// CellUnionSize sums the column widths and row heights of the inclusive
// region tl..br.
func (g *Grid) CellUnionSize(tl, br Coords) (geom.Size, error) {
	if err := g.checkRegion(tl, br); err != nil {
		return geom.Size{}, err
	}
	var s geom.Size
	for c := tl.Col; c <= br.Col; c++ {
		s.W += g.ColumnWidth(c)
	}
	for r := tl.Row; r <= br.Row; r++ {
		s.H += g.RowHeight(r)
	}
	return s, nil
}

// PositionedCellUnion merges the resolved rectangles of the inclusive region
// tl..br. Cells are resolved by a position pass.
func (g *Grid) PositionedCellUnion(tl, br Coords) (geom.Rect, error) {
	if err := g.checkRegion(tl, br); err != nil {
		return geom.Rect{}, err
	}
	first, err := g.CellRect(tl.Row, tl.Col)
	if err != nil {
		return geom.Rect{}, err
	}
	last, err := g.CellRect(br.Row, br.Col)
	if err != nil {
		return geom.Rect{}, err
	}
	return geom.Rect{X: first.X, Y: first.Y, W: last.Right() - first.X, H: last.Bottom() - first.Y}, nil
}
