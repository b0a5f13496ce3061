package layout

import (
	"slices"

	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
)

// Rows run along the y axis and columns along x: a row index is a
// coordinate on Y, a column index a coordinate on X.

func coordOn(c Coords, a geom.Axis) int {
	if a == geom.Y {
		return c.Row
	}
	return c.Col
}

func addOn(c Coords, a geom.Axis, d int) Coords {
	if a == geom.Y {
		c.Row += d
	} else {
		c.Col += d
	}
	return c
}

func (s *Span) grow(a geom.Axis, d int) {
	if a == geom.Y {
		s.Rows += d
	} else {
		s.Cols += d
	}
}

func spanOn(s Span, a geom.Axis) int {
	if a == geom.Y {
		return s.Rows
	}
	return s.Cols
}

func stripName(a geom.Axis) string {
	if a == geom.Y {
		return "row"
	}
	return "column"
}

// count returns the number of strips along a.
func (g *Grid) count(a geom.Axis) int {
	if a == geom.Y {
		return len(g.matrix)
	}
	return g.cols
}

// at returns the k-th cell of strip i along a.
func (g *Grid) at(a geom.Axis, i, k int) *Cell {
	if a == geom.Y {
		return g.matrix[i][k]
	}
	return g.matrix[k][i]
}

func (g *Grid) put(a geom.Axis, i, k int, c *Cell) {
	if a == geom.Y {
		g.matrix[i][k] = c
	} else {
		g.matrix[k][i] = c
	}
}

func (g *Grid) newStrip(a geom.Axis) *geom.Box {
	b := g.Scene().NewBox(stripName(a))
	b.SetParent(g.ID())
	return b
}

// ensure grows the matrix to at least rows x cols.
func (g *Grid) ensure(rows, cols int) {
	for g.cols < cols {
		for r := range g.matrix {
			g.matrix[r] = append(g.matrix[r], nil)
		}
		g.colStrips = append(g.colStrips, g.newStrip(geom.X))
		g.cols++
	}
	for len(g.matrix) < rows {
		g.matrix = append(g.matrix, make([]*Cell, g.cols))
		g.rowStrips = append(g.rowStrips, g.newStrip(geom.Y))
	}
	g.invalidate()
}

// shift moves every coordinate at or after from along a by d: entry
// sources and the values of every Sources map.
func (g *Grid) shift(a geom.Axis, from, d int) {
	for _, en := range g.entries {
		if coordOn(en.at, a) >= from {
			en.at = addOn(en.at, a, d)
		}
	}
	for _, row := range g.matrix {
		for _, cell := range row {
			if cell == nil {
				continue
			}
			for id, src := range cell.Sources {
				if coordOn(src, a) >= from {
					cell.Sources[id] = addOn(src, a, d)
				}
			}
		}
	}
}

// ====================================================================
// Insertion
// ====================================================================

// InsertRow splices an empty row at index; index == Rows() appends.
//
// Elements spanning across the insertion point grow by one row and gain a
// Sources entry in the new cells; every coordinate at or below index moves
// down by one. Out-of-range indexes are logged and ignored.
func (g *Grid) InsertRow(index int) bool { return g.insertStrip(geom.Y, index) }

// InsertColumn is the column counterpart of InsertRow.
func (g *Grid) InsertColumn(index int) bool { return g.insertStrip(geom.X, index) }

func (g *Grid) insertStrip(a geom.Axis, index int) bool {
	n := g.count(a)
	if index < 0 || index > n {
		g.Scene().Logger().Warn("insert out of range", "grid", g.ID(), stripName(a), index, "count", n)
		return false
	}

	length := g.count(a.Other())
	fresh := make([]*Cell, length)
	if index > 0 && index < n {
		grown := make(map[geom.ID]bool)
		for k := 0; k < length; k++ {
			before, after := g.at(a, index-1, k), g.at(a, index, k)
			for _, id := range before.referenced() {
				en := g.entries[id]
				if en == nil || !after.References(id) {
					continue
				}
				if !grown[id] {
					en.span.grow(a, 1)
					grown[id] = true
				}
				if fresh[k] == nil {
					fresh[k] = &Cell{}
				}
				fresh[k].merge(&Cell{Sources: map[geom.ID]Coords{id: en.at}})
			}
		}
	}

	if a == geom.Y {
		g.matrix = slices.Insert(g.matrix, index, fresh)
		g.rowStrips = slices.Insert(g.rowStrips, index, g.newStrip(a))
	} else {
		for r := range g.matrix {
			g.matrix[r] = slices.Insert(g.matrix[r], index, fresh[r])
		}
		g.colStrips = slices.Insert(g.colStrips, index, g.newStrip(a))
		g.cols++
	}
	g.shift(a, index, 1)
	if a == geom.Y && index <= g.axisRow {
		g.axisRow++
	}
	g.invalidate()
	g.syncAll()
	return true
}

// ====================================================================
// Removal
// ====================================================================

// RemoveRow deletes row index and moves every row below it up by one.
//
// A row is empty when none of its cells holds an element, source entry,
// ghost or extra. With onlyIfEmpty a non-empty row is kept. Otherwise
// elements spanning through it shrink, elements whose source lies in it move
// their source down, and elements confined to it are removed from the grid.
// It reports whether the row was removed.
func (g *Grid) RemoveRow(index int, onlyIfEmpty bool) bool {
	return g.removeStrip(geom.Y, index, onlyIfEmpty)
}

// RemoveColumn is the column counterpart of RemoveRow.
func (g *Grid) RemoveColumn(index int, onlyIfEmpty bool) bool {
	return g.removeStrip(geom.X, index, onlyIfEmpty)
}

func (g *Grid) stripEmpty(a geom.Axis, index int) bool {
	for k := 0; k < g.count(a.Other()); k++ {
		if !g.at(a, index, k).Empty() {
			return false
		}
	}
	return true
}

func (g *Grid) removeStrip(a geom.Axis, index int, onlyIfEmpty bool) bool {
	logger := g.Scene().Logger()
	if index < 0 || index >= g.count(a) {
		logger.Warn("remove out of range", "grid", g.ID(), stripName(a), index, "count", g.count(a))
		return false
	}
	if !g.stripEmpty(a, index) {
		if onlyIfEmpty {
			logger.Debug("keeping non-empty strip", "grid", g.ID(), stripName(a), index)
			return false
		}
		g.evacuate(a, index)
	}

	s := g.Scene()
	if a == geom.Y {
		g.matrix = slices.Delete(g.matrix, index, index+1)
		s.Release(g.rowStrips[index].ID())
		g.rowStrips = slices.Delete(g.rowStrips, index, index+1)
	} else {
		for r := range g.matrix {
			g.matrix[r] = slices.Delete(g.matrix[r], index, index+1)
		}
		s.Release(g.colStrips[index].ID())
		g.colStrips = slices.Delete(g.colStrips, index, index+1)
		g.cols--
	}
	g.shift(a, index+1, -1)
	if a == geom.Y && index < g.axisRow {
		g.axisRow--
	}
	g.invalidate()
	g.syncAll()
	return true
}

// evacuate prepares strip index for deletion by shrinking, moving or
// removing every element that references it.
func (g *Grid) evacuate(a geom.Axis, index int) {
	var ids []geom.ID
	seen := make(map[geom.ID]bool)
	for k := 0; k < g.count(a.Other()); k++ {
		for _, id := range g.at(a, index, k).referenced() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	for _, id := range ids {
		en := g.entries[id]
		if en == nil {
			continue
		}
		if spanOn(en.span, a) == 1 {
			g.Scene().Logger().Info("removing element confined to deleted strip", "grid", g.ID(), "element", id, stripName(a), index)
			g.Remove(en.node)
			continue
		}
		en.span.grow(a, -1)
		if coordOn(en.at, a) != index {
			continue
		}
		// The source moves to the next strip, which takes index after the
		// deletion, so the source coordinate itself is unchanged.
		k := coordOn(en.at, a.Other())
		src, next := g.at(a, index, k), g.at(a, index+1, k)
		src.Elements = slices.DeleteFunc(src.Elements, func(n Node) bool { return n.Base().ID() == id })
		delete(next.Sources, id)
		next.Elements = append(next.Elements, en.node)
	}
}

// ====================================================================
// Cell edits
// ====================================================================

// MergeCellAt folds cell into the cell at coords, growing the matrix when
// coords lie outside it. Element lists and ghosts concatenate, source maps
// merge and a non-nil Extra overwrites.
func (g *Grid) MergeCellAt(cell *Cell, at Coords) error {
	if at.Row < 0 || at.Col < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "grid %s: negative cell %d,%d", g.ID(), at.Row, at.Col)
	}
	if cell == nil {
		return nil
	}
	g.mergeCell(cell, at)
	return nil
}

func (g *Grid) mergeCell(cell *Cell, at Coords) {
	g.ensure(at.Row+1, at.Col+1)
	dst := g.matrix[at.Row][at.Col]
	if dst == nil {
		dst = &Cell{}
		g.matrix[at.Row][at.Col] = dst
	}
	dst.merge(cell)
	g.invalidate()
}

// ReserveGhost adds an ownerless space reservation at coords.
func (g *Grid) ReserveGhost(at Coords, w, h float64) error {
	return g.MergeCellAt(&Cell{Ghosts: []Ghost{{W: max(w, 0), H: max(h, 0)}}}, at)
}

// SetExtra sets the fixed additive space of the cell at coords.
func (g *Grid) SetExtra(at Coords, w, h float64) error {
	return g.MergeCellAt(&Cell{Extra: &Extra{W: w, H: h}}, at)
}

// RemoveElement takes n out of the grid without destroying it: it leaves
// every cell of its span and every ghost it owns, including reservations
// outside its span, cells left with nothing collapse to empty, and n is
// detached so it can be added again with a new placement. A bottom pulse
// is flipped back. Non-members are logged and ignored.
func (g *Grid) RemoveElement(n Node) bool {
	if !g.unplace(n) {
		return false
	}
	return g.detach(n)
}

// unplace clears n from the matrix and drops its entry.
func (g *Grid) unplace(n Node) bool {
	id := idOf(n)
	en := g.entries[id]
	if en == nil {
		g.Scene().Logger().Warn("remove: not a grid member", "grid", g.ID(), "element", id)
		return false
	}
	for r, row := range g.matrix {
		for c, cell := range row {
			if cell == nil {
				continue
			}
			cell.drop(id)
			if cell.Empty() {
				g.matrix[r][c] = nil
			}
		}
	}
	if en.flipped {
		en.node.Base().Flip()
	}
	g.Scene().Release(en.region.ID())
	delete(g.entries, id)
	g.invalidate()
	return true
}

// Squeeze drops trailing empty rows and columns until the last row and the
// last column each hold something.
func (g *Grid) Squeeze() {
	for {
		changed := false
		if n := len(g.matrix); n > 0 && g.stripEmpty(geom.Y, n-1) {
			changed = g.removeStrip(geom.Y, n-1, true)
		}
		if g.cols > 0 && g.stripEmpty(geom.X, g.cols-1) {
			changed = g.removeStrip(geom.X, g.cols-1, true) || changed
		}
		if !changed {
			return
		}
	}
}
