package layout

import (
	"maps"
	"slices"

	"github.com/matzehuels/pulsegrid/pkg/geom"
)

// Cell is one slot of a grid matrix. All fields are optional.
//
// Elements lists the elements whose source (top-left) cell this is. Sources
// marks the cell as a secondary cell of spanning elements, mapping each
// element id to its source coordinate. Ghosts reserve space without an
// element; Extra adds fixed space to the cell's row and column.
type Cell struct {
	Elements []Node
	Sources  map[geom.ID]Coords
	Ghosts   []Ghost
	Extra    *Extra
}

// Ghost is a synthetic space reservation. Owner is set when an element
// placed the ghost and removes it again with itself.
type Ghost struct {
	W, H  float64
	Owner geom.ID
}

// Extra is fixed additive space.
type Extra struct {
	W, H float64
}

// Empty reports whether the cell holds nothing. A nil cell is empty.
func (c *Cell) Empty() bool {
	return c == nil || (len(c.Elements) == 0 && len(c.Sources) == 0 && len(c.Ghosts) == 0 && c.Extra == nil)
}

// Occupied reports whether any element uses the cell, as source or secondary.
func (c *Cell) Occupied() bool {
	return c != nil && (len(c.Elements) > 0 || len(c.Sources) > 0)
}

// HoldsSource reports whether some element has its source in the cell.
func (c *Cell) HoldsSource() bool {
	return c != nil && len(c.Elements) > 0
}

// References reports whether the element is in the cell's Elements or
// Sources.
func (c *Cell) References(id geom.ID) bool {
	if c == nil {
		return false
	}
	if _, ok := c.Sources[id]; ok {
		return true
	}
	return slices.ContainsFunc(c.Elements, func(n Node) bool { return n.Base().ID() == id })
}

// referenced returns every element id the cell references.
func (c *Cell) referenced() []geom.ID {
	if c == nil {
		return nil
	}
	var ids []geom.ID
	for _, n := range c.Elements {
		ids = append(ids, n.Base().ID())
	}
	for _, id := range slices.Sorted(maps.Keys(c.Sources)) {
		ids = append(ids, id)
	}
	return ids
}

// drop removes every trace of id from the cell: element, source entry and
// owned ghosts.
func (c *Cell) drop(id geom.ID) {
	if c == nil {
		return
	}
	c.Elements = slices.DeleteFunc(c.Elements, func(n Node) bool { return n.Base().ID() == id })
	delete(c.Sources, id)
	c.Ghosts = slices.DeleteFunc(c.Ghosts, func(g Ghost) bool { return g.Owner == id })
}

// merge folds o into c: lists concatenate, source maps merge and Extra is
// overwritten when o carries one.
func (c *Cell) merge(o *Cell) {
	c.Elements = append(c.Elements, o.Elements...)
	if len(o.Sources) > 0 {
		if c.Sources == nil {
			c.Sources = make(map[geom.ID]Coords, len(o.Sources))
		}
		maps.Copy(c.Sources, o.Sources)
	}
	c.Ghosts = append(c.Ghosts, o.Ghosts...)
	if o.Extra != nil {
		e := *o.Extra
		c.Extra = &e
	}
}
