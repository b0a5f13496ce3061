package layout

import (
	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
)

// DefaultAxisRow is the row pulse placements are arranged around.
const DefaultAxisRow = 1

// Grid is a spanning grid: a rectangular matrix of cells in which elements
// may cover several rows and columns, plus synthetic ghost and extra
// reservations. Rows and columns can be inserted and removed while the grid
// is populated.
//
// Every row and column has a strip box in the scene. After ComputeSize a
// column strip is as wide as its column and as tall as the grid; a row strip
// is as tall as its row and as wide as the grid. Authors may bind to strips.
type Grid struct {
	Container

	matrix    [][]*Cell
	cols      int
	rowStrips []*geom.Box
	colStrips []*geom.Box
	cells     [][]geom.Rect
	entries   map[geom.ID]*gridEntry
	minCell   geom.Size
	axisRow   int
	natural   geom.Size
}

// gridEntry is the resolved placement of one grid child.
type gridEntry struct {
	node    Node
	at      Coords
	span    Span
	align   [2]Alignment
	contrib Contribution
	insert  InsertMode
	pulse   *PulsePlacement
	region  *geom.Box
	// flipped is set when registering a bottom pulse flipped the element.
	flipped bool
}

func (en *gridEntry) last() Coords {
	return Coords{Row: en.at.Row + en.span.Rows - 1, Col: en.at.Col + en.span.Cols - 1}
}

// GridOption configures a Grid.
type GridOption func(*Grid)

// WithMinCellSize sets the minimum natural width of every column and height
// of every row.
func WithMinCellSize(w, h float64) GridOption {
	return func(g *Grid) { g.minCell = geom.Size{W: max(w, 0), H: max(h, 0)} }
}

// WithAxisRow sets the row pulse placements are arranged around.
func WithAxisRow(r int) GridOption {
	return func(g *Grid) {
		if r >= 0 {
			g.axisRow = r
		}
	}
}

// NewGrid creates an empty grid that fits its cells.
func NewGrid(s *geom.Scene, label string, opts ...GridOption) *Grid {
	c := NewContainer(s, label)
	return initGrid(c, opts)
}

func newGridWithID(s *geom.Scene, id geom.ID, label string, opts ...GridOption) (*Grid, error) {
	c, err := newContainerWithID(s, id, label)
	if err != nil {
		return nil, err
	}
	return initGrid(c, opts), nil
}

func initGrid(c *Container, opts []GridOption) *Grid {
	c.kind = "grid"
	g := &Grid{
		Container: *c,
		entries:   make(map[geom.ID]*gridEntry),
		axisRow:   DefaultAxisRow,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ====================================================================
// Accessors
// ====================================================================

// Rows returns the number of rows.
func (g *Grid) Rows() int { return len(g.matrix) }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// AxisRow returns the current pulse axis row. It shifts with row insertion
// and removal above it.
func (g *Grid) AxisRow() int { return g.axisRow }

// MinCellSize returns the minimum column width and row height.
func (g *Grid) MinCellSize() geom.Size { return g.minCell }

// Cell returns the cell at (r, c), or nil if it is empty or out of range.
func (g *Grid) Cell(r, c int) *Cell {
	if r < 0 || r >= len(g.matrix) || c < 0 || c >= g.cols {
		return nil
	}
	return g.matrix[r][c]
}

// RowBox returns the strip box of row r.
func (g *Grid) RowBox(r int) *geom.Box {
	if r < 0 || r >= len(g.rowStrips) {
		return nil
	}
	return g.rowStrips[r]
}

// ColumnBox returns the strip box of column c.
func (g *Grid) ColumnBox(c int) *geom.Box {
	if c < 0 || c >= len(g.colStrips) {
		return nil
	}
	return g.colStrips[c]
}

// PlacementOf returns the current grid placement of a child, reflecting every
// row and column mutation since it was added.
func (g *Grid) PlacementOf(n Node) (GridPlacement, bool) {
	en := g.entries[idOf(n)]
	if en == nil {
		return GridPlacement{}, false
	}
	return en.gridPlacement(), true
}

// CellRect returns the resolved rectangle of (r, c). It is only available
// after a position pass and until the next mutation.
func (g *Grid) CellRect(r, c int) (geom.Rect, error) {
	if g.cells == nil {
		return geom.Rect{}, errors.New(errors.ErrCodeUnsetCoordinate, "grid %s: cells not resolved", g.ID())
	}
	if r < 0 || r >= len(g.cells) || c < 0 || c >= g.cols {
		return geom.Rect{}, errors.New(errors.ErrCodeInvalidRegion, "grid %s: cell %d,%d out of range", g.ID(), r, c)
	}
	return g.cells[r][c], nil
}

// ColumnWidth returns the current width of column c.
func (g *Grid) ColumnWidth(c int) float64 { return g.colStrips[c].ContentSize(geom.X) }

// RowHeight returns the current height of row r.
func (g *Grid) RowHeight(r int) float64 { return g.rowStrips[r].ContentSize(geom.Y) }

func (en *gridEntry) gridPlacement() GridPlacement {
	return GridPlacement{Coords: en.at, Span: en.span, Align: en.align, Contribution: en.contrib, Insert: en.insert}
}

// syncPlacement writes the entry's current coordinates back into the
// element's placement so callers see shifted positions.
func (g *Grid) syncPlacement(en *gridEntry) {
	b := en.node.Base()
	if en.pulse != nil {
		p := *en.pulse
		p.Column = en.at.Col
		p.Sections = en.span.Cols
		en.pulse = &p
		b.placement = p
		return
	}
	b.placement = en.gridPlacement()
}

func (g *Grid) syncAll() {
	for _, en := range g.entries {
		g.syncPlacement(en)
	}
}

func (g *Grid) invalidate() { g.cells = nil }

// ====================================================================
// Membership
// ====================================================================

// Add places child according to its GridPlacement or PulsePlacement.
//
// Placing beyond the current bounds grows the matrix. Placing onto a cell
// that is already another element's source fails with CELL_OCCUPIED unless
// the placement carries an insert mode, in which case an empty row or column
// is spliced in first. Cells only covered by a spanning element accept new
// sources, which is how pulses share the axis row with a bar.
// A child without a grid-compatible placement fails with MISSING_OWNER.
// A rejected child leaves the grid unchanged.
func (g *Grid) Add(child Node) error {
	if err := g.checkChild(child); err != nil {
		return err
	}
	b := child.Base()
	en, err := g.translate(child)
	if err != nil {
		return err
	}

	// A top pulse on axis row 0 needs a row above the axis. The splice
	// puts it into the new, empty row 0.
	topAtZero := en.pulse != nil && en.pulse.Orientation == Top && g.axisRow == 0
	if topAtZero {
		en.at.Row = 0
	}
	if en.at.Row < 0 || en.at.Col < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "grid %s: negative coordinates %d,%d for %s", g.ID(), en.at.Row, en.at.Col, b.ID())
	}
	occupied := !topAtZero && g.Cell(en.at.Row, en.at.Col).HoldsSource()
	if occupied && en.insert == InsertNone {
		return errors.New(errors.ErrCodeCellOccupied, "grid %s: cell %d,%d is occupied", g.ID(), en.at.Row, en.at.Col)
	}

	if topAtZero {
		g.insertStrip(geom.Y, 0)
	}
	// A spliced strip only gains Sources entries from elements spanning
	// across it, so the source cell is free afterwards.
	if occupied {
		switch en.insert {
		case InsertRow:
			g.insertStrip(geom.Y, en.at.Row)
		case InsertColumn:
			g.insertStrip(geom.X, en.at.Col)
		}
	}
	last := en.last()
	g.ensure(last.Row+1, last.Col+1)

	if err := g.Container.Add(child); err != nil {
		return err
	}
	g.register(en)
	return nil
}

// translate turns the child's placement into a grid entry.
func (g *Grid) translate(child Node) (*gridEntry, error) {
	b := child.Base()
	en := &gridEntry{node: child}
	switch p := b.Placement().(type) {
	case nil:
		return nil, errors.New(errors.ErrCodeMissingOwner, "grid %s: %s has no placement", g.ID(), b.ID())
	case GridPlacement:
		en.at, en.span, en.align = p.Coords, p.span(), p.Align
		en.contrib, en.insert = p.Contribution, p.Insert
	case PulsePlacement:
		if p.Insert == InsertRow {
			return nil, errors.New(errors.ErrCodeInvalidInput, "grid %s: pulse %s can only insert columns", g.ID(), b.ID())
		}
		en.span = Span{Rows: 1, Cols: max(p.Sections, 1)}
		en.insert = p.Insert
		en.at.Col = p.Column
		en.pulse = &p
		switch p.Orientation {
		case Top:
			en.at.Row = g.axisRow - 1
			en.align = [2]Alignment{p.Align, AlignFar}
		case Bottom:
			en.at.Row = g.axisRow + 1
			en.align = [2]Alignment{p.Align, AlignNear}
		case Both:
			en.at.Row = g.axisRow
			en.align = [2]Alignment{p.Align, AlignCentre}
			en.contrib.OmitHeight = true
		}
	default:
		return nil, errors.New(errors.ErrCodeMissingOwner, "grid %s: %s has a %s placement", g.ID(), b.ID(), p.placementKind())
	}
	return en, nil
}

// register writes a freshly added entry into the matrix.
func (g *Grid) register(en *gridEntry) {
	b := en.node.Base()
	id := b.ID()
	if en.pulse != nil {
		g.ensure(g.axisRow+1, en.last().Col+1)
	}

	last := en.last()
	for r := en.at.Row; r <= last.Row; r++ {
		for c := en.at.Col; c <= last.Col; c++ {
			if r == en.at.Row && c == en.at.Col {
				g.mergeCell(&Cell{Elements: []Node{en.node}}, Coords{r, c})
				continue
			}
			g.mergeCell(&Cell{Sources: map[geom.ID]Coords{id: en.at}}, Coords{r, c})
		}
	}

	if en.pulse != nil {
		switch en.pulse.Orientation {
		case Bottom:
			if !b.Flipped() {
				b.Flip()
				en.flipped = true
			}
		case Both:
			owned := Ghost{Owner: id}
			if en.at.Row > 0 {
				g.mergeCell(&Cell{Ghosts: []Ghost{owned}}, Coords{en.at.Row - 1, en.at.Col})
			} else {
				g.Scene().Logger().Debug("no row above axis for pulse reservation", "grid", g.ID(), "element", id)
			}
			g.mergeCell(&Cell{Ghosts: []Ghost{owned}}, Coords{en.at.Row + 1, en.at.Col})
		}
	}

	en.region = g.Scene().NewBox("region")
	g.entries[id] = en
	g.syncPlacement(en)
	g.invalidate()
}

// Remove takes child out of the matrix, then detaches and destroys it.
// Non-members are logged and ignored.
func (g *Grid) Remove(child Node) bool {
	if !g.unplace(child) {
		return false
	}
	return g.Container.Remove(child)
}

// Destroy implements Node.
func (g *Grid) Destroy() {
	s := g.Scene()
	for _, en := range g.entries {
		s.Release(en.region.ID())
	}
	for _, b := range g.rowStrips {
		s.Release(b.ID())
	}
	for _, b := range g.colStrips {
		s.Release(b.ID())
	}
	g.entries = make(map[geom.ID]*gridEntry)
	g.matrix, g.rowStrips, g.colStrips, g.cols = nil, nil, nil, 0
	g.Container.Destroy()
}

// ====================================================================
// Passes
// ====================================================================

// ComputeSize implements Node.
//
// A column's width is the largest natural outer width among the elements
// whose source cell lies in it and that span exactly one column, are not in
// Grow mode and do not opt out, together with ghost widths and the minimum
// cell width, plus the sum of the column's extras. Rows are symmetric.
func (g *Grid) ComputeSize() error {
	if err := computeChildSizes(g.children); err != nil {
		return err
	}
	g.refreshReservations()
	g.measure()
	return nil
}

// refreshReservations resizes the ghosts owned by centred pulses to half of
// their overhang beyond the axis row. The axis row is measured with those
// ghosts emptied first.
func (g *Grid) refreshReservations() {
	var centred []*gridEntry
	for _, ch := range g.children {
		en := g.entries[ch.Base().ID()]
		if en != nil && en.pulse != nil && en.pulse.Orientation == Both {
			centred = append(centred, en)
		}
	}
	if len(centred) == 0 {
		return
	}
	for _, en := range centred {
		g.setOwnedGhostHeight(en.node.Base().ID(), 0)
	}
	g.measure()
	for _, en := range centred {
		b := en.node.Base()
		overhang := (b.OuterSize(geom.Y) - g.RowHeight(en.at.Row)) / 2
		g.setOwnedGhostHeight(b.ID(), max(g.Scene().Round(overhang), 0))
	}
}

func (g *Grid) setOwnedGhostHeight(owner geom.ID, h float64) {
	for _, row := range g.matrix {
		for _, cell := range row {
			if cell == nil {
				continue
			}
			for i := range cell.Ghosts {
				if cell.Ghosts[i].Owner == owner {
					cell.Ghosts[i].H = h
				}
			}
		}
	}
}

// measure derives column widths and row heights, normalizes the strips to
// the grid totals and fits the content box.
func (g *Grid) measure() {
	colW := make([]float64, g.cols)
	rowH := make([]float64, len(g.matrix))
	extraW := make([]float64, g.cols)
	extraH := make([]float64, len(g.matrix))

	for r, row := range g.matrix {
		for c, cell := range row {
			if cell == nil {
				continue
			}
			for _, n := range cell.Elements {
				b := n.Base()
				en := g.entries[b.ID()]
				if en == nil {
					continue
				}
				if en.span.Cols == 1 && !en.contrib.OmitWidth && b.SizeMode(geom.X) != geom.Grow {
					colW[c] = max(colW[c], b.OuterSize(geom.X))
				}
				if en.span.Rows == 1 && !en.contrib.OmitHeight && b.SizeMode(geom.Y) != geom.Grow {
					rowH[r] = max(rowH[r], b.OuterSize(geom.Y))
				}
			}
			for _, gh := range cell.Ghosts {
				colW[c] = max(colW[c], gh.W)
				rowH[r] = max(rowH[r], gh.H)
			}
			if cell.Extra != nil {
				extraW[c] += cell.Extra.W
				extraH[r] += cell.Extra.H
			}
		}
	}

	var total geom.Size
	for c := range colW {
		colW[c] = max(colW[c], g.minCell.W) + extraW[c]
		total.W += colW[c]
	}
	for r := range rowH {
		rowH[r] = max(rowH[r], g.minCell.H) + extraH[r]
		total.H += rowH[r]
	}
	for c, b := range g.colStrips {
		b.Resize(colW[c], total.H)
	}
	for r, b := range g.rowStrips {
		b.Resize(total.W, rowH[r])
	}
	g.natural = total
	g.fitTo(total)
}

// normalizeStrips sets every strip's cross extent to the grid total.
func (g *Grid) normalizeStrips() geom.Size {
	var total geom.Size
	for _, b := range g.colStrips {
		total.W += b.ContentSize(geom.X)
	}
	for _, b := range g.rowStrips {
		total.H += b.ContentSize(geom.Y)
	}
	for _, b := range g.colStrips {
		b.SetSize(geom.Y, total.H)
	}
	for _, b := range g.rowStrips {
		b.SetSize(geom.X, total.W)
	}
	return total
}

// Grow implements Node. Space beyond the natural size is shared equally
// among the columns (rows), then every element is offered the union of the
// cells it spans.
func (g *Grid) Grow(avail geom.Size) error {
	g.growSelf(avail)
	g.distributeSurplus(geom.X, g.colStrips)
	g.distributeSurplus(geom.Y, g.rowStrips)
	g.normalizeStrips()

	for _, ch := range g.children {
		en := g.entries[ch.Base().ID()]
		if en == nil {
			continue
		}
		size, err := g.CellUnionSize(en.at, en.last())
		if err != nil {
			return err
		}
		if err := ch.Grow(size); err != nil {
			return err
		}
	}
	return nil
}

func (g *Grid) distributeSurplus(a geom.Axis, strips []*geom.Box) {
	if len(strips) == 0 {
		return
	}
	var sum float64
	for _, b := range strips {
		sum += b.ContentSize(a)
	}
	surplus := g.ContentSize(a) - sum
	if surplus < g.Scene().Step() {
		return
	}
	share := surplus / float64(len(strips))
	for _, b := range strips {
		b.SetSize(a, b.ContentSize(a)+share)
	}
}

// ComputePositions implements Node. Cell rectangles are accumulated from
// the content origin, strips move to their first cell, and every element is
// bound into the union of its cells by a region box.
func (g *Grid) ComputePositions(at geom.Point) error {
	g.Place(at.X, at.Y)
	origin, err := g.ContentOrigin()
	if err != nil {
		return err
	}

	g.cells = make([][]geom.Rect, len(g.matrix))
	y := origin.Y
	for r := range g.matrix {
		h := g.RowHeight(r)
		x := origin.X
		g.cells[r] = make([]geom.Rect, g.cols)
		for c := 0; c < g.cols; c++ {
			w := g.ColumnWidth(c)
			g.cells[r][c] = geom.Rect{X: x, Y: y, W: w, H: h}
			x += w
		}
		g.rowStrips[r].Place(origin.X, y)
		y += h
	}
	x := origin.X
	for c, b := range g.colStrips {
		b.Place(x, origin.Y)
		x += g.ColumnWidth(c)
	}
	for _, strips := range [][]*geom.Box{g.rowStrips, g.colStrips} {
		for _, b := range strips {
			if _, err := b.EnforceBindings(); err != nil {
				return err
			}
		}
	}

	for _, ch := range g.children {
		if err := g.bindRegion(ch); err != nil {
			return err
		}
	}
	return g.settleChildren()
}

// bindRegion sizes the child's region box to its span and binds the child
// into it at its alignment.
func (g *Grid) bindRegion(ch Node) error {
	b := ch.Base()
	en := g.entries[b.ID()]
	if en == nil {
		return errors.New(errors.ErrCodeMissingOwner, "grid %s: child %s has no cell", g.ID(), b.ID())
	}
	rect, err := g.PositionedCellUnion(en.at, en.last())
	if err != nil {
		return err
	}
	region := en.region
	region.Place(rect.X, rect.Y)
	region.Resize(rect.W, rect.H)
	region.ClearBindings()
	for _, a := range geom.Axes {
		site := en.align[a].resolve(b, a, geom.Near)
		if b.SizeMode(a) == geom.Grow {
			site = geom.Near
		}
		if err := region.Bind(b.Box, a, site, site, geom.WithContent(false), geom.Managed()); err != nil {
			return err
		}
	}
	_, err = region.EnforceBindings()
	return err
}
