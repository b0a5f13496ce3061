package layout

import (
	"strings"

	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
)

// Placement tells a parent container how to manage a child. It is attached
// before the child is added; changing it afterwards requires remove and add.
//
// The variants are [Free], [GridPlacement], [PulsePlacement] and
// [StackPlacement].
type Placement interface {
	placementKind() string
}

// Free leaves the child unmanaged. At is relative to the parent's content
// origin.
type Free struct {
	At geom.Point
}

// Coords addresses a grid cell.
type Coords struct {
	Row, Col int
}

// Span is the number of rows and columns a grid element covers.
type Span struct {
	Rows, Cols int
}

// Contribution opts a child out of its parent's size computation per axis.
type Contribution struct {
	OmitWidth  bool
	OmitHeight bool
}

// Omits reports whether the axis is opted out.
func (c Contribution) Omits(a geom.Axis) bool {
	if a == geom.Y {
		return c.OmitHeight
	}
	return c.OmitWidth
}

// InsertMode decides what happens when a grid placement hits an occupied cell.
type InsertMode int

const (
	// InsertNone rejects the placement with CELL_OCCUPIED.
	InsertNone InsertMode = iota
	// InsertRow splices an empty row at the target row first.
	InsertRow
	// InsertColumn splices an empty column at the target column first.
	InsertColumn
)

func (m InsertMode) String() string {
	switch m {
	case InsertRow:
		return "row"
	case InsertColumn:
		return "column"
	}
	return "none"
}

// ParseInsertMode parses none, row or column.
func ParseInsertMode(s string) (InsertMode, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return InsertNone, nil
	case "row":
		return InsertRow, nil
	case "column", "col":
		return InsertColumn, nil
	}
	return InsertNone, errors.New(errors.ErrCodeInvalidInput, "unknown insert mode %q", s)
}

func (m InsertMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *InsertMode) UnmarshalText(b []byte) error {
	v, err := ParseInsertMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Alignment is the site a parent binds a child to. The zero value,
// AlignAuto, defers to the child's self alignment and then to the parent's
// default: centre in a stack, near in a grid.
type Alignment int

const (
	AlignAuto Alignment = iota
	AlignNear
	AlignCentre
	AlignFar
)

// AlignTo returns the alignment that pins s.
func AlignTo(s geom.Site) Alignment { return Alignment(s) + 1 }

// Site returns the pinned site; ok is false for AlignAuto.
func (a Alignment) Site() (s geom.Site, ok bool) {
	if a <= AlignAuto || a > AlignFar {
		return geom.Near, false
	}
	return geom.Site(a - 1), true
}

func (a Alignment) String() string {
	if s, ok := a.Site(); ok {
		return s.String()
	}
	return "auto"
}

// ParseAlignment parses auto (or the empty string) and every site name
// geom.ParseSite accepts.
func ParseAlignment(s string) (Alignment, error) {
	if s == "" || strings.EqualFold(s, "auto") {
		return AlignAuto, nil
	}
	site, err := geom.ParseSite(s)
	if err != nil {
		return AlignAuto, err
	}
	return AlignTo(site), nil
}

func (a Alignment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Alignment) UnmarshalText(b []byte) error {
	v, err := ParseAlignment(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// resolve picks the site for axis ax of b: a pinned alignment, then b's
// self alignment, then def.
func (a Alignment) resolve(b *Element, ax geom.Axis, def geom.Site) geom.Site {
	if s, ok := a.Site(); ok {
		return s
	}
	if s, ok := b.Align(ax); ok {
		return s
	}
	return def
}

// GridPlacement puts a child into a grid cell region. Align is the site the
// child is bound to inside the region on each axis.
type GridPlacement struct {
	Coords
	Span
	Align [2]Alignment
	Contribution
	Insert InsertMode
}

// span returns Span with zero counts treated as one.
func (p GridPlacement) span() Span {
	return Span{Rows: max(p.Rows, 1), Cols: max(p.Cols, 1)}
}

// Orientation places a pulse relative to its grid's axis row.
type Orientation int

const (
	// Top sits the pulse on the axis, in the row above it.
	Top Orientation = iota
	// Bottom hangs the pulse, mirrored, in the row below the axis.
	Bottom
	// Both centres the pulse on the axis row, reserving half its overhang
	// above and below.
	Both
)

func (o Orientation) String() string {
	switch o {
	case Bottom:
		return "bottom"
	case Both:
		return "both"
	}
	return "top"
}

// ParseOrientation parses top, bottom or both.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(s) {
	case "top":
		return Top, nil
	case "bottom":
		return Bottom, nil
	case "both":
		return Both, nil
	}
	return Top, errors.New(errors.ErrCodeInvalidInput, "unknown orientation %q", s)
}

func (o Orientation) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Orientation) UnmarshalText(b []byte) error {
	v, err := ParseOrientation(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// PulsePlacement places a child on a pulse sequence channel. The owning grid
// translates it into an equivalent GridPlacement around its axis row.
// Sections is the number of columns the pulse spans. Insert may only be
// InsertNone or InsertColumn.
type PulsePlacement struct {
	Column      int
	Orientation Orientation
	Align       Alignment
	Sections    int
	Insert      InsertMode
}

// StackPlacement carries the cross-axis alignment and contribution flags of
// a stack child. A zero Align keeps the default lookup, so a placement that
// only opts out of contribution still leaves the child centred.
type StackPlacement struct {
	Align Alignment
	Contribution
}

func (Free) placementKind() string           { return "free" }
func (GridPlacement) placementKind() string  { return "grid" }
func (PulsePlacement) placementKind() string { return "pulse" }
func (StackPlacement) placementKind() string { return "stack" }

// contributionOf returns the opt-outs carried by p, if any.
func contributionOf(p Placement) Contribution {
	switch v := p.(type) {
	case GridPlacement:
		return v.Contribution
	case StackPlacement:
		return v.Contribution
	}
	return Contribution{}
}
