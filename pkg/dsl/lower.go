package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
	"github.com/matzehuels/pulsegrid/pkg/layout"
)

// parent describes what the entity being lowered sits in.
type parent int

const (
	inRoot parent = iota
	inGroup
	inStack
	inGrid
)

type lowerer struct {
	seen     map[geom.ID]lexer.Position
	bindings []pendingBind
	grid     layout.GridSnapshot
}

type pendingBind struct {
	pos     lexer.Position
	binding geom.Binding
}

func failAt(pos lexer.Position, format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidSource, "%s: %s", pos, fmt.Sprintf(format, args...))
}

// Lower converts a parsed file into a snapshot. Bindings are checked after
// every entity is known, so they may refer forward.
func Lower(f *File, opts ...Option) (layout.Snapshot, error) {
	if len(f.Entities) == 0 {
		return layout.Snapshot{}, failAt(f.Pos, "diagram %q declares no entities", f.Name)
	}
	l := &lowerer{
		seen: make(map[geom.ID]lexer.Position),
		grid: layout.GridSnapshot{AxisRow: layout.DefaultAxisRow},
	}
	for _, opt := range opts {
		opt(l)
	}

	snap := layout.Snapshot{
		Version:   errors.SnapshotVersion,
		Name:      f.Name,
		Precision: f.Precision,
	}

	if len(f.Entities) == 1 {
		root, err := l.entity(f.Entities[0], inRoot)
		if err != nil {
			return layout.Snapshot{}, err
		}
		snap.Root = root
	} else {
		axis := geom.Y
		id := geom.ID(f.Name)
		if err := errors.ValidateLabel(f.Name); err != nil || f.Name == "" {
			id = "diagram"
		}
		root := layout.NodeSnapshot{
			ID:    id,
			Label: f.Name,
			Type:  layout.TypeStack,
			Axis:  &axis,
			Mode:  [2]geom.SizeMode{geom.Fit, geom.Fit},
		}
		if err := l.claim(id, f.Pos); err != nil {
			return layout.Snapshot{}, err
		}
		for _, e := range f.Entities {
			child, err := l.entity(e, inStack)
			if err != nil {
				return layout.Snapshot{}, err
			}
			root.Children = append(root.Children, child)
		}
		snap.Root = root
	}

	for _, pb := range l.bindings {
		if _, ok := l.seen[pb.binding.Target]; !ok {
			return layout.Snapshot{}, failAt(pb.pos, "bind: unknown entity %q", pb.binding.Target)
		}
		snap.Bindings = append(snap.Bindings, pb.binding)
	}
	return snap, nil
}

func (l *lowerer) claim(id geom.ID, pos lexer.Position) error {
	if prev, dup := l.seen[id]; dup {
		return failAt(pos, "%q already declared at %s", id, prev)
	}
	l.seen[id] = pos
	return nil
}

// placementState accumulates placement attributes before the variant is
// known.
type placementState struct {
	cell     *Cell
	span     layout.Span
	align    [2]layout.Alignment
	omit     layout.Contribution
	at       geom.Point
	column   *int
	orient   *layout.Orientation
	sections int
}

func (l *lowerer) entity(e *Entity, in parent) (layout.NodeSnapshot, error) {
	id := geom.ID(e.Name)
	if err := l.claim(id, e.Pos); err != nil {
		return layout.NodeSnapshot{}, err
	}
	ns := layout.NodeSnapshot{ID: id, Label: e.Name}

	self := inGroup
	switch e.Kind {
	case "grid":
		ns.Type = layout.TypeGrid
		ns.Mode = [2]geom.SizeMode{geom.Fit, geom.Fit}
		gs := l.grid
		ns.Grid = &gs
		self = inGrid
	case "stack":
		ns.Type = layout.TypeStack
		ns.Mode = [2]geom.SizeMode{geom.Fit, geom.Fit}
		axis := geom.Y
		ns.Axis = &axis
		self = inStack
	case "group":
		ns.Type = layout.TypeContainer
		ns.Mode = [2]geom.SizeMode{geom.Fit, geom.Fit}
	default:
		ns.Type = layout.TypeElement
		ns.Kind = e.Kind
		if len(e.Children) > 0 {
			return ns, failAt(e.Pos, "%s %q cannot have children", e.Kind, e.Name)
		}
	}

	var ps placementState
	for _, a := range e.Attrs {
		if err := l.attr(&ns, &ps, a, e, in); err != nil {
			return ns, err
		}
	}
	p, err := ps.placement(in)
	if err != nil {
		return ns, failAt(e.Pos, "%s: %s", e.Name, errors.UserMessage(err))
	}
	ns.Placement = p

	for _, c := range e.Children {
		child, err := l.entity(c, self)
		if err != nil {
			return ns, err
		}
		ns.Children = append(ns.Children, child)
	}
	return ns, nil
}

func (l *lowerer) attr(ns *layout.NodeSnapshot, ps *placementState, a *Attr, e *Entity, in parent) error {
	bad := func(what string) error {
		return failAt(a.Pos, "%s %q: %s", e.Kind, e.Name, what)
	}
	requireParent := func(name string, ok ...parent) error {
		for _, p := range ok {
			if in == p {
				return nil
			}
		}
		return bad(name + " is not valid in this parent")
	}

	switch {
	case a.Size != nil:
		w, h, err := dim(*a.Size)
		if err != nil {
			return bad(errors.UserMessage(err))
		}
		ns.Size = geom.Size{W: w, H: h}

	case a.Pad != nil:
		switch len(a.Pad) {
		case 1:
			ns.Padding = geom.Uniform(a.Pad[0])
		case 2:
			ns.Padding = geom.Padding{a.Pad[0], a.Pad[1], a.Pad[0], a.Pad[1]}
		case 4:
			ns.Padding = geom.Padding{a.Pad[0], a.Pad[1], a.Pad[2], a.Pad[3]}
		default:
			return bad("pad takes 1, 2 or 4 values")
		}

	case a.Offset != nil:
		ns.Offset = geom.Point{X: a.Offset.A, Y: a.Offset.B}

	case a.Mode != nil:
		m, err := geom.ParseSizeMode(a.Mode.Mode)
		if err != nil {
			return bad(errors.UserMessage(err))
		}
		if a.Mode.Axis == "" {
			ns.Mode = [2]geom.SizeMode{m, m}
			break
		}
		axis, err := geom.ParseAxis(a.Mode.Axis)
		if err != nil {
			return bad(errors.UserMessage(err))
		}
		ns.Mode[axis] = m

	case a.Cell != nil:
		if err := requireParent("grid", inGrid); err != nil {
			return err
		}
		ps.cell = a.Cell

	case a.Span != nil:
		if err := requireParent("span", inGrid); err != nil {
			return err
		}
		r, c, err := dim(*a.Span)
		if err != nil || r != float64(int(r)) || c != float64(int(c)) {
			return bad("span must be RxC in whole cells")
		}
		ps.span = layout.Span{Rows: int(r), Cols: int(c)}

	case a.Align != nil:
		if err := requireParent("align", inGrid, inStack); err != nil {
			return err
		}
		first, _ := geom.ParseSite(a.Align.First)
		ps.align = [2]layout.Alignment{layout.AlignTo(first), layout.AlignTo(first)}
		if a.Align.Second != nil {
			second, _ := geom.ParseSite(*a.Align.Second)
			ps.align[1] = layout.AlignTo(second)
		}

	case a.Column != nil:
		if err := requireParent("column", inGrid); err != nil {
			return err
		}
		ps.column = a.Column

	case a.Orientation != nil:
		if err := requireParent(*a.Orientation, inGrid); err != nil {
			return err
		}
		o, err := layout.ParseOrientation(*a.Orientation)
		if err != nil {
			return bad(errors.UserMessage(err))
		}
		ps.orient = &o

	case a.Sections != nil:
		if err := requireParent("sections", inGrid); err != nil {
			return err
		}
		if *a.Sections < 1 {
			return bad("sections must be at least 1")
		}
		ps.sections = *a.Sections

	case a.At != nil:
		if err := requireParent("at", inGroup, inRoot); err != nil {
			return err
		}
		ps.at = geom.Point{X: a.At.X, Y: a.At.Y}

	case a.Omit != nil:
		if err := requireParent("omit", inGrid, inStack); err != nil {
			return err
		}
		if *a.Omit == "width" {
			ps.omit.OmitWidth = true
		} else {
			ps.omit.OmitHeight = true
		}

	case a.Axis != nil:
		switch ns.Type {
		case layout.TypeStack:
			axis, err := geom.ParseAxis(*a.Axis)
			if err != nil {
				return bad(errors.UserMessage(err))
			}
			ns.Axis = &axis
		case layout.TypeGrid:
			row, err := strconv.Atoi(*a.Axis)
			if err != nil || row < 0 {
				return bad("grid axis must be a row index")
			}
			ns.Grid.AxisRow = row
		default:
			return bad("axis applies to stacks and grids")
		}

	case a.Min != nil, a.Extra != nil, a.Ghost != nil:
		if ns.Grid == nil {
			return bad("min, extra and ghost apply to grids")
		}
		return gridAttr(ns.Grid, a, bad)

	case a.Bind != nil:
		return l.bind(ns.ID, a)
	}
	return nil
}

func gridAttr(gs *layout.GridSnapshot, a *Attr, bad func(string) error) error {
	if a.Min != nil {
		w, h, err := dim(*a.Min)
		if err != nil {
			return bad(errors.UserMessage(err))
		}
		gs.MinCell = geom.Size{W: w, H: h}
		return nil
	}
	r := a.Extra
	if r == nil {
		r = a.Ghost
	}
	w, h, err := dim(r.Size)
	if err != nil {
		return bad(errors.UserMessage(err))
	}
	if r.At.Row < 0 || r.At.Col < 0 {
		return bad("reservation cell must not be negative")
	}
	res := layout.Reservation{Row: r.At.Row, Col: r.At.Col, W: w, H: h}
	if a.Extra != nil {
		gs.Extras = append(gs.Extras, res)
	} else {
		gs.Ghosts = append(gs.Ghosts, res)
	}
	return nil
}

func (l *lowerer) bind(owner geom.ID, a *Attr) error {
	b := a.Bind
	axis, err := geom.ParseAxis(b.Axis)
	if err != nil {
		return failAt(a.Pos, "bind: %v", err)
	}
	own, _ := geom.ParseSite(b.OwnerSite)
	tgt, _ := geom.ParseSite(b.TargetSite)
	binding := geom.Binding{
		Owner:      owner,
		Target:     geom.ID(b.Target),
		Axis:       axis,
		OwnerSite:  own,
		TargetSite: tgt,
		Content:    !b.Outer,
	}
	if b.By != nil {
		binding.Offset = *b.By
	}
	if binding.Target == owner {
		return failAt(a.Pos, "bind: %q cannot bind to itself", owner)
	}
	l.bindings = append(l.bindings, pendingBind{pos: a.Pos, binding: binding})
	return nil
}

// placement picks the placement variant the parent requires.
func (ps placementState) placement(in parent) (*layout.PlacementSnapshot, error) {
	switch in {
	case inRoot:
		if ps.at != (geom.Point{}) {
			at := ps.at
			return &layout.PlacementSnapshot{Type: "free", At: &at}, nil
		}
		return nil, nil

	case inGroup:
		at := ps.at
		return &layout.PlacementSnapshot{Type: "free", At: &at}, nil

	case inStack:
		if ps.align[0] == layout.AlignAuto && ps.omit == (layout.Contribution{}) {
			return nil, nil
		}
		return &layout.PlacementSnapshot{
			Type: "stack", Align: [2]layout.Alignment{ps.align[0]},
			OmitWidth: ps.omit.OmitWidth, OmitHeight: ps.omit.OmitHeight,
		}, nil
	}

	pulse := ps.column != nil || ps.orient != nil || ps.sections > 0
	if pulse {
		if ps.cell != nil || ps.span != (layout.Span{}) {
			return nil, errors.New(errors.ErrCodeInvalidSource, "pulse attributes cannot be mixed with grid and span")
		}
		p := &layout.PlacementSnapshot{Type: "pulse", Sections: max(ps.sections, 1)}
		if ps.column != nil {
			p.Column = *ps.column
		}
		if ps.orient != nil {
			p.Orientation = *ps.orient
		}
		p.Align = [2]layout.Alignment{ps.align[0]}
		return p, nil
	}

	p := &layout.PlacementSnapshot{
		Type:       "grid",
		Rows:       max(ps.span.Rows, 1),
		Cols:       max(ps.span.Cols, 1),
		Align:      ps.align,
		OmitWidth:  ps.omit.OmitWidth,
		OmitHeight: ps.omit.OmitHeight,
	}
	if ps.cell != nil {
		if ps.cell.Row < 0 || ps.cell.Col < 0 {
			return nil, errors.New(errors.ErrCodeInvalidSource, "grid cell must not be negative")
		}
		p.Row, p.Col = ps.cell.Row, ps.cell.Col
	}
	return p, nil
}

// dim parses WxH.
func dim(s string) (float64, float64, error) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeInvalidSource, "dimension %q is not WxH", s)
	}
	w, err := strconv.ParseFloat(ws, 64)
	if err != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidSource, "dimension %q is not WxH", s)
	}
	h, err := strconv.ParseFloat(hs, 64)
	if err != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidSource, "dimension %q is not WxH", s)
	}
	return w, h, nil
}
