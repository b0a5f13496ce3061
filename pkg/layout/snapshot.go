package layout

import (
	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
)

// Node types in a snapshot.
const (
	TypeElement   = "element"
	TypeContainer = "container"
	TypeStack     = "stack"
	TypeGrid      = "grid"
)

// Snapshot is the plain-data form of a layout tree. It carries everything
// needed to rebuild an equivalent tree; storing it is up to the caller.
type Snapshot struct {
	Version   int            `json:"version"`
	Name      string         `json:"name,omitempty"`
	Precision *int           `json:"precision,omitempty"`
	Root      NodeSnapshot   `json:"root"`
	Bindings  []geom.Binding `json:"bindings,omitempty"`
}

// NodeSnapshot describes one entity and, recursively, its children.
type NodeSnapshot struct {
	ID        geom.ID            `json:"id"`
	Label     string             `json:"label,omitempty"`
	Type      string             `json:"type"`
	Kind      string             `json:"kind,omitempty"`
	Position  *geom.Point        `json:"position,omitempty"`
	Size      geom.Size          `json:"size"`
	Mode      [2]geom.SizeMode   `json:"mode"`
	Align     [2]Alignment       `json:"align"`
	Padding   geom.Padding       `json:"padding"`
	Offset    geom.Point         `json:"offset"`
	Flipped   bool               `json:"flipped,omitempty"`
	Placement *PlacementSnapshot `json:"placement,omitempty"`
	Axis      *geom.Axis         `json:"axis,omitempty"`
	Grid      *GridSnapshot      `json:"grid,omitempty"`
	Children  []NodeSnapshot     `json:"children,omitempty"`
}

// PlacementSnapshot is the flattened form of every Placement variant. Pulse
// and stack placements use Align[0].
type PlacementSnapshot struct {
	Type        string       `json:"type"`
	At          *geom.Point  `json:"at,omitempty"`
	Row         int          `json:"row,omitempty"`
	Col         int          `json:"col,omitempty"`
	Rows        int          `json:"rows,omitempty"`
	Cols        int          `json:"cols,omitempty"`
	Align       [2]Alignment `json:"align"`
	OmitWidth   bool         `json:"omit_width,omitempty"`
	OmitHeight  bool         `json:"omit_height,omitempty"`
	Column      int          `json:"column,omitempty"`
	Orientation Orientation  `json:"orientation,omitempty"`
	Sections    int          `json:"sections,omitempty"`
}

// GridSnapshot holds grid-only state. Ghosts lists ownerless reservations;
// those owned by pulses are recreated from their placements.
type GridSnapshot struct {
	Rows    int           `json:"rows"`
	Cols    int           `json:"cols"`
	AxisRow int           `json:"axis_row"`
	MinCell geom.Size     `json:"min_cell"`
	Ghosts  []Reservation `json:"ghosts,omitempty"`
	Extras  []Reservation `json:"extras,omitempty"`
}

// Reservation is a ghost or extra at a cell.
type Reservation struct {
	Row int     `json:"row"`
	Col int     `json:"col"`
	W   float64 `json:"w"`
	H   float64 `json:"h"`
}

// ====================================================================
// Export
// ====================================================================

// Export captures root and every author binding between its entities.
func Export(root Node) Snapshot {
	members := make(map[geom.ID]bool)
	_ = Walk(root, func(n Node, _ int) error {
		members[n.Base().ID()] = true
		return nil
	})

	snap := Snapshot{
		Version: errors.SnapshotVersion,
		Name:    root.Base().Label(),
		Root:    exportNode(root),
	}
	for _, b := range root.Base().Scene().Bindings() {
		if !b.Managed && members[b.Owner] && members[b.Target] {
			snap.Bindings = append(snap.Bindings, b)
		}
	}
	return snap
}

func exportNode(n Node) NodeSnapshot {
	e := n.Base()
	ns := NodeSnapshot{
		ID:        e.ID(),
		Label:     e.Label(),
		Type:      TypeElement,
		Kind:      e.Kind(),
		Size:      e.Size(),
		Mode:      [2]geom.SizeMode{e.SizeMode(geom.X), e.SizeMode(geom.Y)},
		Align:     selfAlignment(e),
		Padding:   e.Padding(),
		Offset:    e.Offset(),
		Flipped:   e.Flipped(),
		Placement: exportPlacement(e.Placement()),
	}
	if p, err := e.Position(); err == nil {
		ns.Position = &p
	}

	switch v := n.(type) {
	case *Grid:
		ns.Type = TypeGrid
		ns.Grid = v.exportGrid()
	case *Stack[Node]:
		ns.Type = TypeStack
		axis := v.MainAxis()
		ns.Axis = &axis
	case *Container:
		ns.Type = TypeContainer
	default:
		if st, ok := n.(interface{ MainAxis() geom.Axis }); ok {
			ns.Type = TypeStack
			axis := st.MainAxis()
			ns.Axis = &axis
		} else if len(n.Children()) > 0 {
			ns.Type = TypeContainer
		}
	}
	for _, ch := range n.Children() {
		ns.Children = append(ns.Children, exportNode(ch))
	}
	return ns
}

func selfAlignment(e *Element) [2]Alignment {
	var out [2]Alignment
	for _, a := range geom.Axes {
		if s, ok := e.Align(a); ok {
			out[a] = AlignTo(s)
		}
	}
	return out
}

func exportPlacement(p Placement) *PlacementSnapshot {
	switch v := p.(type) {
	case Free:
		at := v.At
		return &PlacementSnapshot{Type: "free", At: &at}
	case GridPlacement:
		s := v.span()
		return &PlacementSnapshot{
			Type: "grid", Row: v.Row, Col: v.Col, Rows: s.Rows, Cols: s.Cols,
			Align: v.Align, OmitWidth: v.OmitWidth, OmitHeight: v.OmitHeight,
		}
	case PulsePlacement:
		return &PlacementSnapshot{
			Type: "pulse", Column: v.Column, Orientation: v.Orientation,
			Align: [2]Alignment{v.Align}, Sections: max(v.Sections, 1),
		}
	case StackPlacement:
		return &PlacementSnapshot{
			Type: "stack", Align: [2]Alignment{v.Align},
			OmitWidth: v.OmitWidth, OmitHeight: v.OmitHeight,
		}
	}
	return nil
}

func (g *Grid) exportGrid() *GridSnapshot {
	gs := &GridSnapshot{Rows: g.Rows(), Cols: g.Cols(), AxisRow: g.axisRow, MinCell: g.minCell}
	for r, row := range g.matrix {
		for c, cell := range row {
			if cell == nil {
				continue
			}
			for _, gh := range cell.Ghosts {
				if gh.Owner == "" {
					gs.Ghosts = append(gs.Ghosts, Reservation{Row: r, Col: c, W: gh.W, H: gh.H})
				}
			}
			if cell.Extra != nil {
				gs.Extras = append(gs.Extras, Reservation{Row: r, Col: c, W: cell.Extra.W, H: cell.Extra.H})
			}
		}
	}
	return gs
}

// ====================================================================
// Build
// ====================================================================

// Build reconstructs a tree from snap in a fresh scene. Scene options are
// applied after the snapshot's own precision.
func Build(snap Snapshot, opts ...geom.Option) (Node, error) {
	if err := errors.ValidateSnapshotVersion(snap.Version); err != nil {
		return nil, err
	}
	var sceneOpts []geom.Option
	if snap.Precision != nil {
		sceneOpts = append(sceneOpts, geom.WithPrecision(*snap.Precision))
	}
	s := geom.NewScene(append(sceneOpts, opts...)...)

	root, err := buildNode(s, snap.Root)
	if err != nil {
		return nil, err
	}
	for _, b := range snap.Bindings {
		owner, ok := s.Box(b.Owner)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidSnapshot, "binding owner %q not found", b.Owner)
		}
		target, ok := s.Box(b.Target)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidSnapshot, "binding target %q not found", b.Target)
		}
		if err := owner.Bind(target, b.Axis, b.OwnerSite, b.TargetSite,
			geom.WithOffset(b.Offset), geom.WithContent(b.Content)); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func buildNode(s *geom.Scene, ns NodeSnapshot) (Node, error) {
	if err := errors.ValidateLabel(ns.Label); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "node %q", ns.ID)
	}

	var (
		n   Node
		err error
	)
	switch ns.Type {
	case TypeElement, "":
		kind := ns.Kind
		if kind == "" {
			kind = "box"
		}
		n, err = newElementWithID(s, ns.ID, kind, ns.Label)
	case TypeContainer:
		n, err = newContainerWithID(s, ns.ID, ns.Label)
	case TypeStack:
		axis := geom.X
		if ns.Axis != nil {
			axis = *ns.Axis
		}
		n, err = newStackWithID[Node](s, ns.ID, ns.Label, axis)
	case TypeGrid:
		var opts []GridOption
		if ns.Grid != nil {
			opts = append(opts, WithAxisRow(ns.Grid.AxisRow), WithMinCellSize(ns.Grid.MinCell.W, ns.Grid.MinCell.H))
		}
		n, err = newGridWithID(s, ns.ID, ns.Label, opts...)
	default:
		return nil, errors.New(errors.ErrCodeInvalidSnapshot, "node %q: unknown type %q", ns.ID, ns.Type)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "node %q", ns.ID)
	}

	e := n.Base()
	if ns.Kind != "" {
		e.kind = ns.Kind
	}
	for _, a := range geom.Axes {
		e.SetSizeMode(a, ns.Mode[a])
		if site, ok := ns.Align[a].Site(); ok {
			e.SetAlign(a, site)
		}
	}
	e.Resize(ns.Size.W, ns.Size.H)
	e.SetPadding(ns.Padding)
	e.offset = ns.Offset
	e.flipped = ns.Flipped
	if ns.Position != nil {
		e.Place(ns.Position.X, ns.Position.Y)
	}
	if ns.Placement != nil {
		p, err := ns.Placement.placement()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "node %q", ns.ID)
		}
		e.placement = p
	}

	for _, cs := range ns.Children {
		child, err := buildNode(s, cs)
		if err != nil {
			return nil, err
		}
		if err := addChild(n, child); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "node %q: add %q", ns.ID, cs.ID)
		}
	}

	if g, ok := n.(*Grid); ok && ns.Grid != nil {
		if err := g.restore(ns.Grid); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "grid %q", ns.ID)
		}
	}
	return n, nil
}

func addChild(parent, child Node) error {
	switch p := parent.(type) {
	case *Grid:
		return p.Add(child)
	case *Stack[Node]:
		return p.Add(child)
	case *Container:
		return p.Add(child)
	}
	return errors.New(errors.ErrCodeInvalidSnapshot, "%s cannot hold children", parent.Base().ID())
}

// placement converts the flattened form back into a Placement. Insert modes
// are add-time directives and are not restored.
func (ps *PlacementSnapshot) placement() (Placement, error) {
	switch ps.Type {
	case "free":
		var at geom.Point
		if ps.At != nil {
			at = *ps.At
		}
		return Free{At: at}, nil
	case "grid":
		return GridPlacement{
			Coords:       Coords{Row: ps.Row, Col: ps.Col},
			Span:         Span{Rows: max(ps.Rows, 1), Cols: max(ps.Cols, 1)},
			Align:        ps.Align,
			Contribution: Contribution{OmitWidth: ps.OmitWidth, OmitHeight: ps.OmitHeight},
		}, nil
	case "pulse":
		return PulsePlacement{
			Column: ps.Column, Orientation: ps.Orientation,
			Align: ps.Align[0], Sections: max(ps.Sections, 1),
		}, nil
	case "stack":
		return StackPlacement{
			Align:        ps.Align[0],
			Contribution: Contribution{OmitWidth: ps.OmitWidth, OmitHeight: ps.OmitHeight},
		}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidSnapshot, "unknown placement type %q", ps.Type)
}

// restore re-applies reservations and trailing empty strips.
func (g *Grid) restore(gs *GridSnapshot) error {
	for _, r := range gs.Ghosts {
		if err := g.ReserveGhost(Coords{Row: r.Row, Col: r.Col}, r.W, r.H); err != nil {
			return err
		}
	}
	for _, r := range gs.Extras {
		if err := g.SetExtra(Coords{Row: r.Row, Col: r.Col}, r.W, r.H); err != nil {
			return err
		}
	}
	if gs.Rows < 0 || gs.Cols < 0 {
		return errors.New(errors.ErrCodeInvalidSnapshot, "negative grid dimensions %dx%d", gs.Rows, gs.Cols)
	}
	g.ensure(gs.Rows, gs.Cols)
	return nil
}
