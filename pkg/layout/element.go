package layout

import (
	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
)

// Node is one entity of the layout tree. The three passes run in order over
// a whole tree: ComputeSize bottom-up, Grow top-down and ComputePositions
// top-down.
type Node interface {
	// Base returns the element every node is built on.
	Base() *Element
	// Children returns the owned children in order.
	Children() []Node
	// ComputeSize derives content sizes from children (fit axes only).
	ComputeSize() error
	// Grow hands the node the outer size its parent reserved for it.
	Grow(avail geom.Size) error
	// ComputePositions places the node's outer top-left at at and
	// positions its subtree.
	ComputePositions(at geom.Point) error
	// Destroy releases the node's drawable, boxes and bindings, recursively.
	Destroy()
}

// Releaser is implemented by drawable handles that hold resources.
type Releaser interface {
	Release()
}

// Element is the leaf node: a padded box with a render offset, an opaque
// drawable handle, an orientation flag and a placement for its parent.
type Element struct {
	*geom.Box

	kind      string
	offset    geom.Point
	drawable  any
	flipped   bool
	placement Placement
}

// NewElement creates a leaf in s. Kind is a free-form role tag such as
// "bar", "label" or "pulse".
func NewElement(s *geom.Scene, kind, label string) *Element {
	return &Element{Box: s.NewBox(label), kind: kind}
}

func newElementWithID(s *geom.Scene, id geom.ID, kind, label string) (*Element, error) {
	b, err := s.NewBoxWithID(id, label)
	if err != nil {
		return nil, err
	}
	return &Element{Box: b, kind: kind}, nil
}

// Base implements Node.
func (e *Element) Base() *Element { return e }

// Children implements Node. Leaves have none.
func (e *Element) Children() []Node { return nil }

// Kind returns the role tag.
func (e *Element) Kind() string { return e.kind }

// Offset returns the render-only displacement.
func (e *Element) Offset() geom.Point { return e.offset }

// SetOffset sets the render-only displacement. Anchors are unaffected.
func (e *Element) SetOffset(dx, dy float64) { e.offset = geom.Point{X: dx, Y: dy} }

// Drawable returns the opaque handle supplied by the renderer.
func (e *Element) Drawable() any { return e.drawable }

// SetDrawable attaches a renderer handle.
func (e *Element) SetDrawable(d any) { e.drawable = d }

// Flipped reports whether the element is mounted mirrored.
func (e *Element) Flipped() bool { return e.flipped }

// Flip mirrors the element vertically: top and bottom padding swap and the
// vertical offset changes sign. Flipping twice restores the original.
func (e *Element) Flip() {
	e.SetPadding(e.Padding().Flipped())
	e.offset.Y = -e.offset.Y
	e.flipped = !e.flipped
}

// Placement returns the placement configuration, or nil.
func (e *Element) Placement() Placement { return e.placement }

// SetPlacement attaches a placement. It fails once the element has a parent.
func (e *Element) SetPlacement(p Placement) error {
	if e.Parent() != "" {
		return errors.New(errors.ErrCodeInvalidInput,
			"%s: remove the element before changing its placement", e.ID())
	}
	e.placement = p
	return nil
}

// RenderPosition is the outer position plus the render offset.
func (e *Element) RenderPosition() (geom.Point, error) {
	p, err := e.Position()
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Point{X: p.X + e.offset.X, Y: p.Y + e.offset.Y}, nil
}

// ComputeSize implements Node. Leaf sizes are supplied by the caller.
func (e *Element) ComputeSize() error { return nil }

// Grow implements Node: axes in Grow mode take the offered outer size.
func (e *Element) Grow(avail geom.Size) error {
	e.growSelf(avail)
	return nil
}

func (e *Element) growSelf(avail geom.Size) {
	for _, a := range geom.Axes {
		if e.SizeMode(a) == geom.Grow {
			e.SetOuterSize(a, avail.On(a))
		}
	}
}

// ComputePositions implements Node.
func (e *Element) ComputePositions(at geom.Point) error {
	e.Place(at.X, at.Y)
	_, err := e.EnforceBindings()
	return err
}

// Destroy implements Node.
func (e *Element) Destroy() {
	if r, ok := e.drawable.(Releaser); ok {
		r.Release()
	}
	e.drawable = nil
	e.Scene().Release(e.ID())
}
