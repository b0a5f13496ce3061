package layout

import (
	"github.com/matzehuels/pulsegrid/pkg/geom"
)

// Stack lays its children back to back along a main axis. On the cross axis
// each child is bound to the site named by its StackPlacement, else to its
// self alignment, else to the stack's centre.
//
// The type parameter restricts what a stack holds; Stack[Node] holds
// anything.
type Stack[T Node] struct {
	Container
	main geom.Axis
}

// NewStack creates an empty stack that fits its children.
func NewStack[T Node](s *geom.Scene, label string, main geom.Axis) *Stack[T] {
	c := NewContainer(s, label)
	c.kind = "stack"
	return &Stack[T]{Container: *c, main: main}
}

func newStackWithID[T Node](s *geom.Scene, id geom.ID, label string, main geom.Axis) (*Stack[T], error) {
	c, err := newContainerWithID(s, id, label)
	if err != nil {
		return nil, err
	}
	c.kind = "stack"
	return &Stack[T]{Container: *c, main: main}, nil
}

// MainAxis returns the stacking axis.
func (st *Stack[T]) MainAxis() geom.Axis { return st.main }

// Add appends child.
func (st *Stack[T]) Add(child T) error { return st.Container.Add(child) }

// Remove detaches and destroys child; non-members are logged and ignored.
func (st *Stack[T]) Remove(child T) bool { return st.Container.Remove(child) }

// Items returns the children with their static type.
func (st *Stack[T]) Items() []T {
	out := make([]T, 0, len(st.children))
	for _, ch := range st.children {
		if v, ok := ch.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// ComputeSize implements Node: the main extent is the sum of the children's
// outer extents and the cross extent their maximum.
func (st *Stack[T]) ComputeSize() error {
	if err := computeChildSizes(st.children); err != nil {
		return err
	}
	cross := st.main.Other()
	var sum, widest float64
	for _, ch := range st.children {
		b := ch.Base()
		c := contributionOf(b.Placement())
		if !c.Omits(st.main) {
			sum += b.OuterSize(st.main)
		}
		if !c.Omits(cross) {
			widest = max(widest, b.OuterSize(cross))
		}
	}
	st.fitTo(geom.Size{}.With(st.main, sum).With(cross, widest))
	return nil
}

// Grow implements Node. Children keep their main extent and are offered the
// stack's cross extent.
func (st *Stack[T]) Grow(avail geom.Size) error {
	st.growSelf(avail)
	cross := st.main.Other()
	for _, ch := range st.children {
		b := ch.Base()
		offer := geom.Size{}.With(st.main, b.OuterSize(st.main)).With(cross, st.ContentSize(cross))
		if err := ch.Grow(offer); err != nil {
			return err
		}
	}
	return nil
}

// ComputePositions implements Node.
func (st *Stack[T]) ComputePositions(at geom.Point) error {
	st.Place(at.X, at.Y)
	origin, err := st.ContentOrigin()
	if err != nil {
		return err
	}
	cross := st.main.Other()
	run := origin.On(st.main)
	for _, ch := range st.children {
		b := ch.Base()
		b.PlaceAxis(st.main, run)
		c := contributionOf(b.Placement())
		if !c.Omits(st.main) {
			run += b.OuterSize(st.main)
		}

		var align Alignment
		if sp, ok := b.Placement().(StackPlacement); ok {
			align = sp.Align
		}
		site := align.resolve(b, cross, geom.Centre)
		if b.SizeMode(cross) == geom.Grow {
			site = geom.Near
		}
		st.ClearManagedBindsTo(b.ID(), cross)
		if err := st.Bind(b.Box, cross, site, site, geom.WithContent(false), geom.Managed()); err != nil {
			return err
		}
	}
	return st.settleChildren()
}
