package layout

import (
	"slices"

	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
)

// Container is an element that owns an ordered list of children. A plain
// Container leaves its children where their Free placement puts them and
// fits its content box to their bounding union.
type Container struct {
	Element

	children []Node
	// unionMin is the top-left of the children's bounding union relative to
	// the content origin, as of the last ComputeSize.
	unionMin geom.Point
}

// NewContainer creates an empty container that fits its children.
func NewContainer(s *geom.Scene, label string) *Container {
	c := &Container{Element: *NewElement(s, "group", label)}
	c.fitBoth()
	return c
}

func newContainerWithID(s *geom.Scene, id geom.ID, label string) (*Container, error) {
	e, err := newElementWithID(s, id, "group", label)
	if err != nil {
		return nil, err
	}
	c := &Container{Element: *e}
	c.fitBoth()
	return c, nil
}

func (c *Container) fitBoth() {
	c.SetSizeMode(geom.X, geom.Fit)
	c.SetSizeMode(geom.Y, geom.Fit)
}

// Children implements Node.
func (c *Container) Children() []Node { return slices.Clone(c.children) }

// Len returns the number of children.
func (c *Container) Len() int { return len(c.children) }

// Add attaches child: its parent id is set and it is appended.
func (c *Container) Add(child Node) error {
	if err := c.checkChild(child); err != nil {
		return err
	}
	child.Base().SetParent(c.ID())
	c.children = append(c.children, child)
	return nil
}

// checkChild reports why child cannot be attached, without changing anything.
func (c *Container) checkChild(child Node) error {
	if child == nil {
		return errors.New(errors.ErrCodeMissingOwner, "%s: add nil child", c.ID())
	}
	b := child.Base()
	if b.Scene() != c.Scene() {
		return errors.New(errors.ErrCodeInvalidInput, "%s: child %s belongs to another scene", c.ID(), b.ID())
	}
	if b.Parent() != "" {
		return errors.New(errors.ErrCodeInvalidInput, "%s: child %s already has parent %s", c.ID(), b.ID(), b.Parent())
	}
	if b.ID() == c.ID() {
		return errors.New(errors.ErrCodeInvalidInput, "%s: cannot add a container to itself", c.ID())
	}
	return nil
}

// Remove detaches child and destroys it together with its subtree. Removing
// a node that is not a child logs a diagnostic and returns false.
func (c *Container) Remove(child Node) bool {
	if !c.detach(child) {
		c.Scene().Logger().Warn("remove: not a child", "container", c.ID(), "child", idOf(child))
		return false
	}
	child.Destroy()
	return true
}

// detach drops child from the list and clears its parent id. The child and
// its boxes stay alive.
func (c *Container) detach(child Node) bool {
	i := c.indexOf(child)
	if i < 0 {
		return false
	}
	c.children = slices.Delete(c.children, i, i+1)
	child.Base().SetParent("")
	return true
}

func (c *Container) indexOf(child Node) int {
	if child == nil {
		return -1
	}
	id := child.Base().ID()
	return slices.IndexFunc(c.children, func(n Node) bool { return n.Base().ID() == id })
}

func idOf(n Node) geom.ID {
	if n == nil {
		return ""
	}
	return n.Base().ID()
}

// Destroy implements Node.
func (c *Container) Destroy() {
	for _, ch := range c.children {
		ch.Destroy()
	}
	c.children = nil
	c.Element.Destroy()
}

// ComputeSize implements Node: the content box becomes the bounding union of
// the children's outer extents. An empty container has zero size.
func (c *Container) ComputeSize() error {
	if err := computeChildSizes(c.children); err != nil {
		return err
	}
	var union geom.Rect
	for i, ch := range c.children {
		b := ch.Base()
		at := freeAt(b)
		r := geom.Rect{X: at.X, Y: at.Y, W: b.OuterSize(geom.X), H: b.OuterSize(geom.Y)}
		if i == 0 {
			union = r
			continue
		}
		union = union.Union(r)
	}
	c.unionMin = union.Origin()
	c.fitTo(union.Size())
	return nil
}

func computeChildSizes(children []Node) error {
	for _, ch := range children {
		if err := ch.ComputeSize(); err != nil {
			return err
		}
	}
	return nil
}

// fitTo applies a natural content size to the axes in Fit mode.
func (e *Element) fitTo(s geom.Size) {
	for _, a := range geom.Axes {
		if e.SizeMode(a) == geom.Fit {
			e.SetSize(a, s.On(a))
		}
	}
}

func freeAt(b *Element) geom.Point {
	if f, ok := b.Placement().(Free); ok {
		return f.At
	}
	return geom.Point{}
}

// Grow implements Node. Grow-mode axes take the offered size, then every
// child is offered the content size.
func (c *Container) Grow(avail geom.Size) error {
	c.growSelf(avail)
	for _, ch := range c.children {
		if err := ch.Grow(c.Size()); err != nil {
			return err
		}
	}
	return nil
}

// ComputePositions implements Node.
func (c *Container) ComputePositions(at geom.Point) error {
	c.Place(at.X, at.Y)
	origin, err := c.ContentOrigin()
	if err != nil {
		return err
	}
	for _, ch := range c.children {
		rel := freeAt(ch.Base())
		ch.Base().Place(origin.X+rel.X-c.unionMin.X, origin.Y+rel.Y-c.unionMin.Y)
	}
	return c.settleChildren()
}

// settleChildren enforces the container's own bindings, then recurses into
// every child at the position it ended up at.
func (c *Container) settleChildren() error {
	if _, err := c.EnforceBindings(); err != nil {
		return err
	}
	for _, ch := range c.children {
		p, err := ch.Base().Position()
		if err != nil {
			c.Scene().Logger().Debug("child unresolved, placing at content origin", "container", c.ID(), "child", ch.Base().ID(), "err", err)
			if p, err = c.ContentOrigin(); err != nil {
				return err
			}
		}
		if err := ch.ComputePositions(p); err != nil {
			return err
		}
	}
	return nil
}
