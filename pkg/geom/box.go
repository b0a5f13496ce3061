package geom

import (
	"github.com/matzehuels/pulsegrid/pkg/errors"
)

// Box is a positioned rectangle with a size mode per axis, padding and a
// table of outgoing bindings.
//
// The anchor position is the outer top-left corner. Sizes are content sizes;
// the padding layer converts between the two.
type Box struct {
	Anchor

	scene     *Scene
	size      [2]float64
	mode      [2]SizeMode
	align     [2]Site
	aligned   [2]bool
	padding   Padding
	displaced bool
	outgoing  []Binding
	incoming  map[ID]int
}

// Scene returns the scene that owns b.
func (b *Box) Scene() *Scene { return b.scene }

// ContentSize returns the content extent along axis.
func (b *Box) ContentSize(a Axis) float64 { return b.size[a] }

// Size returns the content size on both axes.
func (b *Box) Size() Size { return Size{b.size[X], b.size[Y]} }

// SetSize sets the content extent along axis, clamping at zero.
func (b *Box) SetSize(a Axis, v float64) {
	b.size[a] = max(b.round(v), 0)
}

// Resize sets the content size on both axes.
func (b *Box) Resize(w, h float64) {
	b.SetSize(X, w)
	b.SetSize(Y, h)
}

// SizeMode returns the size mode along axis.
func (b *Box) SizeMode(a Axis) SizeMode { return b.mode[a] }

// SetSizeMode sets the size mode along axis.
func (b *Box) SetSizeMode(a Axis, m SizeMode) { b.mode[a] = m }

// Align returns the self alignment a parent uses when it has no explicit
// binding for b. ok is false until SetAlign is called for the axis, and the
// parent then applies its own default.
func (b *Box) Align(a Axis) (s Site, ok bool) { return b.align[a], b.aligned[a] }

// SetAlign sets the self alignment along axis.
func (b *Box) SetAlign(a Axis, s Site) {
	b.align[a] = s
	b.aligned[a] = true
}

// ClearAlign drops the self alignment along axis.
func (b *Box) ClearAlign(a Axis) {
	b.align[a] = Near
	b.aligned[a] = false
}

// Displaced reports whether a binding write to b is in progress.
func (b *Box) Displaced() bool { return b.displaced }

// Site returns the coordinate of a reference point along axis.
// Content selects the content box rather than the outer box.
// Centre is rounded to the scene precision.
func (b *Box) Site(a Axis, s Site, content bool) (float64, error) {
	near, err := b.Coord(a)
	if err != nil {
		return 0, err
	}
	near += b.insetNear(a, content)
	switch s {
	case Centre:
		return b.round(near + b.extent(a, content)/2), nil
	case Far:
		return b.round(near + b.extent(a, content)), nil
	}
	return b.round(near), nil
}

// SetSite moves b so that the reference point along axis lands on v.
//
// Writing Far on a box in Grow mode resizes it instead, keeping the near edge
// in place; the near edge must be resolved and must not exceed v.
func (b *Box) SetSite(a Axis, s Site, v float64, content bool) error {
	inset := b.insetNear(a, content)
	switch s {
	case Near:
		b.PlaceAxis(a, v-inset)
	case Centre:
		b.PlaceAxis(a, v-inset-b.extent(a, content)/2)
	case Far:
		if b.mode[a] == Grow {
			near, err := b.Site(a, Near, content)
			if err != nil {
				return err
			}
			size := b.round(v - near)
			if size < 0 {
				return errors.New(errors.ErrCodeNegativeSize,
					"far %s edge %g of %s lies before near edge %g", a, v, b.describe(), near)
			}
			if content {
				b.SetSize(a, size)
			} else {
				b.SetOuterSize(a, size)
			}
			return nil
		}
		b.PlaceAxis(a, v-inset-b.extent(a, content))
	}
	return nil
}

// SiteRect returns the reference point of s on both axes.
func (b *Box) SiteRect(sx, sy Site, content bool) (Point, error) {
	x, err := b.Site(X, sx, content)
	if err != nil {
		return Point{}, err
	}
	y, err := b.Site(Y, sy, content)
	if err != nil {
		return Point{}, err
	}
	return Point{x, y}, nil
}
