package geom

// Padding holds per-side insets in top, right, bottom, left order.
type Padding [4]float64

// Side indexes a Padding.
type Side int

const (
	Top Side = iota
	Right
	Bottom
	Left
)

// Uniform returns a Padding with the same inset on every side.
func Uniform(v float64) Padding { return Padding{v, v, v, v} }

// Near returns the inset on the near edge of axis (left or top).
func (p Padding) Near(a Axis) float64 {
	if a == Y {
		return p[Top]
	}
	return p[Left]
}

// Far returns the inset on the far edge of axis (right or bottom).
func (p Padding) Far(a Axis) float64 {
	if a == Y {
		return p[Bottom]
	}
	return p[Right]
}

// Sum returns the total inset along axis.
func (p Padding) Sum(a Axis) float64 { return p.Near(a) + p.Far(a) }

// Flipped swaps the top and bottom insets.
func (p Padding) Flipped() Padding {
	p[Top], p[Bottom] = p[Bottom], p[Top]
	return p
}

// ====================================================================
// Box padding layer
// ====================================================================

// Padding returns the box's insets.
func (b *Box) Padding() Padding { return b.padding }

// SetPadding replaces all insets. Content size is kept.
func (b *Box) SetPadding(p Padding) {
	for i := range p {
		p[i] = max(b.round(p[i]), 0)
	}
	b.padding = p
}

// SetPaddingSide replaces a single inset.
func (b *Box) SetPaddingSide(s Side, v float64) {
	p := b.padding
	p[s] = v
	b.SetPadding(p)
}

// OuterSize returns the content size plus padding along axis.
func (b *Box) OuterSize(a Axis) float64 {
	return b.size[a] + b.padding.Sum(a)
}

// Outer returns the outer size on both axes.
func (b *Box) Outer() Size {
	return Size{b.OuterSize(X), b.OuterSize(Y)}
}

// SetOuterSize sets the outer extent along axis. The delta is applied to the
// content size, which clamps at zero when v is below the padding sum.
func (b *Box) SetOuterSize(a Axis, v float64) {
	b.SetSize(a, v-b.padding.Sum(a))
}

// ContentOrigin returns the top-left corner of the content box.
func (b *Box) ContentOrigin() (Point, error) {
	p, err := b.Position()
	if err != nil {
		return Point{}, err
	}
	return Point{p.X + b.padding[Left], p.Y + b.padding[Top]}, nil
}

// OuterRect returns the resolved outer rectangle.
func (b *Box) OuterRect() (Rect, error) {
	p, err := b.Position()
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: p.X, Y: p.Y, W: b.OuterSize(X), H: b.OuterSize(Y)}, nil
}

// ContentRect returns the resolved content rectangle.
func (b *Box) ContentRect() (Rect, error) {
	o, err := b.ContentOrigin()
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: o.X, Y: o.Y, W: b.size[X], H: b.size[Y]}, nil
}

// insetNear is the distance from the outer near edge to the near edge of the
// selected box.
func (b *Box) insetNear(a Axis, content bool) float64 {
	if content {
		return b.padding.Near(a)
	}
	return 0
}

// extent is the size of the selected box along axis.
func (b *Box) extent(a Axis, content bool) float64 {
	if content {
		return b.size[a]
	}
	return b.OuterSize(a)
}
