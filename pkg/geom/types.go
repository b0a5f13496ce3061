package geom

import (
	"fmt"
	"strings"

	"github.com/matzehuels/pulsegrid/pkg/errors"
)

// ID identifies an entity within a Scene.
type ID string

// Axis selects the horizontal or vertical dimension.
type Axis int

const (
	X Axis = iota
	Y
)

// Axes lists both axes in x, y order.
var Axes = [2]Axis{X, Y}

func (a Axis) String() string {
	if a == Y {
		return "y"
	}
	return "x"
}

// Other returns the cross axis.
func (a Axis) Other() Axis { return 1 - a }

// ParseAxis parses "x" or "y".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return X, nil
	case "y":
		return Y, nil
	}
	return X, errors.New(errors.ErrCodeInvalidInput, "unknown axis %q", s)
}

func (a Axis) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Axis) UnmarshalText(b []byte) error {
	v, err := ParseAxis(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Site is one of the three reference points of a box along an axis.
type Site int

const (
	Near Site = iota
	Centre
	Far
)

func (s Site) String() string {
	switch s {
	case Centre:
		return "centre"
	case Far:
		return "far"
	}
	return "near"
}

// ParseSite accepts near, centre (or center) and far, plus the
// edge names left/top and right/bottom.
func ParseSite(s string) (Site, error) {
	switch strings.ToLower(s) {
	case "near", "left", "top", "start":
		return Near, nil
	case "centre", "center", "middle":
		return Centre, nil
	case "far", "right", "bottom", "end":
		return Far, nil
	}
	return Near, errors.New(errors.ErrCodeInvalidInput, "unknown site %q", s)
}

func (s Site) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Site) UnmarshalText(b []byte) error {
	v, err := ParseSite(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// SizeMode controls where a box's size on one axis comes from.
type SizeMode int

const (
	// Fixed sizes are authored directly.
	Fixed SizeMode = iota
	// Fit sizes are derived from children.
	Fit
	// Grow sizes are derived from the span between two bindings, or from
	// the space a parent hands out during the grow pass.
	Grow
)

func (m SizeMode) String() string {
	switch m {
	case Fit:
		return "fit"
	case Grow:
		return "grow"
	}
	return "fixed"
}

// ParseSizeMode parses fixed, fit or grow.
func ParseSizeMode(s string) (SizeMode, error) {
	switch strings.ToLower(s) {
	case "fixed":
		return Fixed, nil
	case "fit":
		return Fit, nil
	case "grow":
		return Grow, nil
	}
	return Fixed, errors.New(errors.ErrCodeInvalidInput, "unknown size mode %q", s)
}

func (m SizeMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *SizeMode) UnmarshalText(b []byte) error {
	v, err := ParseSizeMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Point is an absolute position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// On returns the coordinate along axis.
func (p Point) On(a Axis) float64 {
	if a == Y {
		return p.Y
	}
	return p.X
}

// Size is a width/height pair.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// On returns the extent along axis.
func (s Size) On(a Axis) float64 {
	if a == Y {
		return s.H
	}
	return s.W
}

// With returns s with the extent along axis replaced.
func (s Size) With(a Axis, v float64) Size {
	if a == Y {
		s.H = v
	} else {
		s.W = v
	}
	return s
}

func (s Size) String() string { return fmt.Sprintf("%gx%g", s.W, s.H) }

// Rect is an axis-aligned rectangle in y-down coordinates.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the far x edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the far y edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{r.X, r.Y} }

// Size returns the extent of r.
func (r Rect) Size() Size { return Size{r.W, r.H} }

// Centre returns the midpoint of r.
func (r Rect) Centre() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// IsEmpty reports whether r encloses no area.
func (r Rect) IsEmpty() bool { return r.W <= 0 || r.H <= 0 }

// Union returns the smallest rectangle containing both r and o.
// A zero Rect acts as the identity.
func (r Rect) Union(o Rect) Rect {
	if r == (Rect{}) {
		return o
	}
	if o == (Rect{}) {
		return r
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.Right(), o.Right()), max(r.Bottom(), o.Bottom())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Inset shrinks r by p, clamping the result at zero size.
func (r Rect) Inset(p Padding) Rect {
	out := Rect{
		X: r.X + p[Left],
		Y: r.Y + p[Top],
		W: r.W - p[Left] - p[Right],
		H: r.H - p[Top] - p[Bottom],
	}
	out.W = max(out.W, 0)
	out.H = max(out.H, 0)
	return out
}

// Contains reports whether pt lies inside r (edges inclusive).
func (r Rect) Contains(pt Point) bool {
	return pt.X >= r.X && pt.X <= r.Right() && pt.Y >= r.Y && pt.Y <= r.Bottom()
}
