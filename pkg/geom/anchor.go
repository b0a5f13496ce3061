package geom

import (
	"math"

	"github.com/matzehuels/pulsegrid/pkg/errors"
)

// DefaultPrecision is the number of decimal places coordinates are rounded to.
const DefaultPrecision = 2

// Anchor is an identifiable point whose coordinates may be unresolved.
//
// Coordinates are rounded on every write so that repeated binding passes
// settle on identical values instead of drifting by floating-point noise.
type Anchor struct {
	id     ID
	label  string
	parent ID
	pos    [2]float64
	set    [2]bool
	factor float64
}

// ID returns the anchor's identifier.
func (a *Anchor) ID() ID { return a.id }

// Label returns the human-readable label.
func (a *Anchor) Label() string { return a.label }

// SetLabel replaces the label.
func (a *Anchor) SetLabel(l string) { a.label = l }

// Parent returns the id of the owning container, or "" at the root.
func (a *Anchor) Parent() ID { return a.parent }

// SetParent records the owning container. It is a navigation aid only.
func (a *Anchor) SetParent(id ID) { a.parent = id }

// Place assigns both coordinates.
func (a *Anchor) Place(x, y float64) {
	a.PlaceAxis(X, x)
	a.PlaceAxis(Y, y)
}

// PlaceAxis assigns the coordinate along one axis.
func (a *Anchor) PlaceAxis(axis Axis, v float64) {
	a.pos[axis] = a.round(v)
	a.set[axis] = true
}

// Unplace forgets the coordinate along axis.
func (a *Anchor) Unplace(axis Axis) {
	a.pos[axis] = 0
	a.set[axis] = false
}

// Placed reports whether the coordinate along axis has been assigned.
func (a *Anchor) Placed(axis Axis) bool { return a.set[axis] }

// Coord returns the coordinate along axis, or an UNSET_COORDINATE error.
func (a *Anchor) Coord(axis Axis) (float64, error) {
	if !a.set[axis] {
		return 0, errors.New(errors.ErrCodeUnsetCoordinate, "%s of %s is unset", axis, a.describe())
	}
	return a.pos[axis], nil
}

// Position returns both coordinates, failing if either is unset.
func (a *Anchor) Position() (Point, error) {
	x, err := a.Coord(X)
	if err != nil {
		return Point{}, err
	}
	y, err := a.Coord(Y)
	if err != nil {
		return Point{}, err
	}
	return Point{x, y}, nil
}

func (a *Anchor) round(v float64) float64 {
	f := a.factor
	if f == 0 {
		f = precisionFactor(DefaultPrecision)
	}
	return math.Round(v*f) / f
}

func (a *Anchor) step() float64 {
	if a.factor == 0 {
		return 1 / precisionFactor(DefaultPrecision)
	}
	return 1 / a.factor
}

func (a *Anchor) describe() string {
	if a.label != "" {
		return a.label
	}
	return string(a.id)
}

func precisionFactor(digits int) float64 {
	return math.Pow(10, float64(digits))
}
