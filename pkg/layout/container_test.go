package layout

import (
	"testing"

	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
)

type countingDrawable struct{ released int }

func (d *countingDrawable) Release() { d.released++ }

func TestElementFlip(t *testing.T) {
	s := geom.NewScene()
	e := leaf(s, "p90", 10, 30, nil)
	e.SetPadding(geom.Padding{1, 2, 3, 4})
	e.SetOffset(5, 7)

	e.Flip()
	if !e.Flipped() {
		t.Error("Flipped() = false after Flip")
	}
	if e.Padding() != (geom.Padding{3, 2, 1, 4}) {
		t.Errorf("padding = %v", e.Padding())
	}
	if e.Offset() != (geom.Point{X: 5, Y: -7}) {
		t.Errorf("offset = %v", e.Offset())
	}

	e.Flip()
	if e.Flipped() || e.Padding() != (geom.Padding{1, 2, 3, 4}) || e.Offset().Y != 7 {
		t.Error("double flip did not restore the element")
	}
}

func TestElementRenderPosition(t *testing.T) {
	s := geom.NewScene()
	e := leaf(s, "", 1, 1, nil)
	if _, err := e.RenderPosition(); !errors.Is(err, errors.ErrCodeUnsetCoordinate) {
		t.Errorf("unplaced RenderPosition err = %v", err)
	}
	e.Place(10, 20)
	e.SetOffset(-1, 2)
	p, err := e.RenderPosition()
	if err != nil || p != (geom.Point{X: 9, Y: 22}) {
		t.Errorf("RenderPosition = %+v, %v", p, err)
	}
	if a, _ := e.Position(); a != (geom.Point{X: 10, Y: 20}) {
		t.Error("offset moved the anchor")
	}
}

func TestElementGrow(t *testing.T) {
	s := geom.NewScene()
	e := leaf(s, "", 5, 5, nil)
	e.SetPadding(geom.Uniform(1))
	e.SetSizeMode(geom.X, geom.Grow)
	e.Grow(geom.Size{W: 50, H: 50})
	if e.OuterSize(geom.X) != 50 || e.ContentSize(geom.Y) != 5 {
		t.Errorf("grown to %v", e.Size())
	}
}

func TestSetPlacementAfterAdd(t *testing.T) {
	s := geom.NewScene()
	c := NewContainer(s, "")
	e := leaf(s, "", 1, 1, Free{})
	c.Add(e)
	if err := e.SetPlacement(Free{At: geom.Point{X: 3}}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestContainerEmpty(t *testing.T) {
	s := geom.NewScene()
	c := NewContainer(s, "")
	c.Resize(7, 7)
	if err := c.ComputeSize(); err != nil {
		t.Fatal(err)
	}
	if c.Size() != (geom.Size{}) {
		t.Errorf("empty container size = %v, want 0x0", c.Size())
	}
}

func TestContainerUnion(t *testing.T) {
	s := geom.NewScene()
	c := NewContainer(s, "")
	c.SetPadding(geom.Uniform(2))
	a := leaf(s, "a", 10, 10, Free{At: geom.Point{X: 5, Y: 5}})
	b := leaf(s, "b", 4, 4, Free{At: geom.Point{X: 20, Y: 0}})
	b.SetPadding(geom.Uniform(1))
	c.Add(a)
	c.Add(b)

	c.ComputeSize()
	if got := c.Size(); got != (geom.Size{W: 21, H: 15}) {
		t.Fatalf("size = %v, want 21x15", got)
	}
	c.ComputePositions(geom.Point{})
	if p := position(t, a); p != (geom.Point{X: 2, Y: 7}) {
		t.Errorf("a at %+v", p)
	}
	if p := position(t, b); p != (geom.Point{X: 17, Y: 2}) {
		t.Errorf("b at %+v", p)
	}
}

func TestContainerAddErrors(t *testing.T) {
	s := geom.NewScene()
	c := NewContainer(s, "")
	other := NewContainer(s, "")
	e := leaf(s, "", 1, 1, nil)
	c.Add(e)

	tests := []struct {
		name  string
		child Node
		code  errors.Code
	}{
		{"nil", nil, errors.ErrCodeMissingOwner},
		{"already owned", e, errors.ErrCodeInvalidInput},
		{"self", c, errors.ErrCodeInvalidInput},
		{"foreign scene", leaf(geom.NewScene(), "", 1, 1, nil), errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := c
			if tt.name == "already owned" {
				target = other
			}
			if err := target.Add(tt.child); !errors.Is(err, tt.code) {
				t.Errorf("Add err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestContainerRemoveReleases(t *testing.T) {
	s := geom.NewScene()
	root := NewContainer(s, "root")
	group := NewContainer(s, "group")
	inner := leaf(s, "inner", 1, 1, nil)
	d := &countingDrawable{}
	inner.SetDrawable(d)
	group.Add(inner)
	root.Add(group)

	witness := leaf(s, "witness", 1, 1, nil)
	root.Add(witness)
	witness.Bind(inner.Box, geom.X, geom.Near, geom.Near)
	inner.Bind(witness.Box, geom.Y, geom.Near, geom.Near)

	before := s.Len()
	if !root.Remove(group) {
		t.Fatal("Remove(group) = false")
	}
	if group.Parent() != "" {
		t.Error("parent not cleared")
	}
	if d.released != 1 {
		t.Errorf("drawable released %d times, want 1", d.released)
	}
	if s.Len() != before-2 {
		t.Errorf("scene has %d boxes, want %d", s.Len(), before-2)
	}
	if len(witness.Bindings()) != 0 || len(witness.BoundBy()) != 0 {
		t.Error("bindings to the removed subtree survived")
	}
	if root.Remove(group) {
		t.Error("second Remove = true")
	}
}
