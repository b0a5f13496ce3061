package dsl

import (
	"strings"
	"testing"

	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
	"github.com/matzehuels/pulsegrid/pkg/layout"
)

const fid = `
# free induction decay
diagram "FID" precision 2 {
  grid channel axis 1 min 2x2 ghost 2,0 0x6 {
    bar   rf  size 120x4 grid 1,0 span 1x4 grow x
    pulse p90 size 10x30 column 1 top align centre
    pulse g1  size 20x10 column 2 both sections 2
    label lbl size 24x8  grid 2,1
  }
  group notes align far {
    annotation t1 size 30x6 at 2,1 bind p90 x near centre by 1
  }
}
`

func TestParseSnapshot(t *testing.T) {
	snap, err := ParseString("fid.pg", fid)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Name != "FID" || snap.Precision == nil || *snap.Precision != 2 {
		t.Errorf("header = %q %v", snap.Name, snap.Precision)
	}
	root := snap.Root
	if root.Type != layout.TypeStack || *root.Axis != geom.Y || len(root.Children) != 2 {
		t.Fatalf("root = %+v", root)
	}

	grid := root.Children[0]
	if grid.Type != layout.TypeGrid || grid.Grid.AxisRow != 1 || grid.Grid.MinCell != (geom.Size{W: 2, H: 2}) {
		t.Errorf("grid = %+v %+v", grid, grid.Grid)
	}
	if len(grid.Grid.Ghosts) != 1 || grid.Grid.Ghosts[0] != (layout.Reservation{Row: 2, Col: 0, H: 6}) {
		t.Errorf("ghosts = %+v", grid.Grid.Ghosts)
	}
	if grid.Mode != [2]geom.SizeMode{geom.Fit, geom.Fit} {
		t.Errorf("grid mode = %v", grid.Mode)
	}

	rf := grid.Children[0]
	if p := rf.Placement; p.Type != "grid" || p.Row != 1 || p.Col != 0 || p.Rows != 1 || p.Cols != 4 {
		t.Errorf("rf placement = %+v", p)
	}
	if rf.Mode != [2]geom.SizeMode{geom.Grow, geom.Fixed} || rf.Kind != "bar" {
		t.Errorf("rf = %+v", rf)
	}

	p90 := grid.Children[1].Placement
	if p90.Type != "pulse" || p90.Column != 1 || p90.Orientation != layout.Top || p90.Align[0] != layout.AlignCentre {
		t.Errorf("p90 placement = %+v", p90)
	}
	g1 := grid.Children[2].Placement
	if g1.Orientation != layout.Both || g1.Sections != 2 {
		t.Errorf("g1 placement = %+v", g1)
	}

	notes := root.Children[1]
	if notes.Placement == nil || notes.Placement.Type != "stack" || notes.Placement.Align[0] != layout.AlignFar {
		t.Errorf("notes placement = %+v", notes.Placement)
	}
	t1 := notes.Children[0]
	if t1.Placement.Type != "free" || *t1.Placement.At != (geom.Point{X: 2, Y: 1}) {
		t.Errorf("t1 placement = %+v", t1.Placement)
	}

	want := geom.Binding{
		Owner: "t1", Target: "p90", Axis: geom.X,
		OwnerSite: geom.Near, TargetSite: geom.Centre, Offset: 1, Content: true,
	}
	if len(snap.Bindings) != 1 || snap.Bindings[0] != want {
		t.Errorf("bindings = %+v", snap.Bindings)
	}
}

func TestParsedSnapshotLaysOut(t *testing.T) {
	snap, err := ParseString("fid.pg", fid)
	if err != nil {
		t.Fatal(err)
	}
	root, err := layout.Build(snap)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := layout.NewEngine(nil).Run(root, geom.Point{}); err != nil {
		t.Fatal(err)
	}
	grid := root.Children()[0].(*layout.Grid)
	if grid.Cols() != 4 || grid.Rows() != 3 {
		t.Errorf("grid = %dx%d, want 3x4", grid.Rows(), grid.Cols())
	}
}

func TestSingleEntityIsRoot(t *testing.T) {
	snap, err := ParseString("one", `diagram "one" { stack s axis x pad 1 2 { box a size 4x4 } }`)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Root.ID != "s" || *snap.Root.Axis != geom.X {
		t.Errorf("root = %+v", snap.Root)
	}
	if snap.Root.Padding != (geom.Padding{1, 2, 1, 2}) {
		t.Errorf("padding = %v", snap.Root.Padding)
	}
	if snap.Root.Children[0].Placement != nil {
		t.Errorf("plain stack child got placement %+v", snap.Root.Children[0].Placement)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"syntax", `diagram "x" { box a size }`, ""},
		{"empty", `diagram "x" { }`, "no entities"},
		{"duplicate", `diagram "x" { group g { box a box a } }`, "already declared"},
		{"unknown target", `diagram "x" { group g { box a bind b x near near } }`, "unknown entity"},
		{"self bind", `diagram "x" { group g { box a bind a x near far } }`, "itself"},
		{"column outside grid", `diagram "x" { group g { box a column 1 } }`, "not valid"},
		{"at inside grid", `diagram "x" { grid g { box a at 1,1 } }`, "not valid"},
		{"leaf children", `diagram "x" { box a { box b } }`, "cannot have children"},
		{"pad arity", `diagram "x" { box a pad 1 2 3 }`, "pad"},
		{"pulse and cell", `diagram "x" { grid g { pulse p column 1 grid 0,0 } }`, "mixed"},
		{"grid axis", `diagram "x" { grid g axis y }`, "row index"},
		{"fractional span", `diagram "x" { grid g { bar b span 1.5x2 } }`, "whole cells"},
		{"ghost on stack", `diagram "x" { stack s ghost 0,0 1x1 }`, "apply to grids"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString("test.pg", tt.src)
			if !errors.Is(err, errors.ErrCodeInvalidSource) {
				t.Fatalf("err = %v, want INVALID_SOURCE", err)
			}
			if tt.msg != "" && !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("err = %v, want it to mention %q", err, tt.msg)
			}
		})
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile(t.TempDir() + "/absent.pg"); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestGridDefaults(t *testing.T) {
	src := `diagram "d" {
  grid plain { box a size 1x1 grid 0,0 }
  grid own axis 0 min 5x5 { box b size 1x1 grid 0,0 }
}`
	snap, err := ParseString("d.pg", src, WithGridDefaults(geom.Size{W: 3, H: 2}, 2))
	if err != nil {
		t.Fatal(err)
	}
	plain, own := snap.Root.Children[0].Grid, snap.Root.Children[1].Grid
	if plain.MinCell != (geom.Size{W: 3, H: 2}) || plain.AxisRow != 2 {
		t.Errorf("defaulted grid = %+v", plain)
	}
	if own.MinCell != (geom.Size{W: 5, H: 5}) || own.AxisRow != 0 {
		t.Errorf("declared grid = %+v", own)
	}
}
