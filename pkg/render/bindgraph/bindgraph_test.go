package bindgraph

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/pulsegrid/pkg/diagram"
	"github.com/matzehuels/pulsegrid/pkg/geom"
	"github.com/matzehuels/pulsegrid/pkg/layout"
)

func sample() diagram.Geometry {
	return diagram.Geometry{
		Name: "seq",
		Boxes: []diagram.Box{
			{ID: "root", Label: "seq", Type: layout.TypeStack},
			{ID: "p90", Parent: "root", Label: "p90", Type: layout.TypeElement, Kind: "pulse",
				Outer: geom.Rect{X: 4, Y: 2, W: 10, H: 20}},
			{ID: "t1", Parent: "root", Type: layout.TypeElement, Kind: "label"},
		},
		Bindings: []geom.Binding{
			{Owner: "p90", Target: "t1", Axis: geom.X, OwnerSite: geom.Centre, TargetSite: geom.Near, Offset: 1, Content: true},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{})

	for _, want := range []string{
		"digraph G",
		`"root"`,
		`"p90" [label="p90\npulse"]`,
		`"t1" [label="t1\nlabel"]`,
		`"p90" -> "t1" [label="x centre→near +1"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "dotted") {
		t.Error("tree edges drawn without Tree")
	}
}

func TestToDOTTree(t *testing.T) {
	dot := ToDOT(sample(), Options{Tree: true, Detailed: true})
	if !strings.Contains(dot, `"root" -> "p90" [style=dotted`) {
		t.Error("missing containment edge")
	}
	if !strings.Contains(dot, `4,2 10x20`) {
		t.Error("detailed label missing outer rect")
	}
	if !strings.Contains(dot, "dashed") || !strings.Contains(dot, "lightgrey") {
		t.Error("container not styled")
	}
}

func TestEdgeLabel(t *testing.T) {
	tests := []struct {
		name string
		b    geom.Binding
		want string
	}{
		{"content", geom.Binding{Axis: geom.Y, OwnerSite: geom.Far, TargetSite: geom.Near, Content: true}, "y far→near"},
		{"outer", geom.Binding{Axis: geom.X, OwnerSite: geom.Near, TargetSite: geom.Near}, "x near→near outer"},
		{"negative offset", geom.Binding{Axis: geom.X, OwnerSite: geom.Far, TargetSite: geom.Far, Offset: -2.5, Content: true}, "x far→far -2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := edgeLabel(tt.b); got != tt.want {
				t.Errorf("edgeLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeViewBox([]byte(tt.svg)); string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sample(), Options{Tree: true}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("output missing <svg> tag")
	}
}

func TestRenderSVGInvalid(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`); err == nil {
		t.Error("RenderSVG accepted invalid DOT")
	}
}
