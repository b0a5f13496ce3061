// Package bindgraph renders the binding graph of a diagram with Graphviz.
//
// Every box becomes a node and every author binding an edge from owner to
// target, labelled with its axis, sites and offset. Containment is drawn
// as grey dotted edges so the tree stays visible without constraining the
// binding edges. The output is useful for spotting cycles, which the
// layout engine only reports by entity count.
package bindgraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pulsegrid/pkg/diagram"
	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
)

// Options configures the DOT output.
type Options struct {
	// Tree adds dotted parent-to-child edges.
	Tree bool
	// Detailed adds the outer rectangle to node labels.
	Detailed bool
}

// ToDOT converts the boxes and bindings of g to Graphviz DOT.
func ToDOT(g diagram.Geometry, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	for _, b := range g.Boxes {
		fmt.Fprintf(&buf, "  %q [%s];\n", string(b.ID), strings.Join(nodeAttrs(b, opts.Detailed), ", "))
	}

	if opts.Tree {
		buf.WriteString("\n")
		for _, b := range g.Boxes {
			if b.Parent == "" {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q [style=dotted, color=grey, arrowhead=none, constraint=false];\n", string(b.Parent), string(b.ID))
		}
	}

	buf.WriteString("\n")
	for _, bd := range g.Bindings {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", string(bd.Owner), string(bd.Target), edgeLabel(bd))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(b diagram.Box, detailed bool) []string {
	name := b.Label
	if name == "" {
		name = string(b.ID)
	}
	lines := []string{name}
	if b.Kind != "" && b.Kind != "box" {
		lines = append(lines, b.Kind)
	}
	if detailed {
		lines = append(lines, fmt.Sprintf("%g,%g %gx%g", b.Outer.X, b.Outer.Y, b.Outer.W, b.Outer.H))
	}
	attrs := []string{fmt.Sprintf("label=%q", strings.Join(lines, "\n"))}
	if !b.IsLeaf() {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

func edgeLabel(b geom.Binding) string {
	label := fmt.Sprintf("%s %s→%s", b.Axis, b.OwnerSite, b.TargetSite)
	if b.Offset != 0 {
		label += fmt.Sprintf(" %+g", b.Offset)
	}
	if !b.Content {
		label += " outer"
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized root element with one
// whose width and height match the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
