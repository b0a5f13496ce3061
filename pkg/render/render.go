// Package render turns resolved diagram geometry into artifacts.
//
// Two renderers live in subpackages:
//
//   - [wireframe] draws every box outline, content area and grid strip with
//     tdewolff/canvas, producing SVG or PDF.
//   - [bindgraph] draws the binding graph (boxes as nodes, bindings as
//     edges) through Graphviz, producing DOT or SVG.
//
// The JSON format is the geometry itself and needs no renderer; the
// pipeline encodes it directly.
//
// Options carries the styling shared by both renderers. [FromConfig] builds
// it from the [render] section of pulsegrid.toml.
package render

import (
	"fmt"

	"github.com/matzehuels/pulsegrid/pkg/config"
	"github.com/matzehuels/pulsegrid/pkg/errors"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// Renderer styles.
const (
	StyleWireframe = "wireframe"
	StyleBindings  = "bindings"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatPDF, FormatDOT, FormatJSON}

// Options styles a rendering. Colours are hex strings such as "#1f2937".
type Options struct {
	Stroke  float64 `json:"stroke"`
	Margin  float64 `json:"margin"`
	Outline string  `json:"outline"`
	Content string  `json:"content"`
	Grid    string  `json:"grid"`
	// ShowGrid draws the row and column edges of every grid.
	ShowGrid bool `json:"show_grid"`
	// ShowLabels draws element labels. It needs Font.
	ShowLabels bool `json:"show_labels"`
	// Tree adds containment edges to binding graphs.
	Tree bool `json:"tree,omitempty"`
	// Font is TrueType or OpenType data used for labels.
	Font []byte `json:"-"`
}

// Theme summarizes the colours and toggles. Stroke, margin and font are
// not part of it.
func (o Options) Theme() string {
	return fmt.Sprintf("%s|%s|%s|grid=%t|labels=%t|tree=%t", o.Outline, o.Content, o.Grid, o.ShowGrid, o.ShowLabels, o.Tree)
}

// DefaultOptions returns the styling of a default config.
func DefaultOptions() Options {
	return FromConfig(config.Default().Render)
}

// FromConfig copies the render section of a config.
func FromConfig(c config.Render) Options {
	return Options{
		Stroke:     c.Stroke,
		Margin:     c.Margin,
		Outline:    c.Outline,
		Content:    c.Content,
		Grid:       c.Grid,
		ShowGrid:   c.ShowGrid,
		ShowLabels: c.ShowLabel,
	}
}

// ValidateFormat reports whether format is one of [Formats].
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, Formats...)
}

// ValidateStyle reports whether style names a renderer that can produce
// format. Wireframes come as SVG or PDF, binding graphs as DOT or SVG.
func ValidateStyle(style, format string) error {
	switch style {
	case StyleWireframe:
		return errors.ValidateFormat(format, FormatSVG, FormatPDF, FormatJSON)
	case StyleBindings:
		return errors.ValidateFormat(format, FormatDOT, FormatSVG, FormatJSON)
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown render style %q (want %s or %s)", style, StyleWireframe, StyleBindings)
}
