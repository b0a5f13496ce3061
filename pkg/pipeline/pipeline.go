// Package pipeline runs the parse → layout → render stages shared by the
// CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: lower DSL source to a snapshot, or decode a JSON snapshot
//  2. Layout: build the tree, run the engine and resolve the geometry
//  3. Render: produce wireframe or binding-graph artifacts per format
//
// Layout and render results are cached by content hash. Each stage can be
// run on its own through a [Runner].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  src,
//	    Formats: []string{"svg", "pdf"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	snap, err := pipeline.Parse(opts)
//	geo, err := runner.Layout(ctx, snap, opts)
//	artifacts, err := runner.Render(ctx, geo, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pulsegrid/pkg/cache"
	"github.com/matzehuels/pulsegrid/pkg/config"
	"github.com/matzehuels/pulsegrid/pkg/diagram"
	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
	"github.com/matzehuels/pulsegrid/pkg/layout"
	"github.com/matzehuels/pulsegrid/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultSourceName labels inline sources in error positions.
	DefaultSourceName = "<source>"

	// DefaultFormat is rendered when no format is requested.
	DefaultFormat = render.FormatSVG

	// DefaultStyle is the renderer used when none is requested.
	DefaultStyle = render.StyleWireframe
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run. It doubles as
// the JSON request body of the HTTP API.
type Options struct {
	// Parse options. Exactly one of Source and Snapshot is set.
	Source     string           `json:"source,omitempty"`
	SourceName string           `json:"source_name,omitempty"`
	Snapshot   *layout.Snapshot `json:"snapshot,omitempty"`

	// Layout options
	Precision *int      `json:"precision,omitempty"`
	Strict    bool      `json:"strict,omitempty"`
	MaxSettle int       `json:"max_settle,omitempty"`
	MinCell   geom.Size `json:"min_cell,omitempty"`
	AxisRow   *int      `json:"axis_row,omitempty"`

	// Render options
	Formats []string       `json:"formats,omitempty"`
	Style   string         `json:"style,omitempty"`
	Render  render.Options `json:"render"`

	// Runtime options (not serialized)
	Logger  *log.Logger `json:"-"`
	Refresh bool        `json:"-"`

	validated bool
}

// FromConfig returns options carrying the layout and render sections of c.
func FromConfig(c config.Config) Options {
	precision := c.Layout.Precision
	axisRow := c.Layout.AxisRow
	opts := Options{
		Precision: &precision,
		Strict:    c.Layout.Strict,
		MaxSettle: c.Layout.MaxSettle,
		MinCell:   geom.Size{W: c.Layout.MinCellWidth, H: c.Layout.MinCellHeight},
		AxisRow:   &axisRow,
		Style:     DefaultStyle,
		Render:    render.FromConfig(c.Render),
	}
	if c.Render.Format != "" {
		opts.Formats = []string{c.Render.Format}
	}
	return opts
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Snapshot  layout.Snapshot
	Geometry  diagram.Geometry
	Report    *layout.Report
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes      int
	Bindings   int
	Cycles     int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // geometry came from cache
	RenderHit bool // every artifact came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults for the
// full pipeline. Calling it again has no effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks that exactly one input is present.
func (o *Options) ValidateForParse() error {
	switch {
	case o.Source == "" && o.Snapshot == nil:
		return errors.New(errors.ErrCodeInvalidInput, "source or snapshot is required")
	case o.Source != "" && o.Snapshot != nil:
		return errors.New(errors.ErrCodeInvalidInput, "source and snapshot are mutually exclusive")
	}
	if o.SourceName == "" {
		o.SourceName = DefaultSourceName
	}
	o.setLogger()
	return nil
}

// ValidateForLayout checks engine settings and applies defaults.
func (o *Options) ValidateForLayout() error {
	if o.Precision != nil && (*o.Precision < 0 || *o.Precision > 9) {
		return errors.New(errors.ErrCodeInvalidInput, "precision must be between 0 and 9")
	}
	if o.MaxSettle < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_settle must not be negative")
	}
	if o.MaxSettle == 0 {
		o.MaxSettle = layout.DefaultMaxSettle
	}
	if o.MinCell.W < 0 || o.MinCell.H < 0 {
		return errors.New(errors.ErrCodeNegativeSize, "min_cell %v", o.MinCell)
	}
	if o.AxisRow != nil && *o.AxisRow < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "axis_row must not be negative")
	}
	o.setLogger()
	return nil
}

// ValidateForRender checks formats against the chosen renderer.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	for _, f := range o.Formats {
		if err := render.ValidateStyle(o.Style, f); err != nil {
			return err
		}
	}
	// Unstyled requests take the default styling.
	if o.Render.Outline == "" && o.Render.Stroke == 0 {
		font, tree := o.Render.Font, o.Render.Tree
		o.Render = render.DefaultOptions()
		o.Render.Font, o.Render.Tree = font, tree
	}
	o.setLogger()
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	precision := -1
	if o.Precision != nil {
		precision = *o.Precision
	}
	return cache.LayoutKeyOpts{
		Precision: precision,
		Strict:    o.Strict,
		MaxSettle: o.MaxSettle,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	theme := o.Render.Theme()
	if len(o.Render.Font) > 0 {
		theme += "|" + cache.Hash(o.Render.Font)
	}
	return cache.ArtifactKeyOpts{
		Format:   format,
		Renderer: o.Style,
		Stroke:   o.Render.Stroke,
		Margin:   o.Render.Margin,
		Theme:    theme,
	}
}
