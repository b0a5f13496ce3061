package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/pulsegrid/pkg/diagram"
	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/observability"
	"github.com/matzehuels/pulsegrid/pkg/render"
	"github.com/matzehuels/pulsegrid/pkg/render/bindgraph"
	"github.com/matzehuels/pulsegrid/pkg/render/wireframe"
)

// RenderGeometry produces one artifact per requested format.
func RenderGeometry(ctx context.Context, geo diagram.Geometry, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts := make(map[string][]byte, len(opts.Formats))
	var err error
	for _, format := range opts.Formats {
		var data []byte
		data, err = renderFormat(ctx, geo, format, opts)
		if err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInternal
			}
			err = errors.Wrap(code, err, "render %s", format)
			break
		}
		artifacts[format] = data
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, geo diagram.Geometry, format string, opts Options) ([]byte, error) {
	if format == render.FormatJSON {
		return diagram.MarshalGeometry(geo)
	}
	if opts.Style == render.StyleBindings {
		dot := bindgraph.ToDOT(geo, bindgraph.Options{Tree: opts.Render.Tree, Detailed: opts.Render.ShowLabels})
		if format == render.FormatDOT {
			return []byte(dot), nil
		}
		return bindgraph.RenderSVG(ctx, dot)
	}
	if format == render.FormatPDF {
		return wireframe.PDF(geo, opts.Render)
	}
	return wireframe.SVG(geo, opts.Render)
}
