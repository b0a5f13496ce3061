package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pulsegrid/pkg/render"
)

// renderOpts holds the render command flags that are not engine settings.
type renderOpts struct {
	output  string
	formats string
	style   string
	font    string
	noGrid  bool
	tree    bool
	noCache bool
	refresh bool
	layout  layoutFlags
}

// renderCommand creates the render command, which runs the whole pipeline.
func (c *CLI) renderCommand() *cobra.Command {
	var ro renderOpts

	cmd := &cobra.Command{
		Use:   "render [diagram.pg|snapshot.json|-]",
		Short: "Render a diagram to SVG, PDF, DOT or JSON",
		Long: `Render a diagram to SVG, PDF, DOT or JSON.

Two styles are available:

  wireframe  outer and content rectangles of every box, with grid lines
             (formats: svg, pdf, json)
  bindings   the binding graph, one node per box and one edge per binding
             (formats: dot, svg, json)

Labels are drawn only when a font is given with --font. Colours, stroke
and margin come from the [render] section of the config file.

With several formats, --output is a base path and each format gets its own
extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s), comma-separated (default from config)")
	cmd.Flags().StringVarP(&ro.style, "style", "s", render.StyleWireframe, "renderer: wireframe, bindings")
	cmd.Flags().StringVar(&ro.font, "font", "", "TrueType/OpenType font for labels")
	cmd.Flags().BoolVar(&ro.noGrid, "no-grid", false, "omit grid row and column lines")
	cmd.Flags().BoolVar(&ro.tree, "tree", false, "add containment edges to binding graphs")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&ro.refresh, "refresh", false, "recompute and overwrite cached results")
	ro.layout.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, ro renderOpts) error {
	opts, err := c.pipelineOptions(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	ro.layout.apply(&opts)
	opts.Refresh = ro.refresh
	opts.Style = ro.style
	if formats := parseFormats(ro.formats); formats != nil {
		opts.Formats = formats
	}
	if ro.noGrid {
		opts.Render.ShowGrid = false
	}
	opts.Render.Tree = ro.tree
	if ro.font != "" {
		if opts.Render.Font, err = os.ReadFile(ro.font); err != nil {
			return fmt.Errorf("read font: %w", err)
		}
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := artifactPaths(input, ro.output, opts.Style, opts.Formats)
	if err := writeArtifacts(result.Artifacts, opts.Formats, paths); err != nil {
		return err
	}

	printSuccess("Rendered %s", displayName(result.Snapshot.Name, input))
	for _, p := range paths {
		printFile(p)
	}
	printCycles(result.Report)
	printStats(diagramStats{
		boxes:    result.Stats.Nodes,
		bindings: result.Stats.Bindings,
		cycles:   result.Stats.Cycles,
		cached:   result.CacheInfo.RenderHit,
	})
	return nil
}

// artifactPaths returns one output path per format. A single format with
// an explicit output is written to that path; otherwise output (or the
// input name) is a base path that each format extends.
func artifactPaths(input, output, style string, formats []string) []string {
	if output != "" && len(formats) == 1 {
		return []string{output}
	}
	base := outputPath(input, "", "")
	if output != "" {
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}
	paths := make([]string, len(formats))
	for i, format := range formats {
		paths[i] = base + artifactExt(format, style)
	}
	return paths
}

// writeArtifacts writes artifacts[formats[i]] to paths[i].
func writeArtifacts(artifacts map[string][]byte, formats, paths []string) error {
	for i, format := range formats {
		if err := os.WriteFile(paths[i], artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", paths[i], err)
		}
	}
	return nil
}

func artifactExt(format, style string) string {
	switch {
	case format == render.FormatJSON:
		return ".layout.json"
	case style == render.StyleBindings:
		return ".bindings." + format
	}
	return "." + format
}
