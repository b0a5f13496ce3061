package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pulsegrid/pkg/diagram"
	"github.com/matzehuels/pulsegrid/pkg/geom"
	"github.com/matzehuels/pulsegrid/pkg/layout"
	"github.com/matzehuels/pulsegrid/pkg/pipeline"
)

// layoutFlags are the engine flags shared by layout, render and check.
// Zero values keep the configured setting.
type layoutFlags struct {
	strict    bool
	precision int
	maxSettle int
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on binding cycles instead of reporting them")
	cmd.Flags().IntVar(&f.precision, "precision", -1, "decimal places kept by snapping (default from config)")
	cmd.Flags().IntVar(&f.maxSettle, "max-settle", 0, "maximum settle rounds (default from config)")
}

func (f *layoutFlags) apply(opts *pipeline.Options) {
	if f.strict {
		opts.Strict = true
	}
	if f.precision >= 0 {
		p := f.precision
		opts.Precision = &p
	}
	if f.maxSettle > 0 {
		opts.MaxSettle = f.maxSettle
	}
}

// layoutCommand creates the layout command, which writes resolved geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [diagram.pg|snapshot.json|-]",
		Short: "Compute box geometry for a diagram",
		Long: `Compute box geometry for a diagram.

The input is DSL source or a JSON snapshot (produced by 'parse'). The
output is a geometry file listing every box with its outer and content
rectangles, render offset and, for grids, the resolved row and column
edges. Render it with 'render', or feed it to your own drawing code.

Results are cached by snapshot content, so unchanged diagrams are not
laid out twice.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, noCache, refresh, flags)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute and overwrite cached results")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output string, noCache, refresh bool, flags layoutFlags) error {
	opts, err := c.pipelineOptions(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	flags.apply(&opts)
	opts.Refresh = refresh

	snap, err := pipeline.Parse(opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	geo, report, cacheHit, err := runner.LayoutWithCacheInfo(ctx, snap, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	path := outputPath(input, output, ".layout.json")
	if err := diagram.WriteGeometryFile(geo, path); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	printSuccess("Layout complete: %s", frameSize(geo.Frame))
	printFile(path)
	printCycles(report)
	printStats(diagramStats{
		boxes:    len(geo.Boxes),
		bindings: len(geo.Bindings),
		cycles:   cycleCount(report),
		cached:   cacheHit,
	})
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}

// printCycles lists the binding cycles found by the engine. Cached layouts
// carry no report.
func printCycles(report *layout.Report) {
	if report == nil {
		return
	}
	for _, cyc := range report.Cycles {
		printWarning("binding cycle on %s: %s", cyc.Axis, joinIDs(cyc.IDs))
	}
}

func cycleCount(report *layout.Report) int {
	if report == nil {
		return 0
	}
	return len(report.Cycles)
}

func joinIDs(ids []geom.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, " → ")
}

func frameSize(r geom.Rect) string {
	return fmt.Sprintf("%gx%g", r.W, r.H)
}
