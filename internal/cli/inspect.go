package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pulsegrid/pkg/diagram"
	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
	"github.com/matzehuels/pulsegrid/pkg/pipeline"
)

// inspectCommand creates the inspect command for browsing resolved boxes.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		plain   bool
		boxID   string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [diagram.pg|snapshot.json|layout.json|-]",
		Short: "Browse the resolved boxes of a diagram",
		Long: `Browse the resolved boxes of a diagram.

Inspect lays out the input (or reads a geometry file written by 'layout')
and opens an interactive table of every box with its outer rectangle and
render offset. Press enter for the content rectangle, padding, grid lines
and bindings of the selected box.

Use --plain to print the table without the interactive view, and --box to
print the details of one box.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			geo, err := c.loadGeometry(cmd.Context(), args[0], noCache)
			if err != nil {
				return err
			}
			switch {
			case boxID != "":
				box, ok := geo.Find(geom.ID(boxID))
				if !ok {
					return errors.New(errors.ErrCodeNotFound, "no box %q", boxID)
				}
				fmt.Fprintln(stdout, boxDetail(geo, box))
				return nil
			case plain:
				fmt.Fprintln(stdout, StyleTitle.Render(geometryTitle(geo)))
				fmt.Fprintln(stdout, boxTable(geo.Boxes, -1).Render())
				return nil
			}
			_, err = tea.NewProgram(NewBoxListModel(geo), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print the table and exit")
	cmd.Flags().StringVar(&boxID, "box", "", "print details of one box")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// loadGeometry reads a geometry file, or lays out DSL or snapshot input.
func (c *CLI) loadGeometry(ctx context.Context, input string, noCache bool) (diagram.Geometry, error) {
	if input != "-" {
		if geo, err := diagram.ReadGeometryFile(input); err == nil && len(geo.Boxes) > 0 {
			return geo, nil
		}
	}

	opts, err := c.pipelineOptions(input)
	if err != nil {
		return diagram.Geometry{}, fmt.Errorf("read %s: %w", input, err)
	}
	snap, err := pipeline.Parse(opts)
	if err != nil {
		return diagram.Geometry{}, err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return diagram.Geometry{}, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	return runner.Layout(ctx, snap, opts)
}
