package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pulsegrid/pkg/diagram"
	"github.com/matzehuels/pulsegrid/pkg/layout"
	"github.com/matzehuels/pulsegrid/pkg/pipeline"
)

// parseCommand creates the parse command, which lowers DSL source to a
// JSON snapshot.
func (c *CLI) parseCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "parse [diagram.pg|-]",
		Short: "Lower diagram source to a JSON snapshot",
		Long: `Lower diagram source to a JSON snapshot.

The snapshot is the engine's input format: every entity with its size,
sizing modes, padding and placement, plus the bindings between entities.
Snapshots can be edited by hand or generated by other tools and passed to
'layout' and 'render' in place of DSL source.

Grids that do not declare a minimum cell size or axis row take the values
from the [layout] section of the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.snapshot.json)")

	return cmd
}

func (c *CLI) runParse(input, output string) error {
	opts, err := c.pipelineOptions(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	snap, err := pipeline.Parse(opts)
	if err != nil {
		return err
	}

	path := outputPath(input, output, ".snapshot.json")
	if err := diagram.WriteSnapshotFile(snap, path); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	printSuccess("Parsed %s", displayName(snap.Name, input))
	printFile(path)
	printStats(diagramStats{boxes: countEntities(snap.Root), bindings: len(snap.Bindings)})
	printNewline()
	printNextStep("Lay out", appName+" layout "+path)
	return nil
}

// countEntities counts n and its descendants.
func countEntities(n layout.NodeSnapshot) int {
	count := 1
	for _, child := range n.Children {
		count += countEntities(child)
	}
	return count
}

func displayName(name, input string) string {
	if name != "" {
		return name
	}
	return input
}
