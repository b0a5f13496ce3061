package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/pipeline"
)

// checkCommand creates the check command, which lays out a diagram without
// caching and reports what the engine found.
func (c *CLI) checkCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "check [diagram.pg|snapshot.json|-]",
		Short: "Validate a diagram and report binding cycles",
		Long: `Validate a diagram and report binding cycles.

Check parses the input, runs the layout engine and prints the settle
rounds, displaced entities and every binding cycle. A cycle is broken by
ignoring one of its bindings, so the layout still completes; with --strict
any cycle makes check fail.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), args[0], flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, input string, flags layoutFlags) error {
	opts, err := c.pipelineOptions(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	flags.apply(&opts)
	// Strictness is applied after reporting so every cycle is listed.
	strict := opts.Strict
	opts.Strict = false

	prog := newProgress(c.Logger)
	snap, err := pipeline.Parse(opts)
	if err != nil {
		return err
	}
	geo, report, err := pipeline.ComputeLayout(ctx, snap, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Laid out %d boxes", len(geo.Boxes)))

	printKeyValue("diagram", displayName(snap.Name, input))
	printKeyValue("frame", frameSize(geo.Frame))
	printKeyValue("boxes", fmt.Sprint(len(geo.Boxes)))
	printKeyValue("bindings", fmt.Sprint(len(geo.Bindings)))
	printKeyValue("settle", fmt.Sprint(report.SettleRounds))
	printKeyValue("displaced", fmt.Sprint(report.Displaced))
	printNewline()

	if len(report.Cycles) == 0 {
		printSuccess("No binding cycles")
		return nil
	}
	printCycles(report)
	if strict {
		return report.Cycles[0].Err()
	}
	printInfo("%s ignored to break the cycles; use --strict to fail", plural(len(report.Cycles), "binding", "bindings"))
	return nil
}

// ExitCode maps a command error to a process exit status: 2 for invalid
// input, 3 for layout failures and 1 otherwise.
func ExitCode(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSource, errors.ErrCodeInvalidSnapshot,
		errors.ErrCodeInvalidFormat, errors.ErrCodeFileNotFound:
		return 2
	case errors.ErrCodeBindingCycle, errors.ErrCodeCellOccupied, errors.ErrCodeMissingOwner,
		errors.ErrCodeUnsetCoordinate, errors.ErrCodeNegativeSize, errors.ErrCodeInvalidRegion:
		return 3
	}
	return 1
}
