package pipeline

import (
	"strings"

	"github.com/matzehuels/pulsegrid/pkg/diagram"
	"github.com/matzehuels/pulsegrid/pkg/dsl"
	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/layout"
)

// Parse turns the input of opts into a snapshot. A source whose first
// non-blank character is '{' is decoded as a JSON snapshot; anything else
// is DSL.
func Parse(opts Options) (layout.Snapshot, error) {
	if err := opts.ValidateForParse(); err != nil {
		return layout.Snapshot{}, err
	}
	if opts.Snapshot != nil {
		if err := errors.ValidateSnapshotVersion(opts.Snapshot.Version); err != nil {
			return layout.Snapshot{}, err
		}
		return *opts.Snapshot, nil
	}
	if IsSnapshotJSON(opts.Source) {
		return diagram.ReadSnapshot(strings.NewReader(opts.Source))
	}
	return dsl.ParseString(opts.SourceName, opts.Source, dslOptions(opts)...)
}

// IsSnapshotJSON reports whether src looks like a JSON snapshot.
func IsSnapshotJSON(src string) bool {
	return strings.HasPrefix(strings.TrimSpace(src), "{")
}

func dslOptions(opts Options) []dsl.Option {
	if opts.AxisRow == nil && opts.MinCell.W == 0 && opts.MinCell.H == 0 {
		return nil
	}
	axisRow := layout.DefaultAxisRow
	if opts.AxisRow != nil {
		axisRow = *opts.AxisRow
	}
	return []dsl.Option{dsl.WithGridDefaults(opts.MinCell, axisRow)}
}
