package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/pulsegrid/pkg/diagram"
	"github.com/matzehuels/pulsegrid/pkg/geom"
	"github.com/matzehuels/pulsegrid/pkg/layout"
	"github.com/matzehuels/pulsegrid/pkg/observability"
)

// ComputeLayout builds the tree described by snap, lays it out at the
// origin and resolves its geometry. It reports to the pipeline hooks.
func ComputeLayout(ctx context.Context, snap layout.Snapshot, opts Options) (diagram.Geometry, *layout.Report, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return diagram.Geometry{}, nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, snap.Name)
	start := time.Now()

	geo, report, err := computeLayout(snap, opts)

	stats := observability.LayoutStats{Nodes: len(geo.Boxes), Bindings: len(geo.Bindings)}
	if report != nil {
		stats.Nodes = report.Nodes
		stats.Cycles = len(report.Cycles)
		stats.SettleRounds = report.SettleRounds
		for _, c := range report.Cycles {
			hooks.OnCycle(ctx, snap.Name, c.Axis.String(), len(c.IDs))
		}
	}
	hooks.OnLayoutComplete(ctx, snap.Name, stats, time.Since(start), err)
	return geo, report, err
}

func computeLayout(snap layout.Snapshot, opts Options) (diagram.Geometry, *layout.Report, error) {
	sceneOpts := []geom.Option{geom.WithLogger(opts.Logger)}
	if opts.Precision != nil && snap.Precision == nil {
		sceneOpts = append(sceneOpts, geom.WithPrecision(*opts.Precision))
	}
	root, err := layout.Build(snap, sceneOpts...)
	if err != nil {
		return diagram.Geometry{}, nil, err
	}
	defer root.Destroy()

	engine := layout.NewEngine(opts.Logger)
	engine.Strict = opts.Strict
	engine.MaxSettle = opts.MaxSettle
	report, err := engine.Run(root, geom.Point{})
	if err != nil {
		return diagram.Geometry{}, report, err
	}

	geo, err := diagram.Resolve(root)
	if err != nil {
		return diagram.Geometry{}, report, err
	}
	opts.Logger.Debug("resolved geometry",
		"boxes", len(geo.Boxes),
		"frame", geo.Frame,
		"settle_rounds", report.SettleRounds)
	return geo, report, nil
}
