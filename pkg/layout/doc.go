// Package layout arranges trees of padded boxes: leaves, free containers,
// linear stacks and spanning grids.
//
// # Passes
//
// Every entity implements [Node]. A layout runs three passes over a tree,
// driven by [Engine.Run]:
//
//  1. ComputeSize, children first: fit-mode containers derive their content
//     size from their children.
//  2. Grow, parents first: containers hand out space and grow-mode entities
//     take it.
//  3. ComputePositions, parents first: each container places itself, derives
//     its children's slots and binds or places them there.
//
// Sizes of leaves are supplied by the caller; this package performs no text
// measurement.
//
// # Containers
//
// [Container] keeps children at their [Free] offsets and fits their bounding
// union. [Stack] puts children back to back along one axis and centres them
// on the other. [Grid] is a matrix of cells where an element may span several
// rows and columns:
//
//	g := layout.NewGrid(scene, "channel")
//	bar := layout.NewElement(scene, "bar", "rf")
//	bar.Resize(120, 4)
//	bar.SetPlacement(layout.GridPlacement{Coords: layout.Coords{Row: 1}, Span: layout.Span{Rows: 1, Cols: 4}})
//	g.Add(bar)
//
// Grids support inserting and removing rows and columns while populated,
// ghost and extra reservations, and [PulsePlacement], which positions an
// element above, below or across the grid's axis row.
//
// # Snapshots
//
// [Export] turns a tree into a plain-data [Snapshot]; [Build] rebuilds an
// equivalent tree from one.
package layout
