// Package diagram reads and writes layout snapshots and resolved geometry.
//
// A [layout.Snapshot] is the editable description of a diagram: entities,
// placements and author bindings. A [Geometry] is what a layout run produces
// from it: one [Box] per entity with every coordinate resolved, in tree
// order. Renderers consume geometry only.
//
// # Files
//
// Both forms are indented JSON:
//
//	snap, err := diagram.ReadSnapshotFile("fid.json")
//	root, err := layout.Build(snap)
//	_, err = layout.NewEngine(logger).Run(root, geom.Point{})
//	g, err := diagram.Resolve(root)
//	err = diagram.WriteGeometryFile(g, "fid.geometry.json")
package diagram
