// Package geom provides the positioned-box primitive and the binding engine
// the layout packages are built on.
//
// # Overview
//
// A [Scene] owns every [Box] of one layout session. Boxes are addressed by
// [ID]; a box embeds an [Anchor] (its outer top-left corner, possibly unset),
// carries a content size, a [SizeMode] per axis, a self alignment and a
// [Padding]. The content box is the outer box inset by the padding.
//
// # Sites
//
// Every box has three reference points per axis: [Near], [Centre] and [Far].
// [Box.Site] reads one in content or outer space; [Box.SetSite] moves the box
// so the point lands on a value. Writing Far on a [Grow] box resizes it
// instead, which lets two bindings stretch a box between two owners.
//
// # Bindings
//
// [Box.Bind] records a directed rule copying a site of the owner onto a site
// of a target along one axis. [Box.EnforceBindings] applies them in creation
// order:
//
//	owner := scene.NewBox("axis")
//	bar := scene.NewBox("bar")
//	owner.Bind(bar, geom.X, geom.Centre, geom.Centre)
//	n, err := owner.EnforceBindings()
//
// Enforcement is idempotent and tolerant of unresolved owners. It performs
// no cycle detection; [Scene.DetectCycles] reports same-axis cycles for
// callers that want to warn or refuse.
//
// # Precision
//
// Coordinates and sizes are rounded to [DefaultPrecision] decimal places
// unless the scene is created with [WithPrecision].
package geom
