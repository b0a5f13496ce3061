package geom

import (
	"math"

	"github.com/matzehuels/pulsegrid/pkg/errors"
)

// Binding copies a reference point of its owner onto a reference point of
// its target along one axis.
type Binding struct {
	Owner      ID      `json:"owner"`
	Target     ID      `json:"target"`
	Axis       Axis    `json:"axis"`
	OwnerSite  Site    `json:"owner_site"`
	TargetSite Site    `json:"target_site"`
	Offset     float64 `json:"offset,omitempty"`
	// Content writes the target's content box instead of its outer box.
	// The owner is always read in content space.
	Content bool `json:"content"`
	// Managed marks bindings a layout container maintains for its children.
	Managed bool `json:"managed,omitempty"`
}

// BindOption configures a binding created by Box.Bind.
type BindOption func(*Binding)

// WithOffset adds a constant to the owner's coordinate.
func WithOffset(d float64) BindOption {
	return func(b *Binding) { b.Offset = d }
}

// WithContent selects whether the target's content box (the default) or its
// outer box receives the coordinate.
func WithContent(content bool) BindOption {
	return func(b *Binding) { b.Content = content }
}

// Managed tags a binding as owned by a layout container rather than an author.
func Managed() BindOption {
	return func(b *Binding) { b.Managed = true }
}

// Bindings returns a copy of b's outgoing bindings in creation order.
func (b *Box) Bindings() []Binding {
	return append([]Binding(nil), b.outgoing...)
}

// BoundBy reports how many bindings target b, grouped by owner.
func (b *Box) BoundBy() map[ID]int {
	out := make(map[ID]int, len(b.incoming))
	for id, n := range b.incoming {
		out[id] = n
	}
	return out
}

// Bind adds a binding from b to target along axis.
//
// When the target is not in Grow mode on that axis, at most one binding from
// b to (target, axis) is kept and a new call replaces the old one in place.
// Grow targets accept several bindings so that one can pin the near edge and
// another the far edge.
func (b *Box) Bind(target *Box, axis Axis, ownerSite, targetSite Site, opts ...BindOption) error {
	if target == nil {
		return errors.New(errors.ErrCodeMissingOwner, "bind from %s: nil target", b.describe())
	}
	if target.scene != b.scene {
		return errors.New(errors.ErrCodeInvalidInput, "bind from %s: target %s belongs to another scene", b.describe(), target.describe())
	}
	nb := Binding{
		Owner:      b.id,
		Target:     target.id,
		Axis:       axis,
		OwnerSite:  ownerSite,
		TargetSite: targetSite,
		Content:    true,
	}
	for _, opt := range opts {
		opt(&nb)
	}

	if target.mode[axis] == Grow {
		b.appendBinding(target, nb)
		return nil
	}

	replaced := false
	kept := b.outgoing[:0]
	for _, ex := range b.outgoing {
		if ex.Target == nb.Target && ex.Axis == nb.Axis {
			if replaced {
				target.dropIncoming(b.id)
				continue
			}
			ex = nb
			replaced = true
		}
		kept = append(kept, ex)
	}
	b.outgoing = kept
	if !replaced {
		b.appendBinding(target, nb)
	}
	return nil
}

func (b *Box) appendBinding(target *Box, nb Binding) {
	b.outgoing = append(b.outgoing, nb)
	if target.incoming == nil {
		target.incoming = make(map[ID]int)
	}
	target.incoming[b.id]++
}

func (b *Box) dropIncoming(owner ID) {
	if b.incoming[owner] <= 1 {
		delete(b.incoming, owner)
		return
	}
	b.incoming[owner]--
}

// ClearBindings removes b's outgoing bindings on the given axes, or on both
// axes when none are given. It returns the number removed.
func (b *Box) ClearBindings(axes ...Axis) int {
	return b.removeWhere(func(bd Binding) bool { return onAxes(bd.Axis, axes) })
}

// ClearBindsTo removes b's bindings to target on the given axes, or on both
// axes when none are given. It returns the number removed.
func (b *Box) ClearBindsTo(target ID, axes ...Axis) int {
	return b.removeWhere(func(bd Binding) bool {
		return bd.Target == target && onAxes(bd.Axis, axes)
	})
}

// ClearManagedBindsTo is ClearBindsTo restricted to bindings created with
// Managed, leaving author bindings to target in place.
func (b *Box) ClearManagedBindsTo(target ID, axes ...Axis) int {
	return b.removeWhere(func(bd Binding) bool {
		return bd.Managed && bd.Target == target && onAxes(bd.Axis, axes)
	})
}

func (b *Box) removeWhere(match func(Binding) bool) int {
	removed := 0
	kept := b.outgoing[:0]
	for _, bd := range b.outgoing {
		if !match(bd) {
			kept = append(kept, bd)
			continue
		}
		if t := b.scene.boxes[bd.Target]; t != nil {
			t.dropIncoming(b.id)
		}
		removed++
	}
	clear(b.outgoing[len(kept):])
	b.outgoing = kept
	return removed
}

func onAxes(a Axis, axes []Axis) bool {
	if len(axes) == 0 {
		return true
	}
	for _, x := range axes {
		if x == a {
			return true
		}
	}
	return false
}

// EnforceBindings applies b's bindings in creation order and returns the
// number of targets written.
//
// A binding whose owner coordinate is unresolved, or whose target cannot
// take the write yet, is skipped with a debug diagnostic. Values within one
// rounding step of the target's current coordinate are left alone, so a
// second call on unchanged state writes nothing.
func (b *Box) EnforceBindings() (int, error) {
	writes := 0
	logger := b.scene.logger
	for _, bd := range b.Bindings() {
		target := b.scene.boxes[bd.Target]
		if target == nil {
			logger.Debug("binding target released", "owner", b.id, "target", bd.Target)
			continue
		}
		v, err := b.Site(bd.Axis, bd.OwnerSite, true)
		if errors.Is(err, errors.ErrCodeUnsetCoordinate) {
			logger.Debug("skip binding: owner unresolved", "owner", b.describe(), "axis", bd.Axis)
			continue
		}
		if err != nil {
			return writes, err
		}
		v = b.round(v + bd.Offset)

		if cur, err := target.Site(bd.Axis, bd.TargetSite, bd.Content); err == nil && math.Abs(cur-v) <= tolerance(bd.TargetSite, b.step()) {
			continue
		}

		target.displaced = true
		err = target.SetSite(bd.Axis, bd.TargetSite, v, bd.Content)
		target.displaced = false
		if errors.Is(err, errors.ErrCodeUnsetCoordinate) {
			logger.Debug("skip binding: target unresolved", "target", target.describe(), "axis", bd.Axis)
			continue
		}
		if err != nil {
			return writes, err
		}
		b.scene.markDisplaced(target.id)
		writes++
	}
	return writes, nil
}

// tolerance is the largest difference treated as "already there". A centre
// is rounded after halving the extent, so it may land one step off.
func tolerance(s Site, step float64) float64 {
	if s == Centre {
		return step * 1.001
	}
	return step / 2
}
