package geom

import (
	"slices"

	"github.com/matzehuels/pulsegrid/pkg/errors"
)

// Cycle is a closed chain of same-axis bindings. IDs are in edge order and
// the last entity binds back to the first.
type Cycle struct {
	Axis Axis
	IDs  []ID
}

// Err converts c into a BINDING_CYCLE error.
func (c Cycle) Err() error {
	ids := make([]string, len(c.IDs))
	for i, id := range c.IDs {
		ids[i] = string(id)
	}
	return errors.Wrap(errors.ErrCodeBindingCycle, &errors.CycleError{Axis: c.Axis.String(), IDs: ids},
		"bindings on %s form a cycle", c.Axis)
}

// DetectCycles reports every back edge found by a depth-first walk of the
// binding graph, one axis at a time. Propagation does not consult the result;
// it exists so callers can refuse or warn about ambiguous layouts.
func (s *Scene) DetectCycles() []Cycle {
	var cycles []Cycle
	for _, axis := range Axes {
		cycles = append(cycles, s.cyclesOn(axis)...)
	}
	return cycles
}

func (s *Scene) cyclesOn(axis Axis) []Cycle {
	const (
		white = iota
		gray
		black
	)

	color := make(map[ID]int, len(s.boxes))
	var stack []ID
	var cycles []Cycle

	var dfs func(id ID)
	dfs = func(id ID) {
		color[id] = gray
		stack = append(stack, id)
		for _, bd := range s.boxes[id].outgoing {
			if bd.Axis != axis || s.boxes[bd.Target] == nil {
				continue
			}
			switch color[bd.Target] {
			case white:
				dfs(bd.Target)
			case gray:
				start := slices.Index(stack, bd.Target)
				cycles = append(cycles, Cycle{Axis: axis, IDs: slices.Clone(stack[start:])})
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
	}

	for _, id := range s.order {
		if s.boxes[id] != nil && color[id] == white {
			dfs(id)
		}
	}
	return cycles
}
