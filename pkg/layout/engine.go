package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
)

// DefaultMaxSettle bounds the number of follow-up rounds after the position
// pass.
const DefaultMaxSettle = 8

// Engine drives the three layout passes over a tree.
type Engine struct {
	Logger *log.Logger
	// Strict turns binding cycles into a BINDING_CYCLE error instead of a
	// warning.
	Strict bool
	// MaxSettle bounds the re-positioning rounds for containers moved by
	// bindings after the position pass.
	MaxSettle int
}

// Report summarizes one Run.
type Report struct {
	Cycles       []geom.Cycle
	SettleRounds int
	Displaced    int
	Nodes        int
}

// NewEngine returns an engine that logs to logger, or nowhere if nil.
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{Logger: logger, MaxSettle: DefaultMaxSettle}
}

// Run lays out root with its outer top-left at at: size, grow, position.
//
// Bindings that move a container after its subtree was positioned mark it
// displaced; such containers are positioned again, up to MaxSettle rounds.
func (e *Engine) Run(root Node, at geom.Point) (*Report, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeMissingOwner, "layout: nil root")
	}
	logger := e.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	scene := root.Base().Scene()
	report := &Report{}

	report.Cycles = scene.DetectCycles()
	for _, c := range report.Cycles {
		if e.Strict {
			return report, c.Err()
		}
		logger.Warn("binding cycle, result depends on creation order", "axis", c.Axis, "entities", len(c.IDs))
	}

	index := make(map[geom.ID]Node)
	_ = Walk(root, func(n Node, _ int) error {
		index[n.Base().ID()] = n
		return nil
	})
	report.Nodes = len(index)

	if err := root.ComputeSize(); err != nil {
		return report, err
	}
	if err := root.Grow(root.Base().Outer()); err != nil {
		return report, err
	}
	scene.ClearDisplaced()
	if err := root.ComputePositions(at); err != nil {
		return report, err
	}

	rounds := e.MaxSettle
	if rounds <= 0 {
		rounds = DefaultMaxSettle
	}
	for report.SettleRounds < rounds {
		moved := scene.Displaced()
		scene.ClearDisplaced()
		report.Displaced += len(moved)

		var containers []Node
		for _, id := range moved {
			if n := index[id]; n != nil && len(n.Children()) > 0 {
				containers = append(containers, n)
			}
		}
		if len(containers) == 0 {
			break
		}
		report.SettleRounds++
		for _, n := range containers {
			p, err := n.Base().Position()
			if err != nil {
				return report, err
			}
			if err := n.ComputePositions(p); err != nil {
				return report, err
			}
		}
	}
	if report.SettleRounds == rounds && len(scene.Displaced()) > 0 {
		logger.Warn("layout did not settle", "rounds", rounds)
	}
	logger.Debug("layout complete", "nodes", report.Nodes, "displaced", report.Displaced, "rounds", report.SettleRounds)
	return report, nil
}

// Walk visits root and its descendants depth-first in child order. A
// non-nil error from fn stops the walk.
func Walk(root Node, fn func(n Node, depth int) error) error {
	var visit func(n Node, depth int) error
	visit = func(n Node, depth int) error {
		if err := fn(n, depth); err != nil {
			return err
		}
		for _, ch := range n.Children() {
			if err := visit(ch, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(root, 0)
}
