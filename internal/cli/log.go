// Package cli implements the pulsegrid command-line interface.
//
// Commands turn diagram sources into snapshots, geometry and rendered
// artifacts, and serve the same pipeline over HTTP. The CLI is built on
// cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - parse: lower DSL source to a JSON snapshot
//   - layout: compute geometry JSON from DSL or a snapshot
//   - render: draw wireframes (SVG, PDF) or binding graphs (DOT, SVG)
//   - check: run the engine and report binding cycles
//   - inspect: browse resolved boxes in a terminal table
//   - serve: run the HTTP API
//   - cache, config: manage local state
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with timestamps
// formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
// Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond, e.g.
// "Settled 12 boxes (3ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
