// Package dsl parses the pulsegrid authoring language into layout snapshots.
//
// A source file declares one diagram:
//
//	diagram "FID" precision 2 {
//	  grid channel axis 1 {
//	    bar   rf  size 120x4 grid 1,0 span 1x4 grow x
//	    pulse p90 size 10x30 column 1 top align centre
//	    pulse g1  size 20x10 column 2 both sections 2
//	    label lbl size 24x8  grid 0,0 bind p90 x near centre
//	  }
//	}
//
// Containers are grid, stack and group; leaves are box, bar, label, pulse
// and annotation. Placement attributes depend on the parent: grid children
// take "grid R,C", "span RxC", "align", "omit" or the pulse attributes
// "column", "top|bottom|both" and "sections"; stack children take "align"
// and "omit"; group children take "at X,Y". A diagram with several
// top-level entities is wrapped in a vertical stack.
//
// "bind T axis s1 s2 [by N] [outer]" makes the declaring entity the owner of
// a binding: T's s2 site follows the entity's s1 site plus N.
package dsl

import (
	"io"
	"os"
	"strings"

	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
	"github.com/matzehuels/pulsegrid/pkg/layout"
)

// Option adjusts lowering.
type Option func(*lowerer)

// WithGridDefaults sets the minimum cell size and axis row of grids that do
// not declare their own.
func WithGridDefaults(minCell geom.Size, axisRow int) Option {
	return func(l *lowerer) {
		l.grid.MinCell = minCell
		l.grid.AxisRow = axisRow
	}
}

// Parse reads a diagram source and lowers it to a snapshot. name is used in
// error positions.
func Parse(name string, r io.Reader, opts ...Option) (layout.Snapshot, error) {
	f, err := fileParser.Parse(name, r)
	if err != nil {
		return layout.Snapshot{}, errors.Wrap(errors.ErrCodeInvalidSource, err, "parse %s", name)
	}
	return Lower(f, opts...)
}

// ParseString parses src.
func ParseString(name, src string, opts ...Option) (layout.Snapshot, error) {
	return Parse(name, strings.NewReader(src), opts...)
}

// ParseFile parses the file at path.
func ParseFile(path string, opts ...Option) (layout.Snapshot, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return layout.Snapshot{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return layout.Snapshot{}, err
	}
	defer f.Close()
	return Parse(path, f, opts...)
}

// ParseAST returns the syntax tree without lowering it.
func ParseAST(name string, r io.Reader) (*File, error) {
	f, err := fileParser.Parse(name, r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "parse %s", name)
	}
	return f, nil
}
