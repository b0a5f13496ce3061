package dsl_test

import (
	"fmt"

	"github.com/matzehuels/pulsegrid/pkg/dsl"
	"github.com/matzehuels/pulsegrid/pkg/geom"
	"github.com/matzehuels/pulsegrid/pkg/layout"
)

func ExampleParseString() {
	snap, err := dsl.ParseString("row.pg", `
diagram "row" {
  stack row axis x {
    box a size 10x10
    box b size 20x4 align far
  }
}`)
	if err != nil {
		fmt.Println(err)
		return
	}
	root, err := layout.Build(snap)
	if err != nil {
		fmt.Println(err)
		return
	}
	if _, err := layout.NewEngine(nil).Run(root, geom.Point{}); err != nil {
		fmt.Println(err)
		return
	}
	for _, ch := range root.Children() {
		p, _ := ch.Base().Position()
		fmt.Println(ch.Base().Label(), p.X, p.Y)
	}
	// Output:
	// a 0 0
	// b 10 6
}
