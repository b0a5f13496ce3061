package dsl

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Comment", Pattern: `(?:#|//)[^\n]*`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Dim", Pattern: `\d+(?:\.\d+)?x\d+(?:\.\d+)?`},
		{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[{},]`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.Unquote("String"),
		participle.UseLookahead(2),
	)
)

// File is the root of a diagram source.
type File struct {
	Pos       lexer.Position `parser:"" json:"-"`
	Name      string         `parser:"'diagram' @String"`
	Precision *int           `parser:"( 'precision' @Number )?"`
	Entities  []*Entity      `parser:"'{' @@* '}'"`
}

// Entity declares a container or a leaf element. Its name doubles as the
// entity id and must be unique within the file.
type Entity struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Kind     string         `parser:"@('grid' | 'stack' | 'group' | 'box' | 'bar' | 'label' | 'pulse' | 'annotation')"`
	Name     string         `parser:"@Ident"`
	Attrs    []*Attr        `parser:"@@*"`
	Children []*Entity      `parser:"( '{' @@* '}' )?"`
}

// Attr is one keyword-led attribute. Exactly one field is set.
type Attr struct {
	Pos         lexer.Position `parser:"" json:"-"`
	Size        *string        `parser:"  'size' @Dim"`
	Pad         []float64      `parser:"| 'pad' @Number+"`
	Offset      *Pair          `parser:"| 'offset' @@"`
	Mode        *ModeAttr      `parser:"| @@"`
	Cell        *Cell          `parser:"| 'grid' @@"`
	Span        *string        `parser:"| 'span' @Dim"`
	Align       *AlignAttr     `parser:"| 'align' @@"`
	Column      *int           `parser:"| 'column' @Number"`
	Orientation *string        `parser:"| @('top' | 'bottom' | 'both')"`
	Sections    *int           `parser:"| 'sections' @Number"`
	At          *Point         `parser:"| 'at' @@"`
	Omit        *string        `parser:"| 'omit' @('width' | 'height')"`
	Axis        *string        `parser:"| 'axis' @(Number | Ident)"`
	Min         *string        `parser:"| 'min' @Dim"`
	Extra       *Reservation   `parser:"| 'extra' @@"`
	Ghost       *Reservation   `parser:"| 'ghost' @@"`
	Bind        *BindAttr      `parser:"| 'bind' @@"`
}

// Pair is two whitespace-separated numbers.
type Pair struct {
	A float64 `parser:"@Number"`
	B float64 `parser:"@Number"`
}

// Point is X,Y.
type Point struct {
	X float64 `parser:"@Number ','"`
	Y float64 `parser:"@Number"`
}

// Cell is R,C.
type Cell struct {
	Row int `parser:"@Number ','"`
	Col int `parser:"@Number"`
}

// ModeAttr sets the size mode of one axis, or both when Axis is empty.
// The mode keyword may be written without the leading "mode".
type ModeAttr struct {
	Mode string `parser:"'mode'? @('fixed' | 'fit' | 'grow')"`
	Axis string `parser:"@('x' | 'y')?"`
}

// AlignAttr holds one or two sites.
type AlignAttr struct {
	First  string  `parser:"@('near' | 'centre' | 'center' | 'middle' | 'far' | 'start' | 'end')"`
	Second *string `parser:"@('near' | 'centre' | 'center' | 'middle' | 'far' | 'start' | 'end')?"`
}

// Reservation is R,C WxH.
type Reservation struct {
	At   *Cell  `parser:"@@"`
	Size string `parser:"@Dim"`
}

// BindAttr makes the entity the owner of a binding onto Target.
type BindAttr struct {
	Target     string   `parser:"@Ident"`
	Axis       string   `parser:"@('x' | 'y')"`
	OwnerSite  string   `parser:"@('near' | 'centre' | 'center' | 'middle' | 'far' | 'start' | 'end')"`
	TargetSite string   `parser:"@('near' | 'centre' | 'center' | 'middle' | 'far' | 'start' | 'end')"`
	By         *float64 `parser:"( 'by' @Number )?"`
	Outer      bool     `parser:"@'outer'?"`
}
