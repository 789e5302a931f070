// Package ast defines the shape of the input AST the evaluator consumes
// (spec §3.1 Markup, §4.2 Expr/Literal/Param/Arg/Bind). The parser that
// produces these nodes is an external collaborator (spec §1) and is not
// part of this module; only the node shapes matter here.
//
// Grounded on gotypst's syntax/ast.go conventions (one concrete type per
// node kind, sealed by an unexported marker method) but sized to exactly
// the node set spec §3.1/§4.2 enumerate, and using a single-point Position
// instead of the teacher's byte-range Span (full ranges are an IDE/editor
// concern outside this evaluator's scope).
package ast

import "github.com/boergens/gotypst/internal/diag"

// MarkupNode is a single node in a markup stream (spec §3.1).
type MarkupNode interface {
	isMarkupNode()
}

// Markup is an ordered sequence of markup nodes.
type Markup []MarkupNode

// Text-like atoms, consumed by pTxt (spec §4.1).
type Text struct{ Value string }
type Space struct{}
type SoftBreak struct{}
type Nbsp struct{}
type Shy struct{}
type EmDash struct{}
type EnDash struct{}
type Ellipsis struct{}
type Quote struct{ Double bool } // Quote(char): true for '"', false for '\''

func (Text) isMarkupNode()      {}
func (Space) isMarkupNode()     {}
func (SoftBreak) isMarkupNode() {}
func (Nbsp) isMarkupNode()      {}
func (Shy) isMarkupNode()       {}
func (EmDash) isMarkupNode()    {}
func (EnDash) isMarkupNode()    {}
func (Ellipsis) isMarkupNode()  {}
func (Quote) isMarkupNode()     {}

// IsTextAtom reports whether n is one of the text-like atoms pTxt consumes.
func IsTextAtom(n MarkupNode) bool {
	switch n.(type) {
	case Text, Space, SoftBreak, Nbsp, Shy, EmDash, EnDash, Ellipsis, Quote:
		return true
	}
	return false
}

// Paragraph/line breaks, comments.
type ParBreak struct{}
type HardBreak struct{}
type Comment struct{}

func (ParBreak) isMarkupNode() {}
func (HardBreak) isMarkupNode() {}
func (Comment) isMarkupNode()  {}

// Emph/Strong/Bracketed wrap a nested markup stream.
type Emph struct{ Body Markup }
type Strong struct{ Body Markup }
type Bracketed struct{ Body Markup }

func (Emph) isMarkupNode()      {}
func (Strong) isMarkupNode()    {}
func (Bracketed) isMarkupNode() {}

// Raw text.
type RawBlock struct {
	Lang string
	Text string
}
type RawInline struct{ Text string }

func (RawBlock) isMarkupNode()  {}
func (RawInline) isMarkupNode() {}

// Heading.
type Heading struct {
	Level int
	Body  Markup
}

func (Heading) isMarkupNode() {}

// Equation and math constructors.
type Equation struct {
	Display bool
	Body    Markup
}

func (Equation) isMarkupNode() {}

// MathNode is a node inside an Equation's body (still a MarkupNode; math
// constructors only ever appear within an Equation per spec §3.1).
type MFrac struct{ Num, Den Markup }
type MAttach struct {
	Base           Markup
	Bottom, Top    *Markup
}
type MGroup struct {
	Open, Close *string
	Body        Markup
}
type MAlignPoint struct{}

func (MFrac) isMarkupNode()       {}
func (MAttach) isMarkupNode()     {}
func (MGroup) isMarkupNode()      {}
func (MAlignPoint) isMarkupNode() {}

// Ref.
type Ref struct {
	Ident      string
	Supplement Expr // may be nil
}

func (Ref) isMarkupNode() {}

// List items.
type BulletListItem struct{ Body Markup }
type EnumListItem struct {
	Start *int
	Body  Markup
}
type DescListItem struct {
	Term  Markup
	Descr Markup
}

func (BulletListItem) isMarkupNode() {}
func (EnumListItem) isMarkupNode()   {}
func (DescListItem) isMarkupNode()   {}

// Url.
type Url struct{ Text string }

func (Url) isMarkupNode() {}

// Code embeds an expression with its source position (spec §3.1, §4.1).
type Code struct {
	Pos  diag.Position
	Expr Expr
}

func (Code) isMarkupNode() {}
