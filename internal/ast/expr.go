// Expression, parameter, argument, and binding-pattern node shapes
// (spec §4.2). Pure data, independent of the runtime value representation
// (internal/value): literal nodes carry Go primitives, and the evaluator is
// responsible for converting them to runtime Values, mirroring gotypst's
// syntax package having no dependency on library/foundations.
package ast

// Expr is any expression node.
type Expr interface {
	isExpr()
}

// ---------------------------------------------------------------------------
// Literals (spec §4.2: "Literal values map by kind")
// ---------------------------------------------------------------------------

type IntLit struct{ Value int64 }
type FloatLit struct{ Value float64 }
type BoolLit struct{ Value bool }
type StringLit struct{ Value string }
type NoneLit struct{}
type AutoLit struct{}

// NumericLit is a Numeric(x, unit) literal; Unit is one of
// "fr", "%", "deg", "rad", "pt", "em", "mm", "cm", "in".
type NumericLit struct {
	Value float64
	Unit  string
}

func (IntLit) isExpr()     {}
func (FloatLit) isExpr()   {}
func (BoolLit) isExpr()    {}
func (StringLit) isExpr()  {}
func (NoneLit) isExpr()    {}
func (AutoLit) isExpr()    {}
func (NumericLit) isExpr() {}

// ---------------------------------------------------------------------------
// Containers
// ---------------------------------------------------------------------------

type ArrayExpr struct{ Items []Expr }

type DictEntry struct {
	Key   string
	Value Expr
}
type DictExpr struct{ Entries []DictEntry }

func (ArrayExpr) isExpr() {}
func (DictExpr) isExpr()  {}

// ---------------------------------------------------------------------------
// Logical and arithmetic
// ---------------------------------------------------------------------------

type NotExpr struct{ X Expr }
type AndExpr struct{ L, R Expr }
type OrExpr struct{ L, R Expr }

func (NotExpr) isExpr() {}
func (AndExpr) isExpr() {}
func (OrExpr) isExpr()  {}

// BinOp identifies an arithmetic or comparison operator.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpIn
	OpNotIn
)

type BinaryExpr struct {
	Op   BinOp
	L, R Expr
}

func (BinaryExpr) isExpr() {}

type NegExpr struct{ X Expr }

func (NegExpr) isExpr() {}

// ---------------------------------------------------------------------------
// Identifiers and field access
// ---------------------------------------------------------------------------

type IdentExpr struct{ Name string }

func (IdentExpr) isExpr() {}

type FieldAccessExpr struct {
	Target Expr
	Field  string
}

func (FieldAccessExpr) isExpr() {}

// ---------------------------------------------------------------------------
// Calls and closures
// ---------------------------------------------------------------------------

type ArgItem struct {
	Name   string // empty for positional
	Value  Expr
	Spread bool // ..expr
}

type ArgsNode struct {
	Items          []ArgItem
	TrailingComma  bool // set by the parser; the evaluator does not read it
}

type FuncCallExpr struct {
	Callee Expr
	Args   *ArgsNode
}

func (FuncCallExpr) isExpr() {}

// Param is one parameter in a closure's parameter list (spec §4.6).
type Param interface{ isParam() }

type NormalParam struct{ Name string }
type DefaultParam struct {
	Name    string
	Default Expr
}
type SinkParam struct{ Name string } // "" for an anonymous sink (`..`)
type DestructuringParam struct{ Pattern *DestructuringBind }
type SkipParam struct{} // `_`

func (NormalParam) isParam()         {}
func (DefaultParam) isParam()        {}
func (SinkParam) isParam()           {}
func (DestructuringParam) isParam()  {}
func (SkipParam) isParam()           {}

// ClosureExpr is an anonymous (or self-referential, when Name != "") function
// literal (spec §4.6 toFunction).
type ClosureExpr struct {
	Name   string // "" for anonymous
	Params []Param
	Body   Expr
}

func (ClosureExpr) isExpr() {}

// LetFuncExpr is sugar for `let name(params) = body`, binding a named
// closure directly (spec §4.2: "LetFunc(name, params, body): build a
// closure, bind under name").
type LetFuncExpr struct {
	Name   string
	Params []Param
	Body   Expr
}

func (LetFuncExpr) isExpr() {}

// ---------------------------------------------------------------------------
// Binding and assignment
// ---------------------------------------------------------------------------

// Bind is either a BasicBind or a DestructuringBind, shared by Let and For.
type Bind interface{ isBind() }

// BasicBind binds a single identifier, or nothing for the anonymous `_`.
type BasicBind struct{ Name string } // Name == "" means anonymous

func (BasicBind) isBind() {}

// DestructurePart is one element of a destructuring pattern.
type DestructurePart struct {
	Name  string // bound identifier ("" for a placeholder part)
	Key   string // for dict-style `key: name` parts; "" for array-style
	Sink  bool   // `..name` collects the remainder
}

type DestructuringBind struct{ Parts []DestructurePart }

func (DestructuringBind) isBind() {}

type LetExpr struct {
	Target Bind
	Value  Expr
}

func (LetExpr) isExpr() {}

type AssignExpr struct {
	Target Expr
	Value  Expr
}

func (AssignExpr) isExpr() {}

// ---------------------------------------------------------------------------
// Control flow
// ---------------------------------------------------------------------------

type IfClause struct {
	Cond Expr
	Body Expr
}
type IfExpr struct{ Clauses []IfClause }

func (IfExpr) isExpr() {}

type WhileExpr struct {
	Cond Expr
	Body Expr
}

func (WhileExpr) isExpr() {}

type ForExpr struct {
	Bind   Bind
	Source Expr
	Body   Expr
}

func (ForExpr) isExpr() {}

type ReturnExpr struct{ Value Expr } // Value nil for bare `return`
type ContinueExpr struct{}
type BreakExpr struct{}

func (ReturnExpr) isExpr()   {}
func (ContinueExpr) isExpr() {}
func (BreakExpr) isExpr()    {}

// CodeBlockExpr is `{ ...exprs }`.
type CodeBlockExpr struct{ Exprs []Expr }

// ContentBlockExpr is `[ ...markup ]` used as an expression.
type ContentBlockExpr struct{ Body Markup }

func (CodeBlockExpr) isExpr()    {}
func (ContentBlockExpr) isExpr() {}

// ---------------------------------------------------------------------------
// Set / Show
// ---------------------------------------------------------------------------

type SetExpr struct {
	Target Expr
	Args   *ArgsNode
}

func (SetExpr) isExpr() {}

// ShowExpr implements `show selector?: body` (spec §4.2). Selector is nil
// for the selector-less form.
type ShowExpr struct {
	Selector Expr
	Body     Expr
}

func (ShowExpr) isExpr() {}

// ---------------------------------------------------------------------------
// Import / Include
// ---------------------------------------------------------------------------

type ImportKind int

const (
	ImportAll ImportKind = iota
	ImportSome
	ImportNone
)

type ImportExpr struct {
	Source Expr
	Kind   ImportKind
	Items  []string // used when Kind == ImportSome
}

func (ImportExpr) isExpr() {}

type IncludeExpr struct{ Source Expr }

func (IncludeExpr) isExpr() {}
