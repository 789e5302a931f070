// Package value implements the tagged value universe of the evaluator
// (spec §3.3): a sum type of concrete value kinds with total comparison,
// partial arithmetic, and coercions.
//
// Grounded on gotypst's library/foundations/value.go: Value is an interface
// sealed with an unexported marker method, Type is an int enum with a
// String() method, and free "As*" functions perform checked downcasts. That
// shape is kept verbatim; the concrete kind catalogue is cut down to exactly
// what spec §3.3 names (no Bytes/Datetime/Duration/Decimal/Gradient/Tiling/
// Version/Styles — those belong to the standard library or the layout
// pipeline, both out of scope per spec §1).
package value

import "fmt"

// Value is a runtime value produced by the expression evaluator.
type Value interface {
	// Kind returns the value's tag.
	Kind() Kind
	// Clone returns an independent copy (containers copy structurally;
	// scalars return themselves since Go values are already independent).
	Clone() Value

	isValue()
}

// Kind is the tag of a Value.
type Kind int

const (
	KindNone Kind = iota
	KindAuto
	KindBoolean
	KindInteger
	KindFloat
	KindRatio
	KindString
	KindRegex
	KindContent
	KindArray
	KindDict
	KindFunction
	KindSymbol
	KindModule
	KindLabel
	KindSelector
	KindCounter
	KindArguments
	KindColor
	KindAlignment
	KindLength
	KindAngle
	KindFraction
	KindTermItem
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAuto:
		return "auto"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindRatio:
		return "ratio"
	case KindString:
		return "string"
	case KindRegex:
		return "regular expression"
	case KindContent:
		return "content"
	case KindArray:
		return "array"
	case KindDict:
		return "dictionary"
	case KindFunction:
		return "function"
	case KindSymbol:
		return "symbol"
	case KindModule:
		return "module"
	case KindLabel:
		return "label"
	case KindSelector:
		return "selector"
	case KindCounter:
		return "counter"
	case KindArguments:
		return "arguments"
	case KindColor:
		return "color"
	case KindAlignment:
		return "alignment"
	case KindLength:
		return "length"
	case KindAngle:
		return "angle"
	case KindFraction:
		return "fraction"
	case KindTermItem:
		return "term item"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ---------------------------------------------------------------------------
// Checked downcasts (grounded on foundations/value.go's As* helpers)
// ---------------------------------------------------------------------------

func AsBool(v Value) (bool, bool) {
	b, ok := v.(Boolean)
	return bool(b), ok
}

func AsInt(v Value) (int64, bool) {
	i, ok := v.(Integer)
	return int64(i), ok
}

func AsFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case Float:
		return float64(x), true
	case Integer:
		return float64(x), true
	}
	return 0, false
}

func AsString(v Value) (string, bool) {
	s, ok := v.(String)
	return string(s), ok
}

func AsArray(v Value) (*Array, bool) {
	a, ok := v.(*Array)
	return a, ok
}

func AsDict(v Value) (*Dict, bool) {
	d, ok := v.(*Dict)
	return d, ok
}

func AsFunction(v Value) (*Function, bool) {
	f, ok := v.(*Function)
	return f, ok
}

func AsContent(v Value) (Content, bool) {
	c, ok := v.(Content)
	return c, ok
}

func AsModule(v Value) (*Module, bool) {
	m, ok := v.(*Module)
	return m, ok
}

func AsSymbol(v Value) (Symbol, bool) {
	s, ok := v.(Symbol)
	return s, ok
}

// IsNone reports whether v is the none value.
func IsNone(v Value) bool { _, ok := v.(None); return ok }

// IsAuto reports whether v is the auto value.
func IsAuto(v Value) bool { _, ok := v.(Auto); return ok }
