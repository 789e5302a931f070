// Partial arithmetic and three-valued comparison (spec §4.2, §9: "each of
// maybePlus, maybeMinus, maybeTimes, maybeDividedBy, maybeNegate, comp is a
// total function from a pair of values to an optional result").
//
// Grounded on gotypst's library/foundations/ops.go: Add/Neg/Not are free
// functions dispatching via nested type switches, with a shared mismatch()
// error constructor. We keep that dispatch shape; the widening lattice
// (integer subset of ratio subset of float) is spec-specific, since the
// teacher's Ratio is float-backed and has no exact-rational widening rule.
package value

import (
	"fmt"
	"math"
	"math/big"
)

// OpError reports an arithmetic, comparison, or membership operation applied
// to operand kinds it doesn't support.
type OpError struct {
	Op  string
	Lhs Kind
	Rhs *Kind
}

func (e *OpError) Error() string {
	if e.Rhs == nil {
		return fmt.Sprintf("cannot apply %s to %s", e.Op, e.Lhs)
	}
	return fmt.Sprintf("cannot apply %s to %s and %s", e.Op, e.Lhs, *e.Rhs)
}

func mismatch(op string, lhs Value, rhs Value) error {
	if rhs == nil {
		return &OpError{Op: op, Lhs: lhs.Kind()}
	}
	k := rhs.Kind()
	return &OpError{Op: op, Lhs: lhs.Kind(), Rhs: &k}
}

// ---------------------------------------------------------------------------
// Unary
// ---------------------------------------------------------------------------

func Neg(v Value) (Value, error) {
	switch x := v.(type) {
	case Integer:
		if x == math.MinInt64 {
			return nil, fmt.Errorf("integer overflow")
		}
		return Integer(-x), nil
	case Float:
		return Float(-x), nil
	case Ratio:
		return Ratio{R: new(big.Rat).Neg(x.R)}, nil
	case Length:
		return Length{Value: -x.Value, Unit: x.Unit}, nil
	case Angle:
		return Angle{Radians: -x.Radians}, nil
	case Fraction:
		return Fraction{Value: -x.Value}, nil
	default:
		return nil, mismatch("unary '-'", v, nil)
	}
}

func Not(v Value) (Value, error) {
	if b, ok := v.(Boolean); ok {
		return Boolean(!b), nil
	}
	return nil, mismatch("'not'", v, nil)
}

// ---------------------------------------------------------------------------
// Numeric widening helpers (integer subset of ratio subset of float)
// ---------------------------------------------------------------------------

func isNumeric(v Value) bool {
	switch v.(type) {
	case Integer, Float, Ratio:
		return true
	}
	return false
}

// widenLevel returns the common representation to compute lhs OP rhs in,
// preferring the narrowest lattice level both operands fit: 0=int, 1=ratio,
// 2=float.
func widenLevel(a, b Value) int {
	level := func(v Value) int {
		switch v.(type) {
		case Integer:
			return 0
		case Ratio:
			return 1
		case Float:
			return 2
		}
		return 2
	}
	la, lb := level(a), level(b)
	if la > lb {
		return la
	}
	return lb
}

func toFloat(v Value) float64 {
	switch x := v.(type) {
	case Integer:
		return float64(x)
	case Float:
		return float64(x)
	case Ratio:
		return x.Float64()
	}
	return 0
}

func toRat(v Value) *big.Rat {
	switch x := v.(type) {
	case Integer:
		return new(big.Rat).SetInt64(int64(x))
	case Ratio:
		return x.R
	}
	return nil
}

func checkedAddInt(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

func checkedMulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

// ---------------------------------------------------------------------------
// Binary arithmetic
// ---------------------------------------------------------------------------

// Add implements maybePlus (spec §4.2): numeric widening, string/array
// concatenation, dict merge (right wins), content concatenation, and the
// special-cased Alignment + Alignment first-wins merge.
func Add(lhs, rhs Value) (Value, error) {
	if al, ok := lhs.(Alignment); ok {
		if ar, ok := rhs.(Alignment); ok {
			return al.Merge(ar), nil
		}
	}
	if isNumeric(lhs) && isNumeric(rhs) {
		switch widenLevel(lhs, rhs) {
		case 0:
			a, _ := AsInt(lhs)
			b, _ := AsInt(rhs)
			sum, ok := checkedAddInt(a, b)
			if !ok {
				return nil, fmt.Errorf("integer overflow")
			}
			return Integer(sum), nil
		case 1:
			return Ratio{R: new(big.Rat).Add(toRat(lhs), toRat(rhs))}, nil
		default:
			return Float(toFloat(lhs) + toFloat(rhs)), nil
		}
	}
	switch a := lhs.(type) {
	case String:
		if b, ok := rhs.(String); ok {
			return a + b, nil
		}
	case *Array:
		if b, ok := rhs.(*Array); ok {
			items := make([]Value, 0, a.Len()+b.Len())
			items = append(items, a.Items()...)
			items = append(items, b.Items()...)
			return NewArray(items...), nil
		}
	case *Dict:
		if b, ok := rhs.(*Dict); ok {
			return MergeLeftBiased(a, b, true), nil
		}
	case Content:
		if b, ok := rhs.(Content); ok {
			return Concat(a, b), nil
		}
	}
	return nil, mismatch("'+'", lhs, rhs)
}

// Sub implements maybeMinus.
func Sub(lhs, rhs Value) (Value, error) {
	if !isNumeric(lhs) || !isNumeric(rhs) {
		return nil, mismatch("'-'", lhs, rhs)
	}
	switch widenLevel(lhs, rhs) {
	case 0:
		a, _ := AsInt(lhs)
		b, _ := AsInt(rhs)
		sum, ok := checkedAddInt(a, -b)
		if !ok {
			return nil, fmt.Errorf("integer overflow")
		}
		return Integer(sum), nil
	case 1:
		return Ratio{R: new(big.Rat).Sub(toRat(lhs), toRat(rhs))}, nil
	default:
		return Float(toFloat(lhs) - toFloat(rhs)), nil
	}
}

// Mul implements maybeTimes: numeric widening plus string/array repetition.
func Mul(lhs, rhs Value) (Value, error) {
	if isNumeric(lhs) && isNumeric(rhs) {
		switch widenLevel(lhs, rhs) {
		case 0:
			a, _ := AsInt(lhs)
			b, _ := AsInt(rhs)
			p, ok := checkedMulInt(a, b)
			if !ok {
				return nil, fmt.Errorf("integer overflow")
			}
			return Integer(p), nil
		case 1:
			return Ratio{R: new(big.Rat).Mul(toRat(lhs), toRat(rhs))}, nil
		default:
			return Float(toFloat(lhs) * toFloat(rhs)), nil
		}
	}
	if s, ok := lhs.(String); ok {
		if n, ok := AsInt(rhs); ok {
			return repeatString(string(s), n), nil
		}
	}
	if a, ok := lhs.(*Array); ok {
		if n, ok := AsInt(rhs); ok {
			return repeatArray(a, n), nil
		}
	}
	return nil, mismatch("'*'", lhs, rhs)
}

func repeatString(s string, n int64) String {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, len(s)*int(n))
	for i := int64(0); i < n; i++ {
		out = append(out, s...)
	}
	return String(out)
}

func repeatArray(a *Array, n int64) *Array {
	if n <= 0 {
		return NewArray()
	}
	items := make([]Value, 0, a.Len()*int(n))
	for i := int64(0); i < n; i++ {
		items = append(items, a.Items()...)
	}
	return NewArray(items...)
}

// Div implements maybeDividedBy; division by zero fails (spec §4.2).
func Div(lhs, rhs Value) (Value, error) {
	if !isNumeric(lhs) || !isNumeric(rhs) {
		return nil, mismatch("'/'", lhs, rhs)
	}
	if toFloat(rhs) == 0 {
		return nil, fmt.Errorf("division by zero")
	}
	switch widenLevel(lhs, rhs) {
	case 0:
		a, _ := AsInt(lhs)
		b, _ := AsInt(rhs)
		if a%b == 0 {
			return Integer(a / b), nil
		}
		return Float(float64(a) / float64(b)), nil
	case 1:
		return Ratio{R: new(big.Rat).Quo(toRat(lhs), toRat(rhs))}, nil
	default:
		return Float(toFloat(lhs) / toFloat(rhs)), nil
	}
}

// Pow implements the exponent operator `**` (spec §4.2): integer^integer
// returns an integer via floor of the double-precision power; any mixed
// case returns a float; ratio operands are first converted to float.
func Pow(lhs, rhs Value) (Value, error) {
	if !isNumeric(lhs) || !isNumeric(rhs) {
		return nil, mismatch("'**'", lhs, rhs)
	}
	if li, lok := lhs.(Integer); lok {
		if ri, rok := rhs.(Integer); rok {
			return Integer(int64(math.Floor(math.Pow(float64(li), float64(ri))))), nil
		}
	}
	return Float(math.Pow(toFloat(lhs), toFloat(rhs))), nil
}

// ---------------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------------

// Ordering is the three-valued result of Compare.
type Ordering int

const (
	LT Ordering = iota
	EQ
	GT
	Undefined
)

// Compare implements comp: a total function from a pair of values to a
// three-valued ordering (spec §4.2).
func Compare(lhs, rhs Value) Ordering {
	if isNumeric(lhs) && isNumeric(rhs) {
		switch widenLevel(lhs, rhs) {
		case 0:
			a, _ := AsInt(lhs)
			b, _ := AsInt(rhs)
			return intOrdering(a, b)
		case 1:
			return ratOrdering(toRat(lhs), toRat(rhs))
		default:
			a, b := toFloat(lhs), toFloat(rhs)
			if math.IsNaN(a) || math.IsNaN(b) {
				return Undefined
			}
			return floatOrdering(a, b)
		}
	}
	switch a := lhs.(type) {
	case String:
		if b, ok := rhs.(String); ok {
			if a == b {
				return EQ
			}
			if a < b {
				return LT
			}
			return GT
		}
	case Boolean:
		if b, ok := rhs.(Boolean); ok {
			if a == b {
				return EQ
			}
			if !bool(a) {
				return LT
			}
			return GT
		}
	case Label:
		if b, ok := rhs.(Label); ok {
			if a == b {
				return EQ
			}
		}
		return Undefined
	case None:
		if _, ok := rhs.(None); ok {
			return EQ
		}
		return Undefined
	case Auto:
		if _, ok := rhs.(Auto); ok {
			return EQ
		}
		return Undefined
	case *Array:
		if b, ok := rhs.(*Array); ok {
			return arrayOrdering(a, b)
		}
	}
	return Undefined
}

func intOrdering(a, b int64) Ordering {
	switch {
	case a < b:
		return LT
	case a > b:
		return GT
	default:
		return EQ
	}
}

func floatOrdering(a, b float64) Ordering {
	switch {
	case a < b:
		return LT
	case a > b:
		return GT
	default:
		return EQ
	}
}

func ratOrdering(a, b *big.Rat) Ordering {
	switch a.Cmp(b) {
	case -1:
		return LT
	case 1:
		return GT
	default:
		return EQ
	}
}

func arrayOrdering(a, b *Array) Ordering {
	if a.Len() != b.Len() {
		return Undefined
	}
	for i := 0; i < a.Len(); i++ {
		av, _ := a.At(i)
		bv, _ := b.At(i)
		if Compare(av, bv) != EQ {
			return Undefined
		}
	}
	return EQ
}

// Equal reports value equality, returning false for an Undefined ordering
// (spec §4.2: "Equality returns false when undefined").
func Equal(lhs, rhs Value) bool {
	return Compare(lhs, rhs) == EQ
}
