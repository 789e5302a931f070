// Scalar value kinds: None, Auto, Boolean, Integer, Float, Ratio, Length,
// Angle, Fraction.
//
// Grounded on gotypst's library/foundations/primitives.go and
// measurements.go, which represent each scalar kind as a named Go type
// implementing the Value interface directly (rather than a boxed struct).
// Ratio diverges from the teacher deliberately: spec §3.3 calls for an
// "exact rational", so it is backed by math/big.Rat instead of the teacher's
// float64-backed Ratio.
package value

import (
	"fmt"
	"math/big"
)

// None represents the absence of a meaningful value.
type None struct{}

func (None) Kind() Kind   { return KindNone }
func (None) Clone() Value { return None{} }
func (None) isValue()     {}

// Auto represents a value left for the callee to determine automatically.
type Auto struct{}

func (Auto) Kind() Kind   { return KindAuto }
func (Auto) Clone() Value { return Auto{} }
func (Auto) isValue()     {}

// Boolean is a true/false value.
type Boolean bool

func (Boolean) Kind() Kind     { return KindBoolean }
func (b Boolean) Clone() Value { return b }
func (Boolean) isValue()       {}

// Integer is a 64-bit signed integer.
type Integer int64

func (Integer) Kind() Kind     { return KindInteger }
func (i Integer) Clone() Value { return i }
func (Integer) isValue()       {}
func (i Integer) String() string { return fmt.Sprintf("%d", int64(i)) }

// Float is a 64-bit floating point number.
type Float float64

func (Float) Kind() Kind      { return KindFloat }
func (f Float) Clone() Value  { return f }
func (Float) isValue()        {}

// Ratio is an exact rational number (spec §3.3: "Ratio (exact rational)").
// Its decimal-shorthand display form is a percentage (e.g. 1/2 -> "50%").
type Ratio struct {
	R *big.Rat
}

func NewRatio(num, den int64) Ratio {
	return Ratio{R: big.NewRat(num, den)}
}

// RatioFromPercent builds a ratio from a percentage value (e.g. 50 -> 1/2),
// matching the literal conversion rule in spec §4.2 (Percent -> Ratio(x/100)).
func RatioFromPercent(percent float64) Ratio {
	r := new(big.Rat).SetFloat64(percent / 100)
	if r == nil {
		r = new(big.Rat)
	}
	return Ratio{R: r}
}

func (Ratio) Kind() Kind { return KindRatio }
func (r Ratio) Clone() Value {
	return Ratio{R: new(big.Rat).Set(r.R)}
}
func (Ratio) isValue() {}

// Float64 converts the ratio to a float for arithmetic with Float operands.
func (r Ratio) Float64() float64 {
	f, _ := r.R.Float64()
	return f
}

// Length is a physical length, spec §4.2's unit literal for Pt|Em|Mm|Cm|In.
type Length struct {
	Value float64
	Unit  string // "pt", "em", "mm", "cm", "in"
}

func (Length) Kind() Kind     { return KindLength }
func (l Length) Clone() Value { return l }
func (Length) isValue()       {}

// Angle is stored normalized to radians; Deg/Rad literals both convert
// into it per spec §4.2 (Rad -> Angle(x), Deg -> Angle(x * pi / 180)).
type Angle struct {
	Radians float64
}

func (Angle) Kind() Kind      { return KindAngle }
func (a Angle) Clone() Value  { return a }
func (Angle) isValue()        {}

// Fraction is the `fr` unit used for flexible space distribution.
type Fraction struct {
	Value float64
}

func (Fraction) Kind() Kind     { return KindFraction }
func (f Fraction) Clone() Value { return f }
func (Fraction) isValue()       {}
