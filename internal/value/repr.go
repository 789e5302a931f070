// Canonical textual representation of values (spec §4.5: valToContent's
// fallback branch converts Dict/Function/Module/Label/others to a single
// Txt of their "canonical textual representation... numbers as decimal,
// VFraction with suffix 'fr', booleans as 'true'/'false'").
//
// Grounded on gotypst's eval/call.go's displayString helper, extended here
// to arrays and dicts since spec §8's end-to-end scenarios need a textual
// form for composite values reaching Txt. Repr itself does no width
// estimation; DisplayWidth, used by cmd/typstcore's --debug field-table
// printer, uses rivo/uniseg (grapheme segmentation) and
// golang.org/x/text/width (East-Asian width classification) - both teacher
// dependencies, re-homed here rather than to grapheme-cluster string
// methods (see DESIGN.md: clusters() intentionally stays a per-codepoint
// fallback, per spec's Open Question).
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"
	xtwidth "golang.org/x/text/width"
)

// Repr renders v in its canonical textual form.
func Repr(v Value) string {
	switch x := v.(type) {
	case None:
		return "none"
	case Auto:
		return "auto"
	case Boolean:
		if x {
			return "true"
		}
		return "false"
	case Integer:
		return strconv.FormatInt(int64(x), 10)
	case Float:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case Ratio:
		f, _ := x.R.Float64()
		return trimTrailingZeros(f*100) + "%"
	case Fraction:
		return trimTrailingZeros(x.Value) + "fr"
	case Length:
		return trimTrailingZeros(x.Value) + x.Unit
	case Angle:
		return trimTrailingZeros(x.Radians*180/3.14159265358979323846) + "deg"
	case String:
		return quoteString(string(x))
	case Label:
		return "<" + string(x) + ">"
	case *Array:
		parts := make([]string, x.Len())
		for i, item := range x.Items() {
			parts[i] = Repr(item)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *Dict:
		if x.Len() == 0 {
			return "(:)"
		}
		parts := make([]string, 0, x.Len())
		for _, kv := range x.Pairs() {
			parts = append(parts, kv.Key+": "+Repr(kv.Value))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case Content:
		return "[" + x.TextOf() + "]"
	case *Function:
		if x.Name != "" {
			return x.Name
		}
		return "(anonymous function)"
	case *Module:
		return "module(\"" + x.Ident + "\")"
	case Symbol:
		return x.Text
	default:
		return fmt.Sprintf("%v", v)
	}
}

// DisplayWidth estimates the terminal column width of s: uniseg splits it
// into grapheme clusters, and each cluster counts 2 columns if its first
// rune is East-Asian wide or fullwidth per x/text/width, else 1. cmd/typstcore's --debug field-table printer uses this
// to right-pad field names so repr() values line up in a column.
func DisplayWidth(s string) int {
	width := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		r := gr.Runes()
		if len(r) == 0 {
			continue
		}
		switch xtwidth.LookupRune(r[0]).Kind() {
		case xtwidth.EastAsianWide, xtwidth.EastAsianFullwidth:
			width += 2
		default:
			width += 1
		}
	}
	return width
}

func trimTrailingZeros(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return s
}

func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString("\\\"")
		case '\\':
			sb.WriteString("\\\\")
		case '\n':
			sb.WriteString("\\n")
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
