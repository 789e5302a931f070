// Value-to-content coercion (spec §4.5): valToContent is total over the
// whole value universe.
//
// Grounded on gotypst's eval/call.go, where a function body or a show
// rule's produced value has to be reconciled into the document tree
// (IntoValue's Content case and the Display fallback for everything else).
package eval

import "github.com/boergens/gotypst/internal/value"

// valToContent converts any value into content, never failing (spec §4.5).
func valToContent(v value.Value) value.Content {
	switch x := v.(type) {
	case value.Content:
		return x
	case value.String:
		return value.NewContent(value.Txt(string(x)))
	case value.None:
		return value.Empty
	case value.Auto:
		return value.Empty
	case *value.Array:
		parts := make([]value.Content, x.Len())
		for i, item := range x.Items() {
			parts[i] = valToContent(item)
		}
		return value.Concat(parts...)
	case *value.Arguments:
		parts := make([]value.Content, 0, len(x.Positional)+x.Named.Len())
		for _, item := range x.Positional {
			parts = append(parts, valToContent(item))
		}
		for _, kv := range x.Named.Pairs() {
			parts = append(parts, valToContent(kv.Value))
		}
		return value.Concat(parts...)
	default:
		return value.NewContent(value.Txt(value.Repr(v)))
	}
}
