// The `in` operator (spec §4.2): string-in-string substring, regex-in-string
// match, element-in-array equality, string-in-dict key presence.
package value

import "strings"

// In reports whether needle is "in" haystack, or an error if the combination
// of kinds is not supported.
func In(needle, haystack Value) (bool, error) {
	switch h := haystack.(type) {
	case String:
		switch n := needle.(type) {
		case String:
			return strings.Contains(string(h), string(n)), nil
		case Regex:
			return n.Re.MatchString(string(h)), nil
		}
	case *Array:
		for _, item := range h.Items() {
			if Equal(needle, item) {
				return true, nil
			}
		}
		return false, nil
	case *Dict:
		if s, ok := needle.(String); ok {
			_, present := h.Get(string(s))
			return present, nil
		}
	}
	return false, mismatch("'in'", needle, haystack)
}
