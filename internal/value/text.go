// String and Regex value kinds.
package value

import "regexp"

// String is a UTF-8 text value.
type String string

func (String) Kind() Kind      { return KindString }
func (s String) Clone() Value  { return s }
func (String) isValue()        {}

// Regex is a compiled regular expression value. It wraps the standard
// library's RE2 engine (regexp.Regexp); grounded on the absence of any
// third-party regex dependency across the whole example pack (even the
// teacher, which needs Unicode-aware matching for text search, uses stdlib
// regexp) — see DESIGN.md.
type Regex struct {
	Source string
	Re     *regexp.Regexp
}

func (Regex) Kind() Kind     { return KindRegex }
func (r Regex) Clone() Value { return r }
func (Regex) isValue()       {}

// CompileRegex compiles a pattern, returning a Regex value.
func CompileRegex(pattern string) (Regex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Regex{}, err
	}
	return Regex{Source: pattern, Re: re}, nil
}
