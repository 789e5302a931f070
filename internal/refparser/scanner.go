// Package refparser is a reference parser demonstrating how a caller wires
// a real Parse value (spec §1, §6) into the evaluator. It is not part of
// the evaluator core - internal/ast's own doc comment already says the
// parser producing its node shapes is an external collaborator - this is
// one possible such collaborator, scoped to a practical subset of the
// grammar: plain markup, emphasis/strong, headings, lists, raw text, a
// restricted equation body, and the full expression/statement grammar
// internal/ast/expr.go names (let/if/while/for/set/show/import/include,
// closures, destructuring, method chains).
//
// Deliberately not implemented: math-specific constructors (frac/attach/
// alignpoint groups inside an equation body - the body parses as ordinary
// markup instead), markup inside reference supplements (`@label[...]` keeps
// the bracketed text as a plain string), and reparsing/incremental edits. A production parser is free to cover more;
// this one covers enough to drive cmd/typstcore end to end.
package refparser

import "unicode/utf8"

// scanner is a rune-at-a-time cursor over the source text, shared by the
// markup- and expression-level parsing functions in this package.
type scanner struct {
	src []rune
	pos int
}

func newScanner(src string) *scanner {
	return &scanner{src: []rune(src)}
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) peekAt(offset int) rune {
	i := s.pos + offset
	if i < 0 || i >= len(s.src) {
		return 0
	}
	return s.src[i]
}

func (s *scanner) advance() rune {
	r := s.peek()
	if !s.eof() {
		s.pos++
	}
	return r
}

func (s *scanner) hasPrefix(p string) bool {
	rs := []rune(p)
	if s.pos+len(rs) > len(s.src) {
		return false
	}
	for i, r := range rs {
		if s.src[s.pos+i] != r {
			return false
		}
	}
	return true
}

func (s *scanner) consumePrefix(p string) bool {
	if s.hasPrefix(p) {
		s.pos += utf8.RuneCountInString(p)
		return true
	}
	return false
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9') || r == '-'
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isSpaceOrTab(r rune) bool { return r == ' ' || r == '\t' }
