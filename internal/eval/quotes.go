// Smart-quote rewriting (spec §4.1).
//
// Grounded on gotypst's text-shaping conventions for punctuation rewriting
// (library/text package) adapted down to the single-pass rule list spec
// §4.1 spells out; golang.org/x/text/unicode/norm NFC-normalizes the raw
// text run first so composed and decomposed accented input (e.g. "e" +
// combining acute vs. precomposed U+00E9) produce identical quote
// placement, a spec-silent textual-normalization concern.
package eval

import (
	"strings"

	"github.com/boergens/gotypst/internal/ast"
	"golang.org/x/text/unicode/norm"
)

const (
	curlyQuoteCloseDouble = "”"
	curlyQuoteOpenDouble  = "“"
	curlyQuoteCloseSingle = "’"
	curlyQuoteOpenSingle  = "‘"
)

func isBreakAtom(n ast.MarkupNode) bool {
	switch n.(type) {
	case ast.Space, ast.SoftBreak:
		return true
	}
	return false
}

// noOpenChars is the set of characters that, when they immediately follow a
// double/single quote, mean the quote should be read as closing rather than
// opening (spec §4.1).
var noOpenChars = map[rune]bool{
	')': true, '.': true, ',': true, ';': true, ':': true, '?': true, '!': true, ']': true,
}

// rewriteSmartQuotes applies the left-to-right rewrite rules of spec §4.1 to
// a run of text-like atoms, then maps each atom to its literal text and
// concatenates the result.
func rewriteSmartQuotes(atoms []ast.MarkupNode) string {
	resolved := make([]string, len(atoms))
	for i, n := range atoms {
		q, isQuote := n.(ast.Quote)
		if !isQuote {
			resolved[i] = atomLiteral(n)
			continue
		}
		resolved[i] = resolveQuote(atoms, i, q)
	}
	return strings.Join(resolved, "")
}

// resolveQuote applies spec §4.1's smart-quote rules to a single Quote atom
// in left-to-right rule order: space-adjacency, the Text/Text apostrophe
// case, the opening case, then the closing default.
func resolveQuote(atoms []ast.MarkupNode, i int, q ast.Quote) string {
	var before, after ast.MarkupNode
	if i > 0 {
		before = atoms[i-1]
	}
	if i < len(atoms)-1 {
		after = atoms[i+1]
	}

	openingChar, closingChar := curlyQuoteOpenDouble, curlyQuoteCloseDouble
	if !q.Double {
		openingChar, closingChar = curlyQuoteOpenSingle, curlyQuoteCloseSingle
	}

	if (before != nil && isBreakAtom(before)) || (after != nil && isBreakAtom(after)) {
		return closingChar
	}
	if !q.Double {
		_, beforeText := before.(ast.Text)
		_, afterText := after.(ast.Text)
		if beforeText && afterText {
			return curlyQuoteCloseSingle
		}
	}
	if at, ok := after.(ast.Text); ok && len(at.Value) > 0 {
		first := rune(at.Value[0])
		if !noOpenChars[first] {
			return openingChar
		}
	}
	return closingChar
}

func atomLiteral(n ast.MarkupNode) string {
	switch x := n.(type) {
	case ast.Text:
		return x.Value
	case ast.Space:
		return " "
	case ast.SoftBreak:
		return "\n"
	case ast.Nbsp:
		return " "
	case ast.Shy:
		return "­"
	case ast.EmDash:
		return "—"
	case ast.EnDash:
		return "–"
	case ast.Ellipsis:
		return "…"
	}
	return ""
}

// normalizeText applies NFC normalization to raw text before it reaches
// rewriteSmartQuotes, so quote placement is stable across input encodings.
func normalizeText(atoms []ast.MarkupNode) []ast.MarkupNode {
	out := make([]ast.MarkupNode, len(atoms))
	for i, n := range atoms {
		if t, ok := n.(ast.Text); ok {
			out[i] = ast.Text{Value: norm.NFC.String(t.Value)}
			continue
		}
		out[i] = n
	}
	return out
}
