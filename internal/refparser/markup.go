package refparser

import (
	"strconv"
	"strings"

	"github.com/boergens/gotypst/internal/ast"
	"github.com/boergens/gotypst/internal/diag"
)

// Parser drives markup-level scanning, handing off to an exprParser
// whenever it meets a `#` code escape.
type Parser struct {
	s *scanner
}

// ParseMarkup implements the eval.Parse contract (spec §1, §6): turn source
// text into a markup stream. This is the function cmd/typstcore wires in.
func ParseMarkup(source string) (ast.Markup, error) {
	p := &Parser{s: newScanner(source)}
	m, err := p.parseMarkupSeq("")
	if err != nil {
		return nil, err
	}
	if !p.s.eof() {
		return nil, p.errf("unexpected trailing character %q at position %d", p.s.peek(), p.s.pos)
	}
	return m, nil
}

func (p *Parser) errf(format string, args ...any) error {
	return (&exprParser{s: p.s, p: p}).errf(format, args...)
}

func (p *Parser) newExprParser() *exprParser { return &exprParser{s: p.s, p: p} }

// positionAt turns a rune offset into a 1-based line/column position (spec
// §3.1 Code(position, expr) carries the embedded expression's source
// position).
func (p *Parser) positionAt(offset int) diag.Position {
	line, col := 1, 1
	for i := 0; i < offset && i < len(p.s.src); i++ {
		if p.s.src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return diag.Position{Line: line, Col: col}
}

// parseMarkupSeq consumes markup nodes until EOF or a rune in stopChars is
// encountered at the top level (stopChars is never consumed here; the
// caller consumes the closing delimiter itself).
func (p *Parser) parseMarkupSeq(stopChars string) (ast.Markup, error) {
	var out ast.Markup
	atLineStart := true
	for {
		if p.s.eof() {
			break
		}
		r := p.s.peek()
		if stopChars != "" && strings.ContainsRune(stopChars, r) {
			break
		}

		switch {
		case r == '\n':
			n := 0
			for p.s.peek() == '\n' {
				p.s.advance()
				n++
			}
			if n >= 2 {
				out = append(out, ast.ParBreak{})
			} else {
				out = append(out, ast.SoftBreak{})
			}
			atLineStart = true
			continue

		case isSpaceOrTab(r):
			for isSpaceOrTab(p.s.peek()) {
				p.s.advance()
			}
			out = append(out, ast.Space{})
			continue

		case p.s.hasPrefix("//"):
			for !p.s.eof() && p.s.peek() != '\n' {
				p.s.advance()
			}
			out = append(out, ast.Comment{})
			continue

		case p.s.hasPrefix("/*"):
			p.s.advance()
			p.s.advance()
			for !p.s.eof() && !p.s.hasPrefix("*/") {
				p.s.advance()
			}
			p.s.consumePrefix("*/")
			out = append(out, ast.Comment{})
			continue

		case r == '~':
			p.s.advance()
			out = append(out, ast.Nbsp{})
			continue

		case r == '"':
			p.s.advance()
			out = append(out, ast.Quote{Double: true})
			continue

		case r == '\'':
			p.s.advance()
			out = append(out, ast.Quote{Double: false})
			continue

		case p.s.hasPrefix("---"):
			p.s.pos += 3
			out = append(out, ast.EmDash{})
			continue

		case p.s.hasPrefix("--"):
			p.s.pos += 2
			out = append(out, ast.EnDash{})
			continue

		case p.s.hasPrefix("..."):
			p.s.pos += 3
			out = append(out, ast.Ellipsis{})
			continue

		case r == '*':
			node, err := p.parseDelimited('*', func(body ast.Markup) ast.MarkupNode { return ast.Strong{Body: body} })
			if err != nil {
				return nil, err
			}
			out = append(out, node)
			atLineStart = false
			continue

		case r == '_':
			node, err := p.parseDelimited('_', func(body ast.Markup) ast.MarkupNode { return ast.Emph{Body: body} })
			if err != nil {
				return nil, err
			}
			out = append(out, node)
			atLineStart = false
			continue

		case p.s.hasPrefix("```"):
			node, err := p.parseRawBlock()
			if err != nil {
				return nil, err
			}
			out = append(out, node)
			atLineStart = false
			continue

		case r == '`':
			node, err := p.parseRawInline()
			if err != nil {
				return nil, err
			}
			out = append(out, node)
			atLineStart = false
			continue

		case r == '$':
			node, err := p.parseEquation()
			if err != nil {
				return nil, err
			}
			out = append(out, node)
			atLineStart = false
			continue

		case r == '=' && atLineStart:
			level := p.parseHeadingMarker()
			body, err := p.withLineBody(func(stop string) (ast.Markup, error) { return p.parseMarkupSeq(stop) })
			if err != nil {
				return nil, err
			}
			out = append(out, ast.Heading{Level: level, Body: body})
			atLineStart = true
			continue

		case (r == '-' || r == '+') && atLineStart && isSpaceOrTab(p.s.peekAt(1)):
			isEnum := r == '+'
			p.s.advance()
			p.s.advance()
			body, err := p.withLineBody(func(stop string) (ast.Markup, error) { return p.parseMarkupSeq(stop) })
			if err != nil {
				return nil, err
			}
			if isEnum {
				out = append(out, ast.EnumListItem{Body: body})
			} else {
				out = append(out, ast.BulletListItem{Body: body})
			}
			atLineStart = true
			continue

		case atLineStart && isDigit(r) && p.hasEnumMarkerAt(p.s.pos):
			start := p.s.pos
			for isDigit(p.s.peek()) {
				p.s.advance()
			}
			n, _ := strconv.Atoi(string(p.s.src[start:p.s.pos]))
			p.s.advance() // '.'
			p.s.advance() // space
			body, err := p.withLineBody(func(stop string) (ast.Markup, error) { return p.parseMarkupSeq(stop) })
			if err != nil {
				return nil, err
			}
			out = append(out, ast.EnumListItem{Start: &n, Body: body})
			atLineStart = true
			continue

		case r == '/' && atLineStart && isSpaceOrTab(p.s.peekAt(1)):
			p.s.advance()
			p.s.advance()
			term, err := p.parseMarkupSeq(":")
			if err != nil {
				return nil, err
			}
			p.s.advance() // ':'
			descr, err := p.withLineBody(func(stop string) (ast.Markup, error) { return p.parseMarkupSeq(stop) })
			if err != nil {
				return nil, err
			}
			out = append(out, ast.DescListItem{Term: term, Descr: descr})
			atLineStart = true
			continue

		case r == '@':
			node := p.parseRef()
			out = append(out, node)
			atLineStart = false
			continue

		case r == '[':
			p.s.advance()
			body, err := p.parseMarkupSeq("]")
			if err != nil {
				return nil, err
			}
			if err := (&exprParser{s: p.s, p: p}).expectRune(']'); err != nil {
				return nil, err
			}
			out = append(out, ast.Bracketed{Body: body})
			atLineStart = false
			continue

		case r == '#':
			p.s.advance()
			pos := p.positionAt(p.s.pos)
			ep := p.newExprParser()
			expr, err := ep.parseStatement()
			if err != nil {
				return nil, err
			}
			out = append(out, ast.Code{Pos: pos, Expr: expr})
			atLineStart = false
			continue

		default:
			if p.hasURLAt(p.s.pos) {
				url := p.scanURL(stopChars)
				out = append(out, ast.Url{Text: url})
				atLineStart = false
				continue
			}
			text := p.scanPlainText(stopChars)
			if text != "" {
				out = append(out, ast.Text{Value: text})
			} else {
				// A lone character with no case above and no run to scan
				// (e.g. a stray ']' outside any bracketed body); emit it
				// literally so the scan always makes progress.
				out = append(out, ast.Text{Value: string(p.s.advance())})
			}
			atLineStart = false
		}
	}
	return out, nil
}

// withLineBody runs parse with a stop set that ends at the next newline or
// end of input, used by line-oriented constructs (headings, list items).
func (p *Parser) withLineBody(parse func(stop string) (ast.Markup, error)) (ast.Markup, error) {
	return parse("\n")
}

// parseDelimited parses `ch ... ch`, recursing into parseMarkupSeq for the
// body. If no closing delimiter is found before EOF or a blank line, the
// opening character is treated as plain text instead (matching the common
// markup convention that unmatched emphasis markers degrade to literal
// text).
func (p *Parser) parseDelimited(ch rune, wrap func(ast.Markup) ast.MarkupNode) (ast.MarkupNode, error) {
	start := p.s.pos
	p.s.advance()
	body, err := p.parseMarkupSeq(string(ch))
	closed := err == nil && p.s.peek() == ch
	for _, n := range body {
		if _, isBreak := n.(ast.ParBreak); isBreak {
			closed = false
		}
	}
	if !closed {
		p.s.pos = start
		p.s.advance()
		return ast.Text{Value: string(ch)}, nil
	}
	p.s.advance()
	return wrap(body), nil
}

func (p *Parser) parseRawBlock() (ast.MarkupNode, error) {
	p.s.pos += 3
	langStart := p.s.pos
	for !p.s.eof() && p.s.peek() != '\n' && !p.s.hasPrefix("```") {
		p.s.advance()
	}
	lang := strings.TrimSpace(string(p.s.src[langStart:p.s.pos]))
	var body string
	if p.s.hasPrefix("```") {
		body = ""
	} else {
		p.s.advance() // newline after the lang tag
		bodyStart := p.s.pos
		for !p.s.eof() && !p.s.hasPrefix("```") {
			p.s.advance()
		}
		body = string(p.s.src[bodyStart:p.s.pos])
	}
	p.s.consumePrefix("```")
	return ast.RawBlock{Lang: lang, Text: body}, nil
}

func (p *Parser) parseRawInline() (ast.MarkupNode, error) {
	p.s.advance()
	start := p.s.pos
	for !p.s.eof() && p.s.peek() != '`' {
		p.s.advance()
	}
	text := string(p.s.src[start:p.s.pos])
	p.s.consumePrefix("`")
	return ast.RawInline{Text: text}, nil
}

// parseEquation parses `$...$` (inline) or `$ ... $` with surrounding
// space treated by real Typst as a display-mode cue. This reference parser
// only distinguishes by a leading space after the opening `$` and parses the body as
// ordinary markup: math-specific constructors (frac/attach/groups) are not
// produced here, only plain text and embedded `#` expressions, which is
// enough for callers that build math content via explicit function calls.
func (p *Parser) parseEquation() (ast.MarkupNode, error) {
	p.s.advance()
	display := isSpaceOrTab(p.s.peek())
	body, err := p.parseMarkupSeq("$")
	if err != nil {
		return nil, err
	}
	if err := (&exprParser{s: p.s, p: p}).expectRune('$'); err != nil {
		return nil, err
	}
	return ast.Equation{Display: display, Body: body}, nil
}

func (p *Parser) parseHeadingMarker() int {
	level := 0
	for p.s.peek() == '=' {
		p.s.advance()
		level++
	}
	for isSpaceOrTab(p.s.peek()) {
		p.s.advance()
	}
	return level
}

func (p *Parser) parseRef() ast.MarkupNode {
	p.s.advance()
	start := p.s.pos
	for isIdentCont(p.s.peek()) {
		p.s.advance()
	}
	ident := string(p.s.src[start:p.s.pos])
	var supplement ast.Expr
	if p.s.peek() == '[' {
		p.s.advance()
		start := p.s.pos
		for !p.s.eof() && p.s.peek() != ']' {
			p.s.advance()
		}
		supplement = ast.StringLit{Value: string(p.s.src[start:p.s.pos])}
		p.s.consumePrefix("]")
	}
	return ast.Ref{Ident: ident, Supplement: supplement}
}

func (p *Parser) hasEnumMarkerAt(pos int) bool {
	i := pos
	for i < len(p.s.src) && isDigit(p.s.src[i]) {
		i++
	}
	if i == pos || i+1 >= len(p.s.src) {
		return false
	}
	return p.s.src[i] == '.' && isSpaceOrTab(p.s.src[i+1])
}

func (p *Parser) hasURLAt(pos int) bool {
	rest := string(p.s.src[pos:])
	return strings.HasPrefix(rest, "http://") || strings.HasPrefix(rest, "https://")
}

func (p *Parser) scanURL(stopChars string) string {
	start := p.s.pos
	for !p.s.eof() && !isSpaceOrTab(p.s.peek()) && p.s.peek() != '\n' &&
		(stopChars == "" || !strings.ContainsRune(stopChars, p.s.peek())) {
		p.s.advance()
	}
	return string(p.s.src[start:p.s.pos])
}

// scanPlainText consumes a run of characters with no special markup
// meaning, stopping before any character the switch above handles or any
// rune in stopChars (the enclosing construct's own terminator, e.g. the
// ']' of a bracketed body or the ':' of a description-list term).
func (p *Parser) scanPlainText(stopChars string) string {
	start := p.s.pos
	for !p.s.eof() {
		r := p.s.peek()
		if stopChars != "" && strings.ContainsRune(stopChars, r) {
			return string(p.s.src[start:p.s.pos])
		}
		switch r {
		case '\n', ' ', '\t', '*', '_', '`', '$', '#', '[', '"', '\'', '~', '@':
			return string(p.s.src[start:p.s.pos])
		case '/':
			if p.s.hasPrefix("//") || p.s.hasPrefix("/*") {
				return string(p.s.src[start:p.s.pos])
			}
		case '-':
			if p.s.pos > start && p.s.hasPrefix("--") {
				return string(p.s.src[start:p.s.pos])
			}
		case '.':
			if p.s.pos > start && p.s.hasPrefix("...") {
				return string(p.s.src[start:p.s.pos])
			}
		}
		p.s.advance()
	}
	return string(p.s.src[start:p.s.pos])
}
