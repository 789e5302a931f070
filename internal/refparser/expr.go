package refparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/boergens/gotypst/internal/ast"
)

// exprParser parses the code-mode grammar (spec §4.2, §4.6) on top of the
// shared scanner. Markup-level parsing hands off to it whenever it meets a
// `#` code escape or a `[...]` content block needs to read an embedded
// expression.
type exprParser struct {
	s *scanner
	p *Parser // back-reference for nested markup parsing (content blocks)
}

func (e *exprParser) errf(format string, args ...any) error {
	return fmt.Errorf("refparser: "+format, args...)
}

func (e *exprParser) skipSpace() {
	for !e.s.eof() {
		r := e.s.peek()
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			e.s.advance()
			continue
		}
		if e.s.hasPrefix("//") {
			for !e.s.eof() && e.s.peek() != '\n' {
				e.s.advance()
			}
			continue
		}
		if e.s.hasPrefix("/*") {
			e.s.advance()
			e.s.advance()
			for !e.s.eof() && !e.s.hasPrefix("*/") {
				e.s.advance()
			}
			e.s.consumePrefix("*/")
			continue
		}
		break
	}
}

// skipInlineSpace skips spaces/tabs/comments but not newlines, used where a
// newline ends a statement (e.g. after a bare `#expr`).
func (e *exprParser) skipInlineSpace() {
	for !e.s.eof() {
		r := e.s.peek()
		if r == ' ' || r == '\t' {
			e.s.advance()
			continue
		}
		if e.s.hasPrefix("//") {
			for !e.s.eof() && e.s.peek() != '\n' {
				e.s.advance()
			}
			continue
		}
		break
	}
}

func (e *exprParser) peekIdent() (string, int) {
	save := e.s.pos
	e.skipSpace()
	start := e.s.pos
	if !isIdentStart(e.s.peek()) {
		e.s.pos = save
		return "", 0
	}
	for isIdentCont(e.s.peek()) {
		e.s.advance()
	}
	name := string(e.s.src[start:e.s.pos])
	consumed := e.s.pos - save
	e.s.pos = save
	return name, consumed
}

// consumeKeyword consumes ident text kw if it matches exactly (not a
// prefix of a longer identifier).
func (e *exprParser) consumeKeyword(kw string) bool {
	name, n := e.peekIdent()
	if name != kw {
		return false
	}
	e.s.pos += n
	return true
}

func (e *exprParser) consumeIdent() (string, bool) {
	name, n := e.peekIdent()
	if name == "" {
		return "", false
	}
	switch name {
	case "let", "if", "else", "while", "for", "in", "set", "show", "import",
		"include", "return", "break", "continue", "not", "and", "or", "none",
		"auto", "true", "false", "as":
		return "", false
	}
	e.s.pos += n
	return name, true
}

func (e *exprParser) consumeRune(r rune) bool {
	save := e.s.pos
	e.skipSpace()
	if e.s.peek() == r {
		e.s.advance()
		return true
	}
	e.s.pos = save
	return false
}

func (e *exprParser) consumeStr(tok string) bool {
	save := e.s.pos
	e.skipSpace()
	if e.s.consumePrefix(tok) {
		return true
	}
	e.s.pos = save
	return false
}

func (e *exprParser) expectRune(r rune) error {
	if !e.consumeRune(r) {
		return e.errf("expected %q at position %d", r, e.s.pos)
	}
	return nil
}

// parseStatement parses one top-level code-mode expression, used both for
// `#...` markup escapes and for elements of a `{...}` code block.
func (e *exprParser) parseStatement() (ast.Expr, error) {
	e.skipSpace()
	return e.parseAssignOrExpr()
}

func (e *exprParser) parseAssignOrExpr() (ast.Expr, error) {
	lhs, err := e.parseExpr()
	if err != nil {
		return nil, err
	}
	if e.consumeRune('=') {
		rhs, err := e.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.AssignExpr{Target: lhs, Value: rhs}, nil
	}
	return lhs, nil
}

// parseExpr is the full precedence-climbing expression grammar, used for
// let/set/show argument values, condition expressions, and parenthesized
// sub-expressions.
func (e *exprParser) parseExpr() (ast.Expr, error) { return e.parseOr() }

func (e *exprParser) parseOr() (ast.Expr, error) {
	l, err := e.parseAnd()
	if err != nil {
		return nil, err
	}
	for e.consumeKeyword("or") {
		r, err := e.parseAnd()
		if err != nil {
			return nil, err
		}
		l = ast.OrExpr{L: l, R: r}
	}
	return l, nil
}

func (e *exprParser) parseAnd() (ast.Expr, error) {
	l, err := e.parseComparison()
	if err != nil {
		return nil, err
	}
	for e.consumeKeyword("and") {
		r, err := e.parseComparison()
		if err != nil {
			return nil, err
		}
		l = ast.AndExpr{L: l, R: r}
	}
	return l, nil
}

func (e *exprParser) parseComparison() (ast.Expr, error) {
	l, err := e.parseIn()
	if err != nil {
		return nil, err
	}
	ops := []struct {
		tok string
		op  ast.BinOp
	}{
		{"==", ast.OpEq}, {"!=", ast.OpNe}, {"<=", ast.OpLe}, {">=", ast.OpGe},
		{"<", ast.OpLt}, {">", ast.OpGt},
	}
	for _, o := range ops {
		if e.consumeStr(o.tok) {
			r, err := e.parseIn()
			if err != nil {
				return nil, err
			}
			return ast.BinaryExpr{Op: o.op, L: l, R: r}, nil
		}
	}
	return l, nil
}

func (e *exprParser) parseIn() (ast.Expr, error) {
	l, err := e.parseAdditive()
	if err != nil {
		return nil, err
	}
	save := e.s.pos
	notIn := false
	if e.consumeKeyword("not") {
		if !e.consumeKeyword("in") {
			e.s.pos = save
			return l, nil
		}
		notIn = true
	} else if !e.consumeKeyword("in") {
		return l, nil
	}
	r, err := e.parseAdditive()
	if err != nil {
		return nil, err
	}
	op := ast.OpIn
	if notIn {
		op = ast.OpNotIn
	}
	return ast.BinaryExpr{Op: op, L: l, R: r}, nil
}

func (e *exprParser) parseAdditive() (ast.Expr, error) {
	l, err := e.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		if e.consumeStr("+") {
			r, err := e.parseMultiplicative()
			if err != nil {
				return nil, err
			}
			l = ast.BinaryExpr{Op: ast.OpAdd, L: l, R: r}
			continue
		}
		save := e.s.pos
		e.skipSpace()
		if e.s.peek() == '-' {
			e.s.advance()
			r, err := e.parseMultiplicative()
			if err != nil {
				return nil, err
			}
			l = ast.BinaryExpr{Op: ast.OpSub, L: l, R: r}
			continue
		}
		e.s.pos = save
		break
	}
	return l, nil
}

func (e *exprParser) parseMultiplicative() (ast.Expr, error) {
	l, err := e.parsePower()
	if err != nil {
		return nil, err
	}
	for {
		if e.consumeStr("*") {
			r, err := e.parsePower()
			if err != nil {
				return nil, err
			}
			l = ast.BinaryExpr{Op: ast.OpMul, L: l, R: r}
			continue
		}
		if e.consumeStr("/") {
			r, err := e.parsePower()
			if err != nil {
				return nil, err
			}
			l = ast.BinaryExpr{Op: ast.OpDiv, L: l, R: r}
			continue
		}
		break
	}
	return l, nil
}

func (e *exprParser) parsePower() (ast.Expr, error) {
	l, err := e.parseUnary()
	if err != nil {
		return nil, err
	}
	if e.consumeStr("**") {
		r, err := e.parsePower() // right-assoc
		if err != nil {
			return nil, err
		}
		return ast.BinaryExpr{Op: ast.OpPow, L: l, R: r}, nil
	}
	return l, nil
}

func (e *exprParser) parseUnary() (ast.Expr, error) {
	if e.consumeKeyword("not") {
		x, err := e.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NotExpr{X: x}, nil
	}
	save := e.s.pos
	e.skipSpace()
	if e.s.peek() == '-' {
		e.s.advance()
		x, err := e.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NegExpr{X: x}, nil
	}
	e.s.pos = save
	if e.consumeStr("+") {
		return e.parseUnary()
	}
	return e.parsePostfix()
}

func (e *exprParser) parsePostfix() (ast.Expr, error) {
	x, err := e.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		if e.consumeRune('.') {
			field, ok := e.consumeIdent()
			if !ok {
				return nil, e.errf("expected field name after '.'")
			}
			x = ast.FieldAccessExpr{Target: x, Field: field}
			continue
		}
		if e.peekCallParen() {
			args, err := e.parseArgs()
			if err != nil {
				return nil, err
			}
			x = ast.FuncCallExpr{Callee: x, Args: args}
			continue
		}
		break
	}
	return x, nil
}

// peekCallParen reports whether a '(' immediately follows (no intervening
// space), the call-syntax rule that disambiguates `f(x)` from `f (x)`.
func (e *exprParser) peekCallParen() bool {
	return e.s.peek() == '('
}

func (e *exprParser) parsePrimary() (ast.Expr, error) {
	e.skipSpace()
	switch {
	case e.consumeKeyword("let"):
		return e.parseLet()
	case e.consumeKeyword("if"):
		return e.parseIf()
	case e.consumeKeyword("while"):
		return e.parseWhile()
	case e.consumeKeyword("for"):
		return e.parseFor()
	case e.consumeKeyword("set"):
		return e.parseSet()
	case e.consumeKeyword("show"):
		return e.parseShow()
	case e.consumeKeyword("import"):
		return e.parseImport()
	case e.consumeKeyword("include"):
		return e.parseInclude()
	case e.consumeKeyword("return"):
		return e.parseReturn()
	case e.consumeKeyword("break"):
		return ast.BreakExpr{}, nil
	case e.consumeKeyword("continue"):
		return ast.ContinueExpr{}, nil
	case e.consumeKeyword("true"):
		return ast.BoolLit{Value: true}, nil
	case e.consumeKeyword("false"):
		return ast.BoolLit{Value: false}, nil
	case e.consumeKeyword("none"):
		return ast.NoneLit{}, nil
	case e.consumeKeyword("auto"):
		return ast.AutoLit{}, nil
	}

	r := e.s.peek()
	switch {
	case r == '"':
		return e.parseString()
	case isDigit(r) || (r == '.' && isDigit(e.s.peekAt(1))):
		return e.parseNumber()
	case r == '(':
		return e.parseParenOrArrayOrDict()
	case r == '[':
		return e.parseContentBlockExpr()
	case r == '{':
		return e.parseCodeBlockExpr()
	case isIdentStart(r):
		return e.parseIdentOrClosure()
	}
	return nil, e.errf("unexpected character %q at position %d", r, e.s.pos)
}

func (e *exprParser) parseIdentOrClosure() (ast.Expr, error) {
	name, ok := e.consumeIdent()
	if !ok {
		return nil, e.errf("expected identifier at position %d", e.s.pos)
	}
	// `name => body` single-param closure.
	if e.consumeStr("=>") {
		body, err := e.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.ClosureExpr{Params: []ast.Param{ast.NormalParam{Name: name}}, Body: body}, nil
	}
	return ast.IdentExpr{Name: name}, nil
}

func (e *exprParser) parseString() (ast.Expr, error) {
	if !e.consumeRune('"') {
		return nil, e.errf("expected '\"' at position %d", e.s.pos)
	}
	var b strings.Builder
	for !e.s.eof() && e.s.peek() != '"' {
		c := e.s.advance()
		if c == '\\' && !e.s.eof() {
			esc := e.s.advance()
			switch esc {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case '"':
				b.WriteRune('"')
			case '\\':
				b.WriteRune('\\')
			default:
				b.WriteRune(esc)
			}
			continue
		}
		b.WriteRune(c)
	}
	if !e.s.consumePrefix("\"") {
		return nil, e.errf("unterminated string at position %d", e.s.pos)
	}
	return ast.StringLit{Value: b.String()}, nil
}

var numericUnits = []string{"fr", "%", "deg", "rad", "pt", "em", "mm", "cm", "in"}

func (e *exprParser) parseNumber() (ast.Expr, error) {
	start := e.s.pos
	for isDigit(e.s.peek()) {
		e.s.advance()
	}
	isFloat := false
	if e.s.peek() == '.' && isDigit(e.s.peekAt(1)) {
		isFloat = true
		e.s.advance()
		for isDigit(e.s.peek()) {
			e.s.advance()
		}
	}
	numText := string(e.s.src[start:e.s.pos])

	for _, u := range numericUnits {
		ulen := len([]rune(u))
		if e.s.hasPrefix(u) && !isIdentCont(e.s.peekAt(ulen)) {
			val, err := strconv.ParseFloat(numText, 64)
			if err != nil {
				return nil, e.errf("invalid numeric literal %q", numText)
			}
			e.s.pos += len([]rune(u))
			return ast.NumericLit{Value: val, Unit: u}, nil
		}
	}

	if isFloat {
		val, err := strconv.ParseFloat(numText, 64)
		if err != nil {
			return nil, e.errf("invalid float literal %q", numText)
		}
		return ast.FloatLit{Value: val}, nil
	}
	val, err := strconv.ParseInt(numText, 10, 64)
	if err != nil {
		return nil, e.errf("invalid int literal %q", numText)
	}
	return ast.IntLit{Value: val}, nil
}

// parseParenOrArrayOrDict disambiguates `(expr)`, `(a, b, ...)` (array),
// `(key: v, ...)` (dict), `()` (empty array), and `(:)` (empty dict).
func (e *exprParser) parseParenOrArrayOrDict() (ast.Expr, error) {
	if err := e.expectRune('('); err != nil {
		return nil, err
	}
	e.skipSpace()
	if e.consumeRune(':') {
		if err := e.expectRune(')'); err != nil {
			return nil, err
		}
		return ast.DictExpr{}, nil
	}
	if e.consumeRune(')') {
		return ast.ArrayExpr{}, nil
	}

	// Closure params: `(a, b) => body`.
	if params, ok, err := e.tryParseParamList(); err != nil {
		return nil, err
	} else if ok {
		body, err := e.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.ClosureExpr{Params: params, Body: body}, nil
	}

	first, err := e.parseDictEntryOrExpr()
	if err != nil {
		return nil, err
	}
	e.skipSpace()
	if entry, isDict := first.(ast.DictEntry); isDict {
		entries := []ast.DictEntry{entry}
		for e.consumeRune(',') {
			e.skipSpace()
			if e.s.peek() == ')' {
				break
			}
			next, err := e.parseDictEntryOrExpr()
			if err != nil {
				return nil, err
			}
			ne, ok := next.(ast.DictEntry)
			if !ok {
				return nil, e.errf("mixed array/dict literal at position %d", e.s.pos)
			}
			entries = append(entries, ne)
		}
		if err := e.expectRune(')'); err != nil {
			return nil, err
		}
		return ast.DictExpr{Entries: entries}, nil
	}

	expr := first.(ast.Expr)
	if e.consumeRune(')') {
		return expr, nil
	}
	items := []ast.Expr{expr}
	sawComma := false
	for e.consumeRune(',') {
		sawComma = true
		e.skipSpace()
		if e.s.peek() == ')' {
			break
		}
		next, err := e.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, next)
	}
	if err := e.expectRune(')'); err != nil {
		return nil, err
	}
	if !sawComma && len(items) == 1 {
		return items[0], nil
	}
	return ast.ArrayExpr{Items: items}, nil
}

// parseDictEntryOrExpr parses either `ident: expr` (returned as a
// ast.DictEntry) or a bare expression.
func (e *exprParser) parseDictEntryOrExpr() (any, error) {
	save := e.s.pos
	name, ok := e.consumeIdent()
	if ok && e.consumeRune(':') {
		val, err := e.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.DictEntry{Key: name, Value: val}, nil
	}
	e.s.pos = save
	return e.parseExpr()
}

// tryParseParamList speculatively parses `(params) =>`; on failure it
// rewinds and returns ok=false so the caller can retry as array/dict/paren.
func (e *exprParser) tryParseParamList() ([]ast.Param, bool, error) {
	save := e.s.pos
	params, err := e.parseParamListBody()
	if err != nil {
		e.s.pos = save
		return nil, false, nil
	}
	if !e.consumeStr("=>") {
		e.s.pos = save
		return nil, false, nil
	}
	return params, true, nil
}

func (e *exprParser) parseParamListBody() ([]ast.Param, error) {
	var params []ast.Param
	for {
		e.skipSpace()
		if e.s.peek() == ')' {
			break
		}
		p, err := e.parseParam()
		if err != nil {
			return nil, err
		}
		params = append(params, p)
		if !e.consumeRune(',') {
			break
		}
	}
	if err := e.expectRune(')'); err != nil {
		return nil, err
	}
	return params, nil
}

func (e *exprParser) parseParam() (ast.Param, error) {
	if e.consumeStr("..") {
		name, _ := e.consumeIdent()
		return ast.SinkParam{Name: name}, nil
	}
	if e.s.peek() == '_' && !isIdentCont(e.s.peekAt(1)) {
		e.s.advance()
		return ast.SkipParam{}, nil
	}
	if e.s.peek() == '(' {
		bind, err := e.parseDestructuringBind()
		if err != nil {
			return nil, err
		}
		return ast.DestructuringParam{Pattern: bind}, nil
	}
	name, ok := e.consumeIdent()
	if !ok {
		return nil, e.errf("expected parameter name at position %d", e.s.pos)
	}
	if e.consumeRune(':') {
		def, err := e.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.DefaultParam{Name: name, Default: def}, nil
	}
	return ast.NormalParam{Name: name}, nil
}

func (e *exprParser) parseDestructuringBind() (*ast.DestructuringBind, error) {
	if err := e.expectRune('('); err != nil {
		return nil, err
	}
	var parts []ast.DestructurePart
	for {
		e.skipSpace()
		if e.s.peek() == ')' {
			break
		}
		if e.consumeStr("..") {
			name, _ := e.consumeIdent()
			parts = append(parts, ast.DestructurePart{Name: name, Sink: true})
		} else if e.s.peek() == '_' && !isIdentCont(e.s.peekAt(1)) {
			e.s.advance()
			parts = append(parts, ast.DestructurePart{})
		} else {
			name, ok := e.consumeIdent()
			if !ok {
				return nil, e.errf("expected binding name at position %d", e.s.pos)
			}
			if e.consumeRune(':') {
				inner, ok := e.consumeIdent()
				if !ok {
					return nil, e.errf("expected binding name after ':' at position %d", e.s.pos)
				}
				parts = append(parts, ast.DestructurePart{Key: name, Name: inner})
			} else {
				parts = append(parts, ast.DestructurePart{Name: name})
			}
		}
		if !e.consumeRune(',') {
			break
		}
	}
	if err := e.expectRune(')'); err != nil {
		return nil, err
	}
	return &ast.DestructuringBind{Parts: parts}, nil
}

func (e *exprParser) parseBind() (ast.Bind, error) {
	if e.s.peek() == '(' {
		return e.parseDestructuringBind()
	}
	if e.s.peek() == '_' && !isIdentCont(e.s.peekAt(1)) {
		e.s.advance()
		return ast.BasicBind{}, nil
	}
	name, ok := e.consumeIdent()
	if !ok {
		return nil, e.errf("expected binding name at position %d", e.s.pos)
	}
	return ast.BasicBind{Name: name}, nil
}

// parseLet handles both `let pattern = value` and the function-definition
// sugar `let name(params) = body` (spec §4.2 LetFuncExpr).
func (e *exprParser) parseLet() (ast.Expr, error) {
	save := e.s.pos
	if funcExpr, ok, err := e.tryParseLetFunc(); err != nil {
		return nil, err
	} else if ok {
		return funcExpr, nil
	}
	e.s.pos = save
	bind, err := e.parseBind()
	if err != nil {
		return nil, err
	}
	if !e.consumeRune('=') {
		return ast.LetExpr{Target: bind, Value: ast.NoneLit{}}, nil
	}
	val, err := e.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.LetExpr{Target: bind, Value: val}, nil
}

// tryParseLetFunc speculatively parses the `let name(params) = body`
// function-definition sugar; on mismatch it rewinds and reports ok=false.
func (e *exprParser) tryParseLetFunc() (ast.Expr, bool, error) {
	save := e.s.pos
	name, ok := e.consumeIdent()
	if !ok || !e.peekCallParen() {
		e.s.pos = save
		return nil, false, nil
	}
	params, err := e.parseParamListOpenParen()
	if err != nil {
		e.s.pos = save
		return nil, false, nil
	}
	if !e.consumeRune('=') {
		e.s.pos = save
		return nil, false, nil
	}
	body, err := e.parseExpr()
	if err != nil {
		return nil, false, err
	}
	return ast.LetFuncExpr{Name: name, Params: params, Body: body}, true, nil
}

func (e *exprParser) parseParamListOpenParen() ([]ast.Param, error) {
	if err := e.expectRune('('); err != nil {
		return nil, err
	}
	return e.parseParamListBody()
}

func (e *exprParser) parseIf() (ast.Expr, error) {
	var clauses []ast.IfClause
	for {
		cond, err := e.parseExpr()
		if err != nil {
			return nil, err
		}
		body, err := e.parseBlockBody()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, ast.IfClause{Cond: cond, Body: body})
		save := e.s.pos
		if !e.consumeKeyword("else") {
			break
		}
		if e.consumeKeyword("if") {
			continue
		}
		elseBody, err := e.parseBlockBody()
		if err != nil {
			e.s.pos = save
			break
		}
		clauses = append(clauses, ast.IfClause{Cond: nil, Body: elseBody})
		break
	}
	return ast.IfExpr{Clauses: clauses}, nil
}

func (e *exprParser) parseWhile() (ast.Expr, error) {
	cond, err := e.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := e.parseBlockBody()
	if err != nil {
		return nil, err
	}
	return ast.WhileExpr{Cond: cond, Body: body}, nil
}

func (e *exprParser) parseFor() (ast.Expr, error) {
	bind, err := e.parseBind()
	if err != nil {
		return nil, err
	}
	if !e.consumeKeyword("in") {
		return nil, e.errf("expected 'in' in for loop at position %d", e.s.pos)
	}
	source, err := e.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := e.parseBlockBody()
	if err != nil {
		return nil, err
	}
	return ast.ForExpr{Bind: bind, Source: source, Body: body}, nil
}

// parseBlockBody parses either a `{...}` code block or a `[...]` content
// block, both valid loop/conditional bodies (spec §4.2).
func (e *exprParser) parseBlockBody() (ast.Expr, error) {
	e.skipSpace()
	switch e.s.peek() {
	case '{':
		return e.parseCodeBlockExpr()
	case '[':
		return e.parseContentBlockExpr()
	}
	return nil, e.errf("expected block body at position %d", e.s.pos)
}

func (e *exprParser) parseCodeBlockExpr() (ast.Expr, error) {
	if err := e.expectRune('{'); err != nil {
		return nil, err
	}
	var exprs []ast.Expr
	for {
		e.skipSpace()
		if e.s.peek() == '}' || e.s.eof() {
			break
		}
		x, err := e.parseAssignOrExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, x)
		e.skipInlineSpace()
		for e.s.peek() == ';' {
			e.s.advance()
		}
	}
	if err := e.expectRune('}'); err != nil {
		return nil, err
	}
	return ast.CodeBlockExpr{Exprs: exprs}, nil
}

func (e *exprParser) parseContentBlockExpr() (ast.Expr, error) {
	if err := e.expectRune('['); err != nil {
		return nil, err
	}
	body, err := e.p.parseMarkupSeq("]")
	if err != nil {
		return nil, err
	}
	if err := e.expectRune(']'); err != nil {
		return nil, err
	}
	return ast.ContentBlockExpr{Body: body}, nil
}

// parseCalleePath parses a bare identifier with optional field-access
// chain, stopping before any call parens - used where the parens belong
// to a separately-modeled argument list (`set`/`show` targets).
func (e *exprParser) parseCalleePath() (ast.Expr, error) {
	name, ok := e.consumeIdent()
	if !ok {
		return nil, e.errf("expected identifier at position %d", e.s.pos)
	}
	var x ast.Expr = ast.IdentExpr{Name: name}
	for e.consumeRune('.') {
		field, ok := e.consumeIdent()
		if !ok {
			return nil, e.errf("expected field name after '.' at position %d", e.s.pos)
		}
		x = ast.FieldAccessExpr{Target: x, Field: field}
	}
	return x, nil
}

func (e *exprParser) parseSet() (ast.Expr, error) {
	target, err := e.parseCalleePath()
	if err != nil {
		return nil, err
	}
	args, err := e.parseArgs()
	if err != nil {
		return nil, err
	}
	return ast.SetExpr{Target: target, Args: args}, nil
}

func (e *exprParser) parseShow() (ast.Expr, error) {
	var selector ast.Expr
	e.skipSpace()
	if e.s.peek() != ':' {
		sel, err := e.parseExpr()
		if err != nil {
			return nil, err
		}
		selector = sel
	}
	if !e.consumeRune(':') {
		return nil, e.errf("expected ':' in show rule at position %d", e.s.pos)
	}
	body, err := e.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.ShowExpr{Selector: selector, Body: body}, nil
}

func (e *exprParser) parseImport() (ast.Expr, error) {
	source, err := e.parseExpr()
	if err != nil {
		return nil, err
	}
	if !e.consumeRune(':') {
		return ast.ImportExpr{Source: source, Kind: ast.ImportNone}, nil
	}
	e.skipSpace()
	if e.consumeStr("*") {
		return ast.ImportExpr{Source: source, Kind: ast.ImportAll}, nil
	}
	var items []string
	for {
		name, ok := e.consumeIdent()
		if !ok {
			return nil, e.errf("expected import item at position %d", e.s.pos)
		}
		items = append(items, name)
		if !e.consumeRune(',') {
			break
		}
	}
	return ast.ImportExpr{Source: source, Kind: ast.ImportSome, Items: items}, nil
}

func (e *exprParser) parseInclude() (ast.Expr, error) {
	source, err := e.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.IncludeExpr{Source: source}, nil
}

func (e *exprParser) parseReturn() (ast.Expr, error) {
	save := e.s.pos
	e.skipInlineSpace()
	if e.s.peek() == '\n' || e.s.eof() || e.s.peek() == '}' || e.s.peek() == ']' {
		e.s.pos = save
		return ast.ReturnExpr{}, nil
	}
	e.s.pos = save
	val, err := e.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.ReturnExpr{Value: val}, nil
}

// parseArgs parses a parenthesized argument list, including `..expr`
// spreads and `name: value` named arguments (spec §3.3 Arguments).
func (e *exprParser) parseArgs() (*ast.ArgsNode, error) {
	if err := e.expectRune('('); err != nil {
		return nil, err
	}
	node := &ast.ArgsNode{}
	for {
		e.skipSpace()
		if e.s.peek() == ')' {
			break
		}
		if e.consumeStr("..") {
			val, err := e.parseExpr()
			if err != nil {
				return nil, err
			}
			node.Items = append(node.Items, ast.ArgItem{Value: val, Spread: true})
		} else {
			save := e.s.pos
			name, ok := e.consumeIdent()
			if ok && e.consumeRune(':') {
				val, err := e.parseExpr()
				if err != nil {
					return nil, err
				}
				node.Items = append(node.Items, ast.ArgItem{Name: name, Value: val})
			} else {
				e.s.pos = save
				val, err := e.parseExpr()
				if err != nil {
					return nil, err
				}
				node.Items = append(node.Items, ast.ArgItem{Value: val})
			}
		}
		if e.consumeRune(',') {
			node.TrailingComma = true
			continue
		}
		node.TrailingComma = false
		break
	}
	if err := e.expectRune(')'); err != nil {
		return nil, err
	}
	return node, nil
}
