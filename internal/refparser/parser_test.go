package refparser

import (
	"testing"

	"github.com/boergens/gotypst/internal/ast"
)

func TestParseMarkupPlainText(t *testing.T) {
	got, err := ParseMarkup("hello")
	if err != nil {
		t.Fatalf("ParseMarkup: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %v, want 1 node", got)
	}
	text, ok := got[0].(ast.Text)
	if !ok || text.Value != "hello" {
		t.Errorf("got[0] = %#v, want ast.Text{\"hello\"}", got[0])
	}
}

func TestParseMarkupStrong(t *testing.T) {
	got, err := ParseMarkup("*hello*")
	if err != nil {
		t.Fatalf("ParseMarkup: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %v, want 1 node", got)
	}
	strong, ok := got[0].(ast.Strong)
	if !ok {
		t.Fatalf("got[0] = %T, want ast.Strong", got[0])
	}
	if len(strong.Body) != 1 {
		t.Fatalf("strong.Body = %v, want 1 node", strong.Body)
	}
	text, ok := strong.Body[0].(ast.Text)
	if !ok || text.Value != "hello" {
		t.Errorf("strong.Body[0] = %#v, want ast.Text{\"hello\"}", strong.Body[0])
	}
}

func TestParseMarkupEmph(t *testing.T) {
	got, err := ParseMarkup("_hi_")
	if err != nil {
		t.Fatalf("ParseMarkup: %v", err)
	}
	emph, ok := got[0].(ast.Emph)
	if !ok {
		t.Fatalf("got[0] = %T, want ast.Emph", got[0])
	}
	if len(emph.Body) != 1 || emph.Body[0].(ast.Text).Value != "hi" {
		t.Errorf("emph.Body = %v, want [Text(\"hi\")]", emph.Body)
	}
}

func TestParseMarkupHeading(t *testing.T) {
	got, err := ParseMarkup("== Title")
	if err != nil {
		t.Fatalf("ParseMarkup: %v", err)
	}
	h, ok := got[0].(ast.Heading)
	if !ok {
		t.Fatalf("got[0] = %T, want ast.Heading", got[0])
	}
	if h.Level != 2 {
		t.Errorf("Level = %d, want 2", h.Level)
	}
	if len(h.Body) != 1 || h.Body[0].(ast.Text).Value != "Title" {
		t.Errorf("Body = %v, want [Text(\"Title\")]", h.Body)
	}
}

func TestParseMarkupCodeLet(t *testing.T) {
	got, err := ParseMarkup("#let x = 2")
	if err != nil {
		t.Fatalf("ParseMarkup: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %v, want 1 node", got)
	}
	code, ok := got[0].(ast.Code)
	if !ok {
		t.Fatalf("got[0] = %T, want ast.Code", got[0])
	}
	let, ok := code.Expr.(ast.LetExpr)
	if !ok {
		t.Fatalf("code.Expr = %T, want ast.LetExpr", code.Expr)
	}
	ident, ok := let.Target.(ast.BasicBind)
	if !ok || ident.Name != "x" {
		t.Fatalf("let.Target = %#v, want ast.BasicBind{\"x\"}", let.Target)
	}
	num, ok := let.Value.(ast.IntLit)
	if !ok || num.Value != 2 {
		t.Errorf("let.Value = %#v, want IntLit{2}", let.Value)
	}
}

func TestParseMarkupCodeFuncCall(t *testing.T) {
	got, err := ParseMarkup(`#foo(1, "x")`)
	if err != nil {
		t.Fatalf("ParseMarkup: %v", err)
	}
	code := got[0].(ast.Code)
	call, ok := code.Expr.(ast.FuncCallExpr)
	if !ok {
		t.Fatalf("code.Expr = %T, want ast.FuncCallExpr", code.Expr)
	}
	callee, ok := call.Callee.(ast.IdentExpr)
	if !ok || callee.Name != "foo" {
		t.Fatalf("Callee = %#v, want IdentExpr{\"foo\"}", call.Callee)
	}
	if len(call.Args.Items) != 2 {
		t.Fatalf("Args.Items = %v, want 2 items", call.Args.Items)
	}
	if n, ok := call.Args.Items[0].Value.(ast.IntLit); !ok || n.Value != 1 {
		t.Errorf("Args.Items[0] = %#v, want IntLit{1}", call.Args.Items[0].Value)
	}
}

func TestParseMarkupIfExpr(t *testing.T) {
	got, err := ParseMarkup("#if x { 1 } else { 2 }")
	if err != nil {
		t.Fatalf("ParseMarkup: %v", err)
	}
	code := got[0].(ast.Code)
	ifExpr, ok := code.Expr.(ast.IfExpr)
	if !ok {
		t.Fatalf("code.Expr = %T, want ast.IfExpr", code.Expr)
	}
	if len(ifExpr.Clauses) != 2 {
		t.Fatalf("Clauses = %v, want 2 clauses (if + else)", ifExpr.Clauses)
	}
	if ifExpr.Clauses[1].Cond != nil {
		t.Errorf("else clause Cond = %v, want nil", ifExpr.Clauses[1].Cond)
	}
}

func TestParseMarkupRawInline(t *testing.T) {
	got, err := ParseMarkup("`code`")
	if err != nil {
		t.Fatalf("ParseMarkup: %v", err)
	}
	raw, ok := got[0].(ast.RawInline)
	if !ok || raw.Text != "code" {
		t.Fatalf("got[0] = %#v, want ast.RawInline{\"code\"}", got[0])
	}
}

func TestParseMarkupRawBlockWithLang(t *testing.T) {
	got, err := ParseMarkup("```go\nx := 1\n```")
	if err != nil {
		t.Fatalf("ParseMarkup: %v", err)
	}
	raw, ok := got[0].(ast.RawBlock)
	if !ok {
		t.Fatalf("got[0] = %T, want ast.RawBlock", got[0])
	}
	if raw.Lang != "go" {
		t.Errorf("Lang = %q, want \"go\"", raw.Lang)
	}
}

func TestParseMarkupBulletList(t *testing.T) {
	got, err := ParseMarkup("- one")
	if err != nil {
		t.Fatalf("ParseMarkup: %v", err)
	}
	item, ok := got[0].(ast.BulletListItem)
	if !ok {
		t.Fatalf("got[0] = %T, want ast.BulletListItem", got[0])
	}
	if len(item.Body) != 1 || item.Body[0].(ast.Text).Value != "one" {
		t.Errorf("Body = %v, want [Text(\"one\")]", item.Body)
	}
}

func TestParseMarkupRefWithoutSupplement(t *testing.T) {
	got, err := ParseMarkup("@intro")
	if err != nil {
		t.Fatalf("ParseMarkup: %v", err)
	}
	ref, ok := got[0].(ast.Ref)
	if !ok {
		t.Fatalf("got[0] = %T, want ast.Ref", got[0])
	}
	if ref.Ident != "intro" {
		t.Errorf("Ident = %q, want \"intro\"", ref.Ident)
	}
	if ref.Supplement != nil {
		t.Errorf("Supplement = %v, want nil", ref.Supplement)
	}
}

func TestParseMarkupEquation(t *testing.T) {
	got, err := ParseMarkup("$x + 1$")
	if err != nil {
		t.Fatalf("ParseMarkup: %v", err)
	}
	eq, ok := got[0].(ast.Equation)
	if !ok {
		t.Fatalf("got[0] = %T, want ast.Equation", got[0])
	}
	if eq.Display {
		t.Error("Display = true, want false for single-dollar inline equation")
	}
}

func TestParseMarkupDisplayEquation(t *testing.T) {
	got, err := ParseMarkup("$ x + 1 $")
	if err != nil {
		t.Fatalf("ParseMarkup: %v", err)
	}
	eq, ok := got[0].(ast.Equation)
	if !ok {
		t.Fatalf("got[0] = %T, want ast.Equation", got[0])
	}
	if !eq.Display {
		t.Error("Display = false, want true for $ x $ with surrounding spaces")
	}
}

func TestParseMarkupNumericUnitNotConfusedWithIdentifier(t *testing.T) {
	got, err := ParseMarkup("#let x = 10indent")
	if err != nil {
		t.Fatalf("ParseMarkup: %v", err)
	}
	code := got[0].(ast.Code)
	let := code.Expr.(ast.LetExpr)
	num, ok := let.Value.(ast.IntLit)
	if !ok {
		t.Fatalf("let.Value = %T, want ast.IntLit (10 should not consume \"in\" from \"indent\")", let.Value)
	}
	if num.Value != 10 {
		t.Errorf("Value = %d, want 10 (identifier boundary, not a unit)", num.Value)
	}
}

func TestParseMarkupNumericUnitRecognized(t *testing.T) {
	got, err := ParseMarkup("#let x = 10in")
	if err != nil {
		t.Fatalf("ParseMarkup: %v", err)
	}
	code := got[0].(ast.Code)
	let := code.Expr.(ast.LetExpr)
	num, ok := let.Value.(ast.NumericLit)
	if !ok {
		t.Fatalf("let.Value = %T, want ast.NumericLit", let.Value)
	}
	if num.Unit != "in" {
		t.Errorf("Unit = %q, want \"in\"", num.Unit)
	}
}
