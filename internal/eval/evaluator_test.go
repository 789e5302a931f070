package eval

import (
	"testing"
	"time"

	"github.com/boergens/gotypst/internal/ast"
	"github.com/boergens/gotypst/internal/env"
	"github.com/boergens/gotypst/internal/stdlib"
	"github.com/boergens/gotypst/internal/value"
)

func noBytes(string) ([]byte, error) { return nil, nil }
func fixedTime() time.Time           { return time.Time{} }
func noParse(string) (ast.Markup, error) { return nil, nil }

func newTestEvaluator() *Evaluator {
	return New(stdlib.Base(), noBytes, fixedTime, noParse, "test.typ")
}

// Scenario 1: #let x = 2; #(x + 3) evaluates the block to Integer 5 and
// yields content "5".
func TestScenarioLetThenArithmeticYieldsContentFive(t *testing.T) {
	e := newTestEvaluator()
	markup := ast.Markup{
		ast.Code{Expr: ast.LetExpr{Target: ast.BasicBind{Name: "x"}, Value: ast.IntLit{Value: 2}}},
		ast.Code{Expr: ast.BinaryExpr{Op: ast.OpAdd, L: ast.IdentExpr{Name: "x"}, R: ast.IntLit{Value: 3}}},
	}
	content, err := e.Evaluate(markup)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got := content.TextOf(); got != "5" {
		t.Errorf("TextOf() = %q, want %q", got, "5")
	}
}

// Scenario 3: *hello* yields a single Elt("strong", body=Txt("hello")).
func TestScenarioStrongProducesSingleElement(t *testing.T) {
	e := newTestEvaluator()
	markup := ast.Markup{ast.Strong{Body: ast.Markup{ast.Text{Value: "hello"}}}}
	content, err := e.Evaluate(markup)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(content.Nodes) != 1 {
		t.Fatalf("Nodes = %v, want 1 node", content.Nodes)
	}
	n := content.Nodes[0]
	if n.IsText || n.Name != "strong" {
		t.Fatalf("Nodes[0] = %+v, want Elt(\"strong\", ...)", n)
	}
	body, ok := n.Fields.Get("body")
	if !ok {
		t.Fatal("strong element missing body field")
	}
	bc, _ := value.AsContent(body)
	if bc.TextOf() != "hello" {
		t.Errorf("body text = %q, want %q", bc.TextOf(), "hello")
	}
}

// Scenario 6: #show "cat": it => [dog] rewrites "cat" text to "dog" content.
func TestScenarioShowRuleRewritesMatchedText(t *testing.T) {
	e := newTestEvaluator()
	e.ShowRules = []ShowRule{{
		Selector: value.StringSelector("cat"),
		Transformer: func(node value.Node) (value.Content, error) {
			return value.NewContent(value.Txt("dog")), nil
		},
	}}
	markup := ast.Markup{ast.Text{Value: "cat"}}
	content, err := e.Evaluate(markup)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got := content.TextOf(); got != "dog" {
		t.Errorf("TextOf() = %q, want %q", got, "dog")
	}
}

// Scenario 5: sink params collect the middle, right params consume the
// tail: f(x, ..rest, y) called with (1,2,3,4) binds x=1, rest=(2,3), y=4.
func TestScenarioSinkParamCollectsMiddle(t *testing.T) {
	e := newTestEvaluator()
	params := []ast.Param{
		ast.NormalParam{Name: "x"},
		ast.SinkParam{Name: "rest"},
		ast.NormalParam{Name: "y"},
	}
	e.Identifiers.Push(env.BlockScope)
	defer e.Identifiers.Pop()

	args := &value.Arguments{
		Positional: []value.Value{value.Integer(1), value.Integer(2), value.Integer(3), value.Integer(4)},
		Named:      value.NewDict(),
	}
	if err := e.bindParams(params, args); err != nil {
		t.Fatalf("bindParams: %v", err)
	}

	x, _ := e.Identifiers.Get("x")
	if x != value.Integer(1) {
		t.Errorf("x = %v, want 1", x)
	}
	y, _ := e.Identifiers.Get("y")
	if y != value.Integer(4) {
		t.Errorf("y = %v, want 4", y)
	}
	restVal, ok := e.Identifiers.Get("rest")
	if !ok {
		t.Fatal("rest not bound")
	}
	restArgs, ok := restVal.(*value.Arguments)
	if !ok {
		t.Fatalf("rest = %T, want *value.Arguments", restVal)
	}
	if len(restArgs.Positional) != 2 || restArgs.Positional[0] != value.Integer(2) || restArgs.Positional[1] != value.Integer(3) {
		t.Errorf("rest.Positional = %v, want [2, 3]", restArgs.Positional)
	}
}

// Scenario 2: #for i in (1,2,3) { [#i ] } yields content whose text is the
// concatenation of each iteration's collapsed run, "1 2 3 ".
func TestScenarioForLoopYieldsConcatenatedText(t *testing.T) {
	e := newTestEvaluator()
	loop := ast.ForExpr{
		Bind:   ast.BasicBind{Name: "i"},
		Source: ast.ArrayExpr{Items: []ast.Expr{ast.IntLit{Value: 1}, ast.IntLit{Value: 2}, ast.IntLit{Value: 3}}},
		Body: ast.ContentBlockExpr{Body: ast.Markup{
			ast.Code{Expr: ast.IdentExpr{Name: "i"}},
			ast.Text{Value: " "},
		}},
	}
	markup := ast.Markup{ast.Code{Expr: loop}}
	content, err := e.Evaluate(markup)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got := content.TextOf(); got != "1 2 3 " {
		t.Errorf("TextOf() = %q, want %q", got, "1 2 3 ")
	}
}

// Scenario 4: `He said "hi"` rewrites straight quotes to curly quotes, and a
// second pass over the already-rewritten text is a no-op (idempotence).
func TestScenarioSmartQuotesRewriteAndAreIdempotent(t *testing.T) {
	atoms := []ast.MarkupNode{
		ast.Text{Value: "He said "},
		ast.Quote{Double: true},
		ast.Text{Value: "hi"},
		ast.Quote{Double: true},
	}
	got := rewriteSmartQuotes(normalizeText(atoms))
	want := "He said “hi”"
	if got != want {
		t.Fatalf("rewriteSmartQuotes() = %q, want %q", got, want)
	}

	again := rewriteSmartQuotes(normalizeText([]ast.MarkupNode{ast.Text{Value: got}}))
	if again != got {
		t.Errorf("re-rewriting already-curly text changed it: got %q, want %q", again, got)
	}
}

// A selector-less `#show: it => it` consumes the rest of the document in
// one call and passes it to body as a single Content argument.
func TestShowWithoutSelectorAppliesBodyToWholeRemainder(t *testing.T) {
	e := newTestEvaluator()
	show := ast.ShowExpr{
		Body: ast.ClosureExpr{Params: []ast.Param{ast.NormalParam{Name: "it"}}, Body: ast.IdentExpr{Name: "it"}},
	}
	markup := ast.Markup{
		ast.Code{Expr: show},
		ast.Text{Value: "hello"},
	}
	content, err := e.Evaluate(markup)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got := content.TextOf(); got != "hello" {
		t.Errorf("TextOf() = %q, want %q", got, "hello")
	}
}

// A selector-less `#show: [REPLACED]` (a non-function body) replaces the
// entire remainder outright, rather than transforming it.
func TestShowWithoutSelectorNonFunctionBodyReplacesRemainder(t *testing.T) {
	e := newTestEvaluator()
	show := ast.ShowExpr{
		Body: ast.ContentBlockExpr{Body: ast.Markup{ast.Text{Value: "REPLACED"}}},
	}
	markup := ast.Markup{
		ast.Code{Expr: show},
		ast.Text{Value: "ignored"},
	}
	content, err := e.Evaluate(markup)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got := content.TextOf(); got != "REPLACED" {
		t.Errorf("TextOf() = %q, want %q", got, "REPLACED")
	}
}

// A selector-less show reaching evalShow directly (not through the content
// loop) has no remaining content to consume and must error rather than
// silently installing a no-op rule.
func TestShowWithoutSelectorOutsideContentLoopErrors(t *testing.T) {
	e := newTestEvaluator()
	show := ast.ShowExpr{Body: ast.IntLit{Value: 1}}
	if _, err := e.evalShow(show); err == nil {
		t.Fatal("expected an error for a selector-less show outside the content loop")
	}
}

// Scope discipline invariant (spec's "after evaluateTypst returns, the
// identifier stack depth equals its initial depth").
func TestScopeDisciplineRestoresDepth(t *testing.T) {
	e := newTestEvaluator()
	start := e.Identifiers.Depth()
	markup := ast.Markup{
		ast.Strong{Body: ast.Markup{ast.Text{Value: "x"}}},
	}
	if _, err := e.Evaluate(markup); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if e.Identifiers.Depth() != start {
		t.Errorf("Depth() = %d, want %d", e.Identifiers.Depth(), start)
	}
}

// Closure capture invariant: a function sees bindings visible at its
// definition point; later top-level lets are invisible to it.
func TestClosureCaptureIsSnapshotAtDefinition(t *testing.T) {
	e := newTestEvaluator()
	e.Identifiers.Define("x", value.Integer(1))
	fn := e.toFunction("", nil, ast.IdentExpr{Name: "x"})

	e.Identifiers.Define("x", value.Integer(99))

	result, err := fn.Call(value.NewArguments())
	if err != nil {
		t.Fatalf("fn.Call: %v", err)
	}
	if result != value.Integer(1) {
		t.Errorf("closure saw x = %v, want 1 (snapshot at definition time)", result)
	}
}

// Flow: once a non-Normal flow fires inside a CodeBlockExpr, no further
// expressions evaluate.
func TestFlowStopsCodeBlockOnReturn(t *testing.T) {
	e := newTestEvaluator()
	evaluated := []string{}
	e.Identifiers.Define("mark", &value.Function{
		Name:     "mark",
		Captured: value.NewDict(),
		Call: func(args *value.Arguments) (value.Value, error) {
			evaluated = append(evaluated, "called")
			return value.None{}, nil
		},
	})

	body := ast.CodeBlockExpr{Exprs: []ast.Expr{
		ast.ReturnExpr{Value: ast.IntLit{Value: 1}},
		ast.FuncCallExpr{Callee: ast.IdentExpr{Name: "mark"}, Args: &ast.ArgsNode{}},
	}}
	if _, err := e.evalExpr(body); err != nil {
		t.Fatalf("evalExpr: %v", err)
	}
	if len(evaluated) != 0 {
		t.Errorf("mark() was called %d times after a Return fired, want 0", len(evaluated))
	}
	if _, ok := e.Flow.(FlowReturn); !ok {
		t.Errorf("Flow = %T, want FlowReturn", e.Flow)
	}
}

// updateExpression round-trip invariant: writing through an at() lvalue is
// visible on the next plain read of the same binding.
func TestUpdateExpressionArrayAtRoundTrips(t *testing.T) {
	e := newTestEvaluator()
	e.Identifiers.Define("x", value.NewArray(value.Integer(1), value.Integer(2), value.Integer(3)))

	target := ast.FuncCallExpr{
		Callee: ast.IdentExpr{Name: "at"},
		Args: &ast.ArgsNode{Items: []ast.ArgItem{
			{Value: ast.IdentExpr{Name: "x"}},
			{Value: ast.IntLit{Value: 0}},
		}},
	}
	if err := e.updateExpression(target, value.Integer(9)); err != nil {
		t.Fatalf("updateExpression: %v", err)
	}

	v, ok := e.Identifiers.Get("x")
	if !ok {
		t.Fatal("x not defined after update")
	}
	arr, ok := v.(*value.Array)
	if !ok {
		t.Fatalf("x = %T, want *value.Array", v)
	}
	items := arr.Items()
	if len(items) != 3 || items[0] != value.Integer(9) || items[1] != value.Integer(2) || items[2] != value.Integer(3) {
		t.Errorf("x = %v, want (9, 2, 3)", items)
	}
}

// eval sandbox: attempting a file operation (import) inside eval fails
// instead of reaching loadBytes.
func TestEvalBuiltinSandboxRejectsImport(t *testing.T) {
	e := newTestEvaluator()
	e.Parse = func(source string) (ast.Markup, error) {
		return ast.Markup{ast.Code{Expr: ast.ImportExpr{
			Source: ast.StringLit{Value: "secret.typ"},
			Kind:   ast.ImportAll,
		}}}, nil
	}

	_, err := e.evalBuiltin(`import "secret.typ"`)
	if err == nil {
		t.Fatal("expected eval sandbox to reject a file-touching import")
	}
}
