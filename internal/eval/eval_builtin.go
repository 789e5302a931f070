// The `eval` built-in (spec §4.9): evaluates a string as a single code
// expression in a sandboxed evaluator state with no filesystem access.
//
// Grounded on gotypst's library/foundations/mod.rs-style "eval" entry (the
// teacher exposes no direct equivalent; this is built from the same
// fresh-evaluator-state pattern used by loadModule, with loadBytes withheld
// per spec §4.9's "making filesystem side effects impossible").
package eval

import (
	"fmt"

	"github.com/boergens/gotypst/internal/ast"
	"github.com/boergens/gotypst/internal/diag"
	"github.com/boergens/gotypst/internal/env"
	"github.com/boergens/gotypst/internal/value"
)

// evalBuiltin implements spec §4.9: wrap code in `#{...}`, parse, require
// exactly one Code node, and evaluate it with loadBytes withheld.
func (e *Evaluator) evalBuiltin(code string) (value.Value, error) {
	wrapped := "#{" + code + "}"
	markup, err := e.Parse(wrapped)
	if err != nil {
		return nil, diag.EvalBuiltin(err)
	}

	var expr ast.Expr
	count := 0
	for _, node := range markup {
		if c, ok := node.(ast.Code); ok {
			expr = c.Expr
			count++
			continue
		}
		if _, ok := node.(ast.Space); ok {
			continue
		}
		if _, ok := node.(ast.SoftBreak); ok {
			continue
		}
	}
	if count != 1 {
		return nil, diag.EvalBuiltin(fmt.Errorf("expected a single expression, found %d", count))
	}

	sub := &Evaluator{
		Identifiers: env.New(e.Identifiers.Base()),
		Styles:      make(map[string]*value.Dict),
		Counters:    make(map[string]int64),
		CurrentTime: e.CurrentTime,
		Parse:       e.Parse,
		SourceName:  e.SourceName,
		Logger:      e.Logger,
		Flow:        FlowNormal{},
	}
	sub.Identifiers.Define("eval", sub.evalFunction())

	v, err := sub.evalExpr(expr)
	if err != nil {
		return nil, diag.EvalBuiltin(err)
	}
	return v, nil
}

// evalFunction exposes evalBuiltin as the injected "eval" base identifier
// (spec §6: "a map of base identifiers ... plus an eval function injected by
// the evaluator").
func (e *Evaluator) evalFunction() *value.Function {
	return &value.Function{
		Name:     "eval",
		Captured: value.NewDict(),
		Call: func(args *value.Arguments) (value.Value, error) {
			v, err := expectPositional(args, "eval")
			if err != nil {
				return nil, err
			}
			s, ok := value.AsString(v)
			if !ok {
				return nil, fmt.Errorf("eval: expected a string")
			}
			return e.evalBuiltin(string(s))
		},
	}
}
