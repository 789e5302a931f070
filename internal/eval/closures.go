// Closures (spec §4.6 toFunction): parameter binding in up to three passes
// (left, right, sink), scope snapshot/restore around a call.
//
// Grounded on gotypst's eval/call.go's Closure.call, which swaps the Vm's
// scope stack for a FlatScope built from the closure's captured Scopes for
// the call's duration and restores it afterward. We keep the
// snapshot-then-swap shape; env.Environment.Snapshot/SetFrames stands in for
// the teacher's FlattenToScope + scope-stack swap.
package eval

import (
	"fmt"

	"github.com/boergens/gotypst/internal/ast"
	"github.com/boergens/gotypst/internal/env"
	"github.com/boergens/gotypst/internal/value"
)

// toFunction builds a closure value capturing the current identifier stack
// (spec §4.6).
func (e *Evaluator) toFunction(name string, params []ast.Param, body ast.Expr) *value.Function {
	snapshot := e.Identifiers.Snapshot()
	fn := &value.Function{Name: name, Captured: value.NewDict()}
	fn.Call = func(args *value.Arguments) (value.Value, error) {
		return e.callClosure(fn, snapshot, name, params, body, args)
	}
	return fn
}

func (e *Evaluator) callClosure(self *value.Function, snapshot []*env.Frame, name string, params []ast.Param, body ast.Expr, args *value.Arguments) (value.Value, error) {
	priorFrames := e.Identifiers.Frames()
	restored := make([]*env.Frame, len(snapshot))
	copy(restored, snapshot)
	e.Identifiers.SetFrames(restored)
	e.Identifiers.Push(env.FunctionScope)
	defer func() {
		e.Identifiers.Pop()
		e.Identifiers.SetFrames(priorFrames)
	}()

	if name != "" {
		e.Identifiers.Define(name, self)
	}

	if err := e.bindParams(params, args); err != nil {
		return nil, err
	}

	e.Flow = FlowNormal{}
	v, err := e.evalExpr(body)
	if err != nil {
		return nil, err
	}
	if fr, ok := e.TakeFlow().(FlowReturn); ok && fr.HasValue {
		return fr.Value, nil
	}
	return v, nil
}

// bindParams implements spec §4.6 steps 4-8: when a SinkParam is present,
// left params consume positional.front left-to-right, right params consume
// positional.back right-to-left, and the sink collects the remainder.
// Otherwise every param consumes left-to-right.
func (e *Evaluator) bindParams(params []ast.Param, args *value.Arguments) error {
	sinkIdx := -1
	for i, p := range params {
		if _, ok := p.(ast.SinkParam); ok {
			sinkIdx = i
			break
		}
	}
	named := args.Named.Clone().(*value.Dict)
	positional := append([]value.Value(nil), args.Positional...)

	if sinkIdx < 0 {
		for _, p := range params {
			if err := e.bindOneParam(p, &positional, named, true); err != nil {
				return err
			}
		}
		return nil
	}

	for _, p := range params[:sinkIdx] {
		if err := e.bindOneParam(p, &positional, named, true); err != nil {
			return err
		}
	}
	for i := len(params) - 1; i > sinkIdx; i-- {
		if err := e.bindOneParam(params[i], &positional, named, false); err != nil {
			return err
		}
	}
	sink := params[sinkIdx].(ast.SinkParam)
	if sink.Name != "" {
		rest := &value.Arguments{Positional: positional, Named: named}
		e.Identifiers.Define(sink.Name, rest)
	}
	return nil
}

// bindOneParam consumes from the front of *positional when front is true,
// else from the back.
func (e *Evaluator) bindOneParam(p ast.Param, positional *[]value.Value, named *value.Dict, front bool) error {
	pop := func() (value.Value, bool) {
		if len(*positional) == 0 {
			return nil, false
		}
		if front {
			v := (*positional)[0]
			*positional = (*positional)[1:]
			return v, true
		}
		v := (*positional)[len(*positional)-1]
		*positional = (*positional)[:len(*positional)-1]
		return v, true
	}

	switch x := p.(type) {
	case ast.NormalParam:
		v, ok := pop()
		if !ok {
			return fmt.Errorf("missing argument for parameter %q", x.Name)
		}
		e.Identifiers.Define(x.Name, v)
	case ast.DefaultParam:
		if v, ok := named.Get(x.Name); ok {
			named.Remove(x.Name)
			e.Identifiers.Define(x.Name, v)
			return nil
		}
		v, err := e.evalExpr(x.Default)
		if err != nil {
			return err
		}
		e.Identifiers.Define(x.Name, v)
	case ast.DestructuringParam:
		v, ok := pop()
		if !ok {
			return fmt.Errorf("missing argument to destructure")
		}
		return e.destructure(x.Pattern, v)
	case ast.SkipParam:
		_, _ = pop()
	default:
		return fmt.Errorf("eval: unhandled parameter kind %T", p)
	}
	return nil
}
