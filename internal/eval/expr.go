// Expression evaluator (spec §4.2): dispatches on the expression variant,
// threading the `flow` directive through control-flow constructs.
//
// Grounded on gotypst's eval/mod.rs-equivalent Eval trait dispatch (one
// method per node kind) and eval/flow.go's FlowEvent propagation out of
// blocks/loops/functions; the evaluator mirrors that shape with a single
// switch over ast.Expr and an explicit Flow field on the receiver instead of
// a Rust-style ControlFlow return channel.
package eval

import (
	"fmt"
	"math"

	"github.com/boergens/gotypst/internal/ast"
	"github.com/boergens/gotypst/internal/env"
	"github.com/boergens/gotypst/internal/value"
)

func (e *Evaluator) evalExpr(expr ast.Expr) (value.Value, error) {
	switch x := expr.(type) {
	case ast.IntLit:
		return value.Integer(x.Value), nil
	case ast.FloatLit:
		return value.Float(x.Value), nil
	case ast.BoolLit:
		return value.Boolean(x.Value), nil
	case ast.StringLit:
		return value.String(x.Value), nil
	case ast.NoneLit:
		return value.None{}, nil
	case ast.AutoLit:
		return value.Auto{}, nil
	case ast.NumericLit:
		return evalNumeric(x), nil

	case ast.ArrayExpr:
		items := make([]value.Value, len(x.Items))
		for i, it := range x.Items {
			v, err := e.evalExpr(it)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return value.NewArray(items...), nil

	case ast.DictExpr:
		d := value.NewDict()
		for _, kv := range x.Entries {
			v, err := e.evalExpr(kv.Value)
			if err != nil {
				return nil, err
			}
			d.Set(kv.Key, v)
		}
		return d, nil

	case ast.NotExpr:
		v, err := e.evalExpr(x.X)
		if err != nil {
			return nil, err
		}
		return value.Not(v)

	case ast.AndExpr:
		l, err := e.evalExpr(x.L)
		if err != nil {
			return nil, err
		}
		lb, ok := value.AsBool(l)
		if !ok {
			return nil, fmt.Errorf("expected boolean, found %s", l.Kind())
		}
		if !lb {
			return value.Boolean(false), nil
		}
		r, err := e.evalExpr(x.R)
		if err != nil {
			return nil, err
		}
		rb, ok := value.AsBool(r)
		if !ok {
			return nil, fmt.Errorf("expected boolean, found %s", r.Kind())
		}
		return value.Boolean(rb), nil

	case ast.OrExpr:
		l, err := e.evalExpr(x.L)
		if err != nil {
			return nil, err
		}
		lb, ok := value.AsBool(l)
		if !ok {
			return nil, fmt.Errorf("expected boolean, found %s", l.Kind())
		}
		if lb {
			return value.Boolean(true), nil
		}
		r, err := e.evalExpr(x.R)
		if err != nil {
			return nil, err
		}
		rb, ok := value.AsBool(r)
		if !ok {
			return nil, fmt.Errorf("expected boolean, found %s", r.Kind())
		}
		return value.Boolean(rb), nil

	case ast.BinaryExpr:
		return e.evalBinary(x)

	case ast.NegExpr:
		v, err := e.evalExpr(x.X)
		if err != nil {
			return nil, err
		}
		return value.Neg(v)

	case ast.IdentExpr:
		v, ok := e.Identifiers.Get(x.Name)
		if !ok {
			return nil, fmt.Errorf("%s not defined in scope", x.Name)
		}
		return v, nil

	case ast.FieldAccessExpr:
		return e.evalFieldAccess(x)

	case ast.FuncCallExpr:
		return e.evalCall(x)

	case ast.ClosureExpr:
		return e.toFunction(x.Name, x.Params, x.Body), nil

	case ast.LetFuncExpr:
		fn := e.toFunction(x.Name, x.Params, x.Body)
		e.Identifiers.Define(x.Name, fn)
		return fn, nil

	case ast.LetExpr:
		v, err := e.evalExpr(x.Value)
		if err != nil {
			return nil, err
		}
		if err := e.bind(x.Target, v); err != nil {
			return nil, err
		}
		return value.None{}, nil

	case ast.AssignExpr:
		v, err := e.evalExpr(x.Value)
		if err != nil {
			return nil, err
		}
		if ident, ok := x.Target.(ast.IdentExpr); ok {
			// A Binding target re-runs the bind against the identifier walk
			// (spec §4.2); a bare identifier assignment is exactly that.
			ok, crossed := e.Identifiers.Assign(ident.Name, v)
			if crossed {
				return nil, fmt.Errorf("%s is read-only from outside its defining function", ident.Name)
			}
			if !ok {
				return nil, fmt.Errorf("%s not defined in scope", ident.Name)
			}
			return value.None{}, nil
		}
		if err := e.updateExpression(x.Target, v); err != nil {
			return nil, err
		}
		return value.None{}, nil

	case ast.IfExpr:
		for _, clause := range x.Clauses {
			if clause.Cond == nil {
				// A trailing `else` clause carries no condition.
				return e.evalExpr(clause.Body)
			}
			c, err := e.evalExpr(clause.Cond)
			if err != nil {
				return nil, err
			}
			cb, ok := value.AsBool(c)
			if !ok {
				return nil, fmt.Errorf("condition must be a boolean, found %s", c.Kind())
			}
			if cb {
				return e.evalExpr(clause.Body)
			}
		}
		return value.None{}, nil

	case ast.WhileExpr:
		return e.evalWhile(x)

	case ast.ForExpr:
		return e.evalFor(x)

	case ast.ReturnExpr:
		if x.Value == nil {
			e.Flow = FlowReturn{HasValue: false}
			return value.None{}, nil
		}
		v, err := e.evalExpr(x.Value)
		if err != nil {
			return nil, err
		}
		e.Flow = FlowReturn{HasValue: true, Value: v}
		return v, nil

	case ast.ContinueExpr:
		e.Flow = FlowContinue{}
		return value.None{}, nil

	case ast.BreakExpr:
		e.Flow = FlowBreak{}
		return value.None{}, nil

	case ast.CodeBlockExpr:
		return e.evalCodeBlock(x.Exprs)

	case ast.ContentBlockExpr:
		return e.InBlock(env.BlockScope, func() (value.Value, error) {
			c, err := e.evalContentSeq(x.Body)
			return c, err
		})

	case ast.SetExpr:
		return e.evalSet(x)

	case ast.ShowExpr:
		return e.evalShow(x)

	case ast.ImportExpr:
		return value.None{}, e.evalImport(x)

	case ast.IncludeExpr:
		return e.evalInclude(x)
	}
	return nil, fmt.Errorf("eval: unhandled expression %T", expr)
}

func evalNumeric(n ast.NumericLit) value.Value {
	switch n.Unit {
	case "fr":
		return value.Fraction{Value: n.Value}
	case "%":
		return value.RatioFromPercent(n.Value)
	case "deg":
		return value.Angle{Radians: n.Value * math.Pi / 180}
	case "rad":
		return value.Angle{Radians: n.Value}
	default:
		return value.Length{Value: n.Value, Unit: n.Unit}
	}
}

// evalBinary dispatches an arithmetic or comparison operator to the value
// universe's partial operations (spec §4.2).
func (e *Evaluator) evalBinary(x ast.BinaryExpr) (value.Value, error) {
	l, err := e.evalExpr(x.L)
	if err != nil {
		return nil, err
	}
	r, err := e.evalExpr(x.R)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case ast.OpAdd:
		return value.Add(l, r)
	case ast.OpSub:
		return value.Sub(l, r)
	case ast.OpMul:
		return value.Mul(l, r)
	case ast.OpDiv:
		return value.Div(l, r)
	case ast.OpPow:
		return value.Pow(l, r)
	case ast.OpEq:
		return value.Boolean(value.Equal(l, r)), nil
	case ast.OpNe:
		return value.Boolean(!value.Equal(l, r)), nil
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		ord := value.Compare(l, r)
		if ord == value.Undefined {
			return nil, fmt.Errorf("cannot order %s and %s", l.Kind(), r.Kind())
		}
		switch x.Op {
		case ast.OpLt:
			return value.Boolean(ord == value.LT), nil
		case ast.OpLe:
			return value.Boolean(ord == value.LT || ord == value.EQ), nil
		case ast.OpGt:
			return value.Boolean(ord == value.GT), nil
		default:
			return value.Boolean(ord == value.GT || ord == value.EQ), nil
		}
	case ast.OpIn:
		b, err := value.In(l, r)
		if err != nil {
			return nil, err
		}
		return value.Boolean(b), nil
	case ast.OpNotIn:
		b, err := value.In(l, r)
		if err != nil {
			return nil, err
		}
		return value.Boolean(!b), nil
	}
	return nil, fmt.Errorf("eval: unhandled binary operator")
}

// evalCodeBlock implements Block(CodeBlock(es)) (spec §4.2): a new
// BlockScope, folding expressions left-to-right with joinVals, honoring
// Continue/Break/Return short-circuits.
func (e *Evaluator) evalCodeBlock(exprs []ast.Expr) (value.Value, error) {
	return e.InBlock(env.BlockScope, func() (value.Value, error) {
		var acc value.Value = value.None{}
		for _, ex := range exprs {
			e.Flow = FlowNormal{}
			v, err := e.evalExpr(ex)
			if err != nil {
				return nil, err
			}
			switch fl := e.Flow.(type) {
			case FlowNormal:
				acc = joinVals(acc, v)
			case FlowContinue, FlowBreak:
				acc = joinVals(acc, v)
				return acc, nil
			case FlowReturn:
				if fl.HasValue {
					return fl.Value, nil
				}
				acc = joinVals(acc, v)
				return acc, nil
			}
		}
		return acc, nil
	})
}

// joinVals implements spec §4.2's joinVals: None + x = x; Content + Content
// = concat; one content side coerces the other via valToContent; otherwise
// defers to maybePlus.
func joinVals(a, b value.Value) value.Value {
	if value.IsNone(a) {
		return b
	}
	if value.IsNone(b) {
		return a
	}
	ac, aIsContent := a.(value.Content)
	bc, bIsContent := b.(value.Content)
	if aIsContent || bIsContent {
		if !aIsContent {
			ac = valToContent(a)
		}
		if !bIsContent {
			bc = valToContent(b)
		}
		return value.Concat(ac, bc)
	}
	v, err := value.Add(a, b)
	if err != nil {
		return b
	}
	return v
}

func (e *Evaluator) evalWhile(x ast.WhileExpr) (value.Value, error) {
	e.Flow = FlowNormal{}
	var acc value.Value = value.None{}
	for {
		c, err := e.evalExpr(x.Cond)
		if err != nil {
			return nil, err
		}
		cb, ok := value.AsBool(c)
		if !ok {
			return nil, fmt.Errorf("condition must be a boolean, found %s", c.Kind())
		}
		if !cb {
			break
		}
		v, err := e.evalExpr(x.Body)
		if err != nil {
			return nil, err
		}
		acc = joinVals(acc, v)
		if _, isBreak := e.Flow.(FlowBreak); isBreak {
			e.Flow = FlowNormal{}
			break
		}
		if _, isReturn := e.Flow.(FlowReturn); isReturn {
			return acc, nil
		}
		e.Flow = FlowNormal{}
	}
	return acc, nil
}

func (e *Evaluator) evalFor(x ast.ForExpr) (value.Value, error) {
	e.Flow = FlowNormal{}
	source, err := e.evalExpr(x.Source)
	if err != nil {
		return nil, err
	}
	items, err := forItems(source)
	if err != nil {
		return nil, err
	}

	var acc value.Value = value.None{}
	for _, item := range items {
		v, err := e.InBlock(env.BlockScope, func() (value.Value, error) {
			if err := e.bind(x.Bind, item); err != nil {
				return nil, err
			}
			return e.evalExpr(x.Body)
		})
		if err != nil {
			return nil, err
		}
		acc = joinVals(acc, v)
		if _, isBreak := e.Flow.(FlowBreak); isBreak {
			e.Flow = FlowNormal{}
			break
		}
		if _, isReturn := e.Flow.(FlowReturn); isReturn {
			return acc, nil
		}
		e.Flow = FlowNormal{}
	}
	return acc, nil
}

// forItems implements For's source iteration rule (spec §4.2): strings
// split into per-codepoint single-character strings, arrays into elements,
// dicts into [key, value] pairs.
func forItems(source value.Value) ([]value.Value, error) {
	switch s := source.(type) {
	case value.String:
		runes := []rune(string(s))
		out := make([]value.Value, len(runes))
		for i, r := range runes {
			out[i] = value.String(string(r))
		}
		return out, nil
	case *value.Array:
		return append([]value.Value(nil), s.Items()...), nil
	case *value.Dict:
		out := make([]value.Value, 0, s.Len())
		for _, kv := range s.Pairs() {
			out = append(out, value.NewArray(value.String(kv.Key), kv.Value))
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot iterate over a %s", source.Kind())
}

func (e *Evaluator) evalFieldAccess(x ast.FieldAccessExpr) (value.Value, error) {
	target, err := e.evalExpr(x.Target)
	if err != nil {
		return nil, err
	}
	if m := e.getMethod(x.Target, target, x.Field); m != nil {
		return m, nil
	}
	switch t := target.(type) {
	case value.Symbol:
		variant, ok := t.SelectVariant(x.Field)
		if !ok {
			return nil, fmt.Errorf("symbol has no variant tagged %q", x.Field)
		}
		t.Text = variant.Text
		return t, nil
	case *value.Module:
		v, ok := t.Exports.Get(x.Field)
		if !ok {
			return nil, fmt.Errorf("module %q has no member %q", t.Ident, x.Field)
		}
		return v, nil
	case *value.Function:
		v, ok := t.Captured.Get(x.Field)
		if !ok {
			return nil, fmt.Errorf("function has no captured member %q", x.Field)
		}
		return v, nil
	case *value.Dict:
		v, ok := t.Get(x.Field)
		if !ok {
			return nil, fmt.Errorf("dictionary has no key %q", x.Field)
		}
		return v, nil
	}
	return nil, fmt.Errorf("cannot access field %q on a %s", x.Field, target.Kind())
}

// evalCall implements spec §4.2's function-call rule, including math-mode's
// symbol-accent and implicit-call-as-text fallbacks.
func (e *Evaluator) evalCall(x ast.FuncCallExpr) (value.Value, error) {
	e.Flow = FlowNormal{}
	callee, err := e.evalExpr(x.Callee)
	if err != nil {
		return nil, err
	}
	args, err := e.evalArgs(x.Args)
	if err != nil {
		return nil, err
	}

	if fn, ok := callee.(*value.Function); ok {
		if name, isElement := fn.IsElement(); isElement {
			if defaults, ok := e.Styles[name]; ok {
				args = &value.Arguments{Positional: args.Positional, Named: value.MergeLeftBiased(defaults, args.Named, true)}
			}
		}
		return fn.Call(args)
	}

	if e.Math {
		if sym, ok := callee.(value.Symbol); ok && sym.IsAccent {
			accentFn, ok := e.Identifiers.Get("accent")
			if !ok {
				return nil, fmt.Errorf("accent not defined in scope")
			}
			fn, ok := accentFn.(*value.Function)
			if !ok {
				return nil, fmt.Errorf("accent is not a function")
			}
			args.Positional = append(args.Positional, sym)
			return fn.Call(args)
		}
		return mathCallFallback(callee, args), nil
	}

	return nil, fmt.Errorf("cannot call a %s", callee.Kind())
}

func mathCallFallback(callee value.Value, args *value.Arguments) value.Content {
	parts := make([]string, len(args.Positional))
	for i, p := range args.Positional {
		parts[i] = valToContent(p).TextOf()
	}
	joined := ""
	for i, p := range parts {
		if i > 0 {
			joined += ", "
		}
		joined += p
	}
	return value.NewContent(value.Txt(valToContent(callee).TextOf() + "(" + joined + ")"))
}

func (e *Evaluator) evalArgs(args *ast.ArgsNode) (*value.Arguments, error) {
	out := value.NewArguments()
	if args == nil {
		return out, nil
	}
	for _, item := range args.Items {
		v, err := e.evalExpr(item.Value)
		if err != nil {
			return nil, err
		}
		if item.Spread {
			switch s := v.(type) {
			case *value.Array:
				out.Positional = append(out.Positional, s.Items()...)
			case *value.Dict:
				for _, kv := range s.Pairs() {
					out.Named.Set(kv.Key, kv.Value)
				}
			case *value.Arguments:
				out.Positional = append(out.Positional, s.Positional...)
				for _, kv := range s.Named.Pairs() {
					out.Named.Set(kv.Key, kv.Value)
				}
			default:
				return nil, fmt.Errorf("cannot spread a %s", v.Kind())
			}
			continue
		}
		if item.Name != "" {
			out.Named.Set(item.Name, v)
			continue
		}
		out.Positional = append(out.Positional, v)
	}
	return out, nil
}

func (e *Evaluator) evalSet(x ast.SetExpr) (value.Value, error) {
	target, err := e.evalExpr(x.Target)
	if err != nil {
		return nil, err
	}
	fn, ok := target.(*value.Function)
	if !ok {
		return nil, fmt.Errorf("set target must be an element function")
	}
	name, ok := fn.IsElement()
	if !ok {
		return nil, fmt.Errorf("%q is not an element function", fn.Name)
	}
	args, err := e.evalArgs(x.Args)
	if err != nil {
		return nil, err
	}
	existing, ok := e.Styles[name]
	if !ok {
		existing = value.NewDict()
	}
	e.Styles[name] = value.MergeLeftBiased(existing, args.Named, true)
	return value.None{}, nil
}

func (e *Evaluator) evalShow(x ast.ShowExpr) (value.Value, error) {
	var bodyVal value.Value
	_, err := e.InBlock(env.FunctionScope, func() (value.Value, error) {
		v, err := e.evalExpr(x.Body)
		bodyVal = v
		return v, err
	})
	if err != nil {
		return nil, err
	}

	if x.Selector == nil {
		// A selector-less show consumes the rest of its enclosing markup
		// in one call (spec §4.2), which only the pContent loop in
		// content.go can do; content.go's pElt intercepts this form
		// before evalExpr ever reaches here. Arriving here means the
		// directive showed up somewhere with no remaining content to
		// consume, e.g. nested inside a plain code block.
		return nil, fmt.Errorf("a selector-less show must be a standalone statement in content, not nested in a code block")
	}

	selVal, err := e.evalExpr(x.Selector)
	if err != nil {
		return nil, err
	}
	sel, err := toSelector(selVal)
	if err != nil {
		return nil, err
	}

	var transformer func(value.Node) (value.Content, error)
	if fn, ok := bodyVal.(*value.Function); ok {
		transformer = func(node value.Node) (value.Content, error) {
			return e.applyShowFunction(fn, node)
		}
	} else if _, isSet := x.Body.(ast.SetExpr); isSet {
		// A `set` body is a pass-through: matched nodes are left unchanged.
		transformer = func(node value.Node) (value.Content, error) { return value.NewContent(node), nil }
	} else {
		pre := valToContent(bodyVal)
		transformer = func(value.Node) (value.Content, error) { return pre, nil }
	}

	e.ShowRules = append([]ShowRule{{Selector: sel, Transformer: transformer}}, e.ShowRules...)
	return value.None{}, nil
}

func (e *Evaluator) applyShowFunction(fn *value.Function, node value.Node) (value.Content, error) {
	args := &value.Arguments{Positional: []value.Value{value.NewContent(node)}, Named: value.NewDict()}
	v, err := fn.Call(args)
	if err != nil {
		return value.Content{}, err
	}
	return valToContent(v), nil
}

func (e *Evaluator) evalImport(x ast.ImportExpr) error {
	mod, err := e.loadModule(x.Source)
	if err != nil {
		return err
	}
	switch x.Kind {
	case ast.ImportAll:
		for _, kv := range mod.Exports.Pairs() {
			e.Identifiers.Define(kv.Key, kv.Value)
		}
	case ast.ImportSome:
		for _, name := range x.Items {
			v, ok := mod.Exports.Get(name)
			if !ok {
				return fmt.Errorf("module %q has no member %q", mod.Ident, name)
			}
			e.Identifiers.Define(name, v)
		}
	case ast.ImportNone:
		e.Identifiers.Define(mod.Ident, mod)
	}
	return nil
}

func (e *Evaluator) evalInclude(x ast.IncludeExpr) (value.Value, error) {
	mod, err := e.loadModule(x.Source)
	if err != nil {
		return nil, err
	}
	for _, kv := range mod.Exports.Pairs() {
		e.Identifiers.Define(kv.Key, kv.Value)
	}
	return value.None{}, nil
}
