// Binding destructuring and the lvalue protocol (spec §4.2's
// updateExpression contract).
//
// Grounded on gotypst's eval/access.go, which resolves an lvalue expression
// down to a mutable slot (Value::at/Array::at_mut) before writing; we keep
// that "resolve target, then mutate in place via the container's own
// setter" shape, routed back through env.Environment.Assign for the bare
// identifier case and through Array.Set/Dict.Set for the container cases.
package eval

import (
	"fmt"

	"github.com/boergens/gotypst/internal/ast"
	"github.com/boergens/gotypst/internal/value"
)

// bind implements Let's BasicBind/DestructuringBind dispatch (spec §4.2).
func (e *Evaluator) bind(target ast.Bind, v value.Value) error {
	switch t := target.(type) {
	case ast.BasicBind:
		if t.Name != "" {
			e.Identifiers.Define(t.Name, v)
		}
		return nil
	case ast.DestructuringBind:
		return e.destructure(&t, v)
	}
	return fmt.Errorf("eval: unhandled bind kind %T", target)
}

// destructure implements the destructuring helper named in spec §4.2,
// binding each part via the innermost-frame insert: array-style parts
// consume elements positionally, dict-style parts (Key set) look up by key.
func (e *Evaluator) destructure(pattern *ast.DestructuringBind, v value.Value) error {
	if d, ok := v.(*value.Dict); ok {
		return e.destructureDict(pattern, d)
	}
	arr, ok := v.(*value.Array)
	if !ok {
		return fmt.Errorf("cannot destructure a %s", v.Kind())
	}
	return e.destructureArray(pattern, arr)
}

func (e *Evaluator) destructureArray(pattern *ast.DestructuringBind, arr *value.Array) error {
	sinkAt := -1
	for i, p := range pattern.Parts {
		if p.Sink {
			sinkAt = i
			break
		}
	}
	items := arr.Items()
	if sinkAt < 0 {
		if len(items) < len(pattern.Parts) {
			return fmt.Errorf("not enough elements to destructure")
		}
		for i, p := range pattern.Parts {
			if p.Name != "" {
				e.Identifiers.Define(p.Name, items[i])
			}
		}
		return nil
	}

	before := pattern.Parts[:sinkAt]
	after := pattern.Parts[sinkAt+1:]
	if len(items) < len(before)+len(after) {
		return fmt.Errorf("not enough elements to destructure")
	}
	for i, p := range before {
		if p.Name != "" {
			e.Identifiers.Define(p.Name, items[i])
		}
	}
	restEnd := len(items) - len(after)
	if sinkName := pattern.Parts[sinkAt].Name; sinkName != "" {
		e.Identifiers.Define(sinkName, value.NewArray(items[len(before):restEnd]...))
	}
	for i, p := range after {
		if p.Name != "" {
			e.Identifiers.Define(p.Name, items[restEnd+i])
		}
	}
	return nil
}

func (e *Evaluator) destructureDict(pattern *ast.DestructuringBind, d *value.Dict) error {
	used := make(map[string]bool, len(pattern.Parts))
	for _, p := range pattern.Parts {
		if p.Sink {
			continue
		}
		key := p.Key
		if key == "" {
			key = p.Name
		}
		v, ok := d.Get(key)
		if !ok {
			return fmt.Errorf("dictionary does not contain key %q", key)
		}
		used[key] = true
		if p.Name != "" {
			e.Identifiers.Define(p.Name, v)
		}
	}
	for _, p := range pattern.Parts {
		if !p.Sink || p.Name == "" {
			continue
		}
		rest := value.NewDict()
		for _, kv := range d.Pairs() {
			if !used[kv.Key] {
				rest.Set(kv.Key, kv.Value)
			}
		}
		e.Identifiers.Define(p.Name, rest)
	}
	return nil
}

// updateExpression implements spec §4.2's lvalue protocol: Assign(e1, e2)
// descends here when e1 is not a bare Binding.
func (e *Evaluator) updateExpression(target ast.Expr, v value.Value) error {
	switch t := target.(type) {
	case ast.IdentExpr:
		ok, crossed := e.Identifiers.Assign(t.Name, v)
		if crossed {
			return fmt.Errorf("%s is read-only from outside its defining function", t.Name)
		}
		if !ok {
			return fmt.Errorf("%s not defined in scope", t.Name)
		}
		return nil

	case ast.FuncCallExpr:
		return e.updateFuncCall(t, v)

	case ast.FieldAccessExpr:
		// FieldAccess(Ident(f), target) -> at(target, String f).
		return e.updateExpression(ast.FuncCallExpr{
			Callee: ast.IdentExpr{Name: "at"},
			Args: &ast.ArgsNode{Items: []ast.ArgItem{
				{Value: t.Target},
				{Value: ast.StringLit{Value: t.Field}},
			}},
		}, v)
	}
	return fmt.Errorf("eval: invalid assignment target %T", target)
}

func (e *Evaluator) updateFuncCall(call ast.FuncCallExpr, v value.Value) error {
	callee, ok := call.Callee.(ast.IdentExpr)
	if !ok {
		return fmt.Errorf("eval: invalid assignment target")
	}

	switch callee.Name {
	case "at":
		if len(call.Args.Items) < 2 {
			return fmt.Errorf("at() requires a target and a key")
		}
		target, err := e.evalExpr(call.Args.Items[0].Value)
		if err != nil {
			return err
		}
		key, err := e.evalExpr(call.Args.Items[1].Value)
		if err != nil {
			return err
		}
		return e.writeContainer(call.Args.Items[0].Value, target, key, v)

	case "first", "last":
		if len(call.Args.Items) < 1 {
			return fmt.Errorf("%s() requires a target", callee.Name)
		}
		target, err := e.evalExpr(call.Args.Items[0].Value)
		if err != nil {
			return err
		}
		idx := value.Integer(0)
		if callee.Name == "last" {
			idx = -1
		}
		return e.writeContainer(call.Args.Items[0].Value, target, idx, v)
	}
	return fmt.Errorf("eval: %q is not a valid assignment target", callee.Name)
}

// writeContainer mutates target in place by index/key, then writes the
// mutated container back through updateExpression so the change is visible
// through whatever lvalue targetExpr denotes.
func (e *Evaluator) writeContainer(targetExpr ast.Expr, target value.Value, key value.Value, v value.Value) error {
	switch c := target.(type) {
	case *value.Array:
		idx, ok := value.AsInt(key)
		if !ok {
			return fmt.Errorf("array index must be an integer")
		}
		if !c.Set(int(idx), v) {
			return fmt.Errorf("array index out of bounds")
		}
		return e.updateExpression(targetExpr, c)
	case *value.Dict:
		k, ok := value.AsString(key)
		if !ok {
			return fmt.Errorf("dictionary key must be a string")
		}
		c.Set(k, v)
		return e.updateExpression(targetExpr, c)
	}
	return fmt.Errorf("cannot index a %s", target.Kind())
}
