// Method dispatcher (spec §4.7): for every value kind, a fixed catalogue of
// named methods materializes as a callable Function value carrying the
// receiver, rather than double-dispatching on (value, method name) at each
// call site.
//
// Grounded on gotypst's eval/call.go (GetTypeMethod) and the teacher's
// per-kind method tables (str.go, array.go, dict_methods.go): each teacher
// method is a free function of (target, *Args); we keep that one-function-
// per-method shape but build the *value.Function at lookup time instead of
// routing through a reflection-based registry, since our value universe has
// no struct-tag-driven method table to reflect over.
package eval

import (
	"fmt"

	"github.com/boergens/gotypst/internal/ast"
	"github.com/boergens/gotypst/internal/value"
)

// getMethod returns a callable implementing the named method for target's
// kind, or nil if field does not name a method for that kind (spec §4.2's
// FieldAccess falls through to the other field-access branches when this
// returns nil). targetExpr is threaded through so the array and dict
// mutating methods (push, pop, insert, remove) can write the mutated receiver
// back through the lvalue protocol once they're done (spec §4.7: "Any
// mutator uses updateVal to write back the new container through the lvalue
// path. This keeps a.push(x) working on expressions deeper than a simple
// name.").
func (e *Evaluator) getMethod(targetExpr ast.Expr, target value.Value, field string) *value.Function {
	updateVal := func(v value.Value) {
		if targetExpr == nil {
			return
		}
		_ = e.updateExpression(targetExpr, v)
	}

	switch t := target.(type) {
	case value.String:
		return e.stringMethod(string(t), field)
	case *value.Array:
		return e.arrayMethod(t, field, updateVal)
	case *value.Dict:
		return e.dictMethod(t, field, updateVal)
	case value.Content:
		return e.contentMethod(t, field)
	case value.Counter:
		return e.counterMethod(t, field)
	case value.Color:
		return e.colorMethod(t, field)
	case *value.Function:
		return e.functionMethod(t, field)
	case value.Selector:
		return e.selectorMethod(t, field)
	case *value.Arguments:
		return e.argumentsMethod(t, field)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Argument-extraction helpers shared by every method table.
// ---------------------------------------------------------------------------

func popPositional(args *value.Arguments) (value.Value, bool) {
	if len(args.Positional) == 0 {
		return nil, false
	}
	v := args.Positional[0]
	args.Positional = args.Positional[1:]
	return v, true
}

func expectPositional(args *value.Arguments, method string) (value.Value, error) {
	v, ok := popPositional(args)
	if !ok {
		return nil, fmt.Errorf("%s: missing argument", method)
	}
	return v, nil
}

func namedOrDefault(args *value.Arguments, name string) (value.Value, bool) {
	return args.Named.Get(name)
}

func bareFunction(name string, call value.Callable) *value.Function {
	return &value.Function{Name: name, Captured: value.NewDict(), Call: call}
}

// ---------------------------------------------------------------------------
// Dict methods (spec §4.7): len, at(k, default?), insert(k, v), keys,
// values, pairs, remove(k); non-method keys fall through to field access.
// ---------------------------------------------------------------------------

func (e *Evaluator) dictMethod(d *value.Dict, field string, updateVal func(value.Value)) *value.Function {
	switch field {
	case "len":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			return value.Integer(d.Len()), nil
		})
	case "at":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			key, err := expectPositional(args, "at")
			if err != nil {
				return nil, err
			}
			k, ok := value.AsString(key)
			if !ok {
				return nil, fmt.Errorf("at: key must be a string")
			}
			if v, ok := d.Get(k); ok {
				return v, nil
			}
			if def, ok := namedOrDefault(args, "default"); ok {
				return def, nil
			}
			return nil, fmt.Errorf("dictionary does not contain key %q", k)
		})
	case "insert":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			key, err := expectPositional(args, "insert")
			if err != nil {
				return nil, err
			}
			val, err := expectPositional(args, "insert")
			if err != nil {
				return nil, err
			}
			k, ok := value.AsString(key)
			if !ok {
				return nil, fmt.Errorf("insert: key must be a string")
			}
			d.Set(k, val)
			updateVal(d)
			return value.None{}, nil
		})
	case "keys":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			keys := d.Keys()
			items := make([]value.Value, len(keys))
			for i, k := range keys {
				items[i] = value.String(k)
			}
			return value.NewArray(items...), nil
		})
	case "values":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			pairs := d.Pairs()
			items := make([]value.Value, len(pairs))
			for i, kv := range pairs {
				items[i] = kv.Value
			}
			return value.NewArray(items...), nil
		})
	case "pairs":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			pairs := d.Pairs()
			items := make([]value.Value, len(pairs))
			for i, kv := range pairs {
				items[i] = value.NewArray(value.String(kv.Key), kv.Value)
			}
			return value.NewArray(items...), nil
		})
	case "remove":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			key, err := expectPositional(args, "remove")
			if err != nil {
				return nil, err
			}
			k, ok := value.AsString(key)
			if !ok {
				return nil, fmt.Errorf("remove: key must be a string")
			}
			v, ok := d.Remove(k)
			if !ok {
				return nil, fmt.Errorf("dictionary does not contain key %q", k)
			}
			updateVal(d)
			return v, nil
		})
	}
	return nil
}

// ---------------------------------------------------------------------------
// Content methods (spec §4.7): func, has(field), at(field, default?), text,
// children.
// ---------------------------------------------------------------------------

func (e *Evaluator) contentMethod(c value.Content, field string) *value.Function {
	switch field {
	case "func":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			if len(c.Nodes) == 1 && !c.Nodes[0].IsText {
				return &value.Function{Name: c.Nodes[0].Name, ElementName: &c.Nodes[0].Name, Captured: value.NewDict()}, nil
			}
			name := "text"
			return &value.Function{Name: name, ElementName: &name, Captured: value.NewDict()}, nil
		})
	case "has":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			name, err := expectPositional(args, "has")
			if err != nil {
				return nil, err
			}
			n, ok := value.AsString(name)
			if !ok {
				return nil, fmt.Errorf("has: field name must be a string")
			}
			if len(c.Nodes) == 1 && !c.Nodes[0].IsText && c.Nodes[0].Fields != nil {
				_, has := c.Nodes[0].Fields.Get(n)
				return value.Boolean(has), nil
			}
			return value.Boolean(false), nil
		})
	case "at":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			name, err := expectPositional(args, "at")
			if err != nil {
				return nil, err
			}
			n, ok := value.AsString(name)
			if !ok {
				return nil, fmt.Errorf("at: field name must be a string")
			}
			if len(c.Nodes) == 1 && !c.Nodes[0].IsText && c.Nodes[0].Fields != nil {
				if v, ok := c.Nodes[0].Fields.Get(n); ok {
					return v, nil
				}
			}
			if def, ok := namedOrDefault(args, "default"); ok {
				return def, nil
			}
			return nil, fmt.Errorf("content has no field %q", n)
		})
	case "text":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			return value.String(c.TextOf()), nil
		})
	case "children":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			items := make([]value.Value, len(c.Nodes))
			for i, n := range c.Nodes {
				items[i] = value.Content{Nodes: []value.Node{n}}
			}
			return value.NewArray(items...), nil
		})
	}
	return nil
}

// ---------------------------------------------------------------------------
// Counter methods (spec §4.7, §9): display, step, update(int|fn); at/final
// are left unimplemented, matching the source (Open Question decision
// recorded in DESIGN.md).
// ---------------------------------------------------------------------------

func (e *Evaluator) counterMethod(c value.Counter, field string) *value.Function {
	switch field {
	case "display":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			n := e.Counters[c.Key]
			return value.NewContent(value.Txt(fmt.Sprintf("%d", n))), nil
		})
	case "step":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			e.Counters[c.Key]++
			return value.None{}, nil
		})
	case "update":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			v, err := expectPositional(args, "update")
			if err != nil {
				return nil, err
			}
			switch u := v.(type) {
			case value.Integer:
				e.Counters[c.Key] = int64(u)
			case *value.Function:
				result, err := u.Call(&value.Arguments{Positional: []value.Value{value.Integer(e.Counters[c.Key])}, Named: value.NewDict()})
				if err != nil {
					return nil, err
				}
				n, ok := value.AsInt(result)
				if !ok {
					return nil, fmt.Errorf("update: function must return an integer")
				}
				e.Counters[c.Key] = n
			default:
				return nil, fmt.Errorf("update: expected integer or function")
			}
			return value.None{}, nil
		})
	case "at", "final":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			return nil, fmt.Errorf("counter.%s is unimplemented", field)
		})
	}
	return nil
}

// ---------------------------------------------------------------------------
// Color methods (spec §4.7): darken(n), lighten(n), negate - componentwise
// in the color's own space.
// ---------------------------------------------------------------------------

func (e *Evaluator) colorMethod(c value.Color, field string) *value.Function {
	switch field {
	case "darken":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			v, err := expectPositional(args, "darken")
			if err != nil {
				return nil, err
			}
			amount, ok := ratioOrFloat(v)
			if !ok {
				return nil, fmt.Errorf("darken: expected a ratio or number")
			}
			return c.Darken(amount), nil
		})
	case "lighten":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			v, err := expectPositional(args, "lighten")
			if err != nil {
				return nil, err
			}
			amount, ok := ratioOrFloat(v)
			if !ok {
				return nil, fmt.Errorf("lighten: expected a ratio or number")
			}
			return c.Lighten(amount), nil
		})
	case "negate":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			return c.Negate(), nil
		})
	}
	return nil
}

func ratioOrFloat(v value.Value) (float64, bool) {
	if r, ok := v.(value.Ratio); ok {
		return r.Float64(), true
	}
	return value.AsFloat(v)
}

// ---------------------------------------------------------------------------
// Function methods (spec §4.7): with(...) -> partially-applied function;
// where(...named...) -> Selector.Element(name, fields), failing if not an
// element function.
// ---------------------------------------------------------------------------

func (e *Evaluator) functionMethod(fn *value.Function, field string) *value.Function {
	switch field {
	case "with":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			partial := &value.Function{Name: fn.Name, ElementName: fn.ElementName, Captured: fn.Captured}
			partial.Call = func(call *value.Arguments) (value.Value, error) {
				merged := args.Concat(call)
				return fn.Call(merged)
			}
			return partial, nil
		})
	case "where":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			name, ok := fn.IsElement()
			if !ok {
				return nil, fmt.Errorf("where: %q is not an element function", fn.Name)
			}
			return value.ElementSelector{Name: name, Fields: args.Named.Clone().(*value.Dict)}, nil
		})
	}
	return nil
}

// ---------------------------------------------------------------------------
// Selector methods (spec §4.7): or, and, before, after.
// ---------------------------------------------------------------------------

func (e *Evaluator) selectorMethod(sel value.Selector, field string) *value.Function {
	switch field {
	case "or":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			other, err := selectorArg(args)
			if err != nil {
				return nil, err
			}
			return value.OrSelector{A: sel, B: other}, nil
		})
	case "and":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			other, err := selectorArg(args)
			if err != nil {
				return nil, err
			}
			return value.AndSelector{A: sel, B: other}, nil
		})
	case "before":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			other, err := selectorArg(args)
			if err != nil {
				return nil, err
			}
			return value.BeforeSelector{A: sel, B: other}, nil
		})
	case "after":
		return bareFunction(field, func(args *value.Arguments) (value.Value, error) {
			other, err := selectorArg(args)
			if err != nil {
				return nil, err
			}
			return value.AfterSelector{A: sel, B: other}, nil
		})
	}
	return nil
}

func selectorArg(args *value.Arguments) (value.Selector, error) {
	v, err := expectPositional(args, "selector")
	if err != nil {
		return nil, err
	}
	return toSelector(v)
}

// ---------------------------------------------------------------------------
// Arguments methods (spec §4.7): pos, named.
// ---------------------------------------------------------------------------

func (e *Evaluator) argumentsMethod(a *value.Arguments, field string) *value.Function {
	switch field {
	case "pos":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			return value.NewArray(append([]value.Value(nil), a.Positional...)...), nil
		})
	case "named":
		return bareFunction(field, func(*value.Arguments) (value.Value, error) {
			return a.Named.Clone(), nil
		})
	}
	return nil
}
