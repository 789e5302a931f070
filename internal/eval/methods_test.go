package eval

import (
	"testing"

	"github.com/boergens/gotypst/internal/ast"
	"github.com/boergens/gotypst/internal/value"
)

func TestGetMethodStringLen(t *testing.T) {
	e := newTestEvaluator()
	fn := e.getMethod(nil, value.String("hello"), "len")
	if fn == nil {
		t.Fatal("getMethod(String, \"len\") = nil")
	}
	result, err := fn.Call(value.NewArguments())
	if err != nil {
		t.Fatalf("len(): %v", err)
	}
	if result != value.Integer(5) {
		t.Errorf("len() = %v, want 5", result)
	}
}

func TestGetMethodUnknownFieldReturnsNil(t *testing.T) {
	e := newTestEvaluator()
	if fn := e.getMethod(nil, value.String("hi"), "notAMethod"); fn != nil {
		t.Errorf("getMethod for an unknown field = %v, want nil", fn)
	}
}

// array.push writes the mutated array back through the lvalue protocol, so
// calling it on a bound name updates that binding (spec §4.7's updateVal).
func TestArrayPushWritesBackThroughLvalue(t *testing.T) {
	e := newTestEvaluator()
	e.Identifiers.Define("xs", value.NewArray(value.Integer(1), value.Integer(2)))

	v, _ := e.Identifiers.Get("xs")
	arr := v.(*value.Array)
	fn := e.getMethod(ast.IdentExpr{Name: "xs"}, arr, "push")
	args := value.NewArguments()
	args.Positional = append(args.Positional, value.Integer(3))
	if _, err := fn.Call(args); err != nil {
		t.Fatalf("push: %v", err)
	}

	updated, _ := e.Identifiers.Get("xs")
	items := updated.(*value.Array).Items()
	if len(items) != 3 || items[2] != value.Integer(3) {
		t.Errorf("xs after push = %v, want (1, 2, 3)", items)
	}
}

func TestArrayMapAppliesFunctionToEachItem(t *testing.T) {
	e := newTestEvaluator()
	arr := value.NewArray(value.Integer(1), value.Integer(2), value.Integer(3))
	fn := e.getMethod(nil, arr, "map")

	double := &value.Function{
		Name:     "double",
		Captured: value.NewDict(),
		Call: func(args *value.Arguments) (value.Value, error) {
			n, _ := value.AsInt(args.Positional[0])
			return value.Integer(n * 2), nil
		},
	}
	args := value.NewArguments()
	args.Positional = append(args.Positional, double)
	result, err := fn.Call(args)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	out, ok := result.(*value.Array)
	if !ok {
		t.Fatalf("map() = %T, want *value.Array", result)
	}
	items := out.Items()
	if len(items) != 3 || items[0] != value.Integer(2) || items[1] != value.Integer(4) || items[2] != value.Integer(6) {
		t.Errorf("map(double) = %v, want (2, 4, 6)", items)
	}
}

func TestDictAtFallsBackToDefaultNamedArg(t *testing.T) {
	e := newTestEvaluator()
	d := value.NewDict()
	d.Set("a", value.Integer(1))
	fn := e.getMethod(nil, d, "at")

	args := value.NewArguments()
	args.Positional = append(args.Positional, value.String("missing"))
	args.Named.Set("default", value.Integer(-1))
	result, err := fn.Call(args)
	if err != nil {
		t.Fatalf("at: %v", err)
	}
	if result != value.Integer(-1) {
		t.Errorf("at(\"missing\", default: -1) = %v, want -1", result)
	}
}

func TestDictInsertWritesBackThroughLvalue(t *testing.T) {
	e := newTestEvaluator()
	d := value.NewDict()
	d.Set("a", value.Integer(1))
	e.Identifiers.Define("d", d)

	fn := e.getMethod(ast.IdentExpr{Name: "d"}, d, "insert")
	args := value.NewArguments()
	args.Positional = append(args.Positional, value.String("b"), value.Integer(2))
	if _, err := fn.Call(args); err != nil {
		t.Fatalf("insert: %v", err)
	}

	updated, _ := e.Identifiers.Get("d")
	ud := updated.(*value.Dict)
	v, ok := ud.Get("b")
	if !ok || v != value.Integer(2) {
		t.Errorf("d.b = %v, %v, want 2, true", v, ok)
	}
}
