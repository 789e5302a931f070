package stdlib

import (
	"testing"

	"github.com/boergens/gotypst/internal/value"
)

func TestBaseIncludesCoreElements(t *testing.T) {
	base := Base()
	for _, name := range []string{"text", "emph", "strong", "raw", "heading", "list", "enum", "terms", "link", "ref", "equation", "accent"} {
		v, ok := base[name]
		if !ok {
			t.Errorf("Base() missing %q", name)
			continue
		}
		fn, ok := v.(*value.Function)
		if !ok {
			t.Errorf("Base()[%q] = %T, want *value.Function", name, v)
			continue
		}
		elemName, isElem := fn.IsElement()
		if !isElem || elemName != name {
			t.Errorf("%q.IsElement() = %q, %v, want %q, true", name, elemName, isElem, name)
		}
	}
}

func TestBaseIncludesMathAndSymModules(t *testing.T) {
	base := Base()
	m, ok := value.AsModule(base["math"])
	if !ok {
		t.Fatal("Base()[\"math\"] is not a module")
	}
	if _, ok := m.Exports.Get("frac"); !ok {
		t.Error("math module missing frac")
	}

	s, ok := value.AsModule(base["sym"])
	if !ok {
		t.Fatal("Base()[\"sym\"] is not a module")
	}
	if _, ok := s.Exports.Get("dot"); !ok {
		t.Error("sym module missing dot")
	}
}

func TestElementConstructorFillsPositionalField(t *testing.T) {
	base := Base()
	textFn := base["text"].(*value.Function)
	args := value.NewArguments()
	args.Positional = append(args.Positional, value.String("hello"))

	result, err := textFn.Call(args)
	if err != nil {
		t.Fatalf("text(\"hello\"): %v", err)
	}
	content, ok := value.AsContent(result)
	if !ok {
		t.Fatalf("text(...) = %T, want Content", result)
	}
	if len(content.Nodes) != 1 {
		t.Fatalf("Nodes = %v, want 1 node", content.Nodes)
	}
	node := content.Nodes[0]
	if node.Name != "text" {
		t.Errorf("Node.Name = %q, want \"text\"", node.Name)
	}
	got, _ := node.Fields.Get("text")
	if got != value.String("hello") {
		t.Errorf("text field = %v, want \"hello\"", got)
	}
}

func TestElementConstructorNamedArgsOverrideNothingButFillDict(t *testing.T) {
	base := Base()
	headingFn := base["heading"].(*value.Function)
	args := value.NewArguments()
	args.Named.Set("level", value.Integer(2))
	args.Positional = append(args.Positional, value.NewContent(value.Txt("Title")))

	result, err := headingFn.Call(args)
	if err != nil {
		t.Fatalf("heading(...): %v", err)
	}
	content, _ := value.AsContent(result)
	node := content.Nodes[0]

	level, ok := node.Fields.Get("level")
	if !ok || level != value.Integer(2) {
		t.Errorf("level field = %v, %v, want 2, true", level, ok)
	}
	body, ok := node.Fields.Get("body")
	if !ok {
		t.Fatal("body field missing")
	}
	bc, _ := value.AsContent(body)
	if bc.TextOf() != "Title" {
		t.Errorf("body text = %q, want %q", bc.TextOf(), "Title")
	}
}

func TestSymModuleAccentVariantsAreMarked(t *testing.T) {
	base := Base()
	sym, _ := value.AsModule(base["sym"])

	hat, ok := sym.Exports.Get("hat")
	if !ok {
		t.Fatal("sym.hat missing")
	}
	sv, ok := value.AsSymbol(hat)
	if !ok || !sv.IsAccent {
		t.Errorf("sym.hat = %+v, want IsAccent true", sv)
	}

	dot, ok := sym.Exports.Get("dot")
	if !ok {
		t.Fatal("sym.dot missing")
	}
	dv, _ := value.AsSymbol(dot)
	if dv.IsAccent {
		t.Error("sym.dot should not be an accent")
	}
}
