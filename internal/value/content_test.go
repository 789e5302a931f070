package value

import "testing"

func TestNewContentDropsEmptyText(t *testing.T) {
	c := NewContent(Txt(""), Txt("hi"), Txt(""))
	if len(c.Nodes) != 1 {
		t.Fatalf("Nodes = %v, want 1 node", c.Nodes)
	}
	if !c.Nodes[0].IsText || c.Nodes[0].Text != "hi" {
		t.Errorf("Nodes[0] = %+v, want Txt(\"hi\")", c.Nodes[0])
	}
}

func TestConcatDropsEmptyText(t *testing.T) {
	a := NewContent(Txt("a"))
	b := Content{Nodes: []Node{Txt(""), Txt("b")}}
	c := Concat(a, b)
	if len(c.Nodes) != 2 {
		t.Fatalf("Nodes = %v, want 2 nodes", c.Nodes)
	}
}

func TestTextOfDescendsIntoBodyField(t *testing.T) {
	inner := NewContent(Txt("world"))
	fields := NewDict()
	fields.Set("body", inner)
	outer := NewContent(Txt("hello "), Elt("strong", fields))

	if got := outer.TextOf(); got != "hello world" {
		t.Errorf("TextOf() = %q, want %q", got, "hello world")
	}
}

func TestTextOfUsesTextFieldOnTextElement(t *testing.T) {
	fields := NewDict()
	fields.Set("text", String("5"))
	c := NewContent(Elt("text", fields))
	if got := c.TextOf(); got != "5" {
		t.Errorf("TextOf() = %q, want %q", got, "5")
	}
}

func TestLabelledAttachesLabel(t *testing.T) {
	n := Txt("x").Labelled("fig:1")
	if n.Label == nil || *n.Label != "fig:1" {
		t.Errorf("Label = %v, want \"fig:1\"", n.Label)
	}
}

func TestContentCloneIsIndependent(t *testing.T) {
	fields := NewDict()
	fields.Set("text", String("a"))
	c := NewContent(Elt("text", fields))
	clone := c.Clone().(Content)

	clone.Nodes[0].Fields.Set("text", String("b"))
	if v, _ := c.Nodes[0].Fields.Get("text"); v != String("a") {
		t.Errorf("original mutated after cloning: text = %v, want \"a\"", v)
	}
}

func TestCollapseAdjacentTextPassesEachTextNodeThroughConstructor(t *testing.T) {
	c := Content{Nodes: []Node{Txt("a"), Txt("b"), Txt(""), Elt("strong", nil), Txt("c")}}
	var seen []string
	out := CollapseAdjacentText(c, func(s string) Node {
		seen = append(seen, s)
		return Elt("text", nil)
	})
	if len(seen) != 3 {
		t.Fatalf("constructor called with %v, want 3 calls", seen)
	}
	if seen[0] != "a" || seen[1] != "b" || seen[2] != "c" {
		t.Errorf("constructor args = %v, want [a b c]", seen)
	}
	if len(out.Nodes) != 4 {
		t.Errorf("out.Nodes = %v, want 4 nodes (3 text + 1 strong)", out.Nodes)
	}
}
