package value

import "testing"

func TestReprScalars(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{None{}, "none"},
		{Auto{}, "auto"},
		{Boolean(true), "true"},
		{Boolean(false), "false"},
		{Integer(42), "42"},
		{Fraction{Value: 1.5}, "1.5fr"},
		{Length{Value: 10, Unit: "pt"}, "10pt"},
		{Label("fig:1"), "<fig:1>"},
	}
	for _, c := range cases {
		if got := Repr(c.v); got != c.want {
			t.Errorf("Repr(%#v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestReprRatioAsPercent(t *testing.T) {
	r := NewRatio(1, 2)
	if got := Repr(r); got != "50%" {
		t.Errorf("Repr(1/2) = %q, want %q", got, "50%")
	}
}

func TestReprStringQuotesAndEscapes(t *testing.T) {
	if got := Repr(String(`say "hi"`)); got != `"say \"hi\""` {
		t.Errorf("Repr = %q", got)
	}
}

func TestReprSingleElementArrayHasTrailingComma(t *testing.T) {
	if got := Repr(NewArray(Integer(1))); got != "(1,)" {
		t.Errorf("Repr([1]) = %q, want %q", got, "(1,)")
	}
}

func TestReprMultiElementArrayNoTrailingComma(t *testing.T) {
	if got := Repr(NewArray(Integer(1), Integer(2))); got != "(1, 2)" {
		t.Errorf("Repr([1, 2]) = %q, want %q", got, "(1, 2)")
	}
}

func TestReprEmptyDict(t *testing.T) {
	if got := Repr(NewDict()); got != "(:)" {
		t.Errorf("Repr({}) = %q, want %q", got, "(:)")
	}
}

func TestReprDictPreservesKeyOrder(t *testing.T) {
	d := NewDict()
	d.Set("b", Integer(2))
	d.Set("a", Integer(1))
	if got := Repr(d); got != "(b: 2, a: 1)" {
		t.Errorf("Repr(dict) = %q, want %q", got, "(b: 2, a: 1)")
	}
}

func TestReprContentUsesTextOf(t *testing.T) {
	c := NewContent(Txt("hello"))
	if got := Repr(c); got != "[hello]" {
		t.Errorf("Repr(content) = %q, want %q", got, "[hello]")
	}
}

func TestReprNamedFunctionUsesName(t *testing.T) {
	f := &Function{Name: "strong"}
	if got := Repr(f); got != "strong" {
		t.Errorf("Repr(named func) = %q, want %q", got, "strong")
	}
}

func TestReprAnonymousFunction(t *testing.T) {
	f := &Function{}
	if got := Repr(f); got != "(anonymous function)" {
		t.Errorf("Repr(anon func) = %q, want %q", got, "(anonymous function)")
	}
}

func TestDisplayWidthASCII(t *testing.T) {
	if got := DisplayWidth("abc"); got != 3 {
		t.Errorf("DisplayWidth(\"abc\") = %d, want 3", got)
	}
}

func TestDisplayWidthEastAsianWide(t *testing.T) {
	if got := DisplayWidth("中"); got != 2 {
		t.Errorf("DisplayWidth(CJK char) = %d, want 2", got)
	}
}
