package value

import "testing"

func TestDictInsertPreservesPosition(t *testing.T) {
	d := NewDict()
	d.Set("a", Integer(1))
	d.Set("b", Integer(2))
	d.Set("c", Integer(3))
	d.Set("a", Integer(99))

	want := []string{"a", "b", "c"}
	got := d.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i, k := range want {
		if got[i] != k {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], k)
		}
	}

	v, ok := d.Get("a")
	if !ok {
		t.Fatal("Get(\"a\") missing")
	}
	if v != Integer(99) {
		t.Errorf("Get(\"a\") = %v, want 99", v)
	}
}

func TestDictRemove(t *testing.T) {
	d := NewDict()
	d.Set("x", Integer(1))
	d.Set("y", Integer(2))

	v, ok := d.Remove("x")
	if !ok || v != Integer(1) {
		t.Fatalf("Remove(\"x\") = %v, %v", v, ok)
	}
	if _, ok := d.Get("x"); ok {
		t.Error("x still present after Remove")
	}
	if d.Len() != 1 {
		t.Errorf("Len() = %d, want 1", d.Len())
	}
}

func TestMergeLeftBiasedDefaultsFirst(t *testing.T) {
	base := NewDict()
	base.Set("size", Integer(10))
	base.Set("color", Integer(0))

	overlay := NewDict()
	overlay.Set("color", Integer(1))
	overlay.Set("weight", Integer(5))

	merged := MergeLeftBiased(base, overlay, false)
	if v, _ := merged.Get("size"); v != Integer(10) {
		t.Errorf("size = %v, want 10 (base wins, not present in overlay)", v)
	}
	if v, _ := merged.Get("color"); v != Integer(0) {
		t.Errorf("color = %v, want 0 (base wins when overrideWins is false)", v)
	}
	if v, _ := merged.Get("weight"); v != Integer(5) {
		t.Errorf("weight = %v, want 5 (new key from overlay)", v)
	}

	want := []string{"size", "color", "weight"}
	got := merged.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMergeLeftBiasedOverrideWins(t *testing.T) {
	base := NewDict()
	base.Set("color", Integer(0))

	overlay := NewDict()
	overlay.Set("color", Integer(1))

	merged := MergeLeftBiased(base, overlay, true)
	if v, _ := merged.Get("color"); v != Integer(1) {
		t.Errorf("color = %v, want 1 (overlay wins when overrideWins is true)", v)
	}
}

func TestArrayNegativeIndexWrapsModuloLength(t *testing.T) {
	a := NewArray(Integer(1), Integer(2), Integer(3))

	v, ok := a.At(-1)
	if !ok || v != Integer(3) {
		t.Fatalf("At(-1) = %v, %v, want 3, true", v, ok)
	}
	v, ok = a.At(-3)
	if !ok || v != Integer(1) {
		t.Fatalf("At(-3) = %v, %v, want 1, true", v, ok)
	}
	if _, ok := a.At(-4); ok {
		t.Error("At(-4) should be out of range")
	}
}

func TestArrayInsertAndRemove(t *testing.T) {
	a := NewArray(Integer(1), Integer(3))
	if !a.Insert(1, Integer(2)) {
		t.Fatal("Insert(1, 2) failed")
	}
	if a.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", a.Len())
	}
	for i, want := range []Value{Integer(1), Integer(2), Integer(3)} {
		if v, _ := a.At(i); v != want {
			t.Errorf("At(%d) = %v, want %v", i, v, want)
		}
	}

	v, ok := a.Remove(0)
	if !ok || v != Integer(1) {
		t.Fatalf("Remove(0) = %v, %v", v, ok)
	}
	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2", a.Len())
	}
}

func TestArrayCloneIsIndependent(t *testing.T) {
	a := NewArray(Integer(1))
	b := a.Clone().(*Array)
	b.Set(0, Integer(99))

	if v, _ := a.At(0); v != Integer(1) {
		t.Errorf("original mutated after cloning: At(0) = %v, want 1", v)
	}
}
