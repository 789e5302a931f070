package value

import (
	"regexp"
	"testing"
)

func TestInStringSubstring(t *testing.T) {
	ok, err := In(String("wor"), String("hello world"))
	if err != nil || !ok {
		t.Fatalf("In(\"wor\", \"hello world\") = %v, %v, want true, nil", ok, err)
	}
}

func TestInRegexMatch(t *testing.T) {
	re := Regex{Re: regexp.MustCompile(`\d+`)}
	ok, err := In(re, String("room 42"))
	if err != nil || !ok {
		t.Fatalf("In(regex, \"room 42\") = %v, %v, want true, nil", ok, err)
	}
}

func TestInArrayUsesValueEquality(t *testing.T) {
	a := NewArray(Integer(1), Integer(2), Integer(3))
	ok, err := In(Integer(2), a)
	if err != nil || !ok {
		t.Fatalf("In(2, [1,2,3]) = %v, %v, want true, nil", ok, err)
	}
	ok, err = In(Integer(4), a)
	if err != nil || ok {
		t.Fatalf("In(4, [1,2,3]) = %v, %v, want false, nil", ok, err)
	}
}

func TestInDictKeyPresence(t *testing.T) {
	d := NewDict()
	d.Set("x", Integer(1))
	ok, err := In(String("x"), d)
	if err != nil || !ok {
		t.Fatalf("In(\"x\", dict) = %v, %v, want true, nil", ok, err)
	}
	ok, err = In(String("y"), d)
	if err != nil || ok {
		t.Fatalf("In(\"y\", dict) = %v, %v, want false, nil", ok, err)
	}
}

func TestInUnsupportedKindsErrors(t *testing.T) {
	_, err := In(Integer(1), Integer(2))
	if err == nil {
		t.Fatal("expected error for unsupported 'in' combination")
	}
}
