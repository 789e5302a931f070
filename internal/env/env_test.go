package env

import (
	"testing"

	"github.com/boergens/gotypst/internal/value"
)

func TestDefineAndGet(t *testing.T) {
	e := New(nil)
	e.Define("x", value.Integer(1))
	v, ok := e.Get("x")
	if !ok || v != value.Integer(1) {
		t.Fatalf("Get(\"x\") = %v, %v, want 1, true", v, ok)
	}
}

func TestGetFallsBackToBase(t *testing.T) {
	e := New(map[string]value.Value{"pi": value.Float(3.14)})
	v, ok := e.Get("pi")
	if !ok || v != value.Float(3.14) {
		t.Fatalf("Get(\"pi\") = %v, %v, want 3.14, true", v, ok)
	}
}

func TestInnerFrameShadowsBase(t *testing.T) {
	e := New(map[string]value.Value{"x": value.Integer(0)})
	e.Define("x", value.Integer(1))
	v, _ := e.Get("x")
	if v != value.Integer(1) {
		t.Errorf("Get(\"x\") = %v, want 1 (frame shadows base)", v)
	}
}

func TestGetWalksOuterFrames(t *testing.T) {
	e := New(nil)
	e.Define("x", value.Integer(1))
	e.Push(BlockScope)
	v, ok := e.Get("x")
	if !ok || v != value.Integer(1) {
		t.Fatalf("Get(\"x\") from inner frame = %v, %v, want 1, true", v, ok)
	}
}

func TestPopDiscardsInnerBindings(t *testing.T) {
	e := New(nil)
	e.Push(BlockScope)
	e.Define("y", value.Integer(1))
	e.Pop()
	if _, ok := e.Get("y"); ok {
		t.Error("binding from popped frame should not be visible")
	}
}

func TestAssignUpdatesExistingBindingInOuterFrame(t *testing.T) {
	e := New(nil)
	e.Define("x", value.Integer(1))
	e.Push(BlockScope)
	ok, crossed := e.Assign("x", value.Integer(2))
	if !ok || crossed {
		t.Fatalf("Assign(\"x\", 2) = %v, %v, want true, false", ok, crossed)
	}
	e.Pop()
	v, _ := e.Get("x")
	if v != value.Integer(2) {
		t.Errorf("x = %v, want 2", v)
	}
}

func TestAssignUndefinedNameFails(t *testing.T) {
	e := New(nil)
	ok, crossed := e.Assign("nope", value.Integer(1))
	if ok || crossed {
		t.Errorf("Assign(\"nope\", ...) = %v, %v, want false, false", ok, crossed)
	}
}

func TestAssignStopsAtFunctionScopeBoundary(t *testing.T) {
	e := New(nil)
	e.Define("x", value.Integer(1))
	e.Push(FunctionScope)
	ok, crossed := e.Assign("x", value.Integer(2))
	if ok || !crossed {
		t.Fatalf("Assign across function boundary = %v, %v, want false, true", ok, crossed)
	}
}

func TestAssignWithinSameFunctionScopeSucceeds(t *testing.T) {
	e := New(nil)
	e.Push(FunctionScope)
	e.Define("local", value.Integer(1))
	ok, crossed := e.Assign("local", value.Integer(2))
	if !ok || crossed {
		t.Fatalf("Assign(\"local\", ...) = %v, %v, want true, false", ok, crossed)
	}
}

func TestDepthTracksPushPop(t *testing.T) {
	e := New(nil)
	start := e.Depth()
	e.Push(BlockScope)
	e.Push(BlockScope)
	if e.Depth() != start+2 {
		t.Fatalf("Depth() = %d, want %d", e.Depth(), start+2)
	}
	e.Pop()
	e.Pop()
	if e.Depth() != start {
		t.Fatalf("Depth() = %d, want %d", e.Depth(), start)
	}
}

func TestDefineInsertPreservesPositionOnUpdate(t *testing.T) {
	e := New(nil)
	e.Define("a", value.Integer(1))
	e.Define("b", value.Integer(2))
	e.Define("a", value.Integer(99))

	exports := e.Frames()[0].Exports()
	keys := exports.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("Exports keys = %v, want [a b]", keys)
	}
	v, _ := exports.Get("a")
	if v != value.Integer(99) {
		t.Errorf("a = %v, want 99", v)
	}
}

func TestSnapshotIsIndependentOfLiveFrames(t *testing.T) {
	e := New(nil)
	e.Define("x", value.Integer(1))
	snap := e.Snapshot()

	e.Define("x", value.Integer(2))

	live := e.Frames()
	saved := snap

	liveVal, _ := live[0].get("x")
	savedVal, _ := saved[0].get("x")
	if liveVal != value.Integer(2) {
		t.Errorf("live frame x = %v, want 2", liveVal)
	}
	if savedVal != value.Integer(1) {
		t.Errorf("snapshot frame x = %v, want 1 (unaffected by later Define)", savedVal)
	}
}

func TestSetFramesInstallsCapturedStack(t *testing.T) {
	e := New(nil)
	e.Define("x", value.Integer(1))
	snap := e.Snapshot()

	live := e.Frames()
	e.SetFrames(snap)
	e.Define("x", value.Integer(2))
	e.SetFrames(live)

	v, _ := e.Get("x")
	if v != value.Integer(1) {
		t.Errorf("x after restoring live frames = %v, want 1", v)
	}
}
