package function

import (
	"testing"

	"github.com/llir/llvm/ir"
	lltypes "github.com/llir/llvm/ir/types"

	"github.com/tern-lang/tern/source/types"
)

func params(ts ...*types.Type) []*Variable {
	result := []*Variable{}
	for _, t := range ts {
		result = append(result, &Variable{Type: t})
	}
	return result
}

func TestVarArgs(t *testing.T) {
	tests := []struct {
		params   []*Variable
		varargs  bool
		required int
	}{
		{params(), false, 0},
		{params(types.Int32), false, 1},
		{params(types.VarArgs), true, 0},
		{params(types.PointerTo(types.Int32), types.Int32, types.VarArgs), true, 2},
		{params(types.PointerTo(types.Int32), types.Int32), false, 2},
	}
	for _, test := range tests {
		fn := New(types.Void, test.params, nil, false, "f", false)
		if fn.IsVarArgs() != test.varargs {
			t.Fatalf(`Test failed with %s | Wanted varargs : %v | Got : %v.`, fn.ParamString(), test.varargs, fn.IsVarArgs())
		}
		if fn.NumberOfRequiredArgs() != test.required {
			t.Fatalf(`Test failed with %s | Wanted : %v | Got : %v.`, fn.ParamString(), test.required, fn.NumberOfRequiredArgs())
		}
		expected := len(fn.Params)
		if fn.IsVarArgs() {
			expected--
		}
		if fn.NumberOfRequiredArgs() != expected {
			t.Fatalf(`Required args and varargs disagree for %s.`, fn.ParamString())
		}
	}
}

func TestIsEqualTo(t *testing.T) {
	pInt := types.PointerTo(types.Int32)
	a := New(pInt, params(pInt, types.Int32), nil, false, "a", false)
	tests := []struct {
		other *Function
		want  bool
	}{
		{New(pInt, params(pInt, types.Int32), nil, false, "b", true), true}, // Attributes don't matter.
		{New(types.Int32, params(pInt, types.Int32), nil, false, "b", false), false},
		{New(pInt, params(pInt), nil, false, "b", false), false},
		{New(pInt, params(pInt, types.Int32, types.VarArgs), nil, false, "b", false), false},
		{New(pInt, params(types.Int32, pInt), nil, false, "b", false), false},
		{New(pInt, params(pInt, types.Int64), nil, false, "b", false), false},
	}
	for i, test := range tests {
		if got := a.IsEqualTo(test.other); got != test.want {
			t.Fatalf(`Test %d failed | Wanted : %v | Got : %v.`, i, test.want, got)
		}
		if test.other.IsEqualTo(a) != a.IsEqualTo(test.other) {
			t.Fatalf(`Test %d failed: IsEqualTo is not symmetric.`, i)
		}
	}
	a.Params[0].Name = "x"
	if !a.IsEqualTo(tests[0].other) {
		t.Fatalf("Parameter names shouldn't affect equality.")
	}
}

func TestAttrsAreEqual(t *testing.T) {
	a := New(types.Void, params(), nil, false, "a", false)
	b := New(types.Void, params(), nil, false, "b", true)
	c := New(types.Void, params(), nil, true, "c", false)
	if a.AttrsAreEqual(b) {
		t.Fatalf("Functions disagreeing about inlining should have unequal attributes.")
	}
	if !a.AttrsAreEqual(c) {
		t.Fatalf("Only the inline attribute should be compared.")
	}
}

func TestDeclarationAndRetval(t *testing.T) {
	m := ir.NewModule()
	llfn := m.NewFunc("f", lltypes.I32)
	fn := New(types.Int32, params(), nil, false, "f", false)
	if !fn.IsDeclaration() {
		t.Fatalf("A function with no instruction stream is a declaration.")
	}
	fn.LLVM = llfn
	if !fn.IsDeclaration() {
		t.Fatalf("A function with an empty instruction stream is a declaration.")
	}
	llfn.NewBlock("entry")
	if fn.IsDeclaration() {
		t.Fatalf("A function with a body is not a declaration.")
	}
	if fn.HasRetval() {
		t.Fatalf("Plain return types aren't retval.")
	}
	if !New(types.Retval(types.Int64), params(), nil, false, "g", false).HasRetval() {
		t.Fatalf("Retval return types should be reported.")
	}
}

func TestLabels(t *testing.T) {
	m := ir.NewModule()
	llfn := m.NewFunc("f", lltypes.Void)
	entry := llfn.NewBlock("entry")
	later := llfn.NewBlock("later")
	orphan := llfn.NewBlock("orphan")
	fn := New(types.Void, params(), llfn, false, "f", false)

	if _, ok := fn.GetLabel("done"); ok {
		t.Fatalf("Found a label that was never added.")
	}
	fn.AddDeferredGoto(&DeferredGoto{LabelName: "done", Block: entry})
	fn.AddDeferredGoto(&DeferredGoto{LabelName: "nowhere", Block: orphan})
	fn.AddLabel("done", &Label{Name: "done", Block: later})

	unresolved := fn.ResolveGotos()
	if len(unresolved) != 1 || unresolved[0].LabelName != "nowhere" {
		t.Fatalf("Wanted only 'nowhere' to be unresolved, got %v.", unresolved)
	}
	br, ok := entry.Term.(*ir.TermBr)
	if !ok || br.Target != later {
		t.Fatalf("The deferred goto should have become a branch to its label.")
	}
	if orphan.Term != nil {
		t.Fatalf("An unresolved goto shouldn't get a terminator.")
	}
	if len(fn.DeferredGotos) != 0 {
		t.Fatalf("The ledger should be empty after resolution.")
	}
}

func TestMangle(t *testing.T) {
	tests := []struct {
		name   string
		params []*types.Type
		want   string
	}{
		{"f", nil, "_Z1fv"},
		{"add", []*types.Type{types.Int32, types.Int32}, "_Z3addii"},
		{"p+", []*types.Type{types.PointerTo(types.Int32), types.Int64}, "_Z5p_2b_Pil"},
	}
	for _, test := range tests {
		if got := Mangle(test.name, test.params); got != test.want {
			t.Fatalf(`Test failed with %s | Wanted : %s | Got : %s.`, test.name, test.want, got)
		}
	}
}
