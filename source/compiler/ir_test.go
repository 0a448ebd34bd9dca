package compiler

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"

	"github.com/tern-lang/tern/source/function"
	"github.com/tern-lang/tern/source/parser"
	"github.com/tern-lang/tern/source/report"
	"github.com/tern-lang/tern/source/settings"
	"github.com/tern-lang/tern/source/store"
	"github.com/tern-lang/tern/source/types"
)

var ptrInt32 = types.PointerTo(types.Int32)

func compileClean(t *testing.T, source string) *Compiler {
	cp := New()
	if err := cp.CompileSource("test", source); err != nil {
		t.Fatalf("Internal error : %v", err)
	}
	if cp.ErrorsExist() {
		t.Fatalf("There were errors compiling the source : \n" + cp.ReturnErrors())
	}
	return cp
}

func geps(block *ir.Block) []*ir.InstGetElementPtr {
	result := []*ir.InstGetElementPtr{}
	for _, inst := range block.Insts {
		if gep, ok := inst.(*ir.InstGetElementPtr); ok {
			result = append(result, gep)
		}
	}
	return result
}

func TestOffsetsAreAppliedInOrder(t *testing.T) {
	cp := compileClean(t, `(def f (fn intern (p int32) ((a (p int32))) (return (p+ a 3 -1))))`)
	fn := cp.Function("f", ptrInt32)
	if fn == nil {
		t.Fatalf("Test failed | Wanted : f to be registered.")
	}
	gs := geps(fn.LLVM.Blocks[0])
	if len(gs) != 2 {
		t.Fatalf("Test failed | Wanted : 2 getelementptrs | Got : %d.", len(gs))
	}
	for i, want := range []int64{3, -1} {
		c, ok := gs[i].Indices[0].(*constant.Int)
		if !ok || c.X.Int64() != want {
			t.Fatalf("Test failed | Wanted : offset %d | Got : %v.", want, gs[i].Indices[0])
		}
	}
	if gs[1].Src != gs[0] {
		t.Fatalf("Test failed | Wanted : the second offset to apply to the result of the first.")
	}
	ret, ok := fn.LLVM.Blocks[0].Term.(*ir.TermRet)
	if !ok || ret.X != gs[1] {
		t.Fatalf("Test failed | Wanted : the function to return the last getelementptr.")
	}
}

func TestSubtractionNegatesOffsets(t *testing.T) {
	cp := compileClean(t, `(def f (fn intern (p int32) ((a (p int32))) (return (p- a 2))))`)
	gs := geps(cp.Function("f", ptrInt32).LLVM.Blocks[0])
	if len(gs) != 1 {
		t.Fatalf("Test failed | Wanted : 1 getelementptr | Got : %d.", len(gs))
	}
	if _, ok := gs[0].Indices[0].(*ir.InstSub); !ok {
		t.Fatalf("Test failed | Wanted : a negated offset | Got : %v.", gs[0].Indices[0])
	}
}

func TestPointerOffsetEndToEnd(t *testing.T) {
	cp := compileClean(t, `
(def f (fn intern (p int32) ((a (p int32)) (b int32)) (return (p+ a b))))
(def g (fn intern (p (p int32)) ((a (p int32)) (b int32)) (return (# (p+ a b)))))`)
	f := cp.Function("f", ptrInt32, types.Int32)
	if f == nil || !f.ReturnType.IsEqualTo(ptrInt32) {
		t.Fatalf("Test failed | Wanted : f returning (p int32).")
	}
	if _, ok := f.LLVM.Blocks[0].Term.(*ir.TermRet).X.(*ir.InstGetElementPtr); !ok {
		t.Fatalf("Test failed | Wanted : f to return a getelementptr.")
	}
	g := cp.Function("g", ptrInt32, types.Int32)
	if g == nil || !g.ReturnType.IsEqualTo(types.PointerTo(ptrInt32)) {
		t.Fatalf("Test failed | Wanted : g returning (p (p int32)).")
	}
	entry := g.LLVM.Blocks[0]
	alloca, ok := entry.Term.(*ir.TermRet).X.(*ir.InstAlloca)
	if !ok {
		t.Fatalf("Test failed | Wanted : g to return a fresh allocation.")
	}
	store, ok := entry.Insts[len(entry.Insts)-1].(*ir.InstStore)
	if !ok || store.Dst != alloca {
		t.Fatalf("Test failed | Wanted : the pointer to be stored into the allocation.")
	}
	if _, ok := store.Src.(*ir.InstGetElementPtr); !ok {
		t.Fatalf("Test failed | Wanted : the stored value to be the getelementptr.")
	}
}

func TestGetAddressOfPointerOffset(t *testing.T) {
	cp := compileClean(t, `(def f (fn intern void ((a (p int32))) (return)))`)
	fn := cp.Function("f", ptrInt32)
	block := fn.LLVM.NewBlock("")
	storage := block.NewAlloca(lltypes.NewPointer(lltypes.I32))
	cp.env = NewEnvironment()
	cp.env.AddVar(&function.Variable{Name: "a", Type: ptrInt32, Storage: storage})
	node, errs := parser.ParseOne("test", "(p+ a 1)")
	if len(errs) > 0 {
		t.Fatalf("Unexpected errors : %s", report.GetList(errs))
	}
	var pr Result
	if err := cp.CompileForm(fn, block, node, true, &pr); err != nil {
		t.Fatalf("Unexpected error : %v", err)
	}
	if !pr.Type.IsEqualTo(types.PointerTo(ptrInt32)) {
		t.Fatalf("Test failed | Wanted : (p (p int32)) | Got : %s.", pr.Type.String())
	}
	if _, ok := pr.Value().(*ir.InstAlloca); !ok {
		t.Fatalf("Test failed | Wanted : the address of a fresh allocation.")
	}
}

func TestFailedFormLeavesNoTrace(t *testing.T) {
	cp := New()
	if err := cp.CompileSource("test", `
(def g (fn intern int32 ((b int32)) (return (p+ b 1))))
(def h (fn intern int32 () (return 4)))`); err != nil {
		t.Fatalf("Internal error : %v", err)
	}
	if len(cp.Errors) != 1 || cp.Errors[0].Kind() != report.TypeMismatch {
		t.Fatalf("Test failed | Wanted : one type mismatch | Got : %s", cp.ReturnErrors())
	}
	if cp.Function("g", types.Int32) != nil {
		t.Fatalf("Test failed | Wanted : g not to be registered.")
	}
	if cp.Function("h") == nil {
		t.Fatalf("Test failed | Wanted : h to be registered.")
	}
	if len(cp.Module.Funcs) != 1 || cp.Module.Funcs[0].Name() != cp.Function("h").InternalName {
		t.Fatalf("Test failed | Wanted : only h in the module | Got : %d functions.", len(cp.Module.Funcs))
	}
}

func TestRedefinitionRestoresRegistry(t *testing.T) {
	cp := New()
	cp.CompileSource("test", `
(def f (fn intern int32 ((x int32)) (return x)))
(def f (fn intern int32 ((x int32)) (return 1)))`)
	if len(cp.Errors) != 1 || cp.Errors[0].Kind() != report.Redefinition {
		t.Fatalf("Test failed | Wanted : one redefinition | Got : %s", cp.ReturnErrors())
	}
	if len(cp.Registry.Overloads("f")) != 1 || len(cp.Module.Funcs) != 1 {
		t.Fatalf("Test failed | Wanted : one f.")
	}
}

func TestDeferredGotoIsResolved(t *testing.T) {
	cp := compileClean(t, `(def f (fn intern void () (goto end) (label end) (return)))`)
	fn := cp.Function("f")
	label, ok := fn.GetLabel("end")
	if !ok {
		t.Fatalf("Test failed | Wanted : label end.")
	}
	br, ok := fn.LLVM.Blocks[0].Term.(*ir.TermBr)
	if !ok || br.Target != label.Block {
		t.Fatalf("Test failed | Wanted : the entry block to branch to end.")
	}
	if len(fn.DeferredGotos) != 0 {
		t.Fatalf("Test failed | Wanted : no deferred gotos left.")
	}
	for _, block := range fn.LLVM.Blocks {
		if block.Term == nil {
			t.Fatalf("Test failed | Wanted : every block terminated.")
		}
	}
}

func TestUndefinedLabel(t *testing.T) {
	cp := New()
	cp.CompileSource("test", `(def f (fn intern void () (goto nowhere)))`)
	if len(cp.Errors) != 1 || cp.Errors[0].Kind() != report.UndefinedLabel {
		t.Fatalf("Test failed | Wanted : one undefined label | Got : %s", cp.ReturnErrors())
	}
	if cp.Errors[0].Token.Literal != "nowhere" {
		t.Fatalf("Test failed | Wanted : the error to point at the goto's label | Got : %s.", cp.Errors[0].Token.Literal)
	}
}

func TestReturnValueSlot(t *testing.T) {
	cp := compileClean(t, `
(def make-int (fn intern (retval int32) () (return 42)))
(def use (fn intern int32 () (return (make-int))))`)
	mk := cp.Function("make-int")
	if !mk.HasRetval() || len(mk.LLVM.Params) != 1 {
		t.Fatalf("Test failed | Wanted : make-int to take a slot.")
	}
	entry := cp.Function("use").LLVM.Blocks[0]
	var call *ir.InstCall
	for _, inst := range entry.Insts {
		if c, ok := inst.(*ir.InstCall); ok {
			call = c
		}
	}
	if call == nil || len(call.Args) != 1 {
		t.Fatalf("Test failed | Wanted : a call passing the slot.")
	}
	load, ok := entry.Term.(*ir.TermRet).X.(*ir.InstLoad)
	if !ok || load.Src != call.Args[0] {
		t.Fatalf("Test failed | Wanted : the result to be loaded from the slot.")
	}
}

func TestBuiltinFallbackRollsBack(t *testing.T) {
	cp := compileClean(t, `
(def p+ (fn intern int32 ((a int32) (b int32)) (return a)))
(def f (fn intern (p int32) ((x (p int32))) (return (p+ x (do 1)))))`)
	entry := cp.Function("f", ptrInt32).LLVM.Blocks[0]
	for _, inst := range entry.Insts {
		if _, ok := inst.(*ir.InstCall); ok {
			t.Fatalf("Test failed | Wanted : no call to the user's p+.")
		}
	}
	if len(geps(entry)) != 1 {
		t.Fatalf("Test failed | Wanted : the built-in p+.")
	}
	// The load of x compiled during the overload search has been thrown away.
	loads := 0
	for _, inst := range entry.Insts {
		if _, ok := inst.(*ir.InstLoad); ok {
			loads++
		}
	}
	if loads != 1 {
		t.Fatalf("Test failed | Wanted : 1 load | Got : %d.", loads)
	}
}

func TestDefinitionReplacesDeclaration(t *testing.T) {
	cp := compileClean(t, `
(def d (fn extern int32 ((x int32))))
(def e (fn extern int32 ((x int32)) (return (d x))))
(def d (fn extern int32 ((x int32)) (return x)))`)
	if len(cp.Module.Funcs) != 2 {
		t.Fatalf("Test failed | Wanted : 2 functions | Got : %d.", len(cp.Module.Funcs))
	}
	if cp.Function("d", types.Int32).IsDeclaration() {
		t.Fatalf("Test failed | Wanted : d to have a body.")
	}
}

func TestAttributesAndLinkage(t *testing.T) {
	cp := compileClean(t, `
(def printf (fn extern-c int32 ((format (p int8)) ...)))
(def destroy (fn extern (attr inline noserialise) void ((x (p int32)))))
(def setf-copy (fn intern void ((x (p int32)))))`)
	printf := cp.Function("printf", types.PointerTo(types.Make(types.INT8)), types.VarArgs)
	if printf.InternalName != "printf" || !printf.LLVM.Sig.Variadic || printf.NumberOfRequiredArgs() != 1 {
		t.Fatalf("Test failed | Wanted : an unmangled variadic printf.")
	}
	destroy := cp.Function("destroy", ptrInt32)
	if !destroy.IsDestructor || !destroy.AlwaysInline || destroy.Serialise {
		t.Fatalf("Test failed | Wanted : an inline non-serialised destructor.")
	}
	if !cp.Function("setf-copy", ptrInt32).IsSetfFn {
		t.Fatalf("Test failed | Wanted : setf-copy to be a setf function.")
	}
}

func TestDeclarationsComeBackFromStore(t *testing.T) {
	st, err := store.Open("SQLite", ":memory:")
	if err != nil {
		t.Fatalf("Couldn't open store : %v", err)
	}
	defer st.Close()
	first, err := NewWithStore(st)
	if err != nil {
		t.Fatalf("Unexpected error : %v", err)
	}
	if err := first.CompileSource("first", `
(def shared (fn extern int32 ((a (p int32)) (b int32)) (return b)))
(def private (fn intern int32 () (return 1)))
(def unsaved (fn extern (attr noserialise) int32 () (return 1)))`); err != nil || first.ErrorsExist() {
		t.Fatalf("There were errors compiling the source : \n" + first.ReturnErrors())
	}
	second, err := NewWithStore(st)
	if err != nil {
		t.Fatalf("Unexpected error : %v", err)
	}
	shared := second.Function("shared", ptrInt32, types.Int32)
	if shared == nil || !shared.IsDeclaration() || shared.InternalName != first.Function("shared", ptrInt32, types.Int32).InternalName {
		t.Fatalf("Test failed | Wanted : shared to be declared in the second unit.")
	}
	if second.Function("private") != nil || second.Function("unsaved") != nil {
		t.Fatalf("Test failed | Wanted : only extern functions that are serialised.")
	}
	if err := second.CompileSource("second", `(def user (fn intern int32 ((a (p int32))) (return (shared a 2))))`); err != nil || second.ErrorsExist() {
		t.Fatalf("There were errors compiling the source : \n" + second.ReturnErrors())
	}
}

func TestUnsignedOffsetsAreZeroExtended(t *testing.T) {
	cp := compileClean(t, `
(def f (fn intern (p int32) ((a (p int32)) (n uint8)) (return (p+ a n))))
(def g (fn intern (p int32) ((a (p int32)) (n uint16)) (return (p- a n))))
(def h (fn intern (p int32) ((a (p int32)) (n int16)) (return (p+ a n))))`)
	uint8Type := types.Make(types.UINT8)
	gs := geps(cp.Function("f", ptrInt32, uint8Type).LLVM.Blocks[0])
	if len(gs) != 1 {
		t.Fatalf("Test failed | Wanted : 1 getelementptr | Got : %d.", len(gs))
	}
	zext, ok := gs[0].Indices[0].(*ir.InstZExt)
	if !ok || !zext.To.Equal(lltypes.I64) {
		t.Fatalf("Test failed | Wanted : the offset zero-extended to i64 | Got : %v.", gs[0].Indices[0])
	}
	gs = geps(cp.Function("g", ptrInt32, types.Make(types.UINT16)).LLVM.Blocks[0])
	sub, ok := gs[0].Indices[0].(*ir.InstSub)
	if !ok {
		t.Fatalf("Test failed | Wanted : a negated offset | Got : %v.", gs[0].Indices[0])
	}
	if _, ok := sub.Y.(*ir.InstZExt); !ok {
		t.Fatalf("Test failed | Wanted : the offset widened before it is negated | Got : %v.", sub.Y)
	}
	gs = geps(cp.Function("h", ptrInt32, types.Make(types.INT16)).LLVM.Blocks[0])
	if _, ok := gs[0].Indices[0].(*ir.InstSExt); !ok {
		t.Fatalf("Test failed | Wanted : the offset sign-extended | Got : %v.", gs[0].Indices[0])
	}
}

func TestVoidVariadicArgumentIsAUserError(t *testing.T) {
	cp := New()
	err := cp.CompileSource("test", `
(def vf (fn extern-c int32 ((a int32) ...)))
(def f (fn intern int32 () (return (vf 1 (do)))))
(def g (fn intern int32 () (return 4)))`)
	if err != nil {
		t.Fatalf("Test failed | Wanted : no internal error | Got : %v.", err)
	}
	if len(cp.Errors) != 1 || cp.Errors[0].ErrorId != "comp/call/void" {
		t.Fatalf("Test failed | Wanted : comp/call/void | Got : %s", cp.ReturnErrors())
	}
	if cp.Function("f") != nil || cp.Function("g") == nil {
		t.Fatalf("Test failed | Wanted : f dropped and g compiled.")
	}
}

func TestOverloadsDifferingInReturnTypeOnly(t *testing.T) {
	cp := New()
	cp.CompileSource("test", `
(def f (fn extern int32 ((a int32)) (return a)))
(def f (fn extern int64 ((a int32)) (return 1)))`)
	if len(cp.Errors) != 1 || cp.Errors[0].Kind() != report.AmbiguousOverload {
		t.Fatalf("Test failed | Wanted : one ambiguous overload | Got : %s", cp.ReturnErrors())
	}
	seen := map[string]bool{}
	for _, f := range cp.Module.Funcs {
		if seen[f.Name()] {
			t.Fatalf("Test failed | Wanted : no symbol twice | Got : %s twice.", f.Name())
		}
		seen[f.Name()] = true
	}
	if len(cp.Module.Funcs) != 1 {
		t.Fatalf("Test failed | Wanted : 1 function | Got : %d.", len(cp.Module.Funcs))
	}
}

func TestDefinitionMustKeepDeclaredLinkage(t *testing.T) {
	cp := New()
	cp.CompileSource("test", `
(def d (fn extern-c int32 ((x int32))))
(def d (fn extern int32 ((x int32)) (return x)))`)
	if len(cp.Errors) != 1 || cp.Errors[0].ErrorId != "comp/def/linkage/mismatch" {
		t.Fatalf("Test failed | Wanted : comp/def/linkage/mismatch | Got : %s", cp.ReturnErrors())
	}
	d := cp.Function("d", types.Int32)
	if d == nil || d.InternalName != "d" || d.LLVM.Name() != "d" || !d.IsDeclaration() {
		t.Fatalf("Test failed | Wanted : d to stay an unmangled declaration.")
	}
}

func TestRollbackRestoresVariables(t *testing.T) {
	cp := compileClean(t, `(def f (fn intern void ((a int32)) (return)))`)
	fn := cp.Function("f", types.Int32)
	block := fn.LLVM.NewBlock("")
	cp.env = NewEnvironment()
	cp.env.AddVar(&function.Variable{Name: "a", Type: types.Int32, Storage: block.NewAlloca(lltypes.I32)})
	m := cp.mark(fn, block)
	cp.env.AddVar(&function.Variable{Name: "b", Type: types.Int32, Storage: block.NewAlloca(lltypes.I32)})
	cp.env.AddVar(&function.Variable{Name: "a", Type: types.Int64, Storage: block.NewAlloca(lltypes.I64)})
	cp.rollback(m)
	if _, ok := cp.env.GetVar("b"); ok {
		t.Fatalf("Test failed | Wanted : b to be gone.")
	}
	if a, ok := cp.env.GetVar("a"); !ok || !a.Type.IsEqualTo(types.Int32) {
		t.Fatalf("Test failed | Wanted : a to be the int32 again.")
	}
	if len(block.Insts) != 1 {
		t.Fatalf("Test failed | Wanted : 1 instruction | Got : %d.", len(block.Insts))
	}
}

func TestTracingIsSetWhenCompilerIsMade(t *testing.T) {
	cp := New()
	if cp.showCompile != settings.SHOW_COMPILER {
		t.Fatalf("Test failed | Wanted : showCompile %v | Got : %v.", settings.SHOW_COMPILER, cp.showCompile)
	}
}
