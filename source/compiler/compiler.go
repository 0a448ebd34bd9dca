package compiler

import (
	"strconv"

	"github.com/joomcode/errorx"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/oklog/ulid/v2"

	"github.com/tern-lang/tern/source/ast"
	"github.com/tern-lang/tern/source/function"
	"github.com/tern-lang/tern/source/report"
	"github.com/tern-lang/tern/source/set"
	"github.com/tern-lang/tern/source/settings"
	"github.com/tern-lang/tern/source/store"
	"github.com/tern-lang/tern/source/text"
	"github.com/tern-lang/tern/source/token"
	"github.com/tern-lang/tern/source/types"
)

// A Compiler compiles one compilation unit into one LLVM module.
type Compiler struct {
	// Permanent state.
	Module   *ir.Module
	Registry *Registry
	Store    *store.Store // May be nil, in which case nothing is persisted.
	Unit     ulid.ULID
	Errors   report.Errors
	forms    map[string]form

	// Temporary state, i.e. it belongs to the function we're compiling.
	env         *Environment
	showCompile bool
}

func New() *Compiler {
	cp := &Compiler{
		Module:   ir.NewModule(),
		Registry: NewRegistry(),
		Unit:     ulid.Make(),
		Errors:   report.Errors{},
		env:      NewEnvironment(),

		showCompile: settings.SHOW_COMPILER,
	}
	cp.forms = builtinForms()
	cp.Module.SourceFilename = cp.Unit.String()
	return cp
}

// As New, but with a metadata store attached. Functions it already knows about are declared
// in the new unit so that they can be called.
func NewWithStore(st *store.Store) (*Compiler, error) {
	cp := New()
	cp.Store = st
	if err := cp.ImportDeclarations(); err != nil {
		return cp, err
	}
	return cp, nil
}

func (cp *Compiler) Throw(errorId string, tok *token.Token, args ...any) *errorx.Error {
	var e *errorx.Error
	cp.Errors, e = report.Throw(errorId, cp.Errors, tok, args...)
	return e
}

func (cp *Compiler) ErrorsExist() bool {
	return len(cp.Errors) > 0
}

func (cp *Compiler) ReturnErrors() string {
	return report.GetList(cp.Errors)
}

func (cp *Compiler) ClearErrors() {
	cp.Errors = report.Errors{}
}

// Storage errors from the type system come back without a token. If it's a defect we pass
// it straight up; otherwise we give the user an error pinned to the form that needed the storage.
func (cp *Compiler) rethrow(err error, tok *token.Token) error {
	if err == nil || report.IsDefect(err) || report.IdOf(err) != "" {
		return err
	}
	msg := err.Error()
	if e := errorx.Cast(err); e != nil {
		msg = e.Message()
	}
	return cp.Throw("comp/storage", tok, msg)
}

func (cp *Compiler) cm(comment string, tok *token.Token) {
	if cp.showCompile {
		println(text.GREEN + "    " + comment + text.DescribePos(tok) + text.RESET)
	}
}

// The dispatcher. Atoms are compiled here; lists are handed to whichever processor their
// head symbol names, or compiled as a function call if it names a function.
func (cp *Compiler) CompileForm(fn *function.Function, block *ir.Block, node *ast.Node, getAddress bool, pr *Result) error {
	if node.IsAtom() {
		return cp.compileAtom(block, node, getAddress, pr)
	}
	if len(node.List) == 0 {
		return cp.Throw("comp/form/empty", node.Token)
	}
	if node.Head() == "" {
		return cp.Throw("comp/form/head", node.Token)
	}
	namespace, name := ast.SplitQualified(node.Head())
	switch namespace {
	case "":
	case settings.CORE_NAMESPACE:
		f, ok := cp.forms[name]
		if !ok {
			return cp.Throw("comp/core/unknown", node.List[0].Token, name)
		}
		cp.cm("Dispatching "+text.Emph(node.Head())+" to the built-in form.", node.Token)
		return cp.runForm(f, fn, block, node, getAddress, true, pr)
	default:
		return cp.Throw("comp/namespace", node.List[0].Token, namespace)
	}
	f, isForm := cp.forms[name]
	if !cp.Registry.Has(name) {
		if !isForm {
			return cp.Throw("comp/undefined", node.List[0].Token, name)
		}
		cp.cm("Dispatching "+text.Emph(name)+" to the built-in form.", node.Token)
		return cp.runForm(f, fn, block, node, getAddress, false, pr)
	}
	if !isForm {
		cp.cm("Compiling call to "+text.Emph(name)+".", node.Token)
		return cp.compileCall(fn, block, node, name, getAddress, pr)
	}
	// The user has defined a function with the same name as a built-in form. If one of its overloads
	// fits the arguments we call it; otherwise we throw away the arguments we compiled to find out,
	// and let the built-in have it.
	cp.cm("Trying overloads of "+text.Emph(name)+" before the built-in form.", node.Token)
	m := cp.mark(fn, block)
	errCount := len(cp.Errors)
	args, after, err := cp.compileArgs(fn, block, node.Args())
	if err == nil {
		if callee := cp.Registry.Lookup(name, resultTypes(args)); callee != nil {
			return cp.emitCall(after, callee, args, node, getAddress, pr)
		}
	}
	if report.IsDefect(err) {
		return err
	}
	cp.rollback(m)
	cp.Errors = cp.Errors[:errCount]
	return cp.runForm(f, fn, block, node, getAddress, false, pr)
}

func (cp *Compiler) runForm(f form, fn *function.Function, block *ir.Block, node *ast.Node, getAddress, prefixedWithCore bool, pr *Result) error {
	if f.arity > 0 && len(node.Args()) != f.arity {
		return cp.Throw("comp/arity", node.Token, node.Head(), text.Plural(f.arity, "operand"), len(node.Args()))
	}
	if f.handlesAddress || !getAddress {
		return f.proc(cp, fn, block, node, getAddress, prefixedWithCore, pr)
	}
	var inner Result
	if err := f.proc(cp, fn, block, node, false, prefixedWithCore, &inner); err != nil {
		return err
	}
	return cp.rethrow(inner.GetAddressOfValue(pr), node.Token)
}

func (cp *Compiler) compileAtom(block *ir.Block, node *ast.Node, getAddress bool, pr *Result) error {
	tok := node.Token
	switch tok.Type {
	case token.INT:
		n, err := strconv.ParseInt(tok.Literal, 10, 32)
		if err != nil {
			return cp.Throw("comp/int/range", tok, tok.Literal)
		}
		pr.Set(block, types.Int32, constant.NewInt(types.IntToLLVM(types.Int32), n))
	case token.SYMBOL:
		switch tok.Literal {
		case "true":
			pr.Set(block, types.Bool, constant.True)
		case "false":
			pr.Set(block, types.Bool, constant.False)
		default:
			return cp.compileVariable(block, node, getAddress, pr)
		}
	default:
		return cp.Throw("comp/form/head", tok)
	}
	if getAddress {
		var inner Result
		pr.CopyTo(&inner)
		return cp.rethrow(inner.GetAddressOfValue(pr), tok)
	}
	return nil
}

// A variable reference loads the variable, and remembers where it came from, so that taking
// its address later doesn't copy it.
func (cp *Compiler) compileVariable(block *ir.Block, node *ast.Node, getAddress bool, pr *Result) error {
	v, ok := cp.env.GetVar(node.Literal())
	if !ok {
		return cp.Throw("comp/undefined", node.Token, node.Literal())
	}
	if getAddress {
		pr.Set(block, types.PointerTo(v.Type), v.Storage)
		pr.ClearAddress()
		return nil
	}
	llType, err := types.ToLLVM(v.Type)
	if err != nil {
		return cp.rethrow(err, node.Token)
	}
	pr.Set(block, v.Type, block.NewLoad(llType, v.Storage))
	pr.AddressOfValue = v.Storage
	pr.ValueIsLvalue = true
	return nil
}

// Compiles the operands of a form in order, threading the block through them.
func (cp *Compiler) compileArgs(fn *function.Function, block *ir.Block, nodes []*ast.Node) ([]*Result, *ir.Block, error) {
	results := make([]*Result, len(nodes))
	for i, node := range nodes {
		results[i] = &Result{}
		if err := cp.CompileForm(fn, block, node, false, results[i]); err != nil {
			return nil, block, err
		}
		block = results[i].Block
	}
	return results, block, nil
}

func resultTypes(results []*Result) []*types.Type {
	ts := make([]*types.Type, len(results))
	for i, r := range results {
		ts[i] = r.Type
	}
	return ts
}

func describeTypes(ts []*types.Type) string {
	result := "("
	for i, t := range ts {
		if i > 0 {
			result = result + " "
		}
		result = result + t.String()
	}
	return result + ")"
}

// Where we'd have to go back to in order to un-emit whatever we're about to emit.
type emitMark struct {
	fn      *function.Function
	block   *ir.Block
	insts   int
	term    ir.Terminator
	blocks  int
	gotos   int
	labels  set.Set[string]
	fnCount int
	env     *Environment
	vars    map[string]*function.Variable
}

func (cp *Compiler) mark(fn *function.Function, block *ir.Block) emitMark {
	m := emitMark{fn: fn, block: block, insts: len(block.Insts), term: block.Term,
		gotos: len(fn.DeferredGotos), labels: set.Set[string]{}, fnCount: len(cp.Module.Funcs),
		env: cp.env, vars: make(map[string]*function.Variable, len(cp.env.Data))}
	for name, v := range cp.env.Data {
		m.vars[name] = v
	}
	if fn.LLVM != nil {
		m.blocks = len(fn.LLVM.Blocks)
	}
	for name := range fn.Labels {
		m.labels.Add(name)
	}
	return m
}

func (cp *Compiler) rollback(m emitMark) {
	m.block.Insts = m.block.Insts[:m.insts]
	m.block.Term = m.term
	if m.fn.LLVM != nil {
		m.fn.LLVM.Blocks = m.fn.LLVM.Blocks[:m.blocks]
	}
	m.fn.DeferredGotos = m.fn.DeferredGotos[:m.gotos]
	for name := range m.fn.Labels {
		if !m.labels.Contains(name) {
			delete(m.fn.Labels, name)
		}
	}
	cp.Module.Funcs = cp.Module.Funcs[:m.fnCount]
	cp.env = m.env
	cp.env.Data = m.vars
}
