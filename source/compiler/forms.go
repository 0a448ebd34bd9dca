package compiler

import (
	"github.com/llir/llvm/ir"

	"github.com/tern-lang/tern/source/ast"
	"github.com/tern-lang/tern/source/function"
)

// A form processor compiles one kind of form. It's given the block to emit into, and leaves
// the block it finished in, along with the type and value of the form, in pr.
//
// If getAddress is set the caller wants somewhere the value is stored rather than the value.
// prefixedWithCore says the form was invoked as core.<name>, i.e. the user asked for the
// built-in even if they have defined a function of the same name.
type FormProcessor func(cp *Compiler, fn *function.Function, block *ir.Block, node *ast.Node, getAddress, prefixedWithCore bool, pr *Result) error

type form struct {
	proc           FormProcessor
	arity          int  // Zero if the processor checks its own operand count.
	handlesAddress bool // If false, the dispatcher takes the address of the result for it.
}

func builtinForms() map[string]form {
	return map[string]form{
		"p+":        {proc: formPtrAdd, handlesAddress: true},
		"p-":        {proc: formPtrSubtract, handlesAddress: true},
		"#":         {proc: formAddressOf, arity: 1, handlesAddress: true},
		"@":         {proc: formDereference, arity: 1, handlesAddress: true},
		"do":        {proc: formDo},
		"new-scope": {proc: formNewScope},
		"var":       {proc: formVar},
		"return":    {proc: formReturn},
		"label":     {proc: formLabel, arity: 1},
		"goto":      {proc: formGoto, arity: 1},
	}
}

func (cp *Compiler) IsBuiltinForm(name string) bool {
	_, ok := cp.forms[name]
	return ok
}
