package compiler

import (
	"github.com/llir/llvm/ir"

	"github.com/tern-lang/tern/source/ast"
	"github.com/tern-lang/tern/source/function"
	"github.com/tern-lang/tern/source/text"
	"github.com/tern-lang/tern/source/types"
)

// Forms that end a block. Whatever follows them in the same sequence is unreachable, but we
// still have to compile it somewhere, so each one leaves the compiler in a fresh block and marks
// its Result as a terminator.

func (cp *Compiler) afterTerminator(fn *function.Function, pr *Result) {
	pr.Set(fn.LLVM.NewBlock(""), types.Void, nil)
	pr.TreatAsTerminator = true
}

// (return) or (return x). A function that returns through a retval slot stores x there and
// returns void.
func formReturn(cp *Compiler, fn *function.Function, block *ir.Block, node *ast.Node, getAddress, prefixedWithCore bool, pr *Result) error {
	args := node.Args()
	wanted := fn.ReturnType.Unretval()
	switch len(args) {
	case 0:
		if !wanted.IsVoid() {
			return cp.Throw("comp/return/void", node.Token, wanted.String())
		}
		block.NewRet(nil)
	case 1:
		var r Result
		if err := cp.CompileForm(fn, block, args[0], false, &r); err != nil {
			return err
		}
		block = r.Block
		if !r.Type.IsEqualTo(wanted) || wanted.IsVoid() {
			return cp.Throw("comp/return/type", args[0].GetToken(), r.Type.String(), fn.ReturnType.String())
		}
		v, err := r.GetValue()
		if err != nil {
			return err
		}
		if fn.HasRetval() {
			slot := fn.LLVM.Params[len(fn.LLVM.Params)-1]
			block.NewStore(v, slot)
			block.NewRet(nil)
		} else {
			block.NewRet(v)
		}
	default:
		return cp.Throw("comp/arity", node.Token, "return", "at most one operand", len(args))
	}
	cp.afterTerminator(fn, pr)
	return nil
}

// (label NAME) starts a new block that gotos can branch to. Control falls through into it.
func formLabel(cp *Compiler, fn *function.Function, block *ir.Block, node *ast.Node, getAddress, prefixedWithCore bool, pr *Result) error {
	operand := node.Args()[0]
	if !operand.IsAnySymbol() {
		return cp.Throw("comp/label/name", operand.GetToken(), "label")
	}
	name := operand.Literal()
	if _, ok := fn.GetLabel(name); ok {
		return cp.Throw("comp/label/redefined", operand.Token, name)
	}
	target := fn.LLVM.NewBlock("label." + name)
	if block.Term == nil {
		block.NewBr(target)
	}
	fn.AddLabel(name, &function.Label{Name: name, Block: target, Token: operand.Token})
	cp.cm("Label "+text.Emph(name)+" starts a new block.", node.Token)
	pr.Set(target, types.Void, nil)
	return nil
}

// (goto NAME). If we haven't met the label yet the branch waits until the end of the body.
func formGoto(cp *Compiler, fn *function.Function, block *ir.Block, node *ast.Node, getAddress, prefixedWithCore bool, pr *Result) error {
	operand := node.Args()[0]
	if !operand.IsAnySymbol() {
		return cp.Throw("comp/label/name", operand.GetToken(), "goto")
	}
	name := operand.Literal()
	if label, ok := fn.GetLabel(name); ok {
		block.NewBr(label.Block)
	} else {
		cp.cm("Deferring goto to "+text.Emph(name)+".", node.Token)
		fn.AddDeferredGoto(&function.DeferredGoto{LabelName: name, Block: block, Token: operand.Token})
	}
	cp.afterTerminator(fn, pr)
	return nil
}
