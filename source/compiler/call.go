package compiler

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"

	"github.com/tern-lang/tern/source/ast"
	"github.com/tern-lang/tern/source/function"
	"github.com/tern-lang/tern/source/types"
)

func (cp *Compiler) compileCall(fn *function.Function, block *ir.Block, node *ast.Node, name string, getAddress bool, pr *Result) error {
	args, block, err := cp.compileArgs(fn, block, node.Args())
	if err != nil {
		return err
	}
	argTypes := resultTypes(args)
	callee := cp.Registry.Lookup(name, argTypes)
	if callee == nil {
		return cp.Throw("comp/call/types", node.List[0].Token, name, describeTypes(argTypes))
	}
	return cp.emitCall(block, callee, args, node, getAddress, pr)
}

// Emits the call itself, once the arguments are compiled and we know which overload we're
// calling. A callee that returns through a retval slot gets one allocated here, and the Result
// keeps hold of it.
func (cp *Compiler) emitCall(block *ir.Block, callee *function.Function, args []*Result, node *ast.Node, getAddress bool, pr *Result) error {
	values := make([]value.Value, 0, len(args)+1)
	for i, arg := range args {
		// Only the variadic tail can get here without its type being checked.
		if arg.Type == nil || arg.Type.IsVoid() {
			return cp.Throw("comp/call/void", node.Args()[i].GetToken(), node.Head(), i+1)
		}
		v, err := arg.GetValue()
		if err != nil {
			return err
		}
		values = append(values, v)
	}
	result := &Result{}
	if callee.HasRetval() {
		returnType := callee.ReturnType.Unretval()
		llType, err := types.ToLLVM(returnType)
		if err != nil {
			return cp.rethrow(err, node.Token)
		}
		slot := block.NewAlloca(llType)
		values = append(values, slot)
		block.NewCall(callee.LLVM, values...)
		result.Set(block, returnType, nil)
		result.SetRetval(slot, types.PointerTo(returnType))
		result.RetvalUsed = true
	} else {
		call := block.NewCall(callee.LLVM, values...)
		if callee.ReturnType.IsVoid() {
			result.Set(block, types.Void, nil)
		} else {
			result.Set(block, callee.ReturnType, call)
		}
	}
	cp.cm("Called "+callee.InternalName+" returning "+result.Type.String()+".", node.Token)
	if getAddress {
		return cp.rethrow(result.GetAddressOfValue(pr), node.Token)
	}
	result.CopyTo(pr)
	return nil
}
