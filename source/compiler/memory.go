package compiler

import (
	"github.com/llir/llvm/ir"

	"github.com/tern-lang/tern/source/ast"
	"github.com/tern-lang/tern/source/function"
	"github.com/tern-lang/tern/source/types"
)

// (# x) is the address of x. For a variable that's its storage; anything else gets put in memory.
func formAddressOf(cp *Compiler, fn *function.Function, block *ir.Block, node *ast.Node, getAddress, prefixedWithCore bool, pr *Result) error {
	var address Result
	if err := cp.CompileForm(fn, block, node.Args()[0], true, &address); err != nil {
		return err
	}
	if getAddress {
		return cp.rethrow(address.GetAddressOfValue(pr), node.Token)
	}
	address.CopyTo(pr)
	return nil
}

// (@ p) is the value p points to. Its address is p, so asking for the address costs nothing.
func formDereference(cp *Compiler, fn *function.Function, block *ir.Block, node *ast.Node, getAddress, prefixedWithCore bool, pr *Result) error {
	operand := node.Args()[0]
	var ptr Result
	if err := cp.CompileForm(fn, block, operand, false, &ptr); err != nil {
		return err
	}
	block = ptr.Block
	if !ptr.Type.IsPointer() {
		return cp.Throw("comp/deref/type", operand.GetToken(), ptr.Type.String())
	}
	address, err := ptr.GetValue()
	if err != nil {
		return err
	}
	if getAddress {
		pr.Set(block, ptr.Type, address)
		pr.ClearAddress()
		return nil
	}
	llType, err := types.ToLLVM(ptr.Type.Points)
	if err != nil {
		return cp.rethrow(err, operand.GetToken())
	}
	pr.Set(block, ptr.Type.Points, block.NewLoad(llType, address))
	pr.AddressOfValue = address
	pr.ValueIsLvalue = true
	return nil
}
