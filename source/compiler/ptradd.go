package compiler

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/tern-lang/tern/source/ast"
	"github.com/tern-lang/tern/source/function"
	"github.com/tern-lang/tern/source/types"
)

// Pointer arithmetic. (p+ ptr i j k) is ptr offset by i, then j, then k elements, in that
// order, one getelementptr each. The result has the same type as ptr, except that an array
// decays to a pointer to its first element first.

func formPtrAdd(cp *Compiler, fn *function.Function, block *ir.Block, node *ast.Node, getAddress, prefixedWithCore bool, pr *Result) error {
	return cp.compilePtrOffset(fn, block, node, getAddress, false, pr)
}

func formPtrSubtract(cp *Compiler, fn *function.Function, block *ir.Block, node *ast.Node, getAddress, prefixedWithCore bool, pr *Result) error {
	return cp.compilePtrOffset(fn, block, node, getAddress, true, pr)
}

func (cp *Compiler) compilePtrOffset(fn *function.Function, block *ir.Block, node *ast.Node, getAddress, subtract bool, pr *Result) error {
	args := node.Args()
	if len(args) < 2 {
		return cp.Throw("comp/ptr/arity", node.Token, node.Head())
	}

	var head Result
	if err := cp.CompileForm(fn, block, args[0], false, &head); err != nil {
		return err
	}
	block = head.Block
	if !head.Type.IsPointerLike() {
		return cp.Throw("comp/ptr/head", args[0].Token, node.Head(), head.Type.String())
	}
	ptrType := head.Type.Decay()
	elemType, err := types.ToLLVM(ptrType.Points)
	if err != nil {
		return cp.Throw("comp/ptr/pointee", args[0].Token, ptrType.String())
	}
	ptr, err := cp.pointerValue(&head)
	if err != nil {
		return cp.rethrow(err, args[0].Token)
	}
	cp.cm("Compiled head of "+node.Head()+" as "+ptrType.String()+".", node.Token)

	for i, arg := range args[1:] {
		var offset Result
		if err := cp.CompileForm(fn, block, arg, false, &offset); err != nil {
			return err
		}
		block = offset.Block
		if !offset.Type.IsIntegral() {
			return cp.Throw("comp/ptr/offset", arg.Token, node.Head(), i+1, offset.Type.String())
		}
		v, err := offset.GetValue()
		if err != nil {
			return err
		}
		v = widenOffset(block, offset.Type, v)
		if subtract {
			v = block.NewSub(constant.NewInt(lltypes.I64, 0), v)
		}
		ptr = block.NewGetElementPtr(elemType, ptr, v)
	}

	result := NewResult(block, ptrType, ptr)
	if getAddress {
		return cp.rethrow(result.GetAddressOfValue(pr), node.Token)
	}
	result.CopyTo(pr)
	return nil
}

// getelementptr reads its indices as signed, so an offset is widened to 64 bits first, by
// extending its sign if it has one and with zeroes otherwise.
func widenOffset(block *ir.Block, t *types.Type, v value.Value) value.Value {
	if types.IntToLLVM(t).BitSize >= 64 {
		return v
	}
	if !t.IsSigned() {
		return block.NewZExt(v, lltypes.I64)
	}
	if c, ok := v.(*constant.Int); ok {
		return constant.NewInt(lltypes.I64, c.X.Int64())
	}
	return block.NewSExt(v, lltypes.I64)
}

// The pointer we do arithmetic on. For an array that means the address of its first element,
// which needs the array to be in memory.
func (cp *Compiler) pointerValue(head *Result) (value.Value, error) {
	if head.Type.IsPointer() {
		return head.GetValue()
	}
	var address Result
	if err := head.GetAddressOfValue(&address); err != nil {
		return nil, err
	}
	arrayType, err := types.ToLLVM(head.Type)
	if err != nil {
		return nil, err
	}
	base, err := address.GetValue()
	if err != nil {
		return nil, err
	}
	zero := constant.NewInt(types.IntToLLVM(types.Int64), 0)
	return address.Block.NewGetElementPtr(arrayType, base, zero, zero), nil
}
