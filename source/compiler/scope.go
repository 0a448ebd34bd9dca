package compiler

import (
	"github.com/llir/llvm/ir"

	"github.com/tern-lang/tern/source/ast"
	"github.com/tern-lang/tern/source/function"
	"github.com/tern-lang/tern/source/text"
	"github.com/tern-lang/tern/source/types"
)

// (do a b c) compiles its operands in order and is worth whatever the last of them is worth.
// (do) is void.
func formDo(cp *Compiler, fn *function.Function, block *ir.Block, node *ast.Node, getAddress, prefixedWithCore bool, pr *Result) error {
	return cp.compileSequence(fn, block, node.Args(), pr)
}

// As do, except that variables declared inside it are forgotten at the end.
func formNewScope(cp *Compiler, fn *function.Function, block *ir.Block, node *ast.Node, getAddress, prefixedWithCore bool, pr *Result) error {
	outer := cp.env
	cp.env = NewEnclosedEnvironment(outer)
	defer func() { cp.env = outer }()
	return cp.compileSequence(fn, block, node.Args(), pr)
}

func (cp *Compiler) compileSequence(fn *function.Function, block *ir.Block, nodes []*ast.Node, pr *Result) error {
	if len(nodes) == 0 {
		pr.Set(block, types.Void, nil)
		return nil
	}
	for _, node := range nodes {
		var r Result
		if err := cp.CompileForm(fn, block, node, false, &r); err != nil {
			return err
		}
		block = r.Block
		r.CopyTo(pr)
	}
	return nil
}

// (var NAME TYPE) or (var NAME TYPE INIT). The storage is allocated where the form is; the
// form itself is void.
func formVar(cp *Compiler, fn *function.Function, block *ir.Block, node *ast.Node, getAddress, prefixedWithCore bool, pr *Result) error {
	args := node.Args()
	if len(args) < 2 || len(args) > 3 {
		return cp.Throw("comp/arity", node.Token, "var", "two or three operands", len(args))
	}
	if !args[0].IsAnySymbol() {
		return cp.Throw("comp/var/name", args[0].GetToken())
	}
	name := args[0].Literal()
	varType, err := cp.parseType(args[1])
	if err != nil {
		return err
	}
	llType, err := types.ToLLVM(varType)
	if err != nil {
		return cp.rethrow(err, args[1].GetToken())
	}
	storage := block.NewAlloca(llType)
	if len(args) == 3 {
		var init Result
		if err := cp.CompileForm(fn, block, args[2], false, &init); err != nil {
			return err
		}
		block = init.Block
		if !init.Type.IsEqualTo(varType) {
			return cp.Throw("comp/var/init", args[2].GetToken(), name, varType.String(), init.Type.String())
		}
		v, err := init.GetValue()
		if err != nil {
			return err
		}
		block.NewStore(v, storage)
	}
	cp.env.AddVar(&function.Variable{Name: name, Type: varType, Storage: storage, Token: args[0].Token})
	cp.cm("Declared local "+text.Emph(name)+" of type "+varType.String()+".", node.Token)
	pr.Set(block, types.Void, nil)
	return nil
}
