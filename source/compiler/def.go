package compiler

import (
	"strconv"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"

	"github.com/tern-lang/tern/source/ast"
	"github.com/tern-lang/tern/source/function"
	"github.com/tern-lang/tern/source/set"
	"github.com/tern-lang/tern/source/settings"
	"github.com/tern-lang/tern/source/store"
	"github.com/tern-lang/tern/source/text"
	"github.com/tern-lang/tern/source/token"
	"github.com/tern-lang/tern/source/types"
)

var ATTRIBUTES = set.MakeFromSlice([]string{"inline", "cto", "noserialise"})

// (def NAME (fn LINKAGE [(attr ...)] RETURN-TYPE (PARAM ...) BODY ...)). Without a body it's
// a declaration.
func (cp *Compiler) compileDef(node *ast.Node) error {
	if node.Head() != "def" {
		return cp.Throw("comp/def/top", node.GetToken())
	}
	args := node.Args()
	if len(args) != 2 || !args[0].IsAnySymbol() || args[1].Head() != "fn" {
		return cp.Throw("comp/def/form", node.Token)
	}
	name := args[0].Literal()
	fn, body, err := cp.parseFn(name, args[1])
	if err != nil {
		return err
	}
	fn.Token = args[0].Token
	cp.cm("Defining "+text.Emph(name)+" "+fn.Signature()+".", node.Token)
	return cp.defineFunction(name, fn, body)
}

func (cp *Compiler) parseFn(name string, node *ast.Node) (*function.Function, []*ast.Node, error) {
	parts := node.Args()
	if len(parts) < 3 {
		return nil, nil, cp.Throw("comp/def/form", node.Token)
	}
	linkage, ok := function.LINKAGES[parts[0].Literal()]
	if !ok {
		return nil, nil, cp.Throw("comp/def/linkage", parts[0].GetToken(), parts[0].String())
	}
	parts = parts[1:]
	attrs := set.Set[string]{}
	if parts[0].Head() == "attr" {
		for _, attr := range parts[0].Args() {
			if !ATTRIBUTES.Contains(attr.Literal()) {
				return nil, nil, cp.Throw("comp/def/attr", attr.GetToken(), attr.String())
			}
			attrs.Add(attr.Literal())
		}
		parts = parts[1:]
	}
	if len(parts) < 2 || !parts[1].IsList {
		return nil, nil, cp.Throw("comp/def/form", node.Token)
	}
	returnType, err := cp.parseType(parts[0])
	if err != nil {
		return nil, nil, err
	}
	if returnType.IsVarArgs() || (returnType.IsRetval && returnType.IsVoid()) {
		return nil, nil, cp.Throw("comp/def/retval", parts[0].GetToken(), returnType.String())
	}
	params, err := cp.parseParams(parts[1])
	if err != nil {
		return nil, nil, err
	}
	internalName := name
	if linkage != function.EXTERN_C {
		paramTypes := []*types.Type{}
		for _, param := range params {
			paramTypes = append(paramTypes, param.Type)
		}
		internalName = function.Mangle(name, paramTypes)
	}
	fn := function.New(returnType, params, nil, false, internalName, attrs.Contains("inline"))
	fn.Linkage = linkage
	fn.Cto = attrs.Contains("cto")
	fn.Serialise = !attrs.Contains("noserialise")
	fn.IsDestructor = name == "destroy"
	fn.IsSetfFn = strings.HasPrefix(name, "setf-")
	return fn, parts[2:], nil
}

func (cp *Compiler) parseParams(node *ast.Node) ([]*function.Variable, error) {
	params := []*function.Variable{}
	for i, paramNode := range node.List {
		if paramNode.IsSymbol("...") {
			if i != len(node.List)-1 {
				return nil, cp.Throw("comp/def/varargs", paramNode.Token)
			}
			params = append(params, &function.Variable{Name: "...", Type: types.VarArgs, Token: paramNode.Token})
			continue
		}
		if !paramNode.IsList || len(paramNode.List) != 2 || !paramNode.List[0].IsAnySymbol() {
			return nil, cp.Throw("comp/def/param", paramNode.GetToken())
		}
		paramName := paramNode.List[0].Literal()
		paramType, err := cp.parseType(paramNode.List[1])
		if err != nil {
			return nil, err
		}
		if paramType.IsVoid() || paramType.IsVarArgs() || paramType.IsRetval {
			return nil, cp.Throw("comp/def/param/type", paramNode.List[1].GetToken(), paramName, paramType.String())
		}
		params = append(params, &function.Variable{Name: paramName, Type: paramType, Token: paramNode.List[0].Token})
	}
	return params, nil
}

func (cp *Compiler) parseType(node *ast.Node) (*types.Type, error) {
	if node.IsAtom() {
		if base, ok := types.BASE_TYPES[node.Literal()]; ok && node.Token.Type == token.SYMBOL {
			return types.Make(base), nil
		}
		return nil, cp.Throw("comp/type/unknown", node.Token, node.String())
	}
	args := node.Args()
	switch node.Head() {
	case "p":
		if len(args) == 1 {
			pointee, err := cp.parseType(args[0])
			if err != nil {
				return nil, err
			}
			return types.PointerTo(pointee), nil
		}
	case "array-of":
		if len(args) == 2 {
			n, err := strconv.Atoi(args[0].Literal())
			if err != nil || n <= 0 {
				return nil, cp.Throw("comp/type/array", args[0].GetToken(), args[0].String())
			}
			elem, err := cp.parseType(args[1])
			if err != nil {
				return nil, err
			}
			return types.ArrayOf(n, elem), nil
		}
	case "retval":
		if len(args) == 1 {
			t, err := cp.parseType(args[0])
			if err != nil {
				return nil, err
			}
			return types.Retval(t), nil
		}
	}
	return nil, cp.Throw("comp/type/unknown", node.Token, node.String())
}

// Registers the function and compiles its body, if it has one. A definition of something
// already declared with the same signature takes the declaration's place, and its LLVM function.
func (cp *Compiler) defineFunction(name string, fn *function.Function, body []*ast.Node) error {
	existing, i := cp.Registry.Equal(name, fn)
	if existing == nil {
		if other := cp.Registry.Exact(name, fn.ParamTypes()...); other != nil {
			return cp.Throw("comp/def/return-overload", fn.Token, name, describeTypes(fn.ParamTypes()), other.ReturnType.String())
		}
		if cp.symbolInUse(fn.InternalName) {
			return cp.Throw("comp/def/symbol", fn.Token, name, fn.InternalName)
		}
	}
	if existing != nil {
		if existing.Linkage != fn.Linkage {
			return cp.Throw("comp/def/linkage/mismatch", fn.Token, name, existing.Linkage.String(), fn.Linkage.String())
		}
		if !existing.AttrsAreEqual(fn) {
			return cp.Throw("comp/def/attrs", fn.Token, name)
		}
		if len(body) == 0 {
			return nil
		}
		if !existing.IsDeclaration() {
			return cp.Throw("comp/def/redefined", fn.Token, name)
		}
		fn.LLVM = existing.LLVM
	}
	if fn.LLVM == nil {
		if err := cp.declare(fn); err != nil {
			return err
		}
	}
	if existing != nil {
		cp.Registry.Replace(name, i, fn)
	} else {
		cp.Registry.Insert(name, fn)
	}
	if len(body) == 0 {
		return nil
	}
	if err := cp.compileBody(name, fn, body); err != nil {
		fn.LLVM.Blocks = nil
		fn.LLVM.Linkage = enum.LinkageNone
		return err
	}
	if fn.Serialise && cp.Store != nil {
		if err := cp.Store.Save(cp.record(name, fn)); err != nil {
			return cp.Throw("comp/store", fn.Token, name, err.Error())
		}
	}
	return nil
}

func (cp *Compiler) symbolInUse(symbol string) bool {
	for _, f := range cp.Module.Funcs {
		if f.Name() == symbol {
			return true
		}
	}
	return false
}

// Adds the function to the LLVM module, without a body. A function that returns through a
// retval slot takes a pointer to the slot as an extra last parameter, and returns void.
func (cp *Compiler) declare(fn *function.Function) error {
	llParams := []*ir.Param{}
	for _, param := range fn.Params {
		if param.Type.IsVarArgs() {
			break
		}
		llType, err := types.ToLLVM(param.Type)
		if err != nil {
			return cp.rethrow(err, param.Token)
		}
		llParams = append(llParams, ir.NewParam(param.Name, llType))
	}
	if fn.HasRetval() {
		llType, err := types.ToLLVM(fn.ReturnType.Unretval())
		if err != nil {
			return cp.rethrow(err, fn.Token)
		}
		llParams = append(llParams, ir.NewParam("retval", lltypes.NewPointer(llType)))
	}
	returnType, err := types.ReturnToLLVM(fn.ReturnType)
	if err != nil {
		return cp.rethrow(err, fn.Token)
	}
	fn.LLVM = cp.Module.NewFunc(fn.InternalName, returnType, llParams...)
	fn.LLVM.Sig.Variadic = fn.IsVarArgs()
	if fn.AlwaysInline {
		fn.LLVM.FuncAttrs = append(fn.LLVM.FuncAttrs, enum.FuncAttrAlwaysInline)
	}
	return nil
}

// The parameters are copied into local storage on entry, so that the body can take their
// addresses like those of any other variable.
func (cp *Compiler) compileBody(name string, fn *function.Function, body []*ast.Node) error {
	if fn.Linkage == function.INTERN {
		fn.LLVM.Linkage = enum.LinkageInternal
	}
	cp.env = NewEnvironment()
	fn.Labels = make(map[string]*function.Label)
	fn.DeferredGotos = []*function.DeferredGoto{}
	entry := fn.LLVM.NewBlock("entry")
	for i, param := range fn.Params {
		if param.Type.IsVarArgs() {
			break
		}
		llType, err := types.ToLLVM(param.Type)
		if err != nil {
			return cp.rethrow(err, param.Token)
		}
		storage := entry.NewAlloca(llType)
		entry.NewStore(fn.LLVM.Params[i], storage)
		cp.env.AddVar(&function.Variable{Name: param.Name, Type: param.Type, Storage: storage, Token: param.Token})
	}
	var r Result
	if err := cp.compileSequence(fn, entry, body, &r); err != nil {
		return err
	}
	var firstErr error
	for _, dg := range fn.ResolveGotos() {
		err := cp.Throw("comp/goto/undefined", dg.Token, dg.LabelName, name)
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return firstErr
	}
	for _, block := range fn.LLVM.Blocks {
		if block.Term != nil {
			continue
		}
		if fn.ReturnType.IsVoid() {
			block.NewRet(nil)
		} else {
			block.NewUnreachable()
		}
	}
	if settings.SHOW_IR {
		println(text.CYAN + fn.LLVM.LLString() + text.RESET)
	}
	return nil
}

func (cp *Compiler) record(name string, fn *function.Function) *store.Record {
	paramTypes := []string{}
	params := []string{}
	for _, param := range fn.Params {
		paramTypes = append(paramTypes, param.Type.String())
		if param.Type.IsVarArgs() {
			params = append(params, "...")
		} else {
			params = append(params, "("+param.Name+" "+param.Type.String()+")")
		}
	}
	attrs := []string{}
	if fn.AlwaysInline {
		attrs = append(attrs, "inline")
	}
	if fn.Cto {
		attrs = append(attrs, "cto")
	}
	return &store.Record{
		Unit:         cp.Unit.String(),
		Name:         name,
		InternalName: fn.InternalName,
		Linkage:      fn.Linkage.String(),
		ReturnType:   fn.ReturnType.String(),
		Params:       "(" + strings.Join(params, " ") + ")",
		Attrs:        attrs,
		Fingerprint:  store.Fingerprint(name, fn.ReturnType.String(), paramTypes),
	}
}
