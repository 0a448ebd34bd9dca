package compiler

import (
	"github.com/joomcode/errorx"

	"github.com/tern-lang/tern/source/ast"
	"github.com/tern-lang/tern/source/function"
	"github.com/tern-lang/tern/source/parser"
	"github.com/tern-lang/tern/source/report"
	"github.com/tern-lang/tern/source/set"
	"github.com/tern-lang/tern/source/settings"
	"github.com/tern-lang/tern/source/text"
	"github.com/tern-lang/tern/source/token"
	"github.com/tern-lang/tern/source/types"
)

// Compiles every top-level form of the source. User errors go on cp.Errors and compilation
// carries on with the next form; the only error returned is a defect, at which point we stop.
func (cp *Compiler) CompileSource(source, code string) error {
	p := parser.New(source, code)
	nodes := p.ParseAll()
	cp.Errors = append(cp.Errors, p.Errors...)
	for _, node := range nodes {
		if err := cp.CompileTopLevel(node); report.IsDefect(err) {
			return err
		}
	}
	return nil
}

// If the form fails, the registry and the module go back to how they were before it, so that
// nothing half-built is left for later forms to call.
func (cp *Compiler) CompileTopLevel(node *ast.Node) error {
	snapshot := cp.Registry.Snapshot()
	fnCount := len(cp.Module.Funcs)
	err := cp.compileDef(node)
	if err != nil && !report.IsDefect(err) {
		cp.cm("Form failed; restoring the registry.", node.GetToken())
		cp.Registry.Restore(snapshot)
		cp.Module.Funcs = cp.Module.Funcs[:fnCount]
	}
	return err
}

// The overload of name with exactly these parameter types, or nil.
func (cp *Compiler) Function(name string, paramTypes ...*types.Type) *function.Function {
	return cp.Registry.Exact(name, paramTypes...)
}

// Declares everything the store knows about that other units can see, i.e. everything that
// isn't intern.
func (cp *Compiler) ImportDeclarations() error {
	records, err := cp.Store.Load()
	if err != nil {
		return cp.Throw("store/open", nil, err.Error())
	}
	for _, r := range records {
		linkage, ok := function.LINKAGES[r.Linkage]
		if !ok || linkage == function.INTERN {
			continue
		}
		tok := token.Synthetic(r.Name, "metadata store")
		errCount := len(cp.Errors)
		fn, err := cp.importRecord(r.ReturnType, r.Params, r.InternalName, set.MakeFromSlice(r.Attrs))
		if err != nil {
			message := err.Error()
			if e := errorx.Cast(err); e != nil {
				message = e.Message()
			}
			cp.Errors = cp.Errors[:errCount]
			cp.Throw("store/signature", tok, r.Name, message)
			continue
		}
		fn.Linkage = linkage
		fn.Token = tok
		if existing, _ := cp.Registry.Equal(r.Name, fn); existing != nil {
			continue
		}
		if err := cp.declare(fn); err != nil {
			continue
		}
		cp.Registry.Insert(r.Name, fn)
		if settings.SHOW_STORE {
			println(text.GREEN + "    Imported " + r.Name + " " + fn.Signature() + text.RESET)
		}
	}
	return nil
}

func (cp *Compiler) importRecord(returnType, params, internalName string, attrs set.Set[string]) (*function.Function, error) {
	retNode, errs := parser.ParseOne("metadata store", returnType)
	if len(errs) > 0 {
		return nil, errs[0].Err
	}
	ret, err := cp.parseType(retNode)
	if err != nil {
		return nil, err
	}
	paramsNode, errs := parser.ParseOne("metadata store", params)
	if len(errs) > 0 {
		return nil, errs[0].Err
	}
	ps, err := cp.parseParams(paramsNode)
	if err != nil {
		return nil, err
	}
	fn := function.New(ret, ps, nil, false, internalName, attrs.Contains("inline"))
	fn.Cto = attrs.Contains("cto")
	return fn, nil
}
