package function

import (
	"strconv"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"

	"github.com/tern-lang/tern/source/token"
	"github.com/tern-lang/tern/source/types"
)

type Linkage int

const (
	INTERN Linkage = iota
	EXTERN
	EXTERN_C
)

var LINKAGES = map[string]Linkage{"intern": INTERN, "extern": EXTERN, "extern-c": EXTERN_C}

func (l Linkage) String() string {
	return []string{"intern", "extern", "extern-c"}[l]
}

// A parameter, or a local variable. Storage is where the body keeps it, once the body is being compiled.
type Variable struct {
	Name    string
	Type    *types.Type
	Storage value.Value
	Token   *token.Token
}

// The compiler's record of a declared function. Two functions are the same function if they
// have the same return type and parameter types; see IsEqualTo.
type Function struct {
	ReturnType    *types.Type
	Params        []*Variable
	LLVM          *ir.Func // The instruction stream, if there is one.
	IsMacro       bool
	AlwaysInline  bool
	IsDestructor  bool
	IsSetfFn      bool
	Cto           bool // Compile-time only.
	InternalName  string
	Serialise     bool // Whether the metadata should be persisted for other compilation units.
	Linkage       Linkage
	Token         *token.Token
	Labels        map[string]*Label
	DeferredGotos []*DeferredGoto
}

func New(returnType *types.Type, params []*Variable, llvmFunction *ir.Func, isMacro bool, internalName string, alwaysInline bool) *Function {
	return &Function{
		ReturnType:    returnType,
		Params:        params,
		LLVM:          llvmFunction,
		IsMacro:       isMacro,
		AlwaysInline:  alwaysInline,
		InternalName:  internalName,
		Serialise:     true,
		Labels:        make(map[string]*Label),
		DeferredGotos: []*DeferredGoto{},
	}
}

func (fn *Function) IsVarArgs() bool {
	if len(fn.Params) == 0 {
		return false
	}
	return fn.Params[len(fn.Params)-1].Type.IsVarArgs()
}

func (fn *Function) NumberOfRequiredArgs() int {
	if fn.IsVarArgs() {
		return len(fn.Params) - 1
	}
	return len(fn.Params)
}

// This is the whole of a function's identity for the purposes of overloading and redefinition.
// Names of parameters and attributes play no part in it.
func (fn *Function) IsEqualTo(other *Function) bool {
	if !fn.ReturnType.IsEqualTo(other.ReturnType) {
		return false
	}
	if len(fn.Params) != len(other.Params) {
		return false
	}
	for i, param := range fn.Params {
		if !param.Type.IsEqualTo(other.Params[i].Type) {
			return false
		}
	}
	return true
}

// Compares the attributes that can't be used to tell overloads apart.
func (fn *Function) AttrsAreEqual(other *Function) bool {
	return fn.AlwaysInline == other.AlwaysInline
}

func (fn *Function) IsDeclaration() bool {
	return fn.LLVM == nil || len(fn.LLVM.Blocks) == 0
}

func (fn *Function) HasRetval() bool {
	return fn.ReturnType.IsRetval
}

func (fn *Function) ParamTypes() []*types.Type {
	result := make([]*types.Type, len(fn.Params))
	for i, param := range fn.Params {
		result[i] = param.Type
	}
	return result
}

// The parameter types as a list in the reader's syntax, e.g. ((p int32) int32 ...).
func (fn *Function) ParamString() string {
	strs := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		strs[i] = param.Type.String()
	}
	return "(" + strings.Join(strs, " ") + ")"
}

func (fn *Function) Signature() string {
	return fn.ParamString() + " -> " + fn.ReturnType.String()
}

// Internal names for anything that isn't extern-c encode the parameter types so that overloads
// get distinct symbols.
func Mangle(name string, params []*types.Type) string {
	var out strings.Builder
	out.WriteString("_Z")
	encoded := encodeName(name)
	out.WriteString(strconv.Itoa(len(encoded)))
	out.WriteString(encoded)
	if len(params) == 0 {
		out.WriteString("v")
	}
	for _, t := range params {
		out.WriteString(t.Code())
	}
	return out.String()
}

func encodeName(name string) string {
	var out strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out.WriteRune(r)
			continue
		}
		out.WriteString("_" + strconv.FormatInt(int64(r), 16) + "_")
	}
	return out.String()
}
