package types

// The compiler's own view of types. The core only ever asks a handful of questions of them:
// are two types equal, how are they laid out in memory, and are they pointer-like, integral,
// or the variadic marker. Everything else about the language's type system lives elsewhere.

import (
	"strconv"

	lltypes "github.com/llir/llvm/ir/types"

	"github.com/tern-lang/tern/source/report"
)

type BaseType int

const (
	VOID BaseType = iota
	BOOL
	INT8
	INT16
	INT32
	INT64
	UINT8
	UINT16
	UINT32
	UINT64
	SIZE
	VARARGS
	POINTER
	ARRAY
)

var baseNames = []string{"void", "bool", "int8", "int16", "int32", "int64", "uint8", "uint16",
	"uint32", "uint64", "size", "...", "p", "array-of"}

// Type names the reader accepts as atoms. Note that 'int' is the same type as 'int32'.
var BASE_TYPES = map[string]BaseType{
	"void":   VOID,
	"bool":   BOOL,
	"int":    INT32,
	"int8":   INT8,
	"int16":  INT16,
	"int32":  INT32,
	"int64":  INT64,
	"uint8":  UINT8,
	"uint16": UINT16,
	"uint32": UINT32,
	"uint64": UINT64,
	"size":   SIZE,
	"...":    VARARGS,
}

type Type struct {
	Base      BaseType
	Points    *Type // Pointee, if Base is POINTER.
	ArrayOf   *Type // Element type, if Base is ARRAY.
	ArraySize int
	IsRetval  bool // The callee writes its result into storage the caller supplies.
}

func Make(b BaseType) *Type {
	return &Type{Base: b}
}

var (
	Void    = Make(VOID)
	Bool    = Make(BOOL)
	Int32   = Make(INT32)
	Int64   = Make(INT64)
	VarArgs = Make(VARARGS)
)

func PointerTo(t *Type) *Type {
	return &Type{Base: POINTER, Points: t}
}

func ArrayOf(n int, t *Type) *Type {
	return &Type{Base: ARRAY, ArrayOf: t, ArraySize: n}
}

func Retval(t *Type) *Type {
	result := *t
	result.IsRetval = true
	return &result
}

// The same type without the retval marker, i.e. the type of the thing that actually gets stored.
func (t *Type) Unretval() *Type {
	if !t.IsRetval {
		return t
	}
	result := *t
	result.IsRetval = false
	return &result
}

func (t *Type) IsEqualTo(other *Type) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	if t.Base != other.Base || t.IsRetval != other.IsRetval {
		return false
	}
	switch t.Base {
	case POINTER:
		return t.Points.IsEqualTo(other.Points)
	case ARRAY:
		return t.ArraySize == other.ArraySize && t.ArrayOf.IsEqualTo(other.ArrayOf)
	}
	return true
}

func (t *Type) IsVoid() bool {
	return t.Base == VOID
}

func (t *Type) IsVarArgs() bool {
	return t.Base == VARARGS
}

func (t *Type) IsPointer() bool {
	return t.Base == POINTER
}

// Arrays decay to a pointer to their first element.
func (t *Type) IsPointerLike() bool {
	return t.Base == POINTER || t.Base == ARRAY
}

func (t *Type) IsIntegral() bool {
	return t.Base >= INT8 && t.Base <= SIZE
}

func (t *Type) IsSigned() bool {
	return t.Base >= INT8 && t.Base <= INT64
}

// The pointer type an array decays to. Pointers decay to themselves.
func (t *Type) Decay() *Type {
	if t.Base == ARRAY {
		return PointerTo(t.ArrayOf)
	}
	return t
}

// The printed form is re-readable by the reader, which is what the metadata store relies on.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	var result string
	switch t.Base {
	case POINTER:
		result = "(p " + t.Points.String() + ")"
	case ARRAY:
		result = "(array-of " + strconv.Itoa(t.ArraySize) + " " + t.ArrayOf.String() + ")"
	default:
		result = baseNames[t.Base]
	}
	if t.IsRetval {
		result = "(retval " + result + ")"
	}
	return result
}

// The storage layout of a type. Void has none, nor does the variadic marker. A pointer to void is
// laid out as a pointer to bytes.
func ToLLVM(t *Type) (lltypes.Type, error) {
	switch t.Base {
	case BOOL:
		return lltypes.I1, nil
	case INT8, UINT8:
		return lltypes.I8, nil
	case INT16, UINT16:
		return lltypes.I16, nil
	case INT32, UINT32:
		return lltypes.I32, nil
	case INT64, UINT64, SIZE:
		return lltypes.I64, nil
	case POINTER:
		if t.Points.Base == VOID {
			return lltypes.NewPointer(lltypes.I8), nil
		}
		elem, err := ToLLVM(t.Points)
		if err != nil {
			return nil, err
		}
		return lltypes.NewPointer(elem), nil
	case ARRAY:
		elem, err := ToLLVM(t.ArrayOf)
		if err != nil {
			return nil, err
		}
		return lltypes.NewArray(uint64(t.ArraySize), elem), nil
	}
	return nil, report.Storage.New("type %s cannot be resolved to a concrete storage layout", t.String())
}

// As ToLLVM, except that void is fine, since this is for return types.
func ReturnToLLVM(t *Type) (lltypes.Type, error) {
	if t.IsRetval || t.Base == VOID {
		return lltypes.Void, nil
	}
	return ToLLVM(t)
}

// The LLVM integer type for an integral type, for the benefit of anyone who needs to make constants.
func IntToLLVM(t *Type) *lltypes.IntType {
	ll, err := ToLLVM(t)
	if err != nil {
		return lltypes.I32
	}
	if it, ok := ll.(*lltypes.IntType); ok {
		return it
	}
	return lltypes.I32
}

// The short codes used to mangle parameter types into internal names.
func (t *Type) Code() string {
	switch t.Base {
	case POINTER:
		return "P" + t.Points.Code()
	case ARRAY:
		return "A" + strconv.Itoa(t.ArraySize) + "_" + t.ArrayOf.Code()
	}
	return []string{"v", "b", "a", "s", "i", "l", "h", "t", "j", "m", "z", "e"}[t.Base]
}
