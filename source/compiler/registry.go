package compiler

import (
	"src.elv.sh/pkg/persistent/hash"
	"src.elv.sh/pkg/persistent/hashmap"
	"src.elv.sh/pkg/persistent/vector"

	"github.com/tern-lang/tern/source/function"
	"github.com/tern-lang/tern/source/types"
)

// The registry maps each name to its overloads. It's built out of persistent structures, so
// that a snapshot is just the map as it was, and when a top-level form fails we can put the
// registry back the way it was before the form started.
type Registry struct {
	fns hashmap.Map // string -> vector.Vector of *function.Function
}

type Snapshot struct {
	fns hashmap.Map
}

func NewRegistry() *Registry {
	return &Registry{fns: hashmap.New(
		func(a, b any) bool { return a.(string) == b.(string) },
		func(k any) uint32 { return hash.String(k.(string)) },
	)}
}

func (r *Registry) Snapshot() Snapshot {
	return Snapshot{r.fns}
}

func (r *Registry) Restore(s Snapshot) {
	r.fns = s.fns
}

func (r *Registry) overloads(name string) vector.Vector {
	v, ok := r.fns.Index(name)
	if !ok {
		return vector.Empty
	}
	return v.(vector.Vector)
}

func (r *Registry) Overloads(name string) []*function.Function {
	result := []*function.Function{}
	for it := r.overloads(name).Iterator(); it.HasElem(); it.Next() {
		result = append(result, it.Elem().(*function.Function))
	}
	return result
}

func (r *Registry) Has(name string) bool {
	_, ok := r.fns.Index(name)
	return ok
}

// Returns the existing function that the given one is the same function as, if any, and its
// position among the overloads.
func (r *Registry) Equal(name string, fn *function.Function) (*function.Function, int) {
	for i, existing := range r.Overloads(name) {
		if existing.IsEqualTo(fn) {
			return existing, i
		}
	}
	return nil, -1
}

func (r *Registry) Insert(name string, fn *function.Function) {
	r.fns = r.fns.Assoc(name, r.overloads(name).Conj(fn))
}

func (r *Registry) Replace(name string, i int, fn *function.Function) {
	r.fns = r.fns.Assoc(name, r.overloads(name).Assoc(i, fn))
}

// Finds the overload that takes arguments of exactly these types. A variadic overload matches
// if its required parameters match and there are any number of further arguments; we only
// fall back on those if nothing fits exactly.
func (r *Registry) Lookup(name string, argTypes []*types.Type) *function.Function {
	var variadic *function.Function
	for _, fn := range r.Overloads(name) {
		required := fn.NumberOfRequiredArgs()
		if len(argTypes) < required || (!fn.IsVarArgs() && len(argTypes) != required) {
			continue
		}
		if !paramsMatch(fn, argTypes[:required]) {
			continue
		}
		if !fn.IsVarArgs() {
			return fn
		}
		if variadic == nil {
			variadic = fn
		}
	}
	return variadic
}

// Looks up the overload with exactly these parameter types, variadic marker and all.
func (r *Registry) Exact(name string, paramTypes ...*types.Type) *function.Function {
	for _, fn := range r.Overloads(name) {
		if len(fn.Params) == len(paramTypes) && paramsMatch(fn, paramTypes) {
			return fn
		}
	}
	return nil
}

func paramsMatch(fn *function.Function, argTypes []*types.Type) bool {
	for i, t := range argTypes {
		if !fn.Params[i].Type.IsEqualTo(t) {
			return false
		}
	}
	return true
}

func (r *Registry) Names() []string {
	result := []string{}
	for it := r.fns.Iterator(); it.HasElem(); it.Next() {
		k, _ := it.Elem()
		result = append(result, k.(string))
	}
	return result
}
