package compiler

// How the compiler keeps track of where the local variables of the function it's compiling are
// stored. Each new-scope gets its own environment, pointing outwards to the one it's nested in.

import "github.com/tern-lang/tern/source/function"

type Environment struct {
	Data map[string]*function.Variable
	Ext  *Environment
}

func NewEnvironment() *Environment {
	return &Environment{Data: make(map[string]*function.Variable), Ext: nil}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.Ext = outer
	return env
}

func (env *Environment) GetVar(name string) (*function.Variable, bool) {
	if env == nil {
		return nil, false
	}
	v, ok := env.Data[name]
	if ok {
		return v, true
	}
	return env.Ext.GetVar(name)
}

func (env *Environment) AddVar(v *function.Variable) {
	env.Data[v.Name] = v
}
