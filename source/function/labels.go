package function

import (
	"github.com/llir/llvm/ir"

	"github.com/tern-lang/tern/source/token"
)

// Labels are per function. A goto to a label we haven't seen yet can't be emitted when we
// meet it, so we note the block it should terminate and fill in the branch once the whole
// body has been compiled.

type Label struct {
	Name  string
	Block *ir.Block
	Token *token.Token
}

type DeferredGoto struct {
	LabelName string
	Block     *ir.Block // The block that the goto ends. It has no terminator until we resolve it.
	Token     *token.Token
}

// Returns false rather than failing, since a goto may legitimately refer to a label further on.
func (fn *Function) GetLabel(name string) (*Label, bool) {
	label, ok := fn.Labels[name]
	return label, ok
}

func (fn *Function) AddLabel(name string, label *Label) bool {
	fn.Labels[name] = label
	return true
}

func (fn *Function) AddDeferredGoto(dg *DeferredGoto) {
	fn.DeferredGotos = append(fn.DeferredGotos, dg)
}

// Emits the branch for every deferred goto whose label now exists, and returns the ones whose
// label doesn't. Either way the ledger is empty afterwards.
func (fn *Function) ResolveGotos() []*DeferredGoto {
	unresolved := []*DeferredGoto{}
	for _, dg := range fn.DeferredGotos {
		label, ok := fn.GetLabel(dg.LabelName)
		if !ok {
			unresolved = append(unresolved, dg)
			continue
		}
		dg.Block.NewBr(label.Block)
	}
	fn.DeferredGotos = []*DeferredGoto{}
	return unresolved
}
