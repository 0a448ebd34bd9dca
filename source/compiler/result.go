package compiler

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"

	"github.com/tern-lang/tern/source/report"
	"github.com/tern-lang/tern/source/types"
)

// A Result is what compiling one expression leaves behind: the block we're now emitting into,
// the type of the expression, and how to get at its value. Form processors hand these back to
// their callers, and combine the Results of their operands into their own.
//
// A value is produced in one of two ways. Either we have it directly, or the callee wrote it
// into a slot we supplied (return-value optimization), in which case the slot is authoritative
// and the value has to be loaded out of it. A Result with neither can't be read from.
type Result struct {
	Block                *ir.Block
	Type                 *types.Type
	Produced             Produced
	AddressOfValue       value.Value
	TypeOfAddressOfValue *types.Type // If nil, the address has type pointer-to-Type.
	RetvalType           *types.Type // The type of the retained slot, i.e. pointer-to-Type.
	RetvalUsed           bool

	TreatAsTerminator bool
	DoNotDestruct     bool
	DoNotCopyWithSetf bool
	FreshlyCopied     bool
	ValueIsLvalue     bool
}

type Produced interface {
	produced()
}

type DirectValue struct {
	Value value.Value
}

// Direct is whatever was last Set on the Result. It plays no part in GetValue while the slot is there.
type RetainedSlot struct {
	Slot   value.Value
	Direct value.Value
}

func (DirectValue) produced()  {}
func (RetainedSlot) produced() {}

func NewResult(block *ir.Block, t *types.Type, v value.Value) *Result {
	pr := &Result{}
	pr.Set(block, t, v)
	return pr
}

// Set doesn't touch the materialized address. Anyone who changes the value of a Result that
// already has an address must call ClearAddress, or the address will describe the old value.
func (pr *Result) Set(block *ir.Block, t *types.Type, v value.Value) {
	pr.Block = block
	pr.Type = t
	switch p := pr.Produced.(type) {
	case RetainedSlot:
		p.Direct = v
		pr.Produced = p
	default:
		if v == nil {
			pr.Produced = nil
		} else {
			pr.Produced = DirectValue{v}
		}
	}
}

func (pr *Result) SetRetval(slot value.Value, slotType *types.Type) {
	pr.Produced = RetainedSlot{Slot: slot, Direct: pr.Value()}
	pr.RetvalType = slotType
}

func (pr *Result) ClearAddress() {
	pr.AddressOfValue = nil
	pr.TypeOfAddressOfValue = nil
}

// The direct value, with no loading from a slot. Nil if there isn't one.
func (pr *Result) Value() value.Value {
	switch p := pr.Produced.(type) {
	case DirectValue:
		return p.Value
	case RetainedSlot:
		return p.Direct
	}
	return nil
}

// The retained slot, if there is one.
func (pr *Result) Retval() (value.Value, bool) {
	if p, ok := pr.Produced.(RetainedSlot); ok {
		return p.Slot, true
	}
	return nil, false
}

func (pr *Result) HasValue() bool {
	switch p := pr.Produced.(type) {
	case DirectValue:
		return p.Value != nil
	case RetainedSlot:
		return p.Slot != nil
	}
	return false
}

// Copies every attribute, so that two consumers can each have the compiled value without
// compiling it twice.
func (pr *Result) CopyTo(other *Result) {
	*other = *pr
}

// Makes sure the value is sitting in memory somewhere. If it already is, that's the end of
// it, and nothing is emitted.
//
// When the value is in a retained slot we load it out and store it into the new allocation,
// rather than handing back the slot itself.
func (pr *Result) SetAddressOfValue() error {
	if pr.AddressOfValue != nil {
		return nil
	}
	llType, err := types.ToLLVM(pr.Type)
	if err != nil {
		return err
	}
	address := pr.Block.NewAlloca(llType)
	v, err := pr.GetValue()
	if err != nil {
		return err
	}
	pr.Block.NewStore(v, address)
	pr.AddressOfValue = address
	return nil
}

// Puts the address of the value into out, materializing it if need be.
func (pr *Result) GetAddressOfValue(out *Result) error {
	if err := pr.SetAddressOfValue(); err != nil {
		return err
	}
	addressType := pr.TypeOfAddressOfValue
	if addressType == nil {
		addressType = types.PointerTo(pr.Type)
	}
	out.Set(pr.Block, addressType, pr.AddressOfValue)
	return nil
}

// If there's a retained slot we load from it, even if there's also a direct value. A Result
// with nothing to give means some form processor has gone wrong, and we say so with a defect
// rather than a user error.
func (pr *Result) GetValue() (value.Value, error) {
	switch p := pr.Produced.(type) {
	case RetainedSlot:
		if p.Slot != nil {
			llType, err := types.ToLLVM(pr.Type)
			if err != nil {
				return nil, report.Defect("retained slot holds a value of type %v, which has no storage layout", pr.Type)
			}
			return pr.Block.NewLoad(llType, p.Slot), nil
		}
		if p.Direct != nil {
			return p.Direct, nil
		}
	case DirectValue:
		if p.Value != nil {
			return p.Value, nil
		}
	}
	return nil, report.Defect("no value in result of type %v", pr.Type)
}
