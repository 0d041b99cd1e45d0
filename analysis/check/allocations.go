package check

import (
	"fmt"

	"github.com/ibex-verif/ibex/ir"
)

// Allocation is one explicitly declared memory region: a base address and
// a size. The catalog is collected once per program and immutable after.
type Allocation struct {
	Address *ir.Expr
	Size    *ir.Expr
}

// CollectAllocations fills the allocation catalog with the
// (address, size) pair of every __ibex_allocated_memory call, checking
// that each is well-formed. A no-op unless pointer or bounds checks are
// enabled.
func (c *Checker) CollectAllocations(fns *ir.Functions) error {
	if !c.enablePointerCheck && !c.enableBoundsCheck {
		return nil
	}

	for _, fn := range fns.List {
		for _, i := range fn.Body.Instructions {
			if i.Kind != ir.InstrFunctionCall {
				continue
			}
			if i.Callee.Kind() != ir.KSymbol ||
				i.Callee.Id() != ir.AllocatedMemorySymbol {
				continue
			}

			if len(i.Args) != 2 ||
				!i.Args[0].Type().IsUnsignedBV() ||
				!i.Args[1].Type().IsUnsignedBV() {
				return fmt.Errorf(
					"expected two unsigned arguments to %s", ir.AllocatedMemorySymbol)
			}
			if !i.Args[0].Type().Equal(i.Args[1].Type()) {
				return fmt.Errorf(
					"%s arguments must have identical widths", ir.AllocatedMemorySymbol)
			}
			c.allocations = append(c.allocations, Allocation{i.Args[0], i.Args[1]})
		}
	}
	return nil
}
