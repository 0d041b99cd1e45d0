package check

import "github.com/ibex-verif/ibex/ir"

// rwOkCheck expands the r_ok and w_ok predicates into the conjunction of
// the conditions addressCheck would assert for the address and size. The
// rewrite is idempotent: the expansion contains no r_ok/w_ok.
func (c *Checker) rwOkCheck(e *ir.Expr) (*ir.Expr, bool) {
	modified := false

	ops := e.Operands()
	newOps := make([]*ir.Expr, len(ops))
	for i, op := range ops {
		if rewritten, changed := c.rwOkCheck(op); changed {
			newOps[i] = rewritten
			modified = true
		} else {
			newOps[i] = op
		}
	}

	if e.Kind() == ir.KROk || e.Kind() == ir.KWOk {
		// these get an address as first argument and a size as second
		if len(newOps) != 2 {
			fatalf("r/w_ok must have two operands")
		}

		conditions := c.addressCheck(newOps[0], newOps[1])

		conjuncts := make([]*ir.Expr, len(conditions))
		for i, cond := range conditions {
			conjuncts[i] = cond.assertion
		}

		return ir.Conjunction(conjuncts), true
	}

	if modified {
		return rebuild(e, newOps), true
	}
	return e, false
}

// rebuild clones an expression with fresh operands, preserving its kind,
// type and payload.
func rebuild(e *ir.Expr, ops []*ir.Expr) *ir.Expr {
	return e.WithOperands(ops)
}
