package check

import (
	"math/big"

	"github.com/ibex-verif/ibex/ir"
)

// undefinedShiftCheck guards shifts: undefined for all types when the
// distance is negative or at least the width, and for signed left shifts of
// negative values.
func (c *Checker) undefinedShiftCheck(e *ir.Expr, g *Guard) {
	if !c.enableUndefinedShiftCheck {
		return
	}

	op, distance := e.Op(0), e.Op(1)
	distanceType := distance.Type()

	if distanceType.IsSignedBV() {
		inequality := ir.Ge(distance, zeroOf(distanceType))

		c.emit(inequality, "shift distance is negative", "undefined-shift",
			locOf(e), e, g)
	}

	opType := op.Type()

	if opType.IsBitvector() {
		widthExpr := ir.FromInteger(
			big.NewInt(int64(opType.Width())), distanceType)

		c.emit(ir.Lt(distance, widthExpr),
			"shift distance too large", "undefined-shift",
			locOf(e), e, g)

		if opType.IsSignedBV() && e.Kind() == ir.KShl {
			inequality := ir.Ge(op, zeroOf(opType))

			c.emit(inequality, "shift operand is negative", "undefined-shift",
				locOf(e), e, g)
		}
	} else {
		c.emit(ir.False(), "shift of non-integer type", "undefined-shift",
			locOf(e), e, g)
	}
}
