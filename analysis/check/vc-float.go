package check

import "github.com/ibex-verif/ibex/ir"

// floatOverflowCheck asserts that a floating-point operation only yields
// an infinity when fed one.
func (c *Checker) floatOverflowCheck(e *ir.Expr, g *Guard) {
	if !c.enableFloatOverflowCheck {
		return
	}

	if !e.Type().IsFloatBV() {
		return
	}

	switch e.Kind() {
	case ir.KTypecast:
		// Can overflow if casting from a larger to a smaller type.
		op := e.Op(0)
		if op.Type().IsFloatBV() {
			// float-to-float
			overflowCheck := ir.Or(ir.IsInf(op), ir.Not(ir.IsInf(e)))

			c.emit(overflowCheck,
				"arithmetic overflow on floating-point typecast", "overflow",
				locOf(e), e, g)
		} else {
			// non-float-to-float
			c.emit(ir.Not(ir.IsInf(e)),
				"arithmetic overflow on floating-point typecast", "overflow",
				locOf(e), e, g)
		}

	case ir.KDiv:
		// Can overflow if dividing by something small
		overflowCheck := ir.Or(ir.IsInf(e.Op(0)), ir.Not(ir.IsInf(e)))

		c.emit(overflowCheck,
			"arithmetic overflow on floating-point division", "overflow",
			locOf(e), e, g)

	case ir.KMod, ir.KUnaryMinus:
		// Can't overflow

	case ir.KPlus, ir.KMult, ir.KMinus:
		if len(e.Operands()) >= 3 {
			// break up
			c.floatOverflowCheck(makeBinary(e), g)
			return
		}

		overflowCheck := ir.Or(
			ir.IsInf(e.Op(0)),
			ir.IsInf(e.Op(1)),
			ir.Not(ir.IsInf(e)))

		var kind string
		switch e.Kind() {
		case ir.KPlus:
			kind = "addition"
		case ir.KMinus:
			kind = "subtraction"
		case ir.KMult:
			kind = "multiplication"
		}

		c.emit(overflowCheck,
			"arithmetic overflow on floating-point "+kind, "overflow",
			locOf(e), e, g)
	}
}

// nanCheck asserts that a floating-point operation cannot produce a fresh
// NaN from non-NaN operands.
func (c *Checker) nanCheck(e *ir.Expr, g *Guard) {
	if !c.enableNanCheck {
		return
	}

	if !e.Type().IsFloatBV() {
		return
	}

	switch e.Kind() {
	case ir.KPlus, ir.KMult, ir.KDiv, ir.KMinus:
	default:
		return
	}

	var isnan *ir.Expr

	switch e.Kind() {
	case ir.KDiv:
		// there are two ways to get a new NaN on division:
		// 0/0 = NaN and x/inf = NaN
		// (note that x/0 = +-inf for x!=0 and x!=inf)
		zeroDivZero := ir.And(
			ir.IeeeFloatEqual(e.Op(0), zeroOf(e.Op(0).Type())),
			ir.IeeeFloatEqual(e.Op(1), zeroOf(e.Op(1).Type())))

		divInf := ir.IsInf(e.Op(1))

		isnan = ir.Or(zeroDivZero, divInf)

	case ir.KMult:
		if len(e.Operands()) >= 3 {
			c.nanCheck(makeBinary(e), g)
			return
		}

		// Inf * 0 is NaN
		infTimesZero := ir.And(
			ir.IsInf(e.Op(0)),
			ir.IeeeFloatEqual(e.Op(1), zeroOf(e.Op(1).Type())))

		zeroTimesInf := ir.And(
			ir.IeeeFloatEqual(e.Op(0), zeroOf(e.Op(0).Type())),
			ir.IsInf(e.Op(1)))

		isnan = ir.Or(infTimesZero, zeroTimesInf)

	case ir.KPlus:
		if len(e.Operands()) >= 3 {
			c.nanCheck(makeBinary(e), g)
			return
		}

		// -inf + +inf = NaN and +inf + -inf = NaN, i.e., signs differ
		plusInf := ir.PlusInfinity(e.Type())
		minusInf := ir.MinusInfinity(e.Type())

		isnan = ir.Or(
			ir.And(ir.Equal(e.Op(0), minusInf), ir.Equal(e.Op(1), plusInf)),
			ir.And(ir.Equal(e.Op(0), plusInf), ir.Equal(e.Op(1), minusInf)))

	case ir.KMinus:
		// +inf - +inf = NaN and -inf - -inf = NaN, i.e., signs match
		plusInf := ir.PlusInfinity(e.Type())
		minusInf := ir.MinusInfinity(e.Type())

		isnan = ir.Or(
			ir.And(ir.Equal(e.Op(0), plusInf), ir.Equal(e.Op(1), plusInf)),
			ir.And(ir.Equal(e.Op(0), minusInf), ir.Equal(e.Op(1), minusInf)))
	}

	c.emit(ir.BooleanNegate(isnan), "NaN on "+e.Kind().String(), "NaN",
		locOf(e), e, g)
}
