package check

import (
	"math/big"

	"github.com/ibex-verif/ibex/ir"
)

// divByZeroCheck adds the division-by-zero subgoal for Div(a, b).
func (c *Checker) divByZeroCheck(e *ir.Expr, g *Guard) {
	if !c.enableDivByZeroCheck {
		return
	}

	divisor := e.Op(1)
	inequality := ir.NotEqual(divisor, zeroOf(divisor.Type()))

	c.emit(inequality, "division by zero", "division-by-zero",
		locOf(e), e, g)
}

// modByZeroCheck adds the division-by-zero subgoal for Mod(a, b). Java
// defines % on zero divisors via ArithmeticException, so nothing is
// emitted in Java mode.
func (c *Checker) modByZeroCheck(e *ir.Expr, g *Guard) {
	if !c.enableDivByZeroCheck || c.mode == ir.ModeJava {
		return
	}

	divisor := e.Op(1)
	inequality := ir.NotEqual(divisor, zeroOf(divisor.Type()))

	c.emit(inequality, "division by zero", "division-by-zero",
		locOf(e), e, g)
}

// modOverflowCheck checks a mod expression for INT_MIN % -1.
func (c *Checker) modOverflowCheck(e *ir.Expr, g *Guard) {
	if !c.enableSignedOverflowCheck {
		return
	}

	t := e.Type()
	if !t.IsSignedBV() {
		return
	}

	// INT_MIN % -1 is, in principle, defined to be zero in ANSI C, C99,
	// C++98 and C++11. Most compilers, however, fail to produce 0, and in
	// some cases generate an exception. C11 explicitly makes this case
	// undefined.
	intMinNeq := ir.NotEqual(e.Op(0), t.SmallestExpr())
	minusOneNeq := ir.NotEqual(e.Op(1), ir.IntConst(-1, e.Op(1).Type()))

	c.emit(ir.Or(intMinNeq, minusOneNeq),
		"result of signed mod is not representable", "overflow",
		locOf(e), e, g)
}

// integerOverflowCheck adds the overflow subgoal of an integer operation.
func (c *Checker) integerOverflowCheck(e *ir.Expr, g *Guard) {
	if !c.enableSignedOverflowCheck && !c.enableUnsignedOverflowCheck {
		return
	}

	t := e.Type()
	if t.IsSignedBV() && !c.enableSignedOverflowCheck {
		return
	}
	if t.IsUnsignedBV() && !c.enableUnsignedOverflowCheck {
		return
	}

	switch e.Kind() {
	case ir.KDiv:
		// undefined for signed division INT_MIN/-1
		if t.IsSignedBV() {
			intMinEq := ir.Equal(e.Op(0), t.SmallestExpr())
			minusOneEq := ir.Equal(e.Op(1), ir.IntConst(-1, t))

			c.emit(ir.Not(ir.And(intMinEq, minusOneEq)),
				"arithmetic overflow on signed division", "overflow",
				locOf(e), e, g)
		}
		return

	case ir.KUnaryMinus:
		if t.IsSignedBV() {
			// overflow on unary- can only happen with the smallest
			// representable number 100....0
			intMinEq := ir.Equal(e.Op(0), t.SmallestExpr())

			c.emit(ir.Not(intMinEq),
				"arithmetic overflow on signed unary minus", "overflow",
				locOf(e), e, g)
		}
		return

	case ir.KShl:
		if t.IsSignedBV() {
			c.shlOverflowCheck(e, g)
		}
		return
	}

	kind := "signed"
	if t.IsUnsignedBV() {
		kind = "unsigned"
	}

	ops := e.Operands()
	if len(ops) >= 3 {
		// The overflow predicates are binary; n-ary operators break up
		// into one check per prefix.
		for i := 1; i < len(ops); i++ {
			var prefix *ir.Expr
			if i == 1 {
				prefix = ops[0]
			} else {
				switch e.Kind() {
				case ir.KPlus:
					prefix = ir.Plus(ops[:i]...)
				case ir.KMult:
					prefix = ir.Mult(ops[:i]...)
				default:
					fatalf("n-ary overflow check on '%s'", e.Kind())
				}
			}

			overflow := ir.Overflow(e.Kind().String(), prefix, ops[i])
			c.emit(ir.Not(overflow),
				"arithmetic overflow on "+kind+" "+e.Kind().String(),
				"overflow", locOf(e), e, g)
		}
		return
	}

	overflow := ir.Overflow(e.Kind().String(), ops...)
	c.emit(ir.Not(overflow),
		"arithmetic overflow on "+kind+" "+e.Kind().String(),
		"overflow", locOf(e), e, g)
}

// shlOverflowCheck builds the five-disjunct overflow condition of a signed
// left shift: the top bits of the widened shift must be zero unless the
// shift is already undefined for another reason.
func (c *Checker) shlOverflowCheck(e *ir.Expr, g *Guard) {
	op, distance := e.Op(0), e.Op(1)
	opType := op.Type()
	distanceType := distance.Type()
	opWidth := opType.Width()

	// a left shift of a negative value is undefined;
	// yet this isn't an overflow
	var negValueShift *ir.Expr
	if opType.IsUnsignedBV() {
		negValueShift = ir.False()
	} else {
		negValueShift = ir.Lt(op, zeroOf(opType))
	}

	// a shift with negative distance is undefined;
	// yet this isn't an overflow
	var negDistShift *ir.Expr
	if distanceType.IsUnsignedBV() {
		negDistShift = ir.False()
	} else {
		negDistShift = ir.Lt(distance, zeroOf(distanceType))
	}

	// shifting a non-zero value by more than its width is undefined;
	// yet this isn't an overflow
	distTooLarge := ir.Gt(distance,
		ir.FromInteger(big.NewInt(int64(opWidth)), distanceType))

	opZero := ir.Equal(op, zeroOf(opType))

	wideType := ir.SignedBV(opWidth * 2)
	if opType.IsUnsignedBV() {
		wideType = ir.UnsignedBV(opWidth * 2)
	}
	opExtShifted := ir.Shl(ir.Typecast(op, wideType), distance)

	// The semantics of signed left shifts are contentious when a '1' is
	// shifted into the sign bit. Assuming 32-bit integers, 1<<31 is
	// implementation-defined in ANSI C and C++98, but explicitly
	// undefined by C99, C11 and C++11.
	allowShiftIntoSignBit := true
	switch c.standard {
	case C99, C11, CPP11, CPP14:
		allowShiftIntoSignBit = false
	}

	numberOfTopBits := opWidth
	if !allowShiftIntoSignBit {
		numberOfTopBits = opWidth + 1
	}

	topBits := extractTopBits(opExtShifted, numberOfTopBits)
	topBitsZero := ir.Equal(topBits, zeroOf(topBits.Type()))

	// a negative distance shift isn't an overflow;
	// a negative value shift isn't an overflow;
	// a shift that's too far isn't an overflow;
	// a shift of zero isn't an overflow;
	// else check the top bits
	c.emit(
		ir.Or(negValueShift, negDistShift, distTooLarge, opZero, topBitsZero),
		"arithmetic overflow on signed shl", "overflow",
		locOf(e), e, g)
}

// extractTopBits takes the most significant n bits of a widened shift as
// an unsigned slab.
func extractTopBits(e *ir.Expr, n uint) *ir.Expr {
	width := e.Type().Width()
	shifted := ir.LShr(e,
		ir.FromInteger(big.NewInt(int64(width-n)), ir.UnsignedBV(width)))
	return ir.Typecast(shifted, ir.UnsignedBV(n))
}

// conversionCheck guards a typecast to an integer type against value loss.
func (c *Checker) conversionCheck(e *ir.Expr, g *Guard) {
	if !c.enableConversionCheck {
		return
	}

	t := e.Type()
	if !t.IsBitvector() {
		return
	}

	op := e.Op(0)
	oldType := op.Type()

	if t.IsSignedBV() {
		newWidth := t.Width()

		switch {
		case oldType.IsSignedBV(): // signed -> signed
			oldWidth := oldType.Width()
			if newWidth >= oldWidth {
				return // always ok
			}

			upper := ir.Le(op, ir.Const(ir.LargestSigned(newWidth), oldType))
			lower := ir.Ge(op, ir.Const(ir.SmallestSigned(newWidth), oldType))

			c.emit(ir.And(lower, upper),
				"arithmetic overflow on signed type conversion", "overflow",
				locOf(e), e, g)

		case oldType.IsUnsignedBV(): // unsigned -> signed
			oldWidth := oldType.Width()
			if newWidth >= oldWidth+1 {
				return // always ok
			}

			upper := ir.Le(op, ir.Const(ir.LargestSigned(newWidth), oldType))

			c.emit(upper,
				"arithmetic overflow on unsigned to signed type conversion",
				"overflow", locOf(e), e, g)

		case oldType.IsFloatBV(): // float -> signed
			// Note that the fractional part is truncated!
			upperBound := new(big.Int).Lsh(big.NewInt(1), newWidth-1)
			lowerBound := new(big.Int).Neg(
				new(big.Int).Add(upperBound, big.NewInt(1)))

			upper := ir.Lt(op, ir.FloatFromInt(upperBound, oldType))
			lower := ir.Gt(op, ir.FloatFromInt(lowerBound, oldType))

			c.emit(ir.And(lower, upper),
				"arithmetic overflow on float to signed integer type conversion",
				"overflow", locOf(e), e, g)
		}
	} else {
		newWidth := t.Width()

		switch {
		case oldType.IsSignedBV(): // signed -> unsigned
			oldWidth := oldType.Width()

			if newWidth >= oldWidth-1 {
				// only need lower bound check
				lower := ir.Ge(op, zeroOf(oldType))

				c.emit(lower,
					"arithmetic overflow on signed to unsigned type conversion",
					"overflow", locOf(e), e, g)
			} else {
				// need both
				upper := ir.Le(op, ir.Const(ir.LargestUnsigned(newWidth), oldType))
				lower := ir.Ge(op, zeroOf(oldType))

				c.emit(ir.And(lower, upper),
					"arithmetic overflow on signed to unsigned type conversion",
					"overflow", locOf(e), e, g)
			}

		case oldType.IsUnsignedBV(): // unsigned -> unsigned
			oldWidth := oldType.Width()
			if newWidth >= oldWidth {
				return // always ok
			}

			upper := ir.Le(op, ir.Const(ir.LargestUnsigned(newWidth), oldType))

			c.emit(upper,
				"arithmetic overflow on unsigned to unsigned type conversion",
				"overflow", locOf(e), e, g)

		case oldType.IsFloatBV(): // float -> unsigned
			// Note that the fractional part is truncated!
			upperBound := new(big.Int).Sub(
				new(big.Int).Lsh(big.NewInt(1), newWidth), big.NewInt(1))

			upper := ir.Lt(op, ir.FloatFromInt(upperBound, oldType))
			lower := ir.Gt(op, ir.FloatFromInt(big.NewInt(-1), oldType))

			c.emit(ir.And(lower, upper),
				"arithmetic overflow on float to unsigned integer type conversion",
				"overflow", locOf(e), e, g)
		}
	}
}
