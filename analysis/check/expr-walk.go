package check

import (
	"math/big"

	"github.com/ibex-verif/ibex/ir"
)

// Check initiates the recursive analysis of an expression with the guard
// set to true.
func (c *Checker) Check(e *ir.Expr) {
	var g Guard
	c.checkRec(e, &g)
}

// checkRec recursively descends into the expression, running the
// appropriate check for each sub-expression while collecting the condition
// for the check in the guard.
func (c *Checker) checkRec(e *ir.Expr, g *Guard) {
	// we don't look into quantifiers
	if e.Kind() == ir.KExists || e.Kind() == ir.KForall {
		return
	}

	switch e.Kind() {
	case ir.KAddressOf:
		c.checkRecAddress(e.Op(0), g)
		return
	case ir.KAnd, ir.KOr:
		c.checkRecLogicalOp(e, g)
		return
	case ir.KIf:
		c.checkRecIf(e, g)
		return
	case ir.KMember:
		if e.Op(0).Kind() == ir.KDereference {
			if c.checkRecMember(e, g) {
				return
			}
		}
	}

	for _, op := range e.Operands() {
		c.checkRec(op, g)
	}

	switch e.Kind() {
	case ir.KIndex:
		c.boundsCheck(e, g)
	case ir.KDiv:
		c.checkRecDiv(e, g)
	case ir.KShl, ir.KAShr, ir.KLShr:
		c.undefinedShiftCheck(e, g)

		if e.Kind() == ir.KShl && e.Type().IsSignedBV() {
			c.integerOverflowCheck(e, g)
		}
	case ir.KMod:
		c.modByZeroCheck(e, g)
		c.modOverflowCheck(e, g)
	case ir.KPlus, ir.KMinus, ir.KMult, ir.KUnaryMinus:
		c.checkRecArithmeticOp(e, g)
	case ir.KTypecast:
		c.conversionCheck(e, g)
	case ir.KLe, ir.KLt, ir.KGe, ir.KGt:
		c.pointerRelCheck(e, g)
	case ir.KDereference:
		c.pointerValidityCheck(e, e, g)
	}
}

// checkRecAddress checks an address-of expression: a dereference checks
// the pointer, an index address-checks the array and value-checks the
// index; the addressed location itself does not trigger value checks.
func (c *Checker) checkRecAddress(e *ir.Expr, g *Guard) {
	// we don't look into quantifiers
	if e.Kind() == ir.KExists || e.Kind() == ir.KForall {
		return
	}

	switch e.Kind() {
	case ir.KDereference:
		c.checkRec(e.Op(0), g)
	case ir.KIndex:
		c.checkRecAddress(e.Op(0), g)
		c.checkRec(e.Op(1), g)
	default:
		for _, op := range e.Operands() {
			c.checkRecAddress(op, g)
		}
	}
}

// checkRecLogicalOp checks each operand of a Boolean connective in
// separation while extending the guard:
//
//	a && b && c  ==>  check(a, G), check(b, G∧a), check(c, G∧a∧b)
//	a || b || c  ==>  check(a, G), check(b, G∧¬a), check(c, G∧¬a∧¬b)
func (c *Checker) checkRecLogicalOp(e *ir.Expr, g *Guard) {
	if !e.IsBoolean() {
		fatalf("'%s' must be Boolean, but got %s", e.Kind(), ir.Pretty(e))
	}

	defer g.Restore(g.Save())

	for _, op := range e.Operands() {
		if !op.IsBoolean() {
			fatalf("'%s' takes Boolean operands only, but got %s",
				e.Kind(), ir.Pretty(op))
		}

		c.checkRec(op, g)
		if e.Kind() == ir.KOr {
			g.Add(ir.BooleanNegate(op))
		} else {
			g.Add(op)
		}
	}
}

// checkRecIf checks the condition alone, then each branch under the guard
// extended with the condition and its negation, respectively.
func (c *Checker) checkRecIf(e *ir.Expr, g *Guard) {
	cond, tCase, fCase := e.Op(0), e.Op(1), e.Op(2)

	if !cond.IsBoolean() {
		fatalf("first argument of if must be Boolean, but got %s", ir.Pretty(cond))
	}

	c.checkRec(cond, g)

	{
		save := g.Save()
		g.Add(cond)
		c.checkRec(tCase, g)
		g.Restore(save)
	}

	{
		save := g.Save()
		g.Add(ir.BooleanNegate(cond))
		c.checkRec(fCase, g)
		g.Restore(save)
	}
}

// checkRecMember validates a member-of-dereference: the pointer is
// checked, then s->m is rewritten as *((char*)s + offset(m)) so that only
// the member's bytes need to be valid, not the entire struct. Reports
// whether the member expression needs no further checks.
func (c *Checker) checkRecMember(member *ir.Expr, g *Guard) bool {
	deref := member.Op(0)
	pointer := deref.Op(0)

	c.checkRec(pointer, g)

	// avoid building the following expressions when pointerValidityCheck
	// would return immediately anyway
	if !c.enablePointerCheck {
		return true
	}

	offset, ok := ir.MemberOffset(deref.Type(), member.Id())
	if !ok {
		return false
	}

	newPointerType := ir.PointerTo(member.Type())
	charPointer := ir.ConditionalCast(pointer, ir.PointerTo(ir.UnsignedBV(8)))
	newAddress := ir.Plus(charPointer,
		ir.Const(offset, ir.PointerDiffType()))
	newAddressCasted := ir.ConditionalCast(newAddress, newPointerType)

	newDeref := ir.Deref(newAddressCasted)
	if loc := deref.Loc(); loc != nil {
		newDeref = newDeref.WithLoc(loc)
	}
	c.pointerValidityCheck(newDeref, member, g)

	return true
}

// checkRecDiv checks a division for division by zero, overflow and NaN.
func (c *Checker) checkRecDiv(e *ir.Expr, g *Guard) {
	c.divByZeroCheck(e, g)

	if e.Type().IsSignedBV() {
		c.integerOverflowCheck(e, g)
	} else if e.Type().IsFloatBV() {
		c.nanCheck(e, g)
		c.floatOverflowCheck(e, g)
	}
}

// checkRecArithmeticOp checks an arithmetic operation for integer
// overflow, NaN and float overflow, or pointer overflow, depending on the
// result type.
func (c *Checker) checkRecArithmeticOp(e *ir.Expr, g *Guard) {
	switch {
	case e.Type().IsBitvector():
		c.integerOverflowCheck(e, g)
	case e.Type().IsFloatBV():
		c.nanCheck(e, g)
		c.floatOverflowCheck(e, g)
	case e.Type().IsPointer():
		c.pointerOverflowCheck(e, g)
	}
}

// makeBinary left-associates an n-ary plus or mult into binary chains.
func makeBinary(e *ir.Expr) *ir.Expr {
	ops := e.Operands()
	if len(ops) <= 2 {
		return e
	}
	acc := ops[0]
	for _, op := range ops[1:] {
		switch e.Kind() {
		case ir.KPlus:
			acc = ir.Plus(acc, op)
		case ir.KMult:
			acc = ir.Mult(acc, op)
		default:
			fatalf("cannot binarize '%s'", e.Kind())
		}
	}
	return acc
}

func zeroOf(t *ir.Type) *ir.Expr {
	return ir.FromInteger(big.NewInt(0), t)
}
