package check

import "github.com/ibex-verif/ibex/ir"

// pointerRelCheck asserts that ordered comparisons only relate pointers
// into the same object.
func (c *Checker) pointerRelCheck(e *ir.Expr, g *Guard) {
	if !c.enablePointerCheck {
		return
	}

	if e.Op(0).Type().IsPointer() && e.Op(1).Type().IsPointer() {
		// add same-object subgoal
		sameObject := ir.SameObject(e.Op(0), e.Op(1))

		c.emit(sameObject, "same object violation", "pointer",
			locOf(e), e, g)
	}
}

// pointerOverflowCheck asserts the absence of overflow on pointer
// arithmetic.
func (c *Checker) pointerOverflowCheck(e *ir.Expr, g *Guard) {
	if !c.enablePointerOverflowCheck {
		return
	}

	if e.Kind() != ir.KPlus && e.Kind() != ir.KMinus {
		return
	}

	if len(e.Operands()) != 2 {
		fatalf("pointer arithmetic expected to have exactly 2 operands")
	}

	overflow := ir.Overflow(e.Kind().String(), e.Operands()...)

	c.emit(ir.Not(overflow),
		"pointer arithmetic overflow on "+e.Kind().String(), "overflow",
		locOf(e), e, g)
}

// condition pairs an assertion with its failure description.
type condition struct {
	assertion   *ir.Expr
	description string
}

// pointerValidityCheck generates the validity conditions of a
// dereference. src is the expression as found in the program, prior to
// any rewriting.
func (c *Checker) pointerValidityCheck(e, src *ir.Expr, g *Guard) {
	if !c.enablePointerCheck {
		return
	}

	pointer := e.Op(0)

	size, ok := ir.SizeOfExpr(e.Type())
	if !ok {
		return
	}

	for _, cond := range c.addressCheck(pointer, size) {
		c.emit(cond.assertion, "dereference failure: "+cond.description,
			"pointer dereference", locOf(src), src, g)
	}
}

// addressCheck builds the conditions under which reading or writing size
// bytes at the address is valid, pruned by the flow facts of the pointer.
func (c *Checker) addressCheck(address, size *ir.Expr) []condition {
	if !address.Type().IsPointer() {
		fatalf("address check on non-pointer:\n%s", ir.Pretty(address))
	}
	pointerType := address.Type()

	flags := c.localFlow.Get(c.current, address)

	// For Java, we only need to check for null.
	if c.mode == ir.ModeJava {
		if flags.IsUnknown() || flags.IsNull() {
			notEqNull := ir.NotEqual(address, ir.NullPointer(pointerType))
			return []condition{{notEqNull, "reference is null"}}
		}
		return nil
	}

	var conditions []condition
	var allocDisjuncts []*ir.Expr

	for _, a := range c.allocations {
		intPtr := ir.Typecast(address, a.Address.Type())

		lbCheck := ir.Le(a.Address, intPtr)

		ub := ir.Plus(intPtr, ir.ConditionalCast(size, intPtr.Type()))
		ubCheck := ir.Le(ub, ir.Plus(a.Address, a.Size))

		allocDisjuncts = append(allocDisjuncts, ir.And(lbCheck, ubCheck))
	}

	inAllocation := ir.Disjunction(allocDisjuncts)

	if flags.IsUnknown() || flags.IsNull() {
		conditions = append(conditions, condition{
			ir.Or(inAllocation, ir.Not(ir.IsNullPointer(address))),
			"pointer NULL"})
	}

	if flags.IsUnknown() {
		conditions = append(conditions, condition{
			ir.Not(ir.IsInvalidPointer(address)),
			"pointer invalid"})
	}

	if flags.IsUninitialized() {
		conditions = append(conditions, condition{
			ir.Or(inAllocation, ir.Not(ir.IsInvalidPointer(address))),
			"pointer uninitialized"})
	}

	if flags.IsUnknown() || flags.IsDynamicHeap() {
		conditions = append(conditions, condition{
			ir.Or(inAllocation, ir.Not(ir.Deallocated(address))),
			"deallocated dynamic object"})
	}

	if flags.IsUnknown() || flags.IsDynamicLocal() {
		conditions = append(conditions, condition{
			ir.Or(inAllocation, ir.Not(ir.DeadObject(address))),
			"dead object"})
	}

	if flags.IsUnknown() || flags.IsDynamicHeap() {
		dynamicBoundsViolation := ir.Or(
			ir.DynamicObjectLowerBoundViolation(address),
			ir.DynamicObjectUpperBoundViolation(address, size))

		conditions = append(conditions, condition{
			ir.Or(inAllocation,
				ir.Implies(ir.MallocObject(address),
					ir.Not(dynamicBoundsViolation))),
			"pointer outside dynamic object bounds"})
	}

	if flags.IsUnknown() || flags.IsDynamicLocal() || flags.IsStaticLifetime() {
		objectBoundsViolation := ir.Or(
			ir.ObjectLowerBoundViolation(address),
			ir.ObjectUpperBoundViolation(address, size))

		conditions = append(conditions, condition{
			ir.Or(inAllocation,
				ir.Implies(ir.Not(ir.DynamicObject(address)),
					ir.Not(objectBoundsViolation))),
			"pointer outside object bounds"})
	}

	if flags.IsUnknown() || flags.IsIntegerAddress() {
		conditions = append(conditions, condition{
			ir.Implies(ir.IntegerAddress(address), inAllocation),
			"invalid integer address"})
	}

	return conditions
}
