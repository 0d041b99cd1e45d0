package check

import "github.com/ibex-verif/ibex/ir"

// boundsCheck guards an index expression against lower- and upper-bound
// violations, including accesses through dereferenced pointers and
// flexible struct array members.
func (c *Checker) boundsCheck(e *ir.Expr, g *Guard) {
	if !c.enableBoundsCheck {
		return
	}

	if e.BoundsCheckDisabled() {
		return
	}

	arrayType := e.Op(0).Type()

	if arrayType.IsPointer() {
		fatalf("index got pointer as array type")
	} else if !arrayType.IsArray() && !arrayType.IsVector() {
		fatalf("bounds check expected array or vector type, got %s", arrayType)
	}

	name := ir.ArrayName(e.Op(0))

	index := e.Op(1)
	ode := ir.BuildObjectDescriptor(e)

	if !index.Type().IsUnsignedBV() {
		// we undo typecasts to signedbv
		if index.Kind() == ir.KTypecast &&
			index.Op(0).Type().IsUnsignedBV() {
			// ok
		} else {
			i, known := ir.IntegerValue(index)

			if !known || i.Sign() < 0 {
				effectiveOffset := ode.Offset

				if ode.Root.Kind() == ir.KDereference {
					pOffset := ir.PointerOffsetExpr(ode.Root.Op(0))
					effectiveOffset = ir.Plus(pOffset, effectiveOffset)
				}

				zero := zeroOf(effectiveOffset.Type())

				// the final offset must not be negative
				inequality := ir.Ge(effectiveOffset, zero)

				c.emit(inequality, name+" lower bound", "array bounds",
					locOf(e), e, g)
			}
		}
	}

	typeMatchesSize := ir.True()

	if ode.Root.Kind() == ir.KDereference {
		pointer := ode.Root.Op(0)

		size := ir.IfExpr(
			ir.DynamicObject(pointer),
			ir.ConditionalCast(ir.DynamicSize(), ir.ObjectSize(pointer).Type()),
			ir.ObjectSize(pointer))

		effectiveOffset := ir.Plus(ode.Offset,
			ir.ConditionalCast(ir.PointerOffsetExpr(pointer), ode.Offset.Type()))

		sizeCasted := ir.ConditionalCast(size, effectiveOffset.Type())

		inequality := ir.Lt(effectiveOffset, sizeCasted)

		var allocDisjuncts []*ir.Expr
		for _, a := range c.allocations {
			intPtr := ir.Typecast(pointer, a.Address.Type())

			lowerBoundCheck := ir.Le(a.Address, intPtr)

			upperBound := ir.Plus(intPtr,
				ir.ConditionalCast(ode.Offset, intPtr.Type()))

			upperBoundCheck := ir.Lt(upperBound, ir.Plus(a.Address, a.Size))

			allocDisjuncts = append(allocDisjuncts,
				ir.And(lowerBoundCheck, upperBoundCheck))
		}

		inAllocation := ir.Disjunction(allocDisjuncts)

		precond := ir.Or(
			inAllocation,
			ir.And(ir.DynamicObject(pointer), ir.Not(ir.MallocObject(pointer))),
			inequality)

		c.emit(precond, name+" dynamic object upper bound", "array bounds",
			locOf(e), e, g)

		if typeSize, ok := ir.SizeOfExpr(ode.Root.Type()); ok {
			// A predicate that holds iff the size reported by sizeof,
			// i.e. the compile-time size, matches the run-time size. The
			// run-time size of a dynamic object is given by dynamic_size,
			// which is only meaningful when malloc_object holds.
			typeMatchesSize = ir.IfExpr(
				ir.DynamicObject(pointer),
				ir.And(
					ir.MallocObject(pointer),
					ir.Equal(
						ir.ConditionalCast(ir.DynamicSize(), typeSize.Type()),
						typeSize)),
				ir.Equal(
					ir.ConditionalCast(ir.ObjectSize(pointer), typeSize.Type()),
					typeSize))
		}
	}

	size := arrayType.Size()

	if size == nil {
		// Linking didn't complete, we don't have a size.
		// Not clear what to do.
	} else if size.Kind() == ir.KInfinity {
	} else if sz, known := ir.IntegerValue(size); known && sz.Sign() == 0 &&
		e.Op(0).Kind() == ir.KMember {
		// a variable sized struct member: the C flexible-array-member
		// rule bounds the access by the object, not the declared array
		typeSize, ok := ir.SizeOfExpr(ode.Root.Type())
		if !ok {
			fatalf("no size for flexible array member root:\n%s",
				ir.Pretty(ode.Root))
		}

		inequality := ir.Lt(
			ir.ConditionalCast(ode.Offset, typeSize.Type()),
			typeSize)

		c.emit(ir.Implies(typeMatchesSize, inequality),
			name+" upper bound", "array bounds",
			locOf(e), e, g)
	} else {
		inequality := ir.Lt(index, ir.ConditionalCast(size, index.Type()))

		c.emit(ir.Implies(typeMatchesSize, inequality),
			name+" upper bound", "array bounds",
			locOf(e), e, g)
	}
}
