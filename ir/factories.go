package ir

import (
	"fmt"
	"math/big"
)

const nullID = "NULL"

func expect(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("ir: "+format, args...))
	}
}

// Sym constructs a symbol expression.
func Sym(id string, typ *Type) *Expr {
	e := &Expr{kind: KSymbol, typ: typ, id: id}
	e.hash = computeHash(e)
	return e
}

// Const constructs a constant carrying the given payload: the integer value
// for bitvectors, the IEEE bit pattern for floats.
func Const(val *big.Int, typ *Type) *Expr {
	e := &Expr{kind: KConstant, typ: typ, val: val}
	e.hash = computeHash(e)
	return e
}

// IntConst constructs an integer constant of the given bitvector type.
func IntConst(v int64, typ *Type) *Expr {
	return FromInteger(big.NewInt(v), typ)
}

// True and False are the Boolean constants.
func True() *Expr  { return Const(big.NewInt(1), BoolType()) }
func False() *Expr { return Const(big.NewInt(0), BoolType()) }

// MakeBool converts a Go bool into the corresponding constant.
func MakeBool(b bool) *Expr {
	if b {
		return True()
	}
	return False()
}

// NullPointer constructs the null pointer constant of the given pointer type.
func NullPointer(typ *Type) *Expr {
	expect(typ.IsPointer(), "null pointer requires pointer type, got %s", typ)
	e := &Expr{kind: KConstant, typ: typ, id: nullID, val: big.NewInt(0)}
	e.hash = computeHash(e)
	return e
}

// StringConst constructs a string constant.
func StringConst(s string) *Expr {
	e := &Expr{
		kind: KStringConstant,
		typ:  ArrayType(UnsignedBV(8), nil),
		id:   s,
	}
	e.hash = computeHash(e)
	return e
}

// Infinity marks an unbounded array size.
func Infinity(typ *Type) *Expr {
	return newExpr(KInfinity, typ)
}

// Nondet constructs a nondeterministic choice of the given type.
func Nondet(typ *Type) *Expr {
	return newExpr(KNondet, typ)
}

// IndexExpr constructs arr[idx].
func IndexExpr(arr, idx *Expr) *Expr {
	t := arr.Type()
	expect(t.IsArray() || t.IsVector(), "index into non-array type %s", t)
	return newExpr(KIndex, t.Sub(), arr, idx)
}

// MemberExpr constructs compound.name.
func MemberExpr(compound *Expr, name string, typ *Type) *Expr {
	e := &Expr{kind: KMember, typ: typ, ops: []*Expr{compound}, id: name}
	e.hash = computeHash(e)
	return e
}

// Deref constructs *p.
func Deref(p *Expr) *Expr {
	expect(p.Type().IsPointer(), "dereference of non-pointer type %s", p.Type())
	return newExpr(KDereference, p.Type().Sub(), p)
}

// AddressOf constructs &obj.
func AddressOf(obj *Expr) *Expr {
	return newExpr(KAddressOf, PointerTo(obj.Type()), obj)
}

// Plus constructs an n-ary sum over the type of the first operand.
func Plus(ops ...*Expr) *Expr {
	expect(len(ops) >= 2, "+ needs at least two operands")
	return newExpr(KPlus, ops[0].Type(), ops...)
}

// Minus constructs a - b.
func Minus(a, b *Expr) *Expr { return newExpr(KMinus, a.Type(), a, b) }

// Mult constructs an n-ary product over the type of the first operand.
func Mult(ops ...*Expr) *Expr {
	expect(len(ops) >= 2, "* needs at least two operands")
	return newExpr(KMult, ops[0].Type(), ops...)
}

func Div(a, b *Expr) *Expr { return newExpr(KDiv, a.Type(), a, b) }
func Mod(a, b *Expr) *Expr { return newExpr(KMod, a.Type(), a, b) }

// UnaryMinus constructs -a.
func UnaryMinus(a *Expr) *Expr { return newExpr(KUnaryMinus, a.Type(), a) }

// Shl, AShr and LShr construct shifts of op by distance.
func Shl(op, distance *Expr) *Expr  { return newExpr(KShl, op.Type(), op, distance) }
func AShr(op, distance *Expr) *Expr { return newExpr(KAShr, op.Type(), op, distance) }
func LShr(op, distance *Expr) *Expr { return newExpr(KLShr, op.Type(), op, distance) }

// Typecast constructs (typ)op.
func Typecast(op *Expr, typ *Type) *Expr { return newExpr(KTypecast, typ, op) }

// ConditionalCast casts op to typ only when the types differ.
func ConditionalCast(op *Expr, typ *Type) *Expr {
	if op.Type().Equal(typ) {
		return op
	}
	return Typecast(op, typ)
}

// IfExpr constructs cond ? t : f.
func IfExpr(cond, t, f *Expr) *Expr {
	expect(cond.IsBoolean(), "if condition must be Boolean")
	return newExpr(KIf, t.Type(), cond, t, f)
}

// And constructs an n-ary conjunction.
func And(ops ...*Expr) *Expr {
	expect(len(ops) >= 2, "and needs at least two operands")
	return newExpr(KAnd, BoolType(), ops...)
}

// Or constructs an n-ary disjunction.
func Or(ops ...*Expr) *Expr {
	expect(len(ops) >= 2, "or needs at least two operands")
	return newExpr(KOr, BoolType(), ops...)
}

// Not constructs ¬a.
func Not(a *Expr) *Expr {
	expect(a.IsBoolean(), "negation of non-Boolean")
	return newExpr(KNot, BoolType(), a)
}

// BooleanNegate returns the negation of a, folding double negations and
// constants.
func BooleanNegate(a *Expr) *Expr {
	switch {
	case a.kind == KNot:
		return a.Op(0)
	case a.IsTrue():
		return False()
	case a.IsFalse():
		return True()
	}
	return Not(a)
}

// Implies constructs a ⇒ b.
func Implies(a, b *Expr) *Expr { return newExpr(KImplies, BoolType(), a, b) }

func Equal(a, b *Expr) *Expr    { return newExpr(KEqual, BoolType(), a, b) }
func NotEqual(a, b *Expr) *Expr { return newExpr(KNotEqual, BoolType(), a, b) }
func Lt(a, b *Expr) *Expr       { return newExpr(KLt, BoolType(), a, b) }
func Le(a, b *Expr) *Expr       { return newExpr(KLe, BoolType(), a, b) }
func Gt(a, b *Expr) *Expr       { return newExpr(KGt, BoolType(), a, b) }
func Ge(a, b *Expr) *Expr       { return newExpr(KGe, BoolType(), a, b) }

// ByteExtractLE and ByteExtractBE extract a value of the given type at a
// byte offset.
func ByteExtractLE(op, offset *Expr, typ *Type) *Expr {
	return newExpr(KByteExtractLE, typ, op, offset)
}

func ByteExtractBE(op, offset *Expr, typ *Type) *Expr {
	return newExpr(KByteExtractBE, typ, op, offset)
}

// StructExpr constructs a struct literal.
func StructExpr(typ *Type, ops ...*Expr) *Expr { return newExpr(KStruct, typ, ops...) }

// ArrayExpr constructs an array literal.
func ArrayExpr(typ *Type, ops ...*Expr) *Expr { return newExpr(KArray, typ, ops...) }

// ArrayList constructs an index/value array description.
func ArrayList(typ *Type, ops ...*Expr) *Expr { return newExpr(KArrayList, typ, ops...) }

// Lambda constructs a binding expression with a bound symbol and a body.
func Lambda(bound, body *Expr, typ *Type) *Expr { return newExpr(KLambda, typ, bound, body) }

// With constructs a functional array/struct update.
func With(old, where, value *Expr) *Expr { return newExpr(KWith, old.Type(), old, where, value) }

// ArrayOfExpr constructs an array uniformly filled with a value.
func ArrayOfExpr(typ *Type, value *Expr) *Expr { return newExpr(KArrayOf, typ, value) }

// Forall and Exists construct quantified formulas.
func Forall(bound, body *Expr) *Expr { return newExpr(KForall, BoolType(), bound, body) }
func Exists(bound, body *Expr) *Expr { return newExpr(KExists, BoolType(), bound, body) }

// ROk and WOk are the readability/writability predicates over an address
// and a size.
func ROk(addr, size *Expr) *Expr { return newExpr(KROk, BoolType(), addr, size) }
func WOk(addr, size *Expr) *Expr { return newExpr(KWOk, BoolType(), addr, size) }

// Overflow constructs the opaque overflow predicate for the named operator.
func Overflow(op string, operands ...*Expr) *Expr {
	expect(len(operands) >= 1, "overflow predicate needs operands")
	e := &Expr{kind: KOverflow, typ: BoolType(), ops: operands, id: op}
	e.hash = computeHash(e)
	return e
}

// Opaque pointer predicates.
func IsInvalidPointer(p *Expr) *Expr { return newExpr(KIsInvalidPointer, BoolType(), p) }
func IsNullPointer(p *Expr) *Expr    { return newExpr(KIsNullPointer, BoolType(), p) }
func SameObject(a, b *Expr) *Expr    { return newExpr(KSameObject, BoolType(), a, b) }
func DynamicObject(p *Expr) *Expr    { return newExpr(KDynamicObject, BoolType(), p) }
func MallocObject(p *Expr) *Expr     { return newExpr(KMallocObject, BoolType(), p) }
func DeadObject(p *Expr) *Expr       { return newExpr(KDeadObject, BoolType(), p) }
func Deallocated(p *Expr) *Expr      { return newExpr(KDeallocated, BoolType(), p) }
func IntegerAddress(p *Expr) *Expr   { return newExpr(KIntegerAddress, BoolType(), p) }

// DynamicSize is the run-time size of the most recent dynamic allocation.
func DynamicSize() *Expr { return newExpr(KDynamicSize, UnsignedBV(PointerWidth)) }

// ObjectSize is the opaque run-time size of the object p points into.
func ObjectSize(p *Expr) *Expr { return newExpr(KObjectSize, UnsignedBV(PointerWidth), p) }

// PointerOffsetExpr is the opaque byte offset of p within its object.
func PointerOffsetExpr(p *Expr) *Expr {
	return newExpr(KPointerOffset, SignedBV(PointerWidth), p)
}

// Float classification predicates.
func IsInf(a *Expr) *Expr { return newExpr(KIsInf, BoolType(), a) }
func IsNaN(a *Expr) *Expr { return newExpr(KIsNaN, BoolType(), a) }

// IeeeFloatEqual is IEEE equality (distinct from bit equality).
func IeeeFloatEqual(a, b *Expr) *Expr { return newExpr(KIeeeFloatEqual, BoolType(), a, b) }

// Conjunction folds a conjunct list, returning true for the empty list.
func Conjunction(ops []*Expr) *Expr {
	switch len(ops) {
	case 0:
		return True()
	case 1:
		return ops[0]
	}
	return And(ops...)
}

// Disjunction folds a disjunct list, returning false for the empty list.
func Disjunction(ops []*Expr) *Expr {
	switch len(ops) {
	case 0:
		return False()
	case 1:
		return ops[0]
	}
	return Or(ops...)
}
