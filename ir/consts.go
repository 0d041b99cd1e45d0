package ir

import "math/big"

func pow2(w uint) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), w)
}

// SmallestSigned is the least value representable in a signed bitvector of
// width w, i.e. -2^(w-1).
func SmallestSigned(w uint) *big.Int {
	return new(big.Int).Neg(pow2(w - 1))
}

// LargestSigned is 2^(w-1)-1.
func LargestSigned(w uint) *big.Int {
	return new(big.Int).Sub(pow2(w-1), big.NewInt(1))
}

// LargestUnsigned is 2^w-1.
func LargestUnsigned(w uint) *big.Int {
	return new(big.Int).Sub(pow2(w), big.NewInt(1))
}

// FromInteger encodes the integer i as a constant of the given type.
// Floats receive their IEEE bit pattern; Booleans map zero to false.
func FromInteger(i *big.Int, typ *Type) *Expr {
	switch typ.Kind() {
	case TBool:
		if i.Sign() == 0 {
			return False()
		}
		return True()
	case TFloatBV:
		return FloatFromInt(i, typ)
	case TPointer:
		if i.Sign() == 0 {
			return NullPointer(typ)
		}
	}
	return Const(new(big.Int).Set(i), typ)
}

// SmallestExpr is the least representable constant of a signed bitvector
// type.
func (t *Type) SmallestExpr() *Expr {
	expect(t.IsSignedBV(), "smallest value of non-signed type %s", t)
	return Const(SmallestSigned(t.Width()), t)
}

// IntegerValue interprets a constant expression as a mathematical integer.
// Returns false for non-constants, null pointers and float constants.
func IntegerValue(e *Expr) (*big.Int, bool) {
	if e.Kind() != KConstant || e.Value() == nil {
		return nil, false
	}
	t := e.Type()
	if t.IsFloatBV() || (t.IsPointer() && e.Id() == nullID) {
		return nil, false
	}
	return e.Value(), true
}

// normBV wraps the integer value v into the representable range of a
// bitvector type, with two's complement wrap-around.
func normBV(v *big.Int, typ *Type) *big.Int {
	w := typ.Width()
	m := pow2(w)
	r := new(big.Int).Mod(v, m) // non-negative
	if typ.IsSignedBV() && r.Cmp(pow2(w-1)) >= 0 {
		r.Sub(r, m)
	}
	return r
}
