package ir

import "math/big"

// IEEE-754 bit pattern helpers for FloatBV constants. The payload of a
// float constant is its bit pattern, kept as a non-negative integer of
// 1+exponent+fraction bits.

func floatBias(exponent uint) *big.Int {
	return new(big.Int).Sub(pow2(exponent-1), big.NewInt(1))
}

func floatBits(sign bool, biasedExp, fraction *big.Int, typ *Type) *Expr {
	f, e := typ.FloatSpec()
	bits := new(big.Int)
	if sign {
		bits.SetInt64(1)
	}
	bits.Lsh(bits, e)
	bits.Or(bits, biasedExp)
	bits.Lsh(bits, f)
	bits.Or(bits, fraction)
	return Const(bits, typ)
}

// PlusInfinity and MinusInfinity are the IEEE infinities of a float type.
func PlusInfinity(typ *Type) *Expr {
	_, e := typ.FloatSpec()
	return floatBits(false, LargestUnsigned(e), big.NewInt(0), typ)
}

func MinusInfinity(typ *Type) *Expr {
	_, e := typ.FloatSpec()
	return floatBits(true, LargestUnsigned(e), big.NewInt(0), typ)
}

// PlusZero and MinusZero are the IEEE signed zeroes of a float type.
func PlusZero(typ *Type) *Expr {
	return floatBits(false, big.NewInt(0), big.NewInt(0), typ)
}

func MinusZero(typ *Type) *Expr {
	return floatBits(true, big.NewInt(0), big.NewInt(0), typ)
}

// FloatFromInt encodes the integer i as an IEEE float constant of the given
// type, rounding to nearest with ties to even. Values beyond the exponent
// range encode as the corresponding infinity.
func FloatFromInt(i *big.Int, typ *Type) *Expr {
	expect(typ.IsFloatBV(), "float encoding into non-float type %s", typ)
	f, e := typ.FloatSpec()

	sign := i.Sign() < 0
	mag := new(big.Int).Abs(i)
	if mag.Sign() == 0 {
		return PlusZero(typ)
	}

	// Normalize: mag = 1.fraction * 2^exp with exp = bitlen-1.
	exp := int64(mag.BitLen() - 1)
	frac := new(big.Int).Set(mag)
	if uint(exp) > f {
		// Round the dropped low bits to nearest, ties to even.
		drop := uint(exp) - f
		rem := new(big.Int)
		frac.QuoRem(frac, pow2(drop), rem)
		half := pow2(drop - 1)
		switch rem.Cmp(half) {
		case 1:
			frac.Add(frac, big.NewInt(1))
		case 0:
			if frac.Bit(0) == 1 {
				frac.Add(frac, big.NewInt(1))
			}
		}
		if uint(frac.BitLen()) > f+1 {
			// Rounding carried into a new binade.
			frac.Rsh(frac, 1)
			exp++
		}
	} else {
		frac.Lsh(frac, f-uint(exp))
	}
	// Drop the hidden bit.
	frac.SetBit(frac, int(f), 0)

	bias := floatBias(e)
	biased := new(big.Int).Add(big.NewInt(exp), bias)
	if biased.Cmp(LargestUnsigned(e)) >= 0 {
		if sign {
			return MinusInfinity(typ)
		}
		return PlusInfinity(typ)
	}
	return floatBits(sign, biased, frac, typ)
}

// IsPlusInfinity and IsMinusInfinity classify float constants.
func IsPlusInfinity(e *Expr) bool {
	return e.Kind() == KConstant && e.Type().IsFloatBV() && e.Equal(PlusInfinity(e.Type()))
}

func IsMinusInfinity(e *Expr) bool {
	return e.Kind() == KConstant && e.Type().IsFloatBV() && e.Equal(MinusInfinity(e.Type()))
}
