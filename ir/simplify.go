package ir

import "math/big"

// Simplify performs sound, type-preserving, best-effort simplification.
// Expressions the simplifier cannot reduce are returned unchanged.
func Simplify(e *Expr) *Expr {
	// Bottom-up: simplify operands first.
	changed := false
	var ops []*Expr
	if len(e.ops) > 0 {
		ops = make([]*Expr, len(e.ops))
		for i, op := range e.ops {
			ops[i] = Simplify(op)
			if ops[i] != op {
				changed = true
			}
		}
	}
	if changed {
		c := *e
		c.ops = ops
		c.hash = computeHash(&c)
		e = &c
	}

	switch e.kind {
	case KNot:
		op := e.Op(0)
		if op.IsTrue() {
			return False()
		}
		if op.IsFalse() {
			return True()
		}
		if op.kind == KNot {
			return op.Op(0)
		}

	case KAnd:
		kept := make([]*Expr, 0, len(e.ops))
		for _, op := range e.ops {
			if op.IsFalse() {
				return False()
			}
			if !op.IsTrue() {
				kept = append(kept, op)
			}
		}
		if len(kept) != len(e.ops) {
			return Conjunction(kept)
		}

	case KOr:
		kept := make([]*Expr, 0, len(e.ops))
		for _, op := range e.ops {
			if op.IsTrue() {
				return True()
			}
			if !op.IsFalse() {
				kept = append(kept, op)
			}
		}
		if len(kept) != len(e.ops) {
			return Disjunction(kept)
		}

	case KImplies:
		a, b := e.Op(0), e.Op(1)
		switch {
		case a.IsTrue():
			return b
		case a.IsFalse(), b.IsTrue():
			return True()
		case b.IsFalse():
			return Simplify(BooleanNegate(a))
		}

	case KIf:
		if e.Op(0).IsTrue() {
			return e.Op(1)
		}
		if e.Op(0).IsFalse() {
			return e.Op(2)
		}

	case KEqual, KNotEqual:
		a, b := e.Op(0), e.Op(1)
		if va, ok := IntegerValue(a); ok {
			if vb, ok := IntegerValue(b); ok {
				eq := va.Cmp(vb) == 0
				return MakeBool(eq == (e.kind == KEqual))
			}
		}
		// Identical pure operands compare equal, except under IEEE
		// semantics where x = x fails for NaN.
		if a.Equal(b) && !a.Type().IsFloatBV() {
			return MakeBool(e.kind == KEqual)
		}

	case KLt, KLe, KGt, KGe:
		a, b := e.Op(0), e.Op(1)
		if va, ok := IntegerValue(a); ok {
			if vb, ok := IntegerValue(b); ok {
				cmp := va.Cmp(vb)
				switch e.kind {
				case KLt:
					return MakeBool(cmp < 0)
				case KLe:
					return MakeBool(cmp <= 0)
				case KGt:
					return MakeBool(cmp > 0)
				case KGe:
					return MakeBool(cmp >= 0)
				}
			}
		}

	case KPlus, KMinus, KMult:
		if e.typ.IsBitvector() {
			if folded, ok := foldArith(e); ok {
				return folded
			}
		}

	case KDiv, KMod:
		if e.typ.IsBitvector() {
			a, aok := IntegerValue(e.Op(0))
			b, bok := IntegerValue(e.Op(1))
			if aok && bok && b.Sign() != 0 {
				q, r := new(big.Int).QuoRem(a, b, new(big.Int))
				if e.kind == KDiv {
					return Const(normBV(q, e.typ), e.typ)
				}
				return Const(normBV(r, e.typ), e.typ)
			}
		}

	case KUnaryMinus:
		if e.typ.IsBitvector() {
			if v, ok := IntegerValue(e.Op(0)); ok {
				return Const(normBV(new(big.Int).Neg(v), e.typ), e.typ)
			}
		}

	case KTypecast:
		op := e.Op(0)
		if op.Type().Equal(e.typ) {
			return op
		}
		if e.typ.IsBitvector() && op.Type().IsBitvector() {
			if v, ok := IntegerValue(op); ok {
				return Const(normBV(v, e.typ), e.typ)
			}
		}
		if e.typ.IsBool() {
			if v, ok := IntegerValue(op); ok {
				return MakeBool(v.Sign() != 0)
			}
		}

	case KShl, KAShr, KLShr:
		if e.typ.IsBitvector() {
			if folded, ok := foldShift(e); ok {
				return folded
			}
		}
	}

	return e
}

func foldArith(e *Expr) (*Expr, bool) {
	acc, ok := IntegerValue(e.Op(0))
	if !ok {
		return nil, false
	}
	acc = new(big.Int).Set(acc)
	for _, op := range e.ops[1:] {
		v, ok := IntegerValue(op)
		if !ok {
			return nil, false
		}
		switch e.kind {
		case KPlus:
			acc.Add(acc, v)
		case KMinus:
			acc.Sub(acc, v)
		case KMult:
			acc.Mul(acc, v)
		}
	}
	return Const(normBV(acc, e.typ), e.typ), true
}

func foldShift(e *Expr) (*Expr, bool) {
	v, vok := IntegerValue(e.Op(0))
	d, dok := IntegerValue(e.Op(1))
	if !vok || !dok {
		return nil, false
	}
	w := int64(e.typ.Width())
	if d.Sign() < 0 || d.Cmp(big.NewInt(w)) >= 0 {
		// Leave undefined shifts alone.
		return nil, false
	}
	dist := uint(d.Uint64())
	switch e.kind {
	case KShl:
		return Const(normBV(new(big.Int).Lsh(v, dist), e.typ), e.typ), true
	case KAShr:
		return Const(normBV(new(big.Int).Rsh(v, dist), e.typ), e.typ), true
	case KLShr:
		u := normBV(v, UnsignedBV(e.typ.Width()))
		return Const(normBV(new(big.Int).Rsh(u, dist), e.typ), e.typ), true
	}
	return nil, false
}
