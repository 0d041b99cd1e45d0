package ir

import "math/big"

// SizeType and PointerDiffType are the platform size types.
func SizeType() *Type        { return UnsignedBV(PointerWidth) }
func PointerDiffType() *Type { return SignedBV(PointerWidth) }

// SizeOfType computes the byte size of a type, when it is a compile-time
// constant.
func SizeOfType(t *Type) (*big.Int, bool) {
	switch t.Kind() {
	case TBool:
		return big.NewInt(1), true
	case TSignedBV, TUnsignedBV, TFloatBV:
		bytes := (int64(t.Width()) + 7) / 8
		return big.NewInt(bytes), true
	case TPointer:
		return big.NewInt(PointerWidth / 8), true
	case TArray, TVector:
		elem, ok := SizeOfType(t.Sub())
		if !ok || t.Size() == nil {
			return nil, false
		}
		n, ok := IntegerValue(t.Size())
		if !ok {
			return nil, false
		}
		return new(big.Int).Mul(elem, n), true
	case TStruct:
		total := new(big.Int)
		for _, f := range t.Fields() {
			fs, ok := SizeOfType(f.Type)
			if !ok {
				return nil, false
			}
			total.Add(total, fs)
		}
		return total, true
	}
	return nil, false
}

// SizeOfExpr returns the byte size of a type as an expression of the size
// type. Arrays of symbolic length produce a product expression.
func SizeOfExpr(t *Type) (*Expr, bool) {
	if sz, ok := SizeOfType(t); ok {
		return Const(sz, SizeType()), true
	}
	if (t.IsArray() || t.IsVector()) && t.Size() != nil {
		elem, ok := SizeOfExpr(t.Sub())
		if !ok {
			return nil, false
		}
		return Mult(elem, ConditionalCast(t.Size(), SizeType())), true
	}
	return nil, false
}

// MemberOffset computes the byte offset of a member within a struct type.
func MemberOffset(structType *Type, member string) (*big.Int, bool) {
	if !structType.IsStruct() {
		return nil, false
	}
	offset := new(big.Int)
	for _, f := range structType.Fields() {
		if f.Name == member {
			return offset, true
		}
		fs, ok := SizeOfType(f.Type)
		if !ok {
			return nil, false
		}
		offset.Add(offset, fs)
	}
	return nil, false
}

// ObjectDescriptor decomposes an lvalue into a root object and a byte
// offset relative to it.
type ObjectDescriptor struct {
	Root   *Expr
	Offset *Expr
}

// BuildObjectDescriptor walks index and member chains, accumulating a byte
// offset of the pointer difference type. Non-constant indices give symbolic
// arithmetic; an element of unknown size counts as one byte, and a member
// whose offset cannot be computed adds nothing to the offset.
func BuildObjectDescriptor(e *Expr) ObjectDescriptor {
	switch e.Kind() {
	case KIndex:
		od := BuildObjectDescriptor(e.Op(0))
		elemSize, ok := SizeOfExpr(e.Type())
		if !ok {
			elemSize = Const(big.NewInt(1), SizeType())
		}
		scaled := Mult(
			ConditionalCast(e.Op(1), PointerDiffType()),
			ConditionalCast(elemSize, PointerDiffType()))
		od.Offset = addOffsets(od.Offset, scaled)
		return od
	case KMember:
		od := BuildObjectDescriptor(e.Op(0))
		if off, ok := MemberOffset(e.Op(0).Type(), e.Id()); ok {
			od.Offset = addOffsets(od.Offset, Const(off, PointerDiffType()))
		}
		return od
	}
	return ObjectDescriptor{
		Root:   e,
		Offset: Const(big.NewInt(0), PointerDiffType()),
	}
}

func addOffsets(a, b *Expr) *Expr {
	if v, ok := IntegerValue(a); ok && v.Sign() == 0 {
		return b
	}
	return Plus(a, b)
}

// Pointer-bound violation formulas. These remain opaque to the
// instrumentation and are discharged by the backend.

// ObjectLowerBoundViolation is pointer_offset(p) < 0.
func ObjectLowerBoundViolation(p *Expr) *Expr {
	return Lt(PointerOffsetExpr(p), Const(big.NewInt(0), PointerDiffType()))
}

// ObjectUpperBoundViolation is pointer_offset(p) + size > object_size(p).
func ObjectUpperBoundViolation(p, size *Expr) *Expr {
	sum := Plus(
		ConditionalCast(PointerOffsetExpr(p), SizeType()),
		ConditionalCast(size, SizeType()))
	return Gt(sum, ObjectSize(p))
}

// DynamicObjectLowerBoundViolation is pointer_offset(p) < 0.
func DynamicObjectLowerBoundViolation(p *Expr) *Expr {
	return ObjectLowerBoundViolation(p)
}

// DynamicObjectUpperBoundViolation is pointer_offset(p) + size >
// dynamic_size.
func DynamicObjectUpperBoundViolation(p, size *Expr) *Expr {
	sum := Plus(
		ConditionalCast(PointerOffsetExpr(p), SizeType()),
		ConditionalCast(size, SizeType()))
	return Gt(sum, DynamicSize())
}
