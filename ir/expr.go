package ir

import (
	"math/big"

	"github.com/ibex-verif/ibex/utils"
)

// Kind tags the members of the expression algebra.
type Kind uint8

const (
	KSymbol Kind = iota
	KConstant
	KStringConstant
	KNondet
	KInfinity

	KIndex
	KMember
	KDereference
	KAddressOf

	KPlus
	KMinus
	KMult
	KDiv
	KMod
	KUnaryMinus
	KShl
	KAShr
	KLShr
	KTypecast

	KIf
	KAnd
	KOr
	KNot
	KImplies
	KEqual
	KNotEqual
	KLt
	KLe
	KGt
	KGe

	KByteExtractLE
	KByteExtractBE
	KStruct
	KArray
	KArrayList
	KLambda
	KWith
	KArrayOf
	KForall
	KExists

	KROk
	KWOk
	KOverflow

	// Opaque predicates, interpreted by the backend.
	KIsInvalidPointer
	KIsNullPointer
	KSameObject
	KDynamicObject
	KMallocObject
	KDeadObject
	KDeallocated
	KDynamicSize
	KObjectSize
	KPointerOffset
	KIntegerAddress
	KIsInf
	KIsNaN
	KIeeeFloatEqual
)

var kindNames = [...]string{
	KSymbol:           "symbol",
	KConstant:         "constant",
	KStringConstant:   "string-constant",
	KNondet:           "nondet",
	KInfinity:         "infinity",
	KIndex:            "index",
	KMember:           "member",
	KDereference:      "dereference",
	KAddressOf:        "address-of",
	KPlus:             "+",
	KMinus:            "-",
	KMult:             "*",
	KDiv:              "/",
	KMod:              "mod",
	KUnaryMinus:       "unary-",
	KShl:              "shl",
	KAShr:             "ashr",
	KLShr:             "lshr",
	KTypecast:         "typecast",
	KIf:               "if",
	KAnd:              "and",
	KOr:               "or",
	KNot:              "not",
	KImplies:          "=>",
	KEqual:            "=",
	KNotEqual:         "!=",
	KLt:               "<",
	KLe:               "<=",
	KGt:               ">",
	KGe:               ">=",
	KByteExtractLE:    "byte-extract-le",
	KByteExtractBE:    "byte-extract-be",
	KStruct:           "struct",
	KArray:            "array",
	KArrayList:        "array-list",
	KLambda:           "lambda",
	KWith:             "with",
	KArrayOf:          "array-of",
	KForall:           "forall",
	KExists:           "exists",
	KROk:              "r_ok",
	KWOk:              "w_ok",
	KOverflow:         "overflow",
	KIsInvalidPointer: "is-invalid-pointer",
	KIsNullPointer:    "is-null-pointer",
	KSameObject:       "same-object",
	KDynamicObject:    "dynamic-object",
	KMallocObject:     "malloc-object",
	KDeadObject:       "dead-object",
	KDeallocated:      "deallocated",
	KDynamicSize:      "dynamic-size",
	KObjectSize:       "object-size",
	KPointerOffset:    "pointer-offset",
	KIntegerAddress:   "integer-address",
	KIsInf:            "isinf",
	KIsNaN:            "isnan",
	KIeeeFloatEqual:   "ieee-float-equal",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "kind?"
}

// Expr is an immutable tagged expression tree. Values are produced by the
// factory functions in factories.go and may be freely shared. Source
// locations do not participate in equality or hashing.
type Expr struct {
	kind Kind
	typ  *Type
	ops  []*Expr

	// Leaf payloads. id holds the symbol identifier, member component name,
	// overflow operator name, or string constant value. val holds the
	// integer value for bitvector constants (negative for negative signed
	// values) and the IEEE bit pattern for float constants.
	id  string
	val *big.Int

	loc *SourceLocation

	// Index expressions may carry bounds_check=false to suppress the
	// bounds check on this particular access.
	noBoundsCheck bool

	hash uint32
}

func (e *Expr) Kind() Kind  { return e.kind }
func (e *Expr) Type() *Type { return e.typ }

// Operands returns the ordered operand list. Callers must not mutate it.
func (e *Expr) Operands() []*Expr { return e.ops }

func (e *Expr) Op(i int) *Expr { return e.ops[i] }

// Id returns the identifier payload of symbols, members, overflow
// predicates and string constants.
func (e *Expr) Id() string { return e.id }

// Value returns the bit-pattern payload of a constant.
func (e *Expr) Value() *big.Int { return e.val }

// Loc returns the source location, or nil if the expression carries none.
func (e *Expr) Loc() *SourceLocation { return e.loc }

// FindLoc returns the first source location found on e or any
// sub-expression, searching pre-order.
func (e *Expr) FindLoc() *SourceLocation {
	if e.loc != nil {
		return e.loc
	}
	for _, op := range e.ops {
		if l := op.FindLoc(); l != nil {
			return l
		}
	}
	return nil
}

// BoundsCheckDisabled reports whether the expression carries
// bounds_check=false.
func (e *Expr) BoundsCheckDisabled() bool { return e.noBoundsCheck }

// WithLoc returns a shallow copy of e carrying the given source location.
func (e *Expr) WithLoc(loc *SourceLocation) *Expr {
	c := *e
	c.loc = loc
	return &c
}

// WithOperands returns a copy of e with the given operand list, keeping
// kind, type and payload.
func (e *Expr) WithOperands(ops []*Expr) *Expr {
	c := *e
	c.ops = ops
	c.hash = computeHash(&c)
	return &c
}

// WithoutBoundsCheck returns a copy of an index expression flagged to skip
// its bounds check.
func (e *Expr) WithoutBoundsCheck() *Expr {
	c := *e
	c.noBoundsCheck = true
	c.hash = utils.HashCombine(c.hash, 0x5bd1)
	return &c
}

// Hash returns the precomputed structural hash.
func (e *Expr) Hash() uint32 { return e.hash }

// Equal is structural equality. Source locations are ignored.
func (e *Expr) Equal(o *Expr) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil {
		return false
	}
	if e.kind != o.kind || e.hash != o.hash || e.id != o.id ||
		e.noBoundsCheck != o.noBoundsCheck || len(e.ops) != len(o.ops) {
		return false
	}
	if (e.val == nil) != (o.val == nil) {
		return false
	}
	if e.val != nil && e.val.Cmp(o.val) != 0 {
		return false
	}
	if !e.typ.Equal(o.typ) {
		return false
	}
	for i := range e.ops {
		if !e.ops[i].Equal(o.ops[i]) {
			return false
		}
	}
	return true
}

func newExpr(kind Kind, typ *Type, ops ...*Expr) *Expr {
	e := &Expr{kind: kind, typ: typ, ops: ops}
	e.hash = computeHash(e)
	return e
}

func computeHash(e *Expr) uint32 {
	h := utils.HashCombine(uint32(e.kind), e.typ.Hash(), utils.HashString(e.id), utils.HashBigInt(e.val))
	for _, op := range e.ops {
		h = utils.HashCombine(h, op.hash)
	}
	return h
}

// HasSubexpr reports whether e or any sub-expression satisfies pred.
func HasSubexpr(e *Expr, pred func(*Expr) bool) bool {
	if pred(e) {
		return true
	}
	for _, op := range e.ops {
		if HasSubexpr(op, pred) {
			return true
		}
	}
	return false
}

// HasSubexprKind reports whether e contains a sub-expression of the kind.
func HasSubexprKind(e *Expr, kind Kind) bool {
	return HasSubexpr(e, func(sub *Expr) bool { return sub.kind == kind })
}

// HasSymbol reports whether e mentions a symbol with the given identifier.
func HasSymbol(e *Expr, id string) bool {
	return HasSubexpr(e, func(sub *Expr) bool {
		return sub.kind == KSymbol && sub.id == id
	})
}

// IsBoolean reports whether the expression has Boolean type.
func (e *Expr) IsBoolean() bool { return e.typ.IsBool() }

// IsTrue reports whether e is the Boolean constant true.
func (e *Expr) IsTrue() bool {
	return e.kind == KConstant && e.typ.IsBool() && e.val != nil && e.val.Sign() != 0
}

// IsFalse reports whether e is the Boolean constant false.
func (e *Expr) IsFalse() bool {
	return e.kind == KConstant && e.typ.IsBool() && e.val != nil && e.val.Sign() == 0
}

// IsZero reports whether e is a constant zero of any numeric type.
func (e *Expr) IsZero() bool {
	return e.kind == KConstant && e.val != nil && e.val.Sign() == 0 && !e.typ.IsBool()
}

// IsNullPointerConstant reports whether e is the null pointer constant.
func (e *Expr) IsNullPointerConstant() bool {
	return e.kind == KConstant && e.typ.IsPointer() && e.id == nullID
}
