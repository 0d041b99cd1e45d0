package ir

import (
	"fmt"
	"strings"

	"github.com/ibex-verif/ibex/utils"
)

// TypeKind tags the members of the type algebra.
type TypeKind uint8

const (
	TBool TypeKind = iota
	TSignedBV
	TUnsignedBV
	TFloatBV
	TPointer
	TArray
	TVector
	TStruct
	TCode
)

// PointerWidth is the width in bits of pointer values.
const PointerWidth = 64

// Field is a named struct component.
type Field struct {
	Name string
	Type *Type
}

// Type is an immutable tagged type descriptor. Width, float spec and array
// sizes are carried verbatim; values are shared freely after construction.
type Type struct {
	kind     TypeKind
	width    uint
	fraction uint // FloatBV: fraction bits, excluding the hidden bit
	exponent uint // FloatBV: exponent bits
	sub      *Type
	size     *Expr // Array/Vector size; may be nil when linking did not complete
	fields   []Field
	hasThis  bool
	params   []*Type
	ret      *Type
}

var boolType = &Type{kind: TBool, width: 1}

func BoolType() *Type { return boolType }

func SignedBV(width uint) *Type   { return &Type{kind: TSignedBV, width: width} }
func UnsignedBV(width uint) *Type { return &Type{kind: TUnsignedBV, width: width} }

// FloatBV constructs an IEEE-754 style float type from its fraction and
// exponent widths. The total width includes the sign bit.
func FloatBV(fraction, exponent uint) *Type {
	return &Type{
		kind:     TFloatBV,
		width:    1 + fraction + exponent,
		fraction: fraction,
		exponent: exponent,
	}
}

func Float32Type() *Type { return FloatBV(23, 8) }
func Float64Type() *Type { return FloatBV(52, 11) }

func PointerTo(sub *Type) *Type {
	return &Type{kind: TPointer, width: PointerWidth, sub: sub}
}

func ArrayType(sub *Type, size *Expr) *Type {
	return &Type{kind: TArray, sub: sub, size: size}
}

func VectorType(sub *Type, size *Expr) *Type {
	return &Type{kind: TVector, sub: sub, size: size}
}

func StructType(fields ...Field) *Type {
	return &Type{kind: TStruct, fields: fields}
}

func CodeType(hasThis bool, params []*Type, ret *Type) *Type {
	return &Type{kind: TCode, hasThis: hasThis, params: params, ret: ret}
}

func (t *Type) Kind() TypeKind { return t.kind }
func (t *Type) Width() uint    { return t.width }

// FloatSpec returns the fraction and exponent widths of a FloatBV type.
func (t *Type) FloatSpec() (fraction, exponent uint) { return t.fraction, t.exponent }

func (t *Type) Sub() *Type      { return t.sub }
func (t *Type) Size() *Expr     { return t.size }
func (t *Type) Fields() []Field { return t.fields }
func (t *Type) HasThis() bool   { return t.hasThis }
func (t *Type) Params() []*Type { return t.params }
func (t *Type) Ret() *Type      { return t.ret }

func (t *Type) IsBool() bool       { return t != nil && t.kind == TBool }
func (t *Type) IsSignedBV() bool   { return t != nil && t.kind == TSignedBV }
func (t *Type) IsUnsignedBV() bool { return t != nil && t.kind == TUnsignedBV }
func (t *Type) IsFloatBV() bool    { return t != nil && t.kind == TFloatBV }
func (t *Type) IsPointer() bool    { return t != nil && t.kind == TPointer }
func (t *Type) IsArray() bool      { return t != nil && t.kind == TArray }
func (t *Type) IsVector() bool     { return t != nil && t.kind == TVector }
func (t *Type) IsStruct() bool     { return t != nil && t.kind == TStruct }
func (t *Type) IsCode() bool       { return t != nil && t.kind == TCode }

// IsBitvector reports whether t is a signed or unsigned bitvector.
func (t *Type) IsBitvector() bool {
	return t != nil && (t.kind == TSignedBV || t.kind == TUnsignedBV)
}

// Component returns the field with the given name.
func (t *Type) Component(name string) (Field, bool) {
	for _, f := range t.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Equal is structural type equality.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.kind != o.kind {
		return false
	}
	switch t.kind {
	case TBool:
		return true
	case TSignedBV, TUnsignedBV:
		return t.width == o.width
	case TFloatBV:
		return t.fraction == o.fraction && t.exponent == o.exponent
	case TPointer:
		return t.sub.Equal(o.sub)
	case TArray, TVector:
		if !t.sub.Equal(o.sub) {
			return false
		}
		if (t.size == nil) != (o.size == nil) {
			return false
		}
		return t.size == nil || t.size.Equal(o.size)
	case TStruct:
		if len(t.fields) != len(o.fields) {
			return false
		}
		for i := range t.fields {
			if t.fields[i].Name != o.fields[i].Name ||
				!t.fields[i].Type.Equal(o.fields[i].Type) {
				return false
			}
		}
		return true
	case TCode:
		if t.hasThis != o.hasThis || len(t.params) != len(o.params) {
			return false
		}
		for i := range t.params {
			if !t.params[i].Equal(o.params[i]) {
				return false
			}
		}
		if (t.ret == nil) != (o.ret == nil) {
			return false
		}
		return t.ret == nil || t.ret.Equal(o.ret)
	}
	return false
}

// Hash computes the structural hash of the type.
func (t *Type) Hash() uint32 {
	if t == nil {
		return 0
	}
	h := utils.HashCombine(uint32(t.kind), uint32(t.width), uint32(t.fraction), uint32(t.exponent))
	if t.sub != nil {
		h = utils.HashCombine(h, t.sub.Hash())
	}
	if t.size != nil {
		h = utils.HashCombine(h, t.size.Hash())
	}
	for _, f := range t.fields {
		h = utils.HashCombine(h, utils.HashString(f.Name), f.Type.Hash())
	}
	for _, p := range t.params {
		h = utils.HashCombine(h, p.Hash())
	}
	if t.ret != nil {
		h = utils.HashCombine(h, t.ret.Hash())
	}
	return h
}

func (t *Type) String() string {
	if t == nil {
		return "<nil-type>"
	}
	switch t.kind {
	case TBool:
		return "bool"
	case TSignedBV:
		return fmt.Sprintf("signedbv[%d]", t.width)
	case TUnsignedBV:
		return fmt.Sprintf("unsignedbv[%d]", t.width)
	case TFloatBV:
		return fmt.Sprintf("floatbv[%d:%d]", t.fraction, t.exponent)
	case TPointer:
		return t.sub.String() + "*"
	case TArray:
		if t.size == nil {
			return t.sub.String() + "[?]"
		}
		return fmt.Sprintf("%s[%s]", t.sub, t.size)
	case TVector:
		return fmt.Sprintf("vector(%s)", t.sub)
	case TStruct:
		names := make([]string, len(t.fields))
		for i, f := range t.fields {
			names[i] = f.Name + ": " + f.Type.String()
		}
		return "struct {" + strings.Join(names, "; ") + "}"
	case TCode:
		return "code"
	}
	return "<unknown-type>"
}
