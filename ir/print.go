package ir

import (
	"fmt"
	"strings"

	"github.com/ibex-verif/ibex/utils/indenter"
)

// String renders the expression in a compact C-like form, suitable for
// assertion comments.
func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.kind {
	case KSymbol:
		return e.id
	case KConstant:
		return constString(e)
	case KStringConstant:
		return fmt.Sprintf("%q", e.id)
	case KNondet:
		return "NONDET"
	case KIndex:
		return fmt.Sprintf("%s[%s]", paren(e.Op(0)), e.Op(1))
	case KMember:
		if e.Op(0).kind == KDereference {
			return fmt.Sprintf("%s->%s", paren(e.Op(0).Op(0)), e.id)
		}
		return fmt.Sprintf("%s.%s", paren(e.Op(0)), e.id)
	case KDereference:
		return "*" + paren(e.Op(0))
	case KAddressOf:
		return "&" + paren(e.Op(0))
	case KPlus:
		return joinInfix(e.ops, " + ")
	case KMinus:
		return joinInfix(e.ops, " - ")
	case KMult:
		return joinInfix(e.ops, " * ")
	case KDiv:
		return joinInfix(e.ops, " / ")
	case KMod:
		return joinInfix(e.ops, " % ")
	case KUnaryMinus:
		return "-" + paren(e.Op(0))
	case KShl:
		return joinInfix(e.ops, " << ")
	case KAShr, KLShr:
		return joinInfix(e.ops, " >> ")
	case KTypecast:
		return fmt.Sprintf("(%s)%s", e.typ, paren(e.Op(0)))
	case KIf:
		return fmt.Sprintf("%s ? %s : %s", paren(e.Op(0)), paren(e.Op(1)), paren(e.Op(2)))
	case KAnd:
		return joinInfix(e.ops, " && ")
	case KOr:
		return joinInfix(e.ops, " || ")
	case KNot:
		return "!" + paren(e.Op(0))
	case KImplies:
		return fmt.Sprintf("%s ==> %s", paren(e.Op(0)), paren(e.Op(1)))
	case KEqual:
		return joinInfix(e.ops, " == ")
	case KNotEqual:
		return joinInfix(e.ops, " != ")
	case KLt:
		return joinInfix(e.ops, " < ")
	case KLe:
		return joinInfix(e.ops, " <= ")
	case KGt:
		return joinInfix(e.ops, " > ")
	case KGe:
		return joinInfix(e.ops, " >= ")
	case KForall:
		return fmt.Sprintf("forall %s. %s", e.Op(0), paren(e.Op(1)))
	case KExists:
		return fmt.Sprintf("exists %s. %s", e.Op(0), paren(e.Op(1)))
	case KOverflow:
		return fmt.Sprintf("overflow-%s(%s)", e.id, joinInfix(e.ops, ", "))
	case KStruct:
		return "{" + joinInfix(e.ops, ", ") + "}"
	case KArray, KArrayList:
		return "{" + joinInfix(e.ops, ", ") + "}"
	case KArrayOf:
		return fmt.Sprintf("array_of(%s)", e.Op(0))
	case KWith:
		return fmt.Sprintf("%s with [%s:=%s]", paren(e.Op(0)), e.Op(1), e.Op(2))
	case KLambda:
		return fmt.Sprintf("lambda %s. %s", e.Op(0), paren(e.Op(1)))
	case KByteExtractLE, KByteExtractBE:
		return fmt.Sprintf("%s(%s, %s)", e.kind, e.Op(0), e.Op(1))
	}
	// Opaque predicates and anything else render as calls.
	return fmt.Sprintf("%s(%s)", e.kind, joinInfix(e.ops, ", "))
}

func constString(e *Expr) string {
	switch {
	case e.typ.IsBool():
		if e.IsTrue() {
			return "true"
		}
		return "false"
	case e.typ.IsPointer() && e.id == nullID:
		return "NULL"
	case e.typ.IsFloatBV():
		switch {
		case IsPlusInfinity(e):
			return "+inf"
		case IsMinusInfinity(e):
			return "-inf"
		}
		return "float(#x" + e.val.Text(16) + ")"
	case e.val != nil:
		return e.val.String()
	}
	return "const?"
}

func paren(e *Expr) string {
	switch e.kind {
	case KSymbol, KConstant, KStringConstant, KIndex, KMember, KNondet:
		return e.String()
	}
	if len(e.ops) == 0 {
		return e.String()
	}
	return "(" + e.String() + ")"
}

func joinInfix(ops []*Expr, sep string) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = paren(op)
	}
	return strings.Join(parts, sep)
}

// Pretty renders an expression tree across multiple indented lines,
// used for diagnostics on malformed expressions.
func Pretty(e *Expr) string {
	ind := indenter.New()
	prettyRec(ind, e)
	return ind.String()
}

func prettyRec(ind *indenter.Indenter, e *Expr) {
	if e == nil {
		ind.Line("<nil>")
		return
	}
	head := e.kind.String()
	if e.id != "" {
		head += " " + e.id
	}
	if e.kind == KConstant {
		head += " " + constString(e)
	}
	ind.Line("* %s : %s", head, e.typ)
	ind.Nest(func(ind *indenter.Indenter) {
		for _, op := range e.ops {
			prettyRec(ind, op)
		}
	})
}

// ArrayName gives a human-readable description of the array being indexed,
// used in bounds-check comments.
func ArrayName(e *Expr) string {
	switch e.kind {
	case KSymbol:
		return "array '" + e.id + "'"
	case KMember:
		return ArrayName(e.Op(0)) + "." + e.id
	case KDereference:
		return "array"
	case KIndex:
		return ArrayName(e.Op(0)) + "[]"
	case KStringConstant:
		return "string constant"
	}
	return "array"
}
