package ir

import "testing"

func TestSimplifyFolding(t *testing.T) {
	int32t := SignedBV(32)
	a := Sym("a", int32t)
	p := Sym("p", BoolType())

	c := func(v int64) *Expr { return IntConst(v, int32t) }

	tests := []struct {
		name     string
		in       *Expr
		expected *Expr
	}{
		{"constant plus", Plus(c(1), c(2)), c(3)},
		{"wrapping plus", Plus(c(2147483647), c(1)), c(-2147483648)},
		{"constant mult", Mult(c(6), c(7)), c(42)},
		{"constant minus", Minus(c(5), c(7)), c(-2)},
		{"constant div", Div(c(7), c(2)), c(3)},
		{"div by zero untouched", Div(c(7), c(0)), Div(c(7), c(0))},
		{"constant mod", Mod(c(7), c(2)), c(1)},
		{"unary minus", UnaryMinus(c(5)), c(-5)},
		{"lt", Lt(c(-1), c(0)), True()},
		{"ge false", Ge(c(-1), c(0)), False()},
		{"eq same symbol", Equal(a, a), True()},
		{"ne same symbol", NotEqual(a, a), False()},
		{"and true unit", And(True(), p), p},
		{"and false zero", And(p, False()), False()},
		{"or false unit", Or(False(), p), p},
		{"or true zero", Or(p, True()), True()},
		{"not true", Not(True()), False()},
		{"double negation", Not(Not(p)), p},
		{"implies true antecedent", Implies(True(), p), p},
		{"implies false antecedent", Implies(False(), p), True()},
		{"if true", IfExpr(True(), c(1), c(2)), c(1)},
		{"if false", IfExpr(False(), c(1), c(2)), c(2)},
		{"cast same type", Typecast(a, int32t), a},
		{"cast narrowing", Typecast(IntConst(300, int32t), SignedBV(8)), IntConst(44, SignedBV(8))},
		{"cast to unsigned", Typecast(c(-1), UnsignedBV(8)), IntConst(255, UnsignedBV(8))},
		{"shl constant", Shl(c(1), c(4)), c(16)},
		{"shl negative distance untouched", Shl(c(1), c(-1)), Shl(c(1), c(-1))},
		{"nested", And(Lt(c(0), c(1)), p), p},
	}

	for _, test := range tests {
		if got := Simplify(test.in); !got.Equal(test.expected) {
			t.Errorf("%s: Simplify(%s) = %s, expected %s",
				test.name, test.in, got, test.expected)
		}
	}
}

func TestSimplifyFloatEqualityIsConservative(t *testing.T) {
	x := Sym("x", Float64Type())

	// x = x must not fold under IEEE semantics: it is false for NaN.
	if got := Simplify(Equal(x, x)); got.IsTrue() {
		t.Error("float x = x must not simplify to true")
	}
}

func TestSimplifyPreservesTypes(t *testing.T) {
	e := Typecast(IntConst(300, SignedBV(32)), SignedBV(8))
	got := Simplify(e)
	if !got.Type().Equal(e.Type()) {
		t.Errorf("simplification changed type: %s to %s", e.Type(), got.Type())
	}
}
