package check

import (
	"strings"
	"testing"

	"github.com/ibex-verif/ibex/ir"
)

// testSetup builds a namespace with the function symbols f and the entry
// point, and the internal sentinels.
func testSetup(mode ir.Mode) *ir.Namespace {
	ns := ir.NewNamespace()
	ns.Register(&ir.Symbol{Name: "f", Type: ir.CodeType(false, nil, nil), Mode: mode})
	ns.Register(&ir.Symbol{Name: ir.EntryPoint, Type: ir.CodeType(false, nil, nil), Mode: mode})
	voidPtr := ir.PointerTo(ir.UnsignedBV(8))
	ns.Register(&ir.Symbol{Name: ir.MemoryLeakSymbol, Type: voidPtr, StaticLifetime: true})
	ns.Register(&ir.Symbol{Name: ir.DeadObjectSymbol, Type: voidPtr, StaticLifetime: true})
	return ns
}

// instrument runs the checker over a single function body built from the
// given instructions.
func instrument(t *testing.T, conf Config, mode ir.Mode, instrs ...*ir.Instruction) *ir.Program {
	t.Helper()
	ns := testSetup(mode)
	body := &ir.Program{Instructions: instrs}
	fn := &ir.Function{Name: "f", Body: body}
	c := NewChecker(ns, conf)
	if err := c.CheckFunction(fn); err != nil {
		t.Fatalf("CheckFunction: %v", err)
	}
	return body
}

// properties collects the emitted assert/assume instructions.
func properties(p *ir.Program) []*ir.Instruction {
	var out []*ir.Instruction
	for _, i := range p.Instructions {
		if (i.Kind == ir.InstrAssert || i.Kind == ir.InstrAssume) &&
			i.Loc != nil && i.Loc.PropertyClass != "" {
			out = append(out, i)
		}
	}
	return out
}

func comments(props []*ir.Instruction) []string {
	var out []string
	for _, p := range props {
		out = append(out, p.Loc.Comment)
	}
	return out
}

func exprStmt(e *ir.Expr) *ir.Instruction {
	return &ir.Instruction{
		Kind:      ir.InstrOther,
		Statement: ir.StatementExpression,
		Value:     e,
	}
}

func endFunction() *ir.Instruction {
	return &ir.Instruction{Kind: ir.InstrEndFunction}
}

var (
	int32t  = ir.SignedBV(32)
	uint32t = ir.UnsignedBV(32)
	f64t    = ir.Float64Type()
)

func TestBoundsCheckNegativeConstantIndex(t *testing.T) {
	arr := ir.Sym("a", ir.ArrayType(int32t, ir.IntConst(10, ir.SizeType())))
	idx := ir.IndexExpr(arr, ir.IntConst(-1, int32t))

	conf := DefaultConfig()
	conf.BoundsCheck = true
	conf.Simplify = false

	body := instrument(t, conf, ir.ModeC,
		&ir.Instruction{Kind: ir.InstrAssign, Lhs: ir.Sym("x", int32t), Rhs: idx},
		endFunction())

	props := properties(body)
	if len(props) != 2 {
		t.Fatalf("expected 2 assertions, got %d: %v", len(props), comments(props))
	}
	if props[0].Loc.Comment != "array 'a' lower bound in a[-1]" {
		t.Errorf("lower bound comment: %q", props[0].Loc.Comment)
	}
	if props[1].Loc.Comment != "array 'a' upper bound in a[-1]" {
		t.Errorf("upper bound comment: %q", props[1].Loc.Comment)
	}
	for _, p := range props {
		if p.Loc.PropertyClass != "array bounds" {
			t.Errorf("property class: %q", p.Loc.PropertyClass)
		}
	}
}

func TestBoundsCheckSimplifierCatchesNegativeIndex(t *testing.T) {
	arr := ir.Sym("a", ir.ArrayType(int32t, ir.IntConst(10, ir.SizeType())))
	idx := ir.IndexExpr(arr, ir.IntConst(-1, int32t))

	conf := DefaultConfig()
	conf.BoundsCheck = true

	body := instrument(t, conf, ir.ModeC,
		&ir.Instruction{Kind: ir.InstrAssign, Lhs: ir.Sym("x", int32t), Rhs: idx},
		endFunction())

	props := properties(body)
	// The upper bound -1 < 10 is trivially true and dropped; the lower
	// bound simplifies to false and stays.
	if len(props) != 1 {
		t.Fatalf("expected 1 assertion, got %d: %v", len(props), comments(props))
	}
	if !props[0].Cond.IsFalse() {
		t.Errorf("lower bound must simplify to false, got %s", props[0].Cond)
	}
}

func TestBoundsCheckUnsignedIndexHasNoLowerBound(t *testing.T) {
	arr := ir.Sym("a", ir.ArrayType(int32t, ir.IntConst(10, ir.SizeType())))
	idx := ir.IndexExpr(arr, ir.Sym("i", uint32t))

	conf := DefaultConfig()
	conf.BoundsCheck = true
	conf.Simplify = false

	body := instrument(t, conf, ir.ModeC,
		exprStmt(idx), endFunction())

	props := properties(body)
	if len(props) != 1 {
		t.Fatalf("expected only the upper bound, got %v", comments(props))
	}
	if !strings.Contains(props[0].Loc.Comment, "upper bound") {
		t.Errorf("unexpected comment %q", props[0].Loc.Comment)
	}
}

func TestBoundsCheckDisabledFlag(t *testing.T) {
	arr := ir.Sym("a", ir.ArrayType(int32t, ir.IntConst(10, ir.SizeType())))
	idx := ir.IndexExpr(arr, ir.IntConst(-1, int32t)).WithoutBoundsCheck()

	conf := DefaultConfig()
	conf.BoundsCheck = true

	body := instrument(t, conf, ir.ModeC, exprStmt(idx), endFunction())

	if props := properties(body); len(props) != 0 {
		t.Fatalf("bounds_check=false must suppress checks, got %v", comments(props))
	}
}

func TestDivChecks(t *testing.T) {
	a, b := ir.Sym("a", int32t), ir.Sym("b", int32t)
	div := ir.Div(a, b)

	conf := DefaultConfig()
	conf.DivByZeroCheck = true
	conf.SignedOverflowCheck = true

	body := instrument(t, conf, ir.ModeC,
		&ir.Instruction{Kind: ir.InstrAssign, Lhs: ir.Sym("x", int32t), Rhs: div},
		endFunction())

	props := properties(body)
	if len(props) != 2 {
		t.Fatalf("expected 2 assertions, got %v", comments(props))
	}

	expectedZero := ir.NotEqual(b, ir.IntConst(0, int32t))
	if !props[0].Cond.Equal(expectedZero) {
		t.Errorf("div-by-zero condition: %s", props[0].Cond)
	}
	if props[0].Loc.Comment != "division by zero in a / b" {
		t.Errorf("comment: %q", props[0].Loc.Comment)
	}
	if props[0].Loc.PropertyClass != "division-by-zero" {
		t.Errorf("class: %q", props[0].Loc.PropertyClass)
	}

	expectedOvf := ir.Not(ir.And(
		ir.Equal(a, int32t.SmallestExpr()),
		ir.Equal(b, ir.IntConst(-1, int32t))))
	if !props[1].Cond.Equal(expectedOvf) {
		t.Errorf("overflow condition: %s", props[1].Cond)
	}
	if props[1].Loc.PropertyClass != "overflow" {
		t.Errorf("class: %q", props[1].Loc.PropertyClass)
	}
}

func TestShlChecks(t *testing.T) {
	a, d := ir.Sym("a", int32t), ir.Sym("d", int32t)
	shl := ir.Shl(a, d)

	conf := DefaultConfig()
	conf.UndefinedShiftCheck = true
	conf.SignedOverflowCheck = true
	conf.Standard = C11
	conf.Simplify = false

	body := instrument(t, conf, ir.ModeC,
		&ir.Instruction{Kind: ir.InstrAssign, Lhs: ir.Sym("x", int32t), Rhs: shl},
		endFunction())

	props := properties(body)
	want := []string{
		"shift distance is negative in a << d",
		"shift distance too large in a << d",
		"shift operand is negative in a << d",
		"arithmetic overflow on signed shl in a << d",
	}
	got := comments(props)
	if len(got) != len(want) {
		t.Fatalf("expected %d assertions, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("assertion %d: %q, expected %q", i, got[i], want[i])
		}
	}

	// The C11 overflow disjunction carries a top-bits slab of width 33.
	ovf := props[3].Cond
	if ovf.Kind() != ir.KOr || len(ovf.Operands()) != 5 {
		t.Fatalf("overflow condition shape: %s", ovf)
	}
	slabEq := ovf.Op(4)
	if slabEq.Kind() != ir.KEqual || slabEq.Op(0).Type().Width() != 33 {
		t.Errorf("top-bits slab: %s of type %s", slabEq, slabEq.Op(0).Type())
	}
}

func TestShlOverflowSlabWidthPreC99(t *testing.T) {
	a, d := ir.Sym("a", int32t), ir.Sym("d", int32t)
	shl := ir.Shl(a, d)

	conf := DefaultConfig()
	conf.SignedOverflowCheck = true
	conf.Standard = C89
	conf.Simplify = false

	body := instrument(t, conf, ir.ModeC, exprStmt(shl), endFunction())

	props := properties(body)
	if len(props) != 1 {
		t.Fatalf("expected the overflow assertion alone, got %v", comments(props))
	}
	slabEq := props[0].Cond.Op(4)
	if slabEq.Op(0).Type().Width() != 32 {
		t.Errorf("pre-C99 slab width = %d, expected 32", slabEq.Op(0).Type().Width())
	}
}

func TestShlOverflowUnsignedOperandDisjunct(t *testing.T) {
	// Constructed directly: an unsigned shift value makes the
	// negative-value disjunct constant false.
	ns := testSetup(ir.ModeC)
	conf := DefaultConfig()
	conf.SignedOverflowCheck = true
	conf.Standard = C11
	conf.Simplify = false
	c := NewChecker(ns, conf)

	a, d := ir.Sym("a", uint32t), ir.Sym("d", uint32t)

	var g Guard
	c.shlOverflowCheck(ir.Shl(a, d), &g)

	if len(c.newCode) != 1 {
		t.Fatalf("expected one assertion, got %d", len(c.newCode))
	}
	ovf := c.newCode[0].Cond
	if !ovf.Op(0).IsFalse() {
		t.Errorf("neg-value disjunct must be false for unsigned operands: %s", ovf.Op(0))
	}
	if !ovf.Op(1).IsFalse() {
		t.Errorf("neg-distance disjunct must be false for unsigned distance: %s", ovf.Op(1))
	}
	slabEq := ovf.Op(4)
	if slabEq.Op(0).Type().Width() != 33 {
		t.Errorf("slab width = %d, expected 33", slabEq.Op(0).Type().Width())
	}
}

func TestFloatPlusChecks(t *testing.T) {
	x, y := ir.Sym("x", f64t), ir.Sym("y", f64t)
	sum := ir.Plus(x, y)

	conf := DefaultConfig()
	conf.NanCheck = true
	conf.FloatOverflowCheck = true
	conf.Simplify = false

	body := instrument(t, conf, ir.ModeC, exprStmt(sum), endFunction())

	props := properties(body)
	if len(props) != 2 {
		t.Fatalf("expected 2 assertions, got %v", comments(props))
	}

	plusInf := ir.PlusInfinity(f64t)
	minusInf := ir.MinusInfinity(f64t)
	wantNaN := ir.Not(ir.Or(
		ir.And(ir.Equal(x, minusInf), ir.Equal(y, plusInf)),
		ir.And(ir.Equal(x, plusInf), ir.Equal(y, minusInf))))
	if !props[0].Cond.Equal(wantNaN) {
		t.Errorf("NaN condition: %s", props[0].Cond)
	}
	if props[0].Loc.Comment != "NaN on + in x + y" {
		t.Errorf("NaN comment: %q", props[0].Loc.Comment)
	}
	if props[0].Loc.PropertyClass != "NaN" {
		t.Errorf("NaN class: %q", props[0].Loc.PropertyClass)
	}

	wantOvf := ir.Or(ir.IsInf(x), ir.IsInf(y), ir.Not(ir.IsInf(sum)))
	if !props[1].Cond.Equal(wantOvf) {
		t.Errorf("overflow condition: %s", props[1].Cond)
	}
	if props[1].Loc.Comment != "arithmetic overflow on floating-point addition in x + y" {
		t.Errorf("overflow comment: %q", props[1].Loc.Comment)
	}
}

func TestConversionChecks(t *testing.T) {
	conf := DefaultConfig()
	conf.ConversionCheck = true
	conf.Simplify = false

	tests := []struct {
		name string
		expr *ir.Expr
		want int
	}{
		{"signed to wider signed", ir.Typecast(ir.Sym("a", int32t), ir.SignedBV(64)), 0},
		{"signed to equal signed", ir.Typecast(ir.Sym("a", int32t), ir.SignedBV(32)), 0},
		{"signed to narrower signed", ir.Typecast(ir.Sym("a", int32t), ir.SignedBV(16)), 1},
		{"unsigned to wider signed", ir.Typecast(ir.Sym("a", uint32t), ir.SignedBV(64)), 0},
		{"unsigned to equal signed", ir.Typecast(ir.Sym("a", uint32t), ir.SignedBV(32)), 1},
		{"signed to unsigned same width", ir.Typecast(ir.Sym("a", int32t), uint32t), 1},
		{"signed to much narrower unsigned", ir.Typecast(ir.Sym("a", int32t), ir.UnsignedBV(8)), 1},
		{"unsigned to narrower unsigned", ir.Typecast(ir.Sym("a", uint32t), ir.UnsignedBV(16)), 1},
		{"float to signed", ir.Typecast(ir.Sym("a", f64t), int32t), 1},
		{"float to unsigned", ir.Typecast(ir.Sym("a", f64t), uint32t), 1},
		{"pointer cast ignored", ir.Typecast(ir.Sym("p", ir.PointerTo(int32t)), ir.PointerTo(uint32t)), 0},
	}

	for _, test := range tests {
		body := instrument(t, conf, ir.ModeC, exprStmt(test.expr), endFunction())
		props := properties(body)
		if len(props) != test.want {
			t.Errorf("%s: expected %d assertions, got %v",
				test.name, test.want, comments(props))
		}
		for _, p := range props {
			if p.Loc.PropertyClass != "overflow" {
				t.Errorf("%s: class %q", test.name, p.Loc.PropertyClass)
			}
		}
	}
}

func TestModByZeroSuppressedInJava(t *testing.T) {
	a, b := ir.Sym("a", int32t), ir.Sym("b", int32t)

	conf := DefaultConfig()
	conf.DivByZeroCheck = true

	body := instrument(t, conf, ir.ModeJava, exprStmt(ir.Mod(a, b)), endFunction())
	if props := properties(body); len(props) != 0 {
		t.Fatalf("Java mode must not emit mod-by-zero, got %v", comments(props))
	}

	body = instrument(t, conf, ir.ModeC, exprStmt(ir.Mod(a, b)), endFunction())
	if props := properties(body); len(props) != 1 {
		t.Fatalf("C mode must emit mod-by-zero, got %v", comments(props))
	}
}

func TestModOverflow(t *testing.T) {
	a, b := ir.Sym("a", int32t), ir.Sym("b", int32t)

	conf := DefaultConfig()
	conf.SignedOverflowCheck = true
	conf.Simplify = false

	body := instrument(t, conf, ir.ModeC, exprStmt(ir.Mod(a, b)), endFunction())
	props := properties(body)
	if len(props) != 1 {
		t.Fatalf("expected mod overflow assertion, got %v", comments(props))
	}
	want := ir.Or(
		ir.NotEqual(a, int32t.SmallestExpr()),
		ir.NotEqual(b, ir.IntConst(-1, int32t)))
	if !props[0].Cond.Equal(want) {
		t.Errorf("condition: %s", props[0].Cond)
	}
}

func TestUnaryMinusOverflow(t *testing.T) {
	a := ir.Sym("a", int32t)

	conf := DefaultConfig()
	conf.SignedOverflowCheck = true
	conf.Simplify = false

	body := instrument(t, conf, ir.ModeC, exprStmt(ir.UnaryMinus(a)), endFunction())
	props := properties(body)
	if len(props) != 1 {
		t.Fatalf("expected 1 assertion, got %v", comments(props))
	}
	want := ir.Not(ir.Equal(a, int32t.SmallestExpr()))
	if !props[0].Cond.Equal(want) {
		t.Errorf("condition: %s", props[0].Cond)
	}
}

func TestNaryPlusOverflowPerPrefix(t *testing.T) {
	a, b, c := ir.Sym("a", int32t), ir.Sym("b", int32t), ir.Sym("c", int32t)

	conf := DefaultConfig()
	conf.SignedOverflowCheck = true
	conf.Simplify = false

	body := instrument(t, conf, ir.ModeC, exprStmt(ir.Plus(a, b, c)), endFunction())
	props := properties(body)
	if len(props) != 2 {
		t.Fatalf("n-ary plus must emit one check per prefix, got %v", comments(props))
	}

	first := ir.Not(ir.Overflow("+", a, b))
	second := ir.Not(ir.Overflow("+", ir.Plus(a, b), c))
	if !props[0].Cond.Equal(first) {
		t.Errorf("first prefix: %s", props[0].Cond)
	}
	if !props[1].Cond.Equal(second) {
		t.Errorf("second prefix: %s", props[1].Cond)
	}
}

func TestOrthogonality(t *testing.T) {
	a, b := ir.Sym("a", int32t), ir.Sym("b", int32t)
	d := ir.Sym("d", int32t)

	program := func() []*ir.Instruction {
		return []*ir.Instruction{
			exprStmt(ir.Div(a, b)),
			exprStmt(ir.Shl(a, d)),
			endFunction(),
		}
	}

	confDiv := DefaultConfig()
	confDiv.DivByZeroCheck = true
	body := instrument(t, confDiv, ir.ModeC, program()...)
	for _, p := range properties(body) {
		if p.Loc.PropertyClass != "division-by-zero" {
			t.Errorf("unexpected class %q", p.Loc.PropertyClass)
		}
	}

	confShift := DefaultConfig()
	confShift.UndefinedShiftCheck = true
	body = instrument(t, confShift, ir.ModeC, program()...)
	props := properties(body)
	if len(props) == 0 {
		t.Fatal("expected undefined-shift assertions")
	}
	for _, p := range props {
		if p.Loc.PropertyClass != "undefined-shift" {
			t.Errorf("unexpected class %q", p.Loc.PropertyClass)
		}
	}
}

func TestAssertToAssumePreservesConditions(t *testing.T) {
	a, b := ir.Sym("a", int32t), ir.Sym("b", int32t)

	conf := DefaultConfig()
	conf.DivByZeroCheck = true

	asserts := properties(instrument(t, conf, ir.ModeC,
		exprStmt(ir.Div(a, b)), endFunction()))

	conf.AssertToAssume = true
	assumes := properties(instrument(t, conf, ir.ModeC,
		exprStmt(ir.Div(a, b)), endFunction()))

	if len(asserts) != len(assumes) {
		t.Fatalf("instruction sets differ: %d vs %d", len(asserts), len(assumes))
	}
	for i := range asserts {
		if asserts[i].Kind != ir.InstrAssert {
			t.Error("expected assertion")
		}
		if assumes[i].Kind != ir.InstrAssume {
			t.Error("expected assumption")
		}
		if !asserts[i].Cond.Equal(assumes[i].Cond) {
			t.Errorf("conditions differ: %s vs %s", asserts[i].Cond, assumes[i].Cond)
		}
	}
}

func TestDeduplicationWithinRegion(t *testing.T) {
	a, b := ir.Sym("a", int32t), ir.Sym("b", int32t)

	conf := DefaultConfig()
	conf.DivByZeroCheck = true

	// The same division twice in one expression yields one assertion.
	body := instrument(t, conf, ir.ModeC,
		exprStmt(ir.Equal(ir.Div(a, b), ir.Div(a, b))), endFunction())
	if props := properties(body); len(props) != 1 {
		t.Fatalf("duplicate assertion not cached: %v", comments(props))
	}

	// Same division in consecutive instructions: still one assertion.
	body = instrument(t, conf, ir.ModeC,
		exprStmt(ir.Div(a, b)), exprStmt(ir.Div(a, b)), endFunction())
	if props := properties(body); len(props) != 1 {
		t.Fatalf("cross-instruction dedup failed: %v", comments(props))
	}
}

func TestCacheInvalidationOnAssignment(t *testing.T) {
	a, b := ir.Sym("a", int32t), ir.Sym("b", int32t)

	conf := DefaultConfig()
	conf.DivByZeroCheck = true

	body := instrument(t, conf, ir.ModeC,
		exprStmt(ir.Div(a, b)),
		&ir.Instruction{Kind: ir.InstrAssign, Lhs: b, Rhs: ir.IntConst(1, int32t)},
		exprStmt(ir.Div(a, b)),
		endFunction())

	if props := properties(body); len(props) != 2 {
		t.Fatalf("assignment to b must invalidate the cached check: %v",
			comments(props))
	}
}

func TestCacheClearedAtBranchTarget(t *testing.T) {
	a, b := ir.Sym("a", int32t), ir.Sym("b", int32t)

	conf := DefaultConfig()
	conf.DivByZeroCheck = true

	second := exprStmt(ir.Div(a, b))
	jump := &ir.Instruction{Kind: ir.InstrGoto, Cond: ir.Sym("p", ir.BoolType()),
		Targets: []*ir.Instruction{second}}

	body := instrument(t, conf, ir.ModeC,
		jump,
		exprStmt(ir.Div(a, b)),
		second,
		endFunction())

	if props := properties(body); len(props) != 2 {
		t.Fatalf("branch target must clear the cache: %v", comments(props))
	}
}

func TestGuardThroughIf(t *testing.T) {
	a, b := ir.Sym("a", int32t), ir.Sym("b", int32t)
	p := ir.Sym("p", ir.BoolType())

	conf := DefaultConfig()
	conf.DivByZeroCheck = true
	conf.Simplify = false

	body := instrument(t, conf, ir.ModeC,
		exprStmt(ir.Equal(ir.IfExpr(p, ir.Div(a, b), a), a)),
		endFunction())

	props := properties(body)
	if len(props) != 1 {
		t.Fatalf("expected 1 assertion, got %v", comments(props))
	}
	want := ir.Implies(p, ir.NotEqual(b, ir.IntConst(0, int32t)))
	if !props[0].Cond.Equal(want) {
		t.Errorf("guarded condition: %s", props[0].Cond)
	}
}

func TestGuardThroughShortCircuit(t *testing.T) {
	a, b, c := ir.Sym("a", int32t), ir.Sym("b", int32t), ir.Sym("c", int32t)
	p := ir.Sym("p", ir.BoolType())
	zero := ir.IntConst(0, int32t)

	conf := DefaultConfig()
	conf.DivByZeroCheck = true
	conf.Simplify = false

	// Or: the second operand runs under the negation of the first.
	body := instrument(t, conf, ir.ModeC,
		exprStmt(ir.Or(p, ir.Equal(ir.Div(a, b), zero))),
		endFunction())
	props := properties(body)
	if len(props) != 1 {
		t.Fatalf("expected 1 assertion, got %v", comments(props))
	}
	want := ir.Implies(ir.Not(p), ir.NotEqual(b, zero))
	if !props[0].Cond.Equal(want) {
		t.Errorf("or-guard: %s", props[0].Cond)
	}

	// And: the guard is the conjunction of the previous operands.
	body = instrument(t, conf, ir.ModeC,
		exprStmt(ir.And(p, ir.Equal(ir.Div(a, b), zero),
			ir.Equal(ir.Div(a, c), zero))),
		endFunction())
	props = properties(body)
	if len(props) != 2 {
		t.Fatalf("expected 2 assertions, got %v", comments(props))
	}
	wantFirst := ir.Implies(p, ir.NotEqual(b, zero))
	if !props[0].Cond.Equal(wantFirst) {
		t.Errorf("and-guard first: %s", props[0].Cond)
	}
	wantSecond := ir.Implies(
		ir.And(p, ir.Equal(ir.Div(a, b), zero)),
		ir.NotEqual(c, zero))
	if !props[1].Cond.Equal(wantSecond) {
		t.Errorf("and-guard second: %s", props[1].Cond)
	}
}

func TestErrorLabel(t *testing.T) {
	conf := DefaultConfig()
	conf.ErrorLabels = []string{"ERROR"}

	marked := &ir.Instruction{Kind: ir.InstrSkip, Labels: []string{"ERROR"}}
	body := instrument(t, conf, ir.ModeC,
		assignInstr("x", 1), marked, endFunction())

	props := properties(body)
	if len(props) != 1 {
		t.Fatalf("expected error-label assertion, got %v", comments(props))
	}
	if props[0].Loc.PropertyClass != "error label" {
		t.Errorf("class: %q", props[0].Loc.PropertyClass)
	}
	if props[0].Loc.Comment != "error label ERROR" {
		t.Errorf("comment: %q", props[0].Loc.Comment)
	}
	if !props[0].Cond.IsFalse() {
		t.Errorf("condition must be false, got %s", props[0].Cond)
	}
	if !props[0].Loc.UserProvided {
		t.Error("error label assertions count as user-provided")
	}
}

func assignInstr(id string, v int64) *ir.Instruction {
	return &ir.Instruction{
		Kind: ir.InstrAssign,
		Lhs:  ir.Sym(id, int32t),
		Rhs:  ir.IntConst(v, int32t),
	}
}

func TestAssertionFiltering(t *testing.T) {
	userAssert := func() *ir.Instruction {
		return &ir.Instruction{
			Kind: ir.InstrAssert,
			Cond: ir.Sym("p", ir.BoolType()),
			Loc:  &ir.SourceLocation{UserProvided: true},
		}
	}
	builtinAssert := func() *ir.Instruction {
		return &ir.Instruction{
			Kind: ir.InstrAssert,
			Cond: ir.Sym("p", ir.BoolType()),
			Loc:  &ir.SourceLocation{},
		}
	}

	count := func(conf Config, mk func() *ir.Instruction) int {
		body := instrument(t, conf, ir.ModeC, mk(), assignInstr("x", 1), endFunction())
		n := 0
		for _, i := range body.Instructions {
			if i.Kind == ir.InstrAssert {
				n++
			}
		}
		return n
	}

	conf := DefaultConfig()
	if got := count(conf, userAssert); got != 1 {
		t.Errorf("enabled user assertion dropped (%d)", got)
	}

	conf.Assertions = false
	if got := count(conf, userAssert); got != 0 {
		t.Errorf("disabled user assertion kept (%d)", got)
	}

	conf = DefaultConfig()
	conf.BuiltInAssertions = false
	if got := count(conf, builtinAssert); got != 0 {
		t.Errorf("disabled built-in assertion kept (%d)", got)
	}
}

func TestAssumptionFiltering(t *testing.T) {
	assume := &ir.Instruction{Kind: ir.InstrAssume, Cond: ir.Sym("p", ir.BoolType())}

	conf := DefaultConfig()
	conf.Assumptions = false

	body := instrument(t, conf, ir.ModeC, assume, assignInstr("x", 1), endFunction())
	for _, i := range body.Instructions {
		if i.Kind == ir.InstrAssume {
			t.Fatal("disabled assumption kept")
		}
	}
}

func TestPragmaDisablesCheckLocally(t *testing.T) {
	a, b := ir.Sym("a", int32t), ir.Sym("b", int32t)

	conf := DefaultConfig()
	conf.DivByZeroCheck = true

	suppressed := exprStmt(ir.Div(a, b))
	suppressed.Loc = &ir.SourceLocation{
		Pragmas: map[string]bool{"disable:div-by-zero-check": true},
	}

	body := instrument(t, conf, ir.ModeC,
		suppressed,
		exprStmt(ir.Div(ir.Sym("c", int32t), ir.Sym("e", int32t))),
		endFunction())

	props := properties(body)
	if len(props) != 1 {
		t.Fatalf("pragma must only affect its own instruction: %v", comments(props))
	}
	if !strings.Contains(props[0].Loc.Comment, "c / e") {
		t.Errorf("wrong surviving assertion: %q", props[0].Loc.Comment)
	}
}

func TestMemoryLeakCheckAtEntryPointEnd(t *testing.T) {
	conf := DefaultConfig()
	conf.MemoryLeakCheck = true

	ns := testSetup(ir.ModeC)
	body := &ir.Program{Instructions: []*ir.Instruction{
		assignInstr("x", 1), endFunction(),
	}}
	fn := &ir.Function{Name: ir.EntryPoint, Body: body}
	c := NewChecker(ns, conf)
	if err := c.CheckFunction(fn); err != nil {
		t.Fatal(err)
	}

	var selfAssign, leakAssert bool
	for _, i := range body.Instructions {
		if i.Kind == ir.InstrAssign && i.Lhs.Kind() == ir.KSymbol &&
			i.Lhs.Id() == ir.MemoryLeakSymbol && i.Rhs.Equal(i.Lhs) {
			selfAssign = true
		}
		if i.Kind == ir.InstrAssert && i.Loc != nil &&
			i.Loc.PropertyClass == "memory-leak" {
			leakAssert = true
			if i.Loc.Comment != "dynamically allocated memory never freed in "+
				ir.MemoryLeakSymbol+" == NULL" {
				t.Errorf("comment: %q", i.Loc.Comment)
			}
		}
	}
	if !selfAssign {
		t.Error("missing sentinel self-assignment")
	}
	if !leakAssert {
		t.Error("missing memory-leak assertion")
	}

	// Non-entry functions are not affected.
	body2 := instrument(t, conf, ir.ModeC, assignInstr("x", 1), endFunction())
	if props := properties(body2); len(props) != 0 {
		t.Errorf("leak check leaked into non-entry function: %v", comments(props))
	}
}
