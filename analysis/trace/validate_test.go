package trace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibex-verif/ibex/ir"
)

var (
	int32t = ir.SignedBV(32)
	ns     = ir.NewNamespace()
)

func assignment(lhs, rhs *ir.Expr) *Trace {
	return &Trace{Steps: []*Step{{
		Kind:         StepAssignment,
		FullLHS:      lhs,
		FullLHSValue: rhs,
	}}}
}

func TestValidStepsPass(t *testing.T) {
	sym := ir.Sym("id", int32t)
	constant := ir.IntConst(0, int32t)

	arrT := ir.ArrayType(int32t, ir.IntConst(4, ir.SizeType()))
	structT := ir.StructType(ir.Field{Name: "m", Type: int32t})

	tests := []struct {
		name     string
		lhs, rhs *ir.Expr
	}{
		{"symbol := constant", sym, constant},
		{"symbol := symbol", sym, ir.Sym("other", int32t)},
		{"member := constant",
			ir.MemberExpr(ir.Sym("s", structT), "m", int32t), constant},
		{"index := constant",
			ir.IndexExpr(ir.Sym("a", arrT), ir.IntConst(1, int32t)), constant},
		{"index by symbol := constant",
			ir.IndexExpr(ir.Sym("a", arrT), ir.Sym("i", int32t)), constant},
		{"symbol := address of symbol", sym, ir.AddressOf(ir.Sym("o", int32t))},
		{"symbol := struct of constants", sym,
			ir.StructExpr(structT, constant, ir.IntConst(1, int32t))},
		{"symbol := array", sym, ir.ArrayExpr(arrT, constant)},
		{"symbol := array list", sym, ir.ArrayList(arrT, constant, constant)},
		{"byte extract := constant",
			ir.ByteExtractLE(ir.Sym("a", arrT), ir.IntConst(0, int32t), int32t),
			constant},
		{"symbol := byte extract of constants", sym,
			ir.ByteExtractLE(constant, ir.IntConst(0, int32t), int32t)},
		{"typecasts are stripped",
			ir.Typecast(sym, ir.SignedBV(64)),
			ir.Typecast(constant, ir.SignedBV(64))},
	}

	for _, test := range tests {
		err := Validate(assignment(test.lhs, test.rhs), ns, true)
		assert.NoError(t, err, test.name)
	}
}

func TestInvalidLHS(t *testing.T) {
	constant := ir.IntConst(0, int32t)

	tests := []struct {
		name string
		lhs  *ir.Expr
	}{
		{"empty symbol identifier", ir.Sym("", int32t)},
		{"plain constant", constant},
		{"address of", ir.AddressOf(ir.Sym("x", int32t))},
		{"dereference", ir.Deref(ir.Sym("p", ir.PointerTo(int32t)))},
		{"index of non-symbol array",
			ir.IndexExpr(
				ir.ArrayExpr(ir.ArrayType(int32t, ir.IntConst(1, ir.SizeType())), constant),
				ir.IntConst(0, int32t))},
	}

	for _, test := range tests {
		err := Validate(assignment(test.lhs, constant), ns, true)
		require.Error(t, err, test.name)
		assert.Contains(t, err.Error(), "LHS", test.name)
	}
}

func TestInvalidRHS(t *testing.T) {
	sym := ir.Sym("id", int32t)
	structT := ir.StructType(
		ir.Field{Name: "m", Type: int32t},
		ir.Field{Name: "n", Type: int32t},
	)

	tests := []struct {
		name string
		rhs  *ir.Expr
	}{
		{"empty symbol identifier", ir.Sym("", int32t)},
		{"arbitrary arithmetic", ir.Plus(sym, sym)},
		{"struct with non-constant tail",
			ir.StructExpr(structT, ir.IntConst(0, int32t), sym)},
		{"address of constant", ir.AddressOf(ir.IntConst(0, int32t))},
		{"dereference", ir.Deref(ir.Sym("p", ir.PointerTo(int32t)))},
	}

	for _, test := range tests {
		err := Validate(assignment(sym, test.rhs), ns, true)
		require.Error(t, err, test.name)
		assert.Contains(t, err.Error(), "RHS", test.name)
	}
}

func TestByteExtractRHSViolationsReportRHS(t *testing.T) {
	sym := ir.Sym("id", int32t)
	nonConst := ir.Sym("x", int32t)

	bad := ir.ByteExtractLE(nonConst, ir.IntConst(0, int32t), int32t)
	err := Validate(assignment(sym, bad), ns, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RHS")
	assert.Contains(t, err.Error(), "constant value")

	badOffset := ir.ByteExtractLE(ir.IntConst(0, int32t), nonConst, int32t)
	err = Validate(assignment(sym, badOffset), ns, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RHS")
	assert.Contains(t, err.Error(), "constant index")
}

func TestByteExtractSimplifiesBeforeJudging(t *testing.T) {
	sym := ir.Sym("id", int32t)

	// 1+1 simplifies to a constant, so the step passes.
	folded := ir.ByteExtractLE(
		ir.Plus(ir.IntConst(1, int32t), ir.IntConst(1, int32t)),
		ir.IntConst(0, int32t), int32t)
	err := Validate(assignment(sym, folded), ns, true)
	assert.NoError(t, err)
}

func TestErrorEmbedsPrettyExpression(t *testing.T) {
	err := Validate(assignment(ir.Sym("", int32t), ir.IntConst(0, int32t)), ns, true)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "symbol"),
		"pretty form should name the kind: %s", err)
}

func TestNonAssignmentStepsAreIgnored(t *testing.T) {
	tr := &Trace{Steps: []*Step{{Kind: StepAssert}}}
	assert.NoError(t, Validate(tr, ns, true))
}

func TestValidationCanBeSkipped(t *testing.T) {
	bad := assignment(ir.Sym("", int32t), ir.IntConst(0, int32t))
	assert.NoError(t, Validate(bad, ns, false))
}

func TestDeclarationStepsAreChecked(t *testing.T) {
	tr := &Trace{Steps: []*Step{{
		Kind:         StepDeclaration,
		FullLHS:      ir.Sym("", int32t),
		FullLHSValue: ir.IntConst(0, int32t),
	}}}
	err := Validate(tr, ns, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LHS")
}
