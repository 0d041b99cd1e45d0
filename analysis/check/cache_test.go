package check

import (
	"testing"

	"github.com/ibex-verif/ibex/ir"
)

func TestAssertionSetInsert(t *testing.T) {
	s := newAssertionSet()
	a := ir.Sym("a", ir.BoolType())

	if !s.insert(a) {
		t.Error("first insert must succeed")
	}
	if s.insert(ir.Sym("a", ir.BoolType())) {
		t.Error("structurally equal assertion must be deduplicated")
	}
	if s.len() != 1 {
		t.Errorf("len = %d", s.len())
	}
}

func TestInvalidateBySymbol(t *testing.T) {
	int32t := ir.SignedBV(32)
	a, b := ir.Sym("a", int32t), ir.Sym("b", int32t)

	s := newAssertionSet()
	mentionsA := ir.NotEqual(a, ir.IntConst(0, int32t))
	mentionsB := ir.NotEqual(b, ir.IntConst(0, int32t))
	s.insert(mentionsA)
	s.insert(mentionsB)

	s.invalidate(a)

	if s.insert(mentionsB) {
		t.Error("assertion over b must survive invalidation of a")
	}
	if !s.insert(mentionsA) {
		t.Error("assertion over a must be dropped")
	}
}

func TestInvalidateDropsDereferences(t *testing.T) {
	int32t := ir.SignedBV(32)
	p := ir.Sym("p", ir.PointerTo(int32t))

	s := newAssertionSet()
	viaDeref := ir.NotEqual(ir.Deref(p), ir.IntConst(0, int32t))
	s.insert(viaDeref)

	// any symbol assignment drops assertions containing a dereference
	s.invalidate(ir.Sym("unrelated", int32t))

	if !s.insert(viaDeref) {
		t.Error("dereference assertions must be dropped on any assignment")
	}
}

func TestInvalidateRecursesThroughCompounds(t *testing.T) {
	int32t := ir.SignedBV(32)
	arrT := ir.ArrayType(int32t, ir.IntConst(4, ir.SizeType()))
	a := ir.Sym("a", arrT)
	idx := ir.IndexExpr(a, ir.IntConst(0, int32t))

	s := newAssertionSet()
	mentionsA := ir.NotEqual(a, ir.Sym("z", arrT))
	s.insert(mentionsA)

	// a[0] invalidates through the container symbol
	s.invalidate(idx)

	if !s.insert(mentionsA) {
		t.Error("index lhs must invalidate via its container")
	}
}

func TestInvalidateUnknownShapeClearsAll(t *testing.T) {
	int32t := ir.SignedBV(32)
	p := ir.Sym("p", ir.PointerTo(int32t))

	s := newAssertionSet()
	s.insert(ir.NotEqual(ir.Sym("a", int32t), ir.IntConst(0, int32t)))
	s.insert(ir.NotEqual(ir.Sym("b", int32t), ir.IntConst(0, int32t)))

	// assignment through a dereference gives up and clears everything
	s.invalidate(ir.Deref(p))

	if s.len() != 0 {
		t.Errorf("expected empty set, got %d entries", s.len())
	}
}
