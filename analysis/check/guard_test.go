package check

import (
	"testing"

	"github.com/ibex-verif/ibex/ir"
)

func TestGuardBasics(t *testing.T) {
	var g Guard

	if !g.IsTrue() {
		t.Error("fresh guard must be true")
	}
	if !g.AsExpr().IsTrue() {
		t.Error("empty conjunction must be true")
	}

	p := ir.Sym("p", ir.BoolType())
	q := ir.Sym("q", ir.BoolType())

	g.Add(p)
	if g.IsTrue() {
		t.Error("guard with a conjunct is not true")
	}
	if !g.AsExpr().Equal(p) {
		t.Errorf("single conjunct: %s", g.AsExpr())
	}

	g.Add(q)
	if !g.AsExpr().Equal(ir.And(p, q)) {
		t.Errorf("conjunction: %s", g.AsExpr())
	}
}

func TestGuardSaveRestore(t *testing.T) {
	var g Guard
	p := ir.Sym("p", ir.BoolType())
	q := ir.Sym("q", ir.BoolType())

	g.Add(p)
	save := g.Save()
	g.Add(q)
	g.Restore(save)

	if !g.AsExpr().Equal(p) {
		t.Errorf("restore must drop later conjuncts: %s", g.AsExpr())
	}
}

func TestGuardDropsTrivialConjuncts(t *testing.T) {
	var g Guard
	g.Add(ir.True())
	if !g.IsTrue() {
		t.Error("adding true must not grow the guard")
	}
}
