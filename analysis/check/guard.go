package check

import "github.com/ibex-verif/ibex/ir"

// Guard is the path condition accumulated during expression traversal. It
// only ever grows by conjuncts; disjunctive paths enter as negated
// conjuncts. Scoped use pairs Save with a deferred Restore.
type Guard struct {
	conjuncts []*ir.Expr
}

// Add appends a conjunct. Trivially-true conjuncts are dropped.
func (g *Guard) Add(p *ir.Expr) {
	if p.IsTrue() {
		return
	}
	g.conjuncts = append(g.conjuncts, p)
}

// Save returns a savepoint for Restore.
func (g *Guard) Save() int { return len(g.conjuncts) }

// Restore drops every conjunct added since the savepoint.
func (g *Guard) Restore(save int) { g.conjuncts = g.conjuncts[:save] }

// IsTrue reports whether the guard is trivially true.
func (g *Guard) IsTrue() bool { return len(g.conjuncts) == 0 }

// AsExpr materializes the guard as the conjunction of its conjuncts.
func (g *Guard) AsExpr() *ir.Expr {
	return ir.Conjunction(g.conjuncts)
}
