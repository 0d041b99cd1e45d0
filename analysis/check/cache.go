package check

import (
	"github.com/ibex-verif/ibex/ir"
	"github.com/ibex-verif/ibex/utils"
	"github.com/ibex-verif/ibex/utils/hmap"
)

// assertionSet deduplicates emitted guarded assertions within a
// straight-line region. Structural equality, not pointer identity.
type assertionSet struct {
	m *hmap.Map[*ir.Expr, struct{}]
}

func newAssertionSet() *assertionSet {
	return &assertionSet{
		m: hmap.NewMap[struct{}, *ir.Expr](utils.HashableHasher[*ir.Expr]()),
	}
}

// insert adds the assertion, reporting whether it was absent before.
func (s *assertionSet) insert(e *ir.Expr) bool {
	if _, present := s.m.GetOk(e); present {
		return false
	}
	s.m.Set(e, struct{}{})
	return true
}

func (s *assertionSet) clear() { s.m.Clear() }

func (s *assertionSet) len() int { return s.m.Len() }

// invalidate drops assertions that an assignment to lhs may falsify:
// for a symbol, every assertion mentioning it and every assertion
// containing a dereference; index and member recurse into the container;
// any other shape clears the set entirely.
func (s *assertionSet) invalidate(lhs *ir.Expr) {
	switch lhs.Kind() {
	case ir.KIndex, ir.KMember:
		s.invalidate(lhs.Op(0))
	case ir.KSymbol:
		id := lhs.Id()
		s.m.DeleteIf(func(e *ir.Expr, _ struct{}) bool {
			return ir.HasSymbol(e, id) || ir.HasSubexprKind(e, ir.KDereference)
		})
	default:
		// give up, clear all
		s.m.Clear()
	}
}
