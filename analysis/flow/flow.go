// Package flow computes local pointer flow facts for a single function
// body: which lifetime class a pointer-typed variable may hold at each
// instruction, and which variables have their address taken. The checker
// consults these facts to prune pointer-validity conditions.
package flow

import (
	"github.com/benbjohnson/immutable"
	"github.com/spakin/disjoint"
	"golang.org/x/tools/container/intsets"

	"github.com/ibex-verif/ibex/ir"
	"github.com/ibex-verif/ibex/utils/worklist"
)

type state = *immutable.Map[int, Flags]

// Analysis holds the per-function fixpoint result. It is constructed once
// per function and read-only afterwards.
type Analysis struct {
	prog  *ir.Program
	ns    *ir.Namespace
	index map[string]int // tracked pointer symbol -> dense index
	elems []*disjoint.Element
	dirty intsets.Sparse
	idxOf map[*ir.Instruction]int
	entry []state // per instruction, state on entry
}

// NewAnalysis runs the flow analysis over a function body.
func NewAnalysis(fn *ir.Function, ns *ir.Namespace) *Analysis {
	a := &Analysis{
		prog:  fn.Body,
		ns:    ns,
		index: make(map[string]int),
		idxOf: make(map[*ir.Instruction]int),
	}
	a.collectSymbols()
	a.collectDirty()
	a.mergeAliases()
	a.fixpoint()
	return a
}

// collectSymbols assigns a dense index to every pointer-typed symbol
// mentioned in the body.
func (a *Analysis) collectSymbols() {
	visit := func(e *ir.Expr) {
		ir.HasSubexpr(e, func(sub *ir.Expr) bool {
			if sub.Kind() == ir.KSymbol && sub.Type().IsPointer() {
				if _, tracked := a.index[sub.Id()]; !tracked {
					a.index[sub.Id()] = len(a.elems)
					el := disjoint.NewElement()
					el.Data = len(a.elems)
					a.elems = append(a.elems, el)
				}
			}
			return false
		})
	}
	for _, i := range a.prog.Instructions {
		forEachExpr(i, visit)
	}
}

// collectDirty records every symbol whose address is taken anywhere in the
// body.
func (a *Analysis) collectDirty() {
	mark := func(e *ir.Expr) {
		ir.HasSubexpr(e, func(sub *ir.Expr) bool {
			if sub.Kind() == ir.KAddressOf {
				if root := addressRoot(sub.Op(0)); root != nil {
					if idx, tracked := a.index[root.Id()]; tracked {
						a.dirty.Insert(idx)
					} else {
						// Address-taken non-pointer variables are dirty too.
						a.index[root.Id()] = len(a.elems)
						el := disjoint.NewElement()
						el.Data = len(a.elems)
						a.elems = append(a.elems, el)
						a.dirty.Insert(len(a.elems) - 1)
					}
				}
			}
			return false
		})
	}
	for _, i := range a.prog.Instructions {
		forEachExpr(i, mark)
	}
}

func addressRoot(e *ir.Expr) *ir.Expr {
	for {
		switch e.Kind() {
		case ir.KSymbol:
			return e
		case ir.KIndex, ir.KMember:
			e = e.Op(0)
		default:
			return nil
		}
	}
}

// mergeAliases unions the classes of pointer variables copied into one
// another, so that facts degrade together.
func (a *Analysis) mergeAliases() {
	for _, i := range a.prog.Instructions {
		if i.Kind != ir.InstrAssign || i.Lhs == nil || i.Rhs == nil {
			continue
		}
		lhs, rhs := stripCasts(i.Lhs), stripCasts(i.Rhs)
		if lhs.Kind() == ir.KSymbol && rhs.Kind() == ir.KSymbol {
			li, lok := a.index[lhs.Id()]
			ri, rok := a.index[rhs.Id()]
			if lok && rok {
				disjoint.Union(a.elems[li], a.elems[ri])
			}
		}
	}
}

func stripCasts(e *ir.Expr) *ir.Expr {
	for e.Kind() == ir.KTypecast {
		e = e.Op(0)
	}
	return e
}

func (a *Analysis) class(idx int) int {
	return a.elems[idx].Find().Data.(int)
}

func (a *Analysis) initialState() state {
	m := immutable.NewMap[int, Flags](nil)
	for name, idx := range a.index {
		f := Uninitialized
		if sym, ok := a.ns.Lookup(name); ok && sym.StaticLifetime {
			f = Unknown
		}
		cls := a.class(idx)
		if old, ok := m.Get(cls); ok {
			f |= old
		}
		m = m.Set(cls, f)
	}
	return m
}

func merge(s1, s2 state) (state, bool) {
	changed := false
	out := s1
	itr := s2.Iterator()
	for !itr.Done() {
		k, v, _ := itr.Next()
		if old, ok := out.Get(k); ok {
			if old|v != old {
				out = out.Set(k, old|v)
				changed = true
			}
		} else {
			out = out.Set(k, v)
			changed = true
		}
	}
	return out, changed
}

func (a *Analysis) fixpoint() {
	n := len(a.prog.Instructions)
	a.entry = make([]state, n)
	for idx, i := range a.prog.Instructions {
		a.idxOf[i] = idx
	}
	if n == 0 {
		return
	}
	a.entry[0] = a.initialState()

	worklist.Start(0, func(idx int, add func(int)) {
		in := a.entry[idx]
		if in == nil {
			return
		}
		i := a.prog.Instructions[idx]
		out := a.transfer(i, in)
		for _, succ := range a.successors(idx) {
			if a.entry[succ] == nil {
				a.entry[succ] = out
				add(succ)
			} else if merged, changed := merge(a.entry[succ], out); changed {
				a.entry[succ] = merged
				add(succ)
			}
		}
	})
}

func (a *Analysis) successors(idx int) []int {
	i := a.prog.Instructions[idx]
	var succs []int
	switch i.Kind {
	case ir.InstrReturn, ir.InstrThrow, ir.InstrEndFunction:
		return nil
	case ir.InstrGoto:
		for _, t := range i.Targets {
			if ti, ok := a.idxOf[t]; ok {
				succs = append(succs, ti)
			}
		}
		if i.Cond == nil && len(i.Targets) > 0 {
			return succs
		}
	}
	if idx+1 < len(a.prog.Instructions) {
		succs = append(succs, idx+1)
	}
	return succs
}

func (a *Analysis) transfer(i *ir.Instruction, in state) state {
	switch i.Kind {
	case ir.InstrAssign:
		if i.Lhs == nil || i.Rhs == nil {
			return in
		}
		lhs := stripCasts(i.Lhs)
		if lhs.Kind() == ir.KSymbol {
			if idx, tracked := a.index[lhs.Id()]; tracked {
				return in.Set(a.class(idx), a.evalFlags(i.Rhs, in))
			}
		}
	case ir.InstrFunctionCall:
		if i.Result != nil {
			res := stripCasts(i.Result)
			if res.Kind() == ir.KSymbol {
				if idx, tracked := a.index[res.Id()]; tracked {
					f := Unknown
					if i.Callee.Kind() == ir.KSymbol &&
						(i.Callee.Id() == ir.MallocSymbol || i.Callee.Id() == "malloc") {
						f = DynamicHeap
					}
					return in.Set(a.class(idx), f)
				}
			}
		}
	case ir.InstrDead:
		if i.Lhs == nil {
			return in
		}
		if lhs := stripCasts(i.Lhs); lhs.Kind() == ir.KSymbol {
			if idx, tracked := a.index[lhs.Id()]; tracked {
				return in.Set(a.class(idx), Invalid)
			}
		}
	}
	return in
}

func (a *Analysis) evalFlags(e *ir.Expr, in state) Flags {
	switch e.Kind() {
	case ir.KConstant:
		if e.IsNullPointerConstant() {
			return Null
		}
		return IntegerAddress
	case ir.KAddressOf:
		root := addressRoot(e.Op(0))
		if root == nil {
			return Unknown
		}
		if sym, ok := a.ns.Lookup(root.Id()); ok && sym.StaticLifetime {
			return StaticLifetime
		}
		return DynamicLocal
	case ir.KSymbol:
		if idx, tracked := a.index[e.Id()]; tracked {
			if f, ok := in.Get(a.class(idx)); ok {
				return f
			}
		}
		return Unknown
	case ir.KTypecast:
		if e.Op(0).Type().IsBitvector() {
			return IntegerAddress
		}
		return a.evalFlags(e.Op(0), in)
	case ir.KIf:
		return a.evalFlags(e.Op(1), in) | a.evalFlags(e.Op(2), in)
	case ir.KPlus, ir.KMinus:
		// Pointer arithmetic keeps the lifetime class of the pointer
		// operand.
		for _, op := range e.Operands() {
			if op.Type().IsPointer() {
				return a.evalFlags(op, in)
			}
		}
		return Unknown
	}
	return Unknown
}

// Get returns the flow facts for the pointer expression at the given
// instruction. Expressions the analysis does not track answer Unknown.
func (a *Analysis) Get(i *ir.Instruction, pointer *ir.Expr) Flags {
	p := stripCasts(pointer)
	if p.Kind() != ir.KSymbol {
		return Unknown
	}
	idx, tracked := a.index[p.Id()]
	if !tracked {
		return Unknown
	}
	ii, ok := a.idxOf[i]
	if !ok || a.entry[ii] == nil {
		return Unknown
	}
	if f, ok := a.entry[ii].Get(a.class(idx)); ok {
		return f
	}
	return Unknown
}

// Dirty reports whether the symbol has its address taken somewhere in the
// function.
func (a *Analysis) Dirty(sym *ir.Expr) bool {
	if sym.Kind() != ir.KSymbol {
		return false
	}
	if idx, tracked := a.index[sym.Id()]; tracked {
		return a.dirty.Has(idx)
	}
	return false
}

// forEachExpr visits every expression payload of an instruction.
func forEachExpr(i *ir.Instruction, f func(*ir.Expr)) {
	for _, e := range []*ir.Expr{i.Lhs, i.Rhs, i.Callee, i.Result, i.Value, i.Cond} {
		if e != nil {
			f(e)
		}
	}
	for _, e := range i.Args {
		f(e)
	}
}
