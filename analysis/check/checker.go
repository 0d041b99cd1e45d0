// Package check implements the safety instrumentation pass: it walks every
// instruction of a goto-program and splices in assertions encoding the
// runtime-safety properties selected by the configuration.
package check

import (
	"fmt"

	"github.com/ibex-verif/ibex/analysis/flow"
	"github.com/ibex-verif/ibex/ir"
)

// Checker instruments one goto-program. Construct with NewChecker, then
// CollectAllocations once, then CheckFunction per function.
type Checker struct {
	ns *ir.Namespace

	enableBoundsCheck           bool
	enablePointerCheck          bool
	enableMemoryLeakCheck       bool
	enableDivByZeroCheck        bool
	enableSignedOverflowCheck   bool
	enableUnsignedOverflowCheck bool
	enablePointerOverflowCheck  bool
	enableConversionCheck       bool
	enableUndefinedShiftCheck   bool
	enableFloatOverflowCheck    bool
	enableNanCheck              bool
	enableSimplify              bool
	retainTrivial               bool
	enableAssertToAssume        bool
	enableAssertions            bool
	enableBuiltInAssertions     bool
	enableAssumptions           bool
	errorLabels                 []string
	standard                    Standard

	allocations []Allocation

	mode       ir.Mode
	localFlow  *flow.Analysis
	current    *ir.Instruction
	assertions *assertionSet
	newCode    []*ir.Instruction
}

// NewChecker builds a checker over the namespace with the given
// configuration.
func NewChecker(ns *ir.Namespace, conf Config) *Checker {
	return &Checker{
		ns:                          ns,
		enableBoundsCheck:           conf.BoundsCheck,
		enablePointerCheck:          conf.PointerCheck,
		enableMemoryLeakCheck:       conf.MemoryLeakCheck,
		enableDivByZeroCheck:        conf.DivByZeroCheck,
		enableSignedOverflowCheck:   conf.SignedOverflowCheck,
		enableUnsignedOverflowCheck: conf.UnsignedOverflowCheck,
		enablePointerOverflowCheck:  conf.PointerOverflowCheck,
		enableConversionCheck:       conf.ConversionCheck,
		enableUndefinedShiftCheck:   conf.UndefinedShiftCheck,
		enableFloatOverflowCheck:    conf.FloatOverflowCheck,
		enableNanCheck:              conf.NanCheck,
		enableSimplify:              conf.Simplify,
		retainTrivial:               conf.RetainTrivial,
		enableAssertToAssume:        conf.AssertToAssume,
		enableAssertions:            conf.Assertions,
		enableBuiltInAssertions:     conf.BuiltInAssertions,
		enableAssumptions:           conf.Assumptions,
		errorLabels:                 conf.ErrorLabels,
		standard:                    conf.Standard,
		assertions:                  newAssertionSet(),
	}
}

// fatalError unwinds the pass on structural malformation.
type fatalError struct{ msg string }

func (e *fatalError) Error() string { return e.msg }

func fatalf(format string, args ...interface{}) {
	panic(&fatalError{fmt.Sprintf(format, args...)})
}

// Allocations exposes the collected catalog.
func (c *Checker) Allocations() []Allocation { return c.allocations }

// emit includes the asserted expression in the code, conditioned by the
// guard: the assertion is simplified, trivially-true properties are
// dropped, the guard becomes the antecedent, and duplicates within the
// current cache region are suppressed.
func (c *Checker) emit(
	asserted *ir.Expr,
	comment, propertyClass string,
	loc *ir.SourceLocation,
	src *ir.Expr,
	g *Guard,
) {
	simplified := asserted
	if c.enableSimplify {
		simplified = ir.Simplify(asserted)
	}

	if !c.retainTrivial && simplified.IsTrue() {
		return
	}

	guarded := simplified
	if !g.IsTrue() {
		guarded = ir.Implies(g.AsExpr(), simplified)
	}

	if !c.assertions.insert(guarded) {
		return
	}

	kind := ir.InstrAssert
	if c.enableAssertToAssume {
		kind = ir.InstrAssume
	}
	newLoc := loc.Copy()
	newLoc.Comment = comment + " in " + src.String()
	newLoc.PropertyClass = propertyClass
	c.newCode = append(c.newCode, &ir.Instruction{
		Kind: kind,
		Cond: guarded,
		Loc:  newLoc,
	})
}

// invalidate removes all cached assertions an assignment to lhs may
// falsify.
func (c *Checker) invalidate(lhs *ir.Expr) {
	c.assertions.invalidate(lhs)
}

func locOf(e *ir.Expr) *ir.SourceLocation {
	if l := e.FindLoc(); l != nil {
		return l
	}
	return &ir.SourceLocation{}
}

// CheckFunction instruments a single function body. The error reports a
// fatal structural malformation; the body may have been partially patched
// in that case and should be discarded.
func (c *Checker) CheckFunction(fn *ir.Function) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(*fatalError); ok {
				err = fe
				return
			}
			panic(r)
		}
	}()

	c.assertions.clear()

	sym, ok := c.ns.Lookup(fn.Name)
	if !ok {
		return fmt.Errorf("function symbol %q not in namespace", fn.Name)
	}
	c.mode = sym.Mode

	c.localFlow = flow.NewAnalysis(fn, c.ns)

	body := fn.Body
	body.ComputeTargets()

	didSomething := false

	for idx := 0; idx < len(body.Instructions); idx++ {
		i := body.Instructions[idx]
		c.current = i
		c.newCode = nil

		var pragmas flagReset
		c.applyPragmas(&pragmas, i.Loc)

		// We clear all recorded assertions if
		// 1) we want to generate all assertions or
		// 2) the instruction is a branch target.
		if c.retainTrivial || i.IsTarget() {
			c.assertions.clear()
		}

		if i.HasCondition() {
			c.Check(i.Condition())

			if hasROkWOk(i.Condition()) {
				if cond, changed := c.rwOkCheck(i.Condition()); changed {
					i.SetCondition(cond)
				}
			}
		}

		// magic ERROR label?
		for _, label := range c.errorLabels {
			if i.HasLabel(label) {
				kind := ir.InstrAssert
				if c.enableAssertToAssume {
					kind = ir.InstrAssume
				}
				loc := i.Loc.Copy()
				loc.PropertyClass = "error label"
				loc.Comment = "error label " + label
				loc.UserProvided = true
				c.newCode = append(c.newCode, &ir.Instruction{
					Kind: kind,
					Cond: ir.False(),
					Loc:  loc,
				})
			}
		}

		switch i.Kind {
		case ir.InstrOther:
			switch i.Statement {
			case ir.StatementExpression:
				c.Check(i.Value)
			case ir.StatementPrintf:
				for _, op := range i.Args {
					c.Check(op)
				}
			}

		case ir.InstrAssign:
			c.Check(i.Lhs)
			c.Check(i.Rhs)

			// the LHS might invalidate any assertion
			c.invalidate(i.Lhs)

			if hasROkWOk(i.Rhs) {
				if rhs, changed := c.rwOkCheck(i.Rhs); changed {
					i.Rhs = rhs
				}
			}

		case ir.InstrFunctionCall:
			// for Java, need to check whether 'this' is null
			// on non-static method invocations
			if c.mode == ir.ModeJava && c.enablePointerCheck &&
				len(i.Args) > 0 && i.Callee.Type().IsCode() &&
				i.Callee.Type().HasThis() {
				c.checkThisNotNull(i)
			}

			if i.Result != nil {
				c.Check(i.Result)
			}
			c.Check(i.Callee)
			for _, op := range i.Args {
				c.Check(op)
			}

			// the call might invalidate any assertion
			c.assertions.clear()

		case ir.InstrReturn:
			if i.Value != nil {
				c.Check(i.Value)
				// the return value may invalidate cached assertions
				c.invalidate(i.Value)

				if hasROkWOk(i.Value) {
					if v, changed := c.rwOkCheck(i.Value); changed {
						i.Value = v
					}
				}
			}

		case ir.InstrThrow:
			if i.Value != nil && len(i.Value.Operands()) == 1 &&
				i.Value.Op(0).Type().IsPointer() {
				// must not throw NULL
				pointer := i.Value.Op(0)
				notNull := ir.NotEqual(pointer, ir.NullPointer(pointer.Type()))
				c.emit(notNull, "throwing null", "pointer dereference",
					i.Loc, pointer, &Guard{})
			}

			// this has no successor
			c.assertions.clear()

		case ir.InstrAssert:
			userProvided := i.Loc != nil && i.Loc.UserProvided
			isErrorLabel := i.Loc != nil && i.Loc.PropertyClass == "error label"
			if (userProvided && !c.enableAssertions && !isErrorLabel) ||
				(!userProvided && !c.enableBuiltInAssertions) {
				i.TurnIntoSkip()
				didSomething = true
			}

		case ir.InstrAssume:
			if !c.enableAssumptions {
				i.TurnIntoSkip()
				didSomething = true
			}

		case ir.InstrDead:
			if c.enablePointerCheck {
				if i.Lhs == nil || i.Lhs.Kind() != ir.KSymbol {
					fatalf("DEAD expects a symbol operand")
				}
				if c.localFlow.Dirty(i.Lhs) {
					// need to mark the dead variable as dead
					lhs := c.ns.MustLookup(ir.DeadObjectSymbol).SymbolExpr()
					addr := ir.ConditionalCast(ir.AddressOf(i.Lhs), lhs.Type())
					rhs := ir.IfExpr(ir.Nondet(ir.BoolType()), addr, lhs)
					c.newCode = append(c.newCode, &ir.Instruction{
						Kind: ir.InstrAssign,
						Lhs:  lhs,
						Rhs:  rhs,
						Loc:  i.Loc.Copy(),
					})
				}
			}

		case ir.InstrEndFunction:
			if fn.Name == ir.EntryPoint && c.enableMemoryLeakCheck {
				leak := c.ns.MustLookup(ir.MemoryLeakSymbol).SymbolExpr()

				// add self-assignment to get helpful counterexample output
				c.newCode = append(c.newCode, &ir.Instruction{
					Kind: ir.InstrAssign,
					Lhs:  leak,
					Rhs:  leak,
				})

				loc := &ir.SourceLocation{Function: fn.Name}
				eq := ir.Equal(leak, ir.NullPointer(leak.Type()))
				c.emit(eq, "dynamically allocated memory never freed",
					"memory-leak", loc, eq, &Guard{})
			}
		}

		for _, patched := range c.newCode {
			if patched.Loc.IsNil() {
				c.propagateLoc(patched, i.Loc)
			}
		}

		// insert new instructions -- make sure targets are not moved
		if len(c.newCode) > 0 {
			didSomething = true
			body.InsertBefore(idx, c.newCode...)
			idx += len(c.newCode)
			c.newCode = nil
		}

		pragmas.restore()
	}

	if didSomething {
		body.CompactSkips()
	}
	return nil
}

func (c *Checker) checkThisNotNull(i *ir.Instruction) {
	pointer := i.Args[0]
	flags := c.localFlow.Get(c.current, pointer)
	if flags.IsUnknown() || flags.IsNull() {
		notNull := ir.NotEqual(pointer, ir.NullPointer(pointer.Type()))
		c.emit(notNull, "this is null on method invocation",
			"pointer dereference", i.Loc, pointer, &Guard{})
	}
}

// propagateLoc copies position metadata from the source instruction onto a
// patched instruction with no position of its own.
func (c *Checker) propagateLoc(patched *ir.Instruction, from *ir.SourceLocation) {
	if from == nil {
		return
	}
	loc := patched.Loc
	if loc == nil {
		loc = &ir.SourceLocation{}
		patched.Loc = loc
	}
	if from.File != "" {
		loc.File = from.File
	}
	if from.Line != "" {
		loc.Line = from.Line
	}
	if from.Function != "" {
		loc.Function = from.Function
	}
	if from.Column != "" {
		loc.Column = from.Column
	}
	if from.BytecodeIndex != "" {
		loc.BytecodeIndex = from.BytecodeIndex
	}
}

// pragmaFlags maps disable-pragma names to the flag they reset.
func (c *Checker) pragmaFlags() map[string]*bool {
	return map[string]*bool{
		"disable:bounds-check":            &c.enableBoundsCheck,
		"disable:pointer-check":           &c.enablePointerCheck,
		"disable:memory-leak-check":       &c.enableMemoryLeakCheck,
		"disable:div-by-zero-check":       &c.enableDivByZeroCheck,
		"disable:signed-overflow-check":   &c.enableSignedOverflowCheck,
		"disable:unsigned-overflow-check": &c.enableUnsignedOverflowCheck,
		"disable:pointer-overflow-check":  &c.enablePointerOverflowCheck,
		"disable:float-overflow-check":    &c.enableFloatOverflowCheck,
		"disable:conversion-check":        &c.enableConversionCheck,
		"disable:undefined-shift-check":   &c.enableUndefinedShiftCheck,
		"disable:nan-check":               &c.enableNanCheck,
	}
}

func (c *Checker) applyPragmas(r *flagReset, loc *ir.SourceLocation) {
	if loc == nil || len(loc.Pragmas) == 0 {
		return
	}
	flags := c.pragmaFlags()
	for name, on := range loc.Pragmas {
		if !on {
			continue
		}
		if flag, known := flags[name]; known {
			r.set(flag, false)
		}
	}
}

func hasROkWOk(e *ir.Expr) bool {
	return ir.HasSubexpr(e, func(sub *ir.Expr) bool {
		return sub.Kind() == ir.KROk || sub.Kind() == ir.KWOk
	})
}
