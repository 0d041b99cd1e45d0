package trace

import (
	"fmt"

	"github.com/ibex-verif/ibex/ir"
)

// Validate checks that the structure of each assignment or declaration
// step matches the shapes the trace builder relies on. The first
// violation is returned as an error naming the offending side and
// embedding a pretty-printed rendering of the expression.
func Validate(t *Trace, ns *ir.Namespace, runCheck bool) error {
	if !runCheck {
		return nil
	}
	for _, step := range t.Steps {
		if err := checkStepAssumptions(step); err != nil {
			return err
		}
	}
	return nil
}

func checkStepAssumptions(step *Step) error {
	if !step.IsAssignment() && !step.IsDecl() {
		return nil
	}
	if err := checkLHSAssumptions(skipTypecast(step.FullLHS)); err != nil {
		return err
	}
	return checkRHSAssumptions(skipTypecast(step.FullLHSValue))
}

func violation(side string, e *ir.Expr, reason string) error {
	return fmt.Errorf("%s: %s\n%s", side, reason, ir.Pretty(e))
}

func skipTypecast(e *ir.Expr) *ir.Expr {
	for e != nil && e.Kind() == ir.KTypecast {
		e = e.Op(0)
	}
	return e
}

// checkSymbolStructure reports whether the expression is a symbol with a
// non-empty identifier.
func checkSymbolStructure(e *ir.Expr) bool {
	return e != nil && e.Kind() == ir.KSymbol && e.Id() != ""
}

// mayBeLvalue reports whether the expression is a symbol or an expression
// whose first operand can contain a nested symbol.
func mayBeLvalue(e *ir.Expr) bool {
	switch e.Kind() {
	case ir.KMember, ir.KIndex, ir.KAddressOf, ir.KTypecast, ir.KSymbol,
		ir.KByteExtractLE, ir.KByteExtractBE:
		return true
	}
	return false
}

// innerSymbolExpr recursively extracts the first operand of an expression
// until it reaches a symbol and returns it, or nil.
func innerSymbolExpr(e *ir.Expr) *ir.Expr {
	for len(e.Operands()) > 0 {
		e = e.Op(0)
		if !mayBeLvalue(e) {
			return nil
		}
	}
	if !checkSymbolStructure(e) {
		return nil
	}
	return e
}

// checkMemberStructure reports whether the member expression's
// first-operand chain reaches a symbol with a non-empty identifier.
func checkMemberStructure(e *ir.Expr) bool {
	if len(e.Operands()) == 0 {
		return false
	}
	return innerSymbolExpr(e) != nil
}

func validLHSExprHighLevel(lhs *ir.Expr) bool {
	switch lhs.Kind() {
	case ir.KMember, ir.KSymbol, ir.KIndex, ir.KByteExtractLE:
		return true
	}
	return false
}

func validRHSExprHighLevel(rhs *ir.Expr) bool {
	switch rhs.Kind() {
	case ir.KStruct, ir.KArray, ir.KConstant, ir.KAddressOf, ir.KSymbol,
		ir.KArrayList, ir.KByteExtractLE:
		return true
	}
	return false
}

// canEvaluateToConstant reports whether the expression, stripped of
// typecasts, is a constant, a symbol, or a sum.
func canEvaluateToConstant(e *ir.Expr) bool {
	switch skipTypecast(e).Kind() {
	case ir.KConstant, ir.KSymbol, ir.KPlus:
		return true
	}
	return false
}

// checkIndexStructure reports whether the expression indexes a symbol
// array with a constant or symbol index value.
func checkIndexStructure(e *ir.Expr) bool {
	return (e.Kind() == ir.KIndex || e.Kind() == ir.KByteExtractLE) &&
		len(e.Operands()) == 2 &&
		checkSymbolStructure(e.Op(0)) &&
		canEvaluateToConstant(e.Op(1))
}

// checkStructStructure reports whether the first operand is a nested
// struct or a constant, and the remaining operands are all constants.
func checkStructStructure(e *ir.Expr) bool {
	ops := e.Operands()
	if len(ops) == 0 {
		return false
	}
	if ops[0].Kind() == ir.KStruct {
		checkStructStructure(ops[0])
	} else if ops[0].Kind() != ir.KConstant {
		return false
	}
	for _, op := range ops[1:] {
		if op.Kind() != ir.KConstant {
			return false
		}
	}
	return true
}

// checkAddressStructure reports whether an address-of reaches an inner
// symbol.
func checkAddressStructure(e *ir.Expr) bool {
	sym := innerSymbolExpr(e)
	return sym != nil && checkSymbolStructure(sym)
}

// checkConstantStructure reports whether the constant has an operand whose
// type-stripped head is a constant, address-of or sum, or no operands and
// a non-empty value.
func checkConstantStructure(e *ir.Expr) bool {
	if len(e.Operands()) > 0 {
		switch skipTypecast(e.Op(0)).Kind() {
		case ir.KConstant, ir.KAddressOf, ir.KPlus:
			return true
		}
		return false
	}
	return e.Value() != nil || e.Id() != ""
}

func checkLHSAssumptions(lhs *ir.Expr) error {
	if lhs == nil {
		return fmt.Errorf("LHS: missing expression")
	}
	if !validLHSExprHighLevel(lhs) {
		return violation("LHS", lhs, "unsupported expression")
	}
	switch lhs.Kind() {
	case ir.KMember:
		if !checkMemberStructure(lhs) {
			return violation("LHS", lhs,
				"expecting a member with nested symbol operand")
		}
	case ir.KSymbol:
		if !checkSymbolStructure(lhs) {
			return violation("LHS", lhs,
				"expecting a symbol with non-empty identifier")
		}
	case ir.KIndex:
		if !checkIndexStructure(lhs) {
			return violation("LHS", lhs,
				"expecting an index expression with a symbol array and constant or symbol index value")
		}
	case ir.KByteExtractLE:
		if !checkIndexStructure(lhs) {
			return violation("LHS", lhs,
				"expecting a byte extract expression with a symbol array and constant or symbol index value")
		}
	default:
		return violation("LHS", lhs, "expression does not meet any trace assumptions")
	}
	return nil
}

func checkRHSAssumptions(rhs *ir.Expr) error {
	if rhs == nil {
		return fmt.Errorf("RHS: missing expression")
	}
	if !validRHSExprHighLevel(rhs) {
		return violation("RHS", rhs, "unsupported expression")
	}
	switch rhs.Kind() {
	case ir.KAddressOf:
		if !checkAddressStructure(rhs) {
			return violation("RHS", rhs,
				"expecting an address of with nested symbol")
		}
	case ir.KSymbol:
		if !checkSymbolStructure(rhs) {
			return violation("RHS", rhs,
				"expecting a symbol with non-empty identifier")
		}
	case ir.KStruct:
		if !checkStructStructure(rhs) {
			return violation("RHS", rhs,
				"expecting all non-base class operands to be constants")
		}
	case ir.KArray, ir.KArrayList:
		// seems no check is required.
	case ir.KConstant:
		if !checkConstantStructure(rhs) {
			return violation("RHS", rhs,
				"expecting the first operand of a constant expression to be a constant, address_of or plus expression, or no operands and a non-empty value")
		}
	case ir.KByteExtractLE:
		if len(rhs.Operands()) != 2 {
			return violation("RHS", rhs,
				"expecting a byte extract with two operands")
		}
		if ir.Simplify(rhs.Op(0)).Kind() != ir.KConstant {
			return violation("RHS", rhs,
				"expecting a byte extract with constant value")
		}
		if ir.Simplify(rhs.Op(1)).Kind() != ir.KConstant {
			return violation("RHS", rhs,
				"expecting a byte extract with constant index")
		}
	default:
		return violation("RHS", rhs, "expression does not meet any trace assumptions")
	}
	return nil
}
