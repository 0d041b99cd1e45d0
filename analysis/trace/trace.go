// Package trace models counterexample traces produced by the backend
// symbolic executor and validates their structure before they are turned
// into user-facing output.
package trace

import "github.com/ibex-verif/ibex/ir"

// StepKind enumerates trace step kinds.
type StepKind uint8

const (
	StepAssignment StepKind = iota
	StepDeclaration
	StepAssume
	StepAssert
	StepGoto
	StepFunctionCall
	StepFunctionReturn
	StepLocation
	StepOutput
	StepInput
)

// Step is one event of a counterexample trace.
type Step struct {
	Kind StepKind

	// FullLHS is the (possibly composite) lvalue assigned by an
	// assignment or declaration step; FullLHSValue is the value it takes.
	FullLHS      *ir.Expr
	FullLHSValue *ir.Expr

	Loc *ir.SourceLocation

	// Hidden steps are bookkeeping not shown to the user.
	Hidden bool
}

// IsAssignment and IsDecl classify steps the validator inspects.
func (s *Step) IsAssignment() bool { return s.Kind == StepAssignment }
func (s *Step) IsDecl() bool       { return s.Kind == StepDeclaration }

// Trace is an ordered step sequence.
type Trace struct {
	Steps []*Step
}
