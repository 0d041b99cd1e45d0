package ir

// SourceLocation is mutable per-instruction metadata. Emitted assertions
// receive fresh copies carrying their comment and property class.
type SourceLocation struct {
	File          string
	Line          string
	Column        string
	Function      string
	BytecodeIndex string

	Comment       string
	PropertyClass string
	UserProvided  bool

	// Pragmas of the form "disable:<flag>" attached by front-ends.
	Pragmas map[string]bool
}

// IsNil reports whether the location carries no position information.
func (l *SourceLocation) IsNil() bool {
	return l == nil ||
		(l.File == "" && l.Line == "" && l.Column == "" &&
			l.Function == "" && l.BytecodeIndex == "")
}

// Copy returns a shallow copy, sharing the pragma map.
func (l *SourceLocation) Copy() *SourceLocation {
	if l == nil {
		return &SourceLocation{}
	}
	c := *l
	return &c
}

// InstrKind enumerates goto-program instruction kinds.
type InstrKind uint8

const (
	InstrAssign InstrKind = iota
	InstrFunctionCall
	InstrReturn
	InstrThrow
	InstrAssert
	InstrAssume
	InstrGoto
	InstrOther
	InstrDead
	InstrEndFunction
	InstrSkip
)

var instrNames = [...]string{
	InstrAssign:       "ASSIGN",
	InstrFunctionCall: "CALL",
	InstrReturn:       "RETURN",
	InstrThrow:        "THROW",
	InstrAssert:       "ASSERT",
	InstrAssume:       "ASSUME",
	InstrGoto:         "GOTO",
	InstrOther:        "OTHER",
	InstrDead:         "DEAD",
	InstrEndFunction:  "END_FUNCTION",
	InstrSkip:         "SKIP",
}

func (k InstrKind) String() string { return instrNames[k] }

// Other-instruction statements.
const (
	StatementExpression = "expression"
	StatementPrintf     = "printf"
)

// Instruction is one goto-program instruction. Jump targets reference other
// instructions by pointer identity, which instruction insertion preserves.
type Instruction struct {
	Kind InstrKind

	// Assign and Dead.
	Lhs *Expr
	Rhs *Expr

	// FunctionCall.
	Callee *Expr
	Args   []*Expr
	Result *Expr // optional

	// Return value, Throw operand (a unary wrapper) or Other code.
	Value *Expr

	// Other statement discriminator (expression or printf).
	Statement string

	// Goto, Assert and Assume condition.
	Cond *Expr

	Targets []*Instruction
	Labels  []string
	Loc     *SourceLocation

	// isTarget is set by Program.ComputeTargets.
	isTarget bool
}

// HasCondition reports whether the instruction kind carries a condition.
func (i *Instruction) HasCondition() bool {
	switch i.Kind {
	case InstrGoto, InstrAssert, InstrAssume:
		return i.Cond != nil
	}
	return false
}

func (i *Instruction) Condition() *Expr { return i.Cond }

func (i *Instruction) SetCondition(e *Expr) { i.Cond = e }

// IsTarget reports whether some goto jumps to this instruction.
func (i *Instruction) IsTarget() bool { return i.isTarget }

// TurnIntoSkip erases the instruction's payload, keeping labels and targets
// intact so that jumps to it survive.
func (i *Instruction) TurnIntoSkip() {
	i.Kind = InstrSkip
	i.Lhs, i.Rhs, i.Callee, i.Result, i.Value, i.Cond = nil, nil, nil, nil, nil, nil
	i.Args = nil
	i.Statement = ""
}

// HasLabel reports whether the instruction carries the given label.
func (i *Instruction) HasLabel(label string) bool {
	for _, l := range i.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Program is the instruction list of a single function body.
type Program struct {
	Instructions []*Instruction
}

// InsertBefore splices ins in front of position idx. Jump targets are
// unaffected since instructions are referenced by pointer.
func (p *Program) InsertBefore(idx int, ins ...*Instruction) {
	p.Instructions = append(p.Instructions[:idx],
		append(append([]*Instruction{}, ins...), p.Instructions[idx:]...)...)
}

// Append adds an instruction at the end.
func (p *Program) Append(ins *Instruction) {
	p.Instructions = append(p.Instructions, ins)
}

// ComputeTargets recomputes the is-target flag of every instruction.
func (p *Program) ComputeTargets() {
	for _, i := range p.Instructions {
		i.isTarget = false
	}
	for _, i := range p.Instructions {
		for _, t := range i.Targets {
			t.isTarget = true
		}
	}
}

// CompactSkips removes skip instructions, retargeting jumps to the next
// non-skip instruction. A trailing skip that cannot be retargeted past is
// kept.
func (p *Program) CompactSkips() {
	next := make(map[*Instruction]*Instruction, len(p.Instructions))
	var succ *Instruction
	for idx := len(p.Instructions) - 1; idx >= 0; idx-- {
		i := p.Instructions[idx]
		if i.Kind == InstrSkip && succ != nil {
			next[i] = succ
		} else {
			succ = i
		}
	}

	resolve := func(i *Instruction) *Instruction {
		for {
			n, ok := next[i]
			if !ok {
				return i
			}
			i = n
		}
	}

	for _, i := range p.Instructions {
		for ti, t := range i.Targets {
			i.Targets[ti] = resolve(t)
		}
	}

	kept := p.Instructions[:0]
	for _, i := range p.Instructions {
		if _, removable := next[i]; !removable {
			kept = append(kept, i)
			continue
		}
		// Skips with labels stay referable through their successor; the
		// labels migrate there.
		if len(i.Labels) > 0 {
			n := next[i]
			n.Labels = append(n.Labels, i.Labels...)
		}
	}
	p.Instructions = kept
	p.ComputeTargets()
}

// Function pairs a function identifier with its body.
type Function struct {
	Name string
	Body *Program
}

// Functions is a goto-program container, ordered for reproducibility.
type Functions struct {
	List []*Function
}

func (fs *Functions) Add(f *Function) { fs.List = append(fs.List, f) }

// Lookup finds a function by name.
func (fs *Functions) Lookup(name string) (*Function, bool) {
	for _, f := range fs.List {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}
