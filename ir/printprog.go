package ir

import (
	"fmt"
	"strings"
)

// String renders one instruction on a single line.
func (i *Instruction) String() string {
	var sb strings.Builder
	for _, l := range i.Labels {
		sb.WriteString(l + ": ")
	}
	switch i.Kind {
	case InstrAssign:
		fmt.Fprintf(&sb, "ASSIGN %s := %s", i.Lhs, i.Rhs)
	case InstrFunctionCall:
		if i.Result != nil {
			fmt.Fprintf(&sb, "CALL %s := %s(%s)", i.Result, i.Callee, exprList(i.Args))
		} else {
			fmt.Fprintf(&sb, "CALL %s(%s)", i.Callee, exprList(i.Args))
		}
	case InstrReturn:
		if i.Value != nil {
			fmt.Fprintf(&sb, "RETURN %s", i.Value)
		} else {
			sb.WriteString("RETURN")
		}
	case InstrThrow:
		fmt.Fprintf(&sb, "THROW %s", i.Value)
	case InstrAssert:
		fmt.Fprintf(&sb, "ASSERT %s", i.Cond)
		if i.Loc != nil && i.Loc.Comment != "" {
			fmt.Fprintf(&sb, " // %s", i.Loc.Comment)
		}
	case InstrAssume:
		fmt.Fprintf(&sb, "ASSUME %s", i.Cond)
		if i.Loc != nil && i.Loc.Comment != "" {
			fmt.Fprintf(&sb, " // %s", i.Loc.Comment)
		}
	case InstrGoto:
		if i.Cond != nil {
			fmt.Fprintf(&sb, "IF %s THEN GOTO", i.Cond)
		} else {
			sb.WriteString("GOTO")
		}
	case InstrOther:
		fmt.Fprintf(&sb, "OTHER %s %s", i.Statement, i.Value)
	case InstrDead:
		fmt.Fprintf(&sb, "DEAD %s", i.Lhs)
	case InstrEndFunction:
		sb.WriteString("END_FUNCTION")
	case InstrSkip:
		sb.WriteString("SKIP")
	}
	return sb.String()
}

func exprList(es []*Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// String renders the program with one numbered instruction per line. Jump
// targets print as instruction numbers.
func (p *Program) String() string {
	num := make(map[*Instruction]int, len(p.Instructions))
	for idx, i := range p.Instructions {
		num[i] = idx
	}
	var sb strings.Builder
	for idx, i := range p.Instructions {
		fmt.Fprintf(&sb, "%3d: %s", idx, i)
		if len(i.Targets) > 0 {
			labels := make([]string, len(i.Targets))
			for ti, t := range i.Targets {
				if n, ok := num[t]; ok {
					labels[ti] = fmt.Sprint(n)
				} else {
					labels[ti] = "?"
				}
			}
			fmt.Fprintf(&sb, " %s", strings.Join(labels, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
