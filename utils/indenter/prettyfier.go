package indenter

import (
	"fmt"
	"strings"
)

// Indenter builds indentation-aware multi-line renderings of tree-shaped
// values. A node starts a line at the current level; nesting pushes one
// level.
type Indenter struct {
	sb    strings.Builder
	level int
}

func New() *Indenter {
	return &Indenter{}
}

func (i *Indenter) indent() string {
	return strings.Repeat("  ", i.level)
}

// Start begins the rendering with a header line.
func (i *Indenter) Start(str string) *Indenter {
	i.sb.WriteString(str)
	return i
}

// Line emits one indented line.
func (i *Indenter) Line(format string, args ...interface{}) *Indenter {
	i.sb.WriteString("\n" + i.indent() + fmt.Sprintf(format, args...))
	return i
}

// Nest renders the given thunk one level deeper.
func (i *Indenter) Nest(f func(*Indenter)) *Indenter {
	i.level++
	f(i)
	i.level--
	return i
}

// NestSep renders the stringers one level deeper, separated by sep.
func (i *Indenter) NestSep(sep string, strs ...fmt.Stringer) *Indenter {
	if len(strs) == 1 {
		i.sb.WriteString(strs[0].String())
		return i
	}
	i.level++
	for idx, str := range strs {
		i.sb.WriteString("\n" + i.indent() + str.String())
		if idx < len(strs)-1 {
			i.sb.WriteString(sep)
		}
	}
	i.level--
	i.sb.WriteString("\n")
	return i
}

// End appends a trailing string and renders the result.
func (i *Indenter) End(str string) string {
	i.sb.WriteString(str)
	return i.sb.String()
}

func (i *Indenter) String() string {
	return i.sb.String()
}
