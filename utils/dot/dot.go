// Package dot renders instrumented goto-programs as dot graphs and,
// through graphviz, as images.
package dot

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/ibex-verif/ibex/ir"
)

// escape makes a label safe for a quoted dot string.
func escape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}

// ProgramToDot renders the control flow of a function body as a dot
// digraph. Every instruction becomes a node; fallthrough and jump edges
// are distinguished by style.
func ProgramToDot(name string, prog *ir.Program) []byte {
	num := make(map[*ir.Instruction]int, len(prog.Instructions))
	for idx, i := range prog.Instructions {
		num[i] = idx
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", name)
	fmt.Fprintf(&buf, "  node [shape=box, fontname=monospace];\n")

	for idx, i := range prog.Instructions {
		label := escape(i.String())
		attrs := ""
		switch i.Kind {
		case ir.InstrAssert:
			attrs = ", color=red"
		case ir.InstrAssume:
			attrs = ", color=blue"
		}
		fmt.Fprintf(&buf, "  n%d [label=\"%d: %s\"%s];\n", idx, idx, label, attrs)

		fallsThrough := true
		switch i.Kind {
		case ir.InstrReturn, ir.InstrThrow, ir.InstrEndFunction:
			fallsThrough = false
		case ir.InstrGoto:
			fallsThrough = i.Cond != nil
		}
		if fallsThrough && idx+1 < len(prog.Instructions) {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", idx, idx+1)
		}
		for _, t := range i.Targets {
			if ti, ok := num[t]; ok {
				fmt.Fprintf(&buf, "  n%d -> n%d [style=dashed];\n", idx, ti)
			}
		}
	}

	fmt.Fprintf(&buf, "}\n")
	return buf.Bytes()
}

// DotToImage renders a dot graph into an image file via graphviz,
// returning the written filename.
func DotToImage(outfname string, format string, dot []byte) (string, error) {
	g := graphviz.New()
	graph, err := graphviz.ParseBytes(dot)
	if err != nil {
		return "", err
	}
	defer func() {
		graph.Close()
		g.Close()
	}()

	img := fmt.Sprintf("%s.%s", outfname, format)
	if outfname == "" {
		f, err := os.CreateTemp("", "ibex-cfg-*."+format)
		if err != nil {
			return "", err
		}
		img = f.Name()
		f.Close()
	}
	if err := g.RenderFilename(graph, graphviz.Format(format), img); err != nil {
		return "", err
	}
	return img, nil
}
