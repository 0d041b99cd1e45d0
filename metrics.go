package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"

	"github.com/ibex-verif/ibex/ir"
)

// gatherMetrics counts the instrumentation result per property class and
// prints a summary table.
func gatherMetrics(fns *ir.Functions, colorize bool) {
	perClass := make(map[string]int)
	asserts, assumes := 0, 0

	for _, fn := range fns.List {
		for _, i := range fn.Body.Instructions {
			switch i.Kind {
			case ir.InstrAssert:
				asserts++
			case ir.InstrAssume:
				assumes++
			default:
				continue
			}
			if i.Loc != nil && i.Loc.PropertyClass != "" {
				perClass[i.Loc.PropertyClass]++
			}
		}
	}

	header := "================ Results ====================="
	if colorize {
		header = color.CyanString(header)
	}
	fmt.Println(header)
	fmt.Printf("Assertions: %d, assumptions: %d\n", asserts, assumes)

	classes := make([]string, 0, len(perClass))
	for class := range perClass {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	for _, class := range classes {
		fmt.Printf("  %-24s %d\n", class, perClass[class])
	}
}
