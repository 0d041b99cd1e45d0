// Ibex instruments goto-programs with runtime-safety assertions: array
// bounds, pointer validity, arithmetic overflow, undefined shifts, NaN,
// division by zero, memory leaks and user error labels. The instrumented
// program is handed to a backend symbolic executor; Ibex also validates
// the structural shape of the counterexample traces it produces.
package main

import (
	"flag"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ibex-verif/ibex/analysis/check"
)

var (
	programPath = flag.String("program", "", "YAML goto-program to instrument")
	profilePath = flag.String("profile", "", "YAML configuration profile")

	boundsCheck     = flag.Bool("bounds-check", false, "enable array bounds checks")
	pointerCheck    = flag.Bool("pointer-check", false, "enable pointer checks")
	memoryLeakCheck = flag.Bool("memory-leak-check", false, "enable memory leak checks")
	divByZeroCheck  = flag.Bool("div-by-zero-check", false, "enable division by zero checks")
	signedOverflow  = flag.Bool("signed-overflow-check", false, "enable signed arithmetic over- and underflow checks")
	unsignedOverflow = flag.Bool("unsigned-overflow-check", false, "enable unsigned arithmetic over- and underflow checks")
	pointerOverflow = flag.Bool("pointer-overflow-check", false, "enable pointer arithmetic overflow checks")
	conversionCheck = flag.Bool("conversion-check", false, "enable numeric conversion checks")
	undefinedShift  = flag.Bool("undefined-shift-check", false, "enable undefined shift checks")
	floatOverflow   = flag.Bool("float-overflow-check", false, "enable floating-point overflow checks")
	nanCheck        = flag.Bool("nan-check", false, "enable NaN checks")

	retainTrivial  = flag.Bool("retain-trivial", false, "retain trivially-true assertions")
	assertToAssume = flag.Bool("assert-to-assume", false, "insert assumptions instead of assertions")
	noSimplify     = flag.Bool("no-simplify", false, "do not simplify emitted assertions")
	errorLabel     = flag.String("error-label", "", "comma-separated list of error labels")
	standard       = flag.String("standard", "c99", "language standard (c89, c99, c11, c++98, c++11, c++14)")

	dotOut    = flag.String("dot", "", "base name for control-flow graph export")
	dotFormat = flag.String("format", "svg", "graph export format (dot, svg, png)")
	metrics   = flag.Bool("metrics", false, "print per-class instrumentation metrics")
	verbose   = flag.Bool("verbose", false, "verbose output")
	noColorize = flag.Bool("no-colorize", false, "do not colorize output")
)

func buildConfig() check.Config {
	conf := check.DefaultConfig()
	if *profilePath != "" {
		var err error
		conf, err = check.LoadProfile(*profilePath)
		if err != nil {
			log.Fatalln(err)
		}
	}

	conf.BoundsCheck = conf.BoundsCheck || *boundsCheck
	conf.PointerCheck = conf.PointerCheck || *pointerCheck
	conf.MemoryLeakCheck = conf.MemoryLeakCheck || *memoryLeakCheck
	conf.DivByZeroCheck = conf.DivByZeroCheck || *divByZeroCheck
	conf.SignedOverflowCheck = conf.SignedOverflowCheck || *signedOverflow
	conf.UnsignedOverflowCheck = conf.UnsignedOverflowCheck || *unsignedOverflow
	conf.PointerOverflowCheck = conf.PointerOverflowCheck || *pointerOverflow
	conf.ConversionCheck = conf.ConversionCheck || *conversionCheck
	conf.UndefinedShiftCheck = conf.UndefinedShiftCheck || *undefinedShift
	conf.FloatOverflowCheck = conf.FloatOverflowCheck || *floatOverflow
	conf.NanCheck = conf.NanCheck || *nanCheck
	conf.RetainTrivial = conf.RetainTrivial || *retainTrivial
	conf.AssertToAssume = conf.AssertToAssume || *assertToAssume
	if *noSimplify {
		conf.Simplify = false
	}
	if *errorLabel != "" {
		conf.ErrorLabels = append(conf.ErrorLabels,
			strings.Split(*errorLabel, ",")...)
	}

	std, err := check.ParseStandard(*standard)
	if err != nil {
		log.Fatalln(err)
	}
	conf.Standard = std

	return conf
}

func main() {
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if *programPath == "" {
		log.Fatalln("No goto-program given; use -program")
	}

	fns, ns, err := LoadProgram(*programPath)
	if err != nil {
		log.Fatalln(err)
	}

	p := pipeline{fns: fns, ns: ns, conf: buildConfig()}

	if err := p.run(); err != nil {
		log.Fatalln(err)
	}

	p.print()

	if *metrics {
		gatherMetrics(fns, !*noColorize)
	}

	if *dotOut != "" {
		if err := p.exportDot(*dotOut, *dotFormat); err != nil {
			log.Fatalln(err)
		}
	}
}
