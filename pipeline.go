package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/ibex-verif/ibex/analysis/check"
	"github.com/ibex-verif/ibex/ir"
	"github.com/ibex-verif/ibex/utils/dot"
)

// pipeline wraps one instrumentation run: a loaded goto-program, its
// namespace and the effective configuration.
type pipeline struct {
	fns  *ir.Functions
	ns   *ir.Namespace
	conf check.Config
}

// run collects the allocation catalog and instruments every function in place.
func (p pipeline) run() error {
	checker := check.NewChecker(p.ns, p.conf)

	log.Info("Collecting explicit allocations...")
	if err := checker.CollectAllocations(p.fns); err != nil {
		return err
	}
	log.Infof("%d explicit allocation(s)", len(checker.Allocations()))

	for _, fn := range p.fns.List {
		log.Debugf("Checking %s", fn.Name)
		if err := checker.CheckFunction(fn); err != nil {
			return fmt.Errorf("%s: %w", fn.Name, err)
		}
	}
	return nil
}

// print writes the instrumented program to stdout.
func (p pipeline) print() {
	for _, fn := range p.fns.List {
		fmt.Printf("%s:\n%s\n", fn.Name, fn.Body)
	}
}

// exportDot renders every function body as a dot graph, and optionally as
// an image.
func (p pipeline) exportDot(base, format string) error {
	for _, fn := range p.fns.List {
		graph := dot.ProgramToDot(fn.Name, fn.Body)
		name := base + "-" + fn.Name

		if format == "dot" {
			if err := os.WriteFile(name+".dot", graph, 0644); err != nil {
				return err
			}
			log.Infof("Wrote %s.dot", name)
			continue
		}

		img, err := dot.DotToImage(name, format, graph)
		if err != nil {
			return err
		}
		log.Infof("Wrote %s", img)
	}
	return nil
}
