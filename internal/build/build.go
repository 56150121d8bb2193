// Package build orchestrates the native build of the vendored libraries:
// it selects the platform strategy, validates the dependency graph, runs every
// unit's phases in order and finally derives the link directives.
package build

import (
	"runtime"

	"github.com/goplus/cdeps/internal/graph"
	"github.com/goplus/cdeps/internal/link"
	"github.com/goplus/cdeps/internal/platform"
	"github.com/goplus/cdeps/internal/vendored"
	"github.com/goplus/cdeps/pkgs/buildsys"
	"github.com/qiniu/x/log"
)

// Options configures a Builder.
type Options struct {
	// VendorDir is the vendor root holding one source tree per unit.
	VendorDir string
	// GOOS overrides the platform identifier. Defaults to runtime.GOOS.
	GOOS string
	// Runner executes phases. Defaults to a non-verbose *buildsys.Exec.
	Runner buildsys.Runner
	// Units declares the build units. Defaults to vendored.Units.
	Units func(root string) []*graph.Unit
}

// Builder runs one orchestration. Units and phases run strictly one at a
// time: the vendored build tools share caches under the vendor root.
type Builder struct {
	graph  *graph.Graph
	runner buildsys.Runner
	emit   func(*graph.Graph) []link.Directive
}

// Step is one phase of one unit in execution order.
type Step struct {
	Unit  string
	Phase buildsys.Phase
}

// NewBuilder selects the strategy and validates the graph. No phase runs
// before both checks pass.
func NewBuilder(opts Options) (*Builder, error) {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	strategy, err := platform.Select(goos)
	if err != nil {
		return nil, err
	}

	units := opts.Units
	if units == nil {
		units = vendored.Units
	}
	g, err := graph.New(strategy, units(opts.VendorDir))
	if err != nil {
		return nil, err
	}

	runner := opts.Runner
	if runner == nil {
		runner = &buildsys.Exec{}
	}
	return &Builder{graph: g, runner: runner, emit: link.Emit}, nil
}

// Graph returns the validated dependency graph.
func (b *Builder) Graph() *graph.Graph {
	return b.graph
}

// Plan returns every phase that Build would run, in order.
func (b *Builder) Plan() []Step {
	var steps []Step
	for _, u := range b.graph.Order() {
		for _, p := range b.graph.Phases(u) {
			steps = append(steps, Step{Unit: u.Name, Phase: p})
		}
	}
	return steps
}

// Links returns the directives a successful build produces, without building.
func (b *Builder) Links() []link.Directive {
	return b.emit(b.graph)
}

// Build runs every unit's phases in dependency order and returns the link
// directives. The first failing phase aborts the run with a
// *buildsys.PhaseFailedError; nothing is retried and no directives are emitted.
func (b *Builder) Build() ([]link.Directive, error) {
	order := b.graph.Order()
	for i, u := range order {
		phases := b.graph.Phases(u)
		log.Infof("[%d/%d] building %s (%d phases)", i+1, len(order), u.Name, len(phases))
		for _, p := range phases {
			log.Debugf("%s: %s", u.Name, p.Label)
			if err := buildsys.RunPhase(b.runner, u.Name, p); err != nil {
				return nil, err
			}
		}
		log.Infof("built %s", u.Name)
	}
	return b.emit(b.graph), nil
}
