// Package link derives the linker directives needed to statically link the
// vendored libraries into the final binary.
package link

import (
	"github.com/goplus/cdeps/internal/graph"
)

// Directive is a (search path, library) pair, or a bare system library when
// SearchPath is empty.
type Directive struct {
	Unit       string
	SearchPath string
	Library    string
}

// System reports whether d names a platform library with no search path.
func (d Directive) System() bool {
	return d.SearchPath == ""
}

// Emit returns the directives for every unit of g in build order. A unit's
// static libraries come first, immediately followed by its system libraries,
// so dependencies always precede their dependents.
func Emit(g *graph.Graph) []Directive {
	var out []Directive
	for _, u := range g.Order() {
		for _, a := range u.Artifacts {
			out = append(out, Directive{Unit: u.Name, SearchPath: a.SearchPath, Library: a.Library})
		}
		for _, lib := range g.SystemLibs(u) {
			out = append(out, Directive{Unit: u.Name, Library: lib})
		}
	}
	return out
}

// Flags renders directives as linker flags. A search path repeated by
// consecutive directives is emitted once.
func Flags(dirs []Directive) []string {
	var (
		flags    []string
		lastPath string
	)
	for _, d := range dirs {
		if !d.System() && d.SearchPath != lastPath {
			flags = append(flags, "-L"+d.SearchPath)
			lastPath = d.SearchPath
		}
		flags = append(flags, "-l"+d.Library)
	}
	return flags
}
