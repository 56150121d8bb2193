// Package graph models the vendored libraries as a dependency graph of build
// units and checks that the graph can be built in order.
package graph

import (
	"errors"
	"fmt"

	"github.com/goplus/cdeps/internal/platform"
	"github.com/goplus/cdeps/pkgs/buildsys"
)

// Artifact is one static library a unit produces and the directory holding it.
type Artifact struct {
	SearchPath string
	Library    string
}

// Unit is one vendored library plus its build recipe.
type Unit struct {
	Name string
	// Dir is the unit's source directory. Every phase runs inside it.
	Dir  string
	Deps []string

	// Phases holds the ordered phase sequence for each strategy kind.
	Phases    map[platform.Kind][]buildsys.Phase
	Artifacts []Artifact
	// SystemLibs lists platform libraries the unit needs on specific strategies.
	SystemLibs map[platform.Kind][]string
}

// ErrGraphIntegrity is matched by every *IntegrityError.
var ErrGraphIntegrity = errors.New("graph integrity violation")

// IntegrityError reports a malformed unit declaration. It is a programming
// error and is never retryable.
type IntegrityError struct {
	Unit   string
	Dep    string
	Reason string
}

func (e *IntegrityError) Error() string {
	if e.Dep != "" {
		return fmt.Sprintf("graph: unit %q -> %q: %s", e.Unit, e.Dep, e.Reason)
	}
	return fmt.Sprintf("graph: unit %q: %s", e.Unit, e.Reason)
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrGraphIntegrity
}

// Graph is a validated set of units bound to one strategy.
type Graph struct {
	strategy platform.Strategy
	order    []*Unit
	byName   map[string]*Unit
}

// New validates units for the given strategy and computes their build order.
// Among units whose dependencies are satisfied, declaration order wins, so a
// declaration that is already topological is returned unchanged.
func New(strategy platform.Strategy, units []*Unit) (*Graph, error) {
	byName := make(map[string]*Unit, len(units))
	for _, u := range units {
		if u.Name == "" {
			return nil, &IntegrityError{Reason: "empty unit name"}
		}
		if _, dup := byName[u.Name]; dup {
			return nil, &IntegrityError{Unit: u.Name, Reason: "declared more than once"}
		}
		byName[u.Name] = u
	}
	for _, u := range units {
		if err := checkUnit(strategy.Kind, u, byName); err != nil {
			return nil, err
		}
	}

	order, err := topoSort(units)
	if err != nil {
		return nil, err
	}
	if err := verifyOrder(order); err != nil {
		return nil, err
	}
	return &Graph{strategy: strategy, order: order, byName: byName}, nil
}

func checkUnit(kind platform.Kind, u *Unit, byName map[string]*Unit) error {
	for _, dep := range u.Deps {
		if dep == u.Name {
			return &IntegrityError{Unit: u.Name, Dep: dep, Reason: "unit depends on itself"}
		}
		if _, ok := byName[dep]; !ok {
			return &IntegrityError{Unit: u.Name, Dep: dep, Reason: "unknown dependency"}
		}
	}
	phases := u.Phases[kind]
	if len(phases) == 0 {
		return &IntegrityError{Unit: u.Name, Reason: "no phases for strategy " + kind.String()}
	}
	for _, p := range phases {
		if p.Dir != u.Dir {
			return &IntegrityError{Unit: u.Name, Reason: fmt.Sprintf("phase %q runs outside the source directory", p.Label)}
		}
		if p.Program == "" {
			return &IntegrityError{Unit: u.Name, Reason: fmt.Sprintf("phase %q has no program", p.Label)}
		}
	}
	return nil
}

func topoSort(units []*Unit) ([]*Unit, error) {
	placed := make(map[string]bool, len(units))
	order := make([]*Unit, 0, len(units))
	for len(order) < len(units) {
		progress := false
		for _, u := range units {
			if placed[u.Name] || !depsPlaced(u, placed) {
				continue
			}
			placed[u.Name] = true
			order = append(order, u)
			progress = true
			break
		}
		if !progress {
			for _, u := range units {
				if !placed[u.Name] {
					return nil, &IntegrityError{Unit: u.Name, Reason: "dependency cycle"}
				}
			}
		}
	}
	return order, nil
}

func depsPlaced(u *Unit, placed map[string]bool) bool {
	for _, dep := range u.Deps {
		if !placed[dep] {
			return false
		}
	}
	return true
}

// verifyOrder checks every dependency edge against order.
func verifyOrder(order []*Unit) error {
	index := make(map[string]int, len(order))
	for i, u := range order {
		index[u.Name] = i
	}
	for i, u := range order {
		for _, dep := range u.Deps {
			j, ok := index[dep]
			if !ok || j >= i {
				return &IntegrityError{Unit: u.Name, Dep: dep, Reason: "order is not topological"}
			}
		}
	}
	return nil
}

// Strategy returns the strategy the graph was validated for.
func (g *Graph) Strategy() platform.Strategy {
	return g.strategy
}

// Order returns the units in build order. Dependencies come first.
func (g *Graph) Order() []*Unit {
	return g.order
}

// Unit returns the named unit.
func (g *Graph) Unit(name string) (*Unit, bool) {
	u, ok := g.byName[name]
	return u, ok
}

// Phases returns u's phase sequence under the graph's strategy.
func (g *Graph) Phases(u *Unit) []buildsys.Phase {
	return u.Phases[g.strategy.Kind]
}

// SystemLibs returns the extra system libraries u needs under the graph's strategy.
func (g *Graph) SystemLibs(u *Unit) []string {
	return u.SystemLibs[g.strategy.Kind]
}
