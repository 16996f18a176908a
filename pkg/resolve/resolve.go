// Package resolve implements mip's dependency resolution and planning
// engine: transitive closure building with cycle detection, topological
// install ordering, reverse-dependency discovery, and install/uninstall plan
// construction.
//
// All functions here are pure computations over an in-memory catalog view
// and an installed-set snapshot. Nothing in this package performs I/O or
// mutates external state; planning always completes (or fails) before any
// package is touched on disk.
package resolve

import (
	"strings"

	"github.com/mip-org/mip/pkg/errors"
	"github.com/mip-org/mip/pkg/index"
)

// Catalog is the read-only index view the resolver consumes.
// *index.Index satisfies it.
type Catalog interface {
	Lookup(name string) (index.Package, bool)
}

// InstalledView is a snapshot of locally installed packages mapping each
// name to its declared dependencies (from the local manifest, authoritative
// for installed packages). A missing or unreadable manifest contributes an
// empty dependency list.
type InstalledView map[string][]string

// Resolve returns the transitive dependency closure of name in
// dependency-first order: every dependency precedes the package that
// declares it, and name itself is last.
//
// visited is shared across calls within one planning session so overlapping
// subtrees are expanded exactly once; a name already visited contributes
// nothing (it has already been emitted elsewhere). path holds the ancestors
// of the current traversal branch; each recursive call receives its own copy
// so sibling subtrees never see each other as ancestors. Encountering a name
// that is already on the active path is a circular dependency and fails with
// the full cycle in the error message.
func Resolve(name string, cat Catalog, visited map[string]bool, path []string) ([]string, error) {
	for i, ancestor := range path {
		if ancestor == name {
			cycle := append(append([]string{}, path[i:]...), name)
			return nil, errors.New(errors.ErrCodeCircularDependency,
				"circular dependency detected: %s", strings.Join(cycle, " -> "))
		}
	}

	if visited[name] {
		return nil, nil
	}

	pkg, ok := cat.Lookup(name)
	if !ok {
		return nil, errors.New(errors.ErrCodePackageNotFound,
			"package %q not found in repository", name)
	}

	visited[name] = true
	branch := append(append([]string{}, path...), name)

	var order []string
	for _, dep := range pkg.Dependencies {
		sub, err := Resolve(dep, cat, visited, branch)
		if err != nil {
			return nil, err
		}
		order = append(order, sub...)
	}

	return append(order, name), nil
}

// topoSort re-derives a dependency-first order over names using the
// dependency lists provided by deps. Only edges within names are considered.
// The sort is stable for unconstrained siblings: names are visited in input
// order, so packages with no ordering relation keep their relative position.
func topoSort(names []string, deps func(string) []string) []string {
	inSet := make(map[string]bool, len(names))
	for _, n := range names {
		inSet[n] = true
	}

	visited := make(map[string]bool, len(names))
	order := make([]string, 0, len(names))

	var visit func(string)
	visit = func(n string) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, d := range deps(n) {
			if inSet[d] {
				visit(d)
			}
		}
		order = append(order, n)
	}

	for _, n := range names {
		visit(n)
	}
	return order
}

// reachable walks "depends on" edges from start, restricted to the given
// set, and reports every set member reachable from start (excluding start
// itself unless a cycle leads back to it).
func reachable(start string, deps func(string) []string, within map[string]bool) map[string]bool {
	out := make(map[string]bool)
	queue := append([]string{}, deps(start)...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if out[n] || !within[n] {
			continue
		}
		out[n] = true
		queue = append(queue, deps(n)...)
	}
	return out
}
