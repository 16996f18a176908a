// Package graph builds dependency graphs over packages and renders them as
// Graphviz DOT, SVG, or PNG.
package graph

import (
	"sort"

	"github.com/mip-org/mip/pkg/resolve"
)

// Node is one package in a dependency graph.
type Node struct {
	Name      string
	Version   string
	Installed bool
}

// Edge is a dependency: From requires To.
type Edge struct {
	From string
	To   string
}

// Graph is a directed dependency graph in deterministic insertion order.
type Graph struct {
	nodes []Node
	edges []Edge
	index map[string]int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

// AddNode inserts a node, updating it in place if the name is already present.
func (g *Graph) AddNode(n Node) {
	if i, ok := g.index[n.Name]; ok {
		g.nodes[i] = n
		return
	}
	g.index[n.Name] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

// AddEdge records that from depends on to. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	for _, e := range g.edges {
		if e.From == from && e.To == to {
			return
		}
	}
	g.edges = append(g.edges, Edge{From: from, To: to})
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge { return g.edges }

// Build resolves the full dependency closure of the given roots against the
// catalog and assembles it into a graph. Each node is marked installed when
// present in the installed view. Cycles in the catalog abort the build with
// the same error resolution reports.
func Build(roots []string, cat resolve.Catalog, installed resolve.InstalledView) (*Graph, error) {
	g := New()
	visited := make(map[string]bool)

	for _, root := range roots {
		closure, err := resolve.Resolve(root, cat, visited, nil)
		if err != nil {
			return nil, err
		}
		for _, name := range closure {
			pkg, _ := cat.Lookup(name)
			_, isInstalled := installed[name]
			g.AddNode(Node{Name: name, Version: pkg.Version, Installed: isInstalled})
			for _, dep := range pkg.Dependencies {
				g.AddEdge(name, dep)
			}
		}
	}
	return g, nil
}

// BuildInstalled assembles a graph of everything currently installed, using
// local manifests only. Edges to packages that are not installed still
// appear, so broken dependency links stay visible.
func BuildInstalled(installed resolve.InstalledView, versions map[string]string) *Graph {
	g := New()
	names := make([]string, 0, len(installed))
	for name := range installed {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		g.AddNode(Node{Name: name, Version: versions[name], Installed: true})
	}
	for _, name := range names {
		for _, dep := range installed[name] {
			if _, ok := g.index[dep]; !ok {
				g.AddNode(Node{Name: dep})
			}
			g.AddEdge(name, dep)
		}
	}
	return g
}
