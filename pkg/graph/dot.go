package graph

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/mip-org/mip/pkg/errors"
)

// Options configures DOT output.
type Options struct {
	// Detailed includes the package version in node labels.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT. The resulting string renders with
// [RenderSVG] or [RenderPNG], and also pastes straight into any Graphviz
// viewer. Installed packages get a grey fill so the diff between local state
// and the full closure is visible at a glance.
func ToDOT(g *Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph mip {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
		if n.Installed {
			attrs = append(attrs, "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n Node, detailed bool) string {
	if !detailed || n.Version == "" {
		return n.Name
	}
	return n.Name + "\n" + n.Version
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render graph")
	}
	return buf.Bytes(), nil
}
