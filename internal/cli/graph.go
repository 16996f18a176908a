package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mip-org/mip/pkg/graph"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output   string
		format   string
		detailed bool
		refresh  bool
	)

	cmd := &cobra.Command{
		Use:   "graph [package...]",
		Short: "Render the dependency graph",
		Long: `Render the dependency graph as Graphviz DOT, SVG, or PNG.

With package arguments, the graph covers the full dependency closure of
those packages as resolved against the index; installed packages are shaded.
Without arguments, the graph covers everything currently installed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), args, output, format, detailed, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout for dot)")
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg, png")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include versions in node labels")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the index cache")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, roots []string, output, format string, detailed, refresh bool) error {
	s, err := c.openStore()
	if err != nil {
		return err
	}
	installed, err := s.View(printWarning)
	if err != nil {
		return err
	}

	var g *graph.Graph
	if len(roots) > 0 {
		client, err := c.newIndexClient(ctx)
		if err != nil {
			return err
		}
		idx, err := client.Fetch(ctx, refresh)
		if err != nil {
			return fmt.Errorf("fetch package index: %w", err)
		}
		g, err = graph.Build(roots, idx, installed)
		if err != nil {
			printError("%v", err)
			return err
		}
	} else {
		pkgs, err := s.List()
		if err != nil {
			return err
		}
		versions := make(map[string]string, len(pkgs))
		for _, p := range pkgs {
			versions[p.Name] = p.Version
		}
		g = graph.BuildInstalled(installed, versions)
	}

	if len(g.Nodes()) == 0 {
		printInfo("Nothing to graph")
		return nil
	}

	dot := graph.ToDOT(g, graph.Options{Detailed: detailed})

	var data []byte
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = graph.RenderSVG(ctx, dot)
	case "png":
		data, err = graph.RenderPNG(ctx, dot)
	default:
		return fmt.Errorf("unknown format %q (expected dot, svg, or png)", format)
	}
	if err != nil {
		return fmt.Errorf("render graph: %w", err)
	}

	if output == "" {
		if format != "dot" {
			output = "mip-graph." + format
		} else {
			fmt.Print(dot)
			return nil
		}
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}
	printSuccess("Wrote %s (%d nodes, %d edges)", output, len(g.Nodes()), len(g.Edges()))
	if format == "dot" && !strings.HasSuffix(output, ".dot") {
		printDetail("Tip: the output is Graphviz DOT text")
	}
	return nil
}
