package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mip-org/mip/pkg/manifest"
	"github.com/mip-org/mip/pkg/resolve"
)

// infoCommand creates the info command.
func (c *CLI) infoCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "info <package>",
		Short: "Show details for a package",
		Long: `Show details for a package.

For installed packages the local manifest is authoritative; otherwise the
package is looked up in the remote index.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInfo(cmd.Context(), args[0], refresh)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the index cache")

	return cmd
}

func (c *CLI) runInfo(ctx context.Context, name string, refresh bool) error {
	s, err := c.openStore()
	if err != nil {
		return err
	}

	if s.Installed(name) {
		m, err := manifest.Read(s.Dir(name))
		if err != nil {
			printWarning("Installed, but manifest is unreadable: %v", err)
			printKeyValue("Name", name)
			printKeyValue("Status", "installed")
			return nil
		}

		printKeyValue("Name", m.Package)
		printKeyValue("Version", m.Version)
		printKeyValue("Status", "installed")
		printKeyValue("Location", s.Dir(name))
		printKeyValue("Dependencies", formatList(m.Dependencies))
		printKeyValue("Symbols", formatList(m.ExposedSymbols))

		installed, err := s.View(nil)
		if err == nil {
			printKeyValue("Required by", formatSet(resolve.Dependents(name, installed, nil)))
		}
		return nil
	}

	client, err := c.newIndexClient(ctx)
	if err != nil {
		return err
	}
	idx, err := client.Fetch(ctx, refresh)
	if err != nil {
		return fmt.Errorf("fetch package index: %w", err)
	}
	pkg, err := idx.Get(name)
	if err != nil {
		return err
	}

	printKeyValue("Name", pkg.Name)
	printKeyValue("Version", pkg.Version)
	printKeyValue("Status", "not installed")
	printKeyValue("Dependencies", formatList(pkg.Dependencies))
	printKeyValue("Archive", pkg.ArchiveURL)
	printNewline()
	printNextStep("Install it", "mip install "+name)
	return nil
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func formatSet(set map[string]bool) string {
	if len(set) == 0 {
		return "none"
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
