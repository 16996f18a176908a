package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mip-org/mip/pkg/manifest"
	"github.com/mip-org/mip/pkg/store"
)

// doctorCommand creates the doctor command.
func (c *CLI) doctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check installed packages for problems",
		Long: `Check installed packages for problems.

Currently this scans every local manifest for exposed symbols and reports
names exported by more than one package. MATLAB resolves colliding names by
path order, so collisions cause packages to silently shadow each other.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore()
			if err != nil {
				return err
			}
			return runDoctor(s)
		},
	}
}

func runDoctor(s *store.Store) error {
	pkgs, err := s.List()
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		printInfo("No packages installed")
		return nil
	}

	symbols := map[string][]string{} // symbol -> packages exposing it
	counts := map[string]int{}
	for _, p := range pkgs {
		m, err := manifest.Read(s.Dir(p.Name))
		if err != nil {
			printWarning("Could not read manifest for %s: %v", p.Name, err)
			continue
		}
		counts[p.Name] = len(m.ExposedSymbols)
		for _, sym := range m.ExposedSymbols {
			symbols[sym] = append(symbols[sym], p.Name)
		}
	}

	fmt.Println(StyleTitle.Render("Exposed symbols per package"))
	for _, p := range pkgs {
		printDetail("%-24s %d symbol(s)", p.Name, counts[p.Name])
	}
	printNewline()

	collisions := map[string][]string{}
	for sym, owners := range symbols {
		if len(owners) > 1 {
			collisions[sym] = owners
		}
	}
	if len(collisions) == 0 {
		printSuccess("No name collisions found")
		return nil
	}

	printWarning("Name collisions found: %d", len(collisions))
	names := make([]string, 0, len(collisions))
	for sym := range collisions {
		names = append(names, sym)
	}
	sort.Strings(names)
	for _, sym := range names {
		printDetail("%s exposed by %s", sym, strings.Join(collisions[sym], ", "))
	}
	return nil
}
