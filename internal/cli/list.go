package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List installed packages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore()
			if err != nil {
				return err
			}
			pkgs, err := s.List()
			if err != nil {
				return err
			}
			if len(pkgs) == 0 {
				printInfo("No packages installed")
				return nil
			}

			fmt.Println(StyleTitle.Render(fmt.Sprintf("Installed packages (%d)", len(pkgs))))
			for _, p := range pkgs {
				version := p.Version
				if version == "" {
					version = StyleDim.Render("(unknown version)")
				}
				line := fmt.Sprintf("%-24s %s", p.Name, version)
				if len(p.Dependencies) > 0 {
					line += " " + StyleDim.Render(fmt.Sprintf("needs %v", p.Dependencies))
				}
				printDetail("%s", line)
			}
			return nil
		},
	}
}
