package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mip-org/mip/pkg/matlab"
)

// setupCommand creates the setup command.
func (c *CLI) setupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Install or refresh the MATLAB integration",
		Long: `Install or refresh the MATLAB integration in ~/.mip/matlab.

The integration is also refreshed automatically after install and uninstall,
so running this by hand is only needed after a fresh installation or when
the files were removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := matlab.DefaultDir()
			if err != nil {
				return err
			}
			if err := matlab.Setup(dir); err != nil {
				return fmt.Errorf("update MATLAB integration: %w", err)
			}

			printSuccess("MATLAB integration updated")
			printDetail("Directory: %s", dir)
			printNewline()
			printInfo("Make sure the directory is on your MATLAB path:")
			printNextStep("Run in MATLAB", fmt.Sprintf("addpath('%s')", dir))
			return nil
		},
	}
}
