package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mip-org/mip/pkg/errors"
	"github.com/mip-org/mip/pkg/resolve"
)

// uninstallCommand creates the uninstall command.
func (c *CLI) uninstallCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "uninstall <package>...",
		Short: "Remove packages and everything that depends on them",
		Long: `Remove one or more installed packages.

Any installed package that depends on a removed package (directly or
transitively) is removed as well, dependents first, so the tree never
contains a package with a missing dependency.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runUninstall(cmd.Context(), args, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func (c *CLI) runUninstall(ctx context.Context, requested []string, yes bool) error {
	logger := loggerFromContext(ctx)

	refreshIntegration()

	s, err := c.openStore()
	if err != nil {
		return err
	}
	installed, err := s.View(printWarning)
	if err != nil {
		return err
	}

	plan := resolve.PlanUninstall(requested, installed)
	for _, name := range plan.Missing {
		printWarning("Package %q is not installed", name)
	}
	if plan.Empty() {
		printInfo("Nothing to remove")
		return nil
	}

	printInfo("Will remove %d package(s):", len(plan.Remove))
	for _, step := range plan.Remove {
		line := step.Name
		if !step.Requested && len(step.Because) > 0 {
			line += " " + StyleDim.Render("(depends on "+strings.Join(step.Because, ", ")+")")
		}
		printDetail("%s", line)
	}

	if !yes {
		ok, err := confirm(fmt.Sprintf("Remove %d package(s)?", len(plan.Remove)))
		if err != nil {
			return err
		}
		if !ok {
			printInfo("Aborted")
			return nil
		}
	}

	prog := newProgress(logger)
	for i, step := range plan.Remove {
		logger.Debug("removing", "package", step.Name)
		err := s.Remove(step.Name)
		switch {
		case errors.Is(err, errors.ErrCodeNotFound):
			// Vanished between planning and execution; already gone.
			printWarning("Package %s was already gone", step.Name)
		case err != nil:
			printError("Failed to remove %s (%d of %d removed)", step.Name, i, len(plan.Remove))
			return err
		default:
			printSuccess("Removed %s", step.Name)
		}
	}
	prog.done(fmt.Sprintf("Removed %d package(s)", len(plan.Remove)))
	return nil
}
