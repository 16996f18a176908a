package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mip-org/mip/pkg/errors"
	"github.com/mip-org/mip/pkg/index"
	"github.com/mip-org/mip/pkg/matlab"
	"github.com/mip-org/mip/pkg/resolve"
	"github.com/mip-org/mip/pkg/store"
)

// installCommand creates the install command.
func (c *CLI) installCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "install <package>...",
		Short: "Install packages and their dependencies",
		Long: `Install one or more packages from the package index.

Dependencies are resolved transitively and installed before the packages
that need them. Packages that are already installed are left untouched.

An argument ending in .mhl is treated as an archive source instead of an
index name: a local file path or a direct URL. The package name and its
dependencies are read from the archive's own manifest; the dependencies are
still resolved against the index.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInstall(cmd.Context(), args, refresh)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the index cache")

	return cmd
}

func (c *CLI) runInstall(ctx context.Context, args []string, refresh bool) error {
	logger := loggerFromContext(ctx)

	refreshIntegration()

	names, archives := splitInstallArgs(args)

	s, err := c.openStore()
	if err != nil {
		return err
	}

	// The index is loaded at most once, and only when something needs it:
	// an archive-only install whose dependencies are already satisfied never
	// touches the network.
	var idx *index.Index
	loadIndex := func() (*index.Index, error) {
		if idx != nil {
			return idx, nil
		}
		client, err := c.newIndexClient(ctx)
		if err != nil {
			return nil, err
		}
		logger.Debug("fetching index", "url", client.URL())
		fetched, err := client.Fetch(ctx, refresh)
		if err != nil {
			return nil, fmt.Errorf("fetch package index: %w", err)
		}
		logger.Debug("index loaded", "packages", fetched.Len())
		idx = fetched
		return idx, nil
	}

	firstUse := ""
	if len(names) > 0 {
		firstUse = names[0]
		if err := c.installFromIndex(ctx, s, names, loadIndex); err != nil {
			return err
		}
	}

	for _, src := range archives {
		name, err := c.installFromArchive(ctx, s, src, loadIndex)
		if err != nil {
			return err
		}
		if firstUse == "" {
			firstUse = name
		}
	}

	printNewline()
	printNextStep("Use in MATLAB", fmt.Sprintf("mip.import('%s')", firstUse))
	return nil
}

// installFromIndex plans and executes an install of named packages from the
// package index.
func (c *CLI) installFromIndex(ctx context.Context, s *store.Store, names []string, loadIndex func() (*index.Index, error)) error {
	logger := loggerFromContext(ctx)

	idx, err := loadIndex()
	if err != nil {
		return err
	}
	installed, err := s.View(printWarning)
	if err != nil {
		return err
	}

	plan, err := resolve.PlanInstall(names, idx, installed)
	if err != nil {
		printError("%v", err)
		return err
	}

	printInstallPlan(plan)
	if plan.Empty() {
		return nil
	}

	prog := newProgress(logger)
	for i, step := range plan.Install {
		pkg, err := idx.Get(step.Name)
		if err != nil {
			return err
		}
		logger.Debug("installing", "package", step.Name, "version", step.Version)
		if err := s.Materialize(ctx, pkg); err != nil {
			printError("Failed to install %s (%d of %d installed)", step.Name, i, len(plan.Install))
			return err
		}
		printSuccess("Installed %s %s", step.Name, step.Version)
	}
	prog.done(fmt.Sprintf("Installed %d package(s)", len(plan.Install)))
	return nil
}

// installFromArchive installs a package from a .mhl archive source, either a
// local file path or a direct URL. The archive's own manifest names the
// package; dependencies it declares are resolved against the index and
// installed first. Returns the installed package name.
func (c *CLI) installFromArchive(ctx context.Context, s *store.Store, src string, loadIndex func() (*index.Index, error)) (string, error) {
	logger := loggerFromContext(ctx)

	archivePath := src
	if isRemoteSource(src) {
		tmp, err := os.MkdirTemp("", "mip-archive-*")
		if err != nil {
			return "", err
		}
		defer os.RemoveAll(tmp)
		archivePath = filepath.Join(tmp, "package.mhl")
		printInfo("Downloading %s", src)
		if err := store.DownloadArchive(ctx, src, archivePath); err != nil {
			return "", errors.Wrap(errors.ErrCodeNetwork, err, "download %s", src)
		}
	} else if info, err := os.Stat(src); err != nil || info.IsDir() {
		return "", errors.New(errors.ErrCodeFileNotFound, "archive %s does not exist", src)
	}

	m, err := store.ReadArchiveManifest(archivePath)
	if err != nil {
		return "", err
	}
	if m.Package == "" {
		return "", errors.New(errors.ErrCodeInvalidManifest, "manifest in %s has no package name", src)
	}

	if s.Installed(m.Package) {
		printDetail("%s (already installed)", m.Package)
		return m.Package, nil
	}

	// Install missing dependencies from the index before the archive itself,
	// so the tree never contains a package with a missing dependency.
	if len(m.Dependencies) > 0 {
		if err := c.installFromIndex(ctx, s, m.Dependencies, loadIndex); err != nil {
			return "", err
		}
	}

	logger.Debug("installing archive", "package", m.Package, "source", src)
	pkg := index.Package{Name: m.Package, Version: m.Version, Dependencies: m.Dependencies}
	if err := s.MaterializeArchive(pkg, archivePath); err != nil {
		printError("Failed to install %s", m.Package)
		return "", err
	}
	if m.Version != "" {
		printSuccess("Installed %s %s", m.Package, m.Version)
	} else {
		printSuccess("Installed %s", m.Package)
	}
	return m.Package, nil
}

// splitInstallArgs partitions install arguments into index package names and
// archive sources.
func splitInstallArgs(args []string) (names, archives []string) {
	for _, a := range args {
		if isArchiveSource(a) {
			archives = append(archives, a)
		} else {
			names = append(names, a)
		}
	}
	return names, archives
}

// isArchiveSource reports whether an install argument is an archive source
// rather than an index package name.
func isArchiveSource(arg string) bool {
	return strings.HasSuffix(arg, ".mhl")
}

func isRemoteSource(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

// printInstallPlan shows what will happen before anything touches the disk.
func printInstallPlan(plan *resolve.InstallPlan) {
	for _, name := range plan.Satisfied {
		printDetail("%s (already installed)", name)
	}
	if plan.Empty() {
		printSuccess("Nothing to install")
		return
	}

	printInfo("Will install %d package(s):", len(plan.Install))
	for _, step := range plan.Install {
		line := fmt.Sprintf("%s %s", step.Name, step.Version)
		if !step.Requested && len(step.RequiredBy) > 0 {
			line += " " + StyleDim.Render("(required by "+strings.Join(step.RequiredBy, ", ")+")")
		}
		printDetail("%s", line)
	}
}

// refreshIntegration brings the MATLAB integration up to date before a
// package operation touches the store. Failures are warnings; the operation
// proceeds without the integration.
func refreshIntegration() {
	dir, err := matlab.DefaultDir()
	if err == nil {
		err = matlab.Setup(dir)
	}
	if err != nil {
		printWarning("Failed to update MATLAB integration: %v", err)
	}
}
