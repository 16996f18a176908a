// Package matlab installs the bundled MATLAB integration (the mip.m entry
// point and the +mip package) into ~/.mip/matlab, where users add it to
// their MATLAB path. The integration is refreshed on every install and
// uninstall so it tracks the client version; failures there are warnings,
// never fatal to the package operation itself.
package matlab

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mip-org/mip/pkg/errors"
)

//go:embed assets
var assets embed.FS

// DefaultDir returns the integration location (~/.mip/matlab).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".mip", "matlab"), nil
}

// Setup writes the bundled integration files into dir, replacing any
// previous copy of the +mip package so stale functions never linger.
func Setup(dir string) error {
	// Drop the old +mip tree wholesale; individual file copies below
	// would leave removed functions behind.
	if err := os.RemoveAll(filepath.Join(dir, "+mip")); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "clear previous integration")
	}

	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "open bundled assets")
	}

	return fs.WalkDir(sub, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := fs.ReadFile(sub, path)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "read bundled asset %s", path)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", target)
		}
		return nil
	})
}
