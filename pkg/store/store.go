// Package store manages the local package tree under ~/.mip/packages.
//
// Each installed package occupies one directory keyed by package name,
// containing its unpacked contents plus a mip.json manifest. The store is
// the single source of truth for what is installed: planning takes a fresh
// snapshot from disk ([Store.View]) every session, never a cached one.
package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mip-org/mip/pkg/errors"
	"github.com/mip-org/mip/pkg/manifest"
	"github.com/mip-org/mip/pkg/resolve"
)

// Store is the on-disk package tree.
type Store struct {
	root string
}

// InstalledPackage describes one locally installed package.
// Version is empty when the local manifest is missing or unreadable.
type InstalledPackage struct {
	Name         string
	Version      string
	Dependencies []string
}

// DefaultRoot returns the default package tree location (~/.mip/packages).
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".mip", "packages"), nil
}

// New opens (creating if needed) a package store rooted at root.
// If root is empty, DefaultRoot is used.
func New(root string) (*Store, error) {
	if root == "" {
		r, err := DefaultRoot()
		if err != nil {
			return nil, err
		}
		root = r
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// Dir returns the directory a package occupies (whether or not installed).
func (s *Store) Dir(name string) string {
	return filepath.Join(s.root, name)
}

// Installed reports whether a package directory exists.
func (s *Store) Installed(name string) bool {
	info, err := os.Stat(s.Dir(name))
	return err == nil && info.IsDir()
}

// List returns all installed packages sorted by name, with version and
// dependency information from each local manifest. Unreadable manifests
// yield entries with empty version and no dependencies.
func (s *Store) List() ([]InstalledPackage, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var pkgs []InstalledPackage
	for _, e := range entries {
		if !e.IsDir() || isStaging(e.Name()) {
			continue
		}
		p := InstalledPackage{Name: e.Name()}
		if m, err := manifest.Read(s.Dir(e.Name())); err == nil {
			p.Version = m.Version
			p.Dependencies = m.Dependencies
		}
		pkgs = append(pkgs, p)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
	return pkgs, nil
}

// View takes a fresh installed-set snapshot for planning: package name to
// declared dependencies. A missing or malformed manifest is non-fatal; it
// contributes an empty dependency list and is reported through warn.
func (s *Store) View(warn func(format string, args ...any)) (resolve.InstalledView, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return resolve.InstalledView{}, nil
	}
	if err != nil {
		return nil, err
	}

	view := make(resolve.InstalledView)
	for _, e := range entries {
		if !e.IsDir() || isStaging(e.Name()) {
			continue
		}
		m, err := manifest.Read(s.Dir(e.Name()))
		if err != nil {
			if warn != nil {
				warn("could not read manifest for %s: %v", e.Name(), errors.UserMessage(err))
			}
			view[e.Name()] = nil
			continue
		}
		view[e.Name()] = m.Dependencies
	}
	return view, nil
}

// isStaging reports whether a directory is a leftover materialization
// staging area (crash debris), not an installed package.
func isStaging(name string) bool {
	return strings.Contains(name, ".staging.")
}

// Remove deletes a package directory. Removing a package that is not on
// disk returns a NOT_FOUND error so the caller can report it without
// treating it as fatal.
func (s *Store) Remove(name string) error {
	dir := s.Dir(name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return errors.New(errors.ErrCodeNotFound, "package %q is not installed", name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrap(errors.ErrCodeUninstallFailed, err, "remove %s", name)
	}
	return nil
}
