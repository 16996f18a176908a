// Package manifest reads the per-package mip.json descriptor.
//
// Every installed package carries a mip.json at its root recording the
// package name, its version, its declared dependencies, and the MATLAB
// symbols it exposes. Local manifests are the authoritative source of
// dependency information for installed packages; the remote index is
// consulted only for new installs.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mip-org/mip/pkg/errors"
)

// Filename is the manifest file name inside each package directory.
const Filename = "mip.json"

// Manifest describes one package as recorded on disk.
type Manifest struct {
	Package        string   `json:"package"`
	Version        string   `json:"version,omitempty"`
	Dependencies   []string `json:"dependencies,omitempty"`
	ExposedSymbols []string `json:"exposed_symbols,omitempty"`
}

// Read loads the manifest from the given package directory.
//
// A missing or malformed manifest is not fatal to callers: Read returns a
// zero Manifest together with an INVALID_MANIFEST or FILE_NOT_FOUND error so
// callers can log a warning and treat the package as having no declared
// dependencies.
func Read(dir string) (Manifest, error) {
	path := filepath.Join(dir, Filename)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Manifest{}, errors.New(errors.ErrCodeFileNotFound, "no %s in %s", Filename, dir)
	}
	if err != nil {
		return Manifest{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", path)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	return m, nil
}

// Write stores the manifest into the given package directory.
func Write(dir string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, Filename), append(data, '\n'), 0o644)
}
