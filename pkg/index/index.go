// Package index models the remote package catalog and fetches it over HTTP.
//
// The index is a single document mapping package names to metadata: version,
// declared dependencies (unconditional name references), and the archive
// location. It is read-only for the duration of one resolution session and
// re-fetched fresh per session unless the response cache still holds it.
package index

import (
	"github.com/mip-org/mip/pkg/errors"
)

// Package is one catalog entry. Immutable once loaded.
type Package struct {
	Name         string   `json:"name" yaml:"name"`
	Version      string   `json:"version" yaml:"version"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	ArchiveURL   string   `json:"mhl_url" yaml:"mhl_url"`
}

// Document is the wire format of the index.
type Document struct {
	Packages []Package `json:"packages" yaml:"packages"`
}

// Index is an in-memory view of the catalog with name lookup.
// Catalog order is preserved for display purposes.
type Index struct {
	packages []Package
	byName   map[string]Package
}

// New builds an Index from a decoded document.
// Later duplicates of a name are ignored; the first entry wins.
func New(doc Document) *Index {
	idx := &Index{
		packages: doc.Packages,
		byName:   make(map[string]Package, len(doc.Packages)),
	}
	for _, p := range doc.Packages {
		if _, ok := idx.byName[p.Name]; !ok {
			idx.byName[p.Name] = p
		}
	}
	return idx
}

// Lookup returns the package record for name.
func (idx *Index) Lookup(name string) (Package, bool) {
	p, ok := idx.byName[name]
	return p, ok
}

// Get returns the package record for name or a PACKAGE_NOT_FOUND error.
func (idx *Index) Get(name string) (Package, error) {
	p, ok := idx.byName[name]
	if !ok {
		return Package{}, errors.New(errors.ErrCodePackageNotFound, "package %q not found in repository", name)
	}
	return p, nil
}

// Packages returns all catalog entries in catalog order.
func (idx *Index) Packages() []Package {
	return idx.packages
}

// Len returns the number of distinct packages in the index.
func (idx *Index) Len() int {
	return len(idx.byName)
}
