package index

import (
	"testing"

	"github.com/mip-org/mip/pkg/errors"
)

func testDoc() Document {
	return Document{Packages: []Package{
		{Name: "core", Version: "1.0.0"},
		{Name: "fft", Version: "2.1.0", Dependencies: []string{"core"}},
		{Name: "signals", Version: "0.3.0", Dependencies: []string{"core", "fft"}},
	}}
}

func TestLookup(t *testing.T) {
	idx := New(testDoc())

	p, ok := idx.Lookup("fft")
	if !ok {
		t.Fatal("Lookup(fft) should succeed")
	}
	if p.Version != "2.1.0" {
		t.Errorf("Version = %q, want %q", p.Version, "2.1.0")
	}
	if len(p.Dependencies) != 1 || p.Dependencies[0] != "core" {
		t.Errorf("Dependencies = %v", p.Dependencies)
	}

	if _, ok := idx.Lookup("absent"); ok {
		t.Error("Lookup(absent) should fail")
	}
}

func TestGetNotFound(t *testing.T) {
	idx := New(testDoc())

	_, err := idx.Get("nothere")
	if err == nil {
		t.Fatal("Get() should fail for unknown package")
	}
	if !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("error code = %q, want PACKAGE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestPackagesPreserveOrder(t *testing.T) {
	idx := New(testDoc())

	pkgs := idx.Packages()
	want := []string{"core", "fft", "signals"}
	if len(pkgs) != len(want) {
		t.Fatalf("len = %d, want %d", len(pkgs), len(want))
	}
	for i, name := range want {
		if pkgs[i].Name != name {
			t.Errorf("pkgs[%d] = %q, want %q", i, pkgs[i].Name, name)
		}
	}
}

func TestDuplicateNamesFirstWins(t *testing.T) {
	idx := New(Document{Packages: []Package{
		{Name: "core", Version: "1.0.0"},
		{Name: "core", Version: "9.9.9"},
	}})

	p, _ := idx.Lookup("core")
	if p.Version != "1.0.0" {
		t.Errorf("Version = %q, want first entry to win", p.Version)
	}
	if idx.Len() != 1 {
		t.Errorf("Len() = %d, want 1", idx.Len())
	}
}
