package store

import (
	"path/filepath"
	"testing"

	"github.com/mip-org/mip/pkg/errors"
)

func TestReadArchiveManifestZip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "fft-2.0.0.mhl")
	buildZip(t, src, map[string]string{
		"mip.json": `{"package":"fft","version":"2.0.0","dependencies":["core"]}`,
		"fft.m":    "disp('fft')\n",
	})

	m, err := ReadArchiveManifest(src)
	if err != nil {
		t.Fatalf("ReadArchiveManifest() error: %v", err)
	}
	if m.Package != "fft" || m.Version != "2.0.0" {
		t.Errorf("manifest = %+v, want fft 2.0.0", m)
	}
	if len(m.Dependencies) != 1 || m.Dependencies[0] != "core" {
		t.Errorf("dependencies = %v, want [core]", m.Dependencies)
	}
}

func TestReadArchiveManifestTarXz(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "core-1.0.0.tar.xz")
	buildTarXz(t, src, map[string]string{
		"mip.json": `{"package":"core","version":"1.0.0"}`,
	})

	m, err := ReadArchiveManifest(src)
	if err != nil {
		t.Fatalf("ReadArchiveManifest() error: %v", err)
	}
	if m.Package != "core" {
		t.Errorf("package = %q, want core", m.Package)
	}
}

func TestReadArchiveManifestShallowestWins(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "wrapped.mhl")
	buildZip(t, src, map[string]string{
		"pkg/mip.json":        `{"package":"outer","version":"1.0.0"}`,
		"pkg/vendor/mip.json": `{"package":"inner","version":"9.9.9"}`,
	})

	m, err := ReadArchiveManifest(src)
	if err != nil {
		t.Fatalf("ReadArchiveManifest() error: %v", err)
	}
	if m.Package != "outer" {
		t.Errorf("package = %q, want outer", m.Package)
	}
}

func TestReadArchiveManifestMissing(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bare.mhl")
	buildZip(t, src, map[string]string{"readme.txt": "no manifest here"})

	_, err := ReadArchiveManifest(src)
	if !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("error code = %q, want INVALID_MANIFEST", errors.GetCode(err))
	}
}

func TestReadArchiveManifestUnsupportedFormat(t *testing.T) {
	_, err := ReadArchiveManifest(filepath.Join(t.TempDir(), "pkg.rar"))
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("error code = %q, want UNSUPPORTED", errors.GetCode(err))
	}
}
