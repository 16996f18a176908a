package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mip-org/mip/pkg/errors"
)

func TestReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := Manifest{
		Package:        "signals",
		Version:        "1.2.0",
		Dependencies:   []string{"core", "fft"},
		ExposedSymbols: []string{"bandpass", "spectrogram"},
	}
	if err := Write(dir, want); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, err := Read(dir)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if got.Package != want.Package || got.Version != want.Version {
		t.Errorf("Read() = %+v, want %+v", got, want)
	}
	if len(got.Dependencies) != 2 || got.Dependencies[0] != "core" || got.Dependencies[1] != "fft" {
		t.Errorf("Dependencies = %v, want order preserved", got.Dependencies)
	}
	if len(got.ExposedSymbols) != 2 {
		t.Errorf("ExposedSymbols = %v", got.ExposedSymbols)
	}
}

func TestReadMissingManifest(t *testing.T) {
	_, err := Read(t.TempDir())
	if err == nil {
		t.Fatal("Read() should report a missing manifest")
	}
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %q, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestReadMalformedManifest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, Filename), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Read(dir)
	if err == nil {
		t.Fatal("Read() should report a malformed manifest")
	}
	if !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("error code = %q, want INVALID_MANIFEST", errors.GetCode(err))
	}
}

func TestReadManifestWithoutDependencies(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, Filename), []byte(`{"package":"core","version":"0.4.1"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Read(dir)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(m.Dependencies) != 0 {
		t.Errorf("Dependencies = %v, want empty", m.Dependencies)
	}
}
