package matlab

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetup(t *testing.T) {
	dir := t.TempDir()

	if err := Setup(dir); err != nil {
		t.Fatalf("Setup() error: %v", err)
	}

	for _, rel := range []string{
		"mip.m",
		filepath.Join("+mip", "import.m"),
		filepath.Join("+mip", "list.m"),
		filepath.Join("+mip", "+internal", "packagesDir.m"),
	} {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Errorf("missing integration file %s: %v", rel, err)
		}
	}
}

func TestSetupReplacesStaleFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "+mip", "removed.m")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("% old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Setup(dir); err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale +mip file should be removed by Setup")
	}
}

func TestSetupIdempotent(t *testing.T) {
	dir := t.TempDir()
	if err := Setup(dir); err != nil {
		t.Fatalf("first Setup() error: %v", err)
	}
	if err := Setup(dir); err != nil {
		t.Fatalf("second Setup() error: %v", err)
	}
}
