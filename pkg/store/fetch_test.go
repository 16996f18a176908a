package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mip-org/mip/pkg/index"
	"github.com/mip-org/mip/pkg/manifest"
)

// serveArchive serves one zip archive at /pkg.mhl and returns its URL.
func serveArchive(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	archive := filepath.Join(dir, "pkg.mhl")
	buildZip(t, archive, files)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pkg.mhl" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, archive)
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/pkg.mhl"
}

func TestMaterialize(t *testing.T) {
	url := serveArchive(t, map[string]string{
		"mip.json": `{"package":"fft","version":"2.1.0","dependencies":["core"]}`,
		"fft.m":    "function fft()\nend\n",
	})

	s := newTestStore(t)
	pkg := index.Package{Name: "fft", Version: "2.1.0", Dependencies: []string{"core"}, ArchiveURL: url}
	if err := s.Materialize(context.Background(), pkg); err != nil {
		t.Fatalf("Materialize() error: %v", err)
	}

	if !s.Installed("fft") {
		t.Fatal("fft not installed")
	}
	m, err := manifest.Read(s.Dir("fft"))
	if err != nil {
		t.Fatalf("manifest unreadable: %v", err)
	}
	if m.Version != "2.1.0" {
		t.Errorf("version = %q, want 2.1.0", m.Version)
	}
	if _, err := os.Stat(filepath.Join(s.Dir("fft"), "fft.m")); err != nil {
		t.Errorf("package file missing: %v", err)
	}
}

func TestMaterializeSynthesizesManifest(t *testing.T) {
	url := serveArchive(t, map[string]string{
		"fft.m": "function fft()\nend\n",
	})

	s := newTestStore(t)
	pkg := index.Package{Name: "fft", Version: "2.1.0", Dependencies: []string{"core"}, ArchiveURL: url}
	if err := s.Materialize(context.Background(), pkg); err != nil {
		t.Fatalf("Materialize() error: %v", err)
	}

	m, err := manifest.Read(s.Dir("fft"))
	if err != nil {
		t.Fatalf("synthesized manifest unreadable: %v", err)
	}
	if m.Package != "fft" || m.Version != "2.1.0" {
		t.Errorf("manifest = %+v", m)
	}
	if len(m.Dependencies) != 1 || m.Dependencies[0] != "core" {
		t.Errorf("dependencies = %v, want [core]", m.Dependencies)
	}
}

func TestMaterializeAlreadyInstalled(t *testing.T) {
	s := newTestStore(t)
	installFixture(t, s, "fft", "1.0.0", nil)

	err := s.Materialize(context.Background(), index.Package{Name: "fft"})
	if err == nil {
		t.Fatal("Materialize() should refuse an installed package")
	}
}

func TestMaterializeCleansUpOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := newTestStore(t)
	pkg := index.Package{Name: "fft", Version: "1.0.0", ArchiveURL: srv.URL + "/fft.mhl"}
	if err := s.Materialize(context.Background(), pkg); err == nil {
		t.Fatal("Materialize() should fail on a missing archive")
	}

	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".staging.") {
			t.Errorf("staging directory left behind: %s", e.Name())
		}
	}
	if s.Installed("fft") {
		t.Error("fft must not appear installed after a failed download")
	}
}

func TestMaterializeArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "fft-2.1.0.mhl")
	buildZip(t, archive, map[string]string{
		"mip.json": `{"package":"fft","version":"2.1.0","dependencies":["core"]}`,
		"fft.m":    "function fft()\nend\n",
	})

	s := newTestStore(t)
	pkg := index.Package{Name: "fft", Version: "2.1.0", Dependencies: []string{"core"}}
	if err := s.MaterializeArchive(pkg, archive); err != nil {
		t.Fatalf("MaterializeArchive() error: %v", err)
	}

	if !s.Installed("fft") {
		t.Fatal("fft not installed")
	}
	if _, err := os.Stat(filepath.Join(s.Dir("fft"), "fft.m")); err != nil {
		t.Errorf("package file missing: %v", err)
	}
	m, err := manifest.Read(s.Dir("fft"))
	if err != nil {
		t.Fatalf("manifest unreadable: %v", err)
	}
	if m.Package != "fft" || m.Version != "2.1.0" {
		t.Errorf("manifest = %+v, want fft 2.1.0", m)
	}
}

func TestMaterializeArchiveAlreadyInstalled(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "fft.mhl")
	buildZip(t, archive, map[string]string{
		"mip.json": `{"package":"fft","version":"2.0.0"}`,
	})

	s := newTestStore(t)
	installFixture(t, s, "fft", "1.0.0", nil)

	err := s.MaterializeArchive(index.Package{Name: "fft", Version: "2.0.0"}, archive)
	if err == nil {
		t.Fatal("MaterializeArchive() should refuse an installed package")
	}
}

func TestDownloadArchive(t *testing.T) {
	url := serveArchive(t, map[string]string{
		"mip.json": `{"package":"fft","version":"2.1.0"}`,
	})

	dest := filepath.Join(t.TempDir(), "pkg.mhl")
	if err := DownloadArchive(context.Background(), url, dest); err != nil {
		t.Fatalf("DownloadArchive() error: %v", err)
	}

	m, err := ReadArchiveManifest(dest)
	if err != nil {
		t.Fatalf("downloaded archive unreadable: %v", err)
	}
	if m.Package != "fft" {
		t.Errorf("package = %q, want fft", m.Package)
	}
}

func TestDownloadArchiveNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "pkg.mhl")
	if err := DownloadArchive(context.Background(), srv.URL+"/missing.mhl", dest); err == nil {
		t.Fatal("DownloadArchive() should fail on a 404")
	}
}

func TestArchiveName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/files/fft-2.1.0.mhl", "fft-2.1.0.mhl"},
		{"https://example.com/files/fft.tar.xz", "fft.tar.xz"},
		{"https://example.com/", "fft.mhl"},
	}
	for _, tt := range tests {
		pkg := index.Package{Name: "fft", ArchiveURL: tt.url}
		if got := archiveName(pkg); got != tt.want {
			t.Errorf("archiveName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
