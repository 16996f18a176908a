package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mip-org/mip/pkg/errors"
	"github.com/mip-org/mip/pkg/httputil"
	"github.com/mip-org/mip/pkg/index"
	"github.com/mip-org/mip/pkg/manifest"
)

// downloadTimeout bounds a single archive download.
const downloadTimeout = 5 * time.Minute

// Materialize downloads and unpacks one package into the store.
//
// The archive is fetched into a uuid-named staging area and extracted there;
// only after a complete extraction is the staging directory renamed into its
// final location. A failure at any point removes the staging area, so a
// partially installed package directory never exists.
func (s *Store) Materialize(ctx context.Context, pkg index.Package) error {
	if s.Installed(pkg.Name) {
		return errors.New(errors.ErrCodeInstallFailed, "package %q is already installed", pkg.Name)
	}

	staging, err := s.stagingDir(pkg.Name)
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	archivePath := filepath.Join(staging, archiveName(pkg))
	if err := DownloadArchive(ctx, pkg.ArchiveURL, archivePath); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "download %s", pkg.Name)
	}

	return s.unpack(pkg, archivePath, staging)
}

// MaterializeArchive unpacks a package from an archive already on local
// disk, with the same staging-then-rename guarantees as [Store.Materialize].
// The caller supplies the package identity (normally read from the archive's
// own manifest via [ReadArchiveManifest]); dependency installation is the
// caller's concern.
func (s *Store) MaterializeArchive(pkg index.Package, archivePath string) error {
	if s.Installed(pkg.Name) {
		return errors.New(errors.ErrCodeInstallFailed, "package %q is already installed", pkg.Name)
	}

	staging, err := s.stagingDir(pkg.Name)
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	return s.unpack(pkg, archivePath, staging)
}

func (s *Store) stagingDir(name string) (string, error) {
	staging := s.Dir(name) + ".staging." + uuid.NewString()[:8]
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeInstallFailed, err, "create staging for %s", name)
	}
	return staging, nil
}

// unpack extracts the archive into the staging area, ensures a manifest is
// present, and atomically renames the content into its final location.
func (s *Store) unpack(pkg index.Package, archivePath, staging string) error {
	contentDir := filepath.Join(staging, "content")
	if err := extract(archivePath, contentDir); err != nil {
		return err
	}

	// Archives normally carry their own mip.json; synthesize one from the
	// index record when absent so uninstall planning still sees the
	// package's dependencies.
	if _, err := manifest.Read(contentDir); err != nil {
		m := manifest.Manifest{
			Package:      pkg.Name,
			Version:      pkg.Version,
			Dependencies: pkg.Dependencies,
		}
		if err := manifest.Write(contentDir, m); err != nil {
			return errors.Wrap(errors.ErrCodeInstallFailed, err, "write manifest for %s", pkg.Name)
		}
	}

	if err := os.Rename(contentDir, s.Dir(pkg.Name)); err != nil {
		return errors.Wrap(errors.ErrCodeInstallFailed, err, "install %s", pkg.Name)
	}
	return nil
}

// archiveName derives a local file name (and thus the extraction format)
// from the package's archive URL.
func archiveName(pkg index.Package) string {
	if u, err := url.Parse(pkg.ArchiveURL); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" {
			return base
		}
	}
	return pkg.Name + ".mhl"
}

// DownloadArchive fetches an archive URL to dest, retrying transient
// failures. Server errors (5xx) and transport errors are retried; any other
// non-200 status fails immediately.
func DownloadArchive(ctx context.Context, rawURL, dest string) error {
	client := &http.Client{Timeout: downloadTimeout}

	return httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return &httputil.RetryableError{Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode >= 500:
			return &httputil.RetryableError{Err: fmt.Errorf("server error (status %d)", resp.StatusCode)}
		default:
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		out, err := os.Create(dest)
		if err != nil {
			return err
		}
		defer out.Close()

		_, err = io.Copy(out, resp.Body)
		return err
	})
}
