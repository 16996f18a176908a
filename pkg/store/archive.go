package store

import (
	"archive/tar"
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/mip-org/mip/pkg/errors"
)

// extract unpacks the archive at src into dest, choosing the format from the
// file name. Package archives are either .mhl files (zip layout) or .tar.xz
// tarballs for self-hosted repositories.
func extract(src, dest string) error {
	switch {
	case strings.HasSuffix(src, ".mhl"), strings.HasSuffix(src, ".zip"):
		return extractZip(src, dest)
	case strings.HasSuffix(src, ".tar.xz"), strings.HasSuffix(src, ".txz"):
		return extractTarXz(src, dest)
	default:
		return errors.New(errors.ErrCodeUnsupported, "unsupported archive format: %s", filepath.Base(src))
	}
}

func extractZip(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidArchive, err, "open archive %s", filepath.Base(src))
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := securePath(dest, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := writeZipEntry(f, target); err != nil {
			return err
		}
	}
	return nil
}

func writeZipEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode().Perm()|0o200)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

func extractTarXz(src, dest string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	xzReader, err := xz.NewReader(f)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidArchive, err, "open archive %s", filepath.Base(src))
	}

	tr := tar.NewReader(xzReader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidArchive, err, "read archive %s", filepath.Base(src))
		}

		target, err := securePath(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := writeTarEntry(tr, target, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		}
	}
}

func writeTarEntry(r io.Reader, target string, perm os.FileMode) error {
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm|0o200)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, r)
	return err
}

// securePath joins name onto dest and rejects entries that would escape it.
func securePath(dest, name string) (string, error) {
	clean := filepath.Clean(dest)
	target := filepath.Join(dest, name)
	if target != clean && !strings.HasPrefix(target, clean+string(os.PathSeparator)) {
		return "", errors.New(errors.ErrCodeInvalidArchive, "archive entry escapes destination: %s", name)
	}
	return target, nil
}
