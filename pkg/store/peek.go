package store

import (
	"archive/tar"
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/mip-org/mip/pkg/errors"
	"github.com/mip-org/mip/pkg/manifest"
)

// ReadArchiveManifest extracts just the mip.json from an archive without
// unpacking it. When the manifest appears at multiple depths (some archives
// wrap their contents in a top-level directory), the shallowest one wins.
func ReadArchiveManifest(file string) (manifest.Manifest, error) {
	switch {
	case strings.HasSuffix(file, ".mhl"), strings.HasSuffix(file, ".zip"):
		return zipManifest(file)
	case strings.HasSuffix(file, ".tar.xz"), strings.HasSuffix(file, ".txz"):
		return tarXzManifest(file)
	default:
		return manifest.Manifest{}, errors.New(errors.ErrCodeUnsupported, "unsupported archive format: %s", file)
	}
}

func zipManifest(file string) (manifest.Manifest, error) {
	r, err := zip.OpenReader(file)
	if err != nil {
		return manifest.Manifest{}, errors.Wrap(errors.ErrCodeInvalidArchive, err, "open %s", file)
	}
	defer r.Close()

	var best *zip.File
	for _, f := range r.File {
		if path.Base(f.Name) != manifest.Filename {
			continue
		}
		if best == nil || depth(f.Name) < depth(best.Name) {
			best = f
		}
	}
	if best == nil {
		return manifest.Manifest{}, errors.New(errors.ErrCodeInvalidManifest, "no %s in %s", manifest.Filename, file)
	}

	rc, err := best.Open()
	if err != nil {
		return manifest.Manifest{}, err
	}
	defer rc.Close()
	return decodeManifest(rc, file)
}

func tarXzManifest(file string) (manifest.Manifest, error) {
	f, err := os.Open(file)
	if err != nil {
		return manifest.Manifest{}, err
	}
	defer f.Close()

	xzReader, err := xz.NewReader(f)
	if err != nil {
		return manifest.Manifest{}, errors.Wrap(errors.ErrCodeInvalidArchive, err, "open %s", file)
	}

	var best manifest.Manifest
	bestDepth := -1
	tr := tar.NewReader(xzReader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return manifest.Manifest{}, errors.Wrap(errors.ErrCodeInvalidArchive, err, "read %s", file)
		}
		if hdr.Typeflag != tar.TypeReg || path.Base(hdr.Name) != manifest.Filename {
			continue
		}
		if bestDepth != -1 && depth(hdr.Name) >= bestDepth {
			continue
		}
		m, err := decodeManifest(tr, file)
		if err != nil {
			return manifest.Manifest{}, err
		}
		best, bestDepth = m, depth(hdr.Name)
	}
	if bestDepth == -1 {
		return manifest.Manifest{}, errors.New(errors.ErrCodeInvalidManifest, "no %s in %s", manifest.Filename, file)
	}
	return best, nil
}

func decodeManifest(r io.Reader, file string) (manifest.Manifest, error) {
	var m manifest.Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return manifest.Manifest{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode manifest in %s", file)
	}
	return m, nil
}

func depth(name string) int {
	return strings.Count(path.Clean(name), "/")
}
