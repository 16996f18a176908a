// Package repo serves a package repository over HTTP from a directory of
// archives. It exposes the same wire format the hosted index uses, so a
// client can point its index URL at a self-hosted repository and install
// from it unchanged: GET /index.json lists the packages, GET /packages/…
// serves the archives themselves.
package repo

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mip-org/mip/pkg/index"
	"github.com/mip-org/mip/pkg/store"
)

// Server serves a package repository from one directory of archives.
type Server struct {
	dir    string
	router chi.Router
}

// New creates a repository server over dir. The directory is rescanned on
// every index request, so dropping a new archive in is enough to publish it.
func New(dir string) *Server {
	s := &Server{dir: dir}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/index.json", s.handleIndex)
	r.Get("/packages/{file}", s.handleArchive)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Scan builds the index document from the archives currently in the
// directory. Archives without a readable manifest are skipped.
func (s *Server) Scan(baseURL string) (index.Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return index.Document{}, err
	}

	var doc index.Document
	for _, e := range entries {
		if e.IsDir() || !isArchive(e.Name()) {
			continue
		}
		m, err := store.ReadArchiveManifest(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		doc.Packages = append(doc.Packages, index.Package{
			Name:         m.Package,
			Version:      m.Version,
			Dependencies: m.Dependencies,
			ArchiveURL:   baseURL + "/packages/" + e.Name(),
		})
	}
	sort.Slice(doc.Packages, func(i, j int) bool { return doc.Packages[i].Name < doc.Packages[j].Name })
	return doc, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Scan(requestBaseURL(r))
	if err != nil {
		http.Error(w, "scan repository: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doc)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	// URL params never contain a slash, but keep the archive dir flat anyway.
	if file != filepath.Base(file) || !isArchive(file) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.dir, file))
}

func isArchive(name string) bool {
	return strings.HasSuffix(name, ".mhl") ||
		strings.HasSuffix(name, ".zip") ||
		strings.HasSuffix(name, ".tar.xz") ||
		strings.HasSuffix(name, ".txz")
}

// requestBaseURL reconstructs the URL the client reached us at, so archive
// URLs in the index point back to this server.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
