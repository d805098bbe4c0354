package uistatic

import (
	"embed"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed all:app
var appFS embed.FS

// Handler serves the embedded question form.
func Handler() http.Handler {
	sub, err := fs.Sub(appFS, "app")
	if err != nil {
		return http.NotFoundHandler()
	}
	return New(sub)
}

// New serves files from pages. Paths that look like assets must exist;
// every other path renders index.html so the form can own its routes.
func New(pages fs.FS) http.Handler {
	files := http.FileServer(http.FS(pages))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean(strings.TrimPrefix(r.URL.Path, "/"))
		switch {
		case name == "." || name == "index.html":
			writeIndex(w, r, pages)
		case exists(pages, name):
			files.ServeHTTP(w, r)
		case path.Ext(name) != "":
			http.NotFound(w, r)
		default:
			writeIndex(w, r, pages)
		}
	})
}

func exists(pages fs.FS, name string) bool {
	info, err := fs.Stat(pages, name)
	return err == nil && !info.IsDir()
}

func writeIndex(w http.ResponseWriter, r *http.Request, pages fs.FS) {
	index, err := pages.Open("index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer func() { _ = index.Close() }()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = io.Copy(w, index)
}
