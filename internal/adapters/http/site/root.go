// Package site serves the embedded public marketing site.
package site

import (
	"context"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// Register attaches the public site at / on mux. More specific routes
// registered elsewhere take precedence.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/", NewRootHandler().HandleRoot)
}

// RootHandler resolves clean URLs against the embedded pages.
type RootHandler struct {
	files fs.FS
	srv   http.Handler
}

// NewRootHandler creates a root handler over the embedded site.
func NewRootHandler() *RootHandler {
	files := FS()
	return &RootHandler{files: files, srv: http.FileServerFS(files)}
}

// HandleRoot handles GET / and serves /games from games.html. Unknown paths
// and directory listings are 404.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	name, ok := h.resolve(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if name == "index.html" {
		// FileServer redirects explicit index.html requests back to /.
		http.ServeFileFS(w, r, h.files, name)
		return
	}
	r2 := r.Clone(r.Context())
	r2.URL.Path = "/" + name
	h.srv.ServeHTTP(w, r2)
}

// resolve maps a request path onto a regular file in the site.
func (h *RootHandler) resolve(p string) (string, bool) {
	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	if name == "" {
		name = "index.html"
	} else if path.Ext(name) == "" {
		name += ".html"
	}
	info, err := fs.Stat(h.files, name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return name, true
}
