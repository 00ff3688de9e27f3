// Package site serves the frontend: files from a public directory when one
// exists, otherwise an embedded placeholder page.
package site

import (
	"context"
	"net/http"
	"os"
)

// Register attaches the frontend at / to mux. publicDir is used when it is
// an existing directory.
func Register(_ context.Context, mux *http.ServeMux, publicDir string) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /", NewRootHandler(publicDir))
}

// RootHandler serves the frontend files.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a root handler for publicDir, falling back to the
// embedded placeholder.
func NewRootHandler(publicDir string) *RootHandler {
	return &RootHandler{files: http.FileServer(Dir(publicDir))}
}

// ServeHTTP serves GET / and static assets.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.files.ServeHTTP(w, r)
}

// Dir returns the file system for publicDir, or the embedded one when
// publicDir is empty or not a directory.
func Dir(publicDir string) http.FileSystem {
	if publicDir != "" {
		if st, err := os.Stat(publicDir); err == nil && st.IsDir() {
			return http.Dir(publicDir)
		}
	}
	return FS()
}
