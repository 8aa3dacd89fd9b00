// Package site serves the forest page itself.
package site

import (
	"context"
	"embed"
	"errors"
	"io"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed static/*
var staticFS embed.FS

// ErrServe is returned when an embedded asset cannot be served.
var ErrServe = errors.New("site serve failed")

// Register attaches the page routes to r.
//
//	GET /           -> the forest page
//	GET /forest.js  -> the script that mounts the SVG and applies frames
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	h := NewRootHandler()
	r.Get("/", h.HandleRoot)
	r.Get("/forest.js", h.HandleAsset("forest.js", "application/javascript; charset=utf-8"))
}

// RootHandler serves embedded page assets.
type RootHandler struct {
	files http.FileSystem
}

// NewRootHandler serves the files under static/.
func NewRootHandler() *RootHandler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return &RootHandler{files: http.FS(sub)}
}

// HandleRoot handles GET / with the page shell.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	h.HandleAsset("index.html", "text/html; charset=utf-8")(w, r)
}

// HandleAsset returns a handler writing one embedded file.
func (h *RootHandler) HandleAsset(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		f, err := h.files.Open(name)
		if err != nil {
			http.Error(w, ErrServe.Error(), http.StatusInternalServerError)
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		_, _ = io.Copy(w, f)
	}
}
