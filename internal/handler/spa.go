// Package handler contains the HTTP request handlers for the job tracker.
//
// Handlers are the glue between HTTP and the service layer: they parse the
// request, call one service method, and translate the result (or error)
// back into JSON. Business rules never live here.
package handler

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SPAHandler serves the built frontend bundle. Any path that doesn't match
// a real file falls back to index.html so client-side routes like
// /questions/abc123 survive a full page reload.
type SPAHandler struct {
	staticDir string
	fs        http.Handler
	logger    *slog.Logger
}

func NewSPAHandler(staticDir string, logger *slog.Logger) *SPAHandler {
	return &SPAHandler{
		staticDir: staticDir,
		fs:        http.FileServer(http.Dir(staticDir)),
		logger:    logger,
	}
}

// ServeHTTP serves the requested file if it exists on disk, otherwise
// index.html. The path is cleaned before the stat so "../" can't escape
// the static dir.
func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.staticDir, filepath.Clean("/"+strings.TrimPrefix(r.URL.Path, "/")))

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		// Not a real asset — hand the SPA its entry point and let the
		// client router take over.
		http.ServeFile(w, r, filepath.Join(h.staticDir, "index.html"))
		return
	}

	h.fs.ServeHTTP(w, r)
}
