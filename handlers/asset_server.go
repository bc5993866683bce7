package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/camden-git/photogallery/media"
	"github.com/go-chi/chi/v5"
)

// AssetServer serves uploaded asset binaries from local storage. It is
// mounted on a wildcard route and expects the path relative to the storage
// root in the wildcard, e.g.
//
//	r.Get("/assets/*", handlers.AssetServer(localStore))
//
// Image builder query parameters (w, h, fit, q) are ignored; the original is
// served as stored.
func AssetServer(store *media.LocalStorage) http.HandlerFunc {
	slog.Info("serving local assets", "dir", store.BasePath())

	return func(w http.ResponseWriter, r *http.Request) {
		relativePath := chi.URLParam(r, "*")
		if relativePath == "" || strings.Contains(relativePath, "..") {
			http.Error(w, "Invalid asset path", http.StatusBadRequest)
			return
		}

		fullPath, err := store.GetFullPath(relativePath)
		if err != nil {
			http.Error(w, "Forbidden", http.StatusForbidden)
			slog.Warn("attempted asset access outside storage directory", "request", r.URL.Path, "error", err)
			return
		}

		info, err := os.Stat(fullPath)
		if os.IsNotExist(err) || (err == nil && info.IsDir()) {
			http.NotFound(w, r)
			return
		} else if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			slog.Error("error stating asset file", "path", fullPath, "error", err)
			return
		}

		cacheDuration := 24 * time.Hour
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(cacheDuration.Seconds())))
		w.Header().Set("Expires", time.Now().Add(cacheDuration).Format(http.TimeFormat))

		http.ServeFile(w, r, fullPath)
	}
}
