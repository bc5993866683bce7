package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/camden-git/photogallery/contentstore"
	"github.com/camden-git/photogallery/models"
	"github.com/camden-git/photogallery/schema"
	"github.com/camden-git/photogallery/views"
	"github.com/go-chi/chi/v5"
)

// GalleryHandler serves the read side: HTML pages and the JSON listing.
type GalleryHandler struct {
	Store  contentstore.Client
	Views  *views.Renderer
	Logger *slog.Logger
}

func NewGalleryHandler(store contentstore.Client, renderer *views.Renderer, logger *slog.Logger) *GalleryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GalleryHandler{Store: store, Views: renderer, Logger: logger}
}

func (gh *GalleryHandler) query(w http.ResponseWriter, r *http.Request, q contentstore.Query) ([]models.Photo, bool) {
	photos, err := gh.Store.Query(r.Context(), q)
	if err != nil {
		gh.Logger.Error("error querying photos", "featured_only", q.FeaturedOnly, "slug", q.Slug, "error", err)
		http.Error(w, "Failed to load photos", http.StatusInternalServerError)
		return nil, false
	}
	return photos, true
}

func (gh *GalleryHandler) renderHTML(w http.ResponseWriter, status int, render func(out io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		gh.Logger.Error("error rendering page", "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Home renders the featured photos.
func (gh *GalleryHandler) Home(w http.ResponseWriter, r *http.Request) {
	photos, ok := gh.query(w, r, contentstore.Query{FeaturedOnly: true, Order: contentstore.OrderDateTakenDesc})
	if !ok {
		return
	}
	gh.renderHTML(w, http.StatusOK, func(out io.Writer) error {
		return gh.Views.Grid(out, "Featured Photos", "home", photos)
	})
}

// Gallery renders every photo.
func (gh *GalleryHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	photos, ok := gh.query(w, r, contentstore.Query{Order: contentstore.OrderDateTakenDesc})
	if !ok {
		return
	}
	gh.renderHTML(w, http.StatusOK, func(out io.Writer) error {
		return gh.Views.Grid(out, "Gallery", "gallery", photos)
	})
}

func (gh *GalleryHandler) PhotoPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	photos, ok := gh.query(w, r, contentstore.Query{Slug: slug, Limit: 1})
	if !ok {
		return
	}
	if len(photos) == 0 {
		gh.renderHTML(w, http.StatusNotFound, func(out io.Writer) error {
			return gh.Views.NotFound(out, "No photo with slug '"+slug+"'")
		})
		return
	}
	gh.renderHTML(w, http.StatusOK, func(out io.Writer) error {
		return gh.Views.Photo(out, photos[0])
	})
}

// Admin renders the admin table, newest uploads first.
func (gh *GalleryHandler) Admin(w http.ResponseWriter, r *http.Request) {
	photos, ok := gh.query(w, r, contentstore.Query{Order: contentstore.OrderCreatedDesc})
	if !ok {
		return
	}
	gh.renderHTML(w, http.StatusOK, func(out io.Writer) error {
		return gh.Views.Admin(out, photos)
	})
}

// ListPhotos returns photos as JSON. Query parameters: featured=true|false,
// order=dateTaken|created, limit=N.
func (gh *GalleryHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	q := contentstore.Query{Order: contentstore.OrderDateTakenDesc}

	if v := r.URL.Query().Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			WriteMessage(w, http.StatusBadRequest, "Invalid value for 'featured'")
			return
		}
		q.FeaturedOnly = featured
	}
	if order := contentstore.Order(r.URL.Query().Get("order")); order != "" {
		if !order.Valid() {
			WriteMessage(w, http.StatusBadRequest, "Invalid value for 'order', expected dateTaken or created")
			return
		}
		q.Order = order
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			WriteMessage(w, http.StatusBadRequest, "Invalid value for 'limit'")
			return
		}
		q.Limit = limit
	}

	photos, err := gh.Store.Query(r.Context(), q)
	if err != nil {
		gh.Logger.Error("error listing photos", "error", err)
		WriteMessage(w, http.StatusInternalServerError, "An unexpected error occurred while listing photos.")
		return
	}
	if photos == nil {
		photos = []models.Photo{}
	}
	writeJSON(w, http.StatusOK, photos)
}

// Schema returns the registered document types.
func (gh *GalleryHandler) Schema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, schema.Registered())
}
