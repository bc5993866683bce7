package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/camden-git/photogallery/contentstore"
	"github.com/camden-git/photogallery/models"
	"github.com/camden-git/photogallery/schema"
	"github.com/go-chi/chi/v5"
)

const (
	msgCreateRequired = "Title and image file are required"
	msgUpdateRequired = "Photo ID ('id') and title are required"
	msgDeleteRequired = "Photo ID ('id') is required in the request body"
	msgInvalidBody    = "Invalid request body"
	msgDeleted        = "Photo deleted successfully"

	msgCreateFailed = "An unexpected error occurred while creating the photo."
	msgUpdateFailed = "An unexpected error occurred while updating the photo."
	msgDeleteFailed = "An unexpected error occurred while deleting the photo."

	maxJSONBodyBytes = 1 << 20
)

// PhotoActionHandler serves the create, update and delete actions. It keeps
// no state; every request goes straight to the content store.
type PhotoActionHandler struct {
	Store          contentstore.Client
	MaxUploadBytes int64
	Logger         *slog.Logger
	Now            func() time.Time
}

func NewPhotoActionHandler(store contentstore.Client, maxUploadBytes int64, logger *slog.Logger) *PhotoActionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PhotoActionHandler{
		Store:          store,
		MaxUploadBytes: maxUploadBytes,
		Logger:         logger,
		Now:            time.Now,
	}
}

// Routes returns a router serving only the actions.
func (h *PhotoActionHandler) Routes(limiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	h.Register(r, limiter)
	return r
}

// Register adds the action routes to r; limiter, when set, wraps all of them.
func (h *PhotoActionHandler) Register(r chi.Router, limiter func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter)
		}
		r.Post("/create", h.CreatePhoto)
		r.With(RequireJSON).Post("/update", h.UpdatePhoto)
		r.With(RequireJSON).Post("/delete", h.DeletePhoto)
	})
}

// CreatePhoto handles a multipart upload of a title and an image: the image
// is uploaded as an asset, then a photo document referencing it is created.
func (h *PhotoActionHandler) CreatePhoto(w http.ResponseWriter, r *http.Request) {
	title, file, header, ok := h.readCreateForm(w, r)
	if !ok {
		WriteMessage(w, http.StatusBadRequest, msgCreateRequired)
		return
	}
	defer file.Close()

	asset, err := h.Store.UploadAsset(r.Context(), "image", file, contentstore.UploadOptions{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		h.Logger.Error("error creating photo: asset upload failed", "title", title, "error", err)
		WriteMessage(w, http.StatusInternalServerError, msgCreateFailed)
		return
	}

	takenAt := h.Now().UTC()
	doc := &models.Photo{
		Type:      models.PhotoDocumentType,
		Title:     title,
		Slug:      models.NewSlug(schema.PhotoSlug(title)),
		Image:     models.NewImageField(asset.ID),
		Featured:  schema.PhotoFeaturedDefault(),
		DateTaken: &takenAt,
	}

	created, err := h.Store.Create(r.Context(), doc)
	if err != nil {
		h.Logger.Error("error creating photo", "title", title, "asset_id", asset.ID, "error", err)
		WriteMessage(w, http.StatusInternalServerError, msgCreateFailed)
		return
	}

	h.Logger.Info("photo created", "id", created.ID, "slug", created.Slug.Current)
	writeJSON(w, http.StatusCreated, created)
}

func (h *PhotoActionHandler) readCreateForm(w http.ResponseWriter, r *http.Request) (string, multipart.File, *multipart.FileHeader, bool) {
	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.Logger.Debug("unparsable create form", "error", err)
		return "", nil, nil, false
	}

	title := r.FormValue("title")
	if strings.TrimSpace(title) == "" {
		return "", nil, nil, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return "", nil, nil, false
	}
	if header.Size == 0 {
		file.Close()
		return "", nil, nil, false
	}
	return title, file, header, true
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// UpdatePhoto sets a new title on an existing photo.
func (h *PhotoActionHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	if err := decodeJSONBody(w, r, &req); err != nil {
		WriteMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if req.ID == "" || strings.TrimSpace(req.Title) == "" {
		WriteMessage(w, http.StatusBadRequest, msgUpdateRequired)
		return
	}

	updated, err := h.Store.Patch(req.ID).Set(map[string]any{"title": req.Title}).Commit(r.Context())
	if err != nil {
		h.Logger.Error("error updating photo", "id", req.ID, "error", err)
		WriteMessage(w, http.StatusInternalServerError, msgUpdateFailed)
		return
	}

	h.Logger.Info("photo updated", "id", updated.ID)
	writeJSON(w, http.StatusOK, updated)
}

// DeletePhoto removes a photo document. Existence is not checked first.
func (h *PhotoActionHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeJSONBody(w, r, &req); err != nil {
		WriteMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if req.ID == "" {
		WriteMessage(w, http.StatusBadRequest, msgDeleteRequired)
		return
	}

	if err := h.Store.Delete(r.Context(), req.ID); err != nil {
		h.Logger.Error("error deleting photo", "id", req.ID, "error", err)
		WriteMessage(w, http.StatusInternalServerError, msgDeleteFailed)
		return
	}

	h.Logger.Info("photo deleted", "id", req.ID)
	WriteMessage(w, http.StatusOK, msgDeleted)
}
