package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/camden-git/photogallery/contentstore"
	"github.com/camden-git/photogallery/logging"
	"github.com/camden-git/photogallery/media"
	"github.com/camden-git/photogallery/models"
	"github.com/camden-git/photogallery/views"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGalleryRouter(t *testing.T, store *fakeStore) http.Handler {
	t.Helper()
	renderer, err := views.New("Test Gallery", store.ImageURL)
	require.NoError(t, err)
	gh := NewGalleryHandler(store, renderer, logging.Discard())

	r := chi.NewRouter()
	r.Get("/", gh.Home)
	r.Get("/gallery", gh.Gallery)
	r.Get("/photo/{slug}", gh.PhotoPage)
	r.Get("/admin", gh.Admin)
	r.Get("/api/photos", gh.ListPhotos)
	r.Get("/api/schema", gh.Schema)
	return r
}

func seedGallery(store *fakeStore) {
	taken := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	store.put(models.Photo{ID: "a", Title: "Featured One", Slug: models.NewSlug("featured-one"), Featured: true, DateTaken: &taken, Image: models.NewImageField("image-a-jpg")})
	store.put(models.Photo{ID: "b", Title: "Plain", Slug: models.NewSlug("plain"), Image: models.NewImageField("image-b-jpg")})
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGallery_HomeShowsFeaturedOnly(t *testing.T) {
	store := newFakeStore()
	seedGallery(store)
	rec := get(newTestGalleryRouter(t, store), "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Featured One")
	assert.NotContains(t, rec.Body.String(), "Plain")
	assert.True(t, store.lastQuery.FeaturedOnly)
	assert.Equal(t, contentstore.OrderDateTakenDesc, store.lastQuery.Order)
}

func TestGallery_AllPhotosAndAdmin(t *testing.T) {
	store := newFakeStore()
	seedGallery(store)
	router := newTestGalleryRouter(t, store)

	rec := get(router, "/gallery")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Featured One")
	assert.Contains(t, rec.Body.String(), "Plain")

	rec = get(router, "/admin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "N/A")
	assert.Equal(t, contentstore.OrderCreatedDesc, store.lastQuery.Order)
}

func TestGallery_PhotoPage(t *testing.T) {
	store := newFakeStore()
	seedGallery(store)
	router := newTestGalleryRouter(t, store)

	rec := get(router, "/photo/plain")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Plain</h1>")

	rec = get(router, "/photo/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGallery_QueryFailure(t *testing.T) {
	store := newFakeStore()
	store.queryErr = errStoreDown
	router := newTestGalleryRouter(t, store)

	assert.Equal(t, http.StatusInternalServerError, get(router, "/").Code)
	assert.Equal(t, http.StatusInternalServerError, get(router, "/api/photos").Code)
}

func TestListPhotos(t *testing.T) {
	store := newFakeStore()
	seedGallery(store)
	router := newTestGalleryRouter(t, store)

	rec := get(router, "/api/photos?featured=true&order=created&limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	var photos []models.Photo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &photos))
	require.Len(t, photos, 1)
	assert.Equal(t, "a", photos[0].ID)
	assert.Equal(t, contentstore.Query{FeaturedOnly: true, Order: contentstore.OrderCreatedDesc, Limit: 5}, store.lastQuery)

	for _, bad := range []string{"?featured=maybe", "?order=title", "?limit=-1"} {
		assert.Equal(t, http.StatusBadRequest, get(router, "/api/photos"+bad).Code, bad)
	}

	empty := newFakeStore()
	rec = get(newTestGalleryRouter(t, empty), "/api/photos")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestSchemaEndpoint(t *testing.T) {
	rec := get(newTestGalleryRouter(t, newFakeStore()), "/api/schema")
	require.Equal(t, http.StatusOK, rec.Code)

	var types []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &types))
	require.Len(t, types, 1)
	assert.Equal(t, "photo", types[0].Name)
}

func TestAssetServer(t *testing.T) {
	dir := t.TempDir()
	store, err := media.NewLocalStorage(dir, "/assets", map[media.AssetType]string{media.AssetTypeImage: "images"})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", "abc.png"), []byte("png"), 0644))

	r := chi.NewRouter()
	r.Get("/assets/*", AssetServer(store))

	rec := get(r, "/assets/images/abc.png?w=1200&q=82")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=")

	assert.Equal(t, http.StatusNotFound, get(r, "/assets/images/missing.png").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/assets/images").Code)
}
