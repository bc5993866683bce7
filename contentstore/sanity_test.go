package contentstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/camden-git/photogallery/logging"
	"github.com/camden-git/photogallery/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSanity(t *testing.T, h http.HandlerFunc) *SanityClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewSanityClient(SanityConfig{
		ProjectID:  "proj",
		Dataset:    "production",
		APIVersion: "2025-01-28",
		Token:      "secret",
		APIBaseURL: srv.URL,
	}, logging.Discard())
}

const photoDoc = `{"_id":"abc","_type":"photo","_rev":"r1","_createdAt":"2024-01-01T00:00:00Z","_updatedAt":"2024-01-01T00:00:00Z",
"title":"Sunset Over Bay","slug":{"_type":"slug","current":"sunset-over-bay"},
"image":{"_type":"image","asset":{"_type":"reference","_ref":"image-hash-100x50-jpg"}},
"featured":true,"dateTaken":"2024-01-01T10:00:00.000Z"}`

func TestSanityClient_Create(t *testing.T) {
	var mutation map[string]any
	client := newTestSanity(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2025-01-28/data/mutate/production", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("returnDocuments"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body struct {
			Mutations []map[string]any `json:"mutations"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Mutations, 1)
		mutation = body.Mutations[0]

		io.WriteString(w, `{"transactionId":"tx","results":[{"id":"abc","operation":"create","document":`+photoDoc+`}]}`)
	})

	doc := &models.Photo{
		Type:  models.PhotoDocumentType,
		Title: "Sunset Over Bay",
		Slug:  models.NewSlug("sunset-over-bay"),
		Image: models.NewImageField("image-hash-100x50-jpg"),
	}
	created, err := client.Create(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "abc", created.ID)
	assert.Equal(t, "sunset-over-bay", created.Slug.Current)
	require.NotNil(t, created.DateTaken)

	create := mutation["create"].(map[string]any)
	assert.Equal(t, "photo", create["_type"])
	assert.NotContains(t, create, "_id")
	assert.NotContains(t, create, "_createdAt")
	assert.Equal(t, false, create["featured"])
}

func TestSanityClient_PatchAndDelete(t *testing.T) {
	var mutations []map[string]any
	client := newTestSanity(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Mutations []map[string]any `json:"mutations"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mutations = append(mutations, body.Mutations...)
		if _, ok := body.Mutations[0]["delete"]; ok {
			io.WriteString(w, `{"transactionId":"tx2","results":[]}`)
			return
		}
		io.WriteString(w, `{"transactionId":"tx","results":[{"id":"abc","operation":"update","document":`+photoDoc+`}]}`)
	})
	ctx := context.Background()

	_, err := client.Patch("abc").Set(map[string]any{"title": "Sunset Over Bay"}).Commit(ctx)
	require.NoError(t, err)
	require.NoError(t, client.Delete(ctx, "missing"))

	require.Len(t, mutations, 2)
	patch := mutations[0]["patch"].(map[string]any)
	assert.Equal(t, "abc", patch["id"])
	assert.Equal(t, map[string]any{"title": "Sunset Over Bay"}, patch["set"])
	assert.Equal(t, map[string]any{"id": "missing"}, mutations[1]["delete"])
}

func TestSanityClient_ErrorResponses(t *testing.T) {
	client := newTestSanity(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"error":{"description":"Document \"abc\" not found","type":"mutationError"}}`)
	})

	_, err := client.Patch("abc").Set(map[string]any{"title": "x"}).Commit(context.Background())
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusConflict, remote.Status)
	assert.Equal(t, `Document "abc" not found`, remote.Message)
}

func TestSanityClient_UploadAsset(t *testing.T) {
	client := newTestSanity(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2025-01-28/assets/images/production", r.URL.Path)
		assert.Equal(t, "bay.jpg", r.URL.Query().Get("filename"))
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
		data, _ := io.ReadAll(r.Body)
		assert.Equal(t, "jpegbytes", string(data))
		io.WriteString(w, `{"document":{"_id":"image-hash-100x50-jpg","_type":"sanity.imageAsset","extension":"jpg","mimeType":"image/jpeg","size":9,
"url":"https://cdn.sanity.io/images/proj/production/hash-100x50.jpg","metadata":{"dimensions":{"width":100,"height":50,"aspectRatio":2},"lqip":"data:..."}}}`)
	})

	asset, err := client.UploadAsset(context.Background(), "image", strings.NewReader("jpegbytes"), UploadOptions{Filename: "bay.jpg", ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "image-hash-100x50-jpg", asset.ID)
	require.NotNil(t, asset.Metadata)
	assert.Equal(t, 100, asset.Metadata.Dimensions.Width)

	_, err = client.UploadAsset(context.Background(), "file", strings.NewReader("x"), UploadOptions{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSanityClient_Query(t *testing.T) {
	client := newTestSanity(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2025-01-28/data/query/production", r.URL.Path)
		assert.Equal(t, `*[_type == "photo" && featured == true && slug.current == $slug] | order(dateTaken desc)`, r.URL.Query().Get("query"))
		assert.Equal(t, `"sunset-over-bay"`, r.URL.Query().Get("$slug"))
		io.WriteString(w, `{"result":[`+photoDoc+`]}`)
	})

	photos, err := client.Query(context.Background(), Query{FeaturedOnly: true, Slug: "sunset-over-bay"})
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "image-hash-100x50-jpg", photos[0].Image.Asset.Ref)
}

func TestGroq(t *testing.T) {
	q, params := groq(Query{Order: OrderCreatedDesc, Limit: 10})
	assert.Equal(t, `*[_type == "photo"] | order(_createdAt desc)[0...10]`, q)
	assert.Empty(t, params)

	q, _ = groq(Query{FeaturedOnly: true, Limit: 3})
	assert.Equal(t, `*[_type == "photo" && featured == true] | order(dateTaken desc)`, q)
}

func TestSanityClient_ImageURL(t *testing.T) {
	client := NewSanityClient(SanityConfig{ProjectID: "proj", Dataset: "production", APIVersion: "2025-01-28"}, logging.Discard())
	assert.Equal(t,
		"https://cdn.sanity.io/images/proj/production/hash-100x50.jpg?fit=max&q=82&w=1200",
		client.ImageURL("image-hash-100x50-jpg", GridImage))
	assert.Empty(t, client.ImageURL("not-an-asset", GridImage))
}

func TestNewSanityClient_NoFixedTimeout(t *testing.T) {
	c := NewSanityClient(SanityConfig{ProjectID: "proj", Dataset: "production", APIVersion: "1"}, nil)
	assert.Zero(t, c.httpClient.Timeout)
}

func TestNewSanityClient_CDN(t *testing.T) {
	c := NewSanityClient(SanityConfig{ProjectID: "proj", Dataset: "production", APIVersion: "1", UseCDN: true}, nil)
	assert.Equal(t, "https://proj.apicdn.sanity.io", c.queryBase)
	assert.Equal(t, "https://proj.api.sanity.io", c.apiBase)

	c = NewSanityClient(SanityConfig{ProjectID: "proj", Dataset: "production", APIVersion: "1", UseCDN: true, Token: "t"}, nil)
	assert.Equal(t, "https://proj.api.sanity.io", c.queryBase)
}
