package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/camden-git/photogallery/contentstore"
	"github.com/camden-git/photogallery/models"
)

// fakeStore is an in-memory contentstore.Client that counts calls.
type fakeStore struct {
	mu     sync.Mutex
	docs   map[string]*models.Photo
	nextID int

	uploads, creates, patches, deletes, queries int

	uploadErr, createErr, patchErr, deleteErr, queryErr error
	lastUpload                                          contentstore.UploadOptions
	lastUploadBody                                      string
	lastQuery                                           contentstore.Query
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string]*models.Photo{}}
}

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads + f.creates + f.patches + f.deletes + f.queries
}

func (f *fakeStore) UploadAsset(ctx context.Context, kind string, r io.Reader, opts contentstore.UploadOptions) (*models.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	data, _ := io.ReadAll(r)
	f.lastUpload = opts
	f.lastUploadBody = string(data)
	return &models.Asset{ID: "image-hash-jpg", Type: models.ImageAssetType}, nil
}

func (f *fakeStore) Create(ctx context.Context, doc *models.Photo) (*models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	created := *doc
	created.ID = fmt.Sprintf("photo-%d", f.nextID)
	created.Rev = "rev-1"
	created.CreatedAt = time.Now().UTC()
	f.docs[created.ID] = &created
	out := created
	return &out, nil
}

func (f *fakeStore) Patch(id string) *contentstore.Patch {
	return contentstore.NewPatch(id, func(ctx context.Context, id string, set map[string]any) (*models.Photo, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.patches++
		if f.patchErr != nil {
			return nil, f.patchErr
		}
		doc, ok := f.docs[id]
		if !ok {
			return nil, &contentstore.RemoteError{Op: "patch", Err: contentstore.ErrNotFound}
		}
		if title, ok := set["title"].(string); ok {
			doc.Title = title
		}
		doc.Rev = "rev-2"
		out := *doc
		return &out, nil
	})
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeStore) Query(ctx context.Context, q contentstore.Query) ([]models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	f.lastQuery = q
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []models.Photo
	for _, d := range f.docs {
		if q.FeaturedOnly && !d.Featured {
			continue
		}
		if q.Slug != "" && d.Slug.Current != q.Slug {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ImageURL(ref string, opts contentstore.ImageOptions) string {
	return "https://img.test/" + ref + "?" + opts.Values().Encode()
}

func (f *fakeStore) put(p models.Photo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := p
	f.docs[p.ID] = &cp
}

var errStoreDown = errors.New("store unavailable")
