// Package contentstore is the document store the site reads photos from and
// writes them to. Client is implemented by LocalClient (our own database and
// media store) and SanityClient (the hosted Sanity content API).
package contentstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/camden-git/photogallery/database"
	"github.com/camden-git/photogallery/models"
)

var (
	ErrNotFound   = errors.New("contentstore: document not found")
	ErrValidation = errors.New("contentstore: invalid input")
)

// RemoteError is a failure reported by the store itself.
type RemoteError struct {
	Op      string
	Status  int // HTTP status for remote stores, 0 otherwise
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	b.WriteString("contentstore: ")
	b.WriteString(e.Op)
	if e.Status != 0 {
		b.WriteString(": status ")
		b.WriteString(strconv.Itoa(e.Status))
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RemoteError) Unwrap() error { return e.Err }

type UploadOptions struct {
	Filename    string
	ContentType string
}

type Order string

const (
	OrderDateTakenDesc = Order(database.OrderDateTakenDesc)
	OrderCreatedDesc   = Order(database.OrderCreatedDesc)
)

// Valid reports whether o names a supported listing order.
func (o Order) Valid() bool {
	return database.IsValidPhotoOrder(database.PhotoOrder(o))
}

// Query selects photo documents.
type Query struct {
	FeaturedOnly bool
	Slug         string
	Order        Order
	Limit        int
}

// ImageOptions are URL builder parameters. Zero values are omitted.
type ImageOptions struct {
	Width   int
	Height  int
	Fit     string
	Quality int
}

var (
	GridImage      = ImageOptions{Width: 1200, Fit: "max", Quality: 82}
	ThumbnailImage = ImageOptions{Width: 160, Height: 160, Quality: 80}
	DetailImage    = ImageOptions{Width: 2000, Fit: "max", Quality: 85}
)

func (o ImageOptions) Values() url.Values {
	v := url.Values{}
	if o.Width > 0 {
		v.Set("w", strconv.Itoa(o.Width))
	}
	if o.Height > 0 {
		v.Set("h", strconv.Itoa(o.Height))
	}
	if o.Fit != "" {
		v.Set("fit", o.Fit)
	}
	if o.Quality > 0 {
		v.Set("q", strconv.Itoa(o.Quality))
	}
	return v
}

// Client is the document store contract used by the handlers.
type Client interface {
	// UploadAsset stores a binary of the given kind ("image") and returns the
	// asset document.
	UploadAsset(ctx context.Context, kind string, r io.Reader, opts UploadOptions) (*models.Asset, error)
	// Create persists a new document; the store assigns _id and system fields.
	Create(ctx context.Context, doc *models.Photo) (*models.Photo, error)
	// Patch starts a partial update of document id.
	Patch(id string) *Patch
	// Delete removes a document by id.
	Delete(ctx context.Context, id string) error
	// Query returns photo documents matching q.
	Query(ctx context.Context, q Query) ([]models.Photo, error)
	// ImageURL builds the URL an image asset reference is served from.
	ImageURL(ref string, opts ImageOptions) string
}

// CommitFunc applies a set of field values to document id.
type CommitFunc func(ctx context.Context, id string, set map[string]any) (*models.Photo, error)

// Patch collects field values and applies them on Commit.
type Patch struct {
	id     string
	set    map[string]any
	commit CommitFunc
}

func NewPatch(id string, commit CommitFunc) *Patch {
	return &Patch{id: id, set: map[string]any{}, commit: commit}
}

// Set merges fields into the patch.
func (p *Patch) Set(fields map[string]any) *Patch {
	for k, v := range fields {
		p.set[k] = v
	}
	return p
}

func (p *Patch) ID() string { return p.id }

// Fields returns a copy of the values set so far.
func (p *Patch) Fields() map[string]any {
	out := make(map[string]any, len(p.set))
	for k, v := range p.set {
		out[k] = v
	}
	return out
}

// Commit applies the patch and returns the updated document.
func (p *Patch) Commit(ctx context.Context) (*models.Photo, error) {
	if p.id == "" {
		return nil, fmt.Errorf("%w: patch needs a document id", ErrValidation)
	}
	if len(p.set) == 0 {
		return nil, fmt.Errorf("%w: patch for %s sets no fields", ErrValidation, p.id)
	}
	return p.commit(ctx, p.id, p.Fields())
}

// assetFilename turns an image asset id ("image-<hash>[-<w>x<h>]-<ext>") into
// the stored file name ("<hash>[-<w>x<h>].<ext>").
func assetFilename(ref string) (string, bool) {
	rest, ok := strings.CutPrefix(ref, "image-")
	if !ok {
		return "", false
	}
	i := strings.LastIndex(rest, "-")
	if i <= 0 || i == len(rest)-1 {
		return "", false
	}
	return rest[:i] + "." + rest[i+1:], true
}

func withQuery(base string, opts ImageOptions) string {
	if q := opts.Values().Encode(); q != "" {
		return base + "?" + q
	}
	return base
}
