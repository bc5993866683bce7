package contentstore

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"path"

	"github.com/camden-git/photogallery/database"
	"github.com/camden-git/photogallery/media"
	"github.com/camden-git/photogallery/models"
	"github.com/camden-git/photogallery/repository"
	"github.com/camden-git/photogallery/workers"
	"gorm.io/gorm"
)

// MetadataQueue accepts asset metadata extraction jobs.
type MetadataQueue interface {
	QueueJob(job workers.MetadataJob) bool
}

// LocalClient is a self-hosted document store: documents live in the
// database, binaries in a media.Store.
type LocalClient struct {
	Photos   repository.PhotoRepositoryInterface
	Assets   repository.AssetRepositoryInterface
	Media    media.Store
	SubDir   string        // media store directory image assets are saved in
	Metadata MetadataQueue // optional
	Logger   *slog.Logger
}

func NewLocalClient(db *gorm.DB, store media.Store, subDir string, metadata MetadataQueue, logger *slog.Logger) *LocalClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalClient{
		Photos:   repository.NewPhotoRepository(db),
		Assets:   repository.NewAssetRepository(db),
		Media:    store,
		SubDir:   subDir,
		Metadata: metadata,
		Logger:   logger,
	}
}

// UploadAsset stores an image. Assets are content addressed: uploading the
// same bytes again returns the existing asset document.
func (c *LocalClient) UploadAsset(ctx context.Context, kind string, r io.Reader, opts UploadOptions) (*models.Asset, error) {
	assetType := media.ParseAssetType(kind)
	if assetType != media.AssetTypeImage {
		return nil, fmt.Errorf("%w: unsupported asset kind %q", ErrValidation, kind)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &RemoteError{Op: "upload asset", Message: "failed to read upload", Err: err}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrValidation)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: upload is not a supported image: %v", ErrValidation, err)
	}

	sum := sha1.Sum(data)
	hash := hex.EncodeToString(sum[:])
	ext := media.ExtensionFor(opts.Filename, opts.ContentType)
	id := "image-" + hash + "-" + ext

	existing, err := c.Assets.GetByID(ctx, id)
	if err == nil {
		existing.URL = c.Media.URL(existing.Path)
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &RemoteError{Op: "upload asset", Err: err}
	}

	contentType := media.ContentTypeFor(ext)
	relPath, err := c.Media.Save(ctx, assetType, hash+"."+ext, contentType, bytes.NewReader(data))
	if err != nil {
		return nil, &RemoteError{Op: "upload asset", Message: "failed to store binary", Err: err}
	}

	asset := &models.Asset{
		ID:               id,
		Type:             models.ImageAssetType,
		OriginalFilename: opts.Filename,
		MimeType:         contentType,
		Extension:        ext,
		Size:             int64(len(data)),
		SHA1Hash:         hash,
		Path:             relPath,
		MetadataStatus:   models.StatusPending,
	}
	if err := c.Assets.Create(ctx, asset); err != nil {
		if errors.Is(err, repository.ErrAssetExists) {
			// a concurrent upload of the same bytes won; the binary at relPath is its
			return c.existingAsset(ctx, asset), nil
		}
		if _, getErr := c.Assets.GetByID(ctx, id); errors.Is(getErr, gorm.ErrRecordNotFound) {
			if delErr := c.Media.Delete(ctx, relPath); delErr != nil {
				c.Logger.Warn("failed to remove orphaned asset binary", "path", relPath, "error", delErr)
			}
		}
		return nil, &RemoteError{Op: "upload asset", Err: err}
	}
	asset.URL = c.Media.URL(relPath)

	if c.Metadata != nil {
		c.Metadata.QueueJob(workers.MetadataJob{AssetID: asset.ID, Path: relPath})
	}
	c.Logger.Info("asset uploaded", "asset_id", asset.ID, "size", asset.Size)
	return asset, nil
}

// existingAsset returns the stored row for an asset that lost an insert
// race, or the built asset when the row cannot be read back. Both describe
// the same bytes at the same path.
func (c *LocalClient) existingAsset(ctx context.Context, built *models.Asset) *models.Asset {
	stored, err := c.Assets.GetByID(ctx, built.ID)
	if err != nil {
		c.Logger.Warn("failed to read back existing asset", "asset_id", built.ID, "error", err)
		stored = built
	}
	stored.URL = c.Media.URL(stored.Path)
	return stored
}

func (c *LocalClient) Create(ctx context.Context, doc *models.Photo) (*models.Photo, error) {
	if doc == nil || doc.Title == "" {
		return nil, fmt.Errorf("%w: document needs a title", ErrValidation)
	}
	if doc.Type != "" && doc.Type != models.PhotoDocumentType {
		return nil, fmt.Errorf("%w: unsupported document type %q", ErrValidation, doc.Type)
	}

	created := *doc
	if err := c.Photos.Create(ctx, &created); err != nil {
		return nil, &RemoteError{Op: "create", Err: err}
	}
	return &created, nil
}

func (c *LocalClient) Patch(id string) *Patch {
	return NewPatch(id, c.commitPatch)
}

func (c *LocalClient) commitPatch(ctx context.Context, id string, set map[string]any) (*models.Photo, error) {
	if err := c.Photos.UpdateFields(ctx, id, set); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &RemoteError{Op: "patch", Message: "document " + id + " not found", Err: ErrNotFound}
		}
		return nil, &RemoteError{Op: "patch", Err: err}
	}
	photo, err := c.Photos.GetByID(ctx, id)
	if err != nil {
		return nil, &RemoteError{Op: "patch", Err: err}
	}
	return photo, nil
}

// Delete removes document id. Deleting a document that does not exist
// succeeds without changes.
func (c *LocalClient) Delete(ctx context.Context, id string) error {
	n, err := c.Photos.Delete(ctx, id)
	if err != nil {
		return &RemoteError{Op: "delete", Err: err}
	}
	if n == 0 {
		c.Logger.Debug("delete matched no document", "id", id)
	}
	return nil
}

func (c *LocalClient) Query(ctx context.Context, q Query) ([]models.Photo, error) {
	filter := database.PhotoFilter{
		FeaturedOnly: q.FeaturedOnly,
		Slug:         q.Slug,
		Order:        database.PhotoOrder(q.Order),
	}
	if q.Limit > 0 {
		filter.Limit = uint64(q.Limit)
	}
	photos, err := c.Photos.List(ctx, filter)
	if err != nil {
		return nil, &RemoteError{Op: "query", Err: err}
	}
	return photos, nil
}

// ImageURL resolves an asset reference to the media store URL. Builder
// options are passed through as query parameters.
func (c *LocalClient) ImageURL(ref string, opts ImageOptions) string {
	filename, ok := assetFilename(ref)
	if !ok {
		return ""
	}
	return withQuery(c.Media.URL(path.Join(c.SubDir, filename)), opts)
}
