package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/camden-git/photogallery/database"
	"github.com/camden-git/photogallery/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// photoColumns maps patchable document fields to their columns.
var photoColumns = map[string]string{
	"title":       "title",
	"description": "description",
	"featured":    "featured",
	"dateTaken":   "date_taken",
	"camera":      "camera",
	"image.alt":   "image_alt",
}

// PhotoRepository handles database operations for Photo documents
type PhotoRepository struct {
	DB *gorm.DB
}

// NewPhotoRepository creates a new instance of PhotoRepository
func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{DB: db}
}

func newRevision() string {
	return uuid.NewString()
}

// Create inserts a new photo document. ID and revision are assigned here when
// the caller leaves them empty.
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	now := time.Now().UTC()
	if photo.ID == "" {
		photo.ID = uuid.NewString()
	}
	if photo.Type == "" {
		photo.Type = models.PhotoDocumentType
	}
	if photo.CreatedAt.IsZero() {
		photo.CreatedAt = now
	}
	photo.UpdatedAt = now
	photo.Rev = newRevision()

	if err := r.DB.WithContext(ctx).Create(photo).Error; err != nil {
		return fmt.Errorf("failed to create photo %q: %w", photo.Title, err)
	}
	return nil
}

// GetByID retrieves a photo document by its ID
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	var photo models.Photo
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&photo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get photo by ID %s: %w", id, err)
	}
	return &photo, nil
}

// List retrieves photo documents matching filter. For the dateTaken order,
// photos taken at the same instant are ordered naturally by title.
func (r *PhotoRepository) List(ctx context.Context, filter database.PhotoFilter) ([]models.Photo, error) {
	where, args, err := filter.Where()
	if err != nil {
		return nil, err
	}

	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		if sqlStr, sqlArgs, err := filter.ToSql(); err == nil {
			slog.DebugContext(ctx, "listing photos", "sql", sqlStr, "args", sqlArgs)
		}
	}

	// the natural title tie-break runs in memory, so the dateTaken order
	// applies the limit after sorting
	byDate := filter.Order != database.OrderCreatedDesc

	q := r.DB.WithContext(ctx).Where(where, args...)
	for _, term := range filter.OrderBy() {
		q = q.Order(term)
	}
	if filter.Limit > 0 && !byDate {
		q = q.Limit(int(filter.Limit))
	}

	var photos []models.Photo
	if err := q.Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}

	if byDate {
		models.SortPhotosByDateTaken(photos)
		if filter.Limit > 0 && uint64(len(photos)) > filter.Limit {
			photos = photos[:filter.Limit]
		}
	}
	return photos, nil
}

// UpdateFields sets the given document fields on a photo. Keys are document
// field names (see photoColumns); unknown keys are rejected. The revision and
// updated timestamp always change.
func (r *PhotoRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return fmt.Errorf("no fields provided for photo %s", id)
	}

	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
		"rev":        newRevision(),
	}
	for name, value := range fields {
		column, ok := photoColumns[name]
		if !ok {
			return fmt.Errorf("field %q cannot be set on photo documents", name)
		}
		updates[column] = value
	}

	result := r.DB.WithContext(ctx).Model(&models.Photo{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update photo ID %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a photo document by its ID and returns the number of removed
// rows. Deleting an unknown ID is not an error.
func (r *PhotoRepository) Delete(ctx context.Context, id string) (int64, error) {
	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Photo{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete photo ID %s: %w", id, result.Error)
	}
	return result.RowsAffected, nil
}
