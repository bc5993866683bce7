package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/camden-git/photogallery/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrAssetExists is returned by Create when a row with the same id is
// already stored. The existing row is left untouched.
var ErrAssetExists = errors.New("asset already exists")

// AssetRepository handles database operations for Asset documents
type AssetRepository struct {
	DB *gorm.DB
}

// NewAssetRepository creates a new instance of AssetRepository
func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{DB: db}
}

// Create creates a new asset record in the database
func (r *AssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	now := time.Now().UTC()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now
	}
	asset.UpdatedAt = now
	if asset.Type == "" {
		asset.Type = models.ImageAssetType
	}
	if asset.MetadataStatus == "" {
		asset.MetadataStatus = models.StatusPending
	}

	result := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(asset)
	if result.Error != nil {
		return fmt.Errorf("failed to create asset %s: %w", asset.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("asset %s: %w", asset.ID, ErrAssetExists)
	}
	return nil
}

// GetByID retrieves an asset by its ID
func (r *AssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	var asset models.Asset
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get asset by ID %s: %w", id, err)
	}
	return &asset, nil
}

// MarkMetadataProcessing updates asset status to indicate metadata extraction is in progress
func (r *AssetRepository) MarkMetadataProcessing(ctx context.Context, id string) error {
	result := r.DB.WithContext(ctx).Model(&models.Asset{}).Where("id = ?", id).Updates(map[string]interface{}{
		"metadata_status": models.StatusProcessing,
		"updated_at":      time.Now().UTC(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to mark metadata processing for asset %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetMetadataResult stores the outcome of a metadata extraction task
func (r *AssetRepository) SetMetadataResult(ctx context.Context, id string, meta *models.AssetMetadata, processedAt time.Time, taskErr error) error {
	update := models.Asset{
		Metadata:            meta,
		MetadataStatus:      models.StatusDone,
		MetadataProcessedAt: &processedAt,
		UpdatedAt:           time.Now().UTC(),
	}
	if taskErr != nil {
		s := taskErr.Error()
		update.MetadataStatus = models.StatusError
		update.MetadataError = &s
	}

	// struct updates keep the json serializer on the metadata column; Select
	// forces nil values to be written as well
	result := r.DB.WithContext(ctx).Model(&models.Asset{}).Where("id = ?", id).
		Select("metadata", "metadata_status", "metadata_error", "metadata_processed_at", "updated_at").
		Updates(&update)
	if result.Error != nil {
		return fmt.Errorf("failed to set metadata result for asset %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListPendingMetadata returns assets whose metadata has not been extracted yet,
// including ones interrupted mid-processing.
func (r *AssetRepository) ListPendingMetadata(ctx context.Context) ([]models.Asset, error) {
	var assets []models.Asset
	err := r.DB.WithContext(ctx).
		Where("metadata_status IN ?", []string{models.StatusPending, models.StatusProcessing}).
		Order("created_at ASC").
		Find(&assets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assets pending metadata: %w", err)
	}
	return assets, nil
}

// Delete removes an asset record by its ID
func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Asset{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete asset %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
