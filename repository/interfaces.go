package repository

import (
	"context"
	"time"

	"github.com/camden-git/photogallery/database"
	"github.com/camden-git/photogallery/models"
)

// PhotoRepositoryInterface defines the methods for photo document operations
type PhotoRepositoryInterface interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	List(ctx context.Context, filter database.PhotoFilter) ([]models.Photo, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) (int64, error)
}

// AssetRepositoryInterface defines the methods for asset document operations
type AssetRepositoryInterface interface {
	Create(ctx context.Context, asset *models.Asset) error
	GetByID(ctx context.Context, id string) (*models.Asset, error)
	MarkMetadataProcessing(ctx context.Context, id string) error
	SetMetadataResult(ctx context.Context, id string, meta *models.AssetMetadata, processedAt time.Time, taskErr error) error
	ListPendingMetadata(ctx context.Context) ([]models.Asset, error)
	Delete(ctx context.Context, id string) error
}
