package models

import "time"

const (
	ImageAssetType = "sanity.imageAsset"
)

// Processing status values for asynchronous asset tasks.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusError      = "error"
)

// Asset represents an uploaded binary owned by the content store.
// It corresponds to the 'assets' table for the local store.
type Asset struct {
	ID               string    `gorm:"primaryKey;size:128" json:"_id"`
	Type             string    `gorm:"not null;default:'sanity.imageAsset'" json:"_type"`
	CreatedAt        time.Time `gorm:"not null" json:"_createdAt"`
	UpdatedAt        time.Time `gorm:"not null" json:"_updatedAt"`
	OriginalFilename string    `gorm:"" json:"originalFilename,omitempty"`
	MimeType         string    `gorm:"not null" json:"mimeType"`
	Extension        string    `gorm:"not null" json:"extension"`
	Size             int64     `gorm:"not null" json:"size"`
	SHA1Hash         string    `gorm:"not null;index" json:"sha1hash"`
	Path             string    `gorm:"not null" json:"path"` // path inside the media store
	URL              string    `gorm:"-" json:"url"`         // resolved by the store on read

	Metadata *AssetMetadata `gorm:"serializer:json" json:"metadata,omitempty"` // Nullable

	MetadataStatus      string     `gorm:"not null;default:pending" json:"metadataStatus,omitempty"`
	MetadataProcessedAt *time.Time `gorm:"" json:"metadataProcessedAt,omitempty"` // Nullable
	MetadataError       *string    `gorm:"" json:"metadataError,omitempty"`       // Nullable
}

// TableName explicitly sets the table name for GORM.
func (Asset) TableName() string {
	return "assets"
}

// AssetMetadata contains dimension and EXIF information extracted from the
// binary.
type AssetMetadata struct {
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	EXIF       *EXIF       `json:"exif,omitempty"`
}

type Dimensions struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspectRatio"`
}

type EXIF struct {
	Make             *string    `json:"Make,omitempty"`
	Model            *string    `json:"Model,omitempty"`
	LensMake         *string    `json:"LensMake,omitempty"`
	LensModel        *string    `json:"LensModel,omitempty"`
	FNumber          *float64   `json:"FNumber,omitempty"`
	ExposureTime     *string    `json:"ExposureTime,omitempty"`
	ISO              *int       `json:"ISO,omitempty"`
	FocalLength      *float64   `json:"FocalLength,omitempty"`
	DateTimeOriginal *time.Time `json:"DateTimeOriginal,omitempty"`
}
