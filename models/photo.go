package models

import "time"

const (
	PhotoDocumentType = "photo"
	SlugType          = "slug"
	ImageType         = "image"
	ReferenceType     = "reference"
)

// Photo represents a photo document. JSON tags follow the content store's
// document shape so documents from either store serialize identically.
// It corresponds to the 'photos' table for the local store.
type Photo struct {
	ID        string    `gorm:"primaryKey;size:64" json:"_id"`
	Type      string    `gorm:"not null;default:photo;index" json:"_type"`
	Rev       string    `gorm:"size:64" json:"_rev,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"_createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"_updatedAt"`

	Title       string     `gorm:"not null" json:"title"`
	Slug        Slug       `gorm:"embedded;embeddedPrefix:slug_" json:"slug"`
	Image       ImageField `gorm:"embedded;embeddedPrefix:image_" json:"image"`
	Description *string    `gorm:"" json:"description,omitempty"`
	Featured    bool       `gorm:"not null;default:false;index" json:"featured"`
	DateTaken   *time.Time `gorm:"index" json:"dateTaken,omitempty"`
	Camera      *string    `gorm:"" json:"camera,omitempty"`
	Settings    *Settings  `gorm:"serializer:json" json:"settings,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Photo) TableName() string {
	return "photos"
}

type Slug struct {
	Type    string `gorm:"column:type;default:slug" json:"_type"`
	Current string `gorm:"column:current;index" json:"current"`
}

func NewSlug(current string) Slug {
	return Slug{Type: SlugType, Current: current}
}

// ImageField is the image value stored on a document: a reference to an
// uploaded asset plus optional alt text.
type ImageField struct {
	Type  string    `gorm:"column:type;default:image" json:"_type"`
	Asset Reference `gorm:"embedded;embeddedPrefix:asset_" json:"asset"`
	Alt   *string   `gorm:"column:alt" json:"alt,omitempty"`
}

type Reference struct {
	Type string `gorm:"column:type;default:reference" json:"_type"`
	Ref  string `gorm:"column:ref;index" json:"_ref"`
}

func NewImageField(assetID string) ImageField {
	return ImageField{
		Type:  ImageType,
		Asset: Reference{Type: ReferenceType, Ref: assetID},
	}
}

// Settings are the exposure settings recorded for a photo.
type Settings struct {
	Aperture     *string  `json:"aperture,omitempty"`
	ShutterSpeed *string  `json:"shutterSpeed,omitempty"`
	ISO          *float64 `json:"iso,omitempty"`
}

// AltText returns the text used for the image's alt attribute.
func (p Photo) AltText() string {
	if p.Image.Alt != nil && *p.Image.Alt != "" {
		return *p.Image.Alt
	}
	return p.Title
}

// HasImage reports whether the document references an asset.
func (p Photo) HasImage() bool {
	return p.Image.Asset.Ref != ""
}
