package media

import "time"

type AssetType string

const (
	AssetTypeImage   AssetType = "image"
	AssetTypeUnknown AssetType = "unknown"
)

// ParseAssetType maps the asset kind used by content store uploads to an
// AssetType.
func ParseAssetType(kind string) AssetType {
	switch kind {
	case "image", "images":
		return AssetTypeImage
	default:
		return AssetTypeUnknown
	}
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Size        int64
	ModTime     time.Time
	ContentType string
}
