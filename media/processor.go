package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/camden-git/photogallery/models"
	"github.com/camden-git/photogallery/utils"
	"github.com/disintegration/imaging"
)

// MaxMetadataSourceBytes bounds how much of an asset is read for metadata
// extraction.
const MaxMetadataSourceBytes = 64 << 20

// Processor extracts asset metadata. It relies on a Store implementation for
// reading the stored binaries.
type Processor struct {
	store Store
}

func NewProcessor(store Store) *Processor {
	return &Processor{store: store}
}

// ExtractMetadata reads the asset at relativePath and returns its oriented
// dimensions and EXIF fields. A missing EXIF block is not an error.
func (p *Processor) ExtractMetadata(ctx context.Context, relativePath string) (*models.AssetMetadata, error) {
	rc, _, err := p.store.Open(ctx, relativePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxMetadataSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read asset '%s': %w", relativePath, err)
	}
	if len(data) > MaxMetadataSourceBytes {
		return nil, fmt.Errorf("asset '%s' exceeds %d bytes", relativePath, MaxMetadataSourceBytes)
	}

	return ExtractMetadataFromBytes(data)
}

// ExtractMetadataFromBytes decodes data with EXIF orientation applied and
// collects dimensions and EXIF fields.
func ExtractMetadataFromBytes(data []byte) (*models.AssetMetadata, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", width, height)
	}

	meta := &models.AssetMetadata{
		Dimensions: &models.Dimensions{
			Width:       width,
			Height:      height,
			AspectRatio: math.Round(float64(width)/float64(height)*10000) / 10000,
		},
	}

	exifData, err := utils.ReadEXIF(bytes.NewReader(data))
	switch {
	case err == nil:
		meta.EXIF = exifData
	case errors.Is(err, utils.ErrNoEXIF):
		slog.Debug("no EXIF data in asset", "error", err)
	default:
		return nil, err
	}

	return meta, nil
}
