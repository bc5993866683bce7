package utils

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/camden-git/photogallery/models"
	"github.com/rwcarlsen/goexif/exif"
)

var ErrNoEXIF = errors.New("no EXIF data")

// exifTags wraps decoded EXIF data; every getter returns nil when the tag is
// missing or cannot be converted.
type exifTags struct {
	x *exif.Exif
}

func (t exifTags) text(name exif.FieldName) *string {
	tag, err := t.x.Get(name)
	if err != nil || tag == nil {
		return nil
	}
	s, err := tag.StringVal()
	if err != nil {
		s = tag.String()
	}
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	if s == "" {
		return nil
	}
	return &s
}

func (t exifTags) integer(name exif.FieldName) *int {
	tag, err := t.x.Get(name)
	if err != nil || tag == nil {
		return nil
	}
	v, err := tag.Int(0)
	if err != nil {
		return nil
	}
	return &v
}

// number reads a rational tag, falling back to a plain integer value.
func (t exifTags) number(name exif.FieldName) *float64 {
	tag, err := t.x.Get(name)
	if err != nil || tag == nil {
		return nil
	}
	if num, den, err := tag.Rat2(0); err == nil && den != 0 {
		v := float64(num) / float64(den)
		return &v
	}
	if i, err := tag.Int(0); err == nil {
		v := float64(i)
		return &v
	}
	return nil
}

// exposure formats ExposureTime as photographers write it: "1/250" for
// fractions of a second, "2s" or "2.5s" otherwise.
func (t exifTags) exposure() *string {
	tag, err := t.x.Get(exif.ExposureTime)
	if err != nil || tag == nil {
		return nil
	}
	num, den, err := tag.Rat2(0)
	if err != nil || num <= 0 || den <= 0 {
		return nil
	}

	var s string
	switch {
	case num == 1:
		s = "1/" + strconv.FormatInt(den, 10)
	case num < den:
		s = fmt.Sprintf("1/%d", (den+num/2)/num)
	default:
		s = strconv.FormatFloat(float64(num)/float64(den), 'f', -1, 64) + "s"
	}
	return &s
}

// ReadEXIF extracts the camera and exposure fields from r. It returns
// ErrNoEXIF when the data carries no EXIF block.
func ReadEXIF(r io.Reader) (*models.EXIF, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoEXIF, err)
	}
	t := exifTags{x: x}

	meta := &models.EXIF{
		Make:         t.text(exif.Make),
		Model:        t.text(exif.Model),
		LensMake:     t.text(exif.LensMake),
		LensModel:    t.text(exif.LensModel),
		FNumber:      t.number(exif.FNumber),
		ExposureTime: t.exposure(),
		ISO:          t.integer(exif.ISOSpeedRatings),
		FocalLength:  t.number(exif.FocalLength),
	}
	if taken, err := x.DateTime(); err == nil {
		taken = taken.UTC()
		meta.DateTimeOriginal = &taken
	}
	return meta, nil
}
