package models

import (
	"sort"

	"github.com/facette/natsort"
)

// SortPhotosByDateTaken orders photos newest first by DateTaken. Photos
// without a date go last; equal dates fall back to the natural order of
// their titles.
func SortPhotosByDateTaken(photos []Photo) {
	sort.SliceStable(photos, func(i, j int) bool {
		a, b := photos[i].DateTaken, photos[j].DateTaken
		switch {
		case a == nil && b == nil:
			return natsort.Compare(photos[i].Title, photos[j].Title)
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		default:
			return natsort.Compare(photos[i].Title, photos[j].Title)
		}
	})
}
