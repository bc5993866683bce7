package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistered_OnlyPhoto(t *testing.T) {
	types := Registered()

	require.Len(t, types, 1)
	assert.Equal(t, PhotoTypeName, types[0].Name)

	_, ok := Lookup(CategoryTypeName)
	assert.False(t, ok, "category is declared but not registered")
}

func TestPhotoSlug(t *testing.T) {
	assert.Equal(t, "sunset-over-bay", PhotoSlug("Sunset Over Bay"))
	assert.Len(t, PhotoSlug(strings.Repeat("a", 200)), 96)
}

func TestSlugFor_UnknownField(t *testing.T) {
	_, err := Photo.SlugFor("title", "x")
	assert.Error(t, err)

	_, err = Category.SlugFor("slug", "x")
	assert.Error(t, err)
}

func TestInitialValues(t *testing.T) {
	values := Photo.InitialValues()

	assert.Equal(t, map[string]any{"featured": false}, values)
	assert.False(t, PhotoFeaturedDefault())
	assert.Empty(t, Category.InitialValues())
}

func TestPhotoType_JSONShape(t *testing.T) {
	data, err := json.Marshal(Photo)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "photo", decoded["name"])
	assert.Equal(t, "document", decoded["type"])

	fields := decoded["fields"].([]any)
	slug := fields[1].(map[string]any)
	assert.Equal(t, "slug", slug["type"])
	assert.Equal(t, map[string]any{"source": "title", "maxLength": float64(96)}, slug["options"])
}
