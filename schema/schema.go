// Package schema declares the document shapes stored in the content store.
//
// The declarations mirror the content studio schema: each Type lists its
// fields, their kinds and options. The registry returned by Registered only
// contains the types the site actually uses; Category is declared but kept out
// of it.
package schema

import (
	"fmt"
	"sort"

	"github.com/camden-git/photogallery/utils"
)

type FieldKind string

const (
	KindString   FieldKind = "string"
	KindText     FieldKind = "text"
	KindSlug     FieldKind = "slug"
	KindImage    FieldKind = "image"
	KindBoolean  FieldKind = "boolean"
	KindDatetime FieldKind = "datetime"
	KindNumber   FieldKind = "number"
	KindObject   FieldKind = "object"
)

type Field struct {
	Name         string    `json:"name"`
	Title        string    `json:"title,omitempty"`
	Kind         FieldKind `json:"type"`
	Description  string    `json:"description,omitempty"`
	InitialValue any       `json:"initialValue,omitempty"`
	Options      *Options  `json:"options,omitempty"`
	Fields       []Field   `json:"fields,omitempty"`
}

// Options covers the option keys used by our fields.
type Options struct {
	Source    string `json:"source,omitempty"`
	MaxLength int    `json:"maxLength,omitempty"`
	Hotspot   bool   `json:"hotspot,omitempty"`
}

type Preview struct {
	Title string `json:"title,omitempty"`
	Media string `json:"media,omitempty"`
}

type Type struct {
	Name    string   `json:"name"`
	Title   string   `json:"title,omitempty"`
	Kind    string   `json:"type"`
	Fields  []Field  `json:"fields"`
	Preview *Preview `json:"preview,omitempty"`
}

const (
	PhotoTypeName    = "photo"
	CategoryTypeName = "category"
)

var Photo = Type{
	Name:  PhotoTypeName,
	Title: "Photo",
	Kind:  "document",
	Fields: []Field{
		{Name: "title", Kind: KindString},
		{Name: "slug", Kind: KindSlug, Options: &Options{Source: "title", MaxLength: 96}},
		{
			Name:    "image",
			Kind:    KindImage,
			Options: &Options{Hotspot: true},
			Fields: []Field{
				{Name: "alt", Kind: KindString, Title: "Alternative Text"},
			},
		},
		{Name: "description", Kind: KindText},
		{
			Name:         "featured",
			Title:        "Featured",
			Kind:         KindBoolean,
			Description:  "Mark this photo to feature it on the homepage.",
			InitialValue: false,
		},
		{Name: "dateTaken", Kind: KindDatetime},
		{Name: "camera", Kind: KindString},
		{
			Name: "settings",
			Kind: KindObject,
			Fields: []Field{
				{Name: "aperture", Kind: KindString},
				{Name: "shutterSpeed", Kind: KindString},
				{Name: "iso", Kind: KindNumber},
			},
		},
	},
	Preview: &Preview{Title: "title", Media: "image"},
}

var Category = Type{
	Name: CategoryTypeName,
	Kind: "document",
	Fields: []Field{
		{Name: "title", Kind: KindString},
		{Name: "description", Kind: KindText},
		{
			Name:        "image",
			Title:       "Image",
			Kind:        KindImage,
			Description: "A representative image for the category.",
			Options:     &Options{Hotspot: true},
		},
	},
}

var registry = map[string]Type{
	Photo.Name: Photo,
}

// Registered returns the active schema types sorted by name.
func Registered() []Type {
	types := make([]Type, 0, len(registry))
	for _, t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types
}

// Lookup returns a registered type by name.
func Lookup(name string) (Type, bool) {
	t, ok := registry[name]
	return t, ok
}

// Field returns the named top-level field of t.
func (t Type) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// InitialValues returns the declared initial value of every field that has one.
func (t Type) InitialValues() map[string]any {
	values := map[string]any{}
	for _, f := range t.Fields {
		if f.InitialValue != nil {
			values[f.Name] = f.InitialValue
		}
	}
	return values
}

// SlugFor derives the slug of field slugField from value using the field's
// maxLength option.
func (t Type) SlugFor(slugField, value string) (string, error) {
	f, ok := t.Field(slugField)
	if !ok || f.Kind != KindSlug {
		return "", fmt.Errorf("schema: %s has no slug field %q", t.Name, slugField)
	}
	maxLength := 0
	if f.Options != nil {
		maxLength = f.Options.MaxLength
	}
	return utils.Slugify(value, maxLength), nil
}

// PhotoSlug derives a photo slug from its title.
func PhotoSlug(title string) string {
	slug, _ := Photo.SlugFor("slug", title)
	return slug
}

// PhotoFeaturedDefault is the declared initial value of photo.featured.
func PhotoFeaturedDefault() bool {
	v, _ := Photo.InitialValues()["featured"].(bool)
	return v
}
