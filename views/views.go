// Package views renders the site's HTML pages: navigation bar, photo grid,
// photo detail page and the admin table.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/camden-git/photogallery/contentstore"
	"github.com/camden-git/photogallery/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageGrid     = "grid.html"
	pagePhoto    = "photo.html"
	pageAdmin    = "admin.html"
	pageNotFound = "not_found.html"

	dateLayout = "Jan 2, 2006"
)

// ImageURLFunc builds the URL of an image asset reference.
type ImageURLFunc func(ref string, opts contentstore.ImageOptions) string

// Card is the presentational form of a photo.
type Card struct {
	ID           string
	Title        string
	Alt          string
	Slug         string
	ImageURL     string
	DateTaken    string
	Featured     bool
	Description  string
	Camera       string
	Aperture     string
	ShutterSpeed string
	ISO          string
}

type pageData struct {
	SiteTitle string
	Heading   string
	Active    string
	Photos    []Card
	Photo     Card
	Message   string
}

type Renderer struct {
	siteTitle string
	imageURL  ImageURLFunc
	pages     map[string]*template.Template
}

func New(siteTitle string, imageURL ImageURLFunc) (*Renderer, error) {
	base, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("views: failed to parse layout: %w", err)
	}

	pages := map[string]*template.Template{}
	for _, name := range []string{pageGrid, pagePhoto, pageAdmin, pageNotFound} {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("views: failed to clone layout for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("views: failed to parse %s: %w", name, err)
		}
		pages[name] = clone
	}

	return &Renderer{siteTitle: siteTitle, imageURL: imageURL, pages: pages}, nil
}

// NewCard converts a photo for display. Missing title and date are rendered
// with the given placeholders.
func NewCard(p models.Photo, imageURL ImageURLFunc, opts contentstore.ImageOptions, untitled, noDate string) Card {
	c := Card{
		ID:        p.ID,
		Title:     p.Title,
		Alt:       p.AltText(),
		Slug:      p.Slug.Current,
		DateTaken: noDate,
		Featured:  p.Featured,
	}
	if c.Title == "" {
		c.Title = untitled
	}
	if p.HasImage() && imageURL != nil {
		c.ImageURL = imageURL(p.Image.Asset.Ref, opts)
	}
	if p.DateTaken != nil {
		c.DateTaken = p.DateTaken.Format(dateLayout)
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Camera != nil {
		c.Camera = *p.Camera
	}
	if s := p.Settings; s != nil {
		if s.Aperture != nil {
			c.Aperture = *s.Aperture
		}
		if s.ShutterSpeed != nil {
			c.ShutterSpeed = *s.ShutterSpeed
		}
		if s.ISO != nil {
			c.ISO = strconv.FormatFloat(*s.ISO, 'f', -1, 64)
		}
	}
	return c
}

func (r *Renderer) cards(photos []models.Photo, opts contentstore.ImageOptions, untitled, noDate string) []Card {
	cards := make([]Card, 0, len(photos))
	for _, p := range photos {
		cards = append(cards, NewCard(p, r.imageURL, opts, untitled, noDate))
	}
	return cards
}

// Grid renders a photo grid page. active names the highlighted nav entry.
func (r *Renderer) Grid(w io.Writer, heading, active string, photos []models.Photo) error {
	return r.render(w, pageGrid, pageData{
		Heading: heading,
		Active:  active,
		Photos:  r.cards(photos, contentstore.GridImage, "", ""),
	})
}

func (r *Renderer) Photo(w io.Writer, photo models.Photo) error {
	card := NewCard(photo, r.imageURL, contentstore.DetailImage, "Untitled", "N/A")
	return r.render(w, pagePhoto, pageData{
		Heading: card.Title,
		Active:  "gallery",
		Photo:   card,
	})
}

// Admin renders the admin table.
func (r *Renderer) Admin(w io.Writer, photos []models.Photo) error {
	return r.render(w, pageAdmin, pageData{
		Heading: "Manage Photos",
		Active:  "admin",
		Photos:  r.cards(photos, contentstore.ThumbnailImage, "Untitled", "N/A"),
	})
}

func (r *Renderer) NotFound(w io.Writer, message string) error {
	return r.render(w, pageNotFound, pageData{Heading: "Not found", Message: message})
}

func (r *Renderer) render(w io.Writer, page string, data pageData) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("views: unknown page %s", page)
	}
	data.SiteTitle = r.siteTitle

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("views: failed to render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
