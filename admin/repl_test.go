package admin

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/camden-git/photogallery/models"
	"github.com/stretchr/testify/assert"
)

func newTestConsole(backend Backend, input string) (*Console, *bytes.Buffer) {
	var out bytes.Buffer
	c := NewConsole(NewSession(backend, initialPhotos()), strings.NewReader(input), &out)
	c.OpenFile = func(path string) (io.ReadCloser, error) {
		if path == "missing.jpg" {
			return nil, errors.New("no such file")
		}
		return io.NopCloser(strings.NewReader("img")), nil
	}
	return c, &out
}

func TestConsole_UploadEditDelete(t *testing.T) {
	backend := &fakeBackend{
		created: &models.Photo{ID: "c", Title: "Sunset", Slug: models.NewSlug("sunset")},
		updated: &models.Photo{ID: "a", Title: "Renamed"},
	}
	input := strings.Join([]string{
		"upload", "Sunset", "sunset.jpg",
		"edit", "a", "Renamed",
		"delete", "b", "y",
		"exit",
	}, "\n") + "\n"
	c, out := newTestConsole(backend, input)

	c.Run(context.Background())

	assert.Equal(t, []string{"create:Sunset", "update:a", "delete:b"}, backend.calls)
	assert.Equal(t, []string{"c", "a"}, ids(c.Session.Photos()))
	assert.Contains(t, out.String(), `Uploaded "Sunset" as c (slug sunset).`)
	assert.Contains(t, out.String(), `Renamed a to "Renamed".`)
	assert.Contains(t, out.String(), "Photo deleted successfully")
	assert.Contains(t, out.String(), "Bye!")
}

func TestConsole_DeleteDeclinedAndValidation(t *testing.T) {
	backend := &fakeBackend{}
	input := strings.Join([]string{
		"delete", "a", "n",
		"upload", "", "x.jpg",
		"upload", "Title", "missing.jpg",
		"upload", "Title", "notes.txt",
		"edit", "unknown",
		"bogus",
	}, "\n") + "\n"
	c, out := newTestConsole(backend, input)

	c.Run(context.Background())

	assert.Empty(t, backend.calls)
	assert.Equal(t, []string{"b", "a"}, ids(c.Session.Photos()))
	assert.Contains(t, out.String(), "Cancelled.")
	assert.Contains(t, out.String(), "Title and image file are required")
	assert.Contains(t, out.String(), "Cannot open image: no such file")
	assert.Contains(t, out.String(), "Not an image file: notes.txt")
	assert.Contains(t, out.String(), "No photo with id unknown")
	assert.Contains(t, out.String(), "Unknown command: bogus")
}

func TestConsole_FailureReported(t *testing.T) {
	backend := &fakeBackend{err: &APIError{Status: 500, Message: "An unexpected error occurred while deleting the photo."}}
	c, out := newTestConsole(backend, "delete\na\nyes\n")

	c.Run(context.Background())

	assert.Equal(t, []string{"b", "a"}, ids(c.Session.Photos()))
	assert.Contains(t, out.String(), "Delete failed: server returned 500: An unexpected error occurred while deleting the photo.")
}

func TestConsole_List(t *testing.T) {
	c, out := newTestConsole(&fakeBackend{}, "list\n")
	c.Session.Prepend(models.Photo{ID: "u"})

	c.Run(context.Background())

	assert.Contains(t, out.String(), "Untitled")
	assert.Contains(t, out.String(), "N/A")
	assert.Contains(t, out.String(), "yes")
}
