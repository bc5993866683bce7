// Package admin is the interactive admin surface: a session holding the
// admin's view of the photo list and a console driving it against the
// gallery server.
package admin

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/camden-git/photogallery/models"
)

// ErrUserAbort is returned when the user declines a confirmation. Nothing
// was sent to the server.
var ErrUserAbort = errors.New("admin: cancelled by user")

// Backend performs the photo actions on the server.
type Backend interface {
	CreatePhoto(ctx context.Context, title, filename string, image io.Reader) (*models.Photo, error)
	UpdatePhoto(ctx context.Context, id, title string) (*models.Photo, error)
	DeletePhoto(ctx context.Context, id string) error
	ListPhotos(ctx context.Context) ([]models.Photo, error)
}

// ConfirmFunc asks the user to confirm a destructive action.
type ConfirmFunc func(prompt string) (bool, error)

const deleteConfirmPrompt = "Are you sure you want to delete this photo?"

// Session holds the admin's ordered photo list, newest first. The list is a
// cache of the server state: it changes only after an action succeeded and
// is otherwise reconciled by Reload.
type Session struct {
	backend Backend

	mu     sync.Mutex
	photos []models.Photo
}

func NewSession(backend Backend, initial []models.Photo) *Session {
	s := &Session{backend: backend}
	s.photos = append(s.photos, initial...)
	return s
}

// Photos returns a copy of the current list.
func (s *Session) Photos() []models.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Photo, len(s.photos))
	copy(out, s.photos)
	return out
}

// Find returns the photo with the given id.
func (s *Session) Find(id string) (models.Photo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.photos {
		if p.ID == id {
			return p, true
		}
	}
	return models.Photo{}, false
}

// Prepend adds a newly created photo at the front of the list.
func (s *Session) Prepend(p models.Photo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos = append([]models.Photo{p}, s.photos...)
}

// Replace swaps the photo with p.ID for p, keeping its position. It reports
// whether a photo was replaced.
func (s *Session) Replace(p models.Photo) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.photos {
		if s.photos[i].ID == p.ID {
			s.photos[i] = p
			return true
		}
	}
	return false
}

// Remove drops the photo with the given id.
func (s *Session) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.photos {
		if s.photos[i].ID == id {
			s.photos = append(s.photos[:i:i], s.photos[i+1:]...)
			return true
		}
	}
	return false
}

// Reload replaces the list with the server's listing.
func (s *Session) Reload(ctx context.Context) error {
	photos, err := s.backend.ListPhotos(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.photos = photos
	s.mu.Unlock()
	return nil
}

// Upload creates a photo and prepends it on success.
func (s *Session) Upload(ctx context.Context, title, filename string, image io.Reader) (*models.Photo, error) {
	created, err := s.backend.CreatePhoto(ctx, title, filename, image)
	if err != nil {
		return nil, err
	}
	s.Prepend(*created)
	return created, nil
}

// Rename sets a new title and replaces the photo in place on success.
func (s *Session) Rename(ctx context.Context, id, title string) (*models.Photo, error) {
	updated, err := s.backend.UpdatePhoto(ctx, id, title)
	if err != nil {
		return nil, err
	}
	s.Replace(*updated)
	return updated, nil
}

// Delete asks for confirmation, deletes the photo and removes it on success.
// Declining returns ErrUserAbort without contacting the server.
func (s *Session) Delete(ctx context.Context, id string, confirm ConfirmFunc) error {
	ok, err := confirm(deleteConfirmPrompt)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserAbort
	}
	if err := s.backend.DeletePhoto(ctx, id); err != nil {
		return err
	}
	s.Remove(id)
	return nil
}
