package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/camden-git/photogallery/media"
	"github.com/camden-git/photogallery/models"
)

// APIError is a non-2xx response from the gallery server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// APIClient calls the gallery's photo action routes.
type APIClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{},
	}
}

func (c *APIClient) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed response from %s: %w", req.URL.Path, err)
	}
	return nil
}

func (c *APIClient) postJSON(ctx context.Context, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// CreatePhoto uploads image with title as a multipart form.
func (c *APIClient) CreatePhoto(ctx context.Context, title, filename string, image io.Reader) (*models.Photo, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("title", title); err != nil {
		return nil, err
	}

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(filepath.Base(filename))))
	hdr.Set("Content-Type", media.ContentTypeFor(media.ExtensionFor(filename, "")))
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/photos/create", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var photo models.Photo
	if err := c.do(req, &photo); err != nil {
		return nil, err
	}
	return &photo, nil
}

func (c *APIClient) UpdatePhoto(ctx context.Context, id, title string) (*models.Photo, error) {
	var photo models.Photo
	if err := c.postJSON(ctx, "/api/photos/update", map[string]string{"id": id, "title": title}, &photo); err != nil {
		return nil, err
	}
	return &photo, nil
}

func (c *APIClient) DeletePhoto(ctx context.Context, id string) error {
	return c.postJSON(ctx, "/api/photos/delete", map[string]string{"id": id}, nil)
}

// ListPhotos returns every photo, newest upload first.
func (c *APIClient) ListPhotos(ctx context.Context) ([]models.Photo, error) {
	u := c.BaseURL + "/api/photos?" + url.Values{"order": {"created"}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var photos []models.Photo
	if err := c.do(req, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
