package contentstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/camden-git/photogallery/models"
)

const sanityImageCDN = "https://cdn.sanity.io"

type SanityConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string // e.g. "2025-01-28"
	Token      string
	UseCDN     bool

	// overrides, mainly for tests
	APIBaseURL   string
	ImageBaseURL string
	HTTPClient   *http.Client
}

// SanityClient talks to the hosted Sanity content API.
type SanityClient struct {
	cfg        SanityConfig
	apiBase    string
	queryBase  string
	imageBase  string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewSanityClient(cfg SanityConfig, logger *slog.Logger) *SanityClient {
	if logger == nil {
		logger = slog.Default()
	}
	apiBase := cfg.APIBaseURL
	queryBase := cfg.APIBaseURL
	if apiBase == "" {
		apiBase = fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
		queryBase = apiBase
		// authenticated requests always bypass the CDN
		if cfg.UseCDN && cfg.Token == "" {
			queryBase = fmt.Sprintf("https://%s.apicdn.sanity.io", cfg.ProjectID)
		}
	}
	imageBase := cfg.ImageBaseURL
	if imageBase == "" {
		imageBase = sanityImageCDN
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// calls are bounded only by the request context
		httpClient = &http.Client{}
	}
	return &SanityClient{
		cfg:        cfg,
		apiBase:    strings.TrimSuffix(apiBase, "/"),
		queryBase:  strings.TrimSuffix(queryBase, "/"),
		imageBase:  strings.TrimSuffix(imageBase, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *SanityClient) endpoint(base, kind string) string {
	return fmt.Sprintf("%s/v%s/%s/%s", base, strings.TrimPrefix(c.cfg.APIVersion, "v"), kind, url.PathEscape(c.cfg.Dataset))
}

type sanityErrorBody struct {
	Error *struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"error"`
	Message string `json:"message"`
}

func (c *SanityClient) do(req *http.Request, op string, out any) error {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteError{Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb sanityErrorBody
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(body, &eb) == nil {
			if eb.Error != nil && eb.Error.Description != "" {
				msg = eb.Error.Description
			} else if eb.Message != "" {
				msg = eb.Message
			}
		}
		rerr := &RemoteError{Op: op, Status: resp.StatusCode, Message: msg}
		if resp.StatusCode == http.StatusNotFound {
			rerr.Err = ErrNotFound
		}
		return rerr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &RemoteError{Op: op, Status: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}

type sanityAsset struct {
	ID               string    `json:"_id"`
	Type             string    `json:"_type"`
	CreatedAt        time.Time `json:"_createdAt"`
	UpdatedAt        time.Time `json:"_updatedAt"`
	OriginalFilename string    `json:"originalFilename"`
	MimeType         string    `json:"mimeType"`
	Extension        string    `json:"extension"`
	Size             int64     `json:"size"`
	SHA1Hash         string    `json:"sha1hash"`
	Path             string    `json:"path"`
	URL              string    `json:"url"`
	Metadata         *struct {
		Dimensions *models.Dimensions `json:"dimensions"`
	} `json:"metadata"`
}

func (a sanityAsset) toModel() *models.Asset {
	asset := &models.Asset{
		ID:               a.ID,
		Type:             a.Type,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
		OriginalFilename: a.OriginalFilename,
		MimeType:         a.MimeType,
		Extension:        a.Extension,
		Size:             a.Size,
		SHA1Hash:         a.SHA1Hash,
		Path:             a.Path,
		URL:              a.URL,
		MetadataStatus:   models.StatusDone,
	}
	if a.Metadata != nil && a.Metadata.Dimensions != nil {
		asset.Metadata = &models.AssetMetadata{Dimensions: a.Metadata.Dimensions}
	}
	return asset
}

// UploadAsset posts the binary to the assets endpoint.
func (c *SanityClient) UploadAsset(ctx context.Context, kind string, r io.Reader, opts UploadOptions) (*models.Asset, error) {
	if kind != "image" {
		return nil, fmt.Errorf("%w: unsupported asset kind %q", ErrValidation, kind)
	}

	u := c.endpoint(c.apiBase, "assets/images")
	if opts.Filename != "" {
		u += "?" + url.Values{"filename": {opts.Filename}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, r)
	if err != nil {
		return nil, &RemoteError{Op: "upload asset", Err: err}
	}
	if opts.ContentType != "" {
		req.Header.Set("Content-Type", opts.ContentType)
	}

	var out struct {
		Document sanityAsset `json:"document"`
	}
	if err := c.do(req, "upload asset", &out); err != nil {
		return nil, err
	}
	c.logger.Info("asset uploaded", "asset_id", out.Document.ID)
	return out.Document.toModel(), nil
}

type mutateResponse struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string          `json:"id"`
		Operation string          `json:"operation"`
		Document  json.RawMessage `json:"document"`
	} `json:"results"`
}

func (c *SanityClient) mutate(ctx context.Context, op string, mutations ...map[string]any) (*mutateResponse, error) {
	payload, err := json.Marshal(map[string]any{"mutations": mutations})
	if err != nil {
		return nil, &RemoteError{Op: op, Err: err}
	}

	u := c.endpoint(c.apiBase, "data/mutate") + "?returnDocuments=true&visibility=sync"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, &RemoteError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	var out mutateResponse
	if err := c.do(req, op, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func decodeResultDocument(op string, out *mutateResponse) (*models.Photo, error) {
	if len(out.Results) == 0 || len(out.Results[0].Document) == 0 {
		return nil, &RemoteError{Op: op, Message: "no document returned", Err: ErrNotFound}
	}
	var photo models.Photo
	if err := json.Unmarshal(out.Results[0].Document, &photo); err != nil {
		return nil, &RemoteError{Op: op, Message: "malformed document", Err: err}
	}
	return &photo, nil
}

// documentForCreate drops the system fields the API assigns itself.
func documentForCreate(doc *models.Photo) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if doc.ID == "" {
		delete(m, "_id")
	}
	delete(m, "_rev")
	delete(m, "_createdAt")
	delete(m, "_updatedAt")
	if doc.Type == "" {
		m["_type"] = models.PhotoDocumentType
	}
	return m, nil
}

func (c *SanityClient) Create(ctx context.Context, doc *models.Photo) (*models.Photo, error) {
	if doc == nil || doc.Title == "" {
		return nil, fmt.Errorf("%w: document needs a title", ErrValidation)
	}
	body, err := documentForCreate(doc)
	if err != nil {
		return nil, &RemoteError{Op: "create", Err: err}
	}
	out, err := c.mutate(ctx, "create", map[string]any{"create": body})
	if err != nil {
		return nil, err
	}
	return decodeResultDocument("create", out)
}

func (c *SanityClient) Patch(id string) *Patch {
	return NewPatch(id, c.commitPatch)
}

func (c *SanityClient) commitPatch(ctx context.Context, id string, set map[string]any) (*models.Photo, error) {
	out, err := c.mutate(ctx, "patch", map[string]any{
		"patch": map[string]any{"id": id, "set": set},
	})
	if err != nil {
		return nil, err
	}
	return decodeResultDocument("patch", out)
}

// Delete removes document id. The API reports success for ids that do not
// exist.
func (c *SanityClient) Delete(ctx context.Context, id string) error {
	_, err := c.mutate(ctx, "delete", map[string]any{
		"delete": map[string]any{"id": id},
	})
	return err
}

// groq renders q as a GROQ query and its parameters.
func groq(q Query) (string, map[string]string) {
	var b strings.Builder
	params := map[string]string{}

	b.WriteString(`*[_type == "photo"`)
	if q.FeaturedOnly {
		b.WriteString(` && featured == true`)
	}
	if q.Slug != "" {
		b.WriteString(` && slug.current == $slug`)
		encoded, _ := json.Marshal(q.Slug)
		params["$slug"] = string(encoded)
	}
	b.WriteString(`]`)

	switch q.Order {
	case OrderCreatedDesc:
		b.WriteString(` | order(_createdAt desc)`)
	default:
		b.WriteString(` | order(dateTaken desc)`)
	}
	// dateTaken ties are broken in memory, so only the created order is
	// sliced by the API
	if q.Limit > 0 && q.Order == OrderCreatedDesc {
		fmt.Fprintf(&b, `[0...%d]`, q.Limit)
	}
	return b.String(), params
}

func (c *SanityClient) Query(ctx context.Context, q Query) ([]models.Photo, error) {
	query, params := groq(q)
	v := url.Values{"query": {query}}
	for k, val := range params {
		v.Set(k, val)
	}

	u := c.endpoint(c.queryBase, "data/query") + "?" + v.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &RemoteError{Op: "query", Err: err}
	}

	var out struct {
		Result []models.Photo `json:"result"`
	}
	if err := c.do(req, "query", &out); err != nil {
		return nil, err
	}
	if q.Order != OrderCreatedDesc {
		models.SortPhotosByDateTaken(out.Result)
		if q.Limit > 0 && len(out.Result) > q.Limit {
			out.Result = out.Result[:q.Limit]
		}
	}
	return out.Result, nil
}

// ImageURL builds an image CDN URL for an asset reference.
func (c *SanityClient) ImageURL(ref string, opts ImageOptions) string {
	filename, ok := assetFilename(ref)
	if !ok {
		return ""
	}
	base := fmt.Sprintf("%s/images/%s/%s/%s", c.imageBase, c.cfg.ProjectID, c.cfg.Dataset, filename)
	return withQuery(base, opts)
}
