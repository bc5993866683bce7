package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrObjectNotFound is returned by Open when no object exists at the path.
var ErrObjectNotFound = errors.New("media: object not found")

// Store defines the interface for saving, retrieving, and deleting media assets
type Store interface {
	// Save stores data under filename inside the asset type's directory and
	// returns the relative path used
	Save(ctx context.Context, assetType AssetType, filename, contentType string, data io.Reader) (string, error)
	// Open retrieves a reader for an asset
	Open(ctx context.Context, relativePath string) (io.ReadCloser, *ObjectInfo, error)
	// Delete removes an asset; deleting a missing asset is not an error
	Delete(ctx context.Context, relativePath string) error
	// URL returns the public URL an asset is served from
	URL(relativePath string) string
}

// LocalStorage implements the Store interface using the local filesystem
type LocalStorage struct {
	basePath        string               // absolute path to the MEDIA_STORAGE_PATH
	urlPrefix       string               // public prefix assets are served under
	subDirMap       map[AssetType]string // maps AssetType to subdirectory name (e.g., "images")
	resolvedPathMap map[AssetType]string // maps AssetType to full absolute path
}

// NewLocalStorage creates a new local filesystem store
func NewLocalStorage(basePath, urlPrefix string, subDirs map[AssetType]string) (*LocalStorage, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid base storage path '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absBasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base storage directory '%s': %w", absBasePath, err)
	}

	resolvedPaths := make(map[AssetType]string)
	for assetType, subDir := range subDirs {
		fullPath := filepath.Join(absBasePath, subDir)
		if !strings.HasPrefix(filepath.Clean(fullPath), absBasePath) {
			return nil, fmt.Errorf("invalid subdirectory configuration: '%s' resolves outside base path '%s'", subDir, absBasePath)
		}
		resolvedPaths[assetType] = fullPath
	}

	slog.Info("initialized local media storage", "path", absBasePath)
	return &LocalStorage{
		basePath:        absBasePath,
		urlPrefix:       strings.TrimSuffix(urlPrefix, "/"),
		subDirMap:       subDirs,
		resolvedPathMap: resolvedPaths,
	}, nil
}

// BasePath returns the absolute root of the store.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// getAssetTypeDir resolves the absolute path for a given asset type
func (ls *LocalStorage) getAssetTypeDir(assetType AssetType) (string, error) {
	dirPath, ok := ls.resolvedPathMap[assetType]
	if !ok {
		return "", fmt.Errorf("asset type '%s' is not configured", assetType)
	}
	return dirPath, nil
}

// EnsureDir creates the directory for the asset type if it doesn't exist
func (ls *LocalStorage) EnsureDir(assetType AssetType) (string, error) {
	dirPath, err := ls.getAssetTypeDir(assetType)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to ensure directory '%s': %w", dirPath, err)
	}
	return dirPath, nil
}

// Save writes data to the store. The content type is implied by the
// filename's extension on disk.
func (ls *LocalStorage) Save(ctx context.Context, assetType AssetType, filename, contentType string, data io.Reader) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid filename '%s' for LocalStorage.Save", filename)
	}

	baseAssetDir, err := ls.EnsureDir(assetType)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fullSavePath := filepath.Join(baseAssetDir, filename)

	// write to a temp file first so a failed upload never leaves a partial asset
	tmp, err := os.CreateTemp(baseAssetDir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file in '%s': %w", baseAssetDir, err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write data to '%s': %w", fullSavePath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close temp file for '%s': %w", fullSavePath, err)
	}
	if err := os.Rename(tmpName, fullSavePath); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move asset into place at '%s': %w", fullSavePath, err)
	}

	relativePath, err := filepath.Rel(ls.basePath, fullSavePath)
	if err != nil {
		return "", fmt.Errorf("internal error calculating relative path: %w", err)
	}

	slog.Debug("saved asset", "path", fullSavePath, "content_type", contentType)
	return filepath.ToSlash(relativePath), nil
}

func (ls *LocalStorage) Open(ctx context.Context, relativePath string) (io.ReadCloser, *ObjectInfo, error) {
	fullPath, err := ls.GetFullPath(relativePath)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("asset '%s': %w", relativePath, ErrObjectNotFound)
		}
		return nil, nil, fmt.Errorf("failed to open asset '%s': %w", relativePath, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to stat asset '%s': %w", relativePath, err)
	}

	return file, &ObjectInfo{
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: mime.TypeByExtension(filepath.Ext(fullPath)),
	}, nil
}

// Delete removes an asset file
func (ls *LocalStorage) Delete(ctx context.Context, relativePath string) error {
	fullPath, err := ls.GetFullPath(relativePath)
	if err != nil {
		return err
	}

	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete asset '%s': %w", relativePath, err)
	}
	if err == nil {
		slog.Debug("deleted asset", "path", fullPath)
	}
	return nil
}

// URL joins the configured prefix with the asset's relative path.
func (ls *LocalStorage) URL(relativePath string) string {
	return ls.urlPrefix + "/" + strings.TrimPrefix(path.Clean("/"+relativePath), "/")
}

// GetFullPath calculates the absolute path and performs security check
func (ls *LocalStorage) GetFullPath(relativePath string) (string, error) {
	// clean the relative path first to prevent simple traversal tricks
	cleanRelativePath := filepath.Clean(filepath.FromSlash(relativePath))

	fullPath := filepath.Join(ls.basePath, cleanRelativePath)

	absFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", relativePath, err)
	}

	if absFullPath != ls.basePath && !strings.HasPrefix(absFullPath, ls.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid path: access denied for '%s'", relativePath)
	}

	return absFullPath, nil
}
