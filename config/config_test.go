package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "SITE_TITLE", "STORE_BACKEND", "DATABASE_DRIVER", "DATABASE_DSN",
		"MEDIA_BACKEND", "MEDIA_STORAGE_PATH", "ASSETS_SUBDIR", "ASSET_BASE_URL",
		"S3_BUCKET", "S3_REGION", "S3_BASE_ENDPOINT", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY",
		"SANITY_PROJECT_ID", "SANITY_DATASET", "SANITY_API_VERSION", "SANITY_WRITE_TOKEN", "SANITY_USE_CDN",
		"MAX_UPLOAD_BYTES", "METADATA_QUEUE_SIZE", "NUM_METADATA_WORKERS",
		"CORS_ALLOWED_ORIGINS", "RATE_LIMIT_PER_MINUTE", "LOG_FORMAT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendLocal, cfg.StoreBackend)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "gallery.db", cfg.DatabaseDSN)
	assert.Equal(t, BackendLocal, cfg.MediaBackend)
	assert.True(t, filepath.IsAbs(cfg.MediaStoragePath))
	assert.Equal(t, filepath.Join(cfg.MediaStoragePath, DefaultAssetsSubDir), cfg.AssetsPath)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 200, cfg.MetadataQueueSize)
	assert.Equal(t, 2, cfg.NumMetadataWorkers)
	assert.Equal(t, []string{"http://localhost:4321"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "2025-01-28", cfg.SanityAPIVersion)
	assert.Equal(t, "production", cfg.SanityDataset)
	assert.False(t, cfg.SanityUseCDN)
	assert.Equal(t, "/assets", cfg.AssetURLPrefix())
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("STORE_BACKEND", "SANITY")
	t.Setenv("SANITY_PROJECT_ID", "abc123")
	t.Setenv("SANITY_USE_CDN", "true")
	t.Setenv("NUM_METADATA_WORKERS", "8")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("ASSET_BASE_URL", "https://cdn.example/assets/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, BackendSanity, cfg.StoreBackend)
	assert.Equal(t, "abc123", cfg.SanityProjectID)
	assert.True(t, cfg.SanityUseCDN)
	assert.Equal(t, 8, cfg.NumMetadataWorkers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "https://cdn.example/assets", cfg.AssetURLPrefix())
}

func TestLoadConfig_InvalidIntegerFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("METADATA_QUEUE_SIZE", "lots")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "-4")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.MetadataQueueSize)
	assert.Equal(t, 20, cfg.RateLimitPerMinute)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"STORE_BACKEND": "mongo"}},
		{"unknown driver", map[string]string{"DATABASE_DRIVER": "oracle"}},
		{"postgres without dsn", map[string]string{"DATABASE_DRIVER": "postgres"}},
		{"unknown media backend", map[string]string{"MEDIA_BACKEND": "ftp"}},
		{"sanity without project", map[string]string{"STORE_BACKEND": "sanity"}},
		{"s3 without bucket", map[string]string{"MEDIA_BACKEND": "s3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
