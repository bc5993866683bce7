package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	BackendLocal  = "local"
	BackendSanity = "sanity"
	BackendS3     = "s3"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	DefaultAssetsSubDir = "images"
)

const (
	defaultPort                = "8080"
	defaultMaxUploadBytes      = 32 << 20
	defaultMetadataQueueSize   = 200
	defaultNumMetadataWorkers  = 2
	defaultRateLimitPerMinute  = 20
	defaultSanityAPIVersion    = "2025-01-28"
	defaultSanityDataset       = "production"
	defaultSiteTitle           = "Photo Gallery"
	defaultAllowedCORSOrigin   = "http://localhost:4321"
	defaultAssetRoutePrefix    = "/assets"
	defaultS3Region            = "auto"
	defaultDatabaseDSNForLocal = "gallery.db"
)

type Config struct {
	Port      string
	SiteTitle string

	// document store selection: "local" keeps documents in our own database,
	// "sanity" forwards everything to the hosted content API
	StoreBackend string

	// local document store
	DatabaseDriver string
	DatabaseDSN    string

	// local asset storage
	MediaBackend     string
	MediaStoragePath string // primary root for uploaded assets
	AssetsSubDir     string
	AssetsPath       string // full-calculated path for image assets
	AssetRoutePrefix string // route the local asset server is mounted on
	AssetBaseURL     string // public URL prefix for assets, overrides AssetRoutePrefix

	// S3-compatible asset storage (R2, MinIO, AWS)
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKeyID  string
	S3SecretKey    string

	// hosted content API
	SanityProjectID  string
	SanityDataset    string
	SanityAPIVersion string
	SanityToken      string
	SanityUseCDN     bool

	MaxUploadBytes int64

	// metadata extraction worker settings
	MetadataQueueSize  int
	NumMetadataWorkers int

	CORSAllowedOrigins []string
	RateLimitPerMinute int

	LogFormat string
	LogLevel  string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		slog.Warn("invalid integer setting, using default", "key", envVar, "value", valStr, "default", defaultVal, "error", err)
		return defaultVal
	}
	return val
}

func getEnvBoolOrDefault(envVar string, defaultVal bool) bool {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		slog.Warn("invalid boolean setting, using default", "key", envVar, "value", valStr, "default", defaultVal)
		return defaultVal
	}
	return val
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func LoadConfig() (Config, error) {
	storeBackend := strings.ToLower(getEnvOrDefault("STORE_BACKEND", BackendLocal))
	if storeBackend != BackendLocal && storeBackend != BackendSanity {
		return Config{}, fmt.Errorf("unsupported STORE_BACKEND '%s' (want %s or %s)", storeBackend, BackendLocal, BackendSanity)
	}

	dbDriver := strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverSQLite))
	if dbDriver != DriverSQLite && dbDriver != DriverPostgres {
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER '%s'", dbDriver)
	}
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		if dbDriver == DriverPostgres {
			return Config{}, fmt.Errorf("DATABASE_DSN is required for the %s driver", DriverPostgres)
		}
		dsn = defaultDatabaseDSNForLocal
	}

	mediaBackend := strings.ToLower(getEnvOrDefault("MEDIA_BACKEND", BackendLocal))
	if mediaBackend != BackendLocal && mediaBackend != BackendS3 {
		return Config{}, fmt.Errorf("unsupported MEDIA_BACKEND '%s'", mediaBackend)
	}

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}
	assetsSubDir := getEnvOrDefault("ASSETS_SUBDIR", DefaultAssetsSubDir)

	cfg := Config{
		Port:      getEnvOrDefault("PORT", defaultPort),
		SiteTitle: getEnvOrDefault("SITE_TITLE", defaultSiteTitle),

		StoreBackend:   storeBackend,
		DatabaseDriver: dbDriver,
		DatabaseDSN:    dsn,

		MediaBackend:     mediaBackend,
		MediaStoragePath: absMediaStorage,
		AssetsSubDir:     assetsSubDir,
		AssetsPath:       filepath.Join(absMediaStorage, assetsSubDir),
		AssetRoutePrefix: defaultAssetRoutePrefix,
		AssetBaseURL:     strings.TrimRight(os.Getenv("ASSET_BASE_URL"), "/"),

		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3Region:       getEnvOrDefault("S3_REGION", defaultS3Region),
		S3BaseEndpoint: os.Getenv("S3_BASE_ENDPOINT"),
		S3AccessKeyID:  os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey:    os.Getenv("S3_SECRET_ACCESS_KEY"),

		SanityProjectID:  os.Getenv("SANITY_PROJECT_ID"),
		SanityDataset:    getEnvOrDefault("SANITY_DATASET", defaultSanityDataset),
		SanityAPIVersion: getEnvOrDefault("SANITY_API_VERSION", defaultSanityAPIVersion),
		SanityToken:      os.Getenv("SANITY_WRITE_TOKEN"),
		SanityUseCDN:     getEnvBoolOrDefault("SANITY_USE_CDN", false),

		MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),

		MetadataQueueSize:  getEnvIntOrDefault("METADATA_QUEUE_SIZE", defaultMetadataQueueSize),
		NumMetadataWorkers: getEnvIntOrDefault("NUM_METADATA_WORKERS", defaultNumMetadataWorkers),

		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", defaultAllowedCORSOrigin)),
		RateLimitPerMinute: getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", defaultRateLimitPerMinute),

		LogFormat: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
		LogLevel:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
	}

	if cfg.StoreBackend == BackendSanity && cfg.SanityProjectID == "" {
		return Config{}, fmt.Errorf("SANITY_PROJECT_ID is required when STORE_BACKEND=%s", BackendSanity)
	}
	if cfg.StoreBackend == BackendLocal && cfg.MediaBackend == BackendS3 && cfg.S3Bucket == "" {
		return Config{}, fmt.Errorf("S3_BUCKET is required when MEDIA_BACKEND=%s", BackendS3)
	}

	return cfg, nil
}

// AssetURLPrefix is the public prefix local asset paths are appended to.
func (c Config) AssetURLPrefix() string {
	if c.AssetBaseURL != "" {
		return c.AssetBaseURL
	}
	return c.AssetRoutePrefix
}
