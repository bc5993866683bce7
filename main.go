package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camden-git/photogallery/admin"
	"github.com/camden-git/photogallery/config"
	"github.com/camden-git/photogallery/contentstore"
	"github.com/camden-git/photogallery/database"
	"github.com/camden-git/photogallery/handlers"
	"github.com/camden-git/photogallery/logging"
	"github.com/camden-git/photogallery/media"
	"github.com/camden-git/photogallery/repository"
	"github.com/camden-git/photogallery/views"
	"github.com/camden-git/photogallery/workers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(cfg, os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ctx := context.Background()
	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to initialize content store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	router, err := newRouter(cfg, backend.Client, backend.LocalAssets, logger)
	if err != nil {
		slog.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	server := newServer(cfg, router)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	slog.Info("Server exited")
}

// newServer bounds only header reads and idle connections; request bodies
// and handlers run as long as the client keeps the request open.
func newServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// backend is the configured content store plus what has to be released on
// shutdown.
type backend struct {
	Client      contentstore.Client
	LocalAssets *media.LocalStorage // set only when binaries live on local disk
	closers     []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (*backend, error) {
	if cfg.StoreBackend == config.BackendSanity {
		client := contentstore.NewSanityClient(contentstore.SanityConfig{
			ProjectID:  cfg.SanityProjectID,
			Dataset:    cfg.SanityDataset,
			APIVersion: cfg.SanityAPIVersion,
			Token:      cfg.SanityToken,
			UseCDN:     cfg.SanityUseCDN,
		}, logging.Component(logger, "sanity"))
		if cfg.SanityToken == "" {
			slog.Warn("SANITY_WRITE_TOKEN is not set, photo actions will be rejected by the content API")
		}
		return &backend{Client: client}, nil
	}

	b := &backend{}
	db, err := database.InitGormDB(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, func() {
		if err := database.Close(db); err != nil {
			slog.Error("error closing database", "error", err)
		}
	})
	if err := database.AutoMigrateModels(db); err != nil {
		b.Close()
		return nil, err
	}

	subDirs := map[media.AssetType]string{media.AssetTypeImage: cfg.AssetsSubDir}
	var store media.Store
	if cfg.MediaBackend == config.BackendS3 {
		store, err = media.NewS3Storage(ctx, media.S3Options{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			BaseEndpoint:  cfg.S3BaseEndpoint,
			AccessKeyID:   cfg.S3AccessKeyID,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.AssetBaseURL,
			SubDirs:       subDirs,
		})
	} else {
		b.LocalAssets, err = media.NewLocalStorage(cfg.MediaStoragePath, cfg.AssetURLPrefix(), subDirs)
		store = b.LocalAssets
	}
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to initialize media store: %w", err)
	}

	slog.Info("initializing metadata worker pool", "workers", cfg.NumMetadataWorkers, "queue_size", cfg.MetadataQueueSize)
	metadata := workers.NewMetadataProcessor(
		repository.NewAssetRepository(db),
		media.NewProcessor(store),
		logging.Component(logger, "metadata"),
		cfg.MetadataQueueSize,
		cfg.NumMetadataWorkers,
	)
	b.closers = append(b.closers, metadata.Stop)
	if n, err := metadata.RequeuePending(ctx); err != nil {
		slog.Warn("failed to requeue pending metadata jobs", "error", err)
	} else if n > 0 {
		slog.Info("requeued pending metadata jobs", "count", n)
	}

	b.Client = contentstore.NewLocalClient(db, store, cfg.AssetsSubDir, metadata, logging.Component(logger, "store"))
	return b, nil
}

// newRouter wires the page, JSON and action routes. localAssets may be nil,
// in which case no asset route is mounted.
func newRouter(cfg config.Config, store contentstore.Client, localAssets *media.LocalStorage, logger *slog.Logger) (http.Handler, error) {
	renderer, err := views.New(cfg.SiteTitle, store.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	r := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler.Handler)

	gallery := handlers.NewGalleryHandler(store, renderer, logging.Component(logger, "gallery"))
	actions := handlers.NewPhotoActionHandler(store, cfg.MaxUploadBytes, logging.Component(logger, "photos"))

	var limiter func(http.Handler) http.Handler
	if cfg.RateLimitPerMinute > 0 {
		limiter = httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute)
	}

	r.Get("/", gallery.Home)
	r.Get("/gallery", gallery.Gallery)
	r.Get("/photo/{slug}", gallery.PhotoPage)
	r.Get("/admin", gallery.Admin)
	r.Get("/api/schema", gallery.Schema)

	r.Route("/api/photos", func(r chi.Router) {
		r.Get("/", gallery.ListPhotos)
		actions.Register(r, limiter)
	})

	if localAssets != nil {
		r.Get(cfg.AssetRoutePrefix+"/*", handlers.AssetServer(localAssets))
	}

	return r, nil
}

// runAdmin starts the interactive admin console against a running server:
//
//	photogallery admin [base-url]
func runAdmin(cfg config.Config, args []string) error {
	baseURL := "http://localhost:" + cfg.Port
	if len(args) > 0 {
		baseURL = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := admin.NewSession(admin.NewAPIClient(baseURL), nil)
	if err := session.Reload(ctx); err != nil {
		return fmt.Errorf("failed to load photos from %s: %w", baseURL, err)
	}
	admin.NewConsole(session, os.Stdin, os.Stdout).Run(ctx)
	return nil
}
