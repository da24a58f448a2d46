package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/travel-journal/internal/adapter/auth"
	"github.com/couchcryptid/travel-journal/internal/adapter/firestore"
	"github.com/couchcryptid/travel-journal/internal/adapter/httpadapter"
	"github.com/couchcryptid/travel-journal/internal/adapter/memstore"
	"github.com/couchcryptid/travel-journal/internal/adapter/nominatim"
	"github.com/couchcryptid/travel-journal/internal/adapter/s3"
	"github.com/couchcryptid/travel-journal/internal/boundary"
	"github.com/couchcryptid/travel-journal/internal/config"
	"github.com/couchcryptid/travel-journal/internal/domain"
	"github.com/couchcryptid/travel-journal/internal/journal"
	"github.com/couchcryptid/travel-journal/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	geocoder := nominatim.NewClient(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout, metrics, logger)
	boundaries := boundary.New(geocoder, metrics, logger, boundary.WithDelay(cfg.GeocoderDelay))
	logger.Info("boundary lookups enabled", "url", cfg.GeocoderURL, "delay", cfg.GeocoderDelay)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open document store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize auth", "mode", cfg.AuthMode, "error", err)
		os.Exit(1)
	}

	// Image endpoints are feature-flagged via S3_BUCKET.
	var images domain.ImageStore
	if cfg.ImagesEnabled() {
		images, err = s3.New(ctx, s3.Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicURL:       cfg.S3PublicURL,
			Prefix:          cfg.ImagePrefix,
		}, metrics, logger)
		if err != nil {
			logger.Error("failed to initialize image store", "error", err)
			os.Exit(1)
		}
		logger.Info("image store enabled", "bucket", cfg.S3Bucket, "prefix", cfg.ImagePrefix)
	} else {
		logger.Info("image store disabled")
	}

	svc := journal.NewService(store, boundaries, nil, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Journal:       svc,
		Verifier:      verifier,
		Images:        images,
		MaxUploadSize: cfg.MaxUploadSize,
		Metrics:       metrics,
		Logger:        logger,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := svc.Wait(shutdownCtx); err != nil {
		logger.Warn("boundary warm-ups still running", "error", err)
	}
	if err := closeStore(); err != nil {
		logger.Error("document store close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func openStore(ctx context.Context, cfg *config.Config) (domain.DocumentStore, func() error, error) {
	if cfg.StoreBackend == config.StoreMemory {
		return memstore.New(), func() error { return nil }, nil
	}
	fs, err := firestore.Open(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredsFile, firestore.Collections{
		Posts:   cfg.PostsCollection,
		Gallery: cfg.GalleryCollection,
		Profile: cfg.ProfileCollection,
	})
	if err != nil {
		return nil, nil, err
	}
	return fs, fs.Close, nil
}

func newVerifier(ctx context.Context, cfg *config.Config) (domain.TokenVerifier, error) {
	if cfg.AuthMode == config.AuthFirebase {
		return auth.NewFirebaseVerifier(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredsFile)
	}
	return auth.NewStaticVerifier(cfg.AdminToken), nil
}
