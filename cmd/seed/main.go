// Command seed loads journal content from a YAML fixture file into the
// configured document store. Documents with an id that already exists are
// replaced, so the command can be re-run after editing the fixtures.
//
// Usage:
//
//	STORE_BACKEND=firestore FIRESTORE_PROJECT_ID=my-journal \
//	  go run ./cmd/seed -file data/fixtures.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/travel-journal/internal/adapter/firestore"
	"github.com/couchcryptid/travel-journal/internal/adapter/memstore"
	"github.com/couchcryptid/travel-journal/internal/config"
	"github.com/couchcryptid/travel-journal/internal/domain"
	"github.com/couchcryptid/travel-journal/internal/journal"
	"github.com/couchcryptid/travel-journal/internal/observability"
)

// fixtures is the layout of the seed file.
type fixtures struct {
	Profile *domain.Profile      `yaml:"profile"`
	Posts   []domain.Post        `yaml:"posts"`
	Gallery []domain.GalleryItem `yaml:"gallery"`
}

type counts struct {
	created, updated int
}

func main() {
	file := flag.String("file", "fixtures.yaml", "YAML file with profile, posts and gallery entries")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)

	if err := run(context.Background(), cfg, *file, logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fx, err := load(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var store domain.DocumentStore = memstore.New()
	if cfg.StoreBackend == config.StoreFirestore {
		fs, err := firestore.Open(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredsFile, firestore.Collections{
			Posts:   cfg.PostsCollection,
			Gallery: cfg.GalleryCollection,
			Profile: cfg.ProfileCollection,
		})
		if err != nil {
			return err
		}
		defer fs.Close()
		store = fs
	} else {
		logger.Warn("memory backend selected, nothing will be persisted")
	}

	// Boundaries are warmed by the running service, not here.
	svc := journal.NewService(store, nil, nil, logger)
	return seed(ctx, svc, fx, logger)
}

func load(r io.Reader) (fixtures, error) {
	var fx fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return fixtures{}, nil
		}
		return fixtures{}, fmt.Errorf("decode fixtures: %w", err)
	}
	return fx, nil
}

func seed(ctx context.Context, svc *journal.Service, fx fixtures, logger *slog.Logger) error {
	if fx.Profile != nil {
		if _, err := svc.SaveProfile(ctx, *fx.Profile); err != nil {
			return err
		}
		logger.Info("profile saved")
	}

	var posts counts
	for _, p := range fx.Posts {
		if err := upsertPost(ctx, svc, p, &posts); err != nil {
			return fmt.Errorf("post %q: %w", p.Title, err)
		}
	}
	logger.Info("posts seeded", "created", posts.created, "updated", posts.updated)

	var gallery counts
	for _, item := range fx.Gallery {
		if err := upsertGalleryItem(ctx, svc, item, &gallery); err != nil {
			return fmt.Errorf("gallery item %q: %w", item.ImageURL, err)
		}
	}
	logger.Info("gallery seeded", "created", gallery.created, "updated", gallery.updated)
	return nil
}

func upsertPost(ctx context.Context, svc *journal.Service, p domain.Post, c *counts) error {
	if p.ID != "" {
		_, err := svc.GetPost(ctx, p.ID, true)
		if err == nil {
			_, err = svc.UpdatePost(ctx, p.ID, p)
			if err == nil {
				c.updated++
			}
			return err
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	if _, err := svc.CreatePost(ctx, p); err != nil {
		return err
	}
	c.created++
	return nil
}

func upsertGalleryItem(ctx context.Context, svc *journal.Service, item domain.GalleryItem, c *counts) error {
	if item.ID != "" {
		_, err := svc.UpdateGalleryItem(ctx, item.ID, item)
		if err == nil {
			c.updated++
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	if _, err := svc.CreateGalleryItem(ctx, item); err != nil {
		return err
	}
	c.created++
	return nil
}
