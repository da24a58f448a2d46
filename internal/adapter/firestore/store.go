// Package firestore implements domain.DocumentStore on Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/couchcryptid/travel-journal/internal/domain"
)

// Collections names the Firestore collections used for each document kind.
type Collections struct {
	Posts   string
	Gallery string
	Profile string
}

// Store is a Firestore-backed document store.
type Store struct {
	client      *firestore.Client
	collections Collections
}

// Open connects to Firestore. credentialsFile may be empty to use application
// default credentials or the emulator (FIRESTORE_EMULATOR_HOST).
func Open(ctx context.Context, projectID, credentialsFile string, collections Collections) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return New(client, collections), nil
}

// New wraps an existing client.
func New(client *firestore.Client, collections Collections) *Store {
	return &Store{client: client, collections: collections}
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping reads at most one post to confirm the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	iter := s.client.Collection(s.collections.Posts).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

func (s *Store) ListPosts(ctx context.Context) ([]domain.Post, error) {
	iter := s.client.Collection(s.collections.Posts).OrderBy("visitedAt", firestore.Desc).Documents(ctx)
	return collect(iter, func(snap *firestore.DocumentSnapshot) (domain.Post, error) {
		var p domain.Post
		err := snap.DataTo(&p)
		p.ID = snap.Ref.ID
		return p, err
	})
}

func (s *Store) GetPost(ctx context.Context, id string) (domain.Post, error) {
	var p domain.Post
	if err := s.get(ctx, s.collections.Posts, id, &p); err != nil {
		return domain.Post{}, err
	}
	p.ID = id
	return p, nil
}

func (s *Store) CreatePost(ctx context.Context, p domain.Post) error {
	return s.create(ctx, s.collections.Posts, p.ID, p)
}

func (s *Store) UpdatePost(ctx context.Context, p domain.Post) error {
	return s.replace(ctx, s.collections.Posts, p.ID, p)
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	return s.delete(ctx, s.collections.Posts, id)
}

func (s *Store) ListGallery(ctx context.Context) ([]domain.GalleryItem, error) {
	iter := s.client.Collection(s.collections.Gallery).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	return collect(iter, func(snap *firestore.DocumentSnapshot) (domain.GalleryItem, error) {
		var item domain.GalleryItem
		err := snap.DataTo(&item)
		item.ID = snap.Ref.ID
		return item, err
	})
}

func (s *Store) GetGalleryItem(ctx context.Context, id string) (domain.GalleryItem, error) {
	var item domain.GalleryItem
	if err := s.get(ctx, s.collections.Gallery, id, &item); err != nil {
		return domain.GalleryItem{}, err
	}
	item.ID = id
	return item, nil
}

func (s *Store) CreateGalleryItem(ctx context.Context, item domain.GalleryItem) error {
	return s.create(ctx, s.collections.Gallery, item.ID, item)
}

func (s *Store) UpdateGalleryItem(ctx context.Context, item domain.GalleryItem) error {
	return s.replace(ctx, s.collections.Gallery, item.ID, item)
}

func (s *Store) DeleteGalleryItem(ctx context.Context, id string) error {
	return s.delete(ctx, s.collections.Gallery, id)
}

func (s *Store) GetProfile(ctx context.Context) (domain.Profile, error) {
	var p domain.Profile
	if err := s.get(ctx, s.collections.Profile, domain.ProfileID, &p); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

func (s *Store) SaveProfile(ctx context.Context, p domain.Profile) error {
	if _, err := s.client.Collection(s.collections.Profile).Doc(domain.ProfileID).Set(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, collection, id string, dst any) error {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return translate(collection, id, err)
	}
	if err := snap.DataTo(dst); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) create(ctx context.Context, collection, id string, data any) error {
	if _, err := s.client.Collection(collection).Doc(id).Create(ctx, data); err != nil {
		return translate(collection, id, err)
	}
	return nil
}

// replace overwrites an existing document, failing with ErrNotFound when absent.
func (s *Store) replace(ctx context.Context, collection, id string, data any) error {
	ref := s.client.Collection(collection).Doc(id)
	err := s.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, data)
	})
	if err != nil {
		return translate(collection, id, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		return translate(collection, id, err)
	}
	return nil
}

func collect[T any](iter *firestore.DocumentIterator, decode func(*firestore.DocumentSnapshot) (T, error)) ([]T, error) {
	defer iter.Stop()
	out := make([]T, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		v, err := decode(snap)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", snap.Ref.ID, err)
		}
		out = append(out, v)
	}
}

func translate(collection, id string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrNotFound)
	case codes.AlreadyExists:
		return fmt.Errorf("%s/%s already exists: %w", collection, id, domain.ErrInvalidInput)
	default:
		return fmt.Errorf("%s/%s: %w", collection, id, err)
	}
}
