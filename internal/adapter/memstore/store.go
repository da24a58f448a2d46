// Package memstore is an in-memory domain.DocumentStore for local development
// and tests. Contents are lost on restart.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/couchcryptid/travel-journal/internal/domain"
)

// Store holds every collection in maps guarded by one lock.
type Store struct {
	mu      sync.RWMutex
	posts   map[string]domain.Post
	gallery map[string]domain.GalleryItem
	profile *domain.Profile
}

// New creates an empty store.
func New() *Store {
	return &Store{
		posts:   make(map[string]domain.Post),
		gallery: make(map[string]domain.GalleryItem),
	}
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) ListPosts(_ context.Context) ([]domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, clonePost(p))
	}
	slices.SortFunc(out, func(a, b domain.Post) int {
		if c := b.VisitedAt.Compare(a.VisitedAt); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *Store) GetPost(_ context.Context, id string) (domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return domain.Post{}, fmt.Errorf("post %q: %w", id, domain.ErrNotFound)
	}
	return clonePost(p), nil
}

func (s *Store) CreatePost(_ context.Context, p domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[p.ID]; ok {
		return fmt.Errorf("post %q already exists: %w", p.ID, domain.ErrInvalidInput)
	}
	s.posts[p.ID] = clonePost(p)
	return nil
}

func (s *Store) UpdatePost(_ context.Context, p domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[p.ID]; !ok {
		return fmt.Errorf("post %q: %w", p.ID, domain.ErrNotFound)
	}
	s.posts[p.ID] = clonePost(p)
	return nil
}

func (s *Store) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("post %q: %w", id, domain.ErrNotFound)
	}
	delete(s.posts, id)
	return nil
}

func (s *Store) ListGallery(_ context.Context) ([]domain.GalleryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.GalleryItem, 0, len(s.gallery))
	for _, item := range s.gallery {
		out = append(out, item)
	}
	slices.SortFunc(out, func(a, b domain.GalleryItem) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *Store) GetGalleryItem(_ context.Context, id string) (domain.GalleryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.gallery[id]
	if !ok {
		return domain.GalleryItem{}, fmt.Errorf("gallery item %q: %w", id, domain.ErrNotFound)
	}
	return item, nil
}

func (s *Store) CreateGalleryItem(_ context.Context, item domain.GalleryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.gallery[item.ID]; ok {
		return fmt.Errorf("gallery item %q already exists: %w", item.ID, domain.ErrInvalidInput)
	}
	s.gallery[item.ID] = item
	return nil
}

func (s *Store) UpdateGalleryItem(_ context.Context, item domain.GalleryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.gallery[item.ID]; !ok {
		return fmt.Errorf("gallery item %q: %w", item.ID, domain.ErrNotFound)
	}
	s.gallery[item.ID] = item
	return nil
}

func (s *Store) DeleteGalleryItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.gallery[id]; !ok {
		return fmt.Errorf("gallery item %q: %w", id, domain.ErrNotFound)
	}
	delete(s.gallery, id)
	return nil
}

func (s *Store) GetProfile(_ context.Context) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.profile == nil {
		return domain.Profile{}, fmt.Errorf("profile: %w", domain.ErrNotFound)
	}
	return cloneProfile(*s.profile), nil
}

func (s *Store) SaveProfile(_ context.Context, p domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneProfile(p)
	s.profile = &cp
	return nil
}

func clonePost(p domain.Post) domain.Post {
	p.Images = slices.Clone(p.Images)
	p.Tags = slices.Clone(p.Tags)
	return p
}

func cloneProfile(p domain.Profile) domain.Profile {
	if p.Links != nil {
		links := make(map[string]string, len(p.Links))
		for k, v := range p.Links {
			links[k] = v
		}
		p.Links = links
	}
	return p
}
