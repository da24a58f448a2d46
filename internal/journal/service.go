// Package journal orchestrates content operations: post, gallery and profile
// CRUD against the document store, plus the map's boundary queries.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/travel-journal/internal/domain"
)

// Service implements the journal's use cases.
type Service struct {
	store      domain.DocumentStore
	boundaries domain.BoundaryLookup
	clock      clockwork.Clock
	logger     *slog.Logger
	newID      func() string

	warming sync.WaitGroup
}

// NewService wires the service. Pass nil clock for real time.
func NewService(store domain.DocumentStore, boundaries domain.BoundaryLookup, clock clockwork.Clock, logger *slog.Logger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		store:      store,
		boundaries: boundaries,
		clock:      clock,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// CheckReadiness reports whether the document store is reachable.
func (s *Service) CheckReadiness(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Wait blocks until background boundary warm-ups finish or ctx ends.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.warming.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// --- posts ---

// ListPosts returns posts newest visit first. Drafts are included only for admins.
func (s *Service) ListPosts(ctx context.Context, includeDrafts bool) ([]domain.Post, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if includeDrafts {
		return posts, nil
	}
	return slices.DeleteFunc(posts, func(p domain.Post) bool { return !p.Published }), nil
}

// GetPost returns one post. Drafts read as not found unless includeDrafts is set.
func (s *Service) GetPost(ctx context.Context, id string, includeDrafts bool) (domain.Post, error) {
	p, err := s.store.GetPost(ctx, id)
	if err != nil {
		return domain.Post{}, err
	}
	if !p.Published && !includeDrafts {
		return domain.Post{}, fmt.Errorf("post %q: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// CreatePost validates and stores a new post, then warms the boundary cache
// for its city in the background.
func (s *Service) CreatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	p = normalizePost(p)
	if err := validatePost(p); err != nil {
		return domain.Post{}, err
	}

	now := s.clock.Now().UTC()
	if p.ID == "" {
		p.ID = s.newID()
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if p.VisitedAt.IsZero() {
		p.VisitedAt = now
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.store.CreatePost(ctx, p); err != nil {
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}
	s.logger.Info("post created", "id", p.ID, "city", p.City, "country", p.Country)
	s.warmBoundary(p.BoundaryRequest())
	return p, nil
}

// UpdatePost replaces post id, keeping its creation time.
func (s *Service) UpdatePost(ctx context.Context, id string, p domain.Post) (domain.Post, error) {
	existing, err := s.store.GetPost(ctx, id)
	if err != nil {
		return domain.Post{}, err
	}

	p = normalizePost(p)
	if err := validatePost(p); err != nil {
		return domain.Post{}, err
	}

	p.ID = id
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.clock.Now().UTC()
	if p.Slug == "" {
		p.Slug = existing.Slug
	}
	if p.VisitedAt.IsZero() {
		p.VisitedAt = existing.VisitedAt
	}

	if err := s.store.UpdatePost(ctx, p); err != nil {
		return domain.Post{}, fmt.Errorf("update post: %w", err)
	}
	s.logger.Info("post updated", "id", p.ID)
	s.warmBoundary(p.BoundaryRequest())
	return p, nil
}

// DeletePost removes post id.
func (s *Service) DeletePost(ctx context.Context, id string) error {
	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}
	s.logger.Info("post deleted", "id", id)
	return nil
}

// --- map ---

// Countries lists the countries that have published posts, sorted by name.
func (s *Service) Countries(ctx context.Context) ([]string, error) {
	posts, err := s.ListPosts(ctx, false)
	if err != nil {
		return nil, err
	}
	countries := make([]string, 0)
	for _, p := range posts {
		if !slices.Contains(countries, p.Country) {
			countries = append(countries, p.Country)
		}
	}
	slices.Sort(countries)
	return countries, nil
}

// CityBoundaries resolves outlines for every city with a published post in
// country, in the order the cities first appear in the post list. Cities
// without a usable outline are left out.
func (s *Service) CityBoundaries(ctx context.Context, country string) ([]domain.Boundary, error) {
	posts, err := s.ListPosts(ctx, false)
	if err != nil {
		return nil, err
	}
	reqs := citiesIn(posts, country)
	if len(reqs) == 0 {
		return []domain.Boundary{}, nil
	}
	return s.boundaries.LookupAll(ctx, reqs), nil
}

// Boundary resolves a single city outline.
func (s *Service) Boundary(ctx context.Context, req domain.BoundaryRequest) domain.BoundaryResult {
	return s.boundaries.Lookup(ctx, req)
}

func citiesIn(posts []domain.Post, country string) []domain.BoundaryRequest {
	reqs := make([]domain.BoundaryRequest, 0)
	seen := make(map[string]bool)
	for _, p := range posts {
		if p.Country != country {
			continue
		}
		req := p.BoundaryRequest()
		if seen[req.Key()] {
			continue
		}
		seen[req.Key()] = true
		reqs = append(reqs, req)
	}
	return reqs
}

// warmBoundary resolves the post's outline in the background so the map has
// it ready. Failures only mean the map draws no shape.
func (s *Service) warmBoundary(req domain.BoundaryRequest) {
	if s.boundaries == nil {
		return
	}
	s.warming.Add(1)
	go func() {
		defer s.warming.Done()
		result := s.boundaries.Lookup(context.Background(), req)
		s.logger.Debug("boundary warmed", "city", req.City, "country", req.Country, "found", result.Found)
	}()
}

// --- gallery ---

func (s *Service) ListGallery(ctx context.Context) ([]domain.GalleryItem, error) {
	items, err := s.store.ListGallery(ctx)
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	return items, nil
}

func (s *Service) CreateGalleryItem(ctx context.Context, item domain.GalleryItem) (domain.GalleryItem, error) {
	if strings.TrimSpace(item.ImageURL) == "" {
		return domain.GalleryItem{}, fmt.Errorf("imageUrl is required: %w", domain.ErrInvalidInput)
	}
	if item.ID == "" {
		item.ID = s.newID()
	}
	item.CreatedAt = s.clock.Now().UTC()
	if err := s.store.CreateGalleryItem(ctx, item); err != nil {
		return domain.GalleryItem{}, fmt.Errorf("create gallery item: %w", err)
	}
	return item, nil
}

func (s *Service) UpdateGalleryItem(ctx context.Context, id string, item domain.GalleryItem) (domain.GalleryItem, error) {
	existing, err := s.store.GetGalleryItem(ctx, id)
	if err != nil {
		return domain.GalleryItem{}, err
	}
	if strings.TrimSpace(item.ImageURL) == "" {
		item.ImageURL = existing.ImageURL
		item.ImageKey = existing.ImageKey
	}
	item.ID = id
	item.CreatedAt = existing.CreatedAt
	if err := s.store.UpdateGalleryItem(ctx, item); err != nil {
		return domain.GalleryItem{}, fmt.Errorf("update gallery item: %w", err)
	}
	return item, nil
}

func (s *Service) DeleteGalleryItem(ctx context.Context, id string) error {
	return s.store.DeleteGalleryItem(ctx, id)
}

// --- profile ---

// GetProfile returns the profile, or an empty one if none was saved yet.
func (s *Service) GetProfile(ctx context.Context) (domain.Profile, error) {
	p, err := s.store.GetProfile(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Profile{}, nil
	}
	return p, err
}

func (s *Service) SaveProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.UpdatedAt = s.clock.Now().UTC()
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return domain.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

// --- helpers ---

func normalizePost(p domain.Post) domain.Post {
	p.Title = strings.TrimSpace(p.Title)
	p.City = strings.TrimSpace(p.City)
	p.Country = strings.TrimSpace(p.Country)
	p.Slug = strings.TrimSpace(p.Slug)
	return p
}

func validatePost(p domain.Post) error {
	var missing []string
	if p.Title == "" {
		missing = append(missing, "title")
	}
	if p.City == "" {
		missing = append(missing, "city")
	}
	if p.Country == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s required: %w", strings.Join(missing, ", "), domain.ErrInvalidInput)
	}
	return nil
}

// Slugify turns a title into a URL path segment.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
