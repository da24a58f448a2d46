package journal_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/travel-journal/internal/adapter/memstore"
	"github.com/couchcryptid/travel-journal/internal/domain"
	"github.com/couchcryptid/travel-journal/internal/journal"
)

// --- mocks ---

type recordingLookup struct {
	mu      sync.Mutex
	lookups []domain.BoundaryRequest
	batches [][]domain.BoundaryRequest
	missing map[string]bool
}

func (r *recordingLookup) Lookup(_ context.Context, req domain.BoundaryRequest) domain.BoundaryResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, req)
	return r.resolve(req)
}

func (r *recordingLookup) LookupAll(_ context.Context, reqs []domain.BoundaryRequest) []domain.Boundary {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, reqs)
	out := make([]domain.Boundary, 0, len(reqs))
	for _, req := range reqs {
		if res := r.resolve(req); res.Found {
			out = append(out, res.Boundary)
		}
	}
	return out
}

func (r *recordingLookup) resolve(req domain.BoundaryRequest) domain.BoundaryResult {
	if r.missing[req.Key()] {
		return domain.NotFound()
	}
	return domain.Found(domain.Boundary{City: req.City, Country: req.Country, Geometry: domain.Geometry{Type: domain.GeometryPolygon}})
}

func (r *recordingLookup) lookedUp() []domain.BoundaryRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.BoundaryRequest(nil), r.lookups...)
}

var fixedNow = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*journal.Service, *recordingLookup) {
	t.Helper()
	lookup := &recordingLookup{missing: map[string]bool{}}
	svc := journal.NewService(memstore.New(), lookup, clockwork.NewFakeClockAt(fixedNow),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, lookup
}

func visit(title, city, country string, day int, published bool) domain.Post {
	return domain.Post{
		Title:     title,
		City:      city,
		Country:   country,
		Published: published,
		VisitedAt: time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC),
	}
}

// --- posts ---

func TestCreatePost_AssignsIDSlugAndTimestamps(t *testing.T) {
	svc, _ := newService(t)

	p, err := svc.CreatePost(context.Background(), domain.Post{Title: " Temples & Tea ", City: "Kyoto", Country: "Japan"})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Temples & Tea", p.Title)
	assert.Equal(t, "temples-tea", p.Slug)
	assert.Equal(t, fixedNow, p.CreatedAt)
	assert.Equal(t, fixedNow, p.UpdatedAt)
	assert.Equal(t, fixedNow, p.VisitedAt)
}

func TestCreatePost_WarmsBoundary(t *testing.T) {
	svc, lookup := newService(t)

	_, err := svc.CreatePost(context.Background(), visit("Temples", "Kyoto", "Japan", 3, true))
	require.NoError(t, err)
	require.NoError(t, svc.Wait(context.Background()))

	assert.Equal(t, []domain.BoundaryRequest{{City: "Kyoto", Country: "Japan"}}, lookup.lookedUp())
}

func TestCreatePost_Validation(t *testing.T) {
	svc, lookup := newService(t)

	_, err := svc.CreatePost(context.Background(), domain.Post{Title: "No place"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "city")
	assert.Contains(t, err.Error(), "country")
	assert.Empty(t, lookup.lookedUp())
}

func TestUpdatePost_KeepsCreationTime(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.CreatePost(ctx, visit("Temples", "Kyoto", "Japan", 3, true))
	require.NoError(t, err)

	updated, err := svc.UpdatePost(ctx, created.ID, domain.Post{Title: "Temples, revisited", City: "Kyoto", Country: "Japan", Published: true})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, created.Slug, updated.Slug)
	assert.Equal(t, created.VisitedAt, updated.VisitedAt)
	assert.Equal(t, "Temples, revisited", updated.Title)
}

func TestUpdatePost_Missing(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.UpdatePost(context.Background(), "nope", visit("x", "y", "z", 1, true))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDrafts_HiddenFromReaders(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	draft, err := svc.CreatePost(ctx, visit("Draft", "Kyoto", "Japan", 3, false))
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, visit("Live", "Tokyo", "Japan", 4, true))
	require.NoError(t, err)

	public, err := svc.ListPosts(ctx, false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Live", public[0].Title)

	all, err := svc.ListPosts(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.GetPost(ctx, draft.ID, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, err := svc.GetPost(ctx, draft.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Draft", got.Title)
}

func TestDeletePost(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, visit("Temples", "Kyoto", "Japan", 3, true))
	require.NoError(t, err)
	require.NoError(t, svc.DeletePost(ctx, p.ID))
	assert.ErrorIs(t, svc.DeletePost(ctx, p.ID), domain.ErrNotFound)
}

// --- map ---

func TestCountries_PublishedOnlySorted(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, p := range []domain.Post{
		visit("a", "Lisbon", "Portugal", 1, true),
		visit("b", "Kyoto", "Japan", 2, true),
		visit("c", "Tokyo", "Japan", 3, true),
		visit("d", "Oslo", "Norway", 4, false),
	} {
		_, err := svc.CreatePost(ctx, p)
		require.NoError(t, err)
	}

	countries, err := svc.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Japan", "Portugal"}, countries)
}

func TestCityBoundaries_DistinctCitiesInPostOrder(t *testing.T) {
	svc, lookup := newService(t)
	ctx := context.Background()
	lookup.missing[domain.BoundaryRequest{City: "Nara", Country: "Japan"}.Key()] = true

	for _, p := range []domain.Post{
		visit("k1", "Kyoto", "Japan", 1, true),
		visit("t1", "Tokyo", "Japan", 5, true),
		visit("k2", "Kyoto", "Japan", 9, true),
		visit("n1", "Nara", "Japan", 7, true),
		visit("l1", "Lisbon", "Portugal", 8, true),
		visit("o1", "Osaka", "Japan", 2, false),
	} {
		_, err := svc.CreatePost(ctx, p)
		require.NoError(t, err)
	}
	require.NoError(t, svc.Wait(ctx))

	got, err := svc.CityBoundaries(ctx, "Japan")
	require.NoError(t, err)

	// Posts list newest visit first: Kyoto(9), Nara(7), Tokyo(5), Kyoto(1).
	require.Len(t, lookup.batches, 1)
	assert.Equal(t, []domain.BoundaryRequest{
		{City: "Kyoto", Country: "Japan"},
		{City: "Nara", Country: "Japan"},
		{City: "Tokyo", Country: "Japan"},
	}, lookup.batches[0])

	require.Len(t, got, 2)
	assert.Equal(t, "Kyoto", got[0].City)
	assert.Equal(t, "Tokyo", got[1].City)
}

func TestCityBoundaries_UnknownCountry(t *testing.T) {
	svc, lookup := newService(t)

	got, err := svc.CityBoundaries(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, lookup.batches)
}

// --- gallery & profile ---

func TestGallery_Lifecycle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateGalleryItem(ctx, domain.GalleryItem{Caption: "no image"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	item, err := svc.CreateGalleryItem(ctx, domain.GalleryItem{ImageURL: "https://cdn/x.jpg", ImageKey: "journal/x.jpg"})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, fixedNow, item.CreatedAt)

	updated, err := svc.UpdateGalleryItem(ctx, item.ID, domain.GalleryItem{Caption: "Fushimi Inari"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.jpg", updated.ImageURL)
	assert.Equal(t, "journal/x.jpg", updated.ImageKey)
	assert.Equal(t, "Fushimi Inari", updated.Caption)

	items, err := svc.ListGallery(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, svc.DeleteGalleryItem(ctx, item.ID))
}

func TestProfile_EmptyUntilSaved(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.GetProfile(ctx)
	require.NoError(t, err)
	assert.Empty(t, p.Name)

	saved, err := svc.SaveProfile(ctx, domain.Profile{Name: " Ana ", Bio: "Slow travel."})
	require.NoError(t, err)
	assert.Equal(t, "Ana", saved.Name)
	assert.Equal(t, fixedNow, saved.UpdatedAt)

	p, err = svc.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Slow travel.", p.Bio)
}

func TestCheckReadiness(t *testing.T) {
	svc, _ := newService(t)
	assert.NoError(t, svc.CheckReadiness(context.Background()))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "temples-tea", journal.Slugify("Temples & Tea"))
	assert.Equal(t, "são-paulo-2024", journal.Slugify("  São Paulo, 2024!"))
	assert.Equal(t, "", journal.Slugify("!!!"))
}
