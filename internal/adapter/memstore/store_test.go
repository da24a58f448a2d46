package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/travel-journal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, time.April, n, 0, 0, 0, 0, time.UTC)
}

func TestPosts_CRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := domain.Post{ID: "p1", Title: "Temples", City: "Kyoto", Country: "Japan", Tags: []string{"temples"}}
	require.NoError(t, s.CreatePost(ctx, p))

	got, err := s.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Temples", got.Title)

	p.Title = "Temples and Tea"
	require.NoError(t, s.UpdatePost(ctx, p))
	got, err = s.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Temples and Tea", got.Title)

	require.NoError(t, s.DeletePost(ctx, "p1"))
	_, err = s.GetPost(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPosts_MissingIDs(t *testing.T) {
	ctx := context.Background()
	s := New()

	assert.ErrorIs(t, s.UpdatePost(ctx, domain.Post{ID: "nope"}), domain.ErrNotFound)
	assert.ErrorIs(t, s.DeletePost(ctx, "nope"), domain.ErrNotFound)
}

func TestPosts_DuplicateCreate(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreatePost(ctx, domain.Post{ID: "p1"}))
	assert.ErrorIs(t, s.CreatePost(ctx, domain.Post{ID: "p1"}), domain.ErrInvalidInput)
}

func TestListPosts_NewestVisitFirst(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreatePost(ctx, domain.Post{ID: "old", VisitedAt: day(1)}))
	require.NoError(t, s.CreatePost(ctx, domain.Post{ID: "new", VisitedAt: day(20)}))
	require.NoError(t, s.CreatePost(ctx, domain.Post{ID: "mid", VisitedAt: day(10)}))

	posts, err := s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{posts[0].ID, posts[1].ID, posts[2].ID})
}

func TestGetPost_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreatePost(ctx, domain.Post{ID: "p1", Tags: []string{"a"}}))

	got, err := s.GetPost(ctx, "p1")
	require.NoError(t, err)
	got.Tags[0] = "mutated"

	again, err := s.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Tags[0])
}

func TestGallery_CRUDAndOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateGalleryItem(ctx, domain.GalleryItem{ID: "g1", CreatedAt: day(1)}))
	require.NoError(t, s.CreateGalleryItem(ctx, domain.GalleryItem{ID: "g2", CreatedAt: day(2)}))

	items, err := s.ListGallery(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "g2", items[0].ID)

	require.NoError(t, s.UpdateGalleryItem(ctx, domain.GalleryItem{ID: "g1", Caption: "Fushimi Inari"}))
	item, err := s.GetGalleryItem(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "Fushimi Inari", item.Caption)

	require.NoError(t, s.DeleteGalleryItem(ctx, "g1"))
	assert.ErrorIs(t, s.DeleteGalleryItem(ctx, "g1"), domain.ErrNotFound)
}

func TestProfile_GetBeforeSave(t *testing.T) {
	_, err := New().GetProfile(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfile_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.SaveProfile(ctx, domain.Profile{Name: "Ana", Links: map[string]string{"ig": "@ana"}}))
	p, err := s.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, "@ana", p.Links["ig"])
}
