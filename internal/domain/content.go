package domain

import (
	"context"
	"io"
	"time"
)

// ProfileID is the document id of the singleton profile.
const ProfileID = "main"

// Post is a journal entry about a visit to one city.
type Post struct {
	ID         string    `json:"id" firestore:"-" yaml:"id"`
	Title      string    `json:"title" firestore:"title" yaml:"title"`
	Slug       string    `json:"slug" firestore:"slug" yaml:"slug"`
	City       string    `json:"city" firestore:"city" yaml:"city"`
	Country    string    `json:"country" firestore:"country" yaml:"country"`
	Lat        float64   `json:"lat,omitempty" firestore:"lat" yaml:"lat"`
	Lng        float64   `json:"lng,omitempty" firestore:"lng" yaml:"lng"`
	CoverImage string    `json:"coverImage,omitempty" firestore:"coverImage" yaml:"coverImage"`
	Content    string    `json:"content" firestore:"content" yaml:"content"`
	Excerpt    string    `json:"excerpt,omitempty" firestore:"excerpt" yaml:"excerpt"`
	Images     []string  `json:"images,omitempty" firestore:"images" yaml:"images"`
	Tags       []string  `json:"tags,omitempty" firestore:"tags" yaml:"tags"`
	Published  bool      `json:"published" firestore:"published" yaml:"published"`
	VisitedAt  time.Time `json:"visitedAt" firestore:"visitedAt" yaml:"visitedAt"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt" yaml:"-"`
	UpdatedAt  time.Time `json:"updatedAt" firestore:"updatedAt" yaml:"-"`
}

// BoundaryRequest returns the boundary lookup for the post's city.
func (p Post) BoundaryRequest() BoundaryRequest {
	return BoundaryRequest{City: p.City, Country: p.Country}
}

// GalleryItem is a standalone photo.
type GalleryItem struct {
	ID        string    `json:"id" firestore:"-" yaml:"id"`
	ImageURL  string    `json:"imageUrl" firestore:"imageUrl" yaml:"imageUrl"`
	ImageKey  string    `json:"imageKey,omitempty" firestore:"imageKey" yaml:"imageKey"`
	Caption   string    `json:"caption,omitempty" firestore:"caption" yaml:"caption"`
	City      string    `json:"city,omitempty" firestore:"city" yaml:"city"`
	Country   string    `json:"country,omitempty" firestore:"country" yaml:"country"`
	TakenAt   time.Time `json:"takenAt,omitempty" firestore:"takenAt" yaml:"takenAt"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" yaml:"-"`
}

// Profile holds the "about" content.
type Profile struct {
	Name      string            `json:"name" firestore:"name" yaml:"name"`
	Bio       string            `json:"bio" firestore:"bio" yaml:"bio"`
	AvatarURL string            `json:"avatarUrl,omitempty" firestore:"avatarUrl" yaml:"avatarUrl"`
	Location  string            `json:"location,omitempty" firestore:"location" yaml:"location"`
	Links     map[string]string `json:"links,omitempty" firestore:"links" yaml:"links"`
	UpdatedAt time.Time         `json:"updatedAt" firestore:"updatedAt" yaml:"-"`
}

// PostStore persists posts. ListPosts orders by VisitedAt, newest first.
type PostStore interface {
	ListPosts(ctx context.Context) ([]Post, error)
	GetPost(ctx context.Context, id string) (Post, error)
	CreatePost(ctx context.Context, p Post) error
	UpdatePost(ctx context.Context, p Post) error
	DeletePost(ctx context.Context, id string) error
}

// GalleryStore persists gallery items. ListGallery orders by CreatedAt, newest first.
type GalleryStore interface {
	ListGallery(ctx context.Context) ([]GalleryItem, error)
	GetGalleryItem(ctx context.Context, id string) (GalleryItem, error)
	CreateGalleryItem(ctx context.Context, item GalleryItem) error
	UpdateGalleryItem(ctx context.Context, item GalleryItem) error
	DeleteGalleryItem(ctx context.Context, id string) error
}

// ProfileStore persists the singleton profile.
type ProfileStore interface {
	GetProfile(ctx context.Context) (Profile, error)
	SaveProfile(ctx context.Context, p Profile) error
}

// DocumentStore bundles every collection plus a liveness probe.
type DocumentStore interface {
	PostStore
	GalleryStore
	ProfileStore
	Ping(ctx context.Context) error
}

// ImageObject is one stored image.
type ImageObject struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	LastModified time.Time `json:"lastModified"`
	Size         int64     `json:"size"`
}

// UploadedImage describes a freshly stored image.
type UploadedImage struct {
	URL    string `json:"url"`
	FileID string `json:"fileId"`
	Name   string `json:"name"`
}

// ImageStore is the object store holding all content images.
type ImageStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader, size int64) (UploadedImage, error)
	List(ctx context.Context, prefix string, maxKeys int) ([]ImageObject, error)
	Delete(ctx context.Context, key string) error
	Prefix() string
	Bucket() string
}
