package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Store backends.
const (
	StoreMemory    = "memory"
	StoreFirestore = "firestore"
)

// Auth modes.
const (
	AuthStatic   = "static"
	AuthFirebase = "firebase"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Geocoding (boundary lookups).
	GeocoderURL       string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration
	GeocoderDelay     time.Duration

	// Document store.
	StoreBackend       string
	FirestoreProjectID string
	FirestoreCredsFile string
	PostsCollection    string
	GalleryCollection  string
	ProfileCollection  string

	// Object store. Image endpoints are disabled when S3Bucket is empty.
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicURL       string
	ImagePrefix       string
	MaxUploadSize     int64

	AuthMode   string
	AdminToken string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	geocoderTimeout, err := parseDuration("GEOCODER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	geocoderDelay, err := parseDuration("GEOCODER_DELAY", "1100ms")
	if err != nil {
		return nil, err
	}

	maxUpload, err := parseMaxUploadSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		GeocoderURL:       sharedcfg.EnvOrDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org/search"),
		GeocoderUserAgent: sharedcfg.EnvOrDefault("GEOCODER_USER_AGENT", "travel-journal/1.0"),
		GeocoderTimeout:   geocoderTimeout,
		GeocoderDelay:     geocoderDelay,

		StoreBackend:       sharedcfg.EnvOrDefault("STORE_BACKEND", StoreMemory),
		FirestoreProjectID: os.Getenv("FIRESTORE_PROJECT_ID"),
		FirestoreCredsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		PostsCollection:    sharedcfg.EnvOrDefault("POSTS_COLLECTION", "posts"),
		GalleryCollection:  sharedcfg.EnvOrDefault("GALLERY_COLLECTION", "gallery"),
		ProfileCollection:  sharedcfg.EnvOrDefault("PROFILE_COLLECTION", "profile"),

		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3Region:          sharedcfg.EnvOrDefault("S3_REGION", "us-east-1"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3PublicURL:       strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/"),
		ImagePrefix:       sharedcfg.EnvOrDefault("IMAGE_PREFIX", "journal/"),
		MaxUploadSize:     maxUpload,

		AuthMode:   sharedcfg.EnvOrDefault("AUTH_MODE", AuthStatic),
		AdminToken: os.Getenv("ADMIN_TOKEN"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ImagesEnabled reports whether an object store is configured.
func (c *Config) ImagesEnabled() bool {
	return c.S3Bucket != ""
}

func (c *Config) validate() error {
	if c.GeocoderURL == "" {
		return errors.New("GEOCODER_URL is required")
	}
	if c.GeocoderUserAgent == "" {
		return errors.New("GEOCODER_USER_AGENT is required")
	}
	switch c.StoreBackend {
	case StoreMemory:
	case StoreFirestore:
		if c.FirestoreProjectID == "" {
			return errors.New("STORE_BACKEND is firestore but FIRESTORE_PROJECT_ID is not set")
		}
	default:
		return errors.New("invalid STORE_BACKEND: must be memory or firestore")
	}
	switch c.AuthMode {
	case AuthStatic:
		if c.AdminToken == "" {
			return errors.New("AUTH_MODE is static but ADMIN_TOKEN is not set")
		}
	case AuthFirebase:
		if c.FirestoreProjectID == "" {
			return errors.New("AUTH_MODE is firebase but FIRESTORE_PROJECT_ID is not set")
		}
	default:
		return errors.New("invalid AUTH_MODE: must be static or firebase")
	}
	if c.ImagePrefix == "" || !strings.HasSuffix(c.ImagePrefix, "/") {
		return errors.New("IMAGE_PREFIX must be non-empty and end with /")
	}
	if (c.S3AccessKeyID == "") != (c.S3SecretAccessKey == "") {
		return errors.New("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
	}
	return nil
}

func parseDuration(name, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d < 0 {
		return 0, errors.New("invalid " + name)
	}
	return d, nil
}

func parseMaxUploadSize() (int64, error) {
	s := os.Getenv("MAX_UPLOAD_SIZE")
	if s == "" {
		return 10 << 20, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid MAX_UPLOAD_SIZE")
	}
	return n, nil
}
