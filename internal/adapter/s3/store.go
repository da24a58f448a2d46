// Package s3 stores content images in an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/couchcryptid/travel-journal/internal/domain"
	"github.com/couchcryptid/travel-journal/internal/observability"
)

const (
	defaultMaxKeys = 100
	maxMaxKeys     = 1000
	maxNameLength  = 100
)

// Options configures the image store.
type Options struct {
	Bucket          string
	Region          string
	Endpoint        string // non-empty for S3-compatible stores; enables path-style addressing
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string // base for object URLs; derived from bucket and endpoint when empty
	Prefix          string // every key lives under this prefix
}

// objectAPI is the subset of the S3 client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *awss3.PutObjectInput, opts ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *awss3.ListObjectsV2Input, opts ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, in *awss3.DeleteObjectInput, opts ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
}

// Store implements domain.ImageStore.
type Store struct {
	api     objectAPI
	opts    Options
	newID   func() string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New builds an S3 client from opts. Static credentials are used when given,
// otherwise the default AWS credential chain.
func New(ctx context.Context, opts Options, metrics *observability.Metrics, logger *slog.Logger) (*Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newStore(client, opts, metrics, logger), nil
}

func newStore(api objectAPI, opts Options, metrics *observability.Metrics, logger *slog.Logger) *Store {
	return &Store{
		api:     api,
		opts:    opts,
		newID:   func() string { return uuid.NewString() },
		metrics: metrics,
		logger:  logger,
	}
}

func (s *Store) Prefix() string { return s.opts.Prefix }

func (s *Store) Bucket() string { return s.opts.Bucket }

// Upload stores body under "<prefix><id>-<sanitized name>".
func (s *Store) Upload(ctx context.Context, name, contentType string, body io.Reader, size int64) (domain.UploadedImage, error) {
	id := s.newID()
	key := s.opts.Prefix + id + "-" + SanitizeFilename(name)

	// PutObject needs a seekable body to sign the payload.
	rs, ok := body.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(body)
		if err != nil {
			s.observe("upload", err)
			return domain.UploadedImage{}, fmt.Errorf("read upload: %w", err)
		}
		rs = bytes.NewReader(data)
		size = int64(len(data))
	}

	in := &awss3.PutObjectInput{
		Bucket:        aws.String(s.opts.Bucket),
		Key:           aws.String(key),
		Body:          rs,
		ContentLength: aws.Int64(size),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	_, err := s.api.PutObject(ctx, in)
	s.observe("upload", err)
	if err != nil {
		return domain.UploadedImage{}, fmt.Errorf("put object %s: %w", key, err)
	}

	s.logger.Info("image uploaded", "key", key, "size", size)
	return domain.UploadedImage{URL: s.objectURL(key), FileID: key, Name: name}, nil
}

// List returns up to maxKeys images under prefix, most recently modified first.
// An empty prefix means the configured content prefix.
func (s *Store) List(ctx context.Context, prefix string, maxKeys int) ([]domain.ImageObject, error) {
	if prefix == "" {
		prefix = s.opts.Prefix
	}
	if !strings.HasPrefix(prefix, s.opts.Prefix) {
		return nil, fmt.Errorf("prefix %q: %w", prefix, domain.ErrForbiddenKey)
	}
	switch {
	case maxKeys <= 0:
		maxKeys = defaultMaxKeys
	case maxKeys > maxMaxKeys:
		maxKeys = maxMaxKeys
	}

	out, err := s.api.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket:  aws.String(s.opts.Bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(int32(maxKeys)),
	})
	s.observe("list", err)
	if IsNotFound(err) {
		return nil, fmt.Errorf("list objects %s: %w", prefix, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("list objects %s: %w", prefix, err)
	}

	items := make([]domain.ImageObject, 0, len(out.Contents))
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		if key == "" || strings.HasSuffix(key, "/") {
			continue
		}
		items = append(items, domain.ImageObject{
			Key:          key,
			URL:          s.objectURL(key),
			LastModified: aws.ToTime(obj.LastModified),
			Size:         aws.ToInt64(obj.Size),
		})
	}
	slices.SortStableFunc(items, func(a, b domain.ImageObject) int {
		return b.LastModified.Compare(a.LastModified)
	})
	return items, nil
}

// Delete removes key. Keys outside the content prefix are refused.
func (s *Store) Delete(ctx context.Context, key string) error {
	if !s.ownsKey(key) {
		return fmt.Errorf("delete %q: %w", key, domain.ErrForbiddenKey)
	}

	_, err := s.api.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	})
	s.observe("delete", err)
	if IsNotFound(err) {
		return fmt.Errorf("delete object %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}

	s.logger.Info("image deleted", "key", key)
	return nil
}

func (s *Store) ownsKey(key string) bool {
	if !strings.HasPrefix(key, s.opts.Prefix) || len(key) == len(s.opts.Prefix) {
		return false
	}
	return !slices.Contains(strings.Split(key, "/"), "..")
}

func (s *Store) objectURL(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	escaped := strings.Join(segments, "/")

	switch {
	case s.opts.PublicURL != "":
		return strings.TrimRight(s.opts.PublicURL, "/") + "/" + escaped
	case s.opts.Endpoint != "":
		return strings.TrimRight(s.opts.Endpoint, "/") + "/" + s.opts.Bucket + "/" + escaped
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, escaped)
	}
}

func (s *Store) observe(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		s.logger.Error("object store operation failed", "op", op, "error", err)
	}
	s.metrics.ImageOps.WithLabelValues(op, outcome).Inc()
}

// SanitizeFilename reduces name to lowercase letters, digits, '.', '_' and
// '-', collapsing runs of anything else into a single '-'.
func SanitizeFilename(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	dash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
			dash = false
		case !dash:
			b.WriteByte('-')
			dash = true
		}
	}

	out := strings.Trim(b.String(), "-.")
	if len(out) > maxNameLength {
		out = strings.Trim(out[len(out)-maxNameLength:], "-.")
	}
	if out == "" {
		return "image"
	}
	return out
}

// IsNotFound reports whether err is an S3 missing-object error.
func IsNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}
