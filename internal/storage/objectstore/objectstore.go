// Package objectstore keeps gallery images in an S3 compatible bucket
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/unionhub/unionhub-api/internal/logger"
)

var ErrNotConfigured = errors.New("object storage is not configured")

// Options configures a Store
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL replaces scheme://endpoint in returned object URLs
	PublicURL string
}

// Object describes a stored upload
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	ETag        string `json:"etag,omitempty"`
}

// Store writes objects into one bucket
type Store struct {
	client  *minio.Client
	bucket  string
	baseURL string
	log     *log.Logger
}

// New creates a MinIO client for opts. It does not contact the server.
func New(opts Options) (*Store, error) {
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, ErrNotConfigured
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	return &Store{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: baseURL(opts),
		log:     logger.Service("objectstore"),
	}, nil
}

func baseURL(opts Options) string {
	if opts.PublicURL != "" {
		return strings.TrimRight(opts.PublicURL, "/")
	}
	scheme := "http"
	if opts.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + opts.Endpoint
}

// EnsureBucket creates the bucket when it does not exist yet
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.log.Info("Created bucket", "bucket", s.bucket)
	return nil
}

// Put uploads size bytes from r under key
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.log.Error("Failed to upload object", "bucket", s.bucket, "key", key, "error", err)
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.log.Info("Uploaded object", "bucket", s.bucket, "key", key, "size", info.Size)
	return &Object{
		Key:         key,
		URL:         s.URL(key),
		Size:        info.Size,
		ContentType: contentType,
		ETag:        info.ETag,
	}, nil
}

// Remove deletes key, used to undo an upload whose follow-up failed
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// URL returns the public address of key
func (s *Store) URL(key string) string {
	escaped := (&url.URL{Path: path.Join(s.bucket, key)}).EscapedPath()
	return s.baseURL + "/" + strings.TrimLeft(escaped, "/")
}
