package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fleetpass/fleet-compliance-api/pkg/config"
)

// ObjectStore wraps the S3-compatible store holding credential documents and
// generated compliance exports.
type ObjectStore struct {
	client          *minio.Client
	documentsBucket string
	exportsBucket   string
	region          string
	signedURLTTL    time.Duration
}

// New creates a MinIO client from the storage config.
func New(cfg config.StorageConfig) (*ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init object store: %w", err)
	}
	return &ObjectStore{
		client:          client,
		documentsBucket: cfg.DocumentsBucket,
		exportsBucket:   cfg.ExportsBucket,
		region:          cfg.Region,
		signedURLTTL:    cfg.SignedURLTTL,
	}, nil
}

// EnsureBuckets makes sure the documents and exports buckets exist before use.
func (s *ObjectStore) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{s.documentsBucket, s.exportsBucket} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
				return fmt.Errorf("make bucket %s: %w", bucket, err)
			}
		}
	}
	return nil
}

// UploadDocument stores a credential document under the given object key and
// returns the key unchanged.
func (s *ObjectStore) UploadDocument(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.documentsBucket, objectKey, reader, size, opts); err != nil {
		return "", fmt.Errorf("upload document: %w", err)
	}
	return objectKey, nil
}

// UploadExport stores a rendered export artifact.
func (s *ObjectStore) UploadExport(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.exportsBucket, objectKey, reader, size, opts); err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}
	return objectKey, nil
}

// DocumentURL returns a time-limited signed GET URL for a stored document.
func (s *ObjectStore) DocumentURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.signedURLTTL
	}
	u, err := s.client.PresignedGetObject(ctx, s.documentsBucket, objectKey, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign document: %w", err)
	}
	return u.String(), nil
}

// ExportURL returns a time-limited signed GET URL for a stored export.
func (s *ObjectStore) ExportURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.signedURLTTL
	}
	u, err := s.client.PresignedGetObject(ctx, s.exportsBucket, objectKey, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign export: %w", err)
	}
	return u.String(), nil
}
