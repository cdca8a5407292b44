package pictures

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// Ensure MinioStager implements the interface.
var _ Stager = (*MinioStager)(nil)

// presignExpiry bounds how long the marketplace may fetch a staged picture.
const presignExpiry = 15 * time.Minute

// MinioStager stages pictures in an S3 compatible bucket and hands out
// presigned GET URLs.
type MinioStager struct {
	client *minio.Client
	bucket string
}

// NewMinioStager connects to the bucket described by the settings.
func NewMinioStager(cfg domain.PictureSettings) (*MinioStager, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinioStager{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket if it does not exist.
func (s *MinioStager) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket: %w", err)
	}
	return nil
}

// Stage uploads the picture under a unique key.
func (s *MinioStager) Stage(ctx context.Context, name string, r io.Reader, size int64) (string, func(context.Context) error, error) {
	key := objectKey(name)

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", nil, fmt.Errorf("put object: %w", err)
	}

	cleanup := func(ctx context.Context) error {
		return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, presignExpiry, nil)
	if err != nil {
		_ = cleanup(ctx)
		return "", nil, fmt.Errorf("presign object: %w", err)
	}
	return u.String(), cleanup, nil
}

// objectKey prefixes the file name with a random id.
func objectKey(name string) string {
	return "staging/" + uuid.NewString() + "-" + filepath.Base(name)
}
