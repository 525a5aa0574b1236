package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jonathan/hiring-pipeline/internal/logger"
)

// MinIOConfig holds connection settings for an S3-compatible endpoint.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// MinIOStore archives documents in a MinIO bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

var _ DocumentStore = (*MinIOStore)(nil)

// NewMinIOStore connects to the endpoint and creates the bucket when missing.
func NewMinIOStore(ctx context.Context, cfg MinIOConfig) (*MinIOStore, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("minio bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	s := &MinIOStore{client: client, bucket: cfg.Bucket}
	if err := s.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MinIOStore) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	logger.Ctx(ctx).Info().Str("bucket", s.bucket).Msg("created document bucket")
	return nil
}

// Put uploads the file at path.
func (s *MinIOStore) Put(ctx context.Context, candidateID, path string) (*Object, error) {
	key := ObjectKey(candidateID, path)
	contentType := ContentType(path)

	info, err := s.client.FPutObject(ctx, s.bucket, key, path, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"candidate-id": candidateID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", filepath.Base(path), err)
	}

	logger.Ctx(ctx).Debug().
		Str("candidate_id", candidateID).
		Str("key", key).
		Int64("size", info.Size).
		Msg("archived document")

	return &Object{
		Bucket:      s.bucket,
		Key:         key,
		FileName:    filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size,
	}, nil
}
