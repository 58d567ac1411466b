// Package storage resolves referenced image assets from S3 for the vision
// signal adapter.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appConfig "credit-risk-engine/internal/config"
	"credit-risk-engine/internal/models"
)

// Service handles S3 asset reads.
type Service struct {
	client     *s3.Client
	bucketName string
}

// NewService creates a new S3 storage service.
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	cfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(appCfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Service{
		client:     s3.NewFromConfig(cfg),
		bucketName: appCfg.S3Bucket,
	}, nil
}

// IsRef reports whether a path is an S3 object reference.
func IsRef(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// FetchObject reads an s3://bucket/key reference (or a bare key in the default
// bucket) and returns its bytes. A genuinely absent object maps to
// models.ErrAssetNotFound so callers can distinguish it from transient failures.
func (s *Service) FetchObject(ctx context.Context, ref string) ([]byte, error) {
	bucket, key := s.parseRef(ref)
	if key == "" {
		return nil, fmt.Errorf("%w: empty object key in %q", models.ErrAssetNotFound, ref)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noKey) || errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: s3://%s/%s", models.ErrAssetNotFound, bucket, key)
		}
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// PresignUpload generates a presigned PUT URL for uploading an asset photo
// under the default bucket.
func (s *Service) PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload for %q: %w", key, err)
	}
	return req.URL, nil
}

// Ref returns the s3:// reference for a key in the default bucket.
func (s *Service) Ref(key string) string {
	return "s3://" + s.bucketName + "/" + key
}

// parseRef splits an s3://bucket/key reference; bare keys use the default bucket.
func (s *Service) parseRef(ref string) (bucket, key string) {
	if !IsRef(ref) {
		return s.bucketName, strings.TrimPrefix(ref, "/")
	}
	rest := strings.TrimPrefix(ref, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
