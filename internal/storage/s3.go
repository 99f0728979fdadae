package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"blooddrive-backend/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Storage keeps reports in an S3 bucket and hands out presigned links.
type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
}

func NewS3Storage(ctx context.Context, region, bucket, prefix string) (*S3Storage, error) {
	if region == "" {
		region = "us-east-1"
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newS3Storage(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func newS3Storage(client *s3.Client, bucket, prefix string) *S3Storage {
	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		prefix:  prefix,
	}
}

func (s *S3Storage) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func (s *S3Storage) SaveFile(ctx context.Context, key, contentType string, reader io.Reader) error {
	logger.ExternalServiceCall("s3", "PutObject", "bucket", s.bucket, "key", key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        reader,
		ContentType: aws.String(contentType),
	})
	logger.ExternalServiceResult("s3", "PutObject", err, "key", key)
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (s *S3Storage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", fmt.Errorf("failed to presign S3 download: %w", err)
	}
	return req.URL, nil
}

func (s *S3Storage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, aws.ToInt64(out.ContentLength), nil
}

func (s *S3Storage) DeleteFile(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (s *S3Storage) ReadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read from S3: %w", err)
	}
	return out.Body, nil
}

// ListFiles pages through the objects under the configured prefix.
func (s *S3Storage) ListFiles(ctx context.Context) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if s.prefix != "" {
		input.Prefix = aws.String(strings.TrimSuffix(s.prefix, "/") + "/")
	}

	logger.ExternalServiceCall("s3", "ListObjectsV2", "bucket", s.bucket)
	var keys []string
	pages := s3.NewListObjectsV2Paginator(s.client, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			logger.ExternalServiceResult("s3", "ListObjectsV2", err)
			return nil, fmt.Errorf("failed to list S3 objects: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.ToString(obj.Key), aws.ToString(input.Prefix)))
		}
	}
	logger.ExternalServiceResult("s3", "ListObjectsV2", nil, "count", len(keys))
	return keys, nil
}
