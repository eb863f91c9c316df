// Package storage copies exported reports to S3.
package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/diillson/multicloud-finops-go/internal/domain/repository"
)

// S3API is the subset of the S3 client used by the uploader.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader implements ReportUploader by writing to s3://bucket/prefix/file.
type S3Uploader struct {
	client S3API
	bucket string
	prefix string
}

var _ repository.ReportUploader = (*S3Uploader)(nil)

// NewS3Uploader creates an uploader over client.
func NewS3Uploader(client S3API, bucket, prefix string) *S3Uploader {
	return &S3Uploader{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// NewS3UploaderFromProfile loads the shared AWS config of profile and creates an uploader.
// An empty profile uses the default credential chain.
func NewS3UploaderFromProfile(ctx context.Context, profile, bucket, prefix string) (*S3Uploader, error) {
	opts := []func(*config.LoadOptions) error{}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for report upload: %w", err)
	}
	return NewS3Uploader(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// Key returns the object key used for localPath.
func (u *S3Uploader) Key(localPath string) string {
	base := filepath.Base(localPath)
	if u.prefix == "" {
		return base
	}
	return path.Join(u.prefix, base)
}

// Upload sends the file and returns its s3:// location.
func (u *S3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("error opening report %s: %w", localPath, err)
	}
	defer file.Close()

	key := u.Key(localPath)
	input := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if contentType := mime.TypeByExtension(filepath.Ext(localPath)); contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("error uploading %s to bucket %s: %w", key, u.bucket, err)
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}
