// Package s3 stores rendered request PDFs in an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fwojciec/opra"
)

// Operation timeouts.
const (
	UploadTimeout = 2 * time.Minute
	DeleteTimeout = 30 * time.Second
)

var _ opra.BlobStore = (*BlobStore)(nil)

// Config holds bucket location and credentials. Empty credentials fall
// back to the default AWS credential chain.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string // for S3-compatible stores such as MinIO
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string // overrides the virtual-hosted object URL
}

// BlobStore implements opra.BlobStore on S3.
type BlobStore struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	baseURL  string
}

// NewBlobStore loads AWS configuration and returns a BlobStore.
func NewBlobStore(ctx context.Context, c Config) (*BlobStore, error) {
	if c.Bucket == "" {
		return nil, opra.Errorf(opra.EINVALID, "S3 bucket name not set")
	}
	if c.Region == "" {
		return nil, opra.Errorf(opra.EINVALID, "AWS region not set")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(c.Region),
		config.WithRequestChecksumCalculation(aws.RequestChecksumCalculationWhenRequired),
	}
	if c.AccessKeyID != "" && c.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &BlobStore{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   c.Bucket,
		baseURL:  objectBaseURL(c),
	}, nil
}

func objectBaseURL(c Config) string {
	switch {
	case c.PublicBaseURL != "":
		return strings.TrimRight(c.PublicBaseURL, "/")
	case c.Endpoint != "":
		return strings.TrimRight(c.Endpoint, "/") + "/" + c.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.Bucket, c.Region)
	}
}

// Store uploads body under key and returns the object URL.
func (s *BlobStore) Store(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if key == "" {
		return "", opra.Errorf(opra.EINVALID, "object key required")
	}

	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", opra.Errorf(opra.EUNAVAILABLE, "s3 upload failed: %v", err)
	}

	return s.baseURL + "/" + key, nil
}

// Delete removes the object at key.
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, DeleteTimeout)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return opra.Errorf(opra.EUNAVAILABLE, "s3 delete failed: %v", err)
	}
	return nil
}
