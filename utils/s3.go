package utils

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, for S3-compatible providers such as R2 or MinIO
	AccessKey string
	SecretKey string
}

// DocumentStore keeps KYC documents in an S3-compatible bucket.
type DocumentStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

func NewDocumentStore(ctx context.Context, opts S3Options) (*DocumentStore, error) {
	if opts.Bucket == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, fmt.Errorf("S3 bucket and credentials must be set")
	}
	region := opts.Region
	if region == "" {
		region = "auto"
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load S3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &DocumentStore{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    opts.Bucket,
	}, nil
}

// Upload stores body under key.
func (d *DocumentStore) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(d.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("S3 upload failed: %w", err)
	}
	return nil
}

// PresignURL returns a time-limited GET URL for key.
func (d *DocumentStore) PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	presigned, err := d.presigner.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(d.bucket),
			Key:    aws.String(key),
		},
		func(po *s3.PresignOptions) {
			po.Expires = expiry
		},
	)
	if err != nil {
		return "", fmt.Errorf("S3 presign failed: %w", err)
	}
	return presigned.URL, nil
}
