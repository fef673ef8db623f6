// utils/export_upload.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const exportPrefix = "exports/"

type ExportBucketConfig struct {
	Bucket          string
	Endpoint        string // S3-compatible endpoint (R2, MinIO); empty for AWS
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string // base for returned links
}

// ExportBucket stores history exports in an S3-compatible bucket.
type ExportBucket struct {
	client *s3.Client
	config ExportBucketConfig
}

func NewExportBucket(ctx context.Context, cfg ExportBucketConfig) (*ExportBucket, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("missing export bucket name")
	}
	if cfg.Region == "" {
		cfg.Region = "auto"
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithRetryer(func() aws.Retryer {
			return aws.NopRetryer{}
		}),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &ExportBucket{
		client: s3.NewFromConfig(awsCfg, s3opts...),
		config: cfg,
	}, nil
}

// Check verifies the bucket exists and is reachable with the configured credentials.
func (b *ExportBucket) Check(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.config.Bucket),
	})
	if err != nil {
		if strings.Contains(err.Error(), "NotFound") {
			return fmt.Errorf("bucket %s not found or you don't have permission to access it", b.config.Bucket)
		}
		return fmt.Errorf("failed to access bucket: %w", err)
	}
	return nil
}

// UploadExport stores an export document under exports/ and returns its link.
func (b *ExportBucket) UploadExport(ctx context.Context, filename string, data []byte) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}
	key := ExportKey(filename)
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(b.config.Bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(data),
		ContentType:        aws.String("application/json"),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", path.Base(key))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload export: %w", err)
	}
	return b.ObjectURL(key), nil
}

// ExportKey is the object key for an export file. Only the base name of
// filename is used.
func ExportKey(filename string) string {
	return exportPrefix + path.Base(strings.ReplaceAll(filename, "\\", "/"))
}

// ObjectURL links to key under the public URL, or under the endpoint when
// no public URL is set.
func (b *ExportBucket) ObjectURL(key string) string {
	if b.config.PublicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(b.config.PublicURL, "/"), key)
	}
	if b.config.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(b.config.Endpoint, "/"), b.config.Bucket, key)
	}
	return fmt.Sprintf("s3://%s/%s", b.config.Bucket, key)
}
