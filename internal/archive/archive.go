// Package archive uploads storage-server checkpoint snapshots to S3 for
// off-box retention. Archiving is strictly additive: the local
// "<name>.checkpoint_<tag>" file on disk remains the only path list_checkpoints
// and view_checkpoint ever read from.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/shraw06/docsplusplus/pkg/config"
)

// Archiver uploads checkpoint bytes to a configured S3 bucket. The zero
// value is not usable; use New.
type Archiver struct {
	client  *s3.Client
	bucket  string
	timeout time.Duration
}

// New returns an Archiver for cfg, or nil, nil if archiving is disabled.
func New(ctx context.Context, cfg config.ArchiveConfig) (*Archiver, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &Archiver{client: client, bucket: cfg.Bucket, timeout: cfg.UploadTimeout}, nil
}

// Key returns the object key a checkpoint is archived under.
func Key(ssID int, file, tag string) string {
	return fmt.Sprintf("%d/%s/%s", ssID, file, tag)
}

// Upload puts data at key in the configured bucket, bounded by the
// Archiver's configured upload timeout. Safe to call with a nil receiver,
// returning nil immediately, so callers never need their own enabled check.
func (a *Archiver) Upload(ctx context.Context, key string, data []byte) error {
	if a == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("upload checkpoint archive: %w", err)
	}
	return nil
}
