// Package archive mirrors published record folders to S3 compatible object
// storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/logging"
	"github.com/waajacu/minerals/pkg/minerals"
)

// Config holds S3 settings.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // for S3 compatible storage (MinIO, ...)
	AccessKey string
	SecretKey string
	Prefix    string
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// Putter is the part of the S3 client the archiver uses.
type Putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads record folders to a bucket.
type S3 struct {
	client Putter
	bucket string
	prefix string
}

// NewS3 creates an archiver from cfg.
func NewS3(ctx context.Context, cfg Config) (*S3, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.NewConfigError("archive", "failed to load AWS config", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return NewWithClient(s3.NewFromConfig(awsCfg, s3Opts...), cfg.Bucket, cfg.Prefix), nil
}

// NewWithClient creates an archiver around an existing client.
func NewWithClient(client Putter, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Key returns the object key for a file of a record.
func (a *S3) Key(identifier, name string) string {
	if a.prefix == "" {
		return path.Join(identifier, name)
	}
	return path.Join(a.prefix, identifier, name)
}

// Archive uploads every regular file of folder. Hidden files, which include
// in-flight temp files, are skipped.
func (a *S3) Archive(ctx context.Context, identifier, folder string) error {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return errors.WrapIO("read", folder, err)
	}
	uploaded := 0
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(folder, e.Name()))
		if err != nil {
			return errors.WrapIO("read", filepath.Join(folder, e.Name()), err)
		}
		key := a.Key(identifier, e.Name())
		_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType(e.Name())),
		})
		if err != nil {
			return errors.WrapAPI("s3", 0, fmt.Errorf("put %s: %w", key, err))
		}
		uploaded++
	}
	logging.FromContext(ctx).Info().
		Str("bucket", a.bucket).
		Str("mineral", identifier).
		Int("objects", uploaded).
		Msg("Record archived")
	return nil
}

func contentType(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	switch ext {
	case "json":
		return "application/json"
	case "html":
		return "text/html; charset=utf-8"
	case "tex":
		return "application/x-tex"
	case "pdf":
		return "application/pdf"
	case "png", "jpg", "jpeg", "webp", "gif":
		return minerals.ContentTypeForExt(ext)
	default:
		return "application/octet-stream"
	}
}
