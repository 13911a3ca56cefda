package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3 reads catalogues from objects in a single bucket. Keys map to
// <prefix><NAME>.csv. Works against AWS S3 or any S3-compatible endpoint
// (e.g. MinIO) when Endpoint is set. Read-only.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3Config holds construction parameters for the S3 driver. Credentials
// come from the default AWS credential chain.
type S3Config struct {
	Bucket    string
	Region    string
	Prefix    string
	Endpoint  string // optional; enables custom endpoint (e.g. MinIO)
	PathStyle bool
}

// NewS3 creates an S3 source from config.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Key returns the object key for a catalogue name.
func (s *S3) Key(name string) string {
	return s.prefix + name + ".csv"
}

// Read fetches the object for the named catalogue.
func (s *S3) Read(ctx context.Context, name string) ([]byte, error) {
	key := s.Key(name)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, ErrNotExist)
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// isNoSuchKey matches the S3 missing-object error codes.
func isNoSuchKey(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}
