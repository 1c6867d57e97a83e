package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pagekeep/pagekeep/internal/logger"
)

// S3Fetcher reads objects addressed as s3://bucket/key from S3 or any
// S3-compatible endpoint. Hosts that keep their library uploads in
// object storage register it on the "s3" scheme.
type S3Fetcher struct {
	client *s3.Client
}

// NewS3Fetcher wraps an already configured S3 client.
func NewS3Fetcher(client *s3.Client) *S3Fetcher {
	return &S3Fetcher{client: client}
}

// NewS3ClientFromConfig creates an S3 client for the given endpoint and
// static credentials. An empty endpoint uses the default AWS resolution;
// forcePathStyle is required by most S3-compatible servers (MinIO,
// Localstack).
func NewS3ClientFromConfig(
	ctx context.Context,
	endpoint,
	region,
	accessKeyID,
	secretAccessKey string,
	forcePathStyle bool,
) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"", // session token (empty for static credentials)
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = &endpoint
		}
		o.UsePathStyle = forcePathStyle
	})

	return client, nil
}

// Fetch downloads the object at rawURL ("s3://bucket/key").
func (f *S3Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	bucket, key, err := ParseS3URL(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("failed to get object: %w", err)}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("failed to read object body: %w", err)}
	}

	logger.Debug("fetched s3 object",
		logger.KeyURL, rawURL,
		logger.KeySize, len(data))

	return &Result{
		Data:        data,
		ContentType: aws.ToString(out.ContentType),
	}, nil
}

// ParseS3URL splits "s3://bucket/key/with/slashes" into bucket and key.
func ParseS3URL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 URL: %w", err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("not an s3 URL: %q", rawURL)
	}

	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 URL must be s3://bucket/key, got %q", rawURL)
	}

	return bucket, key, nil
}
