package source

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/xpttools/xpt/pkg/types"
)

// S3Client interface for S3 operations (allows mocking in tests).
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config configures the S3 client. Empty fields fall back to the default
// AWS credential chain.
type S3Config struct {
	Region          string
	Endpoint        string // for MinIO and other S3-compatible stores
	AccessKeyID     string
	SecretAccessKey string
}

// S3Fetcher reads s3://bucket/key locations.
type S3Fetcher struct {
	client  S3Client // nil means create the client on first use
	cfg     S3Config
	MaxSize int64
}

// NewS3Fetcher creates an S3 fetcher.
func NewS3Fetcher(cfg S3Config) *S3Fetcher {
	return &S3Fetcher{cfg: cfg, MaxSize: DefaultMaxSize}
}

// NewS3FetcherWithClient creates a fetcher with a custom S3 client (for testing).
func NewS3FetcherWithClient(client S3Client) *S3Fetcher {
	return &S3Fetcher{client: client, MaxSize: DefaultMaxSize}
}

// Name returns the fetcher name.
func (f *S3Fetcher) Name() string {
	return "s3"
}

// CanFetch returns true for s3:// URLs.
func (f *S3Fetcher) CanFetch(location string) bool {
	return scheme(location) == "s3"
}

func (f *S3Fetcher) newClient(ctx context.Context) (S3Client, error) {
	region := f.cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(region))
	if f.cfg.AccessKeyID != "" && f.cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(f.cfg.AccessKeyID, f.cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if f.cfg.Endpoint != "" {
		return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(f.cfg.Endpoint)
			o.UsePathStyle = true
		}), nil
	}
	return s3.NewFromConfig(awsCfg), nil
}

// Fetch downloads the object.
func (f *S3Fetcher) Fetch(ctx context.Context, location string) (*Object, error) {
	bucket, key, err := splitBucketKey(location[len("s3://"):])
	if err != nil {
		return nil, err
	}

	client := f.client
	if client == nil {
		if client, err = f.newClient(ctx); err != nil {
			return nil, err
		}
		f.client = client
	}

	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("getting s3://%s/%s: %w", bucket, key, err)
	}
	defer resp.Body.Close()

	data, err := readLimited(resp.Body, f.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("reading s3://%s/%s: %w", bucket, key, err)
	}
	return &Object{Content: data, Provenance: types.RemoteProvenance{URL: location}}, nil
}
