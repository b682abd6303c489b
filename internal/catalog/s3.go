package catalog

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config selects the bucket endpoint. Credentials come from the default
// AWS chain (environment, shared config, instance role).
type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // set for MinIO and other S3-compatible stores
	PathStyle bool   `yaml:"path_style"`
}

// s3Getter is the slice of the S3 client the source needs.
type s3Getter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads a catalog object from S3.
type S3Source struct {
	Bucket string
	Key    string
	cfg    S3Config
	client s3Getter // built on first Fetch when nil
}

// NewS3Source returns a source for s3://bucket/key.
func NewS3Source(bucket, key string, cfg S3Config) *S3Source {
	return &S3Source{Bucket: bucket, Key: key, cfg: cfg}
}

func (s *S3Source) Fetch(ctx context.Context) ([]Plant, error) {
	if s.client == nil {
		client, err := newS3Client(ctx, s.cfg)
		if err != nil {
			return nil, err
		}
		s.client = client
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	defer out.Body.Close()

	return Decode(out.Body, FormatFor(s.Key, aws.ToString(out.ContentType)))
}

func (s *S3Source) String() string { return "s3://" + s.Bucket + "/" + s.Key }

func newS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}
