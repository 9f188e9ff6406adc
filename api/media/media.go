package media

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Resolver turns a contestant's file_name into a URL a view can load.
type Resolver interface {
	URL(ctx context.Context, fileName string) (string, error)
}

// Static joins file names onto a public base URL.
type Static struct {
	BaseURL string
}

func (s Static) URL(_ context.Context, fileName string) (string, error) {
	if fileName == "" {
		return "", nil
	}
	if isAbsolute(fileName) {
		return fileName, nil
	}
	if s.BaseURL == "" {
		return fileName, nil
	}
	return strings.TrimRight(s.BaseURL, "/") + "/" + escapePath(strings.TrimLeft(fileName, "/")), nil
}

// escapePath escapes each segment of p and keeps the separators.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// S3 hands out short-lived presigned GET URLs for objects in Bucket.
type S3 struct {
	Bucket  string
	Prefix  string
	Expires time.Duration
	client  *s3.PresignClient
}

func NewS3(ctx context.Context, bucket, prefix, region string, expires time.Duration) (*S3, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	if expires <= 0 {
		expires = 15 * time.Minute
	}
	return &S3{
		Bucket:  bucket,
		Prefix:  strings.Trim(prefix, "/"),
		Expires: expires,
		client:  s3.NewPresignClient(s3.NewFromConfig(cfg)),
	}, nil
}

func (s *S3) objectKey(fileName string) string {
	name := strings.TrimLeft(fileName, "/")
	if s.Prefix == "" {
		return name
	}
	return s.Prefix + "/" + name
}

func (s *S3) URL(ctx context.Context, fileName string) (string, error) {
	if fileName == "" {
		return "", nil
	}
	if isAbsolute(fileName) {
		return fileName, nil
	}
	req, err := s.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.objectKey(fileName)),
	}, s3.WithPresignExpires(s.Expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", fileName, err)
	}
	return req.URL, nil
}

func isAbsolute(fileName string) bool {
	return strings.HasPrefix(fileName, "http://") || strings.HasPrefix(fileName, "https://")
}
