package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campus-spot/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Linker turns a stored picture link into something a browser can load.
type Linker interface {
	Link(ctx context.Context, pic Picture) (string, error)
}

// DirectLinker returns the stored link untouched.
type DirectLinker struct{}

func (DirectLinker) Link(ctx context.Context, pic Picture) (string, error) {
	return pic.Link, nil
}

// S3Linker presigns GET requests for pictures stored as object keys.
type S3Linker struct {
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

// NewLinker returns an S3Linker when a picture bucket is configured and a
// DirectLinker otherwise.
func NewLinker(ctx context.Context, cfg config.Config) (Linker, error) {
	if cfg.PictureBucket == "" {
		return DirectLinker{}, nil
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.PictureRegion),
	}
	if cfg.PictureAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.PictureAccessKeyID, cfg.PictureSecretAccessKey, "",
		)))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load picture storage config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PictureEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.PictureEndpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3Linker(client, cfg.PictureBucket, cfg.PictureLinkTTL()), nil
}

func NewS3Linker(client *s3.Client, bucket string, ttl time.Duration) *S3Linker {
	return &S3Linker{
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		ttl:     ttl,
	}
}

// Link presigns pic.Link as an object key. Absolute URLs pass through.
func (l *S3Linker) Link(ctx context.Context, pic Picture) (string, error) {
	if strings.HasPrefix(pic.Link, "http://") || strings.HasPrefix(pic.Link, "https://") {
		return pic.Link, nil
	}
	key := strings.TrimPrefix(pic.Link, "/")
	if key == "" {
		return "", fmt.Errorf("picture %d has no object key", pic.ID)
	}
	req, err := l.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(l.ttl))
	if err != nil {
		return "", fmt.Errorf("presign picture %d: %w", pic.ID, err)
	}
	return req.URL, nil
}
