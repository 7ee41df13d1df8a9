package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrInvalidS3URL = errors.New("invalid s3 url")

// S3Config carries the object storage settings of an S3-compatible
// backend (AWS or MinIO).
type S3Config struct {
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3Client = func(cfg aws.Config, optFns ...func(*s3.Options)) objectGetter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Loader reads the catalog from one object.
type S3Loader struct {
	cfg    S3Config
	bucket string
	key    string
}

func NewS3Loader(cfg S3Config, bucket, key string) *S3Loader {
	return &S3Loader{cfg: cfg, bucket: bucket, key: key}
}

// ParseS3URL splits s3://bucket/key into its parts.
func ParseS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidS3URL, err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidS3URL, raw)
	}
	return u.Host, key, nil
}

func (l *S3Loader) client(ctx context.Context) (objectGetter, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(l.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			l.cfg.AccessKey,
			l.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3Client(cfg, func(o *s3.Options) {
		if l.cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(l.cfg.BaseEndpoint)
		}
		// MinIO serves buckets by path, not by virtual host
		o.UsePathStyle = true
	}), nil
}

func (l *S3Loader) Load(ctx context.Context) ([]string, error) {
	c, err := l.client(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	out, err := c.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(l.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", l.bucket, l.key, err)
	}
	defer out.Body.Close()

	return Parse(l.key, out.Body)
}
