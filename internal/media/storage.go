package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// LocalStorage writes assets beneath a directory.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the directory if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	path := filepath.Join(s.dir, filepath.Clean("/"+key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", key, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + abs, nil
}

// S3Options configures S3Storage.
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	PublicBaseURL   string
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
}

// S3Storage uploads assets to an S3-compatible bucket.
type S3Storage struct {
	client *s3.Client
	opts   S3Options
}

// NewS3Storage builds a client from the default AWS credential chain, or
// static credentials when both keys are given.
func NewS3Storage(ctx context.Context, o S3Options) (*S3Storage, error) {
	if o.Bucket == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}
	if o.Region == "" {
		o.Region = "us-east-1"
	}

	optFns := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(o.Region),
	}
	if o.AccessKeyID != "" && o.SecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretAccessKey, "")
		optFns = append(optFns, awsconfig.WithCredentialsProvider(creds))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if o.Endpoint != "" {
		s3Opts = append(s3Opts, func(so *s3.Options) {
			so.BaseEndpoint = aws.String(o.Endpoint)
		})
	}
	if o.ForcePathStyle {
		s3Opts = append(s3Opts, func(so *s3.Options) {
			so.UsePathStyle = true
		})
	}

	return &S3Storage{client: s3.NewFromConfig(awsCfg, s3Opts...), opts: o}, nil
}

func (s *S3Storage) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	objectKey := strings.TrimPrefix(s.opts.Prefix+key, "/")

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", objectKey, err)
	}

	if s.opts.PublicBaseURL != "" {
		return strings.TrimSuffix(s.opts.PublicBaseURL, "/") + "/" + objectKey, nil
	}
	return fmt.Sprintf("s3://%s/%s", s.opts.Bucket, objectKey), nil
}
