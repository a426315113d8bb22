package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fcacademy/academyweb/internal/telemetry/tracing"
)

const (
	s3EndpointPath   = "/storage/v1/s3"
	publicObjectPath = "/storage/v1/object/public/"
)

var ErrEmptyKey = errors.New("empty object key")

// s3API is the subset of *s3.Client used here.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type NewS3StorageParams struct {
	ServiceURL     string
	Bucket         string
	Region         string
	AccessKeyID    string
	SecretKey      string
	ServiceRoleKey string
	// HTTPClient is optional, the SDK default is used when nil
	HTTPClient *http.Client
}

// S3Storage stores uploaded media in a bucket of the hosted storage service through its S3 endpoint.
type S3Storage struct {
	client     s3API
	bucket     string
	serviceURL string
}

func NewS3Storage(ctx context.Context, params NewS3StorageParams) (*S3Storage, error) {
	if params.Bucket == "" {
		return nil, errors.New("storage bucket not set")
	}
	serviceURL := strings.TrimRight(params.ServiceURL, "/")
	if serviceURL == "" {
		return nil, errors.New("storage service url not set")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(params.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			params.AccessKeyID,
			params.SecretKey,
			params.ServiceRoleKey,
		)),
	}
	if params.HTTPClient != nil {
		loadOpts = append(loadOpts, config.WithHTTPClient(params.HTTPClient))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(serviceURL + s3EndpointPath)
		o.UsePathStyle = true
	})

	return newS3Storage(client, params.Bucket, serviceURL), nil
}

func newS3Storage(client s3API, bucket, serviceURL string) *S3Storage {
	return &S3Storage{
		client:     client,
		bucket:     bucket,
		serviceURL: strings.TrimRight(serviceURL, "/"),
	}
}

func (s *S3Storage) Bucket() string {
	return s.bucket
}

// Upload puts the object under key and returns its public URL.
func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.upload",
		trace.WithAttributes(
			attribute.String("s3.bucket", s.bucket),
			attribute.String("s3.key", key),
			attribute.String("content.type", contentType),
			attribute.Int64("content.size", size),
		),
	)
	defer span.End()

	if key == "" {
		return "", ErrEmptyKey
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "put object")
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return s.PublicURL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.delete",
		trace.WithAttributes(
			attribute.String("s3.bucket", s.bucket),
			attribute.String("s3.key", key),
		),
	)
	defer span.End()

	if key == "" {
		return ErrEmptyKey
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete object")
		return fmt.Errorf("delete object %s: %w", key, err)
	}

	return nil
}

func (s *S3Storage) HealthCheck(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	}); err != nil {
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *S3Storage) PublicURL(key string) string {
	return s.publicPrefix() + key
}

// KeyFromURL reverses PublicURL. URLs pointing elsewhere are not ours to delete.
func (s *S3Storage) KeyFromURL(url string) (string, bool) {
	key, found := strings.CutPrefix(url, s.publicPrefix())
	if !found || key == "" {
		return "", false
	}
	return key, true
}

func (s *S3Storage) publicPrefix() string {
	return s.serviceURL + publicObjectPath + s.bucket + "/"
}
