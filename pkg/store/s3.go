package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// S3Options configures NewS3.
type S3Options struct {
	// Region the client signs requests for. Empty uses the SDK's default
	// resolution chain.
	Region string
	// Endpoint overrides the S3 endpoint for S3-compatible services such as
	// MinIO or LocalStack. Path-style addressing is used when set.
	Endpoint string
}

// S3 is a Gateway backed by Amazon S3.
type S3 struct {
	client *s3.Client
	logger *zap.Logger
}

// NewS3 loads the default AWS configuration and builds an S3 gateway.
func NewS3(ctx context.Context, opts S3Options, logger *zap.Logger) (*S3, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3FromClient(client, logger), nil
}

// NewS3FromClient wraps an existing S3 client.
func NewS3FromClient(client *s3.Client, logger *zap.Logger) *S3 {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3{client: client, logger: logger}
}

// BucketExists probes bucket with HeadBucket.
func (s *S3) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		s.logger.Debug("bucket exists", zap.String("bucket", bucket))
		return true, nil
	}

	switch statusCode(err) {
	case http.StatusForbidden:
		s.logger.Warn("private bucket, access forbidden", zap.String("bucket", bucket))
		return false, nil
	case http.StatusNotFound:
		s.logger.Info("bucket does not exist", zap.String("bucket", bucket))
		return false, nil
	}
	return false, fmt.Errorf("head bucket %s: %w", bucket, err)
}

// CreateBucket creates bucket in region unless it already exists. No location
// constraint is sent for an empty region or us-east-1.
func (s *S3) CreateBucket(ctx context.Context, bucket, region string) error {
	exists, err := s.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Debug("bucket already exists and is accessible", zap.String("bucket", bucket))
		return nil
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	if region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		s.logger.Error("create bucket failed",
			zap.String("bucket", bucket),
			zap.String("region", region),
			zap.String("code", errorCode(err)),
			zap.Error(err))
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	s.logger.Info("bucket created", zap.String("bucket", bucket), zap.String("region", region))
	return nil
}

// PutObject uploads body as a JSON object.
func (s *S3) PutObject(ctx context.Context, bucket, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to write %s to S3: %w", key, err)
	}
	return nil
}

func statusCode(err error) int {
	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		return re.HTTPStatusCode()
	}
	return 0
}

func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
