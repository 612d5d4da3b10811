package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/ironsheep/image-text-search/internal/domain"
)

// S3Config holds connection settings for an S3-compatible object store.
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// S3 stores the collection as a single JSON object named <key>.json.
type S3 struct {
	client *s3.Client
	bucket string
	object string
	log    *zap.Logger
}

// NewS3 builds an S3 client with static credentials and path-style
// addressing, then makes sure the bucket exists.
func NewS3(ctx context.Context, cfg S3Config, key string, log *zap.Logger) (*S3, error) {
	if key == "" {
		key = DefaultKey
	}
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	endpoint := s3Endpoint(cfg.Endpoint, cfg.UseSSL)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = true
	})

	st := &S3{
		client: client,
		bucket: cfg.Bucket,
		object: key + ".json",
		log:    log,
	}

	if err := st.ensureBucketExists(ctx, cfg.Region); err != nil {
		log.Warn("Failed to ensure bucket exists",
			zap.String("bucket", cfg.Bucket),
			zap.Error(err))
	}

	return st, nil
}

// s3Endpoint adds a scheme to a bare host:port endpoint.
func s3Endpoint(endpoint string, useSSL bool) string {
	if endpoint == "" || strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func (s *S3) ensureBucketExists(ctx context.Context, region string) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		s.log.Debug("Bucket already exists", zap.String("bucket", s.bucket))
		return nil
	}

	s.log.Info("Creating bucket", zap.String("bucket", s.bucket))

	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	if region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		return err
	}

	s.log.Info("Bucket created successfully", zap.String("bucket", s.bucket))
	return nil
}

// Load implements Store.
func (s *S3) Load(ctx context.Context) ([]domain.ProcessedImage, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.object),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return []domain.ProcessedImage{}, nil
		}
		s.log.Error("Failed to download collection from S3",
			zap.String("key", s.object),
			zap.Error(err))
		return nil, fmt.Errorf("s3 get %s: %w", s.object, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read %s: %w", s.object, err)
	}
	return decode(data)
}

// Save implements Store.
func (s *S3) Save(ctx context.Context, images []domain.ProcessedImage) error {
	data, err := encode(images)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.object),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		s.log.Error("Failed to upload collection to S3",
			zap.String("key", s.object),
			zap.Error(err))
		return fmt.Errorf("s3 put %s: %w", s.object, err)
	}

	s.log.Debug("Collection uploaded to S3",
		zap.String("key", s.object),
		zap.Int("size", len(data)),
		zap.Int("images", len(images)))
	return nil
}

// Clear implements Store.
func (s *S3) Clear(ctx context.Context) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.object),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", s.object, err)
	}
	return nil
}

// Close implements Store.
func (s *S3) Close() error {
	return nil
}
