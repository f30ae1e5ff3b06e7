package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gofiber/fiber/v2/log"
)

// S3Store keeps assets in an S3 (or S3-compatible) bucket
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store creates the client and checks the bucket is reachable
func NewS3Store(ctx context.Context, cfg *Config) (*S3Store, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.S3EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.S3EndpointURL)
			o.UsePathStyle = true
		}
	})

	store := &S3Store{client: client, bucket: cfg.S3Bucket}
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.S3Bucket)}); err != nil {
		return nil, fmt.Errorf("bucket %s not accessible: %w", cfg.S3Bucket, err)
	}

	log.Infof("[Storage] Using S3 bucket %s", cfg.S3Bucket)
	return store, nil
}

func (s *S3Store) Name() string {
	return "s3"
}

func (s *S3Store) Save(ctx context.Context, key string, data io.Reader, size int64, contentType string) (*FileOperation, error) {
	startTime := time.Now()
	operation := &FileOperation{Key: key, Backend: s.Name()}
	if err := ValidateKey(key); err != nil {
		return operation, err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return operation, fmt.Errorf("failed to upload to S3: %w", err)
	}

	operation.Success = true
	operation.Size = size
	operation.Duration = time.Since(startTime)
	log.Infof("[Storage] Uploaded s3://%s/%s", s.bucket, key)
	return operation, nil
}

func (s *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, nil, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return nil, nil, fmt.Errorf("failed to get object from S3: %w", err)
	}

	info := &ObjectInfo{Key: key, Size: aws.ToInt64(out.ContentLength), ContentType: aws.ToString(out.ContentType)}
	if out.LastModified != nil {
		info.ModTime = *out.LastModified
	}
	return out.Body, info, nil
}

// Delete removes key. S3 reports success for missing keys, so a prior
// HeadObject maps that case to ErrObjectNotFound.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s: %w", key, ErrObjectNotFound)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}
	log.Infof("[Storage] Deleted s3://%s/%s", s.bucket, key)
	return nil
}

// Copy duplicates an object server-side
func (s *S3Store) Copy(ctx context.Context, srcKey, dstKey string) (*FileOperation, error) {
	startTime := time.Now()
	operation := &FileOperation{Key: dstKey, Backend: s.Name()}
	if err := ValidateKey(dstKey); err != nil {
		return operation, err
	}

	exists, err := s.Exists(ctx, srcKey)
	if err != nil {
		return operation, err
	}
	if !exists {
		return operation, fmt.Errorf("%s: %w", srcKey, ErrObjectNotFound)
	}

	if _, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(url.PathEscape(s.bucket + "/" + srcKey)),
	}); err != nil {
		return operation, fmt.Errorf("failed to copy object in S3: %w", err)
	}

	operation.Success = true
	operation.Duration = time.Since(startTime)
	log.Infof("[Storage] Copied s3://%s/%s to %s", s.bucket, srcKey, dstKey)
	return operation, nil
}

func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}
