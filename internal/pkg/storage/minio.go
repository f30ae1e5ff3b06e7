package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore keeps assets in a MinIO bucket
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore connects and creates the bucket if it is missing
func NewMinIOStore(ctx context.Context, cfg *Config) (*MinIOStore, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, err
	}

	store := &MinIOStore{client: client, bucket: cfg.MinIOBucket}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	log.Infof("[Storage] Using MinIO bucket %s at %s", cfg.MinIOBucket, cfg.MinIOEndpoint)
	return store, nil
}

func (m *MinIOStore) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed creating bucket %s: %w", m.bucket, err)
	}
	return nil
}

func (m *MinIOStore) Name() string {
	return "minio"
}

func (m *MinIOStore) Save(ctx context.Context, key string, data io.Reader, size int64, contentType string) (*FileOperation, error) {
	startTime := time.Now()
	operation := &FileOperation{Key: key, Backend: m.Name()}
	if err := ValidateKey(key); err != nil {
		return operation, err
	}

	info, err := m.client.PutObject(ctx, m.bucket, key, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		log.Errorf("[Storage] MinIO upload of %s failed: %v", key, err)
		return operation, err
	}

	operation.Success = true
	operation.Size = info.Size
	operation.Duration = time.Since(startTime)
	log.Infof("[Storage] Uploaded %s to MinIO (%d bytes)", key, info.Size)
	return operation, nil
}

func (m *MinIOStore) Open(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, mapMinIOError(key, err)
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, nil, mapMinIOError(key, err)
	}
	return obj, &ObjectInfo{
		Key:         key,
		Size:        stat.Size,
		ContentType: stat.ContentType,
		ModTime:     stat.LastModified,
	}, nil
}

func (m *MinIOStore) Delete(ctx context.Context, key string) error {
	exists, err := m.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s: %w", key, ErrObjectNotFound)
	}
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return mapMinIOError(key, err)
	}
	log.Infof("[Storage] Deleted %s from MinIO", key)
	return nil
}

func (m *MinIOStore) Copy(ctx context.Context, srcKey, dstKey string) (*FileOperation, error) {
	startTime := time.Now()
	operation := &FileOperation{Key: dstKey, Backend: m.Name()}
	if err := ValidateKey(dstKey); err != nil {
		return operation, err
	}

	info, err := m.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: m.bucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: m.bucket, Object: srcKey},
	)
	if err != nil {
		return operation, mapMinIOError(srcKey, err)
	}

	operation.Success = true
	operation.Size = info.Size
	operation.Duration = time.Since(startTime)
	log.Infof("[Storage] Copied %s to %s in MinIO", srcKey, dstKey)
	return operation, nil
}

func (m *MinIOStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, err
}

func mapMinIOError(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%s: %w", key, ErrObjectNotFound)
	}
	return err
}
