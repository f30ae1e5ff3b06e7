package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuelReschke/TemplateForge/internal/pkg/env"
)

const (
	DriverLocal = "local"
	DriverS3    = "s3"
	DriverMinIO = "minio"
)

// Config holds blob store configuration
type Config struct {
	Driver    string
	LocalPath string

	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3EndpointURL     string // Optional for S3-compatible services

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
}

// LoadConfig loads storage configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Driver:    env.GetEnv("STORAGE_DRIVER", DriverLocal),
		LocalPath: env.GetEnv("STORAGE_LOCAL_PATH", "./uploads"),

		S3AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:          env.GetEnv("S3_REGION", "us-east-1"),
		S3Bucket:          env.GetEnv("S3_BUCKET_NAME", ""),
		S3EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),

		MinIOEndpoint:  env.GetEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: env.GetEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: env.GetEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    env.GetEnv("MINIO_BUCKET", "templateforge"),
		MinIOUseSSL:    env.GetEnv("MINIO_USE_SSL", "false") == "true",
	}

	switch cfg.Driver {
	case DriverLocal:
	case DriverS3:
		if cfg.S3AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required for the s3 storage driver")
		}
		if cfg.S3SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required for the s3 storage driver")
		}
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3_BUCKET_NAME is required for the s3 storage driver")
		}
	case DriverMinIO:
		if cfg.MinIOAccessKey == "" || cfg.MinIOSecretKey == "" {
			return nil, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio storage driver")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Driver)
	}

	return cfg, nil
}

// New builds the store selected by cfg.Driver
func New(ctx context.Context, cfg *Config) (Store, error) {
	switch cfg.Driver {
	case DriverS3:
		return NewS3Store(ctx, cfg)
	case DriverMinIO:
		return NewMinIOStore(ctx, cfg)
	default:
		return NewLocalStore(cfg.LocalPath)
	}
}

// NewFromEnv loads the configuration and builds the store
func NewFromEnv(ctx context.Context) (Store, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg)
}
