package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// LocalStore keeps assets below a base directory on the local filesystem
type LocalStore struct {
	basePath string
}

// NewLocalStore creates the base directory if needed
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalStore{basePath: basePath}, nil
}

func (s *LocalStore) Name() string {
	return "local"
}

// LocalPath resolves a key to its absolute file path
func (s *LocalStore) LocalPath(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, filepath.FromSlash(key)), nil
}

// Save writes data to key. A partially written file is removed on failure.
func (s *LocalStore) Save(ctx context.Context, key string, data io.Reader, size int64, contentType string) (*FileOperation, error) {
	startTime := time.Now()
	operation := &FileOperation{Key: key, Backend: s.Name()}

	fullPath, err := s.LocalPath(key)
	if err != nil {
		return operation, err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return operation, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return operation, fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}

	bytesWritten, err := io.Copy(file, readerWithContext(ctx, data))
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(fullPath)
		return operation, fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}

	operation.Success = true
	operation.Size = bytesWritten
	operation.Duration = time.Since(startTime)

	log.Infof("[Storage] Saved %s (%d bytes) in %v", key, bytesWritten, operation.Duration)
	return operation, nil
}

func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	fullPath, err := s.LocalPath(key)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return nil, nil, err
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, err
	}

	return file, &ObjectInfo{
		Key:         key,
		Size:        stat.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(fullPath)),
		ModTime:     stat.ModTime(),
	}, nil
}

// Delete removes key; a missing file yields ErrObjectNotFound
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	fullPath, err := s.LocalPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	log.Infof("[Storage] Deleted %s", key)
	return nil
}

// Copy duplicates srcKey into dstKey
func (s *LocalStore) Copy(ctx context.Context, srcKey, dstKey string) (*FileOperation, error) {
	startTime := time.Now()
	operation := &FileOperation{Key: dstKey, Backend: s.Name()}

	sourcePath, err := s.LocalPath(srcKey)
	if err != nil {
		return operation, err
	}
	targetPath, err := s.LocalPath(dstKey)
	if err != nil {
		return operation, err
	}

	if _, err := os.Stat(sourcePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return operation, fmt.Errorf("%s: %w", srcKey, ErrObjectNotFound)
		}
		return operation, err
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return operation, fmt.Errorf("failed to create target directory: %w", err)
	}

	written, err := copyFile(ctx, sourcePath, targetPath)
	if err != nil {
		return operation, fmt.Errorf("failed to copy file from %s to %s: %w", srcKey, dstKey, err)
	}

	operation.Success = true
	operation.Size = written
	operation.Duration = time.Since(startTime)
	log.Infof("[Storage] Copied %s to %s (%d bytes) in %v", srcKey, dstKey, written, operation.Duration)
	return operation, nil
}

func (s *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	fullPath, err := s.LocalPath(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(fullPath)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func copyFile(ctx context.Context, source, destination string) (int64, error) {
	src, err := os.Open(source)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	dst, err := os.Create(destination)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(dst, readerWithContext(ctx, src))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(destination)
		return 0, err
	}
	return written, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr ctxReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	if ctx == nil {
		return r
	}
	return ctxReader{ctx: ctx, r: r}
}
