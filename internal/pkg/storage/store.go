package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// ErrObjectNotFound is returned when a key does not exist in the store.
var ErrObjectNotFound = errors.New("object not found")

// Store is the blob store holding template and copy assets. Keys are
// slash-separated paths relative to the store root.
type Store interface {
	Save(ctx context.Context, key string, data io.Reader, size int64, contentType string) (*FileOperation, error)
	Open(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	Copy(ctx context.Context, srcKey, dstKey string) (*FileOperation, error)
	Exists(ctx context.Context, key string) (bool, error)
	Name() string
}

// LocalPather is implemented by stores backed by the local filesystem, so
// handlers can serve files with byte-range support.
type LocalPather interface {
	LocalPath(key string) (string, error)
}

// FileOperation represents a file operation result
type FileOperation struct {
	Success  bool          `json:"success"`
	Key      string        `json:"key"`
	Size     int64         `json:"size"`
	Duration time.Duration `json:"duration"`
	Backend  string        `json:"backend"`
}

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
	ModTime     time.Time
}

// TemplateKey is the location of a catalog template asset
func TemplateKey(templateID, ext string) string {
	return fmt.Sprintf("templates/%s%s", templateID, normalizeExt(ext))
}

// TemplateRevisionKey is the location of a replacement catalog asset
func TemplateRevisionKey(templateID string, revision int64, ext string) string {
	return fmt.Sprintf("templates/%s-%d%s", templateID, revision, normalizeExt(ext))
}

// CopyKey is the location of a user's copy asset. Every copy owns its key.
func CopyKey(userID, copyID, ext string) string {
	return fmt.Sprintf("copies/%s/%s%s", userID, copyID, normalizeExt(ext))
}

// RevisionKey is the location of a replacement asset for a copy. The
// revision suffix keeps the previous asset readable until the row is swapped.
func RevisionKey(userID, copyID string, revision int64, ext string) string {
	return fmt.Sprintf("copies/%s/%s-%d%s", userID, copyID, revision, normalizeExt(ext))
}

// PreviewKey is the location of a copy's editor thumbnail
func PreviewKey(userID, copyID string) string {
	return fmt.Sprintf("previews/%s/%s.png", userID, copyID)
}

// Ext returns the lowercase extension of a file name or key
func Ext(name string) string {
	return strings.ToLower(path.Ext(name))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// ValidateKey rejects empty, absolute and parent-escaping keys
func ValidateKey(key string) error {
	if key == "" {
		return errors.New("empty storage key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return fmt.Errorf("invalid storage key %q", key)
		}
	}
	return nil
}
