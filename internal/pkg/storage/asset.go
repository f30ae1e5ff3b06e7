package storage

import (
	"context"
	"fmt"
	"io"
)

// Asset is an opened blob ready to be sent to a client. Local stores fill
// LocalPath and leave Body nil so the file can be served with range support;
// other stores provide Body, which the caller must close.
type Asset struct {
	Key         string
	FileName    string
	ContentType string
	Size        int64
	LocalPath   string
	Body        io.ReadCloser
}

// Close releases Body if present
func (a *Asset) Close() error {
	if a == nil || a.Body == nil {
		return nil
	}
	return a.Body.Close()
}

// OpenAsset opens key for serving under fileName. A missing object yields
// ErrObjectNotFound.
func OpenAsset(ctx context.Context, store Store, key, fileName, contentType string) (*Asset, error) {
	asset := &Asset{Key: key, FileName: fileName, ContentType: contentType}

	if lp, ok := store.(LocalPather); ok {
		exists, err := store.Exists(ctx, key)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		path, err := lp.LocalPath(key)
		if err != nil {
			return nil, err
		}
		asset.LocalPath = path
		return asset, nil
	}

	body, info, err := store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	asset.Body = body
	if info != nil {
		asset.Size = info.Size
		if asset.ContentType == "" {
			asset.ContentType = info.ContentType
		}
	}
	return asset, nil
}
