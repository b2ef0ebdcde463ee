package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("object not found")

// BlobStore defines the interface for abstract storage backends.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Location is a resolved document address: a store and a key inside it.
type Location struct {
	Store BlobStore
	Key   string
	URI   string
}

// Read fetches the object at the location.
func (l Location) Read(ctx context.Context) ([]byte, error) {
	return l.Store.Get(ctx, l.Key)
}

// Write stores data at the location.
func (l Location) Write(ctx context.Context, data []byte) error {
	return l.Store.Put(ctx, l.Key, data)
}

// IsS3 reports whether uri uses the s3:// scheme.
func IsS3(uri string) bool {
	return strings.HasPrefix(uri, "s3://")
}

// ParseS3URI splits "s3://bucket/key" into bucket and key.
func ParseS3URI(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 uri: %q", uri)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 uri %q needs both bucket and key", uri)
	}
	return bucket, key, nil
}

// Open resolves a local path or s3://bucket/key into a Location.
func Open(ctx context.Context, uri string, opts S3Options) (Location, error) {
	if IsS3(uri) {
		bucket, key, err := ParseS3URI(uri)
		if err != nil {
			return Location{}, err
		}
		store, err := NewS3StoreFromOptions(ctx, bucket, opts)
		if err != nil {
			return Location{}, err
		}
		return Location{Store: store, Key: key, URI: uri}, nil
	}

	if uri == "" {
		return Location{}, errors.New("empty document location")
	}
	abs, err := filepath.Abs(uri)
	if err != nil {
		return Location{}, fmt.Errorf("resolve %q: %w", uri, err)
	}
	return Location{
		Store: NewLocalStore(filepath.Dir(abs)),
		Key:   filepath.Base(abs),
		URI:   abs,
	}, nil
}
