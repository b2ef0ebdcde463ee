package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())

	require.NoError(t, s.Put(ctx, "graphs/a.json", []byte(`{"nodes":[]}`)))
	require.NoError(t, s.Put(ctx, "graphs/nested/b.json", []byte(`{}`)))
	require.NoError(t, s.Put(ctx, "other.json", []byte(`{}`)))

	data, err := s.Get(ctx, "graphs/a.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[]}`, string(data))

	keys, err := s.List(ctx, "graphs")
	require.NoError(t, err)
	assert.Equal(t, []string{"graphs/a.json", "graphs/nested/b.json"}, keys)

	keys, err = s.List(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestLocalStore_NotFound(t *testing.T) {
	s := NewLocalStore(t.TempDir())
	_, err := s.Get(context.Background(), "nope.json")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())

	for _, key := range []string{"", "../outside.json", "a/../../outside.json", "/etc/passwd"} {
		assert.ErrorIs(t, s.Put(ctx, key, []byte("x")), ErrInvalidKey, key)
		_, err := s.Get(ctx, key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
	_, err := s.List(ctx, "../")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestLocalStore_PutReplacesWithoutLeftovers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewLocalStore(dir)

	require.NoError(t, s.Put(ctx, "doc.json", []byte("old")))
	require.NoError(t, s.Put(ctx, "doc.json", []byte("new")))

	data, err := s.Get(ctx, "doc.json")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files are renamed away")
	info, err := entries[0].Info()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".doc.json.123"), []byte("partial"), 0o600))
	keys, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc.json"}, keys)
}

func TestLocalStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewLocalStore(t.TempDir())

	assert.ErrorIs(t, s.Put(ctx, "a.json", []byte("x")), context.Canceled)
	_, err := s.Get(ctx, "a.json")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen_LocalPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")

	loc, err := Open(context.Background(), path, S3Options{})
	require.NoError(t, err)
	assert.Equal(t, "doc.json", loc.Key)
	assert.Equal(t, path, loc.URI)

	require.NoError(t, loc.Write(context.Background(), []byte("x")))
	data, err := loc.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	_, err = Open(context.Background(), "", S3Options{})
	assert.Error(t, err)
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://papers/graphs/lagrange.json")
	require.NoError(t, err)
	assert.Equal(t, "papers", bucket)
	assert.Equal(t, "graphs/lagrange.json", key)

	for _, bad := range []string{"s3://", "s3://bucket", "s3://bucket/", "/tmp/x", "s3:///key"} {
		_, _, err := ParseS3URI(bad)
		assert.Error(t, err, bad)
	}
	assert.True(t, IsS3("s3://a/b"))
	assert.False(t, IsS3("./s3/a"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(fmt.Errorf("wrapped: %w", &smithy.GenericAPIError{Code: "NotFound"})))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("boom")))
}
