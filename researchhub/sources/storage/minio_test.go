package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"testing"
	"time"

	"researchhub/researchhub/config"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectInfo(t *testing.T) {
	mod := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	info := objectInfo{name: "index.html", info: minio.ObjectInfo{Key: "dist/index.html", Size: 42, LastModified: mod}}

	assert.Equal(t, "index.html", info.Name())
	assert.Equal(t, int64(42), info.Size())
	assert.Equal(t, mod, info.ModTime())
	assert.False(t, info.IsDir())
	assert.Equal(t, fs.FileMode(0o444), info.Mode())
}

func TestTranslate(t *testing.T) {
	assert.ErrorIs(t, translate(minio.ErrorResponse{Code: "NoSuchKey"}), fs.ErrNotExist)
	assert.ErrorIs(t, translate(minio.ErrorResponse{Code: "AccessDenied"}), fs.ErrPermission)
	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}

func TestBucketFSRejectsInvalidPaths(t *testing.T) {
	b := &bucketFS{}
	_, err := b.Open("../secret")
	assert.ErrorIs(t, err, fs.ErrInvalid)
	_, err = b.Open(".")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

// Runs against a live server when MINIO_TEST_ENDPOINT is set. The bucket
// named by MINIO_TEST_BUCKET must exist.
func TestBucketFSLive(t *testing.T) {
	endpoint := os.Getenv("MINIO_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_TEST_ENDPOINT not set")
	}
	cfg := config.Config{
		MinIOEndpoint:  endpoint,
		MinIOAccessKey: os.Getenv("MINIO_TEST_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_TEST_SECRET_KEY"),
		FrontendBucket: os.Getenv("MINIO_TEST_BUCKET"),
	}
	ctx := context.Background()
	m, err := NewMinIOClient(ctx, cfg)
	require.NoError(t, err)

	body := "<html>hub</html>"
	_, err = m.client.PutObject(ctx, m.bucket, "test-dist/index.html", strings.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "text/html"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.client.RemoveObject(context.Background(), m.bucket, "test-dist/index.html", minio.RemoveObjectOptions{})
	})

	fsys := m.FS("test-dist")
	f, err := fsys.Open("index.html")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	_, err = fsys.Open("missing.js")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
