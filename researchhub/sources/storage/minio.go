// Package storage reads the built web client out of a MinIO bucket.
package storage

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"time"

	"researchhub/researchhub/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOClient struct {
	client *minio.Client
	bucket string
}

func NewMinIOClient(ctx context.Context, cfg config.Config) (*MinIOClient, error) {
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: cfg.MinIOUseSSL,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.FrontendBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.FrontendBucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", cfg.FrontendBucket)
	}
	return &MinIOClient{client: client, bucket: cfg.FrontendBucket}, nil
}

// FS exposes the objects under prefix as a read-only fs.FS. Objects are
// fetched lazily, one GetObject per Open.
func (m *MinIOClient) FS(prefix string) fs.FS {
	return &bucketFS{client: m.client, bucket: m.bucket, prefix: prefix}
}

type bucketFS struct {
	client *minio.Client
	bucket string
	prefix string
}

func (b *bucketFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	// buckets have no directories worth listing
	if name == "." {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	key := path.Join(b.prefix, name)
	obj, err := b.client.GetObject(context.Background(), b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, &fs.PathError{Op: "open", Path: name, Err: translate(err)}
	}
	return &objectFile{Object: obj, info: objectInfo{name: path.Base(name), info: info}}, nil
}

func translate(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fs.ErrNotExist
	case "AccessDenied":
		return fs.ErrPermission
	}
	return err
}

// objectFile is a *minio.Object that satisfies fs.File. It also keeps the
// object's Seek, so http.ServeContent can serve ranges.
type objectFile struct {
	*minio.Object
	info objectInfo
}

func (f *objectFile) Stat() (fs.FileInfo, error) { return f.info, nil }

type objectInfo struct {
	name string
	info minio.ObjectInfo
}

func (i objectInfo) Name() string       { return i.name }
func (i objectInfo) Size() int64        { return i.info.Size }
func (i objectInfo) Mode() fs.FileMode  { return 0o444 }
func (i objectInfo) ModTime() time.Time { return i.info.LastModified }
func (i objectInfo) IsDir() bool        { return false }
func (i objectInfo) Sys() any           { return i.info }
