// Package minio implements the s3:// store backend on top of minio-go.
package minio

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/KeyIP-Ingest/internal/config"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/storage"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// MinIOAPI is the subset of the object-store client the Store needs.
type MinIOAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	OpenObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error)
}

// clientAdapter exposes *minio.Client as MinIOAPI.
type clientAdapter struct {
	*minio.Client
}

// OpenObject fetches the object and stats it so a missing key fails here
// rather than on the first Read.
func (c clientAdapter) OpenObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	obj, err := c.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, err
	}
	return obj, nil
}

// Store is a read-only storage.Store over an S3-compatible endpoint.
type Store struct {
	client MinIOAPI
	dirs   *storage.DirCache
	logger logging.Logger
}

// NewStore creates a Store from cfg.  No request is made until the first
// List, IsDir or Open.
func NewStore(cfg config.S3Config, log logging.Logger) (*Store, error) {
	var creds *credentials.Credentials
	if cfg.AccessKeyID != "" {
		creds = credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	} else {
		creds = credentials.NewStatic("", "", "", credentials.SignatureAnonymous)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create minio client")
	}

	log.Info("MinIO store configured", logging.String("endpoint", cfg.Endpoint), logging.Bool("ssl", cfg.UseSSL))
	return NewStoreWithClient(clientAdapter{client}, log), nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client MinIOAPI, log logging.Logger) *Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Store{client: client, dirs: storage.NewDirCache(), logger: log}
}

// List returns the objects and sub-prefixes directly under dir, as
// "bucket/key" paths.
func (s *Store) List(ctx context.Context, dir string) ([]string, error) {
	bucket, key := storage.SplitPath(dir)
	if bucket == "" {
		return nil, errors.InvalidParam("minio: path has no bucket")
	}

	var out []string
	objects := s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    storage.DirPrefix(key),
		Recursive: false,
	})
	for obj := range objects {
		if obj.Err != nil {
			return nil, storage.Unreachable(obj.Err, "list", dir)
		}
		child := storage.JoinPath(bucket, obj.Key)
		if strings.HasSuffix(obj.Key, "/") {
			s.dirs.Remember(child)
		}
		if child == storage.JoinPath(bucket, key) {
			continue
		}
		out = append(out, child)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	storage.SortPaths(out)
	s.logger.Debug("prefix listed", logging.String("path", dir), logging.Int("children", len(out)))
	return out, nil
}

// IsDir reports whether p is a bucket or a non-empty prefix.
func (s *Store) IsDir(ctx context.Context, p string) (bool, error) {
	bucket, key := storage.SplitPath(p)
	if bucket == "" {
		return false, errors.InvalidParam("minio: path has no bucket")
	}
	if key == "" {
		ok, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return false, storage.Unreachable(err, "stat", p)
		}
		return ok, nil
	}
	if s.dirs.Has(p) {
		return true, nil
	}

	lctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for obj := range s.client.ListObjects(lctx, bucket, minio.ListObjectsOptions{
		Prefix:  storage.DirPrefix(key),
		MaxKeys: 1,
	}) {
		if obj.Err != nil {
			return false, storage.Unreachable(obj.Err, "stat", p)
		}
		s.dirs.Remember(p)
		return true, nil
	}
	return false, ctx.Err()
}

// Open returns a reader for the object at p.
func (s *Store) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	bucket, key := storage.SplitPath(p)
	if bucket == "" || key == "" {
		return nil, errors.InvalidParam("minio: open needs bucket/key")
	}
	rc, err := s.client.OpenObject(ctx, bucket, key)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, errors.Wrap(err, errors.ErrCodeStorageUnreachable, "object not found").WithDetail("path=" + p)
		}
		return nil, storage.Unreachable(err, "open", p)
	}
	return rc, nil
}

var _ storage.Store = (*Store)(nil)

//Personal.AI order the ending
