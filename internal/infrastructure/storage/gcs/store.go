// Package gcs implements the gs:// store backend on Google Cloud Storage.
package gcs

import (
	"context"
	stderrors "errors"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/turtacn/KeyIP-Ingest/internal/config"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
	kstorage "github.com/turtacn/KeyIP-Ingest/internal/infrastructure/storage"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// BucketAPI is the subset of GCS operations the Store needs.
type BucketAPI interface {
	// ListPrefix lists one level under prefix with a "/" delimiter.
	ListPrefix(ctx context.Context, bucket, prefix string, limit int) (objects, prefixes []string, err error)
	OpenObject(ctx context.Context, bucket, object string) (io.ReadCloser, error)
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

type clientAdapter struct {
	client *storage.Client
}

func (c clientAdapter) ListPrefix(ctx context.Context, bucket, prefix string, limit int) ([]string, []string, error) {
	var objects, prefixes []string
	it := c.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: "/"})
	for limit <= 0 || len(objects)+len(prefixes) < limit {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if attrs.Prefix != "" {
			prefixes = append(prefixes, attrs.Prefix)
		} else {
			objects = append(objects, attrs.Name)
		}
	}
	return objects, prefixes, nil
}

func (c clientAdapter) OpenObject(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	r, err := c.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (c clientAdapter) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := c.client.Bucket(bucket).Attrs(ctx)
	if stderrors.Is(err, storage.ErrBucketNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Store is a read-only kstorage.Store over a GCS client.
type Store struct {
	api    BucketAPI
	close  func() error
	dirs   *kstorage.DirCache
	logger logging.Logger
}

// NewStore creates a GCS-backed Store.  Credentials come from cfg or the
// environment's application default credentials.
func NewStore(ctx context.Context, cfg config.GCSConfig, log logging.Logger) (*Store, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Anonymous {
		opts = append(opts, option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnreachable, "failed to create gcs client")
	}
	s := NewStoreWithAPI(clientAdapter{client: client}, log)
	s.close = client.Close
	return s, nil
}

// NewStoreWithAPI wraps an existing BucketAPI.
func NewStoreWithAPI(api BucketAPI, log logging.Logger) *Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Store{api: api, dirs: kstorage.NewDirCache(), logger: log}
}

// Close releases the underlying client.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// List returns the objects and sub-prefixes directly under dir.
func (s *Store) List(ctx context.Context, dir string) ([]string, error) {
	bucket, key := kstorage.SplitPath(dir)
	if bucket == "" {
		return nil, errors.InvalidParam("gcs: path has no bucket")
	}

	objects, prefixes, err := s.api.ListPrefix(ctx, bucket, kstorage.DirPrefix(key), 0)
	if err != nil {
		return nil, kstorage.Unreachable(err, "list", dir)
	}

	self := kstorage.JoinPath(bucket, key)
	out := make([]string, 0, len(objects)+len(prefixes))
	for _, p := range prefixes {
		child := kstorage.JoinPath(bucket, p)
		s.dirs.Remember(child)
		out = append(out, child)
	}
	for _, o := range objects {
		if child := kstorage.JoinPath(bucket, o); child != self {
			out = append(out, child)
		}
	}
	kstorage.SortPaths(out)
	return out, nil
}

// IsDir reports whether p is a bucket or a non-empty prefix.
func (s *Store) IsDir(ctx context.Context, p string) (bool, error) {
	bucket, key := kstorage.SplitPath(p)
	if bucket == "" {
		return false, errors.InvalidParam("gcs: path has no bucket")
	}
	if key == "" {
		ok, err := s.api.BucketExists(ctx, bucket)
		if err != nil {
			return false, kstorage.Unreachable(err, "stat", p)
		}
		return ok, nil
	}
	if s.dirs.Has(p) {
		return true, nil
	}

	objects, prefixes, err := s.api.ListPrefix(ctx, bucket, kstorage.DirPrefix(key), 1)
	if err != nil {
		return false, kstorage.Unreachable(err, "stat", p)
	}
	if len(objects)+len(prefixes) == 0 {
		return false, nil
	}
	s.dirs.Remember(p)
	return true, nil
}

// Open returns a reader for the object at p.
func (s *Store) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	bucket, key := kstorage.SplitPath(p)
	if bucket == "" || key == "" {
		return nil, errors.InvalidParam("gcs: open needs bucket/key")
	}
	rc, err := s.api.OpenObject(ctx, bucket, key)
	if err != nil {
		if stderrors.Is(err, storage.ErrObjectNotExist) {
			return nil, errors.Wrap(err, errors.ErrCodeStorageUnreachable, "object not found").WithDetail("path=" + p)
		}
		return nil, kstorage.Unreachable(err, "open", p)
	}
	return rc, nil
}

var _ kstorage.Store = (*Store)(nil)

//Personal.AI order the ending
