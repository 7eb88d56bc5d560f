// Package storage defines the object-store contract consumed by the ingest
// pipeline and the helpers shared by its backends.
//
// Paths are slash separated.  Remote backends address objects as
// "bucket/key"; the local backend uses OS paths.  Directory paths never
// carry a trailing slash.
package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// Lister enumerates the children of a directory-like path.
type Lister interface {
	// List returns the immediate children of dir, sorted by name.
	List(ctx context.Context, dir string) ([]string, error)
	// IsDir reports whether p is a directory or a non-empty prefix.
	IsDir(ctx context.Context, p string) (bool, error)
}

// Store is a read-only object store.
type Store interface {
	Lister
	// Open returns a reader for the object at p.  The reader honours ctx.
	Open(ctx context.Context, p string) (io.ReadCloser, error)
}

// Scheme identifies a store backend.
type Scheme string

const (
	SchemeS3    Scheme = "s3"
	SchemeGCS   Scheme = "gs"
	SchemeLocal Scheme = "file"
)

// Location is a parsed root URI.
type Location struct {
	Scheme Scheme
	// Path is the store path handed to List/IsDir/Open: "bucket/prefix" for
	// remote schemes, a cleaned OS path for local ones.
	Path string
}

func (l Location) String() string {
	if l.Scheme == SchemeLocal {
		return l.Path
	}
	return string(l.Scheme) + "://" + l.Path
}

// ParseLocation parses s3://bucket/prefix, gs://bucket/prefix, file:///path
// or a bare local path.
func ParseLocation(raw string) (Location, error) {
	if raw == "" {
		return Location{}, errors.InvalidParam("storage location is empty")
	}
	if !strings.Contains(raw, "://") {
		return Location{Scheme: SchemeLocal, Path: filepath.Clean(raw)}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, errors.Wrap(err, errors.CodeInvalidParam, fmt.Sprintf("invalid storage location %q", raw))
	}
	switch Scheme(strings.ToLower(u.Scheme)) {
	case SchemeS3, SchemeGCS:
		if u.Host == "" {
			return Location{}, errors.InvalidParam(fmt.Sprintf("storage location %q has no bucket", raw))
		}
		return Location{
			Scheme: Scheme(strings.ToLower(u.Scheme)),
			Path:   JoinPath(u.Host, u.Path),
		}, nil
	case SchemeLocal:
		if u.Path == "" {
			return Location{}, errors.InvalidParam(fmt.Sprintf("storage location %q has no path", raw))
		}
		return Location{Scheme: SchemeLocal, Path: filepath.Clean(u.Path)}, nil
	default:
		return Location{}, errors.InvalidParam(fmt.Sprintf("unsupported storage scheme %q", u.Scheme))
	}
}

// SplitPath splits a remote path into bucket and key.  The key carries no
// leading or trailing slash and is empty for the bucket root.
func SplitPath(p string) (bucket, key string) {
	p = strings.Trim(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i], strings.Trim(p[i+1:], "/")
	}
	return p, ""
}

// JoinPath joins remote path elements with single slashes.
func JoinPath(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		if e = strings.Trim(e, "/"); e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, "/")
}

// DirPrefix returns the listing prefix for key: "" for the bucket root,
// otherwise key followed by a slash.
func DirPrefix(key string) string {
	if key == "" {
		return ""
	}
	return key + "/"
}

// SortPaths sorts paths in place by name.
func SortPaths(paths []string) {
	sort.Strings(paths)
}

// DirCache remembers prefixes returned by a delimited listing so IsDir on a
// just-listed child needs no request.  It is safe for concurrent use.
type DirCache struct {
	mu   sync.RWMutex
	dirs map[string]struct{}
}

// NewDirCache returns an empty cache.
func NewDirCache() *DirCache {
	return &DirCache{dirs: make(map[string]struct{})}
}

// Remember marks p as a directory.
func (c *DirCache) Remember(p string) {
	c.mu.Lock()
	c.dirs[strings.Trim(p, "/")] = struct{}{}
	c.mu.Unlock()
}

// Has reports whether p was remembered.
func (c *DirCache) Has(p string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.dirs[strings.Trim(p, "/")]
	return ok
}

// Unreachable wraps a backend failure for op on p as ErrCodeStorageUnreachable.
// Context errors are returned unchanged so callers can tell cancellation
// apart from storage failures.
func Unreachable(err error, op, p string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.Wrap(err, errors.ErrCodeStorageUnreachable, fmt.Sprintf("storage %s failed", op)).
		WithDetail("path=" + p)
}

//Personal.AI order the ending
