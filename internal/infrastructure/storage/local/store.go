// Package local implements the file:// store backend on an afero filesystem
// so mirrored corpora and in-memory fixtures share one code path.
package local

import (
	"context"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/storage"
)

// Store is a read-only storage.Store over an afero.Fs.
type Store struct {
	fs afero.Fs
}

// NewStore returns a Store over the host filesystem.
func NewStore() *Store {
	return NewStoreWithFs(afero.NewOsFs())
}

// NewStoreWithFs returns a Store over fs.
func NewStoreWithFs(fs afero.Fs) *Store {
	return &Store{fs: afero.NewReadOnlyFs(fs)}
}

// Fs exposes the underlying read-only filesystem.
func (s *Store) Fs() afero.Fs { return s.fs }

// List returns the entries of dir sorted by name.
func (s *Store) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, storage.Unreachable(err, "list", dir)
	}
	out := make([]string, 0, len(infos))
	for _, fi := range infos {
		out = append(out, filepath.Join(dir, fi.Name()))
	}
	return out, nil
}

// IsDir reports whether p is a directory.  A missing path is an error.
func (s *Store) IsDir(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fi, err := s.fs.Stat(p)
	if err != nil {
		return false, storage.Unreachable(err, "stat", p)
	}
	return fi.IsDir(), nil
}

// Open opens the file at p.
func (s *Store) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.fs.Open(p)
	if err != nil {
		return nil, storage.Unreachable(err, "open", p)
	}
	return f, nil
}

var _ storage.Store = (*Store)(nil)

//Personal.AI order the ending
