// Package walker enumerates every path under a storage root, depth first.
package walker

import (
	"context"
	stderrors "errors"

	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/storage"
)

// SkipDir, returned by a WalkFunc for a directory, prunes that directory.
var SkipDir = stderrors.New("skip this directory")

// WalkFunc is called for every visited path.  err is non-nil when p could
// not be classified or listed; returning nil continues the walk, SkipDir
// prunes p, and any other error stops the walk and is returned by Walk.
type WalkFunc func(p string, isDir bool, err error) error

// Walk visits root and everything below it in pre-order, children in the
// order the store lists them.  A failed List is reported to fn against the
// directory and the walk moves on.  Cancelling ctx stops further requests.
func Walk(ctx context.Context, l storage.Lister, root string, fn WalkFunc) error {
	isDir, err := l.IsDir(ctx, root)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		return ignoreSkip(fn(root, false, err))
	}
	return ignoreSkip(walk(ctx, l, root, isDir, fn))
}

func walk(ctx context.Context, l storage.Lister, p string, isDir bool, fn WalkFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(p, isDir, nil); err != nil || !isDir {
		return err
	}

	children, err := l.List(ctx, p)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		return fn(p, true, err)
	}

	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return err
		}
		childDir, err := l.IsDir(ctx, child)
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if err := fn(child, false, err); err != nil && err != SkipDir {
				return err
			}
			continue
		}
		if err := walk(ctx, l, child, childDir, fn); err != nil {
			if err == SkipDir {
				if childDir {
					continue
				}
				// SkipDir on a file skips the rest of its directory.
				return nil
			}
			return err
		}
	}
	return nil
}

func ignoreSkip(err error) error {
	if err == SkipDir {
		return nil
	}
	return err
}

// Failure is a path the walk could not classify or list.
type Failure struct {
	Path string
	Err  error
}

// Collect walks root and returns every non-directory path accepted by keep,
// in walk order, plus the paths that failed.  Only cancellation is returned
// as an error.
func Collect(ctx context.Context, l storage.Lister, root string, keep func(string) bool) ([]string, []Failure, error) {
	var (
		paths    []string
		failures []Failure
	)
	err := Walk(ctx, l, root, func(p string, isDir bool, err error) error {
		switch {
		case err != nil:
			failures = append(failures, Failure{Path: p, Err: err})
		case !isDir && (keep == nil || keep(p)):
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return paths, failures, nil
}

//Personal.AI order the ending
