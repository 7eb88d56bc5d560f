package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// Format is an on-disk dataset encoding.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
)

// FormatOf infers the format from path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return FormatParquet, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", errors.InvalidParam(fmt.Sprintf("cannot infer dataset format from %q", path))
	}
}

// WriteFile writes d to path on fs, choosing the codec by extension.
func WriteFile(fs afero.Fs, path string, d *Dataset, compression string) (err error) {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatasetCodec, "create output directory")
		}
	}
	f, err := fs.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetCodec, "create output file")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, errors.ErrCodeDatasetCodec, "close output file")
		}
	}()

	if format == FormatParquet {
		return WriteParquet(f, d, compression)
	}
	return WriteCSV(f, d)
}

// ReadFile reads a dataset from path on fs, choosing the codec by extension.
func ReadFile(fs afero.Fs, path string) (*Dataset, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetCodec, "open dataset")
	}
	defer f.Close()

	if format == FormatCSV {
		return ReadCSV(f)
	}
	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetCodec, "stat dataset")
	}
	return ReadParquet(f, fi.Size())
}

//Personal.AI order the ending
