package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

const (
	schemaName = "patent_record"
	// columnsKey stores the dataset column order; parquet groups sort their
	// fields by name.
	columnsKey = "keyip.columns"

	batchSize = 256
)

// Compression names accepted by WriteParquet.
const (
	CompressionZstd   = "zstd"
	CompressionSnappy = "snappy"
	CompressionGzip   = "gzip"
	CompressionLZ4    = "lz4"
	CompressionNone   = "none"
)

func codec(name string) (compress.Codec, error) {
	switch strings.ToLower(name) {
	case CompressionZstd, "":
		return &parquet.Zstd, nil
	case CompressionSnappy:
		return &parquet.Snappy, nil
	case CompressionGzip:
		return &parquet.Gzip, nil
	case CompressionLZ4:
		return &parquet.Lz4Raw, nil
	case CompressionNone:
		return &parquet.Uncompressed, nil
	default:
		return nil, errors.InvalidParam(fmt.Sprintf("unknown parquet compression %q", name))
	}
}

// schemaFor builds one required UTF-8 column per dataset column.
func schemaFor(columns []string) *parquet.Schema {
	group := make(parquet.Group, len(columns))
	for _, c := range columns {
		group[c] = parquet.String()
	}
	return parquet.NewSchema(schemaName, group)
}

// WriteParquet encodes d to w.
func WriteParquet(w io.Writer, d *Dataset, compression string) error {
	c, err := codec(compression)
	if err != nil {
		return err
	}
	schema := schemaFor(d.Columns)

	index := make([]int, len(d.Columns))
	for i, col := range d.Columns {
		leaf, ok := schema.Lookup(col)
		if !ok {
			return errors.New(errors.ErrCodeDatasetCodec, fmt.Sprintf("column %q missing from schema", col))
		}
		index[i] = leaf.ColumnIndex
	}

	pw := parquet.NewWriter(w, schema,
		parquet.Compression(c),
		parquet.KeyValueMetadata(columnsKey, strings.Join(d.Columns, ",")),
	)

	rows := make([]parquet.Row, 0, batchSize)
	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		if _, err := pw.WriteRows(rows); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatasetCodec, "write parquet rows")
		}
		rows = rows[:0]
		return nil
	}

	for _, rec := range d.Records {
		row := make(parquet.Row, len(d.Columns))
		for i, col := range d.Columns {
			row[index[i]] = parquet.ByteArrayValue([]byte(rec.Get(col))).Level(0, 0, index[i])
		}
		rows = append(rows, row)
		if len(rows) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	if err := pw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetCodec, "close parquet writer")
	}
	return nil
}

// ReadParquet decodes a file written by WriteParquet.  Files written by other
// tools are accepted when every leaf is a flat byte-array column; their
// columns are taken in schema order.
func ReadParquet(r io.ReaderAt, size int64) (*Dataset, error) {
	f, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetCodec, "open parquet file")
	}

	leaves := f.Schema().Columns()
	names := make([]string, len(leaves))
	for i, path := range leaves {
		if len(path) != 1 {
			return nil, errors.New(errors.ErrCodeDatasetCodec,
				fmt.Sprintf("nested column %q is not supported", strings.Join(path, ".")))
		}
		names[i] = path[0]
	}

	columns := names
	if v, ok := f.Lookup(columnsKey); ok && v != "" {
		columns = strings.Split(v, ",")
		if len(columns) != len(names) {
			return nil, errors.New(errors.ErrCodeDatasetCodec, "column metadata does not match schema")
		}
	}

	d := NewWithColumns(columns)
	buf := make([]parquet.Row, batchSize)
	for _, rg := range f.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				values := make([]string, len(names))
				for _, v := range row {
					if c := v.Column(); c >= 0 && c < len(values) && !v.IsNull() {
						values[c] = v.String()
					}
				}
				d.Append(patent.FromValues(names, values))
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				_ = rows.Close()
				return nil, errors.Wrap(err, errors.ErrCodeDatasetCodec, "read parquet rows")
			}
		}
		if err := rows.Close(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatasetCodec, "close parquet rows")
		}
	}
	return d, nil
}

//Personal.AI order the ending
