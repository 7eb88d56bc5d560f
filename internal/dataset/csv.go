package dataset

import (
	"encoding/csv"
	"io"

	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// WriteCSV encodes d as a header row followed by one row per record.
func WriteCSV(w io.Writer, d *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Columns); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetCodec, "write csv header")
	}
	for i := range d.Records {
		if err := cw.Write(d.Row(i)); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatasetCodec, "write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetCodec, "flush csv")
	}
	return nil
}

// ReadCSV decodes a file written by WriteCSV.  Empty cells become the
// sentinel.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeDatasetCodec, "csv input is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetCodec, "read csv header")
	}

	d := NewWithColumns(header)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatasetCodec, "read csv row")
		}
		d.Append(patent.FromValues(header, row))
	}
	return d, nil
}

//Personal.AI order the ending
