// Package dataset holds the flat tabular output of an ingestion run and its
// file codecs.
package dataset

import (
	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
)

// Dataset is an ordered collection of records sharing one column list.
type Dataset struct {
	Columns []string
	Records []patent.Record
}

// New returns an empty dataset over the patent column schema.
func New() *Dataset {
	return NewWithColumns(patent.Columns())
}

// NewWithColumns returns an empty dataset over columns.
func NewWithColumns(columns []string) *Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Dataset{Columns: cols}
}

// Append adds records in order.
func (d *Dataset) Append(records ...patent.Record) {
	d.Records = append(d.Records, records...)
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.Records) }

// Row returns record i's values in column order.
func (d *Dataset) Row(i int) []string {
	return d.Records[i].Values(d.Columns)
}

// Rows returns every record's values in column order.
func (d *Dataset) Rows() [][]string {
	out := make([][]string, len(d.Records))
	for i := range d.Records {
		out[i] = d.Row(i)
	}
	return out
}

// Column returns the values of one column, in record order.
func (d *Dataset) Column(name string) []string {
	out := make([]string, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.Get(name)
	}
	return out
}

// HasColumn reports whether name is one of the dataset's columns.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
