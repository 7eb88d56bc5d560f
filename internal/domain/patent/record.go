// Package patent defines the flat PatentRecord produced by the ingestion
// pipeline, its fixed column schema and the sentinel-aware ordering rules
// used to pick a canonical record among duplicates.
package patent

import "sort"

// ─────────────────────────────────────────────────────────────────────────────
// Sentinel and arity
// ─────────────────────────────────────────────────────────────────────────────

// Sentinel marks a field with no corresponding source data.  Records never
// carry empty or missing fields; absent data is always Sentinel.
const Sentinel = "NA"

// MaxSlots is the fixed number of slots per repeated group (parties,
// classifications, citations).  Entities beyond the last slot are dropped.
// Changing it changes the column schema.
const MaxSlots = 3

// IsAvailable reports whether v carries real data.
func IsAvailable(v string) bool {
	return v != Sentinel && v != ""
}

// ─────────────────────────────────────────────────────────────────────────────
// Record
// ─────────────────────────────────────────────────────────────────────────────

// Record is one row of the output dataset: a mapping from column name to a
// scalar string.  Records built with NewRecord hold every schema column.
// Treat a Record as immutable once it leaves the extractor; use With to
// derive a modified copy.
type Record map[string]string

// NewRecord returns a record with every schema column set to Sentinel.
func NewRecord() Record {
	cols := Columns()
	r := make(Record, len(cols))
	for _, c := range cols {
		r[c] = Sentinel
	}
	return r
}

// FromValues builds a record from values listed in Columns order.  Missing
// trailing values and empty strings become Sentinel.
func FromValues(columns, values []string) Record {
	r := NewRecord()
	for i, c := range columns {
		if i < len(values) && values[i] != "" {
			r[c] = values[i]
		}
	}
	return r
}

// Get returns the value of field, or Sentinel when the field is absent or
// empty.
func (r Record) Get(field string) string {
	if v, ok := r[field]; ok && v != "" {
		return v
	}
	return Sentinel
}

// Set assigns field, storing Sentinel for an empty value.  It is meant for
// the extractor while a record is still being built.
func (r Record) Set(field, value string) {
	if value == "" {
		value = Sentinel
	}
	r[field] = value
}

// With returns a copy of r with field set to value.
func (r Record) With(field, value string) Record {
	out := r.Clone()
	out.Set(field, value)
	return out
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Values returns the record's values in the order of columns.
func (r Record) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = r.Get(c)
	}
	return out
}

// Complete reports whether r carries every schema column.
func (r Record) Complete() bool {
	for _, c := range Columns() {
		if _, ok := r[c]; !ok {
			return false
		}
	}
	return true
}

// Fields returns the record's keys in sorted order.
func (r Record) Fields() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

//Personal.AI order the ending
