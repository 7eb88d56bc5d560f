// Package dedup keeps one canonical record per key value.
//
// Among records sharing a key, the canonical one has the greatest date, then
// the greatest document number; the sentinel ranks below every real value
// and remaining ties go to the earliest record.  Survivors keep their
// relative input order, so applying Deduplicate twice changes nothing.
package dedup

import (
	"fmt"

	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// Options selects the key and the ordering fields.
type Options struct {
	Key            string
	DateField      string
	DocNumberField string
	// PreserveUnkeyed passes records whose key is the sentinel through
	// untouched instead of collapsing them into one group.
	PreserveUnkeyed bool
}

// DefaultOptions returns options for key with the usual ordering fields.
func DefaultOptions(key string) Options {
	return Options{
		Key:            key,
		DateField:      patent.FieldPublicationDate,
		DocNumberField: patent.FieldDocNumber,
	}
}

// Validate rejects empty fields and fields outside the record schema; an
// unknown field reads as the sentinel on every record and would collapse the
// whole dataset into one group.
func (o Options) Validate() error {
	if o.Key == "" {
		return errors.InvalidParam("dedup key must not be empty")
	}
	if o.DateField == "" || o.DocNumberField == "" {
		return errors.InvalidParam("dedup date and doc-number fields must not be empty")
	}
	for _, f := range []struct{ role, name string }{
		{"key", o.Key},
		{"date field", o.DateField},
		{"doc-number field", o.DocNumberField},
	} {
		if !patent.IsColumn(f.name) {
			return errors.InvalidParam(fmt.Sprintf("dedup %s %q is not a record field", f.role, f.name))
		}
	}
	return nil
}

// Result carries the survivors and the number of records dropped.
type Result struct {
	Records []patent.Record
	Dropped int
}

// Deduplicate returns the canonical record per key value.  The input slice
// is not modified.
func Deduplicate(records []patent.Record, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	winner := make(map[string]int, len(records))
	for i, rec := range records {
		key := rec.Get(opts.Key)
		if opts.PreserveUnkeyed && !patent.IsAvailable(key) {
			continue
		}
		best, ok := winner[key]
		if !ok || opts.better(rec, records[best]) {
			winner[key] = i
		}
	}

	keep := make([]bool, len(records))
	for _, i := range winner {
		keep[i] = true
	}

	out := make([]patent.Record, 0, len(winner))
	for i, rec := range records {
		if keep[i] || (opts.PreserveUnkeyed && !patent.IsAvailable(rec.Get(opts.Key))) {
			out = append(out, rec)
		}
	}
	return Result{Records: out, Dropped: len(records) - len(out)}, nil
}

// better reports whether a strictly outranks b.  Equal records do not, so
// the earliest one wins.
func (o Options) better(a, b patent.Record) bool {
	if c := patent.CompareValues(a.Get(o.DateField), b.Get(o.DateField)); c != 0 {
		return c > 0
	}
	return patent.CompareDocNumbers(a.Get(o.DocNumberField), b.Get(o.DocNumberField)) > 0
}

// Groups counts records per key value, the sentinel included.
func Groups(records []patent.Record, key string) map[string]int {
	out := make(map[string]int)
	for _, r := range records {
		out[r.Get(key)]++
	}
	return out
}

// String describes the ordering rule.
func (o Options) String() string {
	return fmt.Sprintf("key=%s order=%s desc, %s desc", o.Key, o.DateField, o.DocNumberField)
}

//Personal.AI order the ending
