// Package archive decodes compressed patent containers in memory.  Markup
// entries are handed to an extractor, nested containers are decoded
// recursively up to a depth ceiling, and every entry that cannot be used is
// reported as a Skip instead of aborting its siblings.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// Extractor turns one markup document into a record.
type Extractor interface {
	Extract(doc []byte) (patent.Record, error)
}

// Options tunes entry classification and resource limits.
type Options struct {
	// MaxDepth is the deepest nesting level decoded; the outer container is
	// depth 0.
	MaxDepth int
	// TOCName is the table-of-contents entry name, excluded at every depth.
	TOCName string
	// MarkupExt and ArchiveExt select extracted and recursed entries.
	MarkupExt  string
	ArchiveExt string
	// MaxEntryBytes caps the inflated size of any single entry.
	MaxEntryBytes int64
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		MaxDepth:      10,
		TOCName:       "TOC.xml",
		MarkupExt:     ".xml",
		ArchiveExt:    ".zip",
		MaxEntryBytes: 512 << 20,
	}
}

func (o *Options) applyDefaults() {
	d := DefaultOptions()
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
	if o.TOCName == "" {
		o.TOCName = d.TOCName
	}
	if o.MarkupExt == "" {
		o.MarkupExt = d.MarkupExt
	}
	if o.ArchiveExt == "" {
		o.ArchiveExt = d.ArchiveExt
	}
	if o.MaxEntryBytes <= 0 {
		o.MaxEntryBytes = d.MaxEntryBytes
	}
}

// SkipHandler observes every skip as it happens.
type SkipHandler func(Skip)

// Decoder decodes containers.  It is safe for concurrent use when its
// Extractor is.
type Decoder struct {
	extractor Extractor
	opts      Options
	logger    logging.Logger
	onSkip    SkipHandler
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger used for skip and entry reporting.
func WithLogger(l logging.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithSkipHandler registers a callback invoked for every skip.
func WithSkipHandler(h SkipHandler) Option {
	return func(d *Decoder) { d.onSkip = h }
}

// NewDecoder builds a Decoder around extractor.
func NewDecoder(extractor Extractor, opts Options, options ...Option) *Decoder {
	opts.applyDefaults()
	d := &Decoder{
		extractor: extractor,
		opts:      opts,
		logger:    logging.NewNopLogger(),
	}
	for _, o := range options {
		o(d)
	}
	return d
}

// Options returns the effective options.
func (d *Decoder) Options() Options { return d.opts }

// DecodeReader reads r fully and decodes it as a container labelled label.
// A read failure is reported as a skip of the whole container.
func (d *Decoder) DecodeReader(label string, r io.Reader) Result {
	data, err := io.ReadAll(io.LimitReader(r, d.opts.MaxEntryBytes+1))
	if err != nil {
		var res Result
		d.skip(&res, Skip{
			Archive: label,
			Err:     errors.Wrap(err, errors.ErrCodeStorageUnreachable, "cannot read archive"),
		})
		return res
	}
	if int64(len(data)) > d.opts.MaxEntryBytes {
		var res Result
		d.skip(&res, Skip{
			Archive: label,
			Err:     errors.New(errors.ErrCodeEntryTooLarge, fmt.Sprintf("archive exceeds %d bytes", d.opts.MaxEntryBytes)),
		})
		return res
	}
	return d.DecodeBytes(label, data)
}

// DecodeBytes decodes data as a container labelled label.  A container that
// is not a valid zip yields an empty result carrying one skip.
func (d *Decoder) DecodeBytes(label string, data []byte) Result {
	var res Result
	d.decode(&res, label, data, 0)
	d.logger.Debug("archive decoded",
		logging.String(logging.FieldArchive, label),
		logging.Int("records", len(res.Records)),
		logging.Int("skipped", res.Stats.Skipped),
	)
	return res
}

// DecodeDocument extracts a single loose markup document.  The result holds
// either one record or one skip.
func (d *Decoder) DecodeDocument(label string, data []byte) Result {
	var res Result
	res.Stats.Entries = 1
	rec, err := d.extractor.Extract(data)
	if err != nil {
		d.skip(&res, Skip{Entry: label, Err: err})
		return res
	}
	res.Records = append(res.Records, rec)
	res.Stats.Extracted = 1
	return res
}

// IsArchive reports whether name is decoded as a container.
func (d *Decoder) IsArchive(name string) bool { return d.classify(name) == kindArchive }

// IsMarkup reports whether name is handed to the extractor.  The
// table-of-contents document is not.
func (d *Decoder) IsMarkup(name string) bool { return d.classify(name) == kindMarkup }

func (d *Decoder) decode(res *Result, label string, data []byte, depth int) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		d.skip(res, Skip{
			Archive: label,
			Depth:   depth,
			Err:     errors.Wrap(err, errors.ErrCodeArchiveCorrupt, "cannot open archive"),
		})
		return
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		res.Stats.Entries++

		switch d.classify(f.Name) {
		case kindTOC, kindOther:
			res.Stats.Ignored++

		case kindMarkup:
			body, err := d.readEntry(f)
			if err != nil {
				d.skip(res, Skip{Archive: label, Entry: f.Name, Depth: depth, Err: err})
				continue
			}
			rec, err := d.extractor.Extract(body)
			if err != nil {
				d.skip(res, Skip{Archive: label, Entry: f.Name, Depth: depth, Err: err})
				continue
			}
			res.Records = append(res.Records, rec)
			res.Stats.Extracted++

		case kindArchive:
			if depth+1 > d.opts.MaxDepth {
				d.skip(res, Skip{
					Archive: label,
					Entry:   f.Name,
					Depth:   depth,
					Err: errors.New(errors.ErrCodeNestingTooDeep,
						fmt.Sprintf("nested archive exceeds depth %d", d.opts.MaxDepth)),
				})
				continue
			}
			body, err := d.readEntry(f)
			if err != nil {
				d.skip(res, Skip{Archive: label, Entry: f.Name, Depth: depth, Err: err})
				continue
			}
			res.Stats.Nested++
			d.decode(res, label+"!"+f.Name, body, depth+1)
		}
	}
}

type entryKind int

const (
	kindOther entryKind = iota
	kindTOC
	kindMarkup
	kindArchive
)

// classify matches names case-insensitively.  The TOC rule compares the
// entry's base name so it applies inside sub-directories too.
func (d *Decoder) classify(name string) entryKind {
	if strings.EqualFold(path.Base(name), d.opts.TOCName) {
		return kindTOC
	}
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, strings.ToLower(d.opts.MarkupExt)):
		return kindMarkup
	case strings.HasSuffix(lower, strings.ToLower(d.opts.ArchiveExt)):
		return kindArchive
	default:
		return kindOther
	}
}

// readEntry inflates one entry, enforcing MaxEntryBytes on both the declared
// and the actual size.
func (d *Decoder) readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > uint64(d.opts.MaxEntryBytes) {
		return nil, errors.New(errors.ErrCodeEntryTooLarge,
			fmt.Sprintf("entry declares %d bytes, limit %d", f.UncompressedSize64, d.opts.MaxEntryBytes))
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEntryUnreadable, "cannot open entry")
	}
	defer rc.Close()

	body, err := io.ReadAll(io.LimitReader(rc, d.opts.MaxEntryBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEntryUnreadable, "cannot inflate entry")
	}
	if int64(len(body)) > d.opts.MaxEntryBytes {
		return nil, errors.New(errors.ErrCodeEntryTooLarge,
			fmt.Sprintf("entry inflates beyond %d bytes", d.opts.MaxEntryBytes))
	}
	return body, nil
}

func (d *Decoder) skip(res *Result, s Skip) {
	res.Skips = append(res.Skips, s)
	res.Stats.Skipped++

	d.logger.WithError(s.Err).Warn("archive entry skipped",
		logging.String(logging.FieldArchive, s.Archive),
		logging.String(logging.FieldEntry, s.Entry),
		logging.Int(logging.FieldDepth, s.Depth),
	)
	if d.onSkip != nil {
		d.onSkip(s)
	}
}

//Personal.AI order the ending
