// Package pipeline drives a batch run: it walks year directories under a
// storage root, decodes every archive over a bounded worker pool and
// concatenates the records in (year, archive, entry) order.
package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/KeyIP-Ingest/internal/dataset"
	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/storage"
	"github.com/turtacn/KeyIP-Ingest/internal/ingest/archive"
	"github.com/turtacn/KeyIP-Ingest/internal/ingest/walker"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// Recorder receives per-archive measurements.
type Recorder interface {
	ObserveArchive(year string, ok bool, records int, elapsed time.Duration)
	ObserveEntries(outcome string, n int)
	ObserveSkip(code string)
}

// Entry outcomes reported to the Recorder.
const (
	OutcomeExtracted = "extracted"
	OutcomeSkipped   = "skipped"
	OutcomeIgnored   = "ignored"
)

type nopRecorder struct{}

func (nopRecorder) ObserveArchive(string, bool, int, time.Duration) {}
func (nopRecorder) ObserveEntries(string, int)                      {}
func (nopRecorder) ObserveSkip(string)                              {}

// Options tunes the worker pool.
type Options struct {
	Concurrency int
	// ReadTimeout bounds opening and reading one archive.
	ReadTimeout time.Duration
}

// Aggregator runs decode and extraction over a store.
type Aggregator struct {
	store    storage.Store
	decoder  *archive.Decoder
	opts     Options
	logger   logging.Logger
	recorder Recorder
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the run logger.
func WithLogger(l logging.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(a *Aggregator) {
		if r != nil {
			a.recorder = r
		}
	}
}

// New builds an Aggregator.
func New(store storage.Store, decoder *archive.Decoder, opts Options, options ...Option) *Aggregator {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 2 * time.Minute
	}
	a := &Aggregator{
		store:    store,
		decoder:  decoder,
		opts:     opts,
		logger:   logging.NewNopLogger(),
		recorder: nopRecorder{},
	}
	for _, o := range options {
		o(a)
	}
	return a
}

// ArchiveResult is the outcome of one archive.
type ArchiveResult struct {
	Year    string
	Path    string
	Result  archive.Result
	Failed  bool
	Elapsed time.Duration
}

type unit struct {
	year string
	path string
}

// Years returns the directories directly under root, sorted by name.
func (a *Aggregator) Years(ctx context.Context, root string) ([]string, error) {
	if err := a.checkRoot(ctx, root); err != nil {
		return nil, err
	}
	children, err := a.store.List(ctx, root)
	if err != nil {
		return nil, err
	}
	var years []string
	for _, c := range children {
		ok, err := a.store.IsDir(ctx, c)
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			a.logger.WithError(err).Warn("cannot classify path under root", logging.String("path", c))
			continue
		}
		if ok {
			years = append(years, c)
		}
	}
	sort.Slice(years, func(i, j int) bool { return baseName(years[i]) < baseName(years[j]) })
	return years, nil
}

// Run processes every year directory under root.  Only an unusable root or
// cancellation is an error; failed archives and entries are reported in the
// Summary.
func (a *Aggregator) Run(ctx context.Context, root string) (*dataset.Dataset, *Summary, error) {
	start := time.Now()
	years, err := a.Years(ctx, root)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Info("run started", logging.String("root", root), logging.Int("years", len(years)))
	return a.runYears(ctx, root, years, start)
}

// RunYear processes one year directory; the year is the directory's name.
func (a *Aggregator) RunYear(ctx context.Context, yearPath string) (*dataset.Dataset, *Summary, error) {
	start := time.Now()
	if err := a.checkRoot(ctx, yearPath); err != nil {
		return nil, nil, err
	}
	return a.runYears(ctx, yearPath, []string{yearPath}, start)
}

func (a *Aggregator) runYears(ctx context.Context, root string, years []string, start time.Time) (*dataset.Dataset, *Summary, error) {
	sum := &Summary{Root: root}
	var units []unit
	for _, y := range years {
		name := baseName(y)
		paths, failures, err := walker.Collect(ctx, a.store, y, a.decoder.IsArchive)
		if err != nil {
			return nil, nil, err
		}
		for _, f := range failures {
			skip := archive.Skip{Archive: f.Path, Err: f.Err}
			a.logger.WithError(f.Err).Warn("archive skipped",
				logging.String(logging.FieldYear, name),
				logging.String(logging.FieldArchive, f.Path),
			)
			a.recorder.ObserveSkip(errors.GetCode(f.Err).String())
			sum.addWalkFailure(skip)
		}
		for _, p := range paths {
			units = append(units, unit{year: name, path: p})
		}
		sum.Years = append(sum.Years, name)
	}

	results, err := a.process(ctx, units)
	if err != nil {
		return nil, nil, err
	}

	ds := dataset.New()
	for _, r := range results {
		sum.add(r)
		ds.Append(r.Result.Records...)
	}
	sum.Duration = time.Since(start)

	a.logger.Info("run finished",
		logging.String("root", root),
		logging.Int("years", len(sum.Years)),
		logging.Int("archives", sum.Archives),
		logging.Int("archives_failed", sum.ArchivesFailed),
		logging.Int("records", sum.Records),
		logging.Int("skipped", sum.Stats.Skipped),
		logging.Duration("duration", sum.Duration),
	)
	return ds, sum, nil
}

// process fans units out over the pool.  Results are stored by unit index so
// the output order does not depend on scheduling.
func (a *Aggregator) process(ctx context.Context, units []unit) ([]ArchiveResult, error) {
	results := make([]ArchiveResult, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)

	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			r, err := a.RunArchive(gctx, u.year, u.path)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunArchive reads and decodes one archive and stamps year on its records.
// A read or open failure yields a failed result, not an error; only
// cancellation of ctx is returned.
func (a *Aggregator) RunArchive(ctx context.Context, year, p string) (ArchiveResult, error) {
	if err := ctx.Err(); err != nil {
		return ArchiveResult{}, err
	}
	start := time.Now()
	ar := ArchiveResult{Year: year, Path: p}

	data, err := a.read(ctx, p)
	switch {
	case err != nil && ctx.Err() != nil:
		return ArchiveResult{}, ctx.Err()
	case err != nil:
		ar.Result.Skips = []archive.Skip{{Archive: p, Err: err}}
		ar.Result.Stats.Skipped = 1
		a.logger.WithError(err).Warn("archive skipped",
			logging.String(logging.FieldYear, year),
			logging.String(logging.FieldArchive, p),
		)
	default:
		ar.Result = a.decoder.DecodeBytes(p, data)
	}
	ar.Failed = ar.Result.Unreadable()

	for _, rec := range ar.Result.Records {
		rec.Set(patent.FieldYear, year)
	}
	ar.Elapsed = time.Since(start)

	a.observe(ar)
	a.logger.Debug("archive processed",
		logging.String(logging.FieldYear, year),
		logging.String(logging.FieldArchive, p),
		logging.Int("records", len(ar.Result.Records)),
		logging.Int("skipped", ar.Result.Stats.Skipped),
		logging.Duration("elapsed", ar.Elapsed),
	)
	return ar, nil
}

// ExtractDirectory extracts every loose markup document directly inside dir,
// in name order.  The table-of-contents document and other files are
// ignored; year is left unset.
func (a *Aggregator) ExtractDirectory(ctx context.Context, dir string) (*dataset.Dataset, *Summary, error) {
	start := time.Now()
	if err := a.checkRoot(ctx, dir); err != nil {
		return nil, nil, err
	}
	children, err := a.store.List(ctx, dir)
	if err != nil {
		return nil, nil, err
	}

	ds := dataset.New()
	sum := &Summary{Root: dir}
	for _, c := range children {
		if !a.decoder.IsMarkup(c) {
			continue
		}
		data, err := a.read(ctx, c)
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return nil, nil, cerr
			}
			sum.addWalkFailure(archive.Skip{Entry: c, Err: err})
			continue
		}
		res := a.decoder.DecodeDocument(c, data)
		sum.Stats.Add(res.Stats)
		sum.Skips = append(sum.Skips, res.Skips...)
		sum.Records += len(res.Records)
		ds.Append(res.Records...)
	}
	sum.Duration = time.Since(start)
	return ds, sum, nil
}

// read opens p and reads it fully under the per-read timeout.
func (a *Aggregator) read(ctx context.Context, p string) ([]byte, error) {
	rctx, cancel := context.WithTimeout(ctx, a.opts.ReadTimeout)
	defer cancel()

	data, err := a.readAll(rctx, p)
	if err != nil && ctx.Err() == nil && stderrors.Is(err, context.DeadlineExceeded) {
		return nil, errors.Timeout(err, fmt.Sprintf("read exceeded %s", a.opts.ReadTimeout)).WithDetail("path=" + p)
	}
	return data, err
}

func (a *Aggregator) readAll(ctx context.Context, p string) ([]byte, error) {
	rc, err := a.store.Open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	limit := a.decoder.Options().MaxEntryBytes
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, storage.Unreachable(err, "read", p)
	}
	if int64(len(data)) > limit {
		return nil, errors.New(errors.ErrCodeEntryTooLarge, fmt.Sprintf("archive exceeds %d bytes", limit)).
			WithDetail("path=" + p)
	}
	return data, nil
}

func (a *Aggregator) checkRoot(ctx context.Context, root string) error {
	ok, err := a.store.IsDir(ctx, root)
	if err != nil {
		return err
	}
	if !ok {
		return errors.InvalidParam(fmt.Sprintf("%s is not a directory", root))
	}
	return nil
}

func (a *Aggregator) observe(ar ArchiveResult) {
	st := ar.Result.Stats
	a.recorder.ObserveArchive(ar.Year, !ar.Failed, len(ar.Result.Records), ar.Elapsed)
	a.recorder.ObserveEntries(OutcomeExtracted, st.Extracted)
	a.recorder.ObserveEntries(OutcomeSkipped, st.Skipped)
	a.recorder.ObserveEntries(OutcomeIgnored, st.Ignored)
	for _, s := range ar.Result.Skips {
		a.recorder.ObserveSkip(s.Code().String())
	}
}

// baseName returns the last element of a store path.
func baseName(p string) string {
	return path.Base(filepath.ToSlash(p))
}

//Personal.AI order the ending
