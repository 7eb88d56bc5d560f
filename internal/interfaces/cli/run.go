package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Ingest/internal/config"
	"github.com/turtacn/KeyIP-Ingest/internal/dataset"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/storage"
	"github.com/turtacn/KeyIP-Ingest/internal/ingest/dedup"
	"github.com/turtacn/KeyIP-Ingest/internal/ingest/pipeline"
)

type runOptions struct {
	dedupKey    string
	parquetPath string
	csvPath     string
	sqlitePath  string
	year        string
}

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run ROOT",
		Short: "Ingest every year directory under ROOT",
		Long: "Walk the year directories under ROOT (s3://bucket/prefix, gs://bucket/prefix or a\n" +
			"local path), decode every archive, optionally deduplicate, and write the dataset\n" +
			"to the configured outputs.  Skipped entries and archives are reported, not fatal.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runIngest(cmd, cliCtx, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dedupKey, "dedup-key", "", "deduplicate on this field (overrides dedup.key)")
	f.StringVar(&opts.parquetPath, "parquet", "", "write the dataset to this Parquet file")
	f.StringVar(&opts.csvPath, "csv", "", "write the dataset to this CSV file")
	f.StringVar(&opts.sqlitePath, "sqlite", "", "append the dataset to this SQLite database")
	f.StringVar(&opts.year, "year", "", "only ingest this year directory")
	return cmd
}

// runReport is the printed outcome of a run.
type runReport struct {
	RunID          string         `json:"run_id"`
	Root           string         `json:"root"`
	Years          []string       `json:"years"`
	Archives       int            `json:"archives"`
	ArchivesFailed int            `json:"archives_failed"`
	Entries        int            `json:"entries"`
	Extracted      int            `json:"extracted"`
	Skipped        int            `json:"skipped"`
	Ignored        int            `json:"ignored"`
	Records        int            `json:"records"`
	DedupDropped   int            `json:"dedup_dropped"`
	SkipsByCode    map[string]int `json:"skips_by_code,omitempty"`
	Outputs        []outputResult `json:"outputs,omitempty"`
	Duration       string         `json:"duration"`
}

func newRunReport(runID string, sum *pipeline.Summary) *runReport {
	r := &runReport{
		RunID:          runID,
		Root:           sum.Root,
		Years:          sum.Years,
		Archives:       sum.Archives,
		ArchivesFailed: sum.ArchivesFailed,
		Entries:        sum.Stats.Entries,
		Extracted:      sum.Stats.Extracted,
		Skipped:        sum.Stats.Skipped,
		Ignored:        sum.Stats.Ignored,
		Records:        sum.Records,
		Duration:       sum.Duration.Round(time.Millisecond).String(),
	}
	if codes := sum.SkipsByCode(); len(codes) > 0 {
		r.SkipsByCode = make(map[string]int, len(codes))
		for c, n := range codes {
			r.SkipsByCode[c.String()] = n
		}
	}
	return r
}

func (r *runReport) TableHeaders() []string { return []string{"Metric", "Value"} }

func (r *runReport) TableRows() [][]string {
	rows := [][]string{
		{"run id", r.RunID},
		{"root", r.Root},
		{"years", strings.Join(r.Years, ", ")},
		{"archives", strconv.Itoa(r.Archives)},
		{"archives failed", strconv.Itoa(r.ArchivesFailed)},
		{"entries", strconv.Itoa(r.Entries)},
		{"extracted", strconv.Itoa(r.Extracted)},
		{"skipped", strconv.Itoa(r.Skipped)},
		{"ignored", strconv.Itoa(r.Ignored)},
		{"dedup dropped", strconv.Itoa(r.DedupDropped)},
		{"records", strconv.Itoa(r.Records)},
		{"duration", r.Duration},
	}
	codes := make([]string, 0, len(r.SkipsByCode))
	for c := range r.SkipsByCode {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	for _, c := range codes {
		rows = append(rows, []string{"skips " + c, strconv.Itoa(r.SkipsByCode[c])})
	}
	for _, o := range r.Outputs {
		rows = append(rows, []string{"output " + o.Target, fmt.Sprintf("%s (%d rows)", o.Location, o.Rows)})
	}
	return rows
}

func (r *runReport) String() string {
	return fmt.Sprintf("run %s: %d records from %d archives (%d failed), %d entries skipped, %d dropped as duplicates in %s",
		r.RunID, r.Records, r.Archives, r.ArchivesFailed, r.Skipped, r.DedupDropped, r.Duration)
}

func runIngest(cmd *cobra.Command, cliCtx *CLIContext, root string, opts *runOptions) error {
	ctx := cmd.Context()
	cfg := cliCtx.Config
	runID := uuid.NewString()
	log := cliCtx.Logger.With(logging.String("run_id", runID))
	start := time.Now()

	loc, err := storage.ParseLocation(root)
	if err != nil {
		return err
	}
	dedupOpts := dedupOptions(cfg.Dedup, opts.dedupKey)
	if dedupOpts.Key != "" {
		if err := dedupOpts.Validate(); err != nil {
			return err
		}
	}
	store, release, err := openStore(ctx, cfg, loc, log)
	if err != nil {
		return err
	}
	defer func() { _ = release() }()

	metrics, err := newRunMetrics(cfg, log)
	if err != nil {
		return err
	}
	defer metrics.push(ctx)

	agg := newAggregator(cfg, store, log, metrics.ingest)
	var (
		ds  *dataset.Dataset
		sum *pipeline.Summary
	)
	if opts.year != "" {
		ds, sum, err = agg.RunYear(ctx, joinLocation(loc, opts.year))
	} else {
		ds, sum, err = agg.Run(ctx, loc.Path)
	}
	if err != nil {
		return err
	}
	report := newRunReport(runID, sum)
	report.Root = loc.String()

	if dedupOpts.Key != "" {
		res, err := dedup.Deduplicate(ds.Records, dedupOpts)
		if err != nil {
			return err
		}
		ds.Records = res.Records
		report.DedupDropped = res.Dropped
		report.Records = ds.Len()
		metrics.ingest.ObserveDedup(res.Dropped)
		log.Info("deduplicated", logging.String("rule", dedupOpts.String()), logging.Int("dropped", res.Dropped))
	}

	out := cfg.Output
	if opts.parquetPath != "" {
		out.ParquetPath = opts.parquetPath
	}
	if opts.csvPath != "" {
		out.CSVPath = opts.csvPath
	}
	if opts.sqlitePath != "" {
		out.SQLitePath = opts.sqlitePath
	}
	report.Outputs, err = writeOutputs(ctx, cfg, out, dedupOpts.Key, runID, ds, log)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	metrics.ingest.ObserveRun(elapsed)
	report.Duration = elapsed.Round(time.Millisecond).String()
	log.Info("run complete",
		logging.Int("records", report.Records),
		logging.Int("archives_failed", report.ArchivesFailed),
		logging.Duration("duration", elapsed),
	)
	return PrintResult(cmd, report)
}

// dedupOptions merges the --dedup-key flag into the configured rule.
func dedupOptions(cfg config.DedupConfig, key string) dedup.Options {
	if key == "" {
		key = cfg.Key
	}
	return dedup.Options{
		Key:             key,
		DateField:       cfg.DateField,
		DocNumberField:  cfg.DocNumberField,
		PreserveUnkeyed: cfg.PreserveUnkeyed,
	}
}

// joinLocation appends a child directory to a parsed root.
func joinLocation(loc storage.Location, child string) string {
	if loc.Scheme == storage.SchemeLocal {
		return filepath.Join(loc.Path, child)
	}
	return storage.JoinPath(loc.Path, child)
}

//Personal.AI order the ending
