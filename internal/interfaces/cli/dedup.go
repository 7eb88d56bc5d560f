package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Ingest/internal/dataset"
	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Ingest/internal/ingest/dedup"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

type dedupCmdOptions struct {
	in              string
	out             string
	key             string
	preserveUnkeyed bool
}

// NewDedupCmd creates the dedup command.
func NewDedupCmd() *cobra.Command {
	opts := &dedupCmdOptions{}
	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Keep one canonical record per key in an existing dataset",
		Long: "Read a Parquet or CSV dataset, keep the most recent record per value of --key\n" +
			"(latest publication date, then highest document number) and write the survivors\n" +
			"in their original order.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runDedup(cmd, cliCtx, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.in, "in", "", "input dataset (.parquet or .csv)")
	f.StringVar(&opts.out, "out", "", "output dataset (.parquet or .csv)")
	f.StringVar(&opts.key, "key", "", "field identifying duplicates (default: dedup.key)")
	f.BoolVar(&opts.preserveUnkeyed, "preserve-unkeyed", false, "keep every record whose key is unavailable")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// dedupReport is the printed outcome of a dedup.
type dedupReport struct {
	Rule       string `json:"rule"`
	Input      int    `json:"input"`
	Kept       int    `json:"kept"`
	Dropped    int    `json:"dropped"`
	Duplicated int    `json:"duplicated_keys"`
	Out        string `json:"out"`
}

func (r dedupReport) TableHeaders() []string { return []string{"Metric", "Value"} }

func (r dedupReport) TableRows() [][]string {
	return [][]string{
		{"rule", r.Rule},
		{"input", strconv.Itoa(r.Input)},
		{"kept", strconv.Itoa(r.Kept)},
		{"dropped", strconv.Itoa(r.Dropped)},
		{"duplicated keys", strconv.Itoa(r.Duplicated)},
		{"out", r.Out},
	}
}

func (r dedupReport) String() string {
	return fmt.Sprintf("%d of %d records kept (%d dropped) -> %s", r.Kept, r.Input, r.Dropped, r.Out)
}

func runDedup(cmd *cobra.Command, cliCtx *CLIContext, opts *dedupCmdOptions) error {
	cfg := cliCtx.Config
	fs := afero.NewOsFs()

	dopts := dedupOptions(cfg.Dedup, opts.key)
	if opts.preserveUnkeyed {
		dopts.PreserveUnkeyed = true
	}
	if dopts.Key == "" {
		return errors.InvalidParam("--key is required when dedup.key is not configured")
	}

	ds, err := dataset.ReadFile(fs, opts.in)
	if err != nil {
		return err
	}
	if !ds.HasColumn(dopts.Key) {
		return errors.InvalidParam(fmt.Sprintf("dataset has no column %q", dopts.Key))
	}

	res, err := dedup.Deduplicate(ds.Records, dopts)
	if err != nil {
		return err
	}

	duplicated := 0
	for k, n := range dedup.Groups(ds.Records, dopts.Key) {
		if n > 1 && (patent.IsAvailable(k) || !dopts.PreserveUnkeyed) {
			duplicated++
		}
	}

	out := dataset.NewWithColumns(ds.Columns)
	out.Append(res.Records...)
	if err := writeDatasetFile(fs, opts.out, out, cfg.Output.Compression); err != nil {
		return err
	}

	cliCtx.Logger.Info("dataset deduplicated",
		logging.String("in", opts.in),
		logging.String("out", opts.out),
		logging.String("rule", dopts.String()),
		logging.Int("dropped", res.Dropped),
	)
	return PrintResult(cmd, dedupReport{
		Rule:       dopts.String(),
		Input:      ds.Len(),
		Kept:       out.Len(),
		Dropped:    res.Dropped,
		Duplicated: duplicated,
		Out:        opts.out,
	})
}

//Personal.AI order the ending
