package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Ingest/internal/dataset"
	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/storage/local"
	"github.com/turtacn/KeyIP-Ingest/internal/ingest/archive"
	"github.com/turtacn/KeyIP-Ingest/internal/ingest/pipeline"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

type extractOptions struct {
	out string
}

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract PATH",
		Short: "Extract records from one local document, archive or directory",
		Long: "Extract records from a single markup document, a single archive (nested archives\n" +
			"included) or every loose markup document directly inside a directory.  Records\n" +
			"are printed as JSON unless --out names a .parquet or .csv file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runExtract(cmd, cliCtx, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.out, "out", "", "write records to this .parquet or .csv file")
	return cmd
}

func runExtract(cmd *cobra.Command, cliCtx *CLIContext, p string, opts *extractOptions) error {
	ctx := cmd.Context()
	cfg := cliCtx.Config
	log := cliCtx.Logger

	fi, err := os.Stat(p)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidParam, "cannot stat input").WithDetail("path=" + p)
	}

	dec := newDecoder(cfg, log)
	var ds *dataset.Dataset
	switch {
	case fi.IsDir():
		agg := pipeline.New(local.NewStore(), dec, pipeline.Options{ReadTimeout: cfg.Storage.ReadTimeout},
			pipeline.WithLogger(log.Named("pipeline")))
		ds, _, err = agg.ExtractDirectory(ctx, filepath.Clean(p))
		if err != nil {
			return err
		}
	case dec.IsArchive(p) || dec.IsMarkup(p):
		data, err := os.ReadFile(p)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeStorageUnreachable, "read input").WithDetail("path=" + p)
		}
		ds = dataset.New()
		ds.Append(decodeFile(dec, p, data).Records...)
	default:
		return errors.InvalidParam("input must be a directory, a markup document or an archive: " + p)
	}

	if opts.out != "" {
		if err := writeDatasetFile(afero.NewOsFs(), opts.out, ds, cfg.Output.Compression); err != nil {
			return err
		}
		return PrintResult(cmd, outputReport{{Target: "file", Location: opts.out, Rows: int64(ds.Len())}})
	}
	return printJSON(cmd, recordsView(ds))
}

func decodeFile(dec *archive.Decoder, p string, data []byte) archive.Result {
	if dec.IsArchive(p) {
		return dec.DecodeBytes(p, data)
	}
	return dec.DecodeDocument(p, data)
}

// recordsView restricts each record to the dataset columns.
func recordsView(ds *dataset.Dataset) []patent.Record {
	out := make([]patent.Record, 0, ds.Len())
	for _, r := range ds.Records {
		view := make(patent.Record, len(ds.Columns))
		for _, c := range ds.Columns {
			view[c] = r.Get(c)
		}
		out = append(out, view)
	}
	return out
}

//Personal.AI order the ending
