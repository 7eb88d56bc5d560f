package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"github.com/turtacn/KeyIP-Ingest/internal/config"
	"github.com/turtacn/KeyIP-Ingest/internal/dataset"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/database/postgres"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/database/sqlite"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// outputResult describes one written output.
type outputResult struct {
	Target   string `json:"target"`
	Location string `json:"location"`
	Rows     int64  `json:"rows"`
}

// withFileLock runs fn while holding an advisory lock on path+".lock".
func withFileLock(path string, fn func() error) error {
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSinkFailed, "acquire output lock").WithDetail("path=" + path)
	}
	if !ok {
		return errors.New(errors.ErrCodeSinkFailed, "output is locked by another process").WithDetail("path=" + path)
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}

// writeDatasetFile writes d to a local Parquet or CSV file under its lock.
func writeDatasetFile(fs afero.Fs, path string, d *dataset.Dataset, compression string) error {
	return withFileLock(path, func() error {
		return dataset.WriteFile(fs, path, d, compression)
	})
}

// writeOutputs sends d to every configured destination.  The first failure
// stops the remaining outputs.  key is the dedup key the run applied; Kafka
// messages are keyed by it.
func writeOutputs(ctx context.Context, cfg *config.Config, out config.OutputConfig, key, runID string, d *dataset.Dataset, log logging.Logger) ([]outputResult, error) {
	var results []outputResult
	fs := afero.NewOsFs()

	for _, f := range []struct{ target, path string }{
		{"parquet", out.ParquetPath},
		{"csv", out.CSVPath},
	} {
		if f.path == "" {
			continue
		}
		if err := writeDatasetFile(fs, f.path, d, out.Compression); err != nil {
			return results, err
		}
		log.Info("dataset written", logging.String("target", f.target), logging.String("path", f.path),
			logging.Int("records", d.Len()))
		results = append(results, outputResult{Target: f.target, Location: f.path, Rows: int64(d.Len())})
	}

	if out.SQLitePath != "" {
		n, err := writeSQLite(ctx, out.SQLitePath, runID, d, log)
		if err != nil {
			return results, err
		}
		results = append(results, outputResult{Target: "sqlite", Location: out.SQLitePath, Rows: n})
	}

	if cfg.Postgres.Enabled {
		n, err := writePostgres(ctx, cfg.Postgres, runID, d, log)
		if err != nil {
			return results, err
		}
		results = append(results, outputResult{
			Target:   "postgres",
			Location: fmt.Sprintf("%s:%d/%s", cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName),
			Rows:     n,
		})
	}

	if cfg.Kafka.Enabled {
		n, err := publishKafka(ctx, cfg.Kafka, key, runID, d, log)
		if err != nil {
			return results, err
		}
		results = append(results, outputResult{Target: "kafka", Location: cfg.Kafka.Topic, Rows: int64(n)})
	}
	return results, nil
}

func writeSQLite(ctx context.Context, path, runID string, d *dataset.Dataset, log logging.Logger) (n int64, err error) {
	err = withFileLock(path, func() error {
		sink, err := sqlite.Open(path, log)
		if err != nil {
			return err
		}
		defer sink.Close()
		n, err = sink.Write(ctx, runID, d)
		return err
	})
	return n, err
}

func writePostgres(ctx context.Context, cfg config.PostgresConfig, runID string, d *dataset.Dataset, log logging.Logger) (int64, error) {
	if err := postgres.RunMigrations(postgres.BuildDSN(cfg), log); err != nil {
		return 0, err
	}
	pool, err := postgres.NewPool(ctx, cfg, log)
	if err != nil {
		return 0, err
	}
	defer pool.Close()
	return postgres.NewSink(pool, log).Write(ctx, runID, d)
}

func publishKafka(ctx context.Context, cfg config.KafkaConfig, key, runID string, d *dataset.Dataset, log logging.Logger) (int, error) {
	producer, err := kafka.NewProducer(cfg, log)
	if err != nil {
		return 0, err
	}
	defer producer.Close()
	return publishRecords(ctx, producer, cfg, key, runID, d, log)
}

func publishRecords(ctx context.Context, p kafka.BatchPublisher, cfg config.KafkaConfig, key, runID string, d *dataset.Dataset, log logging.Logger) (int, error) {
	return kafka.NewRecordPublisher(p, cfg.Topic, key, cfg.BatchSize, log).Publish(ctx, runID, d)
}

// outputReport renders written outputs.
type outputReport []outputResult

func (r outputReport) TableHeaders() []string { return []string{"Output", "Location", "Rows"} }

func (r outputReport) TableRows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, o := range r {
		rows = append(rows, []string{o.Target, o.Location, strconv.FormatInt(o.Rows, 10)})
	}
	return rows
}

//Personal.AI order the ending
