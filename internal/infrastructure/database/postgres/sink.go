package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/turtacn/KeyIP-Ingest/internal/dataset"
	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// TableName is the sink table created by the embedded migrations.
const TableName = "patent_records"

// copyColumns are the columns filled by Write; id and ingested_at default.
var copyColumns = []string{"run_id", "year", "doc_number", "family_id", "publication_date", "record", "ingested_at"}

// Copier is the subset of *pgxpool.Pool used by the sink.
type Copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Sink bulk-loads datasets into patent_records.
type Sink struct {
	db     Copier
	logger logging.Logger
	now    func() time.Time
}

// NewSink wraps a pool (or any Copier).
func NewSink(db Copier, log logging.Logger) *Sink {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Sink{db: db, logger: log, now: time.Now}
}

// Write copies every record of d tagged with runID and returns the number of
// rows written.
func (s *Sink) Write(ctx context.Context, runID string, d *dataset.Dataset) (int64, error) {
	if d.Len() == 0 {
		return 0, nil
	}
	ingestedAt := s.now().UTC()
	rows := make([][]any, 0, d.Len())
	for _, rec := range d.Records {
		rows = append(rows, toRow(runID, rec, ingestedAt))
	}

	n, err := s.db.CopyFrom(ctx, pgx.Identifier{TableName}, copyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, errors.Wrap(err, errors.ErrCodeSinkFailed, "postgres copy failed").
			WithDetail("run_id=" + runID)
	}
	s.logger.Info("records written to postgres",
		logging.String("run_id", runID),
		logging.Int64("rows", n),
	)
	return n, nil
}

// toRow maps a record onto copyColumns.  The full record is kept as jsonb.
func toRow(runID string, rec patent.Record, at time.Time) []any {
	return []any{
		runID,
		rec.Get(patent.FieldYear),
		rec.Get(patent.FieldDocNumber),
		rec.Get(patent.FieldFamilyID),
		rec.Get(patent.FieldPublicationDate),
		map[string]string(rec),
		at,
	}
}

//Personal.AI order the ending
