// Package sqlite writes datasets into an embedded SQLite database with one
// TEXT column per record field.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/turtacn/KeyIP-Ingest/internal/dataset"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// TableName is the table records are written to.
const TableName = "patent_records"

// RunIDColumn tags every row with the run that produced it.
const RunIDColumn = "run_id"

// Sink owns one SQLite database file.
type Sink struct {
	db     *sql.DB
	path   string
	logger logging.Logger
}

// Open opens or creates the database at path.  ":memory:" is accepted.
func Open(path string, log logging.Logger) (*Sink, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSinkFailed, "open sqlite db").WithDetail("path=" + path)
	}
	// A single connection keeps :memory: databases shared across calls.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, errors.Wrap(execErr, errors.ErrCodeSinkFailed, fmt.Sprintf("apply pragma %q", pragma))
		}
	}
	return &Sink{db: db, path: path, logger: log}, nil
}

// Close closes the underlying database.
func (s *Sink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the handle for queries.
func (s *Sink) DB() *sql.DB { return s.db }

// Write creates the table when missing and inserts every record of d in one
// transaction.  Columns absent from the table are added first so datasets
// with a newer schema still load.
func (s *Sink) Write(ctx context.Context, runID string, d *dataset.Dataset) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSinkFailed, "begin sqlite tx")
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureTable(ctx, tx, d.Columns); err != nil {
		return 0, err
	}

	cols := append([]string{RunIDColumn}, d.Columns...)
	stmt, err := tx.PrepareContext(ctx, insertSQL(cols))
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSinkFailed, "prepare sqlite insert")
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	var n int64
	for i := range d.Records {
		args[0] = runID
		for j, v := range d.Row(i) {
			args[j+1] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, errors.Wrap(err, errors.ErrCodeSinkFailed, "sqlite insert").
				WithDetail(fmt.Sprintf("row=%d", i))
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSinkFailed, "commit sqlite tx")
	}
	s.logger.Info("records written to sqlite",
		logging.String("path", s.path),
		logging.String("run_id", runID),
		logging.Int64("rows", n),
	)
	return n, nil
}

func ensureTable(ctx context.Context, tx *sql.Tx, columns []string) error {
	if _, err := tx.ExecContext(ctx, createSQL(columns)); err != nil {
		return errors.Wrap(err, errors.ErrCodeSinkFailed, "create sqlite table")
	}

	existing, err := tableColumns(ctx, tx)
	if err != nil {
		return err
	}
	for _, c := range columns {
		if existing[c] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT NOT NULL DEFAULT 'NA'", TableName, quoteIdent(c))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, errors.ErrCodeSinkFailed, "add sqlite column").WithDetail("column=" + c)
		}
	}
	return nil
}

func tableColumns(ctx context.Context, tx *sql.Tx) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", TableName))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSinkFailed, "read sqlite table info")
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSinkFailed, "scan sqlite table info")
		}
		out[name] = true
	}
	return out, rows.Err()
}

func createSQL(columns []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n    %s TEXT NOT NULL", TableName, RunIDColumn)
	for _, c := range columns {
		fmt.Fprintf(&b, ",\n    %s TEXT NOT NULL", quoteIdent(c))
	}
	b.WriteString("\n)")
	return b.String()
}

func insertSQL(columns []string) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		TableName, strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

// quoteIdent double-quotes a column name; field names contain '-'.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

//Personal.AI order the ending
