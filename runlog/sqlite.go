package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	dataset     TEXT NOT NULL,
	data_size   INTEGER NOT NULL,
	num_queries INTEGER NOT NULL,
	dim         INTEGER NOT NULL,
	k           INTEGER NOT NULL,
	nproc       INTEGER NOT NULL,
	q_block     INTEGER NOT NULL,
	b_block     INTEGER NOT NULL,
	metric      TEXT NOT NULL,
	start_ns    INTEGER NOT NULL,
	end_ns      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_dataset ON runs(dataset, data_size);
`

// SQLiteSink stores records in the runs table of an SQLite database.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the ledger at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Append implements Sink.
func (s *SQLiteSink) Append(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, dataset, data_size, num_queries, dim, k,
			nproc, q_block, b_block, metric, start_ns, end_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Dataset, r.DataSize, r.NumQueries, r.Dimension, r.K,
		r.NProc, r.QBlock, r.BBlock, r.Metric, r.Start.UnixNano(), r.End.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.RunID, err)
	}
	return nil
}

// Runs returns the records of dataset (all datasets if empty), oldest first.
func (s *SQLiteSink) Runs(ctx context.Context, dataset string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, dataset, data_size, num_queries, dim, k,
			nproc, q_block, b_block, metric, start_ns, end_ns
		FROM runs
		WHERE ? = '' OR dataset = ?
		ORDER BY start_ns`, dataset, dataset)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var start, end int64
		if err := rows.Scan(&r.RunID, &r.Dataset, &r.DataSize, &r.NumQueries, &r.Dimension, &r.K,
			&r.NProc, &r.QBlock, &r.BBlock, &r.Metric, &start, &end); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Start, r.End = time.Unix(0, start), time.Unix(0, end)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
