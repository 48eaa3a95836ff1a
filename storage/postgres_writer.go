package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"bixi-eda/models"
	"bixi-eda/utils"
)

const insertBatchSize = 100

// PostgresWriter persists flattened analysis results to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, retrying the ping with
// back-off, runs schema migrations and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string, maxRetries int, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: maxRetries, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS eda_results (
			id         SERIAL PRIMARY KEY,
			analysis   VARCHAR(64) NOT NULL,
			chart      VARCHAR(64) NOT NULL DEFAULT '',
			series     TEXT        NOT NULL DEFAULT '',
			label      TEXT        NOT NULL,
			value      TEXT        NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_eda_results_analysis ON eda_results(analysis);
		CREATE INDEX IF NOT EXISTS idx_eda_results_chart    ON eda_results(chart);
	`)
	return err
}

// Write replaces the stored results with those of report in one transaction.
func (pw *PostgresWriter) Write(report *models.InsightReport) error {
	results := Flatten(report)

	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM eda_results"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	for i := 0; i < len(results); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(results) {
			end = len(results)
		}
		query, args := insertBatch(results[i:end])
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func insertBatch(batch []Result) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*5)

	for idx, r := range batch {
		base := idx * 5
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4, base+5))
		valueArgs = append(valueArgs, r.Analysis, r.Chart, r.Series, r.Label, r.Value)
	}

	query := "INSERT INTO eda_results (analysis, chart, series, label, value) VALUES " +
		strings.Join(valueStrings, ",")
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves every stored result in insertion order.
func (pw *PostgresWriter) FetchAll() ([]Result, error) {
	rows, err := pw.db.Query(`
		SELECT analysis, chart, series, label, value
		FROM eda_results
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Analysis, &r.Chart, &r.Series, &r.Label, &r.Value); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
