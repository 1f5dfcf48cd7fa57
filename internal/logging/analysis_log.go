package logging

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const analysisLogSchema = `
CREATE TABLE IF NOT EXISTS analysis_log (
	id             TEXT PRIMARY KEY,
	ok             INTEGER NOT NULL,
	archetype      TEXT,
	primary_id     INTEGER NOT NULL,
	line           INTEGER NOT NULL,
	confidence     REAL NOT NULL,
	fallback_level INTEGER NOT NULL,
	input_runes    INTEGER NOT NULL,
	duration_ms    REAL NOT NULL,
	phase          TEXT,
	error          TEXT,
	created_at     TEXT NOT NULL
);
`

const analysisLogIndex = `
CREATE INDEX IF NOT EXISTS idx_analysis_log_created ON analysis_log(created_at);
`

// timeLayout keeps created_at sortable as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
// #endregion schema

// #region analysis-log
// AnalysisLog persists one row per analysis for diagnostics.
type AnalysisLog struct {
	db *sql.DB
}

// OpenAnalysisLog opens a SQLite database at path and runs migrations.
func OpenAnalysisLog(path string) (*AnalysisLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	l, err := NewAnalysisLog(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// NewAnalysisLog creates the analysis_log table on an existing database.
func NewAnalysisLog(db *sql.DB) (*AnalysisLog, error) {
	if _, err := db.Exec(analysisLogSchema); err != nil {
		return nil, fmt.Errorf("migrate analysis log: %w", err)
	}
	if _, err := db.Exec(analysisLogIndex); err != nil {
		return nil, fmt.Errorf("migrate analysis log: %w", err)
	}
	return &AnalysisLog{db: db}, nil
}

// Close closes the underlying database connection.
func (l *AnalysisLog) Close() error {
	return l.db.Close()
}
// #endregion analysis-log

// #region log-analysis
// LogAnalysis writes an entry to the analysis_log table.
func (l *AnalysisLog) LogAnalysis(entry AnalysisEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := l.db.Exec(
		`INSERT INTO analysis_log (id, ok, archetype, primary_id, line, confidence, fallback_level, input_runes, duration_ms, phase, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		boolInt(entry.OK),
		nullIfEmpty(entry.Archetype),
		entry.PrimaryID,
		entry.Line,
		entry.Confidence,
		entry.FallbackLevel,
		entry.InputRunes,
		entry.DurationMs,
		nullIfEmpty(entry.Phase),
		nullIfEmpty(entry.Error),
		entry.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("log analysis: %w", err)
	}
	return nil
}
// #endregion log-analysis

// #region recent
// Recent returns up to limit entries, newest first.
func (l *AnalysisLog) Recent(ctx context.Context, limit int) ([]AnalysisEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, ok, archetype, primary_id, line, confidence, fallback_level, input_runes, duration_ms, phase, error, created_at
		 FROM analysis_log ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query analysis log: %w", err)
	}
	defer rows.Close()

	var out []AnalysisEntry
	for rows.Next() {
		var (
			e                     AnalysisEntry
			ok                    int
			archetype, phase, msg sql.NullString
			created               string
		)
		if err := rows.Scan(&e.ID, &ok, &archetype, &e.PrimaryID, &e.Line, &e.Confidence,
			&e.FallbackLevel, &e.InputRunes, &e.DurationMs, &phase, &msg, &created); err != nil {
			return nil, fmt.Errorf("scan analysis log: %w", err)
		}
		e.OK = ok == 1
		e.Archetype = archetype.String
		e.Phase = phase.String
		e.Error = msg.String
		e.CreatedAt, err = time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis log: %w", err)
	}
	return out, nil
}
// #endregion recent

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
// #endregion helpers
