package catalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS catalog_records (
	id          INTEGER PRIMARY KEY CHECK (id BETWEEN 1 AND 64),
	name        TEXT NOT NULL,
	label       TEXT NOT NULL,
	essence     TEXT NOT NULL,
	essence_en  TEXT NOT NULL,
	archetype   TEXT NOT NULL,
	temporal    TEXT NOT NULL,
	drive       REAL NOT NULL,
	resistance  REAL NOT NULL,
	balance     REAL NOT NULL,
	yang        INTEGER NOT NULL,
	yin         INTEGER NOT NULL,
	movement    TEXT NOT NULL,
	element     TEXT NOT NULL,
	quality     TEXT NOT NULL
);
`
// #endregion schema

// #region store-struct
// Store keeps catalog records in SQLite and serves them as a Loader.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion constructor

// #region seed
// Seed replaces the stored records with the records of c in one transaction.
func (s *Store) Seed(ctx context.Context, c *Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	for _, r := range c.records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO catalog_records
			 (id, name, label, essence, essence_en, archetype, temporal, drive, resistance, balance, yang, yin, movement, element, quality)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Name, r.Label, r.Essence, r.EssenceEN, string(r.Archetype), string(r.Temporal),
			r.Dynamics.Drive, r.Dynamics.Resistance, r.Dynamics.Balance,
			r.Yang, r.Yin, r.Movement, r.Element, r.Quality,
		)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
// #endregion seed

// #region load
// Load reads every stored record. An empty or invalid table is reported as
// ErrUnavailable so callers fall back.
func (s *Store) Load(ctx context.Context) (*Catalog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, label, essence, essence_en, archetype, temporal, drive, resistance, balance, yang, yin, movement, element, quality
		 FROM catalog_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query records: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var arch, temporal string
		if err := rows.Scan(&r.ID, &r.Name, &r.Label, &r.Essence, &r.EssenceEN, &arch, &temporal,
			&r.Dynamics.Drive, &r.Dynamics.Resistance, &r.Dynamics.Balance,
			&r.Yang, &r.Yin, &r.Movement, &r.Element, &r.Quality); err != nil {
			return nil, fmt.Errorf("%w: scan record: %v", ErrUnavailable, err)
		}
		r.Archetype = Archetype(arch)
		r.Temporal = Temporal(temporal)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate records: %v", ErrUnavailable, err)
	}

	c, err := New(records, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return c, nil
}
// #endregion load
