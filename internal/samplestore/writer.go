package samplestore

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
)

const (
	// DefaultBatchSize is the number of records to buffer before flushing to the database.
	DefaultBatchSize = 100
)

// Writer writes sample records to an archive.
type Writer struct {
	db        *sql.DB
	path      string
	batch     []Record
	metadata  Metadata
	batchSize int
	mu        sync.Mutex
}

// New creates a new archive writer.
// The database is created if it doesn't exist, and the schema is initialized.
// Records already present are kept; rewriting a key replaces it.
func New(path string, metadata Metadata) (*Writer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := insertMetadata(db, metadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to insert metadata: %w", err)
	}

	return &Writer{
		db:        db,
		path:      path,
		batch:     make([]Record, 0, DefaultBatchSize),
		batchSize: DefaultBatchSize,
		metadata:  metadata,
	}, nil
}

// createSchema creates the archive schema.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS metadata (
			name TEXT NOT NULL,
			value TEXT
		);

		CREATE TABLE IF NOT EXISTS samples (
			param_name TEXT NOT NULL,
			seed INTEGER NOT NULL,
			shape TEXT NOT NULL,
			param TEXT NOT NULL,
			kind TEXT NOT NULL,
			sample_data BLOB NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS sample_index ON samples (param_name, seed, shape);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// insertMetadata replaces the archive metadata.
func insertMetadata(db *sql.DB, meta Metadata) error {
	if _, err := db.Exec("DELETE FROM metadata"); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}

	stmt, err := db.Prepare("INSERT INTO metadata (name, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare metadata insert: %w", err)
	}
	defer stmt.Close()

	for key, value := range meta.ToMap() {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("failed to insert metadata %q: %w", key, err)
		}
	}

	return nil
}

// WriteSample adds a record to the batch. When the batch is full, it is
// automatically flushed. Safe for concurrent use.
func (w *Writer) WriteSample(rec Record) error {
	if rec.Sample == nil {
		return fmt.Errorf("record %s has no sample", rec.Name)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.batch = append(w.batch, rec)

	if len(w.batch) >= w.batchSize {
		return w.flushLocked()
	}

	return nil
}

// Flush writes any buffered records to the database.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// flushLocked writes buffered records to the database. Must be called with lock held.
func (w *Writer) flushLocked() error {
	if len(w.batch) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO samples (param_name, seed, shape, param, kind, sample_data) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range w.batch {
		shape := ndarray.FormatShape(rec.Sample.Shape())
		kind, data, err := encodeSample(rec.Sample)
		if err != nil {
			return fmt.Errorf("failed to encode sample %s seed=%d: %w", rec.Name, rec.Seed, err)
		}

		if _, err := stmt.Exec(rec.Name, rec.Seed, shape, rec.Param, kind, data); err != nil {
			return fmt.Errorf("failed to insert sample %s seed=%d: %w", rec.Name, rec.Seed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.batch = w.batch[:0]
	return nil
}

// Close flushes any remaining records and closes the database.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.db.Close()
		return err
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
