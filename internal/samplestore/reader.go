package samplestore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
)

// ErrNotFound reports a missing record.
var ErrNotFound = errors.New("samplestore: record not found")

// Reader reads records from an archive.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenReader opens an archive for reading.
func OpenReader(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='samples'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("database does not contain samples table")
	}

	return &Reader{
		db:   db,
		path: path,
	}, nil
}

// ReadSample returns the array stored under key.
func (r *Reader) ReadSample(key Key) (*ndarray.Array, error) {
	shape, err := ndarray.ParseShape(key.Shape)
	if err != nil {
		return nil, fmt.Errorf("invalid key %s: %w", key, err)
	}

	var (
		kind string
		data []byte
	)
	err = r.db.QueryRow(
		"SELECT kind, sample_data FROM samples WHERE param_name=? AND seed=? AND shape=?",
		key.Name, key.Seed, ndarray.FormatShape(shape),
	).Scan(&kind, &data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sample: %w", err)
	}

	arr, err := decodeSample(kind, shape, data)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", key, err)
	}
	return arr, nil
}

// Entries lists every stored record, ordered by name, seed and shape.
func (r *Reader) Entries() ([]Entry, error) {
	rows, err := r.db.Query("SELECT param_name, seed, shape, param FROM samples ORDER BY param_name, seed, shape")
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Seed, &e.Shape, &e.Param); err != nil {
			return nil, fmt.Errorf("failed to scan sample row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating samples: %w", err)
	}
	return entries, nil
}

// Metadata reads metadata from the database.
func (r *Reader) Metadata() (Metadata, error) {
	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	metaMap := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Metadata{}, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		metaMap[name] = value
	}

	if err := rows.Err(); err != nil {
		return Metadata{}, fmt.Errorf("error iterating metadata: %w", err)
	}

	return metadataFromMap(metaMap), nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
