package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/plant"
)

// SQLiteStore is the default, file-backed store.
type SQLiteStore struct {
	db     *sql.DB
	limits plant.Limits
}

// The NOCASE collation on scientific_name makes both the unique constraint
// and equality matches case-insensitive, so an upsert with different casing
// updates the existing row instead of inserting a duplicate.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS plants (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	scientific_name TEXT NOT NULL COLLATE NOCASE UNIQUE,
	common_name     TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	light           TEXT NOT NULL DEFAULT '',
	water           TEXT NOT NULL DEFAULT '',
	feeding         TEXT NOT NULL DEFAULT '',
	temperature     TEXT NOT NULL DEFAULT '',
	humidity        TEXT NOT NULL DEFAULT '',
	toxicity        TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// OpenSQLite opens (or creates) the SQLite database at the given path.
// A nil limits falls back to the defaults.
func OpenSQLite(path string, limits plant.Limits) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create database directory")
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open sqlite")
	}

	// SQLite is single-writer; one connection serializes writes per
	// identifier so concurrent fetches cannot race a record.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping sqlite")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "apply schema")
	}
	return &SQLiteStore{db: db, limits: limits}, nil
}

const recordColumns = `scientific_name, common_name, description, light, water, feeding, temperature, humidity, toxicity`

// Get returns the record matching the name case-insensitively.
func (s *SQLiteStore) Get(ctx context.Context, scientificName string) (*plant.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM plants WHERE scientific_name = ?`,
		scientificName)

	var rec plant.Record
	err := row.Scan(&rec.ScientificName, &rec.CommonName, &rec.Description,
		&rec.Light, &rec.Water, &rec.Feeding, &rec.Temperature, &rec.Humidity, &rec.Toxicity)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodePlantNotFound, "plant %q not found", scientificName)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "query plant")
	}
	return &rec, nil
}

// Upsert inserts or updates the record, applying field limits first.
// The NOCASE unique key resolves conflicts case-insensitively; on update
// the incoming casing of the name wins, matching the Mongo backend.
func (s *SQLiteStore) Upsert(ctx context.Context, rec plant.Record) error {
	limited, err := limit(rec, s.limits)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plants (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(scientific_name) DO UPDATE SET
			scientific_name = excluded.scientific_name,
			common_name = excluded.common_name,
			description = excluded.description,
			light       = excluded.light,
			water       = excluded.water,
			feeding     = excluded.feeding,
			temperature = excluded.temperature,
			humidity    = excluded.humidity,
			toxicity    = excluded.toxicity,
			updated_at  = ?`,
		limited.ScientificName, limited.CommonName, limited.Description,
		limited.Light, limited.Water, limited.Feeding,
		limited.Temperature, limited.Humidity, limited.Toxicity,
		time.Now().UTC())
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "upsert plant")
	}
	return nil
}

// Delete removes a record; deleting an absent record is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, scientificName string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM plants WHERE scientific_name = ?`, scientificName)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete plant")
	}
	return nil
}

// List returns all records, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]plant.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM plants ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list plants")
	}
	defer rows.Close()

	var records []plant.Record
	for rows.Next() {
		var rec plant.Record
		if err := rows.Scan(&rec.ScientificName, &rec.CommonName, &rec.Description,
			&rec.Light, &rec.Water, &rec.Feeding, &rec.Temperature, &rec.Humidity, &rec.Toxicity); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "scan plant")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "iterate plants")
	}
	return records, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
