// Package store persists plant records. Two backends implement the same
// interface: SQLite for the default local database and MongoDB for shared
// deployments. Lookups match scientific names case-insensitively; writes
// always pass through the field limit policy so stored text never exceeds
// what a card can display.
package store

import (
	"context"

	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/plant"
)

// Store is the persistence boundary for plant records.
type Store interface {
	// Get returns the record for a scientific name, matched
	// case-insensitively. Returns ErrCodePlantNotFound when absent.
	Get(ctx context.Context, scientificName string) (*plant.Record, error)

	// Upsert inserts or updates the record keyed by its scientific name.
	// Field limits are applied before the write; a second upsert with the
	// same name updates in place.
	Upsert(ctx context.Context, rec plant.Record) error

	// Delete removes a record. Removing an absent record is not an error.
	Delete(ctx context.Context, scientificName string) error

	// List returns all records, newest first.
	List(ctx context.Context) ([]plant.Record, error)

	Close() error
}

// limit applies the field limits before a write. Both backends call this so
// stored data and rendered data stay limit-consistent. A nil limits falls
// back to the defaults.
func limit(rec plant.Record, limits plant.Limits) (plant.Record, error) {
	if rec.ScientificName == "" {
		return rec, errors.New(errors.ErrCodeInvalidRecord, "record has no scientific name")
	}
	if limits == nil {
		limits = plant.DefaultLimits()
	}
	limited, _ := limits.Apply(rec)
	return limited, nil
}
