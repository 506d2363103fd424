package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/plant"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	return openTestStoreWithLimits(t, nil)
}

func openTestStoreWithLimits(t *testing.T, limits plant.Limits) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "plants.db"), limits)
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	rec := plant.Record{
		ScientificName: "Monstera deliciosa",
		CommonName:     "Swiss Cheese Plant",
		Light:          "Bright indirect light",
	}
	if err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	got, err := s.Get(ctx, "Monstera deliciosa")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.CommonName != "Swiss Cheese Plant" {
		t.Errorf("CommonName = %q", got.CommonName)
	}
}

func TestSQLiteGetCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.Upsert(ctx, plant.Record{ScientificName: "Hoya carnosa"}); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	for _, name := range []string{"hoya carnosa", "HOYA CARNOSA", "Hoya Carnosa"} {
		got, err := s.Get(ctx, name)
		if err != nil {
			t.Fatalf("Get(%q) error: %v", name, err)
		}
		// Stored casing is preserved regardless of lookup casing.
		if got.ScientificName != "Hoya carnosa" {
			t.Errorf("Get(%q).ScientificName = %q", name, got.ScientificName)
		}
	}
}

func TestSQLiteGetNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "Nonexistus plantus")
	if errors.GetCode(err) != errors.ErrCodePlantNotFound {
		t.Errorf("code = %q, want plant_not_found", errors.GetCode(err))
	}
}

func TestSQLiteUpsertUpdates(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.Upsert(ctx, plant.Record{ScientificName: "Ficus elastica", Water: "Weekly"}); err != nil {
		t.Fatalf("first Upsert error: %v", err)
	}
	// Second upsert with the same name updates, not duplicates.
	if err := s.Upsert(ctx, plant.Record{ScientificName: "Ficus elastica", Water: "When top half dries"}); err != nil {
		t.Fatalf("second Upsert error: %v", err)
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].Water != "When top half dries" {
		t.Errorf("Water = %q, want updated value", records[0].Water)
	}
}

func TestSQLiteUpsertAppliesLimits(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	rec := plant.Record{
		ScientificName: "Monstera deliciosa",
		Description:    strings.Repeat("Lush green foliage. ", 30), // 600 runes
	}
	if err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	got, err := s.Get(ctx, "Monstera deliciosa")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	limit := plant.DefaultLimits()[plant.FieldDescription]
	if n := len([]rune(got.Description)); n > limit {
		t.Errorf("stored description is %d runes, want <= %d", n, limit)
	}
}

func TestSQLiteUpsertCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.Upsert(ctx, plant.Record{ScientificName: "Monstera deliciosa", Water: "Weekly"}); err != nil {
		t.Fatalf("first Upsert error: %v", err)
	}
	// Re-upserting under different casing must update the existing row.
	if err := s.Upsert(ctx, plant.Record{ScientificName: "MONSTERA DELICIOSA", Water: "Let top half dry"}); err != nil {
		t.Fatalf("second Upsert error: %v", err)
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].Water != "Let top half dry" {
		t.Errorf("Water = %q, want updated value", records[0].Water)
	}
	// The latest write's casing wins, as with the Mongo backend.
	if records[0].ScientificName != "MONSTERA DELICIOSA" {
		t.Errorf("ScientificName = %q, want the casing of the latest write", records[0].ScientificName)
	}
}

func TestSQLiteUpsertCustomLimits(t *testing.T) {
	ctx := context.Background()
	s := openTestStoreWithLimits(t, plant.Limits{plant.FieldDescription: 40})

	rec := plant.Record{
		ScientificName: "Calathea orbifolia",
		Description:    strings.Repeat("Round striped leaves. ", 10),
	}
	if err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	got, err := s.Get(ctx, "Calathea orbifolia")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if n := len([]rune(got.Description)); n > 40 {
		t.Errorf("stored description is %d runes, want <= 40 (configured limit)", n)
	}
}

func TestSQLiteUpsertRejectsEmptyName(t *testing.T) {
	s := openTestStore(t)
	err := s.Upsert(context.Background(), plant.Record{CommonName: "Nameless"})
	if errors.GetCode(err) != errors.ErrCodeInvalidRecord {
		t.Errorf("code = %q, want invalid_record", errors.GetCode(err))
	}
}

func TestSQLiteListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, name := range []string{"Aglaonema commutatum", "Pilea peperomioides", "Ceropegia woodii"} {
		if err := s.Upsert(ctx, plant.Record{ScientificName: name}); err != nil {
			t.Fatalf("Upsert(%q) error: %v", name, err)
		}
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[0].ScientificName != "Ceropegia woodii" {
		t.Errorf("first record = %q, want the most recently added", records[0].ScientificName)
	}
}

func TestSQLiteDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.Upsert(ctx, plant.Record{ScientificName: "Hoya carnosa"}); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if err := s.Delete(ctx, "HOYA CARNOSA"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := s.Get(ctx, "Hoya carnosa"); errors.GetCode(err) != errors.ErrCodePlantNotFound {
		t.Error("record should be gone after delete")
	}
	// Deleting again is a no-op.
	if err := s.Delete(ctx, "Hoya carnosa"); err != nil {
		t.Errorf("repeat Delete error: %v", err)
	}
}
