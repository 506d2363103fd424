package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leafvessel/carecard/pkg/anthropic"
	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/plant"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(bytes.NewBuffer(nil), LogInfo)
	root := c.RootCommand()

	want := []string{"generate", "fetch", "list", "show", "import", "catalog", "verify", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCommandUseName(t *testing.T) {
	c := New(bytes.NewBuffer(nil), LogInfo)
	root := c.RootCommand()
	if root.Use != "carecard" {
		t.Errorf("Use = %q, want carecard", root.Use)
	}
	if !root.SilenceUsage {
		t.Error("usage should be silenced on errors")
	}
}

func TestSpinnerStartStop(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "working...")
	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()
	// Stop again must not panic or deadlock.
	s.Stop()
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "working...")
	s.Start()
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop deadlocked after context cancellation")
	}
}

// stubStore is a minimal in-memory store for correction tests.
type stubStore struct {
	records map[string]plant.Record
}

func (s *stubStore) Get(_ context.Context, name string) (*plant.Record, error) {
	rec, ok := s.records[strings.ToLower(name)]
	if !ok {
		return nil, errors.New(errors.ErrCodePlantNotFound, "plant %q not found", name)
	}
	return &rec, nil
}

func (s *stubStore) Upsert(_ context.Context, rec plant.Record) error {
	s.records[strings.ToLower(rec.ScientificName)] = rec
	return nil
}

func (s *stubStore) Delete(_ context.Context, name string) error {
	delete(s.records, strings.ToLower(name))
	return nil
}

func (s *stubStore) List(_ context.Context) ([]plant.Record, error) {
	records := make([]plant.Record, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	return records, nil
}

func (s *stubStore) Close() error { return nil }

func TestApplyCorrectionUpdatesField(t *testing.T) {
	st := &stubStore{records: map[string]plant.Record{
		"hoya carnosa": {ScientificName: "Hoya carnosa", Water: "Weekly"},
	}}
	corr := anthropic.Correction{
		Plant:            "Hoya carnosa",
		Field:            plant.FieldWater,
		Verification:     "agree",
		RecommendedValue: "Let dry fully between waterings",
	}

	if err := applyCorrection(context.Background(), st, corr); err != nil {
		t.Fatalf("applyCorrection error: %v", err)
	}
	got, _ := st.Get(context.Background(), "Hoya carnosa")
	if got.Water != "Let dry fully between waterings" {
		t.Errorf("Water = %q, want recommended value", got.Water)
	}
}

func TestApplyCorrectionRejectsUnknownField(t *testing.T) {
	st := &stubStore{records: map[string]plant.Record{
		"hoya carnosa": {ScientificName: "Hoya carnosa", Water: "Weekly"},
	}}
	corr := anthropic.Correction{
		Plant:            "Hoya carnosa",
		Field:            "growth_rate",
		Verification:     "agree",
		RecommendedValue: "fast",
	}

	err := applyCorrection(context.Background(), st, corr)
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Fatalf("code = %q, want invalid_input for unknown field", errors.GetCode(err))
	}
	// The record is untouched.
	got, _ := st.Get(context.Background(), "Hoya carnosa")
	if got.Water != "Weekly" {
		t.Errorf("Water = %q, want unchanged", got.Water)
	}
}

func TestPlantListModelNavigation(t *testing.T) {
	plants := []plant.Record{
		{ScientificName: "Monstera deliciosa"},
		{ScientificName: "Hoya carnosa"},
		{ScientificName: "Ficus elastica"},
	}
	m := NewPlantListModel(plants)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(PlantListModel)
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d after down, want 1", m.Cursor)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(PlantListModel)
	if m.Selected == nil || m.Selected.ScientificName != "Hoya carnosa" {
		t.Errorf("Selected = %+v, want Hoya carnosa", m.Selected)
	}
}

func TestPlantListModelUpAtTop(t *testing.T) {
	m := NewPlantListModel([]plant.Record{{ScientificName: "Monstera deliciosa"}})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(PlantListModel)
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0 (clamped at top)", m.Cursor)
	}
}
