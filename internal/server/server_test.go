package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/pipeline"
	"github.com/leafvessel/carecard/pkg/plant"
)

type fakeStore struct {
	records map[string]plant.Record
}

func newFakeStore(records ...plant.Record) *fakeStore {
	f := &fakeStore{records: make(map[string]plant.Record)}
	for _, rec := range records {
		f.records[strings.ToLower(rec.ScientificName)] = rec
	}
	return f
}

func (f *fakeStore) Get(_ context.Context, name string) (*plant.Record, error) {
	rec, ok := f.records[strings.ToLower(name)]
	if !ok {
		return nil, errors.New(errors.ErrCodePlantNotFound, "plant %q not found", name)
	}
	return &rec, nil
}

func (f *fakeStore) Upsert(_ context.Context, rec plant.Record) error {
	f.records[strings.ToLower(rec.ScientificName)] = rec
	return nil
}

func (f *fakeStore) Delete(_ context.Context, name string) error {
	delete(f.records, strings.ToLower(name))
	return nil
}

func (f *fakeStore) List(_ context.Context) ([]plant.Record, error) {
	var out []plant.Record
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeStore) Close() error { return nil }

type fakeFetcher struct {
	err error
}

func (f *fakeFetcher) FetchCareData(_ context.Context, name string) (*plant.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &plant.Record{ScientificName: name, Light: "Bright indirect light"}, nil
}

func newTestServer(t *testing.T, st *fakeStore, fetcher *fakeFetcher) *httptest.Server {
	t.Helper()
	runner := pipeline.NewRunner(st, fetcher, nil, nil, nil, nil)
	srv := httptest.NewServer(New(runner, st, nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, newFakeStore(), &fakeFetcher{})

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestListPlants(t *testing.T) {
	srv := newTestServer(t, newFakeStore(
		plant.Record{ScientificName: "Monstera deliciosa", CommonName: "Swiss Cheese Plant"},
	), &fakeFetcher{})

	resp, err := http.Get(srv.URL + "/api/plants")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Plants []map[string]string `json:"plants"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Plants) != 1 || body.Plants[0]["scientific_name"] != "Monstera deliciosa" {
		t.Errorf("plants = %+v", body.Plants)
	}
}

func TestGetPlantCaseInsensitive(t *testing.T) {
	srv := newTestServer(t, newFakeStore(
		plant.Record{ScientificName: "Hoya carnosa", Toxicity: "Non-toxic to cats and dogs"},
	), &fakeFetcher{})

	resp, err := http.Get(srv.URL + "/api/plants/hoya%20carnosa")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var rec map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatal(err)
	}
	if rec["toxicity"] != "Non-toxic to cats and dogs" {
		t.Errorf("toxicity = %q", rec["toxicity"])
	}
}

func TestGetPlantNotFound(t *testing.T) {
	srv := newTestServer(t, newFakeStore(), &fakeFetcher{})

	resp, err := http.Get(srv.URL + "/api/plants/Nonexistus%20plantus")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGenerateCard(t *testing.T) {
	st := newFakeStore()
	srv := newTestServer(t, st, &fakeFetcher{})

	body := strings.NewReader(`{"output_dir": "` + t.TempDir() + `"}`)
	resp, err := http.Post(srv.URL+"/api/plants/monstera%20deliciosa/card", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		Plant   string `json:"plant"`
		Path    string `json:"path"`
		Pages   int    `json:"pages"`
		Fetched bool   `json:"fetched"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Plant != "Monstera deliciosa" || !out.Fetched || out.Pages != 1 || out.Path == "" {
		t.Errorf("response = %+v", out)
	}
	// The fetched record was persisted.
	if _, err := st.Get(context.Background(), "Monstera deliciosa"); err != nil {
		t.Errorf("record not persisted: %v", err)
	}
}

func TestGenerateCardNotRecognized(t *testing.T) {
	srv := newTestServer(t, newFakeStore(), &fakeFetcher{
		err: errors.New(errors.ErrCodeNotRecognized, "plant not recognized"),
	})

	resp, err := http.Post(srv.URL+"/api/plants/Fakeus%20plantus/card", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}
