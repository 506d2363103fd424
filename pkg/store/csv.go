package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/plant"
)

// ImportResult summarizes a CSV import. Row-level problems do not stop the
// import; they are collected so the caller can report them together.
type ImportResult struct {
	Imported int
	Errors   []string
}

// ImportCSV reads plant records from r and upserts them into the store. Two
// column layouts are recognized and auto-detected by header:
//
//   - canonical: scientific_name, common_name, description, light, water,
//     feeding, temperature, humidity, toxicity
//   - retail: Botanical Name, Common Name, Description, Light, Water,
//     Fertilizer, Temperature, Cat Friendly, Dog Friendly
//
// The retail layout maps Fertilizer onto feeding and folds the two
// pet-friendliness columns into a single toxicity phrase.
func ImportCSV(ctx context.Context, st Store, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCSV, err, "read CSV header")
	}
	// utf-8-sig exports carry a BOM on the first header cell.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	_, retail := cols["Botanical Name"]
	_, canonical := cols["scientific_name"]
	if !retail && !canonical {
		return nil, errors.New(errors.ErrCodeInvalidCSV,
			"CSV must contain either a 'Botanical Name' or a 'scientific_name' column")
	}

	result := &ImportResult{}
	for rowNum := 2; ; rowNum++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		var rec plant.Record
		if retail {
			rec = plant.Record{
				ScientificName: field("Botanical Name"),
				CommonName:     field("Common Name"),
				Description:    field("Description"),
				Light:          field("Light"),
				Water:          field("Water"),
				Feeding:        field("Fertilizer"),
				Temperature:    field("Temperature"),
				Toxicity:       retailToxicity(field("Cat Friendly"), field("Dog Friendly")),
			}
		} else {
			rec = plant.Record{
				ScientificName: field("scientific_name"),
				CommonName:     field("common_name"),
				Description:    field("description"),
				Light:          field("light"),
				Water:          field("water"),
				Feeding:        field("feeding"),
				Temperature:    field("temperature"),
				Humidity:       field("humidity"),
				Toxicity:       field("toxicity"),
			}
		}

		if rec.ScientificName == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing scientific name", rowNum))
			continue
		}
		rec.ScientificName = plant.NormalizeScientificName(rec.ScientificName)

		if err := st.Upsert(ctx, rec); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("row %d: failed to import %q: %v", rowNum, rec.ScientificName, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

// retailToxicity folds the retail layout's Cat Friendly / Dog Friendly
// columns into a single toxicity phrase. Any explicit "No" marks the plant
// toxic for that species; both "Yes" means non-toxic; anything else leaves
// the field empty for a later fetch to fill.
func retailToxicity(catFriendly, dogFriendly string) string {
	var parts []string
	if strings.EqualFold(catFriendly, "no") {
		parts = append(parts, "toxic to cats")
	}
	if strings.EqualFold(dogFriendly, "no") {
		parts = append(parts, "toxic to dogs")
	}
	if len(parts) > 0 {
		return "Toxic: " + strings.Join(parts, " and ")
	}
	if strings.EqualFold(catFriendly, "yes") && strings.EqualFold(dogFriendly, "yes") {
		return "Non-toxic to cats and dogs"
	}
	return ""
}
