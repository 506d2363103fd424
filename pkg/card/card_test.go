package card

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/plant"
)

func TestRegionIntersects(t *testing.T) {
	logo := LogoRegion()

	tests := []struct {
		name string
		r    Region
		want bool
	}{
		{"inside logo", Region{X: logo.X + 10, Y: logo.Y + 10, W: 5, H: 5}, true},
		{"overlapping edge", Region{X: logo.X - 5, Y: logo.Y + 10, W: 10, H: 10}, true},
		{"above logo", Region{X: logo.X, Y: 0, W: logo.W, H: logo.Y - 1}, false},
		{"left of logo", Region{X: 0, Y: logo.Y, W: logo.X - 1, H: logo.H}, false},
		{"touching is not overlap", Region{X: logo.X - 10, Y: logo.Y, W: 10, H: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Intersects(logo); got != tt.want {
				t.Errorf("Intersects = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogoRegionGeometry(t *testing.T) {
	r := LogoRegion()
	if r.W != LogoSize || r.H != LogoSize {
		t.Errorf("logo region is %gx%g, want %gx%g", r.W, r.H, LogoSize, LogoSize)
	}
	// Bottom-centered within the margins.
	if r.X != (Width-LogoSize)/2 {
		t.Errorf("logo X = %g, want centered", r.X)
	}
	if r.Y+r.H != Height-Margin {
		t.Errorf("logo bottom = %g, want %g", r.Y+r.H, Height-Margin)
	}
	// The content boundary sits strictly above the reserved region.
	if MaxContentY >= r.Y {
		t.Errorf("MaxContentY %g must be above logo top %g", MaxContentY, r.Y)
	}
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Monstera deliciosa", "Monstera_deliciosa"},
		{"Monstera deliciosa 'Thai Constellation'", "Monstera_deliciosa_Thai_Constellation"},
		{"Ficus  elastica ", "Ficus_elastica"},
		{"???", "unknown"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		if got := SafeName(tt.in); got != tt.want {
			t.Errorf("SafeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	got := OutputPath("/cards", "Monstera deliciosa", now)
	want := filepath.Join("/cards", "2025-03-14", "Monstera_deliciosa_20250314.pdf")
	if got != want {
		t.Errorf("OutputPath = %q, want %q", got, want)
	}
}

func TestWrapRespectsGlyphWidths(t *testing.T) {
	pdf := NewCanvas()
	pdf.SetFont(fontFamily, "", fieldSize)

	text := strings.Repeat("water thoroughly ", 10)
	maxWidth := 120.0
	lines := wrap(pdf, text, maxWidth)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %d line(s)", len(lines))
	}
	for i, line := range lines {
		if w := pdf.GetStringWidth(line); w > maxWidth {
			t.Errorf("line %d width %g exceeds %g: %q", i, w, maxWidth, line)
		}
	}
	// No word is ever split.
	if strings.Join(lines, " ") != strings.Join(strings.Fields(text), " ") {
		t.Error("wrapped lines should reassemble to the original words")
	}
}

func TestWrapLongToken(t *testing.T) {
	pdf := NewCanvas()
	pdf.SetFont(fontFamily, "", fieldSize)

	token := strings.Repeat("x", 200)
	lines := wrap(pdf, "short "+token, 50)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	// An unbreakable token overflows its own line rather than being split.
	if lines[1] != token {
		t.Error("long token should stay intact on its own line")
	}
}

func TestWrapEmpty(t *testing.T) {
	pdf := NewCanvas()
	pdf.SetFont(fontFamily, "", fieldSize)
	if lines := wrap(pdf, "   ", 100); lines != nil {
		t.Errorf("wrap(blank) = %v, want nil", lines)
	}
}

func fittingRecord() plant.Record {
	return plant.Record{
		ScientificName: "Monstera deliciosa",
		CommonName:     "Swiss Cheese Plant",
		Description:    "A climbing aroid with fenestrated leaves.",
		Light:          "Bright indirect light",
		Water:          "Allow top 50% to dry",
		Feeding:        "Monthly in season",
		Temperature:    "65-85F",
		Humidity:       "50-60%",
		Toxicity:       "Toxic to cats and dogs",
	}
}

func TestDrawCardFits(t *testing.T) {
	e := NewEngine()
	pdf := NewCanvas()

	overflow := e.DrawCard(context.Background(), pdf, fittingRecord())
	if len(overflow) != 0 {
		t.Errorf("short record should not overflow, got %v", overflow)
	}
	if pdf.PageCount() != 1 {
		t.Errorf("pages = %d, want 1", pdf.PageCount())
	}
	if pdf.Err() {
		t.Errorf("canvas error: %v", pdf.Error())
	}
}

func TestDrawCardHardStop(t *testing.T) {
	e := NewEngine()
	pdf := NewCanvas()

	rec := fittingRecord()
	rec.Description = strings.Repeat("an extremely detailed account of the foliage ", 40)

	overflow := e.DrawCard(context.Background(), pdf, rec)
	if len(overflow) == 0 {
		t.Fatal("oversized description should hit the reserved-region stop")
	}
	if overflow[0] != "description" {
		t.Errorf("first overflowed field = %q, want description", overflow[0])
	}
	// Once stopped, every remaining field is reported dropped: the
	// description plus all six care fields.
	if len(overflow) != 7 {
		t.Errorf("overflow = %v, want description plus all care fields", overflow)
	}
	if pdf.Err() {
		t.Errorf("canvas error: %v", pdf.Error())
	}
}

func TestDrawCardMissingLogoIsWarning(t *testing.T) {
	e := NewEngine(WithLogo(filepath.Join(t.TempDir(), "absent.png")))
	pdf := NewCanvas()
	if overflow := e.DrawCard(context.Background(), pdf, fittingRecord()); len(overflow) != 0 {
		t.Errorf("overflow = %v, want none", overflow)
	}
	if pdf.Err() {
		t.Errorf("missing logo must not poison the canvas: %v", pdf.Error())
	}
}

func TestAssembleMissingTemplateFallsBack(t *testing.T) {
	dir := t.TempDir()
	a := NewAssembler(WithTemplate(filepath.Join(dir, "no_such_back.pdf")))
	e := NewEngine()

	pdf := NewCanvas()
	e.DrawCard(context.Background(), pdf, fittingRecord())

	out := filepath.Join(dir, "out", "card.pdf")
	pages, err := a.Assemble(pdf, out)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if pages != 1 {
		t.Errorf("pages = %d, want 1 (single-page fallback)", pages)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestAssembleInvalidTemplateFallsBack(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "back.pdf")
	if err := os.WriteFile(bad, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := NewAssembler(WithTemplate(bad))
	e := NewEngine()
	pdf := NewCanvas()
	e.DrawCard(context.Background(), pdf, fittingRecord())

	pages, err := a.Assemble(pdf, filepath.Join(dir, "card.pdf"))
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if pages != 1 {
		t.Errorf("pages = %d, want 1 (invalid template falls back)", pages)
	}
}

func TestAssembleNoTemplateConfigured(t *testing.T) {
	dir := t.TempDir()
	a := NewAssembler()
	e := NewEngine()
	pdf := NewCanvas()
	e.DrawCard(context.Background(), pdf, fittingRecord())

	pages, err := a.Assemble(pdf, filepath.Join(dir, "card.pdf"))
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if pages != 1 {
		t.Errorf("pages = %d, want 1", pages)
	}
}

func TestRenderCatalog(t *testing.T) {
	dir := t.TempDir()
	e := NewEngine()

	records := []plant.Record{fittingRecord(), {ScientificName: "Hoya carnosa"}}
	out := CatalogPath(dir, time.Now())
	if err := e.RenderCatalog(context.Background(), records, out); err != nil {
		t.Fatalf("RenderCatalog error: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("catalog file missing: %v", err)
	}
}

func TestRenderCatalogEmpty(t *testing.T) {
	e := NewEngine()
	err := e.RenderCatalog(context.Background(), nil, filepath.Join(t.TempDir(), "catalog.pdf"))
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("code = %q, want invalid_input", errors.GetCode(err))
	}
}
