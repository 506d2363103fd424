package card

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-pdf/fpdf"

	"github.com/leafvessel/carecard/pkg/observability"
	"github.com/leafvessel/carecard/pkg/plant"
)

const (
	fontFamily = "Helvetica"

	titleText = "Plant Care Guide"
	titleSize = 16.0

	nameSize   = 14.0
	commonSize = 11.0
	descSize   = 8.0
	fieldSize  = 9.0

	descLineHeight  = 10.0
	fieldLineHeight = 12.0

	// Care field values start at a fixed column so labels align.
	valueX = Margin + 80
)

// Engine draws care card pages. It holds no per-render state and is safe
// for concurrent use; each render owns its own document.
type Engine struct {
	logger   *log.Logger
	logoPath string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogo sets the logo image drawn in the reserved bottom-center region.
func WithLogo(path string) EngineOption {
	return func(e *Engine) { e.logoPath = path }
}

// WithLogger attaches a logger.
func WithLogger(l *log.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a layout engine. A configured but missing logo file is
// reported once here as a warning; cards still render without it.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{logger: log.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.logoPath != "" {
		if _, err := os.Stat(e.logoPath); err != nil {
			e.logger.Warn("logo file not found; cards will render without it", "path", e.logoPath)
			e.logoPath = ""
		}
	}
	return e
}

// NewCanvas creates an empty card-sized document. Automatic page breaks are
// disabled; the reserved-region hard stop owns the bottom boundary.
func NewCanvas() *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: Width, Ht: Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

// DrawCard adds one page to the document and lays out the record on it.
// Content that would cross into the reserved logo region is dropped whole
// lines at a time; the names of fields that lost content are returned.
// Overflow is a normal outcome, not an error.
func (e *Engine) DrawCard(ctx context.Context, pdf *fpdf.Fpdf, rec plant.Record) []string {
	pdf.AddPage()

	// Title, centered at the top.
	pdf.SetFont(fontFamily, "B", titleSize)
	pdf.Text((Width-pdf.GetStringWidth(titleText))/2, Margin+5, titleText)

	y := Margin + 30.0

	// Scientific name, italic, right-aligned.
	pdf.SetFont(fontFamily, "I", nameSize)
	pdf.Text(Width-Margin-pdf.GetStringWidth(rec.ScientificName), y, rec.ScientificName)
	y += 20

	// Common name, bold, right-aligned. The slot is kept even when empty so
	// cards with and without a common name align.
	if rec.CommonName != "" {
		pdf.SetFont(fontFamily, "B", commonSize)
		pdf.Text(Width-Margin-pdf.GetStringWidth(rec.CommonName), y, rec.CommonName)
	}
	y += 20

	var overflow []string
	stopped := false

	// Description, italic, wrapped to the full content width.
	if rec.Description != "" {
		pdf.SetFont(fontFamily, "I", descSize)
		for _, line := range wrap(pdf, rec.Description, Width-2*Margin) {
			if y > MaxContentY {
				stopped = true
				overflow = append(overflow, "description")
				e.noteOverflow(ctx, rec.ScientificName, "description")
				break
			}
			pdf.Text(Margin, y, line)
			y += descLineHeight
		}
		y += 5
	} else {
		y += descLineHeight
	}

	// Care fields as aligned label/value pairs.
	valueWidth := Width - valueX - Margin
	for _, f := range rec.CareFields() {
		if stopped || y > MaxContentY {
			stopped = true
			overflow = append(overflow, f.Name)
			e.noteOverflow(ctx, rec.ScientificName, f.Name)
			continue
		}

		value := f.Value
		if value == "" {
			value = "N/A"
		}

		pdf.SetFont(fontFamily, "B", fieldSize)
		pdf.Text(Margin, y, f.Label)

		pdf.SetFont(fontFamily, "", fieldSize)
		for i, line := range wrap(pdf, value, valueWidth) {
			if i > 0 && y > MaxContentY {
				stopped = true
				overflow = append(overflow, f.Name)
				e.noteOverflow(ctx, rec.ScientificName, f.Name)
				break
			}
			pdf.Text(valueX, y, line)
			y += fieldLineHeight
		}
		y += 3
	}

	e.drawLogo(pdf)
	return overflow
}

func (e *Engine) noteOverflow(ctx context.Context, name, field string) {
	e.logger.Debug("content stopped at reserved region", "plant", name, "field", field)
	observability.Render().OnLayoutOverflow(ctx, name, field)
}

func (e *Engine) drawLogo(pdf *fpdf.Fpdf) {
	if e.logoPath == "" {
		return
	}
	r := LogoRegion()
	pdf.ImageOptions(e.logoPath, r.X, r.Y, r.W, r.H, false,
		fpdf.ImageOptions{ReadDpi: true}, 0, "")
}

// wrap splits text into lines that fit maxWidth at the document's active
// font and size, using glyph metrics rather than character counts. A single
// word wider than the line gets its own line rather than being split.
func wrap(pdf *fpdf.Fpdf, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if pdf.GetStringWidth(candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
