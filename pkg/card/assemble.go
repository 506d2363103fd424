package card

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/leafvessel/carecard/pkg/errors"
)

// Assembler writes rendered cards to disk, appending a pre-existing template
// page (the printed card back) when one is configured and valid. A missing
// or broken template degrades to a single-page document, never to a failure.
type Assembler struct {
	logger       *log.Logger
	templatePath string
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithTemplate sets the card back template path.
func WithTemplate(path string) AssemblerOption {
	return func(a *Assembler) { a.templatePath = path }
}

// WithAssemblerLogger attaches a logger.
func WithAssemblerLogger(l *log.Logger) AssemblerOption {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAssembler creates a document assembler.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{logger: log.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble writes the rendered document to outPath, merging the template as
// page two when possible. Returns the number of pages written.
func (a *Assembler) Assemble(pdf *fpdf.Fpdf, outPath string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidPath, err, "create output directory")
	}

	tmpPath := filepath.Join(filepath.Dir(outPath), "temp_"+filepath.Base(outPath))
	if err := pdf.OutputFileAndClose(tmpPath); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "write rendered page")
	}

	if a.mergeTemplate(tmpPath, outPath) {
		_ = os.Remove(tmpPath)
		return 2, nil
	}

	// Single-page fallback: the rendered page becomes the final document.
	if err := os.Rename(tmpPath, outPath); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidPath, err, "finalize output file")
	}
	return 1, nil
}

// mergeTemplate appends the template's first page after the rendered page.
// Any problem with the template (absent, unreadable, invalid) is logged and
// reported as false so the caller can fall back.
func (a *Assembler) mergeTemplate(renderedPath, outPath string) bool {
	if a.templatePath == "" {
		return false
	}
	if _, err := os.Stat(a.templatePath); err != nil {
		a.logger.Warn("card back template not found; producing single-page card", "path", a.templatePath)
		return false
	}
	if err := api.ValidateFile(a.templatePath, nil); err != nil {
		a.logger.Warn("card back template is not a valid PDF; producing single-page card",
			"path", a.templatePath, "err", err)
		return false
	}

	back := a.templatePath
	if n, err := api.PageCountFile(a.templatePath); err == nil && n > 1 {
		// Only the first template page goes on the card back.
		trimmed := renderedPath + ".back"
		if err := api.TrimFile(a.templatePath, trimmed, []string{"1"}, nil); err == nil {
			defer os.Remove(trimmed)
			back = trimmed
		}
	}

	if err := api.MergeCreateFile([]string{renderedPath, back}, outPath, false, nil); err != nil {
		a.logger.Warn("merging card back failed; producing single-page card", "err", err)
		return false
	}
	return true
}

var unsafeNameRE = regexp.MustCompile(`[^\w\s-]`)

// SafeName converts a scientific name into a filesystem-safe file stem.
func SafeName(scientificName string) string {
	s := unsafeNameRE.ReplaceAllString(scientificName, "")
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), "_")
	if s == "" {
		s = "unknown"
	}
	return s
}

// OutputPath returns the dated output location for a card:
// <outputDir>/<YYYY-MM-DD>/<Safe_Name>_<YYYYMMDD>.pdf.
func OutputPath(outputDir, scientificName string, now time.Time) string {
	return filepath.Join(
		outputDir,
		now.Format("2006-01-02"),
		SafeName(scientificName)+"_"+now.Format("20060102")+".pdf",
	)
}

// CatalogPath returns the output location for a catalog document.
func CatalogPath(outputDir string, now time.Time) string {
	return filepath.Join(outputDir, "Plant_Catalog_"+now.Format("20060102_150405")+".pdf")
}
