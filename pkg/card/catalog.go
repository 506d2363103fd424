package card

import (
	"context"
	"os"
	"path/filepath"

	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/plant"
)

// RenderCatalog writes a multi-page document with one card layout per
// record, in the order given. Catalog pages carry no template back page.
func (e *Engine) RenderCatalog(ctx context.Context, records []plant.Record, outPath string) error {
	if len(records) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no plants to include in catalog")
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create output directory")
	}

	pdf := NewCanvas()
	for _, rec := range records {
		e.DrawCard(ctx, pdf, rec)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write catalog")
	}
	e.logger.Info("catalog generated", "pages", len(records), "path", outPath)
	return nil
}
