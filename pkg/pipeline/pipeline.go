// Package pipeline wires the care card stages together: look up or fetch a
// plant record, persist it, apply field limits, lay out the card, and
// assemble the output document.
//
// Both the CLI and the HTTP server run cards through the same Runner so
// caching, limit application and output naming behave identically across
// entry points.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/leafvessel/carecard/pkg/cache"
	"github.com/leafvessel/carecard/pkg/card"
	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/observability"
	"github.com/leafvessel/carecard/pkg/plant"
	"github.com/leafvessel/carecard/pkg/store"
)

// DefaultOutputDir is where cards land when no directory is configured.
const DefaultOutputDir = "cards"

// CareFetcher fetches care data for a scientific name. Implemented by
// anthropic.Client; tests substitute fakes.
type CareFetcher interface {
	FetchCareData(ctx context.Context, scientificName string) (*plant.Record, error)
}

// Options control a single card generation.
type Options struct {
	// ScientificName identifies the plant. Required.
	ScientificName string

	// OutputDir is the root output directory. Defaults to DefaultOutputDir.
	OutputDir string

	// Refresh forces a remote fetch even when the record is stored.
	Refresh bool

	// NoSave renders without persisting the record.
	NoSave bool
}

func (o *Options) validate() error {
	o.ScientificName = plant.NormalizeScientificName(o.ScientificName)
	if o.ScientificName == "" {
		return errors.New(errors.ErrCodeInvalidInput, "scientific name is required")
	}
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	return nil
}

// Result reports what a generation did.
type Result struct {
	Record      plant.Record
	PDFPath     string
	Pages       int
	Fetched     bool // record came from the remote service, not the store
	CacheHit    bool // remote response served from cache
	Truncations []plant.Truncation
	Overflow    []string // fields dropped at the reserved-region boundary
}

// Runner executes the generation pipeline. It is stateless apart from its
// collaborators and safe for concurrent use; per-identifier write ordering
// is the store's concern.
type Runner struct {
	Store     store.Store
	Client    CareFetcher
	Cache     cache.Cache
	Engine    *card.Engine
	Assembler *card.Assembler
	Limits    plant.Limits
	Logger    *log.Logger

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

// NewRunner creates a runner. A nil cache disables caching; a nil logger
// falls back to the default logger.
func NewRunner(st store.Store, client CareFetcher, c cache.Cache, engine *card.Engine, assembler *card.Assembler, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	if engine == nil {
		engine = card.NewEngine()
	}
	if assembler == nil {
		assembler = card.NewAssembler()
	}
	return &Runner{
		Store:     st,
		Client:    client,
		Cache:     c,
		Engine:    engine,
		Assembler: assembler,
		Limits:    plant.DefaultLimits(),
		Logger:    logger,
		now:       time.Now,
	}
}

// Generate produces a care card for one plant: stored record if present,
// remote fetch otherwise, then limits, layout, and assembly.
func (r *Runner) Generate(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	result := &Result{}

	rec, fetched, cacheHit, err := r.resolve(ctx, opts.ScientificName, opts.Refresh)
	if err != nil {
		return nil, err
	}
	result.Fetched = fetched
	result.CacheHit = cacheHit

	if fetched && !opts.NoSave {
		if err := r.Store.Upsert(ctx, *rec); err != nil {
			return nil, err
		}
	}

	// Limits run again immediately before layout. Stored records are
	// already limited, so this is a no-op for them; fetched records with
	// NoSave still render limit-consistent.
	limited, truncations := r.Limits.Apply(*rec)
	result.Record = limited
	result.Truncations = truncations
	for _, tr := range truncations {
		r.Logger.Info("field truncated for display", "field", tr.Field, "from", tr.From, "to", tr.To)
		observability.Render().OnTruncate(ctx, tr.Field, tr.From, tr.To)
	}

	renderStart := r.now()
	observability.Render().OnRenderStart(ctx, limited.ScientificName)

	canvas := card.NewCanvas()
	result.Overflow = r.Engine.DrawCard(ctx, canvas, limited)

	outPath := card.OutputPath(opts.OutputDir, limited.ScientificName, r.now())
	pages, err := r.Assembler.Assemble(canvas, outPath)
	observability.Render().OnRenderComplete(ctx, limited.ScientificName, pages, time.Since(renderStart), err)
	if err != nil {
		return nil, err
	}
	result.PDFPath = outPath
	result.Pages = pages

	r.Logger.Info("care card generated",
		"plant", limited.ScientificName,
		"pages", pages,
		"path", outPath)
	return result, nil
}

// Fetch retrieves care data for a plant from the remote service and persists
// it, bypassing any stored record. Returns the stored record and whether the
// response came from cache.
func (r *Runner) Fetch(ctx context.Context, scientificName string) (*plant.Record, bool, error) {
	name := plant.NormalizeScientificName(scientificName)
	if name == "" {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "scientific name is required")
	}

	rec, cacheHit, err := r.fetchRemote(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if err := r.Store.Upsert(ctx, *rec); err != nil {
		return nil, false, err
	}
	limited, _ := r.Limits.Apply(*rec)
	return &limited, cacheHit, nil
}

// resolve returns the record for a name, preferring the store unless a
// refresh is forced.
func (r *Runner) resolve(ctx context.Context, name string, refresh bool) (rec *plant.Record, fetched, cacheHit bool, err error) {
	if !refresh {
		rec, err := r.Store.Get(ctx, name)
		if err == nil {
			r.Logger.Debug("using stored record", "plant", name)
			return rec, false, false, nil
		}
		if errors.GetCode(err) != errors.ErrCodePlantNotFound {
			return nil, false, false, err
		}
	}

	rec, cacheHit, err = r.fetchRemote(ctx, name)
	if err != nil {
		return nil, false, false, err
	}
	return rec, true, cacheHit, nil
}

// fetchRemote fetches care data, consulting the response cache first.
// Only successful responses are cached; failures always retry the remote.
func (r *Runner) fetchRemote(ctx context.Context, name string) (*plant.Record, bool, error) {
	key := cache.ResponseKey(name)

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var rec plant.Record
		if err := json.Unmarshal(data, &rec); err == nil && rec.ScientificName != "" {
			observability.Cache().OnCacheHit(ctx, "care")
			r.Logger.Debug("care data served from cache", "plant", name)
			return &rec, true, nil
		}
		// Unreadable entry: drop it and fall through to a fresh fetch.
		_ = r.Cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "care")

	rec, err := r.Client.FetchCareData(ctx, name)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(rec); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLResponse); err != nil {
			r.Logger.Debug("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "care", len(data))
		}
	}
	return rec, false, nil
}
