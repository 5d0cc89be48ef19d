package coupon

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ImporterConfig holds configuration for the coupon importer.
type ImporterConfig struct {
	// FilePaths is the list of coupon files to load. Later files win on duplicate codes.
	FilePaths []string
}

// DefaultImporterConfig returns the default importer configuration.
func DefaultImporterConfig() *ImporterConfig {
	return &ImporterConfig{
		FilePaths: []string{
			"data/coupons/coupons.jsonl.gz",
		},
	}
}

// ImportResult summarises an import run.
type ImportResult struct {
	Files    int `json:"files"`
	Coupons  int `json:"coupons"`
	Upserted int `json:"upserted"`
}

// Importer loads coupon definition files and writes them to the store.
type Importer struct {
	loader Loader
	store  Store
	logger zerolog.Logger
}

// NewImporter creates a new coupon importer.
func NewImporter(loader Loader, store Store, logger zerolog.Logger) *Importer {
	return &Importer{
		loader: loader,
		store:  store,
		logger: logger.With().Str("component", "coupon-importer").Logger(),
	}
}

// Load reads all configured files concurrently and merges them in file order.
func (i *Importer) Load(ctx context.Context, cfg *ImporterConfig) (Set, error) {
	if cfg == nil {
		cfg = DefaultImporterConfig()
	}

	i.logger.Info().
		Int("file_count", len(cfg.FilePaths)).
		Msg("loading coupon files")

	type loadResult struct {
		index int
		set   Set
		err   error
	}

	resultChan := make(chan loadResult, len(cfg.FilePaths))
	var wg sync.WaitGroup

	for idx, filePath := range cfg.FilePaths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			set, err := i.loader.Load(ctx, path)
			resultChan <- loadResult{index: index, set: set, err: err}
		}(idx, filePath)
	}

	wg.Wait()
	close(resultChan)

	results := make([]loadResult, len(cfg.FilePaths))
	for result := range resultChan {
		results[result.index] = result
	}

	sets := make([]Set, 0, len(results))
	for idx, result := range results {
		if result.err != nil {
			i.logger.Error().
				Err(result.err).
				Str("file", cfg.FilePaths[idx]).
				Msg("failed to load coupon file")
			return nil, fmt.Errorf("failed to load coupon file %s: %w", cfg.FilePaths[idx], result.err)
		}
		sets = append(sets, result.set)
	}

	return Merge(sets...), nil
}

// Import loads the configured files and upserts every coupon. Usage counters
// of existing coupons are left alone.
func (i *Importer) Import(ctx context.Context, cfg *ImporterConfig) (*ImportResult, error) {
	if cfg == nil {
		cfg = DefaultImporterConfig()
	}

	set, err := i.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Files: len(cfg.FilePaths), Coupons: set.Size()}
	for _, c := range set.All() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if err := i.store.Upsert(ctx, &c); err != nil {
			i.logger.Error().Err(err).Str("coupon_code", c.Code).Msg("failed to upsert coupon")
			return result, fmt.Errorf("failed to upsert coupon %s: %w", c.Code, err)
		}
		result.Upserted++
	}

	i.logger.Info().
		Int("files", result.Files).
		Int("coupons", result.Coupons).
		Int("upserted", result.Upserted).
		Msg("coupon import completed")

	return result, nil
}
