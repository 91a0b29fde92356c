package aggregate

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/archive"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/config"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/errors"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/models"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/normalize"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/source"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/telemetry"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobsearch/aggregate")

// CategoryProvider is the one source (Adzuna) whose category taxonomy we
// expose to the filter UI.
type CategoryProvider interface {
	Categories(ctx context.Context, country string) (models.CategoryList, error)
}

// Aggregator fans a search out to every selected source adapter, normalizes
// whatever comes back, and merges the survivors. A failed source contributes
// nothing; it never aborts the others.
type Aggregator struct {
	adapters   map[models.Source]source.Adapter
	categories CategoryProvider
	normalizer *normalize.Normalizer
	publisher  archive.Publisher
	logger     *zap.Logger
	config     *config.Config
}

func New(
	cfg *config.Config,
	logger *zap.Logger,
	adapters []source.Adapter,
	categories CategoryProvider,
	normalizer *normalize.Normalizer,
	publisher archive.Publisher,
) *Aggregator {
	bySource := make(map[models.Source]source.Adapter, len(adapters))
	for _, adapter := range adapters {
		bySource[adapter.Source()] = adapter
	}
	return &Aggregator{
		adapters:   bySource,
		categories: categories,
		normalizer: normalizer,
		publisher:  publisher,
		logger:     logger,
		config:     cfg,
	}
}

// sourceResult is one settled fan-out branch: either that source's
// normalized postings or its failure, never both.
type sourceResult struct {
	src      models.Source
	postings []models.JobPosting
	err      error
}

// Search dispatches one adapter call per selected source concurrently and
// joins on all of them. Per-source failures are isolated and logged; the
// merged result keeps selectedSources order with salary-carrying postings
// partitioned to the front.
func (a *Aggregator) Search(ctx context.Context, filters models.SearchFilters) ([]models.JobPosting, error) {
	ctx, span := tracer.Start(ctx, "Aggregator.Search")
	defer span.End()

	if len(filters.SelectedSources) == 0 {
		return []models.JobPosting{}, nil
	}

	nctx := normalize.Context{CountryCode: filters.Country}

	results := make([]sourceResult, len(filters.SelectedSources))
	var wg sync.WaitGroup

	for i, src := range filters.SelectedSources {
		adapter, ok := a.adapters[src]
		if !ok {
			results[i] = sourceResult{src: src, err: errors.InvalidInput(fmt.Sprintf("no adapter registered for source %q", src), nil)}
			continue
		}

		wg.Add(1)
		go func(i int, src models.Source, adapter source.Adapter) {
			defer wg.Done()

			branchCtx, cancel := context.WithTimeout(ctx, a.config.SourceTimeout)
			defer cancel()

			raws, err := adapter.Fetch(branchCtx, filters)
			if err != nil {
				results[i] = sourceResult{src: src, err: err}
				return
			}

			postings := make([]models.JobPosting, 0, len(raws))
			for _, raw := range raws {
				if posting := a.normalizer.Record(raw, nctx); posting != nil {
					postings = append(postings, *posting)
				}
			}
			results[i] = sourceResult{src: src, postings: postings}
		}(i, src, adapter)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	merged := make([]models.JobPosting, 0)
	failed := 0
	for _, result := range results {
		if result.err != nil {
			failed++
			a.logger.Warn("job source failed, excluding from results",
				zap.String("source", string(result.src)),
				zap.Error(result.err))
			continue
		}
		merged = append(merged, result.postings...)
	}

	// Known salaries first; arrival order preserved within each bucket.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].HasSalary() && !merged[j].HasSalary()
	})

	span.SetAttributes(
		telemetry.Int("sources.selected", len(filters.SelectedSources)),
		telemetry.Int("sources.failed", failed),
		telemetry.Int("postings.merged", len(merged)),
	)
	a.logger.Info("aggregated job search",
		zap.Int("sources", len(filters.SelectedSources)),
		zap.Int("failed", failed),
		zap.Int("postings", len(merged)))

	if len(merged) > 0 {
		if err := a.publisher.PublishJobPostings(ctx, merged); err != nil {
			a.logger.Warn("failed to archive aggregated postings", zap.Error(err))
		}
	}

	return merged, nil
}

// Categories returns the country-scoped taxonomy, or an empty list when the
// provider fails; taxonomy errors never break the filter UI.
func (a *Aggregator) Categories(ctx context.Context, country string) models.CategoryList {
	ctx, span := tracer.Start(ctx, "Aggregator.Categories")
	defer span.End()

	categories, err := a.categories.Categories(ctx, country)
	if err != nil {
		span.RecordError(err)
		a.logger.Warn("failed to fetch category taxonomy",
			zap.String("country", country),
			zap.Error(err))
		return models.CategoryList{}
	}
	return categories
}
